package rest

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/totegamma/misblock"
	"github.com/totegamma/misblock/internal/domain"
	"github.com/totegamma/misblock/internal/present/rest/presenter"
	"github.com/totegamma/misblock/internal/usecase"
)

type Handler struct {
	config    *usecase.ConfigUsecase
	points    *usecase.PointUsecase
	hospitals *usecase.HospitalUsecase
	reviews   *usecase.ReviewUsecase
	bills     *usecase.BillUsecase
	rewards   *usecase.RewardUsecase
	transfers *usecase.TransferUsecase
	signal    SignalSource
}

func NewHandler(
	config *usecase.ConfigUsecase,
	points *usecase.PointUsecase,
	hospitals *usecase.HospitalUsecase,
	reviews *usecase.ReviewUsecase,
	bills *usecase.BillUsecase,
	rewards *usecase.RewardUsecase,
	transfers *usecase.TransferUsecase,
	signal SignalSource,
) *Handler {
	return &Handler{
		config:    config,
		points:    points,
		hospitals: hospitals,
		reviews:   reviews,
		bills:     bills,
		rewards:   rewards,
		transfers: transfers,
		signal:    signal,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/config", h.handleGetConfig)
	e.PUT("/config/exchange-ratio", h.handleSetExchangeRatio)
	e.PUT("/config/verification-key", h.handleSetVerificationKey)
	e.PUT("/config/like-reward", h.handleSetLikeReward)

	e.POST("/points/credit", h.handleCredit)
	e.POST("/points/debit", h.handleDebit)
	e.POST("/exchange", h.handleExchange)
	e.GET("/customers/:owner", h.handleGetCustomer)
	e.GET("/customers/:owner/history", h.handleHistory)
	e.GET("/audit/supply", h.handleAudit)
	e.GET("/audit/transfers", h.handleTransferLog)

	e.POST("/hospitals", h.handleRegisterHospital)
	e.GET("/hospitals/:owner", h.handleGetHospital)
	e.POST("/hospitals/:owner/emr-sales", h.handleRecordEMRSale)

	e.POST("/reviews", h.handlePostReview)
	e.GET("/reviews/:id", h.handleGetReview)
	e.POST("/reviews/:id/like", h.handleLike)

	e.GET("/ranking/hospitals", h.handleHospitalRanking)
	e.GET("/ranking/reviews", h.handleReviewRanking)
	e.POST("/rewards/distribute", h.handleDistribute)

	e.POST("/bills", h.handleIssueBill)
	e.GET("/bills/:id", h.handleGetBill)
	e.POST("/bills/:id/pay", h.handleConfirmCash)

	e.POST("/transfers/notify", h.handleTransferNotify)
	e.POST("/diagnostics/recover-key", h.handleRecoverKey)

	e.GET("/realtime", h.handleRealtime)
}

func limitParam(c echo.Context) (int, bool) {
	s := c.QueryParam("limit")
	if s == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(s)
	if err != nil || limit < 0 {
		return 0, false
	}
	return limit, true
}

func (h *Handler) handleGetConfig(c echo.Context) error {
	cfg, err := h.config.Get(c.Request().Context())
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, cfg)
}

func (h *Handler) handleSetExchangeRatio(c echo.Context) error {
	var req exchangeRatioRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	cfg, err := h.config.SetExchangeRatio(c.Request().Context(), req.MisByPoint)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, cfg)
}

func (h *Handler) handleSetVerificationKey(c echo.Context) error {
	var req verificationKeyRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	cfg, err := h.config.SetVerificationKey(c.Request().Context(), req.Key)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, cfg)
}

func (h *Handler) handleSetLikeReward(c echo.Context) error {
	var req likeRewardRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	cfg, err := h.config.SetLikeReward(c.Request().Context(), req.Reward)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, cfg)
}

func (h *Handler) handleCredit(c echo.Context) error {
	var req pointsRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	customer, err := h.points.Credit(c.Request().Context(), req.Owner, req.Amount, req.Memo)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, customer)
}

func (h *Handler) handleDebit(c echo.Context) error {
	var req pointsRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	customer, err := h.points.Debit(c.Request().Context(), req.Owner, req.Amount, req.Memo)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, customer)
}

func (h *Handler) handleExchange(c echo.Context) error {
	var req exchangeRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	result, err := h.points.Exchange(c.Request().Context(), req.Owner, req.Points)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, result)
}

func (h *Handler) handleGetCustomer(c echo.Context) error {
	customer, err := h.points.GetCustomer(c.Request().Context(), c.Param("owner"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, customer)
}

func (h *Handler) handleHistory(c echo.Context) error {
	limit, ok := limitParam(c)
	if !ok {
		return presenter.BadRequestMessage(c, "invalid limit parameter")
	}
	entries, err := h.points.History(c.Request().Context(), c.Param("owner"), limit)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, entries)
}

func (h *Handler) handleAudit(c echo.Context) error {
	audit, err := h.points.Audit(c.Request().Context())
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, audit)
}

func (h *Handler) handleTransferLog(c echo.Context) error {
	limit, ok := limitParam(c)
	if !ok {
		return presenter.BadRequestMessage(c, "invalid limit parameter")
	}
	logs, err := h.points.TransferLog(c.Request().Context(), limit)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, logs)
}

func (h *Handler) handleRegisterHospital(c echo.Context) error {
	var req registerHospitalRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	hospital, err := h.hospitals.Register(c.Request().Context(), req.Owner, req.URL)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, hospital)
}

func (h *Handler) handleGetHospital(c echo.Context) error {
	hospital, err := h.hospitals.Get(c.Request().Context(), c.Param("owner"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, hospital)
}

func (h *Handler) handleRecordEMRSale(c echo.Context) error {
	hospital, err := h.hospitals.RecordEMRSale(c.Request().Context(), c.Param("owner"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, hospital)
}

func (h *Handler) handlePostReview(c echo.Context) error {
	var req postReviewRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	review, err := h.reviews.Post(c.Request().Context(), usecase.PostReviewInput{
		Owner:     req.Owner,
		Hospital:  req.Hospital,
		ReviewID:  req.ReviewID,
		Title:     req.Title,
		Body:      req.Body,
		Signature: req.Signature,
	})
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, review)
}

func (h *Handler) handleGetReview(c echo.Context) error {
	review, err := h.reviews.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, review)
}

func (h *Handler) handleLike(c echo.Context) error {
	var req likeRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	result, err := h.reviews.Like(c.Request().Context(), req.Owner, c.Param("id"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, result)
}

func (h *Handler) handleHospitalRanking(c echo.Context) error {
	limit, ok := limitParam(c)
	if !ok {
		return presenter.BadRequestMessage(c, "invalid limit parameter")
	}
	hospitals, err := h.hospitals.Ranking(c.Request().Context(), limit)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, rankHospitals(hospitals))
}

func (h *Handler) handleReviewRanking(c echo.Context) error {
	limit, ok := limitParam(c)
	if !ok {
		return presenter.BadRequestMessage(c, "invalid limit parameter")
	}
	reviews, err := h.reviews.Ranking(c.Request().Context(), limit)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, rankReviews(reviews))
}

func (h *Handler) handleDistribute(c echo.Context) error {
	summary, err := h.rewards.Distribute(c.Request().Context())
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, summary)
}

func (h *Handler) handleIssueBill(c echo.Context) error {
	var req issueBillRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	bill, err := h.bills.Issue(c.Request().Context(), req.Hospital, req.Customer, req.Content, req.Price)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, bill)
}

func (h *Handler) handleGetBill(c echo.Context) error {
	bill, err := h.bills.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, bill)
}

func (h *Handler) handleConfirmCash(c echo.Context) error {
	var req confirmCashRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	bill, err := h.bills.ConfirmCash(c.Request().Context(), req.Hospital, req.Customer, c.Param("id"), req.ReviewID)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, bill)
}

func (h *Handler) handleTransferNotify(c echo.Context) error {
	var req transferRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	quantity, err := misblock.ParseAsset(req.Quantity)
	if err != nil {
		return presenter.Error(c, domain.InvalidArgument("%v", err))
	}
	result, err := h.transfers.OnTransfer(c.Request().Context(), misblock.TransferNotification{
		TxID:     req.TxID,
		From:     req.From,
		To:       req.To,
		Quantity: quantity,
		Memo:     req.Memo,
	})
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, result)
}

func (h *Handler) handleRecoverKey(c echo.Context) error {
	var req recoverKeyRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	key, err := h.config.RecoverKey(c.Request().Context(), req.Digest, req.Signature)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, echo.Map{"publicKey": key})
}
