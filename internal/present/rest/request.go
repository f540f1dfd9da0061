package rest

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/totegamma/misblock"
	"github.com/totegamma/misblock/internal/present/rest/presenter"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("account", func(fl validator.FieldLevel) bool {
		return misblock.IsValidName(fl.Field().String())
	})
	return v
}

type exchangeRatioRequest struct {
	MisByPoint uint64 `json:"misByPoint" validate:"gt=0"`
}

type verificationKeyRequest struct {
	Key string `json:"key"`
}

type likeRewardRequest struct {
	Reward uint64 `json:"reward" validate:"gt=0"`
}

type pointsRequest struct {
	Owner  string `json:"owner" validate:"required,account"`
	Amount uint64 `json:"amount" validate:"gt=0"`
	Memo   string `json:"memo" validate:"max=255"`
}

type exchangeRequest struct {
	Owner  string `json:"owner" validate:"required,account"`
	Points uint64 `json:"points" validate:"gt=0"`
}

type registerHospitalRequest struct {
	Owner string `json:"owner" validate:"required,account"`
	URL   string `json:"url" validate:"max=511"`
}

type postReviewRequest struct {
	Owner     string `json:"owner" validate:"required,account"`
	Hospital  string `json:"hospital" validate:"required,account"`
	ReviewID  string `json:"reviewId" validate:"required,max=64"`
	Title     string `json:"title" validate:"max=511"`
	Body      string `json:"body" validate:"required"`
	Signature string `json:"signature"`
}

type likeRequest struct {
	Owner string `json:"owner" validate:"required,account"`
}

type issueBillRequest struct {
	Hospital string `json:"hospital" validate:"required,account"`
	Customer string `json:"customer" validate:"required,account"`
	Content  string `json:"content" validate:"max=511"`
	Price    int64  `json:"price" validate:"gte=10000"`
}

type confirmCashRequest struct {
	Hospital string `json:"hospital" validate:"required,account"`
	Customer string `json:"customer" validate:"required,account"`
	ReviewID string `json:"reviewId" validate:"max=64"`
}

type transferRequest struct {
	TxID     string `json:"txId" validate:"max=128"`
	From     string `json:"from" validate:"required,account"`
	To       string `json:"to" validate:"required,account"`
	Quantity string `json:"quantity" validate:"required"`
	Memo     string `json:"memo" validate:"max=256"`
}

type recoverKeyRequest struct {
	Digest    string `json:"digest" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

// bind decodes the request body into dst and validates it. On failure it
// writes the 400 reply and returns false.
func bind(c echo.Context, dst any) (bool, error) {
	if err := c.Bind(dst); err != nil {
		return false, presenter.BadRequestMessage(c, "invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return false, presenter.BadRequest(c, err)
		}
		fields := make(map[string]string, len(verrs))
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msg := messageFor(fe)
			fields[fe.Field()] = msg
			msgs = append(msgs, fmt.Sprintf("field '%s' %s", fe.Field(), msg))
		}
		return false, presenter.InvalidFields(c, strings.Join(msgs, "; "), fields)
	}
	return true, nil
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "account":
		return "must be a valid account name"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
}
