package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/totegamma/misblock"
	"github.com/totegamma/misblock/internal/domain"
)

type PointUsecase struct {
	ledger *Ledger
}

func NewPointUsecase(ledger *Ledger) *PointUsecase {
	return &PointUsecase{ledger: ledger}
}

func validateMemo(memo string) error {
	if len(memo) >= domain.MaxMemoLength {
		return domain.InvalidArgument("memo must be shorter than %d bytes", domain.MaxMemoLength)
	}
	return nil
}

// Credit grants points to owner. Admin only.
func (uc *PointUsecase) Credit(ctx context.Context, owner string, amount uint64, memo string) (domain.Customer, error) {
	if err := uc.ledger.RequireAdmin(ctx); err != nil {
		return domain.Customer{}, err
	}
	if err := validateMemo(memo); err != nil {
		return domain.Customer{}, err
	}

	var result domain.Customer
	err := uc.ledger.execute(ctx, "creditPoints", func(s *session) error {
		c, err := s.credit(owner, amount, domain.ReasonCredit, memo)
		result = c
		return err
	})
	return result, err
}

// Debit burns points from owner. Admin only.
func (uc *PointUsecase) Debit(ctx context.Context, owner string, amount uint64, memo string) (domain.Customer, error) {
	if err := uc.ledger.RequireAdmin(ctx); err != nil {
		return domain.Customer{}, err
	}
	if err := validateMemo(memo); err != nil {
		return domain.Customer{}, err
	}

	var result domain.Customer
	err := uc.ledger.execute(ctx, "debitPoints", func(s *session) error {
		c, err := s.debit(owner, amount, domain.ReasonDebit, memo)
		result = c
		return err
	})
	return result, err
}

type ExchangeResult struct {
	Customer domain.Customer `json:"customer"`
	Points   uint64          `json:"points"`
	Quantity misblock.Asset  `json:"quantity"`
}

// Exchange converts points of owner to MIS sent from the contract account.
func (uc *PointUsecase) Exchange(ctx context.Context, owner string, points uint64) (ExchangeResult, error) {
	if err := RequireIdentity(ctx, owner); err != nil {
		return ExchangeResult{}, err
	}

	var result ExchangeResult
	err := uc.ledger.execute(ctx, "exchangePoints", func(s *session) error {
		if points < s.cfg.MisByPoint {
			return domain.InvalidArgument("at least %d points are required", s.cfg.MisByPoint)
		}
		units, err := domain.ExchangeAmount(points, s.cfg.MisByPoint, uint64(misblock.TokenPrecisionScale))
		if err != nil {
			return err
		}
		memo := fmt.Sprintf("exchange %d points", points)
		c, err := s.debit(owner, points, domain.ReasonExchange, memo)
		if err != nil {
			return err
		}
		if err := s.transfer("exchange:"+uuid.NewString(), owner, units, memo); err != nil {
			return err
		}
		result = ExchangeResult{Customer: c, Points: points, Quantity: misblock.NewMIS(units)}
		s.emit(domain.EventPointsExchanged, owner, result)
		return nil
	})
	return result, err
}

func (uc *PointUsecase) GetCustomer(ctx context.Context, owner string) (domain.Customer, error) {
	var c domain.Customer
	err := uc.ledger.view(ctx, "getCustomer", func(tx Tx) error {
		var err error
		c, err = tx.GetCustomer(owner)
		return err
	})
	return c, err
}

func (uc *PointUsecase) History(ctx context.Context, owner string, limit int) ([]domain.PointEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	var entries []domain.PointEntry
	err := uc.ledger.view(ctx, "pointHistory", func(tx Tx) error {
		var err error
		entries, err = tx.ListPointEntries(owner, limit)
		return err
	})
	return entries, err
}

type SupplyAudit struct {
	TotalPointSupply uint64 `json:"totalPointSupply"`
	SumOfBalances    uint64 `json:"sumOfBalances"`
	Consistent       bool   `json:"consistent"`
}

// Audit compares the recorded supply with the sum of all balances under the ledger lock.
func (uc *PointUsecase) Audit(ctx context.Context) (SupplyAudit, error) {
	if err := uc.ledger.RequireAdmin(ctx); err != nil {
		return SupplyAudit{}, err
	}
	var audit SupplyAudit
	err := uc.ledger.execute(ctx, "auditSupply", func(s *session) error {
		sum, err := s.tx.SumCustomerPoints()
		if err != nil {
			return err
		}
		audit = SupplyAudit{
			TotalPointSupply: s.cfg.TotalPointSupply,
			SumOfBalances:    sum,
			Consistent:       sum == s.cfg.TotalPointSupply,
		}
		return nil
	})
	return audit, err
}

// TransferLog lists the outbound token transfers the ledger made, newest first.
func (uc *PointUsecase) TransferLog(ctx context.Context, limit int) ([]domain.TransferLog, error) {
	if err := uc.ledger.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	var logs []domain.TransferLog
	err := uc.ledger.view(ctx, "transferLog", func(tx Tx) error {
		var err error
		logs, err = tx.ListTransferLogs(limit)
		return err
	})
	return logs, err
}
