package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/totegamma/misblock"
	"github.com/totegamma/misblock/internal/domain"
)

type TransferOutcome string

const (
	TransferIgnored   TransferOutcome = "ignored"
	TransferDeposited TransferOutcome = "deposited"
	TransferSettled   TransferOutcome = "settled"
)

type TransferResult struct {
	Outcome TransferOutcome `json:"outcome"`
	Action  string          `json:"action,omitempty"`
	Bill    *domain.Bill    `json:"bill,omitempty"`
}

type TransferUsecase struct {
	ledger *Ledger
}

func NewTransferUsecase(ledger *Ledger) *TransferUsecase {
	return &TransferUsecase{ledger: ledger}
}

// OnTransfer handles a transfer observed on the token contract.
// Only transfers into the contract account carry commands.
func (uc *TransferUsecase) OnTransfer(ctx context.Context, n misblock.TransferNotification) (TransferResult, error) {
	if err := uc.ledger.requireRelay(ctx); err != nil {
		return TransferResult{}, err
	}

	contract := uc.ledger.config.Contract
	if n.From == contract || n.To != contract {
		return TransferResult{Outcome: TransferIgnored}, nil
	}
	if !n.Quantity.IsMIS() {
		return TransferResult{}, domain.InvalidArgument("unexpected token %s", n.Quantity.Symbol)
	}

	cmd, err := domain.DecodeTransferMemo(n.Memo)
	if err != nil {
		return TransferResult{}, uc.refund(ctx, n, err)
	}

	var input settlement
	switch c := cmd.(type) {
	case domain.Deposit:
		slog.InfoContext(
			ctx, "deposit received",
			slog.String("from", n.From),
			slog.String("quantity", n.Quantity.String()),
			slog.String("module", "transfer"),
		)
		return TransferResult{Outcome: TransferDeposited}, nil
	case domain.PayBillWithToken:
		input = settlement{
			method:   domain.PaymentToken,
			customer: n.From,
			billID:   c.BillID,
			reviewID: c.ReviewID,
			paid:     n.Quantity,
		}
	case domain.PayBillWithCash:
		input = settlement{
			method:   domain.PaymentCash,
			hospital: n.From,
			customer: c.Customer,
			billID:   c.BillID,
			reviewID: c.ReviewID,
		}
	default:
		return TransferResult{}, uc.refund(ctx, n, domain.InvalidAction("unsupported action %q", cmd.Action()))
	}

	var bill domain.Bill
	err = uc.ledger.execute(ctx, "payBill", func(s *session) error {
		var err error
		bill, err = s.settle(input)
		return err
	})
	if err != nil {
		return TransferResult{}, uc.refund(ctx, n, err)
	}
	bill = bill.Redacted()
	return TransferResult{Outcome: TransferSettled, Action: cmd.Action(), Bill: &bill}, nil
}

// refund queues a rejected inbound transfer back to its sender and returns
// the rejection. Errors that are not ledger rejections pass through unchanged.
func (uc *TransferUsecase) refund(ctx context.Context, n misblock.TransferNotification, rejection error) error {
	var le domain.LedgerError
	if !errors.As(rejection, &le) || n.Quantity.Amount <= 0 {
		return rejection
	}

	key := "refund:" + n.TxID
	if n.TxID == "" {
		key = "refund:" + uuid.NewString()
	}
	memo := "refund: " + le.Kind.String()
	if le.Reason != "" {
		memo += ": " + le.Reason
	}
	if len(memo) > domain.MaxMemoLength {
		memo = memo[:domain.MaxMemoLength]
	}

	refunded := false
	err := uc.ledger.execute(ctx, "refundTransfer", func(s *session) error {
		if err := s.transfer(key, n.From, n.Quantity.Amount, memo); err != nil {
			return err
		}
		if len(s.outbox) == 0 {
			// refunded on an earlier delivery
			return nil
		}
		refunded = true
		s.emit(domain.EventTransferRefunded, n.From, map[string]any{
			"quantity": n.Quantity.String(),
			"memo":     n.Memo,
			"reason":   rejection.Error(),
		})
		return nil
	})
	if err != nil {
		return pkgerrors.Wrap(err, "refund rejected transfer")
	}
	if !refunded {
		return rejection
	}

	slog.InfoContext(
		ctx, "rejected transfer refunded",
		slog.String("to", n.From),
		slog.String("quantity", n.Quantity.String()),
		slog.String("reason", rejection.Error()),
		slog.String("module", "transfer"),
	)
	return rejection
}
