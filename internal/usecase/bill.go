package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/totegamma/misblock"
	"github.com/totegamma/misblock/internal/domain"
)

type BillUsecase struct {
	ledger *Ledger
}

func NewBillUsecase(ledger *Ledger) *BillUsecase {
	return &BillUsecase{ledger: ledger}
}

// Issue creates a bill of hospital addressed to customer.
func (uc *BillUsecase) Issue(ctx context.Context, hospital, customer, content string, price int64) (domain.Bill, error) {
	if err := RequireIdentity(ctx, hospital); err != nil {
		return domain.Bill{}, err
	}
	if !misblock.IsValidName(customer) {
		return domain.Bill{}, domain.InvalidArgument("invalid account name %q", customer)
	}
	if err := domain.ValidateBill(content, price); err != nil {
		return domain.Bill{}, err
	}

	var result domain.Bill
	err := uc.ledger.execute(ctx, "issueBill", func(s *session) error {
		if _, err := s.tx.GetHospital(hospital); err != nil {
			return err
		}
		bill := domain.Bill{
			ID:        uuid.NewString(),
			Customer:  customer,
			Hospital:  hospital,
			Content:   content,
			Price:     price,
			CreatedAt: s.now,
		}
		if err := s.tx.CreateBill(bill); err != nil {
			return err
		}
		result = bill
		s.emit(domain.EventBillIssued, bill.ID, bill.Redacted())
		return nil
	})
	return result, err
}

// ConfirmCash settles a bill the hospital collected in cash.
func (uc *BillUsecase) ConfirmCash(ctx context.Context, hospital, customer, billID, reviewID string) (domain.Bill, error) {
	if err := RequireIdentity(ctx, hospital); err != nil {
		return domain.Bill{}, err
	}
	var result domain.Bill
	err := uc.ledger.execute(ctx, "payBill", func(s *session) error {
		bill, err := s.settle(settlement{
			method:   domain.PaymentCash,
			hospital: hospital,
			customer: customer,
			billID:   billID,
			reviewID: reviewID,
		})
		result = bill
		return err
	})
	return result, err
}

// Get reads a bill. Only its customer, its hospital and the admin may.
func (uc *BillUsecase) Get(ctx context.Context, id string) (domain.Bill, error) {
	requester, ok := Requester(ctx)
	if !ok {
		return domain.Bill{}, domain.Unauthorized("missing requester")
	}
	var b domain.Bill
	err := uc.ledger.view(ctx, "getBill", func(tx Tx) error {
		var err error
		b, err = tx.GetBill(id)
		return err
	})
	if err != nil {
		return domain.Bill{}, err
	}
	if !b.ReadableBy(requester, uc.ledger.config.Admin) {
		return domain.Bill{}, domain.Unauthorized("%s cannot read bill %s", requester, id)
	}
	return b, nil
}

type settlement struct {
	method   domain.PaymentMethod
	hospital string // set on the cash path, where the hospital confirms
	customer string
	billID   string
	reviewID string
	paid     misblock.Asset // set on the token path
}

// settle pays out a bill. Token payments forward the price less the protocol
// fee to the hospital and reward points; cash payments reward MIS.
func (s *session) settle(p settlement) (domain.Bill, error) {
	bill, err := s.tx.GetBill(p.billID)
	if err != nil {
		return domain.Bill{}, err
	}
	if bill.Customer != p.customer {
		return domain.Bill{}, domain.NotFound("bill")
	}
	if p.method == domain.PaymentCash && bill.Hospital != p.hospital {
		return domain.Bill{}, domain.Unauthorized("%s did not issue bill %s", p.hospital, bill.ID)
	}
	if bill.IsPaid() {
		return domain.Bill{}, domain.ErrBillSettled
	}

	var review *domain.Review
	if p.reviewID != "" {
		r, err := s.tx.GetReview(p.reviewID)
		if err != nil {
			return domain.Bill{}, err
		}
		if r.Hospital != bill.Hospital {
			return domain.Bill{}, domain.ErrInvalidReview
		}
		review = &r
	}

	split := domain.SplitFor(p.method, review != nil)
	price := uint64(bill.Price)

	switch p.method {
	case domain.PaymentToken:
		if !p.paid.IsMIS() || p.paid.Amount != bill.Price {
			return domain.Bill{}, domain.InvalidArgument("bill %s costs %s, got %s", bill.ID, misblock.NewMIS(bill.Price), p.paid)
		}
		fee := domain.PercentOfPrice(bill.Price, domain.ProtocolFeePercent)
		if err := s.transfer(billTransferKey(bill.ID, "hospital"), bill.Hospital, bill.Price-fee, "bill payment "+bill.ID); err != nil {
			return domain.Bill{}, err
		}
		if _, err := s.credit(bill.Customer, domain.PercentOf(price, split.Payer), domain.ReasonBill, bill.ID); err != nil {
			return domain.Bill{}, err
		}
		if review != nil {
			if _, err := s.credit(review.Owner, domain.PercentOf(price, split.Author), domain.ReasonBill, bill.ID); err != nil {
				return domain.Bill{}, err
			}
		}
	case domain.PaymentCash:
		if err := s.transfer(billTransferKey(bill.ID, "payer"), bill.Customer, domain.PercentOfPrice(bill.Price, split.Payer), "bill reward "+bill.ID); err != nil {
			return domain.Bill{}, err
		}
		if review != nil {
			if err := s.transfer(billTransferKey(bill.ID, "author"), review.Owner, domain.PercentOfPrice(bill.Price, split.Author), "review reward "+bill.ID); err != nil {
				return domain.Bill{}, err
			}
		}
	default:
		return domain.Bill{}, domain.InvalidArgument("unknown payment method %q", p.method)
	}

	if review != nil {
		if _, err := s.recordActivity(bill.Hospital, domain.ActivityVisitor); err != nil {
			return domain.Bill{}, err
		}
	}
	if err := s.tx.AddSettlement(bill.Customer, bill.Hospital); err != nil {
		return domain.Bill{}, err
	}
	if err := bill.MarkPaid(p.method, p.reviewID, s.now); err != nil {
		return domain.Bill{}, err
	}
	if err := s.tx.SaveBill(bill); err != nil {
		return domain.Bill{}, err
	}
	s.emit(domain.EventBillPaid, bill.ID, bill.Redacted())
	return bill, nil
}

func billTransferKey(billID, party string) string {
	return "bill:" + billID + ":" + party
}
