package domain

import (
	"strings"
)

const (
	ActionPayBillToken = "paybillmis"
	ActionPayBillCash  = "paybillcash"
	ActionPayConsult   = "payconsmis"
)

// TransferCommand is the instruction carried by an inbound transfer memo.
type TransferCommand interface {
	Action() string
}

// Deposit is a transfer without a memo.
type Deposit struct{}

func (Deposit) Action() string { return "" }

// PayBillWithToken settles a bill with the transferred tokens.
// The transfer sender is the customer.
type PayBillWithToken struct {
	BillID   string
	ReviewID string
}

func (PayBillWithToken) Action() string { return ActionPayBillToken }

// PayBillWithCash confirms a bill the hospital collected in cash.
// The transfer sender is the hospital.
type PayBillWithCash struct {
	Customer string
	BillID   string
	ReviewID string
}

func (PayBillWithCash) Action() string { return ActionPayBillCash }

// DecodeTransferMemo parses "action[:p1[:p2...]]".
func DecodeTransferMemo(memo string) (TransferCommand, error) {
	if memo == "" {
		return Deposit{}, nil
	}
	if len(memo) > MaxMemoLength {
		return nil, InvalidAction("memo is too long")
	}

	parts := strings.Split(memo, ":")
	action, params := parts[0], parts[1:]
	for _, p := range params {
		if p == "" {
			return nil, InvalidAction("empty parameter in memo %q", memo)
		}
	}

	switch action {
	case ActionPayBillToken:
		switch len(params) {
		case 1:
			return PayBillWithToken{BillID: params[0]}, nil
		case 2:
			return PayBillWithToken{BillID: params[0], ReviewID: params[1]}, nil
		}
	case ActionPayBillCash:
		switch len(params) {
		case 2:
			return PayBillWithCash{Customer: params[0], BillID: params[1]}, nil
		case 3:
			return PayBillWithCash{Customer: params[0], BillID: params[1], ReviewID: params[2]}, nil
		}
	case ActionPayConsult:
		return nil, InvalidAction("consultation payment is not supported")
	default:
		return nil, InvalidAction("unknown action %q", action)
	}
	return nil, InvalidAction("wrong number of parameters for %s", action)
}
