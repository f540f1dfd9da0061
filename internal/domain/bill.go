package domain

import (
	"time"
)

type PaymentMethod string

const (
	PaymentToken PaymentMethod = "token"
	PaymentCash  PaymentMethod = "cash"
)

type Bill struct {
	ID        string        `json:"id"`
	Customer  string        `json:"customer"`
	Hospital  string        `json:"hospital"`
	Content   string        `json:"content,omitempty"`
	Price     int64         `json:"price"`
	PaidAt    *time.Time    `json:"paidAt,omitempty"`
	PaidWith  PaymentMethod `json:"paidWith,omitempty"`
	ReviewID  *string       `json:"reviewId,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Redacted is the bill without its medical content.
func (b Bill) Redacted() Bill {
	b.Content = ""
	return b
}

// ReadableBy reports whether who may see the bill.
func (b *Bill) ReadableBy(who, admin string) bool {
	return who != "" && (who == b.Customer || who == b.Hospital || who == admin)
}

func (b *Bill) IsPaid() bool {
	return b.PaidAt != nil
}

func (b *Bill) MarkPaid(method PaymentMethod, reviewID string, now time.Time) error {
	if b.IsPaid() {
		return ErrBillSettled
	}
	b.PaidAt = &now
	b.PaidWith = method
	if reviewID != "" {
		b.ReviewID = &reviewID
	}
	return nil
}

func ValidateBill(content string, price int64) error {
	if len(content) >= MaxContentLength {
		return InvalidArgument("content must be shorter than %d bytes", MaxContentLength)
	}
	if price < MinBillPrice {
		return InvalidArgument("price must be at least %d units", MinBillPrice)
	}
	return nil
}

// Split is the reward share of a settled bill, in percent of its price.
type Split struct {
	Payer  uint64
	Author uint64
}

// SplitFor returns the shares for a payment path. Token payments reward
// points, cash payments reward MIS.
func SplitFor(method PaymentMethod, withReview bool) Split {
	switch method {
	case PaymentToken:
		if withReview {
			return Split{Payer: 5, Author: 4}
		}
		return Split{Payer: 3}
	case PaymentCash:
		if withReview {
			return Split{Payer: 50, Author: 40}
		}
		return Split{Payer: 30}
	}
	return Split{}
}
