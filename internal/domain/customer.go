package domain

import (
	"time"
)

// Customer is a point account.
type Customer struct {
	Owner          string    `json:"owner"`
	Point          uint64    `json:"point"`
	Tier           Tier      `json:"tier"`
	RemainingLikes uint8     `json:"remainingLikes"`
	LastLikeAt     time.Time `json:"lastLikeAt"`
	CreatedAt      time.Time `json:"createdAt"`
}

func NewCustomer(owner string, now time.Time) Customer {
	return Customer{
		Owner:          owner,
		Tier:           TierBaby,
		RemainingLikes: DailyLikeQuota,
		CreatedAt:      now,
	}
}

func (c *Customer) Credit(amount uint64) error {
	if amount == 0 {
		return InvalidArgument("amount must be positive")
	}
	if c.Point > MaxPoint-amount {
		return InvalidArgument("point balance overflow")
	}
	c.Point += amount
	c.Tier = TierOf(c.Point)
	return nil
}

func (c *Customer) Debit(amount uint64) error {
	if amount == 0 {
		return InvalidArgument("amount must be positive")
	}
	if c.Point < amount {
		return LedgerError{Kind: KindInsufficientBalance, Reason: "not enough points"}
	}
	c.Point -= amount
	c.Tier = TierOf(c.Point)
	return nil
}

// ConsumeLike takes one like from the daily quota.
// The first like of a new day leaves two remaining.
func (c *Customer) ConsumeLike(clock Clock, now time.Time) error {
	if clock.DayEpoch(now) > clock.DayEpoch(c.LastLikeAt) {
		c.RemainingLikes = DailyLikeQuota - 1
	} else {
		if c.RemainingLikes == 0 {
			return LedgerError{Kind: KindQuotaExhausted, Reason: "no likes left today"}
		}
		c.RemainingLikes--
	}
	c.LastLikeAt = now
	return nil
}
