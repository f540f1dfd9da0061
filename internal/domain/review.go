package domain

import (
	"time"
)

type Review struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Hospital  string    `json:"hospital"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Likes     int32     `json:"likes"`
	IsExpired bool      `json:"isExpired"`
	CreatedAt time.Time `json:"createdAt"`
}

func ValidateReview(id, title, body string) error {
	if id == "" || len(id) > MaxReviewIDLen {
		return InvalidArgument("review id must be 1 to %d characters", MaxReviewIDLen)
	}
	if len(title) >= MaxTitleLength {
		return InvalidArgument("title must be shorter than %d bytes", MaxTitleLength)
	}
	if body == "" || body[0] != '{' {
		return InvalidArgument("review body must be a JSON object")
	}
	if len(body) >= MaxBodyLength {
		return InvalidArgument("review body must be shorter than %d bytes", MaxBodyLength)
	}
	return nil
}

// RankReward is the point reward for the review at rank r (0 based).
func RankReward(r int) uint64 {
	step := ReviewRewardStep * uint64(r)
	if step >= ReviewRewardBase {
		return 0
	}
	return ReviewRewardBase - step
}
