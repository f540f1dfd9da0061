package domain

import (
	"time"
)

type Hospital struct {
	Owner            string    `json:"owner"`
	URL              string    `json:"url"`
	ServiceWeight    float64   `json:"serviceWeight"`
	ReviewCount      uint64    `json:"reviewCount"`
	EMRSales         uint64    `json:"emrSales"`
	ReviewVisitors   uint64    `json:"reviewVisitors"`
	TotalReviewsLike uint64    `json:"totalReviewsLike"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Recompute derives ServiceWeight from the accumulators.
func (h *Hospital) Recompute() {
	h.ServiceWeight = float64(h.ReviewCount) +
		float64(h.EMRSales) +
		float64(h.ReviewVisitors)*100 +
		float64(h.TotalReviewsLike)*0.01
}

func (h *Hospital) Record(kind ActivityKind) {
	switch kind {
	case ActivityReview:
		h.ReviewCount++
	case ActivityEMRSale:
		h.EMRSales++
	case ActivityVisitor:
		h.ReviewVisitors++
	case ActivityLike:
		h.TotalReviewsLike++
	}
	h.Recompute()
}

// ResetPeriod clears the accumulators paid out by a monthly distribution.
// ReviewCount is lifetime and survives.
func (h *Hospital) ResetPeriod() {
	h.EMRSales = 0
	h.ReviewVisitors = 0
	h.TotalReviewsLike = 0
	h.Recompute()
}

func ValidateURL(url string) error {
	if len(url) >= MaxURLLength {
		return InvalidArgument("url must be shorter than %d bytes", MaxURLLength)
	}
	return nil
}
