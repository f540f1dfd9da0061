package rest

import (
	"github.com/totegamma/misblock/internal/domain"
	"github.com/totegamma/misblock/internal/utils"
)

type rankedHospital struct {
	Rank int `json:"rank"`
	domain.Hospital
}

type rankedReview struct {
	Rank   int    `json:"rank"`
	Reward uint64 `json:"reward"` // base reward before the tier bonus
	domain.Review
}

// rankHospitals keys the ranking by owner, in rank order.
func rankHospitals(hospitals []domain.Hospital) *utils.OrderedMap[rankedHospital] {
	m := utils.NewOrderedMap[rankedHospital](len(hospitals))
	for i, h := range hospitals {
		m.Set(h.Owner, rankedHospital{Rank: i + 1, Hospital: h})
	}
	return m
}

func rankReviews(reviews []domain.Review) *utils.OrderedMap[rankedReview] {
	m := utils.NewOrderedMap[rankedReview](len(reviews))
	for i, r := range reviews {
		m.Set(r.ID, rankedReview{Rank: i + 1, Reward: domain.RankReward(i), Review: r})
	}
	return m
}
