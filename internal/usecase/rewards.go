package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/totegamma/misblock"
	"github.com/totegamma/misblock/internal/domain"
)

type RewardUsecase struct {
	ledger *Ledger
}

func NewRewardUsecase(ledger *Ledger) *RewardUsecase {
	return &RewardUsecase{ledger: ledger}
}

// Distribute pays the monthly hospital and review rewards. It runs at most
// once per calendar month of the ledger clock. Admin only.
func (uc *RewardUsecase) Distribute(ctx context.Context) (domain.RewardSummary, error) {
	if err := uc.ledger.RequireAdmin(ctx); err != nil {
		return domain.RewardSummary{}, err
	}

	var summary domain.RewardSummary
	err := uc.ledger.execute(ctx, "distributeRewards", func(s *session) error {
		clock := s.ledger.clock
		if clock.MonthEpoch(s.now) <= clock.MonthEpoch(s.cfg.LastRewardsEpoch) {
			return domain.LedgerError{Kind: domain.KindAlreadyDistributed, Reason: "rewards were already distributed this month"}
		}

		summary = domain.RewardSummary{
			Epoch:     s.now,
			Hospitals: []domain.HospitalPayout{},
			Reviews:   []domain.ReviewPayout{},
		}

		hospitals, err := s.tx.TopHospitals(domain.RankedHospitals)
		if err != nil {
			return err
		}
		for _, h := range hospitals {
			if h.ServiceWeight <= 0 {
				break
			}
			key := fmt.Sprintf("rewards:%d:%s", clock.MonthEpoch(s.now), h.Owner)
			if err := s.transfer(key, h.Owner, domain.HospitalReward, "monthly hospital reward"); err != nil {
				return err
			}
			summary.Hospitals = append(summary.Hospitals, domain.HospitalPayout{
				Hospital:      h.Owner,
				ServiceWeight: h.ServiceWeight,
				Quantity:      misblock.NewMIS(domain.HospitalReward).String(),
			})
			h.ResetPeriod()
			h.UpdatedAt = s.now
			if err := s.tx.SaveHospital(h); err != nil {
				return err
			}
		}

		reviews, err := s.tx.TopReviews(domain.RankedReviews, domain.MinRewardLikes)
		if err != nil {
			return err
		}
		for rank, r := range reviews {
			tier := domain.TierBaby
			author, err := s.tx.GetCustomer(r.Owner)
			if err == nil {
				tier = author.Tier
			} else if !errors.Is(err, domain.ErrNotFound) {
				return err
			}

			base := domain.RankReward(rank)
			points := base + domain.TierBonus(base, tier)
			if points > 0 {
				if _, err := s.credit(r.Owner, points, domain.ReasonReviewReward, r.ID); err != nil {
					return err
				}
			}
			r.IsExpired = true
			if err := s.tx.SaveReview(r); err != nil {
				return err
			}
			summary.Reviews = append(summary.Reviews, domain.ReviewPayout{
				ReviewID: r.ID,
				Owner:    r.Owner,
				Likes:    r.Likes,
				Points:   points,
			})
		}

		s.cfg.LastRewardsEpoch = s.now
		s.emit(domain.EventRewardsDistributed, "", summary)
		return nil
	})
	return summary, err
}
