package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/totegamma/misblock"
	"github.com/totegamma/misblock/internal/domain"
)

type ReviewUsecase struct {
	ledger *Ledger
}

func NewReviewUsecase(ledger *Ledger) *ReviewUsecase {
	return &ReviewUsecase{ledger: ledger}
}

// PostReviewInput is a review submission. Signature is the optional hex
// encoded recoverable signature over misblock.SignedReview.Message.
type PostReviewInput struct {
	Owner     string
	Hospital  string
	ReviewID  string
	Title     string
	Body      string
	Signature string
}

func (uc *ReviewUsecase) Post(ctx context.Context, input PostReviewInput) (domain.Review, error) {
	if err := RequireIdentity(ctx, input.Owner); err != nil {
		return domain.Review{}, err
	}
	if err := domain.ValidateReview(input.ReviewID, input.Title, input.Body); err != nil {
		return domain.Review{}, err
	}

	var result domain.Review
	err := uc.ledger.execute(ctx, "postReview", func(s *session) error {
		_, err := s.tx.GetReview(input.ReviewID)
		if err == nil {
			return domain.DuplicateKey("review %s already exists", input.ReviewID)
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		if _, err := s.tx.GetHospital(input.Hospital); err != nil {
			return err
		}

		settled, err := s.tx.HasSettlement(input.Owner, input.Hospital)
		if err != nil {
			return err
		}
		if !settled {
			return domain.Unauthorized("%s has no settled bill with %s", input.Owner, input.Hospital)
		}

		if input.Signature != "" {
			if err := verifyReviewSignature(s.cfg.VerificationKey, input); err != nil {
				return err
			}
		}

		if err := s.tx.RemoveSettlement(input.Owner, input.Hospital); err != nil {
			return err
		}

		review := domain.Review{
			ID:        input.ReviewID,
			Owner:     input.Owner,
			Hospital:  input.Hospital,
			Title:     input.Title,
			Body:      input.Body,
			CreatedAt: s.now,
		}
		if err := s.tx.CreateReview(review); err != nil {
			return err
		}
		if _, err := s.recordActivity(input.Hospital, domain.ActivityReview); err != nil {
			return err
		}
		result = review
		s.emit(domain.EventReviewPosted, review.ID, review)
		return nil
	})
	return result, err
}

func verifyReviewSignature(key string, input PostReviewInput) error {
	if key == "" {
		return domain.InvalidSignature("no verification key is configured")
	}
	sig, err := misblock.DecodeSignature(input.Signature)
	if err != nil {
		return domain.InvalidSignature("%v", err)
	}
	message := misblock.SignedReview{
		Owner:    input.Owner,
		Hospital: input.Hospital,
		ReviewID: input.ReviewID,
		Title:    input.Title,
		Body:     input.Body,
	}.Message()
	if err := misblock.VerifySignature(message, sig, key); err != nil {
		return domain.InvalidSignature("%v", err)
	}
	return nil
}

type LikeResult struct {
	Review   domain.Review   `json:"review"`
	Customer domain.Customer `json:"customer"`
	Reward   uint64          `json:"reward"`
}

// Like adds the like of owner to a review and pays the like reward.
func (uc *ReviewUsecase) Like(ctx context.Context, owner, reviewID string) (LikeResult, error) {
	if err := RequireIdentity(ctx, owner); err != nil {
		return LikeResult{}, err
	}
	if !misblock.IsValidName(owner) {
		return LikeResult{}, domain.InvalidArgument("invalid account name %q", owner)
	}

	var result LikeResult
	err := uc.ledger.execute(ctx, "like", func(s *session) error {
		review, err := s.tx.GetReview(reviewID)
		if err != nil {
			return err
		}
		if review.IsExpired {
			return domain.ErrReviewExpired
		}

		c, err := s.loadCustomer(owner)
		if err != nil {
			return err
		}
		tier := c.Tier
		if err := c.ConsumeLike(s.ledger.clock, s.now); err != nil {
			return err
		}
		if err := s.tx.SaveCustomer(c); err != nil {
			return err
		}

		reward := s.cfg.LikeReward + domain.TierBonus(s.cfg.LikeReward, tier)
		c, err = s.credit(owner, reward, domain.ReasonLike, reviewID)
		if err != nil {
			return err
		}

		review.Likes++
		if err := s.tx.SaveReview(review); err != nil {
			return err
		}
		if _, err := s.recordActivity(review.Hospital, domain.ActivityLike); err != nil {
			return err
		}

		result = LikeResult{Review: review, Customer: c, Reward: reward}
		s.emit(domain.EventReviewLiked, review.ID, result)
		return nil
	})
	return result, err
}

func (uc *ReviewUsecase) Get(ctx context.Context, id string) (domain.Review, error) {
	var r domain.Review
	err := uc.ledger.view(ctx, "getReview", func(tx Tx) error {
		var err error
		r, err = tx.GetReview(id)
		return err
	})
	return r, err
}

// Ranking lists the live reviews a distribution would pay right now.
func (uc *ReviewUsecase) Ranking(ctx context.Context, limit int) ([]domain.Review, error) {
	if limit <= 0 || limit > domain.RankedReviews {
		limit = domain.RankedReviews
	}
	key := fmt.Sprintf("ranking:reviews:%d", limit)

	var reviews []domain.Review
	if uc.ledger.cache != nil && uc.ledger.cache.Load(ctx, key, &reviews) {
		return reviews, nil
	}
	err := uc.ledger.view(ctx, "reviewRanking", func(tx Tx) error {
		var err error
		reviews, err = tx.TopReviews(limit, domain.MinRewardLikes)
		return err
	})
	if err != nil {
		return nil, err
	}
	if uc.ledger.cache != nil {
		uc.ledger.cache.Store(ctx, key, reviews)
	}
	return reviews, nil
}
