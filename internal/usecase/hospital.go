package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/totegamma/misblock"
	"github.com/totegamma/misblock/internal/domain"
)

type HospitalUsecase struct {
	ledger *Ledger
}

func NewHospitalUsecase(ledger *Ledger) *HospitalUsecase {
	return &HospitalUsecase{ledger: ledger}
}

// Register creates the hospital of owner or updates its url.
// Only the owner itself may register.
func (uc *HospitalUsecase) Register(ctx context.Context, owner, url string) (domain.Hospital, error) {
	if err := RequireIdentity(ctx, owner); err != nil {
		return domain.Hospital{}, err
	}
	if !misblock.IsValidName(owner) {
		return domain.Hospital{}, domain.InvalidArgument("invalid account name %q", owner)
	}
	if err := domain.ValidateURL(url); err != nil {
		return domain.Hospital{}, err
	}

	var result domain.Hospital
	err := uc.ledger.execute(ctx, "registerHospital", func(s *session) error {
		h, err := s.tx.GetHospital(owner)
		if errors.Is(err, domain.ErrNotFound) {
			h = domain.Hospital{Owner: owner, CreatedAt: s.now}
			h.Recompute()
		} else if err != nil {
			return err
		}
		h.URL = url
		h.UpdatedAt = s.now
		if err := s.tx.SaveHospital(h); err != nil {
			return err
		}
		result = h
		s.emit(domain.EventHospitalRegistered, owner, h)
		return nil
	})
	return result, err
}

// RecordEMRSale counts one medical record sale towards the hospital weight. Admin only.
func (uc *HospitalUsecase) RecordEMRSale(ctx context.Context, hospital string) (domain.Hospital, error) {
	if err := uc.ledger.RequireAdmin(ctx); err != nil {
		return domain.Hospital{}, err
	}
	var result domain.Hospital
	err := uc.ledger.execute(ctx, "recordEMRSale", func(s *session) error {
		h, err := s.recordActivity(hospital, domain.ActivityEMRSale)
		result = h
		return err
	})
	return result, err
}

func (uc *HospitalUsecase) Get(ctx context.Context, owner string) (domain.Hospital, error) {
	var h domain.Hospital
	err := uc.ledger.view(ctx, "getHospital", func(tx Tx) error {
		var err error
		h, err = tx.GetHospital(owner)
		return err
	})
	return h, err
}

// Ranking lists the hospitals a distribution would pay right now.
func (uc *HospitalUsecase) Ranking(ctx context.Context, limit int) ([]domain.Hospital, error) {
	if limit <= 0 || limit > domain.RankedHospitals {
		limit = domain.RankedHospitals
	}
	key := fmt.Sprintf("ranking:hospitals:%d", limit)

	var hospitals []domain.Hospital
	if uc.ledger.cache != nil && uc.ledger.cache.Load(ctx, key, &hospitals) {
		return hospitals, nil
	}
	err := uc.ledger.view(ctx, "hospitalRanking", func(tx Tx) error {
		var err error
		hospitals, err = tx.TopHospitals(limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	if uc.ledger.cache != nil {
		uc.ledger.cache.Store(ctx, key, hospitals)
	}
	return hospitals, nil
}
