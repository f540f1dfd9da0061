package usecase

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/totegamma/misblock"
	"github.com/totegamma/misblock/internal/domain"
)

type ConfigUsecase struct {
	ledger *Ledger
}

func NewConfigUsecase(ledger *Ledger) *ConfigUsecase {
	return &ConfigUsecase{ledger: ledger}
}

func (uc *ConfigUsecase) SetExchangeRatio(ctx context.Context, misByPoint uint64) (domain.LedgerConfig, error) {
	if err := uc.ledger.RequireAdmin(ctx); err != nil {
		return domain.LedgerConfig{}, err
	}
	if misByPoint == 0 {
		return domain.LedgerConfig{}, domain.InvalidArgument("exchange ratio must be positive")
	}
	return uc.update(ctx, "setExchangeRatio", func(cfg *domain.LedgerConfig) {
		cfg.MisByPoint = misByPoint
	})
}

// SetVerificationKey sets the key review signatures must recover to.
// An empty key clears it, after which signed reviews are rejected.
func (uc *ConfigUsecase) SetVerificationKey(ctx context.Context, key string) (domain.LedgerConfig, error) {
	if err := uc.ledger.RequireAdmin(ctx); err != nil {
		return domain.LedgerConfig{}, err
	}
	normalized := ""
	if key != "" {
		var err error
		normalized, err = misblock.NormalizePublicKey(key)
		if err != nil {
			return domain.LedgerConfig{}, domain.InvalidArgument("invalid verification key: %v", err)
		}
	}
	return uc.update(ctx, "setVerificationKey", func(cfg *domain.LedgerConfig) {
		cfg.VerificationKey = normalized
	})
}

func (uc *ConfigUsecase) SetLikeReward(ctx context.Context, reward uint64) (domain.LedgerConfig, error) {
	if err := uc.ledger.RequireAdmin(ctx); err != nil {
		return domain.LedgerConfig{}, err
	}
	if reward == 0 || reward > domain.MaxPoint {
		return domain.LedgerConfig{}, domain.InvalidArgument("like reward out of range")
	}
	return uc.update(ctx, "setLikeReward", func(cfg *domain.LedgerConfig) {
		cfg.LikeReward = reward
	})
}

func (uc *ConfigUsecase) update(ctx context.Context, op string, apply func(cfg *domain.LedgerConfig)) (domain.LedgerConfig, error) {
	var result domain.LedgerConfig
	err := uc.ledger.execute(ctx, op, func(s *session) error {
		apply(s.cfg)
		result = *s.cfg
		s.emit(domain.EventConfigUpdated, op, result)
		return nil
	})
	return result, err
}

func (uc *ConfigUsecase) Get(ctx context.Context) (domain.LedgerConfig, error) {
	var cfg domain.LedgerConfig
	err := uc.ledger.view(ctx, "getConfig", func(tx Tx) error {
		var err error
		cfg, err = tx.GetConfig()
		if errors.Is(err, domain.ErrNotFound) {
			cfg = domain.DefaultLedgerConfig(uc.ledger.clock.Now())
			return nil
		}
		return err
	})
	if err != nil {
		return domain.LedgerConfig{}, err
	}
	return cfg, nil
}

// RecoverKey returns the public key that produced signature over the hex
// encoded digest. Admin only; used to debug rejected review signatures.
func (uc *ConfigUsecase) RecoverKey(ctx context.Context, digest, signature string) (string, error) {
	if err := uc.ledger.RequireAdmin(ctx); err != nil {
		return "", err
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(digest, "0x"))
	if err != nil || len(raw) != 32 {
		return "", domain.InvalidArgument("digest must be 32 hex encoded bytes")
	}
	sig, err := misblock.DecodeSignature(signature)
	if err != nil {
		return "", domain.InvalidSignature("%v", err)
	}
	key, err := misblock.RecoverKey(raw, sig)
	if err != nil {
		return "", domain.InvalidSignature("%v", err)
	}
	return key, nil
}
