package domain

import (
	"time"
)

// Config is the identity of this ledger deployment.
type Config struct {
	Contract      string `yaml:"contract" env:"CONTRACT"`            // account that holds the ledger's tokens
	Admin         string `yaml:"admin" env:"ADMIN"`                  // operator allowed to run privileged operations
	TokenContract string `yaml:"tokenContract" env:"TOKEN_CONTRACT"` // account of the MIS token contract
	AuthKey       string `yaml:"authKey" env:"AUTH_KEY"`             // public key of the bearer token issuer
	Audience      string `yaml:"audience" env:"AUDIENCE"`
}

// LedgerConfig is the singleton row every operation locks first.
type LedgerConfig struct {
	TotalPointSupply uint64    `json:"totalPointSupply"`
	MisByPoint       uint64    `json:"misByPoint"`
	LikeReward       uint64    `json:"likeReward"`
	VerificationKey  string    `json:"verificationKey,omitempty"`
	LastRewardsEpoch time.Time `json:"lastRewardsEpoch"`
}

const (
	DefaultMisByPoint uint64 = 100
	DefaultLikeReward uint64 = 20
)

func DefaultLedgerConfig(now time.Time) LedgerConfig {
	return LedgerConfig{
		MisByPoint:       DefaultMisByPoint,
		LikeReward:       DefaultLikeReward,
		LastRewardsEpoch: now,
	}
}

func (c *LedgerConfig) AddSupply(amount uint64) error {
	if c.TotalPointSupply > MaxPoint-amount {
		return InvalidArgument("total point supply overflow")
	}
	c.TotalPointSupply += amount
	return nil
}

func (c *LedgerConfig) SubSupply(amount uint64) error {
	if c.TotalPointSupply < amount {
		return InvalidArgument("total point supply underflow")
	}
	c.TotalPointSupply -= amount
	return nil
}
