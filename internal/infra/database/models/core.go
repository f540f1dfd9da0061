package models

import (
	"time"
)

// LedgerConfig is the singleton row (id = 1) every operation locks first.
type LedgerConfig struct {
	ID               int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	TotalPointSupply int64     `json:"totalPointSupply" gorm:"not null"`
	MisByPoint       int64     `json:"misByPoint" gorm:"not null"`
	LikeReward       int64     `json:"likeReward" gorm:"not null"`
	VerificationKey  string    `json:"verificationKey" gorm:"type:text"`
	LastRewardsEpoch time.Time `json:"lastRewardsEpoch" gorm:"not null"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type Customer struct {
	Owner          string    `json:"owner" gorm:"primaryKey;type:text"`
	Point          int64     `json:"point" gorm:"not null"`
	Tier           int16     `json:"tier" gorm:"not null"`
	RemainingLikes int16     `json:"remainingLikes" gorm:"not null"`
	LastLikeAt     time.Time `json:"lastLikeAt"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Settlement grants Customer one review of Hospital.
type Settlement struct {
	Customer  string    `json:"customer" gorm:"primaryKey;type:text"`
	Hospital  string    `json:"hospital" gorm:"primaryKey;type:text"`
	CreatedAt time.Time `json:"createdAt"`
}

type Hospital struct {
	Owner            string    `json:"owner" gorm:"primaryKey;type:text"`
	URL              string    `json:"url" gorm:"type:text"`
	ServiceWeight    float64   `json:"serviceWeight" gorm:"not null;index:idx_hospital_weight,sort:desc"`
	ReviewCount      int64     `json:"reviewCount" gorm:"not null"`
	EMRSales         int64     `json:"emrSales" gorm:"column:emr_sales;not null"`
	ReviewVisitors   int64     `json:"reviewVisitors" gorm:"not null"`
	TotalReviewsLike int64     `json:"totalReviewsLike" gorm:"not null"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type Review struct {
	ID        string    `json:"id" gorm:"primaryKey;type:text"`
	Owner     string    `json:"owner" gorm:"type:text;index"`
	Hospital  string    `json:"hospital" gorm:"type:text;index"`
	Title     string    `json:"title" gorm:"type:text"`
	Body      string    `json:"body" gorm:"type:text"`
	IsExpired bool      `json:"isExpired" gorm:"not null;index:idx_review_rank,priority:1"`
	Likes     int32     `json:"likes" gorm:"not null;index:idx_review_rank,priority:2,sort:desc"`
	CreatedAt time.Time `json:"createdAt"`
}

type Bill struct {
	ID        string     `json:"id" gorm:"primaryKey;type:text"`
	Customer  string     `json:"customer" gorm:"type:text;index"`
	Hospital  string     `json:"hospital" gorm:"type:text;index"`
	Content   string     `json:"content" gorm:"type:text"`
	Price     int64      `json:"price" gorm:"not null"`
	PaidAt    *time.Time `json:"paidAt"`
	PaidWith  string     `json:"paidWith" gorm:"type:text"`
	ReviewID  *string    `json:"reviewId" gorm:"type:text"`
	CreatedAt time.Time  `json:"createdAt"`
}

type PointEntry struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Owner        string    `json:"owner" gorm:"type:text;index"`
	Delta        int64     `json:"delta" gorm:"not null"`
	BalanceAfter int64     `json:"balanceAfter" gorm:"not null"`
	Reason       string    `json:"reason" gorm:"type:text"`
	Memo         string    `json:"memo" gorm:"type:text"`
	CreatedAt    time.Time `json:"createdAt" gorm:"index"`
}

type TokenTransfer struct {
	ID        int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Key       string     `json:"key" gorm:"column:idempotency_key;type:text;uniqueIndex"`
	From      string     `json:"from" gorm:"column:from_account;type:text;index"`
	To        string     `json:"to" gorm:"column:to_account;type:text;index"`
	Quantity  string     `json:"quantity" gorm:"type:text"`
	Memo      string     `json:"memo" gorm:"type:text"`
	Status    string     `json:"status" gorm:"type:text;index"`
	Attempts  int        `json:"attempts"`
	LastError string     `json:"lastError" gorm:"type:text"`
	SentAt    *time.Time `json:"sentAt"`
	CreatedAt time.Time  `json:"createdAt"`
}
