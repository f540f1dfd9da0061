package domain

import (
	"time"
)

const (
	LedgerChannel = "misblock.ledger"
)

const (
	EventConfigUpdated      = "config.updated"
	EventPointsCredited     = "points.credited"
	EventPointsDebited      = "points.debited"
	EventPointsExchanged    = "points.exchanged"
	EventHospitalRegistered = "hospital.registered"
	EventHospitalActivity   = "hospital.activity"
	EventReviewPosted       = "review.posted"
	EventReviewLiked        = "review.liked"
	EventBillIssued         = "bill.issued"
	EventBillPaid           = "bill.paid"
	EventRewardsDistributed = "rewards.distributed"
	EventTransferRefunded   = "transfer.refunded"
)

type PointReason string

const (
	ReasonCredit       PointReason = "credit"
	ReasonDebit        PointReason = "debit"
	ReasonLike         PointReason = "like"
	ReasonBill         PointReason = "bill"
	ReasonReviewReward PointReason = "review_reward"
	ReasonExchange     PointReason = "exchange"
)

// PointEntry is one line of the points journal.
type PointEntry struct {
	ID           int64       `json:"id"`
	Owner        string      `json:"owner"`
	Delta        int64       `json:"delta"`
	BalanceAfter uint64      `json:"balanceAfter"`
	Reason       PointReason `json:"reason"`
	Memo         string      `json:"memo,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
}

type TransferStatus string

const (
	TransferPending TransferStatus = "pending"
	TransferSent    TransferStatus = "sent"
)

// TransferLog is an outbound token transfer. It is queued inside the ledger
// transaction and sent once that transaction commits. Key is unique and is
// handed to the token service so a resend never pays twice.
type TransferLog struct {
	ID        int64          `json:"id"`
	Key       string         `json:"key"`
	From      string         `json:"from"`
	To        string         `json:"to"`
	Quantity  string         `json:"quantity"`
	Memo      string         `json:"memo"`
	Status    TransferStatus `json:"status"`
	Attempts  int            `json:"attempts"`
	LastError string         `json:"lastError,omitempty"`
	SentAt    *time.Time     `json:"sentAt,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

type HospitalPayout struct {
	Hospital      string  `json:"hospital"`
	ServiceWeight float64 `json:"serviceWeight"`
	Quantity      string  `json:"quantity"`
}

type ReviewPayout struct {
	ReviewID string `json:"reviewId"`
	Owner    string `json:"owner"`
	Likes    int32  `json:"likes"`
	Points   uint64 `json:"points"`
}

// RewardSummary is the outcome of a monthly distribution.
type RewardSummary struct {
	Epoch     time.Time        `json:"epoch"`
	Hospitals []HospitalPayout `json:"hospitals"`
	Reviews   []ReviewPayout   `json:"reviews"`
}
