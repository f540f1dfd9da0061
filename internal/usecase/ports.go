package usecase

import (
	"context"
	"time"

	"github.com/totegamma/misblock"
	"github.com/totegamma/misblock/internal/domain"
)

// Store runs ledger work inside one database transaction.
type Store interface {
	Transaction(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is typed table access bound to an open transaction and its context.
// Lookups of missing rows fail with domain.ErrNotFound.
type Tx interface {
	// LockConfig takes the ledger-wide lock. The row is created from defaults when absent.
	LockConfig(defaults domain.LedgerConfig) (domain.LedgerConfig, error)
	GetConfig() (domain.LedgerConfig, error)
	SaveConfig(cfg domain.LedgerConfig) error

	GetCustomer(owner string) (domain.Customer, error)
	SaveCustomer(c domain.Customer) error
	SumCustomerPoints() (uint64, error)
	AppendPointEntry(e domain.PointEntry) error
	ListPointEntries(owner string, limit int) ([]domain.PointEntry, error)

	HasSettlement(customer, hospital string) (bool, error)
	AddSettlement(customer, hospital string) error
	RemoveSettlement(customer, hospital string) error

	GetHospital(owner string) (domain.Hospital, error)
	SaveHospital(h domain.Hospital) error
	// TopHospitals returns hospitals with a positive weight, heaviest first.
	TopHospitals(limit int) ([]domain.Hospital, error)

	GetReview(id string) (domain.Review, error)
	CreateReview(r domain.Review) error
	SaveReview(r domain.Review) error
	// TopReviews returns live reviews with at least minLikes likes, most liked first.
	TopReviews(limit int, minLikes int32) ([]domain.Review, error)

	GetBill(id string) (domain.Bill, error)
	CreateBill(b domain.Bill) error
	SaveBill(b domain.Bill) error

	// EnqueueTransfer queues a pending transfer. It reports false when the
	// key is already queued.
	EnqueueTransfer(l domain.TransferLog) (bool, error)
	MarkTransferSent(key string, at time.Time) error
	MarkTransferFailed(key string, reason string) error
	// ListPendingTransfers returns unsent transfers, oldest first.
	ListPendingTransfers(limit int) ([]domain.TransferLog, error)
	// ListTransferLogs returns outbound token transfers, newest first.
	ListTransferLogs(limit int) ([]domain.TransferLog, error)
}

// TokenTransferer moves MIS on the external token contract. Calls sharing a
// key must move tokens at most once.
type TokenTransferer interface {
	Transfer(ctx context.Context, key, from, to string, quantity misblock.Asset, memo string) error
}

// EventPublisher fans committed ledger events out to subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, event misblock.Event) error
}

// RankingCache keeps short lived copies of ranking reads.
type RankingCache interface {
	Load(ctx context.Context, key string, dst any) bool
	Store(ctx context.Context, key string, value any)
}
