package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/totegamma/misblock"
	"github.com/totegamma/misblock/internal/domain"
	"github.com/totegamma/misblock/internal/infra/database"
	"github.com/totegamma/misblock/internal/infra/repository"
	"github.com/totegamma/misblock/internal/usecase"
)

const (
	contract = "mis.system"
	admin    = "misadmin"
	relay    = "mis.token"
)

type transferCall struct {
	Key      string
	From     string
	To       string
	Quantity misblock.Asset
	Memo     string
}

// mockToken applies each key once, like the token service. fail rejects
// every call; failOn rejects only the nth call.
type mockToken struct {
	mu       sync.Mutex
	calls    []transferCall
	applied  map[string]bool
	attempts int
	fail     error
	failOn   int
}

func (m *mockToken) Transfer(ctx context.Context, key, from, to string, quantity misblock.Asset, memo string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts++
	if m.fail != nil {
		return m.fail
	}
	if m.attempts == m.failOn {
		return errors.New("token service down")
	}
	if m.applied == nil {
		m.applied = map[string]bool{}
	}
	if m.applied[key] {
		return nil
	}
	m.applied[key] = true
	m.calls = append(m.calls, transferCall{Key: key, From: from, To: to, Quantity: quantity, Memo: memo})
	return nil
}

func (m *mockToken) sentTo(to string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	for _, c := range m.calls {
		if c.To == to {
			total += c.Quantity.Amount
		}
	}
	return total
}

type mockPublisher struct {
	mu     sync.Mutex
	events []misblock.Event
}

func (m *mockPublisher) Publish(ctx context.Context, channel string, event misblock.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *mockPublisher) types() []string {
	types := make([]string, 0, len(m.events))
	for _, e := range m.events {
		types = append(types, e.Type)
	}
	return types
}

type harness struct {
	now    time.Time
	repo   *repository.LedgerRepository
	ledger *usecase.Ledger
	token  *mockToken
	pub    *mockPublisher

	config    *usecase.ConfigUsecase
	points    *usecase.PointUsecase
	hospitals *usecase.HospitalUsecase
	reviews   *usecase.ReviewUsecase
	bills     *usecase.BillUsecase
	rewards   *usecase.RewardUsecase
	transfers *usecase.TransferUsecase
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := database.NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	h := &harness{
		now:   time.Date(2024, 5, 10, 12, 0, 0, 0, domain.LedgerZone),
		repo:  repository.NewLedgerRepository(db),
		token: &mockToken{},
		pub:   &mockPublisher{},
	}
	clock := domain.Clock{
		Location: domain.LedgerZone,
		NowFunc:  func() time.Time { return h.now },
	}
	cfg := domain.Config{Contract: contract, Admin: admin, TokenContract: relay}
	ledger := usecase.NewLedger(h.repo, h.token, h.pub, cfg, clock)
	h.ledger = ledger

	h.config = usecase.NewConfigUsecase(ledger)
	h.points = usecase.NewPointUsecase(ledger)
	h.hospitals = usecase.NewHospitalUsecase(ledger)
	h.reviews = usecase.NewReviewUsecase(ledger)
	h.bills = usecase.NewBillUsecase(ledger)
	h.rewards = usecase.NewRewardUsecase(ledger)
	h.transfers = usecase.NewTransferUsecase(ledger)
	return h
}

func as(identity string) context.Context {
	return usecase.WithRequester(context.Background(), identity)
}

func (h *harness) advance(d time.Duration) {
	h.now = h.now.Add(d)
}

// settle gives customer a settlement with hospital through a confirmed cash bill.
func (h *harness) settle(t *testing.T, customer, hospital string) domain.Bill {
	t.Helper()
	_, err := h.hospitals.Register(as(hospital), hospital, "https://"+hospital+".example")
	require.NoError(t, err)
	bill, err := h.bills.Issue(as(hospital), hospital, customer, "checkup", 1000000)
	require.NoError(t, err)
	bill, err = h.bills.ConfirmCash(as(hospital), hospital, customer, bill.ID, "")
	require.NoError(t, err)
	return bill
}

// postReview settles and posts an unsigned review.
func (h *harness) postReview(t *testing.T, customer, hospital, reviewID string) domain.Review {
	t.Helper()
	h.settle(t, customer, hospital)
	review, err := h.reviews.Post(as(customer), usecase.PostReviewInput{
		Owner:    customer,
		Hospital: hospital,
		ReviewID: reviewID,
		Title:    "visit",
		Body:     `{"stars":5}`,
	})
	require.NoError(t, err)
	return review
}

func (h *harness) update(t *testing.T, fn func(tx usecase.Tx) error) {
	t.Helper()
	require.NoError(t, h.repo.Transaction(context.Background(), fn))
}

func (h *harness) requireConsistentSupply(t *testing.T) {
	t.Helper()
	audit, err := h.points.Audit(as(admin))
	require.NoError(t, err)
	require.True(t, audit.Consistent, "supply %d != balances %d", audit.TotalPointSupply, audit.SumOfBalances)
}

func (h *harness) transferLog(t *testing.T) []domain.TransferLog {
	t.Helper()
	logs, err := h.points.TransferLog(as(admin), 100)
	require.NoError(t, err)
	return logs
}
