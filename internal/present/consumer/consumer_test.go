package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totegamma/misblock"
	"github.com/totegamma/misblock/internal/domain"
	"github.com/totegamma/misblock/internal/infra/database"
	"github.com/totegamma/misblock/internal/infra/repository"
	"github.com/totegamma/misblock/internal/usecase"
)

const (
	contract = "mis.system"
	relay    = "mis.token"
)

type fakeReader struct {
	queue     []kafka.Message
	committed []kafka.Message
	total     int
	cancel    context.CancelFunc
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.queue) == 0 {
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.queue[0]
	r.queue = r.queue[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.committed = append(r.committed, msgs...)
	if len(r.committed) == r.total {
		r.cancel()
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

type flakyToken struct {
	attempts int
	fail     bool
}

func (f *flakyToken) Transfer(ctx context.Context, key, from, to string, quantity misblock.Asset, memo string) error {
	f.attempts++
	if f.fail {
		return errors.New("token service unavailable")
	}
	return nil
}

// flakyStore fails the next failures transactions.
type flakyStore struct {
	usecase.Store
	failures int
	calls    int
}

func (s *flakyStore) Transaction(ctx context.Context, fn func(tx usecase.Tx) error) error {
	s.calls++
	if s.failures > 0 {
		s.failures--
		return errors.New("database is unavailable")
	}
	return s.Store.Transaction(ctx, fn)
}

func message(t *testing.T, offset int64, n misblock.TransferNotification) kafka.Message {
	t.Helper()
	value, err := json.Marshal(n)
	require.NoError(t, err)
	return kafka.Message{Offset: offset, Value: value}
}

func TestTransferConsumer(t *testing.T) {
	db, err := database.NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	token := &flakyToken{}
	store := &flakyStore{Store: repository.NewLedgerRepository(db)}
	ledger := usecase.NewLedger(
		store,
		token,
		nil,
		domain.Config{Contract: contract, Admin: "misadmin", TokenContract: relay},
		domain.NewClock(domain.LedgerZone),
	)
	hospitals := usecase.NewHospitalUsecase(ledger)
	bills := usecase.NewBillUsecase(ledger)

	hctx := usecase.WithRequester(context.Background(), "hospitala")
	_, err = hospitals.Register(hctx, "hospitala", "url")
	require.NoError(t, err)
	bill, err := bills.Issue(hctx, "hospitala", "alice", "checkup", 1000000)
	require.NoError(t, err)

	msgs := []kafka.Message{
		message(t, 1, misblock.TransferNotification{From: "alice", To: contract, Quantity: misblock.NewMIS(1)}),
		{Offset: 2, Value: []byte("not json")},
		message(t, 3, misblock.TransferNotification{From: "alice", To: contract, Quantity: misblock.NewMIS(0), Memo: "payconsmis:x"}),
		message(t, 4, misblock.TransferNotification{From: "alice", To: contract, Quantity: misblock.NewMIS(1000000), Memo: "paybillmis:" + bill.ID}),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	reader := &fakeReader{queue: msgs, total: len(msgs), cancel: cancel}

	c := NewTransferConsumer(reader, usecase.NewTransferUsecase(ledger), relay)
	c.backoff = time.Millisecond
	store.failures = maxHandlerRetries
	store.calls = 0
	require.NoError(t, c.Start(ctx))

	require.Len(t, reader.committed, 4)
	assert.True(t, reader.closed)
	assert.Equal(t, maxHandlerRetries, store.calls)
	assert.Zero(t, token.attempts)

	got, err := bills.Get(hctx, bill.ID)
	require.NoError(t, err)
	assert.False(t, got.IsPaid())
}

func TestTransferConsumerSettles(t *testing.T) {
	db, err := database.NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	token := &flakyToken{}
	ledger := usecase.NewLedger(
		repository.NewLedgerRepository(db),
		token,
		nil,
		domain.Config{Contract: contract, Admin: "misadmin", TokenContract: relay},
		domain.NewClock(domain.LedgerZone),
	)
	hctx := usecase.WithRequester(context.Background(), "hospitala")
	_, err = usecase.NewHospitalUsecase(ledger).Register(hctx, "hospitala", "url")
	require.NoError(t, err)
	bills := usecase.NewBillUsecase(ledger)
	bill, err := bills.Issue(hctx, "hospitala", "alice", "checkup", 1000000)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	reader := &fakeReader{
		queue: []kafka.Message{
			message(t, 1, misblock.TransferNotification{From: "alice", To: contract, Quantity: misblock.NewMIS(1000000), Memo: "paybillmis:" + bill.ID}),
		},
		total:  1,
		cancel: cancel,
	}
	require.NoError(t, NewTransferConsumer(reader, usecase.NewTransferUsecase(ledger), relay).Start(ctx))

	got, err := bills.Get(hctx, bill.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPaid())
	assert.Equal(t, 1, token.attempts)
}
