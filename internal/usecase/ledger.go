package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/misblock"
	"github.com/totegamma/misblock/internal/domain"
	"github.com/totegamma/misblock/internal/metrics"
)

var tracer = otel.Tracer("usecase")

// Ledger owns the transaction boundary shared by every ledger usecase.
type Ledger struct {
	store  Store
	token  TokenTransferer
	events EventPublisher
	cache  RankingCache
	config domain.Config
	clock  domain.Clock
}

func NewLedger(
	store Store,
	token TokenTransferer,
	events EventPublisher,
	config domain.Config,
	clock domain.Clock,
) *Ledger {
	return &Ledger{
		store:  store,
		token:  token,
		events: events,
		config: config,
		clock:  clock,
	}
}

func (l *Ledger) WithRankingCache(cache RankingCache) *Ledger {
	l.cache = cache
	return l
}

func (l *Ledger) Config() domain.Config {
	return l.config
}

// session is the state of one locked ledger transaction.
type session struct {
	ctx    context.Context
	tx     Tx
	ledger *Ledger
	cfg    *domain.LedgerConfig
	now    time.Time

	events   []misblock.Event
	outbox   []domain.TransferLog
	credited map[domain.PointReason]uint64
	debited  map[domain.PointReason]uint64
}

// execute runs fn in a transaction that holds the config lock.
// Queued token transfers, events and metrics only leave once the transaction
// commits.
func (l *Ledger) execute(ctx context.Context, op string, fn func(s *session) error) error {
	ctx, span := tracer.Start(ctx, "Ledger.Usecase."+op)
	defer span.End()

	start := time.Now()
	var committed *session
	err := l.store.Transaction(ctx, func(tx Tx) error {
		now := l.clock.Now()
		cfg, err := tx.LockConfig(domain.DefaultLedgerConfig(now))
		if err != nil {
			return err
		}
		s := &session{
			ctx:      ctx,
			tx:       tx,
			ledger:   l,
			cfg:      &cfg,
			now:      now,
			credited: map[domain.PointReason]uint64{},
			debited:  map[domain.PointReason]uint64{},
		}
		if err := fn(s); err != nil {
			return err
		}
		if err := tx.SaveConfig(cfg); err != nil {
			return err
		}
		committed = s
		return nil
	})
	metrics.ObserveOperation(op, err, time.Since(start))
	if err != nil {
		span.RecordError(pkgerrors.Wrap(err, op))
		span.SetAttributes(attribute.String("result", domain.KindOf(err).String()))
		return err
	}

	for reason, amount := range committed.credited {
		metrics.PointsCredited.WithLabelValues(string(reason)).Add(float64(amount))
	}
	for reason, amount := range committed.debited {
		metrics.PointsDebited.WithLabelValues(string(reason)).Add(float64(amount))
	}
	metrics.TotalPointSupply.Set(float64(committed.cfg.TotalPointSupply))

	l.deliver(ctx, committed.outbox)
	l.publish(ctx, committed.events)
	return nil
}

// deliver sends committed transfers. A failed send stays pending for
// ResendPending.
func (l *Ledger) deliver(ctx context.Context, outbox []domain.TransferLog) int {
	delivered := 0
	for _, entry := range outbox {
		if err := l.send(ctx, entry); err != nil {
			slog.WarnContext(
				ctx, "token transfer left pending",
				slog.String("key", entry.Key),
				slog.String("to", entry.To),
				slog.String("error", err.Error()),
				slog.String("module", "ledger"),
			)
			continue
		}
		delivered++
	}
	return delivered
}

func (l *Ledger) send(ctx context.Context, entry domain.TransferLog) error {
	if l.token == nil {
		return errors.New("token transferer is not configured")
	}
	quantity, err := misblock.ParseAsset(entry.Quantity)
	if err != nil {
		return pkgerrors.Wrapf(err, "transfer %s", entry.Key)
	}

	sendErr := l.token.Transfer(ctx, entry.Key, entry.From, entry.To, quantity, entry.Memo)
	now := l.clock.Now()
	err = l.store.Transaction(ctx, func(tx Tx) error {
		if sendErr != nil {
			return tx.MarkTransferFailed(entry.Key, sendErr.Error())
		}
		return tx.MarkTransferSent(entry.Key, now)
	})
	if sendErr != nil {
		return pkgerrors.Wrapf(sendErr, "transfer %s to %s", quantity, entry.To)
	}
	metrics.TokensTransferred.Add(float64(quantity.Amount))
	// an unmarked transfer is resent later under the same key
	return err
}

// ResendPending retries up to limit transfers that were committed but never
// confirmed by the token service. It returns how many went through.
func (l *Ledger) ResendPending(ctx context.Context, limit int) (int, error) {
	ctx, span := tracer.Start(ctx, "Ledger.Usecase.resendPending")
	defer span.End()

	var pending []domain.TransferLog
	err := l.store.Transaction(ctx, func(tx Tx) error {
		var err error
		pending, err = tx.ListPendingTransfers(limit)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	metrics.PendingTransfers.Set(float64(len(pending)))
	if len(pending) == 0 {
		return 0, nil
	}
	delivered := l.deliver(ctx, pending)
	metrics.PendingTransfers.Set(float64(len(pending) - delivered))
	return delivered, nil
}

// view runs read only work without taking the ledger lock.
func (l *Ledger) view(ctx context.Context, op string, fn func(tx Tx) error) error {
	ctx, span := tracer.Start(ctx, "Ledger.Usecase."+op)
	defer span.End()

	err := l.store.Transaction(ctx, fn)
	if err != nil {
		span.RecordError(pkgerrors.Wrap(err, op))
	}
	return err
}

func (l *Ledger) publish(ctx context.Context, events []misblock.Event) {
	if l.events == nil {
		return
	}
	for _, event := range events {
		if err := l.events.Publish(ctx, event.Channel, event); err != nil {
			slog.WarnContext(
				ctx, "failed to publish ledger event",
				slog.String("type", event.Type),
				slog.String("error", err.Error()),
				slog.String("module", "ledger"),
			)
		}
	}
}

func (s *session) emit(eventType, subject string, payload any) {
	s.events = append(s.events, misblock.Event{
		ID:        uuid.NewString(),
		Channel:   domain.LedgerChannel,
		Type:      eventType,
		Subject:   subject,
		Payload:   payload,
		Timestamp: s.now,
	})
}

func (s *session) loadCustomer(owner string) (domain.Customer, error) {
	c, err := s.tx.GetCustomer(owner)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewCustomer(owner, s.now), nil
	}
	return c, err
}

// credit adds points to owner, creating the account on first use.
func (s *session) credit(owner string, amount uint64, reason domain.PointReason, memo string) (domain.Customer, error) {
	if !misblock.IsValidName(owner) {
		return domain.Customer{}, domain.InvalidArgument("invalid account name %q", owner)
	}
	if amount > domain.MaxPoint {
		return domain.Customer{}, domain.InvalidArgument("amount out of range")
	}
	c, err := s.loadCustomer(owner)
	if err != nil {
		return domain.Customer{}, err
	}
	if err := c.Credit(amount); err != nil {
		return domain.Customer{}, err
	}
	if err := s.cfg.AddSupply(amount); err != nil {
		return domain.Customer{}, err
	}
	if err := s.tx.SaveCustomer(c); err != nil {
		return domain.Customer{}, err
	}
	err = s.tx.AppendPointEntry(domain.PointEntry{
		Owner:        owner,
		Delta:        int64(amount),
		BalanceAfter: c.Point,
		Reason:       reason,
		Memo:         memo,
		CreatedAt:    s.now,
	})
	if err != nil {
		return domain.Customer{}, err
	}
	s.credited[reason] += amount
	s.emit(domain.EventPointsCredited, owner, domain.PointEntry{Owner: owner, Delta: int64(amount), BalanceAfter: c.Point, Reason: reason, Memo: memo})
	return c, nil
}

func (s *session) debit(owner string, amount uint64, reason domain.PointReason, memo string) (domain.Customer, error) {
	if amount > domain.MaxPoint {
		return domain.Customer{}, domain.InvalidArgument("amount out of range")
	}
	c, err := s.tx.GetCustomer(owner)
	if err != nil {
		return domain.Customer{}, err
	}
	if err := c.Debit(amount); err != nil {
		return domain.Customer{}, err
	}
	if err := s.cfg.SubSupply(amount); err != nil {
		return domain.Customer{}, err
	}
	if err := s.tx.SaveCustomer(c); err != nil {
		return domain.Customer{}, err
	}
	err = s.tx.AppendPointEntry(domain.PointEntry{
		Owner:        owner,
		Delta:        -int64(amount),
		BalanceAfter: c.Point,
		Reason:       reason,
		Memo:         memo,
		CreatedAt:    s.now,
	})
	if err != nil {
		return domain.Customer{}, err
	}
	s.debited[reason] += amount
	s.emit(domain.EventPointsDebited, owner, domain.PointEntry{Owner: owner, Delta: -int64(amount), BalanceAfter: c.Point, Reason: reason, Memo: memo})
	return c, nil
}

// transfer queues units of MIS to leave the contract account under key.
// A key queued before is skipped.
func (s *session) transfer(key, to string, units int64, memo string) error {
	if units <= 0 {
		return nil
	}
	entry := domain.TransferLog{
		Key:       key,
		From:      s.ledger.config.Contract,
		To:        to,
		Quantity:  misblock.NewMIS(units).String(),
		Memo:      memo,
		Status:    domain.TransferPending,
		CreatedAt: s.now,
	}
	queued, err := s.tx.EnqueueTransfer(entry)
	if err != nil {
		return err
	}
	if queued {
		s.outbox = append(s.outbox, entry)
	}
	return nil
}

func (s *session) recordActivity(hospital string, kind domain.ActivityKind) (domain.Hospital, error) {
	h, err := s.tx.GetHospital(hospital)
	if err != nil {
		return domain.Hospital{}, err
	}
	h.Record(kind)
	h.UpdatedAt = s.now
	if err := s.tx.SaveHospital(h); err != nil {
		return domain.Hospital{}, err
	}
	s.emit(domain.EventHospitalActivity, hospital, map[string]any{
		"kind":          kind.String(),
		"serviceWeight": h.ServiceWeight,
	})
	return h, nil
}
