package consumer

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/totegamma/misblock"
	"github.com/totegamma/misblock/internal/domain"
	"github.com/totegamma/misblock/internal/metrics"
	"github.com/totegamma/misblock/internal/usecase"
)

const (
	DefaultTopic = "misblock.token.transfer"

	maxHandlerRetries = 3
	retryBackoff      = 100 * time.Millisecond
	metricsSource     = "kafka"
)

// Reader is the part of *kafka.Reader the consumer uses.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Config struct {
	Brokers []string
	GroupID string
	Topic   string
}

func NewReader(cfg Config) *kafka.Reader {
	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 1 << 20,
	})
}

// TransferConsumer feeds token transfer notifications from a topic into the ledger.
type TransferConsumer struct {
	reader    Reader
	transfers *usecase.TransferUsecase
	relay     string
	backoff   time.Duration
	closeOnce sync.Once
}

// NewTransferConsumer acts on behalf of relay, the token contract account.
func NewTransferConsumer(reader Reader, transfers *usecase.TransferUsecase, relay string) *TransferConsumer {
	return &TransferConsumer{
		reader:    reader,
		transfers: transfers,
		relay:     relay,
		backoff:   retryBackoff,
	}
}

// Start consumes until ctx is canceled.
func (c *TransferConsumer) Start(ctx context.Context) error {
	slog.Info("transfer consumer started", slog.String("module", "consumer"))

	for {
		select {
		case <-ctx.Done():
			return c.Close()
		default:
		}

		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return c.Close()
			}
			slog.Error("failed to fetch message", slog.String("error", err.Error()), slog.String("module", "consumer"))
			continue
		}

		if !c.handle(ctx, msg) {
			return c.Close()
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			slog.Error("failed to commit message", slog.String("error", err.Error()), slog.String("module", "consumer"))
		}
	}
}

// handle processes one message. It returns false when ctx ended mid retry,
// leaving the message uncommitted.
func (c *TransferConsumer) handle(ctx context.Context, msg kafka.Message) bool {
	var n misblock.TransferNotification
	if err := json.Unmarshal(msg.Value, &n); err != nil {
		slog.Error(
			"failed to decode transfer notification",
			slog.String("error", err.Error()),
			slog.Int64("offset", msg.Offset),
			slog.String("module", "consumer"),
		)
		metrics.TransfersReceived.WithLabelValues(metricsSource, "malformed").Inc()
		return true
	}

	ctx = usecase.WithRequester(ctx, c.relay)

	var lastErr error
	for attempt := 1; attempt <= maxHandlerRetries; attempt++ {
		result, err := c.transfers.OnTransfer(ctx, n)
		if err == nil {
			metrics.TransfersReceived.WithLabelValues(metricsSource, string(result.Outcome)).Inc()
			return true
		}
		if domain.KindOf(err) != domain.KindUnknown {
			// rejected by the ledger; replaying cannot change the outcome
			slog.Warn(
				"transfer notification rejected",
				slog.String("from", n.From),
				slog.String("memo", n.Memo),
				slog.String("error", err.Error()),
				slog.String("module", "consumer"),
			)
			metrics.TransfersReceived.WithLabelValues(metricsSource, "rejected").Inc()
			return true
		}

		lastErr = err
		slog.Warn(
			"transfer handler failed, will retry",
			slog.String("error", err.Error()),
			slog.Int64("offset", msg.Offset),
			slog.Int("attempt", attempt),
			slog.String("module", "consumer"),
		)
		if attempt < maxHandlerRetries {
			select {
			case <-ctx.Done():
				return false
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
		}
	}

	slog.Error(
		"transfer handler failed after all retries, skipping message",
		slog.String("from", n.From),
		slog.String("memo", n.Memo),
		slog.String("error", lastErr.Error()),
		slog.Int64("offset", msg.Offset),
		slog.String("module", "consumer"),
	)
	metrics.TransfersReceived.WithLabelValues(metricsSource, "failed").Inc()
	return true
}

func (c *TransferConsumer) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.reader.Close()
	})
	return err
}
