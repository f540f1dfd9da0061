package gateway

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/misblock"
	"github.com/totegamma/misblock/client"
	"github.com/totegamma/misblock/internal/metrics"
)

var tracer = otel.Tracer("gateway")

// TokenGateway moves MIS through the token service.
type TokenGateway struct {
	client *client.Client
}

func NewTokenGateway(cl *client.Client) *TokenGateway {
	return &TokenGateway{client: cl}
}

// BreakerObserver reports breaker transitions to the logs and the state gauge.
// Pass it as client.Options.OnStateChange.
func BreakerObserver(from, to gobreaker.State) {
	slog.Warn(
		"token service breaker state change",
		slog.String("from", from.String()),
		slog.String("to", to.String()),
		slog.String("module", "gateway"),
	)
	metrics.TokenBreakerState.Set(breakerStateValue(to))
}

func breakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// Transfer sends quantity under key. A key the service has already applied
// counts as delivered.
func (g *TokenGateway) Transfer(ctx context.Context, key, from, to string, quantity misblock.Asset, memo string) error {
	ctx, span := tracer.Start(ctx, "Gateway.Token.Transfer")
	defer span.End()
	span.SetAttributes(
		attribute.String("key", key),
		attribute.String("to", to),
		attribute.String("quantity", quantity.String()),
	)

	receipt, err := g.client.Transfer(ctx, client.TransferRequest{
		IdempotencyKey: key,
		From:           from,
		To:             to,
		Quantity:       quantity,
		Memo:           memo,
	})
	var se *client.StatusError
	if errors.As(err, &se) && se.Code == http.StatusConflict {
		slog.InfoContext(
			ctx, "token transfer was already applied",
			slog.String("key", key),
			slog.String("module", "gateway"),
		)
		return nil
	}
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "token service transfer")
	}

	slog.DebugContext(
		ctx, "token transfer sent",
		slog.String("key", key),
		slog.String("to", to),
		slog.String("quantity", quantity.String()),
		slog.String("txId", receipt.TxID),
		slog.String("module", "gateway"),
	)
	return nil
}

// Ping checks the token service for the health endpoint.
func (g *TokenGateway) Ping(ctx context.Context) error {
	return g.client.Health(ctx)
}
