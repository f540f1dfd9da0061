package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/totegamma/misblock"
	"github.com/totegamma/misblock/internal/domain"
)

type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) Publish(ctx context.Context, channel string, event misblock.Event) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, channel, jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Realtime forwards events of the channels last sent on input to output until
// ctx is done. It closes output on return.
func (s *SignalService) Realtime(ctx context.Context, input <-chan []string, output chan<- misblock.Event) {
	defer close(output)

	var pubsub *redis.PubSub
	var messages <-chan *redis.Message
	defer func() {
		if pubsub != nil {
			pubsub.Close()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case channels, ok := <-input:
			if !ok {
				return
			}
			if pubsub != nil {
				pubsub.Close()
				pubsub, messages = nil, nil
			}
			channels = ListenableChannels(channels)
			if len(channels) == 0 {
				continue
			}
			pubsub = s.rdb.Subscribe(ctx, channels...)
			messages = pubsub.Channel()
		case msg, ok := <-messages:
			if !ok {
				messages = nil
				continue
			}
			var event misblock.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.ErrorContext(
					ctx, "failed to decode event",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				continue
			}
			select {
			case output <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}

// ListenableChannels keeps the channels a client may subscribe to. Every
// ledger event is published on domain.LedgerChannel alone.
func ListenableChannels(channels []string) []string {
	for _, ch := range channels {
		if ch == domain.LedgerChannel {
			return []string{domain.LedgerChannel}
		}
	}
	return []string{}
}
