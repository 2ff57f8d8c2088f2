package caching

import (
	"context"
	"encoding/json"
	"fmt"

	"invoicedesk/internal/store"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultChangeChannel is the pub/sub channel carrying committed changes
const DefaultChangeChannel = "invoicedesk:changes"

// ChangeFeed publishes and streams store change events over Redis pub/sub.
// Events published while nobody is subscribed are lost; subscribers treat an
// event only as a hint to re-read state.
type ChangeFeed struct {
	client  redis.UniversalClient
	channel string
	buffer  int
	logger  zerolog.Logger
}

// NewChangeFeed creates a change feed on channel, or DefaultChangeChannel if empty
func NewChangeFeed(client redis.UniversalClient, channel string, logger zerolog.Logger) *ChangeFeed {
	if channel == "" {
		channel = DefaultChangeChannel
	}
	return &ChangeFeed{
		client:  client,
		channel: channel,
		buffer:  32,
		logger:  logger.With().Str("component", "change_feed").Logger(),
	}
}

// Publish sends every event in one pipeline
func (f *ChangeFeed) Publish(ctx context.Context, events ...store.ChangeEvent) error {
	if len(events) == 0 {
		return nil
	}
	payloads := make([][]byte, 0, len(events))
	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("encode change event: %w", err)
		}
		payloads = append(payloads, data)
	}

	_, err := f.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, data := range payloads {
			pipe.Publish(ctx, f.channel, data)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("publish change events: %w", err)
	}
	return nil
}

// Subscribe streams events of the given kinds. The channel is closed after
// cancel is called or ctx ends.
func (f *ChangeFeed) Subscribe(ctx context.Context, kinds ...store.EntityKind) (<-chan store.ChangeEvent, func(), error) {
	pubsub := f.client.Subscribe(ctx, f.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe to %s: %w", f.channel, err)
	}

	wanted := make(map[store.EntityKind]bool, len(kinds))
	for _, k := range kinds {
		wanted[k] = true
	}

	ctx, cancel := context.WithCancel(ctx)
	out := make(chan store.ChangeEvent, f.buffer)

	go func() {
		defer close(out)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var ev store.ChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					f.logger.Warn().Err(err).Msg("dropping malformed change event")
					continue
				}
				if len(wanted) > 0 && !wanted[ev.Kind] {
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, cancel, nil
}
