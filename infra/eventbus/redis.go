package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/venuehq/payouts/pkg/domain/events"
	"github.com/venuehq/payouts/pkg/eventbus"
)

// RedisBus publishes events to a Redis stream and consumes them through a
// consumer group. Messages whose handler fails or panics go to a DLQ stream
// for inspection.
type RedisBus struct {
	client *redis.Client
	stream string
	group  string
	logger *slog.Logger
}

// NewWithRedis creates a Redis Streams event bus and ensures the stream and
// consumer group exist.
func NewWithRedis(url, stream, group string, logger *slog.Logger) (*RedisBus, error) {
	if url == "" || stream == "" || group == "" {
		return nil, fmt.Errorf("redis event bus: url, stream and group are required")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis event bus: invalid url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis event bus: connection failed: %w", err)
	}

	bus := &RedisBus{
		client: client,
		stream: stream,
		group:  group,
		logger: logger.With("bus", "redis"),
	}
	_ = client.XGroupCreateMkStream(context.Background(), stream, group, "0")
	return bus, nil
}

// Emit publishes the event onto the stream.
func (b *RedisBus) Emit(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("redis event bus: marshal failed: %w", err)
	}
	envBytes, err := json.Marshal(envelope{Type: event.Type(), Payload: payload})
	if err != nil {
		return fmt.Errorf("redis event bus: envelope marshal failed: %w", err)
	}

	err = b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: b.stream,
		Values: map[string]any{"event": string(envBytes)},
	}).Err()
	if err != nil {
		return fmt.Errorf("redis event bus: emit failed: %w", err)
	}
	return nil
}

// Register starts a consumer goroutine for the event type. It reads the
// group, decodes matching envelopes, and acks each message after handling.
func (b *RedisBus) Register(eventType string, handler eventbus.HandlerFunc) {
	consumer := fmt.Sprintf("consumer-%s-%d", eventType, time.Now().UnixNano())
	b.logger.Info("registering handler", "event_type", eventType, "consumer", consumer)

	go func() {
		ctx := context.Background()
		for {
			res, err := b.client.XReadGroup(ctx, &redis.XReadGroupArgs{
				Group:    b.group,
				Consumer: consumer,
				Streams:  []string{b.stream, ">"},
				Count:    1,
				Block:    5 * time.Second,
			}).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) {
					b.logger.Error("stream read failed", "error", err, "consumer", consumer)
				}
				time.Sleep(time.Second)
				continue
			}

			for _, stream := range res {
				for _, msg := range stream.Messages {
					b.handleMessage(ctx, eventType, handler, msg)
				}
			}
		}
	}()
}

func (b *RedisBus) handleMessage(
	ctx context.Context,
	eventType string,
	handler eventbus.HandlerFunc,
	msg redis.XMessage,
) {
	defer func() {
		if err := b.client.XAck(ctx, b.stream, b.group, msg.ID).Err(); err != nil {
			b.logger.Error("ack failed", "error", err, "msg_id", msg.ID)
		}
	}()

	raw, ok := msg.Values["event"].(string)
	if !ok {
		return
	}
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		b.logger.Error("envelope decode failed", "error", err)
		return
	}
	if env.Type != eventType {
		return
	}

	factory, ok := events.Factories[env.Type]
	if !ok {
		b.logger.Error("unknown event type", "event_type", env.Type)
		b.pushToDLQ(ctx, msg.Values)
		return
	}
	evt := factory()
	if err := json.Unmarshal(env.Payload, evt); err != nil {
		b.logger.Error("payload decode failed", "error", err, "event_type", env.Type)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panic recovered", "panic", r, "event_type", env.Type)
			b.pushToDLQ(ctx, msg.Values)
		}
	}()
	if err := handler(ctx, evt); err != nil {
		b.logger.Error("handler failed", "error", err, "event_type", env.Type)
		b.pushToDLQ(ctx, msg.Values)
	}
}

// pushToDLQ copies the raw message onto a side stream for reprocessing.
func (b *RedisBus) pushToDLQ(ctx context.Context, values map[string]any) {
	dlq := b.stream + "-DLQ"
	if err := b.client.XAdd(ctx, &redis.XAddArgs{Stream: dlq, Values: values}).Err(); err != nil {
		b.logger.Error("DLQ push failed", "error", err, "stream", dlq)
		return
	}
	b.logger.Warn("event pushed to DLQ", "stream", dlq)
}

var _ eventbus.Bus = (*RedisBus)(nil)
