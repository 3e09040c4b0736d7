//go:build kafka
// +build kafka

package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/venuehq/payouts/pkg/domain/events"
	"github.com/venuehq/payouts/pkg/eventbus"
)

// KafkaBusConfig holds the Kafka bus settings.
type KafkaBusConfig struct {
	GroupID      string
	TopicPrefix  string
	SASLUsername string
	SASLPassword string
}

// KafkaBus publishes events to one topic per event type and runs one
// consumer group reader per registered type. Failed messages are republished
// to a per-type DLQ topic.
type KafkaBus struct {
	brokers []string
	writer  *kafka.Writer
	dialer  *kafka.Dialer
	config  KafkaBusConfig
	logger  *slog.Logger

	mu      sync.Mutex
	readers map[string]*kafka.Reader

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWithKafka creates a Kafka-backed event bus. brokers is a comma-separated
// list of broker addresses.
func NewWithKafka(brokers string, config KafkaBusConfig, logger *slog.Logger) (*KafkaBus, error) {
	parsed := parseBrokers(brokers)
	if len(parsed) == 0 {
		return nil, fmt.Errorf("kafka event bus: brokers are required")
	}
	if config.GroupID == "" {
		config.GroupID = "payouts"
	}
	if config.TopicPrefix == "" {
		config.TopicPrefix = "payouts.events"
	}

	dialer := &kafka.Dialer{Timeout: 5 * time.Second}
	if config.SASLUsername != "" || config.SASLPassword != "" {
		if config.SASLUsername == "" || config.SASLPassword == "" {
			return nil, fmt.Errorf("kafka event bus: sasl username and password are required")
		}
		dialer.SASLMechanism = plain.Mechanism{
			Username: config.SASLUsername,
			Password: config.SASLPassword,
		}
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(parsed...),
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
		Balancer:               &kafka.Hash{},
	}

	ctx, cancel := context.WithCancel(context.Background())
	bus := &KafkaBus{
		brokers: parsed,
		writer:  writer,
		dialer:  dialer,
		config:  config,
		logger:  logger.With("bus", "kafka"),
		readers: make(map[string]*kafka.Reader),
		ctx:     ctx,
		cancel:  cancel,
	}

	conn, err := dialer.DialContext(ctx, "tcp", parsed[0])
	if err != nil {
		cancel()
		return nil, fmt.Errorf("kafka event bus: connection failed: %w", err)
	}
	_ = conn.Close()
	return bus, nil
}

// Close stops every consumer and closes the writer.
func (b *KafkaBus) Close() error {
	b.cancel()
	b.mu.Lock()
	for _, r := range b.readers {
		_ = r.Close()
	}
	b.mu.Unlock()
	b.wg.Wait()
	return b.writer.Close()
}

// Emit publishes the event to its topic.
func (b *KafkaBus) Emit(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka event bus: marshal failed: %w", err)
	}
	envBytes, err := json.Marshal(envelope{Type: event.Type(), Payload: payload})
	if err != nil {
		return fmt.Errorf("kafka event bus: envelope marshal failed: %w", err)
	}

	msg := kafka.Message{
		Topic: b.topicFor(event.Type()),
		Key:   []byte(event.Type()),
		Value: envBytes,
		Time:  time.Now(),
	}
	if err := b.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka event bus: publish failed: %w", err)
	}
	return nil
}

// Register starts a consumer group reader for the event type.
func (b *KafkaBus) Register(eventType string, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.readers[eventType]; exists {
		return
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     b.brokers,
		GroupID:     b.config.GroupID,
		Topic:       b.topicFor(eventType),
		StartOffset: kafka.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     time.Second,
		Dialer:      b.dialer,
	})
	b.readers[eventType] = reader

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.consume(eventType, reader, handler)
	}()
}

func (b *KafkaBus) consume(eventType string, reader *kafka.Reader, handler eventbus.HandlerFunc) {
	for {
		msg, err := reader.FetchMessage(b.ctx)
		if err != nil {
			if b.ctx.Err() != nil {
				return
			}
			b.logger.Error("kafka fetch failed", "error", err, "event_type", eventType)
			time.Sleep(500 * time.Millisecond)
			continue
		}

		b.handleMessage(eventType, handler, msg)
		if err := reader.CommitMessages(b.ctx, msg); err != nil && b.ctx.Err() == nil {
			b.logger.Error("kafka commit failed", "error", err, "offset", msg.Offset)
		}
	}
}

func (b *KafkaBus) handleMessage(eventType string, handler eventbus.HandlerFunc, msg kafka.Message) {
	var env envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		b.logger.Error("envelope decode failed", "error", err, "offset", msg.Offset)
		return
	}
	factory, ok := events.Factories[env.Type]
	if !ok {
		b.logger.Error("unknown event type", "event_type", env.Type)
		b.pushToDLQ(eventType, msg.Value)
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
			b.pushToDLQ(eventType, msg.Value)
		}
	}()
	if err := handler(b.ctx, evt); err != nil {
		b.logger.Error("handler failed", "error", err, "event_type", env.Type)
		b.pushToDLQ(eventType, msg.Value)
	}
}

func (b *KafkaBus) pushToDLQ(eventType string, raw []byte) {
	msg := kafka.Message{
		Topic: b.dlqTopicFor(eventType),
		Key:   []byte(eventType),
		Value: raw,
		Time:  time.Now(),
	}
	if err := b.writer.WriteMessages(b.ctx, msg); err != nil {
		b.logger.Error("DLQ publish failed", "error", err, "event_type", eventType)
		return
	}
	b.logger.Warn("event pushed to DLQ", "event_type", eventType)
}

func (b *KafkaBus) topicFor(eventType string) string {
	return fmt.Sprintf("%s.%s", b.config.TopicPrefix, strings.ToLower(eventType))
}

func (b *KafkaBus) dlqTopicFor(eventType string) string {
	return fmt.Sprintf("%s.dlq.%s", b.config.TopicPrefix, strings.ToLower(eventType))
}

func parseBrokers(brokers string) []string {
	parts := strings.Split(brokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var _ eventbus.Bus = (*KafkaBus)(nil)
