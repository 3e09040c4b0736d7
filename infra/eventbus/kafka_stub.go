//go:build !kafka
// +build !kafka

package eventbus

import (
	"context"
	"fmt"
	"log/slog"

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

// KafkaBus is unavailable without the kafka build tag.
type KafkaBus struct{}

func NewWithKafka(brokers string, config KafkaBusConfig, logger *slog.Logger) (*KafkaBus, error) {
	return nil, fmt.Errorf("kafka event bus: build with -tags kafka to enable")
}

func (b *KafkaBus) Register(eventType string, handler eventbus.HandlerFunc) {}

func (b *KafkaBus) Emit(ctx context.Context, event events.Event) error {
	return fmt.Errorf("kafka event bus: build with -tags kafka to enable")
}

func (b *KafkaBus) Close() error { return nil }

var _ eventbus.Bus = (*KafkaBus)(nil)
