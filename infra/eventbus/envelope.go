// Package eventbus provides the event bus implementations: in-memory for
// tests and single-process deployments, Redis Streams for production, and a
// Kafka variant behind the kafka build tag.
package eventbus

import "encoding/json"

// envelope wraps an event on the wire so consumers can pick the right
// factory before decoding the payload.
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}
