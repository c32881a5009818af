// Package events publishes domain events (completed uploads, request
// decisions, backfill runs) for downstream consumers.
package events

import (
	"context"
	"time"
)

// Event types
const (
	TypeUploadCompleted   = "upload.completed"
	TypeUploadFailed      = "upload.failed"
	TypeRequestDecided    = "request.decided"
	TypeBackfillCompleted = "backfill.completed"
)

// Event is the unit published. Key picks the partition.
type Event struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

// New stamps an event with the current time
func New(eventType, key string, payload any) Event {
	return Event{Type: eventType, Key: key, OccurredAt: time.Now().UTC(), Payload: payload}
}

// Publisher is implemented by KafkaPublisher and LogPublisher
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
