package events

import (
	"context"

	"github.com/rs/zerolog"
)

// LogPublisher records events in the log only. Used when no brokers are configured.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a LogPublisher
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With().Str("component", "events").Logger()}
}

// Publish implements Publisher
func (p *LogPublisher) Publish(_ context.Context, event Event) error {
	p.logger.Info().Str("type", event.Type).Str("key", event.Key).Interface("payload", event.Payload).Msg("Domain event")
	return nil
}

// Close implements Publisher
func (p *LogPublisher) Close() error {
	return nil
}
