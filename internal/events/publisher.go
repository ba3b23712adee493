package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// Publisher is the boundary domain events leave through. Implementations
// must be safe for concurrent use; callers treat publish failures as
// best-effort and never block the live game on them.
type Publisher interface {
	Publish(ctx context.Context, eventType EventType, payload any) error
}

// Envelope is the wire format shared by every published event.
type Envelope struct {
	EventID   string          `json:"event_id"`
	EventType EventType       `json:"event_type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NATSPublisher publishes event envelopes to NATS subjects of the form
// <prefix>.<EventType>.
type NATSPublisher struct {
	nc      *nats.Conn
	subject string
}

// NewNATSPublisher connects to NATS and returns a publisher rooted at the
// given subject prefix, e.g. "gameclock.events".
func NewNATSPublisher(url, subjectPrefix string) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &NATSPublisher{nc: nc, subject: subjectPrefix}, nil
}

// Publish marshals the payload into an envelope and publishes it.
func (p *NATSPublisher) Publish(ctx context.Context, eventType EventType, payload any) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	envelope := Envelope{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
		Payload:   payloadBytes,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", eventType, err)
	}

	subject := fmt.Sprintf("%s.%s", p.subject, eventType)
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}
	return nil
}

// Close drains the underlying connection.
func (p *NATSPublisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}

// NopPublisher discards events. Used when no message bus is configured and
// in tests.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, eventType EventType, payload any) error {
	return nil
}
