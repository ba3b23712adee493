package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/rakeshashastri/gameclock/internal/events"
)

// ConsumerConfig holds configuration for the NATS event consumer.
type ConsumerConfig struct {
	URL           string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultConsumerConfig returns default NATS consumer configuration.
func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		URL:           nats.DefaultURL,
		SubjectPrefix: "gameclock.events",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
	}
}

// EventConsumer subscribes to clock domain events on NATS and forwards them
// to WebSocket clients. It lets a gateway instance relay events published by
// another process.
type EventConsumer struct {
	connectionManager *ConnectionManager
	nc                *nats.Conn
	sub               *nats.Subscription
	config            ConsumerConfig
}

// NewEventConsumer connects to NATS with the given configuration.
func NewEventConsumer(cm *ConnectionManager, config ConsumerConfig) (*EventConsumer, error) {
	opts := []nats.Option{
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	return &EventConsumer{
		connectionManager: cm,
		nc:                nc,
		config:            config,
	}, nil
}

// Start subscribes and relays events until the context ends.
func (ec *EventConsumer) Start(ctx context.Context) error {
	subject := ec.config.SubjectPrefix + ".>"
	sub, err := ec.nc.Subscribe(subject, ec.handleMessage)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", subject, err)
	}
	ec.sub = sub

	log.Info().Str("subject", subject).Msg("event consumer started")
	<-ctx.Done()
	log.Info().Msg("event consumer shutting down")
	return nil
}

func (ec *EventConsumer) handleMessage(msg *nats.Msg) {
	var envelope events.Envelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		log.Error().Err(err).Str("subject", msg.Subject).Msg("failed to unmarshal event envelope")
		return
	}

	ec.connectionManager.Broadcast(&WireEvent{
		ID:        envelope.EventID,
		Type:      WireEventType(envelope.EventType),
		Timestamp: envelope.Timestamp,
		Data:      envelope.Payload,
	})

	log.Debug().
		Str("event_id", envelope.EventID).
		Str("event_type", string(envelope.EventType)).
		Msg("event relayed to WebSocket clients")
}

// Stop unsubscribes and closes the NATS connection.
func (ec *EventConsumer) Stop() error {
	if ec.sub != nil {
		if err := ec.sub.Unsubscribe(); err != nil {
			log.Error().Err(err).Msg("failed to unsubscribe")
		}
	}
	if ec.nc != nil {
		ec.nc.Close()
	}
	return nil
}
