package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Service is the presentation boundary of the clock session: REST commands,
// a WebSocket snapshot stream and an optional NATS relay.
type Service struct {
	connectionManager *ConnectionManager
	handler           *Handler
	wsHandler         *WebSocketHandler
	eventConsumer     *EventConsumer
	game              GameApp
	prefs             PrefsApp
}

// Config holds configuration for the gateway service.
type Config struct {
	ConnectionConfig ConnectionConfig
	ConsumerConfig   ConsumerConfig
	// RelayEvents enables the NATS consumer. Without it the gateway still
	// streams snapshots straight from the engine.
	RelayEvents bool
}

// DefaultConfig returns default gateway configuration.
func DefaultConfig() Config {
	return Config{
		ConnectionConfig: DefaultConnectionConfig(),
		ConsumerConfig:   DefaultConsumerConfig(),
	}
}

// NewService assembles the gateway.
func NewService(config Config, game GameApp, prefs PrefsApp) (*Service, error) {
	cm := NewConnectionManager(config.ConnectionConfig)

	var consumer *EventConsumer
	if config.RelayEvents {
		var err error
		consumer, err = NewEventConsumer(cm, config.ConsumerConfig)
		if err != nil {
			return nil, err
		}
	}

	return &Service{
		connectionManager: cm,
		handler:           NewHandler(game, prefs),
		wsHandler:         NewWebSocketHandler(cm, game, prefs),
		eventConsumer:     consumer,
		game:              game,
		prefs:             prefs,
	}, nil
}

// Start runs the gateway background work until the context ends.
func (s *Service) Start(ctx context.Context) error {
	log.Info().Msg("starting gateway service")

	go s.connectionManager.Start(ctx)
	go s.streamSnapshots(ctx)

	if s.eventConsumer != nil {
		go func() {
			if err := s.eventConsumer.Start(ctx); err != nil {
				log.Error().Err(err).Msg("event consumer failed")
			}
		}()
	}

	<-ctx.Done()
	log.Info().Msg("gateway service shutting down")
	return s.Stop()
}

// Stop tears down the gateway.
func (s *Service) Stop() error {
	if s.eventConsumer != nil {
		if err := s.eventConsumer.Stop(); err != nil {
			log.Error().Err(err).Msg("failed to stop event consumer")
		}
	}
	log.Info().Msg("gateway service stopped")
	return nil
}

// RegisterRoutes wires the HTTP surface onto the mux.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.handler.RegisterRoutes(mux)
	s.wsHandler.RegisterRoutes(mux)
	log.Info().Msg("gateway routes registered")
}

// streamSnapshots forwards every engine mutation to WebSocket clients.
func (s *Service) streamSnapshots(ctx context.Context) {
	sub := s.game.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-sub:
			data, err := json.Marshal(NewGameStateResponse(snap, s.prefs.Theme()))
			if err != nil {
				log.Error().Err(err).Msg("failed to marshal snapshot")
				continue
			}
			s.connectionManager.Broadcast(&WireEvent{
				ID:        uuid.New().String(),
				Type:      WireEventSnapshot,
				Timestamp: time.Now(),
				Data:      data,
			})
		}
	}
}
