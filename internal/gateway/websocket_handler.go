package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler upgrades observers and seeds them with the current state.
type WebSocketHandler struct {
	connectionManager *ConnectionManager
	game              GameApp
	prefs             PrefsApp
}

// NewWebSocketHandler creates the WebSocket HTTP handler.
func NewWebSocketHandler(cm *ConnectionManager, game GameApp, prefs PrefsApp) *WebSocketHandler {
	return &WebSocketHandler{connectionManager: cm, game: game, prefs: prefs}
}

// RegisterRoutes wires the WebSocket endpoint onto the mux.
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws", h.HandleConnection)
}

// HandleConnection upgrades the request and immediately sends the client a
// snapshot so it renders without waiting for the next mutation.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := h.connectionManager.UpgradeConnection(w, r)
	if err != nil {
		// UpgradeConnection has already written the HTTP error.
		return
	}

	state := NewGameStateResponse(h.game.Snapshot(), h.prefs.Theme())
	data, err := json.Marshal(state)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal initial state")
		return
	}
	frame, err := json.Marshal(WireEvent{
		ID:        uuid.New().String(),
		Type:      WireEventSnapshot,
		Timestamp: time.Now(),
		Data:      data,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal initial frame")
		return
	}

	select {
	case conn.Send <- frame:
	default:
		log.Warn().Str("connection_id", conn.ID).Msg("could not queue initial state")
	}
}
