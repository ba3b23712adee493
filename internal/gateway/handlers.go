package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/rakeshashastri/gameclock/internal/catalog"
	"github.com/rakeshashastri/gameclock/internal/models"
)

// GameApp defines what the gateway needs from the clock engine.
type GameApp interface {
	Start(ctx context.Context)
	Pause(ctx context.Context)
	Resume(ctx context.Context)
	Reset(ctx context.Context)
	SwitchTurn(ctx context.Context)
	SetUniformTimeControl(ctx context.Context, tc models.TimeControl)
	SetDistinctTimeControls(ctx context.Context, player1, player2 models.TimeControl)
	AddCustomTimeControl(ctx context.Context, tc models.TimeControl) error
	DeleteCustomTimeControl(ctx context.Context, id string)
	Snapshot() models.GameSnapshot
	Subscribe() <-chan models.GameSnapshot
}

// PrefsApp defines what the gateway needs from the preferences app.
type PrefsApp interface {
	Theme() models.AppTheme
	SelectTheme(ctx context.Context, id string) models.AppTheme
}

// Handler serves the command and query surface of the clock session.
type Handler struct {
	game  GameApp
	prefs PrefsApp
}

// NewHandler creates a gateway handler.
func NewHandler(game GameApp, prefs PrefsApp) *Handler {
	return &Handler{game: game, prefs: prefs}
}

// RegisterRoutes wires the HTTP surface onto the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /game/start", h.handleStart)
	mux.HandleFunc("POST /game/pause", h.handlePause)
	mux.HandleFunc("POST /game/resume", h.handleResume)
	mux.HandleFunc("POST /game/reset", h.handleReset)
	mux.HandleFunc("POST /game/switch", h.handleSwitchTurn)
	mux.HandleFunc("GET /game/state", h.handleState)
	mux.HandleFunc("PUT /game/time-control", h.handleSetTimeControl)
	mux.HandleFunc("GET /time-controls", h.handleListTimeControls)
	mux.HandleFunc("POST /time-controls/custom", h.handleAddCustom)
	mux.HandleFunc("DELETE /time-controls/custom/{id}", h.handleDeleteCustom)
	mux.HandleFunc("GET /themes", h.handleListThemes)
	mux.HandleFunc("GET /theme", h.handleGetTheme)
	mux.HandleFunc("PUT /theme", h.handleSetTheme)
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	h.game.Start(r.Context())
	h.writeState(w)
}

func (h *Handler) handlePause(w http.ResponseWriter, r *http.Request) {
	h.game.Pause(r.Context())
	h.writeState(w)
}

func (h *Handler) handleResume(w http.ResponseWriter, r *http.Request) {
	h.game.Resume(r.Context())
	h.writeState(w)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.game.Reset(r.Context())
	h.writeState(w)
}

func (h *Handler) handleSwitchTurn(w http.ResponseWriter, r *http.Request) {
	h.game.SwitchTurn(r.Context())
	h.writeState(w)
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	h.writeState(w)
}

// timeControlRequest carries either a uniform control or one per player.
type timeControlRequest struct {
	TimeControl *models.TimeControl `json:"time_control,omitempty"`
	Player1     *models.TimeControl `json:"player1_time_control,omitempty"`
	Player2     *models.TimeControl `json:"player2_time_control,omitempty"`
}

func (h *Handler) handleSetTimeControl(w http.ResponseWriter, r *http.Request) {
	var req timeControlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch {
	case req.TimeControl != nil:
		if err := req.TimeControl.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.game.SetUniformTimeControl(r.Context(), *req.TimeControl)
	case req.Player1 != nil && req.Player2 != nil:
		if err := req.Player1.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := req.Player2.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.game.SetDistinctTimeControls(r.Context(), *req.Player1, *req.Player2)
	default:
		writeError(w, http.StatusBadRequest, "time_control or both player time controls required")
		return
	}
	h.writeState(w)
}

// timeControlListResponse groups the preset tiers with the mutable lists.
type timeControlListResponse struct {
	Bullet []models.TimeControl `json:"bullet"`
	Blitz  []models.TimeControl `json:"blitz"`
	Rapid  []models.TimeControl `json:"rapid"`
	Recent []models.TimeControl `json:"recent"`
	Custom []models.TimeControl `json:"custom"`
}

func (h *Handler) handleListTimeControls(w http.ResponseWriter, r *http.Request) {
	snap := h.game.Snapshot()
	writeJSON(w, http.StatusOK, timeControlListResponse{
		Bullet: models.BulletPresets,
		Blitz:  models.BlitzPresets,
		Rapid:  models.RapidPresets,
		Recent: snap.RecentTimeControls,
		Custom: snap.CustomTimeControls,
	})
}

// customTimeControlRequest is the body for creating or updating a custom
// control. An empty id creates a new control.
type customTimeControlRequest struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	StartingTimeSeconds int64  `json:"starting_time_seconds"`
	IncrementSeconds    int64  `json:"increment_seconds"`
}

func (h *Handler) handleAddCustom(w http.ResponseWriter, r *http.Request) {
	var req customTimeControlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tc, err := models.NewTimeControl(req.ID, req.Name, req.StartingTimeSeconds, req.IncrementSeconds)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.game.AddCustomTimeControl(r.Context(), tc); err != nil {
		if errors.Is(err, catalog.ErrLimitExceeded) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		log.Error().Err(err).Msg("failed to add custom time control")
		writeError(w, http.StatusInternalServerError, "failed to add custom time control")
		return
	}
	writeJSON(w, http.StatusCreated, tc)
}

func (h *Handler) handleDeleteCustom(w http.ResponseWriter, r *http.Request) {
	h.game.DeleteCustomTimeControl(r.Context(), r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListThemes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.AllThemes())
}

func (h *Handler) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.prefs.Theme())
}

type themeRequest struct {
	ID string `json:"id"`
}

func (h *Handler) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !models.KnownThemeID(req.ID) {
		writeError(w, http.StatusBadRequest, "unknown theme id")
		return
	}
	writeJSON(w, http.StatusOK, h.prefs.SelectTheme(r.Context(), req.ID))
}

func (h *Handler) writeState(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, NewGameStateResponse(h.game.Snapshot(), h.prefs.Theme()))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
