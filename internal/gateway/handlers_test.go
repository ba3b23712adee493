package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/rakeshashastri/gameclock/internal/catalog"
	"github.com/rakeshashastri/gameclock/internal/clock"
	"github.com/rakeshashastri/gameclock/internal/events"
	"github.com/rakeshashastri/gameclock/internal/models"
	"github.com/rakeshashastri/gameclock/internal/prefs"
	"github.com/rakeshashastri/gameclock/internal/storage/memory"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	fc := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	store := memory.NewStore()
	prefsApp := prefs.NewApp(store)
	engine := clock.NewEngine(fc, catalog.NewApp(store), prefsApp, events.NopPublisher{})
	h := NewHandler(engine, prefsApp)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return mux
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) GameStateResponse {
	t.Helper()
	var resp GameStateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode state response: %v", err)
	}
	return resp
}

func TestGameLifecycleEndpoints(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/game/state", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
	if state := decodeState(t, rec); state.Phase != models.PhaseStopped {
		t.Errorf("got phase %s, want %s", state.Phase, models.PhaseStopped)
	}

	rec = doRequest(t, h, http.MethodPost, "/game/start", "")
	state := decodeState(t, rec)
	if state.Phase != models.PhaseRunning {
		t.Errorf("got phase %s, want %s", state.Phase, models.PhaseRunning)
	}
	if state.ActivePlayer == nil || *state.ActivePlayer != models.PlayerOne {
		t.Error("player one must be active after start")
	}

	rec = doRequest(t, h, http.MethodPost, "/game/switch", "")
	state = decodeState(t, rec)
	if state.ActivePlayer == nil || *state.ActivePlayer != models.PlayerTwo {
		t.Error("player two must be active after switch")
	}

	rec = doRequest(t, h, http.MethodPost, "/game/pause", "")
	if state = decodeState(t, rec); state.Phase != models.PhasePaused {
		t.Errorf("got phase %s, want %s", state.Phase, models.PhasePaused)
	}

	rec = doRequest(t, h, http.MethodPost, "/game/resume", "")
	if state = decodeState(t, rec); state.Phase != models.PhaseRunning {
		t.Errorf("got phase %s, want %s", state.Phase, models.PhaseRunning)
	}

	rec = doRequest(t, h, http.MethodPost, "/game/reset", "")
	state = decodeState(t, rec)
	if state.Phase != models.PhaseStopped || state.ActivePlayer != nil {
		t.Error("reset must return to a clean stopped state")
	}
}

func TestSetUniformTimeControl(t *testing.T) {
	h := newTestHandler(t)

	body := `{"time_control":{"id":"tc1","name":"1 min","starting_time_seconds":60,"increment_seconds":0}}`
	rec := doRequest(t, h, http.MethodPut, "/game/time-control", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rec.Code, rec.Body.String())
	}
	state := decodeState(t, rec)
	if state.Player1RemainingSeconds != 60 || state.Player2RemainingSeconds != 60 {
		t.Errorf("got %d/%d, want 60/60", state.Player1RemainingSeconds, state.Player2RemainingSeconds)
	}
	if state.Player1Display != "1:00" {
		t.Errorf("got display %q, want 1:00", state.Player1Display)
	}
}

func TestSetDistinctTimeControls(t *testing.T) {
	h := newTestHandler(t)

	body := `{
		"player1_time_control":{"id":"a","name":"1 min","starting_time_seconds":60,"increment_seconds":0},
		"player2_time_control":{"id":"b","name":"3 min","starting_time_seconds":180,"increment_seconds":2}
	}`
	rec := doRequest(t, h, http.MethodPut, "/game/time-control", body)
	state := decodeState(t, rec)
	if !state.DistinctTimeControls {
		t.Error("distinct flag should be set")
	}
	if state.Player1RemainingSeconds != 60 || state.Player2RemainingSeconds != 180 {
		t.Errorf("got %d/%d, want 60/180", state.Player1RemainingSeconds, state.Player2RemainingSeconds)
	}
}

func TestSetTimeControlValidation(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"no controls", `{}`},
		{"zero starting time", `{"time_control":{"id":"x","name":"bad","starting_time_seconds":0}}`},
		{"negative increment", `{"time_control":{"id":"x","name":"bad","starting_time_seconds":60,"increment_seconds":-1}}`},
		{"only one distinct control", `{"player1_time_control":{"id":"a","name":"ok","starting_time_seconds":60}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodPut, "/game/time-control", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("got status %d, want 400", rec.Code)
			}
		})
	}
}

func TestListTimeControls(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/time-controls", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
	var resp timeControlListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Bullet) == 0 || len(resp.Blitz) == 0 || len(resp.Rapid) == 0 {
		t.Error("preset tiers must not be empty")
	}
	if len(resp.Recent) != 0 || len(resp.Custom) != 0 {
		t.Error("recent and custom lists start empty")
	}
}

func TestAddCustomTimeControl(t *testing.T) {
	h := newTestHandler(t)

	body := `{"name":"My Control","starting_time_seconds":420,"increment_seconds":7}`
	rec := doRequest(t, h, http.MethodPost, "/time-controls/custom", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("got status %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var tc models.TimeControl
	if err := json.NewDecoder(rec.Body).Decode(&tc); err != nil {
		t.Fatal(err)
	}
	if tc.ID == "" {
		t.Error("created control must have a generated id")
	}
	if tc.StartingTimeSeconds != 420 || tc.IncrementSeconds != 7 {
		t.Errorf("got %d/%d, want 420/7", tc.StartingTimeSeconds, tc.IncrementSeconds)
	}

	rec = doRequest(t, h, http.MethodDelete, "/time-controls/custom/"+tc.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("got status %d, want 204", rec.Code)
	}
}

func TestAddCustomTimeControlRejectsInvalid(t *testing.T) {
	h := newTestHandler(t)

	body := `{"name":"","starting_time_seconds":60}`
	rec := doRequest(t, h, http.MethodPost, "/time-controls/custom", body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want 400", rec.Code)
	}
}

func TestAddCustomTimeControlLimitConflict(t *testing.T) {
	h := newTestHandler(t)

	for i := 0; i < models.MaxCustomTimeControls; i++ {
		body := fmt.Sprintf(`{"name":"Custom %d","starting_time_seconds":60}`, i)
		rec := doRequest(t, h, http.MethodPost, "/time-controls/custom", body)
		if rec.Code != http.StatusCreated {
			t.Fatalf("custom %d: got status %d, want 201", i+1, rec.Code)
		}
	}

	rec := doRequest(t, h, http.MethodPost, "/time-controls/custom",
		`{"name":"One Too Many","starting_time_seconds":60}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("got status %d, want 409", rec.Code)
	}
}

func TestThemeEndpoints(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/themes", "")
	var themes []models.AppTheme
	if err := json.NewDecoder(rec.Body).Decode(&themes); err != nil {
		t.Fatal(err)
	}
	if len(themes) != 4 {
		t.Errorf("got %d themes, want 4", len(themes))
	}

	rec = doRequest(t, h, http.MethodPut, "/theme", `{"id":"`+models.ThemeForest.ID+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}

	rec = doRequest(t, h, http.MethodGet, "/theme", "")
	var theme models.AppTheme
	if err := json.NewDecoder(rec.Body).Decode(&theme); err != nil {
		t.Fatal(err)
	}
	if theme.ID != models.ThemeForest.ID {
		t.Errorf("got theme %q, want %q", theme.ID, models.ThemeForest.ID)
	}

	rec = doRequest(t, h, http.MethodPut, "/theme", `{"id":"no-such-theme"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want 400", rec.Code)
	}
}
