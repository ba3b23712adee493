// Package clock owns the game clock state machine and timing engine: the
// game lifecycle, per-player time tracking, increment application and
// win-by-time detection.
package clock

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/rakeshashastri/gameclock/internal/catalog"
	"github.com/rakeshashastri/gameclock/internal/events"
	"github.com/rakeshashastri/gameclock/internal/models"
	"github.com/rakeshashastri/gameclock/internal/prefs"
)

// tickInterval is the cadence of the autonomous tick process. Decrements are
// driven by wall-clock deltas, never by tick count, so the interval only
// bounds how late a decrement can land after its true second boundary.
const tickInterval = 100 * time.Millisecond

const subscriberBuffer = 32

// Engine is the single owner of the game snapshot. All mutations funnel
// through its operations and execute under one mutex, so no two transitions
// interleave. Invalid transitions are silent no-ops: the UI only exposes
// valid affordances per phase, and a racing call must fail quietly rather
// than corrupt state.
type Engine struct {
	clock     clockwork.Clock
	catalog   *catalog.App
	prefs     *prefs.App
	publisher events.Publisher

	mu   sync.Mutex
	snap models.GameSnapshot

	// lastTick is the reference instant for elapsed-time accounting. It only
	// ever advances by whole seconds so the fractional remainder carries
	// forward instead of drifting.
	lastTick time.Time

	// gen guards against stale ticks: every arm/disarm of the tick loop bumps
	// it, and a tick scheduled under an old generation aborts without
	// touching the snapshot.
	gen        uint64
	cancelTick context.CancelFunc

	subs []chan models.GameSnapshot
}

// NewEngine builds an engine around the given collaborators. The clock is
// injected so tests can simulate time deterministically.
func NewEngine(clk clockwork.Clock, cat *catalog.App, pref *prefs.App, pub events.Publisher) *Engine {
	return &Engine{
		clock:     clk,
		catalog:   cat,
		prefs:     pref,
		publisher: pub,
		snap:      models.NewGameSnapshot(),
	}
}

// Bootstrap loads the persisted catalog and preferences into the snapshot.
// Any load failure leaves the built-in defaults in place.
func (e *Engine) Bootstrap(ctx context.Context) {
	e.catalog.Load(ctx)
	e.prefs.Load(ctx)

	tc := models.DefaultTimeControl()
	if last := e.prefs.LastUsedTimeControl(); last != nil {
		tc = *last
	}

	e.mu.Lock()
	e.snap.Player1TimeControl = tc
	e.snap.Player2TimeControl = tc
	e.snap.Player1RemainingSeconds = tc.StartingTimeSeconds
	e.snap.Player2RemainingSeconds = tc.StartingTimeSeconds
	e.snap.DistinctTimeControls = false
	e.snap.RecentTimeControls = e.catalog.RecentTimeControls()
	e.snap.CustomTimeControls = e.catalog.CustomTimeControls()
	e.notifyLocked()
	e.mu.Unlock()

	log.Info().
		Str("time_control", tc.Name).
		Msg("engine bootstrapped")
}

// Snapshot returns a deep copy of the current state.
func (e *Engine) Snapshot() models.GameSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap.Clone()
}

// Subscribe returns a channel that receives a snapshot copy after every
// mutation. Slow subscribers drop updates rather than block the engine.
func (e *Engine) Subscribe() <-chan models.GameSnapshot {
	ch := make(chan models.GameSnapshot, subscriberBuffer)
	e.mu.Lock()
	e.subs = append(e.subs, ch)
	e.mu.Unlock()
	return ch
}

// Start begins a stopped game: player one becomes active and both remaining
// times are captured from the currently configured controls.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	if e.snap.Phase != models.PhaseStopped {
		e.mu.Unlock()
		return
	}

	now := e.clock.Now()
	active := models.PlayerOne
	e.snap.Phase = models.PhaseRunning
	e.snap.ActivePlayer = &active
	e.snap.Player1RemainingSeconds = e.snap.Player1TimeControl.StartingTimeSeconds
	e.snap.Player2RemainingSeconds = e.snap.Player2TimeControl.StartingTimeSeconds
	e.lastTick = now
	e.armTickLoopLocked()

	payload := events.GameStartedPayload{
		ActivePlayer:       active,
		Player1TimeSeconds: e.snap.Player1RemainingSeconds,
		Player2TimeSeconds: e.snap.Player2RemainingSeconds,
		Player1TimeControl: e.snap.Player1TimeControl.Name,
		Player2TimeControl: e.snap.Player2TimeControl.Name,
		StartedAt:          now,
	}
	e.notifyLocked()
	e.mu.Unlock()

	log.Info().
		Int64("player1_seconds", payload.Player1TimeSeconds).
		Int64("player2_seconds", payload.Player2TimeSeconds).
		Msg("game started")
	e.publish(ctx, events.EventTypeGameStarted, payload)
}

// Pause freezes a running game. The active player is retained so Resume
// picks up where play left off.
func (e *Engine) Pause(ctx context.Context) {
	e.mu.Lock()
	if e.snap.Phase != models.PhaseRunning {
		e.mu.Unlock()
		return
	}

	e.disarmTickLoopLocked()
	e.snap.Phase = models.PhasePaused
	payload := events.GamePausedPayload{
		ActivePlayer: *e.snap.ActivePlayer,
		PausedAt:     e.clock.Now(),
	}
	e.notifyLocked()
	e.mu.Unlock()

	log.Info().Str("active_player", string(payload.ActivePlayer)).Msg("game paused")
	e.publish(ctx, events.EventTypeGamePaused, payload)
}

// Resume restarts a paused game. The pause gap is excluded from elapsed
// time: the reference instant restarts at the moment of resumption.
func (e *Engine) Resume(ctx context.Context) {
	e.mu.Lock()
	if e.snap.Phase != models.PhasePaused {
		e.mu.Unlock()
		return
	}

	now := e.clock.Now()
	e.snap.Phase = models.PhaseRunning
	e.lastTick = now
	e.armTickLoopLocked()
	payload := events.GameResumedPayload{
		ActivePlayer: *e.snap.ActivePlayer,
		ResumedAt:    now,
	}
	e.notifyLocked()
	e.mu.Unlock()

	log.Info().Str("active_player", string(payload.ActivePlayer)).Msg("game resumed")
	e.publish(ctx, events.EventTypeGameResumed, payload)
}

// Reset returns any non-stopped game to the stopped state. Remaining times
// go back to each player's configured starting time with no increment
// residue; winner and active player are cleared.
func (e *Engine) Reset(ctx context.Context) {
	e.mu.Lock()
	if e.snap.Phase == models.PhaseStopped {
		e.mu.Unlock()
		return
	}

	e.disarmTickLoopLocked()
	e.snap.Phase = models.PhaseStopped
	e.snap.ActivePlayer = nil
	e.snap.Winner = nil
	e.snap.Player1RemainingSeconds = e.snap.Player1TimeControl.StartingTimeSeconds
	e.snap.Player2RemainingSeconds = e.snap.Player2TimeControl.StartingTimeSeconds
	payload := events.GameResetPayload{
		Player1TimeSeconds: e.snap.Player1RemainingSeconds,
		Player2TimeSeconds: e.snap.Player2RemainingSeconds,
		ResetAt:            e.clock.Now(),
	}
	e.notifyLocked()
	e.mu.Unlock()

	log.Info().Msg("game reset")
	e.publish(ctx, events.EventTypeGameReset, payload)
}

// SwitchTurn ends the active player's move: their per-move increment is
// added to their own clock, the opponent becomes active and the reference
// instant restarts. Only meaningful while running.
func (e *Engine) SwitchTurn(ctx context.Context) {
	e.mu.Lock()
	if e.snap.Phase != models.PhaseRunning || e.snap.ActivePlayer == nil {
		e.mu.Unlock()
		return
	}

	now := e.clock.Now()
	mover := *e.snap.ActivePlayer
	increment := e.snap.TimeControlFor(mover).IncrementSeconds
	if mover == models.PlayerOne {
		e.snap.Player1RemainingSeconds += increment
	} else {
		e.snap.Player2RemainingSeconds += increment
	}
	next := mover.Opponent()
	e.snap.ActivePlayer = &next
	e.lastTick = now

	payload := events.TurnSwitchedPayload{
		PreviousPlayer:          mover,
		ActivePlayer:            next,
		IncrementSecondsApplied: increment,
		Player1RemainingSeconds: e.snap.Player1RemainingSeconds,
		Player2RemainingSeconds: e.snap.Player2RemainingSeconds,
		SwitchedAt:              now,
	}
	e.notifyLocked()
	e.mu.Unlock()

	log.Debug().
		Str("previous_player", string(mover)).
		Str("active_player", string(next)).
		Int64("increment_seconds", increment).
		Msg("turn switched")
	e.publish(ctx, events.EventTypeTurnSwitched, payload)
}

// SetUniformTimeControl applies the same control to both players and records
// it as recent and last-used. While a game is live the configured controls
// update but the running clocks are left untouched; they pick up the new
// starting times on the next reset or start.
func (e *Engine) SetUniformTimeControl(ctx context.Context, tc models.TimeControl) {
	e.mu.Lock()
	e.snap.Player1TimeControl = tc
	e.snap.Player2TimeControl = tc
	e.snap.DistinctTimeControls = false
	if e.snap.Phase == models.PhaseStopped {
		e.snap.Player1RemainingSeconds = tc.StartingTimeSeconds
		e.snap.Player2RemainingSeconds = tc.StartingTimeSeconds
	}
	e.notifyLocked()
	e.mu.Unlock()

	e.prefs.SaveLastUsedTimeControl(ctx, tc)
	e.catalog.SaveRecent(ctx, tc)
	e.refreshCatalogLists()
}

// SetDistinctTimeControls applies an independent control per player and
// records both as recent. The same mid-game policy applies as for
// SetUniformTimeControl.
func (e *Engine) SetDistinctTimeControls(ctx context.Context, player1, player2 models.TimeControl) {
	e.mu.Lock()
	e.snap.Player1TimeControl = player1
	e.snap.Player2TimeControl = player2
	e.snap.DistinctTimeControls = true
	if e.snap.Phase == models.PhaseStopped {
		e.snap.Player1RemainingSeconds = player1.StartingTimeSeconds
		e.snap.Player2RemainingSeconds = player2.StartingTimeSeconds
	}
	e.notifyLocked()
	e.mu.Unlock()

	e.catalog.SaveRecent(ctx, player1)
	e.catalog.SaveRecent(ctx, player2)
	e.refreshCatalogLists()
}

// AddCustomTimeControl saves a user-defined control to the catalog. Returns
// catalog.ErrLimitExceeded when a sixth distinct control is added.
func (e *Engine) AddCustomTimeControl(ctx context.Context, tc models.TimeControl) error {
	if err := e.catalog.SaveCustom(ctx, tc); err != nil {
		return err
	}
	e.refreshCatalogLists()
	return nil
}

// DeleteCustomTimeControl removes a custom control by id.
func (e *Engine) DeleteCustomTimeControl(ctx context.Context, id string) {
	e.catalog.DeleteCustom(ctx, id)
	e.refreshCatalogLists()
}

func (e *Engine) refreshCatalogLists() {
	recent := e.catalog.RecentTimeControls()
	custom := e.catalog.CustomTimeControls()

	e.mu.Lock()
	e.snap.RecentTimeControls = recent
	e.snap.CustomTimeControls = custom
	e.notifyLocked()
	e.mu.Unlock()
}

func (e *Engine) publish(ctx context.Context, eventType events.EventType, payload any) {
	if err := e.publisher.Publish(ctx, eventType, payload); err != nil {
		log.Warn().Err(err).Str("event_type", string(eventType)).Msg("failed to publish event")
	}
}

// notifyLocked fans the current snapshot out to subscribers. Callers hold
// the mutex.
func (e *Engine) notifyLocked() {
	snap := e.snap.Clone()
	for _, ch := range e.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}
