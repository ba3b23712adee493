package clock

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rakeshashastri/gameclock/internal/events"
	"github.com/rakeshashastri/gameclock/internal/models"
)

// armTickLoopLocked starts the autonomous tick process for the current
// generation. Callers hold the mutex.
func (e *Engine) armTickLoopLocked() {
	e.gen++
	gen := e.gen
	ctx, cancel := context.WithCancel(context.Background())
	e.cancelTick = cancel
	go e.runTickLoop(ctx, gen)
}

// disarmTickLoopLocked synchronously guarantees that no further autonomous
// decrement occurs: bumping the generation invalidates any tick already in
// flight before it can take the mutex. Disarming twice is a no-op.
func (e *Engine) disarmTickLoopLocked() {
	e.gen++
	if e.cancelTick != nil {
		e.cancelTick()
		e.cancelTick = nil
	}
}

func (e *Engine) runTickLoop(ctx context.Context, gen uint64) {
	ticker := e.clock.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if !e.applyElapsed(gen, e.clock.Now()) {
				return
			}
		}
	}
}

// applyElapsed is one tick step: it decrements the active player's remaining
// time by the whole seconds elapsed since the reference instant, carrying
// the fractional remainder forward, and detects win-by-time in the same
// step. It reports whether the loop should keep running.
func (e *Engine) applyElapsed(gen uint64, now time.Time) bool {
	e.mu.Lock()

	// A tick that raced a pause, reset or game-over must abort untouched.
	if gen != e.gen || e.snap.Phase != models.PhaseRunning || e.snap.ActivePlayer == nil {
		e.mu.Unlock()
		return false
	}

	elapsed := now.Sub(e.lastTick)
	whole := int64(elapsed / time.Second)
	if whole < 1 {
		e.mu.Unlock()
		return true
	}
	e.lastTick = e.lastTick.Add(time.Duration(whole) * time.Second)

	active := *e.snap.ActivePlayer
	remaining := e.snap.RemainingSeconds(active) - whole
	if remaining > 0 {
		if active == models.PlayerOne {
			e.snap.Player1RemainingSeconds = remaining
		} else {
			e.snap.Player2RemainingSeconds = remaining
		}
		payload := events.ClockTickPayload{
			ActivePlayer:            active,
			Player1RemainingSeconds: e.snap.Player1RemainingSeconds,
			Player2RemainingSeconds: e.snap.Player2RemainingSeconds,
			TickedAt:                now,
		}
		e.notifyLocked()
		e.mu.Unlock()

		e.publish(context.Background(), events.EventTypeClockTick, payload)
		return true
	}

	// Flag fall: clamp to zero, the opponent wins, the loop terminates.
	if active == models.PlayerOne {
		e.snap.Player1RemainingSeconds = 0
	} else {
		e.snap.Player2RemainingSeconds = 0
	}
	winner := active.Opponent()
	e.snap.Phase = models.PhaseGameOver
	e.snap.Winner = &winner
	e.snap.ActivePlayer = nil
	e.disarmTickLoopLocked()

	payload := events.GameOverPayload{
		Winner:                  winner,
		FlaggedPlayer:           active,
		Player1RemainingSeconds: e.snap.Player1RemainingSeconds,
		Player2RemainingSeconds: e.snap.Player2RemainingSeconds,
		EndedAt:                 now,
	}
	e.notifyLocked()
	e.mu.Unlock()

	log.Info().
		Str("winner", string(winner)).
		Str("flagged_player", string(active)).
		Msg("game over on time")
	e.publish(context.Background(), events.EventTypeGameOver, payload)
	return false
}
