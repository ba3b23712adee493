// Package events defines the domain events the clock engine emits and the
// publisher boundary they leave through.
package events

import (
	"time"

	"github.com/rakeshashastri/gameclock/internal/models"
)

// EventType identifies a clock domain event.
type EventType string

const (
	EventTypeGameStarted  EventType = "GameStarted"
	EventTypeGamePaused   EventType = "GamePaused"
	EventTypeGameResumed  EventType = "GameResumed"
	EventTypeGameReset    EventType = "GameReset"
	EventTypeTurnSwitched EventType = "TurnSwitched"
	EventTypeClockTick    EventType = "ClockTick"
	EventTypeGameOver     EventType = "GameOver"
)

// GameStartedPayload is emitted when a stopped game begins running.
type GameStartedPayload struct {
	ActivePlayer       models.Player `json:"active_player"`
	Player1TimeSeconds int64         `json:"player1_time_seconds"`
	Player2TimeSeconds int64         `json:"player2_time_seconds"`
	Player1TimeControl string        `json:"player1_time_control"`
	Player2TimeControl string        `json:"player2_time_control"`
	StartedAt          time.Time     `json:"started_at"`
}

// GamePausedPayload is emitted when a running game is paused.
type GamePausedPayload struct {
	ActivePlayer models.Player `json:"active_player"`
	PausedAt     time.Time     `json:"paused_at"`
}

// GameResumedPayload is emitted when a paused game resumes.
type GameResumedPayload struct {
	ActivePlayer models.Player `json:"active_player"`
	ResumedAt    time.Time     `json:"resumed_at"`
}

// GameResetPayload is emitted when the game returns to the stopped state.
type GameResetPayload struct {
	Player1TimeSeconds int64     `json:"player1_time_seconds"`
	Player2TimeSeconds int64     `json:"player2_time_seconds"`
	ResetAt            time.Time `json:"reset_at"`
}

// TurnSwitchedPayload is emitted when the active player taps their clock.
type TurnSwitchedPayload struct {
	PreviousPlayer          models.Player `json:"previous_player"`
	ActivePlayer            models.Player `json:"active_player"`
	IncrementSecondsApplied int64         `json:"increment_seconds_applied"`
	Player1RemainingSeconds int64         `json:"player1_remaining_seconds"`
	Player2RemainingSeconds int64         `json:"player2_remaining_seconds"`
	SwitchedAt              time.Time     `json:"switched_at"`
}

// ClockTickPayload is emitted whenever the active player's time decreases.
type ClockTickPayload struct {
	ActivePlayer            models.Player `json:"active_player"`
	Player1RemainingSeconds int64         `json:"player1_remaining_seconds"`
	Player2RemainingSeconds int64         `json:"player2_remaining_seconds"`
	TickedAt                time.Time     `json:"ticked_at"`
}

// GameOverPayload is emitted when a player's time reaches zero.
type GameOverPayload struct {
	Winner                  models.Player `json:"winner"`
	FlaggedPlayer           models.Player `json:"flagged_player"`
	Player1RemainingSeconds int64         `json:"player1_remaining_seconds"`
	Player2RemainingSeconds int64         `json:"player2_remaining_seconds"`
	EndedAt                 time.Time     `json:"ended_at"`
}
