package models

// Limits on the bounded catalog collections carried in the snapshot.
const (
	MaxRecentTimeControls = 3
	MaxCustomTimeControls = 5
)

// GameSnapshot is the authoritative state of a clock session. It is mutated
// exclusively by the clock engine and observed read-only by everything else.
type GameSnapshot struct {
	Phase                   GamePhase     `json:"phase"`
	ActivePlayer            *Player       `json:"active_player,omitempty"`
	Winner                  *Player       `json:"winner,omitempty"`
	Player1RemainingSeconds int64         `json:"player1_remaining_seconds"`
	Player2RemainingSeconds int64         `json:"player2_remaining_seconds"`
	Player1TimeControl      TimeControl   `json:"player1_time_control"`
	Player2TimeControl      TimeControl   `json:"player2_time_control"`
	RecentTimeControls      []TimeControl `json:"recent_time_controls"`
	CustomTimeControls      []TimeControl `json:"custom_time_controls"`
	DistinctTimeControls    bool          `json:"distinct_time_controls"`
}

// NewGameSnapshot returns the session-start state: stopped, default control
// for both players.
func NewGameSnapshot() GameSnapshot {
	tc := DefaultTimeControl()
	return GameSnapshot{
		Phase:                   PhaseStopped,
		Player1RemainingSeconds: tc.StartingTimeSeconds,
		Player2RemainingSeconds: tc.StartingTimeSeconds,
		Player1TimeControl:      tc,
		Player2TimeControl:      tc,
	}
}

// Valid checks the structural invariants that must hold after every
// transition.
func (s GameSnapshot) Valid() bool {
	switch {
	case s.Player1RemainingSeconds < 0 || s.Player2RemainingSeconds < 0:
		return false
	case s.Winner != nil && s.Phase != PhaseGameOver:
		return false
	case s.Phase == PhaseGameOver && s.Winner == nil:
		return false
	case s.ActivePlayer != nil && s.Phase != PhaseRunning && s.Phase != PhasePaused:
		return false
	case (s.Phase == PhaseRunning || s.Phase == PhasePaused) && s.ActivePlayer == nil:
		return false
	case len(s.RecentTimeControls) > MaxRecentTimeControls:
		return false
	case len(s.CustomTimeControls) > MaxCustomTimeControls:
		return false
	}
	return true
}

// RemainingSeconds returns the remaining time for the given player.
func (s GameSnapshot) RemainingSeconds(p Player) int64 {
	if p == PlayerOne {
		return s.Player1RemainingSeconds
	}
	return s.Player2RemainingSeconds
}

// TimeControlFor returns the configured control for the given player.
func (s GameSnapshot) TimeControlFor(p Player) TimeControl {
	if p == PlayerOne {
		return s.Player1TimeControl
	}
	return s.Player2TimeControl
}

// Clone returns a deep copy safe to hand to observers.
func (s GameSnapshot) Clone() GameSnapshot {
	c := s
	if s.ActivePlayer != nil {
		p := *s.ActivePlayer
		c.ActivePlayer = &p
	}
	if s.Winner != nil {
		w := *s.Winner
		c.Winner = &w
	}
	c.RecentTimeControls = append([]TimeControl(nil), s.RecentTimeControls...)
	c.CustomTimeControls = append([]TimeControl(nil), s.CustomTimeControls...)
	return c
}
