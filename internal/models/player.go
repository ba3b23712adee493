package models

// Player identifies one of the two clock owners.
type Player string

const (
	PlayerOne Player = "PLAYER_ONE"
	PlayerTwo Player = "PLAYER_TWO"
)

// Opponent returns the other player.
func (p Player) Opponent() Player {
	if p == PlayerOne {
		return PlayerTwo
	}
	return PlayerOne
}

// Valid reports whether p is one of the two known players.
func (p Player) Valid() bool {
	return p == PlayerOne || p == PlayerTwo
}

// GamePhase represents the lifecycle phase of a game session.
type GamePhase string

const (
	PhaseStopped  GamePhase = "STOPPED"
	PhaseRunning  GamePhase = "RUNNING"
	PhasePaused   GamePhase = "PAUSED"
	PhaseGameOver GamePhase = "GAME_OVER"
)
