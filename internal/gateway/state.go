package gateway

import (
	"fmt"

	"github.com/rakeshashastri/gameclock/internal/models"
)

// GameStateResponse is the wire representation of the snapshot, with
// display-formatted clocks and the selected theme attached.
type GameStateResponse struct {
	models.GameSnapshot
	Player1Display string          `json:"player1_display"`
	Player2Display string          `json:"player2_display"`
	Theme          models.AppTheme `json:"theme"`
}

// NewGameStateResponse builds the wire state from a snapshot and theme.
func NewGameStateResponse(snap models.GameSnapshot, theme models.AppTheme) GameStateResponse {
	return GameStateResponse{
		GameSnapshot:   snap,
		Player1Display: FormatClockTime(snap.Player1RemainingSeconds),
		Player2Display: FormatClockTime(snap.Player2RemainingSeconds),
		Theme:          theme,
	}
}

// FormatClockTime renders remaining seconds as "m:ss" (e.g. "5:00", "0:09").
func FormatClockTime(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
