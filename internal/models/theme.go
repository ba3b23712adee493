package models

// AppTheme is a cosmetic color pair for the two player areas. Colors are
// 0xAARRGGBB values, matching what clients render.
type AppTheme struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Player1Color uint32 `json:"player1_color"`
	Player2Color uint32 `json:"player2_color"`
	IsDark       bool   `json:"is_dark"`
}

var (
	ThemeDefault = AppTheme{ID: "default", Name: "Default", Player1Color: 0xFF1A1A1A, Player2Color: 0xFFE5E5E5}
	ThemeModern  = AppTheme{ID: "modern", Name: "Modern", Player1Color: 0xFF003366, Player2Color: 0xFFFFCC00}
	ThemeForest  = AppTheme{ID: "forest", Name: "Forest", Player1Color: 0xFF1A4D33, Player2Color: 0xFFE5CC99}
	ThemeOcean   = AppTheme{ID: "ocean", Name: "Ocean", Player1Color: 0xFF006666, Player2Color: 0xFFCCE5FF}
)

// AllThemes returns the fixed built-in theme table.
func AllThemes() []AppTheme {
	return []AppTheme{ThemeDefault, ThemeModern, ThemeForest, ThemeOcean}
}

// ThemeByID resolves a theme id, falling back to the default theme for
// unknown or corrupted ids.
func ThemeByID(id string) AppTheme {
	for _, t := range AllThemes() {
		if t.ID == id {
			return t
		}
	}
	return ThemeDefault
}

// KnownThemeID reports whether id names a built-in theme.
func KnownThemeID(id string) bool {
	for _, t := range AllThemes() {
		if t.ID == id {
			return true
		}
	}
	return false
}
