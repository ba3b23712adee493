// Package prefs manages the small per-user preferences: selected theme and
// the last-used time control.
package prefs

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/rakeshashastri/gameclock/internal/models"
)

// Repository defines what the prefs app needs from the key-value store.
type Repository interface {
	GetThemeID(ctx context.Context) (string, error)
	SaveThemeID(ctx context.Context, id string) error
	GetLastUsedTimeControl(ctx context.Context) (*models.TimeControl, error)
	SaveLastUsedTimeControl(ctx context.Context, tc models.TimeControl) error
}

// App caches preferences in memory and persists best-effort. Read failures
// fall back to built-in defaults; write failures are logged and swallowed so
// a broken store never affects the live session.
type App struct {
	repo Repository

	mu       sync.Mutex
	themeID  string
	lastUsed *models.TimeControl
}

// NewApp creates a prefs App over the given repository.
func NewApp(repo Repository) *App {
	return &App{repo: repo, themeID: models.ThemeDefault.ID}
}

// Load hydrates preferences from storage.
func (a *App) Load(ctx context.Context) {
	themeID, err := a.repo.GetThemeID(ctx)
	if err != nil || !models.KnownThemeID(themeID) {
		if err != nil {
			log.Warn().Err(err).Msg("failed to load theme preference, using default")
		}
		themeID = models.ThemeDefault.ID
	}

	lastUsed, err := a.repo.GetLastUsedTimeControl(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load last-used time control")
		lastUsed = nil
	}
	if lastUsed != nil && lastUsed.Validate() != nil {
		lastUsed = nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.themeID = themeID
	a.lastUsed = lastUsed
}

// Theme returns the selected theme.
func (a *App) Theme() models.AppTheme {
	a.mu.Lock()
	defer a.mu.Unlock()
	return models.ThemeByID(a.themeID)
}

// SelectTheme persists a new theme selection. Unknown ids are ignored.
func (a *App) SelectTheme(ctx context.Context, id string) models.AppTheme {
	if !models.KnownThemeID(id) {
		log.Warn().Str("theme_id", id).Msg("ignoring unknown theme id")
		return a.Theme()
	}

	a.mu.Lock()
	a.themeID = id
	a.mu.Unlock()

	if err := a.repo.SaveThemeID(ctx, id); err != nil {
		log.Warn().Err(err).Str("theme_id", id).Msg("failed to persist theme selection")
	}
	return models.ThemeByID(id)
}

// LastUsedTimeControl returns the last-used control, or nil when none has
// been saved.
func (a *App) LastUsedTimeControl() *models.TimeControl {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lastUsed == nil {
		return nil
	}
	tc := *a.lastUsed
	return &tc
}

// SaveLastUsedTimeControl records the control most recently applied to the
// clock.
func (a *App) SaveLastUsedTimeControl(ctx context.Context, tc models.TimeControl) {
	a.mu.Lock()
	copied := tc
	a.lastUsed = &copied
	a.mu.Unlock()

	if err := a.repo.SaveLastUsedTimeControl(ctx, tc); err != nil {
		log.Warn().Err(err).Str("time_control_id", tc.ID).Msg("failed to persist last-used time control")
	}
}
