package catalog

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/rakeshashastri/gameclock/internal/models"
)

// ErrLimitExceeded is returned when a sixth distinct custom control is added.
var ErrLimitExceeded = errors.New("custom time control limit reached")

// Repository defines what the catalog app needs from the list store. Reads
// that fail are recovered to empty lists by the app; writes are best-effort.
type Repository interface {
	GetRecentTimeControls(ctx context.Context) ([]models.TimeControl, error)
	SaveRecentTimeControls(ctx context.Context, tcs []models.TimeControl) error
	GetCustomTimeControls(ctx context.Context) ([]models.TimeControl, error)
	SaveCustomTimeControls(ctx context.Context, tcs []models.TimeControl) error
}

// App manages the bounded time-control collections: recent picks (most
// recent first, capped at 3) and user-defined customs (capped at 5). The
// in-memory copy is the source of truth; the repository is a durability
// layer whose failures never corrupt it.
type App struct {
	repo Repository

	mu     sync.Mutex
	recent []models.TimeControl
	custom []models.TimeControl
}

// NewApp creates a catalog App over the given repository.
func NewApp(repo Repository) *App {
	return &App{repo: repo}
}

// Load hydrates the catalog from storage. Read failures fall back to empty
// lists so a broken store never blocks a session.
func (a *App) Load(ctx context.Context) {
	recent, err := a.repo.GetRecentTimeControls(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load recent time controls, starting empty")
		recent = nil
	}
	custom, err := a.repo.GetCustomTimeControls(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load custom time controls, starting empty")
		custom = nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.recent = truncateRecent(dedupeByID(recent))
	a.custom = dedupeByID(custom)
	if len(a.custom) > models.MaxCustomTimeControls {
		a.custom = a.custom[:models.MaxCustomTimeControls]
	}
}

// RecentTimeControls returns the recent list, most recent first.
func (a *App) RecentTimeControls() []models.TimeControl {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.TimeControl(nil), a.recent...)
}

// CustomTimeControls returns the custom list.
func (a *App) CustomTimeControls() []models.TimeControl {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.TimeControl(nil), a.custom...)
}

// SaveRecent records a pick: de-duplicates by id, inserts at the front and
// truncates to the three most recent.
func (a *App) SaveRecent(ctx context.Context, tc models.TimeControl) {
	a.mu.Lock()
	updated := append([]models.TimeControl{tc}, removeByID(a.recent, tc.ID)...)
	a.recent = truncateRecent(updated)
	persisted := append([]models.TimeControl(nil), a.recent...)
	a.mu.Unlock()

	if err := a.repo.SaveRecentTimeControls(ctx, persisted); err != nil {
		log.Warn().Err(err).Str("time_control_id", tc.ID).Msg("failed to persist recent time controls")
	}
}

// SaveCustom adds a custom control, or updates it in place when the id
// already exists. Adding a sixth distinct id fails with ErrLimitExceeded and
// leaves the catalog untouched.
func (a *App) SaveCustom(ctx context.Context, tc models.TimeControl) error {
	a.mu.Lock()
	if len(a.custom) >= models.MaxCustomTimeControls && !containsID(a.custom, tc.ID) {
		a.mu.Unlock()
		return ErrLimitExceeded
	}
	a.custom = append(removeByID(a.custom, tc.ID), tc)
	persisted := append([]models.TimeControl(nil), a.custom...)
	a.mu.Unlock()

	if err := a.repo.SaveCustomTimeControls(ctx, persisted); err != nil {
		log.Warn().Err(err).Str("time_control_id", tc.ID).Msg("failed to persist custom time controls")
	}
	return nil
}

// DeleteCustom removes a custom control by id. Removing an unknown id is a
// no-op.
func (a *App) DeleteCustom(ctx context.Context, id string) {
	a.mu.Lock()
	before := len(a.custom)
	a.custom = removeByID(a.custom, id)
	changed := len(a.custom) != before
	persisted := append([]models.TimeControl(nil), a.custom...)
	a.mu.Unlock()

	if !changed {
		return
	}
	if err := a.repo.SaveCustomTimeControls(ctx, persisted); err != nil {
		log.Warn().Err(err).Str("time_control_id", id).Msg("failed to persist custom time controls")
	}
}

func removeByID(tcs []models.TimeControl, id string) []models.TimeControl {
	out := make([]models.TimeControl, 0, len(tcs))
	for _, tc := range tcs {
		if tc.ID != id {
			out = append(out, tc)
		}
	}
	return out
}

func containsID(tcs []models.TimeControl, id string) bool {
	for _, tc := range tcs {
		if tc.ID == id {
			return true
		}
	}
	return false
}

func dedupeByID(tcs []models.TimeControl) []models.TimeControl {
	seen := make(map[string]bool, len(tcs))
	out := make([]models.TimeControl, 0, len(tcs))
	for _, tc := range tcs {
		if seen[tc.ID] {
			continue
		}
		seen[tc.ID] = true
		out = append(out, tc)
	}
	return out
}

func truncateRecent(tcs []models.TimeControl) []models.TimeControl {
	if len(tcs) > models.MaxRecentTimeControls {
		return tcs[:models.MaxRecentTimeControls]
	}
	return tcs
}
