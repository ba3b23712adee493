// Package memory provides in-memory preference and list stores. It backs
// tests and the default daemon mode where nothing persists across restarts.
package memory

import (
	"context"
	"sync"

	"github.com/rakeshashastri/gameclock/internal/models"
)

// Store holds every record in memory. It satisfies both the catalog and
// prefs repository contracts.
type Store struct {
	mu       sync.Mutex
	themeID  string
	lastUsed *models.TimeControl
	recent   []models.TimeControl
	custom   []models.TimeControl
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{}
}

func (s *Store) GetThemeID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.themeID, nil
}

func (s *Store) SaveThemeID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.themeID = id
	return nil
}

func (s *Store) GetLastUsedTimeControl(ctx context.Context) (*models.TimeControl, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastUsed == nil {
		return nil, nil
	}
	tc := *s.lastUsed
	return &tc, nil
}

func (s *Store) SaveLastUsedTimeControl(ctx context.Context, tc models.TimeControl) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = &tc
	return nil
}

func (s *Store) GetRecentTimeControls(ctx context.Context) ([]models.TimeControl, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.TimeControl(nil), s.recent...), nil
}

func (s *Store) SaveRecentTimeControls(ctx context.Context, tcs []models.TimeControl) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recent = append([]models.TimeControl(nil), tcs...)
	return nil
}

func (s *Store) GetCustomTimeControls(ctx context.Context) ([]models.TimeControl, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.TimeControl(nil), s.custom...), nil
}

func (s *Store) SaveCustomTimeControls(ctx context.Context, tcs []models.TimeControl) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.custom = append([]models.TimeControl(nil), tcs...)
	return nil
}
