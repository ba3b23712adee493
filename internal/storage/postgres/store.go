// Package postgres provides pgx-backed preference and list stores. Records
// live as jsonb documents keyed by name, one row per record.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/rakeshashastri/gameclock/internal/models"
)

const (
	keyThemeID  = "selected_theme"
	keyLastUsed = "last_used_time_control"
	keyRecent   = "recent_time_controls"
	keyCustom   = "custom_time_controls"
)

// Store persists records in a single key/value table.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects a pool to the given DSN.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

// EnsureSchema creates the records table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS gameclock_records (
			key   TEXT PRIMARY KEY,
			value JSONB NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("create records table: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM gameclock_records WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get record %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", key, err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO gameclock_records (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, raw)
	if err != nil {
		return fmt.Errorf("set record %s: %w", key, err)
	}
	return nil
}

// clear drops a corrupted record so the next read starts clean.
func (s *Store) clear(ctx context.Context, key string) {
	if _, err := s.pool.Exec(ctx, `DELETE FROM gameclock_records WHERE key = $1`, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to clear corrupted record")
	}
}

func (s *Store) GetThemeID(ctx context.Context) (string, error) {
	raw, ok, err := s.get(ctx, keyThemeID)
	if err != nil || !ok {
		return "", err
	}
	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		log.Warn().Err(err).Msg("theme record corrupted, clearing")
		s.clear(ctx, keyThemeID)
		return "", nil
	}
	return id, nil
}

func (s *Store) SaveThemeID(ctx context.Context, id string) error {
	return s.set(ctx, keyThemeID, id)
}

func (s *Store) GetLastUsedTimeControl(ctx context.Context) (*models.TimeControl, error) {
	raw, ok, err := s.get(ctx, keyLastUsed)
	if err != nil || !ok {
		return nil, err
	}
	var tc models.TimeControl
	if err := json.Unmarshal(raw, &tc); err != nil {
		log.Warn().Err(err).Msg("last-used record corrupted, clearing")
		s.clear(ctx, keyLastUsed)
		return nil, nil
	}
	return &tc, nil
}

func (s *Store) SaveLastUsedTimeControl(ctx context.Context, tc models.TimeControl) error {
	return s.set(ctx, keyLastUsed, tc)
}

func (s *Store) GetRecentTimeControls(ctx context.Context) ([]models.TimeControl, error) {
	return s.getList(ctx, keyRecent)
}

func (s *Store) SaveRecentTimeControls(ctx context.Context, tcs []models.TimeControl) error {
	return s.set(ctx, keyRecent, tcs)
}

func (s *Store) GetCustomTimeControls(ctx context.Context) ([]models.TimeControl, error) {
	return s.getList(ctx, keyCustom)
}

func (s *Store) SaveCustomTimeControls(ctx context.Context, tcs []models.TimeControl) error {
	return s.set(ctx, keyCustom, tcs)
}

func (s *Store) getList(ctx context.Context, key string) ([]models.TimeControl, error) {
	raw, ok, err := s.get(ctx, key)
	if err != nil || !ok {
		return nil, err
	}
	var tcs []models.TimeControl
	if err := json.Unmarshal(raw, &tcs); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("time control list corrupted, clearing")
		s.clear(ctx, key)
		return nil, nil
	}
	return tcs, nil
}
