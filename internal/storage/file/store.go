// Package file provides a JSON-file-backed preference and list store.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/rakeshashastri/gameclock/internal/models"
)

// document is the on-disk shape. Each field is decoded independently so one
// corrupted record does not take the others down with it.
type document struct {
	ThemeID  json.RawMessage `json:"theme_id,omitempty"`
	LastUsed json.RawMessage `json:"last_used_time_control,omitempty"`
	Recent   json.RawMessage `json:"recent_time_controls,omitempty"`
	Custom   json.RawMessage `json:"custom_time_controls,omitempty"`
}

// Store persists records in a single JSON file. Corrupted records read back
// as empty and are cleared on the spot, per the storage contract.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a file store at the given path. The file is created lazily
// on first write.
func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) load() document {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Str("path", s.path).Msg("failed to read store file")
		}
		return document{}
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("store file corrupted, clearing")
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Str("path", s.path).Msg("failed to clear corrupted store file")
		}
		return document{}
	}
	return doc
}

func (s *Store) save(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store document: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	return nil
}

// clearRecord drops one corrupted record while keeping the rest.
func (s *Store) clearRecord(doc document, mutate func(*document)) {
	mutate(&doc)
	if err := s.save(doc); err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("failed to clear corrupted record")
	}
}

func (s *Store) GetThemeID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	if len(doc.ThemeID) == 0 {
		return "", nil
	}
	var id string
	if err := json.Unmarshal(doc.ThemeID, &id); err != nil {
		log.Warn().Err(err).Msg("theme record corrupted, clearing")
		s.clearRecord(doc, func(d *document) { d.ThemeID = nil })
		return "", nil
	}
	return id, nil
}

func (s *Store) SaveThemeID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	raw, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("marshal theme id: %w", err)
	}
	doc.ThemeID = raw
	return s.save(doc)
}

func (s *Store) GetLastUsedTimeControl(ctx context.Context) (*models.TimeControl, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	if len(doc.LastUsed) == 0 {
		return nil, nil
	}
	var tc models.TimeControl
	if err := json.Unmarshal(doc.LastUsed, &tc); err != nil {
		log.Warn().Err(err).Msg("last-used record corrupted, clearing")
		s.clearRecord(doc, func(d *document) { d.LastUsed = nil })
		return nil, nil
	}
	return &tc, nil
}

func (s *Store) SaveLastUsedTimeControl(ctx context.Context, tc models.TimeControl) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	raw, err := json.Marshal(tc)
	if err != nil {
		return fmt.Errorf("marshal last-used time control: %w", err)
	}
	doc.LastUsed = raw
	return s.save(doc)
}

func (s *Store) GetRecentTimeControls(ctx context.Context) ([]models.TimeControl, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadList(func(d document) json.RawMessage { return d.Recent },
		func(d *document) { d.Recent = nil }), nil
}

func (s *Store) SaveRecentTimeControls(ctx context.Context, tcs []models.TimeControl) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveList(tcs, func(d *document, raw json.RawMessage) { d.Recent = raw })
}

func (s *Store) GetCustomTimeControls(ctx context.Context) ([]models.TimeControl, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadList(func(d document) json.RawMessage { return d.Custom },
		func(d *document) { d.Custom = nil }), nil
}

func (s *Store) SaveCustomTimeControls(ctx context.Context, tcs []models.TimeControl) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveList(tcs, func(d *document, raw json.RawMessage) { d.Custom = raw })
}

func (s *Store) loadList(pick func(document) json.RawMessage, clear func(*document)) []models.TimeControl {
	doc := s.load()
	raw := pick(doc)
	if len(raw) == 0 {
		return nil
	}
	var tcs []models.TimeControl
	if err := json.Unmarshal(raw, &tcs); err != nil {
		log.Warn().Err(err).Msg("time control list corrupted, clearing")
		s.clearRecord(doc, clear)
		return nil
	}
	return tcs
}

func (s *Store) saveList(tcs []models.TimeControl, set func(*document, json.RawMessage)) error {
	doc := s.load()
	raw, err := json.Marshal(tcs)
	if err != nil {
		return fmt.Errorf("marshal time control list: %w", err)
	}
	set(&doc, raw)
	return s.save(doc)
}
