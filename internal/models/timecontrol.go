package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ValidationError describes a rejected TimeControl field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid time control: %s %s", e.Field, e.Reason)
}

// TimeControl is a named pairing of starting time and per-move increment.
// Values are immutable once constructed; identity for catalog de-duplication
// is the ID, content comparison is by value.
type TimeControl struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	StartingTimeSeconds int64  `json:"starting_time_seconds"`
	IncrementSeconds    int64  `json:"increment_seconds"`
}

// NewTimeControl validates and constructs a TimeControl. An empty id gets a
// generated UUID.
func NewTimeControl(id, name string, startingTimeSeconds, incrementSeconds int64) (TimeControl, error) {
	if strings.TrimSpace(name) == "" {
		return TimeControl{}, &ValidationError{Field: "name", Reason: "cannot be blank"}
	}
	if startingTimeSeconds <= 0 {
		return TimeControl{}, &ValidationError{Field: "starting_time_seconds", Reason: "must be greater than 0"}
	}
	if incrementSeconds < 0 {
		return TimeControl{}, &ValidationError{Field: "increment_seconds", Reason: "must be 0 or greater"}
	}
	if id == "" {
		id = uuid.New().String()
	}
	return TimeControl{
		ID:                  id,
		Name:                name,
		StartingTimeSeconds: startingTimeSeconds,
		IncrementSeconds:    incrementSeconds,
	}, nil
}

// Validate re-checks the constraints on an already-built value, for instance
// one decoded from storage or from a client request.
func (tc TimeControl) Validate() error {
	_, err := NewTimeControl(tc.ID, tc.Name, tc.StartingTimeSeconds, tc.IncrementSeconds)
	return err
}

func mustTimeControl(id, name string, startingTimeSeconds, incrementSeconds int64) TimeControl {
	tc, err := NewTimeControl(id, name, startingTimeSeconds, incrementSeconds)
	if err != nil {
		panic(err)
	}
	return tc
}

// Built-in preset tables, grouped by pace. Ids are fixed so that recents
// de-duplicate across restarts.
var (
	BulletPresets = []TimeControl{
		mustTimeControl("bullet-1", "1 min", 60, 0),
		mustTimeControl("bullet-1-1", "1 min + 1 sec", 60, 1),
		mustTimeControl("bullet-2-1", "2 min + 1 sec", 120, 1),
	}

	BlitzPresets = []TimeControl{
		mustTimeControl("blitz-3", "3 min", 180, 0),
		mustTimeControl("blitz-3-2", "3 min + 2 sec", 180, 2),
		mustTimeControl("blitz-5", "5 min", 300, 0),
		mustTimeControl("blitz-5-3", "5 min + 3 sec", 300, 3),
	}

	RapidPresets = []TimeControl{
		mustTimeControl("rapid-10", "10 min", 600, 0),
		mustTimeControl("rapid-10-5", "10 min + 5 sec", 600, 5),
		mustTimeControl("rapid-15-10", "15 min + 10 sec", 900, 10),
	}
)

// AllPresets returns every built-in preset in display order.
func AllPresets() []TimeControl {
	out := make([]TimeControl, 0, len(BulletPresets)+len(BlitzPresets)+len(RapidPresets))
	out = append(out, BulletPresets...)
	out = append(out, BlitzPresets...)
	out = append(out, RapidPresets...)
	return out
}

// DefaultTimeControl is the control applied when nothing has been saved yet:
// 5 minutes, no increment.
func DefaultTimeControl() TimeControl {
	return BlitzPresets[2]
}
