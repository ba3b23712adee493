package gateway

import (
	"encoding/json"
	"time"
)

// WireEventType identifies a message pushed to WebSocket clients.
type WireEventType string

const (
	// WireEventSnapshot carries a full snapshot after every engine mutation.
	WireEventSnapshot WireEventType = "Snapshot"
	// Domain event types pass through with the same names the engine
	// publishes them under.
)

// WireEvent is the frame sent to WebSocket clients.
type WireEvent struct {
	ID        string          `json:"id"`
	Type      WireEventType   `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}
