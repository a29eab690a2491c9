package event

import (
	"encoding/json"
	"time"
)

// Type identifies an event kind, namespaced as "<entity>.<fact>".
type Type string

// Event is the envelope shared by every match fact.
type Event struct {
	MatchID     string          `json:"match_id"`
	Type        Type            `json:"type"`
	Timestamp   time.Time       `json:"timestamp"`
	Actor       string          `json:"actor,omitempty"` // stone color that caused the fact
	PayloadJSON json.RawMessage `json:"payload,omitempty"`
}
