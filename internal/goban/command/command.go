// Package command defines the command envelope and decision type used by the
// match write path. A command is an intent; the decider turns it into either
// events or rejections, never both.
package command

import (
	"encoding/json"
	"time"

	"github.com/hoshiten/goban/internal/goban/event"
)

// Type identifies a command kind, namespaced as "<entity>.<intent>".
type Type string

// Command is the envelope for a match intent, local or remote.
type Command struct {
	MatchID     string
	Type        Type
	Actor       string // stone color submitting the intent
	PayloadJSON json.RawMessage
}

// Decision represents the pure outcome of handling a command.
type Decision struct {
	Events     []event.Event
	Rejections []Rejection
}

// Rejection captures a domain-level reason a command was declined.
type Rejection struct {
	Code    string
	Message string
}

// Accept returns a decision that emits the provided events.
func Accept(events ...event.Event) Decision {
	return Decision{Events: append([]event.Event(nil), events...)}
}

// Reject returns a decision that carries the provided rejections.
func Reject(rejections ...Rejection) Decision {
	return Decision{Rejections: append([]Rejection(nil), rejections...)}
}

// NewEvent builds an event.Event by copying the shared envelope fields from
// a command. Callers supply the event-specific type, payload, and timestamp.
func NewEvent(cmd Command, eventType event.Type, payloadJSON []byte, now time.Time) event.Event {
	return event.Event{
		MatchID:     cmd.MatchID,
		Type:        eventType,
		Timestamp:   now,
		Actor:       cmd.Actor,
		PayloadJSON: payloadJSON,
	}
}
