package peer

import (
	"encoding/json"
	"time"

	"github.com/hoshiten/goban/internal/goban/board"
	"github.com/hoshiten/goban/internal/goban/match"
	"github.com/hoshiten/goban/internal/platform/errors"
)

// Kind enumerates the wire message kinds. The set is closed: the dispatcher
// switches over every kind and rejects anything else.
type Kind string

const (
	KindMove        Kind = "MOVE"
	KindPass        Kind = "PASS"
	KindChat        Kind = "CHAT"
	KindSync        Kind = "SYNC"
	KindUndoReq     Kind = "UNDO_REQ"
	KindUndoAccept  Kind = "UNDO_ACCEPT"
	KindUndoDecline Kind = "UNDO_DECLINE"
	KindRestart     Kind = "RESTART"
)

// Envelope is the wire format for peer messages.
type Envelope struct {
	Kind    Kind            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	From    string          `json:"from,omitempty"`
}

// MovePayload carries the point of a MOVE message.
type MovePayload struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Point converts the wire coordinates to a board point.
func (p MovePayload) Point() board.Point {
	return board.Point{X: p.X, Y: p.Y}
}

// ChatMessage is a single chat log record. Chat rides the same channel as
// match traffic but never touches match state.
type ChatMessage struct {
	From   string    `json:"from"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

// SyncPayload is the one-time full-state transfer sent by the host when the
// connection opens. The joiner replaces its local state wholesale.
type SyncPayload struct {
	Match match.State   `json:"match_state"`
	Chat  []ChatMessage `json:"chat_log"`
}

// NewEnvelope builds an envelope with a JSON-encoded payload. A nil payload
// produces an envelope with no payload bytes.
func NewEnvelope(kind Kind, payload any, from string) (Envelope, error) {
	env := Envelope{Kind: kind, From: from}
	if payload == nil {
		return env, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, errors.Wrap(errors.CodeEnvelopeMalformed, "encode "+string(kind)+" payload", err)
	}
	env.Payload = data
	return env, nil
}

// DecodePayload unmarshals the envelope payload into target.
func (e Envelope) DecodePayload(target any) error {
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(errors.CodeEnvelopeMalformed, "decode "+string(e.Kind)+" payload", err)
	}
	return nil
}

// KnownKind reports whether k is part of the closed message set.
func KnownKind(k Kind) bool {
	switch k {
	case KindMove, KindPass, KindChat, KindSync, KindUndoReq, KindUndoAccept, KindUndoDecline, KindRestart:
		return true
	default:
		return false
	}
}
