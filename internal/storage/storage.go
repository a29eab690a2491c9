package storage

import (
	"context"
	"time"

	"github.com/hoshiten/goban/internal/goban/event"
	"github.com/hoshiten/goban/internal/goban/match"
	apperrors "github.com/hoshiten/goban/internal/platform/errors"
)

// ErrNotFound indicates a requested persistence record is missing.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// ResultRecord captures the outcome of a finished match.
type ResultRecord struct {
	MatchID    string
	Winner     match.Result
	ScoreBlack int
	ScoreWhite int
	Moves      int
	FinishedAt time.Time
}

// EventJournal records every applied match event in application order. The
// journal is append-only; replaying it from the start reproduces the match.
type EventJournal interface {
	AppendEvent(ctx context.Context, evt event.Event) error
	ListEvents(ctx context.Context, matchID string) ([]event.Event, error)
}

// ResultStore persists finished match outcomes for later review.
type ResultStore interface {
	SaveResult(ctx context.Context, record ResultRecord) error
	ListResults(ctx context.Context, limit int) ([]ResultRecord, error)
}

// TelemetryEvent captures one operational occurrence worth keeping.
type TelemetryEvent struct {
	Name      string
	Severity  string
	MatchID   string
	Detail    string
	Timestamp time.Time
}

// TelemetryStore persists operational telemetry events.
type TelemetryStore interface {
	AppendTelemetryEvent(ctx context.Context, evt TelemetryEvent) error
	ListTelemetryEvents(ctx context.Context, limit int) ([]TelemetryEvent, error)
}
