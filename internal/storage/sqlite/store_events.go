package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hoshiten/goban/internal/goban/event"
)

// AppendEvent appends one applied event to the journal. Ordering comes from
// the rowid, which matches application order because the session appends
// events as it folds them.
func (s *Store) AppendEvent(ctx context.Context, evt event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	timestamp := evt.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	var payload any
	if len(evt.PayloadJSON) > 0 {
		payload = string(evt.PayloadJSON)
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO match_events (match_id, event_type, actor, payload, created_at)
VALUES (?, ?, ?, ?, ?)`,
		evt.MatchID, string(evt.Type), evt.Actor, payload, toMillis(timestamp),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// ListEvents returns every journaled event for a match in append order.
func (s *Store) ListEvents(ctx context.Context, matchID string) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT match_id, event_type, actor, payload, created_at
FROM match_events
WHERE match_id = ?
ORDER BY id ASC`, matchID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		var (
			evt       event.Event
			eventType string
			payload   sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&evt.MatchID, &eventType, &evt.Actor, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		evt.Type = event.Type(eventType)
		evt.Timestamp = fromMillis(createdAt)
		if payload.Valid && payload.String != "" {
			evt.PayloadJSON = json.RawMessage(payload.String)
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}
