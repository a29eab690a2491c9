package sqlite

import (
	"context"
	"fmt"

	"github.com/hoshiten/goban/internal/goban/match"
	"github.com/hoshiten/goban/internal/storage"
)

const defaultResultsLimit = 20

// SaveResult upserts the outcome of a finished match. A restarted and
// refinished match overwrites its earlier record.
func (s *Store) SaveResult(ctx context.Context, record storage.ResultRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO match_results (match_id, winner, score_black, score_white, moves, finished_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(match_id) DO UPDATE SET
    winner = excluded.winner,
    score_black = excluded.score_black,
    score_white = excluded.score_white,
    moves = excluded.moves,
    finished_at = excluded.finished_at`,
		record.MatchID, string(record.Winner), record.ScoreBlack, record.ScoreWhite,
		record.Moves, toMillis(record.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert result: %w", err)
	}
	return nil
}

// ListResults returns the most recently finished matches, newest first.
func (s *Store) ListResults(ctx context.Context, limit int) ([]storage.ResultRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = defaultResultsLimit
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT match_id, winner, score_black, score_white, moves, finished_at
FROM match_results
ORDER BY finished_at DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var records []storage.ResultRecord
	for rows.Next() {
		var (
			record     storage.ResultRecord
			winner     string
			finishedAt int64
		)
		if err := rows.Scan(&record.MatchID, &winner, &record.ScoreBlack, &record.ScoreWhite, &record.Moves, &finishedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		record.Winner = match.Result(winner)
		record.FinishedAt = fromMillis(finishedAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return records, nil
}
