package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// DefaultListLimit bounds ListMoves when the caller passes no limit.
const DefaultListLimit = 50

// Move is one journaled relocation attempt.
type Move struct {
	ID          int64
	BatchID     string
	Source      string
	Destination string
	Outcome     string
	Bytes       int64
	Error       string
	StartedAt   time.Time
	FinishedAt  time.Time
}

const moveColumns = "id, batch_id, source_path, destination_path, outcome, bytes, error_message, started_at, finished_at"

// RecordMove appends a relocation outcome to the journal and returns its row id.
func (s *Store) RecordMove(ctx context.Context, move Move) (int64, error) {
	if move.BatchID == "" {
		return 0, fmt.Errorf("record move: batch id is required")
	}
	if move.Source == "" {
		return 0, fmt.Errorf("record move: source path is required")
	}
	finished := move.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}
	started := move.StartedAt
	if started.IsZero() {
		started = finished
	}
	res, err := s.execWithRetry(ctx,
		`INSERT INTO moves (
            batch_id, source_path, destination_path, outcome, bytes,
            error_message, started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		move.BatchID,
		move.Source,
		nullableString(move.Destination),
		move.Outcome,
		move.Bytes,
		nullableString(move.Error),
		formatTime(started),
		formatTime(finished),
	)
	if err != nil {
		return 0, fmt.Errorf("insert move: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// ListMoves returns the most recent moves, newest first.
func (s *Store) ListMoves(ctx context.Context, limit int) ([]Move, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT `+moveColumns+` FROM moves ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list moves: %w", err)
	}
	return collectMoves(rows)
}

// MovesForBatch returns every move recorded under batchID in the order they
// were journaled.
func (s *Store) MovesForBatch(ctx context.Context, batchID string) ([]Move, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT `+moveColumns+` FROM moves WHERE batch_id = ? ORDER BY id`, batchID)
	if err != nil {
		return nil, fmt.Errorf("moves for batch: %w", err)
	}
	return collectMoves(rows)
}

// OutcomeCounts tallies journaled moves by outcome.
func (s *Store) OutcomeCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT outcome, COUNT(1) FROM moves GROUP BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("outcome counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var outcome string
		var count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, err
		}
		counts[outcome] = count
	}
	return counts, rows.Err()
}

func collectMoves(rows *sql.Rows) ([]Move, error) {
	defer rows.Close()
	var moves []Move
	for rows.Next() {
		move, err := scanMove(rows)
		if err != nil {
			return nil, fmt.Errorf("scan move: %w", err)
		}
		moves = append(moves, move)
	}
	return moves, rows.Err()
}

func scanMove(scanner interface{ Scan(dest ...any) error }) (Move, error) {
	var (
		move        Move
		destination sql.NullString
		errorText   sql.NullString
		startedRaw  string
		finishedRaw string
	)
	if err := scanner.Scan(
		&move.ID,
		&move.BatchID,
		&move.Source,
		&destination,
		&move.Outcome,
		&move.Bytes,
		&errorText,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return Move{}, err
	}
	move.Destination = destination.String
	move.Error = errorText.String
	if started, err := parseTimeString(startedRaw); err == nil {
		move.StartedAt = started
	}
	if finished, err := parseTimeString(finishedRaw); err == nil {
		move.FinishedAt = finished
	}
	return move, nil
}
