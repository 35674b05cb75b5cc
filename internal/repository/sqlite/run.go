package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/algotest/internal/apperror"
	"github.com/sakif/algotest/internal/model"
	"github.com/sakif/algotest/internal/repository"
)

var _ repository.RunRepository = (*DB)(nil)

const runColumns = `id, algorithm_id, algorithm_name, raw_input, status,
	input, output, execution_time, error, created_at`

// Create inserts run and fills in its ID and CreatedAt.
//
// xid ids start with a timestamp, so sorting by id is sorting by creation
// order; List uses that as the tie-breaker when two runs share a created_at.
func (db *DB) Create(ctx context.Context, run *model.RunRecord) error {
	run.ID = xid.New().String()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO runs (`+runColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.AlgorithmID,
		run.AlgorithmName,
		run.RawInput,
		string(run.Status),
		run.Input,
		run.Output,
		run.ExecutionTime,
		run.Error,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating run: %w", err)
	}

	return nil
}

// GetByID retrieves one run. A missing id is apperror.ErrNotFound.
func (db *DB) GetByID(ctx context.Context, id string) (*model.RunRecord, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ?`,
		id,
	)

	run, err := scanRun(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("run", id)
		}
		return nil, fmt.Errorf("sqlite: getting run %s: %w", id, err)
	}

	return run, nil
}

// List returns runs newest first.
func (db *DB) List(ctx context.Context, opts repository.ListOptions) ([]model.RunRecord, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + runColumns + ` FROM runs`
	args := make([]any, 0, 3)
	if opts.AlgorithmID != 0 {
		query += ` WHERE algorithm_id = ?`
		args = append(args, opts.AlgorithmID)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing runs: %w", err)
	}
	defer rows.Close()

	runs := make([]model.RunRecord, 0, limit)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning run row: %w", err)
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating runs: %w", err)
	}

	return runs, nil
}

// Clear deletes the whole history and reports how many runs were removed.
func (db *DB) Clear(ctx context.Context) (int64, error) {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM runs`)
	if err != nil {
		return 0, fmt.Errorf("sqlite: clearing runs: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return n, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*model.RunRecord, error) {
	var (
		run    model.RunRecord
		status string
	)
	err := s.Scan(
		&run.ID,
		&run.AlgorithmID,
		&run.AlgorithmName,
		&run.RawInput,
		&status,
		&run.Input,
		&run.Output,
		&run.ExecutionTime,
		&run.Error,
		&run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	run.Status = model.RunStatus(status)
	return &run, nil
}
