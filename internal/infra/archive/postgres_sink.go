package archive

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq" // For pq.Array
)

const createArchiveTable = `CREATE TABLE IF NOT EXISTS participant_archive (
    id          BIGSERIAL PRIMARY KEY,
    columns     TEXT[]      NOT NULL,
    row_values  TEXT[]      NOT NULL,
    archived_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresSink stores archived rows in the participant_archive table. Each row keeps
// its own column list, so sheets whose header changes over time stay readable.
type PostgresSink struct {
	db *sql.DB
}

// NewPostgresSink creates the archive table if needed.
func NewPostgresSink(ctx context.Context, db *sql.DB) (*PostgresSink, error) {
	if _, err := db.ExecContext(ctx, createArchiveTable); err != nil {
		return nil, fmt.Errorf("error creating participant_archive table: %w", err)
	}
	return &PostgresSink{db: db}, nil
}

// Append inserts all rows in one transaction.
func (s *PostgresSink) Append(ctx context.Context, header []string, rows [][]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting archive transaction: %w", err)
	}
	defer tx.Rollback() // No-op after Commit

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO participant_archive (columns, row_values) VALUES ($1, $2)`)
	if err != nil {
		return fmt.Errorf("error preparing archive insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, pq.Array(header), pq.Array(row)); err != nil {
			return fmt.Errorf("error archiving row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing archive transaction: %w", err)
	}
	return nil
}

func (s *PostgresSink) Close() error {
	return s.db.Close()
}
