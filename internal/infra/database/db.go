package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// A run writes archive rows sequentially, a couple of connections is plenty.
const (
	defaultMaxOpenConns    = 2
	defaultMaxIdleConns    = 1
	defaultConnMaxLifetime = 5 * time.Minute
	pingTimeout            = 10 * time.Second
)

// NewPostgresConnection opens the archive database and pings it to ensure connectivity.
func NewPostgresConnection(ctx context.Context, dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err = db.PingContext(pingCtx); err != nil {
		db.Close() // Close the connection if ping fails
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
