package archive

import "context"

// Sink is an append-only store for participant rows of rides that already started.
type Sink interface {
	// Append stores rows whose columns follow header. The header is only
	// written by sinks that keep one, and only once.
	Append(ctx context.Context, header []string, rows [][]string) error
	Close() error
}
