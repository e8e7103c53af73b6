package ride

import "context"

// Source reads the ride and registration tables. A Source is opened once per run
// and must be closed when the run ends.
type Source interface {
	// Rides returns rides in the order the data source lists them.
	Rides(ctx context.Context) ([]Ride, error)
	Participants(ctx context.Context) (*ParticipantTable, error)
	Close() error
}
