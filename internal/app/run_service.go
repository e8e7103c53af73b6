package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ride_notifier/internal/domain/archive"
	"ride_notifier/internal/domain/checkpoint"
	"ride_notifier/internal/domain/ride"

	"github.com/sirupsen/logrus"
)

// DefaultLookback is the window assumed on the first run, when no checkpoint exists.
const DefaultLookback = 5 * time.Minute

// SourceOpener opens the ride data source for a single run.
type SourceOpener func(ctx context.Context) (ride.Source, error)

// Dispatcher is the part of NotificationService a run depends on.
type Dispatcher interface {
	Dispatch(ctx context.Context, r ride.Ride, participants []ride.Participant, now time.Time) (DispatchResult, error)
	CheckHeartbeat(ctx context.Context, now time.Time) (bool, error)
}

// RunService executes one notify-then-archive batch.
type RunService struct {
	openSource     SourceOpener
	dispatcher     Dispatcher
	sink           archive.Sink
	state          checkpoint.Store
	checkpointPath string
	leadTime       time.Duration
	logger         logrus.FieldLogger
}

func NewRunService(
	openSource SourceOpener,
	dispatcher Dispatcher,
	sink archive.Sink,
	state checkpoint.Store,
	checkpointPath string,
	leadTime time.Duration,
	logger logrus.FieldLogger,
) *RunService {
	return &RunService{
		openSource:     openSource,
		dispatcher:     dispatcher,
		sink:           sink,
		state:          state,
		checkpointPath: checkpointPath,
		leadTime:       leadTime,
		logger:         logger,
	}
}

// Run processes the time slice between the stored checkpoint and now.
// Rides whose notification fails as a whole are reported in the returned error
// without stopping the run; any other failure aborts it before the checkpoint moves.
func (s *RunService) Run(ctx context.Context, now time.Time) error {
	stored, err := s.state.Load(s.checkpointPath, checkpoint.FromTime(now.Add(-DefaultLookback)))
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}
	previous := checkpoint.ToTime(stored)
	// The stored checkpoint only keeps checkpoint.Precision; the next run's previous
	// must equal this run's current.
	current := now.Truncate(checkpoint.Precision)
	if current.Before(previous) {
		s.logger.Warnf("Clock is behind the last checkpoint (%s), nothing to do this run", previous.Format(time.RFC3339))
		current = previous
	}
	s.logger.Debugf("Processing window (%s, %s]", previous.Format(time.RFC3339), current.Format(time.RFC3339))

	source, err := s.openSource(ctx)
	if err != nil {
		return fmt.Errorf("failed to open ride source: %w", err)
	}
	defer func() {
		if errClose := source.Close(); errClose != nil {
			s.logger.Warnf("Failed to close ride source: %v", errClose)
		}
	}()

	rides, err := source.Rides(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch rides: %w", err)
	}
	table, err := source.Participants(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch participants: %w", err)
	}

	rideErrs, err := s.notify(ctx, rides, table, previous, current)
	if err != nil {
		return err
	}
	if err := s.backup(ctx, rides, table, previous, current); err != nil {
		return err
	}

	if err := s.state.Save(s.checkpointPath, checkpoint.FromTime(current)); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return errors.Join(rideErrs...)
}

func (s *RunService) notify(ctx context.Context, rides []ride.Ride, table *ride.ParticipantTable, previous, current time.Time) ([]error, error) {
	var rideErrs []error
	dispatched := 0
	for _, r := range rides {
		if !InWindow(r.Start, previous, current, s.leadTime) {
			continue
		}
		log := s.logger.WithField("ride", r.ID)
		if r.Canceled {
			log.Infof("Ride %s is canceled, no mail sent", r.ID)
			continue
		}
		matched := MatchParticipants(r.ID, table.Participants)
		if len(matched) == 0 {
			log.Infof("No participants registered for %s, no mail sent", r.ID)
			continue
		}

		dispatched++
		if _, err := s.dispatcher.Dispatch(ctx, r, matched, current); err != nil {
			if errors.Is(err, ride.ErrEmailColumnMissing) {
				log.Errorf("Skipping ride %s: %v", r.ID, err)
				rideErrs = append(rideErrs, err)
				continue
			}
			return nil, err
		}
	}

	if dispatched == 0 {
		if _, err := s.dispatcher.CheckHeartbeat(ctx, current); err != nil {
			return nil, err
		}
	}
	return rideErrs, nil
}

func (s *RunService) backup(ctx context.Context, rides []ride.Ride, table *ride.ParticipantTable, previous, current time.Time) error {
	for _, r := range rides {
		if !InWindow(r.Start, previous, current, 0) {
			continue
		}
		matched := MatchParticipants(r.ID, table.Participants)
		if len(matched) == 0 {
			continue
		}
		rows := make([][]string, 0, len(matched))
		for _, p := range matched {
			rows = append(rows, table.Row(p))
		}
		if err := s.sink.Append(ctx, table.Header, rows); err != nil {
			return fmt.Errorf("failed to archive participants of %q: %w", r.ID, err)
		}
		s.logger.WithField("ride", r.ID).Infof("%d participants archived for %s", len(rows), r.ID)
	}
	return nil
}
