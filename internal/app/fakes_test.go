package app

import (
	"context"
	"errors"
	"time"

	"ride_notifier/internal/domain/mail"
	"ride_notifier/internal/domain/ride"
)

type memoryStore struct {
	values  map[string]float64
	saveErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]float64{}}
}

func (m *memoryStore) Load(path string, def float64) (float64, error) {
	if v, ok := m.values[path]; ok {
		return v, nil
	}
	return def, nil
}

func (m *memoryStore) Save(path string, value float64) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.values[path] = value
	return nil
}

type fakeTransport struct {
	failFor  map[string]error // Recipient -> error returned by Send
	openErr  error
	opened   int
	closed   int
	messages []*mail.Message
}

func (f *fakeTransport) Open(_ context.Context) (mail.Session, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.opened++
	return &fakeSession{t: f}, nil
}

type fakeSession struct {
	t *fakeTransport
}

func (s *fakeSession) Send(msg *mail.Message) error {
	if err, ok := s.t.failFor[msg.To[0]]; ok {
		return err
	}
	s.t.messages = append(s.t.messages, msg)
	return nil
}

func (s *fakeSession) Close() error {
	s.t.closed++
	return nil
}

type fakeSource struct {
	rides  []ride.Ride
	table  *ride.ParticipantTable
	closed bool
}

func (f *fakeSource) Rides(context.Context) ([]ride.Ride, error) { return f.rides, nil }

func (f *fakeSource) Participants(context.Context) (*ride.ParticipantTable, error) {
	return f.table, nil
}

func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}

type fakeSink struct {
	header []string
	rows   [][]string
	err    error
}

func (f *fakeSink) Append(_ context.Context, header []string, rows [][]string) error {
	if f.err != nil {
		return f.err
	}
	f.header = header
	f.rows = append(f.rows, rows...)
	return nil
}

func (f *fakeSink) Close() error { return nil }

var errMailbox = errors.New("550 mailbox unavailable")

func participant(rideID, name, addr string) ride.Participant {
	return ride.Participant{
		Ride:         rideID,
		FullName:     name,
		RegisteredAt: time.Date(2024, 4, 20, 10, 0, 0, 0, time.UTC),
		Values: map[string]string{
			ride.ColumnRide:         rideID,
			ride.ColumnFullName:     name,
			ride.ColumnEmailAddress: addr,
			ride.ColumnRegisteredAt: "04/20/2024 10:00:00",
		},
	}
}

func participantTable(ps ...ride.Participant) *ride.ParticipantTable {
	return &ride.ParticipantTable{
		Header:       []string{ride.ColumnRegisteredAt, ride.ColumnRide, ride.ColumnFullName, ride.ColumnEmailAddress},
		Participants: ps,
	}
}
