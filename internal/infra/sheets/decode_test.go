package sheets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ride_notifier/internal/domain/ride"
)

const layout = "01/02/2006 15:04:05"

func zurich(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Zurich")
	require.NoError(t, err)
	return loc
}

func TestDecodeRides_JoinsSheetsRowByRow(t *testing.T) {
	loc := zurich(t)
	submission := newTable([][]string{
		{"Timestamp", "Meeting point"},
		{"04/01/2024 12:00:00", "Bellevue"},
		{"04/02/2024 12:00:00", "Hardbrücke"},
		{"04/03/2024 12:00:00", "Oerlikon"}, // No matching rides row
	})
	rides := newTable([][]string{
		{"Column text (automatic)", "Time stamps", "Canceled"},
		{"2024-05-01: Morning loop", "05/01/2024 07:00:00"},
		{"2024-05-02: Gravel", "05/02/2024 18:30:00", "TRUE"},
	})

	got, err := decodeRides(submission, rides, loc, layout)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ride.Ride{
		ID:           "2024-05-01: Morning loop",
		Start:        time.Date(2024, 5, 1, 7, 0, 0, 0, loc),
		MeetingPoint: "Bellevue",
	}, got[0])
	assert.Equal(t, "Hardbrücke", got[1].MeetingPoint)
	assert.True(t, got[1].Canceled)
	assert.True(t, got[1].Start.Equal(time.Date(2024, 5, 2, 16, 30, 0, 0, time.UTC)))
}

func TestDecodeRides_BlankSubmissionRowKeepsPairing(t *testing.T) {
	submission := newTable([][]string{
		{"Meeting point"},
		{""}, // Response cleared by hand
		{"Hardbrücke"},
	})
	rides := newTable([][]string{
		{"Column text (automatic)", "Time stamps"},
		{"2024-05-01: Morning loop", "05/01/2024 07:00:00"},
		{"2024-05-02: Gravel", "05/02/2024 18:30:00"},
	})

	got, err := decodeRides(submission, rides, zurich(t), layout)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-05-01: Morning loop", got[0].ID)
	assert.Equal(t, "", got[0].MeetingPoint)
	assert.Equal(t, "2024-05-02: Gravel", got[1].ID)
	assert.Equal(t, "Hardbrücke", got[1].MeetingPoint)
}

func TestDecodeRides_BlankRidesRowSkipped(t *testing.T) {
	submission := newTable([][]string{{"Meeting point"}, {"Bellevue"}, {"Oerlikon"}, {"Hardbrücke"}})
	rides := newTable([][]string{
		{"Column text (automatic)", "Time stamps"},
		{"2024-05-01: Morning loop", "05/01/2024 07:00:00"},
		{"", ""},
		{"2024-05-02: Gravel", "05/02/2024 18:30:00"},
	})

	got, err := decodeRides(submission, rides, zurich(t), layout)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Bellevue", got[0].MeetingPoint)
	assert.Equal(t, "2024-05-02: Gravel", got[1].ID)
	assert.Equal(t, "Hardbrücke", got[1].MeetingPoint)
}

func TestDecodeRides_MalformedStart(t *testing.T) {
	submission := newTable([][]string{{"Meeting point"}, {"Bellevue"}})
	rides := newTable([][]string{{"Column text (automatic)", "Time stamps"}, {"2024-05-01: Morning loop", "tomorrow"}})

	_, err := decodeRides(submission, rides, zurich(t), layout)

	assert.Error(t, err)
}

func TestDecodeRides_MissingColumn(t *testing.T) {
	submission := newTable([][]string{{"Meeting point"}, {"Bellevue"}})
	rides := newTable([][]string{{"Column text (automatic)"}, {"2024-05-01: Morning loop"}})

	_, err := decodeRides(submission, rides, zurich(t), layout)

	assert.ErrorContains(t, err, "Time stamps")
}

func TestDecodeParticipants(t *testing.T) {
	loc := zurich(t)
	registration := newTable([][]string{
		{"Timestamp", "Ride", "Full name", "Email"},
		{"04/20/2024 10:00:00", "2024-05-01: Morning loop", "Alice", "alice@example.com"},
		{"", "", "", ""},
		{"04/21/2024 09:15:00", "2024-05-01: Morning loop", "Bob"},
	})

	got, err := decodeParticipants(registration, loc, layout)

	require.NoError(t, err)
	assert.Equal(t, []string{"Timestamp", "Ride", "Full name", "Email"}, got.Header)
	require.Len(t, got.Participants, 2)

	alice := got.Participants[0]
	assert.Equal(t, "Alice", alice.FullName)
	assert.Equal(t, time.Date(2024, 4, 20, 10, 0, 0, 0, loc), alice.RegisteredAt)
	addr, err := alice.Email()
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", addr)

	bob := got.Participants[1]
	assert.Equal(t, []string{"04/21/2024 09:15:00", "2024-05-01: Morning loop", "Bob", ""}, got.Row(bob))
}

func TestParseFlag(t *testing.T) {
	for _, v := range []string{"TRUE", "yes", "x", " Cancelled "} {
		assert.True(t, parseFlag(v), v)
	}
	for _, v := range []string{"", "FALSE", "no"} {
		assert.False(t, parseFlag(v), v)
	}
}

func TestQuoteTitle(t *testing.T) {
	assert.Equal(t, "'Form Responses 1'", quoteTitle("Form Responses 1"))
	assert.Equal(t, "'Rider''s list'", quoteTitle("Rider's list"))
}
