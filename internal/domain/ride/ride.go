// internal/domain/ride/ride.go
package ride

import (
	"errors"
	"strings"
	"time"
)

// Column names used by the registration form.
const (
	ColumnRide         = "Ride"
	ColumnFullName     = "Full name"
	ColumnEmailAddress = "Email Address"
	ColumnEmail        = "Email" // Older form revisions
	ColumnRegisteredAt = "Timestamp"
	dateLabelSeparator = ": "
)

// ErrEmailColumnMissing is returned when a participant row has neither email column.
var ErrEmailColumnMissing = errors.New("participant row has no email column")

// Ride is a scheduled group ride as published in the rides sheet.
type Ride struct {
	ID           string    // Ride title, e.g. "2024-05-01: Morning loop". Join key and mail subject.
	Start        time.Time // Scheduled start, zoned
	MeetingPoint string
	Canceled     bool
}

// DateLabel returns the human readable date embedded in the ride ID ("<date>: <rest>").
func (r Ride) DateLabel() string {
	return DateLabel(r.ID)
}

// DateLabel returns the part of id before the first ": ", or id itself when there is none.
func DateLabel(id string) string {
	label, _, _ := strings.Cut(id, dateLabelSeparator)
	return label
}

// Participant is one registration row.
type Participant struct {
	Ride         string
	FullName     string
	RegisteredAt time.Time
	Values       map[string]string // Raw row keyed by column name
}

// Email resolves the participant's address, preferring "Email Address" over "Email".
// Sheets merging both form revisions leave one of the two cells empty per row.
func (p Participant) Email() (string, error) {
	current, hasCurrent := p.Values[ColumnEmailAddress]
	legacy, hasLegacy := p.Values[ColumnEmail]
	switch {
	case hasCurrent && strings.TrimSpace(current) != "":
		return strings.TrimSpace(current), nil
	case hasLegacy:
		return strings.TrimSpace(legacy), nil
	case hasCurrent:
		return "", nil
	default:
		return "", ErrEmailColumnMissing
	}
}

// ParticipantTable keeps the registration sheet header so archived rows keep its schema.
type ParticipantTable struct {
	Header       []string
	Participants []Participant
}

// Row returns p's values in header order.
func (t *ParticipantTable) Row(p Participant) []string {
	row := make([]string, len(t.Header))
	for i, col := range t.Header {
		row[i] = p.Values[col]
	}
	return row
}
