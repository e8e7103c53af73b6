package sheets

import (
	"fmt"
	"strings"
	"time"

	"ride_notifier/internal/domain/ride"
)

// Column names of the rides and submission sheets.
const (
	columnRideText     = "Column text (automatic)"
	columnStart        = "Time stamps"
	columnCanceled     = "Canceled"
	columnMeetingPoint = "Meeting point"
)

// table is a worksheet whose first row is the header. Rows keep their sheet
// position, blank ones included, so two sheets can be paired by index.
type table struct {
	header []string
	rows   [][]string
}

func newTable(values [][]string) table {
	if len(values) == 0 {
		return table{}
	}
	return table{header: values[0], rows: values[1:]}
}

func (t table) blank(i int) bool {
	return isBlank(t.rows[i])
}

func (t table) has(col string) bool {
	for _, h := range t.header {
		if h == col {
			return true
		}
	}
	return false
}

func (t table) require(sheet string, cols ...string) error {
	for _, col := range cols {
		if !t.has(col) {
			return fmt.Errorf("%s sheet has no %q column", sheet, col)
		}
	}
	return nil
}

// record maps the header onto row i. The API omits trailing empty cells,
// missing ones read as "".
func (t table) record(i int) map[string]string {
	rec := make(map[string]string, len(t.header))
	row := t.rows[i]
	for j, col := range t.header {
		if j < len(row) {
			rec[col] = row[j]
		} else {
			rec[col] = ""
		}
	}
	return rec
}

// decodeRides joins the submission and rides sheets row by row. Rows past the
// end of the shorter sheet are dropped, as are pairs whose rides row is blank.
func decodeRides(submission, rides table, loc *time.Location, layout string) ([]ride.Ride, error) {
	if err := submission.require("submission", columnMeetingPoint); err != nil {
		return nil, err
	}
	if err := rides.require("rides", columnRideText, columnStart); err != nil {
		return nil, err
	}

	n := min(len(submission.rows), len(rides.rows))
	out := make([]ride.Ride, 0, n)
	for i := 0; i < n; i++ {
		if rides.blank(i) {
			continue
		}
		sub, rec := submission.record(i), rides.record(i)
		start, err := time.ParseInLocation(layout, strings.TrimSpace(rec[columnStart]), loc)
		if err != nil {
			return nil, fmt.Errorf("invalid start time for ride %q: %w", rec[columnRideText], err)
		}
		out = append(out, ride.Ride{
			ID:           rec[columnRideText],
			Start:        start,
			MeetingPoint: sub[columnMeetingPoint],
			Canceled:     parseFlag(rec[columnCanceled]),
		})
	}
	return out, nil
}

func decodeParticipants(registration table, loc *time.Location, layout string) (*ride.ParticipantTable, error) {
	if err := registration.require("registration", ride.ColumnRide, ride.ColumnFullName, ride.ColumnRegisteredAt); err != nil {
		return nil, err
	}

	pt := &ride.ParticipantTable{Header: registration.header}
	for i := range registration.rows {
		if registration.blank(i) {
			continue
		}
		rec := registration.record(i)
		registeredAt, err := time.ParseInLocation(layout, strings.TrimSpace(rec[ride.ColumnRegisteredAt]), loc)
		if err != nil {
			return nil, fmt.Errorf("invalid registration time in row %d: %w", i+2, err)
		}
		pt.Participants = append(pt.Participants, ride.Participant{
			Ride:         rec[ride.ColumnRide],
			FullName:     rec[ride.ColumnFullName],
			RegisteredAt: registeredAt,
			Values:       rec,
		})
	}
	return pt, nil
}

func parseFlag(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "y", "1", "x", "canceled", "cancelled":
		return true
	default:
		return false
	}
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
