// internal/domain/checkpoint/store.go
package checkpoint

import (
	"math"
	"time"
)

// Store persists numeric timestamps across runs. Each path is an independent slot.
// Implementations assume a single writer; overlapping runs must be prevented by the caller.
type Store interface {
	// Load returns the value stored at path, or def when nothing was stored yet.
	Load(path string, def float64) (float64, error)
	// Save overwrites the value stored at path.
	Save(path string, value float64) error
}

// FromTime converts t to fractional Unix seconds.
func FromTime(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/float64(time.Second)
}

// Precision is the resolution kept by a stored timestamp. A float64 holding
// current Unix times is exact to well under a microsecond, so times truncated to
// Precision survive FromTime/ToTime unchanged.
const Precision = time.Microsecond

// ToTime converts fractional Unix seconds back to a time.Time, rounded to Precision.
func ToTime(ts float64) time.Time {
	sec, frac := math.Modf(ts)
	micros := int64(math.Round(frac * float64(time.Second/Precision)))
	return time.Unix(int64(sec), micros*int64(Precision))
}
