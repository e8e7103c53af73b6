package app

import "time"

// InWindow reports whether event, shifted back by lead, falls into the half-open
// interval (previous, current]. Consecutive runs whose boundaries tile the
// timeline therefore select every event exactly once.
func InWindow(event, previous, current time.Time, lead time.Duration) bool {
	shifted := event.Add(-lead)
	return shifted.After(previous) && !shifted.After(current)
}
