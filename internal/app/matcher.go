package app

import (
	"strings"

	"ride_notifier/internal/domain/ride"
)

// MatchParticipants returns the participants registered for rideID, in their original order.
// A participant matches when its ride field contains rideID. If one ride ID is a substring
// of another, participants of the longer one match both rides.
func MatchParticipants(rideID string, participants []ride.Participant) []ride.Participant {
	var matched []ride.Participant
	for _, p := range participants {
		if strings.Contains(p.Ride, rideID) {
			matched = append(matched, p)
		}
	}
	return matched
}
