package app

import (
	"fmt"
	"strings"
)

const (
	mailGreeting = "Hi\n\n"
	mailSignoff  = "Best,\nHead wind\n\nP.S.: If you have any symptoms after the ride, please respond to this message."
)

// ComposeMessage renders the notification body for one ride. Every participant
// receives the same text, so names lists all of them.
func ComposeMessage(dateLabel, meetingPoint string, names []string) string {
	var b strings.Builder
	b.WriteString(mailGreeting)
	if len(names) <= 1 {
		fmt.Fprintf(&b, "For the ride on %s from %s nobody else has registered, so you ride alone this time.\n", dateLabel, meetingPoint)
		b.WriteString("\nEnjoy the ride.\n\n")
		b.WriteString(mailSignoff)
		return b.String()
	}

	fmt.Fprintf(&b, "For the ride on %s from %s you ride with:\n", dateLabel, meetingPoint)
	for _, name := range names {
		b.WriteString("* " + name + "\n")
	}
	fmt.Fprintf(&b, "\nYou are %d riders in total. We look forward to riding with you.\n\n", len(names))
	b.WriteString(mailSignoff)
	return b.String()
}
