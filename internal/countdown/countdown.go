// Package countdown turns an event start time into the text shown on feed
// cards and detail pages.
package countdown

import (
	"fmt"
	"time"
)

// Mode selects the presentation variant.
type Mode int

const (
	// Compact is the feed card form: "In 2h 5m".
	Compact Mode = iota
	// Verbose is the detail page form: "0d 2h 5m" without the leading zero units.
	Verbose
)

// Format returns the countdown text for start at now, and whether the event
// is happening now.
func Format(start, now time.Time, mode Mode) (string, bool) {
	diff := start.Sub(now)
	if diff <= 0 {
		if mode == Verbose {
			return "Happening now!", true
		}
		return "Happening Now", true
	}

	totalHours := int(diff / time.Hour)
	minutes := int(diff%time.Hour) / int(time.Minute)

	if mode == Verbose {
		days := totalHours / 24
		hours := totalHours % 24
		switch {
		case days > 0:
			return fmt.Sprintf("%dd %dh %dm", days, hours, minutes), false
		case hours > 0:
			return fmt.Sprintf("%dh %dm", hours, minutes), false
		default:
			return fmt.Sprintf("%dm", minutes), false
		}
	}

	switch {
	case totalHours > 24:
		return fmt.Sprintf("In %dd %dh", totalHours/24, totalHours%24), false
	case totalHours > 0:
		return fmt.Sprintf("In %dh %dm", totalHours, minutes), false
	default:
		return fmt.Sprintf("In %dm", minutes), false
	}
}
