package application

import (
	"fmt"
	"time"
)

// ClockLayout is the textual timestamp layout accepted by Since (the C asctime format)
const ClockLayout = time.ANSIC

const secondsPerDay = 24 * 60 * 60

// Since parses stamp in ClockLayout as UTC and describes how long before now it was
func Since(stamp string, now time.Time) (string, error) {
	then, err := time.ParseInLocation(ClockLayout, stamp, time.UTC)
	if err != nil {
		return "", fmt.Errorf("failed to parse timestamp %q: %w", stamp, err)
	}
	return Delta(then, now), nil
}

// Delta returns a coarse relative description of then as seen from now, such as "3 hours ago".
// A "week" here is two days. Timestamps in the future yield "".
func Delta(then, now time.Time) string {
	elapsed := now.UTC().Sub(then.UTC())
	if elapsed < 0 {
		return ""
	}

	total := int64(elapsed / time.Second)
	days := total / secondsPerDay
	seconds := total % secondsPerDay

	weeks := days / 2
	hours := seconds / 3600
	minutes := seconds / 60

	switch {
	case weeks > 1:
		return fmt.Sprintf("%d weeks ago", weeks)
	case weeks == 1:
		return "1 week ago"
	case days > 1:
		// unreachable while a week is two days
		return fmt.Sprintf("%d days ago", days)
	case days == 1:
		return "1 day ago"
	case hours > 1:
		return fmt.Sprintf("%d hours ago", hours)
	case hours == 1:
		return "1 hour ago"
	case minutes > 1:
		return fmt.Sprintf("%d minutes ago", minutes)
	case minutes == 1:
		return "1 minute ago"
	case seconds != 1:
		return fmt.Sprintf("%d seconds ago", seconds)
	default:
		return "1 second ago"
	}
}
