package utils

import (
	"fmt"
	"time"
)

// NanoToTime converts a nanosecond Unix timestamp back to time.Time.
func NanoToTime(ns int64) time.Time {
	return time.Unix(0, ns)
}

// FormatTimestamp converts ns-epoch to a human-friendly string.
func FormatTimestamp(ns int64) string {
	return NanoToTime(ns).Format("2006-01-02_15-04-05.000000000")
}

// FormatElapsed renders a session-relative duration as
//
//	[d.]HH:MM:SS.fffffff
//
// with seven fractional digits (100ns ticks). Negative durations are prefixed with '-'.
func FormatElapsed(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}

	ticks := int64(d / 100) // 100ns resolution
	frac := ticks % 10_000_000
	totalSec := ticks / 10_000_000

	days := totalSec / 86400
	hours := (totalSec / 3600) % 24
	mins := (totalSec / 60) % 60
	secs := totalSec % 60

	if days > 0 {
		return fmt.Sprintf("%s%d.%02d:%02d:%02d.%07d", sign, days, hours, mins, secs, frac)
	}
	return fmt.Sprintf("%s%02d:%02d:%02d.%07d", sign, hours, mins, secs, frac)
}
