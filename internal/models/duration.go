package models

import "fmt"

// FormatDuration renders milliseconds as h:mm:ss, omitting the hour field when it is zero.
// The leading field is never zero-padded: 65000 is "1:05" and 3725000 is "1:02:05".
// Negative input is treated as zero.
func FormatDuration(ms int) string {
	if ms < 0 {
		ms = 0
	}

	total := ms / 1000
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// TotalDuration sums the durations of tracks in milliseconds.
func TotalDuration(tracks []Track) int {
	total := 0
	for _, t := range tracks {
		total += t.DurationMS
	}
	return total
}
