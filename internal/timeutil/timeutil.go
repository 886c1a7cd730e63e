// Package timeutil provides time formatting helpers for FFmpeg arguments and
// the timestamp manifest.
package timeutil

import (
	"fmt"
	"math"
)

// FormatTimestamp converts seconds to HH:MM:SS.mmm with millisecond
// precision, the format expected by chapter-style timestamp lists.
//
// Example:
//
//	FormatTimestamp(0)       // "00:00:00.000"
//	FormatTimestamp(90.5)    // "00:01:30.500"
//	FormatTimestamp(3661.25) // "01:01:01.250"
func FormatTimestamp(seconds float64) string {
	// Round to whole milliseconds first so 59.9996 carries into the next
	// minute instead of printing as 60.000 seconds.
	millis := int64(math.Round(seconds * 1000))
	hours := millis / 3600000
	minutes := (millis % 3600000) / 60000
	secs := float64(millis%60000) / 1000
	return fmt.Sprintf("%02d:%02d:%06.3f", hours, minutes, secs)
}
