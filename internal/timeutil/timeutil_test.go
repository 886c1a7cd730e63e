package timeutil

import "testing"

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00.000"},
		{1.5, "00:00:01.500"},
		{90, "00:01:30.000"},
		{90.5, "00:01:30.500"},
		{3661.25, "01:01:01.250"},
		{59.999, "00:00:59.999"},
		{3600, "01:00:00.000"},
		// Sub-millisecond remainders carry into the next unit.
		{59.9996, "00:01:00.000"},
		{3599.9996, "01:00:00.000"},
	}

	for _, tt := range tests {
		if got := FormatTimestamp(tt.seconds); got != tt.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
