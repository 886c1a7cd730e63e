package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressParser_ParseLine(t *testing.T) {
	p := newProgressParser()

	tests := []struct {
		name        string
		line        string
		wantSeconds float64
		wantSpeed   float64
		wantOK      bool
	}{
		{
			name:        "full status line",
			line:        "frame=  901 fps= 45 q=28.0 size=    2048kB time=00:00:30.04 bitrate= 558.5kbits/s speed=1.5x",
			wantSeconds: 30.04,
			wantSpeed:   1.5,
			wantOK:      true,
		},
		{
			name:        "hours and minutes",
			line:        "frame=108000 fps= 30 q=-1.0 size=  900000kB time=01:30:00.00 bitrate=1365.3kbits/s speed=1.0x",
			wantSeconds: 5400,
			wantSpeed:   1.0,
			wantOK:      true,
		},
		{
			name:        "time without speed",
			line:        "size=    1024kB time=00:00:05.12 bitrate= 163.8kbits/s",
			wantSeconds: 5.12,
			wantSpeed:   0,
			wantOK:      true,
		},
		{
			name:   "banner line",
			line:   "ffmpeg version 6.0 Copyright (c) 2000-2023 the FFmpeg developers",
			wantOK: false,
		},
		{
			name:   "stream mapping line",
			line:   "  Stream #0:0 -> #0:0 (h264 (native) -> h264 (libx264))",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seconds, speed, ok := p.ParseLine(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.wantSeconds, seconds, 0.0001)
				assert.InDelta(t, tt.wantSpeed, speed, 0.0001)
			}
		})
	}
}

func TestTimeToSeconds(t *testing.T) {
	assert.InDelta(t, 0.0, timeToSeconds("00:00:00.00"), 0.0001)
	assert.InDelta(t, 3661.5, timeToSeconds("01:01:01.50"), 0.0001)
	assert.Equal(t, 0.0, timeToSeconds("garbage"))
	assert.Equal(t, 0.0, timeToSeconds("01:02"))
}
