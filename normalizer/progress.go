package normalizer

import (
	"regexp"
	"strconv"
	"strings"
)

// progressParser extracts the encoded position and speed from ffmpeg's
// periodic status line, e.g.
//
//	frame=  901 fps= 45 q=28.0 size=    2048kB time=00:00:30.04 bitrate= 558.5kbits/s speed=1.5x
type progressParser struct {
	timeRegex  *regexp.Regexp
	speedRegex *regexp.Regexp
}

func newProgressParser() *progressParser {
	return &progressParser{
		timeRegex:  regexp.MustCompile(`\btime=\s*(\d+:\d+:\d+(?:\.\d+)?)`),
		speedRegex: regexp.MustCompile(`\bspeed=\s*([0-9.]+)x`),
	}
}

// ParseLine returns the encoded position in seconds and the encode speed
// multiplier. ok is false for lines that are not status lines.
func (p *progressParser) ParseLine(line string) (seconds, speed float64, ok bool) {
	matches := p.timeRegex.FindStringSubmatch(line)
	if len(matches) < 2 {
		return 0, 0, false
	}
	seconds = timeToSeconds(matches[1])

	if sm := p.speedRegex.FindStringSubmatch(line); len(sm) > 1 {
		speed, _ = strconv.ParseFloat(sm[1], 64)
	}
	return seconds, speed, true
}

// timeToSeconds converts ffmpeg's HH:MM:SS.cc notation to seconds.
func timeToSeconds(s string) float64 {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0
	}
	hours, err1 := strconv.ParseFloat(parts[0], 64)
	minutes, err2 := strconv.ParseFloat(parts[1], 64)
	seconds, err3 := strconv.ParseFloat(parts[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0
	}
	return hours*3600 + minutes*60 + seconds
}
