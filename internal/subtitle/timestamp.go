package subtitle

import (
	"fmt"
	"regexp"
	"strconv"
)

// timestampRe matches SRT timestamps; digits need not be zero-padded and
// the millisecond separator may be a comma or a period.
var timestampRe = regexp.MustCompile(`(\d+):(\d+):(\d+)[,.](\d+)`)

// ParseTimestamp converts an SRT timestamp to total milliseconds.
func ParseTimestamp(ts string) (int64, bool) {
	m := timestampRe.FindStringSubmatch(ts)
	if m == nil {
		return 0, false
	}

	hours, _ := strconv.ParseInt(m[1], 10, 64)
	minutes, _ := strconv.ParseInt(m[2], 10, 64)
	seconds, _ := strconv.ParseInt(m[3], 10, 64)
	millis, _ := strconv.ParseInt(m[4], 10, 64)

	return hours*3600000 + minutes*60000 + seconds*1000 + millis, true
}

// FormatTimestamp renders milliseconds as HH:MM:SS,mmm. The hour field
// widens past 99 rather than wrapping.
func FormatTimestamp(ms int64) string {
	if ms < 0 {
		ms = 0
	}

	hours := ms / 3600000
	ms %= 3600000
	minutes := ms / 60000
	ms %= 60000
	seconds := ms / 1000
	millis := ms % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}

// ShiftTimestamp adds offsetMs to an SRT timestamp, clamping at zero.
// Unparseable input is returned unchanged.
func ShiftTimestamp(ts string, offsetMs int64) string {
	ms, ok := ParseTimestamp(ts)
	if !ok {
		return ts
	}
	return FormatTimestamp(ms + offsetMs)
}
