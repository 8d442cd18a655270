package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Stored text formats. Timestamps carry no zone; they are compared only
// against the recurring weekly window, so wall-clock semantics are enough.
const (
	timestampLayout = "2006-01-02 15:04:05"
	dateLayout      = "2006-01-02"
)

// ParseHMS converts an "HH:MM:SS" string to seconds. Malformed or empty
// input yields 0, never an error: one bad row must not abort a batch.
func ParseHMS(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	sec, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0
	}
	if h < 0 || m < 0 || sec < 0 {
		return 0
	}
	return int64(h)*3600 + int64(m)*60 + int64(sec)
}

// FormatHMS renders a second count as "HH:MM:SS". Fractional seconds
// (from averaged durations) truncate.
func FormatHMS(totalSeconds float64) string {
	s := int64(totalSeconds)
	if s < 0 {
		s = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

// ParseTimestamp parses a "YYYY-MM-DD HH:MM:SS" string. The bool reports
// whether the value was present and well-formed; eligibility checks treat
// false as "not eligible" rather than an error.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// parseClock parses an "HH:MM" time-of-day into seconds since midnight.
func parseClock(s string) (int, bool) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return t.Hour()*3600 + t.Minute()*60, true
}

// TimestampForDisplay extracts the best available timestamp for a task,
// preferring time_begin, then time_end, then date_audited at noon.
//
// Display only. Bonus eligibility requires both explicit timestamps and
// never falls back; see TaskBonusEligible.
func TimestampForDisplay(t Task) (time.Time, bool) {
	if ts, ok := ParseTimestamp(t.TimeBegin); ok {
		return ts, true
	}
	if ts, ok := ParseTimestamp(t.TimeEnd); ok {
		return ts, true
	}
	date := strings.TrimSpace(t.DateAudited)
	if date == "" {
		return time.Time{}, false
	}
	if ts, ok := ParseTimestamp(date); ok {
		return ts, true
	}
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return time.Time{}, false
	}
	return d.Add(12 * time.Hour), true
}

// mondayWeekday maps a time.Time to the 0 (Monday) - 6 (Sunday) scheme
// used for window comparisons.
func mondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// weekdayFromConfig converts the 1 (Monday) - 7 (Sunday) configuration
// numbering to the 0-6 scheme.
func weekdayFromConfig(d int) int {
	return ((d-1)%7 + 7) % 7
}
