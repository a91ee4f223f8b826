package calibration

import (
	"strconv"
	"strings"
	"time"
)

// DefaultCadenceDays is the fallback calibration cadence. Existing tool
// records rely on this exact value, so it must stay 365.
const DefaultCadenceDays = 365

// NextDue computes the next calibration due date: today plus cadenceDays
// calendar days. The result is always derived from the current save date,
// never from a previously stored schedule.
func NextDue(today time.Time, cadenceDays int) time.Time {
	return today.AddDate(0, 0, cadenceDays)
}

// FormatNextDue renders a computed due date in the representation the
// tool family's downstream store expects.
func FormatNextDue(t time.Time, layout DateLayout) string {
	return t.Format(string(layout))
}

// ParseCadenceDays interprets the cadence field of a catalog record. The
// field is free-form text ("365", "90 dias", empty); a leading integer is
// taken if present, anything else falls back to DefaultCadenceDays. Zero
// and negative cadences also fall back, matching the legacy behavior.
func ParseCadenceDays(raw string) int {
	s := strings.TrimSpace(raw)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return DefaultCadenceDays
	}
	days, err := strconv.Atoi(s[:end])
	if err != nil || days <= 0 {
		return DefaultCadenceDays
	}
	return days
}
