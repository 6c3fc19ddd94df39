package scheduler

import (
	"fmt"
	"strconv"
	"strings"

	"itinera/errs"
)

const minutesPerDay = 24 * 60

// ParseClock converts "HH:mm" to minutes after midnight. Empty input reports ok=false.
func ParseClock(s string) (int, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}
	hh, mm, found := strings.Cut(s, ":")
	if !found {
		return 0, false, errs.Validation("invalid time %q, expected HH:mm", s)
	}
	h, err1 := strconv.Atoi(hh)
	m, err2 := strconv.Atoi(mm)
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false, errs.Validation("invalid time %q, expected HH:mm", s)
	}
	return h*60 + m, true, nil
}

// FormatClock renders minutes as "HH:mm", wrapping past midnight.
func FormatClock(minutes int) string {
	minutes %= minutesPerDay
	if minutes < 0 {
		minutes += minutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ValidateClock accepts "" or a well-formed "HH:mm".
func ValidateClock(s string) error {
	_, _, err := ParseClock(s)
	return err
}
