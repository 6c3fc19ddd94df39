package utils

import (
	"time"

	"itinera/errs"
)

// DateLayout is the calendar date format used for itinerary days and ledger keys.
const DateLayout = "2006-01-02"

// MaxRangeDays bounds any date range a request may expand into.
const MaxRangeDays = 366

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, errs.Validation("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// AddDays shifts a YYYY-MM-DD date by n days.
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, n)), nil
}

// DaysBetween returns to - from in whole days.
func DaysBetween(from, to string) (int, error) {
	f, err := ParseDate(from)
	if err != nil {
		return 0, err
	}
	t, err := ParseDate(to)
	if err != nil {
		return 0, err
	}
	return int(t.Sub(f).Hours() / 24), nil
}

// DateRange lists every date from start to end inclusive.
func DateRange(start, end string) ([]string, error) {
	n, err := DaysBetween(start, end)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, errs.Validation("end date %s is before start date %s", end, start)
	}
	if n+1 > MaxRangeDays {
		return nil, errs.Validation("date range %s..%s spans more than %d days", start, end, MaxRangeDays)
	}
	out := make([]string, 0, n+1)
	for i := 0; i <= n; i++ {
		d, _ := AddDays(start, i)
		out = append(out, d)
	}
	return out, nil
}

// Today returns the current UTC calendar date.
func Today() string {
	return FormatDate(time.Now().UTC())
}
