package services

import (
	"errors"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

var (
	ErrDateFormat = errors.New("invalid date format, please use YYYY-MM-DD")
	ErrTimeFormat = errors.New("invalid time format, please use HH:MM or HH:MM:SS")
)

// parseDate validates an ISO calendar date string.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrDateFormat, s)
	}
	return t, nil
}

// parseClock parses a clock time of day, accepting "HH:MM:SS" and "HH:MM".
func parseClock(s string) (time.Time, error) {
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		t, err = time.Parse("15:04", s)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrTimeFormat, s)
		}
	}
	return t, nil
}

// clockMinutes reduces a parsed clock time to minutes since midnight.
// Seconds are ignored, matching how shift durations are measured.
func clockMinutes(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// combineDateAndClock builds the wall-clock instant of a clock time on a
// calendar date, in the given location.
func combineDateAndClock(date string, clock time.Time, loc *time.Location) (time.Time, error) {
	d, err := parseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0, loc), nil
}
