package domain

import "time"

// Clock returns the current time. Tests inject a fixed one.
type Clock func() time.Time

// SystemClock reads the process clock.
func SystemClock() time.Time {
	return time.Now()
}

// Today is the process-local calendar date of now.
func Today(now time.Time) string {
	return now.Local().Format(DateLayout)
}
