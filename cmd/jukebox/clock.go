package jukebox

import "time"

// Clock is the time source of the playback loop.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// pace returns how long to sleep after an iteration that took elapsed, so
// iterations start one period apart. Overruns are not caught up.
func pace(period, elapsed time.Duration) time.Duration {
	if elapsed < period {
		return period - elapsed
	}
	return 0
}
