// Package clock abstracts time so timer driven components can be tested without sleeping.
package clock

import "time"

// Clock gives the current time and schedules functions.
type Clock interface {
	Now() time.Time
	// AfterFunc calls f in its own goroutine once d has elapsed.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a scheduled function call.
type Timer interface {
	// Stop prevents the timer from firing, returns false if it already fired or was stopped.
	Stop() bool
}

// Real is the clock backed by the time package.
var Real Clock = realClock{}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
