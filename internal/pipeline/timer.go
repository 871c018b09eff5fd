package pipeline

import (
	"fmt"
	"time"
)

// Timer measures the duration of a pipeline stage.
type Timer struct {
	name  string
	start time.Time
}

// NewTimer starts a named stage timer.
func NewTimer(name string) *Timer {
	return &Timer{name: name, start: time.Now()}
}

// Stop returns the elapsed duration.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}

// String formats the timer with its current elapsed time.
func (t *Timer) String() string {
	return fmt.Sprintf("%s: %v", t.name, time.Since(t.start).Round(time.Millisecond))
}
