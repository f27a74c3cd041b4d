package scheduling

import "time"

// Clock abstracts wall-clock time so horizon-boundary behavior is
// deterministic under test.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
