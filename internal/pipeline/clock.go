package pipeline

import "time"

// Clock supplies the pipeline's notion of time. The budget is enforced
// against a Clock rather than time.Now so tests can move time explicitly.
type Clock interface {
	Now() time.Time
}

// SystemClock is the real wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
