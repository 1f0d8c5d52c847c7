package utils

import "time"

// Timer measures the wall-clock time of one parse. [NewTimer] starts it;
// [Timer.Stop] captures the elapsed duration.
type Timer struct {
	startTime time.Time
	duration  time.Duration
}

// NewTimer creates a started Timer.
func NewTimer() *Timer {
	return &Timer{startTime: time.Now()}
}

// Stop records the time elapsed since NewTimer and returns it. Calling it
// again extends the measurement.
func (t *Timer) Stop() time.Duration {
	t.duration = time.Since(t.startTime)
	return t.duration
}

// GetDuration returns the duration captured by the last Stop, or zero.
func (t *Timer) GetDuration() time.Duration {
	return t.duration
}

// Milliseconds returns the captured duration in fractional milliseconds, the
// unit histograms are recorded in.
func (t *Timer) Milliseconds() float64 {
	return float64(t.duration) / float64(time.Millisecond)
}
