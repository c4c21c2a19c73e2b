package logic

import "time"

// Recorder accumulates knock intervals for one bounded recording window.
// It does no I/O; callers poll the sensor and feed it timestamps.
type Recorder struct {
	capacity int
	timeout  time.Duration
	start    time.Time
	last     time.Time
	pattern  Pattern
}

// NewRecorder creates a recorder that stops after capacity knocks or once
// timeout has elapsed since Start, whichever comes first.
func NewRecorder(capacity int, timeout time.Duration) *Recorder {
	return &Recorder{
		capacity: capacity,
		timeout:  timeout,
		pattern:  NewPattern(capacity),
	}
}

// Start opens a new window at start. The first interval is measured from
// lastKnock. Any pattern from a previous window is discarded.
func (r *Recorder) Start(start, lastKnock time.Time) {
	r.start = start
	r.last = lastKnock
	r.pattern = NewPattern(r.capacity)
}

// Done reports whether the window has closed at now.
func (r *Recorder) Done(now time.Time) bool {
	return r.pattern.Full() || now.Sub(r.start) >= r.timeout
}

// Knock records a knock at now and returns the interval since the previous
// one. Knocks past capacity are dropped and return ok=false.
func (r *Recorder) Knock(now time.Time) (ms int, ok bool) {
	if r.pattern.Full() {
		return 0, false
	}
	ms = int(now.Sub(r.last).Milliseconds())
	r.pattern.Append(ms)
	r.last = now
	return r.pattern.At(r.pattern.Len() - 1), true
}

// Pattern returns a copy of the intervals recorded so far.
func (r *Recorder) Pattern() Pattern {
	return r.pattern
}

// LastKnock returns the time of the most recent knock (or the start marker).
func (r *Recorder) LastKnock() time.Time {
	return r.last
}
