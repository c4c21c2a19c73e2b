// Package status provides a thread-safe status tracker for the knock-sensor daemon.
// It is written by the control loop and read by HTTP handlers.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/knock-sensor/internal/logic"
)

// NetworkInfo contains network state.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs       int64
	TimeoutMs    int64
	MaxKnocks    int
	TolerancePct float64
	Threshold    int
	HeartbeatMs  int64
	Broker       string
	HTTPAddr     string
	WSBroker     string
}

// Outcome is the most recent enroll or verify result.
type Outcome struct {
	Event     logic.EventType
	AttemptID string
	Knocks    int
	Percent   float64
	Reason    logic.Reason
	At        time.Time
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	Mode            logic.Mode
	ReferenceLength int
	Last            *Outcome
	Counts          logic.EventCounts
	StartTime       time.Time
	Now             time.Time
	MQTTConnected   bool
	Network         *NetworkInfo
	Config          Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Mode:      logic.ModeIdle,
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the mode, reference length and counters.
// Called from runLoop on every tick.
func (t *Tracker) Update(mode logic.Mode, referenceLength int, counts logic.EventCounts) {
	t.mu.Lock()
	t.snap.Mode = mode
	t.snap.ReferenceLength = referenceLength
	t.snap.Counts = counts
	t.mu.Unlock()
}

// RecordEvent keeps enroll and verify events as the last outcome.
// Other events are ignored.
func (t *Tracker) RecordEvent(e logic.Event) {
	switch e.Type {
	case logic.EventPatternEnrolled, logic.EventKnockMatch, logic.EventKnockMismatch:
	default:
		return
	}

	o := &Outcome{
		Event:     e.Type,
		AttemptID: e.AttemptID,
		Knocks:    e.Knocks,
		At:        e.Timestamp,
	}
	if e.Comparison != nil {
		o.Percent = e.Comparison.Percent
		o.Reason = e.Comparison.Reason
	}

	t.mu.Lock()
	t.snap.Last = o
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	if s.Last != nil {
		last := *s.Last
		s.Last = &last
	}
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
