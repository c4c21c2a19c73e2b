package logic

import (
	"time"

	"github.com/google/uuid"
)

// Machine is the enroll/verify state machine. It owns the reference store and
// is driven from a single control loop; it is not safe for concurrent use.
type Machine struct {
	store     *Store
	tolerance float64

	armed     bool
	recording bool

	startTime     time.Time
	lastHeartbeat time.Time
	counts        EventCounts

	// NewAttemptID generates recording session IDs. Replaceable in tests.
	NewAttemptID func() string
}

// NewMachine creates a state machine comparing against store with the given
// tolerance in percentage points. The startTime is used for heartbeat uptime.
func NewMachine(store *Store, tolerance float64, startTime time.Time) *Machine {
	return &Machine{
		store:         store,
		tolerance:     tolerance,
		startTime:     startTime,
		lastHeartbeat: startTime,
		NewAttemptID:  uuid.NewString,
	}
}

// Arm arms enrollment mode. It returns nil if already armed or while a
// recording is in flight.
func (m *Machine) Arm(t time.Time) *Event {
	if m.armed || m.recording {
		return nil
	}
	m.armed = true
	return &Event{
		Timestamp: t,
		Type:      EventProgramArmed,
		Mode:      ModeArmed,
	}
}

// BeginRecording marks a recording session as started. It returns false if
// one is already in flight.
func (m *Machine) BeginRecording() bool {
	if m.recording {
		return false
	}
	m.recording = true
	return true
}

// Complete consumes the candidate recorded by a finished session. When armed
// it replaces the reference and disarms; otherwise it verifies the candidate
// against the reference. Either way the machine returns to idle.
func (m *Machine) Complete(candidate Pattern, t time.Time) Event {
	m.recording = false

	e := Event{
		Timestamp: t,
		AttemptID: m.NewAttemptID(),
		Knocks:    candidate.Len(),
	}

	if m.armed {
		m.store.SetReference(candidate)
		m.armed = false
		m.counts.Enrollments++
		e.Type = EventPatternEnrolled
		e.Mode = ModeEnrolling
		return e
	}

	cmp := Compare(m.store.Reference(), candidate, m.tolerance)
	e.Mode = ModeVerifying
	e.Comparison = &cmp
	if cmp.Match {
		m.counts.Matches++
		e.Type = EventKnockMatch
	} else {
		m.counts.Mismatches++
		e.Type = EventKnockMismatch
	}
	return e
}

// DoorOpened records a door opening. It has no effect on pattern state.
func (m *Machine) DoorOpened(t time.Time) Event {
	m.counts.DoorOpenings++
	return Event{
		Timestamp: t,
		Type:      EventDoorOpened,
		Mode:      m.Mode(),
	}
}

// Mode returns the current mode.
func (m *Machine) Mode() Mode {
	switch {
	case m.recording:
		return ModeRecording
	case m.armed:
		return ModeArmed
	default:
		return ModeIdle
	}
}

// Armed reports whether the next completed recording will be enrolled.
func (m *Machine) Armed() bool {
	return m.armed
}

// Reference returns a copy of the current reference pattern.
func (m *Machine) Reference() Pattern {
	return m.store.Reference()
}

// Tolerance returns the match tolerance in percentage points.
func (m *Machine) Tolerance() float64 {
	return m.tolerance
}

// Counts returns a copy of the outcome counters.
func (m *Machine) Counts() EventCounts {
	return m.counts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed or
// if interval is <= 0 (disabled).
func (m *Machine) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(m.lastHeartbeat) < interval {
		return nil
	}

	m.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(m.startTime),
		Counts:    m.counts,
	}
}
