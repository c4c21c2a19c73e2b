// Package logic contains the pure knock-lock logic: pattern recording,
// matching, reference storage and the enroll/verify state machine.
// This package has NO hardware, network or sleeping dependencies.
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Mode is the externally visible state of the lock.
type Mode string

const (
	ModeIdle      Mode = "IDLE"
	ModeArmed     Mode = "ARMED"
	ModeRecording Mode = "RECORDING"
	ModeEnrolling Mode = "ENROLLING"
	ModeVerifying Mode = "VERIFYING"
)

// EventType identifies something worth reporting.
type EventType string

const (
	EventProgramArmed    EventType = "PROGRAM_ARMED"
	EventPatternEnrolled EventType = "PATTERN_ENROLLED"
	EventKnockMatch      EventType = "KNOCK_MATCH"
	EventKnockMismatch   EventType = "KNOCK_MISMATCH"
	EventDoorOpened      EventType = "DOOR_OPENED"
)

// Event is an outcome to be logged and published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	// Mode is the mode the event was handled in.
	Mode Mode
	// AttemptID identifies one recording session (enroll or verify only).
	AttemptID string
	// Knocks is the number of intervals in the recorded candidate.
	Knocks int
	// Comparison is set for match and mismatch events.
	Comparison *Comparison
}

// EventCounts tracks the number of each outcome since startup.
type EventCounts struct {
	Matches      int
	Mismatches   int
	Enrollments  int
	DoorOpenings int
}

// Attempts returns the number of completed recording sessions.
func (c EventCounts) Attempts() int {
	return c.Matches + c.Mismatches + c.Enrollments
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    EventCounts
}
