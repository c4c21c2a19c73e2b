// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"math"
	"time"

	"github.com/sweeney/knock-sensor/internal/logic"
)

// Topic is the MQTT topic for lock events.
const Topic = "security/knock/sensor/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "security/knock/sensor/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a lock event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Knock KnockPayload `json:"knock"`
}

// KnockPayload contains the lock event details. Interval values are never
// published; only their count and the match score.
type KnockPayload struct {
	Timestamp    string   `json:"timestamp"`
	Event        string   `json:"event"`
	Mode         string   `json:"mode"`
	AttemptID    string   `json:"attempt_id,omitempty"`
	Knocks       *int     `json:"knocks,omitempty"`
	MatchPercent *float64 `json:"match_percent,omitempty"`
	Reason       string   `json:"reason,omitempty"`
}

// FormatPayload creates the JSON payload for a lock event.
func FormatPayload(event logic.Event) ([]byte, error) {
	p := KnockPayload{
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
		Event:     string(event.Type),
		Mode:      string(event.Mode),
		AttemptID: event.AttemptID,
	}
	if event.AttemptID != "" {
		knocks := event.Knocks
		p.Knocks = &knocks
	}
	if c := event.Comparison; c != nil {
		p.Reason = string(c.Reason)
		if c.Reason == logic.ReasonMatch || c.Reason == logic.ReasonBelowTolerance {
			pct := math.Round(c.Percent*100) / 100
			p.MatchPercent = &pct
		}
	}
	return json.Marshal(Payload{Knock: p})
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// WillEvent is the last-will message the broker publishes if the daemon
// drops off without a clean shutdown. The timestamp is the connect time.
func WillEvent(t time.Time) SystemEvent {
	return SystemEvent{
		Timestamp: t,
		Event:     "LWT",
		Retained:  true,
	}
}
