package status

import (
	"encoding/json"
	"math"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event           string       `json:"event,omitempty"`
	Reason          string       `json:"reason,omitempty"`
	Mode            string       `json:"mode"`
	ReferenceKnocks int          `json:"reference_knocks"`
	LastOutcome     *OutcomeJSON `json:"last_outcome,omitempty"`
	UptimeSeconds   int64        `json:"uptime_seconds"`
	StartTime       string       `json:"start_time"`
	Timestamp       string       `json:"timestamp"`
	MQTT            MQTTStatus   `json:"mqtt"`
	Counts          CountsJSON   `json:"event_counts"`
	Network         *NetworkJSON `json:"network,omitempty"`
	Config          ConfigJSON   `json:"config"`
}

// OutcomeJSON is the JSON representation of the last outcome.
type OutcomeJSON struct {
	Event        string  `json:"event"`
	AttemptID    string  `json:"attempt_id"`
	Knocks       int     `json:"knocks"`
	MatchPercent float64 `json:"match_percent"`
	Reason       string  `json:"reason,omitempty"`
	Timestamp    string  `json:"timestamp"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Attempts     int `json:"attempts"`
	Matches      int `json:"matches"`
	Mismatches   int `json:"mismatches"`
	Enrollments  int `json:"enrollments"`
	DoorOpenings int `json:"door_openings"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs       int64   `json:"poll_ms"`
	TimeoutMs    int64   `json:"timeout_ms"`
	MaxKnocks    int     `json:"max_knocks"`
	TolerancePct float64 `json:"tolerance_pct"`
	Threshold    int     `json:"threshold"`
	HeartbeatMs  int64   `json:"heartbeat_ms"`
	Broker       string  `json:"broker"`
	HTTPAddr     string  `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	mode := string(snap.Mode)
	if mode == "" {
		mode = "UNKNOWN"
	}

	inner := StatusInner{
		Mode:            mode,
		ReferenceKnocks: snap.ReferenceLength,
		UptimeSeconds:   int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:       snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:       snap.Now.UTC().Format(time.RFC3339),
		MQTT:            MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Attempts:     snap.Counts.Attempts(),
			Matches:      snap.Counts.Matches,
			Mismatches:   snap.Counts.Mismatches,
			Enrollments:  snap.Counts.Enrollments,
			DoorOpenings: snap.Counts.DoorOpenings,
		},
		Config: ConfigJSON{
			PollMs:       snap.Config.PollMs,
			TimeoutMs:    snap.Config.TimeoutMs,
			MaxKnocks:    snap.Config.MaxKnocks,
			TolerancePct: snap.Config.TolerancePct,
			Threshold:    snap.Config.Threshold,
			HeartbeatMs:  snap.Config.HeartbeatMs,
			Broker:       snap.Config.Broker,
			HTTPAddr:     snap.Config.HTTPAddr,
		},
	}

	inner.LastOutcome = outcomeJSON(snap.Last)

	return inner
}

func outcomeJSON(l *Outcome) *OutcomeJSON {
	if l == nil {
		return nil
	}
	return &OutcomeJSON{
		Event:        string(l.Event),
		AttemptID:    l.AttemptID,
		Knocks:       l.Knocks,
		MatchPercent: math.Round(l.Percent*100) / 100,
		Reason:       string(l.Reason),
		Timestamp:    l.At.UTC().Format(time.RFC3339),
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}

// FormatOutcome returns the last enroll or verify outcome as JSON, or nil if
// there has been none since startup.
func FormatOutcome(snap Snapshot) []byte {
	o := outcomeJSON(snap.Last)
	if o == nil {
		return nil
	}
	data, _ := json.MarshalIndent(o, "", "  ")
	return data
}
