package status

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/knock-sensor/internal/logic"
)

func TestNewTracker(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := Config{PollMs: 5, TimeoutMs: 3500, MaxKnocks: 10, TolerancePct: 10, Broker: "tcp://localhost:1883", HTTPAddr: ":80"}
	tr := NewTracker(start, cfg)

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Config.TimeoutMs != 3500 {
		t.Errorf("Config.TimeoutMs: got %d, want 3500", snap.Config.TimeoutMs)
	}
	if snap.Mode != logic.ModeIdle {
		t.Errorf("Mode: got %q, want IDLE", snap.Mode)
	}
	if snap.Last != nil {
		t.Error("expected no last outcome initially")
	}
	if snap.MQTTConnected {
		t.Error("expected MQTTConnected=false initially")
	}
}

func TestUpdateAndSnapshot(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.Update(logic.ModeArmed, 3, logic.EventCounts{Matches: 3, DoorOpenings: 1})

	snap := tr.Snapshot()
	if snap.Mode != logic.ModeArmed {
		t.Errorf("Mode: got %q, want ARMED", snap.Mode)
	}
	if snap.ReferenceLength != 3 {
		t.Errorf("ReferenceLength: got %d, want 3", snap.ReferenceLength)
	}
	if snap.Counts.Matches != 3 {
		t.Errorf("Counts.Matches: got %d, want 3", snap.Counts.Matches)
	}
}

func TestRecordEventKeepsOutcomesOnly(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	at := time.Date(2026, 1, 1, 0, 5, 0, 0, time.UTC)
	cmp := logic.Compare(logic.DefaultPattern(), logic.PatternOf(200, 200, 200), 10)

	tr.RecordEvent(logic.Event{Type: logic.EventKnockMismatch, AttemptID: "a1", Knocks: 3, Comparison: &cmp, Timestamp: at})
	tr.RecordEvent(logic.Event{Type: logic.EventDoorOpened, Timestamp: at.Add(time.Minute)})
	tr.RecordEvent(logic.Event{Type: logic.EventProgramArmed, Timestamp: at.Add(time.Minute)})

	snap := tr.Snapshot()
	if snap.Last == nil {
		t.Fatal("expected last outcome")
	}
	if snap.Last.Event != logic.EventKnockMismatch {
		t.Errorf("Last.Event: got %q, want KNOCK_MISMATCH", snap.Last.Event)
	}
	if snap.Last.Reason != logic.ReasonBelowTolerance {
		t.Errorf("Last.Reason: got %q", snap.Last.Reason)
	}
	if !snap.Last.At.Equal(at) {
		t.Errorf("Last.At: got %v, want %v", snap.Last.At, at)
	}
}

func TestSetMQTTConnected(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.SetMQTTConnected(true)
	if !tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}

	tr.SetMQTTConnected(false)
	if tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=false")
	}
}

func TestSetNetwork(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	if tr.Snapshot().Network != nil {
		t.Error("expected nil Network initially")
	}

	tr.SetNetwork(&NetworkInfo{Type: "wifi", IP: "192.168.1.42", Status: "connected"})

	snap := tr.Snapshot()
	if snap.Network == nil {
		t.Fatal("expected non-nil Network")
	}
	if snap.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q, want %q", snap.Network.IP, "192.168.1.42")
	}
}

func TestSnapshotUptime(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(15 * time.Minute),
	}

	if snap.Uptime() != 15*time.Minute {
		t.Errorf("Uptime: got %v, want 15m", snap.Uptime())
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	tr.Update(logic.ModeIdle, 3, logic.EventCounts{Matches: 1})
	tr.RecordEvent(logic.Event{Type: logic.EventPatternEnrolled, Knocks: 3})

	snap1 := tr.Snapshot()
	snap1.Last.Knocks = 99

	tr.Update(logic.ModeArmed, 5, logic.EventCounts{Matches: 2})

	if snap1.Mode != logic.ModeIdle || snap1.ReferenceLength != 3 {
		t.Error("snapshot should be a copy; mode or length was modified")
	}
	if tr.Snapshot().Last.Knocks != 3 {
		t.Error("mutating a snapshot's outcome must not affect the tracker")
	}
}

func TestFormatJSON(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Mode:            logic.ModeIdle,
		ReferenceLength: 3,
		Counts:          logic.EventCounts{Matches: 5, Mismatches: 2, Enrollments: 1, DoorOpenings: 4},
		Last: &Outcome{
			Event:     logic.EventKnockMatch,
			AttemptID: "a1",
			Knocks:    3,
			Percent:   97.123456,
			Reason:    logic.ReasonMatch,
			At:        start.Add(10 * time.Minute),
		},
		StartTime:     start,
		Now:           start.Add(15 * time.Minute),
		MQTTConnected: true,
		Config:        Config{PollMs: 5, TimeoutMs: 3500, MaxKnocks: 10, TolerancePct: 10, HeartbeatMs: 900000, Broker: "tcp://localhost:1883", HTTPAddr: ":80"},
	}

	data := FormatJSON(snap)

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	s := parsed.Status
	if s.Mode != "IDLE" {
		t.Errorf("Mode: got %q, want IDLE", s.Mode)
	}
	if s.ReferenceKnocks != 3 {
		t.Errorf("ReferenceKnocks: got %d, want 3", s.ReferenceKnocks)
	}
	if s.UptimeSeconds != 900 {
		t.Errorf("UptimeSeconds: got %d, want 900", s.UptimeSeconds)
	}
	if s.Counts.Attempts != 8 {
		t.Errorf("Counts.Attempts: got %d, want 8", s.Counts.Attempts)
	}
	if s.Counts.DoorOpenings != 4 {
		t.Errorf("Counts.DoorOpenings: got %d, want 4", s.Counts.DoorOpenings)
	}
	if s.LastOutcome == nil {
		t.Fatal("expected last_outcome")
	}
	if s.LastOutcome.MatchPercent != 97.12 {
		t.Errorf("LastOutcome.MatchPercent: got %v, want 97.12", s.LastOutcome.MatchPercent)
	}
	if s.Config.TolerancePct != 10 {
		t.Errorf("Config.TolerancePct: got %v, want 10", s.Config.TolerancePct)
	}
	if s.Event != "" || s.Reason != "" {
		t.Errorf("expected empty event/reason for web format, got %q/%q", s.Event, s.Reason)
	}
}

func TestFormatJSONUnknownMode(t *testing.T) {
	snap := Snapshot{
		StartTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC),
	}

	var parsed StatusJSON
	json.Unmarshal(FormatJSON(snap), &parsed)

	if parsed.Status.Mode != "UNKNOWN" {
		t.Errorf("Mode: got %q, want UNKNOWN", parsed.Status.Mode)
	}
	if parsed.Status.LastOutcome != nil {
		t.Error("last_outcome should be omitted when nothing happened yet")
	}
}

func TestFormatStatusEventShutdown(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Mode:      logic.ModeIdle,
		StartTime: start,
		Now:       start.Add(30 * time.Minute),
		Config:    Config{Broker: "tcp://localhost:1883"},
	}

	data := FormatStatusEvent(snap, "SHUTDOWN", "SIGTERM")

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.Event != "SHUTDOWN" {
		t.Errorf("Event: got %q, want SHUTDOWN", parsed.Status.Event)
	}
	if parsed.Status.Reason != "SIGTERM" {
		t.Errorf("Reason: got %q, want SIGTERM", parsed.Status.Reason)
	}
}

func TestFormatStatusEventOmitsReasonWhenEmpty(t *testing.T) {
	snap := Snapshot{
		StartTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC),
	}

	data := FormatStatusEvent(snap, "STARTUP", "")

	var raw map[string]interface{}
	json.Unmarshal(data, &raw)
	status := raw["status"].(map[string]interface{})
	if _, exists := status["reason"]; exists {
		t.Error("reason should be omitted when empty")
	}
	if status["event"] != "STARTUP" {
		t.Errorf("event: got %v, want STARTUP", status["event"])
	}
}

func TestFormatJSONWithNetwork(t *testing.T) {
	snap := Snapshot{
		Mode:      logic.ModeIdle,
		StartTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 1, 1, 0, 1, 0, 0, time.UTC),
		Network:   &NetworkInfo{Type: "wifi", IP: "192.168.1.42", Status: "connected", SSID: "MyNet"},
	}

	var parsed StatusJSON
	json.Unmarshal(FormatJSON(snap), &parsed)

	if parsed.Status.Network == nil {
		t.Fatal("expected Network in JSON")
	}
	if parsed.Status.Network.SSID != "MyNet" {
		t.Errorf("Network.SSID: got %q, want MyNet", parsed.Status.Network.SSID)
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			tr.Update(logic.ModeIdle, 3, logic.EventCounts{Matches: i})
			tr.RecordEvent(logic.Event{Type: logic.EventPatternEnrolled, Knocks: i % 10})
			tr.SetMQTTConnected(i%2 == 0)
			tr.SetNetwork(&NetworkInfo{IP: "1.2.3.4"})
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			snap := tr.Snapshot()
			_ = FormatJSON(snap)
		}
	}()

	wg.Wait()
}

func TestFormatOutcome(t *testing.T) {
	if data := FormatOutcome(Snapshot{}); data != nil {
		t.Errorf("expected nil without an outcome, got %s", data)
	}

	snap := Snapshot{Last: &Outcome{
		Event:     logic.EventKnockMismatch,
		AttemptID: "a7",
		Knocks:    3,
		Percent:   66.666666,
		Reason:    logic.ReasonBelowTolerance,
		At:        time.Date(2026, 1, 1, 0, 2, 0, 0, time.UTC),
	}}

	var parsed OutcomeJSON
	if err := json.Unmarshal(FormatOutcome(snap), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Event != "KNOCK_MISMATCH" || parsed.AttemptID != "a7" {
		t.Errorf("outcome: got %+v", parsed)
	}
	if parsed.MatchPercent != 66.67 {
		t.Errorf("MatchPercent: got %v, want 66.67", parsed.MatchPercent)
	}
	if parsed.Timestamp != "2026-01-01T00:02:00Z" {
		t.Errorf("Timestamp: got %q", parsed.Timestamp)
	}
}
