package gpio

import (
	"errors"
	"testing"
	"time"
)

func TestFakeReaderReadRaw(t *testing.T) {
	f := NewFakeReader([]int{0, 1, 0})

	for i, want := range []int{0, 1, 0, 0} {
		got, err := f.ReadRaw()
		if err != nil {
			t.Fatalf("read %d: unexpected error: %v", i, err)
		}
		if got != want {
			t.Errorf("read %d: expected %d, got %d", i, want, got)
		}
	}
}

func TestFakeReaderNoSamples(t *testing.T) {
	f := NewFakeReader(nil)

	if _, err := f.ReadRaw(); err == nil {
		t.Error("expected error with no samples")
	}
}

func TestFakeReaderUnscriptedInputs(t *testing.T) {
	f := NewFakeReader([]int{0})

	pressed, err := f.ProgramPressed()
	if err != nil || pressed {
		t.Errorf("expected unpressed button, got (%v, %v)", pressed, err)
	}
	open, err := f.DoorOpen()
	if err != nil || open {
		t.Errorf("expected closed door, got (%v, %v)", open, err)
	}
}

func TestFakeReaderIndependentScripts(t *testing.T) {
	f := NewFakeReader([]int{1})
	f.Program = []bool{false, true}
	f.Door = []bool{true, false}

	f.ReadRaw()
	f.ReadRaw()

	// Reading the sensor must not advance the button or door scripts.
	if pressed, _ := f.ProgramPressed(); pressed {
		t.Error("program: expected first scripted value false")
	}
	if pressed, _ := f.ProgramPressed(); !pressed {
		t.Error("program: expected second scripted value true")
	}
	if open, _ := f.DoorOpen(); !open {
		t.Error("door: expected first scripted value true")
	}
}

func TestFakeReaderError(t *testing.T) {
	f := NewFakeReader([]int{1})
	f.ReadError = errors.New("simulated error")

	if _, err := f.ReadRaw(); err == nil || err.Error() != "simulated error" {
		t.Errorf("ReadRaw: unexpected error: %v", err)
	}
	if _, err := f.ProgramPressed(); err == nil {
		t.Error("ProgramPressed: expected error")
	}
	if _, err := f.DoorOpen(); err == nil {
		t.Error("DoorOpen: expected error")
	}
}

func TestFakeReaderCloseAndReset(t *testing.T) {
	f := NewFakeReader([]int{1, 0})

	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}

	f.ReadRaw()
	f.Reset()

	if f.Closed {
		t.Error("Reset should clear Closed")
	}
	if v, _ := f.ReadRaw(); v != 1 {
		t.Errorf("after reset: expected 1, got %d", v)
	}
}

func TestFakeIndicatorPulse(t *testing.T) {
	f := NewFakeIndicator()
	var blocked time.Duration
	f.OnPulse = func(d time.Duration) { blocked += d }

	f.Pulse(Yellow, 3, 300*time.Millisecond)
	f.Pulse(Blue, 1, 40*time.Millisecond)

	if len(f.Pulses) != 2 {
		t.Fatalf("expected 2 pulses, got %d", len(f.Pulses))
	}
	if f.Pulses[0] != (Pulse{Channel: Yellow, Times: 3, Duration: 300 * time.Millisecond}) {
		t.Errorf("unexpected first pulse: %+v", f.Pulses[0])
	}
	if got := len(f.PulsesOn(Blue)); got != 1 {
		t.Errorf("expected 1 blue pulse, got %d", got)
	}
	if blocked != 1880*time.Millisecond {
		t.Errorf("expected 1880ms blocked, got %v", blocked)
	}
}

func TestFakeIndicatorSetAndClose(t *testing.T) {
	f := NewFakeIndicator()

	f.Set(Yellow, true)
	f.Set(Yellow, false)
	f.Set(Green, true)

	if f.Toggles[Yellow] != 2 {
		t.Errorf("expected 2 yellow toggles, got %d", f.Toggles[Yellow])
	}
	if !f.State[Green] {
		t.Error("expected green on")
	}

	f.Close()
	if f.State[Green] || !f.Closed {
		t.Error("Close should switch everything off")
	}
}

func TestChannelString(t *testing.T) {
	want := map[Channel]string{Green: "green", Red: "red", Blue: "blue", Yellow: "yellow", Channel(9): "unknown"}
	for ch, s := range want {
		if ch.String() != s {
			t.Errorf("Channel(%d).String(): got %q, want %q", int(ch), ch.String(), s)
		}
	}
}
