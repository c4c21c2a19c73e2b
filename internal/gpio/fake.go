package gpio

import (
	"errors"
	"time"
)

// FakeReader is a test double that returns scripted input values.
// Each input has its own script; each call consumes the next value and
// repeats the last one once exhausted.
type FakeReader struct {
	// Raw contains scripted knock sensor levels.
	Raw []int
	// Program contains scripted program button states.
	Program []bool
	// Door contains scripted reed switch states.
	Door []bool

	rawIdx, programIdx, doorIdx int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by every read.
	ReadError error
}

// NewFakeReader creates a FakeReader with the given sensor script. Button and
// door read as released and closed unless scripted.
func NewFakeReader(raw []int) *FakeReader {
	return &FakeReader{Raw: raw}
}

var errNoSamples = errors.New("no samples configured")

// ReadRaw returns the next scripted sensor level.
func (f *FakeReader) ReadRaw() (int, error) {
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	if len(f.Raw) == 0 {
		return 0, errNoSamples
	}
	return next(f.Raw, &f.rawIdx), nil
}

// ProgramPressed returns the next scripted button state (false if unscripted).
func (f *FakeReader) ProgramPressed() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}
	if len(f.Program) == 0 {
		return false, nil
	}
	return next(f.Program, &f.programIdx), nil
}

// DoorOpen returns the next scripted door state (false if unscripted).
func (f *FakeReader) DoorOpen() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}
	if len(f.Door) == 0 {
		return false, nil
	}
	return next(f.Door, &f.doorIdx), nil
}

func next[T any](script []T, idx *int) T {
	v := script[*idx]
	if *idx < len(script)-1 {
		*idx++
	}
	return v
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds every script to the beginning.
func (f *FakeReader) Reset() {
	f.rawIdx, f.programIdx, f.doorIdx = 0, 0, 0
	f.Closed = false
}

// Pulse is one recorded Indicator.Pulse call.
type Pulse struct {
	Channel  Channel
	Times    int
	Duration time.Duration
}

// FakeIndicator records indicator activity without sleeping.
type FakeIndicator struct {
	// Pulses contains every Pulse call in order.
	Pulses []Pulse
	// State holds the last value Set on each channel.
	State map[Channel]bool
	// Toggles counts Set calls per channel.
	Toggles map[Channel]int

	// OnPulse, if set, is called with the blocking time of each pulse.
	// Tests use it to advance a fake clock.
	OnPulse func(d time.Duration)

	// PulseError, if set, will be returned by Pulse and Set.
	PulseError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeIndicator creates a FakeIndicator with all channels off.
func NewFakeIndicator() *FakeIndicator {
	return &FakeIndicator{
		State:   make(map[Channel]bool),
		Toggles: make(map[Channel]int),
	}
}

// Pulse records the call.
func (f *FakeIndicator) Pulse(ch Channel, times int, d time.Duration) error {
	if f.PulseError != nil {
		return f.PulseError
	}
	f.Pulses = append(f.Pulses, Pulse{Channel: ch, Times: times, Duration: d})
	if f.OnPulse != nil {
		f.OnPulse(2 * time.Duration(times) * d)
	}
	return nil
}

// Set records the channel state.
func (f *FakeIndicator) Set(ch Channel, on bool) error {
	if f.PulseError != nil {
		return f.PulseError
	}
	f.State[ch] = on
	f.Toggles[ch]++
	return nil
}

// PulsesOn returns the pulses recorded on ch.
func (f *FakeIndicator) PulsesOn(ch Channel) []Pulse {
	var out []Pulse
	for _, p := range f.Pulses {
		if p.Channel == ch {
			out = append(out, p)
		}
	}
	return out
}

// Close switches everything off and marks the indicator closed.
func (f *FakeIndicator) Close() error {
	for _, ch := range Channels {
		f.State[ch] = false
	}
	f.Closed = true
	return nil
}
