// Package gpio provides the knock lock's hardware I/O with an abstraction
// for testing: the piezo knock sensor, the program button and the door reed
// switch as inputs, and four indicator LEDs as outputs.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import "time"

// Reader reads the lock's inputs.
type Reader interface {
	// ReadRaw returns the instantaneous knock sensor level.
	ReadRaw() (int, error)

	// ProgramPressed reports whether the program (enroll) button is held.
	ProgramPressed() (bool, error)

	// DoorOpen reports whether the door reed switch reads open.
	DoorOpen() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Channel identifies an indicator LED.
type Channel int

const (
	Green Channel = iota
	Red
	Blue
	Yellow
)

func (c Channel) String() string {
	switch c {
	case Green:
		return "green"
	case Red:
		return "red"
	case Blue:
		return "blue"
	case Yellow:
		return "yellow"
	}
	return "unknown"
}

// Channels lists every indicator channel.
var Channels = []Channel{Green, Red, Blue, Yellow}

// Indicator drives the feedback LEDs.
type Indicator interface {
	// Pulse blinks ch on then off for d each, times times. It blocks for
	// 2*times*d.
	Pulse(ch Channel, times int, d time.Duration) error

	// Set switches ch on or off.
	Set(ch Channel, on bool) error

	// Close switches all channels off and releases GPIO resources.
	Close() error
}

// Default pin definitions (BCM numbering).
const (
	DefaultPinSensor  = 17 // piezo module digital output
	DefaultPinProgram = 27 // program button to ground
	DefaultPinDoor    = 22 // reed switch to ground
	DefaultPinGreen   = 5
	DefaultPinRed     = 6
	DefaultPinBlue    = 13
	DefaultPinYellow  = 19
)

// Pins holds the BCM line offsets for every input and output.
type Pins struct {
	Sensor  int
	Program int
	Door    int
	Green   int
	Red     int
	Blue    int
	Yellow  int
}

// DefaultPins returns the default wiring.
func DefaultPins() Pins {
	return Pins{
		Sensor:  DefaultPinSensor,
		Program: DefaultPinProgram,
		Door:    DefaultPinDoor,
		Green:   DefaultPinGreen,
		Red:     DefaultPinRed,
		Blue:    DefaultPinBlue,
		Yellow:  DefaultPinYellow,
	}
}

func (p Pins) output(ch Channel) int {
	switch ch {
	case Green:
		return p.Green
	case Red:
		return p.Red
	case Blue:
		return p.Blue
	default:
		return p.Yellow
	}
}
