//go:build linux

package gpio

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

const chipName = "gpiochip0"

// RealReader reads inputs from actual hardware using the Linux GPIO character device.
type RealReader struct {
	chip    *gpiocdev.Chip
	sensor  *gpiocdev.Line
	program *gpiocdev.Line
	door    *gpiocdev.Line
}

// NewRealReader creates an input reader for actual Raspberry Pi hardware.
func NewRealReader(pins Pins) (*RealReader, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	r := &RealReader{chip: chip}

	// The piezo module drives its output actively; pull-down keeps a
	// disconnected sensor from reading as a knock.
	r.sensor, err = chip.RequestLine(pins.Sensor, gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("request sensor pin %d: %w", pins.Sensor, err)
	}

	// Button and reed switch short to ground.
	r.program, err = chip.RequestLine(pins.Program, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("request program pin %d: %w", pins.Program, err)
	}

	r.door, err = chip.RequestLine(pins.Door, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("request door pin %d: %w", pins.Door, err)
	}

	return r, nil
}

// ReadRaw returns the sensor line level (0 or 1).
func (r *RealReader) ReadRaw() (int, error) {
	v, err := r.sensor.Value()
	if err != nil {
		return 0, fmt.Errorf("read sensor pin: %w", err)
	}
	return v, nil
}

// ProgramPressed reports true while the button pulls its line low.
func (r *RealReader) ProgramPressed() (bool, error) {
	v, err := r.program.Value()
	if err != nil {
		return false, fmt.Errorf("read program pin: %w", err)
	}
	return v == 0, nil
}

// DoorOpen reports true while the reed switch pulls its line low.
func (r *RealReader) DoorOpen() (bool, error) {
	v, err := r.door.Value()
	if err != nil {
		return false, fmt.Errorf("read door pin: %w", err)
	}
	return v == 0, nil
}

// Close releases GPIO resources.
// Reconfigures inputs to pull-down (matching Pi boot defaults) before closing.
func (r *RealReader) Close() error {
	var errs []error

	for name, line := range map[string]*gpiocdev.Line{"sensor": r.sensor, "program": r.program, "door": r.door} {
		if line == nil {
			continue
		}
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s pin: %w", name, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", name, err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealIndicator drives LEDs on actual hardware.
type RealIndicator struct {
	chip  *gpiocdev.Chip
	lines map[Channel]*gpiocdev.Line
}

// NewRealIndicator requests every LED line as an output, initially off.
func NewRealIndicator(pins Pins) (*RealIndicator, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	ind := &RealIndicator{chip: chip, lines: make(map[Channel]*gpiocdev.Line, len(Channels))}

	for _, ch := range Channels {
		pin := pins.output(ch)
		line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
		if err != nil {
			ind.Close()
			return nil, fmt.Errorf("request %s led pin %d: %w", ch, pin, err)
		}
		ind.lines[ch] = line
	}

	return ind, nil
}

// Pulse blinks the channel. It blocks for the whole sequence.
func (ind *RealIndicator) Pulse(ch Channel, times int, d time.Duration) error {
	for i := 0; i < times; i++ {
		if err := ind.Set(ch, true); err != nil {
			return err
		}
		time.Sleep(d)
		if err := ind.Set(ch, false); err != nil {
			return err
		}
		time.Sleep(d)
	}
	return nil
}

// Set switches the channel on or off.
func (ind *RealIndicator) Set(ch Channel, on bool) error {
	line, ok := ind.lines[ch]
	if !ok {
		return fmt.Errorf("%s led not configured", ch)
	}
	v := 0
	if on {
		v = 1
	}
	if err := line.SetValue(v); err != nil {
		return fmt.Errorf("set %s led: %w", ch, err)
	}
	return nil
}

// Close switches every LED off and returns the lines to inputs with pull-down.
func (ind *RealIndicator) Close() error {
	var errs []error

	for ch, line := range ind.lines {
		if err := line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("switch off %s led: %w", ch, err))
		}
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s led: %w", ch, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s led: %w", ch, err))
		}
	}
	if ind.chip != nil {
		if err := ind.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
