//go:build !linux

package gpio

import (
	"errors"
	"time"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealReader is not available on non-Linux platforms.
type RealReader struct{}

// NewRealReader returns an error on non-Linux platforms.
func NewRealReader(pins Pins) (*RealReader, error) {
	return nil, errUnsupported
}

// ReadRaw is not implemented on non-Linux platforms.
func (r *RealReader) ReadRaw() (int, error) { return 0, errUnsupported }

// ProgramPressed is not implemented on non-Linux platforms.
func (r *RealReader) ProgramPressed() (bool, error) { return false, errUnsupported }

// DoorOpen is not implemented on non-Linux platforms.
func (r *RealReader) DoorOpen() (bool, error) { return false, errUnsupported }

// Close is not implemented on non-Linux platforms.
func (r *RealReader) Close() error { return nil }

// RealIndicator is not available on non-Linux platforms.
type RealIndicator struct{}

// NewRealIndicator returns an error on non-Linux platforms.
func NewRealIndicator(pins Pins) (*RealIndicator, error) {
	return nil, errUnsupported
}

// Pulse is not implemented on non-Linux platforms.
func (ind *RealIndicator) Pulse(ch Channel, times int, d time.Duration) error { return errUnsupported }

// Set is not implemented on non-Linux platforms.
func (ind *RealIndicator) Set(ch Channel, on bool) error { return errUnsupported }

// Close is not implemented on non-Linux platforms.
func (ind *RealIndicator) Close() error { return nil }
