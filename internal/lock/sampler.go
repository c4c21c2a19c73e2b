// Package lock drives the knock lock from hardware inputs: it samples the
// knock sensor, runs blocking recording sessions and feeds the state machine.
// Everything here runs on the single control loop.
package lock

import (
	"fmt"
	"time"

	"github.com/sweeney/knock-sensor/internal/gpio"
	"github.com/sweeney/knock-sensor/internal/logger"
)

// KnockPulse is the blue flash shown for every detected knock.
const KnockPulse = 40 * time.Millisecond

// Sampler turns raw sensor readings into knock / no-knock decisions.
// Every poll above the threshold counts as a knock; there is no debouncing
// beyond the blocking knock pulse.
type Sampler struct {
	reader    gpio.Reader
	indicator gpio.Indicator
	threshold int
	log       *logger.Logger
}

// NewSampler creates a Sampler reporting a knock when the raw level exceeds threshold.
func NewSampler(reader gpio.Reader, indicator gpio.Indicator, threshold int, log *logger.Logger) *Sampler {
	return &Sampler{
		reader:    reader,
		indicator: indicator,
		threshold: threshold,
		log:       log,
	}
}

// Sample reads the sensor once. On a knock it blocks for the knock pulse.
func (s *Sampler) Sample() (bool, error) {
	raw, err := s.reader.ReadRaw()
	if err != nil {
		return false, fmt.Errorf("read knock sensor: %w", err)
	}
	if raw <= s.threshold {
		return false, nil
	}
	if err := s.indicator.Pulse(gpio.Blue, 1, KnockPulse); err != nil {
		// The knock still counts.
		s.log.Debug("knock pulse failed", "error", err)
	}
	return true, nil
}
