package lock

import (
	"time"

	"github.com/sweeney/knock-sensor/internal/gpio"
	"github.com/sweeney/knock-sensor/internal/logger"
	"github.com/sweeney/knock-sensor/internal/logic"
)

// Feedback timings.
const (
	ArmedPulse    = 300 * time.Millisecond // yellow x3
	EnrolledPulse = 300 * time.Millisecond // green x3
	OutcomePulse  = 500 * time.Millisecond // green or red x1
	DoorHoldOff   = 500 * time.Millisecond
)

// Config holds recording parameters.
type Config struct {
	Threshold      int
	Capacity       int
	Timeout        time.Duration
	SampleInterval time.Duration
}

// Controller runs one iteration of the control loop per Step.
type Controller struct {
	reader    gpio.Reader
	indicator gpio.Indicator
	machine   *logic.Machine
	sampler   *Sampler
	session   *Session
	recorder  *logic.Recorder
	now       func() time.Time
	sleep     func(time.Duration)
	log       *logger.Logger

	// OnModeChange, if set, is called whenever Step moves the machine to a
	// new mode, including entering RECORDING before a session blocks.
	OnModeChange func(mode logic.Mode)

	doorOpen bool
}

// NewController wires the inputs, outputs and state machine together.
// now and sleep are injected so tests can run without real time.
func NewController(reader gpio.Reader, indicator gpio.Indicator, machine *logic.Machine, cfg Config, now func() time.Time, sleep func(time.Duration), log *logger.Logger) *Controller {
	sampler := NewSampler(reader, indicator, cfg.Threshold, log)
	return &Controller{
		reader:    reader,
		indicator: indicator,
		machine:   machine,
		sampler:   sampler,
		session:   NewSession(sampler, indicator, now, sleep, cfg.SampleInterval, log),
		recorder:  logic.NewRecorder(cfg.Capacity, cfg.Timeout),
		now:       now,
		sleep:     sleep,
		log:       log,
	}
}

// Step polls the program button, the knock sensor and the door once, in that
// order. A detected knock runs a full recording session before Step returns.
// Input read errors are logged and the affected check is skipped.
func (c *Controller) Step() []logic.Event {
	var events []logic.Event

	pressed, err := c.reader.ProgramPressed()
	if err != nil {
		c.log.Warn("program button read error", "error", err)
	} else if pressed {
		if e := c.machine.Arm(c.now()); e != nil {
			c.log.Info("program button pressed")
			c.modeChanged()
			c.pulse(gpio.Yellow, 3, ArmedPulse)
			events = append(events, *e)
		}
	}

	knock, err := c.sampler.Sample()
	if err != nil {
		c.log.Warn("knock sensor read error", "error", err)
	} else if knock && c.machine.BeginRecording() {
		c.log.Info("knock detected")
		c.modeChanged()
		candidate := c.session.Record(c.recorder, c.now())
		e := c.machine.Complete(candidate, c.now())
		c.modeChanged()
		c.report(e, candidate)
		events = append(events, e)
	}

	open, err := c.reader.DoorOpen()
	if err != nil {
		c.log.Warn("door sensor read error", "error", err)
		return events
	}
	if open && !c.doorOpen {
		e := c.machine.DoorOpened(c.now())
		c.log.Info("door opened")
		events = append(events, e)
		c.sleep(DoorHoldOff)
	}
	c.doorOpen = open

	return events
}

// Machine returns the state machine driven by this controller.
func (c *Controller) Machine() *logic.Machine {
	return c.machine
}

func (c *Controller) modeChanged() {
	if c.OnModeChange != nil {
		c.OnModeChange(c.machine.Mode())
	}
}

func (c *Controller) report(e logic.Event, candidate logic.Pattern) {
	switch e.Type {
	case logic.EventPatternEnrolled:
		c.pulse(gpio.Green, 3, EnrolledPulse)
		c.log.Info("pattern enrolled", "attempt", e.AttemptID, "knocks", e.Knocks)
	case logic.EventKnockMatch:
		c.pulse(gpio.Green, 1, OutcomePulse)
		c.logComparison(e, candidate)
		c.log.Info("pattern matched", "attempt", e.AttemptID, "match_percent", e.Comparison.Percent)
	case logic.EventKnockMismatch:
		c.pulse(gpio.Red, 1, OutcomePulse)
		c.logComparison(e, candidate)
		c.log.Info("pattern mismatch", "attempt", e.AttemptID, "reason", e.Comparison.Reason, "match_percent", e.Comparison.Percent)
	}
}

func (c *Controller) logComparison(e logic.Event, candidate logic.Pattern) {
	ref := c.machine.Reference()
	c.log.Debug("pattern time comparison", "reference", ref.String(), "recorded", candidate.String())
	for i, row := range e.Comparison.Rows {
		c.log.Debug("pattern ratio",
			"idx", i+1,
			"reference", row.ReferenceRatio,
			"recorded", row.CandidateRatio,
			"diff", row.Diff,
		)
	}
}

func (c *Controller) pulse(ch gpio.Channel, times int, d time.Duration) {
	if err := c.indicator.Pulse(ch, times, d); err != nil {
		c.log.Debug("indicator pulse failed", "channel", ch.String(), "error", err)
	}
}
