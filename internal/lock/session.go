package lock

import (
	"time"

	"github.com/sweeney/knock-sensor/internal/gpio"
	"github.com/sweeney/knock-sensor/internal/logger"
	"github.com/sweeney/knock-sensor/internal/logic"
)

// CadenceInterval is how often the yellow LED toggles while recording.
const CadenceInterval = 150 * time.Millisecond

// Session runs blocking recording windows against the sampler.
type Session struct {
	sampler        *Sampler
	indicator      gpio.Indicator
	now            func() time.Time
	sleep          func(time.Duration)
	sampleInterval time.Duration
	log            *logger.Logger
}

// NewSession creates a Session. sleep is called between polls when
// sampleInterval is positive.
func NewSession(sampler *Sampler, indicator gpio.Indicator, now func() time.Time, sleep func(time.Duration), sampleInterval time.Duration, log *logger.Logger) *Session {
	return &Session{
		sampler:        sampler,
		indicator:      indicator,
		now:            now,
		sleep:          sleep,
		sampleInterval: sampleInterval,
		log:            log,
	}
}

// Record polls the sampler until rec reports its window closed and returns
// the captured pattern. The first interval is measured from lastKnock.
// It blocks the caller for the whole window.
func (s *Session) Record(rec *logic.Recorder, lastKnock time.Time) logic.Pattern {
	s.log.Info("recording pattern")

	start := s.now()
	rec.Start(start, lastKnock)

	cadenceStart := start
	cadenceOn := false
	s.setCadence(false)

	var readErrors int
	var lastErr error
	for t := start; !rec.Done(t); t = s.now() {
		if t.Sub(cadenceStart) >= CadenceInterval {
			cadenceOn = !cadenceOn
			s.setCadence(cadenceOn)
			cadenceStart = t
		}

		knock, err := s.sampler.Sample()
		if err != nil {
			readErrors++
			lastErr = err
		} else if knock {
			if ms, ok := rec.Knock(s.now()); ok {
				s.log.Info("knock recorded", "n", rec.Pattern().Len(), "interval_ms", ms)
			}
		}

		if s.sampleInterval > 0 {
			s.sleep(s.sampleInterval)
		}
	}

	s.setCadence(false)

	if readErrors > 0 {
		s.log.Warn("sensor read errors during recording", "count", readErrors, "last_error", lastErr)
	}
	s.log.Info("recording done", "knocks", rec.Pattern().Len())
	return rec.Pattern()
}

func (s *Session) setCadence(on bool) {
	if err := s.indicator.Set(gpio.Yellow, on); err != nil {
		s.log.Debug("cadence led failed", "error", err)
	}
}
