// Package config loads daemon settings from the environment. The command
// line flags in main use these values as their defaults.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/sweeney/knock-sensor/internal/gpio"
	"github.com/sweeney/knock-sensor/internal/logic"
)

// Config contains daemon configuration parameters.
type Config struct {
	LogLevel  int           `env:"LOG_LEVEL" envDefault:"0"`
	Poll      time.Duration `env:"POLL" envDefault:"5ms"`
	Heartbeat time.Duration `env:"HEARTBEAT" envDefault:"15m"`
	HTTPAddr  string        `env:"HTTP_ADDR" envDefault:":80"`
	Knock     Knock         `envPrefix:"KNOCK_"`
	MQTT      MQTT          `envPrefix:"MQTT_"`
	Pins      Pins          `envPrefix:"PIN_"`
}

// Knock contains recording and matching parameters.
type Knock struct {
	Threshold      int           `env:"THRESHOLD" envDefault:"0"`
	Max            int           `env:"MAX" envDefault:"10"`
	Timeout        time.Duration `env:"TIMEOUT" envDefault:"3500ms"`
	Tolerance      float64       `env:"TOLERANCE" envDefault:"10"`
	SampleInterval time.Duration `env:"SAMPLE_INTERVAL" envDefault:"1ms"`
}

// MQTT contains broker connection parameters.
type MQTT struct {
	Broker   string `env:"BROKER" envDefault:"tcp://192.168.1.200:1883"`
	ClientID string `env:"CLIENT_ID" envDefault:"knock-sensor"`
	// WSBroker is the websocket URL for the live status page. "=broker"
	// derives it from Broker; "off" disables the live view.
	WSBroker string `env:"WS_BROKER" envDefault:"=broker"`
}

// Pins contains BCM pin numbers.
type Pins struct {
	Sensor  int `env:"SENSOR" envDefault:"17"`
	Program int `env:"PROGRAM" envDefault:"27"`
	Door    int `env:"DOOR" envDefault:"22"`
	Green   int `env:"GREEN" envDefault:"5"`
	Red     int `env:"RED" envDefault:"6"`
	Blue    int `env:"BLUE" envDefault:"13"`
	Yellow  int `env:"YELLOW" envDefault:"19"`
}

// GPIO converts the pin settings for the gpio package.
func (p Pins) GPIO() gpio.Pins {
	return gpio.Pins{
		Sensor:  p.Sensor,
		Program: p.Program,
		Door:    p.Door,
		Green:   p.Green,
		Red:     p.Red,
		Blue:    p.Blue,
		Yellow:  p.Yellow,
	}
}

// Load parses configuration from environment variables.
func Load() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// Validate checks value ranges. It is called after flag overrides are applied.
func (c *Config) Validate() error {
	var errs []error
	if c.Poll <= 0 {
		errs = append(errs, fmt.Errorf("poll interval must be positive, got %v", c.Poll))
	}
	if c.Heartbeat < 0 {
		errs = append(errs, fmt.Errorf("heartbeat must not be negative, got %v", c.Heartbeat))
	}
	if c.Knock.Max < 1 || c.Knock.Max > logic.MaxKnocks {
		errs = append(errs, fmt.Errorf("max knocks must be in 1..%d, got %d", logic.MaxKnocks, c.Knock.Max))
	}
	if c.Knock.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("knock timeout must be positive, got %v", c.Knock.Timeout))
	}
	if c.Knock.Tolerance < 0 || c.Knock.Tolerance > 100 {
		errs = append(errs, fmt.Errorf("tolerance must be in [0,100], got %v", c.Knock.Tolerance))
	}
	if c.Knock.SampleInterval < 0 {
		errs = append(errs, fmt.Errorf("sample interval must not be negative, got %v", c.Knock.SampleInterval))
	}
	if c.MQTT.Broker == "" {
		errs = append(errs, errors.New("mqtt broker must be set"))
	}
	return errors.Join(errs...)
}
