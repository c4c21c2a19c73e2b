// Command knock-sensor records knock patterns from a GPIO piezo sensor,
// enrolls or verifies them, and publishes the outcomes to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/knock-sensor/internal/config"
	"github.com/sweeney/knock-sensor/internal/gpio"
	"github.com/sweeney/knock-sensor/internal/lock"
	"github.com/sweeney/knock-sensor/internal/logger"
	"github.com/sweeney/knock-sensor/internal/logic"
	"github.com/sweeney/knock-sensor/internal/mqtt"
	"github.com/sweeney/knock-sensor/internal/status"
	"github.com/sweeney/knock-sensor/internal/web"
)

const mqttConnectWait = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}

	printState := bindFlags(flag.CommandLine, cfg)
	flag.Parse()

	log := logger.New(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", "error", err)
	}

	if err := run(cfg, *printState, log); err != nil {
		log.Fatal("fatal", "error", err)
	}
}

// bindFlags registers a flag for every config value, using the loaded
// values as defaults so flags override the environment.
func bindFlags(fs *flag.FlagSet, cfg *config.Config) (printState *bool) {
	fs.IntVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (-4 debug, 0 info, 4 warn, 8 error)")
	fs.DurationVar(&cfg.Poll, "poll", cfg.Poll, "Idle polling interval")
	fs.DurationVar(&cfg.Heartbeat, "heartbeat", cfg.Heartbeat, "Heartbeat interval (0 to disable)")
	fs.StringVar(&cfg.HTTPAddr, "http", cfg.HTTPAddr, "HTTP status address (empty to disable)")
	fs.IntVar(&cfg.Knock.Threshold, "threshold", cfg.Knock.Threshold, "Sensor reading above which a poll counts as a knock")
	fs.IntVar(&cfg.Knock.Max, "max-knocks", cfg.Knock.Max, "Maximum knocks per pattern")
	fs.DurationVar(&cfg.Knock.Timeout, "timeout", cfg.Knock.Timeout, "Recording window after the first knock")
	fs.Float64Var(&cfg.Knock.Tolerance, "tolerance", cfg.Knock.Tolerance, "Match tolerance in percentage points")
	fs.DurationVar(&cfg.Knock.SampleInterval, "sample-interval", cfg.Knock.SampleInterval, "Sensor polling interval while recording")
	fs.StringVar(&cfg.MQTT.Broker, "broker", cfg.MQTT.Broker, "MQTT broker address")
	fs.StringVar(&cfg.MQTT.ClientID, "client-id", cfg.MQTT.ClientID, "MQTT client ID")
	fs.StringVar(&cfg.MQTT.WSBroker, "ws-broker", cfg.MQTT.WSBroker, `MQTT websocket URL for live UI ("=broker" derives from --broker, "off" disables)`)
	fs.IntVar(&cfg.Pins.Sensor, "pin-sensor", cfg.Pins.Sensor, "BCM pin number for the knock sensor")
	fs.IntVar(&cfg.Pins.Program, "pin-program", cfg.Pins.Program, "BCM pin number for the program button")
	fs.IntVar(&cfg.Pins.Door, "pin-door", cfg.Pins.Door, "BCM pin number for the door reed switch")
	fs.IntVar(&cfg.Pins.Green, "pin-green", cfg.Pins.Green, "BCM pin number for the green (accepted) LED")
	fs.IntVar(&cfg.Pins.Red, "pin-red", cfg.Pins.Red, "BCM pin number for the red (rejected) LED")
	fs.IntVar(&cfg.Pins.Blue, "pin-blue", cfg.Pins.Blue, "BCM pin number for the blue (knock) LED")
	fs.IntVar(&cfg.Pins.Yellow, "pin-yellow", cfg.Pins.Yellow, "BCM pin number for the yellow (program/recording) LED")
	printState = fs.Bool("print-state", false, "Print current input state and exit")

	return printState
}

func run(cfg *config.Config, printState bool, log *logger.Logger) error {
	pins := cfg.Pins.GPIO()

	reader, err := gpio.NewRealReader(pins)
	if err != nil {
		return fmt.Errorf("init gpio inputs: %w", err)
	}
	defer reader.Close()

	if printState {
		return printInputs(reader)
	}

	indicator, err := gpio.NewRealIndicator(pins)
	if err != nil {
		return fmt.Errorf("init gpio outputs: %w", err)
	}
	defer indicator.Close()

	publisher := mqtt.NewRealPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID, mqttConnectWait, log)
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	startTime := time.Now()
	tracker := status.NewTracker(startTime, status.Config{
		PollMs:       cfg.Poll.Milliseconds(),
		TimeoutMs:    cfg.Knock.Timeout.Milliseconds(),
		MaxKnocks:    cfg.Knock.Max,
		TolerancePct: cfg.Knock.Tolerance,
		Threshold:    cfg.Knock.Threshold,
		HeartbeatMs:  cfg.Heartbeat.Milliseconds(),
		Broker:       cfg.MQTT.Broker,
		HTTPAddr:     cfg.HTTPAddr,
		WSBroker:     resolveWSBroker(cfg.MQTT.WSBroker, cfg.MQTT.Broker, log),
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	machine := logic.NewMachine(logic.NewStore(logic.DefaultPattern()), cfg.Knock.Tolerance, startTime)
	ctrl := lock.NewController(reader, indicator, machine, lock.Config{
		Threshold:      cfg.Knock.Threshold,
		Capacity:       cfg.Knock.Max,
		Timeout:        cfg.Knock.Timeout,
		SampleInterval: cfg.Knock.SampleInterval,
	}, time.Now, time.Sleep, log)
	tracker.Update(machine.Mode(), machine.Reference().Len(), machine.Counts())
	tracker.SetMQTTConnected(publisher.IsConnected())

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Warn("failed to publish startup event", "error", err)
	} else {
		log.Info("published startup event")
	}

	// Start HTTP status server
	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("http server error", "error", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Info("http status server listening", "addr", cfg.HTTPAddr)
	}

	log.Info("started",
		"poll", cfg.Poll,
		"timeout", cfg.Knock.Timeout,
		"max_knocks", cfg.Knock.Max,
		"tolerance", cfg.Knock.Tolerance,
		"broker", cfg.MQTT.Broker,
		"heartbeat", cfg.Heartbeat,
		"reference", machine.Reference().String(),
	)

	ticker := time.NewTicker(cfg.Poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(ctrl, publisher, publisher, tracker, cfg.Heartbeat, time.Now, ticker.C, sigCh, log)
}

// runLoop drives the controller once per tick until a signal arrives. A tick
// that detects a knock blocks for the whole recording session.
func runLoop(ctrl *lock.Controller, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal, log *logger.Logger) error {
	machine := ctrl.Machine()

	refresh := func() {
		if tracker == nil {
			return
		}
		tracker.Update(machine.Mode(), machine.Reference().Len(), machine.Counts())
		if mqttStatus != nil {
			tracker.SetMQTTConnected(mqttStatus.IsConnected())
		}
	}

	// The loop blocks while recording, so mode changes inside Step are
	// pushed to the tracker as they happen.
	if tracker != nil {
		ctrl.OnModeChange = func(mode logic.Mode) {
			tracker.Update(mode, machine.Reference().Len(), machine.Counts())
		}
	}

	for {
		select {
		case s := <-sig:
			log.Info("shutting down", "signal", s.String())
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				refresh()
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Warn("failed to publish shutdown event", "error", err)
			} else {
				log.Info("published shutdown event")
			}
			return nil

		case <-tick:
			for _, event := range ctrl.Step() {
				log.Info("event", "type", event.Type, "mode", event.Mode, "attempt", event.AttemptID)
				if tracker != nil {
					tracker.RecordEvent(event)
				}
				if err := publisher.Publish(event); err != nil {
					// Don't crash on publish failure
					log.Warn("publish error", "event", event.Type, "error", err)
				}
			}

			t := now()
			if hbData := machine.CheckHeartbeat(t, heartbeat); hbData != nil {
				log.Info("heartbeat",
					"uptime", hbData.Uptime,
					"attempts", hbData.Counts.Attempts(),
					"matches", hbData.Counts.Matches,
					"mismatches", hbData.Counts.Mismatches,
					"enrollments", hbData.Counts.Enrollments,
					"door_openings", hbData.Counts.DoorOpenings,
				)

				hbEvent := mqtt.SystemEvent{
					Timestamp: hbData.Timestamp,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					refresh()
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Warn("heartbeat publish error", "error", err)
				}
			}

			// Update status tracker for HTTP consumers
			refresh()
		}
	}
}

func printInputs(reader gpio.Reader) error {
	raw, err := reader.ReadRaw()
	if err != nil {
		return fmt.Errorf("read sensor: %w", err)
	}
	pressed, err := reader.ProgramPressed()
	if err != nil {
		return fmt.Errorf("read program button: %w", err)
	}
	open, err := reader.DoorOpen()
	if err != nil {
		return fmt.Errorf("read door: %w", err)
	}
	fmt.Printf("sensor: %d, program: %s, door: %s\n", raw, pressedString(pressed), doorString(open))
	return nil
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

func pressedString(on bool) string {
	if on {
		return "pressed"
	}
	return "released"
}

func doorString(open bool) string {
	if open {
		return "open"
	}
	return "closed"
}

// resolveWSBroker converts the --ws-broker flag value into a concrete URL.
// "=broker" derives ws://host:9001 from the TCP broker address; "off" disables.
func resolveWSBroker(ws, broker string, log *logger.Logger) string {
	if ws == "off" {
		return ""
	}
	if ws != "=broker" {
		return ws
	}
	u, err := url.Parse(broker)
	if err != nil {
		log.Warn("ws-broker: cannot parse broker", "broker", broker, "error", err)
		return ""
	}
	u.Scheme = "ws"
	u.Host = u.Hostname() + ":9001"
	return u.String()
}
