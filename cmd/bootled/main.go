// Command bootled mirrors the presence of a sentinel file onto a GPIO LED:
// steady idle level while the file is absent, blinking while it exists.
// The pin number and polarity come from the bootloader environment.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sweeney/bootled/internal/blink"
	"github.com/sweeney/bootled/internal/daemon"
	"github.com/sweeney/bootled/internal/fwenv"
	"github.com/sweeney/bootled/internal/gpio"
	"github.com/sweeney/bootled/internal/logging"
	"github.com/sweeney/bootled/internal/mqtt"
	"github.com/sweeney/bootled/internal/sentinel"
	"github.com/sweeney/bootled/internal/status"
	"github.com/sweeney/bootled/internal/web"
)

const (
	defaultSentinel = "/var/run/boot"
	defaultPoll     = 100 * time.Millisecond
)

// config collects everything the daemon needs; no process-wide mutable state.
type config struct {
	interval     time.Duration // CLI default half-period
	sentinelPath string

	poll         time.Duration
	backend      string
	chip         string
	fwCommand    string
	lockPath     string
	broker       string
	httpAddr     string
	restoreState bool
	foreground   bool
	useSyslog    bool
}

func main() {
	poll := flag.Duration("poll", defaultPoll, "sentinel polling interval")
	backend := flag.String("gpio-backend", gpio.BackendSysfs, "GPIO backend: sysfs, cdev or periph")
	chip := flag.String("chip", "gpiochip0", "GPIO chip name (cdev backend)")
	fwCommand := flag.String("fw-printenv", fwenv.DefaultCommand, "bootloader environment dump command")
	restoreState := flag.Bool("restore-state", false, "treat the pre-existing GPIO level as the idle state instead of deriving it from polarity")
	foreground := flag.Bool("foreground", false, "stay attached to the terminal (for service managers)")
	useSyslog := flag.Bool("syslog", true, "log to the system log once detached")
	lockPath := flag.String("lock", daemon.DefaultLockPath, "single-instance lock file")
	broker := flag.String("broker", "", "MQTT broker address for event publishing (empty to disable)")
	httpAddr := flag.String("http", "", "HTTP status address (empty to disable)")

	flag.Usage = usage
	flag.Parse()

	cfg, err := parseArgs(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[0], err)
		usage()
		os.Exit(1)
	}
	cfg.poll = *poll
	cfg.backend = *backend
	cfg.chip = *chip
	cfg.fwCommand = *fwCommand
	cfg.lockPath = *lockPath
	cfg.broker = *broker
	cfg.httpAddr = *httpAddr
	cfg.restoreState = *restoreState
	cfg.foreground = *foreground
	cfg.useSyslog = *useSyslog

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(),
		"Usage: %s [flags] <blink_interval_seconds> [file_to_monitor]\n\nFlags:\n", os.Args[0])
	flag.PrintDefaults()
}

// parseArgs validates the positional arguments.
func parseArgs(args []string) (config, error) {
	if len(args) < 1 || len(args) > 2 {
		return config{}, errors.New("expected <blink_interval_seconds> [file_to_monitor]")
	}

	seconds, err := strconv.ParseFloat(args[0], 64)
	if err != nil || seconds <= 0 {
		return config{}, fmt.Errorf("invalid blink interval %q", args[0])
	}

	cfg := config{
		interval:     time.Duration(seconds * float64(time.Second)),
		sentinelPath: defaultSentinel,
	}
	if len(args) == 2 {
		cfg.sentinelPath = args[1]
	}
	return cfg, nil
}

func run(cfg config) error {
	// Resolve pin/polarity before daemonizing, so a bad environment fails on
	// the invoking terminal with exit 1.
	line, err := fwenv.Resolve(&fwenv.ExecDumper{Command: cfg.fwCommand})
	if err != nil {
		return fmt.Errorf("resolve led line: %w", err)
	}

	if !cfg.foreground {
		if !daemon.Detached() {
			// Pre-flight the lock while still attached to the terminal, so a
			// duplicate start reports there with exit 1 instead of dying
			// silently in the detached child.
			if err := preflightLock(cfg.lockPath); err != nil {
				return err
			}
		}
		parent, err := daemon.Detach()
		if err != nil {
			return fmt.Errorf("daemonize: %w", err)
		}
		if parent {
			return nil
		}
	}

	log := logging.New(cfg.useSyslog && !cfg.foreground)
	gpioLog := log.WithField("component", "gpio")

	// The lock guards every port operation below. A losing instance must
	// never reach the export/unexport controls: its Close would unexport
	// the running daemon's pin.
	lock := daemon.NewLock(cfg.lockPath)
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer lock.Release()

	port, line, err := openPort(cfg, line)
	if err != nil {
		return fmt.Errorf("open gpio %d: %w", line.Pin, err)
	}

	// Cleanup runs exactly once, from this path, on every return:
	// park the LED at idle, then release the pin.
	defer func() {
		if err := port.SetValue(line.Idle); err != nil {
			gpioLog.WithError(err).Error("failed to park led at idle")
		}
		if err := port.Close(); err != nil {
			gpioLog.WithError(err).Error("failed to release gpio")
		}
	}()

	if err := port.SetValue(line.Idle); err != nil {
		gpioLog.WithError(err).Error("initial idle write failed")
	}

	var publisher mqtt.Publisher = mqtt.NopPublisher{}
	var connStatus mqtt.ConnectionStatus = mqtt.NopPublisher{}
	if cfg.broker != "" {
		real := mqtt.NewRealPublisher(cfg.broker, logging.Tag, log.WithField("component", "mqtt"))
		publisher = real
		connStatus = real
		defer publisher.Close()
	}

	tracker := status.NewTracker(time.Now(), line, status.Config{
		PollMs:     cfg.poll.Milliseconds(),
		IntervalMs: cfg.interval.Milliseconds(),
		Sentinel:   cfg.sentinelPath,
		Broker:     cfg.broker,
		HTTPAddr:   cfg.httpAddr,
		Backend:    cfg.backend,
	})

	startup := mqtt.SystemEvent{
		Timestamp:  time.Now(),
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(tracker.Snapshot(), "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startup); err != nil {
		log.WithError(err).Error("failed to publish startup event")
	}

	if cfg.httpAddr != "" {
		srv := web.New(cfg.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("http server error")
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Infof("http status server listening on %s", cfg.httpAddr)
	}

	log.WithFields(logrus.Fields{
		"pin":      line.Pin,
		"idle":     line.Idle,
		"interval": cfg.interval,
		"sentinel": cfg.sentinelPath,
		"poll":     cfg.poll,
		"backend":  cfg.backend,
	}).Info("started")

	// A single reusable timer drives the loop: armed to the poll interval,
	// or sooner when a toggle deadline lands between polls.
	timer := time.NewTimer(cfg.poll)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	wait := func(d time.Duration) <-chan time.Time {
		timer.Reset(d)
		return timer.C
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ctl := blink.NewController(line, cfg.interval)
	return watchLoop(ctl, port, cfg.sentinelPath, publisher, connStatus, tracker, log, cfg.poll, time.Now, wait, sigCh)
}

// preflightLock verifies the single-instance lock is free, then releases it
// for the detached child to take for the daemon lifetime.
func preflightLock(path string) error {
	lock := daemon.NewLock(path)
	if err := lock.Acquire(); err != nil {
		return err
	}
	return lock.Release()
}

// openPort claims the pin with the selected backend. With -restore-state the
// level the pin already carries is snapshotted before the pin is driven, and
// becomes the idle level in the returned line.
func openPort(cfg config, line blink.Line) (gpio.Port, blink.Line, error) {
	if cfg.restoreState {
		port, level, err := openPortKeepLevel(cfg, line.Pin)
		if err != nil {
			return nil, line, err
		}
		line.Idle = level
		line.Active = 1 - level
		return port, line, nil
	}

	switch cfg.backend {
	case gpio.BackendSysfs:
		port, err := gpio.NewSysfsPort(line.Pin)
		return port, line, err
	case gpio.BackendCdev:
		port, err := gpio.NewCdevPort(cfg.chip, line.Pin, line.Idle)
		return port, line, err
	case gpio.BackendPeriph:
		port, err := gpio.NewPeriphPort(line.Pin)
		return port, line, err
	default:
		return nil, line, fmt.Errorf("unknown gpio backend %q", cfg.backend)
	}
}

func openPortKeepLevel(cfg config, pin int) (gpio.Port, int, error) {
	switch cfg.backend {
	case gpio.BackendSysfs:
		return gpio.NewSysfsPortKeepLevel(pin)
	case gpio.BackendCdev:
		return gpio.NewCdevPortKeepLevel(cfg.chip, pin)
	case gpio.BackendPeriph:
		return gpio.NewPeriphPortKeepLevel(pin)
	default:
		return nil, 0, fmt.Errorf("unknown gpio backend %q", cfg.backend)
	}
}

// watchLoop drives the blink controller until a termination signal arrives.
// Each pass arms wait to the poll interval, shortened to the next toggle
// deadline while blinking, so half-periods that are not multiples of the
// poll interval still toggle on time. GPIO writes are strictly sequential on
// this goroutine; the worst-case latency to honor a signal or a vanished
// sentinel is one poll interval.
func watchLoop(ctl *blink.Controller, port gpio.Port, sentinelPath string, publisher mqtt.Publisher, connStatus mqtt.ConnectionStatus, tracker *status.Tracker, log *logrus.Logger, poll time.Duration, now func() time.Time, wait func(time.Duration) <-chan time.Time, sig <-chan os.Signal) error {
	delay := poll
	for {
		select {
		case s := <-sig:
			log.Infof("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}

			// Park at idle before announcing shutdown; the deferred cleanup
			// in run repeats the write, which is idempotent.
			if err := port.SetValue(ctl.Line().Idle); err != nil {
				log.WithError(err).Error("idle write on shutdown failed")
			}

			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				tracker.Update(blink.StateIdle, ctl.Interval(), ctl.Counts())
				tracker.SetMQTTConnected(connStatus.IsConnected())
				event.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.WithError(err).Error("failed to publish shutdown event")
			}
			return nil

		case <-wait(delay):
			t := now()
			present := sentinel.Exists(sentinelPath)

			// The interval override is read exactly once per Idle→Blinking
			// transition, never mid-episode. On error the active interval
			// stays (the CLI default on the first transition).
			if present && ctl.State() == blink.StateIdle {
				if d, err := sentinel.ReadInterval(sentinelPath); err == nil {
					if ctl.SetInterval(d) {
						log.Infof("blink interval set to %v from %s", d, sentinelPath)
					}
				} else {
					log.WithError(err).Debugf("keeping blink interval %v", ctl.Interval())
				}
			}

			writes, events := ctl.Process(blink.Input{SentinelPresent: present, Time: t})
			for _, level := range writes {
				if err := port.SetValue(level); err != nil {
					// Recoverable: the next scheduled write retries naturally.
					log.WithError(err).Error("gpio write failed")
				}
			}
			for _, e := range events {
				log.Infof("event: %s (interval=%v)", e.Type, e.Interval)
				if err := publisher.Publish(e); err != nil {
					log.WithError(err).Error("publish failed")
				}
			}

			if tracker != nil {
				tracker.Update(ctl.State(), ctl.Interval(), ctl.Counts())
				tracker.SetMQTTConnected(connStatus.IsConnected())
			}

			delay = poll
			if deadline, blinking := ctl.NextToggle(); blinking {
				if until := deadline.Sub(t); until < delay {
					delay = until
				}
				if delay < 0 {
					delay = 0
				}
			}
		}
	}
}
