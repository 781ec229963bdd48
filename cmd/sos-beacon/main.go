// Command sos-beacon plays SOS or OK on two GPIO indicators, toggled by
// button presses, and publishes playback events to MQTT.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/sweeney/sos-beacon/internal/config"
	"github.com/sweeney/sos-beacon/internal/gpio"
	"github.com/sweeney/sos-beacon/internal/logging"
	"github.com/sweeney/sos-beacon/internal/logic"
	"github.com/sweeney/sos-beacon/internal/mqtt"
	"github.com/sweeney/sos-beacon/internal/status"
	"github.com/sweeney/sos-beacon/internal/timer"
	"github.com/sweeney/sos-beacon/internal/web"
)

// edgeBuffer is how many button presses may queue between ticks.
const edgeBuffer = 16

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log := logging.Logger()
		log.Fatal().Err(err).Msg("sos-beacon")
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:           "sos-beacon",
		Short:         "Signal SOS or OK on two indicator lamps",
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, &cfg, cfgPath); err != nil {
				return err
			}
			return run(cfg)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.sos-beacon/config.toml)")
	root.Flags().StringVar(&cfg.Chip, "chip", cfg.Chip, "GPIO chip name")
	root.Flags().IntVar(&cfg.PinDot, "pin-dot", cfg.PinDot, "BCM pin for the dot indicator")
	root.Flags().IntVar(&cfg.PinDash, "pin-dash", cfg.PinDash, "BCM pin for the dash indicator")
	root.Flags().IntSliceVar(&cfg.PinButtons, "pin-buttons", cfg.PinButtons, "BCM pins for the toggle buttons (one or two)")
	root.Flags().BoolVar(&cfg.ActiveLow, "active-low", cfg.ActiveLow, "indicators are lit when the line is low")
	root.Flags().DurationVar(&cfg.Debounce, "debounce", cfg.Debounce, "kernel debounce period for buttons (0 disables)")
	root.Flags().StringVar(&cfg.InitialMode, "mode", cfg.InitialMode, "message played first (SOS or OK)")
	root.Flags().StringVar(&cfg.Broker, "broker", cfg.Broker, "MQTT broker address (empty to disable)")
	root.Flags().StringVar(&cfg.ClientID, "client-id", cfg.ClientID, "MQTT client ID")
	root.Flags().IntVar(&cfg.BufferSize, "buffer-size", cfg.BufferSize, "messages kept while the broker is unreachable")
	root.Flags().DurationVar(&cfg.Heartbeat, "heartbeat", cfg.Heartbeat, "heartbeat interval (0 to disable)")
	root.Flags().StringVar(&cfg.HTTPAddr, "http", cfg.HTTPAddr, "HTTP status address (empty to disable)")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	root.AddCommand(newSimulateCmd(), newTableCmd())
	return root
}

// loadConfig layers the config file, then SOS_BEACON_* variables, under any
// flags given on the command line, and validates the result.
func loadConfig(cmd *cobra.Command, cfg *config.Config, cfgPath string) error {
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	cfgFile := cfgPath
	if cfgFile == "" {
		cfgFile = config.DefaultConfigPath()
	}
	if cfgFile != "" && (cfgPath != "" || config.FileExists(cfgFile)) {
		fc, err := config.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := config.ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	}

	if err := config.ApplyEnvConfig(cfg, changed); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}

func run(cfg config.Config) error {
	log := logging.Logger()

	indicators, err := gpio.NewRealIndicators(cfg.Chip, cfg.PinDot, cfg.PinDash, cfg.ActiveLow)
	if err != nil {
		return fmt.Errorf("init indicators: %w", err)
	}
	defer indicators.Close()

	ctrl := logic.NewController(indicators, cfg.Mode())

	edges := make(chan int, edgeBuffer)
	var dropped atomic.Int64
	buttons, err := gpio.NewRealButtons(cfg.Chip, cfg.PinButtons, cfg.Debounce, edgeSender(edges, &dropped))
	if err != nil {
		return fmt.Errorf("init buttons: %w", err)
	}
	defer buttons.Close()

	tm, err := timer.Open(timer.DefaultPeriod)
	if err != nil {
		return fmt.Errorf("open timer: %w", err)
	}
	defer tm.Stop()

	var broker mqtt.Publisher = mqtt.NopPublisher{}
	if cfg.Broker != "" {
		p, err := mqtt.NewRealPublisher(cfg.Broker, cfg.ClientID, cfg.BufferSize)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		broker = p
	}
	// Broker round trips happen on the publisher's goroutine, never on a tick.
	publisher := mqtt.NewAsyncPublisher(broker, mqtt.DefaultQueueSize)
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		PeriodMs:    tm.Period().Milliseconds(),
		HeartbeatMs: cfg.Heartbeat.Milliseconds(),
		Broker:      cfg.Broker,
		HTTPAddr:    cfg.HTTPAddr,
		PinDot:      cfg.PinDot,
		PinDash:     cfg.PinDash,
		PinButtons:  cfg.PinButtons,
	})
	tracker.SetMode(ctrl.Mode(), 0)
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}
	tracker.SetMQTTConnected(publisher.IsConnected())

	snap := tracker.Snapshot()
	startup := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startup); err != nil {
		log.Warn().Err(err).Msg("failed to queue startup event")
	} else {
		log.Info().Msg("queued startup event")
	}

	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("http server error")
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http status server listening")
	}

	if err := tm.Start(); err != nil {
		return fmt.Errorf("start timer: %w", err)
	}

	log.Info().
		Str("mode", ctrl.Mode().String()).
		Dur("period", tm.Period()).
		Ints("buttons", cfg.PinButtons).
		Str("broker", cfg.Broker).
		Dur("heartbeat", cfg.Heartbeat).
		Msg("started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	err = runLoop(ctrl, publisher, publisher, tracker, cfg.Heartbeat, time.Now, tm.C(), edges, sigCh)
	if n := dropped.Load(); n > 0 {
		log.Warn().Int64("count", n).Msg("button presses dropped while the loop was busy")
	}
	if n := indicators.WriteErrors(); n > 0 {
		log.Warn().Int64("count", n).Msg("indicator writes failed")
	}
	if n := publisher.Dropped(); n > 0 {
		log.Warn().Int64("count", n).Msg("mqtt messages dropped on a full queue")
	}
	return err
}

// edgeSender returns a button handler that queues presses for runLoop.
// It never blocks the GPIO event goroutine; a press that finds the queue
// full is counted and dropped.
func edgeSender(edges chan<- int, dropped *atomic.Int64) gpio.EdgeHandler {
	return func(pin int) {
		select {
		case edges <- pin:
		default:
			dropped.Add(1)
		}
	}
}

// runLoop is the only goroutine that ticks the controller. Button presses
// arrive on edges and are applied between ticks. publisher must not block;
// run hands it an AsyncPublisher.
func runLoop(ctrl *logic.Controller, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, edges <-chan int, sig <-chan os.Signal) error {
	log := logging.Logger()
	hb := logic.NewHeartbeat(now())
	var ticks uint64

	publish := func(event logic.Event) {
		log.Info().
			Str("event", string(event.Type)).
			Str("mode", event.Mode.String()).
			Str("active", event.Active.String()).
			Msg("event")
		if err := publisher.Publish(event); err != nil {
			// Don't crash on publish failure
			log.Warn().Err(err).Msg("publish error")
		}
	}

	refresh := func() {
		if tracker == nil {
			return
		}
		tracker.Update(playback(ctrl, ticks))
		if mqttStatus != nil {
			tracker.SetMQTTConnected(mqttStatus.IsConnected())
		}
		if b, ok := publisher.(mqtt.BufferStatus); ok {
			tracker.SetMQTTBuffered(b.Buffered())
		}
	}

	for {
		select {
		case s := <-sig:
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			log.Info().Str("signal", signalName).Msg("shutting down")

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
				log.Warn().Err(err).Msg("failed to queue shutdown event")
			} else {
				log.Info().Msg("queued shutdown event")
			}
			return nil

		case pin := <-edges:
			m := ctrl.Toggle()
			log.Debug().Int("pin", pin).Msg("button pressed")
			publish(logic.Event{
				Timestamp: now(),
				Type:      logic.EventModeChange,
				Mode:      m,
				Active:    ctrl.State().Active,
			})
			if tracker != nil {
				tracker.SetMode(m, ctrl.Counts().Toggles)
			}

		case <-tick:
			t := now()
			step := ctrl.Tick()
			ticks++

			switch step.Kind {
			case logic.StepStart:
				publish(logic.Event{Timestamp: t, Type: logic.EventMessageStart, Mode: step.Mode, Active: step.Mode})
			case logic.StepEnd:
				publish(logic.Event{Timestamp: t, Type: logic.EventMessageEnd, Mode: step.Mode, Active: step.Mode})
			}
			log.Trace().
				Str("step", string(step.Kind)).
				Str("unit", step.Unit.String()).
				Int("hold", step.Hold).
				Int("cursor", step.Cursor).
				Msg("tick")

			refresh()

			if hbData := hb.Check(t, heartbeat, ctrl.Counts()); hbData != nil {
				log.Info().
					Dur("uptime", hbData.Uptime).
					Int("sos_cycles", hbData.Counts.SOSCycles).
					Int("ok_cycles", hbData.Counts.OKCycles).
					Int("toggles", hbData.Counts.Toggles).
					Msg("heartbeat")

				hbEvent := mqtt.SystemEvent{
					Timestamp: hbData.Timestamp,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Warn().Err(err).Msg("heartbeat publish error")
				}
			}
		}
	}
}

// playback captures the controller state for the status tracker.
func playback(ctrl *logic.Controller, ticks uint64) status.Playback {
	st := ctrl.State()
	dot, dash := ctrl.Outputs()
	return status.Playback{
		Mode:      ctrl.Mode(),
		Active:    st.Active,
		Phase:     st.Phase,
		Cursor:    st.Cursor,
		HoldTicks: st.HoldTicks,
		Dot:       dot,
		Dash:      dash,
		Ticks:     ticks,
		Counts:    ctrl.Counts(),
	}
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
