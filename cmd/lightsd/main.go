package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/lightsd/internal/config"
	"github.com/jmylchreest/lightsd/internal/events"
	"github.com/jmylchreest/lightsd/internal/hal"
	"github.com/jmylchreest/lightsd/internal/mcu"
	"github.com/jmylchreest/lightsd/internal/server"
	"github.com/jmylchreest/lightsd/internal/utils"
	"github.com/jmylchreest/lightsd/pkg/lights"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// flagKeys maps config keys onto the daemon's command line flags.
var flagKeys = map[string]string{
	"logging.level":      "log-level",
	"logging.format":     "log-format",
	"server.unix_socket": "socket",
	"api.listen_address": "listen",
	"hardware.backend":   "hardware",
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("lightsd", pflag.ContinueOnError)
	fs.String("config", "", "Path to config file")
	fs.String("log-level", config.LogLevelInfo, "Log level (debug, info, warn, error)")
	fs.String("log-format", config.LogFormatText, "Log format (text, json, journal)")
	fs.String("socket", "", "Unix socket path")
	fs.String("listen", "", "HTTP API listen address (empty disables the API)")
	fs.String("hardware", config.HardwareBackendNoop, "Hardware backend (noop, sysfs)")
	fs.Bool("no-mcu", false, "Do not forward brightness frames to the MCU")
	fs.Bool("version", false, "Print version and exit")
	return fs
}

// loadConfig reads the config file named by --config and applies set flags.
func loadConfig(fs *pflag.FlagSet) (*config.Config, error) {
	path, _ := fs.GetString("config")
	cfg, err := config.Load(config.DaemonConfigFilename, path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyFlags(fs, flagKeys); err != nil {
		return nil, err
	}
	if noMCU, _ := fs.GetBool("no-mcu"); noMCU {
		cfg.MCU.Enabled = false
	}
	return cfg, nil
}

func main() {
	fs := newFlagSet()
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}
	if v, _ := fs.GetBool("version"); v {
		fmt.Printf("lightsd %s (commit %s, built %s)\n", version, commit, buildDate)
		return
	}

	cfg, err := loadConfig(fs)
	if err != nil {
		utils.SetupErrorLogger().Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := utils.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)
	utils.SetAsDefaultLogger(logger)

	logger.Info("Starting lightsd",
		"version", version,
		"commit", commit,
		"buildDate", buildDate,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, cfg, nil); err != nil {
		logger.Error("lightsd exited with error", "error", err)
		stop()
		os.Exit(1)
	}
}

// run wires the daemon together and blocks until ctx is cancelled. ready,
// when set, receives the running server once it is accepting requests.
func run(ctx context.Context, logger *slog.Logger, cfg *config.Config, ready func(*server.Server)) error {
	hw, err := hal.New(cfg.Hardware, logger)
	if err != nil {
		return fmt.Errorf("hardware backend: %w", err)
	}

	bus := events.NewBus()

	// link stays a nil interface when forwarding is off
	var link lights.Forwarder
	forwarding := false
	if cfg.MCU.Enabled {
		ch, err := mcu.Open(ctx, mcu.OptionsFromConfig(cfg.MCU), logger)
		switch {
		case err == nil:
			defer ch.Close()
			link = ch
			forwarding = true
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			logger.Warn("mcu: running without brightness forwarding", "error", err)
		}
	} else {
		logger.Info("mcu: brightness forwarding disabled by configuration")
	}

	svc := lights.NewService(lights.Options{
		Hardware: hw,
		Link:     link,
		Bus:      bus,
		Logger:   logger,
	})
	defer svc.Close()

	srv := server.New(logger, cfg, server.Options{
		Lights:     svc,
		Bus:        bus,
		Forwarding: forwarding,
		Version:    version,
	})
	if err := srv.Start(); err != nil {
		return err
	}
	defer srv.Stop()

	if err := cfg.Watch(ctx, logger, config.DefaultWatchDebounce, func(fresh *config.Config) {
		utils.SetLevel(fresh.Logging.Level)
		logger.Info("config: log level applied", "level", utils.LevelToString(utils.GetLevel()))
	}); err != nil {
		logger.Warn("config: hot reload disabled", "path", cfg.Path(), "error", err)
	}

	if ready != nil {
		ready(srv)
	}
	notify(logger, daemon.SdNotifyReady)

	<-ctx.Done()
	logger.Info("Shutting down...")
	notify(logger, daemon.SdNotifyStopping)
	return nil
}

// notify reports state to systemd; a no-op outside a Type=notify unit.
func notify(logger *slog.Logger, state string) {
	if sent, err := daemon.SdNotify(false, state); err != nil {
		logger.Warn("systemd: notify failed", "state", state, "error", err)
	} else if sent {
		logger.Debug("systemd: notified", "state", state)
	}
}
