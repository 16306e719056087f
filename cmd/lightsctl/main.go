package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmylchreest/lightsd/cmd/lightsctl/commands"
	"github.com/jmylchreest/lightsd/internal/config"
	"github.com/jmylchreest/lightsd/internal/utils"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	// A missing client config file falls back to defaults
	cfg, err := config.Load(config.ClientConfigFilename, "")
	if err != nil {
		logger := utils.SetupErrorLogger()
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := utils.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)
	utils.SetAsDefaultLogger(logger)

	rootCmd := commands.NewRootCommand(logger, version, commit, buildDate, cfg.Server.UnixSocket)

	// Keep the logger NewRootCommand stored and cancel watches on interrupt
	ctx := rootCmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
