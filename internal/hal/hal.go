// Package hal provides the hardware backends that apply light state.
package hal

import (
	"log/slog"

	"github.com/jmylchreest/lightsd/internal/config"
	"github.com/jmylchreest/lightsd/internal/errors"
	"github.com/jmylchreest/lightsd/pkg/lights"
)

// New returns the backend selected by cfg.Backend.
func New(cfg config.HardwareConfig, logger *slog.Logger) (lights.Hardware, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Backend {
	case "", config.HardwareBackendNoop:
		logger.Info("hal: using no-op hardware backend")
		return newNoop(logger), nil

	case config.HardwareBackendSysfs:
		root := cfg.SysfsRoot
		if root == "" {
			root = config.DefaultSysfsRoot
		}
		hw, err := newSysfs(root, cfg.LEDs, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("hal: using sysfs hardware backend", "root", root, "leds", len(hw.leds))
		return hw, nil

	default:
		return nil, errors.InvalidInputf("unknown hardware backend %q", cfg.Backend)
	}
}

// Luminance converts an ARGB color to a 0..255 brightness, ignoring alpha.
func Luminance(color uint32) int {
	r := (color >> 16) & 0xFF
	g := (color >> 8) & 0xFF
	b := color & 0xFF
	return int((77*r + 150*g + 29*b) >> 8)
}
