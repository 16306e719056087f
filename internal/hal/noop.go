package hal

import (
	"log/slog"

	"github.com/jmylchreest/lightsd/pkg/lights"
)

// noop logs light updates on systems without controllable LEDs
type noop struct {
	logger *slog.Logger
}

func newNoop(logger *slog.Logger) *noop {
	return &noop{logger: logger}
}

func (n *noop) SetLight(id lights.ID, color uint32, mode lights.FlashMode, onMS, offMS uint32, bm lights.BrightnessMode) error {
	n.logger.Debug("hal: light update (no-op)",
		"light", id.String(),
		"color", lights.ColorHex(color),
		"mode", mode.String(),
		"on_ms", onMS,
		"off_ms", offMS,
		"brightness_mode", bm.String())
	return nil
}
