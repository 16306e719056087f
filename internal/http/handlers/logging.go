package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/lightsd/internal/utils"
)

// GetLevelInput is the input for reading the global log level.
type GetLevelInput struct{}

// LevelOutput reports the global log level.
type LevelOutput struct {
	Body struct {
		Level string `json:"level" doc:"Current global log level"`
	}
}

// SetLevelInput is the input for changing the global log level.
type SetLevelInput struct {
	Body struct {
		Level string `json:"level" doc:"New log level (debug, info, warn, error)" minLength:"1"`
	}
}

// LoggingHandler implements logging management HTTP handlers.
type LoggingHandler struct {
	Logger *slog.Logger
}

// GetLevel returns the current global log level.
func (h *LoggingHandler) GetLevel(_ context.Context, _ *GetLevelInput) (*LevelOutput, error) {
	out := &LevelOutput{}
	out.Body.Level = utils.LevelToString(utils.GetLevel())
	return out, nil
}

// SetLevel changes the global log level. Names are case-insensitive, as on
// the socket.
func (h *LoggingHandler) SetLevel(_ context.Context, input *SetLevelInput) (*LevelOutput, error) {
	level := strings.ToLower(strings.TrimSpace(input.Body.Level))
	if utils.ValidateLogLevel(level) != level {
		return nil, huma.Error400BadRequest(
			fmt.Sprintf("invalid log level %q; must be debug, info, warn, or error", input.Body.Level))
	}

	utils.SetLevel(level)
	h.logger().Info("Log level changed via API", "level", level)

	out := &LevelOutput{}
	out.Body.Level = level
	return out, nil
}

func (h *LoggingHandler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

var _ LoggingHandlers = (*LoggingHandler)(nil)

// LoggingHandlers defines the interface for logging management operations.
type LoggingHandlers interface {
	GetLevel(ctx context.Context, input *GetLevelInput) (*LevelOutput, error)
	SetLevel(ctx context.Context, input *SetLevelInput) (*LevelOutput, error)
}
