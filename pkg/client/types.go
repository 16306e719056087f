package client

import (
	"context"
	"encoding/json"
	"time"
)

// Light is a light as reported by the daemon.
type Light struct {
	ID       string `json:"id" yaml:"id"`
	Index    int    `json:"index" yaml:"index"`
	Color    uint32 `json:"color" yaml:"color"`
	ColorHex string `json:"color_hex" yaml:"color_hex"`
	Mode     string `json:"mode" yaml:"mode"`
	OnMS     uint32 `json:"on_ms" yaml:"on_ms"`
	OffMS    uint32 `json:"off_ms" yaml:"off_ms"`
	On       bool   `json:"on" yaml:"on"`
}

// PulseResult reports whether a pulse started and the light afterwards.
type PulseResult struct {
	Pulsed bool  `json:"pulsed" yaml:"pulsed"`
	Light  Light `json:"light" yaml:"light"`
}

// PulseOptions overrides the pulse defaults. Zero values keep the defaults.
type PulseOptions struct {
	Color string
	OnMS  *uint32
}

// Frame describes an encoded MCU brightness frame.
type Frame struct {
	Brightness int    `json:"brightness" yaml:"brightness"`
	Level      int    `json:"level" yaml:"level"`
	Checksum   int    `json:"checksum" yaml:"checksum"`
	Frame      string `json:"frame" yaml:"frame"`
}

// Health is the daemon status returned over the socket.
type Health struct {
	Health        string `json:"health" yaml:"health"`
	Version       string `json:"version" yaml:"version"`
	MCUForwarding bool   `json:"mcu_forwarding" yaml:"mcu_forwarding"`
	PendingPulses int    `json:"pending_pulses" yaml:"pending_pulses"`
}

// Event is one streamed daemon event.
type Event struct {
	Type      string          `json:"type" yaml:"type"`
	Timestamp time.Time       `json:"timestamp" yaml:"timestamp"`
	Data      json.RawMessage `json:"data" yaml:"-"`
}

// ClientInterface defines the methods for interacting with lightsd.
// Both the socket and the HTTP client implement it; the CLI mocks it.
type ClientInterface interface {
	Version() (string, error)
	ListLights() ([]Light, error)
	GetLight(id string) (Light, error)
	SetBrightness(id string, level int, mode string) (Light, error)
	SetColor(id, color string) (Light, error)
	SetFlashing(id, color, mode string, onMS, offMS uint32) (Light, error)
	Pulse(id string, opts PulseOptions) (PulseResult, error)
	TurnOff(id string) (Light, error)
	MCUFrame(brightness int) (Frame, error)
	GetLogLevel() (string, error)
	SetLogLevel(level string) (string, error)
	// Watch calls fn for each event until ctx is done or fn returns an error.
	Watch(ctx context.Context, types []string, fn func(Event) error) error
}
