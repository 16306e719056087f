package lights

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/lightsd/internal/config"
	"github.com/jmylchreest/lightsd/internal/events"
	"github.com/jmylchreest/lightsd/internal/mcu"
	"github.com/jmylchreest/lightsd/internal/metrics"
)

// StateChange is the payload of a light.state_changed event.
type StateChange struct {
	Light          ID             `json:"light"`
	State          State          `json:"state"`
	BrightnessMode BrightnessMode `json:"brightness_mode"`
}

// PulseStarted is the payload of a light.pulsed event.
type PulseStarted struct {
	Light ID     `json:"light"`
	Color uint32 `json:"color"`
	OnMS  uint32 `json:"on_ms"`
}

// FrameForwarded is the payload of an mcu.frame_forwarded event.
type FrameForwarded struct {
	Light      ID     `json:"light"`
	Brightness int    `json:"brightness"`
	Frame      string `json:"frame"`
}

// Light is the controller for one logical light. All operations on the same
// light are serialized by its mutex; different lights never block each other.
type Light struct {
	id ID

	mu    sync.Mutex
	state State

	hw     Hardware
	link   Forwarder
	sched  *Scheduler
	bus    *events.Bus
	logger *slog.Logger
}

func newLight(id ID, hw Hardware, link Forwarder, sched *Scheduler, bus *events.Bus, logger *slog.Logger) *Light {
	return &Light{
		id:     id,
		hw:     hw,
		link:   link,
		sched:  sched,
		bus:    bus,
		logger: logger.With("light", id.String()),
	}
}

// ID returns the light's identifier.
func (l *Light) ID() ID {
	return l.id
}

// State returns a copy of the current state.
func (l *Light) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// SetBrightness sets an opaque gray of the given level (clamped to 0..255).
// Intermediate user levels are also forwarded to the MCU; full off and full
// on are left to the hardware alone.
func (l *Light) SetBrightness(level int, mode BrightnessMode) {
	level = ClampBrightness(level)

	l.mu.Lock()
	defer l.mu.Unlock()

	if mode == BrightnessUser && level != config.MinBrightness && level != config.MaxBrightness {
		l.forward(level)
	}
	l.transition(State{Color: GrayColor(level)}, mode)
}

// SetColor sets a steady color.
func (l *Light) SetColor(color uint32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.transition(State{Color: color}, BrightnessUser)
}

// SetFlashing sets a color with the given flash mode and timings.
func (l *Light) SetFlashing(color uint32, mode FlashMode, onMS, offMS uint32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.transition(State{Color: color, Mode: mode, OnMS: onMS, OffMS: offMS}, BrightnessUser)
}

// Pulse flashes the light once in hardware mode and schedules TurnOff after
// onMS. It only acts when the light is currently off and reports whether it
// did.
//
// The scheduled TurnOff always fires, even if the light was changed by
// someone else in the meantime.
func (l *Light) Pulse(color, onMS uint32) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.state.Off() {
		l.logger.Debug("light: pulse ignored, light is on", "color", ColorHex(l.state.Color))
		return false
	}

	l.transition(State{Color: color, Mode: FlashHardware, OnMS: onMS, OffMS: PulseOffMS}, BrightnessUser)
	if !l.sched.Schedule(time.Duration(onMS)*time.Millisecond, l.TurnOff) {
		l.logger.Warn("light: scheduler stopped, pulse will not auto-off")
	}

	metrics.RecordPulse(l.id.String())
	l.bus.Publish(events.NewEvent(events.LightPulsed, PulseStarted{Light: l.id, Color: color, OnMS: onMS}))
	return true
}

// PulseDefault pulses white for the default on period.
func (l *Light) PulseDefault() bool {
	return l.Pulse(DefaultPulseColor, DefaultPulseOnMS)
}

// TurnOff switches the light off and clears any flashing.
func (l *Light) TurnOff() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.transition(State{}, BrightnessUser)
}

// transition must be called with l.mu held.
func (l *Light) transition(next State, bm BrightnessMode) {
	name := l.id.String()
	if next == l.state {
		metrics.RecordSuppressedUpdate(name)
		l.logger.Debug("light: state unchanged, skipping hardware update", "state", next.String())
		return
	}

	l.state = next
	if err := l.hw.SetLight(l.id, next.Color, next.Mode, next.OnMS, next.OffMS, bm); err != nil {
		metrics.RecordHardwareError(name)
		l.logger.Warn("light: hardware update failed", "state", next.String(), "error", err)
	} else {
		metrics.RecordHardwareUpdate(name)
		l.logger.Debug("light: state applied", "state", next.String(), "brightness_mode", bm.String())
	}

	l.bus.Publish(events.NewEvent(events.LightStateChanged, StateChange{Light: l.id, State: next, BrightnessMode: bm}))
}

// forward sends the brightness frame to the MCU. Must be called with l.mu held.
func (l *Light) forward(level int) {
	if l.link == nil {
		l.logger.Debug("light: no MCU link, brightness not forwarded", "brightness", level)
		return
	}
	frame := mcu.Encode(level)
	l.link.Send(frame.Bytes())
	l.bus.Publish(events.NewEvent(events.FrameForwarded, FrameForwarded{Light: l.id, Brightness: level, Frame: frame.String()}))
}
