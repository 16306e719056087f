// Package lights implements the per-light state machine: deduplicated
// transitions pushed to a hardware backend, brightness forwarding to the MCU
// and pulse auto-off scheduling.
package lights

import (
	"strconv"
	"strings"

	"github.com/jmylchreest/lightsd/internal/errors"
)

// ID identifies one logical light.
type ID int

const (
	Backlight ID = iota
	Keyboard
	Buttons
	Battery
	Notifications
	Attention
	Bluetooth
	Wifi
	Caps
	Func
	Music

	// Count is the number of logical lights
	Count = int(Music) + 1
)

var idNames = [Count]string{
	"backlight",
	"keyboard",
	"buttons",
	"battery",
	"notifications",
	"attention",
	"bluetooth",
	"wifi",
	"caps",
	"func",
	"music",
}

// Valid reports whether id is one of the known lights.
func (id ID) Valid() bool {
	return id >= 0 && int(id) < Count
}

func (id ID) String() string {
	if !id.Valid() {
		return "light(" + strconv.Itoa(int(id)) + ")"
	}
	return idNames[id]
}

// MarshalText encodes the light name.
func (id ID) MarshalText() ([]byte, error) {
	if !id.Valid() {
		return nil, errors.InvalidInputf("invalid light id %d", int(id))
	}
	return []byte(idNames[id]), nil
}

// UnmarshalText accepts a light name or index.
func (id *ID) UnmarshalText(b []byte) error {
	v, err := ParseID(string(b))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

// ParseID accepts a light name (case-insensitive) or its decimal index.
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if id := ID(n); id.Valid() {
			return id, nil
		}
		return 0, errors.NotFoundf("light %d not found", n)
	}
	for i, name := range idNames {
		if strings.EqualFold(s, name) {
			return ID(i), nil
		}
	}
	return 0, errors.NotFoundf("light %q not found", s)
}

// AllIDs returns every light id in index order.
func AllIDs() []ID {
	ids := make([]ID, Count)
	for i := range Count {
		ids[i] = ID(i)
	}
	return ids
}

// FlashMode selects how the hardware flashes a light.
type FlashMode uint8

const (
	FlashNone     FlashMode = 0
	FlashTimed    FlashMode = 1
	FlashHardware FlashMode = 2
)

var flashModeNames = [...]string{"none", "timed", "hardware"}

func (m FlashMode) String() string {
	if int(m) < len(flashModeNames) {
		return flashModeNames[m]
	}
	return "flash(" + strconv.Itoa(int(m)) + ")"
}

func (m FlashMode) MarshalText() ([]byte, error) {
	if int(m) >= len(flashModeNames) {
		return nil, errors.InvalidInputf("invalid flash mode %d", m)
	}
	return []byte(flashModeNames[m]), nil
}

func (m *FlashMode) UnmarshalText(b []byte) error {
	v, err := ParseFlashMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParseFlashMode accepts none, timed, hardware or 0..2.
func ParseFlashMode(s string) (FlashMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range flashModeNames {
		if s == name || s == strconv.Itoa(i) {
			return FlashMode(i), nil
		}
	}
	return 0, errors.InvalidInputf("invalid flash mode %q", s)
}

// BrightnessMode says where a brightness request came from. Only user
// requests are forwarded to the MCU.
type BrightnessMode uint8

const (
	BrightnessUser   BrightnessMode = 0
	BrightnessSensor BrightnessMode = 1
)

func (m BrightnessMode) String() string {
	switch m {
	case BrightnessUser:
		return "user"
	case BrightnessSensor:
		return "sensor"
	default:
		return "brightness(" + strconv.Itoa(int(m)) + ")"
	}
}

func (m BrightnessMode) MarshalText() ([]byte, error) {
	if m > BrightnessSensor {
		return nil, errors.InvalidInputf("invalid brightness mode %d", m)
	}
	return []byte(m.String()), nil
}

func (m *BrightnessMode) UnmarshalText(b []byte) error {
	v, err := ParseBrightnessMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParseBrightnessMode accepts user, sensor, 0 or 1. Empty means user.
func ParseBrightnessMode(s string) (BrightnessMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "user", "0":
		return BrightnessUser, nil
	case "sensor", "1":
		return BrightnessSensor, nil
	default:
		return 0, errors.InvalidInputf("invalid brightness mode %q", s)
	}
}

// Hardware applies a light's final state to the device.
type Hardware interface {
	SetLight(id ID, color uint32, mode FlashMode, onMS, offMS uint32, bm BrightnessMode) error
}

// Forwarder delivers raw frames to the MCU without blocking.
type Forwarder interface {
	Send(frame []byte)
}
