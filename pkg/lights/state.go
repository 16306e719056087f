package lights

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jmylchreest/lightsd/internal/config"
	"github.com/jmylchreest/lightsd/internal/errors"
)

// Pulse defaults
const (
	DefaultPulseColor uint32 = 0x00FFFFFF
	DefaultPulseOnMS  uint32 = 7
	// PulseOffMS is the hardware off period programmed for every pulse
	PulseOffMS uint32 = 1000
)

// State is what a light last pushed to hardware. Two equal states never
// produce two hardware updates in a row.
type State struct {
	Color uint32    `json:"color"`
	Mode  FlashMode `json:"mode"`
	OnMS  uint32    `json:"on_ms"`
	OffMS uint32    `json:"off_ms"`
}

// Off reports whether the light is dark.
func (s State) Off() bool {
	return s.Color == 0
}

func (s State) String() string {
	return fmt.Sprintf("color=%s mode=%s on=%dms off=%dms", ColorHex(s.Color), s.Mode, s.OnMS, s.OffMS)
}

// GrayColor is the opaque gray ARGB value for a brightness level.
func GrayColor(level int) uint32 {
	l := uint32(ClampBrightness(level))
	return 0xFF000000 | l<<16 | l<<8 | l
}

// ClampBrightness limits a level to 0..255.
func ClampBrightness(level int) int {
	if level < config.MinBrightness {
		return config.MinBrightness
	}
	if level > config.MaxBrightness {
		return config.MaxBrightness
	}
	return level
}

// ColorHex renders an ARGB color as #AARRGGBB.
func ColorHex(c uint32) string {
	return fmt.Sprintf("#%08X", c)
}

// ParseColor accepts #RRGGBB (opaque), #AARRGGBB, 0x-prefixed hex or a
// decimal ARGB value.
func ParseColor(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "#"):
		hex := s[1:]
		if len(hex) != 6 && len(hex) != 8 {
			return 0, errors.InvalidInputf("invalid color %q: want #RRGGBB or #AARRGGBB", s)
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return 0, errors.InvalidInputf("invalid color %q", s)
		}
		if len(hex) == 6 {
			v |= 0xFF000000
		}
		return uint32(v), nil
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		v, err := strconv.ParseUint(s[2:], 16, 32)
		if err != nil {
			return 0, errors.InvalidInputf("invalid color %q", s)
		}
		return uint32(v), nil
	default:
		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return 0, errors.InvalidInputf("invalid color %q", s)
		}
		return uint32(v), nil
	}
}
