package hal

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/jmylchreest/lightsd/internal/errors"
	"github.com/jmylchreest/lightsd/pkg/lights"
)

const (
	triggerNone  = "none"
	triggerTimer = "timer"

	defaultMaxBrightness = 255
)

// sysfs drives Linux LED class devices (/sys/class/leds/<name>).
type sysfs struct {
	root   string
	leds   map[lights.ID]string // light -> sysfs LED name
	mu     sync.Mutex
	logger *slog.Logger
}

// newSysfs maps light names (or indexes) from config onto LED directories.
func newSysfs(root string, leds map[string]string, logger *slog.Logger) (*sysfs, error) {
	s := &sysfs{
		root:   root,
		leds:   make(map[lights.ID]string, len(leds)),
		logger: logger,
	}
	for name, dev := range leds {
		id, err := lights.ParseID(name)
		if err != nil {
			return nil, errors.InvalidInputf("hardware.leds: %v", err)
		}
		s.leds[id] = dev
	}
	return s, nil
}

// SetLight writes brightness scaled to max_brightness. Flashing modes with
// both periods set use the timer trigger; everything else is steady.
func (s *sysfs) SetLight(id lights.ID, color uint32, mode lights.FlashMode, onMS, offMS uint32, _ lights.BrightnessMode) error {
	dev, ok := s.leds[id]
	if !ok {
		s.logger.Debug("hal: light has no LED on this board", "light", id.String())
		return nil
	}

	dir := filepath.Join(s.root, dev)
	if _, err := os.Stat(dir); err != nil {
		return errors.DeviceUnavailablef("LED %q for %s: %v", dev, id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	level := scale(Luminance(color), s.maxBrightness(dir))
	flashing := mode != lights.FlashNone && onMS > 0 && offMS > 0 && level > 0

	// writing brightness resets any trigger, so it goes first
	if err := writeAttr(dir, "brightness", strconv.Itoa(level)); err != nil {
		return err
	}
	if !flashing {
		return writeAttr(dir, "trigger", triggerNone)
	}

	if err := writeAttr(dir, "trigger", triggerTimer); err != nil {
		return err
	}
	if err := writeAttr(dir, "delay_on", strconv.FormatUint(uint64(onMS), 10)); err != nil {
		return err
	}
	return writeAttr(dir, "delay_off", strconv.FormatUint(uint64(offMS), 10))
}

func (s *sysfs) maxBrightness(dir string) int {
	data, err := os.ReadFile(filepath.Join(dir, "max_brightness"))
	if err != nil {
		return defaultMaxBrightness
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || n <= 0 {
		s.logger.Debug("hal: unreadable max_brightness, assuming 255", "dir", dir)
		return defaultMaxBrightness
	}
	return n
}

// scale maps 0..255 onto 0..max, keeping any non-zero level lit.
func scale(level, maxBrightness int) int {
	if level <= 0 {
		return 0
	}
	v := level * maxBrightness / 255
	if v == 0 {
		v = 1
	}
	return v
}

func writeAttr(dir, attr, value string) error {
	if err := os.WriteFile(filepath.Join(dir, attr), []byte(value), 0644); err != nil {
		return errors.DeviceUnavailablef("write %s: %v", filepath.Join(dir, attr), err)
	}
	return nil
}
