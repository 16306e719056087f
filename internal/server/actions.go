package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"maps"
	"math"
	"net"
	"strconv"
	"strings"

	"github.com/jmylchreest/lightsd/internal/config"
	"github.com/jmylchreest/lightsd/internal/errors"
	"github.com/jmylchreest/lightsd/internal/events"
	"github.com/jmylchreest/lightsd/internal/http/handlers"
	"github.com/jmylchreest/lightsd/internal/utils"
	"github.com/jmylchreest/lightsd/pkg/lights"
)

// watchBufferSize bounds the events queued for one slow watcher.
const watchBufferSize = 64

func (s *Server) dispatch(conn net.Conn, action, id string, data map[string]any) {
	switch action {
	case "ping":
		s.sendResponse(conn, id, map[string]any{"message": "pong"})

	case "health":
		s.sendResponse(conn, id, map[string]any{
			"health":         "ok",
			"version":        s.version,
			"mcu_forwarding": s.forwarding,
			"pending_pulses": s.lights.PendingPulses(),
		})

	case "list_lights":
		s.sendResponse(conn, id, map[string]any{"lights": handlers.LightsFromSnapshots(s.lights.Snapshots())})

	case "get_light":
		l, err := s.lightFromData(data)
		if err != nil {
			s.sendError(conn, id, err.Error())
			return
		}
		s.sendLight(conn, id, l, nil)

	case "set_brightness":
		l, err := s.lightFromData(data)
		if err != nil {
			s.sendError(conn, id, err.Error())
			return
		}
		level, ok, err := intFromData(data, "brightness")
		if err != nil {
			s.sendError(conn, id, err.Error())
			return
		}
		if !ok {
			s.sendError(conn, id, "missing brightness for set_brightness")
			return
		}
		if level < config.MinBrightness || level > config.MaxBrightness {
			s.sendError(conn, id, errors.InvalidInputf("brightness %d out of range %d-%d", level, config.MinBrightness, config.MaxBrightness).Error())
			return
		}
		mode, err := lights.ParseBrightnessMode(stringFromMap(data, "mode"))
		if err != nil {
			s.sendError(conn, id, err.Error())
			return
		}
		l.SetBrightness(level, mode)
		s.sendLight(conn, id, l, nil)

	case "set_color":
		l, err := s.lightFromData(data)
		if err != nil {
			s.sendError(conn, id, err.Error())
			return
		}
		color, ok, err := colorFromData(data, "color")
		if err != nil {
			s.sendError(conn, id, err.Error())
			return
		}
		if !ok {
			s.sendError(conn, id, "missing color for set_color")
			return
		}
		l.SetColor(color)
		s.sendLight(conn, id, l, nil)

	case "set_flashing":
		l, err := s.lightFromData(data)
		if err != nil {
			s.sendError(conn, id, err.Error())
			return
		}
		color, ok, err := colorFromData(data, "color")
		if err != nil {
			s.sendError(conn, id, err.Error())
			return
		}
		if !ok {
			s.sendError(conn, id, "missing color for set_flashing")
			return
		}
		mode, err := lights.ParseFlashMode(stringFromMap(data, "mode"))
		if err != nil {
			s.sendError(conn, id, err.Error())
			return
		}
		onMS, _, err := uint32FromData(data, "on_ms")
		if err != nil {
			s.sendError(conn, id, err.Error())
			return
		}
		offMS, _, err := uint32FromData(data, "off_ms")
		if err != nil {
			s.sendError(conn, id, err.Error())
			return
		}
		l.SetFlashing(color, mode, onMS, offMS)
		s.sendLight(conn, id, l, nil)

	case "pulse":
		l, err := s.lightFromData(data)
		if err != nil {
			s.sendError(conn, id, err.Error())
			return
		}
		color, ok, err := colorFromData(data, "color")
		if err != nil {
			s.sendError(conn, id, err.Error())
			return
		}
		if !ok {
			color = lights.DefaultPulseColor
		}
		onMS, ok, err := uint32FromData(data, "on_ms")
		if err != nil {
			s.sendError(conn, id, err.Error())
			return
		}
		if !ok {
			onMS = lights.DefaultPulseOnMS
		}
		pulsed := l.Pulse(color, onMS)
		s.sendLight(conn, id, l, map[string]any{"pulsed": pulsed})

	case "turn_off":
		l, err := s.lightFromData(data)
		if err != nil {
			s.sendError(conn, id, err.Error())
			return
		}
		l.TurnOff()
		s.sendLight(conn, id, l, nil)

	case "mcu_frame":
		level, ok, err := intFromData(data, "brightness")
		if err != nil {
			s.sendError(conn, id, err.Error())
			return
		}
		if !ok {
			s.sendError(conn, id, "missing brightness for mcu_frame")
			return
		}
		s.sendResponse(conn, id, map[string]any{"frame": handlers.FrameFromBrightness(level)})

	case "get_level":
		s.sendResponse(conn, id, map[string]any{"level": utils.LevelToString(utils.GetLevel())})

	case "set_level":
		level := strings.ToLower(stringFromMap(data, "level"))
		if level == "" {
			s.sendError(conn, id, "missing level for set_level")
			return
		}
		if utils.ValidateLogLevel(level) != level {
			s.sendError(conn, id, errors.InvalidInputf("invalid log level %q; must be debug, info, warn, or error", level).Error())
			return
		}
		utils.SetLevel(level)
		s.logger.Info("Log level changed via socket", "level", level)
		s.sendResponse(conn, id, map[string]any{"level": level})

	default:
		s.logger.Warn("received unknown action", "action", action)
		s.sendError(conn, id, "unknown action: "+action)
	}
}

// watch turns the connection into an event stream. It returns when the
// client disconnects, a write fails or the server shuts down.
func (s *Server) watch(ctx context.Context, conn net.Conn, reader *bufio.Reader, id string, data map[string]any) {
	types, err := watchTypes(data["types"])
	if err != nil {
		s.sendError(conn, id, err.Error())
		return
	}

	queue := make(chan events.Event, watchBufferSize)
	unsub := s.eventBus.Subscribe(func(e events.Event) {
		// runs under the publishing light's lock
		select {
		case queue <- e:
		default:
			s.logger.Debug("watch: queue full, dropping event", "type", e.Type)
		}
	}, types...)
	defer unsub()

	s.sendResponse(conn, id, map[string]any{"watching": true})

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		io.Copy(io.Discard, reader)
	}()

	enc := json.NewEncoder(conn)
	for {
		select {
		case <-ctx.Done():
			return
		case <-gone:
			s.logger.Debug("watch: client disconnected")
			return
		case e := <-queue:
			if err := enc.Encode(map[string]any{"event": e}); err != nil {
				s.logger.Debug("watch: write failed", "error", err)
				return
			}
		}
	}
}

func (s *Server) sendLight(conn net.Conn, id string, l *lights.Light, extra map[string]any) {
	snap, err := s.lights.Snapshot(l.ID())
	if err != nil {
		s.sendError(conn, id, err.Error())
		return
	}
	resp := map[string]any{"light": handlers.LightFromSnapshot(snap)}
	maps.Copy(resp, extra)
	s.sendResponse(conn, id, resp)
}

// lightFromData resolves data["id"], given as a name or an index.
func (s *Server) lightFromData(data map[string]any) (*lights.Light, error) {
	var id lights.ID
	var err error
	switch v := data["id"].(type) {
	case string:
		if v == "" {
			return nil, errors.InvalidInputf("missing light id")
		}
		id, err = lights.ParseID(v)
	case float64:
		if v != math.Trunc(v) {
			return nil, errors.InvalidInputf("light index %v is not an integer", v)
		}
		id, err = lights.ParseID(strconv.Itoa(int(v)))
	case nil:
		return nil, errors.InvalidInputf("missing light id")
	default:
		return nil, errors.InvalidInputf("light id must be a name or an index")
	}
	if err != nil {
		return nil, err
	}
	return s.lights.Light(id)
}

// intFromData reports whether key was present and its integer value.
func intFromData(data map[string]any, key string) (int, bool, error) {
	raw, ok := data[key]
	if !ok || raw == nil {
		return 0, false, nil
	}
	v, ok := raw.(float64)
	if !ok || v != math.Trunc(v) {
		return 0, true, errors.InvalidInputf("%s must be an integer", key)
	}
	return int(v), true, nil
}

func uint32FromData(data map[string]any, key string) (uint32, bool, error) {
	v, ok, err := intFromData(data, key)
	if err != nil || !ok {
		return 0, ok, err
	}
	if v < 0 || int64(v) > math.MaxUint32 {
		return 0, true, errors.InvalidInputf("%s %d out of range", key, v)
	}
	return uint32(v), true, nil
}

// colorFromData accepts a color string ("#RRGGBB", "#AARRGGBB", "0x...") or a number.
func colorFromData(data map[string]any, key string) (uint32, bool, error) {
	switch v := data[key].(type) {
	case nil:
		return 0, false, nil
	case string:
		c, err := lights.ParseColor(v)
		return c, true, err
	case float64:
		if v < 0 || v > math.MaxUint32 || v != math.Trunc(v) {
			return 0, true, errors.InvalidInputf("%s %v is not a 32-bit color", key, v)
		}
		return uint32(v), true, nil
	default:
		return 0, true, errors.InvalidInputf("%s must be a string or a number", key)
	}
}

// watchTypes accepts a comma separated string or a list of event type names.
func watchTypes(raw any) ([]events.EventType, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return events.ParseTypes(v)
	case []any:
		names := make([]string, 0, len(v))
		for _, item := range v {
			name, ok := item.(string)
			if !ok {
				return nil, errors.InvalidInputf("event types must be strings")
			}
			names = append(names, name)
		}
		return events.ParseTypes(strings.Join(names, ","))
	default:
		return nil, errors.InvalidInputf("types must be a string or a list")
	}
}

func stringFromMap(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}
