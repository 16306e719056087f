package server

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jmylchreest/lightsd/internal/utils"
	"github.com/jmylchreest/lightsd/pkg/lights"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lightOf(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	require.Nil(t, resp["error"], "unexpected error response")
	light, ok := resp["light"].(map[string]any)
	require.True(t, ok, "response has no light: %v", resp)
	return light
}

func TestSocketAction_Ping(t *testing.T) {
	env := newTestEnv(t, "")

	resp := socketRequest(t, env.socketPath, map[string]any{"action": "ping"})
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "pong", resp["message"])
	assert.NotContains(t, resp, "id")
}

func TestSocketAction_PingWithID(t *testing.T) {
	env := newTestEnv(t, "")

	resp := socketRequest(t, env.socketPath, map[string]any{"action": "ping", "id": "req-1"})
	assert.Equal(t, "req-1", resp["id"])
}

func TestSocketAction_Health(t *testing.T) {
	env := newTestEnv(t, "")

	resp := socketRequest(t, env.socketPath, map[string]any{"action": "health"})
	assert.Equal(t, "ok", resp["health"])
	assert.Equal(t, "test", resp["version"])
	assert.Equal(t, true, resp["mcu_forwarding"])
	assert.Equal(t, float64(0), resp["pending_pulses"])
}

func TestSocketAction_ListLights(t *testing.T) {
	env := newTestEnv(t, "")

	resp := socketRequest(t, env.socketPath, map[string]any{"action": "list_lights"})
	list, ok := resp["lights"].([]any)
	require.True(t, ok)
	require.Len(t, list, lights.Count)
	for i, raw := range list {
		l := raw.(map[string]any)
		assert.Equal(t, float64(i), l["index"])
		assert.Equal(t, lights.ID(i).String(), l["id"])
	}
}

func TestSocketAction_GetLight(t *testing.T) {
	env := newTestEnv(t, "")

	for _, id := range []any{"bluetooth", 6, "6"} {
		light := lightOf(t, socketRequest(t, env.socketPath, map[string]any{
			"action": "get_light",
			"data":   map[string]any{"id": id},
		}))
		assert.Equal(t, "bluetooth", light["id"])
		assert.Equal(t, false, light["on"])
	}
}

func TestSocketAction_GetLight_Errors(t *testing.T) {
	env := newTestEnv(t, "")

	tests := []struct {
		name string
		data map[string]any
		want string
	}{
		{"missing", map[string]any{}, "missing light id"},
		{"unknown", map[string]any{"id": "lamp"}, "lamp"},
		{"out of range", map[string]any{"id": 11}, "11"},
		{"fractional", map[string]any{"id": 1.5}, "not an integer"},
		{"wrong type", map[string]any{"id": true}, "name or an index"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := socketRequest(t, env.socketPath, map[string]any{"action": "get_light", "data": tt.data})
			require.NotNil(t, resp["error"])
			assert.Contains(t, resp["error"], tt.want)
		})
	}
}

func TestSocketAction_SetBrightness(t *testing.T) {
	env := newTestEnv(t, "")

	light := lightOf(t, socketRequest(t, env.socketPath, map[string]any{
		"action": "set_brightness",
		"data":   map[string]any{"id": "backlight", "brightness": 128},
	}))
	assert.Equal(t, "#FF808080", light["color_hex"])
	assert.Equal(t, 1, env.link.count())

	// sensor levels and full scale are not forwarded
	lightOf(t, socketRequest(t, env.socketPath, map[string]any{
		"action": "set_brightness",
		"data":   map[string]any{"id": "backlight", "brightness": 64, "mode": "sensor"},
	}))
	lightOf(t, socketRequest(t, env.socketPath, map[string]any{
		"action": "set_brightness",
		"data":   map[string]any{"id": "backlight", "brightness": 255},
	}))
	assert.Equal(t, 1, env.link.count())
}

func TestSocketAction_SetBrightness_Invalid(t *testing.T) {
	env := newTestEnv(t, "")

	for name, data := range map[string]map[string]any{
		"missing":   {"id": "backlight"},
		"too high":  {"id": "backlight", "brightness": 256},
		"negative":  {"id": "backlight", "brightness": -1},
		"bad mode":  {"id": "backlight", "brightness": 10, "mode": "ambient"},
		"not a num": {"id": "backlight", "brightness": "bright"},
	} {
		t.Run(name, func(t *testing.T) {
			resp := socketRequest(t, env.socketPath, map[string]any{"action": "set_brightness", "data": data})
			assert.NotNil(t, resp["error"])
		})
	}
	assert.Equal(t, 0, env.link.count())
}

func TestSocketAction_SetColor(t *testing.T) {
	env := newTestEnv(t, "")

	light := lightOf(t, socketRequest(t, env.socketPath, map[string]any{
		"action": "set_color",
		"data":   map[string]any{"id": "caps", "color": "#00FF00"},
	}))
	assert.Equal(t, "#FF00FF00", light["color_hex"])

	light = lightOf(t, socketRequest(t, env.socketPath, map[string]any{
		"action": "set_color",
		"data":   map[string]any{"id": "caps", "color": 0xFF0000FF},
	}))
	assert.Equal(t, "#FF0000FF", light["color_hex"])

	resp := socketRequest(t, env.socketPath, map[string]any{
		"action": "set_color",
		"data":   map[string]any{"id": "caps", "color": "blue"},
	})
	assert.NotNil(t, resp["error"])
}

func TestSocketAction_SetFlashing(t *testing.T) {
	env := newTestEnv(t, "")

	light := lightOf(t, socketRequest(t, env.socketPath, map[string]any{
		"action": "set_flashing",
		"data":   map[string]any{"id": "notifications", "color": "#FF0000", "mode": "timed", "on_ms": 500, "off_ms": 250},
	}))
	assert.Equal(t, "timed", light["mode"])
	assert.Equal(t, float64(500), light["on_ms"])
	assert.Equal(t, float64(250), light["off_ms"])

	resp := socketRequest(t, env.socketPath, map[string]any{
		"action": "set_flashing",
		"data":   map[string]any{"id": "notifications", "color": "#FF0000", "mode": "strobe"},
	})
	assert.NotNil(t, resp["error"])

	resp = socketRequest(t, env.socketPath, map[string]any{
		"action": "set_flashing",
		"data":   map[string]any{"id": "notifications", "color": "#FF0000", "mode": "timed", "on_ms": -5},
	})
	assert.NotNil(t, resp["error"])
}

func TestSocketAction_Pulse(t *testing.T) {
	env := newTestEnv(t, "")

	resp := socketRequest(t, env.socketPath, map[string]any{
		"action": "pulse",
		"data":   map[string]any{"id": "attention", "on_ms": 60000},
	})
	assert.Equal(t, true, resp["pulsed"])
	light := lightOf(t, resp)
	assert.Equal(t, "hardware", light["mode"])
	assert.Equal(t, "#00FFFFFF", light["color_hex"])
	assert.Equal(t, float64(lights.PulseOffMS), light["off_ms"])
	assert.Equal(t, 1, env.svc.PendingPulses())

	// already lit
	resp = socketRequest(t, env.socketPath, map[string]any{
		"action": "pulse",
		"data":   map[string]any{"id": "attention"},
	})
	assert.Equal(t, false, resp["pulsed"])
	assert.Equal(t, 1, env.svc.PendingPulses())
}

func TestSocketAction_PulseAutoOff(t *testing.T) {
	env := newTestEnv(t, "")

	resp := socketRequest(t, env.socketPath, map[string]any{
		"action": "pulse",
		"data":   map[string]any{"id": "music", "color": "#00FF00", "on_ms": 20},
	})
	require.Equal(t, true, resp["pulsed"])

	require.Eventually(t, func() bool {
		snap, err := env.svc.Snapshot(lights.Music)
		return err == nil && snap.State.Off()
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSocketAction_TurnOff(t *testing.T) {
	env := newTestEnv(t, "")

	lightOf(t, socketRequest(t, env.socketPath, map[string]any{
		"action": "set_color",
		"data":   map[string]any{"id": "keyboard", "color": "#FFFFFF"},
	}))
	light := lightOf(t, socketRequest(t, env.socketPath, map[string]any{
		"action": "turn_off",
		"data":   map[string]any{"id": "keyboard"},
	}))
	assert.Equal(t, false, light["on"])
	assert.Equal(t, "#00000000", light["color_hex"])
}

func TestSocketAction_MCUFrame(t *testing.T) {
	env := newTestEnv(t, "")

	resp := socketRequest(t, env.socketPath, map[string]any{
		"action": "mcu_frame",
		"data":   map[string]any{"brightness": 128},
	})
	frame, ok := resp["frame"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "AA0449A110FE55", frame["frame"])
	assert.Equal(t, float64(0x10), frame["level"])
	assert.Equal(t, 0, env.link.count(), "mcu_frame never sends")

	resp = socketRequest(t, env.socketPath, map[string]any{"action": "mcu_frame"})
	assert.NotNil(t, resp["error"])
}

func TestSocketAction_LogLevel(t *testing.T) {
	env := newTestEnv(t, "")
	orig := utils.LevelToString(utils.GetLevel())
	t.Cleanup(func() { utils.SetLevel(orig) })

	resp := socketRequest(t, env.socketPath, map[string]any{
		"action": "set_level",
		"data":   map[string]any{"level": "WARN"},
	})
	assert.Equal(t, "warn", resp["level"])

	resp = socketRequest(t, env.socketPath, map[string]any{"action": "get_level"})
	assert.Equal(t, "warn", resp["level"])

	resp = socketRequest(t, env.socketPath, map[string]any{
		"action": "set_level",
		"data":   map[string]any{"level": "verbose"},
	})
	assert.NotNil(t, resp["error"])
}

func TestSocketAction_UnknownAction(t *testing.T) {
	env := newTestEnv(t, "")

	resp := socketRequest(t, env.socketPath, map[string]any{"action": "dance", "id": "x"})
	assert.Equal(t, "unknown action: dance", resp["error"])
	assert.Equal(t, "x", resp["id"])
}

func TestSocketAction_InvalidJSON(t *testing.T) {
	env := newTestEnv(t, "")
	conn := dial(t, env.socketPath)
	dec := json.NewDecoder(conn)

	_, err := conn.Write([]byte("{not json\n"))
	require.NoError(t, err)
	var resp map[string]any
	require.NoError(t, dec.Decode(&resp))
	assert.Contains(t, resp["error"], "invalid JSON request")

	// the connection stays usable
	resp = roundTrip(t, conn, dec, map[string]any{"action": "ping"})
	assert.Equal(t, "pong", resp["message"])
}

func TestSocketAction_MultipleRequestsSameConnection(t *testing.T) {
	env := newTestEnv(t, "")
	conn := dial(t, env.socketPath)
	dec := json.NewDecoder(conn)

	for range 5 {
		resp := roundTrip(t, conn, dec, map[string]any{"action": "ping"})
		assert.Equal(t, "pong", resp["message"])
	}
}

func TestSocketAction_Watch(t *testing.T) {
	env := newTestEnv(t, "")
	conn := dial(t, env.socketPath)
	dec := json.NewDecoder(conn)

	ack := roundTrip(t, conn, dec, map[string]any{"action": "watch", "id": "w"})
	require.Equal(t, true, ack["watching"])
	assert.Equal(t, "w", ack["id"])

	l, err := env.svc.Light(lights.Wifi)
	require.NoError(t, err)
	l.SetColor(0xFF0000FF)

	var msg struct {
		Event struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		} `json:"event"`
	}
	require.NoError(t, dec.Decode(&msg))
	assert.Equal(t, "light.state_changed", msg.Event.Type)
	assert.Contains(t, string(msg.Event.Data), "wifi")
}

func TestSocketAction_WatchFiltered(t *testing.T) {
	env := newTestEnv(t, "")
	conn := dial(t, env.socketPath)
	dec := json.NewDecoder(conn)

	ack := roundTrip(t, conn, dec, map[string]any{
		"action": "watch",
		"data":   map[string]any{"types": []any{"light.pulsed"}},
	})
	require.Equal(t, true, ack["watching"])

	l, err := env.svc.Light(lights.Func)
	require.NoError(t, err)
	require.True(t, l.Pulse(0xFFFFFFFF, 60_000))

	var msg map[string]map[string]any
	require.NoError(t, dec.Decode(&msg))
	assert.Equal(t, "light.pulsed", msg["event"]["type"])
}

func TestSocketAction_WatchUnknownType(t *testing.T) {
	env := newTestEnv(t, "")

	resp := socketRequest(t, env.socketPath, map[string]any{
		"action": "watch",
		"data":   map[string]any{"types": "light.exploded"},
	})
	assert.NotNil(t, resp["error"])
	assert.Equal(t, 0, env.bus.Len())
}

func TestSocketAction_WatchUnsubscribesOnDisconnect(t *testing.T) {
	env := newTestEnv(t, "")
	conn := dial(t, env.socketPath)
	dec := json.NewDecoder(conn)

	roundTrip(t, conn, dec, map[string]any{"action": "watch"})
	require.Equal(t, 1, env.bus.Len())

	conn.Close()
	require.Eventually(t, func() bool { return env.bus.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}
