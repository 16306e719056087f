package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/lightsd/pkg/client"
)

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// mockClient implements client.ClientInterface for CLI tests
type mockClient struct {
	lights []client.Light
	level  string
	events []client.Event
	err    error

	calls []string
}

var _ client.ClientInterface = (*mockClient)(nil)

func newMockClient() *mockClient {
	return &mockClient{
		lights: []client.Light{
			{ID: "backlight", Index: 0, Color: 0xFF808080, ColorHex: "#FF808080", Mode: "none", On: true},
			{ID: "wifi", Index: 7, Color: 0xFF00FF00, ColorHex: "#FF00FF00", Mode: "timed", OnMS: 500, OffMS: 250, On: true},
			{ID: "music", Index: 10, ColorHex: "#00000000", Mode: "none"},
		},
		level: "info",
	}
}

func (m *mockClient) record(format string, args ...any) {
	m.calls = append(m.calls, fmt.Sprintf(format, args...))
}

func (m *mockClient) find(id string) (client.Light, error) {
	for _, l := range m.lights {
		if l.ID == id {
			return l, nil
		}
	}
	return client.Light{}, errors.New("server error: unknown light " + id)
}

func (m *mockClient) Version() (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "1.2.3", nil
}

func (m *mockClient) ListLights() ([]client.Light, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.lights, nil
}

func (m *mockClient) GetLight(id string) (client.Light, error) {
	if m.err != nil {
		return client.Light{}, m.err
	}
	return m.find(id)
}

func (m *mockClient) SetBrightness(id string, level int, mode string) (client.Light, error) {
	m.record("brightness %s %d %s", id, level, mode)
	l, err := m.find(id)
	l.ColorHex = fmt.Sprintf("#FF%02X%02X%02X", level, level, level)
	l.On = level > 0
	return l, err
}

func (m *mockClient) SetColor(id, color string) (client.Light, error) {
	m.record("color %s %s", id, color)
	l, err := m.find(id)
	l.ColorHex = color
	return l, err
}

func (m *mockClient) SetFlashing(id, color, mode string, onMS, offMS uint32) (client.Light, error) {
	m.record("flash %s %s %s %d %d", id, color, mode, onMS, offMS)
	l, err := m.find(id)
	l.ColorHex, l.Mode, l.OnMS, l.OffMS = color, mode, onMS, offMS
	return l, err
}

func (m *mockClient) Pulse(id string, opts client.PulseOptions) (client.PulseResult, error) {
	onMS := "default"
	if opts.OnMS != nil {
		onMS = fmt.Sprint(*opts.OnMS)
	}
	m.record("pulse %s %q %s", id, opts.Color, onMS)
	l, err := m.find(id)
	if err != nil {
		return client.PulseResult{}, err
	}
	return client.PulseResult{Pulsed: !l.On, Light: l}, nil
}

func (m *mockClient) TurnOff(id string) (client.Light, error) {
	m.record("off %s", id)
	l, err := m.find(id)
	l.On, l.ColorHex, l.Mode = false, "#00000000", "none"
	return l, err
}

func (m *mockClient) MCUFrame(brightness int) (client.Frame, error) {
	m.record("frame %d", brightness)
	return client.Frame{Brightness: 128, Level: 16, Checksum: 254, Frame: "AA0449A110FE55"}, nil
}

func (m *mockClient) GetLogLevel() (string, error) {
	return m.level, nil
}

func (m *mockClient) SetLogLevel(level string) (string, error) {
	m.record("level %s", level)
	m.level = level
	return level, nil
}

func (m *mockClient) Watch(ctx context.Context, types []string, fn func(client.Event) error) error {
	m.record("watch %v", types)
	for _, e := range m.events {
		if err := fn(e); err != nil {
			return err
		}
	}
	// behave like a stream that ends when the user interrupts
	return context.Canceled
}

func testEvent(t *testing.T, typ string, data any) client.Event {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return client.Event{
		Type:      typ,
		Timestamp: time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC),
		Data:      raw,
	}
}

// executeCommand runs the root command with mock injected and returns the
// output with ANSI codes stripped.
func executeCommand(t *testing.T, mock client.ClientInterface, args ...string) (string, error) {
	t.Helper()

	oldPrintColor := pterm.PrintColor
	pterm.PrintColor = false
	t.Cleanup(func() { pterm.PrintColor = oldPrintColor })

	cmd := NewRootCommand(nil, "0.1.0", "abc123", "2026-01-01", "/nonexistent.sock")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	ctx := context.WithValue(context.Background(), ClientContextKey, mock)
	err := cmd.ExecuteContext(ctx)
	return ansiRegex.ReplaceAllString(out.String(), ""), err
}
