// Package client talks to a running lightsd over its unix socket or HTTP API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jmylchreest/lightsd/internal/config"
)

var dial = net.Dial

// DefaultTimeout bounds a single socket request.
const DefaultTimeout = 10 * time.Second

// Client is a unix socket connection to lightsd. Every request uses its own
// connection.
type Client struct {
	logger  *slog.Logger
	socket  string
	timeout time.Duration
}

// New creates a new client. An empty socket uses the runtime default.
func New(logger *slog.Logger, socket string) *Client {
	if socket == "" {
		socket = config.GetRuntimeSocketPath()
		logger.Debug("Using default socket", "socket", socket)
	} else {
		logger.Debug("Using provided socket path", "socket", socket)
	}

	return &Client{
		logger:  logger,
		socket:  socket,
		timeout: DefaultTimeout,
	}
}

type envelope struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

func newRequest(action string, data map[string]any) map[string]any {
	req := map[string]any{
		"action": action,
		"id":     uuid.NewString(),
	}
	if data != nil {
		req["data"] = data
	}
	return req
}

func (c *Client) connect() (net.Conn, error) {
	c.logger.Debug("Connecting to socket", "socket", c.socket)
	conn, err := dial("unix", c.socket)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to socket %s: %w", c.socket, err)
	}
	return conn, nil
}

// exchange writes req and decodes one response line into resp.
func (c *Client) exchange(conn net.Conn, dec *json.Decoder, req map[string]any, resp any) error {
	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	c.logger.Debug("Received response", "response", string(raw))

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if env.Error != "" {
		return fmt.Errorf("server error: %s", env.Error)
	}
	if id, _ := req["id"].(string); env.ID != id {
		return fmt.Errorf("response id %q does not match request %q", env.ID, id)
	}
	if resp != nil {
		if err := json.Unmarshal(raw, resp); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) request(action string, data map[string]any, resp any) error {
	conn, err := c.connect()
	if err != nil {
		return err
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(c.timeout))

	return c.exchange(conn, json.NewDecoder(conn), newRequest(action, data), resp)
}

func (c *Client) lightRequest(action string, data map[string]any) (Light, error) {
	var resp struct {
		Light Light `json:"light"`
	}
	if err := c.request(action, data, &resp); err != nil {
		return Light{}, err
	}
	return resp.Light, nil
}

// Ping checks that the daemon answers.
func (c *Client) Ping() error {
	return c.request("ping", nil, nil)
}

// Health returns the daemon status.
func (c *Client) Health() (Health, error) {
	var h Health
	err := c.request("health", nil, &h)
	return h, err
}

// Version returns the daemon version.
func (c *Client) Version() (string, error) {
	h, err := c.Health()
	return h.Version, err
}

// ListLights returns every light in index order.
func (c *Client) ListLights() ([]Light, error) {
	var resp struct {
		Lights []Light `json:"lights"`
	}
	if err := c.request("list_lights", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Lights, nil
}

// GetLight returns one light by name or index.
func (c *Client) GetLight(id string) (Light, error) {
	return c.lightRequest("get_light", map[string]any{"id": id})
}

// SetBrightness sets an opaque gray level. mode is "user" or "sensor".
func (c *Client) SetBrightness(id string, level int, mode string) (Light, error) {
	data := map[string]any{"id": id, "brightness": level}
	if mode != "" {
		data["mode"] = mode
	}
	return c.lightRequest("set_brightness", data)
}

// SetColor sets a steady color.
func (c *Client) SetColor(id, color string) (Light, error) {
	return c.lightRequest("set_color", map[string]any{"id": id, "color": color})
}

// SetFlashing sets a flashing color.
func (c *Client) SetFlashing(id, color, mode string, onMS, offMS uint32) (Light, error) {
	return c.lightRequest("set_flashing", map[string]any{
		"id":     id,
		"color":  color,
		"mode":   mode,
		"on_ms":  onMS,
		"off_ms": offMS,
	})
}

// Pulse pulses a light that is currently off.
func (c *Client) Pulse(id string, opts PulseOptions) (PulseResult, error) {
	data := map[string]any{"id": id}
	if opts.Color != "" {
		data["color"] = opts.Color
	}
	if opts.OnMS != nil {
		data["on_ms"] = *opts.OnMS
	}
	var res PulseResult
	err := c.request("pulse", data, &res)
	return res, err
}

// TurnOff switches a light off.
func (c *Client) TurnOff(id string) (Light, error) {
	return c.lightRequest("turn_off", map[string]any{"id": id})
}

// MCUFrame returns the frame the daemon would send for a brightness.
func (c *Client) MCUFrame(brightness int) (Frame, error) {
	var resp struct {
		Frame Frame `json:"frame"`
	}
	err := c.request("mcu_frame", map[string]any{"brightness": brightness}, &resp)
	return resp.Frame, err
}

// GetLogLevel returns the daemon's log level.
func (c *Client) GetLogLevel() (string, error) {
	var resp struct {
		Level string `json:"level"`
	}
	err := c.request("get_level", nil, &resp)
	return resp.Level, err
}

// SetLogLevel changes the daemon's log level.
func (c *Client) SetLogLevel(level string) (string, error) {
	var resp struct {
		Level string `json:"level"`
	}
	err := c.request("set_level", map[string]any{"level": level}, &resp)
	return resp.Level, err
}

// Watch streams events over a dedicated connection.
func (c *Client) Watch(ctx context.Context, types []string, fn func(Event) error) error {
	conn, err := c.connect()
	if err != nil {
		return err
	}
	defer conn.Close()

	var data map[string]any
	if len(types) > 0 {
		data = map[string]any{"types": strings.Join(types, ",")}
	}

	dec := json.NewDecoder(conn)
	conn.SetDeadline(time.Now().Add(c.timeout))
	if err := c.exchange(conn, dec, newRequest("watch", data), nil); err != nil {
		return err
	}
	conn.SetDeadline(time.Time{})

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		var msg struct {
			Event Event `json:"event"`
		}
		if err := dec.Decode(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("event stream ended: %w", err)
		}
		if err := fn(msg.Event); err != nil {
			return err
		}
	}
}

var _ ClientInterface = (*Client)(nil)
