package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// HTTPClient talks to the lightsd HTTP API.
type HTTPClient struct {
	logger  *slog.Logger
	baseURL string
	client  *http.Client
	dialer  *websocket.Dialer
}

// NewHTTP creates a new HTTP client for baseURL, e.g. http://127.0.0.1:9124.
func NewHTTP(logger *slog.Logger, baseURL string) *HTTPClient {
	return &HTTPClient{
		logger:  logger,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		dialer:  websocket.DefaultDialer,
	}
}

// problem is the error body the API returns.
type problem struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

func (c *HTTPClient) request(method, path string, body any, resp any) error {
	u := c.baseURL + path
	c.logger.Debug("HTTP request", "method", method, "url", u)

	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, u, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpResp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		var p problem
		if json.Unmarshal(respBody, &p) == nil && p.Detail != "" {
			return fmt.Errorf("HTTP error %d: %s", httpResp.StatusCode, p.Detail)
		}
		return fmt.Errorf("HTTP error %d: %s", httpResp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if resp != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, resp); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func lightPath(id string, parts ...string) string {
	p := "/api/v1/lights/" + url.PathEscape(id)
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

// Version returns the running daemon's version.
func (c *HTTPClient) Version() (string, error) {
	var resp struct {
		Version string `json:"version"`
	}
	err := c.request(http.MethodGet, "/api/v1/version", nil, &resp)
	return resp.Version, err
}

// ListLights returns every light in index order.
func (c *HTTPClient) ListLights() ([]Light, error) {
	var resp []Light
	if err := c.request(http.MethodGet, "/api/v1/lights", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetLight returns one light by name or index.
func (c *HTTPClient) GetLight(id string) (Light, error) {
	var l Light
	err := c.request(http.MethodGet, lightPath(id), nil, &l)
	return l, err
}

// SetBrightness sets an opaque gray level.
func (c *HTTPClient) SetBrightness(id string, level int, mode string) (Light, error) {
	body := map[string]any{"brightness": level}
	if mode != "" {
		body["mode"] = mode
	}
	var l Light
	err := c.request(http.MethodPut, lightPath(id, "brightness"), body, &l)
	return l, err
}

// SetColor sets a steady color.
func (c *HTTPClient) SetColor(id, color string) (Light, error) {
	var l Light
	err := c.request(http.MethodPut, lightPath(id, "color"), map[string]any{"color": color}, &l)
	return l, err
}

// SetFlashing sets a flashing color.
func (c *HTTPClient) SetFlashing(id, color, mode string, onMS, offMS uint32) (Light, error) {
	body := map[string]any{"color": color, "mode": mode, "on_ms": onMS, "off_ms": offMS}
	var l Light
	err := c.request(http.MethodPut, lightPath(id, "flashing"), body, &l)
	return l, err
}

// Pulse pulses a light that is currently off.
func (c *HTTPClient) Pulse(id string, opts PulseOptions) (PulseResult, error) {
	// no body means daemon defaults
	var body any
	if opts.Color != "" || opts.OnMS != nil {
		fields := map[string]any{}
		if opts.Color != "" {
			fields["color"] = opts.Color
		}
		if opts.OnMS != nil {
			fields["on_ms"] = *opts.OnMS
		}
		body = fields
	}
	var res PulseResult
	err := c.request(http.MethodPost, lightPath(id, "pulse"), body, &res)
	return res, err
}

// TurnOff switches a light off.
func (c *HTTPClient) TurnOff(id string) (Light, error) {
	var l Light
	err := c.request(http.MethodPost, lightPath(id, "off"), nil, &l)
	return l, err
}

// MCUFrame returns the frame the daemon would send for a brightness.
func (c *HTTPClient) MCUFrame(brightness int) (Frame, error) {
	var f Frame
	err := c.request(http.MethodGet, "/api/v1/mcu/frame?brightness="+strconv.Itoa(brightness), nil, &f)
	return f, err
}

// GetLogLevel returns the daemon's log level.
func (c *HTTPClient) GetLogLevel() (string, error) {
	var resp struct {
		Level string `json:"level"`
	}
	err := c.request(http.MethodGet, "/api/v1/logging/level", nil, &resp)
	return resp.Level, err
}

// SetLogLevel changes the daemon's log level.
func (c *HTTPClient) SetLogLevel(level string) (string, error) {
	var resp struct {
		Level string `json:"level"`
	}
	err := c.request(http.MethodPut, "/api/v1/logging/level", map[string]any{"level": level}, &resp)
	return resp.Level, err
}

// eventStreamURL maps the base URL onto the WebSocket endpoint.
func (c *HTTPClient) eventStreamURL(types []string) (string, error) {
	u, err := url.Parse(c.baseURL + "/api/v1/ws")
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", c.baseURL, err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	if len(types) > 0 {
		u.RawQuery = url.Values{"types": {strings.Join(types, ",")}}.Encode()
	}
	return u.String(), nil
}

// Watch streams events from the WebSocket endpoint.
func (c *HTTPClient) Watch(ctx context.Context, types []string, fn func(Event) error) error {
	u, err := c.eventStreamURL(types)
	if err != nil {
		return err
	}
	c.logger.Debug("Opening event stream", "url", u)

	conn, resp, err := c.dialer.DialContext(ctx, u, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("event stream rejected with HTTP %d: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("failed to open event stream: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("event stream ended: %w", err)
		}
		var e Event
		if err := json.Unmarshal(msg, &e); err != nil {
			c.logger.Warn("Skipping malformed event", "error", err)
			continue
		}
		if err := fn(e); err != nil {
			return err
		}
	}
}

var _ ClientInterface = (*HTTPClient)(nil)
