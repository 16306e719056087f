package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jmylchreest/lightsd/internal/config"
	"github.com/jmylchreest/lightsd/internal/events"
	"github.com/jmylchreest/lightsd/internal/http/handlers"
	"github.com/jmylchreest/lightsd/internal/http/mw"
	"github.com/jmylchreest/lightsd/internal/http/routes"
	"github.com/jmylchreest/lightsd/internal/ws"
	"github.com/jmylchreest/lightsd/pkg/lights"
)

// Options carries the daemon components the server exposes.
type Options struct {
	Lights *lights.Service
	Bus    *events.Bus
	// Forwarding reports whether brightness frames reach the MCU.
	Forwarding bool
	Version    string
}

// Server exposes the light service over a unix socket and, optionally, HTTP.
type Server struct {
	logger       *slog.Logger
	cfg          *config.Config
	lights       *lights.Service
	eventBus     *events.Bus
	forwarding   bool
	version      string
	socketPath   string
	listener     net.Listener
	httpListener net.Listener
	httpServer   *http.Server
	shutdown     chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
	rootCtx      context.Context
	rootCancel   context.CancelFunc
}

// New creates a new server instance.
func New(logger *slog.Logger, cfg *config.Config, opts Options) *Server {
	bus := opts.Bus
	if bus == nil {
		bus = events.NewBus()
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}

	rootCtx, rootCancel := context.WithCancel(context.Background())

	return &Server{
		logger:     logger,
		cfg:        cfg,
		lights:     opts.Lights,
		eventBus:   bus,
		forwarding: opts.Forwarding,
		version:    version,
		socketPath: cfg.Server.UnixSocket,
		shutdown:   make(chan struct{}),
		rootCtx:    rootCtx,
		rootCancel: rootCancel,
	}
}

// Start listens on the unix socket and, when configured, the HTTP address.
func (s *Server) Start() error {
	s.logger.Info("Starting lightsd server", "version", s.version)

	sockDir := filepath.Dir(s.socketPath)
	if err := os.MkdirAll(sockDir, 0755); err != nil {
		return fmt.Errorf("failed to create socket directory %s: %w", sockDir, err)
	}

	// stale socket from a previous run
	if _, err := os.Stat(s.socketPath); err == nil {
		if err := os.Remove(s.socketPath); err != nil {
			return fmt.Errorf("failed to remove existing socket file %s: %w", s.socketPath, err)
		}
	}

	var err error
	s.listener, err = net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on socket %s: %w", s.socketPath, err)
	}
	s.logger.Info("Listening on Unix socket", "path", s.socketPath)

	s.wg.Go(s.acceptConnections)

	if s.cfg.API.ListenAddress != "" {
		if err := s.startHTTP(); err != nil {
			s.listener.Close()
			return err
		}
	}

	return nil
}

func (s *Server) startHTTP() error {
	ln, err := net.Listen("tcp", s.cfg.API.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.API.ListenAddress, err)
	}
	s.httpListener = ln
	s.logger.Info("Starting HTTP API server", "address", ln.Addr().String())

	hub := ws.NewHub(s.logger, s.eventBus)
	s.wg.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic in WebSocket hub", "recover", r)
			}
		}()
		hub.Run(s.rootCtx)
	})

	router := routes.NewRouter(s.logger, &routes.Handlers{
		HealthCheck:  (&handlers.HealthHandler{Pulses: s.lights, Forwarding: s.forwarding}).Check,
		VersionCheck: handlers.VersionCheck(s.version),
		Light:        &handlers.LightHandler{Lights: s.lights},
		MCU:          &handlers.MCUHandler{},
		Logging:      &handlers.LoggingHandler{Logger: s.logger},
	}, routes.RouterOptions{
		Version:     s.version,
		RateLimit:   mw.RateLimitConfig{RequestsPerMinute: s.cfg.API.RateLimit},
		EventStream: ws.Handler(hub, s.logger),
	})

	s.httpServer = &http.Server{
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	s.wg.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic in HTTP server goroutine", "recover", r)
			}
		}()
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", "error", err)
		}
		s.logger.Info("HTTP server stopped")
	})
	return nil
}

// HTTPAddr returns the bound HTTP address, or "" when the API is disabled.
func (s *Server) HTTPAddr() string {
	if s.httpListener == nil {
		return ""
	}
	return s.httpListener.Addr().String()
}

// Stop shuts the server down and waits for its goroutines. Safe to call twice.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Shutting down lightsd server")
		s.rootCancel()
		close(s.shutdown)

		if s.listener != nil {
			s.listener.Close()
		}

		if s.httpServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.httpServer.Shutdown(ctx); err != nil {
				s.logger.Error("HTTP server shutdown failed", "error", err)
			}
		}

		s.wg.Wait()
		os.Remove(s.socketPath)
		s.logger.Info("lightsd server shut down gracefully")
	})
}

func (s *Server) acceptConnections() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic in acceptConnections", "recover", r)
		}
	}()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				s.logger.Debug("Socket listener shutting down")
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Error("Failed to accept connection", "error", err)
			continue
		}
		s.wg.Go(func() { s.handleConnection(conn) })
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic in connection handler", "recover", r)
		}
	}()

	ctx, cancel := context.WithCancel(s.rootCtx)
	defer cancel()

	go func() {
		select {
		case <-s.shutdown:
			if uc, ok := conn.(*net.UnixConn); ok {
				uc.CloseRead()
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	reader := bufio.NewReader(conn)

	for {
		if ctx.Err() != nil {
			return
		}

		line, err := reader.ReadBytes('\n')
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				s.logger.Debug("Client disconnected")
			} else {
				s.logger.Error("Failed to read from connection", "error", err)
			}
			return
		}
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var req map[string]any
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("Failed to unmarshal request", "error", err, "request", string(line))
			s.sendError(conn, "", fmt.Sprintf("invalid JSON request: %s", err))
			continue
		}

		action, _ := req["action"].(string)
		id, _ := req["id"].(string)
		data, _ := req["data"].(map[string]any)

		s.logger.Debug("Received request", "action", action, "id", id, "data", data)

		if action == "watch" {
			s.watch(ctx, conn, reader, id, data)
			return
		}
		s.dispatch(conn, action, id, data)
	}
}

func (s *Server) sendResponse(conn net.Conn, id string, data map[string]any) {
	response := map[string]any{"status": "ok"}
	if id != "" {
		response["id"] = id
	}
	maps.Copy(response, data)
	if err := json.NewEncoder(conn).Encode(response); err != nil {
		s.logger.Error("Failed to send response", "error", err)
	}
}

func (s *Server) sendError(conn net.Conn, id string, message string) {
	s.logger.Debug("Sending error response to client", "id", id, "message", message)
	response := map[string]any{"error": message}
	if id != "" {
		response["id"] = id
	}
	if err := json.NewEncoder(conn).Encode(response); err != nil {
		s.logger.Error("Failed to send error response", "error", err)
	}
}
