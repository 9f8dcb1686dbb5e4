// Package server exposes a running corridor to browser viewers over
// websocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/zeusync/corridor/internal/core/events/bus"
	"github.com/zeusync/corridor/internal/core/observability/log"
)

type Config struct {
	Addr            string
	ClientBuffer    int
	ShutdownTimeout time.Duration
}

func DefaultServerConfig() Config {
	return Config{
		Addr:            "127.0.0.1:8089",
		ClientBuffer:    64,
		ShutdownTimeout: 5 * time.Second,
	}
}

// Server serves the viewer feed on /ws and a health probe on /healthz.
type Server struct {
	config   Config
	feed     *Feed
	events   bus.EventBus
	observer *deliveryObserver
	http     *http.Server
	listener net.Listener
	logger   log.Log

	running atomic.Bool
	closed  atomic.Bool
	done    chan struct{}
}

func NewServer(config Config, events bus.EventBus, logger log.Log) (*Server, error) {
	if config.Addr == "" || config.ClientBuffer <= 0 {
		return nil, fmt.Errorf("%w: addr %q, client buffer %d", ErrInvalidConfig, config.Addr, config.ClientBuffer)
	}
	if events == nil {
		return nil, fmt.Errorf("%w: event bus is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = log.NewNop()
	}
	logger = logger.With(log.String("component", "server"))

	feed, err := NewFeed(events, config.ClientBuffer, logger)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:   config,
		feed:     feed,
		events:   events,
		observer: &deliveryObserver{logger: logger},
		logger:   logger,
	}
	events.AddObserver(s.observer)
	s.http = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", s.feed)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	m := s.events.GetMetrics()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"viewers": s.feed.Clients(),
		"sent":    s.feed.Sent(),
		"dropped": s.feed.Dropped(),
		"events": map[string]uint64{
			"published":   m.Published,
			"delivered":   m.DeliveredHandlers,
			"errors":      m.Errors,
			"subscribers": m.SubscribersActive,
		},
	})
}

// deliveryObserver enables bus metrics for /healthz and logs failing
// handlers.
type deliveryObserver struct {
	logger log.Log
}

func (o *deliveryObserver) OnPublish(string, bus.Event) {}

func (o *deliveryObserver) OnDelivered(eventType string, handlers int, err error, durationMicros int64) {
	if err != nil {
		o.logger.Warn("Event delivery failed",
			log.String("event", eventType),
			log.Int("handlers", handlers),
			log.Int64("micros", durationMicros),
			log.Error(err))
	}
}

// Close releases the feed's bus subscription and observer. Stop calls it;
// call it directly for a server that was never started.
func (s *Server) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.events.RemoveObserver(s.observer)
	return s.feed.Close()
}

func (s *Server) Feed() *Feed {
	return s.feed
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start(_ context.Context) error {
	if s.closed.Load() {
		return ErrServerClosed
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}

	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		s.running.Store(false)
		s.logger.Error("Failed to create listener", log.Error(err))
		return fmt.Errorf("%w: %w", ErrListenerFailed, err)
	}
	s.listener = listener
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		if err := s.http.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Viewer server stopped", log.Error(err))
		}
	}()

	s.logger.Info("Server listening", log.String("addr", listener.Addr().String()))
	return nil
}

// Addr is the bound listen address, useful when configured with port 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.config.Addr
	}
	return s.listener.Addr().String()
}

// Stop disconnects viewers and shuts the HTTP server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return ErrServerNotRunning
	}
	s.logger.Info("Stopping server")

	if s.config.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()
	}

	err := errors.Join(s.Close(), s.http.Shutdown(ctx))
	<-s.done
	s.logger.Info("Server stopped")
	return err
}
