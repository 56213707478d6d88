package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"snct-watcher/internal/catalog"
	"snct-watcher/internal/dispatcher"
)

// Config holds HTTP server settings.
type Config struct {
	BindAddress string
	Port        int
	AllowOrigin string // empty means any origin may open the subscribe stream
}

// Server serves the REST and WebSocket APIs.
type Server struct {
	cfg        Config
	catalog    *catalog.Catalog
	dispatcher *dispatcher.Dispatcher
	logger     *slog.Logger
	loc        *time.Location

	httpServer *http.Server
	upgrader   websocket.Upgrader

	// Open subscribe streams, closed on shutdown.
	connMu sync.Mutex
	conns  map[*websocket.Conn]struct{}
}

// New creates a Server. REST date parameters are interpreted in loc.
func New(cfg Config, cat *catalog.Catalog, disp *dispatcher.Dispatcher, loc *time.Location, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	s := &Server{
		cfg:        cfg,
		catalog:    cat,
		dispatcher: disp,
		logger:     logger,
		loc:        loc,
		conns:      make(map[*websocket.Conn]struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Handler builds the route tree. Exposed separately so tests can drive the
// server through httptest.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/sites", s.handleSites)
	r.Get("/vehicles/types", s.handleVehicleTypes)
	r.Get("/appointments/{user_type}/{control_type}/{vehicle_type}/{organism}/{site}/{start_date}/{end_date}", s.handleAppointments)
	r.Get("/ws/appointments", s.handleSubscribe)

	return r
}

// Start begins serving in the background.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.BindAddress, s.cfg.Port),
		Handler: s.Handler(),
	}

	go func() {
		s.logger.Info("http server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", "err", err)
		}
	}()

	return nil
}

// Stop closes every open subscribe stream, then shuts the listener down.
// Closing a stream makes its read loop exit, which unregisters the
// subscription; the unregister is idempotent against a racing client
// close.
func (s *Server) Stop(ctx context.Context) error {
	s.connMu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.connMu.Unlock()

	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}

func (s *Server) trackConn(conn *websocket.Conn) {
	s.connMu.Lock()
	s.conns[conn] = struct{}{}
	s.connMu.Unlock()
}

func (s *Server) untrackConn(conn *websocket.Conn) {
	s.connMu.Lock()
	delete(s.conns, conn)
	s.connMu.Unlock()
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if s.cfg.AllowOrigin == "" {
		return true
	}
	return r.Header.Get("Origin") == s.cfg.AllowOrigin
}
