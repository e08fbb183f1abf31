package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/lox/rpsplus/internal/game"
	"github.com/lox/rpsplus/internal/referee"
)

// Server exposes the referee over HTTP and WebSocket
type Server struct {
	addr        string
	referee     *referee.Service
	opponent    game.OpponentPolicy
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	logger      *log.Logger
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	router      chi.Router
	httpServer  *http.Server
}

// Option configures a Server
type Option func(*Server)

// WithOpponent sets the policy behind the opponent-action tool
func WithOpponent(policy game.OpponentPolicy) Option {
	return func(s *Server) { s.opponent = policy }
}

// NewServer creates a server hosting matches from svc
func NewServer(addr string, svc *referee.Service, logger *log.Logger, opts ...Option) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		addr:    addr,
		referee: svc,
		upgrader: websocket.Upgrader{
			// Play sessions carry no credentials, so any origin may connect.
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		logger:      logger.WithPrefix("server"),
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.opponent == nil {
		s.opponent = game.NewBiasedPolicy(game.ProcessRand)
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Get("/health", s.handleHealth)
	router.Get("/ws", s.handleWebSocket)
	s.newAPI(router)
	s.router = router

	return s
}

// Handler returns the HTTP handler for every route
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Stop is called. The idle-match sweeper runs alongside.
func (s *Server) Start() error {
	go func() {
		if err := s.referee.Run(s.ctx); err != nil {
			s.logger.Error("Idle sweeper stopped", "error", err)
		}
	}()

	s.mu.Lock()
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	s.logger.Info("Starting server", "addr", s.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	return nil
}

// Stop closes every connection and shuts the listener down
func (s *Server) Stop(ctx context.Context) error {
	s.cancel()

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close() // Ignore close errors during shutdown
	}
	srv := s.httpServer
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// ConnectionCount returns the number of open websocket sessions
func (s *Server) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

func (s *Server) addConnection(conn *Connection) {
	s.mu.Lock()
	s.connections[conn] = true
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client connected", "total", total)
}

func (s *Server) removeConnection(conn *Connection) {
	s.mu.Lock()
	if _, ok := s.connections[conn]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.connections, conn)
	total := len(s.connections)
	s.mu.Unlock()

	// A session's match is not reachable once its socket is gone.
	if id := conn.MatchID(); id != "" {
		s.logger.Debug("Dropping match of disconnected client", "match", id)
		_ = s.referee.Delete(id) // May already have expired
	}
	_ = conn.Close() // Ignore close errors during unregistration
	s.logger.Info("Client disconnected", "total", total)
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(s.ctx, conn, s.logger, s.referee)
	s.addConnection(client)
	client.Start()

	go func() {
		<-client.Done()
		s.removeConnection(client)
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK") // Ignore write errors for health check
}
