// Package server exposes a ledger over HTTP: session queries, Prometheus
// metrics, and websocket notifications whenever the ledger is reloaded.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/harun/loginstats/internal/audit"
	"github.com/harun/loginstats/internal/metrics"
	"github.com/harun/loginstats/pkg/ledger"
	"github.com/harun/loginstats/pkg/watcher"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const (
	writeTimeout      = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
)

// Loader builds a fresh ledger from the configured event source.
type Loader func(ctx context.Context) (*ledger.Ledger, error)

// Server is the HTTP query server
type Server struct {
	host         string
	port         int
	loader       Loader
	watchPath    string
	watchDelay   time.Duration
	schedule     string
	server       *http.Server
	listener     net.Listener
	upgrader     websocket.Upgrader
	ledger       *SharedLedger
	clients      *ClientRegistry
	broadcaster  *EventBroadcaster
	authHandler  *AuthHandler
	metrics      *metrics.Metrics
	audit        *audit.Logger
	logger       zerolog.Logger
	cron         *cron.Cron
	watcher      *watcher.FileWatcher
	reloadMu     sync.Mutex
	shutdownMu   sync.RWMutex
	shuttingDown bool
	serveDone    chan struct{}
}

// Config holds server configuration
type Config struct {
	Host         string
	Port         int
	SharedSecret string
	Loader       Loader

	// WatchPath, when set, reloads the ledger whenever the file changes.
	WatchPath     string
	WatchDebounce time.Duration

	// Schedule is a cron spec for periodic reloads, e.g. "@every 5m".
	Schedule string

	Metrics *metrics.Metrics
	Audit   *audit.Logger
	Logger  zerolog.Logger
}

// NewServer creates a new query server. The ledger is empty until Start or
// Reload is called.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port: %d", cfg.Port)
	}
	if cfg.Loader == nil {
		return nil, errors.New("ledger loader is required")
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewMetrics()
	}
	if cfg.Audit == nil {
		cfg.Audit = audit.Nop()
	}

	logger := cfg.Logger.With().Str("component", "server").Logger()
	clients := NewClientRegistry()

	s := &Server{
		host:        cfg.Host,
		port:        cfg.Port,
		loader:      cfg.Loader,
		watchPath:   cfg.WatchPath,
		watchDelay:  cfg.WatchDebounce,
		schedule:    cfg.Schedule,
		ledger:      NewSharedLedger(nil),
		clients:     clients,
		broadcaster: NewEventBroadcaster(clients, logger),
		authHandler: NewAuthHandler(cfg.SharedSecret),
		metrics:     cfg.Metrics,
		audit:       cfg.Audit,
		logger:      logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	return s, nil
}

// Handler returns the routed HTTP handler, wrapped in request middleware
func (s *Server) Handler() http.Handler {
	return s.withRequestContext(s.routes())
}

// Ledger returns the shared ledger being served
func (s *Server) Ledger() *SharedLedger {
	return s.ledger
}

// Addr returns the bound listen address once Start has succeeded
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start loads the ledger, begins reload triggers and serves HTTP in the
// background. It fails if the initial load fails.
func (s *Server) Start(ctx context.Context) error {
	if _, err := s.Reload(ctx, SourceStartup); err != nil {
		return err
	}

	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = ln

	if err := s.startScheduler(); err != nil {
		ln.Close()
		return err
	}
	if err := s.startWatcher(); err != nil {
		s.stopScheduler(ctx)
		ln.Close()
		return err
	}

	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	s.serveDone = make(chan struct{})

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("Starting query server")

	go func() {
		defer close(s.serveDone)
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("Query server error")
		}
	}()

	return nil
}

// Shutdown stops reload triggers, disconnects websocket clients and
// gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownMu.Lock()
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return nil
	}
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	s.logger.Info().Msg("Shutting down query server")

	if s.watcher != nil {
		if err := s.watcher.Stop(); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to stop file watcher")
		}
	}
	s.stopScheduler(ctx)

	s.broadcaster.Broadcast(EventMessage{Type: MessageShutdown})
	for _, client := range s.clients.Snapshot() {
		client.Conn.Close()
	}

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
		<-s.serveDone
	}

	s.logger.Info().Msg("Query server stopped")
	return nil
}

func (s *Server) isShuttingDown() bool {
	s.shutdownMu.RLock()
	defer s.shutdownMu.RUnlock()

	return s.shuttingDown
}

// ConnectedClients describes the open websocket connections.
func (s *Server) ConnectedClients() []ClientInfo {
	return s.clients.Infos()
}
