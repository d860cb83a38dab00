package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/harun/loginstats/internal/metrics"
	"github.com/harun/loginstats/internal/shell"
	"github.com/harun/loginstats/internal/tracing"
	"github.com/harun/loginstats/pkg/ledger"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.opentelemetry.io/otel/codes"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.HandleFunc("GET /v1/users", s.handleUsers)
	mux.HandleFunc("GET /v1/users/{user}/first", s.handleQuery(shell.OpFirst))
	mux.HandleFunc("GET /v1/users/{user}/last", s.handleQuery(shell.OpLast))
	mux.HandleFunc("GET /v1/users/{user}/sessions", s.handleQuery(shell.OpAll))
	mux.HandleFunc("GET /v1/users/{user}/total", s.handleQuery(shell.OpTotal))
	mux.HandleFunc("GET /v1/ws", s.handleWebSocket)
	mux.HandleFunc("GET /v1/clients", s.handleClients)
	mux.HandleFunc("POST /v1/reload", s.handleReload)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	stats := s.ledger.Stats()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"events":    stats.Events,
		"users":     stats.Users,
		"loaded_at": stats.LoadedAt.UTC(),
	})
}

func (s *Server) handleClients(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ConnectedClients())
}

func (s *Server) handleUsers(w http.ResponseWriter, _ *http.Request) {
	var users []string
	_ = s.ledger.View(func(l *ledger.Ledger) error {
		users = l.Users()
		return nil
	})
	if users == nil {
		users = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

// handleQuery serves one ledger query under the read lock. Metrics and spans
// are labelled with op.
func (s *Server) handleQuery(op string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := r.PathValue("user")

		ctx := tracing.WithOperation(tracing.WithUsername(r.Context(), user), op)
		ctx, span := tracing.StartSpan(ctx, "ledger."+op)
		defer span.End()

		start := time.Now()
		var result any
		err := s.ledger.View(func(l *ledger.Ledger) error {
			var qerr error
			result, qerr = shell.Query(l, op, user)
			return qerr
		})

		status, label := statusFor(err)
		s.metrics.ObserveQuery(op, label, time.Since(start))

		logger := tracing.LoggerFromContext(ctx, s.logger)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.Debug().Err(err).Int("status", status).Msg("Query failed")
			writeError(w, r, status, label, err)
			return
		}

		logger.Debug().Dur("elapsed", time.Since(start)).Msg("Query served")
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if !s.authHandler.Authorize(r) {
		s.audit.RecordSecurity(r.Context(), "reload.unauthorized", r.RemoteAddr)
		writeError(w, r, http.StatusUnauthorized, "unauthorized", errors.New("unauthorized"))
		return
	}

	stats, err := s.Reload(tracing.Detach(r.Context()), SourceAPI)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, metrics.StatusError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": MessageReloaded,
		"events": stats.Events,
		"users":  stats.Users,
	})
}

// handleWebSocket upgrades the connection and registers the client for
// reload notifications. Clients receive a hello message once registered.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.isShuttingDown() {
		http.Error(w, "Server is shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to upgrade connection")
		return
	}

	clientID, err := gonanoid.New()
	if err != nil {
		clientID = tracing.NewTraceID()
	}
	client := NewClient(clientID, conn, r.RemoteAddr)

	s.metrics.WebsocketClients.Set(float64(s.clients.Add(client)))

	s.logger.Info().
		Str("clientId", clientID).
		Str("ip", r.RemoteAddr).
		Msg("Client connected")

	stats := s.ledger.Stats()
	if err := client.WriteJSON(EventMessage{
		Type:   MessageHello,
		Events: stats.Events,
		Users:  stats.Users,
		At:     stats.LoadedAt.UTC(),
	}); err != nil {
		s.logger.Error().Err(err).Str("clientId", clientID).Msg("Failed to send hello")
		s.dropClient(client)
		return
	}

	go s.handleClient(client)
}

// handleClient drains client frames until the connection closes. Clients are
// not expected to send anything.
func (s *Server) handleClient(client *Client) {
	defer s.dropClient(client)

	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug().Err(err).Str("clientId", client.ID).Msg("WebSocket closed")
			}
			return
		}
	}
}

func (s *Server) dropClient(client *Client) {
	client.Conn.Close()
	if remaining, ok := s.clients.Remove(client.ID); ok {
		s.metrics.WebsocketClients.Set(float64(remaining))
		s.logger.Info().Str("clientId", client.ID).Msg("Client disconnected")
	}
}

// statusFor maps a ledger error to an HTTP status and a metrics label.
func statusFor(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusOK, metrics.StatusOK
	case errors.Is(err, ledger.ErrInvalidArgument):
		return http.StatusBadRequest, metrics.StatusInvalid
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound, metrics.StatusNotFound
	default:
		return http.StatusInternalServerError, metrics.StatusError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, err error) {
	writeJSON(w, status, ErrorResponse{
		Error:     err.Error(),
		Code:      code,
		RequestID: tracing.GetRequestID(r.Context()),
	})
}
