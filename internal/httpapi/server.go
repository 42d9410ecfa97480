package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/adambeloucif/abel/internal/brain"
	"github.com/adambeloucif/abel/internal/config"
	"github.com/adambeloucif/abel/internal/directory"
	"github.com/adambeloucif/abel/internal/observability"
	"github.com/adambeloucif/abel/internal/protocol"
)

const welcomeMessage = "Bonjour ! Je suis A.B.E.L, votre assistant personnel. Comment puis-je vous aider ?"

// APIDirectory lists entries from the public API catalog.
type APIDirectory interface {
	List(ctx context.Context, category string) ([]directory.Entry, error)
}

type Server struct {
	cfg      config.Config
	brain    *brain.Brain
	metrics  *observability.Metrics
	apis     APIDirectory // nil when no database is configured
	dbStatus string
	upgrader websocket.Upgrader
}

func New(cfg config.Config, b *brain.Brain, metrics *observability.Metrics, apis APIDirectory, dbStatus string) *Server {
	return &Server{
		cfg:      cfg,
		brain:    b,
		metrics:  metrics,
		apis:     apis,
		dbStatus: dbStatus,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Default: only allow browser websocket connections from the
				// same origin, so other websites cannot drive a chat session
				// if the server is ever exposed beyond localhost.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.handleInfo)
	r.Get("/health", s.handleHealth)
	r.Get("/api/info", s.handleInfo)
	r.Get("/api/apis", s.handleListAPIs)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})
	r.Get("/ws/chat/{client_id}", s.handleChatWS)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"service":  s.cfg.AppName,
		"version":  s.cfg.AppVersion,
		"database": s.dbStatus,
	})
}

func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"name":        s.cfg.AppName,
		"version":     s.cfg.AppVersion,
		"description": "Assistant personnel intelligent avec mémoire à long terme",
		"endpoints": map[string]string{
			"websocket": "/ws/chat/{client_id}",
			"health":    "/health",
			"apis":      "/api/apis",
			"metrics":   "/metrics",
		},
	})
}

func (s *Server) handleListAPIs(w http.ResponseWriter, r *http.Request) {
	if s.apis == nil {
		respondError(w, http.StatusServiceUnavailable, "directory_unavailable", "api directory requires a database")
		return
	}
	entries, err := s.apis.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("category")))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "directory_error", err.Error())
		return
	}
	if entries == nil {
		entries = []directory.Entry{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"apis":  entries,
		"count": len(entries),
	})
}

func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	clientID := strings.TrimSpace(chi.URLParam(r, "client_id"))
	if clientID == "" {
		respondError(w, http.StatusBadRequest, "missing_client_id", "path parameter client_id is required")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	s.metrics.ActiveSessions.Inc()
	s.metrics.SessionEvents.WithLabelValues("ws_connected").Inc()
	defer func() {
		s.metrics.ActiveSessions.Dec()
		s.metrics.SessionEvents.WithLabelValues("ws_disconnected").Inc()
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	outbound := make(chan protocol.ServerMessage, 256)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-outbound:
				if !ok {
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := conn.WriteJSON(msg); err != nil {
					s.metrics.SessionEvents.WithLabelValues("ws_write_error").Inc()
					cancel()
					return
				}
				s.metrics.WSMessages.WithLabelValues("outbound", string(msg.Type)).Inc()
			}
		}
	}()

	// Keep websocket writes single-threaded: everything goes through the
	// outbound channel.
	send := func(msg protocol.ServerMessage) bool {
		select {
		case outbound <- msg:
			return true
		case <-ctx.Done():
			return false
		}
	}

	send(protocol.System(welcomeMessage))

	conn.SetReadLimit(1 << 20)
	for {
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ClientIdleTimeout))
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}

		parsed, err := protocol.ParseClientMessage(data)
		if err != nil {
			send(protocol.Error("message invalide: " + err.Error()))
			continue
		}

		switch m := parsed.(type) {
		case protocol.ChatMessage:
			s.metrics.WSMessages.WithLabelValues("inbound", string(protocol.TypeChatMessage)).Inc()
			s.streamExchange(ctx, send, clientID, m)
		case protocol.Ping:
			s.metrics.WSMessages.WithLabelValues("inbound", string(protocol.TypePing)).Inc()
			send(protocol.Pong())
		case protocol.Clear:
			s.metrics.WSMessages.WithLabelValues("inbound", string(protocol.TypeClear)).Inc()
			s.brain.Clear(clientID)
			send(protocol.System("Historique de conversation effacé"))
		}

		if ctx.Err() != nil {
			break
		}
	}

	cancel()
	<-writerDone
}

// streamExchange relays one exchange: a thinking frame, the response
// fragments as they arrive, then the assembled response.
func (s *Server) streamExchange(ctx context.Context, send func(protocol.ServerMessage) bool, clientID string, m protocol.ChatMessage) {
	send(protocol.Thinking())

	var sb strings.Builder
	for fragment := range s.brain.Stream(ctx, m.Content, clientID, m.UserID) {
		if !send(protocol.Stream(fragment)) {
			return
		}
		sb.WriteString(fragment)
	}
	if ctx.Err() != nil {
		return
	}
	send(protocol.Assistant(sb.String()))
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
