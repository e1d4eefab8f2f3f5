package websocket

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/fran-as/millDischargeDashboard/internal/config"
	apierrors "github.com/fran-as/millDischargeDashboard/internal/errors"
	"github.com/fran-as/millDischargeDashboard/internal/infrastructure"
)

// Handler upgrades /ws requests into selection sessions
type Handler struct {
	upgrader     websocket.Upgrader
	hub          *Hub
	dispatcher   *dispatcher
	cfg          config.WebSocketConfig
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewHandler creates the websocket endpoint. allowedOrigins empty accepts
// any origin.
func NewHandler(hub *Hub, sessions SessionFactory, validator StructValidator, metrics *infrastructure.DashboardMetrics,
	cfg config.WebSocketConfig, allowedOrigins []string, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
		hub:          hub,
		dispatcher:   &dispatcher{sessions: sessions, validator: validator, metrics: metrics},
		cfg:          cfg,
		errorHandler: errorHandler,
		logger:       infrastructure.WithComponent(logger, "websocket.handler"),
	}
}

// SessionCount reports open sessions for health checks
func (h *Handler) SessionCount() int {
	return h.hub.SessionCount()
}

// ServeHTTP handles GET /ws
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !websocket.IsWebSocketUpgrade(r) {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(http.StatusBadRequest,
			"INVALID_REQUEST", "Expected a websocket upgrade", nil))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		h.logger.WarnContext(r.Context(), "WebSocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("remote_addr", r.RemoteAddr))
		return
	}

	client := NewClient(r.Context(), h.hub, NewConnectionWrapper(conn), h.dispatcher, h.cfg, h.logger)
	if !h.hub.Register(client) {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	client.Greet()
	go client.WritePump()
	go client.ReadPump()
}

// checkOrigin accepts requests without an Origin header, same-host origins
// and any listed origin.
func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}
