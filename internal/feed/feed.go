// Package feed streams audit log entries to websocket clients.
package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashureev/hr-assistant/internal/audit"
	"github.com/ashureev/hr-assistant/internal/domain"
	"github.com/coder/websocket"
)

const (
	subscriberBuffer = 64
	writeTimeout     = 5 * time.Second
)

// Source publishes audit entries to subscribers.
type Source interface {
	Subscribe(buffer int) (<-chan domain.ActionLog, func())
}

// Event is one frame sent to clients.
type Event struct {
	Type    string            `json:"type"`
	Entry   *domain.ActionLog `json:"entry,omitempty"`
	Display string            `json:"display,omitempty"`
}

type clientMessage struct {
	Type string `json:"type"`
}

// Handler upgrades requests on /ws/audit and forwards every new audit entry.
// A session_id query parameter limits the feed to one chat session.
type Handler struct {
	source         Source
	allowedOrigins []string
	isDev          bool
	logger         *slog.Logger
}

// NewHandler creates a feed handler.
func NewHandler(source Source, allowedOrigins []string, isDev bool, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{source: source, allowedOrigins: allowedOrigins, isDev: isDev, logger: logger}
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionFilter := r.URL.Query().Get("session_id")

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Error("Failed to accept WebSocket", "error", err)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "feed ended"); closeErr != nil {
			h.logger.Debug("Failed to close websocket", "error", closeErr)
		}
	}()

	entries, unsubscribe := h.source.Subscribe(subscriberBuffer)
	defer unsubscribe()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	h.logger.Info("Audit feed connected", "session_id", sessionFilter, "ip", r.RemoteAddr)

	if err := h.write(ctx, ws, Event{Type: "ready"}); err != nil {
		return
	}

	go func() {
		defer cancel()
		h.readLoop(ctx, ws)
	}()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("Audit feed disconnected", "session_id", sessionFilter)
			return
		case entry, ok := <-entries:
			if !ok {
				return
			}
			if sessionFilter != "" && entry.SessionID != sessionFilter {
				continue
			}
			if err := h.write(ctx, ws, Event{Type: "action", Entry: &entry, Display: audit.Format(entry)}); err != nil {
				return
			}
		}
	}
}

func (h *Handler) readLoop(ctx context.Context, ws *websocket.Conn) {
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				h.logger.Debug("WebSocket closed by client")
			} else if ctx.Err() == nil {
				h.logger.Warn("WebSocket read error", "error", err)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Type == "ping" {
			if err := h.write(ctx, ws, Event{Type: "pong"}); err != nil {
				return
			}
		}
	}
}

func (h *Handler) write(ctx context.Context, ws *websocket.Conn, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := ws.Write(writeCtx, websocket.MessageText, data); err != nil {
		h.logger.Debug("WebSocket write error", "error", err)
		return err
	}
	return nil
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	h.logger.Warn("WebSocket origin rejected", "origin", origin)
	return false
}
