// Package api provides HTTP handlers for the HR assistant API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/ashureev/hr-assistant/internal/conversation"
	"github.com/ashureev/hr-assistant/internal/domain"
	"github.com/go-chi/chi/v5"
)

const defaultMaxBodyBytes = 1 << 20

// ChatService runs the conversation flow.
type ChatService interface {
	Submit(ctx context.Context, in conversation.SubmitInput) (conversation.SubmitOutput, error)
	Confirm(ctx context.Context, in conversation.ConfirmInput) (conversation.ConfirmOutput, error)
	Session(id string) (domain.ConversationSession, error)
	Sessions() []domain.ConversationSession
	Pending(sessionID string) (*domain.CommandExecution, bool)
}

// Directory is the read side of the employee directory.
type Directory interface {
	Employees() []domain.Employee
	Teams() []domain.Team
}

// AuditReader is the read side of the audit log.
type AuditReader interface {
	SessionLogs(sessionID string) []domain.ActionLog
	ByAction(action domain.Intent) []domain.ActionLog
}

// Handler serves the chat, directory and history endpoints.
type Handler struct {
	chat    ChatService
	dir     Directory
	audit   AuditReader
	logger  *slog.Logger
	maxBody int64
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the handler logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithMaxBodyBytes caps JSON request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxBody = n
		}
	}
}

// NewHandler creates a new Handler with its dependencies.
func NewHandler(chat ChatService, dir Directory, audit AuditReader, opts ...Option) *Handler {
	h := &Handler{
		chat:    chat,
		dir:     dir,
		audit:   audit,
		logger:  slog.Default(),
		maxBody: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers the API routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", h.PostMessage)
		r.Put("/chat", h.ConfirmCommand)
		r.Get("/sessions", h.ListSessions)
		r.Get("/sessions/{id}", h.GetSession)
		r.Get("/sessions/{id}/history", h.GetSessionHistory)
		r.Get("/history", h.GetHistory)
		r.Get("/employees", h.ListEmployees)
		r.Get("/teams", h.ListTeams)
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// StatusFor maps a domain error onto an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "path", r.URL.Path, "error", err)
		Error(w, status, "Internal server error")
		return
	}
	Error(w, status, domain.UserMessage(err, err.Error()))
}

// decodeJSON reads a size-limited JSON body into v. Failures are
// domain.ErrValidation.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(w, r.Body, h.maxBody)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return domain.Validationf("Request body exceeds %d bytes.", tooLarge.Limit)
		case errors.Is(err, io.EOF):
			return domain.Validationf("Request body is required.")
		default:
			return &domain.UserError{Kind: domain.ErrValidation, Message: fmt.Sprintf("Invalid request body: %v", err)}
		}
	}
	return nil
}
