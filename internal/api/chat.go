package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/ashureev/hr-assistant/internal/conversation"
	"github.com/ashureev/hr-assistant/internal/domain"
	"github.com/ashureev/hr-assistant/internal/identity"
	"github.com/go-chi/chi/v5"
)

type postMessageRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId,omitempty"`
}

type confirmRequest struct {
	CommandID string `json:"commandId"`
	Confirmed *bool  `json:"confirmed"`
}

type sessionResponse struct {
	domain.ConversationSession
	PendingCommand *domain.CommandExecution `json:"pendingCommand,omitempty"`
}

// PostMessage handles POST /api/chat.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req postMessageRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		Error(w, http.StatusBadRequest, "Message is required.")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = identity.SessionIDFromContext(r.Context())
	}

	out, err := h.chat.Submit(r.Context(), conversation.SubmitInput{
		SessionID: sessionID,
		UserID:    identity.UserIDFromContext(r.Context()),
		Text:      req.Message,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, out)
}

// ConfirmCommand handles PUT /api/chat.
func (h *Handler) ConfirmCommand(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.CommandID) == "" || req.Confirmed == nil {
		Error(w, http.StatusBadRequest, "commandId and confirmed are required.")
		return
	}

	out, err := h.chat.Confirm(r.Context(), conversation.ConfirmInput{
		CommandID: req.CommandID,
		Confirmed: *req.Confirmed,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, out)
}

// GetSession handles GET /api/sessions/{id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	session, err := h.chat.Session(id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := sessionResponse{ConversationSession: session}
	if pending, ok := h.chat.Pending(id); ok {
		resp.PendingCommand = pending
	}
	JSON(w, http.StatusOK, resp)
}

type sessionSummary struct {
	SessionID    string    `json:"sessionId"`
	MessageCount int       `json:"messageCount"`
	LastMessage  string    `json:"lastMessage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ListSessions handles GET /api/sessions. Only the caller's sessions are
// listed, most recently active first.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	summaries := make([]sessionSummary, 0)
	for _, s := range h.chat.Sessions() {
		if s.UserID != userID {
			continue
		}
		sum := sessionSummary{
			SessionID:    s.ID,
			MessageCount: len(s.Messages),
			CreatedAt:    s.CreatedAt,
			UpdatedAt:    s.UpdatedAt,
		}
		if n := len(s.Messages); n > 0 {
			sum.LastMessage = s.Messages[n-1].Content
		}
		summaries = append(summaries, sum)
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"sessions": summaries,
		"count":    len(summaries),
	})
}
