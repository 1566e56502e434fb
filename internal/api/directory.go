package api

import (
	"net/http"
	"strings"

	"github.com/ashureev/hr-assistant/internal/audit"
	"github.com/ashureev/hr-assistant/internal/domain"
	"github.com/go-chi/chi/v5"
)

type historyResponse struct {
	Logs  []domain.ActionLog `json:"logs"`
	Lines []string           `json:"lines"`
	Count int                `json:"count"`
}

func newHistoryResponse(logs []domain.ActionLog) historyResponse {
	resp := historyResponse{Logs: logs, Lines: make([]string, 0, len(logs)), Count: len(logs)}
	if resp.Logs == nil {
		resp.Logs = []domain.ActionLog{}
	}
	for _, entry := range logs {
		resp.Lines = append(resp.Lines, audit.Format(entry))
	}
	return resp
}

// GetSessionHistory handles GET /api/sessions/{id}/history.
func (h *Handler) GetSessionHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.chat.Session(id); err != nil {
		h.writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, newHistoryResponse(h.audit.SessionLogs(id)))
}

// GetHistory handles GET /api/history with an optional action filter.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	var action domain.Intent
	if raw := r.URL.Query().Get("action"); raw != "" {
		action = domain.ParseIntent(raw)
		if !action.Mutating() {
			Error(w, http.StatusBadRequest, "action must be one of hire_employee, give_bonus, change_title, terminate_employee.")
			return
		}
	}
	JSON(w, http.StatusOK, newHistoryResponse(h.audit.ByAction(action)))
}

// ListEmployees handles GET /api/employees with optional team and status
// filters.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	team := strings.TrimSpace(r.URL.Query().Get("team"))
	status := domain.EmployeeStatus(strings.TrimSpace(r.URL.Query().Get("status")))
	if status != "" && !status.Valid() {
		Error(w, http.StatusBadRequest, "status must be one of active, terminated, on_leave.")
		return
	}

	employees := make([]domain.Employee, 0)
	for _, e := range h.dir.Employees() {
		if team != "" && !strings.EqualFold(e.Team, team) {
			continue
		}
		if status != "" && e.Status != status {
			continue
		}
		employees = append(employees, e)
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"employees": employees,
		"count":     len(employees),
	})
}

// ListTeams handles GET /api/teams.
func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams := h.dir.Teams()
	if teams == nil {
		teams = []domain.Team{}
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"teams": teams,
		"count": len(teams),
	})
}
