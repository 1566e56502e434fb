// Package conversation owns chat sessions and drives the confirmation
// protocol between the slot extractor and the command engine.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ashureev/hr-assistant/internal/command"
	"github.com/ashureev/hr-assistant/internal/domain"
	"github.com/ashureev/hr-assistant/internal/extractor"
	"github.com/ashureev/hr-assistant/internal/phrasing"
	"github.com/google/uuid"
)

// HelpMessage answers unknown or low-confidence requests.
const HelpMessage = `I'm not sure how to help with that. I can assist you with:

• **Hiring**: "Hire [name] to the [team] team in [country]"
• **Bonuses**: "Give [name] a $[amount] bonus"
• **Title changes**: "Change [name]'s title to [new title]"
• **Terminations**: "Terminate [name] effective [date]"

Could you please rephrase your request using one of these formats?`

// DeclineMessage answers a declined confirmation.
const DeclineMessage = "No problem! The action has been cancelled. Is there anything else I can help you with?"

// PendingReminder answers new requests while one is awaiting confirmation
// under PolicyReject.
const PendingReminder = "You still have an action waiting for confirmation. Please confirm or cancel it before starting a new one."

// PendingPolicy decides what happens to a pending command when the session
// submits a new actionable request.
type PendingPolicy string

const (
	// PolicyReplace fails the old pending command and creates the new one.
	PolicyReplace PendingPolicy = "replace"
	// PolicyReject keeps the old pending command and ignores the new request.
	PolicyReject PendingPolicy = "reject"
)

// Executor runs a confirmed command.
type Executor interface {
	Execute(ctx context.Context, req command.Request) (domain.CommandResult, error)
}

// Archiver stores conversation snapshots.
type Archiver interface {
	UpsertConversation(ctx context.Context, session domain.ConversationSession) error
}

// Config tunes the manager.
type Config struct {
	ConfidenceThreshold float64
	HistoryWindow       int
	Policy              PendingPolicy
	DefaultUserID       string
}

// DefaultConfig returns the standard settings.
func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: 0.7,
		HistoryWindow:       extractor.DefaultHistoryWindow,
		Policy:              PolicyReplace,
		DefaultUserID:       "demo_user",
	}
}

// SubmitInput is a new user message.
type SubmitInput struct {
	SessionID string
	UserID    string
	Text      string
}

// SubmitOutput is the assistant's reply to a message.
type SubmitOutput struct {
	Message           domain.Message           `json:"message"`
	SessionID         string                   `json:"sessionId"`
	CommandExecution  *domain.CommandExecution `json:"commandExecution,omitempty"`
	NeedsConfirmation bool                     `json:"needsConfirmation"`
}

// ConfirmInput is the user's decision on a pending command.
type ConfirmInput struct {
	CommandID string
	Confirmed bool
}

// ConfirmOutput is the assistant's reply to a decision.
type ConfirmOutput struct {
	Message          domain.Message           `json:"message"`
	SessionID        string                   `json:"sessionId"`
	CommandExecution *domain.CommandExecution `json:"commandExecution,omitempty"`
}

type sessionState struct {
	// turn serialises Submit, Confirm and snapshots of this session.
	turn      sync.Mutex
	session   domain.ConversationSession
	pendingID string
}

// Manager owns sessions, their messages and the pending command of each
// session. Turns in one session are serialised; different sessions proceed
// concurrently.
type Manager struct {
	extractor extractor.Extractor
	executor  Executor
	phraser   phrasing.Phraser
	archive   Archiver
	cfg       Config
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]*sessionState
	pending  map[string]*domain.CommandExecution
}

// Option configures a Manager.
type Option func(*Manager)

// WithPhraser overrides the template phraser.
func WithPhraser(p phrasing.Phraser) Option {
	return func(m *Manager) {
		if p != nil {
			m.phraser = p
		}
	}
}

// WithArchiver stores a snapshot of the session after every turn.
func WithArchiver(a Archiver) Option {
	return func(m *Manager) { m.archive = a }
}

// WithLogger sets the manager logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a Manager. ext should never fail; wrap remote
// extractors in extractor.Guard.
func NewManager(ext extractor.Extractor, exec Executor, cfg Config, opts ...Option) *Manager {
	def := DefaultConfig()
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = def.HistoryWindow
	}
	if cfg.Policy == "" {
		cfg.Policy = def.Policy
	}
	if cfg.DefaultUserID == "" {
		cfg.DefaultUserID = def.DefaultUserID
	}

	m := &Manager{
		extractor: ext,
		executor:  exec,
		cfg:       cfg,
		logger:    slog.Default(),
		now:       func() time.Time { return time.Now().UTC() },
		sessions:  make(map[string]*sessionState),
		pending:   make(map[string]*domain.CommandExecution),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.phraser == nil {
		m.phraser = phrasing.NewTemplates(m.now)
	}
	return m
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ensureSession returns the session for id, creating a fresh one when id is
// empty or unknown.
func (m *Manager) ensureSession(id, userID string) *sessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.sessions[id]; ok && id != "" {
		return st
	}
	if userID == "" {
		userID = m.cfg.DefaultUserID
	}
	now := m.now()
	st := &sessionState{session: domain.ConversationSession{
		ID:        newID(),
		UserID:    userID,
		Messages:  []domain.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}}
	m.sessions[st.session.ID] = st
	m.logger.Info("conversation session created", "session_id", st.session.ID, "user_id", userID)
	return st
}

// Submit records a user message, classifies it and answers with either a
// confirmation request, a follow-up question or the help text.
func (m *Manager) Submit(ctx context.Context, in SubmitInput) (SubmitOutput, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return SubmitOutput{}, domain.Validationf("Message cannot be empty.")
	}

	st := m.ensureSession(in.SessionID, in.UserID)
	st.turn.Lock()
	defer st.turn.Unlock()

	history := st.session.RecentMessages(m.cfg.HistoryWindow)
	m.appendMessage(st, domain.RoleUser, text, domain.MessageText)

	res, err := m.extractor.Extract(ctx, text, history)
	if err != nil {
		m.logger.Warn("slot extraction failed, falling back to unknown", "session_id", st.session.ID, "error", err)
		res = extractor.Unknown()
	}
	if res.Slots == nil {
		res.Slots = domain.Slots{}
	}

	out := SubmitOutput{SessionID: st.session.ID}
	switch {
	case res.Intent == domain.IntentIncomplete:
		out.Message = m.appendMessage(st, domain.RoleAssistant, m.phraser.Incomplete(ctx, res.Slots), domain.MessageText)
	case !res.Intent.Executable() || res.Confidence < m.cfg.ConfidenceThreshold:
		out.Message = m.appendMessage(st, domain.RoleAssistant, HelpMessage, domain.MessageText)
	default:
		if existing := m.pendingFor(st); existing != nil && m.cfg.Policy == PolicyReject {
			out.Message = m.appendMessage(st, domain.RoleAssistant, PendingReminder, domain.MessageText)
			out.CommandExecution = existing
			out.NeedsConfirmation = true
			break
		}
		m.supersede(st)

		exec, err := m.createPending(st, res)
		if err != nil {
			return SubmitOutput{}, err
		}
		m.logger.Info("command awaiting confirmation",
			"session_id", st.session.ID, "command_id", exec.ID, "intent", exec.Intent, "confidence", res.Confidence)
		out.Message = m.appendMessage(st, domain.RoleAssistant, m.phraser.Confirmation(ctx, res.Intent, res.Slots), domain.MessageConfirmation)
		out.CommandExecution = exec
		out.NeedsConfirmation = true
	}

	m.archiveSession(ctx, st)
	return out, nil
}

// Confirm resolves a pending command. Unknown or already resolved command ids
// yield a domain.ErrNotFound error. A declined command is failed without
// execution. The error wraps domain.ErrInternal when execution faults.
func (m *Manager) Confirm(ctx context.Context, in ConfirmInput) (ConfirmOutput, error) {
	m.mu.Lock()
	exec, ok := m.pending[in.CommandID]
	var st *sessionState
	if ok {
		delete(m.pending, in.CommandID)
		st = m.sessions[exec.SessionID]
	}
	m.mu.Unlock()

	if !ok {
		return ConfirmOutput{}, domain.NotFoundf("Command not found.")
	}
	if st == nil {
		return ConfirmOutput{}, domain.NotFoundf("Session not found.")
	}

	st.turn.Lock()
	defer st.turn.Unlock()
	if st.pendingID == exec.ID {
		st.pendingID = ""
	}

	out := ConfirmOutput{SessionID: st.session.ID}
	if !in.Confirmed {
		declined := domain.Failed("Cancelled by user.")
		exec.Result = &declined
		m.transition(exec, domain.ExecFailed)
		m.logger.Info("command declined", "session_id", st.session.ID, "command_id", exec.ID, "intent", exec.Intent)
		out.Message = m.appendMessage(st, domain.RoleAssistant, DeclineMessage, domain.MessageText)
		out.CommandExecution = exec.Clone()
		m.archiveSession(ctx, st)
		return out, nil
	}

	m.transition(exec, domain.ExecExecuting)
	result, execErr := m.executor.Execute(ctx, command.Request{
		Intent:    exec.Intent,
		Slots:     exec.Slots.Clone(),
		SessionID: st.session.ID,
		UserID:    st.session.UserID,
	})
	exec.Result = &result

	switch {
	case execErr != nil:
		m.transition(exec, domain.ExecFailed)
		m.logger.Error("command execution failed", "session_id", st.session.ID, "command_id", exec.ID, "intent", exec.Intent, "error", execErr)
		out.Message = m.appendMessage(st, domain.RoleAssistant, "❌ "+command.InternalErrorMessage, domain.MessageError)
		out.CommandExecution = exec.Clone()
		m.archiveSession(ctx, st)
		if !errors.Is(execErr, domain.ErrInternal) {
			execErr = fmt.Errorf("%w: %v", domain.ErrInternal, execErr)
		}
		return out, execErr
	case result.Success:
		m.transition(exec, domain.ExecCompleted)
		text := m.phraser.Success(ctx, exec.Intent, exec.Slots, result)
		if len(result.Warnings) > 0 {
			text += "\n\n⚠️ " + strings.Join(result.Warnings, " ")
		}
		out.Message = m.appendMessage(st, domain.RoleAssistant, text, domain.MessageSuccess)
	default:
		m.transition(exec, domain.ExecFailed)
		out.Message = m.appendMessage(st, domain.RoleAssistant, "❌ "+result.Message, domain.MessageError)
	}
	m.logger.Info("command resolved",
		"session_id", st.session.ID, "command_id", exec.ID, "intent", exec.Intent, "status", exec.Status)

	out.CommandExecution = exec.Clone()
	m.archiveSession(ctx, st)
	return out, nil
}

// Session returns a snapshot of one session.
func (m *Manager) Session(id string) (domain.ConversationSession, error) {
	m.mu.RLock()
	st, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return domain.ConversationSession{}, domain.NotFoundf("Session not found.")
	}
	st.turn.Lock()
	defer st.turn.Unlock()
	return st.session.Clone(), nil
}

// Sessions returns snapshots of all sessions, most recently updated first.
func (m *Manager) Sessions() []domain.ConversationSession {
	m.mu.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	out := make([]domain.ConversationSession, 0, len(ids))
	for _, id := range ids {
		if s, err := m.Session(id); err == nil {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out
}

// Pending returns the command awaiting confirmation in a session, if any.
func (m *Manager) Pending(sessionID string) (*domain.CommandExecution, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, exec := range m.pending {
		if exec.SessionID == sessionID {
			return exec.Clone(), true
		}
	}
	return nil, false
}

func (m *Manager) pendingFor(st *sessionState) *domain.CommandExecution {
	if st.pendingID == "" {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pending[st.pendingID].Clone()
}

// supersede fails the session's pending command, if any.
func (m *Manager) supersede(st *sessionState) {
	if st.pendingID == "" {
		return
	}
	m.mu.Lock()
	old, ok := m.pending[st.pendingID]
	delete(m.pending, st.pendingID)
	m.mu.Unlock()
	st.pendingID = ""
	if !ok {
		return
	}
	superseded := domain.Failed("Superseded by a newer request.")
	old.Result = &superseded
	m.transition(old, domain.ExecFailed)
	m.logger.Info("pending command superseded", "session_id", st.session.ID, "command_id", old.ID, "intent", old.Intent)
}

func (m *Manager) createPending(st *sessionState, res extractor.Result) (*domain.CommandExecution, error) {
	now := m.now()
	exec := &domain.CommandExecution{
		ID:        newID(),
		SessionID: st.session.ID,
		Intent:    res.Intent,
		Slots:     res.Slots.Clone(),
		Status:    domain.ExecExtractingSlots,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := exec.Transition(domain.ExecPendingConfirmation, now); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}

	m.mu.Lock()
	m.pending[exec.ID] = exec
	m.mu.Unlock()
	st.pendingID = exec.ID
	return exec.Clone(), nil
}

func (m *Manager) transition(exec *domain.CommandExecution, next domain.ExecutionStatus) {
	if err := exec.Transition(next, m.now()); err != nil {
		m.logger.Error("illegal command transition", "command_id", exec.ID, "error", err)
	}
}

func (m *Manager) appendMessage(st *sessionState, role domain.Role, content string, typ domain.MessageType) domain.Message {
	now := m.now()
	msg := domain.Message{
		ID:        newID(),
		Role:      role,
		Content:   content,
		Timestamp: now,
		Type:      typ,
	}
	st.session.Messages = append(st.session.Messages, msg)
	st.session.UpdatedAt = now
	return msg
}

func (m *Manager) archiveSession(ctx context.Context, st *sessionState) {
	if m.archive == nil {
		return
	}
	if err := m.archive.UpsertConversation(ctx, st.session.Clone()); err != nil {
		m.logger.Warn("Failed to archive conversation", "session_id", st.session.ID, "error", err)
	}
}
