// Package audit keeps the append-only log of executed HR actions.
package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ashureev/hr-assistant/internal/domain"
	"github.com/google/uuid"
)

// Archiver persists a copy of every entry outside the process.
type Archiver interface {
	SaveActionLog(ctx context.Context, entry domain.ActionLog) error
}

// Log is the in-memory audit trail. It is the source of truth for history
// queries; the optional Archiver is best effort.
type Log struct {
	mu      sync.RWMutex
	entries []domain.ActionLog
	subs    map[int]chan domain.ActionLog
	nextSub int

	archive Archiver
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Log.
type Option func(*Log)

// WithArchiver mirrors appended entries into a.
func WithArchiver(a Archiver) Option {
	return func(l *Log) { l.archive = a }
}

// WithLogger sets the logger used for archive and subscriber warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Log) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		if now != nil {
			l.now = now
		}
	}
}

// New creates an empty Log.
func New(opts ...Option) *Log {
	l := &Log{
		subs:   make(map[int]chan domain.ActionLog),
		logger: slog.Default(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record appends an entry built from its parts.
func (l *Log) Record(ctx context.Context, sessionID, userID string, action domain.Intent, details domain.ActionDetails, success bool, errorMessage string) domain.ActionLog {
	return l.Append(ctx, domain.ActionLog{
		SessionID:    sessionID,
		UserID:       userID,
		Action:       action,
		Details:      details,
		Success:      success,
		ErrorMessage: errorMessage,
	})
}

// Append stores entry, assigning an id and timestamp when missing. The entry
// is visible to readers before Append returns. Archive failures are logged
// and never reach the caller.
func (l *Log) Append(ctx context.Context, entry domain.ActionLog) domain.ActionLog {
	if entry.ID == "" {
		entry.ID = uuid.Must(uuid.NewV7()).String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now()
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	for id, ch := range l.subs {
		select {
		case ch <- entry:
		default:
			l.logger.Warn("audit subscriber is full, dropping entry", "subscriber", id, "log_id", entry.ID)
		}
	}
	l.mu.Unlock()

	l.archiveEntry(ctx, entry)
	return entry
}

func (l *Log) archiveEntry(ctx context.Context, entry domain.ActionLog) {
	if l.archive == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("audit archive panicked", "log_id", entry.ID, "panic", r)
		}
	}()
	if err := l.archive.SaveActionLog(ctx, entry); err != nil {
		l.logger.Error("Failed to archive audit entry", "log_id", entry.ID, "session_id", entry.SessionID, "error", err)
	}
}

// SessionLogs returns the entries for one session in append order.
func (l *Log) SessionLogs(sessionID string) []domain.ActionLog {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []domain.ActionLog
	for _, e := range l.entries {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out
}

// All returns every entry in append order.
func (l *Log) All() []domain.ActionLog {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]domain.ActionLog(nil), l.entries...)
}

// ByAction returns the entries for one action. An empty action returns all.
func (l *Log) ByAction(action domain.Intent) []domain.ActionLog {
	if action == "" {
		return l.All()
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []domain.ActionLog
	for _, e := range l.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Subscribe returns a channel receiving entries appended after the call.
// Slow subscribers lose entries instead of blocking Append. The returned
// func unsubscribes and closes the channel.
func (l *Log) Subscribe(buffer int) (<-chan domain.ActionLog, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan domain.ActionLog, buffer)

	l.mu.Lock()
	id := l.nextSub
	l.nextSub++
	l.subs[id] = ch
	l.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.subs, id)
			l.mu.Unlock()
			close(ch)
		})
	}
}
