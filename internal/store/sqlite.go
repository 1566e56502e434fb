package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ashureev/hr-assistant/internal/domain"
	"github.com/ashureev/hr-assistant/internal/shared"
	_ "modernc.org/sqlite"
)

const (
	maxWriteRetries = 3
	baseRetryDelay  = 100 * time.Millisecond
)

var _ Repository = (*SQLiteStore)(nil)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL lets hrctl read while the server writes. The driver applies each
	// _pragma on every new connection.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db, logger: slog.Default()}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS action_logs (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		session_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		action TEXT NOT NULL,
		details_json TEXT NOT NULL,
		success INTEGER NOT NULL,
		error_message TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_action_logs_session ON action_logs(session_id, seq);

	CREATE TABLE IF NOT EXISTS conversations (
		session_id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		messages_json TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_conversations_updated ON conversations(updated_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// withRetry runs a write, retrying SQLITE_BUSY with exponential backoff.
func (s *SQLiteStore) withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for i := 0; i < maxWriteRetries; i++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !shared.IsSQLiteConflictError(err) || i == maxWriteRetries-1 {
			break
		}
		delay := baseRetryDelay * time.Duration(1<<i)
		s.logger.Debug("sqlite write busy, retrying", "op", op, "attempt", i+1, "delay", delay)
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", op, ctx.Err())
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// SaveActionLog stores an audit entry.
func (s *SQLiteStore) SaveActionLog(ctx context.Context, entry domain.ActionLog) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("marshal action details: %w", err)
	}

	query := `
	INSERT INTO action_logs (id, session_id, user_id, action, details_json, success, error_message, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO NOTHING`

	var errMsg interface{}
	if entry.ErrorMessage != "" {
		errMsg = entry.ErrorMessage
	}

	return s.withRetry(ctx, "save action log", func() error {
		_, err := s.db.ExecContext(ctx, query,
			entry.ID, entry.SessionID, entry.UserID, string(entry.Action),
			string(details), entry.Success, errMsg, entry.Timestamp.UnixMilli(),
		)
		return err
	})
}

// ListActionLogs returns archived entries oldest first.
func (s *SQLiteStore) ListActionLogs(ctx context.Context, sessionID string) ([]domain.ActionLog, error) {
	query := `
		SELECT id, session_id, user_id, action, details_json, success, error_message, created_at
		FROM action_logs`
	var args []interface{}
	if sessionID != "" {
		query += ` WHERE session_id = ?`
		args = append(args, sessionID)
	}
	query += ` ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query action logs: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn("failed to close action log rows", "error", closeErr)
		}
	}()

	logs := []domain.ActionLog{}
	for rows.Next() {
		var entry domain.ActionLog
		var action, details string
		var errMsg sql.NullString
		var createdAt int64

		if err := rows.Scan(
			&entry.ID, &entry.SessionID, &entry.UserID, &action,
			&details, &entry.Success, &errMsg, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan action log row: %w", err)
		}
		if err := json.Unmarshal([]byte(details), &entry.Details); err != nil {
			return nil, fmt.Errorf("decode action details %s: %w", entry.ID, err)
		}
		entry.Action = domain.Intent(action)
		entry.ErrorMessage = errMsg.String
		entry.Timestamp = time.UnixMilli(createdAt).UTC()
		logs = append(logs, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate action logs: %w", err)
	}
	return logs, nil
}

// UpsertConversation creates or replaces a conversation snapshot.
func (s *SQLiteStore) UpsertConversation(ctx context.Context, session domain.ConversationSession) error {
	messages, err := json.Marshal(session.Messages)
	if err != nil {
		return fmt.Errorf("marshal messages: %w", err)
	}

	query := `
	INSERT INTO conversations (session_id, user_id, messages_json, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(session_id) DO UPDATE SET
		messages_json = excluded.messages_json,
		updated_at = excluded.updated_at`

	return s.withRetry(ctx, "upsert conversation", func() error {
		_, err := s.db.ExecContext(ctx, query,
			session.ID, session.UserID, string(messages),
			session.CreatedAt.UnixMilli(), session.UpdatedAt.UnixMilli(),
		)
		return err
	})
}

// GetConversation retrieves a conversation snapshot.
func (s *SQLiteStore) GetConversation(ctx context.Context, sessionID string) (*domain.ConversationSession, error) {
	query := `
		SELECT session_id, user_id, messages_json, created_at, updated_at
		FROM conversations WHERE session_id = ?`

	var session domain.ConversationSession
	var messages string
	var createdAt, updatedAt int64

	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(
		&session.ID, &session.UserID, &messages, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan conversation: %w", err)
	}

	if err := json.Unmarshal([]byte(messages), &session.Messages); err != nil {
		return nil, fmt.Errorf("decode messages for %s: %w", sessionID, err)
	}
	session.CreatedAt = time.UnixMilli(createdAt).UTC()
	session.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return &session, nil
}

// ListConversations returns conversation headers without messages.
func (s *SQLiteStore) ListConversations(ctx context.Context, limit int) ([]domain.ConversationSession, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT session_id, user_id, created_at, updated_at
		FROM conversations ORDER BY updated_at DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn("failed to close conversation rows", "error", closeErr)
		}
	}()

	out := []domain.ConversationSession{}
	for rows.Next() {
		var session domain.ConversationSession
		var createdAt, updatedAt int64
		if err := rows.Scan(&session.ID, &session.UserID, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation row: %w", err)
		}
		session.CreatedAt = time.UnixMilli(createdAt).UTC()
		session.UpdatedAt = time.UnixMilli(updatedAt).UTC()
		out = append(out, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversations: %w", err)
	}
	return out, nil
}
