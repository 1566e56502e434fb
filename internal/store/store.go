// Package store provides the durable archive of audit entries and
// conversation snapshots.
package store

import (
	"context"

	"github.com/ashureev/hr-assistant/internal/domain"
)

// Repository defines the interface for archiving HR actions and chats.
type Repository interface {
	// SaveActionLog stores an audit entry. Saving the same id twice is a no-op.
	SaveActionLog(ctx context.Context, entry domain.ActionLog) error

	// ListActionLogs returns archived entries oldest first. An empty
	// sessionID lists every session.
	ListActionLogs(ctx context.Context, sessionID string) ([]domain.ActionLog, error)

	// UpsertConversation creates or replaces a conversation snapshot.
	UpsertConversation(ctx context.Context, session domain.ConversationSession) error

	// GetConversation retrieves a snapshot. It returns nil, nil when absent.
	GetConversation(ctx context.Context, sessionID string) (*domain.ConversationSession, error)

	// ListConversations returns snapshot headers, most recently updated first.
	ListConversations(ctx context.Context, limit int) ([]domain.ConversationSession, error)

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
