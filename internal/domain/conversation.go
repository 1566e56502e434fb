package domain

import (
	"fmt"
	"time"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MessageType tells the client how to render a message.
type MessageType string

const (
	MessageText         MessageType = "text"
	MessageConfirmation MessageType = "confirmation"
	MessageSuccess      MessageType = "success"
	MessageError        MessageType = "error"
)

// Message is a single chat message.
type Message struct {
	ID        string      `json:"id"`
	Role      Role        `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
	Type      MessageType `json:"type"`
}

// ConversationSession holds the message history of one chat.
type ConversationSession struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RecentMessages returns the last n messages.
func (s *ConversationSession) RecentMessages(n int) []Message {
	if n <= 0 {
		return nil
	}
	if n >= len(s.Messages) {
		return append([]Message(nil), s.Messages...)
	}
	return append([]Message(nil), s.Messages[len(s.Messages)-n:]...)
}

// Clone returns a copy that shares no message storage with s.
func (s *ConversationSession) Clone() ConversationSession {
	out := *s
	out.Messages = append([]Message(nil), s.Messages...)
	return out
}

// ExecutionStatus is the lifecycle state of a CommandExecution.
type ExecutionStatus string

const (
	ExecExtractingSlots     ExecutionStatus = "extracting_slots"
	ExecPendingConfirmation ExecutionStatus = "pending_confirmation"
	ExecExecuting           ExecutionStatus = "executing"
	ExecCompleted           ExecutionStatus = "completed"
	ExecFailed              ExecutionStatus = "failed"
)

// Terminal reports whether no further transitions are allowed.
func (s ExecutionStatus) Terminal() bool {
	return s == ExecCompleted || s == ExecFailed
}

var allowedTransitions = map[ExecutionStatus][]ExecutionStatus{
	ExecExtractingSlots:     {ExecPendingConfirmation, ExecFailed},
	ExecPendingConfirmation: {ExecExecuting, ExecFailed},
	ExecExecuting:           {ExecCompleted, ExecFailed},
}

// CommandExecution tracks one command from extraction to a terminal state.
type CommandExecution struct {
	ID        string          `json:"id"`
	SessionID string          `json:"sessionId"`
	Intent    Intent          `json:"intent"`
	Slots     Slots           `json:"slots"`
	Status    ExecutionStatus `json:"status"`
	Result    *CommandResult  `json:"result,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Transition moves the execution to next, rejecting moves the lifecycle
// does not allow.
func (c *CommandExecution) Transition(next ExecutionStatus, at time.Time) error {
	for _, allowed := range allowedTransitions[c.Status] {
		if allowed == next {
			c.Status = next
			c.UpdatedAt = at
			return nil
		}
	}
	return fmt.Errorf("command %s: illegal transition %s -> %s", c.ID, c.Status, next)
}

// Clone returns a deep-enough copy for handing out of a lock.
func (c *CommandExecution) Clone() *CommandExecution {
	if c == nil {
		return nil
	}
	out := *c
	out.Slots = c.Slots.Clone()
	if c.Result != nil {
		r := *c.Result
		out.Result = &r
	}
	return &out
}
