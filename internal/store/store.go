// ABOUTME: Store interface and data types for thread persistence
// ABOUTME: Defines Thread, Message, ToolCall structs and the Store contract

package store

import (
	"context"
	"errors"
	"time"
)

// ErrThreadNotFound is returned when a thread does not exist or belongs to a
// different owner. The two cases are deliberately indistinguishable.
var ErrThreadNotFound = errors.New("thread not found")

// ErrDuplicateThread is returned when creating a thread whose id already exists.
var ErrDuplicateThread = errors.New("thread already exists")

// Message roles.
const (
	RoleUser  = "user"
	RoleAgent = "agent"
	RoleTool  = "tool"
)

// Tool call statuses. Persisted tool calls must carry a terminal status;
// StatusPending exists only while a turn is in flight.
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Thread is an owner-scoped conversation. ID and OwnerID are immutable after
// creation; Messages is append-only and ordered by Seq.
type Thread struct {
	ID        string
	OwnerID   string
	LastAgent string
	CreatedAt time.Time
	UpdatedAt time.Time
	Messages  []*Message
}

// Message is a single entry in a thread's log.
type Message struct {
	ID        string
	ThreadID  string
	Role      string // "user", "agent", "tool"
	Content   string
	AgentID   string // set for agent and tool messages
	ToolCalls []ToolCall
	IsError   bool  // marks an agent message recording a failed turn
	Seq       int64 // per-thread sequence, assigned on append
	CreatedAt time.Time
}

// ToolCall records one tool invocation issued during a turn.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments []byte `json:"arguments,omitempty"`
	Result    []byte `json:"result,omitempty"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// Store defines the interface for thread persistence. The orchestrator is the
// only writer; no other component appends to threads directly.
type Store interface {
	// CreateThread persists a new thread. Returns ErrDuplicateThread if the
	// id is already taken.
	CreateThread(ctx context.Context, thread *Thread) error

	// GetThread loads a thread and its messages in seq order. Returns
	// ErrThreadNotFound when the thread is absent or ownerID does not match.
	GetThread(ctx context.Context, id, ownerID string) (*Thread, error)

	// AppendTurn atomically appends one turn's messages to a thread and
	// updates last_agent and updated_at. Messages receive consecutive seq
	// numbers continuing from the thread's current tail.
	AppendTurn(ctx context.Context, threadID, lastAgent string, msgs []*Message) error

	// ListThreads returns the owner's threads, most recently updated first.
	// Messages are not loaded.
	ListThreads(ctx context.Context, ownerID string, limit int) ([]*Thread, error)

	// Close releases any resources held by the store.
	Close() error
}
