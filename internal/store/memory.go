// ABOUTME: In-memory implementation of the Store interface
// ABOUTME: Used by tests and ephemeral deployments; deep-copies on read and write

package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore implements the Store interface with an in-process map.
// All reads and writes deep-copy so callers can never mutate stored state.
type MemoryStore struct {
	mu      sync.RWMutex
	threads map[string]*Thread
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		threads: make(map[string]*Thread),
	}
}

// CreateThread stores a copy of the thread.
func (m *MemoryStore) CreateThread(ctx context.Context, thread *Thread) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.threads[thread.ID]; exists {
		return ErrDuplicateThread
	}
	m.threads[thread.ID] = copyThread(thread)
	return nil
}

// GetThread returns a copy of the thread, enforcing ownership.
func (m *MemoryStore) GetThread(ctx context.Context, id, ownerID string) (*Thread, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	thread, exists := m.threads[id]
	if !exists || thread.OwnerID != ownerID {
		return nil, ErrThreadNotFound
	}
	return copyThread(thread), nil
}

// AppendTurn appends message copies with consecutive seq numbers.
func (m *MemoryStore) AppendTurn(ctx context.Context, threadID, lastAgent string, msgs []*Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	thread, exists := m.threads[threadID]
	if !exists {
		return ErrThreadNotFound
	}

	seq := int64(0)
	if n := len(thread.Messages); n > 0 {
		seq = thread.Messages[n-1].Seq
	}

	now := time.Now().UTC()
	for _, msg := range msgs {
		seq++
		c := copyMessage(msg)
		c.ThreadID = threadID
		c.Seq = seq
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		thread.Messages = append(thread.Messages, c)
		// Reflect assigned ordering back to the caller, matching SQLite behavior
		msg.ThreadID = c.ThreadID
		msg.Seq = c.Seq
		msg.CreatedAt = c.CreatedAt
	}

	thread.LastAgent = lastAgent
	thread.UpdatedAt = now
	return nil
}

// ListThreads returns copies of the owner's threads, most recent first.
func (m *MemoryStore) ListThreads(ctx context.Context, ownerID string, limit int) ([]*Thread, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	var threads []*Thread
	for _, t := range m.threads {
		if t.OwnerID != ownerID {
			continue
		}
		c := copyThread(t)
		c.Messages = nil
		threads = append(threads, c)
	}

	sort.Slice(threads, func(i, j int) bool {
		return threads[i].UpdatedAt.After(threads[j].UpdatedAt)
	})
	if len(threads) > limit {
		threads = threads[:limit]
	}
	return threads, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}

func copyThread(t *Thread) *Thread {
	c := *t
	c.Messages = make([]*Message, len(t.Messages))
	for i, msg := range t.Messages {
		c.Messages[i] = copyMessage(msg)
	}
	return &c
}

func copyMessage(msg *Message) *Message {
	c := *msg
	if len(msg.ToolCalls) > 0 {
		c.ToolCalls = make([]ToolCall, len(msg.ToolCalls))
		copy(c.ToolCalls, msg.ToolCalls)
	}
	return &c
}
