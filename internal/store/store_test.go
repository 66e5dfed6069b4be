// ABOUTME: Tests for thread persistence across both store implementations
// ABOUTME: Verifies append-only ordering, ownership isolation, and error markers

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeFactories returns a fresh instance of each Store implementation so the
// contract tests run against both.
func storeFactories(t *testing.T) map[string]Store {
	t.Helper()

	sqliteStore, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqliteStore.Close() })

	return map[string]Store{
		"sqlite": sqliteStore,
		"memory": NewMemoryStore(),
	}
}

func newTestThread(ownerID string) *Thread {
	now := time.Now().UTC()
	return &Thread{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreateAndGetThread(t *testing.T) {
	for name, s := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			thread := newTestThread("user-1")

			require.NoError(t, s.CreateThread(ctx, thread))

			got, err := s.GetThread(ctx, thread.ID, "user-1")
			require.NoError(t, err)
			assert.Equal(t, thread.ID, got.ID)
			assert.Equal(t, "user-1", got.OwnerID)
			assert.Empty(t, got.Messages)
		})
	}
}

func TestCreateThreadDuplicate(t *testing.T) {
	for name, s := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			thread := newTestThread("user-1")

			require.NoError(t, s.CreateThread(ctx, thread))
			err := s.CreateThread(ctx, thread)
			assert.ErrorIs(t, err, ErrDuplicateThread)
		})
	}
}

func TestGetThreadOwnershipIsolation(t *testing.T) {
	for name, s := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			thread := newTestThread("user-1")
			require.NoError(t, s.CreateThread(ctx, thread))

			// A different owner must see the same error as a missing thread.
			_, err := s.GetThread(ctx, thread.ID, "user-2")
			assert.ErrorIs(t, err, ErrThreadNotFound)

			_, err = s.GetThread(ctx, "no-such-thread", "user-2")
			assert.ErrorIs(t, err, ErrThreadNotFound)
		})
	}
}

func TestAppendTurnOrdering(t *testing.T) {
	for name, s := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			thread := newTestThread("user-1")
			require.NoError(t, s.CreateThread(ctx, thread))

			first := []*Message{
				{ID: uuid.NewString(), Role: RoleUser, Content: "hello"},
				{ID: uuid.NewString(), Role: RoleAgent, Content: "hi", AgentID: "general"},
			}
			require.NoError(t, s.AppendTurn(ctx, thread.ID, "general", first))

			second := []*Message{
				{ID: uuid.NewString(), Role: RoleUser, Content: "list my tasks"},
				{ID: uuid.NewString(), Role: RoleAgent, Content: "here", AgentID: "task"},
			}
			require.NoError(t, s.AppendTurn(ctx, thread.ID, "task", second))

			got, err := s.GetThread(ctx, thread.ID, "user-1")
			require.NoError(t, err)
			require.Len(t, got.Messages, 4)

			for i, msg := range got.Messages {
				assert.Equal(t, int64(i+1), msg.Seq, "messages must carry consecutive seq numbers")
			}
			assert.Equal(t, "hello", got.Messages[0].Content)
			assert.Equal(t, "here", got.Messages[3].Content)
			assert.Equal(t, "task", got.LastAgent)
		})
	}
}

func TestAppendTurnMissingThread(t *testing.T) {
	for name, s := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			msgs := []*Message{{ID: uuid.NewString(), Role: RoleUser, Content: "x"}}
			err := s.AppendTurn(context.Background(), "missing", "general", msgs)
			assert.ErrorIs(t, err, ErrThreadNotFound)
		})
	}
}

func TestAppendTurnToolCallsAndErrorMarker(t *testing.T) {
	for name, s := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			thread := newTestThread("user-1")
			require.NoError(t, s.CreateThread(ctx, thread))

			msgs := []*Message{
				{ID: uuid.NewString(), Role: RoleUser, Content: "create a task"},
				{
					ID:      uuid.NewString(),
					Role:    RoleAgent,
					Content: "Something went wrong handling this message. Please try again.",
					AgentID: "task",
					IsError: true,
					ToolCalls: []ToolCall{
						{
							ID:        uuid.NewString(),
							Name:      "create_task",
							Arguments: []byte(`{"title":"x"}`),
							Status:    StatusFailed,
							Error:     "upstream unavailable",
						},
					},
				},
			}
			require.NoError(t, s.AppendTurn(ctx, thread.ID, "task", msgs))

			got, err := s.GetThread(ctx, thread.ID, "user-1")
			require.NoError(t, err)
			require.Len(t, got.Messages, 2)

			agentMsg := got.Messages[1]
			assert.True(t, agentMsg.IsError)
			require.Len(t, agentMsg.ToolCalls, 1)
			assert.Equal(t, "create_task", agentMsg.ToolCalls[0].Name)
			assert.Equal(t, StatusFailed, agentMsg.ToolCalls[0].Status)
			assert.Equal(t, "upstream unavailable", agentMsg.ToolCalls[0].Error)
		})
	}
}

func TestListThreads(t *testing.T) {
	for name, s := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			older := newTestThread("user-1")
			older.UpdatedAt = time.Now().UTC().Add(-time.Hour)
			require.NoError(t, s.CreateThread(ctx, older))

			newer := newTestThread("user-1")
			require.NoError(t, s.CreateThread(ctx, newer))

			other := newTestThread("user-2")
			require.NoError(t, s.CreateThread(ctx, other))

			threads, err := s.ListThreads(ctx, "user-1", 10)
			require.NoError(t, err)
			require.Len(t, threads, 2)
			assert.Equal(t, newer.ID, threads[0].ID, "most recently updated first")
			assert.Equal(t, older.ID, threads[1].ID)
		})
	}
}

func TestMemoryStoreDeepCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	thread := newTestThread("user-1")
	require.NoError(t, s.CreateThread(ctx, thread))
	require.NoError(t, s.AppendTurn(ctx, thread.ID, "general", []*Message{
		{ID: uuid.NewString(), Role: RoleUser, Content: "original"},
	}))

	got, err := s.GetThread(ctx, thread.ID, "user-1")
	require.NoError(t, err)
	got.Messages[0].Content = "mutated"

	again, err := s.GetThread(ctx, thread.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "original", again.Messages[0].Content)
}
