// ABOUTME: Tests for the turn orchestrator state machine
// ABOUTME: Covers persistence, handoffs, the loop bound, and failed-turn recording

package orchestrator

import (
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helperhub/agent-gateway/internal/agents"
	"github.com/helperhub/agent-gateway/internal/auth"
	"github.com/helperhub/agent-gateway/internal/router"
	"github.com/helperhub/agent-gateway/internal/store"
	"github.com/helperhub/agent-gateway/internal/tools"
)

// testEnv wires an orchestrator against the in-memory store and a registry of
// canned tools, so turns run without any network.
type testEnv struct {
	store *store.MemoryStore
	orch  *Orchestrator
}

func newTestEnv(t *testing.T, toolResults map[string]json.RawMessage, toolErrs map[string]error) *testEnv {
	t.Helper()

	registry := tools.NewRegistry(tools.RegistryConfig{Backoff: 1})
	register := func(name string) {
		err := registry.Register(tools.Tool{
			Name:        name,
			InputSchema: `{"type":"object"}`,
			Handler: func(ctx context.Context, ac *auth.AuthContext, input json.RawMessage) (json.RawMessage, error) {
				if err, ok := toolErrs[name]; ok {
					return nil, err
				}
				return toolResults[name], nil
			},
		})
		require.NoError(t, err)
	}
	for _, name := range []string{"list_tasks", "create_task", "update_task", "search_helpers", "get_profile", "update_profile"} {
		register(name)
	}

	s := store.NewMemoryStore()
	orch, err := New(Config{
		Store:    s,
		Router:   router.New(router.Config{Logger: slog.Default()}),
		Agents:   agents.NewSet(slog.Default()),
		Registry: registry,
		Logger:   slog.Default(),
	})
	require.NoError(t, err)

	return &testEnv{store: s, orch: orch}
}

func testAuth(userID string) *auth.AuthContext {
	return &auth.AuthContext{UserID: userID, Token: "tok-" + userID}
}

func TestHandleTurnCreatesThreadAndPersists(t *testing.T) {
	env := newTestEnv(t, map[string]json.RawMessage{
		"list_tasks": json.RawMessage(`{"tasks":[{"id":"1","title":"Mow lawn","status":"open"}],"count":1}`),
	}, nil)

	result, err := env.orch.HandleTurn(context.Background(), testAuth("user-1"), "", "What tasks have I posted?")
	require.NoError(t, err)
	assert.NotEmpty(t, result.ThreadID)
	assert.Equal(t, "task", result.AgentUsed)
	assert.Contains(t, result.Response, "Mow lawn")

	thread, err := env.store.GetThread(context.Background(), result.ThreadID, "user-1")
	require.NoError(t, err)
	require.Len(t, thread.Messages, 2)
	assert.Equal(t, store.RoleUser, thread.Messages[0].Role)
	assert.Equal(t, "What tasks have I posted?", thread.Messages[0].Content)
	assert.Equal(t, store.RoleAgent, thread.Messages[1].Role)
	assert.Equal(t, "task", thread.Messages[1].AgentID)
	assert.Equal(t, "task", thread.LastAgent)

	require.Len(t, thread.Messages[1].ToolCalls, 1)
	assert.Equal(t, "list_tasks", thread.Messages[1].ToolCalls[0].Name)
	assert.Equal(t, store.StatusSuccess, thread.Messages[1].ToolCalls[0].Status)
}

func TestHandleTurnContinuesThread(t *testing.T) {
	env := newTestEnv(t, map[string]json.RawMessage{
		"list_tasks": json.RawMessage(`{"tasks":[],"count":0}`),
	}, nil)
	ctx := context.Background()

	first, err := env.orch.HandleTurn(ctx, testAuth("user-1"), "", "show my tasks")
	require.NoError(t, err)

	second, err := env.orch.HandleTurn(ctx, testAuth("user-1"), first.ThreadID, "anything else?")
	require.NoError(t, err)
	assert.Equal(t, first.ThreadID, second.ThreadID)

	thread, err := env.store.GetThread(ctx, first.ThreadID, "user-1")
	require.NoError(t, err)
	assert.Len(t, thread.Messages, 4)
	for i, msg := range thread.Messages {
		assert.Equal(t, int64(i+1), msg.Seq)
	}
}

func TestHandleTurnUnknownThreadStartsNew(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	result, err := env.orch.HandleTurn(context.Background(), testAuth("user-1"), "no-such-thread", "hello")
	require.NoError(t, err)
	assert.NotEqual(t, "no-such-thread", result.ThreadID)
	assert.Equal(t, "general", result.AgentUsed)
}

func TestHandleTurnOtherOwnersThreadStartsNew(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	ctx := context.Background()

	theirs, err := env.orch.HandleTurn(ctx, testAuth("user-1"), "", "hello")
	require.NoError(t, err)

	mine, err := env.orch.HandleTurn(ctx, testAuth("user-2"), theirs.ThreadID, "hello")
	require.NoError(t, err)
	assert.NotEqual(t, theirs.ThreadID, mine.ThreadID)

	// The original owner's thread is untouched by the other caller's turn.
	thread, err := env.store.GetThread(ctx, theirs.ThreadID, "user-1")
	require.NoError(t, err)
	assert.Len(t, thread.Messages, 2)
}

func TestHandleTurnEmptyMessage(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	_, err := env.orch.HandleTurn(context.Background(), testAuth("user-1"), "", "")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestHandleTurnHandoff(t *testing.T) {
	env := newTestEnv(t, map[string]json.RawMessage{
		"update_profile": json.RawMessage(`{"profile":{"user_id":"user-1","email":"a@b.com"},"status":"updated"}`),
	}, nil)

	// Routes to the task agent on the task vocabulary, which hands off to
	// the profile agent when it sees the request is about the caller's email.
	result, err := env.orch.HandleTurn(context.Background(), testAuth("user-1"),
		"", "For my tasks, change my email to a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "profile", result.AgentUsed, "handoff target handles and is recorded as last agent")

	thread, err := env.store.GetThread(context.Background(), result.ThreadID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "profile", thread.LastAgent)
}

func TestHandleTurnFailurePersistsErrorMarker(t *testing.T) {
	env := newTestEnv(t, nil, map[string]error{
		"list_tasks": &upstreamError{status: 503},
	})

	_, err := env.orch.HandleTurn(context.Background(), testAuth("user-1"), "", "show my tasks")
	require.Error(t, err)

	var execErr *tools.ToolExecutionError
	assert.ErrorAs(t, err, &execErr)

	threads, err := env.store.ListThreads(context.Background(), "user-1", 10)
	require.NoError(t, err)
	require.Len(t, threads, 1)

	thread, err := env.store.GetThread(context.Background(), threads[0].ID, "user-1")
	require.NoError(t, err)
	require.Len(t, thread.Messages, 2, "failed turns still persist the user message and a marker")
	assert.Equal(t, "show my tasks", thread.Messages[0].Content)
	assert.True(t, thread.Messages[1].IsError)
	require.Len(t, thread.Messages[1].ToolCalls, 1, "issued tool calls are recorded even on failure")
	assert.Equal(t, store.StatusFailed, thread.Messages[1].ToolCalls[0].Status)
}

func TestHandleTurnPersistsAfterCallerAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := tools.NewRegistry(tools.RegistryConfig{Backoff: 1})
	require.NoError(t, registry.Register(tools.Tool{
		Name:        "list_tasks",
		InputSchema: `{"type":"object"}`,
		Handler: func(ctx context.Context, ac *auth.AuthContext, input json.RawMessage) (json.RawMessage, error) {
			// The caller gives up while the tool call is in flight; the
			// upstream side effect has already happened.
			cancel()
			return json.RawMessage(`{"tasks":[],"count":0}`), nil
		},
	}))

	// SQLite honors context cancellation, so a persist on the dead request
	// context would fail here.
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "turns.db"))
	require.NoError(t, err)
	defer s.Close()

	orch, err := New(Config{
		Store:    s,
		Router:   router.New(router.Config{Logger: slog.Default()}),
		Agents:   agents.NewSet(slog.Default()),
		Registry: registry,
		Logger:   slog.Default(),
	})
	require.NoError(t, err)

	result, err := orch.HandleTurn(ctx, testAuth("user-1"), "", "show my tasks")
	require.NoError(t, err, "a completed turn survives the caller's abort")

	thread, err := s.GetThread(context.Background(), result.ThreadID, "user-1")
	require.NoError(t, err)
	require.Len(t, thread.Messages, 2)
	require.Len(t, thread.Messages[1].ToolCalls, 1)
	assert.Equal(t, store.StatusSuccess, thread.Messages[1].ToolCalls[0].Status)
}

func TestHandleTurnLoopLimit(t *testing.T) {
	env := newTestEnv(t, map[string]json.RawMessage{
		"list_tasks": json.RawMessage(`{"tasks":[],"count":0}`),
	}, nil)
	env.orch.loopLimit = 0

	_, err := env.orch.HandleTurn(context.Background(), testAuth("user-1"), "", "show my tasks")
	assert.ErrorIs(t, err, ErrLoopLimitExceeded)
}

func TestHandleTurnConcurrentThreadsIndependent(t *testing.T) {
	env := newTestEnv(t, map[string]json.RawMessage{
		"list_tasks": json.RawMessage(`{"tasks":[],"count":0}`),
	}, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]*Result, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := env.orch.HandleTurn(ctx, testAuth("user-1"), "", "show my tasks")
			assert.NoError(t, err)
			results[i] = r
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, r := range results {
		require.NotNil(t, r)
		assert.False(t, seen[r.ThreadID], "each turn got its own thread")
		seen[r.ThreadID] = true
	}
}

func TestHandleTurnSerializesSameThread(t *testing.T) {
	env := newTestEnv(t, map[string]json.RawMessage{
		"list_tasks": json.RawMessage(`{"tasks":[],"count":0}`),
	}, nil)
	ctx := context.Background()

	first, err := env.orch.HandleTurn(ctx, testAuth("user-1"), "", "show my tasks")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.orch.HandleTurn(ctx, testAuth("user-1"), first.ThreadID, "show my tasks")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	thread, err := env.store.GetThread(ctx, first.ThreadID, "user-1")
	require.NoError(t, err)
	require.Len(t, thread.Messages, 18, "9 turns, 2 messages each, no interleaving")
	for i, msg := range thread.Messages {
		assert.Equal(t, int64(i+1), msg.Seq)
	}
}

// upstreamError simulates a collaborator failure with an HTTP status.
type upstreamError struct {
	status int
}

func (e *upstreamError) Error() string   { return "upstream failure" }
func (e *upstreamError) StatusCode() int { return e.status }
