// ABOUTME: Turn orchestrator: routes a message, runs the agent, persists the turn
// ABOUTME: Sole writer to the thread store; serializes turns per thread

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/helperhub/agent-gateway/internal/agents"
	"github.com/helperhub/agent-gateway/internal/auth"
	"github.com/helperhub/agent-gateway/internal/router"
	"github.com/helperhub/agent-gateway/internal/store"
	"github.com/helperhub/agent-gateway/internal/tools"
)

// ErrEmptyMessage is returned when a turn arrives with no message text.
var ErrEmptyMessage = errors.New("message is empty")

// ErrLoopLimitExceeded is returned when a turn issues more tool calls than
// the configured bound allows.
var ErrLoopLimitExceeded = errors.New("tool call loop limit exceeded")

// Defaults applied when Config fields are zero.
const (
	DefaultLoopLimit     = 8
	DefaultHistoryWindow = 20
	defaultPersistWindow = 5 * time.Second
)

// Config contains configuration options for the Orchestrator.
type Config struct {
	Store    store.Store
	Router   *router.Router
	Agents   *agents.Set
	Registry *tools.Registry
	Logger   *slog.Logger

	// LoopLimit bounds tool calls per turn, across handoffs.
	LoopLimit int
	// HistoryWindow bounds how many prior messages agents see.
	HistoryWindow int
}

// Result is the outcome of a successfully handled turn.
type Result struct {
	ThreadID  string
	Response  string
	AgentUsed string
}

// Orchestrator drives turns through route, execute, persist.
type Orchestrator struct {
	store         store.Store
	router        *router.Router
	agents        *agents.Set
	registry      *tools.Registry
	logger        *slog.Logger
	loopLimit     int
	historyWindow int
	locks         *threadLocks
}

// New creates an Orchestrator from the config. Store, Router, Agents, and
// Registry are required.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Store == nil || cfg.Router == nil || cfg.Agents == nil || cfg.Registry == nil {
		return nil, fmt.Errorf("orchestrator requires store, router, agents, and registry")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loopLimit := cfg.LoopLimit
	if loopLimit <= 0 {
		loopLimit = DefaultLoopLimit
	}
	historyWindow := cfg.HistoryWindow
	if historyWindow <= 0 {
		historyWindow = DefaultHistoryWindow
	}
	return &Orchestrator{
		store:         cfg.Store,
		router:        cfg.Router,
		agents:        cfg.Agents,
		registry:      cfg.Registry,
		logger:        logger.With("component", "orchestrator"),
		loopLimit:     loopLimit,
		historyWindow: historyWindow,
		locks:         newThreadLocks(),
	}, nil
}

// HandleTurn processes one user message against a thread. An empty threadID,
// or one that doesn't resolve for this caller, starts a new thread. The turn
// is persisted whether it succeeds or fails; on failure the user's message and
// an error marker are recorded and the error is returned.
func (o *Orchestrator) HandleTurn(ctx context.Context, ac *auth.AuthContext, threadID, message string) (*Result, error) {
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if ac == nil {
		return nil, fmt.Errorf("turn requires an auth context")
	}

	thread, err := o.resolveThread(ctx, ac, threadID)
	if err != nil {
		return nil, err
	}

	o.locks.acquire(thread.ID)
	defer o.locks.release(thread.ID)

	// Re-read under the lock so concurrent turns on the same thread each see
	// the previous turn's messages.
	thread, err = o.store.GetThread(ctx, thread.ID, ac.UserID)
	if err != nil {
		return nil, fmt.Errorf("reloading thread: %w", err)
	}

	decision := o.router.Route(message, thread)

	invoker := &turnInvoker{
		registry: o.registry,
		ac:       ac,
		limit:    o.loopLimit,
	}

	result, agentUsed, err := o.execute(ctx, thread, message, decision, invoker)
	if err != nil {
		// The invoker's call log survives the failure, so the marker still
		// records every tool call that was issued.
		o.persistFailure(thread.ID, message, agentUsed, invoker.Calls(), err)
		return nil, err
	}

	userMsg := &store.Message{
		ID:      uuid.NewString(),
		Role:    store.RoleUser,
		Content: message,
	}
	agentMsg := &store.Message{
		ID:        uuid.NewString(),
		Role:      store.RoleAgent,
		Content:   result.Response,
		AgentID:   agentUsed,
		ToolCalls: result.ToolCalls,
	}
	// By now the agent has finished and any tool side effects already
	// happened upstream, so a caller abort must not lose the record.
	if err := o.persistTurn(thread.ID, agentUsed, []*store.Message{userMsg, agentMsg}); err != nil {
		return nil, err
	}

	o.logger.Info("turn completed",
		"thread_id", thread.ID,
		"agent", agentUsed,
		"tool_calls", len(result.ToolCalls))

	return &Result{
		ThreadID:  thread.ID,
		Response:  result.Response,
		AgentUsed: agentUsed,
	}, nil
}

// resolveThread loads the caller's thread, creating a fresh one when the id is
// empty or doesn't resolve. An id owned by someone else reads as absent, so a
// new thread is started rather than leaking the collision.
func (o *Orchestrator) resolveThread(ctx context.Context, ac *auth.AuthContext, threadID string) (*store.Thread, error) {
	if threadID != "" {
		thread, err := o.store.GetThread(ctx, threadID, ac.UserID)
		if err == nil {
			return thread, nil
		}
		if !errors.Is(err, store.ErrThreadNotFound) {
			return nil, fmt.Errorf("loading thread: %w", err)
		}
		o.logger.Debug("thread not found, starting new", "requested_id", threadID)
	}

	now := time.Now().UTC()
	thread := &store.Thread{
		ID:        uuid.NewString(),
		OwnerID:   ac.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := o.store.CreateThread(ctx, thread); err != nil {
		return nil, fmt.Errorf("creating thread: %w", err)
	}
	return thread, nil
}

// execute runs the routed agent, honoring at most one handoff. A second
// handoff falls through to the General agent, which always terminates.
// The agent that produced the final result is returned even on error, so
// failures are attributed correctly.
func (o *Orchestrator) execute(ctx context.Context, thread *store.Thread, message string, decision router.Decision, invoker *turnInvoker) (*agents.TurnResult, string, error) {
	kind, ok := agents.ParseKind(decision.AgentID)
	if !ok {
		kind = agents.KindGeneral
	}

	req := &agents.TurnRequest{
		Message: message,
		Thread:  o.historySnapshot(thread),
		Intent:  decision.Intent,
		Auth:    invoker.ac,
		Invoker: invoker,
	}

	handoffs := 0
	for {
		agent, err := o.agents.Get(kind)
		if err != nil {
			return nil, string(kind), err
		}

		result, err := agent.Execute(ctx, req)
		if err != nil {
			return nil, string(kind), err
		}
		if result.Handoff == nil {
			return result, string(kind), nil
		}

		handoffs++
		if handoffs > 1 || *result.Handoff == kind {
			o.logger.Warn("handoff bound reached, falling back to general",
				"from", string(kind), "to", string(*result.Handoff))
			kind = agents.KindGeneral
			continue
		}

		o.logger.Debug("agent handoff", "from", string(kind), "to", string(*result.Handoff))
		kind = *result.Handoff
	}
}

// historySnapshot trims the thread's messages to the configured window so
// agents see bounded history. The stored thread is never mutated.
func (o *Orchestrator) historySnapshot(thread *store.Thread) *store.Thread {
	snapshot := *thread
	if n := len(thread.Messages); n > o.historyWindow {
		snapshot.Messages = thread.Messages[n-o.historyWindow:]
	}
	return &snapshot
}

// persistTurn appends a completed turn under a fresh background context,
// detached from the caller's request context.
func (o *Orchestrator) persistTurn(threadID, lastAgent string, msgs []*store.Message) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultPersistWindow)
	defer cancel()

	if err := o.store.AppendTurn(ctx, threadID, lastAgent, msgs); err != nil {
		o.logger.Error("failed to persist completed turn",
			"thread_id", threadID, "agent", lastAgent, "error", err)
		return fmt.Errorf("persisting turn: %w", err)
	}
	return nil
}

// persistFailure records the user's message and an error marker. A fresh
// background context is used so a caller abort can't lose the record.
func (o *Orchestrator) persistFailure(threadID, message, agentUsed string, calls []store.ToolCall, turnErr error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultPersistWindow)
	defer cancel()

	userMsg := &store.Message{
		ID:      uuid.NewString(),
		Role:    store.RoleUser,
		Content: message,
	}
	errMsg := &store.Message{
		ID:        uuid.NewString(),
		Role:      store.RoleAgent,
		Content:   "Something went wrong handling this message. Please try again.",
		AgentID:   agentUsed,
		ToolCalls: calls,
		IsError:   true,
	}

	if err := o.store.AppendTurn(ctx, threadID, agentUsed, []*store.Message{userMsg, errMsg}); err != nil {
		o.logger.Error("failed to persist error turn",
			"thread_id", threadID, "error", err, "turn_error", turnErr)
		return
	}

	o.logger.Warn("turn failed",
		"thread_id", threadID, "agent", agentUsed, "error", turnErr)
}
