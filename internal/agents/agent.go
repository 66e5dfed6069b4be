// ABOUTME: Agent kinds, the Agent interface, and the kind-to-implementation dispatch table
// ABOUTME: Defines TurnRequest/TurnResult exchanged with the orchestrator

package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/helperhub/agent-gateway/internal/auth"
	"github.com/helperhub/agent-gateway/internal/router"
	"github.com/helperhub/agent-gateway/internal/store"
)

// Kind identifies an agent. The set is closed; ParseKind rejects anything else.
type Kind string

// Agent kinds.
const (
	KindTask    Kind = "task"
	KindSearch  Kind = "search"
	KindProfile Kind = "profile"
	KindGeneral Kind = "general"
)

// ParseKind converts an agent id string to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindTask, KindSearch, KindProfile, KindGeneral:
		return Kind(s), true
	}
	return "", false
}

// ToolInvoker issues tool calls under the turn's auth context and records
// every call with a terminal status. The orchestrator supplies one per turn
// and enforces the loop bound inside it.
type ToolInvoker interface {
	Invoke(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error)
	Calls() []store.ToolCall
}

// TurnRequest carries everything an agent needs for one turn.
type TurnRequest struct {
	Message string
	Thread  *store.Thread // snapshot of prior history, never mutated by agents
	Intent  router.Intent
	Auth    *auth.AuthContext
	Invoker ToolInvoker
}

// TurnResult is what an agent produces for one turn.
type TurnResult struct {
	Response  string
	ToolCalls []store.ToolCall // ordered calls issued this turn
	Handoff   *Kind            // set when a different agent should take over
}

// Agent is a specialized turn handler.
type Agent interface {
	Kind() Kind
	CanHandle(intent router.Intent) bool
	Execute(ctx context.Context, req *TurnRequest) (*TurnResult, error)
}

// Set is the dispatch table from kind to implementation.
type Set struct {
	table map[Kind]Agent
}

// NewSet builds the full agent set.
func NewSet(logger *slog.Logger) *Set {
	if logger == nil {
		logger = slog.Default()
	}
	return &Set{
		table: map[Kind]Agent{
			KindTask:    &TaskAgent{logger: logger.With("agent", string(KindTask))},
			KindSearch:  &SearchAgent{logger: logger.With("agent", string(KindSearch))},
			KindProfile: &ProfileAgent{logger: logger.With("agent", string(KindProfile))},
			KindGeneral: &GeneralAgent{logger: logger.With("agent", string(KindGeneral))},
		},
	}
}

// Get returns the agent for a kind. Unknown kinds are wiring errors.
func (s *Set) Get(kind Kind) (Agent, error) {
	agent, ok := s.table[kind]
	if !ok {
		return nil, fmt.Errorf("unknown agent kind: %s", kind)
	}
	return agent, nil
}

// handoff is a small helper for building TurnResult handoffs.
func handoff(to Kind) *Kind {
	return &to
}
