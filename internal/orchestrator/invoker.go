// ABOUTME: Per-turn tool invoker: records every call and enforces the loop bound
// ABOUTME: Guarantees persisted tool calls carry a terminal status

package orchestrator

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/helperhub/agent-gateway/internal/auth"
	"github.com/helperhub/agent-gateway/internal/store"
	"github.com/helperhub/agent-gateway/internal/tools"
)

// turnInvoker issues tool calls for one turn. The call log survives handoffs
// because the same invoker is passed to every agent in the turn.
type turnInvoker struct {
	registry *tools.Registry
	ac       *auth.AuthContext
	limit    int
	calls    []store.ToolCall
}

// Invoke runs a tool and records the call with a terminal status. Once the
// loop bound is hit every further call fails with ErrLoopLimitExceeded
// without reaching the registry.
func (i *turnInvoker) Invoke(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error) {
	if len(i.calls) >= i.limit {
		return nil, ErrLoopLimitExceeded
	}

	call := store.ToolCall{
		ID:        uuid.NewString(),
		Name:      name,
		Arguments: append([]byte(nil), args...),
		Status:    store.StatusPending,
	}

	result, err := i.registry.Invoke(ctx, name, args, i.ac)
	if err != nil {
		call.Status = store.StatusFailed
		call.Error = err.Error()
	} else {
		call.Status = store.StatusSuccess
		call.Result = append([]byte(nil), result...)
	}
	i.calls = append(i.calls, call)

	return result, err
}

// Calls returns a copy of the ordered call log.
func (i *turnInvoker) Calls() []store.ToolCall {
	out := make([]store.ToolCall, len(i.calls))
	copy(out, i.calls)
	return out
}
