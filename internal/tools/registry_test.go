// ABOUTME: Tests for tool registration and schema-validated invocation
// ABOUTME: Verifies collision handling, schema rejection, and retry classification

package tools

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helperhub/agent-gateway/internal/auth"
)

// statusError is a handler error carrying an upstream HTTP status.
type statusError struct {
	status int
}

func (e *statusError) Error() string   { return "upstream error" }
func (e *statusError) StatusCode() int { return e.status }

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry(RegistryConfig{
		Timeout: time.Second,
		Backoff: time.Millisecond,
	})
}

func testAuth() *auth.AuthContext {
	return &auth.AuthContext{UserID: "user-1", Token: "tok"}
}

func echoTool(name string, calls *int) Tool {
	return Tool{
		Name:        name,
		Description: "echoes its input",
		InputSchema: `{"type":"object","properties":{"text":{"type":"string"}},"required":["text"],"additionalProperties":false}`,
		Handler: func(ctx context.Context, ac *auth.AuthContext, input json.RawMessage) (json.RawMessage, error) {
			if calls != nil {
				*calls++
			}
			return input, nil
		},
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := testRegistry(t)

	require.NoError(t, r.Register(echoTool("echo", nil)))
	err := r.Register(echoTool("echo", nil))
	assert.ErrorIs(t, err, ErrDuplicateTool)
}

func TestRegisterRejectsBadSchema(t *testing.T) {
	r := testRegistry(t)

	tool := echoTool("bad", nil)
	tool.InputSchema = `{"type": not-json`
	err := r.Register(tool)
	assert.Error(t, err)
}

func TestInvokeUnknownTool(t *testing.T) {
	r := testRegistry(t)

	_, err := r.Invoke(context.Background(), "missing", json.RawMessage(`{}`), testAuth())
	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestInvokeSchemaRejectionSkipsHandler(t *testing.T) {
	r := testRegistry(t)
	calls := 0
	require.NoError(t, r.Register(echoTool("echo", &calls)))

	_, err := r.Invoke(context.Background(), "echo", json.RawMessage(`{"text":42}`), testAuth())

	var schemaErr *SchemaValidationError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "echo", schemaErr.Tool)
	assert.Equal(t, 0, calls, "handler must not run for invalid arguments")
}

func TestInvokeSuccess(t *testing.T) {
	r := testRegistry(t)
	calls := 0
	require.NoError(t, r.Register(echoTool("echo", &calls)))

	result, err := r.Invoke(context.Background(), "echo", json.RawMessage(`{"text":"hi"}`), testAuth())
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"hi"}`, string(result))
	assert.Equal(t, 1, calls)
}

func TestInvokeRetriesTransientFailures(t *testing.T) {
	r := testRegistry(t)
	calls := 0
	require.NoError(t, r.Register(Tool{
		Name:        "flaky",
		InputSchema: `{"type":"object"}`,
		Handler: func(ctx context.Context, ac *auth.AuthContext, input json.RawMessage) (json.RawMessage, error) {
			calls++
			if calls < 3 {
				return nil, &statusError{status: 503}
			}
			return json.RawMessage(`{"ok":true}`), nil
		},
	}))

	result, err := r.Invoke(context.Background(), "flaky", json.RawMessage(`{}`), testAuth())
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(result))
	assert.Equal(t, 3, calls, "two transient failures then success")
}

func TestInvokeDoesNotRetryClientErrors(t *testing.T) {
	r := testRegistry(t)
	calls := 0
	require.NoError(t, r.Register(Tool{
		Name:        "rejecting",
		InputSchema: `{"type":"object"}`,
		Handler: func(ctx context.Context, ac *auth.AuthContext, input json.RawMessage) (json.RawMessage, error) {
			calls++
			return nil, &statusError{status: 404}
		},
	}))

	_, err := r.Invoke(context.Background(), "rejecting", json.RawMessage(`{}`), testAuth())

	var execErr *ToolExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, 404, execErr.StatusCode)
	assert.Equal(t, 1, calls, "client errors are permanent")
}

func TestInvokeNegativeMaxRetriesDisablesRetry(t *testing.T) {
	r := NewRegistry(RegistryConfig{
		Timeout:    time.Second,
		MaxRetries: -1,
		Backoff:    time.Millisecond,
	})
	calls := 0
	require.NoError(t, r.Register(Tool{
		Name:        "once",
		InputSchema: `{"type":"object"}`,
		Handler: func(ctx context.Context, ac *auth.AuthContext, input json.RawMessage) (json.RawMessage, error) {
			calls++
			return nil, &statusError{status: 503}
		},
	}))

	_, err := r.Invoke(context.Background(), "once", json.RawMessage(`{}`), testAuth())

	var execErr *ToolExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, 1, calls, "transient failure is not retried")
}

func TestInvokeExhaustsRetryBudget(t *testing.T) {
	r := testRegistry(t)
	calls := 0
	require.NoError(t, r.Register(Tool{
		Name:        "down",
		InputSchema: `{"type":"object"}`,
		Handler: func(ctx context.Context, ac *auth.AuthContext, input json.RawMessage) (json.RawMessage, error) {
			calls++
			return nil, &statusError{status: 500}
		},
	}))

	_, err := r.Invoke(context.Background(), "down", json.RawMessage(`{}`), testAuth())

	var execErr *ToolExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, 500, execErr.StatusCode)
	assert.Equal(t, 3, calls, "first attempt plus two retries")
}
