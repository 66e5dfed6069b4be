// ABOUTME: Thread-safe registry for tools with schema-validated invocation
// ABOUTME: Handles registration collisions, timeouts, and bounded retry on transient failures

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/helperhub/agent-gateway/internal/auth"
)

// DefaultTimeout is the default per-attempt timeout for tool execution.
const DefaultTimeout = 15 * time.Second

// DefaultMaxRetries is the default number of retries after the first attempt.
const DefaultMaxRetries = 2

// Handler executes a tool call against an external collaborator using the
// caller's authorization context.
type Handler func(ctx context.Context, ac *auth.AuthContext, input json.RawMessage) (json.RawMessage, error)

// Tool declares a callable external capability with typed input/output schemas.
type Tool struct {
	Name         string
	Description  string
	InputSchema  string // JSON Schema document for arguments
	OutputSchema string // JSON Schema document for results
	Timeout      time.Duration
	Handler      Handler
}

// registeredTool pairs a tool with its compiled input schema.
type registeredTool struct {
	Tool
	input *jsonschema.Schema
}

// Registry maintains the set of registered tools. Registration happens at
// startup; after that the registry is read-only and safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]*registeredTool
	logger *slog.Logger

	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
}

// RegistryConfig contains configuration options for the Registry.
type RegistryConfig struct {
	Logger     *slog.Logger
	Timeout    time.Duration // default per-attempt timeout
	MaxRetries int           // retries after the first attempt; 0 uses DefaultMaxRetries, negative disables retries
	Backoff    time.Duration // base backoff between attempts
}

// NewRegistry creates a new Registry with the given configuration.
func NewRegistry(cfg RegistryConfig) *Registry {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = DefaultMaxRetries
	} else if maxRetries < 0 {
		maxRetries = 0
	}
	backoff := cfg.Backoff
	if backoff == 0 {
		backoff = 250 * time.Millisecond
	}

	return &Registry{
		tools:      make(map[string]*registeredTool),
		logger:     logger.With("component", "tools"),
		timeout:    timeout,
		maxRetries: maxRetries,
		backoff:    backoff,
	}
}

// Register validates and stores a tool. Returns ErrDuplicateTool if the name
// is already taken. The input schema is compiled once, here.
func (r *Registry) Register(tool Tool) error {
	if tool.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if tool.Handler == nil {
		return fmt.Errorf("tool %s: handler is required", tool.Name)
	}

	schema, err := jsonschema.CompileString(tool.Name+".schema.json", tool.InputSchema)
	if err != nil {
		return fmt.Errorf("tool %s: compiling input schema: %w", tool.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, tool.Name)
	}
	r.tools[tool.Name] = &registeredTool{Tool: tool, input: schema}

	r.logger.Info("tool registered", "tool_name", tool.Name)
	return nil
}

// Get returns the tool declaration by name, or false if not registered.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rt, ok := r.tools[name]
	if !ok {
		return Tool{}, false
	}
	return rt.Tool, true
}

// List returns the names of all registered tools.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	return names
}

// Invoke validates the arguments against the tool's input schema and executes
// the handler under the caller's auth context. Validation happens before any
// network call; invalid input never reaches the handler and is never retried.
// Transient failures are retried up to the configured budget with exponential
// backoff; permanent failures and exhausted budgets surface as
// *ToolExecutionError.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage, ac *auth.AuthContext) (json.RawMessage, error) {
	r.mu.RLock()
	rt, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}

	if err := r.validate(rt, args); err != nil {
		r.logger.Warn("tool arguments rejected",
			"tool_name", name,
			"error", err)
		return nil, &SchemaValidationError{Tool: name, Err: err}
	}

	timeout := rt.Timeout
	if timeout == 0 {
		timeout = r.timeout
	}

	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: backoff, 2*backoff, ...
			delay := r.backoff << (attempt - 1)
			r.logger.Debug("retrying tool call",
				"tool_name", name,
				"attempt", attempt+1,
				"delay", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, &ToolExecutionError{Tool: name, StatusCode: statusOf(lastErr), Err: ctx.Err()}
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		result, err := rt.Handler(attemptCtx, ac, args)
		cancel()

		if err == nil {
			r.logger.Debug("tool call succeeded",
				"tool_name", name,
				"attempts", attempt+1)
			return result, nil
		}

		lastErr = err
		if !isTransient(err) {
			r.logger.Warn("tool call failed permanently",
				"tool_name", name,
				"status", statusOf(err),
				"error", err)
			return nil, &ToolExecutionError{Tool: name, StatusCode: statusOf(err), Err: err}
		}

		r.logger.Warn("tool call failed, transient",
			"tool_name", name,
			"attempt", attempt+1,
			"status", statusOf(err),
			"error", err)

		// Caller gave up; stop burning the retry budget
		if ctx.Err() != nil {
			break
		}
	}

	return nil, &ToolExecutionError{Tool: name, StatusCode: statusOf(lastErr), Err: lastErr}
}

// validate checks args against the tool's compiled input schema.
func (r *Registry) validate(rt *registeredTool, args json.RawMessage) error {
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}
	var v any
	if err := json.Unmarshal(args, &v); err != nil {
		return fmt.Errorf("arguments are not valid JSON: %w", err)
	}
	return rt.input.Validate(v)
}
