// ABOUTME: Error types for tool registration and invocation
// ABOUTME: Distinguishes schema rejections from upstream execution failures

package tools

import (
	"context"
	"errors"
	"fmt"
)

// ErrDuplicateTool indicates a tool name is already registered.
var ErrDuplicateTool = errors.New("tool already registered")

// ErrToolNotFound indicates the requested tool is not registered.
var ErrToolNotFound = errors.New("tool not found")

// SchemaValidationError reports arguments that failed the tool's input
// schema. The handler is never invoked for these calls.
type SchemaValidationError struct {
	Tool string
	Err  error
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("tool %s: invalid arguments: %v", e.Tool, e.Err)
}

func (e *SchemaValidationError) Unwrap() error { return e.Err }

// ToolExecutionError reports an upstream failure after the retry budget is
// exhausted. StatusCode is the upstream HTTP status, or 0 for network-level
// failures.
type ToolExecutionError struct {
	Tool       string
	StatusCode int
	Err        error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %s failed (status %d): %v", e.Tool, e.StatusCode, e.Err)
}

func (e *ToolExecutionError) Unwrap() error { return e.Err }

// StatusCoder is implemented by handler errors that carry an upstream HTTP
// status, letting the registry classify them by status class.
type StatusCoder interface {
	StatusCode() int
}

// isTransient reports whether a handler error is worth retrying: network
// failures (status 0), server errors (5xx), and timeouts. Client errors (4xx)
// are permanent.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var sc StatusCoder
	if errors.As(err, &sc) {
		code := sc.StatusCode()
		return code == 0 || code >= 500
	}
	return false
}

// statusOf extracts the upstream status from a handler error, or 0.
func statusOf(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return 0
}
