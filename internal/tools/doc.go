// Package tools is the registry for callable external capabilities.
//
// # Architecture
//
// Tools are registered once at process startup and the registry is immutable
// afterwards, which makes concurrent Invoke safe without coordination beyond
// a read lock. Each tool declares JSON Schema documents for its input and
// output; the input schema is compiled at registration and every invocation
// is validated against it before the handler — and therefore before any
// network call — runs.
//
// # Invocation
//
// Invoke carries the caller's auth context to the handler on every call.
// Handlers forward the caller's bearer token unchanged to the backend
// collaborator; the registry never caches credentials across callers.
//
// Failures are classified by status class: network errors, timeouts, and 5xx
// responses are transient and retried with exponential backoff (bounded);
// 4xx responses are permanent and never retried. A call that exhausts its
// retries surfaces as *ToolExecutionError carrying the tool name and the
// upstream status.
//
// # Errors
//
//   - ErrDuplicateTool: registration-time name collision
//   - ErrToolNotFound: invocation of an unregistered tool
//   - *SchemaValidationError: arguments rejected before the handler ran
//   - *ToolExecutionError: handler failed after the retry budget
package tools
