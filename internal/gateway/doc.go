// Package gateway is the HTTP surface of the agent gateway.
//
// It exposes three authenticated endpoints — POST /ai/chat to run a turn,
// GET /ai/threads to list the caller's threads, and
// GET /ai/threads/{id}/messages to read a thread's log — plus an
// unauthenticated /healthz. Every error response carries a machine-readable
// kind so clients can distinguish bad requests from upstream failures.
//
// The gateway holds no conversation state: it authenticates, drops duplicate
// deliveries, and delegates to the orchestrator.
package gateway
