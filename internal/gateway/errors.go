// ABOUTME: Error taxonomy mapping internal failures to HTTP responses
// ABOUTME: Every error body carries a machine-readable kind alongside the message

package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/helperhub/agent-gateway/internal/orchestrator"
	"github.com/helperhub/agent-gateway/internal/store"
	"github.com/helperhub/agent-gateway/internal/tools"
)

// Error kinds returned in response bodies.
const (
	KindInvalidRequest    = "invalid_request"
	KindAuthorization     = "authorization_error"
	KindNotFound          = "not_found"
	KindDuplicateDelivery = "duplicate_delivery"
	KindToolExecution     = "tool_execution_error"
	KindLoopLimit         = "loop_limit_exceeded"
	KindInternal          = "internal_error"
)

// errorBody is the JSON error envelope.
type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// writeTurnError classifies a turn failure and writes the matching response.
// Internal details never reach the body for unclassified errors.
func (g *Gateway) writeTurnError(w http.ResponseWriter, err error) {
	var schemaErr *tools.SchemaValidationError
	var execErr *tools.ToolExecutionError

	switch {
	case errors.As(err, &schemaErr):
		writeError(w, http.StatusBadRequest, KindInvalidRequest, schemaErr.Error())
	case errors.As(err, &execErr):
		writeError(w, http.StatusBadGateway, KindToolExecution, "a backing service failed to respond")
	case errors.Is(err, orchestrator.ErrLoopLimitExceeded):
		writeError(w, http.StatusInternalServerError, KindLoopLimit, "the request required too many tool calls")
	case errors.Is(err, orchestrator.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, KindInvalidRequest, "message is required")
	case errors.Is(err, store.ErrThreadNotFound):
		writeError(w, http.StatusNotFound, KindNotFound, "thread not found")
	default:
		g.logger.Error("unclassified turn error", "error", err)
		writeError(w, http.StatusInternalServerError, KindInternal, "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{Error: msg, Kind: kind})
}
