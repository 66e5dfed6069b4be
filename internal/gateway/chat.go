// ABOUTME: Chat and thread-history handlers for the gateway
// ABOUTME: POST /ai/chat runs a turn; GET /ai/threads/{id}/messages reads the log

package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/helperhub/agent-gateway/internal/auth"
	"github.com/helperhub/agent-gateway/internal/store"
)

// ChatRequest is the JSON body for POST /ai/chat.
type ChatRequest struct {
	Message  string `json:"message"`
	ThreadID string `json:"thread_id,omitempty"`
}

// ChatResponse is the JSON response for POST /ai/chat.
type ChatResponse struct {
	Response  string `json:"response"`
	ThreadID  string `json:"thread_id"`
	AgentUsed string `json:"agent_used"`
}

// MessageView is one message in a thread history response.
type MessageView struct {
	ID        string         `json:"id"`
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	AgentID   string         `json:"agent_id,omitempty"`
	ToolCalls []ToolCallView `json:"tool_calls,omitempty"`
	IsError   bool           `json:"is_error,omitempty"`
	Seq       int64          `json:"seq"`
	CreatedAt string         `json:"created_at"`
}

// ToolCallView is one recorded tool call in a message view.
type ToolCallView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ThreadMessagesResponse is the JSON response for GET /ai/threads/{id}/messages.
type ThreadMessagesResponse struct {
	ThreadID string        `json:"thread_id"`
	Messages []MessageView `json:"messages"`
}

// ThreadView is one thread in a thread list response.
type ThreadView struct {
	ID        string `json:"id"`
	LastAgent string `json:"last_agent,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ThreadListResponse is the JSON response for GET /ai/threads.
type ThreadListResponse struct {
	Threads []ThreadView `json:"threads"`
}

// handleChat runs one conversational turn.
func (g *Gateway) handleChat(w http.ResponseWriter, r *http.Request) {
	ac := auth.MustFromContext(r.Context())

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, KindInvalidRequest, "invalid JSON body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, KindInvalidRequest, "message is required")
		return
	}

	if g.guard.Duplicate(ac.UserID, req.ThreadID, req.Message) {
		g.logger.Debug("duplicate delivery dropped",
			"user_id", ac.UserID, "thread_id", req.ThreadID)
		writeError(w, http.StatusConflict, KindDuplicateDelivery, "duplicate message delivery")
		return
	}

	result, err := g.orch.HandleTurn(r.Context(), ac, req.ThreadID, req.Message)
	if err != nil {
		// The guard recorded this delivery before the outcome was known;
		// forget it so a retry gets a fresh attempt instead of a 409.
		g.guard.Forget(ac.UserID, req.ThreadID, req.Message)
		g.writeTurnError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		Response:  result.Response,
		ThreadID:  result.ThreadID,
		AgentUsed: result.AgentUsed,
	})
}

// handleThreadMessages returns a thread's message log in seq order.
func (g *Gateway) handleThreadMessages(w http.ResponseWriter, r *http.Request) {
	ac := auth.MustFromContext(r.Context())

	threadID := r.PathValue("id")
	if threadID == "" {
		writeError(w, http.StatusBadRequest, KindInvalidRequest, "thread id is required")
		return
	}

	thread, err := g.store.GetThread(r.Context(), threadID, ac.UserID)
	if err != nil {
		g.writeTurnError(w, err)
		return
	}

	resp := ThreadMessagesResponse{
		ThreadID: thread.ID,
		Messages: make([]MessageView, len(thread.Messages)),
	}
	for i, msg := range thread.Messages {
		resp.Messages[i] = messageView(msg)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleListThreads returns the caller's threads, most recent first.
func (g *Gateway) handleListThreads(w http.ResponseWriter, r *http.Request) {
	ac := auth.MustFromContext(r.Context())

	threads, err := g.store.ListThreads(r.Context(), ac.UserID, 50)
	if err != nil {
		g.writeTurnError(w, err)
		return
	}

	resp := ThreadListResponse{Threads: make([]ThreadView, len(threads))}
	for i, t := range threads {
		resp.Threads[i] = ThreadView{
			ID:        t.ID,
			LastAgent: t.LastAgent,
			CreatedAt: t.CreatedAt.Format(time.RFC3339),
			UpdatedAt: t.UpdatedAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func messageView(msg *store.Message) MessageView {
	view := MessageView{
		ID:        msg.ID,
		Role:      msg.Role,
		Content:   msg.Content,
		AgentID:   msg.AgentID,
		IsError:   msg.IsError,
		Seq:       msg.Seq,
		CreatedAt: msg.CreatedAt.Format(time.RFC3339),
	}
	for _, tc := range msg.ToolCalls {
		view.ToolCalls = append(view.ToolCalls, ToolCallView{
			ID:     tc.ID,
			Name:   tc.Name,
			Status: tc.Status,
			Error:  tc.Error,
		})
	}
	return view
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
