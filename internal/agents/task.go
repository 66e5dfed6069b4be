// ABOUTME: Task agent: creates, lists, and updates tasks via the tool registry
// ABOUTME: Hands off to the profile agent when the request is really about the caller's profile

package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/helperhub/agent-gateway/internal/collab"
	"github.com/helperhub/agent-gateway/internal/router"
)

// TaskAgent handles task management requests against the task collaborator.
type TaskAgent struct {
	logger *slog.Logger
}

func (a *TaskAgent) Kind() Kind { return KindTask }

func (a *TaskAgent) CanHandle(intent router.Intent) bool {
	return intent == router.IntentTask
}

// Execute parses the task operation out of the message and performs it.
func (a *TaskAgent) Execute(ctx context.Context, req *TurnRequest) (*TurnResult, error) {
	msg := req.Message

	// The router keys on task vocabulary, but "update my email on my profile"
	// style requests belong to the profile agent.
	if containsAny(msg, "my profile", "my email", "my phone", "my address", "about me") {
		a.logger.Debug("handing off to profile agent")
		return &TurnResult{
			ToolCalls: req.Invoker.Calls(),
			Handoff:   handoff(KindProfile),
		}, nil
	}

	switch {
	case containsAny(msg, "what tasks", "my tasks", "list", "show", "have i posted", "posted"):
		return a.listTasks(ctx, req)
	case containsAny(msg, "mark", "update", "complete", "cancel", "finish"):
		return a.updateTask(ctx, req)
	case containsAny(msg, "create", "post", "new task", "need help"):
		return a.createTask(ctx, req)
	default:
		return a.listTasks(ctx, req)
	}
}

func (a *TaskAgent) listTasks(ctx context.Context, req *TurnRequest) (*TurnResult, error) {
	args, _ := json.Marshal(map[string]string{})
	if status := statusFromMessage(req.Message); status != "" {
		args, _ = json.Marshal(map[string]string{"status": status})
	}

	result, err := req.Invoker.Invoke(ctx, "list_tasks", args)
	if err != nil {
		return nil, err
	}

	var out struct {
		Tasks []collab.Task `json:"tasks"`
		Count int           `json:"count"`
	}
	if err := json.Unmarshal(result, &out); err != nil {
		return nil, fmt.Errorf("decoding list_tasks result: %w", err)
	}

	return &TurnResult{
		Response:  renderTaskList(out.Tasks),
		ToolCalls: req.Invoker.Calls(),
	}, nil
}

func (a *TaskAgent) updateTask(ctx context.Context, req *TurnRequest) (*TurnResult, error) {
	taskID := extractID(req.Message)
	if taskID == "" {
		return &TurnResult{
			Response:  "Which task would you like to update? Please include the task id.",
			ToolCalls: req.Invoker.Calls(),
		}, nil
	}

	status := "completed"
	if containsAny(req.Message, "cancel") {
		status = "cancelled"
	}

	args, _ := json.Marshal(map[string]string{"task_id": taskID, "status": status})
	result, err := req.Invoker.Invoke(ctx, "update_task", args)
	if err != nil {
		return nil, err
	}

	var out struct {
		Title  string `json:"title"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(result, &out); err != nil {
		return nil, fmt.Errorf("decoding update_task result: %w", err)
	}

	return &TurnResult{
		Response:  fmt.Sprintf("Done — %q is now %s.", out.Title, out.Status),
		ToolCalls: req.Invoker.Calls(),
	}, nil
}

func (a *TaskAgent) createTask(ctx context.Context, req *TurnRequest) (*TurnResult, error) {
	rate := extractRate(req.Message)
	zip := extractZip(req.Message)
	if rate == 0 || zip == "" {
		return &TurnResult{
			Response:  "To post a task I need an hourly rate (like $25) and a zip code. Could you include both?",
			ToolCalls: req.Invoker.Calls(),
		}, nil
	}

	locationType := "onsite"
	if containsAny(req.Message, "remote", "online", "virtually") {
		locationType = "remote"
	}

	args, _ := json.Marshal(map[string]any{
		"title":         taskTitle(req.Message),
		"description":   req.Message,
		"hourly_rate":   rate,
		"location_type": locationType,
		"zip_code":      zip,
	})
	result, err := req.Invoker.Invoke(ctx, "create_task", args)
	if err != nil {
		return nil, err
	}

	var out struct {
		TaskID string `json:"task_id"`
		Title  string `json:"title"`
	}
	if err := json.Unmarshal(result, &out); err != nil {
		return nil, fmt.Errorf("decoding create_task result: %w", err)
	}

	return &TurnResult{
		Response:  fmt.Sprintf("Your task %q has been posted (id %s).", out.Title, out.TaskID),
		ToolCalls: req.Invoker.Calls(),
	}, nil
}

// renderTaskList formats tasks into a short readable summary.
func renderTaskList(tasks []collab.Task) string {
	if len(tasks) == 0 {
		return "You don't have any tasks yet."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You have %d task(s):\n", len(tasks))
	for _, t := range tasks {
		fmt.Fprintf(&b, "- %s (%s)\n", t.Title, t.Status)
	}
	return strings.TrimRight(b.String(), "\n")
}

// taskTitle derives a short title from the message: the text after a lead-in
// phrase when present, otherwise the first eight words.
func taskTitle(message string) string {
	lower := strings.ToLower(message)
	for _, leadIn := range []string{"task to ", "task for ", "help with ", "help me "} {
		if idx := strings.Index(lower, leadIn); idx >= 0 {
			rest := strings.TrimSpace(message[idx+len(leadIn):])
			if rest != "" {
				return trimWords(rest, 8)
			}
		}
	}
	return trimWords(strings.TrimSpace(message), 8)
}

// trimWords keeps at most n words of s.
func trimWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
