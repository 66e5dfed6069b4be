// ABOUTME: Task-management tools: create, list, and update tasks
// ABOUTME: Wraps the tasks collaborator client behind schema-validated handlers

package toolset

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/helperhub/agent-gateway/internal/auth"
	"github.com/helperhub/agent-gateway/internal/collab"
	"github.com/helperhub/agent-gateway/internal/tools"
)

// TaskTools returns the task pack bound to the given client.
func TaskTools(client *collab.TasksClient) []tools.Tool {
	h := &taskHandlers{client: client}
	return []tools.Tool{
		{
			Name:         "list_tasks",
			Description:  "List the caller's tasks, optionally filtered by status",
			InputSchema:  `{"type":"object","properties":{"status":{"type":"string","enum":["open","assigned","completed","cancelled"]}},"additionalProperties":false}`,
			OutputSchema: `{"type":"object","properties":{"tasks":{"type":"array"},"count":{"type":"integer"}}}`,
			Handler:      h.ListTasks,
		},
		{
			Name:         "create_task",
			Description:  "Create a new task for the caller",
			InputSchema:  `{"type":"object","properties":{"title":{"type":"string","minLength":1},"description":{"type":"string"},"hourly_rate":{"type":"number","minimum":0},"location_type":{"type":"string","enum":["remote","onsite"]},"zip_code":{"type":"string"},"dates":{"type":"array","items":{"type":"string"}}},"required":["title","description","hourly_rate","location_type","zip_code"],"additionalProperties":false}`,
			OutputSchema: `{"type":"object","properties":{"task_id":{"type":"string"},"title":{"type":"string"},"status":{"type":"string"}}}`,
			Handler:      h.CreateTask,
		},
		{
			Name:         "update_task",
			Description:  "Update an existing task owned by the caller",
			InputSchema:  `{"type":"object","properties":{"task_id":{"type":"string","minLength":1},"title":{"type":"string"},"description":{"type":"string"},"status":{"type":"string","enum":["open","assigned","completed","cancelled"]}},"required":["task_id"],"additionalProperties":false}`,
			OutputSchema: `{"type":"object","properties":{"task_id":{"type":"string"},"title":{"type":"string"},"status":{"type":"string"}}}`,
			Handler:      h.UpdateTask,
		},
	}
}

type taskHandlers struct {
	client *collab.TasksClient
}

type listTasksInput struct {
	Status string `json:"status"`
}

func (h *taskHandlers) ListTasks(ctx context.Context, ac *auth.AuthContext, input json.RawMessage) (json.RawMessage, error) {
	var in listTasksInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	tasks, err := h.client.ListTasks(ctx, ac, in.Status)
	if err != nil {
		return nil, err
	}

	return json.Marshal(map[string]any{"tasks": tasks, "count": len(tasks)})
}

type createTaskInput struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	HourlyRate   float64  `json:"hourly_rate"`
	LocationType string   `json:"location_type"`
	ZipCode      string   `json:"zip_code"`
	Dates        []string `json:"dates"`
}

func (h *taskHandlers) CreateTask(ctx context.Context, ac *auth.AuthContext, input json.RawMessage) (json.RawMessage, error) {
	var in createTaskInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	task, err := h.client.CreateTask(ctx, ac, &collab.CreateTaskRequest{
		Title:        in.Title,
		Description:  in.Description,
		HourlyRate:   in.HourlyRate,
		LocationType: in.LocationType,
		ZipCode:      in.ZipCode,
		Dates:        in.Dates,
	})
	if err != nil {
		return nil, err
	}

	return json.Marshal(map[string]string{"task_id": task.ID, "title": task.Title, "status": task.Status})
}

type updateTaskInput struct {
	TaskID      string `json:"task_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

func (h *taskHandlers) UpdateTask(ctx context.Context, ac *auth.AuthContext, input json.RawMessage) (json.RawMessage, error) {
	var in updateTaskInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	task, err := h.client.UpdateTask(ctx, ac, in.TaskID, &collab.UpdateTaskRequest{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
	})
	if err != nil {
		return nil, err
	}

	return json.Marshal(map[string]string{"task_id": task.ID, "title": task.Title, "status": task.Status})
}
