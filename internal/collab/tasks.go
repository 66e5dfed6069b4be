// ABOUTME: Client for the task-management collaborator
// ABOUTME: Creates, lists, and updates tasks on behalf of the authenticated caller

package collab

import (
	"context"
	"net/http"
	"net/url"

	"github.com/helperhub/agent-gateway/internal/auth"
)

// Task mirrors the task-management service's task resource.
type Task struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Status       string   `json:"status"`
	HourlyRate   float64  `json:"hourly_rate,omitempty"`
	LocationType string   `json:"location_type,omitempty"`
	ZipCode      string   `json:"zip_code,omitempty"`
	Dates        []string `json:"dates,omitempty"`
}

// CreateTaskRequest is the payload for creating a task.
type CreateTaskRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	HourlyRate   float64  `json:"hourly_rate"`
	LocationType string   `json:"location_type"`
	ZipCode      string   `json:"zip_code"`
	Dates        []string `json:"dates"`
}

// UpdateTaskRequest is the payload for updating a task. Zero-valued fields
// are omitted so the collaborator treats them as "unchanged".
type UpdateTaskRequest struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
}

// TasksClient talks to the task-management collaborator.
type TasksClient struct {
	*Client
}

// NewTasksClient creates a task-management client.
func NewTasksClient(baseURL string) *TasksClient {
	return &TasksClient{Client: NewClient("tasks", baseURL)}
}

// ListTasks returns the caller's tasks, optionally filtered by status.
func (c *TasksClient) ListTasks(ctx context.Context, ac *auth.AuthContext, status string) ([]Task, error) {
	path := "/api/v1/tasks"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}

	var resp struct {
		Tasks []Task `json:"tasks"`
	}
	if err := c.doJSON(ctx, ac, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// CreateTask creates a new task for the caller.
func (c *TasksClient) CreateTask(ctx context.Context, ac *auth.AuthContext, req *CreateTaskRequest) (*Task, error) {
	var task Task
	if err := c.doJSON(ctx, ac, http.MethodPost, "/api/v1/tasks", req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask updates an existing task owned by the caller.
func (c *TasksClient) UpdateTask(ctx context.Context, ac *auth.AuthContext, taskID string, req *UpdateTaskRequest) (*Task, error) {
	var task Task
	path := "/api/v1/tasks/" + url.PathEscape(taskID)
	if err := c.doJSON(ctx, ac, http.MethodPatch, path, req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}
