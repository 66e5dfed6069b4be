// ABOUTME: Tests for the collaborator HTTP clients against httptest fakes
// ABOUTME: Verifies token forwarding, status-classed errors, and payload shapes

package collab

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helperhub/agent-gateway/internal/auth"
)

func testAuth() *auth.AuthContext {
	return &auth.AuthContext{UserID: "user-1", Token: "caller-token"}
}

func TestClientForwardsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{"tasks": []Task{}})
	}))
	defer srv.Close()

	client := NewTasksClient(srv.URL)
	_, err := client.ListTasks(context.Background(), testAuth(), "")
	require.NoError(t, err)
	assert.Equal(t, "Bearer caller-token", gotAuth, "caller's token is forwarded unchanged")
}

func TestClientUpstreamErrorCarriesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "task not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewTasksClient(srv.URL)
	_, err := client.UpdateTask(context.Background(), testAuth(), "missing", &UpdateTaskRequest{Status: "completed"})

	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, http.StatusNotFound, callErr.StatusCode())
	assert.Contains(t, callErr.Body, "task not found")
}

func TestClientNetworkErrorHasStatusZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := NewTasksClient(srv.URL)
	_, err := client.ListTasks(context.Background(), testAuth(), "")

	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, 0, callErr.StatusCode())
}

func TestListTasksStatusFilter(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(map[string]any{"tasks": []Task{{ID: "1", Title: "Mow", Status: "open"}}})
	}))
	defer srv.Close()

	client := NewTasksClient(srv.URL)
	tasks, err := client.ListTasks(context.Background(), testAuth(), "open")
	require.NoError(t, err)
	assert.Equal(t, "status=open", gotQuery)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Mow", tasks[0].Title)
}

func TestCreateTaskPostsPayload(t *testing.T) {
	var gotBody CreateTaskRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(Task{ID: "abc", Title: gotBody.Title, Status: "open"})
	}))
	defer srv.Close()

	client := NewTasksClient(srv.URL)
	task, err := client.CreateTask(context.Background(), testAuth(), &CreateTaskRequest{
		Title:        "Mow lawn",
		Description:  "front and back",
		HourlyRate:   30,
		LocationType: "onsite",
		ZipCode:      "78701",
	})
	require.NoError(t, err)
	assert.Equal(t, "abc", task.ID)
	assert.Equal(t, "Mow lawn", gotBody.Title)
	assert.Equal(t, float64(30), gotBody.HourlyRate)
}

func TestSearchHelpers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/helpers/search", r.URL.Path)
		var req SearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "78701", req.ZipCode)
		json.NewEncoder(w).Encode(map[string]any{
			"helpers": []Helper{{ID: "h1", Name: "Pat", HourlyRate: 25}},
		})
	}))
	defer srv.Close()

	client := NewSearchClient(srv.URL)
	helpers, err := client.SearchHelpers(context.Background(), testAuth(), &SearchRequest{ZipCode: "78701"})
	require.NoError(t, err)
	require.Len(t, helpers, 1)
	assert.Equal(t, "Pat", helpers[0].Name)
}

func TestProfileRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/profile/me", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(Profile{UserID: "user-1", Email: "old@example.com"})
		case http.MethodPatch:
			var req UpdateProfileRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			json.NewEncoder(w).Encode(Profile{UserID: "user-1", Email: req.Email})
		}
	}))
	defer srv.Close()

	client := NewProfileClient(srv.URL)

	profile, err := client.GetProfile(context.Background(), testAuth())
	require.NoError(t, err)
	assert.Equal(t, "old@example.com", profile.Email)

	updated, err := client.UpdateProfile(context.Background(), testAuth(), &UpdateProfileRequest{Email: "new@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", updated.Email)
}
