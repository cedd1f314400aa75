package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sudo-tiz/dnshealth-go/internal/config"
	"github.com/sudo-tiz/dnshealth-go/internal/tasks"
)

const mockTaskID = "mock-task-id"

type mockTasksClient struct{}

func (m *mockTasksClient) Close() error { return nil }
func (m *mockTasksClient) EnqueueAnalyze(_ context.Context, _ string, _ []string) (string, error) {
	return mockTaskID, nil
}
func (m *mockTasksClient) GetTaskStatus(_ context.Context, id string) (*tasks.TaskStatusResponse, error) {
	if id != mockTaskID {
		return nil, fmt.Errorf("not found")
	}
	return &tasks.TaskStatusResponse{TaskID: id, Status: "SUCCESS"}, nil
}

func setupTestServer() *Server {
	cfg := &config.APIConfig{}
	s := NewServer(cfg)
	s.SetTasksClient(&mockTasksClient{})
	return s
}

func fetchCSRFToken(t *testing.T, server *Server) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/csrf-token", nil)
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("csrf-token: expected 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode csrf response: %v", err)
	}
	return body["csrf_token"]
}

func TestCheckEndpoint(t *testing.T) {
	server := setupTestServer()
	token := fetchCSRFToken(t, server)

	payload := checkRequest{Domain: "example.com"}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/api/check", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-CSRF-Token", token)
	w := httptest.NewRecorder()

	server.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var response checkResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.TaskID == "" {
		t.Error("expected task_id in response")
	}
}

func TestCheckEndpointWithoutCSRFIsForbidden(t *testing.T) {
	server := setupTestServer()

	payload := checkRequest{Domain: "example.com"}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/api/check", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	server.Router().ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected status 403 without csrf token, got %d", w.Code)
	}
}

func TestCheckEndpointRejectsInvalidDomain(t *testing.T) {
	server := setupTestServer()
	token := fetchCSRFToken(t, server)

	payload := checkRequest{Domain: "not a domain!!"}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/api/check", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-CSRF-Token", token)
	w := httptest.NewRecorder()

	server.Router().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for invalid domain, got %d", w.Code)
	}
}

func TestGetTaskStatusEndpoint(t *testing.T) {
	server := setupTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/check/"+mockTaskID, nil)
	w := httptest.NewRecorder()

	server.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var response tasks.TaskStatusResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.TaskID != mockTaskID {
		t.Errorf("expected task_id '%s', got '%s'", mockTaskID, response.TaskID)
	}
}

func TestGetTaskStatusEndpointNotFound(t *testing.T) {
	server := setupTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/check/does-not-exist", nil)
	w := httptest.NewRecorder()

	server.Router().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestHealthCheckEndpoint(t *testing.T) {
	server := setupTestServer()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	server.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response["status"] != "ok" {
		t.Errorf("expected status 'ok', got '%s'", response["status"])
	}
}
