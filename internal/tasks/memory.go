package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sudo-tiz/dnshealth-go/internal/engine"
)

type memoryClient struct {
	mu    sync.Mutex
	tasks map[string]*TaskStatusResponse
	ttl   map[string]time.Time
	eng   *engine.Engine
}

// NewMemoryClient creates in-memory task queue for dev/testing without Redis.
// Uses background context for analysis to avoid HTTP timeout coupling.
// Returns ClientInterface for consistent API with Asynq implementation.
func NewMemoryClient(eng *engine.Engine) ClientInterface {
	return &memoryClient{
		tasks: make(map[string]*TaskStatusResponse),
		ttl:   make(map[string]time.Time),
		eng:   eng,
	}
}

// EnqueueAnalyze runs the analysis in a background goroutine.
// Pragmatic choice: decouple from HTTP request context to avoid premature cancellation.
func (m *memoryClient) EnqueueAnalyze(_ context.Context, domain string, checks []string) (string, error) {
	id := "mem-" + time.Now().Format("20060102150405.000000000")

	m.mu.Lock()
	m.tasks[id] = &TaskStatusResponse{TaskID: id, Status: "PENDING"}
	m.ttl[id] = time.Now().Add(1 * time.Hour)
	m.mu.Unlock()

	// Use independent context - HTTP request may timeout before analysis completes
	go func() {
		taskCtx := context.Background()
		rep, err := m.eng.Analyze(taskCtx, domain, checks)

		m.mu.Lock()
		defer m.mu.Unlock()
		if err != nil {
			msg := err.Error()
			m.tasks[id] = &TaskStatusResponse{TaskID: id, Status: "FAILURE", Error: &msg}
			return
		}
		m.tasks[id] = &TaskStatusResponse{TaskID: id, Status: "SUCCESS", Result: rep}
	}()

	return id, nil
}

func (m *memoryClient) Close() error {
	return nil
}

// GetTaskStatus returns PENDING while executing, SUCCESS when done.
func (m *memoryClient) GetTaskStatus(_ context.Context, taskID string) (*TaskStatusResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res, exists := m.tasks[taskID]
	if !exists {
		return nil, fmt.Errorf("not found")
	}

	return res, nil
}
