//go:build e2e

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/sudo-tiz/dnshealth-go/internal/tasks"
)

const (
	defaultAPIURL = "http://localhost:5000"
	testDomain    = "example.com"
	maxPollTime   = 60 * time.Second
	pollInterval  = 2 * time.Second
	rateLimitTries = 150
)

// getAPIBaseURL returns the API URL for testing
func getAPIBaseURL() string {
	if url := os.Getenv("API_BASE_URL"); url != "" {
		return url
	}
	return defaultAPIURL
}

func fetchE2ECSRFToken(t *testing.T, apiURL string) string {
	t.Helper()
	resp, err := http.Get(apiURL + "/api/csrf-token")
	if err != nil {
		t.Fatalf("failed to fetch csrf token: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode csrf response: %v", err)
	}
	return body["csrf_token"]
}

// Test01_AnalyzeDomain submits a full analysis and polls it to completion.
func Test01_AnalyzeDomain(t *testing.T) {
	if os.Getenv("RUN_E2E_TESTS") != "1" {
		t.Skip("E2E tests skipped (set RUN_E2E_TESTS=1 to run)")
	}

	apiURL := getAPIBaseURL()
	t.Logf("Testing against API: %s", apiURL)

	token := fetchE2ECSRFToken(t, apiURL)

	payload := map[string]interface{}{
		"domain": testDomain,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, apiURL+"/api/check", bytes.NewBuffer(jsonData))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-CSRF-Token", token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("failed to submit analysis: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 200, got %d. Body: %s", resp.StatusCode, string(bodyBytes))
	}

	var checkResp map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&checkResp); err != nil {
		t.Fatalf("failed to decode check response: %v", err)
	}

	taskID, ok := checkResp["task_id"].(string)
	if !ok || taskID == "" {
		t.Fatalf("no task_id returned: %v", checkResp)
	}

	t.Logf("Task ID: %s", taskID)

	result := pollForTaskResult(t, apiURL, taskID)

	if result.Status != "SUCCESS" {
		errorMsg := ""
		if result.Error != nil {
			errorMsg = *result.Error
		}
		t.Fatalf("task did not complete successfully: status=%s, error=%s", result.Status, errorMsg)
	}

	if result.Result == nil {
		t.Fatal("task completed but result is nil")
	}

	if result.Result.Checks.Len() == 0 {
		t.Fatal("task completed but no checks present in report")
	}

	t.Logf("Report summary: %+v", result.Result.Summary)

	t.Log("Sleeping 2s before next test...")
	time.Sleep(2 * time.Second)
}

// pollForTaskResult polls the API for task completion
func pollForTaskResult(t *testing.T, apiURL, taskID string) tasks.TaskStatusResponse {
	t.Helper()

	deadline := time.Now().Add(maxPollTime)
	var lastResult tasks.TaskStatusResponse

	for time.Now().Before(deadline) {
		resp, err := http.Get(fmt.Sprintf("%s/api/check/%s", apiURL, taskID))
		if err != nil {
			t.Logf("Poll error: %v", err)
			time.Sleep(pollInterval)
			continue
		}

		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if err := json.Unmarshal(bodyBytes, &lastResult); err != nil {
			t.Logf("Parse error: %v", err)
			time.Sleep(pollInterval)
			continue
		}

		t.Logf("Task status: %s", lastResult.Status)

		if lastResult.Status == "SUCCESS" || lastResult.Status == "FAILURE" {
			return lastResult
		}

		time.Sleep(pollInterval)
	}

	t.Fatalf("timeout waiting for task result after %v. Last status: %s", maxPollTime, lastResult.Status)
	return lastResult
}

// Test02_MetricsEndpoint tests that Prometheus metrics are exposed correctly.
// Must run AFTER Test01 to see metrics from the analysis.
func Test02_MetricsEndpoint(t *testing.T) {
	if os.Getenv("RUN_E2E_TESTS") != "1" {
		t.Skip("E2E tests skipped (set RUN_E2E_TESTS=1 to run)")
	}

	apiURL := getAPIBaseURL()
	t.Logf("Testing API metrics endpoint: %s/metrics", apiURL)

	resp, err := http.Get(apiURL + "/metrics")
	if err != nil {
		t.Fatalf("API metrics endpoint unreachable: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 OK, got %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read API metrics: %v", err)
	}

	metricsText := string(body)

	if !strings.Contains(metricsText, "go_goroutines") {
		t.Fatalf("basic Prometheus metrics not found (go_goroutines)")
	}

	t.Log("API Prometheus metrics endpoint working")

	checkMetrics := []string{
		"dnshealth_check_total",
		"dnshealth_analyze_duration_seconds",
	}

	found := 0
	for _, metric := range checkMetrics {
		if strings.Contains(metricsText, metric) {
			found++
			t.Logf("found metric: %s", metric)
		}
	}

	if found == 0 {
		t.Log("no analysis metrics found (expected if worker runs out-of-process with its own /metrics)")
	}

	t.Log("Sleeping 1s before next test...")
	time.Sleep(1 * time.Second)
}

// Test03_RateLimiting tests that rate limiting works correctly.
// Must run LAST as it exhausts the rate limit.
func Test03_RateLimiting(t *testing.T) {
	if os.Getenv("RUN_E2E_TESTS") != "1" {
		t.Skip("E2E tests skipped (set RUN_E2E_TESTS=1 to run)")
	}

	apiURL := getAPIBaseURL()
	t.Logf("Testing rate limiting against: %s", apiURL)

	token := fetchE2ECSRFToken(t, apiURL)
	payload := map[string]interface{}{"domain": "ratelimit-test.example"}
	jsonData, _ := json.Marshal(payload)

	var got429 bool
	var successCount int

	for i := 0; i < rateLimitTries; i++ {
		req, _ := http.NewRequest(http.MethodPost, apiURL+"/api/check", bytes.NewBuffer(jsonData))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-CSRF-Token", token)

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Logf("request %d failed with error: %v", i+1, err)
			continue
		}
		statusCode := resp.StatusCode
		resp.Body.Close()

		if statusCode == http.StatusOK {
			successCount++
		} else if statusCode == http.StatusTooManyRequests {
			t.Logf("rate limit triggered at request %d (after %d successful requests)", i+1, successCount)
			got429 = true
			break
		}

		time.Sleep(10 * time.Millisecond)
	}

	if !got429 {
		t.Errorf("rate limit not triggered after %d requests (%d succeeded) - rate limiting may be disabled or threshold too high",
			rateLimitTries, successCount)
	}
}
