package scorer

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"skillmatch/internal/config"
	"skillmatch/internal/errors"
	"skillmatch/internal/types"
)

var testLogger = errors.NewLogger(slog.LevelDebug)

func testClient(url string, maxRetries int) *Client {
	return NewClient(&config.ScorerConfig{
		Enabled:    true,
		URL:        url,
		Timeout:    5 * time.Second,
		MaxRetries: maxRetries,
		APIKey:     "test-key",
	}, testLogger)
}

func TestScoreSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("X-API-Key"); got != "test-key" {
			t.Errorf("Expected API key header 'test-key', got '%s'", got)
		}

		var input types.SemanticScoreInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			t.Fatalf("Failed to decode request body: %v", err)
		}
		if input.JobText != "go developer" || input.ResumeText != "golang engineer" {
			t.Errorf("Unexpected request payload: %+v", input)
		}

		_ = json.NewEncoder(w).Encode(types.SemanticScoreOutput{MatchScore: 0.87})
	}))
	defer server.Close()

	client := testClient(server.URL, 0)

	output, err := client.Score(context.Background(), types.SemanticScoreInput{
		JobText:    "go developer",
		ResumeText: "golang engineer",
	})
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if output.MatchScore != 0.87 {
		t.Errorf("Expected score 0.87, got %v", output.MatchScore)
	}
}

func TestScoreRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(types.SemanticScoreOutput{MatchScore: 0.5})
	}))
	defer server.Close()

	client := testClient(server.URL, 2)

	output, err := client.Score(context.Background(), types.SemanticScoreInput{
		JobText:    "job",
		ResumeText: "resume",
	})
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if output.MatchScore != 0.5 {
		t.Errorf("Expected score 0.5, got %v", output.MatchScore)
	}
	if calls.Load() != 2 {
		t.Errorf("Expected 2 calls, got %d", calls.Load())
	}
}

func TestScoreDoesNotRetryOnBadRequest(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := testClient(server.URL, 3)

	_, err := client.Score(context.Background(), types.SemanticScoreInput{JobText: "j", ResumeText: "r"})
	if err == nil {
		t.Fatal("Expected error for bad request")
	}
	if calls.Load() != 1 {
		t.Errorf("Expected a single call for non-retryable status, got %d", calls.Load())
	}

	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("Expected *errors.AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeScorerFailed {
		t.Errorf("Expected error code %s, got %s", errors.ErrCodeScorerFailed, appErr.Code)
	}
}

func TestScoreRejectsOutOfRangeScore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(types.SemanticScoreOutput{MatchScore: 1.5})
	}))
	defer server.Close()

	client := testClient(server.URL, 0)

	if _, err := client.Score(context.Background(), types.SemanticScoreInput{JobText: "j", ResumeText: "r"}); err == nil {
		t.Fatal("Expected error for score outside [0,1]")
	}
}

func TestCircuitBreakerStats(t *testing.T) {
	client := NewClient(&config.ScorerConfig{
		Enabled:    true,
		URL:        "http://localhost:0",
		Timeout:    time.Second,
		MaxRetries: 0,
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      3,
			Interval:         time.Minute,
			Timeout:          time.Minute,
			MinRequests:      3,
			FailureThreshold: 0.6,
		},
	}, testLogger)

	stats := client.GetCircuitBreakerStats()
	if name, _ := stats["name"].(string); name != "Scorer" {
		t.Errorf("Expected breaker name 'Scorer', got '%s'", name)
	}
	if !client.IsHealthy() {
		t.Error("Expected breaker to be healthy initially")
	}
}

func TestCircuitBreakerDisabledStats(t *testing.T) {
	client := testClient("http://localhost:0", 0)

	stats := client.GetCircuitBreakerStats()
	if enabled, _ := stats["enabled"].(bool); enabled {
		t.Error("Expected breaker to report enabled=false when not configured")
	}
	if !client.IsHealthy() {
		t.Error("Expected client without breaker to report healthy")
	}
}
