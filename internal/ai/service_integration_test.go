package ai

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"skillmatch/internal/config"
	"skillmatch/internal/errors"
)

var testLogger = errors.NewLogger(slog.LevelDebug)

func TestNewServiceRequiresAPIKey(t *testing.T) {
	cfg := &config.AIConfig{
		Provider: "gemini",
		Model:    "test-model",
		Timeout:  30 * time.Second,
	}

	_, err := NewService(cfg, testLogger)
	if err == nil {
		t.Fatal("Expected error when API key is missing")
	}

	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("Expected *errors.AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeMissingAPIKey {
		t.Errorf("Expected error code %s, got %s", errors.ErrCodeMissingAPIKey, appErr.Code)
	}
}

func TestNewServiceRejectsUnknownProvider(t *testing.T) {
	cfg := &config.AIConfig{
		Provider: "openai",
		Model:    "test-model",
		Timeout:  30 * time.Second,
		APIKey:   "test-key",
	}

	_, err := NewService(cfg, testLogger)
	if err == nil {
		t.Fatal("Expected error for unsupported provider")
	}
}

func TestCircuitBreakerIntegrationWithService(t *testing.T) {
	cfg := &config.AIConfig{
		Provider:         "gemini",
		Model:            "test-model",
		Timeout:          30 * time.Second,
		APIKey:           "test-key",
		MaxRetries:       1,
		Temperature:      0.5,
		UseSystemPrompts: true,
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      5,
			Interval:         30 * time.Second,
			Timeout:          45 * time.Second,
			MinRequests:      2,
			FailureThreshold: 0.8,
		},
	}

	service, err := NewService(cfg, testLogger)
	if err != nil {
		t.Fatalf("Failed to create service with test key: %v", err)
	}

	// Verify the service has the correct configuration
	if service.config.CircuitBreaker.MaxRequests != 5 {
		t.Errorf("Expected circuit breaker max requests 5, got %d", service.config.CircuitBreaker.MaxRequests)
	}
	if service.config.CircuitBreaker.FailureThreshold != 0.8 {
		t.Errorf("Expected circuit breaker failure threshold 0.8, got %f", service.config.CircuitBreaker.FailureThreshold)
	}

	// Test that the provider has both circuit breakers wired
	geminiProvider, ok := service.Provider.(*GeminiProvider)
	if !ok {
		t.Fatal("Service provider is not of type *GeminiProvider")
	}

	stats := geminiProvider.GetCircuitBreakerStats()

	aiOpsStats, ok := stats["ai_operations"].(map[string]any)
	if !ok {
		t.Fatal("AI operations stats should exist and be a map")
	}
	if name, _ := aiOpsStats["name"].(string); name != "AI-Tailor" {
		t.Errorf("Expected circuit breaker name 'AI-Tailor', got '%s'", name)
	}

	modelOpsStats, ok := stats["model_operations"].(map[string]any)
	if !ok {
		t.Fatal("Model operations stats should exist and be a map")
	}
	if name, _ := modelOpsStats["name"].(string); name != "AI-Model" {
		t.Errorf("Expected model circuit breaker name 'AI-Model', got '%s'", name)
	}

	// Check overall health
	if overallHealthy, _ := stats["overall_healthy"].(bool); !overallHealthy {
		t.Error("Circuit breaker should be healthy initially")
	}
}

func TestBuildTailorPromptsUsesDefaults(t *testing.T) {
	provider := &GeminiProvider{
		config: &config.AIConfig{
			Provider: "gemini",
			Model:    "test-model",
		},
		logger: testLogger,
	}

	systemPrompt, userPrompt := provider.buildTailorPrompts("# Jane Doe", "We need a Go engineer")

	if systemPrompt != DefaultSystemPrompt {
		t.Error("Expected built-in system prompt when no custom prompt is configured")
	}
	if !strings.Contains(userPrompt, "# Jane Doe") {
		t.Error("Expected user prompt to contain the resume markdown")
	}
	if !strings.Contains(userPrompt, "We need a Go engineer") {
		t.Error("Expected user prompt to contain the job description")
	}
}

func TestBuildTailorPromptsInlineOverride(t *testing.T) {
	provider := &GeminiProvider{
		config: &config.AIConfig{
			Provider: "gemini",
			Model:    "test-model",
			CustomPrompts: config.PromptConfig{
				SystemPrompt: "custom system prompt",
				UserPrompt:   "resume: %s job: %s",
			},
		},
		logger: testLogger,
	}

	systemPrompt, userPrompt := provider.buildTailorPrompts("RESUME", "JOB")

	if systemPrompt != "custom system prompt" {
		t.Errorf("Expected inline system prompt, got '%s'", systemPrompt)
	}
	if userPrompt != "resume: RESUME job: JOB" {
		t.Errorf("Expected formatted inline user prompt, got '%s'", userPrompt)
	}
}

func TestResolvePromptPriority(t *testing.T) {
	if got := resolvePrompt("file", "config", "default"); got != "file" {
		t.Errorf("Expected file prompt to win, got '%s'", got)
	}
	if got := resolvePrompt("", "config", "default"); got != "config" {
		t.Errorf("Expected config prompt to win, got '%s'", got)
	}
	if got := resolvePrompt("", "", "default"); got != "default" {
		t.Errorf("Expected default prompt, got '%s'", got)
	}
}
