package scorer

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/big"
	"net"
	"net/http"
	"time"

	"skillmatch/internal/config"
	smErrors "skillmatch/internal/errors"
	"skillmatch/internal/types"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Client calls the external semantic scorer service. The scorer takes
// raw job and resume text and returns a similarity score in [0,1],
// complementing the local n-gram matching engine.
type Client struct {
	httpClient *http.Client
	config     *config.ScorerConfig
	breaker    *gobreaker.CircuitBreaker[types.SemanticScoreOutput]
	logger     *smErrors.Logger
}

// NewClient creates a scorer client from configuration
func NewClient(cfg *config.ScorerConfig, logger *smErrors.Logger) *Client {
	var breaker *gobreaker.CircuitBreaker[types.SemanticScoreOutput]
	if cfg.CircuitBreaker.Enabled {
		settings := gobreaker.Settings{
			Name:        "Scorer",
			MaxRequests: cfg.CircuitBreaker.MaxRequests,
			Interval:    cfg.CircuitBreaker.Interval,
			Timeout:     cfg.CircuitBreaker.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= cfg.CircuitBreaker.MinRequests &&
					failureRatio >= cfg.CircuitBreaker.FailureThreshold
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				logger.Info("Circuit breaker state changed",
					"name", name,
					"from", from.String(),
					"to", to.String())
			},
		}
		breaker = gobreaker.NewCircuitBreaker[types.SemanticScoreOutput](settings)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		config:  cfg,
		breaker: breaker,
		logger:  logger,
	}
}

// Score sends the job and resume text to the scorer service and returns
// its semantic match score.
func (c *Client) Score(ctx context.Context, input types.SemanticScoreInput) (types.SemanticScoreOutput, error) {
	tracer := otel.Tracer("skillmatch.scorer")
	ctx, span := tracer.Start(ctx, "scorer.score")
	defer span.End()

	span.SetAttributes(
		attribute.Int("input.job_length", len(input.JobText)),
		attribute.Int("input.resume_length", len(input.ResumeText)),
	)

	output, err := c.execute(func() (types.SemanticScoreOutput, error) {
		return c.scoreWithRetry(ctx, input)
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return types.SemanticScoreOutput{}, err
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Float64("scorer.match_score", output.MatchScore),
	)
	return output, nil
}

// execute runs fn with circuit breaker protection when configured
func (c *Client) execute(fn func() (types.SemanticScoreOutput, error)) (types.SemanticScoreOutput, error) {
	if c.breaker == nil {
		return fn()
	}
	return c.breaker.Execute(fn)
}

// scoreWithRetry calls the scorer with retry logic and exponential backoff
func (c *Client) scoreWithRetry(ctx context.Context, input types.SemanticScoreInput) (types.SemanticScoreOutput, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("Retrying scorer request",
				"attempt", attempt,
				"max_retries", c.config.MaxRetries,
				"error", lastErr.Error())

			baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			jitterMax := big.NewInt(int64(float64(baseDelay) * 0.1))
			jitterBig, _ := rand.Int(rand.Reader, jitterMax)
			backoff := min(baseDelay+time.Duration(jitterBig.Int64()), 30*time.Second)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return types.SemanticScoreOutput{}, ctx.Err()
			}
		}

		output, retryable, err := c.scoreOnce(ctx, input)
		if err == nil {
			return output, nil
		}

		lastErr = err
		if !retryable {
			break
		}
	}

	c.logger.LogError(lastErr, "Scorer request failed after all retry attempts",
		"url", c.config.URL,
		"total_attempts", c.config.MaxRetries+1)

	return types.SemanticScoreOutput{}, smErrors.NewNetworkError(smErrors.ErrCodeScorerFailed,
		"Semantic scorer request failed", lastErr)
}

// scoreOnce performs a single scorer call. The second return value
// reports whether the failure is worth retrying.
func (c *Client) scoreOnce(ctx context.Context, input types.SemanticScoreInput) (types.SemanticScoreOutput, bool, error) {
	var output types.SemanticScoreOutput

	body, err := json.Marshal(input)
	if err != nil {
		return output, false, fmt.Errorf("failed to encode scorer request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(body))
	if err != nil {
		return output, false, fmt.Errorf("failed to build scorer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("X-API-Key", c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network failures (timeouts, refused connections) are retryable
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return output, true, err
		}
		return output, true, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		retryable := isRetryableStatus(resp.StatusCode)
		return output, retryable, fmt.Errorf("scorer returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&output); err != nil {
		return output, false, fmt.Errorf("failed to decode scorer response: %w", err)
	}

	if output.MatchScore < 0 || output.MatchScore > 1 {
		return types.SemanticScoreOutput{}, false,
			fmt.Errorf("scorer returned score %v outside [0,1]", output.MatchScore)
	}

	return output, false, nil
}

const maxResponseBytes = 1 << 20

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (c *Client) GetCircuitBreakerStats() map[string]any {
	if c.breaker == nil {
		return map[string]any{
			"enabled": false,
		}
	}

	return map[string]any{
		"name":    c.breaker.Name(),
		"state":   c.breaker.State().String(),
		"counts":  c.breaker.Counts(),
		"enabled": true,
	}
}

// IsHealthy returns true if the circuit breaker is in closed state
func (c *Client) IsHealthy() bool {
	if c.breaker == nil {
		return true
	}
	return c.breaker.State() == gobreaker.StateClosed
}
