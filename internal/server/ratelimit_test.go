package server

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"skillmatch/internal/config"
	"skillmatch/internal/errors"
)

func testLogger() *errors.Logger {
	logger, _ := errors.New("error")
	return logger
}

func newTestRateLimiter(t *testing.T, requestsPerMin, burst int) *RateLimiter {
	t.Helper()
	rl := NewRateLimiter(&config.RateLimitConfig{
		Enabled:        true,
		RequestsPerMin: requestsPerMin,
		BurstCapacity:  burst,
	}, testLogger())
	t.Cleanup(rl.Close)
	return rl
}

func TestRateLimiterBurstExhaustion(t *testing.T) {
	rl := newTestRateLimiter(t, 60, 2)

	assert.True(t, rl.Allow("ip:10.0.0.1"))
	assert.True(t, rl.Allow("ip:10.0.0.1"))
	assert.False(t, rl.Allow("ip:10.0.0.1"), "third request should exceed the burst")

	// Other keys get their own bucket.
	assert.True(t, rl.Allow("ip:10.0.0.2"))
}

func TestRateLimiterStats(t *testing.T) {
	rl := newTestRateLimiter(t, 120, 5)

	rl.Allow("api:key-1")
	rl.Allow("ip:10.0.0.1")

	stats := rl.GetStats()
	assert.Equal(t, 2, stats["active_limiters"])
	assert.InDelta(t, 2.0, stats["rate_per_second"], 0.001)
	assert.InDelta(t, 120.0, stats["rate_per_minute"], 0.001)
	assert.Equal(t, 5, stats["burst_capacity"])
}

func TestRateLimiterSweepEvictsIdleBuckets(t *testing.T) {
	rl := newTestRateLimiter(t, 60, 1)

	rl.Allow("ip:stale")
	rl.Allow("ip:fresh")

	rl.mu.Lock()
	rl.lastSeen["ip:stale"] = time.Now().Add(-limiterIdleEviction - time.Minute)
	rl.mu.Unlock()

	rl.sweep()

	stats := rl.GetStats()
	assert.Equal(t, 1, stats["active_limiters"])

	rl.mu.Lock()
	_, staleKept := rl.buckets["ip:stale"]
	_, freshKept := rl.buckets["ip:fresh"]
	rl.mu.Unlock()
	assert.False(t, staleKept)
	assert.True(t, freshKept)
}

func TestRateLimitKey(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		byAPIKey bool
		byIP     bool
		want     string
	}{
		{
			name:     "api key header wins",
			headers:  map[string]string{"X-API-Key": "secret-1"},
			byAPIKey: true,
			byIP:     true,
			want:     "api:secret-1",
		},
		{
			name:     "bearer token as api key",
			headers:  map[string]string{"Authorization": "Bearer tok-2"},
			byAPIKey: true,
			want:     "api:tok-2",
		},
		{
			name:     "falls back to ip without api key",
			byAPIKey: true,
			byIP:     true,
			want:     "ip:192.0.2.10",
		},
		{
			name: "ip only",
			byIP: true,
			want: "ip:192.0.2.10",
		},
		{
			name:    "no dimension enabled",
			headers: map[string]string{"X-API-Key": "secret-1"},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/v1/match", nil)
			r.RemoteAddr = "192.0.2.10:54321"
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, rateLimitKey(r, tt.byAPIKey, tt.byIP))
		})
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "first parseable forwarded entry",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "garbage, 203.0.113.7, 10.0.0.1"},
			want:       "203.0.113.7",
		},
		{
			name:       "real ip header",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Real-IP": "198.51.100.4"},
			want:       "198.51.100.4",
		},
		{
			name:       "unparseable real ip ignored",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Real-IP": "not-an-ip"},
			want:       "10.0.0.1",
		},
		{
			name:       "remote addr without port",
			remoteAddr: "10.0.0.9",
			want:       "10.0.0.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientIP(r))
		})
	}
}
