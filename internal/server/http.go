package server

import (
	"time"

	"skillmatch/internal/config"
	smErrors "skillmatch/internal/errors"
	"skillmatch/internal/types"
)

// MatchRequest represents the request body for the match endpoint
type MatchRequest struct {
	Jobs   []types.JobPosting   `json:"jobs"`
	Resume types.ResumeDocument `json:"resume"`
}

// RenderRequest represents the request body for the render endpoint
type RenderRequest struct {
	Profile types.Profile        `json:"profile"`
	Resume  types.ResumeDocument `json:"resume"`
	Locale  string               `json:"locale,omitempty"`
}

// RenderResponse represents the response body for the render endpoint
type RenderResponse struct {
	Markdown string `json:"markdown"`
}

// ParseRequest represents the request body for the parse endpoint
type ParseRequest struct {
	Markdown string `json:"markdown"`
}

// TailorRequest represents the request body for the tailor endpoint
type TailorRequest struct {
	ResumeMarkdown string `json:"resumeMarkdown"`
	JobDescription string `json:"jobDescription"`
}

// ScoreRequest represents the request body for the score endpoint
type ScoreRequest struct {
	JobText    string `json:"job_text"`
	ResumeText string `json:"resume_text"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// TLS Configuration
	TLSConfig config.TLSConfig

	// Certificate management
	CertificateManager *CertificateManager

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Logger
	Logger *smErrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
// (Refactored to reduce long parameter list in NewServer)
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, logger *smErrors.Logger) *Server {
	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(cfg.RateLimit, logger)
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Logger:         logger,
	}
}
