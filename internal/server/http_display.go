package server

import "fmt"

// displayServerInfo shows server configuration information
func (s *Server) displayServerInfo() {
	s.displayEndpoints()
	s.displayAuthInfo()
	s.displayRequestLimitInfo()
	s.displayRateLimitInfo()
	s.displayTLSInfo()
}

// displayTLSInfo shows the TLS mode and auto-reload state
func (s *Server) displayTLSInfo() {
	if s.TLSConfig.Mode == "" || s.TLSConfig.Mode == "disabled" {
		fmt.Println("TLS: DISABLED (HTTP only)")
		return
	}
	fmt.Printf("TLS: ENABLED (%s mode)\n", s.TLSConfig.Mode)
	if s.CertificateManager != nil {
		fmt.Println("  - Certificate auto-reload enabled")
		if s.CertificateManager.WatcherRunning() {
			fmt.Println("  - Certificate files watched for changes")
		}
	}
}

// displayEndpoints shows available API endpoints
func (s *Server) displayEndpoints() {
	fmt.Println("Available endpoints:")
	fmt.Println("  GET  /health    - Health check")
	fmt.Println("  GET  /stats     - Server statistics")
	fmt.Println("  POST /match     - Match jobs against a resume (requires API key)")
	fmt.Println("  POST /render    - Render a resume document to markdown (requires API key)")
	fmt.Println("  POST /parse     - Parse resume markdown into a document (requires API key)")
	fmt.Println("  POST /tailor    - Tailor resume with AI (requires API key)")
	fmt.Println("  POST /score     - Semantic job/resume score (requires API key)")
}

// displayAuthInfo shows authentication configuration
func (s *Server) displayAuthInfo() {
	if len(s.APIKeys) > 0 {
		fmt.Printf("API authentication: ENABLED (%d keys configured)\n", len(s.APIKeys))
		fmt.Println("Include 'X-API-Key: <your-key>' header in requests to the POST endpoints")
	} else {
		fmt.Println("API authentication: DISABLED (no API keys configured)")
		fmt.Println("WARNING: API endpoints are publicly accessible!")
	}
}

// displayRequestLimitInfo shows request size limit configuration
func (s *Server) displayRequestLimitInfo() {
	if s.MaxRequestSize > 0 {
		fmt.Printf("Request size limit: %d bytes (%.1f MB)\n", s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024))
	} else {
		fmt.Println("Request size limit: DISABLED")
		fmt.Println("WARNING: No request size limits configured!")
	}
}

// displayRateLimitInfo shows rate limiting configuration
func (s *Server) displayRateLimitInfo() {
	if s.RateLimit != nil && s.RateLimit.Enabled {
		fmt.Printf("Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
			s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
		if s.RateLimit.ByAPIKey {
			fmt.Println("  - Per API key rate limiting enabled")
		}
		if s.RateLimit.ByIP {
			fmt.Println("  - Per IP address rate limiting enabled")
		}
	} else {
		fmt.Println("Rate limiting: DISABLED")
		fmt.Println("WARNING: No rate limiting configured!")
	}
}
