package config

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// applyFallbacks fills in values viper cannot derive on its own: legacy
// environment variables and defaults that depend on other fields.
func (c *Config) applyFallbacks() {
	if c.AI.APIKey == "" {
		// Google's own tooling exports the key without a prefix.
		c.AI.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if len(c.Server.APIKeys) == 0 {
		if raw := os.Getenv("SKILLMATCH_SERVER_APIKEYS"); raw != "" {
			c.Server.APIKeys = splitAndTrim(raw)
		}
	}
	c.applyTLSDefaults()
	c.applyObservabilityDefaults()
}

// splitAndTrim splits a comma-separated list, trimming whitespace around
// each entry.
func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, len(parts))
	for i, part := range parts {
		out[i] = strings.TrimSpace(part)
	}
	return out
}

// applyTLSDefaults picks the usual defaults for TLS fields validation
// would otherwise reject as missing.
func (c *Config) applyTLSDefaults() {
	if c.Server.TLS.Mode == "mutual" && c.Server.TLS.ClientAuthPolicy == "" {
		c.Server.TLS.ClientAuthPolicy = "require"
	}
	if c.Server.TLS.MinVersion == "" && c.Server.TLS.Mode != "disabled" {
		c.Server.TLS.MinVersion = "1.2"
	}
}

func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		instance := c.Observability.ServiceName + "-1"
		if hostname, err := os.Hostname(); err == nil {
			instance = c.Observability.ServiceName + "-" + hostname
		}
		c.Observability.ServiceInstance = instance
	}

	// Debug logging implies console trace output unless already enabled.
	if c.App.LogLevel == "debug" && !c.Observability.ConsoleOutput {
		c.Observability.ConsoleOutput = true
	}
}

// summaryEnvVars are echoed at startup when set, so a misbehaving
// deployment can be diagnosed from the log alone.
var summaryEnvVars = []string{
	"SKILLMATCH_AI_APIKEY",
	"SKILLMATCH_AI_PROVIDER",
	"SKILLMATCH_AI_MODEL",
	"SKILLMATCH_MATCHING_THRESHOLD",
	"SKILLMATCH_SCORER_URL",
	"SKILLMATCH_SERVER_PORT",
	"SKILLMATCH_SERVER_HOST",
	"SKILLMATCH_APP_LOGLEVEL",
	"SKILLMATCH_VAULT_ENABLED",
	"GEMINI_API_KEY",
}

// logConfigurationSources prints where the effective configuration came
// from and the values that matter operationally. Secrets are never
// printed, only whether they are set.
func (c *Config) logConfigurationSources(configFileUsed string) {
	log.Println("[CONFIG] === Configuration Summary ===")

	if configFileUsed == "" {
		configFileUsed = "none (defaults + environment)"
	}
	log.Printf("[CONFIG] Config file: %s", configFileUsed)

	log.Println("[CONFIG] Environment overrides:")
	found := 0
	for _, name := range summaryEnvVars {
		value := os.Getenv(name)
		if value == "" {
			continue
		}
		if strings.Contains(strings.ToLower(name), "key") {
			value = "***"
		}
		log.Printf("[CONFIG]   %s=%s", name, value)
		found++
	}
	if found == 0 {
		log.Println("[CONFIG]   none set")
	}

	settings := []struct {
		label string
		value any
	}{
		{"AI provider", c.AI.Provider},
		{"AI model", c.AI.Model},
		{"AI API key set", c.AI.APIKey != ""},
		{"Matching", fmt.Sprintf("threshold=%.2f ngramSize=%d workers=%d",
			c.Matching.Threshold, c.Matching.NGramSize, c.Matching.Workers)},
		{"Scorer enabled", c.Scorer.Enabled},
		{"Server address", c.Server.Host + ":" + c.Server.Port},
		{"Log level", c.App.LogLevel},
		{"TLS mode", c.Server.TLS.Mode},
		{"Vault enabled", c.Vault.Enabled},
		{"Observability enabled", c.Observability.Enabled},
	}
	for _, s := range settings {
		log.Printf("[CONFIG] %s: %v", s.label, s.value)
	}
	if c.Scorer.Enabled {
		log.Printf("[CONFIG] Scorer URL: %s", c.Scorer.URL)
	}
}
