package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/vault/api"

	"skillmatch/internal/errors"
)

// VaultConfig holds the Vault connection settings.
type VaultConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"tokenFile"`
	Namespace string `mapstructure:"namespace"`

	Secrets VaultSecrets `mapstructure:"secrets"`
}

// VaultSecrets names the KVv2 paths the loader reads at startup. Empty
// paths are skipped. APIKeys expects a single comma-separated string under
// the "keys" field; the AI and scorer keys live under "api_key"; TLS
// material lives under "cert"/"key"/"ca" as PEM content.
type VaultSecrets struct {
	APIKeys   string `mapstructure:"apiKeys"`
	GeminiKey string `mapstructure:"geminiKey"`
	ScorerKey string `mapstructure:"scorerKey"`
	TLSCerts  string `mapstructure:"tlsCerts"`
}

// VaultClient wraps the Vault API client with KVv2 helpers.
type VaultClient struct {
	client *api.Client
	config VaultConfig
	logger *errors.Logger
}

// VaultSecret is one KVv2 secret: its data fields and version.
type VaultSecret struct {
	Data    map[string]any
	Version int64
}

// NewVaultClient connects to Vault and verifies the connection with a
// health probe. Returns (nil, nil) when Vault is disabled so callers can
// treat the client as optional.
func NewVaultClient(cfg VaultConfig, logger *errors.Logger) (*VaultClient, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	apiCfg := api.DefaultConfig()
	if cfg.Address != "" {
		apiCfg.Address = cfg.Address
	}
	client, err := api.NewClient(apiCfg)
	if err != nil {
		return nil, fmt.Errorf("create vault client: %w", err)
	}
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	token, err := resolveVaultToken(cfg, logger)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	health, err := client.Sys().Health()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to vault at %s: %w", cfg.Address, err)
	}
	if logger != nil {
		logger.Info("Connected to Vault",
			"address", cfg.Address,
			"version", health.Version,
			"sealed", health.Sealed)
	}

	return &VaultClient{client: client, config: cfg, logger: logger}, nil
}

// resolveVaultToken takes the inline token when set, otherwise reads and
// trims the token file. A blank token is an error; Vault was explicitly
// enabled.
func resolveVaultToken(cfg VaultConfig, logger *errors.Logger) (string, error) {
	token := cfg.Token
	if token == "" && cfg.TokenFile != "" {
		raw, err := os.ReadFile(cfg.TokenFile)
		if err != nil {
			return "", fmt.Errorf("failed to read vault token file: %w", err)
		}
		token = strings.TrimSpace(string(raw))
	}
	if token == "" {
		return "", fmt.Errorf("vault token is required when vault is enabled")
	}
	return token, nil
}

// GetSecretV2 reads a KVv2 secret, unwrapping the data/metadata envelope.
func (vc *VaultClient) GetSecretV2(path string) (*VaultSecret, error) {
	if vc == nil {
		return nil, fmt.Errorf("vault client not initialized")
	}

	secret, err := vc.client.Logical().Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret from %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("secret not found at path: %s", path)
	}

	data, ok := secret.Data["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'data' field)", path)
	}
	metadata, ok := secret.Data["metadata"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'metadata' field)", path)
	}
	version, err := parseSecretVersion(metadata["version"], path)
	if err != nil {
		return nil, err
	}

	return &VaultSecret{Data: data, Version: version}, nil
}

// parseSecretVersion copes with the version arriving as json.Number
// float64, native int64, or a string, depending on the client's decoder.
func parseSecretVersion(raw any, path string) (int64, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case string:
		version, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("could not parse secret version at %s: %w", path, err)
		}
		return version, nil
	case nil:
		return 0, fmt.Errorf("secret metadata at %s is missing 'version' field", path)
	default:
		return 0, fmt.Errorf("unexpected type for version at %s: %T", path, raw)
	}
}

// GetStringSecret reads one string field of a KVv2 secret.
func (vc *VaultClient) GetStringSecret(path, key string) (string, error) {
	secret, err := vc.GetSecretV2(path)
	if err != nil {
		return "", err
	}

	value, ok := secret.Data[key]
	if !ok {
		return "", fmt.Errorf("key '%s' not found in secret %s", key, path)
	}
	str, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("value for key '%s' is not a string in secret %s", key, path)
	}

	if vc.logger != nil {
		vc.logger.Debug("Secret read from Vault",
			"path", path, "key", key, "masked_value", maskSecret(str))
	}
	return str, nil
}

// GetStringSliceSecret reads a comma-separated string field as a slice,
// trimming each entry.
func (vc *VaultClient) GetStringSliceSecret(path, key string) ([]string, error) {
	value, err := vc.GetStringSecret(path, key)
	if err != nil {
		return nil, err
	}
	if value == "" {
		return []string{}, nil
	}
	return splitAndTrim(value), nil
}

// maskSecret keeps the first and last four characters of long secrets for
// log correlation; anything shorter is fully masked.
func maskSecret(s string) string {
	if len(s) > 8 {
		return s[:4] + "****" + s[len(s)-4:]
	}
	if len(s) > 0 {
		return "****"
	}
	return ""
}

// ApplyVaultSecrets overlays Vault-held secrets onto the loaded config:
// server API keys, the Gemini key, the scorer key and TLS certificate
// content. A no-op when Vault is disabled.
func ApplyVaultSecrets(config *Config, logger *errors.Logger) error {
	if !config.Vault.Enabled {
		return nil
	}

	client, err := NewVaultClient(config.Vault, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize vault client: %w", err)
	}
	if client == nil {
		return nil
	}

	paths := config.Vault.Secrets

	if paths.APIKeys != "" {
		keys, err := client.GetStringSliceSecret(paths.APIKeys, "keys")
		if err != nil {
			return fmt.Errorf("failed to load API keys from vault: %w", err)
		}
		if len(keys) > 0 {
			config.Server.APIKeys = keys
			if logger != nil {
				logger.Info("API keys loaded from Vault", "count", len(keys))
			}
		} else if logger != nil {
			logger.Warn("No API keys found in Vault", "path", paths.APIKeys)
		}
	}

	if err := applyKeySecret(client, paths.GeminiKey, &config.AI.APIKey, "Gemini", logger); err != nil {
		return err
	}
	if err := applyKeySecret(client, paths.ScorerKey, &config.Scorer.APIKey, "scorer", logger); err != nil {
		return err
	}
	if err := applyTLSCerts(client, config, paths.TLSCerts, logger); err != nil {
		return err
	}

	if logger != nil {
		logger.Info("Vault secrets applied")
	}
	return nil
}

// applyKeySecret loads one "api_key" field and stores it in target when
// non-empty.
func applyKeySecret(client *VaultClient, path string, target *string, name string, logger *errors.Logger) error {
	if path == "" {
		return nil
	}

	key, err := client.GetStringSecret(path, "api_key")
	if err != nil {
		return fmt.Errorf("failed to load %s API key from vault: %w", name, err)
	}
	if key == "" {
		if logger != nil {
			logger.Warn("Empty API key found in Vault", "path", path, "secret", name)
		}
		return nil
	}

	*target = key
	if logger != nil {
		logger.Info("API key loaded from Vault", "secret", name)
	}
	return nil
}

// applyTLSCerts fills the TLS content fields from the certificate secret.
func applyTLSCerts(client *VaultClient, config *Config, path string, logger *errors.Logger) error {
	if path == "" {
		return nil
	}

	secret, err := client.GetSecretV2(path)
	if err != nil {
		return fmt.Errorf("failed to load TLS certificates from vault: %w", err)
	}

	if err := rejectFilePathFields(secret); err != nil {
		return err
	}

	loaded := 0
	loaded += setCertContent(secret, "cert", &config.Server.TLS.CertContent)
	loaded += setCertContent(secret, "key", &config.Server.TLS.KeyContent)
	loaded += setCertContent(secret, "ca", &config.Server.TLS.CAContent)

	if logger != nil {
		logger.Info("TLS certificates loaded from Vault", "certificates_loaded", loaded)
	}
	return nil
}

// rejectFilePathFields errors on *_file path fields in the TLS secret. The
// secret must carry PEM content; paths only exist on the host where the
// secret was written.
func rejectFilePathFields(secret *VaultSecret) error {
	for _, field := range []string{"cert_file", "key_file", "ca_file"} {
		if _, present := secret.Data[field]; present {
			return fmt.Errorf("vault TLS configuration error: '%s' field is no longer supported. Store certificate content in '%s' field instead",
				field, strings.TrimSuffix(field, "_file"))
		}
	}
	return nil
}

// setCertContent copies a non-empty string field into target, reporting 1
// when something was loaded.
func setCertContent(secret *VaultSecret, key string, target *string) int {
	if content, ok := secret.Data[key].(string); ok && content != "" {
		*target = content
		return 1
	}
	return 0
}
