package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillmatch/internal/errors"
)

func testLogger() *errors.Logger {
	logger, _ := errors.New("debug")
	return logger
}

func TestParseSecretVersion(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    int64
		wantErr bool
	}{
		{name: "int64", input: int64(42), want: 42},
		{name: "float64 from json decode", input: float64(42.0), want: 42},
		{name: "numeric string", input: "42", want: 42},
		{name: "garbage string", input: "not-a-number", wantErr: true},
		{name: "missing version", input: nil, wantErr: true},
		{name: "unsupported type", input: []string{"42"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSecretVersion(tt.input, "secret/test")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveVaultToken(t *testing.T) {
	logger := testLogger()

	t.Run("inline token wins", func(t *testing.T) {
		token, err := resolveVaultToken(VaultConfig{Token: "direct-token"}, logger)
		assert.NoError(t, err)
		assert.Equal(t, "direct-token", token)
	})

	t.Run("token file is read and trimmed", func(t *testing.T) {
		tokenFile := filepath.Join(t.TempDir(), "vault-token")
		require.NoError(t, os.WriteFile(tokenFile, []byte("  file-token  \n"), 0600))

		token, err := resolveVaultToken(VaultConfig{TokenFile: tokenFile}, logger)
		assert.NoError(t, err)
		assert.Equal(t, "file-token", token)
	})

	t.Run("missing token file", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{TokenFile: "/nonexistent/token"}, logger)
		assert.ErrorContains(t, err, "failed to read vault token file")
	})

	t.Run("no token configured", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{}, logger)
		assert.ErrorContains(t, err, "vault token is required")
	})

	t.Run("whitespace-only token file", func(t *testing.T) {
		tokenFile := filepath.Join(t.TempDir(), "empty-token")
		require.NoError(t, os.WriteFile(tokenFile, []byte("   \n  \n"), 0600))

		_, err := resolveVaultToken(VaultConfig{TokenFile: tokenFile}, logger)
		assert.ErrorContains(t, err, "vault token is required")
	})
}

func TestApplyTLSCerts(t *testing.T) {
	t.Run("content fields applied", func(t *testing.T) {
		cfg := &Config{}
		secret := &VaultSecret{Data: map[string]any{
			"cert": "cert-content",
			"key":  "key-content",
			"ca":   "ca-content",
		}}

		loaded := 0
		loaded += setCertContent(secret, "cert", &cfg.Server.TLS.CertContent)
		loaded += setCertContent(secret, "key", &cfg.Server.TLS.KeyContent)
		loaded += setCertContent(secret, "ca", &cfg.Server.TLS.CAContent)

		assert.Equal(t, 3, loaded)
		assert.Equal(t, "cert-content", cfg.Server.TLS.CertContent)
		assert.Equal(t, "key-content", cfg.Server.TLS.KeyContent)
		assert.Equal(t, "ca-content", cfg.Server.TLS.CAContent)
	})

	t.Run("missing and empty fields skipped", func(t *testing.T) {
		cfg := &Config{}
		secret := &VaultSecret{Data: map[string]any{
			"cert": "cert-content",
			"key":  "",
		}}

		loaded := 0
		loaded += setCertContent(secret, "cert", &cfg.Server.TLS.CertContent)
		loaded += setCertContent(secret, "key", &cfg.Server.TLS.KeyContent)
		loaded += setCertContent(secret, "ca", &cfg.Server.TLS.CAContent)

		assert.Equal(t, 1, loaded)
		assert.Equal(t, "cert-content", cfg.Server.TLS.CertContent)
		assert.Empty(t, cfg.Server.TLS.KeyContent)
		assert.Empty(t, cfg.Server.TLS.CAContent)
	})

	t.Run("non-string content ignored", func(t *testing.T) {
		var target string
		secret := &VaultSecret{Data: map[string]any{"cert": 123}}
		assert.Equal(t, 0, setCertContent(secret, "cert", &target))
		assert.Empty(t, target)
	})
}

func TestRejectFilePathFields(t *testing.T) {
	t.Run("content-only secret accepted", func(t *testing.T) {
		secret := &VaultSecret{Data: map[string]any{
			"cert": "cert-content", "key": "key-content", "ca": "ca-content",
		}}
		assert.NoError(t, rejectFilePathFields(secret))
	})

	for _, field := range []string{"cert_file", "key_file", "ca_file"} {
		t.Run(field+" rejected", func(t *testing.T) {
			secret := &VaultSecret{Data: map[string]any{field: "/path/on/some/host"}}
			err := rejectFilePathFields(secret)
			assert.ErrorContains(t, err, field)
			assert.ErrorContains(t, err, "no longer supported")
		})
	}
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "abcd****wxyz", maskSecret("abcdefghijklmnopqrstuvwxyz"))
	assert.Equal(t, "****", maskSecret("short"))
	assert.Equal(t, "", maskSecret(""))
}

func TestApplyVaultSecretsDisabled(t *testing.T) {
	cfg := &Config{Vault: VaultConfig{Enabled: false}}
	assert.NoError(t, ApplyVaultSecrets(cfg, testLogger()))
}
