package server

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillmatch/internal/config"
)

// selfSignedCert returns a PEM cert/key pair valid for the given duration
// (negative durations produce an already-expired certificate).
func selfSignedCert(t *testing.T, validFor time.Duration) (certPEM, keyPEM []byte) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "skillmatch-test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(validFor),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		IsCA:         true,
		DNSNames:     []string{"localhost"},
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	require.NoError(t, err)

	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	return certPEM, keyPEM
}

func TestCertificateManagerContentCertificates(t *testing.T) {
	certPEM, keyPEM := selfSignedCert(t, 24*time.Hour)
	tlsCfg := &config.TLSConfig{
		Mode:        "server",
		CertContent: string(certPEM),
		KeyContent:  string(keyPEM),
	}

	cm := NewCertificateManager(tlsCfg, &config.AutoReloadConfig{Enabled: true}, nil, testLogger())
	require.NoError(t, cm.Start())
	defer func() { _ = cm.Stop() }()

	cert, err := cm.GetServerCertificate(&tls.ClientHelloInfo{ServerName: "localhost"})
	require.NoError(t, err)
	assert.NotNil(t, cert)

	remaining, err := cm.CheckExpiry()
	require.NoError(t, err)
	assert.Greater(t, remaining, 23*time.Hour)

	metrics := cm.GetMetrics()
	assert.Equal(t, int64(1), metrics.ReloadCount)
	assert.Equal(t, int64(1), metrics.ReloadSuccessCount)
	assert.True(t, metrics.LastReloadSuccess)

	// Content-based certificates have nothing on disk to watch.
	assert.False(t, cm.WatcherRunning())
	assert.Empty(t, cm.WatchedFiles())
}

func TestCertificateManagerRefusesExpiredCert(t *testing.T) {
	certPEM, keyPEM := selfSignedCert(t, -time.Minute)
	tlsCfg := &config.TLSConfig{
		Mode:        "server",
		CertContent: string(certPEM),
		KeyContent:  string(keyPEM),
	}

	cm := NewCertificateManager(tlsCfg, nil, nil, testLogger())
	require.NoError(t, cm.Start())
	defer func() { _ = cm.Stop() }()

	_, err := cm.GetServerCertificate(&tls.ClientHelloInfo{})
	assert.ErrorContains(t, err, "expired")
}

func TestCertificateManagerKeepsServingOnReloadFailure(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "cert.pem")
	keyFile := filepath.Join(dir, "key.pem")

	certPEM, keyPEM := selfSignedCert(t, 24*time.Hour)
	require.NoError(t, os.WriteFile(certFile, certPEM, 0600))
	require.NoError(t, os.WriteFile(keyFile, keyPEM, 0600))

	tlsCfg := &config.TLSConfig{Mode: "server", CertFile: certFile, KeyFile: keyFile}
	cm := NewCertificateManager(tlsCfg, nil, nil, testLogger())
	require.NoError(t, cm.Start())
	defer func() { _ = cm.Stop() }()

	// Corrupt the cert on disk; the reload must fail without dropping the
	// cached material.
	require.NoError(t, os.WriteFile(certFile, []byte("not a certificate"), 0600))
	cm.onWatcherChange()

	cert, err := cm.GetServerCertificate(&tls.ClientHelloInfo{})
	require.NoError(t, err, "previous certificate should still be served")
	assert.NotNil(t, cert)

	metrics := cm.GetMetrics()
	assert.Equal(t, int64(2), metrics.ReloadCount)
	assert.Equal(t, int64(1), metrics.ReloadFailureCount)
	assert.False(t, metrics.LastReloadSuccess)
	assert.NotEmpty(t, metrics.LastReloadError)
}

func TestCertificateManagerNoSource(t *testing.T) {
	cm := NewCertificateManager(&config.TLSConfig{Mode: "server"}, nil, nil, testLogger())
	assert.ErrorContains(t, cm.Start(), "no certificate source configured")
}

func TestCertificateManagerMutualModeCAPool(t *testing.T) {
	certPEM, keyPEM := selfSignedCert(t, 24*time.Hour)
	tlsCfg := &config.TLSConfig{
		Mode:        "mutual",
		CertContent: string(certPEM),
		KeyContent:  string(keyPEM),
		CAContent:   string(certPEM),
	}

	cm := NewCertificateManager(tlsCfg, nil, nil, testLogger())
	require.NoError(t, cm.Start())
	defer func() { _ = cm.Stop() }()

	require.NotNil(t, cm.GetCACertPool())

	// A client cert signed by the CA verifies; the CA here signs itself.
	block, _ := pem.Decode(certPEM)
	require.NotNil(t, block)
	assert.NoError(t, cm.VerifyPeerCertificate([][]byte{block.Bytes}, nil))

	// No certificate presented.
	assert.ErrorContains(t, cm.VerifyPeerCertificate(nil, nil), "no peer certificate")
}

func TestCertificateManagerStopIdempotent(t *testing.T) {
	certPEM, keyPEM := selfSignedCert(t, time.Hour)
	cm := NewCertificateManager(&config.TLSConfig{
		Mode:        "server",
		CertContent: string(certPEM),
		KeyContent:  string(keyPEM),
	}, nil, nil, testLogger())
	require.NoError(t, cm.Start())

	assert.NoError(t, cm.Stop())
	assert.NoError(t, cm.Stop())
}
