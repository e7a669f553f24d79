package server

import (
	"crypto/tls"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillmatch/internal/config"
)

func TestMinTLSVersion(t *testing.T) {
	assert.Equal(t, uint16(tls.VersionTLS13), minTLSVersion("1.3"))
	assert.Equal(t, uint16(tls.VersionTLS12), minTLSVersion("1.2"))
	assert.Equal(t, uint16(tls.VersionTLS12), minTLSVersion(""), "default is 1.2")
}

func TestBuildTLSConfigStaticCertificates(t *testing.T) {
	certPEM, keyPEM := selfSignedCert(t, time.Hour)
	s := &Server{
		Logger: testLogger(),
		TLSConfig: config.TLSConfig{
			Mode:        "server",
			CertContent: string(certPEM),
			KeyContent:  string(keyPEM),
			MinVersion:  "1.3",
			CipherSuites: []string{
				"TLS_AES_256_GCM_SHA384",
				"NOT_A_REAL_SUITE",
			},
		},
	}

	tlsConfig, err := s.buildTLSConfig()
	require.NoError(t, err)

	assert.Equal(t, uint16(tls.VersionTLS13), tlsConfig.MinVersion)
	assert.Len(t, tlsConfig.Certificates, 1)
	assert.Nil(t, tlsConfig.GetCertificate)
	assert.Equal(t, []uint16{tls.TLS_AES_256_GCM_SHA384}, tlsConfig.CipherSuites,
		"unknown suite names are dropped")
	assert.Equal(t, tls.NoClientCert, tlsConfig.ClientAuth)
}

func TestBuildTLSConfigMissingCertificates(t *testing.T) {
	s := &Server{
		Logger:    testLogger(),
		TLSConfig: config.TLSConfig{Mode: "server"},
	}

	_, err := s.buildTLSConfig()
	assert.ErrorContains(t, err, "certificate and key are required")
}

func TestBuildTLSConfigMutualClientAuth(t *testing.T) {
	certPEM, keyPEM := selfSignedCert(t, time.Hour)

	tests := []struct {
		policy string
		want   tls.ClientAuthType
	}{
		{policy: "", want: tls.RequireAndVerifyClientCert},
		{policy: "require", want: tls.RequireAndVerifyClientCert},
		{policy: "request", want: tls.RequestClientCert},
		{policy: "verify", want: tls.VerifyClientCertIfGiven},
	}

	for _, tt := range tests {
		t.Run("policy "+tt.policy, func(t *testing.T) {
			s := &Server{
				Logger: testLogger(),
				TLSConfig: config.TLSConfig{
					Mode:             "mutual",
					CertContent:      string(certPEM),
					KeyContent:       string(keyPEM),
					CAContent:        string(certPEM),
					ClientAuthPolicy: tt.policy,
				},
			}

			tlsConfig, err := s.buildTLSConfig()
			require.NoError(t, err)
			assert.Equal(t, tt.want, tlsConfig.ClientAuth)
			assert.NotNil(t, tlsConfig.ClientCAs)
		})
	}
}

func TestBuildTLSConfigMutualWithoutCA(t *testing.T) {
	certPEM, keyPEM := selfSignedCert(t, time.Hour)
	s := &Server{
		Logger: testLogger(),
		TLSConfig: config.TLSConfig{
			Mode:        "mutual",
			CertContent: string(certPEM),
			KeyContent:  string(keyPEM),
		},
	}

	_, err := s.buildTLSConfig()
	assert.ErrorContains(t, err, "CA certificate is required")
}

func TestBuildTLSConfigUsesCertificateManager(t *testing.T) {
	certPEM, keyPEM := selfSignedCert(t, time.Hour)
	tlsCfg := config.TLSConfig{
		Mode:        "server",
		CertContent: string(certPEM),
		KeyContent:  string(keyPEM),
	}

	cm := NewCertificateManager(&tlsCfg, nil, nil, testLogger())
	require.NoError(t, cm.Start())
	defer func() { _ = cm.Stop() }()

	s := &Server{
		Logger:             testLogger(),
		TLSConfig:          tlsCfg,
		CertificateManager: cm,
	}

	tlsConfig, err := s.buildTLSConfig()
	require.NoError(t, err)
	assert.NotNil(t, tlsConfig.GetCertificate, "handshakes go through the manager")
	assert.Empty(t, tlsConfig.Certificates)
}
