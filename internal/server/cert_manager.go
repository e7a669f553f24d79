package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"skillmatch/internal/config"
	"skillmatch/internal/errors"
	"skillmatch/internal/observability"
)

// CertificateManager keeps the server's TLS material hot. It loads the key
// pair (and CA pool for mutual mode) once at startup, reloads it when the
// file watcher reports a change, and answers TLS handshakes from the cached
// copy under a read lock. Certificate content sourced from Vault is loaded
// by the config secret loader before the server starts; only file-based
// certificates are watched for changes.
type CertificateManager struct {
	mu sync.RWMutex

	serverCert *tls.Certificate
	caPool     *x509.CertPool
	certExpiry time.Time

	tlsCfg    *config.TLSConfig
	reloadCfg *config.AutoReloadConfig

	watcher *CertWatcher
	om      *observability.ObservabilityManager
	logger  *errors.Logger
	done    chan struct{}

	stats reloadStats
}

// reloadStats accumulates reload outcomes for /health reporting.
type reloadStats struct {
	total     int64
	succeeded int64
	failed    int64
	lastAt    time.Time
	lastOK    bool
	lastErr   string
}

// CertificateMetrics is the reload history snapshot exposed on /health.
type CertificateMetrics struct {
	ReloadCount        int64
	ReloadSuccessCount int64
	ReloadFailureCount int64
	LastReloadTime     time.Time
	LastReloadSuccess  bool
	LastReloadError    string
}

// NewCertificateManager creates a manager over the given TLS configuration.
// Start must be called before the manager serves handshakes.
func NewCertificateManager(tlsCfg *config.TLSConfig, reloadCfg *config.AutoReloadConfig, om *observability.ObservabilityManager, logger *errors.Logger) *CertificateManager {
	return &CertificateManager{
		tlsCfg:    tlsCfg,
		reloadCfg: reloadCfg,
		om:        om,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Start loads the initial certificates, begins expiry metric reporting and,
// when configured with file-based certificates, starts the file watcher.
func (cm *CertificateManager) Start() error {
	if err := cm.reload(); err != nil {
		return fmt.Errorf("initial certificate load: %w", err)
	}

	go cm.expiryLoop()

	if cm.reloadCfg == nil || !cm.reloadCfg.FileWatcher.Enabled {
		return nil
	}
	if cm.tlsCfg.CertFile == "" && cm.tlsCfg.KeyFile == "" && cm.tlsCfg.CAFile == "" {
		// Content-based certificates have no files to watch.
		return nil
	}

	watcher, err := NewCertWatcher(
		[]string{cm.tlsCfg.CertFile, cm.tlsCfg.KeyFile, cm.tlsCfg.CAFile},
		cm.reloadCfg.FileWatcher.DebounceDelay,
		cm.onWatcherChange,
		cm.logger,
	)
	if err != nil {
		return fmt.Errorf("certificate file watcher: %w", err)
	}
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("certificate file watcher: %w", err)
	}
	cm.watcher = watcher

	if cm.logger != nil {
		cm.logger.Info("Watching certificate files for changes",
			"cert_file", cm.tlsCfg.CertFile,
			"key_file", cm.tlsCfg.KeyFile,
			"ca_file", cm.tlsCfg.CAFile)
	}
	return nil
}

// Stop shuts down the watcher and the expiry reporter.
func (cm *CertificateManager) Stop() error {
	select {
	case <-cm.done:
	default:
		close(cm.done)
	}

	if cm.watcher != nil {
		if err := cm.watcher.Stop(); err != nil {
			if cm.logger != nil {
				cm.logger.LogError(err, "Failed to stop certificate file watcher")
			}
			return err
		}
	}
	if cm.logger != nil {
		cm.logger.Info("Certificate manager stopped")
	}
	return nil
}

// GetServerCertificate serves the cached key pair to TLS handshakes. An
// expired certificate fails the handshake rather than presenting stale
// material; a certificate inside the preemptive renewal window triggers a
// background reload while the handshake proceeds.
func (cm *CertificateManager) GetServerCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
	cm.mu.RLock()
	cert, expiry := cm.serverCert, cm.certExpiry
	cm.mu.RUnlock()

	if cert == nil {
		return nil, fmt.Errorf("no server certificate loaded")
	}
	if time.Now().After(expiry) {
		if cm.logger != nil {
			cm.logger.LogError(fmt.Errorf("certificate expired at %s", expiry),
				"Refusing handshake with expired certificate",
				"server_name", hello.ServerName)
		}
		return nil, fmt.Errorf("server certificate expired")
	}

	if cm.reloadCfg != nil && cm.reloadCfg.PreemptiveRenewal > 0 &&
		time.Now().After(expiry.Add(-cm.reloadCfg.PreemptiveRenewal)) {
		go cm.onWatcherChange()
	}

	return cert, nil
}

// GetCACertPool returns the CA pool for client certificate verification,
// nil outside mutual mode.
func (cm *CertificateManager) GetCACertPool() *x509.CertPool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.caPool
}

// VerifyPeerCertificate verifies the presented client certificate against
// the cached CA pool. Installed as the tls.Config callback in mutual mode
// so reloaded CA material applies to new handshakes without a restart.
func (cm *CertificateManager) VerifyPeerCertificate(rawCerts [][]byte, verifiedChains [][]*x509.Certificate) error {
	if len(rawCerts) == 0 {
		return fmt.Errorf("no peer certificate presented")
	}

	cert, err := x509.ParseCertificate(rawCerts[0])
	if err != nil {
		return fmt.Errorf("parse peer certificate: %w", err)
	}

	pool := cm.GetCACertPool()
	if pool == nil {
		return fmt.Errorf("no CA pool loaded for client verification")
	}

	if _, err := cert.Verify(x509.VerifyOptions{Roots: pool}); err != nil {
		return fmt.Errorf("peer certificate verification failed: %w", err)
	}
	return nil
}

// CheckExpiry returns the time remaining on the server certificate.
func (cm *CertificateManager) CheckExpiry() (time.Duration, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.certExpiry.IsZero() {
		return 0, fmt.Errorf("no certificate loaded")
	}
	return time.Until(cm.certExpiry), nil
}

// GetMetrics returns a snapshot of the reload history.
func (cm *CertificateManager) GetMetrics() *CertificateMetrics {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	return &CertificateMetrics{
		ReloadCount:        cm.stats.total,
		ReloadSuccessCount: cm.stats.succeeded,
		ReloadFailureCount: cm.stats.failed,
		LastReloadTime:     cm.stats.lastAt,
		LastReloadSuccess:  cm.stats.lastOK,
		LastReloadError:    cm.stats.lastErr,
	}
}

// WatcherRunning reports whether the file watcher is active.
func (cm *CertificateManager) WatcherRunning() bool {
	return cm.watcher != nil && cm.watcher.IsRunning()
}

// WatchedFiles returns the certificate files under watch.
func (cm *CertificateManager) WatchedFiles() []string {
	if cm.watcher == nil {
		return nil
	}
	return cm.watcher.WatchedFiles()
}

// onWatcherChange reloads certificates after the watcher reports a change.
func (cm *CertificateManager) onWatcherChange() {
	if cm.logger != nil {
		cm.logger.Info("Certificate change detected, reloading")
	}
	if err := cm.reload(); err != nil && cm.logger != nil {
		cm.logger.LogError(err, "Certificate reload failed, serving previous material")
	}
}

// reload loads the key pair and CA pool and swaps them in atomically. On
// failure the cached certificates are left untouched so the server keeps
// serving the last good material.
func (cm *CertificateManager) reload() error {
	cert, expiry, err := cm.loadKeyPair()
	if err == nil {
		var pool *x509.CertPool
		pool, err = cm.loadCAPool()
		if err == nil {
			cm.mu.Lock()
			cm.serverCert = cert
			cm.certExpiry = expiry
			cm.caPool = pool
			cm.mu.Unlock()
		}
	}

	cm.recordReload(err)
	if err != nil {
		return err
	}

	if cm.logger != nil {
		cm.logger.Info("Certificates loaded", "expiry", expiry)
	}
	return nil
}

// loadKeyPair reads the server key pair from inline content when present
// (Vault-sourced), otherwise from files, and extracts the leaf expiry.
func (cm *CertificateManager) loadKeyPair() (*tls.Certificate, time.Time, error) {
	var (
		cert tls.Certificate
		err  error
	)
	switch {
	case cm.tlsCfg.CertContent != "" && cm.tlsCfg.KeyContent != "":
		cert, err = tls.X509KeyPair([]byte(cm.tlsCfg.CertContent), []byte(cm.tlsCfg.KeyContent))
	case cm.tlsCfg.CertFile != "" && cm.tlsCfg.KeyFile != "":
		cert, err = tls.LoadX509KeyPair(cm.tlsCfg.CertFile, cm.tlsCfg.KeyFile)
	default:
		return nil, time.Time{}, fmt.Errorf("no certificate source configured")
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("load key pair: %w", err)
	}

	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("parse server certificate: %w", err)
	}
	return &cert, leaf.NotAfter, nil
}

// loadCAPool builds the client-verification pool for mutual mode.
func (cm *CertificateManager) loadCAPool() (*x509.CertPool, error) {
	if cm.tlsCfg.Mode != "mutual" {
		return nil, nil
	}

	var pem []byte
	switch {
	case cm.tlsCfg.CAContent != "":
		pem = []byte(cm.tlsCfg.CAContent)
	case cm.tlsCfg.CAFile != "":
		var err error
		pem, err = os.ReadFile(cm.tlsCfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read CA file: %w", err)
		}
	default:
		return nil, nil
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates parsed from CA PEM")
	}
	return pool, nil
}

// recordReload updates the stats snapshot and emits the reload counter and
// expiry gauge through the observability manager.
func (cm *CertificateManager) recordReload(err error) {
	cm.mu.Lock()
	cm.stats.total++
	cm.stats.lastAt = time.Now()
	if err == nil {
		cm.stats.succeeded++
		cm.stats.lastOK = true
		cm.stats.lastErr = ""
	} else {
		cm.stats.failed++
		cm.stats.lastOK = false
		cm.stats.lastErr = err.Error()
	}
	cm.mu.Unlock()

	if cm.om == nil {
		return
	}
	metrics := cm.om.GetMetrics()
	if metrics == nil {
		return
	}

	ctx := context.Background()
	attrs := []attribute.KeyValue{
		attribute.String("cert_type", "server"),
		attribute.String("status", "success"),
	}
	if err != nil {
		attrs[1] = attribute.String("status", "failure")
		attrs = append(attrs, attribute.String("error", err.Error()))
	}
	metrics.CertReloadCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	cm.reportExpiry()
}

// reportExpiry records the seconds-to-expiry gauge for the server cert.
func (cm *CertificateManager) reportExpiry() {
	if cm.om == nil {
		return
	}
	metrics := cm.om.GetMetrics()
	if metrics == nil {
		return
	}

	cm.mu.RLock()
	expiry := cm.certExpiry
	cm.mu.RUnlock()
	if expiry.IsZero() {
		return
	}

	metrics.CertExpiryTime.Record(context.Background(), time.Until(expiry).Seconds(),
		metric.WithAttributes(attribute.String("cert_type", "server")))
}

// expiryLoop refreshes the expiry gauge once a minute until Stop.
func (cm *CertificateManager) expiryLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-cm.done:
			return
		case <-ticker.C:
			cm.reportExpiry()
		}
	}
}
