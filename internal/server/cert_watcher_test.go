package server

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCertWatcher(t *testing.T) {
	t.Run("no files to watch", func(t *testing.T) {
		_, err := NewCertWatcher([]string{"", "", ""}, time.Second, func() {}, testLogger())
		assert.ErrorContains(t, err, "no certificate files to watch")
	})

	t.Run("empty paths skipped", func(t *testing.T) {
		cw, err := NewCertWatcher([]string{"/tmp/cert.pem", "", "/tmp/ca.pem"}, time.Second, func() {}, testLogger())
		require.NoError(t, err)
		assert.Equal(t, []string{"/tmp/cert.pem", "/tmp/ca.pem"}, cw.WatchedFiles())
	})

	t.Run("debounce defaults when unset", func(t *testing.T) {
		cw, err := NewCertWatcher([]string{"/tmp/cert.pem"}, 0, func() {}, testLogger())
		require.NoError(t, err)
		assert.Equal(t, time.Second, cw.debounce)
	})
}

func TestCertWatcherStartStop(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "cert.pem")
	require.NoError(t, os.WriteFile(certFile, []byte("cert"), 0600))

	cw, err := NewCertWatcher([]string{certFile}, 10*time.Millisecond, func() {}, testLogger())
	require.NoError(t, err)

	require.NoError(t, cw.Start())
	assert.True(t, cw.IsRunning())
	assert.Error(t, cw.Start(), "second Start should be rejected")

	require.NoError(t, cw.Stop())
	assert.False(t, cw.IsRunning())
	assert.NoError(t, cw.Stop(), "Stop is idempotent")
}

func TestCertWatcherAnyFileChanged(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "cert.pem")
	keyFile := filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(certFile, []byte("cert-v1"), 0600))
	require.NoError(t, os.WriteFile(keyFile, []byte("key-v1"), 0600))

	cw, err := NewCertWatcher([]string{certFile, keyFile}, time.Second, func() {}, testLogger())
	require.NoError(t, err)
	require.NoError(t, cw.snapshotModTimes())

	assert.False(t, cw.anyFileChanged(), "unchanged files should not report a change")

	// Bump the modtime explicitly so the test does not depend on clock
	// resolution.
	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.WriteFile(certFile, []byte("cert-v2"), 0600))
	require.NoError(t, os.Chtimes(certFile, later, later))

	assert.True(t, cw.anyFileChanged())
	assert.False(t, cw.anyFileChanged(), "baseline updates after a detected change")

	require.NoError(t, os.Remove(keyFile))
	assert.True(t, cw.anyFileChanged(), "deleted file counts as changed")
	assert.False(t, cw.anyFileChanged(), "deletion is reported once")
}

func TestCertWatcherInvokesCallbackOnRotation(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "cert.pem")
	require.NoError(t, os.WriteFile(certFile, []byte("cert-v1"), 0600))

	var calls atomic.Int32
	cw, err := NewCertWatcher([]string{certFile}, 20*time.Millisecond, func() {
		calls.Add(1)
	}, testLogger())
	require.NoError(t, err)
	require.NoError(t, cw.Start())
	defer func() { _ = cw.Stop() }()

	// Atomic replacement, the usual rotation pattern.
	tmp := filepath.Join(dir, "cert.pem.tmp")
	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.WriteFile(tmp, []byte("cert-v2"), 0600))
	require.NoError(t, os.Chtimes(tmp, later, later))
	require.NoError(t, os.Rename(tmp, certFile))

	assert.Eventually(t, func() bool {
		return calls.Load() >= 1
	}, 3*time.Second, 25*time.Millisecond, "rotation should trigger the change callback")
}
