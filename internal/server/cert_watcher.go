package server

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"skillmatch/internal/errors"
)

// CertWatcher watches certificate files with fsnotify and invokes onChange
// after the configured quiet period. It watches each file's directory as
// well, so atomic replacements (write to temp, rename over the original,
// the usual cert-rotation pattern) are caught even though the original
// inode disappears. Events are debounced and checked against stored
// modification times, so a rotation that touches cert and key together
// produces a single callback.
type CertWatcher struct {
	mu sync.RWMutex

	files    []string
	modTimes map[string]time.Time

	fsWatcher *fsnotify.Watcher
	debounce  time.Duration
	timer     *time.Timer

	onChange func()
	logger   *errors.Logger

	changed chan struct{}
	stop    chan struct{}
	running bool
}

// NewCertWatcher creates a watcher over the given paths. Empty paths are
// skipped, so callers can pass cert, key and CA unconditionally.
func NewCertWatcher(paths []string, debounce time.Duration, onChange func(), logger *errors.Logger) (*CertWatcher, error) {
	if debounce <= 0 {
		debounce = time.Second
	}

	files := make([]string, 0, len(paths))
	for _, p := range paths {
		if p != "" {
			files = append(files, p)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no certificate files to watch")
	}

	return &CertWatcher{
		files:    files,
		modTimes: make(map[string]time.Time),
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
		changed:  make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}, nil
}

// Start registers the files with fsnotify and launches the event loop.
func (cw *CertWatcher) Start() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.running {
		return fmt.Errorf("certificate watcher already running")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	cw.fsWatcher = fsw

	if err := cw.snapshotModTimes(); err != nil {
		_ = fsw.Close()
		return err
	}
	for _, file := range cw.files {
		cw.watchPath(file)
	}

	cw.running = true
	go cw.loop()

	if cw.logger != nil {
		cw.logger.Info("Certificate file watcher started",
			"files", cw.files, "debounce", cw.debounce)
	}
	return nil
}

// Stop halts the event loop and releases the fsnotify watcher.
func (cw *CertWatcher) Stop() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if !cw.running {
		return nil
	}
	close(cw.stop)
	if cw.timer != nil {
		cw.timer.Stop()
	}
	if err := cw.fsWatcher.Close(); err != nil {
		if cw.logger != nil {
			cw.logger.LogError(err, "Failed to close fsnotify watcher")
		}
		return err
	}
	cw.running = false
	return nil
}

// IsRunning reports whether the event loop is active.
func (cw *CertWatcher) IsRunning() bool {
	cw.mu.RLock()
	defer cw.mu.RUnlock()
	return cw.running
}

// WatchedFiles returns the watched certificate paths.
func (cw *CertWatcher) WatchedFiles() []string {
	return slices.Clone(cw.files)
}

// watchPath registers a file and its directory. A missing file is fine,
// the directory watch picks it up when it appears.
func (cw *CertWatcher) watchPath(file string) {
	if err := cw.fsWatcher.Add(file); err != nil && !os.IsNotExist(err) {
		if cw.logger != nil {
			cw.logger.Warn("Cannot watch certificate file", "file", file, "error", err)
		}
	}
	if err := cw.fsWatcher.Add(filepath.Dir(file)); err != nil {
		if cw.logger != nil {
			cw.logger.Warn("Cannot watch certificate directory",
				"directory", filepath.Dir(file), "error", err)
		}
	}
}

// snapshotModTimes records the current modification times as the baseline
// for change detection.
func (cw *CertWatcher) snapshotModTimes() error {
	for _, file := range cw.files {
		stat, err := os.Stat(file)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("stat %s: %w", file, err)
		}
		cw.modTimes[file] = stat.ModTime()
	}
	return nil
}

func (cw *CertWatcher) loop() {
	for {
		select {
		case event, ok := <-cw.fsWatcher.Events:
			if !ok {
				return
			}
			if cw.relevant(event) {
				cw.scheduleCheck()
			}

		case err, ok := <-cw.fsWatcher.Errors:
			if !ok {
				return
			}
			if cw.logger != nil {
				cw.logger.LogError(err, "Certificate watcher error")
			}

		case <-cw.changed:
			if cw.anyFileChanged() {
				if cw.logger != nil {
					cw.logger.Info("Certificate files changed on disk")
				}
				cw.onChange()
			}

		case <-cw.stop:
			return
		}
	}
}

// relevant reports whether the event touches a watched file. Directory
// watches surface events for sibling files too, so the name is matched by
// base name as well as full path.
func (cw *CertWatcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	return slices.ContainsFunc(cw.files, func(file string) bool {
		return event.Name == file || filepath.Base(event.Name) == filepath.Base(file)
	})
}

// scheduleCheck arms (or re-arms) the debounce timer.
func (cw *CertWatcher) scheduleCheck() {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.timer != nil {
		cw.timer.Stop()
	}
	cw.timer = time.AfterFunc(cw.debounce, func() {
		select {
		case cw.changed <- struct{}{}:
		default:
		}
	})
}

// anyFileChanged compares modification times against the stored baseline
// and updates it. Deleted files count as changed once.
func (cw *CertWatcher) anyFileChanged() bool {
	changed := false
	for _, file := range cw.files {
		stat, err := os.Stat(file)
		if err != nil {
			if _, known := cw.modTimes[file]; known && os.IsNotExist(err) {
				delete(cw.modTimes, file)
				changed = true
			}
			continue
		}
		last, known := cw.modTimes[file]
		if !known || stat.ModTime().After(last) {
			cw.modTimes[file] = stat.ModTime()
			changed = true
		}
	}
	return changed
}
