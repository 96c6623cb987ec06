package importer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultSettleDelay = 2 * time.Second

// DirWatcher watches a drop directory for CSV files and imports each one
// once it has stopped growing. Processed files are renamed with a .done or
// .failed suffix so restarts skip them.
type DirWatcher struct {
	importer *Importer
	dir      string
	settle   time.Duration
	logger   *slog.Logger

	watcher *fsnotify.Watcher

	pending map[string]*pendingFile
	mu      sync.Mutex // protects pending
	done    chan struct{}
}

// pendingFile tracks a dropped file that may still be copying in.
type pendingFile struct {
	size    int64
	modTime time.Time
	timer   *time.Timer
}

// NewDirWatcher creates a watcher on dir, creating the directory if needed.
// A settle of zero means the default of two seconds.
func NewDirWatcher(imp *Importer, dir string, settle time.Duration, logger *slog.Logger) (*DirWatcher, error) {
	if settle <= 0 {
		settle = defaultSettleDelay
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create import dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &DirWatcher{
		importer: imp,
		dir:      dir,
		settle:   settle,
		logger:   logger.With("component", "import-watcher", "dir", dir),
		watcher:  watcher,
		pending:  make(map[string]*pendingFile),
		done:     make(chan struct{}),
	}, nil
}

// Run watches the directory until ctx is cancelled. CSV files already
// present are imported on startup, covering drops made while the server
// was down.
func (w *DirWatcher) Run(ctx context.Context) error {
	w.sweepExisting(ctx)

	for {
		select {
		case <-ctx.Done():
			w.shutdown()
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// sweepExisting imports files that were already in the directory.
func (w *DirWatcher) sweepExisting(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.logger.Warn("read import dir", "error", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !isCandidate(entry.Name()) {
			continue
		}
		w.process(ctx, filepath.Join(w.dir, entry.Name()))
	}
}

func (w *DirWatcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !isCandidate(event.Name) {
		return
	}

	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		w.cancelPending(event.Name)
		return
	}

	if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
		w.startSettling(ctx, event.Name)
	}
}

// startSettling (re)arms the settle timer for a file. Every write restarts
// the clock, so a file is only imported once it has been quiet for the
// settle delay.
func (w *DirWatcher) startSettling(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if p, exists := w.pending[path]; exists {
		p.timer.Stop()
	}

	info, err := os.Stat(path)
	if err != nil {
		delete(w.pending, path)
		return
	}
	if info.IsDir() {
		return
	}

	p := &pendingFile{size: info.Size(), modTime: info.ModTime()}
	p.timer = time.AfterFunc(w.settle, func() {
		w.checkSettled(ctx, path)
	})
	w.pending[path] = p
}

// checkSettled re-stats the file after the settle delay. A file still
// changing gets another delay; a stable one is imported.
func (w *DirWatcher) checkSettled(ctx context.Context, path string) {
	select {
	case <-w.done:
		return
	default:
	}

	w.mu.Lock()
	p, exists := w.pending[path]
	if !exists {
		w.mu.Unlock()
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		delete(w.pending, path)
		w.mu.Unlock()
		return
	}

	if info.Size() != p.size || info.ModTime() != p.modTime {
		p.size = info.Size()
		p.modTime = info.ModTime()
		p.timer = time.AfterFunc(w.settle, func() {
			w.checkSettled(ctx, path)
		})
		w.mu.Unlock()
		return
	}

	delete(w.pending, path)
	w.mu.Unlock()

	w.process(ctx, path)
}

// process imports one file and renames it according to the outcome.
func (w *DirWatcher) process(ctx context.Context, path string) {
	logger := w.logger.With("file", filepath.Base(path))

	f, err := os.Open(path)
	if err != nil {
		logger.Warn("open dropped file", "error", err)
		return
	}
	report, err := w.importer.ImportCSV(ctx, f)
	f.Close()

	if err != nil {
		logger.Error("import failed", "error", err)
		w.finalize(path, ".failed")
		return
	}

	logger.Info("imported dropped file",
		"created", report.Created,
		"updated", report.Updated,
		"failed", report.Failed,
	)
	w.finalize(path, ".done")
}

func (w *DirWatcher) finalize(path, suffix string) {
	if err := os.Rename(path, path+suffix); err != nil {
		w.logger.Warn("rename processed file", "path", path, "error", err)
	}
}

func (w *DirWatcher) cancelPending(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if p, exists := w.pending[path]; exists {
		p.timer.Stop()
		delete(w.pending, path)
	}
}

func (w *DirWatcher) shutdown() {
	close(w.done)

	w.mu.Lock()
	for _, p := range w.pending {
		p.timer.Stop()
	}
	clear(w.pending)
	w.mu.Unlock()

	w.watcher.Close()
}

// isCandidate reports whether a path looks like a droppable CSV. The
// .done/.failed renames change the extension, so processed files are
// excluded automatically.
func isCandidate(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}
