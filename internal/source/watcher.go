package source

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 250 * time.Millisecond

// WatcherConfig configures a Watcher.
type WatcherConfig struct {
	// DebounceDelay is how long to collect changes before emitting them.
	DebounceDelay time.Duration

	// Logger for watcher events. Defaults to slog.Default().
	Logger *slog.Logger
}

// Watcher reports documents under a DirSource that were created or whose
// content changed. Removals are not reported: loaded taxonomies are never
// evicted.
type Watcher struct {
	src      *DirSource
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration

	pendingMu sync.Mutex
	pending   map[string]struct{} // absolute path

	hashMu sync.Mutex
	hashes map[string][sha256.Size]byte // document name -> content hash

	events  chan string
	dropped atomic.Int64
}

// NewWatcher creates a watcher for src. Call Start to begin watching.
func NewWatcher(src *DirSource, cfg WatcherConfig) (*Watcher, error) {
	if src == nil {
		return nil, errors.New("watcher needs a directory source")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	debounce := cfg.DebounceDelay
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		src:      src,
		watcher:  fsw,
		logger:   logger,
		debounce: debounce,
		pending:  make(map[string]struct{}),
		hashes:   make(map[string][sha256.Size]byte),
		events:   make(chan string, 100),
	}, nil
}

// Events returns document names as they change. The channel is closed
// when the watcher stops.
func (w *Watcher) Events() <-chan string {
	return w.events
}

// Dropped returns how many events were discarded because nobody read them.
func (w *Watcher) Dropped() int64 {
	return w.dropped.Load()
}

// Start adds watches below the source root and processes events until ctx
// is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addWatchesRecursive(w.src.Root()); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("Taxonomy watcher started",
		"dir", w.src.Root(),
		"glob", w.src.Pattern(),
		"debounce", w.debounce)
	return nil
}

// Stop releases the underlying watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addWatchesRecursive(event.Name); err != nil {
				w.logger.Warn("Failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}

	w.pendingMu.Lock()
	w.pending[event.Name] = struct{}{}
	w.pendingMu.Unlock()
}

func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	paths := w.pending
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()

	for path := range paths {
		if ctx.Err() != nil {
			return
		}
		name, ok := w.documentName(path)
		if !ok {
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			// Removed again before the flush.
			continue
		}
		if !w.changed(name, content) {
			continue
		}
		w.send(name)
	}
}

// documentName maps an absolute path to the source's name for it.
func (w *Watcher) documentName(path string) (string, bool) {
	rel, err := filepath.Rel(w.src.Root(), path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	name := filepath.ToSlash(rel)
	return name, w.src.Match(name)
}

func (w *Watcher) changed(name string, content []byte) bool {
	sum := sha256.Sum256(content)
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	if old, ok := w.hashes[name]; ok && old == sum {
		return false
	}
	w.hashes[name] = sum
	return true
}

func (w *Watcher) send(name string) {
	select {
	case w.events <- name:
		w.logger.Debug("Taxonomy document changed", "name", name)
	default:
		n := w.dropped.Add(1)
		w.logger.Warn("Watcher event dropped", "name", name, "dropped_total", n)
	}
}
