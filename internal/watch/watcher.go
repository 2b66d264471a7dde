package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/ashureev/agent-office/internal/domain"
	"github.com/ashureev/agent-office/internal/office"
	"github.com/fsnotify/fsnotify"
)

// Reporter is the slice of the office ingest surface the watcher
// needs.
type Reporter interface {
	UpsertAgent(u domain.AgentUpdate) (domain.Agent, error)
	PostChat(in office.ChatInput) domain.ChatMessage
}

// Options configure a Watcher.
type Options struct {
	// Dirs are watched recursively.
	Dirs []string
	// BrainDir routes files to the architect (see Classify).
	BrainDir string
	// BridgeFile, when set, is tailed as NDJSON chat messages
	// instead of being classified like an ordinary file.
	BridgeFile string
	// Debounce coalesces repeated events for the same derived
	// agent id to the latest one.
	Debounce time.Duration
}

// Watcher turns raw filesystem events into agent activity reports.
type Watcher struct {
	reporter Reporter
	opts     Options
	bridge   *BridgeTailer

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New creates a watcher; Run starts it.
func New(reporter Reporter, opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = 400 * time.Millisecond
	}
	w := &Watcher{
		reporter: reporter,
		opts:     opts,
		pending:  make(map[string]*time.Timer),
	}
	if opts.BridgeFile != "" {
		w.bridge = NewBridgeTailer(opts.BridgeFile, reporter)
	}
	return w
}

// Run watches the configured directories until ctx is cancelled.
// Watcher errors are logged and watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	defer func() {
		if closeErr := fw.Close(); closeErr != nil {
			slog.Debug("Failed to close filesystem watcher", "error", closeErr)
		}
	}()

	for _, dir := range w.opts.Dirs {
		if err := addRecursive(fw, dir); err != nil {
			slog.Warn("Failed to watch directory", "dir", dir, "error", err)
		}
	}
	slog.Info("Filesystem producer started", "dirs", w.opts.Dirs, "debounce", w.opts.Debounce)

	// Pick up bridge lines written before the watcher started.
	if w.bridge != nil {
		w.bridge.Drain()
	}

	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fw, ev)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Filesystem watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(fw *fsnotify.Watcher, ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return
	}

	// New directories need their own watch to stay recursive.
	if ev.Has(fsnotify.Create) {
		if err := addRecursive(fw, ev.Name); err == nil {
			slog.Debug("Watching new directory", "dir", ev.Name)
		}
	}

	if w.bridge != nil && samePath(ev.Name, w.opts.BridgeFile) {
		w.bridge.Drain()
		return
	}
	w.reportChange(ev.Name)
}

// reportChange debounces per derived agent id: repeated events within
// the window supersede earlier ones, the latest call wins.
func (w *Watcher) reportChange(path string) {
	c := Classify(path, w.opts.BrainDir)
	base := filepath.Base(path)

	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[c.AgentID]; ok {
		t.Stop()
	}
	w.pending[c.AgentID] = time.AfterFunc(w.opts.Debounce, func() {
		w.mu.Lock()
		delete(w.pending, c.AgentID)
		w.mu.Unlock()

		message := "Editing " + base
		if _, err := w.reporter.UpsertAgent(domain.AgentUpdate{
			ID:      c.AgentID,
			Name:    c.Name,
			Role:    c.Role,
			Action:  c.Action,
			Message: &message,
		}); err != nil {
			slog.Warn("Failed to report file activity", "path", path, "error", err)
		}
	})
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, t := range w.pending {
		t.Stop()
		delete(w.pending, id)
	}
}

func addRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); name != "." && len(name) > 1 && name[0] == '.' {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
}

func samePath(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}
