package watch

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/ashureev/agent-office/internal/office"
)

// BridgeTailer ingests an append-only NDJSON file as chat messages.
// It remembers the byte offset of the last fully read line so each
// Drain only processes newly appended lines. A line that does not
// parse is logged and skipped; draining continues.
type BridgeTailer struct {
	path     string
	reporter Reporter

	mu     sync.Mutex
	offset int64
}

// NewBridgeTailer creates a tailer starting at the beginning of the
// file.
func NewBridgeTailer(path string, reporter Reporter) *BridgeTailer {
	return &BridgeTailer{path: path, reporter: reporter}
}

// Drain reads and ingests all complete lines appended since the last
// call. A missing file is not an error; a truncated file restarts
// from the beginning.
func (t *BridgeTailer) Drain() {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := os.Open(t.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("Failed to open bridge file", "path", t.path, "error", err)
		}
		return
	}
	defer func() {
		_ = f.Close()
	}()

	info, err := f.Stat()
	if err != nil {
		slog.Warn("Failed to stat bridge file", "path", t.path, "error", err)
		return
	}
	if info.Size() < t.offset {
		slog.Info("Bridge file truncated, restarting from start", "path", t.path)
		t.offset = 0
	}
	if _, err := f.Seek(t.offset, io.SeekStart); err != nil {
		slog.Warn("Failed to seek bridge file", "path", t.path, "error", err)
		return
	}

	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			// A partial trailing line stays unconsumed until the
			// producer finishes it with a newline.
			break
		}
		t.offset += int64(len(line))
		t.ingestLine(line)
	}
}

func (t *BridgeTailer) ingestLine(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	var msg office.ChatInput
	if err := json.Unmarshal([]byte(line), &msg); err != nil {
		slog.Warn("Skipping malformed bridge line", "path", t.path, "error", err)
		return
	}
	t.reporter.PostChat(msg)
}
