package watch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ashureev/agent-office/internal/domain"
	"github.com/ashureev/agent-office/internal/office"
)

type fakeReporter struct {
	mu      sync.Mutex
	upserts []domain.AgentUpdate
	chats   []office.ChatInput
}

func (f *fakeReporter) UpsertAgent(u domain.AgentUpdate) (domain.Agent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, u)
	return domain.Agent{ID: u.ID}, nil
}

func (f *fakeReporter) PostChat(in office.ChatInput) domain.ChatMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chats = append(f.chats, in)
	return domain.ChatMessage{Role: in.Role, Agent: in.Agent, Text: in.Text}
}

func (f *fakeReporter) upsertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.upserts)
}

func (f *fakeReporter) chatCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.chats)
}

func TestDebounceCoalescesToLatest(t *testing.T) {
	t.Parallel()
	rep := &fakeReporter{}
	w := New(rep, Options{Debounce: 30 * time.Millisecond})

	// Both paths derive the same developer agent; only the latest
	// may be reported.
	w.reportChange("pkg/first.go")
	w.reportChange("pkg/second.go")

	waitForCount(t, rep.upsertCount, 1)
	time.Sleep(60 * time.Millisecond)
	if rep.upsertCount() != 1 {
		t.Fatalf("expected a single coalesced report, got %d", rep.upsertCount())
	}

	rep.mu.Lock()
	defer rep.mu.Unlock()
	u := rep.upserts[0]
	if u.ID != "fs-developer" || u.Message == nil || *u.Message != "Editing second.go" {
		t.Fatalf("expected latest event to win, got %+v", u)
	}
}

func TestDebounceKeysByDerivedAgent(t *testing.T) {
	t.Parallel()
	rep := &fakeReporter{}
	w := New(rep, Options{Debounce: 20 * time.Millisecond})

	// Different derived agents do not coalesce with each other.
	w.reportChange("pkg/server.go")
	w.reportChange("docs/guide.md")

	waitForCount(t, rep.upsertCount, 2)

	rep.mu.Lock()
	defer rep.mu.Unlock()
	ids := map[string]bool{}
	for _, u := range rep.upserts {
		ids[u.ID] = true
	}
	if !ids["fs-developer"] || !ids["fs-pm"] {
		t.Fatalf("expected reports for both agents, got %+v", rep.upserts)
	}
}

func TestBridgeTailerTracksOffset(t *testing.T) {
	t.Parallel()
	rep := &fakeReporter{}
	path := filepath.Join(t.TempDir(), "bridge.ndjson")

	writeFile(t, path, `{"role":"user","agent":"You","text":"first"}`+"\n"+
		`not json at all`+"\n"+
		`{"role":"agent","agent":"Alice","text":"second"}`+"\n")

	tailer := NewBridgeTailer(path, rep)
	tailer.Drain()

	if rep.chatCount() != 2 {
		t.Fatalf("expected 2 ingested messages (malformed line skipped), got %d", rep.chatCount())
	}

	// Draining again without new content is a no-op.
	tailer.Drain()
	if rep.chatCount() != 2 {
		t.Fatalf("expected offset to prevent re-ingestion, got %d", rep.chatCount())
	}

	appendFile(t, path, `{"role":"agent","agent":"Bob","text":"third"}`+"\n")
	tailer.Drain()
	if rep.chatCount() != 3 {
		t.Fatalf("expected newly appended line to be ingested, got %d", rep.chatCount())
	}

	rep.mu.Lock()
	defer rep.mu.Unlock()
	if rep.chats[2].Text != "third" {
		t.Fatalf("unexpected third message: %+v", rep.chats[2])
	}
}

func TestBridgeTailerWaitsForCompleteLines(t *testing.T) {
	t.Parallel()
	rep := &fakeReporter{}
	path := filepath.Join(t.TempDir(), "bridge.ndjson")

	// No trailing newline: the line is still being written.
	writeFile(t, path, `{"role":"user","agent":"You","text":"partial"}`)

	tailer := NewBridgeTailer(path, rep)
	tailer.Drain()
	if rep.chatCount() != 0 {
		t.Fatalf("expected partial line to stay unconsumed, got %d", rep.chatCount())
	}

	appendFile(t, path, "\n")
	tailer.Drain()
	if rep.chatCount() != 1 {
		t.Fatalf("expected completed line to be ingested, got %d", rep.chatCount())
	}
}

func TestBridgeTailerMissingFile(t *testing.T) {
	t.Parallel()
	rep := &fakeReporter{}
	tailer := NewBridgeTailer(filepath.Join(t.TempDir(), "absent.ndjson"), rep)

	tailer.Drain()
	if rep.chatCount() != 0 {
		t.Fatal("draining a missing file must be a silent no-op")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func appendFile(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("failed to open %s for append: %v", path, err)
	}
	defer func() { _ = f.Close() }()
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("failed to append to %s: %v", path, err)
	}
}

func waitForCount(t *testing.T, count func() int, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if count() >= want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d reports, have %d", want, count())
}
