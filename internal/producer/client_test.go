package producer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ashureev/agent-office/internal/domain"
	"github.com/ashureev/agent-office/internal/office"
)

type capture struct {
	mu    sync.Mutex
	paths []string
	last  map[string]any
}

func newCaptureServer(t *testing.T, status int) (*capture, *httptest.Server) {
	t.Helper()
	c := &capture{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		c.mu.Lock()
		c.paths = append(c.paths, r.URL.Path)
		c.last = body
		c.mu.Unlock()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)
	return c, srv
}

func TestClientPostsActivityReports(t *testing.T) {
	t.Parallel()
	rec, srv := newCaptureServer(t, http.StatusOK)
	client := New(srv.URL)
	ctx := context.Background()

	if err := client.StartPrompt(ctx, "demo"); err != nil {
		t.Fatalf("StartPrompt failed: %v", err)
	}
	if err := client.UpsertAgent(ctx, domain.AgentUpdate{ID: "a1", Name: "Alice"}); err != nil {
		t.Fatalf("UpsertAgent failed: %v", err)
	}
	if err := client.PostChat(ctx, office.ChatInput{Role: "user", Text: "hi"}); err != nil {
		t.Fatalf("PostChat failed: %v", err)
	}
	if err := client.RemoveAgent(ctx, "a1"); err != nil {
		t.Fatalf("RemoveAgent failed: %v", err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	want := []string{"/api/prompt", "/api/agent", "/api/chat", "/api/agent"}
	if len(rec.paths) != len(want) {
		t.Fatalf("expected %d requests, got %v", len(want), rec.paths)
	}
	for i, p := range want {
		if rec.paths[i] != p {
			t.Errorf("request %d path = %q, want %q", i, rec.paths[i], p)
		}
	}
	if rec.last["remove"] != true || rec.last["id"] != "a1" {
		t.Errorf("unexpected final remove body: %v", rec.last)
	}
}

func TestClientReportsServerErrors(t *testing.T) {
	t.Parallel()
	_, srv := newCaptureServer(t, http.StatusBadRequest)
	client := New(srv.URL)

	if err := client.StartPrompt(context.Background(), "demo"); err == nil {
		t.Fatal("expected error for 400 response")
	}
}

func TestClientReportsUnreachableServer(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client := New(srv.URL)
	if err := client.Health(context.Background()); err == nil {
		t.Fatal("expected error for unreachable server")
	}
}
