// Package producer is the HTTP client side of the ingest API, used by
// external producers such as the simulation CLI. Calls are one-way:
// the server's answer is drained and discarded, and callers that want
// fire-and-forget semantics simply ignore the returned error.
package producer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ashureev/agent-office/internal/domain"
	"github.com/ashureev/agent-office/internal/office"
)

// Client posts activity reports to a running office server.
type Client struct {
	base string
	http *http.Client
}

// New creates a client for the server at base, e.g.
// "http://localhost:3777".
func New(base string) *Client {
	return &Client{
		base: base,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// StartPrompt begins a new prompt session.
func (c *Client) StartPrompt(ctx context.Context, text string) error {
	return c.post(ctx, "/api/prompt", map[string]string{"text": text})
}

// UpsertAgent reports one agent activity update.
func (c *Client) UpsertAgent(ctx context.Context, u domain.AgentUpdate) error {
	return c.post(ctx, "/api/agent", u)
}

// RemoveAgent removes one agent.
func (c *Client) RemoveAgent(ctx context.Context, id string) error {
	return c.post(ctx, "/api/agent", domain.AgentUpdate{ID: id, Remove: true})
}

// PostChat appends one chat message.
func (c *Client) PostChat(ctx context.Context, in office.ChatInput) error {
	return c.post(ctx, "/api/chat", in)
}

// Health checks that the server answers at all.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("server unreachable: %w", err)
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected health status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer drain(resp)
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("post %s: status %d", path, resp.StatusCode)
	}
	return nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
