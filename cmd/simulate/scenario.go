package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ashureev/agent-office/internal/domain"
	"github.com/ashureev/agent-office/internal/producer"
	"github.com/spf13/cobra"
)

// scenario is the scripted OAuth2-team demo: a prompt starts, five
// agents spawn, delegate, code, review, take a coffee break, and
// leave. Each beat posts one activity report and then waits.
func runScenario(cmd *cobra.Command, client *producer.Client, speed float64) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	step := func(note string, wait time.Duration, fn func(context.Context) error) error {
		fmt.Fprintln(out, note)
		if err := fn(ctx); err != nil {
			return err
		}
		return sleep(ctx, scaled(wait, speed))
	}

	upsert := func(id string, fields func(*domain.AgentUpdate)) func(context.Context) error {
		return func(ctx context.Context) error {
			u := domain.AgentUpdate{ID: id}
			fields(&u)
			return client.UpsertAgent(ctx, u)
		}
	}
	say := func(u *domain.AgentUpdate, action, message, target string) {
		u.Action = action
		u.Message = &message
		if target != "" {
			u.Target = &target
		}
	}

	fmt.Fprintln(out, "Starting agent simulation...")

	beats := []struct {
		note string
		wait time.Duration
		fn   func(context.Context) error
	}{
		{"Prompt: build a user authentication system with OAuth2", 1500 * time.Millisecond, func(ctx context.Context) error {
			return client.StartPrompt(ctx, "Build a user authentication system with OAuth2")
		}},
		{"Spawning Alice (architect)", 2500 * time.Millisecond, upsert("agent-1", func(u *domain.AgentUpdate) {
			u.Name, u.Role = "Alice", "architect"
			say(u, "thinking", "Analyzing requirements for OAuth2 auth system...", "")
		})},
		{"Alice is planning the architecture", 2 * time.Second, upsert("agent-1", func(u *domain.AgentUpdate) {
			say(u, "thinking", "Need a token service, user store, and OAuth provider integration...", "")
		})},
		{"Spawning Bob (developer)", 1500 * time.Millisecond, upsert("agent-2", func(u *domain.AgentUpdate) {
			u.Name, u.Role = "Bob", "developer"
			say(u, "idle", "Ready to code!", "")
		})},
		{"Alice delegates the auth module to Bob", 2500 * time.Millisecond, upsert("agent-1", func(u *domain.AgentUpdate) {
			say(u, "talking", "Bob, implement the JWT token service first", "Bob")
		})},
		{"Bob is coding", 2 * time.Second, upsert("agent-2", func(u *domain.AgentUpdate) {
			say(u, "coding", "Writing token service with RS256 signing...", "")
		})},
		{"Spawning Carol (tester)", 2 * time.Second, upsert("agent-3", func(u *domain.AgentUpdate) {
			u.Name, u.Role = "Carol", "tester"
			say(u, "thinking", "Preparing test scenarios for auth flow...", "")
		})},
		{"Spawning Dave (developer)", 1500 * time.Millisecond, upsert("agent-4", func(u *domain.AgentUpdate) {
			u.Name, u.Role = "Dave", "developer"
			say(u, "idle", "Checking in, what needs to be done?", "")
		})},
		{"Alice delegates OAuth integration to Dave", 2 * time.Second, upsert("agent-1", func(u *domain.AgentUpdate) {
			say(u, "talking", "Dave, handle the Google/GitHub OAuth provider integration", "Dave")
		})},
		{"Dave is coding", 2 * time.Second, upsert("agent-4", func(u *domain.AgentUpdate) {
			say(u, "coding", "Setting up OAuth2 client with PKCE flow...", "")
		})},
		{"Bob reviews at the whiteboard", 2500 * time.Millisecond, upsert("agent-2", func(u *domain.AgentUpdate) {
			say(u, "reviewing", "Token service is complete, reviewing the code...", "")
		})},
		{"Carol reports test results to Bob", 2500 * time.Millisecond, upsert("agent-3", func(u *domain.AgentUpdate) {
			say(u, "talking", "Bob, all 12 unit tests passing for token service!", "Bob")
		})},
		{"Spawning Eve (PM)", 2 * time.Second, upsert("agent-5", func(u *domain.AgentUpdate) {
			u.Name, u.Role = "Eve", "pm"
			say(u, "thinking", "Reviewing project progress...", "")
		})},
		{"Eve asks Alice for a status update", 2 * time.Second, upsert("agent-5", func(u *domain.AgentUpdate) {
			say(u, "talking", "Alice, what is the ETA for the OAuth2 module?", "Alice")
		})},
		{"Alice responds", 2 * time.Second, upsert("agent-1", func(u *domain.AgentUpdate) {
			say(u, "talking", "Token service done. OAuth integration 70% complete.", "Eve")
		})},
		{"Coffee break", time.Second, upsert("agent-2", func(u *domain.AgentUpdate) {
			say(u, "break", "Need coffee", "")
		})},
		{"Dave joins the break", 3 * time.Second, upsert("agent-4", func(u *domain.AgentUpdate) {
			say(u, "break", "Coffee time!", "")
		})},
		{"Dave finished OAuth integration", 2 * time.Second, upsert("agent-4", func(u *domain.AgentUpdate) {
			say(u, "coding", "OAuth2 integration complete. PR ready.", "")
		})},
		{"Carol verifies the integration", 1500 * time.Millisecond, upsert("agent-3", func(u *domain.AgentUpdate) {
			say(u, "thinking", "All tests green. Integration verified.", "")
		})},
		{"Eve wraps up", 2 * time.Second, upsert("agent-5", func(u *domain.AgentUpdate) {
			say(u, "talking", "Great work team! Shipping to production.", "All")
		})},
	}
	for _, b := range beats {
		if err := step(b.note, b.wait, b.fn); err != nil {
			return err
		}
	}

	fmt.Fprintln(out, "Agents leaving...")
	for _, id := range []string{"agent-3", "agent-4", "agent-2", "agent-5", "agent-1"} {
		if err := client.RemoveAgent(ctx, id); err != nil {
			return err
		}
		if err := sleep(ctx, scaled(800*time.Millisecond, speed)); err != nil {
			return err
		}
	}

	fmt.Fprintln(out, "Simulation complete.")
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
