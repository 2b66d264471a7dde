// Package plan models the external task planner: an ordered list of
// agent steps for a prompt, consumed one at a time. The model call
// that produces a plan lives outside this repo; only the consumption
// contract and a static fallback are here.
package plan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ashureev/agent-office/internal/domain"
	"github.com/ashureev/agent-office/internal/producer"
)

// Step is one unit of planned work, assigned to a role.
type Step struct {
	Role    string `json:"role"`
	Name    string `json:"name"`
	Action  string `json:"action"`
	Message string `json:"message"`
	Target  string `json:"target,omitempty"`
}

// Planner turns a prompt into an ordered sequence of steps.
type Planner interface {
	Plan(ctx context.Context, prompt string) ([]Step, error)
}

// Fallback returns the static plan used when no planner is available.
func Fallback(prompt string) []Step {
	return []Step{
		{Role: "architect", Name: "Alice", Action: "thinking", Message: "Analyzing: " + prompt},
		{Role: "developer", Name: "Bob", Action: "coding", Message: "Implementing..."},
		{Role: "tester", Name: "Carol", Action: "reviewing", Message: "Testing..."},
	}
}

// Runner feeds a plan into the office one step at a time, then walks
// the spawned agents back out. Failed reports are logged and skipped;
// the run keeps going (fire-and-forget producer semantics).
type Runner struct {
	client *producer.Client
	pace   time.Duration
}

// NewRunner creates a runner posting through client, pausing pace
// between steps.
func NewRunner(client *producer.Client, pace time.Duration) *Runner {
	if pace <= 0 {
		pace = 3 * time.Second
	}
	return &Runner{client: client, pace: pace}
}

// Run starts the prompt and executes the steps in order. Each step
// upserts one sequentially numbered agent; once all steps ran, the
// agents are removed in spawn order.
func (r *Runner) Run(ctx context.Context, prompt string, steps []Step) error {
	if err := r.client.StartPrompt(ctx, prompt); err != nil {
		return fmt.Errorf("failed to start prompt: %w", err)
	}

	for i, step := range steps {
		if err := sleepCtx(ctx, r.pace); err != nil {
			return err
		}
		message := step.Message
		update := domain.AgentUpdate{
			ID:      fmt.Sprintf("chat-%d", i+1),
			Name:    step.Name,
			Role:    step.Role,
			Action:  step.Action,
			Message: &message,
		}
		if step.Target != "" {
			target := step.Target
			update.Target = &target
		}
		if err := r.client.UpsertAgent(ctx, update); err != nil {
			slog.Warn("Plan step report failed", "step", i+1, "error", err)
		}
	}

	for i := range steps {
		if err := sleepCtx(ctx, r.pace/6); err != nil {
			return err
		}
		if err := r.client.RemoveAgent(ctx, fmt.Sprintf("chat-%d", i+1)); err != nil {
			slog.Warn("Plan agent removal failed", "step", i+1, "error", err)
		}
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
