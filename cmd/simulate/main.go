// simulate drives a scripted office scenario against a running
// agent-office server, for demos and manual testing.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ashureev/agent-office/internal/plan"
	"github.com/ashureev/agent-office/internal/producer"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var server string
	var speed float64

	rootCmd := &cobra.Command{
		Use:           "simulate",
		Short:         "Send mock agent activity to an agent-office server",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&server, "server", "http://localhost:3777", "base URL of the office server")
	rootCmd.PersistentFlags().Float64Var(&speed, "speed", 1.0, "scenario speed multiplier (2 = twice as fast)")

	rootCmd.AddCommand(
		newScenarioCmd(&server, &speed),
		newPlanCmd(&server, &speed),
	)
	return rootCmd
}

func newScenarioCmd(server *string, speed *float64) *cobra.Command {
	return &cobra.Command{
		Use:   "scenario",
		Short: "Replay the scripted OAuth2-team office scenario",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := producer.New(*server)
			if err := client.Health(cmd.Context()); err != nil {
				return fmt.Errorf("%w (is the server running on %s?)", err, *server)
			}
			return runScenario(cmd, client, *speed)
		},
	}
}

func newPlanCmd(server *string, speed *float64) *cobra.Command {
	return &cobra.Command{
		Use:   "plan [prompt...]",
		Short: "Run the fallback execution plan for a prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")
			if prompt == "" {
				prompt = "Ship the next release"
			}
			client := producer.New(*server)
			if err := client.Health(cmd.Context()); err != nil {
				return fmt.Errorf("%w (is the server running on %s?)", err, *server)
			}

			steps := plan.Fallback(prompt)
			fmt.Fprintln(cmd.OutOrStdout(), "Execution plan:")
			for _, step := range steps {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s (%s): %s\n", step.Name, step.Role, step.Message)
			}

			pace := scaled(3*time.Second, *speed)
			runner := plan.NewRunner(client, pace)
			return runner.Run(cmd.Context(), prompt, steps)
		},
	}
}

func scaled(d time.Duration, speed float64) time.Duration {
	if speed <= 0 {
		return d
	}
	return time.Duration(float64(d) / speed)
}
