package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/narrate-dev/narrate/internal/config"
	"github.com/narrate-dev/narrate/internal/gitdiff"
	"github.com/narrate-dev/narrate/internal/output"
	"github.com/narrate-dev/narrate/internal/pipeline"
	"github.com/narrate-dev/narrate/internal/secrets"
)

// Shared context/scan flags
var (
	flagGoal      string
	flagBudget    int
	flagEstimator string
	flagFormat    string
	flagOut       string
	flagBlockOn   string
	flagMarkers   string
)

func addContextFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagGoal, "goal", "", "Goal statement for alignment classification")
	cmd.Flags().IntVar(&flagBudget, "budget", 0, "Token budget per page (overrides config)")
	cmd.Flags().StringVar(&flagEstimator, "estimator", "", "Cost estimator (lines, chars)")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json, markdown)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&flagBlockOn, "block-on", "", "Confidence threshold for blocking findings (none, low, medium, high)")
	cmd.Flags().StringVar(&flagMarkers, "markers", "", "Extra suppression markers (comma-separated)")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagBudget > 0 {
		m["tokenBudget"] = fmt.Sprintf("%d", flagBudget)
	}
	if flagEstimator != "" {
		m["estimator"] = flagEstimator
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagBlockOn != "" {
		m["blockOn"] = flagBlockOn
	}
	return m
}

func buildOptions(scope gitdiff.Scope) pipeline.Options {
	return pipeline.Options{
		Scope:   scope,
		Goal:    flagGoal,
		Budget:  flagBudget,
		Markers: splitComma(flagMarkers),
	}
}

func splitComma(s string) []string {
	var result []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// runContext builds the commit context for the scope and writes it.
// Exit code 1 signals blocking secret findings, so hooks can gate.
func runContext(scope gitdiff.Scope) {
	cfg, err := config.Load(buildOverrides())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	cc, err := pipeline.Build(context.Background(), buildOptions(scope), cfg)
	if err != nil {
		reportPipelineError(err)
		return
	}

	if err := output.WriteContext(cc, cfg.Format, flagOut); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	if cfg.BlockOn != "none" && cfg.BlockOn != "" {
		if n := secrets.BlockingCount(cc.Findings, secrets.Confidence(cfg.BlockOn)); n > 0 {
			fmt.Fprintf(os.Stderr, "narrate: %d blocking secret finding(s)\n", n)
			exitCode = ExitFindings
		}
	}
}

func reportPipelineError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	switch {
	case errors.Is(err, gitdiff.ErrNoChanges):
		fmt.Fprintln(os.Stderr, "Hint: stage or make changes first.")
		exitCode = ExitUsageError
	case errors.Is(err, gitdiff.ErrSourceUnavailable):
		fmt.Fprintln(os.Stderr, "Hint: run inside a git repository.")
		exitCode = ExitUsageError
	case pipeline.IsUserError(err):
		exitCode = ExitUsageError
	default:
		exitCode = ExitRuntimeError
	}
}

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Build commit context from changes",
	Long:  "Build bounded, secret-scanned, goal-aligned commit context. Use subcommands to select the scope.",
}

var contextStagedCmd = &cobra.Command{
	Use:   "staged",
	Short: "Context from staged changes (index vs HEAD)",
	RunE: func(cmd *cobra.Command, args []string) error {
		runContext(gitdiff.Scope{Mode: gitdiff.ModeStaged})
		return nil
	},
}

var contextUnstagedCmd = &cobra.Command{
	Use:   "unstaged",
	Short: "Context from unstaged changes (working tree vs index)",
	RunE: func(cmd *cobra.Command, args []string) error {
		runContext(gitdiff.Scope{Mode: gitdiff.ModeUnstaged})
		return nil
	},
}

var contextRangeCmd = &cobra.Command{
	Use:   "range <revRange>",
	Short: "Context from a revision range (e.g., origin/main..HEAD)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scope, err := gitdiff.ParseScope(gitdiff.ModeRange, args[0])
		if err != nil {
			return err
		}
		runContext(scope)
		return nil
	},
}

func init() {
	contextCmd.AddCommand(contextStagedCmd)
	contextCmd.AddCommand(contextUnstagedCmd)
	contextCmd.AddCommand(contextRangeCmd)

	for _, cmd := range []*cobra.Command{contextStagedCmd, contextUnstagedCmd, contextRangeCmd} {
		addContextFlags(cmd)
	}
}
