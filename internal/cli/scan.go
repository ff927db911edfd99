package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/narrate-dev/narrate/internal/config"
	"github.com/narrate-dev/narrate/internal/gitdiff"
	"github.com/narrate-dev/narrate/internal/hunk"
	"github.com/narrate-dev/narrate/internal/secrets"
)

// runScan scans the scope's added lines for secrets and prints a report.
// Exit code 1 signals unsuppressed findings at or above the block-on
// threshold; the pre-commit hook keys off that.
func runScan(scope gitdiff.Scope) {
	cfg, err := config.Load(buildOverrides())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	diff, err := gitdiff.Collect(context.Background(), scope)
	if err != nil {
		reportPipelineError(err)
		return
	}

	hunks, err := hunk.Segment(diff)
	if err != nil {
		reportPipelineError(err)
		return
	}

	scanCfg := cfg.ScannerConfig()
	scanCfg.Markers = append(scanCfg.Markers, splitComma(flagMarkers)...)
	findings := secrets.New(scanCfg).Scan(hunks)
	report := secrets.BuildReport(findings, cfg.MaxFindings, secrets.Confidence(cfg.BlockOn))

	if cfg.Format == "json" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return
		}
		fmt.Fprintln(os.Stdout, string(data))
	} else {
		printScanReport(report)
	}

	if cfg.BlockOn != "none" && cfg.BlockOn != "" && report.Blocking > 0 {
		exitCode = ExitFindings
	}
}

func printScanReport(report secrets.ScanReport) {
	fmt.Fprintln(os.Stdout, report.Message)
	for _, f := range report.Findings {
		suffix := ""
		if f.Suppressed {
			suffix = " (suppressed)"
		}
		fmt.Fprintf(os.Stdout, "  [%s] %s:%d %s %s%s\n",
			f.Confidence, f.FilePath, f.Line, f.Detector, f.Preview, suffix)
	}
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan changes for secrets",
	Long:  "Scan the added lines of a diff for credentials. Use subcommands to select the scope.",
}

var scanStagedCmd = &cobra.Command{
	Use:   "staged",
	Short: "Scan staged changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		runScan(gitdiff.Scope{Mode: gitdiff.ModeStaged})
		return nil
	},
}

var scanUnstagedCmd = &cobra.Command{
	Use:   "unstaged",
	Short: "Scan unstaged changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		runScan(gitdiff.Scope{Mode: gitdiff.ModeUnstaged})
		return nil
	},
}

var scanRangeCmd = &cobra.Command{
	Use:   "range <revRange>",
	Short: "Scan a revision range",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scope, err := gitdiff.ParseScope(gitdiff.ModeRange, args[0])
		if err != nil {
			return err
		}
		runScan(scope)
		return nil
	},
}

func init() {
	scanCmd.AddCommand(scanStagedCmd)
	scanCmd.AddCommand(scanUnstagedCmd)
	scanCmd.AddCommand(scanRangeCmd)

	for _, cmd := range []*cobra.Command{scanStagedCmd, scanUnstagedCmd, scanRangeCmd} {
		cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json)")
		cmd.Flags().StringVar(&flagBlockOn, "block-on", "", "Confidence threshold for blocking findings")
		cmd.Flags().StringVar(&flagMarkers, "markers", "", "Extra suppression markers (comma-separated)")
	}
}
