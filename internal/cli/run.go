package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/quayside/chainstage/internal/chain"
	"github.com/quayside/chainstage/internal/harness"
	"github.com/quayside/chainstage/internal/ledger"
	"github.com/quayside/chainstage/internal/params"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	ParamsDir string
	Database  string
}

// RunReport is the run command's result payload.
type RunReport struct {
	Scenario string   `json:"scenario"`
	Pass     bool     `json:"pass"`
	RunID    string   `json:"run_id"`
	Events   int      `json:"events"`
	Errors   []string `json:"errors,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scenario against a fresh chain",
		Long: `Run a scenario file: execute its setup steps against a simulated
chain and evaluate its trace and final-state assertions.

The chain state lives in a SQLite ledger. By default the run uses a
throwaway database; pass --db to keep the resulting ledger around for
inspection with the ledger command.

Exit codes:
  0 - scenario passed
  1 - scenario failed (setup error or assertion failure)
  2 - command error (bad paths, malformed scenario or parameters)

Examples:
  chainstage run scenarios/full_setup.yaml
  chainstage run scenarios/full_setup.yaml --db ./run.db --verbose
  chainstage run scenarios/full_setup.yaml --params ./params --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioFile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ParamsDir, "params", "", "directory of CUE parameter files (defaults to built-in parameters)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite ledger (defaults to a throwaway database)")

	return cmd
}

func runScenarioFile(opts *RunOptions, scenarioPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	ctx := commandContext(cmd)

	p, err := loadParams(opts.ParamsDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load parameters", err)
	}

	scenario, err := harness.LoadScenario(scenarioPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	formatter.VerboseLog("Loaded scenario %s (%d steps, %d assertions)",
		scenario.Name, len(scenario.Setup), len(scenario.Assertions))

	dbPath, cleanup, err := resolveDatabase(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to prepare database", err)
	}
	defer cleanup()

	lgr, err := ledger.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open ledger", err)
	}
	defer closeLedger(lgr)

	c, err := chain.New(ctx, lgr, p)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to initialize chain", err)
	}

	result, err := harness.RunScenario(ctx, scenario, p, c, lgr)
	if err != nil {
		return WrapExitError(ExitCommandError, "scenario execution failed", err)
	}

	if err := lgr.SetMeta(ctx, "run_id", result.RunID); err != nil {
		slog.Warn("failed to record run id", "error", err)
	}

	if opts.Verbose && opts.Format != "json" {
		printTrace(formatter, result.Trace)
	}

	report := RunReport{
		Scenario: scenario.Name,
		Pass:     result.Pass,
		RunID:    result.RunID,
		Events:   len(result.Trace),
		Errors:   result.Errors,
	}
	return outputRunReport(formatter, report)
}

// outputRunReport prints one scenario's outcome and maps a failure to
// exit code 1.
func outputRunReport(formatter *OutputFormatter, report RunReport) error {
	if formatter.Format == "json" {
		if err := formatter.Success(report); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		if report.Pass {
			fmt.Fprintf(w, "✓ %s (%d events, run %s)\n", report.Scenario, report.Events, report.RunID)
		} else {
			fmt.Fprintf(w, "✗ %s (%d events, run %s)\n", report.Scenario, report.Events, report.RunID)
			for _, msg := range report.Errors {
				fmt.Fprintf(w, "  %s\n", msg)
			}
		}
	}

	if !report.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed with %d error(s)", report.Scenario, len(report.Errors)))
	}
	return nil
}

// printTrace lists the recorded facade calls, one per line.
func printTrace(formatter *OutputFormatter, trace []harness.TraceEvent) {
	w := formatter.Writer
	for _, event := range trace {
		if event.Actor != "" {
			fmt.Fprintf(w, "  [%d] %s actor=%s\n", event.Seq, event.Op, event.Actor)
		} else {
			fmt.Fprintf(w, "  [%d] %s\n", event.Seq, event.Op)
		}
	}
}

// loadParams compiles protocol parameters from a CUE directory, or
// returns the built-in defaults when dir is empty.
func loadParams(dir string) (params.Protocol, error) {
	if dir == "" {
		return params.Default(), nil
	}
	p, err := params.CompileDir(dir)
	if err != nil {
		return params.Protocol{}, err
	}
	return *p, nil
}

// resolveDatabase picks the ledger path. An empty path means a
// throwaway database removed by the returned cleanup.
func resolveDatabase(path string) (string, func(), error) {
	if path != "" {
		return path, func() {}, nil
	}

	dir, err := os.MkdirTemp("", "chainstage-*")
	if err != nil {
		return "", nil, fmt.Errorf("create temp dir: %w", err)
	}
	cleanup := func() {
		if err := os.RemoveAll(dir); err != nil {
			slog.Warn("failed to remove throwaway database", "dir", dir, "error", err)
		}
	}
	return filepath.Join(dir, "run.db"), cleanup, nil
}

// closeLedger closes the ledger and logs instead of masking a command
// error already in flight.
func closeLedger(lgr *ledger.Ledger) {
	if err := lgr.Close(); err != nil {
		slog.Error("error closing ledger", "error", err)
	}
}

// commandContext returns the command's context, or a background one
// when cobra was invoked without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
