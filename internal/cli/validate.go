package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quayside/chainstage/internal/params"
)

// ValidationResult holds parameter validation results.
type ValidationResult struct {
	Valid    bool                     `json:"valid"`
	Errors   []params.ValidationError `json:"errors,omitempty"`
	Protocol *params.Protocol         `json:"protocol,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <params-dir>",
		Short: "Compile-check CUE parameter files",
		Long: `Compile protocol parameter files and check them against the semantic
rules (positive amounts, join range ordering, funding sufficiency)
without running anything.

Exit codes:
  0 - parameters compile and validate
  1 - compilation or validation errors
  2 - command error (directory not found)

Examples:
  chainstage validate ./params
  chainstage validate ./params --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paramsDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	info, err := os.Stat(paramsDir)
	if os.IsNotExist(err) {
		return commandError(formatter, ErrCodeParams, fmt.Sprintf("params directory not found: %s", paramsDir))
	}
	if err == nil && !info.IsDir() {
		return commandError(formatter, ErrCodeParams, fmt.Sprintf("not a directory: %s", paramsDir))
	}

	p, err := params.CompileDir(paramsDir)
	if err != nil {
		// Compile problems are validation failures of the input files,
		// not command errors.
		return outputValidationErrors(formatter, []params.ValidationError{{
			Field:   "compile",
			Message: err.Error(),
			Code:    "P100",
		}})
	}
	formatter.VerboseLog("Compiled parameters from %s", paramsDir)

	if errs := params.Validate(p); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	return outputValidateSuccess(formatter, p)
}

// commandError reports a command-level problem on the configured
// writer and maps it to exit code 2.
func commandError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, message)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, p *params.Protocol) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Protocol: p})
	}

	fmt.Fprintln(formatter.Writer, "✓ parameters valid")
	if formatter.Verbose {
		fmt.Fprintf(formatter.Writer, "  token_symbol=%s launch_goal=%d claim_rate=%d funding_mode=%s\n",
			p.TokenSymbol, p.LaunchGoal, p.ClaimRate, p.FundingMode)
	}
	return nil
}

// outputValidationErrors outputs validation errors and maps them to
// exit code 1.
func outputValidationErrors(formatter *OutputFormatter, errs []params.ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ validation failed")
	for _, e := range errs {
		fmt.Fprintf(formatter.Writer, "  %s: %s (%s)\n", e.Field, e.Message, e.Code)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
