package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/mapperkit/internal/config"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid      bool             `json:"valid"`
	Statements int              `json:"statements"`
	Problems   []config.Problem `json:"problems,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <path>",
		Short: "Validate a statement file or CUE directory",
		Long: `Load a YAML statement file, a CUE package directory, or a directory of
YAML files, and report statements that cannot run as written.

Exits 1 when problems are found and 2 when the statements cannot be loaded.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, out, errOut io.Writer) error {
	formatter := newFormatter(opts, out, errOut)

	reg, err := LoadStatements(path)
	if err != nil {
		return loadFailure(formatter, err)
	}
	formatter.VerboseLog("Loaded %d statement(s) from %s", reg.Len(), path)

	result := ValidationResult{
		Statements: reg.Len(),
		Problems:   reg.Validate(),
	}
	result.Valid = len(result.Problems) == 0

	if !result.Valid {
		if formatter.IsJSON() {
			if err := formatter.Error(ErrCodeInvalid, fmt.Sprintf("%d problem(s) found", len(result.Problems)), result); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(out, "Validation failed: %d problem(s)\n", len(result.Problems))
			for _, p := range result.Problems {
				fmt.Fprintf(out, "  %s: %s\n", p.StatementID, p.Message)
			}
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %d problem(s) found", ErrCodeInvalid, len(result.Problems)))
	}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}
	fmt.Fprintf(out, "✓ %d statement(s) valid\n", result.Statements)
	return nil
}
