package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// StatementInfo is one row of describe output.
type StatementInfo struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	ResultType string `json:"result_type,omitempty"`
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "describe <path>",
		Short:         "List loaded statements with their kind and result type",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(rootOpts, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	return cmd
}

func runDescribe(opts *RootOptions, path string, out, errOut io.Writer) error {
	formatter := newFormatter(opts, out, errOut)

	reg, err := LoadStatements(path)
	if err != nil {
		return loadFailure(formatter, err)
	}

	infos := make([]StatementInfo, 0, reg.Len())
	for _, stmt := range reg.Statements() {
		infos = append(infos, StatementInfo{
			ID:         stmt.ID,
			Kind:       stmt.Kind.String(),
			ResultType: stmt.ResultTypeName,
		})
	}

	if formatter.IsJSON() {
		return formatter.Success(infos)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tRESULT")
	for _, info := range infos {
		result := info.ResultType
		if result == "" {
			result = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", info.ID, info.Kind, result)
	}
	return tw.Flush()
}
