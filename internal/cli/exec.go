package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/mapperkit/internal/session"
	"github.com/roach88/mapperkit/internal/store"
)

// ExecOptions holds flags for the exec command.
type ExecOptions struct {
	ConfigPath string
	DBPath     string
	Param      string // JSON
	Offset     int
	Limit      int
}

// ExecResult is the JSON payload of a successful exec.
type ExecResult struct {
	Statement    string `json:"statement"`
	Kind         string `json:"kind"`
	RowsAffected *int64 `json:"rows_affected,omitempty"`
	Rows         []any  `json:"rows,omitempty"`
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExecOptions{}

	cmd := &cobra.Command{
		Use:   "exec <statement-id>",
		Short: "Run one statement against a SQLite database",
		Long: `Run a single registered statement through a store session.

Mutations print the affected row count, selects print the mapped rows.
The --param value is JSON: an object supplies named placeholders, any
other value is the single parameter.

Example:
  mapperkit exec store.UserMapper.FindByStatus --config ./statements.yaml \
    --db ./app.db --param '{"status":"active"}' --limit 10`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd, rootOpts, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "statement file or directory (required)")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "SQLite database path (required)")
	cmd.Flags().StringVar(&opts.Param, "param", "", "statement parameter as JSON")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "rows to skip")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum rows to return (0 for all)")

	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runExec(cmd *cobra.Command, rootOpts *RootOptions, opts *ExecOptions, statementID string) error {
	formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	reg, err := LoadStatements(opts.ConfigPath)
	if err != nil {
		return loadFailure(formatter, err)
	}

	stmt, err := reg.Statement(statementID)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeNoStatement, fmt.Sprintf("statement not found: %s", statementID), nil)
	}
	if stmt.Kind == session.KindFlush || stmt.Kind == session.KindUnknown {
		return formatter.fail(ExitCommandError, ErrCodeUnsupported, fmt.Sprintf("statement %s has kind %s and cannot be run directly", stmt.ID, stmt.Kind), nil)
	}

	param, err := parseParam(opts.Param)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeBadParam, fmt.Sprintf("invalid --param: %v", err), nil)
	}

	st, err := store.Open(opts.DBPath)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}
	defer st.Close()

	sess := st.Session(reg)
	defer sess.Close()

	formatter.VerboseLog("Running %s (%s) in session %s", stmt.ID, stmt.Kind, sess.ID())

	ctx := cmd.Context()
	result := ExecResult{Statement: stmt.ID, Kind: stmt.Kind.String()}

	switch stmt.Kind {
	case session.KindInsert:
		n, err := sess.Insert(ctx, stmt.ID, param)
		if err != nil {
			return formatter.fail(ExitFailure, ErrCodeExecFailed, err.Error(), nil)
		}
		result.RowsAffected = &n
	case session.KindUpdate:
		n, err := sess.Update(ctx, stmt.ID, param)
		if err != nil {
			return formatter.fail(ExitFailure, ErrCodeExecFailed, err.Error(), nil)
		}
		result.RowsAffected = &n
	case session.KindDelete:
		n, err := sess.Delete(ctx, stmt.ID, param)
		if err != nil {
			return formatter.fail(ExitFailure, ErrCodeExecFailed, err.Error(), nil)
		}
		result.RowsAffected = &n
	default:
		bounds := session.RowBounds{Offset: opts.Offset, Limit: opts.Limit}
		rows, err := sess.SelectList(ctx, stmt.ID, param, bounds)
		if err != nil {
			return formatter.fail(ExitFailure, ErrCodeExecFailed, err.Error(), nil)
		}
		result.Rows = rows
	}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}
	return printExecText(formatter.Writer, result)
}

func printExecText(w io.Writer, result ExecResult) error {
	if result.RowsAffected != nil {
		fmt.Fprintf(w, "%d row(s) affected\n", *result.RowsAffected)
		return nil
	}
	enc := json.NewEncoder(w)
	for _, row := range result.Rows {
		if err := enc.Encode(row); err != nil {
			return err
		}
	}
	fmt.Fprintf(w, "(%d row(s))\n", len(result.Rows))
	return nil
}

// parseParam decodes a --param value. JSON numbers become int64 when
// integral and float64 otherwise, so they bind like typed Go arguments.
func parseParam(raw string) (any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after value")
	}
	return convertNumbers(v), nil
}

func convertNumbers(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		f, _ := val.Float64()
		return f
	case map[string]any:
		for k, item := range val {
			val[k] = convertNumbers(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = convertNumbers(item)
		}
		return val
	default:
		return v
	}
}
