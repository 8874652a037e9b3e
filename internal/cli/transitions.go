package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/streamtrace/internal/store"
)

// TransitionsOptions holds flags for the transitions command.
type TransitionsOptions struct {
	*RootOptions
	Database string // required
	RunID    string // optional - list runs when empty
	Pipeline string // optional filter
	Call     int    // optional filter
	Since    int64  // optional filter, inclusive
	Until    int64  // optional filter, inclusive
}

// RunTransitions is a stored run with its transitions.
type RunTransitions struct {
	Run         store.Run                `json:"run"`
	Transitions []store.StoredTransition `json:"transitions"`
}

// NewTransitionsCommand creates the transitions command.
func NewTransitionsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TransitionsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "transitions",
		Short: "Show stored runs and their transitions",
		Long: `Show the runs stored in a database, or the transitions of one run.

Filters select transitions across runs: by pipeline, call number, and
an inclusive window on the before time.

Examples:
  streamtrace transitions --db ./streamtrace.db
  streamtrace transitions --db ./streamtrace.db --run 0192e5a4-...
  streamtrace transitions --db ./streamtrace.db --pipeline people --call 2 --since 10`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransitions(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run ID to show transitions for")
	cmd.Flags().StringVar(&opts.Pipeline, "pipeline", "", "only transitions of runs of this pipeline")
	cmd.Flags().IntVar(&opts.Call, "call", 0, "only transitions of this call number")
	cmd.Flags().Int64Var(&opts.Since, "since", 0, "only transitions with a before time at or after this")
	cmd.Flags().Int64Var(&opts.Until, "until", 0, "only transitions with a before time at or before this")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runTransitions(opts *TransitionsOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, err := store.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	filter := store.TransitionFilter{RunID: opts.RunID, Pipeline: opts.Pipeline, CallNumber: opts.Call}
	if cmd.Flags().Changed("since") {
		filter.Since = &opts.Since
	}
	if cmd.Flags().Changed("until") {
		filter.Until = &opts.Until
	}
	if filter.Pipeline != "" || filter.CallNumber > 0 || filter.Since != nil || filter.Until != nil {
		return queryTransitions(ctx, formatter, st, filter)
	}

	if opts.RunID == "" {
		return listRuns(ctx, formatter, st)
	}

	run, found, err := st.ReadRun(ctx, opts.RunID)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}
	if !found {
		message := fmt.Sprintf("run not found: %s", opts.RunID)
		_ = formatter.Error(ErrCodeNotFound, message, nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", ErrCodeNotFound, message))
	}

	transitions, err := st.ReadTransitions(ctx, run.ID)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read transitions", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(RunTransitions{Run: run, Transitions: transitions})
	}

	fmt.Fprintf(formatter.Writer, "Run %s (pipeline %s, seq %d)\n", run.ID, run.Pipeline, run.Seq)
	if len(transitions) == 0 {
		fmt.Fprintln(formatter.Writer, "  no transitions")
	}
	for _, tr := range transitions {
		fmt.Fprintf(formatter.Writer, "  call %d: %d -> %d\n", tr.CallNumber, tr.Before, tr.After)
	}
	return nil
}

func listRuns(ctx context.Context, formatter *OutputFormatter, st *store.Store) error {
	runs, err := st.ReadRuns(ctx)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read runs", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs stored")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(formatter.Writer, "%d\t%s\t%s\n", r.Seq, r.ID, r.Pipeline)
	}
	return nil
}

func queryTransitions(ctx context.Context, formatter *OutputFormatter, st *store.Store, filter store.TransitionFilter) error {
	transitions, err := st.QueryTransitions(ctx, filter)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to query transitions", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(transitions)
	}

	if len(transitions) == 0 {
		fmt.Fprintln(formatter.Writer, "No matching transitions")
		return nil
	}
	for _, tr := range transitions {
		fmt.Fprintf(formatter.Writer, "%s\t%s\tcall %d: %d -> %d\n",
			tr.RunID, tr.Pipeline, tr.CallNumber, tr.Before, tr.After)
	}
	return nil
}
