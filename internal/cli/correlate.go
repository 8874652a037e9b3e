package cli

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/streamtrace/internal/harness"
	"github.com/roach88/streamtrace/internal/store"
)

// CorrelateOptions holds flags for the correlate command.
type CorrelateOptions struct {
	*RootOptions
	Database string // optional - persist the run
}

// NewCorrelateCommand creates the correlate command.
func NewCorrelateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CorrelateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "correlate <scenario.yaml>",
		Short: "Reconstruct transitions from a recorded trace",
		Long: `Reconstruct the before/after transitions of a deduplication call from
the events recorded in a scenario file, and check them against the
scenario's expectation.

Without --db the run is kept in memory. With --db the run, its
transitions and any generated units are stored in the database.

Examples:
  streamtrace correlate ./scenarios/people.yaml
  streamtrace correlate ./scenarios/people.yaml --db ./streamtrace.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCorrelate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database to store the run in")

	return cmd
}

func runCorrelate(opts *CorrelateOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		_ = formatter.Error(ErrCodeScenario, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	formatter.VerboseLog("Loaded scenario: %s", scenario.Name)

	result, err := executeScenario(scenario, opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to execute scenario", err)
	}
	slog.Debug("scenario executed", "scenario", scenario.Name, "run_id", result.RunID, "pass", result.Pass)

	if formatter.Format == "json" {
		if !result.Pass {
			return formatter.Failure(ExitFailure, ErrCodeScenario, "scenario failed", result)
		}
		return formatter.Success(result)
	}

	outputCorrelateText(formatter, scenario, result)
	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("%s: scenario %s failed", ErrCodeScenario, scenario.Name))
	}
	return nil
}

func executeScenario(scenario *harness.Scenario, dbPath string) (*harness.Result, error) {
	if dbPath == "" {
		return harness.Run(scenario)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	var runIDs store.RunIDGenerator = store.UUIDv7Generator{}
	if scenario.RunID != "" {
		runIDs = store.NewFixedGenerator(scenario.RunID)
	}
	h := harness.New(st, harness.WithRunIDGenerator(runIDs), harness.WithLogger(slog.Default()))
	return h.Execute(context.Background(), scenario)
}

func outputCorrelateText(formatter *OutputFormatter, scenario *harness.Scenario, result *harness.Result) {
	w := formatter.Writer
	fmt.Fprintf(w, "Scenario: %s\n", scenario.Name)
	fmt.Fprintf(w, "Run: %s\n", result.RunID)

	if result.Inconsistency != "" {
		fmt.Fprintf(w, "Trace rejected: %s\n", result.Inconsistency)
	} else {
		fmt.Fprintf(w, "Transitions (%d):\n", len(result.Transitions))
		for _, tr := range result.Transitions {
			fmt.Fprintf(w, "  %d -> %d\n", tr.Before, tr.After)
		}
	}
	fmt.Fprintf(w, "Identity (%d):\n", len(result.Direct))
	for _, before := range slices.Sorted(maps.Keys(result.Direct)) {
		after := result.Direct[before]
		if len(after) == 0 {
			fmt.Fprintf(w, "  %d -> -\n", before)
			continue
		}
		fmt.Fprintf(w, "  %d -> %d\n", before, after[0])
	}
	if len(result.Units) > 0 {
		fmt.Fprintf(w, "Units: %d\n", len(result.Units))
	}

	if result.Pass {
		fmt.Fprintln(w, "✓ PASS")
		return
	}
	fmt.Fprintln(w, "✗ FAIL")
	for _, e := range result.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
}
