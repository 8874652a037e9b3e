package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/streamtrace/internal/correlate"
	"github.com/roach88/streamtrace/internal/emit"
	"github.com/roach88/streamtrace/internal/handler"
	"github.com/roach88/streamtrace/internal/ir"
	"github.com/roach88/streamtrace/internal/store"
	"github.com/roach88/streamtrace/internal/testutil"
	"github.com/roach88/streamtrace/internal/typeres"
)

// Harness executes scenarios against a store.
type Harness struct {
	store  *store.Store
	clock  *testutil.DeterministicClock
	runIDs store.RunIDGenerator
	logger *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// WithRunIDGenerator sets the run ID source. The default is a fixed
// generator using the scenario's run_id.
func WithRunIDGenerator(g store.RunIDGenerator) Option {
	return func(h *Harness) { h.runIDs = g }
}

// New creates a harness writing to st.
func New(st *store.Store, opts ...Option) *Harness {
	h := &Harness{
		store:  st,
		clock:  testutil.NewDeterministicClock(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Deterministic helpers ensure reproducible results.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	return New(st).Execute(context.Background(), scenario)
}

// Execute runs a scenario:
//  1. Build the recorded events, simulating them from elements if needed
//  2. Pair observed values by identity and reconstruct transitions with the scenario's dialect
//  3. Persist the run and its transitions
//  4. Generate and persist code units for the scenario's pipeline
//  5. Compare the outcome against the expectation
//
// A rejected trace is an outcome, not an error; errors are reserved for
// store and generation failures.
func (h *Harness) Execute(ctx context.Context, scenario *Scenario) (*Result, error) {
	h.clock.Reset()
	runIDs := h.runIDs
	if runIDs == nil {
		runIDs = testutil.NewFixedRunIDGenerator(scenario.RunID)
	}

	result := NewResult()
	result.Trace = scenario.trace(h.clock)
	result.Direct, result.Reverse = correlate.ResolveIdentity(result.Trace.Observed())

	transitions, err := reconstruct(handler.Dialect(scenario.Dialect), result.Trace)
	var ie *correlate.InconsistencyError
	switch {
	case errors.As(err, &ie):
		result.Inconsistency = string(ie.Reason)
		h.logger.Info("trace rejected",
			"scenario", scenario.Name,
			"reason", ie.Reason,
			"after_time", ie.AfterTime,
		)
	case err != nil:
		return nil, fmt.Errorf("reconstruct: %w", err)
	}

	seq, err := h.store.NextSeq(ctx)
	if err != nil {
		return nil, err
	}
	run := store.Run{ID: runIDs.Generate(), Pipeline: scenario.pipeline(), Seq: seq}
	if err := h.store.WriteRun(ctx, run); err != nil {
		return nil, fmt.Errorf("write run: %w", err)
	}
	result.RunID = run.ID

	if err := h.store.WriteTransitions(ctx, run.ID, scenario.callNumber(), transitions); err != nil {
		return nil, fmt.Errorf("write transitions: %w", err)
	}
	stored, err := h.store.ReadTransitions(ctx, run.ID)
	if err != nil {
		return nil, fmt.Errorf("read transitions: %w", err)
	}
	for _, st := range stored {
		result.Transitions = append(result.Transitions, st.Transition)
	}

	if len(scenario.Calls) > 0 {
		units, err := h.generate(ctx, scenario)
		if err != nil {
			return nil, err
		}
		result.Units = units
	}

	h.check(scenario, result)

	h.logger.Info("scenario completed",
		"scenario", scenario.Name,
		"run_id", run.ID,
		"transitions", len(result.Transitions),
		"pass", result.Pass,
	)
	return result, nil
}

func (h *Harness) generate(ctx context.Context, scenario *Scenario) ([]handler.Unit, error) {
	r, err := emit.RendererByName(scenario.Renderer)
	if err != nil {
		return nil, err
	}
	e := emit.NewEmitter(r, nil)

	units, err := handler.GeneratePipeline(scenario.pipelineCalls(), e,
		handler.WithDialect(handler.Dialect(scenario.Dialect)))
	if err != nil {
		return nil, err
	}
	for _, u := range units {
		fp, err := h.store.WriteUnit(ctx, scenario.pipeline(), u)
		if err != nil {
			return nil, fmt.Errorf("write unit %d: %w", u.CallNumber, err)
		}
		h.logger.Debug("unit stored", "call_number", u.CallNumber, "fingerprint", fp)
	}
	return units, nil
}

// check compares the outcome against the scenario's expectation.
func (h *Harness) check(scenario *Scenario, result *Result) {
	want := scenario.Expect
	if want.Inconsistency != "" {
		if result.Inconsistency != want.Inconsistency {
			result.AddError(fmt.Sprintf("expected inconsistency %s, got %q", want.Inconsistency, result.Inconsistency))
		}
		return
	}
	if result.Inconsistency != "" {
		result.AddError(fmt.Sprintf("unexpected inconsistency %s", result.Inconsistency))
		return
	}
	expected := want.Transitions
	if expected == nil {
		expected = []correlate.Transition{}
	}
	if !slices.Equal(expected, result.Transitions) {
		result.AddError(fmt.Sprintf("expected transitions %v, got %v", expected, result.Transitions))
	}
}

func reconstruct(dialect handler.Dialect, trace correlate.Trace) ([]correlate.Transition, error) {
	if dialect == handler.DialectWrapper {
		return correlate.ReconstructByWrapper(trace.Before, trace.After)
	}
	return correlate.Reconstruct(trace.Before, trace.After)
}

func (s *Scenario) pipeline() string {
	if s.Pipeline != "" {
		return s.Pipeline
	}
	return s.Name
}

func (s *Scenario) callNumber() int {
	if s.CallNumber > 0 {
		return s.CallNumber
	}
	return 1
}

func (s *Scenario) pipelineCalls() []ir.PipelineCall {
	calls := make([]ir.PipelineCall, len(s.Calls))
	for i, c := range s.Calls {
		args := make([]ir.CallArgument, len(c.Args))
		for j, a := range c.Args {
			args[j] = ir.CallArgument{Type: a.Type, Text: a.Text}
		}
		calls[i] = ir.NewPipelineCall(c.Name, args,
			typeres.ClassifyPipelineType(typeres.ParseSourceType(c.Before)),
			typeres.ClassifyStage(typeres.ParseSourceType(c.After)).Elements,
			ir.EmptyRange, c.Package)
	}
	return calls
}
