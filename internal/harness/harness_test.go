package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/streamtrace/internal/correlate"
	"github.com/roach88/streamtrace/internal/store"
)

func TestScenarioFiles(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		scenario, err := LoadScenario(path)
		require.NoError(t, err, path)

		t.Run(scenario.Name, func(t *testing.T) {
			result, err := Run(scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			require.NoError(t, AssertGolden(t, scenario.Name, result))
		})
	}
}

func TestRun_ManyToOne(t *testing.T) {
	scenario := &Scenario{
		Name:        "many_to_one_inline",
		Description: "inline scenario",
		Before: []correlate.BeforeEvent{
			{Time: 0, Value: "a", Key: "K1"},
			{Time: 1, Value: "b", Key: "K1"},
			{Time: 2, Value: "c", Key: "K2"},
		},
		After: []correlate.AfterEvent{
			{Time: 10, Value: "a"},
			{Time: 11, Value: "c"},
		},
		Expect: Expectation{Transitions: []correlate.Transition{
			{Before: 0, After: 10},
			{Before: 1, After: 10},
			{Before: 2, After: 11},
		}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "test-run-default", result.RunID)
	assert.Equal(t, map[int64][]int64{0: {10}, 1: {}, 2: {11}}, result.Direct)
	assert.Equal(t, map[int64][]int64{10: {0}, 11: {2}}, result.Reverse)
	assert.Equal(t, scenario.Expect.Transitions, result.Transitions)
	assert.Empty(t, result.Units)
}

func TestRun_ReportsTransitionMismatch(t *testing.T) {
	scenario := &Scenario{
		Name:        "mismatch",
		Description: "wrong expectation",
		Elements:    []Element{{Value: "a", Key: "K"}, {Value: "b", Key: "K"}},
		Expect:      Expectation{Transitions: []correlate.Transition{{Before: 1, After: 2}}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected transitions")
	assert.Equal(t, []correlate.Transition{{Before: 1, After: 2}, {Before: 3, After: 2}}, result.Transitions)
}

func TestRun_InconsistencyOutcomes(t *testing.T) {
	rejected := correlate.Trace{
		Before: []correlate.BeforeEvent{{Time: 0, Value: "a", Key: "K1"}},
		After:  []correlate.AfterEvent{{Time: 1, Value: "x"}},
	}

	tests := []struct {
		name    string
		trace   correlate.Trace
		expect  Expectation
		pass    bool
		message string
	}{
		{"expected rejection", rejected, Expectation{Inconsistency: "NO_MATCH"}, true, ""},
		{"wrong reason", rejected, Expectation{Inconsistency: "KEY_REUSED"}, false, "expected inconsistency KEY_REUSED"},
		{"unexpected rejection", rejected, Expectation{}, false, "unexpected inconsistency NO_MATCH"},
		{
			"missing rejection",
			correlate.Trace{
				Before: []correlate.BeforeEvent{{Time: 0, Value: "a", Key: "K1"}},
				After:  []correlate.AfterEvent{{Time: 1, Value: "a"}},
			},
			Expectation{Inconsistency: "NO_MATCH"},
			false,
			`expected inconsistency NO_MATCH, got ""`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scenario := &Scenario{
				Name:        "inconsistency",
				Description: tt.name,
				Before:      tt.trace.Before,
				After:       tt.trace.After,
				Expect:      tt.expect,
			}

			result, err := Run(scenario)
			require.NoError(t, err)
			assert.Equal(t, tt.pass, result.Pass)
			if tt.message != "" {
				require.Len(t, result.Errors, 1)
				assert.Contains(t, result.Errors[0], tt.message)
			}
		})
	}
}

func TestExecute_PersistsRunTransitionsAndUnits(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	defer st.Close()

	scenario, err := LoadScenario("testdata/scenarios/simulated_people.yaml")
	require.NoError(t, err)

	h := New(st, WithRunIDGenerator(store.NewFixedGenerator("run-1")))
	result, err := h.Execute(context.Background(), scenario)
	require.NoError(t, err)
	require.True(t, result.Pass)
	assert.Equal(t, "run-1", result.RunID)

	ctx := context.Background()
	run, ok, err := st.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "people", run.Pipeline)

	stored, err := st.ReadTransitions(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, stored, 5)
	for _, tr := range stored {
		assert.Equal(t, 2, tr.CallNumber)
	}

	units, err := st.ReadUnits(ctx, "people")
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "producer", units[0].Handler)
	assert.Equal(t, "distinct-by-key", units[1].Handler)
}

func TestExecute_ClockResetsBetweenRuns(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	defer st.Close()

	scenario := &Scenario{
		Name:        "repeat",
		Description: "same scenario twice",
		Elements:    []Element{{Value: "a", Key: "K"}, {Value: "b", Key: "K"}},
		Expect:      Expectation{Transitions: []correlate.Transition{{Before: 1, After: 2}, {Before: 3, After: 2}}},
	}

	h := New(st, WithRunIDGenerator(store.NewFixedGenerator("first", "second")))
	first, err := h.Execute(context.Background(), scenario)
	require.NoError(t, err)
	second, err := h.Execute(context.Background(), scenario)
	require.NoError(t, err)

	assert.True(t, first.Pass)
	assert.True(t, second.Pass)
	assert.Equal(t, first.Trace, second.Trace)

	runs, err := st.ReadRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "first", runs[0].ID)
	assert.Equal(t, "second", runs[1].ID)
}

func TestExecute_DialectsAgree(t *testing.T) {
	elements := []Element{
		{Value: "a", Key: "K1"}, {Value: "b", Key: "K2"}, {Value: "c", Key: "K1"},
		{Value: "d", Key: "K3"}, {Value: "e", Key: "K2"}, {Value: "f", Key: "K1"},
	}

	var results [2][]correlate.Transition
	for i, dialect := range []string{"scan", "wrapper"} {
		result, err := Run(&Scenario{
			Name:        "agree",
			Description: dialect,
			Dialect:     dialect,
			Elements:    elements,
		})
		require.NoError(t, err)
		results[i] = result.Transitions
	}

	assert.Len(t, results[0], len(elements))
	assert.Equal(t, results[0], results[1])
}

func TestExecute_GenerationFailureIsAnError(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad_renderer",
		Description: "unknown renderer",
		Renderer:    "mustache",
		Calls:       []CallStep{{Name: "map", Before: "java.util.stream.Stream<A>", After: "java.util.stream.Stream<B>"}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mustache")
}
