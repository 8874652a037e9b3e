package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/streamtrace/internal/handler"
	"github.com/roach88/streamtrace/internal/ir"
)

// ResultSnapshot captures the outcome of a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type ResultSnapshot struct {
	ScenarioName string
	Result       *Result
}

// toCanonicalMap converts a ResultSnapshot to a map[string]any for canonical JSON serialization.
// This is required because ir.MarshalCanonical only handles plain values.
func (s *ResultSnapshot) toCanonicalMap() map[string]any {
	transitions := make([]any, len(s.Result.Transitions))
	for i, tr := range s.Result.Transitions {
		transitions[i] = map[string]any{
			"before": tr.Before,
			"after":  tr.After,
		}
	}

	out := map[string]any{
		"scenario_name": s.ScenarioName,
		"pass":          s.Result.Pass,
		"run_id":        s.Result.RunID,
		"transitions":   transitions,
	}
	if s.Result.Inconsistency != "" {
		out["inconsistency"] = s.Result.Inconsistency
	}
	if len(s.Result.Errors) > 0 {
		out["errors"] = s.Result.Errors
	}
	if len(s.Result.Units) > 0 {
		units := make([]any, len(s.Result.Units))
		for i, u := range s.Result.Units {
			units[i] = map[string]any{
				"call_number": u.CallNumber,
				"handler":     u.Handler,
			}
		}
		out["units"] = units
	}
	return out
}

// RunWithGolden executes a scenario and compares the result against golden
// files. The snapshot is stored in testdata/golden/{scenario.Name}.golden and
// the rendered units, if any, in testdata/golden/{scenario.Name}_units.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an already computed result against golden files.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := ResultSnapshot{ScenarioName: scenarioName, Result: result}
	data, err := ir.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	if len(result.Units) > 0 {
		g.Assert(t, scenarioName+"_units", []byte(handler.FormatUnits(result.Units)))
	}
	return nil
}
