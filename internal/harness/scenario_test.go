package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/streamtrace/internal/correlate"
)

func TestLoadScenario(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/many_to_one.yaml")
	require.NoError(t, err)

	assert.Equal(t, "many_to_one", scenario.Name)
	assert.Equal(t, []correlate.BeforeEvent{
		{Time: 0, Value: "a", Key: "K1"},
		{Time: 1, Value: "b", Key: "K1"},
		{Time: 2, Value: "c", Key: "K2"},
	}, scenario.Before)
	assert.Equal(t, []correlate.AfterEvent{{Time: 10, Value: "a"}, {Time: 11, Value: "c"}}, scenario.After)
	assert.Len(t, scenario.Expect.Transitions, 3)
	assert.Equal(t, "many_to_one", scenario.pipeline())
	assert.Equal(t, 1, scenario.callNumber())
}

func TestLoadScenario_WithCalls(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/simulated_people.yaml")
	require.NoError(t, err)

	assert.Equal(t, "people", scenario.pipeline())
	assert.Equal(t, 2, scenario.callNumber())
	require.Len(t, scenario.Calls, 2)

	calls := scenario.pipelineCalls()
	assert.Equal(t, "distinct", calls[1].Name())
	assert.Equal(t, "Person::getName", calls[1].Arguments()[0].Text)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/does_not_exist.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: typo
description: "misspelled expectation"
expect:
  transition: []
`), 0644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing name", `description: d`, "name is required"},
		{"missing description", `name: n`, "description is required"},
		{"negative call number", "name: n\ndescription: d\ncall_number: -1", "call_number must be positive"},
		{"unknown dialect", "name: n\ndescription: d\ndialect: bitset", `unknown dialect "bitset"`},
		{
			"elements and events",
			"name: n\ndescription: d\nelements: [{value: a, key: K}]\nbefore: [{time: 1, value: a, key: K}]",
			"mutually exclusive",
		},
		{"element without value", "name: n\ndescription: d\nelements: [{key: K}]", "elements[0]: value is required"},
		{
			"element rekeyed",
			"name: n\ndescription: d\nelements: [{value: a, key: K1}, {value: a, key: K2}]",
			`elements[1]: value "a" already has key "K1"`,
		},
		{"before without value", "name: n\ndescription: d\nbefore: [{time: 1, key: K}]", "before[0]: value is required"},
		{"after without value", "name: n\ndescription: d\nafter: [{time: 1}]", "after[0]: value is required"},
		{"call without name", "name: n\ndescription: d\ncalls: [{before: void, after: void}]", "calls[0]: name is required"},
		{"call without types", "name: n\ndescription: d\ncalls: [{name: map}]", "calls[0]: before and after types are required"},
		{"unknown inconsistency", "name: n\ndescription: d\nexpect: {inconsistency: MAYBE}", `unknown inconsistency "MAYBE"`},
		{
			"transitions and inconsistency",
			"name: n\ndescription: d\nexpect: {inconsistency: NO_MATCH, transitions: [{before: 1, after: 2}]}",
			"mutually exclusive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestScenarioTrace_SimulatesElements(t *testing.T) {
	scenario := &Scenario{Elements: []Element{
		{Value: "a", Key: "K"}, {Value: "b", Key: "K"}, {Value: "c", Key: "L"},
	}}

	trace := scenario.trace(correlate.NewClock())
	assert.Equal(t, []correlate.BeforeEvent{
		{Time: 1, Value: "a", Key: "K"},
		{Time: 3, Value: "b", Key: "K"},
		{Time: 4, Value: "c", Key: "L"},
	}, trace.Before)
	assert.Equal(t, []correlate.AfterEvent{{Time: 2, Value: "a"}, {Time: 5, Value: "c"}}, trace.After)
}
