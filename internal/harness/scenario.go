package harness

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/streamtrace/internal/correlate"
	"github.com/roach88/streamtrace/internal/handler"
)

// Scenario defines a correlation scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Pipeline labels the stored run. Defaults to Name.
	Pipeline string `yaml:"pipeline,omitempty"`

	// CallNumber is the call the transitions belong to. Defaults to 1.
	CallNumber int `yaml:"call_number,omitempty"`

	// Dialect selects the reconstruction formulation and the generated
	// deduplication code: "scan" (default) or "wrapper".
	Dialect string `yaml:"dialect,omitempty"`

	// Renderer selects the renderer for generated units.
	Renderer string `yaml:"renderer,omitempty"`

	// RunID is an optional fixed run ID.
	// If empty, defaults to "test-run-default" for deterministic golden file comparison.
	RunID string `yaml:"run_id,omitempty"`

	// Elements are pushed through a simulated deduplication to produce the
	// recorded events. Mutually exclusive with Before and After.
	Elements []Element `yaml:"elements,omitempty"`

	// Before and After are the recorded events, given explicitly.
	// Field names follow the correlate event types: time, value, key.
	Before []correlate.BeforeEvent `yaml:"before,omitempty"`
	After  []correlate.AfterEvent  `yaml:"after,omitempty"`

	// Calls is the optional pipeline to generate code units for.
	Calls []CallStep `yaml:"calls,omitempty"`

	// Expect is the expected outcome of reconstruction.
	Expect Expectation `yaml:"expect"`
}

// Element is one input of a simulated deduplication.
type Element struct {
	Value correlate.Ref `yaml:"value"`
	Key   string        `yaml:"key"`
}

// CallStep describes one pipeline call.
type CallStep struct {
	Name    string    `yaml:"name"`
	Before  string    `yaml:"before"`
	After   string    `yaml:"after"`
	Args    []ArgStep `yaml:"args,omitempty"`
	Package string    `yaml:"package,omitempty"`
}

// ArgStep is one call argument.
type ArgStep struct {
	Type string `yaml:"type"`
	Text string `yaml:"text"`
}

// Expectation is the expected reconstruction outcome. When Inconsistency is
// set the trace must be rejected with that reason; otherwise Transitions must
// match exactly.
type Expectation struct {
	Transitions   []correlate.Transition `yaml:"transitions,omitempty"`
	Inconsistency string                 `yaml:"inconsistency,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "transition:" vs "transitions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.CallNumber < 0 {
		return fmt.Errorf("call_number must be positive")
	}

	switch handler.Dialect(s.Dialect) {
	case "", handler.DialectScan, handler.DialectWrapper:
	default:
		return fmt.Errorf("unknown dialect %q", s.Dialect)
	}

	hasEvents := len(s.Before) > 0 || len(s.After) > 0
	if len(s.Elements) > 0 && hasEvents {
		return fmt.Errorf("elements and before/after events are mutually exclusive")
	}

	keys := make(map[correlate.Ref]string)
	for i, el := range s.Elements {
		if el.Value == "" {
			return fmt.Errorf("elements[%d]: value is required", i)
		}
		if prev, ok := keys[el.Value]; ok && prev != el.Key {
			return fmt.Errorf("elements[%d]: value %q already has key %q", i, el.Value, prev)
		}
		keys[el.Value] = el.Key
	}

	for i, b := range s.Before {
		if b.Value == "" {
			return fmt.Errorf("before[%d]: value is required", i)
		}
	}
	for i, a := range s.After {
		if a.Value == "" {
			return fmt.Errorf("after[%d]: value is required", i)
		}
	}

	for i, c := range s.Calls {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("calls[%d]: name is required", i)
		}
		if c.Before == "" || c.After == "" {
			return fmt.Errorf("calls[%d]: before and after types are required", i)
		}
	}

	switch correlate.InconsistencyReason(s.Expect.Inconsistency) {
	case "", correlate.ReasonNoMatch, correlate.ReasonKeyReused:
	default:
		return fmt.Errorf("expect: unknown inconsistency %q", s.Expect.Inconsistency)
	}
	if s.Expect.Inconsistency != "" && len(s.Expect.Transitions) > 0 {
		return fmt.Errorf("expect: transitions and inconsistency are mutually exclusive")
	}

	return nil
}

// trace returns the recorded events of the scenario, simulating them from
// Elements when no explicit events are given.
func (s *Scenario) trace(clock correlate.TimeSource) correlate.Trace {
	if len(s.Elements) == 0 {
		return correlate.Trace{Before: s.Before, After: s.After}
	}
	refs := make([]correlate.Ref, len(s.Elements))
	keys := make(map[correlate.Ref]string, len(s.Elements))
	for i, el := range s.Elements {
		refs[i] = el.Value
		keys[el.Value] = el.Key
	}
	return correlate.Simulate(refs, func(r correlate.Ref) string { return keys[r] }, clock)
}
