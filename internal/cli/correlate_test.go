package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/streamtrace/internal/correlate"
)

const manyToOneScenario = `
name: many_to_one
description: "Two inputs sharing a key collapse into the first"
run_id: run-many-to-one
before:
  - { time: 0, value: a, key: K1 }
  - { time: 1, value: b, key: K1 }
  - { time: 2, value: c, key: K2 }
after:
  - { time: 10, value: a }
  - { time: 11, value: c }
expect:
  transitions:
    - { before: 0, after: 10 }
    - { before: 1, after: 10 }
    - { before: 2, after: 11 }
`

func writeScenario(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestCorrelateText(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewCorrelateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{writeScenario(t, manyToOneScenario)})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Scenario: many_to_one")
	assert.Contains(t, output, "Run: run-many-to-one")
	assert.Contains(t, output, "Transitions (3):")
	assert.Contains(t, output, "  1 -> 10")
	assert.Contains(t, output, "Identity (3):\n  0 -> 10\n  1 -> -\n  2 -> 11\n")
	assert.Contains(t, output, "✓ PASS")
}

func TestCorrelateJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewCorrelateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{writeScenario(t, manyToOneScenario)})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Pass        bool                   `json:"pass"`
			Transitions []correlate.Transition `json:"transitions"`
			Direct      map[int64][]int64      `json:"direct"`
			Reverse     map[int64][]int64      `json:"reverse"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Pass)
	assert.Equal(t, []correlate.Transition{
		{Before: 0, After: 10},
		{Before: 1, After: 10},
		{Before: 2, After: 11},
	}, resp.Data.Transitions)
	assert.Equal(t, map[int64][]int64{0: {10}, 1: {}, 2: {11}}, resp.Data.Direct)
	assert.Equal(t, map[int64][]int64{10: {0}, 11: {2}}, resp.Data.Reverse)
}

func TestCorrelateRejectedTrace(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewCorrelateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{writeScenario(t, `
name: unmatched
description: "An output with no recorded input"
before:
  - { time: 0, value: a, key: K1 }
after:
  - { time: 10, value: z }
expect:
  transitions: []
`)})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "E009")

	output := buf.String()
	assert.Contains(t, output, "Trace rejected:")
	assert.Contains(t, output, "✗ FAIL")
	assert.Contains(t, output, "unexpected inconsistency")
}

func TestCorrelateMalformedScenario(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewCorrelateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{writeScenario(t, "name: missing_description\n")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "E009")
	assert.Contains(t, buf.String(), "description is required")
}

func TestCorrelateStoresRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "streamtrace.db")

	cmd := NewCorrelateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{writeScenario(t, manyToOneScenario), "--db", dbPath})
	require.NoError(t, cmd.Execute())

	buf := &bytes.Buffer{}
	show := NewTransitionsCommand(&RootOptions{Format: "text"})
	show.SetOut(buf)
	show.SetArgs([]string{"--db", dbPath, "--run", "run-many-to-one"})
	require.NoError(t, show.Execute())

	output := buf.String()
	assert.Contains(t, output, "Run run-many-to-one (pipeline many_to_one, seq 1)")
	assert.Contains(t, output, "  call 1: 0 -> 10")
	assert.Contains(t, output, "  call 1: 2 -> 11")
}
