package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func correlateInto(t *testing.T, dbPath, scenario string) {
	t.Helper()
	cmd := NewCorrelateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{writeScenario(t, scenario), "--db", dbPath})
	require.NoError(t, cmd.Execute())
}

func TestTransitionsListRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "streamtrace.db")
	correlateInto(t, dbPath, manyToOneScenario)

	buf := &bytes.Buffer{}
	cmd := NewTransitionsCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "1\trun-many-to-one\tmany_to_one\n", buf.String())
}

func TestTransitionsListRunsEmpty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "streamtrace.db")

	buf := &bytes.Buffer{}
	cmd := NewTransitionsCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, buf.String(), "No runs stored")
}

func TestTransitionsJSON(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "streamtrace.db")
	correlateInto(t, dbPath, manyToOneScenario)

	buf := &bytes.Buffer{}
	cmd := NewTransitionsCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--run", "run-many-to-one"})
	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Run struct {
				ID       string `json:"id"`
				Pipeline string `json:"pipeline"`
			} `json:"run"`
			Transitions []struct {
				CallNumber int   `json:"call_number"`
				Before     int64 `json:"before"`
				After      int64 `json:"after"`
			} `json:"transitions"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "run-many-to-one", resp.Data.Run.ID)
	require.Len(t, resp.Data.Transitions, 3)
	assert.Equal(t, 1, resp.Data.Transitions[0].CallNumber)
	assert.Equal(t, int64(1), resp.Data.Transitions[1].Before)
	assert.Equal(t, int64(10), resp.Data.Transitions[1].After)
}

func TestTransitionsRunNotFound(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "streamtrace.db")

	buf := &bytes.Buffer{}
	cmd := NewTransitionsCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--run", "nope"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E005")
	assert.Contains(t, buf.String(), "run not found: nope")
}

func TestTransitionsRequiresDB(t *testing.T) {
	cmd := NewTransitionsCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db")
}

func TestTransitionsFilter(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "streamtrace.db")
	correlateInto(t, dbPath, manyToOneScenario)

	buf := &bytes.Buffer{}
	cmd := NewTransitionsCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--pipeline", "many_to_one", "--since", "1", "--until", "2"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t,
		"run-many-to-one\tmany_to_one\tcall 1: 1 -> 10\n"+
			"run-many-to-one\tmany_to_one\tcall 1: 2 -> 11\n",
		buf.String())
}

func TestTransitionsFilterNoMatch(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "streamtrace.db")
	correlateInto(t, dbPath, manyToOneScenario)

	buf := &bytes.Buffer{}
	cmd := NewTransitionsCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--call", "2"})
	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string            `json:"status"`
		Data   []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Empty(t, resp.Data)
}
