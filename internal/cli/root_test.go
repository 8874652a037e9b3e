package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/streamtrace/internal/ir"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "streamtrace", cmd.Use)
	assert.Contains(t, cmd.Long, "transitions")
	assert.Equal(t, ir.GeneratorVersion, cmd.Version)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"generate", "validate", "correlate", "transitions"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestGenerateCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	generateCmd, _, err := cmd.Find([]string{"generate"})
	require.NoError(t, err)

	for _, name := range []string{"renderer", "dialect", "db", "pipeline"} {
		flag := generateCmd.Flags().Lookup(name)
		require.NotNil(t, flag, "flag %s", name)
		// Empty defaults defer to the generator block
		assert.Equal(t, "", flag.DefValue)
	}
}

func TestCorrelateCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	correlateCmd, _, err := cmd.Find([]string{"correlate"})
	require.NoError(t, err)

	dbFlag := correlateCmd.Flags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, "", dbFlag.DefValue)
}

func TestTransitionsCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	transitionsCmd, _, err := cmd.Find([]string{"transitions"})
	require.NoError(t, err)

	dbFlag := transitionsCmd.Flags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, "", dbFlag.DefValue)

	runFlag := transitionsCmd.Flags().Lookup("run")
	require.NotNil(t, runFlag)
	assert.Equal(t, "", runFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "xml", "validate", "."})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
