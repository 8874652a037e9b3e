package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCall() PipelineCall {
	return NewPipelineCall("distinct",
		[]CallArgument{{Type: "java.util.function.Function<Person, String>", Text: "Person::getName"}},
		Class("Person"), Class("Person"), TextRange{Start: 10, End: 42}, "one.util.streamex")
}

func TestWithArgumentsPreservesEverythingElse(t *testing.T) {
	call := sampleCall()
	replaced := call.WithArguments([]CallArgument{{Type: "F", Text: "x -> x"}})

	assert.Equal(t, call.Name(), replaced.Name())
	assert.Equal(t, call.TypeBefore(), replaced.TypeBefore())
	assert.Equal(t, call.TypeAfter(), replaced.TypeAfter())
	assert.Equal(t, call.Range(), replaced.Range())
	assert.Equal(t, call.Package(), replaced.Package())
	assert.Equal(t, []CallArgument{{Type: "F", Text: "x -> x"}}, replaced.Arguments())
	assert.False(t, call.Equal(replaced))
}

func TestPipelineCallIsImmutable(t *testing.T) {
	args := []CallArgument{{Type: "F", Text: "a"}}
	call := NewPipelineCall("distinct", args, Object, Object, EmptyRange, "")

	args[0].Text = "mutated"
	assert.Equal(t, "a", call.Arguments()[0].Text, "constructor must copy arguments")

	got := call.Arguments()
	got[0].Text = "mutated"
	assert.Equal(t, "a", call.Arguments()[0].Text, "accessor must return a copy")

	_ = call.WithArguments([]CallArgument{{Type: "G", Text: "b"}})
	assert.Equal(t, "a", call.Arguments()[0].Text, "WithArguments must not touch the receiver")
}

func TestPipelineCallEqual(t *testing.T) {
	assert.True(t, sampleCall().Equal(sampleCall()))
	assert.False(t, sampleCall().Equal(sampleCall().WithArguments(nil)))
}

func TestPipelineCallMarshalJSON(t *testing.T) {
	data, err := json.Marshal(NewPipelineCall("peek", nil, Int, Int, EmptyRange, ""))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "peek", decoded["name"])
	assert.Equal(t, "INT", decoded["type_before"])
	assert.Equal(t, []any{}, decoded["args"])
	assert.NotContains(t, decoded, "package")
}

func TestTextRangeIsEmpty(t *testing.T) {
	assert.True(t, EmptyRange.IsEmpty())
	assert.False(t, TextRange{Start: 1, End: 2}.IsEmpty())
}
