package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/streamtrace/internal/ir"
	"github.com/roach88/streamtrace/internal/typeres"
)

// CompilePipeline parses a CUE value into a Pipeline.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the pipeline struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`pipeline: people: { calls: [...] }`)
//	p, err := CompilePipeline(v.LookupPath(cue.ParsePath("pipeline.people")))
//
// Each call has a name, the source types of the stages before and after it,
// and optional args, range and package. A stage type is either a string or
// a struct {name, supertypes}. Input stages are classified with
// typeres.ClassifyPipelineType. An output that is not a stream ends the
// pipeline: the call produces VOID and its type becomes the pipeline result.
func CompilePipeline(v cue.Value) (*ir.Pipeline, error) {
	if err := v.Err(); err != nil {
		return nil, cueError(err, "pipeline")
	}

	p := &ir.Pipeline{}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		p.Name = labels[len(labels)-1].String()
	}

	callsVal := v.LookupPath(cue.ParsePath("calls"))
	if !callsVal.Exists() {
		return nil, fieldError(v, "calls", "calls are required")
	}

	iter, err := callsVal.List()
	if err != nil {
		return nil, cueError(err, "calls")
	}

	for i := 0; iter.Next(); i++ {
		call, stage, err := parseCall(iter.Value(), i)
		if err != nil {
			return nil, err
		}
		p.Calls = append(p.Calls, call)
		if stage.Result != ir.Void {
			p.Result, p.ResultElement = stage.Result, stage.ResultElement
		}
	}

	if len(p.Calls) == 0 {
		return nil, fieldError(callsVal, "calls", "at least one call is required")
	}

	return p, nil
}

func parseCall(v cue.Value, index int) (ir.PipelineCall, typeres.Stage, error) {
	field := fmt.Sprintf("calls[%d]", index)

	name, err := requiredString(v, "name", field)
	if err != nil {
		return ir.PipelineCall{}, typeres.Stage{}, err
	}

	before, err := parseStageType(v, "before", field)
	if err != nil {
		return ir.PipelineCall{}, typeres.Stage{}, err
	}
	after, err := parseStageType(v, "after", field)
	if err != nil {
		return ir.PipelineCall{}, typeres.Stage{}, err
	}

	args, err := parseArgs(v, field)
	if err != nil {
		return ir.PipelineCall{}, typeres.Stage{}, err
	}

	textRange, err := parseRange(v, field)
	if err != nil {
		return ir.PipelineCall{}, typeres.Stage{}, err
	}

	var pkg string
	if pkgVal := v.LookupPath(cue.ParsePath("package")); pkgVal.Exists() {
		if pkg, err = pkgVal.String(); err != nil {
			return ir.PipelineCall{}, typeres.Stage{}, cueError(err, field+".package")
		}
	}

	stage := typeres.ClassifyStage(after)
	return ir.NewPipelineCall(name, args,
		typeres.ClassifyPipelineType(before),
		stage.Elements,
		textRange, pkg), stage, nil
}

func requiredString(v cue.Value, path, field string) (string, error) {
	val := v.LookupPath(cue.ParsePath(path))
	if !val.Exists() {
		return "", fieldError(v, field+"."+path, "%s is required", path)
	}
	s, err := val.String()
	if err != nil {
		return "", cueError(err, field+"."+path)
	}
	return s, nil
}

// parseStageType reads a stage type given either as text or as
// {name, supertypes}.
func parseStageType(v cue.Value, path, field string) (typeres.SourceType, error) {
	val := v.LookupPath(cue.ParsePath(path))
	if !val.Exists() {
		return typeres.SourceType{}, fieldError(v, field+"."+path, "%s type is required", path)
	}

	switch val.IncompleteKind() {
	case cue.StringKind:
		s, err := val.String()
		if err != nil {
			return typeres.SourceType{}, cueError(err, field+"."+path)
		}
		return typeres.ParseSourceType(s), nil
	case cue.StructKind:
		name, err := requiredString(val, "name", field+"."+path)
		if err != nil {
			return typeres.SourceType{}, err
		}
		st := typeres.ParseSourceType(name)
		if supers := val.LookupPath(cue.ParsePath("supertypes")); supers.Exists() {
			if err := supers.Decode(&st.Supertypes); err != nil {
				return typeres.SourceType{}, cueError(err, field+"."+path+".supertypes")
			}
		}
		return st, nil
	default:
		return typeres.SourceType{}, fieldError(val, field+"."+path,
			"stage type must be a string or {name, supertypes}, got %v", val.IncompleteKind())
	}
}

func parseArgs(v cue.Value, field string) ([]ir.CallArgument, error) {
	argsVal := v.LookupPath(cue.ParsePath("args"))
	if !argsVal.Exists() {
		return nil, nil
	}

	iter, err := argsVal.List()
	if err != nil {
		return nil, cueError(err, field+".args")
	}

	var args []ir.CallArgument
	for i := 0; iter.Next(); i++ {
		argField := fmt.Sprintf("%s.args[%d]", field, i)
		typ, err := requiredString(iter.Value(), "type", argField)
		if err != nil {
			return nil, err
		}
		text, err := requiredString(iter.Value(), "text", argField)
		if err != nil {
			return nil, err
		}
		args = append(args, ir.CallArgument{Type: typ, Text: text})
	}
	return args, nil
}

func parseRange(v cue.Value, field string) (ir.TextRange, error) {
	rangeVal := v.LookupPath(cue.ParsePath("range"))
	if !rangeVal.Exists() {
		return ir.EmptyRange, nil
	}

	var bounds []int
	if err := rangeVal.Decode(&bounds); err != nil {
		return ir.TextRange{}, cueError(err, field+".range")
	}
	if len(bounds) != 2 || bounds[0] > bounds[1] {
		return ir.TextRange{}, fieldError(rangeVal, field+".range", "range must be [start, end] with start <= end")
	}
	return ir.TextRange{Start: bounds[0], End: bounds[1]}, nil
}
