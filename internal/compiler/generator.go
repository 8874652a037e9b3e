package compiler

import (
	"regexp"

	"cuelang.org/go/cue"

	"github.com/roach88/streamtrace/internal/emit"
	"github.com/roach88/streamtrace/internal/handler"
)

// counterUpdate matches time expressions that advance the counter. Every
// observer of one element reads the counter, so such an expression would
// stamp the element differently in each recording.
var counterUpdate = regexp.MustCompile(`(?i)increment|decrement|addandget|getandadd|getandset|update|\+\+|--|[-+]=`)

// GeneratorConfig holds code-generation settings from the CUE generator block.
type GeneratorConfig struct {
	Renderer string          `json:"renderer"`
	Time     string          `json:"time"`
	Dialect  handler.Dialect `json:"dialect"`
}

// DefaultGeneratorConfig returns the settings used when no generator block
// is present.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Renderer: emit.RendererStructured,
		Time:     emit.DefaultTimeExpression,
		Dialect:  handler.DialectScan,
	}
}

// CompileGenerator parses a generator block. A missing value yields the
// defaults. The wrapper dialect renders with the template renderer unless a
// renderer is named explicitly.
func CompileGenerator(v cue.Value) (GeneratorConfig, error) {
	cfg := DefaultGeneratorConfig()
	if !v.Exists() {
		return cfg, nil
	}
	if err := v.Err(); err != nil {
		return GeneratorConfig{}, cueError(err, "generator")
	}

	dialect, err := optionalString(v, "dialect")
	if err != nil {
		return GeneratorConfig{}, err
	}
	if dialect != "" {
		cfg.Dialect = handler.Dialect(dialect)
		if cfg.Dialect == handler.DialectWrapper {
			cfg.Renderer = emit.RendererTemplate
		}
	}

	renderer, err := optionalString(v, "renderer")
	if err != nil {
		return GeneratorConfig{}, err
	}
	if renderer != "" {
		cfg.Renderer = renderer
	}

	timeExpr, err := optionalString(v, "time")
	if err != nil {
		return GeneratorConfig{}, err
	}
	if timeExpr != "" {
		if counterUpdate.MatchString(timeExpr) {
			return GeneratorConfig{}, fieldError(v.LookupPath(cue.ParsePath("time")), "generator.time",
				"time expression %q must read the counter without advancing it", timeExpr)
		}
		cfg.Time = timeExpr
	}

	if _, err := emit.RendererByName(cfg.Renderer); err != nil {
		return GeneratorConfig{}, fieldError(v.LookupPath(cue.ParsePath("renderer")), "generator.renderer", "%v", err)
	}
	switch cfg.Dialect {
	case handler.DialectScan, handler.DialectWrapper:
	default:
		return GeneratorConfig{}, fieldError(v.LookupPath(cue.ParsePath("dialect")), "generator.dialect", "unknown dialect %q", cfg.Dialect)
	}

	return cfg, nil
}

// Emitter builds the emitter described by the config.
func (c GeneratorConfig) Emitter() (*emit.Emitter, error) {
	r, err := emit.RendererByName(c.Renderer)
	if err != nil {
		return nil, err
	}
	return emit.NewEmitter(r, emit.Text{Code: c.Time}), nil
}

// Options returns the handler options described by the config.
func (c GeneratorConfig) Options() []handler.Option {
	return []handler.Option{handler.WithDialect(c.Dialect)}
}

func optionalString(v cue.Value, path string) (string, error) {
	val := v.LookupPath(cue.ParsePath(path))
	if !val.Exists() {
		return "", nil
	}
	s, err := val.String()
	if err != nil {
		return "", cueError(err, "generator."+path)
	}
	return s, nil
}
