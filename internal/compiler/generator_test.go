package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/streamtrace/internal/emit"
	"github.com/roach88/streamtrace/internal/handler"
)

func compileGeneratorSource(t *testing.T, src string) (GeneratorConfig, error) {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	require.NoError(t, v.Err())
	return CompileGenerator(v.LookupPath(cue.ParsePath("generator")))
}

func TestCompileGeneratorDefaults(t *testing.T) {
	cfg, err := compileGeneratorSource(t, `pipeline: {}`)
	require.NoError(t, err)

	assert.Equal(t, DefaultGeneratorConfig(), cfg)
	assert.Equal(t, emit.RendererStructured, cfg.Renderer)
	assert.Equal(t, "time.get()", cfg.Time)
	assert.Equal(t, handler.DialectScan, cfg.Dialect)
}

func TestCompileGeneratorExplicit(t *testing.T) {
	cfg, err := compileGeneratorSource(t, `
		generator: { renderer: "template", time: "clock.get()" }
	`)
	require.NoError(t, err)

	assert.Equal(t, emit.RendererTemplate, cfg.Renderer)
	assert.Equal(t, "clock.get()", cfg.Time)

	e, err := cfg.Emitter()
	require.NoError(t, err)
	assert.Equal(t, emit.RendererTemplate, e.Renderer().Name())
	assert.Equal(t, "clock.get()", e.Expr(e.CurrentTime()))
}

func TestCompileGeneratorWrapperDialect(t *testing.T) {
	t.Run("defaults to template renderer", func(t *testing.T) {
		cfg, err := compileGeneratorSource(t, `generator: { dialect: "wrapper" }`)
		require.NoError(t, err)
		assert.Equal(t, handler.DialectWrapper, cfg.Dialect)
		assert.Equal(t, emit.RendererTemplate, cfg.Renderer)
	})

	t.Run("explicit renderer wins", func(t *testing.T) {
		cfg, err := compileGeneratorSource(t, `generator: { dialect: "wrapper", renderer: "structured" }`)
		require.NoError(t, err)
		assert.Equal(t, emit.RendererStructured, cfg.Renderer)
	})
}

func TestCompileGeneratorRejectsUnknownValues(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		field string
	}{
		{"renderer", `generator: { renderer: "mustache" }`, "generator.renderer"},
		{"dialect", `generator: { dialect: "bitset" }`, "generator.dialect"},
		{"incrementing time", `generator: { time: "time.incrementAndGet()" }`, "generator.time"},
		{"post-increment time", `generator: { time: "counter++" }`, "generator.time"},
		{"updating time", `generator: { time: "updateTime()" }`, "generator.time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileGeneratorSource(t, tt.src)

			var ce *CompileError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestGeneratorConfigOptions(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	cfg.Dialect = handler.DialectWrapper

	opts := cfg.Options()
	require.Len(t, opts, 1)
}
