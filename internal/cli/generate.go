package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/streamtrace/internal/compiler"
	"github.com/roach88/streamtrace/internal/emit"
	"github.com/roach88/streamtrace/internal/handler"
	"github.com/roach88/streamtrace/internal/ir"
	"github.com/roach88/streamtrace/internal/store"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Renderer string // overrides the generator block
	Dialect  string // overrides the generator block
	Database string // optional - persist units
	Pipeline string // optional - generate only this pipeline
}

// PipelineUnits is the generated code of one pipeline.
type PipelineUnits struct {
	Name          string           `json:"name"`
	Fingerprint   string           `json:"fingerprint"`
	Result        ir.CanonicalType `json:"result"`
	ResultElement ir.CanonicalType `json:"result_element"`
	Units         []handler.Unit   `json:"units"`
}

// GenerateResult holds the generated code of every pipeline.
type GenerateResult struct {
	Renderer       string          `json:"renderer"`
	Dialect        string          `json:"dialect"`
	DialectVersion string          `json:"dialect_version"`
	Pipelines      []PipelineUnits `json:"pipelines"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate <specs-dir>",
		Short: "Generate tracing code for every pipeline",
		Long: `Generate the tracing code for every pipeline described in a CUE directory.

Each call of a pipeline yields one unit: the calls inserted before and
after it, the rewritten call, the declarations, the finalization code and
the result expression. Generation is all or nothing per pipeline.

Examples:
  streamtrace generate ./specs
  streamtrace generate ./specs --renderer template --dialect wrapper
  streamtrace generate ./specs --db ./streamtrace.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Renderer, "renderer", "", "renderer (structured|template), overrides the generator block")
	cmd.Flags().StringVar(&opts.Dialect, "dialect", "", "deduplication dialect (scan|wrapper), overrides the generator block")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database to store units in")
	cmd.Flags().StringVar(&opts.Pipeline, "pipeline", "", "generate only the named pipeline")

	return cmd
}

func runGenerate(opts *GenerateOptions, specsDir string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	loadResult, loadErrors := LoadSpecs(specsDir, LoadModeFailFast)
	if len(loadErrors) > 0 {
		return outputLoadError(formatter, loadErrors[0])
	}
	if errs := compiler.Validate(loadResult.Pipelines); len(errs) > 0 {
		return outputValidationErrors(formatter, len(loadResult.Pipelines), errs)
	}

	cfg := loadResult.Generator
	if opts.Renderer != "" {
		cfg.Renderer = opts.Renderer
	}
	if opts.Dialect != "" {
		cfg.Dialect = handler.Dialect(opts.Dialect)
		if cfg.Dialect == handler.DialectWrapper && opts.Renderer == "" {
			cfg.Renderer = emit.RendererTemplate
		}
	}
	switch cfg.Dialect {
	case handler.DialectScan, handler.DialectWrapper:
	default:
		return outputGenerationError(formatter, &ir.GenerationError{
			Code:    ir.ErrCodeUnknownDialect,
			Message: fmt.Sprintf("unknown dialect %q", cfg.Dialect),
		})
	}
	e, err := cfg.Emitter()
	if err != nil {
		return outputGenerationError(formatter, err)
	}

	pipelines := selectPipelines(loadResult.Pipelines, opts.Pipeline)
	if len(pipelines) == 0 {
		return outputLoadError(formatter, &LoadError{
			Code:    ErrCodeNotFound,
			Message: fmt.Sprintf("pipeline not found: %s", opts.Pipeline),
		})
	}

	var st *store.Store
	if opts.Database != "" {
		st, err = store.Open(opts.Database)
		if err != nil {
			_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()
	}

	result := GenerateResult{
		Renderer:       cfg.Renderer,
		Dialect:        string(cfg.Dialect),
		DialectVersion: ir.DialectVersion,
	}
	for _, p := range pipelines {
		formatter.VerboseLog("Generating pipeline: %s", p.Name)

		units, genErr := handler.GeneratePipeline(p.Calls, e, cfg.Options()...)
		if genErr != nil {
			return outputGenerationError(formatter, fmt.Errorf("pipeline %s: %w", p.Name, genErr))
		}

		fingerprint, fpErr := ir.PipelineFingerprint(*p)
		if fpErr != nil {
			return WrapExitError(ExitCommandError, "failed to fingerprint pipeline", fpErr)
		}

		if st != nil {
			for _, u := range units {
				if _, err := st.WriteUnit(ctx, p.Name, u); err != nil {
					_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
					return WrapExitError(ExitCommandError, "failed to store unit", err)
				}
			}
		}

		slog.Info("pipeline generated", "pipeline", p.Name, "units", len(units))
		result.Pipelines = append(result.Pipelines, PipelineUnits{
			Name:          p.Name,
			Fingerprint:   fingerprint,
			Result:        p.Result,
			ResultElement: p.ResultElement,
			Units:         units,
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return outputGenerateText(formatter, result)
}

func selectPipelines(pipelines []*ir.Pipeline, name string) []*ir.Pipeline {
	if name == "" {
		return pipelines
	}
	for _, p := range pipelines {
		if p.Name == name {
			return []*ir.Pipeline{p}
		}
	}
	return nil
}

// outputGenerationError reports a generation failure. Precondition
// violations are input failures (exit code 1).
func outputGenerationError(formatter *OutputFormatter, err error) error {
	code := ErrCodeGeneration
	var ge *ir.GenerationError
	if errors.As(err, &ge) {
		code = string(ge.Code)
	}
	_ = formatter.Error(code, err.Error(), nil)
	return WrapExitError(ExitFailure, "generation failed", err)
}

func outputGenerateText(formatter *OutputFormatter, result GenerateResult) error {
	for i, p := range result.Pipelines {
		if i > 0 {
			fmt.Fprintln(formatter.Writer)
		}
		fmt.Fprintf(formatter.Writer, "// pipeline %s (%d call(s), %s renderer, %s dialect)\n",
			p.Name, len(p.Units), result.Renderer, result.Dialect)
		if p.Result != ir.Void {
			fmt.Fprintf(formatter.Writer, "// result %s (element %s)\n", p.Result, p.ResultElement)
		}
		fmt.Fprint(formatter.Writer, handler.FormatUnits(p.Units))
	}
	return nil
}
