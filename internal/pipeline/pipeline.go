package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"roicli/internal/config"
	"roicli/internal/doy"
	"roicli/internal/infrastructure"
	"roicli/internal/table"
	"roicli/internal/taf"
	"roicli/internal/trf"
	"roicli/pkg/contracts/domain"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. A nil logger falls back to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithTracer traces every run and stage with tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(p *Pipeline) {
		if tracer != nil {
			p.tracer = tracer
		}
	}
}

// WithMetrics records every stage execution in m.
func WithMetrics(m *infrastructure.PipelineMetrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// Pipeline runs registered stages in order over one table.
type Pipeline struct {
	registry *Registry
	logger   *slog.Logger
	tracer   trace.Tracer
	metrics  *infrastructure.PipelineMetrics
}

// New creates a pipeline running stages in the given order.
func New(stages []Stage, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		registry: NewRegistry(),
		logger:   slog.Default(),
		tracer:   noop.NewTracerProvider().Tracer(infrastructure.InstrumentationName),
	}
	for _, opt := range opts {
		opt(p)
	}
	for _, s := range stages {
		if err := p.registry.Register(s); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// FromConfig builds the TAF to TRF pipeline: parse, reltime, doy, trf.
func FromConfig(cfg config.TransformConfig, opts ...Option) (*Pipeline, error) {
	spec, err := trf.ParseShiftSpec(cfg.Shifts)
	if err != nil {
		return nil, fmt.Errorf("transform shifts: %w", err)
	}

	p, err := New(nil, opts...)
	if err != nil {
		return nil, err
	}
	stages := []Stage{
		NewParseStage(taf.Options{NoonCorrection: cfg.NoonCorrection, Logger: p.logger}, cfg.IDLevel),
		NewRelTimeStage(cfg.RelativeTime, p.logger),
		NewDayOfYearStage(cfg.DayOfYear, doy.Options{OneBased: cfg.DayOfYearOneBased}),
		NewTRFStage(spec, trf.Passthrough{
			Features: cfg.PassthroughFeatures,
			Objects:  cfg.PassthroughObjects,
		}, p.logger),
	}
	for _, s := range stages {
		if err := p.registry.Register(s); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Stages returns the registered stage IDs in run order.
func (p *Pipeline) Stages() []string { return p.registry.ListIDs() }

// Run passes input through every enabled stage. The first failing stage
// aborts the run; its error is returned wrapped with the stage ID and no
// table is returned. The report is filled in either case.
func (p *Pipeline) Run(ctx context.Context, input *table.Table) (*table.Table, domain.RunReport, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	report := domain.RunReport{TraceID: infrastructure.GetTraceID(ctx)}
	logger := infrastructure.LoggerWithContext(ctx, p.logger)

	rows, cols := input.Shape()
	ctx, span := p.tracer.Start(ctx, "pipeline.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("trace_id", report.TraceID),
			attribute.Int("input.rows", rows),
			attribute.Int("input.columns", cols),
		))
	defer span.End()

	logger.InfoContext(ctx, "pipeline started",
		slog.Int("stages", p.registry.Count()),
		slog.Int("rows", rows),
		slog.Int("columns", cols))

	start := time.Now()
	state := &State{Table: input}
	for _, stage := range p.registry.List() {
		st, err := p.runStage(ctx, stage, state)
		report.Stages = append(report.Stages, st.Report())
		if err != nil {
			report.Duration = time.Since(start)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			infrastructure.WithError(logger, err).ErrorContext(ctx, "pipeline failed",
				slog.String("stage", stage.ID()))
			return nil, report, fmt.Errorf("%s stage: %w", stage.ID(), err)
		}
	}
	report.Duration = time.Since(start)
	report.Frequency = state.Frequency

	rows, cols = state.Table.Shape()
	span.SetAttributes(attribute.Int("output.rows", rows), attribute.Int("output.columns", cols))
	logger.InfoContext(ctx, "pipeline completed",
		slog.Int("rows", rows),
		slog.Int("columns", cols),
		slog.Duration("duration", report.Duration))
	return state.Table, report, nil
}

func (p *Pipeline) runStage(ctx context.Context, stage Stage, state *State) (*StageState, error) {
	st := NewStageState(stage.ID())
	if !stage.Enabled() {
		st.Skip()
		p.logger.DebugContext(ctx, "stage skipped", slog.String("stage", stage.ID()))
		return st, nil
	}
	if err := ctx.Err(); err != nil {
		st.Fail(err)
		return st, err
	}

	ctx, span := p.tracer.Start(ctx, "pipeline.stage."+stage.ID(),
		trace.WithAttributes(
			attribute.String("stage.id", stage.ID()),
			attribute.String("stage.name", stage.Name()),
		))
	defer span.End()

	st.Start()
	err := stage.Execute(ctx, state)
	if err != nil {
		st.Fail(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.metrics.RecordStage(ctx, stage.ID(), st.Duration(), 0, 0, err)
		return st, err
	}

	rows, cols := state.Table.Shape()
	st.Complete(rows, cols)
	infrastructure.SetSpanAttributes(ctx, map[string]interface{}{"rows": rows, "columns": cols})
	p.metrics.RecordStage(ctx, stage.ID(), st.Duration(), rows, cols, nil)
	p.logger.DebugContext(ctx, "stage completed",
		slog.String("stage", stage.ID()),
		slog.Int("rows", rows),
		slog.Int("columns", cols))
	return st, nil
}
