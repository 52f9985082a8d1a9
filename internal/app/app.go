package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"roicli/internal/config"
	apperrors "roicli/internal/errors"
	"roicli/internal/dataprocessing"
	"roicli/internal/files"
	"roicli/internal/infrastructure"
	"roicli/internal/pipeline"
	"roicli/internal/table"
	"roicli/internal/validation"
)

// Application bundles what a CLI run needs: configuration, logging,
// telemetry and file access.
type Application struct {
	Name      string
	Config    *config.Config
	Logger    *slog.Logger
	Tracing   *infrastructure.TracingProvider
	Metrics   *infrastructure.PipelineMetrics
	Validator *validation.FileValidator
	Files     *files.Manager
}

// NewApplication loads the configuration from configPath (may be empty),
// then initializes logging, tracing and metrics. Spans go to traceOut.
func NewApplication(name, configPath string, traceOut io.Writer) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return NewApplicationWithConfig(name, cfg, traceOut)
}

// NewApplicationWithConfig is NewApplication with an already loaded config.
func NewApplicationWithConfig(name string, cfg *config.Config, traceOut io.Writer) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = infrastructure.WithComponent(logger, name)

	tracing, err := infrastructure.InitializeTracing(cfg.Telemetry, traceOut, logger)
	if err != nil {
		return nil, err
	}
	metrics, err := infrastructure.NewPipelineMetrics()
	if err != nil {
		return nil, err
	}

	return &Application{
		Name:      name,
		Config:    cfg,
		Logger:    logger,
		Tracing:   tracing,
		Metrics:   metrics,
		Validator: validation.NewFileValidator(logger),
		Files:     files.NewManager(cfg.Paths.OutputDir, logger),
	}, nil
}

// PipelineOptions wires the application's logger, tracer and metrics.
func (a *Application) PipelineOptions() []pipeline.Option {
	return []pipeline.Option{
		pipeline.WithLogger(a.Logger),
		pipeline.WithTracer(a.Tracing.Tracer),
		pipeline.WithMetrics(a.Metrics),
	}
}

// LoadTAF reads every TAF file in the configured input directory and joins
// them on the object id.
func (a *Application) LoadTAF(ctx context.Context) (*table.Table, []string, error) {
	paths, err := a.Validator.ValidateInputDirectory(a.Config.Paths.InputDir, a.Config.Paths.Extension)
	if err != nil {
		return nil, nil, err
	}

	tables := make([]*table.Table, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		t, err := a.readTAF(path)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", path, err)
		}
		rows, cols := t.Shape()
		a.Logger.InfoContext(ctx, "Loaded TAF file",
			slog.String("path", path),
			slog.Int("rows", rows),
			slog.Int("columns", cols))
		tables = append(tables, t)
	}

	joined, err := dataprocessing.ConcatColumns(tables...)
	if err != nil {
		return nil, nil, err
	}
	return joined, paths, nil
}

func (a *Application) readTAF(path string) (*table.Table, error) {
	if strings.EqualFold(a.Config.Paths.Extension, ".xlsx") {
		return dataprocessing.ReadTAFXLSX(path, a.Config.Paths.Sheet)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open TAF file", err)
	}
	defer f.Close()
	return dataprocessing.ReadTAFCSV(f)
}

// WriteFile creates name below the output directory and fills it with
// write.
func (a *Application) WriteFile(name string, write func(io.Writer) error) (string, error) {
	f, err := a.Files.Create(name)
	if err != nil {
		return "", apperrors.NewStorageError("failed to create output file", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", apperrors.NewStorageError("failed to close output file", err)
	}
	return f.Name(), nil
}

// Close writes the metrics textfile when configured and shuts telemetry
// down. It returns every error encountered.
func (a *Application) Close(ctx context.Context) error {
	var errs []error
	if path := a.Config.Telemetry.MetricsFile; path != "" {
		if err := a.Metrics.WriteTextfile(a.Config.Paths.Resolve(path)); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.Metrics.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := a.Tracing.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := infrastructure.CloseLogFile(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
