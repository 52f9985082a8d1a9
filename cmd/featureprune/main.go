// Command featureprune drops feature columns that are strongly correlated
// with an earlier column of a table written by taf2trf.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"roicli/internal/app"
	apperrors "roicli/internal/errors"
	"roicli/internal/exporter"
	"roicli/internal/infrastructure"
	"roicli/internal/pipeline"
	"roicli/pkg/contracts"
)

const commandName = "featureprune"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		slog.Error("featureprune failed",
			slog.String("error", err.Error()),
			slog.String("error_type", string(apperrors.TypeOf(err))))
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet(commandName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML configuration file")
	input := fs.String("in", "", "table to prune, as written by taf2trf")
	rowLevels := fs.Int("row-levels", 3, "number of row levels in the input")
	colLevels := fs.Int("col-levels", 2, "number of column levels in the input")
	outName := fs.String("out", "pruned.csv", "output file, relative to paths.output_dir")
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *showVersion {
		fmt.Fprintln(stdout, contracts.GetFullVersionString(commandName))
		return nil
	}
	if *input == "" {
		return apperrors.NewInvalidConfigurationError("-in is required")
	}

	a, err := app.NewApplication(commandName, *configPath, stderr)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			a.Logger.Warn("Shutdown incomplete", slog.String("error", err.Error()))
		}
	}()

	ctx = infrastructure.EnsureTraceID(ctx)
	logger := infrastructure.LoggerWithContext(ctx, a.Logger)
	logger.InfoContext(ctx, "Starting feature pruning",
		slog.String("input", *input),
		slog.Float64("threshold", a.Config.Selection.Threshold),
		slog.Bool("absolute", a.Config.Selection.Absolute))

	if err := a.Validator.ValidateFile(*input); err != nil {
		return err
	}
	f, err := os.Open(*input)
	if err != nil {
		return apperrors.NewStorageError("failed to open input", err)
	}
	tbl, err := exporter.ReadTable(f, *rowLevels, *colLevels)
	f.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", *input, err)
	}

	stages := []pipeline.Stage{pipeline.NewSelectionStage(a.Config.Selection, logger)}
	p, err := pipeline.New(stages, a.PipelineOptions()...)
	if err != nil {
		return err
	}
	pruned, _, err := p.Run(ctx, tbl)
	if err != nil {
		return err
	}

	path, err := a.WriteFile(*outName, func(w io.Writer) error {
		return exporter.WriteTable(w, pruned)
	})
	if err != nil {
		return err
	}
	_, before := tbl.Shape()
	_, after := pruned.Shape()
	fmt.Fprintf(stdout, "wrote %s (kept %d of %d columns)\n", path, after, before)
	return nil
}
