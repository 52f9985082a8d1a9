// Command taf2trf reshapes TAF files into a time relative format table.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"roicli/internal/app"
	"roicli/internal/dataprocessing"
	apperrors "roicli/internal/errors"
	"roicli/internal/exporter"
	"roicli/internal/infrastructure"
	"roicli/internal/pipeline"
	"roicli/internal/table"
	"roicli/internal/taf"
	"roicli/pkg/contracts"
)

const commandName = "taf2trf"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		slog.Error("taf2trf failed",
			slog.String("error", err.Error()),
			slog.String("error_type", string(apperrors.TypeOf(err))))
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet(commandName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML configuration file")
	inDir := fs.String("in", "", "directory searched for TAF files (overrides paths.input_dir)")
	outName := fs.String("out", "trf.csv", "output file, relative to paths.output_dir")
	shifts := fs.String("shifts", "", "relative shifts, e.g. m2=-1,m1=0,p1=1 (overrides transform.shifts)")
	reportName := fs.String("report", "run_report.json", "run report file, empty to skip")
	truthPath := fs.String("truth", "", "CSV of per acquisition ground truth keyed by date, joined onto the output")
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *showVersion {
		fmt.Fprintln(stdout, contracts.GetFullVersionString(commandName))
		return nil
	}

	a, err := app.NewApplication(commandName, *configPath, stderr)
	if err != nil {
		return err
	}
	if *inDir != "" {
		a.Config.Paths.InputDir = *inDir
	}
	if *shifts != "" {
		a.Config.Transform.Shifts = *shifts
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			a.Logger.Warn("Shutdown incomplete", slog.String("error", err.Error()))
		}
	}()

	ctx = infrastructure.EnsureTraceID(ctx)
	logger := infrastructure.LoggerWithContext(ctx, a.Logger)
	logger.InfoContext(ctx, "Starting TAF to TRF conversion",
		slog.String("version", contracts.Version),
		slog.String("input_dir", a.Config.Paths.InputDir),
		slog.String("output_dir", a.Config.Paths.OutputDir),
		slog.String("shifts", a.Config.Transform.Shifts))

	if err := a.Validator.ValidateOutputDirectory(a.Config.Paths.OutputDir); err != nil {
		return err
	}
	input, inputs, err := a.LoadTAF(ctx)
	if err != nil {
		return err
	}

	p, err := pipeline.FromConfig(a.Config.Transform, a.PipelineOptions()...)
	if err != nil {
		return err
	}
	trf, report, err := p.Run(ctx, input)
	if err != nil {
		return err
	}
	if *truthPath != "" {
		if trf, err = joinTruth(a, trf, *truthPath); err != nil {
			return err
		}
	}

	path, err := a.WriteFile(*outName, func(w io.Writer) error {
		return exporter.WriteTable(w, trf)
	})
	if err != nil {
		return err
	}
	report.Input = a.Config.Paths.InputDir
	report.Output = path

	if *reportName != "" {
		if _, err := a.WriteFile(*reportName, func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}); err != nil {
			return err
		}
	}

	rows, cols := trf.Shape()
	logger.InfoContext(ctx, "TRF table written",
		slog.String("path", path),
		slog.Int("input_files", len(inputs)),
		slog.Int("rows", rows),
		slog.Int("columns", cols),
		slog.String("frequency", report.Frequency))
	fmt.Fprintf(stdout, "wrote %s (%d rows, %d columns)\n", path, rows, cols)
	return nil
}

func joinTruth(a *app.Application, trf *table.Table, path string) (*table.Table, error) {
	if err := a.Validator.ValidateFile(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open ground truth", err)
	}
	defer f.Close()

	truth, err := dataprocessing.ReadTAFCSV(f)
	if err != nil {
		return nil, fmt.Errorf("ground truth %s: %w", path, err)
	}
	return dataprocessing.JoinGroundTruth(trf, truth, taf.TimeLevel)
}
