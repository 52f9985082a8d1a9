package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"roicli/pkg/contracts"
)

// PipelineMetrics records stage executions through an OpenTelemetry meter
// whose readings are exposed on a private prometheus registry.
type PipelineMetrics struct {
	registry      *prometheus.Registry
	meterProvider *sdkmetric.MeterProvider

	stageRuns     metric.Int64Counter
	stageErrors   metric.Int64Counter
	stageDuration metric.Float64Histogram
	tableRows     metric.Int64Gauge
	tableColumns  metric.Int64Gauge
}

// NewPipelineMetrics creates the instruments on a fresh registry.
func NewPipelineMetrics() (*PipelineMetrics, error) {
	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(newResource()),
		sdkmetric.WithReader(exporter),
	)
	meter := mp.Meter(InstrumentationName, metric.WithInstrumentationVersion(contracts.Version))

	m := &PipelineMetrics{registry: registry, meterProvider: mp}
	if m.stageRuns, err = meter.Int64Counter(
		"stage_runs",
		metric.WithDescription("Total number of pipeline stage executions"),
	); err != nil {
		return nil, err
	}
	if m.stageErrors, err = meter.Int64Counter(
		"stage_errors",
		metric.WithDescription("Total number of failed pipeline stages"),
	); err != nil {
		return nil, err
	}
	if m.stageDuration, err = meter.Float64Histogram(
		"stage_duration",
		metric.WithDescription("Pipeline stage duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.tableRows, err = meter.Int64Gauge(
		"table_rows",
		metric.WithDescription("Rows in the table produced by the last stage run"),
	); err != nil {
		return nil, err
	}
	if m.tableColumns, err = meter.Int64Gauge(
		"table_columns",
		metric.WithDescription("Columns in the table produced by the last stage run"),
	); err != nil {
		return nil, err
	}
	return m, nil
}

// Registry exposes the prometheus registry holding the readings.
func (m *PipelineMetrics) Registry() *prometheus.Registry { return m.registry }

// RecordStage records one stage execution. rows and cols are ignored when
// err is not nil.
func (m *PipelineMetrics) RecordStage(ctx context.Context, stage string, d time.Duration, rows, cols int, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	stageAttr := attribute.String("stage", stage)
	m.stageRuns.Add(ctx, 1, metric.WithAttributes(stageAttr, attribute.String("status", status)))
	m.stageDuration.Record(ctx, d.Seconds(), metric.WithAttributes(stageAttr))
	if err != nil {
		m.stageErrors.Add(ctx, 1, metric.WithAttributes(stageAttr))
		return
	}
	m.tableRows.Record(ctx, int64(rows), metric.WithAttributes(stageAttr))
	m.tableColumns.Record(ctx, int64(cols), metric.WithAttributes(stageAttr))
}

// WriteTextfile writes the current readings in the prometheus text format.
func (m *PipelineMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

// Shutdown stops the meter provider.
func (m *PipelineMetrics) Shutdown(ctx context.Context) error {
	if m == nil {
		return nil
	}
	return m.meterProvider.Shutdown(ctx)
}
