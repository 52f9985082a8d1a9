// Package pipeline runs the TAF to TRF reshaping as a sequence of named
// stages: parse, reltime, doy and trf. A selection stage can prune
// correlated columns afterwards.
//
// Each stage runs inside an OpenTelemetry span and is counted in the
// pipeline metrics. The first failing stage aborts the run:
//
//	p, err := pipeline.FromConfig(cfg.Transform,
//	    pipeline.WithLogger(logger),
//	    pipeline.WithTracer(tp.Tracer),
//	    pipeline.WithMetrics(metrics))
//	out, report, err := p.Run(ctx, tafTable)
package pipeline
