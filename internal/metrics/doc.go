// Package metrics provides observability hooks for report generation.
//
// The package implements the Null Object pattern so metrics collection never
// requires nil checks in the pipeline. Components receive a Recorder through
// dependency injection and default to NoopRecorder, whose no-op methods
// inline to nothing. When Prometheus export is enabled (watch mode with
// metrics.enabled in doc-builder.yaml), the same components receive a
// PrometheusRecorder instead and nothing else changes.
package metrics
