package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
	ResultSkipped ResultLabel = "skipped"
)

// Recorder defines observability hooks for report generation. Implementations
// may forward to Prometheus, OpenTelemetry, etc. All methods must be safe on
// the zero value so callers can inject NoopRecorder unconditionally.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveReportDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncReportOutcome(outcome string) // outcome: success|failed|skipped
	ObserveImageDuration(imageType string, d time.Duration, success bool)
	IncImageResult(success bool)
	SetBatchSize(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration)       {}
func (NoopRecorder) ObserveReportDuration(time.Duration)              {}
func (NoopRecorder) IncStageResult(string, ResultLabel)               {}
func (NoopRecorder) IncReportOutcome(string)                          {}
func (NoopRecorder) ObserveImageDuration(string, time.Duration, bool) {}
func (NoopRecorder) IncImageResult(bool)                              {}
func (NoopRecorder) SetBatchSize(int)                                 {}
