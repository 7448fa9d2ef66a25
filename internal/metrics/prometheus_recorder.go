package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once           sync.Once
	stageDuration  *prom.HistogramVec
	reportDuration prom.Histogram
	stageResults   *prom.CounterVec
	reportOutcome  *prom.CounterVec
	imageDuration  *prom.HistogramVec
	imageResults   *prom.CounterVec
	batchSize      prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "doc_builder",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual pipeline stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.reportDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "doc_builder",
			Name:      "report_duration_seconds",
			Help:      "Total per-report generation duration",
			Buckets:   prom.DefBuckets,
		})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "doc_builder",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"})
		pr.reportOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "doc_builder",
			Name:      "report_outcomes_total",
			Help:      "Report outcomes by final status",
		}, []string{"outcome"})
		pr.imageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "doc_builder",
			Name:      "image_duration_seconds",
			Help:      "Duration of individual image generations",
			Buckets:   prom.DefBuckets,
		}, []string{"type", "result"})
		pr.imageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "doc_builder",
			Name:      "image_results_total",
			Help:      "Image generation results by success/failure",
		}, []string{"result"})
		pr.batchSize = prom.NewGauge(prom.GaugeOpts{
			Namespace: "doc_builder",
			Name:      "batch_size",
			Help:      "Number of studies discovered by the last batch run",
		})
		reg.MustRegister(pr.stageDuration, pr.reportDuration, pr.stageResults, pr.reportOutcome, pr.imageDuration, pr.imageResults, pr.batchSize)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveReportDuration(d time.Duration) {
	if p == nil || p.reportDuration == nil {
		return
	}
	p.reportDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncReportOutcome(outcome string) {
	if p == nil || p.reportOutcome == nil {
		return
	}
	p.reportOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) ObserveImageDuration(imageType string, d time.Duration, success bool) {
	if p == nil || p.imageDuration == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.imageDuration.WithLabelValues(imageType, res).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncImageResult(success bool) {
	if p == nil || p.imageResults == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.imageResults.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) SetBatchSize(n int) {
	if p == nil || p.batchSize == nil {
		return
	}
	p.batchSize.Set(float64(n))
}
