package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("render", 150*time.Millisecond)
	pr.ObserveReportDuration(500 * time.Millisecond)
	pr.IncStageResult("render", ResultSuccess)
	pr.IncReportOutcome("success")
	pr.ObserveImageDuration("pairplot", 200*time.Millisecond, true)
	pr.IncImageResult(true)
	pr.SetBatchSize(3)
	// Basic scrape to ensure metrics encode without panic
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) == 0 {
		t.Fatalf("expected metrics, got none")
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.ObserveStageDuration("render", time.Second)
	pr.ObserveReportDuration(time.Second)
	pr.IncStageResult("render", ResultFailed)
	pr.IncReportOutcome("failed")
	pr.ObserveImageDuration("pairplot", time.Second, false)
	pr.IncImageResult(false)
	pr.SetBatchSize(0)
}
