// Package batch discovers study directories under a root and generates a
// report for each. One failing study never stops the rest of the run.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/doc-builder/internal/config"
	"git.home.luguber.info/inful/doc-builder/internal/ledger"
	"git.home.luguber.info/inful/doc-builder/internal/logfields"
	"git.home.luguber.info/inful/doc-builder/internal/metrics"
	"git.home.luguber.info/inful/doc-builder/internal/report"
)

// Outcome is the result of one study within a batch run.
type Outcome struct {
	Study      string
	OutputPath string
	Err        error
	Duration   time.Duration
}

// Summary aggregates a batch run.
type Summary struct {
	RunID    string
	Root     string
	Outcomes []Outcome
}

// Succeeded counts studies that produced a report.
func (s *Summary) Succeeded() int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Err == nil {
			n++
		}
	}
	return n
}

// Failed counts studies that errored.
func (s *Summary) Failed() int {
	return len(s.Outcomes) - s.Succeeded()
}

// Runner executes batch runs. Ledger is optional; nil disables history.
type Runner struct {
	Generator *report.Generator
	Recorder  metrics.Recorder
	Ledger    *ledger.Store
}

// NewRunner builds a Runner around a study generator.
func NewRunner(gen *report.Generator) *Runner {
	return &Runner{Generator: gen, Recorder: metrics.NoopRecorder{}}
}

// Discover returns the study directories under root, sorted by name. A
// study is any direct subdirectory containing a report.json; everything
// else is skipped.
func Discover(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read studies root %s: %w", root, err)
	}
	var studies []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		if _, err := os.Stat(filepath.Join(dir, config.ReportFileName)); err != nil {
			slog.Debug("Skipping directory without report.json", logfields.Path(dir))
			continue
		}
		studies = append(studies, dir)
	}
	sort.Strings(studies)
	return studies, nil
}

// Run generates reports for every study under root. The returned error
// covers only discovery; per-study failures land in the summary.
func (r *Runner) Run(ctx context.Context, root string) (*Summary, error) {
	studies, err := Discover(root)
	if err != nil {
		return nil, err
	}

	summary := &Summary{RunID: uuid.NewString(), Root: root}
	r.recorder().SetBatchSize(len(studies))
	slog.Info("Starting batch run",
		slog.String("run_id", summary.RunID),
		logfields.Path(root),
		slog.Int("studies", len(studies)))

	for _, dir := range studies {
		summary.Outcomes = append(summary.Outcomes, r.RunStudy(ctx, summary.RunID, dir))
	}

	slog.Info("Batch run finished",
		slog.String("run_id", summary.RunID),
		slog.Int("succeeded", summary.Succeeded()),
		slog.Int("failed", summary.Failed()))
	return summary, nil
}

// RunStudy generates one study and records its outcome in the ledger.
// Watch mode uses it for incremental rebuilds.
func (r *Runner) RunStudy(ctx context.Context, runID, dir string) Outcome {
	study := filepath.Base(dir)
	start := time.Now()
	res, genErr := r.Generator.Generate(dir)
	outcome := Outcome{Study: study, Err: genErr, Duration: time.Since(start)}
	if genErr != nil {
		slog.Error("Study failed", logfields.Study(study), logfields.Error(genErr))
	} else {
		outcome.OutputPath = res.OutputPath
	}
	r.record(ctx, runID, outcome)
	return outcome
}

func (r *Runner) record(ctx context.Context, runID string, o Outcome) {
	if r.Ledger == nil {
		return
	}
	entry := ledger.Entry{
		RunID:      runID,
		Study:      o.Study,
		Outcome:    "success",
		OutputPath: o.OutputPath,
		DurationMS: o.Duration.Milliseconds(),
	}
	if o.Err != nil {
		entry.Outcome = "failed"
		entry.Error = o.Err.Error()
	}
	if err := r.Ledger.Record(ctx, entry); err != nil {
		// History is best effort; a broken ledger must not fail the run.
		slog.Warn("Failed to record ledger entry", logfields.Study(o.Study), logfields.Error(err))
	}
}

func (r *Runner) recorder() metrics.Recorder {
	if r.Recorder == nil {
		return metrics.NoopRecorder{}
	}
	return r.Recorder
}
