// Package report orchestrates the per-study pipeline: resolve content,
// generate images, render the template and write the output document.
package report

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"git.home.luguber.info/inful/doc-builder/internal/analysis"
	"git.home.luguber.info/inful/doc-builder/internal/config"
	"git.home.luguber.info/inful/doc-builder/internal/docx"
	dberrors "git.home.luguber.info/inful/doc-builder/internal/errors"
	"git.home.luguber.info/inful/doc-builder/internal/logfields"
	"git.home.luguber.info/inful/doc-builder/internal/markdown"
	"git.home.luguber.info/inful/doc-builder/internal/metrics"
	"git.home.luguber.info/inful/doc-builder/internal/plot"
	"git.home.luguber.info/inful/doc-builder/internal/table"
)

// SourceDateEpochEnv pins the document date and core properties for
// reproducible output. Regression suites set it to 0.
const SourceDateEpochEnv = "SOURCE_DATE_EPOCH"

// Stage names used for logging and metrics labels.
const (
	StageConfig   = "config"
	StageSections = "sections"
	StageData     = "data"
	StageAnalyses = "analyses"
	StageImages   = "images"
	StageRender   = "render"
	StageSave     = "save"
)

// Generator runs the pipeline for one study at a time. It is stateless
// between studies; batch mode reuses a single Generator.
type Generator struct {
	TemplateDir string
	OutputDir   string
	Image       config.ImageConfig
	Recorder    metrics.Recorder
}

// NewGenerator builds a Generator from the tool configuration.
func NewGenerator(cfg *config.Tool) *Generator {
	return &Generator{
		TemplateDir: cfg.TemplateDir,
		OutputDir:   cfg.OutputDir,
		Image:       cfg.Image,
		Recorder:    metrics.NoopRecorder{},
	}
}

// Result describes one successfully generated report.
type Result struct {
	Study      string
	OutputPath string
	Images     []string
	Duration   time.Duration
}

// Generate renders the report for the study directory and returns the
// written output path. On any error nothing is written to the output
// document path; previously generated images may remain under tmp_images.
func (g *Generator) Generate(studyDir string) (*Result, error) {
	start := time.Now()
	res, err := g.generate(studyDir)
	elapsed := time.Since(start)
	g.recorder().ObserveReportDuration(elapsed)
	if err != nil {
		g.recorder().IncReportOutcome("failed")
		return nil, err
	}
	res.Duration = elapsed
	g.recorder().IncReportOutcome("success")
	slog.Info("Report generated",
		logfields.Study(res.Study),
		logfields.Output(res.OutputPath),
		logfields.DurationMS(float64(elapsed.Milliseconds())))
	return res, nil
}

func (g *Generator) generate(studyDir string) (*Result, error) {
	cfg, err := stageRun(g, StageConfig, func() (*config.ReportConfig, error) {
		return config.Load(studyDir, g.TemplateDir)
	})
	if err != nil {
		return nil, err
	}
	slog.Debug("Loaded study configuration",
		logfields.Study(cfg.StudyName),
		logfields.Template(cfg.TemplatePath))

	// Reject unknown image types before any expensive work.
	for key, spec := range cfg.Images {
		if !plot.Registered(spec.Type) {
			return nil, dberrors.ImageTypeUnknown(spec.Type).WithContext("key", key)
		}
	}

	sections, err := stageRun(g, StageSections, func() (map[string]*markdown.Block, error) {
		return loadSections(cfg)
	})
	if err != nil {
		return nil, err
	}

	tbl, err := stageRun(g, StageData, func() (*table.Table, error) {
		return table.Load(cfg.DataSource)
	})
	if err != nil {
		return nil, err
	}
	aggregates, err := tbl.Aggregates()
	if err != nil {
		return nil, err
	}

	results, err := stageRun(g, StageAnalyses, func() (*analysis.Results, error) {
		return analysis.Run(cfg.Analyses, tbl)
	})
	if err != nil {
		return nil, err
	}

	images, err := stageRun(g, StageImages, func() (map[string]string, error) {
		return g.generateImages(cfg, tbl)
	})
	if err != nil {
		return nil, err
	}

	epoch := sourceEpoch()
	ctx := buildContext(cfg, sections, aggregates, results, epoch)

	tpl, err := docx.Open(cfg.TemplatePath)
	if err != nil {
		return nil, err
	}
	_, err = stageRun(g, StageRender, func() (struct{}, error) {
		opts := docx.Options{ImageWidthInches: g.Image.WidthInches}
		return struct{}{}, tpl.Render(ctx, images, opts)
	})
	if err != nil {
		return nil, err
	}

	outputPath := filepath.Join(g.OutputDir, cfg.StudyName+"_report.docx")
	_, err = stageRun(g, StageSave, func() (struct{}, error) {
		if mkErr := os.MkdirAll(g.OutputDir, 0o755); mkErr != nil {
			return struct{}{}, dberrors.OutputWriteFailed(g.OutputDir, mkErr)
		}
		return struct{}{}, tpl.Save(outputPath, epoch)
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Study:      cfg.StudyName,
		OutputPath: outputPath,
		Images:     sortedValues(images),
	}, nil
}

// stageRun executes fn under a named stage, recording duration and outcome.
func stageRun[T any](g *Generator, name string, fn func() (T, error)) (T, error) {
	start := time.Now()
	v, err := fn()
	g.recorder().ObserveStageDuration(name, time.Since(start))
	if err != nil {
		g.recorder().IncStageResult(name, metrics.ResultFailed)
		slog.Error("Stage failed", logfields.Stage(name), logfields.Error(err))
		return v, err
	}
	g.recorder().IncStageResult(name, metrics.ResultSuccess)
	return v, nil
}

func (g *Generator) recorder() metrics.Recorder {
	if g.Recorder == nil {
		return metrics.NoopRecorder{}
	}
	return g.Recorder
}

func loadSections(cfg *config.ReportConfig) (map[string]*markdown.Block, error) {
	sections := make(map[string]*markdown.Block, len(cfg.Sections))
	for key, path := range cfg.Sections {
		block, err := markdown.LoadSection(key, path)
		if err != nil {
			return nil, err
		}
		sections[key] = block
	}
	return sections, nil
}

// generateImages renders every configured image to
// <output>/tmp_images/<study>_<key>.png. Keys are processed in sorted
// order so logs and failures are stable across runs.
func (g *Generator) generateImages(cfg *config.ReportConfig, tbl *table.Table) (map[string]string, error) {
	images := make(map[string]string, len(cfg.Images))
	keys := make([]string, 0, len(cfg.Images))
	for key := range cfg.Images {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	opts := plot.Options{
		WidthPixels:  g.Image.WidthPixels,
		HeightPixels: g.Image.HeightPixels,
	}
	for _, key := range keys {
		spec := cfg.Images[key]
		src := tbl
		if spec.DataSource != "" {
			override, err := table.Load(spec.DataSource)
			if err != nil {
				return nil, err
			}
			src = override
		}
		outputPath := filepath.Join(g.OutputDir, "tmp_images", cfg.StudyName+"_"+key+".png")
		start := time.Now()
		path, err := plot.Generate(spec, src, cfg.StudyName, outputPath, opts)
		g.recorder().ObserveImageDuration(spec.Type, time.Since(start), err == nil)
		g.recorder().IncImageResult(err == nil)
		if err != nil {
			var dberr *dberrors.DocBuilderError
			if errors.As(err, &dberr) {
				return nil, dberr.WithContext("key", key)
			}
			return nil, err
		}
		slog.Debug("Generated image",
			logfields.Study(cfg.StudyName),
			logfields.Image(key),
			logfields.Path(path))
		images[key] = path
	}
	return images, nil
}

// buildContext assembles the placeholder evaluation context: study metadata,
// section blocks, table aggregates and analysis results. Flat names never
// collide: aggregate ambiguity is rejected at load and section keys are the
// study author's responsibility.
func buildContext(cfg *config.ReportConfig, sections map[string]*markdown.Block, aggregates map[string]float64, results *analysis.Results, epoch time.Time) docx.Context {
	ctx := docx.Context{
		"study_name": cfg.StudyName,
		"author":     cfg.Author,
		"date":       epoch.Format("2006-01-02"),
	}
	for name, v := range aggregates {
		ctx[name] = v
	}
	for key, block := range sections {
		ctx[key] = block
	}
	ctx["computed"] = results.Computed
	ctx["stats"] = results.Stats
	return ctx
}

// sourceEpoch returns the pinned document timestamp. SOURCE_DATE_EPOCH
// holds Unix seconds; unset or malformed falls back to the current time.
func sourceEpoch() time.Time {
	if raw, ok := os.LookupEnv(SourceDateEpochEnv); ok {
		if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return time.Unix(secs, 0).UTC()
		}
	}
	return time.Now().UTC()
}

func sortedValues(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(m))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}
