package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/doc-builder/internal/config"
	"git.home.luguber.info/inful/doc-builder/internal/ledger"
	"git.home.luguber.info/inful/doc-builder/internal/report"
	helpers "git.home.luguber.info/inful/doc-builder/internal/testutil/testutils"
)

const batchCSV = "age,score\n34,7.2\n41,6.8\n29,8.1\n"

func newBatchFixture(t *testing.T) (*Runner, string) {
	t.Helper()
	root := t.TempDir()
	templateDir := filepath.Join(root, "templates")
	require.NoError(t, os.MkdirAll(templateDir, 0o755))
	helpers.SimpleTemplate(t, filepath.Join(templateDir, "report.docx"),
		"Report for {{ study_name }}")

	cfg := &config.Tool{TemplateDir: templateDir, OutputDir: helpers.OutputDir(t, "doc-builder-batch-*")}
	cfg.Image.WidthInches = 5.0
	return NewRunner(report.NewGenerator(cfg)), root
}

func writeBatchStudy(t *testing.T, root, name, reportJSON string) {
	t.Helper()
	helpers.WriteStudy(t, filepath.Join(root, "studies"), helpers.Study{
		Name:       name,
		ReportJSON: reportJSON,
		Files:      map[string]string{"data.csv": batchCSV},
	})
}

func TestDiscoverSkipsNonStudies(t *testing.T) {
	_, root := newBatchFixture(t)
	studiesRoot := filepath.Join(root, "studies")
	writeBatchStudy(t, root, "beta", `{"template": "report.docx", "data_source": "data.csv"}`)
	writeBatchStudy(t, root, "alpha", `{"template": "report.docx", "data_source": "data.csv"}`)
	require.NoError(t, os.MkdirAll(filepath.Join(studiesRoot, "notes"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(studiesRoot, "README.md"), []byte("x"), 0o644))

	studies, err := Discover(studiesRoot)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(studiesRoot, "alpha"),
		filepath.Join(studiesRoot, "beta"),
	}, studies)
}

func TestRunIsolatesFailures(t *testing.T) {
	t.Setenv(report.SourceDateEpochEnv, "0")
	runner, root := newBatchFixture(t)
	writeBatchStudy(t, root, "good1", `{"template": "report.docx", "data_source": "data.csv"}`)
	writeBatchStudy(t, root, "bad", `{"template": "report.docx", "data_source": "missing.csv"}`)
	writeBatchStudy(t, root, "good2", `{"template": "report.docx", "data_source": "data.csv"}`)

	summary, err := runner.Run(context.Background(), filepath.Join(root, "studies"))
	require.NoError(t, err)
	require.NotEmpty(t, summary.RunID)
	require.Len(t, summary.Outcomes, 3)
	require.Equal(t, 2, summary.Succeeded())
	require.Equal(t, 1, summary.Failed())

	helpers.NewFileAssertions(t, runner.Generator.OutputDir).
		AssertFileExists("good1_report.docx").
		AssertFileExists("good2_report.docx")
	require.NoFileExists(t, filepath.Join(runner.Generator.OutputDir, "bad_report.docx"))
}

func TestRunRecordsLedgerEntries(t *testing.T) {
	t.Setenv(report.SourceDateEpochEnv, "0")
	runner, root := newBatchFixture(t)
	store, err := ledger.Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	runner.Ledger = store

	writeBatchStudy(t, root, "good", `{"template": "report.docx", "data_source": "data.csv"}`)
	writeBatchStudy(t, root, "bad", `{"template": "report.docx", "data_source": "missing.csv"}`)

	summary, err := runner.Run(context.Background(), filepath.Join(root, "studies"))
	require.NoError(t, err)

	entries, err := store.ByRun(context.Background(), summary.RunID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	byStudy := map[string]ledger.Entry{}
	for _, e := range entries {
		byStudy[e.Study] = e
	}
	require.Equal(t, "success", byStudy["good"].Outcome)
	require.Equal(t, "failed", byStudy["bad"].Outcome)
	require.NotEmpty(t, byStudy["bad"].Error)
}

func TestRunEmptyRoot(t *testing.T) {
	runner, root := newBatchFixture(t)
	studiesRoot := filepath.Join(root, "studies")
	require.NoError(t, os.MkdirAll(studiesRoot, 0o755))

	summary, err := runner.Run(context.Background(), studiesRoot)
	require.NoError(t, err)
	require.Empty(t, summary.Outcomes)
}
