package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/doc-builder/internal/report"
	helpers "git.home.luguber.info/inful/doc-builder/internal/testutil/testutils"
)

func writeToolConfig(t *testing.T, dir, outDir string) string {
	t.Helper()
	path := filepath.Join(dir, "doc-builder.yaml")
	content := "template_dir: " + filepath.Join(dir, "templates") + "\n" +
		"output_dir: " + outDir + "\n" +
		"ledger:\n  enabled: false\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestInitCmdWritesConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc-builder.yaml")
	root := &CLI{Config: path}

	cmd := &InitCmd{}
	require.NoError(t, cmd.Run(&Global{}, root))
	require.FileExists(t, path)

	// A second run without --force must refuse to overwrite.
	require.Error(t, cmd.Run(&Global{}, root))
	require.NoError(t, (&InitCmd{Force: true}).Run(&Global{}, root))
}

func TestGenerateCmdEndToEnd(t *testing.T) {
	t.Setenv(report.SourceDateEpochEnv, "0")
	dir := t.TempDir()
	outDir := helpers.OutputDir(t, "doc-builder-cli-*")
	cfgPath := writeToolConfig(t, dir, outDir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "templates"), 0o755))
	helpers.SimpleTemplate(t, filepath.Join(dir, "templates", "report.docx"),
		"Report for {{ study_name }}")
	studyDir := helpers.WriteStudy(t, dir, helpers.Study{
		Name:       "study1",
		ReportJSON: `{"template": "report.docx", "data_source": "data.csv"}`,
		Files:      map[string]string{"data.csv": "age\n34\n41\n"},
	})

	cmd := &GenerateCmd{Study: studyDir}
	require.NoError(t, cmd.Run(&Global{}, &CLI{Config: cfgPath}))
	require.FileExists(t, filepath.Join(outDir, "study1_report.docx"))
}

func TestBatchCmdReportsFailures(t *testing.T) {
	t.Setenv(report.SourceDateEpochEnv, "0")
	dir := t.TempDir()
	outDir := helpers.OutputDir(t, "doc-builder-cli-*")
	cfgPath := writeToolConfig(t, dir, outDir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "templates"), 0o755))
	helpers.SimpleTemplate(t, filepath.Join(dir, "templates", "report.docx"),
		"Report for {{ study_name }}")
	studiesRoot := filepath.Join(dir, "studies")
	helpers.WriteStudy(t, studiesRoot, helpers.Study{
		Name:       "good",
		ReportJSON: `{"template": "report.docx", "data_source": "data.csv"}`,
		Files:      map[string]string{"data.csv": "age\n34\n41\n"},
	})
	helpers.WriteStudy(t, studiesRoot, helpers.Study{
		Name:       "bad",
		ReportJSON: `{"template": "report.docx", "data_source": "missing.csv"}`,
	})

	cmd := &BatchCmd{Root: studiesRoot}
	err := cmd.Run(&Global{}, &CLI{Config: cfgPath})
	require.Error(t, err, "a failing study must surface as a non-zero exit")
	require.FileExists(t, filepath.Join(outDir, "good_report.docx"))
}
