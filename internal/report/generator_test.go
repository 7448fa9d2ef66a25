package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/doc-builder/internal/config"
	"git.home.luguber.info/inful/doc-builder/internal/docx"
	dberrors "git.home.luguber.info/inful/doc-builder/internal/errors"
	helpers "git.home.luguber.info/inful/doc-builder/internal/testutil/testutils"
)

const studyCSV = "age,score,group\n34,7.2,a\n41,6.8,b\n29,8.1,a\n55,5.9,b\n"

func newTestGenerator(t *testing.T) (*Generator, string) {
	t.Helper()
	root := t.TempDir()
	templateDir := filepath.Join(root, "templates")
	require.NoError(t, os.MkdirAll(templateDir, 0o755))
	cfg := &config.Tool{TemplateDir: templateDir, OutputDir: helpers.OutputDir(t, "doc-builder-report-*")}
	cfg.Image.WidthInches = 5.0
	cfg.Image.WidthPixels = 200
	cfg.Image.HeightPixels = 200
	return NewGenerator(cfg), root
}

func writeFullStudy(t *testing.T, g *Generator, root string) string {
	t.Helper()
	helpers.SimpleTemplate(t, filepath.Join(g.TemplateDir, "report.docx"),
		"Study: {{ study_name }} by {{ author }} on {{ date }}",
		"{{ intro }}",
		"Mean age {{ avg_age | round(1) }}",
		"t = {{ stats.score_by_group.t_statistic | round(3) }}",
		"{$ img:overview $}",
	)
	return helpers.WriteStudy(t, root, helpers.Study{
		Name: "study1",
		ReportJSON: `{
			"template": "report.docx",
			"author": "Dr. Holm",
			"data_source": "data.csv",
			"sections": {"intro": "sections/intro.md"},
			"images": {"overview": {"type": "pairplot"}},
			"analyses": {
				"stats": [{"key": "score_by_group", "type": "ttest_ind", "series1": "age", "series2": "score"}]
			}
		}`,
		Files: map[string]string{
			"data.csv":          studyCSV,
			"sections/intro.md": "# Introduction\n\nThis study covers **everything**.\n",
		},
	})
}

func TestGenerateFullStudy(t *testing.T) {
	t.Setenv(SourceDateEpochEnv, "0")
	g, root := newTestGenerator(t)
	studyDir := writeFullStudy(t, g, root)

	res, err := g.Generate(studyDir)
	require.NoError(t, err)
	require.Equal(t, "study1", res.Study)
	require.Equal(t, filepath.Join(g.OutputDir, "study1_report.docx"), res.OutputPath)
	require.Len(t, res.Images, 1)

	helpers.NewFileAssertions(t, g.OutputDir).
		AssertFileExists("study1_report.docx").
		AssertFileExists(filepath.Join("tmp_images", "study1_overview.png"))

	text, err := docx.ExtractTextFromFile(res.OutputPath)
	require.NoError(t, err)
	require.Contains(t, text, "Study: study1 by Dr. Holm on 1970-01-01")
	require.Contains(t, text, "Introduction")
	require.Contains(t, text, "This study covers everything.")
	require.Contains(t, text, "Mean age 39.8")
}

func TestGenerateIsByteDeterministic(t *testing.T) {
	t.Setenv(SourceDateEpochEnv, "0")
	g, root := newTestGenerator(t)
	studyDir := writeFullStudy(t, g, root)

	res1, err := g.Generate(studyDir)
	require.NoError(t, err)
	first, err := os.ReadFile(res1.OutputPath)
	require.NoError(t, err)

	res2, err := g.Generate(studyDir)
	require.NoError(t, err)
	second, err := os.ReadFile(res2.OutputPath)
	require.NoError(t, err)

	require.Equal(t, first, second, "repeated runs must produce identical bytes")
}

func TestGenerateMissingSectionFileIsFatal(t *testing.T) {
	g, root := newTestGenerator(t)
	helpers.SimpleTemplate(t, filepath.Join(g.TemplateDir, "report.docx"), "{{ intro }}")
	studyDir := helpers.WriteStudy(t, root, helpers.Study{
		Name: "study1",
		ReportJSON: `{
			"template": "report.docx",
			"data_source": "data.csv",
			"sections": {"intro": "missing.md"}
		}`,
		Files: map[string]string{"data.csv": studyCSV},
	})

	_, err := g.Generate(studyDir)
	require.Error(t, err)
	require.True(t, dberrors.IsCategory(err, dberrors.CategoryContent))
	require.NoFileExists(t, filepath.Join(g.OutputDir, "study1_report.docx"))
}

func TestGenerateUnknownImageTypeFailsEarly(t *testing.T) {
	g, root := newTestGenerator(t)
	helpers.SimpleTemplate(t, filepath.Join(g.TemplateDir, "report.docx"), "{$ img:overview $}")
	studyDir := helpers.WriteStudy(t, root, helpers.Study{
		Name: "study1",
		ReportJSON: `{
			"template": "report.docx",
			"data_source": "data.csv",
			"images": {"overview": {"type": "sunburst"}}
		}`,
		Files: map[string]string{"data.csv": studyCSV},
	})

	_, err := g.Generate(studyDir)
	require.Error(t, err)
	require.True(t, dberrors.IsCategory(err, dberrors.CategoryImage))
}

func TestGenerateUnresolvedPlaceholderWritesNothing(t *testing.T) {
	g, root := newTestGenerator(t)
	helpers.SimpleTemplate(t, filepath.Join(g.TemplateDir, "report.docx"), "{{ no_such_key }}")
	studyDir := helpers.WriteStudy(t, root, helpers.Study{
		Name:       "study1",
		ReportJSON: `{"template": "report.docx", "data_source": "data.csv"}`,
		Files:      map[string]string{"data.csv": studyCSV},
	})

	_, err := g.Generate(studyDir)
	require.Error(t, err)
	require.True(t, dberrors.IsCategory(err, dberrors.CategoryRender))
	require.NoFileExists(t, filepath.Join(g.OutputDir, "study1_report.docx"))
}

func TestSourceEpochParsing(t *testing.T) {
	t.Setenv(SourceDateEpochEnv, "946684800")
	require.Equal(t, "2000-01-01", sourceEpoch().Format("2006-01-02"))

	t.Setenv(SourceDateEpochEnv, "not-a-number")
	require.WithinDuration(t, sourceEpoch(), sourceEpoch(), 5e9)
}
