package plot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/doc-builder/internal/config"
	dberrors "git.home.luguber.info/inful/doc-builder/internal/errors"
	"git.home.luguber.info/inful/doc-builder/internal/table"
	helpers "git.home.luguber.info/inful/doc-builder/internal/testutil/testutils"
)

func loadTestTable(t *testing.T) *table.Table {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	csv := "age,score,group\n34,7.2,a\n41,6.8,b\n29,8.1,a\n55,5.9,b\n47,7.7,a\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))
	tbl, err := table.Load(path)
	require.NoError(t, err)
	return tbl
}

func TestGenerateUnknownType(t *testing.T) {
	tbl := loadTestTable(t)
	spec := config.ImageSpec{Type: "sunburst"}

	_, err := Generate(spec, tbl, "study1", filepath.Join(t.TempDir(), "out.png"), Options{})
	require.Error(t, err)
	var dberr *dberrors.DocBuilderError
	require.ErrorAs(t, err, &dberr)
	require.Equal(t, dberrors.CategoryImage, dberr.Category)
}

func TestPairplotDeterministic(t *testing.T) {
	tbl := loadTestTable(t)
	spec := config.ImageSpec{Type: "pairplot", Options: map[string]any{"jitter": true}}
	dir := helpers.OutputDir(t, "doc-builder-plot-*")

	first := filepath.Join(dir, "first.png")
	second := filepath.Join(dir, "second.png")
	_, err := Generate(spec, tbl, "study1", first, Options{})
	require.NoError(t, err)
	_, err = Generate(spec, tbl, "study1", second, Options{})
	require.NoError(t, err)

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	require.Equal(t, a, b, "pairplot output must be byte stable across runs")
	require.NotEmpty(t, a)
}

func TestPairplotRejectsTextOnlyTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,city\nana,oslo\n"), 0o644))
	tbl, err := table.Load(path)
	require.NoError(t, err)

	spec := config.ImageSpec{Type: "pairplot"}
	_, err = Generate(spec, tbl, "study1", filepath.Join(dir, "out.png"), Options{})
	require.Error(t, err)
	var dberr *dberrors.DocBuilderError
	require.ErrorAs(t, err, &dberr)
	require.Equal(t, dberrors.CategoryImage, dberr.Category)
}

func TestPlaceholderSubstitutesStudyName(t *testing.T) {
	tbl := loadTestTable(t)
	dir := t.TempDir()
	spec := config.ImageSpec{
		Type:    "placeholder",
		Options: map[string]any{"text": "Figure pending for {{ study_name }}"},
	}

	out, err := Generate(spec, tbl, "study1", filepath.Join(dir, "card.png"), Options{WidthPixels: 400, HeightPixels: 200})
	require.NoError(t, err)
	info, statErr := os.Stat(out)
	require.NoError(t, statErr)
	require.Positive(t, info.Size())
}

func TestRegistered(t *testing.T) {
	require.True(t, Registered("pairplot"))
	require.True(t, Registered("placeholder"))
	require.False(t, Registered("heatmap"))
}
