package docx

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	dberrors "git.home.luguber.info/inful/doc-builder/internal/errors"
	"git.home.luguber.info/inful/doc-builder/internal/markdown"
	helpers "git.home.luguber.info/inful/doc-builder/internal/testutil/testutils"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func openTemplate(t *testing.T, paragraphs [][]string) *Template {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tpl.docx")
	helpers.WriteTemplate(t, path, paragraphs)
	tpl, err := Open(path)
	require.NoError(t, err)
	return tpl
}

func TestRenderScalarPlaceholder(t *testing.T) {
	tpl := openTemplate(t, [][]string{{"Study: {{ study_name }} by {{ author }}"}})
	err := tpl.Render(Context{"study_name": "Study1", "author": "Jo"}, nil, Options{})
	require.NoError(t, err)
	require.Equal(t, "Study: Study1 by Jo", tpl.ExtractText())
}

func TestRenderPlaceholderSplitAcrossRuns(t *testing.T) {
	// Word processors routinely split "{{ study_name }}" over several runs.
	tpl := openTemplate(t, [][]string{{"Study: {{ stu", "dy_na", "me }}"}})
	err := tpl.Render(Context{"study_name": "Study1"}, nil, Options{})
	require.NoError(t, err)
	require.Equal(t, "Study: Study1", tpl.ExtractText())
}

func TestRenderRoundFilter(t *testing.T) {
	tpl := openTemplate(t, [][]string{{"Mean flow: {{ avg_flow_rate | round(2) }}"}})
	err := tpl.Render(Context{"avg_flow_rate": 11.33333}, nil, Options{})
	require.NoError(t, err)
	require.Equal(t, "Mean flow: 11.33", tpl.ExtractText())
}

func TestRenderLogicalOrStaysInExpression(t *testing.T) {
	// A doubled pipe is expr's OR operator, not a filter boundary.
	tpl := openTemplate(t, [][]string{{"Flagged: {{ primary || fallback }}"}})
	err := tpl.Render(Context{"primary": false, "fallback": true}, nil, Options{})
	require.NoError(t, err)
	require.Equal(t, "Flagged: true", tpl.ExtractText())
}

func TestRenderLogicalOrWithFilter(t *testing.T) {
	tpl := openTemplate(t, [][]string{{"{{ a || b | upper }}"}})
	err := tpl.Render(Context{"a": true, "b": false}, nil, Options{})
	require.NoError(t, err)
	require.Equal(t, "TRUE", tpl.ExtractText())
}

func TestRenderNestedContext(t *testing.T) {
	tpl := openTemplate(t, [][]string{{"p={{ stats.cmp.p_value | round(3) }}"}})
	ctx := Context{"stats": map[string]any{"cmp": map[string]any{"p_value": 0.34659}}}
	require.NoError(t, tpl.Render(ctx, nil, Options{}))
	require.Equal(t, "p=0.347", tpl.ExtractText())
}

func TestRenderUnresolvedPlaceholderFails(t *testing.T) {
	tpl := openTemplate(t, [][]string{{"{{ missing_value }}"}})
	err := tpl.Render(Context{"study_name": "S"}, nil, Options{})
	require.Error(t, err)
	require.True(t, dberrors.IsCategory(err, dberrors.CategoryRender))
	require.Contains(t, err.Error(), "missing_value")
}

func TestRenderUnsupportedFilterFails(t *testing.T) {
	tpl := openTemplate(t, [][]string{{"{{ x | exec('rm') }}"}})
	err := tpl.Render(Context{"x": 1}, nil, Options{})
	require.Error(t, err)
	require.True(t, dberrors.IsCategory(err, dberrors.CategoryRender))
}

func TestRenderRichTextBlockExpandsParagraphs(t *testing.T) {
	block, err := markdown.Convert([]byte("# Intro\n\nBody with **bold** text.\n"))
	require.NoError(t, err)

	tpl := openTemplate(t, [][]string{{"{{ introduction }}"}, {"After."}})
	require.NoError(t, tpl.Render(Context{"introduction": block}, nil, Options{}))

	text := tpl.ExtractText()
	require.Contains(t, text, "Intro")
	require.Contains(t, text, "Body with bold text.")
	require.Contains(t, text, "After.")
	require.Contains(t, string(tpl.Part(documentPart)), `<w:pStyle w:val="Heading1"/>`)
	require.Contains(t, string(tpl.Part(documentPart)), "<w:b/>")
}

func TestRenderRichTextInlineDegradesToPlainText(t *testing.T) {
	block, err := markdown.Convert([]byte("plain *prose*"))
	require.NoError(t, err)
	tpl := openTemplate(t, [][]string{{"Summary: {{ summary }} (end)"}})
	require.NoError(t, tpl.Render(Context{"summary": block}, nil, Options{}))
	require.Equal(t, "Summary: plain prose (end)", tpl.ExtractText())
}

func TestRenderImagePlaceholder(t *testing.T) {
	imgPath := filepath.Join(t.TempDir(), "plot.png")
	writePNG(t, imgPath, 40, 20)

	tpl := openTemplate(t, [][]string{{"{$ img:plot1 $}"}})
	require.NoError(t, tpl.Render(Context{}, map[string]string{"plot1": imgPath}, Options{ImageWidthInches: 5}))

	doc := string(tpl.Part(documentPart))
	require.Contains(t, doc, "<w:drawing>")
	require.NotContains(t, doc, "{$ img:plot1 $}")
	// 5in at the source 2:1 aspect ratio.
	require.Contains(t, doc, `cx="4572000" cy="2286000"`)
	require.NotNil(t, tpl.Part("word/media/image1.png"))
	require.Contains(t, string(tpl.Part("word/_rels/document.xml.rels")), "media/image1.png")
	require.Contains(t, string(tpl.Part("[Content_Types].xml")), `Extension="png"`)
}

func TestRenderImageKeyUnboundFails(t *testing.T) {
	tpl := openTemplate(t, [][]string{{"{$ img:orphan $}"}})
	err := tpl.Render(Context{}, map[string]string{}, Options{})
	require.Error(t, err)
	require.True(t, dberrors.IsCategory(err, dberrors.CategoryRender))
	require.Contains(t, err.Error(), "orphan")
}

func TestRenderPassesUnknownMarkupThrough(t *testing.T) {
	tpl := openTemplate(t, [][]string{{"Literal {% custom %} marker"}, {"No placeholders here"}})
	before := string(tpl.Part(documentPart))
	require.NoError(t, tpl.Render(Context{}, nil, Options{}))
	require.Equal(t, before, string(tpl.Part(documentPart)))
}

func TestSaveIsByteStable(t *testing.T) {
	epoch := time.Unix(0, 0)
	render := func(dir string) []byte {
		path := filepath.Join(dir, "tpl.docx")
		helpers.WriteTemplate(t, path, [][]string{{"Value: {{ v | round(1) }}"}})
		tpl, err := Open(path)
		require.NoError(t, err)
		require.NoError(t, tpl.Render(Context{"v": 3.14159}, nil, Options{}))
		out := filepath.Join(dir, "out.docx")
		require.NoError(t, tpl.Save(out, epoch))
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		return data
	}

	first := render(t.TempDir())
	second := render(t.TempDir())
	require.Equal(t, first, second)
}

func TestSavePinsCoreProperties(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tpl.docx")
	helpers.SimpleTemplate(t, path, "static")
	tpl, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, tpl.Render(Context{}, nil, Options{}))

	out := filepath.Join(dir, "out.docx")
	require.NoError(t, tpl.Save(out, time.Unix(0, 0)))

	reopened, err := Open(out)
	require.NoError(t, err)
	core := string(reopened.Part("docProps/core.xml"))
	require.Contains(t, core, "1970-01-01T00:00:00Z")
	require.Contains(t, core, "<cp:revision>1</cp:revision>")
	require.NotContains(t, core, "2024-05-01")
}

func TestExtractTextFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tpl.docx")
	helpers.SimpleTemplate(t, path, "line one", "line two")
	text, err := ExtractTextFromFile(path)
	require.NoError(t, err)
	require.Equal(t, "line one\nline two", text)
}
