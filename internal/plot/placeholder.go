package plot

import (
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"git.home.luguber.info/inful/doc-builder/internal/config"
	"git.home.luguber.info/inful/doc-builder/internal/table"
)

// renderPlaceholder draws a text card. The text option may reference
// {{ study_name }}, which is substituted before drawing.
func renderPlaceholder(spec config.ImageSpec, _ *table.Table, studyName, outputPath string, opts Options) error {
	text := optString(spec, "text", "Placeholder")
	text = strings.ReplaceAll(text, "{{ study_name }}", studyName)

	p := plot.New()
	p.HideAxes()
	p.Title.Text = text
	p.Title.TextStyle.Font.Size = vg.Points(20)

	width := vg.Length(opts.WidthPixels) * vg.Inch / canvasDPI
	height := vg.Length(opts.HeightPixels) * vg.Inch / canvasDPI
	img := vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(canvasDPI))
	p.Draw(draw.New(img))

	return writePNG(img, outputPath)
}
