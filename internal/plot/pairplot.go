package plot

import (
	"errors"
	"math/rand"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"git.home.luguber.info/inful/doc-builder/internal/config"
	"git.home.luguber.info/inful/doc-builder/internal/table"
)

// jitterSeed fixes the PRNG for optional scatter jitter. Never reseed from
// the clock: checkpoint images are compared bit-exactly.
const jitterSeed = 1

const canvasDPI = 96

// renderPairplot draws the n-by-n grid of pairwise relationships over the
// table's numeric columns: histograms on the diagonal, scatter plots off
// it.
func renderPairplot(spec config.ImageSpec, tbl *table.Table, _ string, outputPath string, opts Options) error {
	cols := tbl.NumericColumns()
	if len(cols) == 0 {
		return imageError(spec, errors.New("data source has no numeric columns"))
	}
	n := len(cols)

	var jitter *rand.Rand
	if optBool(spec, "jitter") {
		jitter = rand.New(rand.NewSource(jitterSeed))
	}

	plots := make([][]*plot.Plot, n)
	for row := 0; row < n; row++ {
		plots[row] = make([]*plot.Plot, n)
		for col := 0; col < n; col++ {
			p := plot.New()
			if row == n-1 {
				p.X.Label.Text = cols[col].Name
			}
			if col == 0 {
				p.Y.Label.Text = cols[row].Name
			}
			if row == col {
				if err := addHistogram(p, cols[row].Floats, row); err != nil {
					return imageError(spec, err)
				}
			} else {
				if err := addScatter(p, cols[col].Floats, cols[row].Floats, row, jitter); err != nil {
					return imageError(spec, err)
				}
			}
			plots[row][col] = p
		}
	}

	width := vg.Length(opts.WidthPixels) * vg.Inch / canvasDPI
	height := vg.Length(opts.HeightPixels) * vg.Inch / canvasDPI
	img := vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(canvasDPI))
	dc := draw.New(img)

	tiles := draw.Tiles{
		Rows: n, Cols: n,
		PadX: vg.Millimeter, PadY: vg.Millimeter,
		PadTop: vg.Millimeter, PadBottom: vg.Millimeter,
		PadLeft: vg.Millimeter, PadRight: vg.Millimeter,
	}
	canvases := plot.Align(plots, tiles, dc)
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			plots[row][col].Draw(canvases[row][col])
		}
	}

	return writePNG(img, outputPath)
}

func addHistogram(p *plot.Plot, xs []float64, idx int) error {
	h, err := plotter.NewHist(plotter.Values(xs), 10)
	if err != nil {
		return err
	}
	h.FillColor = paletteColor(idx)
	h.LineStyle.Width = vg.Points(0.5)
	p.Add(h)
	return nil
}

func addScatter(p *plot.Plot, xs, ys []float64, idx int, jitter *rand.Rand) error {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	pts := make(plotter.XYs, n)
	for i := 0; i < n; i++ {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
		if jitter != nil {
			pts[i].X += (jitter.Float64() - 0.5) * jitterScale(xs)
			pts[i].Y += (jitter.Float64() - 0.5) * jitterScale(ys)
		}
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	s.GlyphStyle.Color = paletteColor(idx)
	s.GlyphStyle.Radius = vg.Points(1.5)
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(s)
	return nil
}

// jitterScale is 1% of the value range, so jitter stays visually subtle
// regardless of column magnitude.
func jitterScale(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mn, mx := xs[0], xs[0]
	for _, v := range xs {
		if v < mn {
			mn = v
		}
		if v > mx {
			mx = v
		}
	}
	return (mx - mn) * 0.01
}

func writePNG(img *vgimg.Canvas, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
