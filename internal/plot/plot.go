// Package plot generates the report images. Generators are registered by
// type name; output must be byte-deterministic because regression tests
// compare images against checkpoints exactly.
package plot

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sync"

	"git.home.luguber.info/inful/doc-builder/internal/config"
	dberrors "git.home.luguber.info/inful/doc-builder/internal/errors"
	"git.home.luguber.info/inful/doc-builder/internal/table"
)

// Options carries canvas sizing shared by all generators.
type Options struct {
	WidthPixels  int
	HeightPixels int
}

func (o Options) withDefaults() Options {
	if o.WidthPixels <= 0 {
		o.WidthPixels = 800
	}
	if o.HeightPixels <= 0 {
		o.HeightPixels = 800
	}
	return o
}

// generatorFunc renders one image type to outputPath.
type generatorFunc func(spec config.ImageSpec, tbl *table.Table, studyName, outputPath string, opts Options) error

// registry maps image spec types to generators. Adding a plot type means
// writing a function and registering it here.
var registry = map[string]generatorFunc{
	"pairplot":    renderPairplot,
	"placeholder": renderPlaceholder,
}

// figMu serializes figure construction. The plotting backend shares font
// and glyph caches; rendering is kept strictly sequential so two images
// can never interleave state, even across generator errors.
var figMu sync.Mutex

// Generate renders the image described by spec and returns the written
// path. Unknown types are an ImageSpecError; any backend failure is fatal
// for the report.
func Generate(spec config.ImageSpec, tbl *table.Table, studyName, outputPath string, opts Options) (string, error) {
	fn, ok := registry[spec.Type]
	if !ok {
		return "", dberrors.ImageTypeUnknown(spec.Type)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return "", dberrors.OutputWriteFailed(outputPath, err)
	}

	figMu.Lock()
	defer figMu.Unlock()
	if err := fn(spec, tbl, studyName, outputPath, opts.withDefaults()); err != nil {
		return "", err
	}
	return outputPath, nil
}

// Registered reports whether an image type has a generator, letting the
// pipeline reject bad specs before any expensive work.
func Registered(typ string) bool {
	_, ok := registry[typ]
	return ok
}

// palette is the fixed series palette. Indexed access must stay stable:
// checkpoint images encode these exact colors.
var palette = []color.RGBA{
	{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
}

func paletteColor(i int) color.RGBA {
	return palette[i%len(palette)]
}

func imageError(spec config.ImageSpec, err error) error {
	return dberrors.ImageGenerationFailed(spec.Type, err)
}

func optString(spec config.ImageSpec, key, def string) string {
	if v, ok := spec.Options[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", v)
	}
	return def
}

func optBool(spec config.ImageSpec, key string) bool {
	v, ok := spec.Options[key]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}
