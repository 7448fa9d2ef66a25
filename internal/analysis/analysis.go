// Package analysis runs the optional statistical computations a report can
// request (the "analyses" section of report.json). Results are bound into
// the template context under computed.<key> and stats.<key>.
package analysis

import (
	"gonum.org/v1/gonum/stat"

	"git.home.luguber.info/inful/doc-builder/internal/config"
	dberrors "git.home.luguber.info/inful/doc-builder/internal/errors"
	"git.home.luguber.info/inful/doc-builder/internal/table"
)

// statFunc runs one statistical test against the table.
type statFunc func(spec config.StatTestSpec, tbl *table.Table) (map[string]any, error)

// statRegistry maps test type names to implementations. Adding a test means
// writing a function and registering it here.
var statRegistry = map[string]statFunc{
	"ttest_ind":        runTTestInd,
	"chi2_contingency": runChi2Contingency,
}

// computationFunc runs one derived computation against the table.
type computationFunc func(spec config.ComputationSpec, tbl *table.Table) (map[string]any, error)

var computationRegistry = map[string]computationFunc{
	"descriptive_stats": runDescriptiveStats,
}

// Results holds the context fragments produced by Run.
type Results struct {
	// Computed maps computation keys to their result objects.
	Computed map[string]any
	// Stats maps test keys to their result objects.
	Stats map[string]any
}

// Run executes every configured computation and test. An unknown type or a
// failing test is fatal for the report; there is nothing sensible to render
// in its place.
func Run(cfg config.AnalysesConfig, tbl *table.Table) (*Results, error) {
	res := &Results{
		Computed: make(map[string]any, len(cfg.Computations)),
		Stats:    make(map[string]any, len(cfg.Stats)),
	}
	for _, spec := range cfg.Computations {
		fn, ok := computationRegistry[spec.Type]
		if !ok {
			return nil, dberrors.AnalysisUnknown(spec.Type).WithContext("key", spec.Key)
		}
		out, err := fn(spec, tbl)
		if err != nil {
			return nil, err
		}
		res.Computed[spec.Key] = out
	}
	for _, spec := range cfg.Stats {
		fn, ok := statRegistry[spec.Type]
		if !ok {
			return nil, dberrors.AnalysisUnknown(spec.Type).WithContext("key", spec.Key)
		}
		out, err := fn(spec, tbl)
		if err != nil {
			return nil, err
		}
		res.Stats[spec.Key] = out
	}
	return res, nil
}

// runDescriptiveStats produces mean/std/min/max/count per requested column.
func runDescriptiveStats(spec config.ComputationSpec, tbl *table.Table) (map[string]any, error) {
	out := make(map[string]any, len(spec.Columns))
	for _, name := range spec.Columns {
		xs, err := tbl.NumericColumn(name)
		if err != nil {
			return nil, err
		}
		if len(xs) == 0 {
			return nil, dberrors.DataColumnUnknown(name).WithContext("reason", "no rows")
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
		out[name] = map[string]any{
			"mean":  stat.Mean(xs, nil),
			"std":   stat.StdDev(xs, nil),
			"min":   mn,
			"max":   mx,
			"count": len(xs),
		}
	}
	return out, nil
}
