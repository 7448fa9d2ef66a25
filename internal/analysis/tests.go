package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"git.home.luguber.info/inful/doc-builder/internal/config"
	dberrors "git.home.luguber.info/inful/doc-builder/internal/errors"
	"git.home.luguber.info/inful/doc-builder/internal/table"
)

// runTTestInd performs an independent two-sample Student's t-test with
// pooled variance and a two-sided p-value.
func runTTestInd(spec config.StatTestSpec, tbl *table.Table) (map[string]any, error) {
	if spec.Series1 == "" || spec.Series2 == "" {
		return nil, dberrors.New(dberrors.CategoryData, dberrors.SeverityFatal,
			"ttest_ind requires series1 and series2").WithContext("key", spec.Key)
	}
	xs, err := tbl.NumericColumn(spec.Series1)
	if err != nil {
		return nil, err
	}
	ys, err := tbl.NumericColumn(spec.Series2)
	if err != nil {
		return nil, err
	}
	n1, n2 := float64(len(xs)), float64(len(ys))
	if n1 < 2 || n2 < 2 {
		return nil, dberrors.New(dberrors.CategoryData, dberrors.SeverityFatal,
			"ttest_ind needs at least two observations per series").WithContext("key", spec.Key)
	}

	m1, m2 := stat.Mean(xs, nil), stat.Mean(ys, nil)
	v1, v2 := stat.Variance(xs, nil), stat.Variance(ys, nil)

	dof := n1 + n2 - 2
	pooled := ((n1-1)*v1 + (n2-1)*v2) / dof
	se := math.Sqrt(pooled * (1/n1 + 1/n2))
	t := (m1 - m2) / se

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: dof}
	p := 2 * dist.CDF(-math.Abs(t))

	return map[string]any{
		"t_statistic":        t,
		"p_value":            p,
		"degrees_of_freedom": dof,
	}, nil
}

// runChi2Contingency builds the contingency table of two columns and runs a
// chi-squared independence test. 2x2 tables get the Yates continuity
// correction, matching the behavior reports were authored against.
func runChi2Contingency(spec config.StatTestSpec, tbl *table.Table) (map[string]any, error) {
	if spec.X == "" || spec.Y == "" {
		return nil, dberrors.New(dberrors.CategoryData, dberrors.SeverityFatal,
			"chi2_contingency requires x and y").WithContext("key", spec.Key)
	}
	xcol := tbl.Column(spec.X)
	if xcol == nil {
		return nil, dberrors.DataColumnUnknown(spec.X)
	}
	ycol := tbl.Column(spec.Y)
	if ycol == nil {
		return nil, dberrors.DataColumnUnknown(spec.Y)
	}

	observed, rowCats, colCats := crosstab(xcol.Strings, ycol.Strings)
	nRows, nCols := len(rowCats), len(colCats)
	if nRows < 2 || nCols < 2 {
		return nil, dberrors.New(dberrors.CategoryData, dberrors.SeverityFatal,
			"chi2_contingency needs at least a 2x2 table").WithContext("key", spec.Key)
	}

	rowSums := make([]float64, nRows)
	colSums := make([]float64, nCols)
	total := 0.0
	for i := range observed {
		for j, v := range observed[i] {
			rowSums[i] += v
			colSums[j] += v
			total += v
		}
	}

	yates := nRows == 2 && nCols == 2
	chi2 := 0.0
	for i := range observed {
		for j, o := range observed[i] {
			e := rowSums[i] * colSums[j] / total
			d := math.Abs(o - e)
			if yates {
				d = math.Max(0, d-0.5)
			}
			chi2 += d * d / e
		}
	}
	dof := (nRows - 1) * (nCols - 1)

	dist := distuv.ChiSquared{K: float64(dof)}
	p := dist.Survival(chi2)

	return map[string]any{
		"chi2_statistic":     chi2,
		"p_value":            p,
		"degrees_of_freedom": dof,
	}, nil
}

// crosstab counts co-occurrences of category pairs. Category order follows
// first appearance, which keeps results stable for a given file.
func crosstab(xs, ys []string) (counts [][]float64, rowCats, colCats []string) {
	rowIdx := make(map[string]int)
	colIdx := make(map[string]int)
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	for i := 0; i < n; i++ {
		if _, ok := rowIdx[xs[i]]; !ok {
			rowIdx[xs[i]] = len(rowCats)
			rowCats = append(rowCats, xs[i])
		}
		if _, ok := colIdx[ys[i]]; !ok {
			colIdx[ys[i]] = len(colCats)
			colCats = append(colCats, ys[i])
		}
	}
	counts = make([][]float64, len(rowCats))
	for i := range counts {
		counts[i] = make([]float64, len(colCats))
	}
	for i := 0; i < n; i++ {
		counts[rowIdx[xs[i]]][colIdx[ys[i]]]++
	}
	return counts, rowCats, colCats
}
