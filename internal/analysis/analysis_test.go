package analysis

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/doc-builder/internal/config"
	dberrors "git.home.luguber.info/inful/doc-builder/internal/errors"
	"git.home.luguber.info/inful/doc-builder/internal/table"
)

func loadCSV(t *testing.T, content string) *table.Table {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	tbl, err := table.Load(path)
	require.NoError(t, err)
	return tbl
}

func TestTTestIndMatchesKnownValues(t *testing.T) {
	tbl := loadCSV(t, "a,b\n1,2\n2,3\n3,4\n4,5\n5,6\n")
	out, err := runTTestInd(config.StatTestSpec{Key: "cmp", Type: "ttest_ind", Series1: "a", Series2: "b"}, tbl)
	require.NoError(t, err)
	require.InDelta(t, -1.0, out["t_statistic"].(float64), 1e-9)
	require.InDelta(t, 0.34659, out["p_value"].(float64), 1e-4)
	require.InDelta(t, 8.0, out["degrees_of_freedom"].(float64), 1e-9)
}

func TestTTestIndRequiresNumericSeries(t *testing.T) {
	tbl := loadCSV(t, "a,b\n1,x\n2,y\n")
	_, err := runTTestInd(config.StatTestSpec{Key: "cmp", Series1: "a", Series2: "b"}, tbl)
	require.Error(t, err)
	require.True(t, dberrors.IsCategory(err, dberrors.CategoryData))
}

func TestChi2ContingencyYatesCorrected(t *testing.T) {
	// Contingency table [[10,20],[30,40]]; scipy chi2_contingency gives
	// chi2=0.44643, p=0.50404 with the default Yates correction.
	var sb strings.Builder
	sb.WriteString("group,outcome\n")
	writeRows := func(g, o string, n int) {
		for i := 0; i < n; i++ {
			fmt.Fprintf(&sb, "%s,%s\n", g, o)
		}
	}
	writeRows("A", "yes", 10)
	writeRows("A", "no", 20)
	writeRows("B", "yes", 30)
	writeRows("B", "no", 40)

	tbl := loadCSV(t, sb.String())
	out, err := runChi2Contingency(config.StatTestSpec{Key: "ind", X: "group", Y: "outcome"}, tbl)
	require.NoError(t, err)
	require.InDelta(t, 0.44643, out["chi2_statistic"].(float64), 1e-4)
	require.InDelta(t, 0.50404, out["p_value"].(float64), 1e-4)
	require.Equal(t, 1, out["degrees_of_freedom"].(int))
}

func TestRunUnknownTypeFails(t *testing.T) {
	tbl := loadCSV(t, "a\n1\n2\n")
	_, err := Run(config.AnalysesConfig{
		Stats: []config.StatTestSpec{{Key: "x", Type: "anova"}},
	}, tbl)
	require.Error(t, err)
	require.True(t, dberrors.IsCategory(err, dberrors.CategoryData))
	require.Contains(t, err.Error(), "anova")
}

func TestRunDescriptiveStats(t *testing.T) {
	tbl := loadCSV(t, "flow\n10\n20\n30\n")
	res, err := Run(config.AnalysesConfig{
		Computations: []config.ComputationSpec{{Key: "summary", Type: "descriptive_stats", Columns: []string{"flow"}}},
	}, tbl)
	require.NoError(t, err)

	summary := res.Computed["summary"].(map[string]any)
	flow := summary["flow"].(map[string]any)
	require.InDelta(t, 20.0, flow["mean"].(float64), 1e-9)
	require.InDelta(t, 10.0, flow["std"].(float64), 1e-9)
	require.InDelta(t, 10.0, flow["min"].(float64), 1e-9)
	require.InDelta(t, 30.0, flow["max"].(float64), 1e-9)
	require.Equal(t, 3, flow["count"].(int))
}
