package table

import (
	"strings"

	"github.com/montanaflynn/stats"

	dberrors "git.home.luguber.info/inful/doc-builder/internal/errors"
)

// aggregateRule is a named scalar reduction over one numeric column. The
// rule's prefix plus the column name forms the context key, e.g.
// avg_flow_rate = mean of column flow_rate.
type aggregateRule struct {
	prefix string
	fn     func(stats.Float64Data) (float64, error)
}

var aggregateRules = []aggregateRule{
	{"avg_", stats.Mean},
	{"max_", stats.Max},
	{"min_", stats.Min},
	{"sum_", stats.Sum},
	{"std_", stats.StandardDeviationSample},
}

// Aggregates derives the full scalar map for the table: every rule applied
// to every numeric column. A derived name that could be satisfied by more
// than one rule/column pair (a raw column literally named like a derived
// value) is ambiguous and fatal rather than silently picked.
func (t *Table) Aggregates() (map[string]float64, error) {
	out := make(map[string]float64, len(aggregateRules)*len(t.Columns))
	for _, col := range t.NumericColumns() {
		if len(col.Floats) == 0 {
			continue
		}
		for _, rule := range aggregateRules {
			name := rule.prefix + col.Name
			if err := t.checkUnambiguous(name); err != nil {
				return nil, err
			}
			v, err := rule.fn(col.Floats)
			if err != nil {
				return nil, dberrors.DataMalformed(t.Path, 0, err).WithContext("column", col.Name)
			}
			out[name] = v
		}
	}
	return out, nil
}

// checkUnambiguous fails when a derived name collides with a raw column or
// with a second rule/column decomposition.
func (t *Table) checkUnambiguous(name string) error {
	candidates := 0
	for _, rule := range aggregateRules {
		if rest, ok := strings.CutPrefix(name, rule.prefix); ok && t.Column(rest) != nil {
			candidates++
		}
	}
	if t.Column(name) != nil {
		candidates++
	}
	if candidates > 1 {
		return dberrors.DataNameAmbiguous(name, "multiple columns could satisfy this name")
	}
	return nil
}
