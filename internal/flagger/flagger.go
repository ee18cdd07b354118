// Package flagger marks report cells whose values fall outside their
// measure category's acceptable range.
package flagger

import (
	"math"
	"strings"

	"fairlens/domain/core"
	"fairlens/domain/metrics"
	"fairlens/domain/table"
)

// Layout says where a bound table keeps its measure labels.
type Layout int

const (
	// LayoutNone is the unconfigured state: no table bound.
	LayoutNone Layout = iota
	// LayoutIndex binds tables carrying the two-level (Metric, Measure)
	// row labels, like summary reports.
	LayoutIndex
	// LayoutColumns binds tables whose measure labels are column
	// headers, like stratified reports.
	LayoutColumns
)

// Category classifies a measure for range checking.
type Category int

const (
	CategoryNone Category = iota
	CategoryDifference
	CategoryRatio
	CategoryStatHighGood
	CategoryStatLowGood
)

// classification is the static partition of measure names into flag
// categories. Immutable; matching is case-insensitive. Names absent from
// every set are never flagged.
var classification = map[string]Category{
	"auc difference":                         CategoryDifference,
	"balanced accuracy difference":           CategoryDifference,
	"equalized odds difference":              CategoryDifference,
	"positive predictive parity difference":  CategoryDifference,
	"statistical parity difference":          CategoryDifference,
	"fpr diff":                               CategoryDifference,
	"tpr diff":                               CategoryDifference,
	"ppv diff":                               CategoryDifference,
	"balanced accuracy ratio":                CategoryRatio,
	"disparate impact ratio":                 CategoryRatio,
	"equalized odds ratio":                   CategoryRatio,
	"fpr ratio":                              CategoryRatio,
	"tpr ratio":                              CategoryRatio,
	"ppv ratio":                              CategoryRatio,
	"consistency score":                      CategoryStatHighGood,
	"between-group gen. entropy error":       CategoryStatLowGood,
}

// Classify returns the flag category for a measure name.
func Classify(measure string) Category {
	return classification[strings.ToLower(strings.TrimSpace(measure))]
}

// OutOfRange applies the category's fixed acceptable range. NaN never
// flags.
func OutOfRange(cat Category, v float64) bool {
	if math.IsNaN(v) {
		return false
	}
	switch cat {
	case CategoryDifference:
		return !(-0.1 < v && v < 0.1)
	case CategoryRatio:
		return !(0.8 < v && v < 1.2)
	case CategoryStatHighGood:
		return v < 0.8
	case CategoryStatLowGood:
		return v > 0.2
	default:
		return false
	}
}

// FlagStyle is the fixed highlight applied to out-of-range cells.
const FlagStyle = "background-color:magenta"

// Flagger binds one report table per call and computes its flagged
// cells. Reset returns it to the unconfigured state; ApplyFlag always
// resets first, so the component is stateless across calls. It is not
// safe for concurrent use without external synchronization.
type Flagger struct {
	df     *table.Table
	layout Layout
}

// New returns an unconfigured Flagger.
func New() *Flagger {
	f := &Flagger{}
	f.Reset()
	return f
}

// Reset clears any bound table.
func (f *Flagger) Reset() {
	f.df = nil
	f.layout = LayoutNone
}

// Layout returns the currently bound layout.
func (f *Flagger) Layout() Layout {
	return f.layout
}

// ApplyFlag binds the report, classifies each cell's measure against the
// static classification table, and returns a styled view with
// out-of-range cells marked. The caller's table is never mutated.
func (f *Flagger) ApplyFlag(df *table.Table, caption string, sigFig int, _ bool) (*Styled, error) {
	if sigFig < 1 {
		return nil, core.ConfigInvalidf("invalid significant figure count: %d", sigFig)
	}
	if df == nil {
		return nil, core.Validation("no report table to flag")
	}
	if caption == "" {
		caption = "Fairness Measures"
	}
	f.Reset()
	f.df = df.Copy()
	f.layout = detectLayout(f.df)

	styled := &Styled{
		Table:   f.df,
		Caption: caption,
		SigFig:  sigFig,
		Style:   FlagStyle,
		flags:   make(map[cellRef]bool),
	}
	switch f.layout {
	case LayoutIndex:
		f.flagByIndex(styled)
	default:
		f.flagByColumns(styled)
	}
	RoundCells(styled.Table, sigFig)
	return styled, nil
}

// detectLayout is an explicit predicate, decided once at bind time: a
// table leading with the (Metric, Measure) label pair binds as
// LayoutIndex, anything else as LayoutColumns.
func detectLayout(df *table.Table) Layout {
	cols := df.Columns()
	if len(cols) >= 2 && cols[0] == metrics.ColMetric && cols[1] == metrics.ColMeasure {
		return LayoutIndex
	}
	return LayoutColumns
}

// flagByIndex flags numeric cells of rows whose (Metric, Measure) labels
// classify: differences and ratios under the group-fairness category,
// statistics under individual fairness.
func (f *Flagger) flagByIndex(styled *Styled) {
	cats := f.df.Strings(metrics.ColMetric)
	measures := f.df.Strings(metrics.ColMeasure)
	for row := 0; row < f.df.NumRows(); row++ {
		cat := Classify(measures[row])
		if cat == CategoryNone {
			continue
		}
		if !categoryMatchesMetric(cat, cats[row]) {
			continue
		}
		for _, col := range f.df.Columns() {
			if col == metrics.ColMetric || col == metrics.ColMeasure {
				continue
			}
			if v, ok := f.df.Cell(col, row).(float64); ok && OutOfRange(cat, v) {
				styled.flag(row, col)
			}
		}
	}
}

// flagByColumns flags numeric cells of columns whose headers classify.
func (f *Flagger) flagByColumns(styled *Styled) {
	for _, col := range f.df.Columns() {
		cat := Classify(col)
		if cat == CategoryNone {
			continue
		}
		raw, _ := f.df.Raw(col)
		for row, cell := range raw {
			if v, ok := cell.(float64); ok && OutOfRange(cat, v) {
				styled.flag(row, col)
			}
		}
	}
}

func categoryMatchesMetric(cat Category, metricLabel string) bool {
	switch cat {
	case CategoryDifference, CategoryRatio:
		return metricLabel == metrics.CategoryGroupFairness
	case CategoryStatHighGood, CategoryStatLowGood:
		return metricLabel == metrics.CategoryIndividualFairness
	default:
		return false
	}
}

// RoundCells rounds every float cell to sig significant figures.
func RoundCells(t *table.Table, sig int) {
	for _, name := range t.Columns() {
		raw, _ := t.Raw(name)
		for i, v := range raw {
			if f, ok := v.(float64); ok {
				raw[i] = roundSig(f, sig)
			}
		}
	}
}

func roundSig(v float64, sig int) float64 {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	mag := math.Pow(10, float64(sig-1)-math.Floor(math.Log10(math.Abs(v))))
	return math.Round(v*mag) / mag
}

type cellRef struct {
	row int
	col string
}

// Styled is an annotated view over a flagged report: the rounded table,
// the caption, and the set of flagged cells. The view owns its table
// copy; the caller's original is untouched.
type Styled struct {
	Table   *table.Table
	Caption string
	SigFig  int
	Style   string
	flags   map[cellRef]bool
}

func (s *Styled) flag(row int, col string) {
	s.flags[cellRef{row, col}] = true
}

// Flagged reports whether the cell at (row, col) is marked out-of-range.
func (s *Styled) Flagged(row int, col string) bool {
	return s.flags[cellRef{row, col}]
}

// FlagCount returns the number of flagged cells.
func (s *Styled) FlagCount() int {
	return len(s.flags)
}
