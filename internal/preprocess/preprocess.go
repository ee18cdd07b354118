package preprocess

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"fairlens/domain/core"
	"fairlens/domain/table"
	"fairlens/internal/stratified"
)

// Reserved target-column names attached to preprocessed tables. Feature
// columns with these names are excluded from stratification.
const (
	YTrueCol = "y_true"
	YPredCol = "y_pred"
	YProbCol = "y_prob"
)

// MaxDiscreteValues is the largest distinct-value count a numeric column
// may have before it is re-binned into quantiles for stratification.
const MaxDiscreteValues = 11

// quantileBins is the number of quantile groups used when re-binning.
const quantileBins = 10

// Stratified builds the single aligned table a stratified report runs
// over: the selected feature columns of X (continuous columns re-binned
// into quantiles) plus the target vectors under reserved names. It returns
// the table together with the resolved target-column bindings.
func Stratified(X *table.Table, yTrue, yPred, yProb []float64, features []string) (*table.Table, stratified.Binding, error) {
	var bind stratified.Binding
	df, err := Features(X, features)
	if err != nil {
		return nil, bind, err
	}
	n := df.NumRows()

	attach := func(name string, vals []float64) error {
		if vals == nil {
			return nil
		}
		if len(vals) != n {
			return core.Validationf(
				"number of observations mismatch: %s has %d, features have %d", name, len(vals), n)
		}
		cells := make([]interface{}, len(vals))
		for i, v := range vals {
			cells[i] = v
		}
		return df.SetColumn(name, cells)
	}

	if err := attach(YTrueCol, yTrue); err != nil {
		return nil, bind, err
	}
	if err := attach(YPredCol, yPred); err != nil {
		return nil, bind, err
	}
	if err := attach(YProbCol, yProb); err != nil {
		return nil, bind, err
	}
	if yTrue != nil {
		bind.YTrue = YTrueCol
	}
	if yPred != nil {
		bind.YPred = YPredCol
	}
	if yProb != nil {
		bind.YProb = YProbCol
	}
	return df, bind, nil
}

// Features selects the requested columns of X (all columns when features
// is nil) and re-bins continuous columns whose distinct-value count
// exceeds MaxDiscreteValues.
func Features(X *table.Table, features []string) (*table.Table, error) {
	if X == nil || X.NumRows() == 0 {
		return nil, core.Validation("feature table is empty")
	}
	var df *table.Table
	if features == nil {
		df = X.Copy()
	} else {
		df = X.Select(features...)
		if df.NumCols() == 0 {
			return nil, core.Validation("none of the requested features are present")
		}
	}
	for _, name := range df.Columns() {
		if err := binIfContinuous(df, name); err != nil {
			return nil, core.Wrapf(err, "re-binning feature %q", name)
		}
	}
	return df, nil
}

// StratFeatures returns the effective stratification feature set: the
// caller-supplied list intersected with available columns, or every column
// minus the reserved target names.
func StratFeatures(df *table.Table, features []string) []string {
	reserved := map[string]bool{YTrueCol: true, YPredCol: true, YProbCol: true}
	var out []string
	if features != nil {
		for _, f := range features {
			if df.Has(f) && !reserved[f] {
				out = append(out, f)
			}
		}
		return out
	}
	for _, f := range df.Columns() {
		if !reserved[f] {
			out = append(out, f)
		}
	}
	return out
}

// binIfContinuous replaces a numeric column having too many distinct
// values with quantile range labels. Missing cells stay missing.
func binIfContinuous(df *table.Table, name string) error {
	if !df.IsNumeric(name) {
		return nil
	}
	if len(df.DistinctStrings(name)) <= MaxDiscreteValues {
		return nil
	}
	vals := df.Floats(name)
	var present []float64
	for _, v := range vals {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	edges, err := quantileEdges(present, quantileBins)
	if err != nil {
		return err
	}
	labels := make([]interface{}, len(vals))
	for i, v := range vals {
		if math.IsNaN(v) {
			labels[i] = nil
			continue
		}
		labels[i] = binLabel(edges, v)
	}
	return df.SetColumn(name, labels)
}

// quantileEdges computes deduplicated quantile boundaries for nbins groups.
func quantileEdges(vals []float64, nbins int) ([]float64, error) {
	if len(vals) == 0 {
		return nil, core.Validation("cannot bin an all-missing column")
	}
	var edges []float64
	for i := 0; i <= nbins; i++ {
		p := float64(i) * 100 / float64(nbins)
		var e float64
		var err error
		switch {
		case i == 0:
			e, err = stats.Min(vals)
		case i == nbins:
			e, err = stats.Max(vals)
		default:
			e, err = stats.Percentile(vals, p)
		}
		if err != nil {
			return nil, err
		}
		if len(edges) == 0 || e > edges[len(edges)-1] {
			edges = append(edges, e)
		}
	}
	return edges, nil
}

// binLabel returns the half-open range label containing v. Labels sort
// lexicographically in bin order via a zero-padded index prefix.
func binLabel(edges []float64, v float64) string {
	idx := sort.SearchFloat64s(edges, v)
	// SearchFloat64s returns the insertion point; shift so each bin is
	// [edges[i], edges[i+1]) with the last bin closed on the right.
	if idx > 0 && (idx == len(edges) || edges[idx] != v) {
		idx--
	}
	if idx >= len(edges)-1 {
		idx = len(edges) - 2
	}
	if idx < 0 {
		idx = 0
	}
	return fmt.Sprintf("%02d: %g - %g", idx+1, edges[idx], edges[idx+1])
}
