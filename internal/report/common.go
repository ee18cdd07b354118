// Package report assembles stratified fairness, performance, and
// data-descriptive reports into rectangular tables with a canonical
// column ordering.
package report

import (
	"math"
	"sort"

	"fairlens/domain/core"
	"fairlens/domain/metrics"
	"fairlens/domain/table"
	"fairlens/internal/logging"
)

// DefaultSigFig is the significant-figure count applied when the caller
// passes zero.
const DefaultSigFig = 4

// Feature-count advisory limits. Exceeding a limit logs, never fails.
const (
	featureLimit     = 100
	biasFeatureLimit = 200
	targetLimit      = 3
)

// SortColumns imposes the canonical column ordering on a stratified
// report: the fixed head columns first, every remaining column after them
// in lexicographic order. This invariant holds for every report the
// package emits, regardless of which metrics were requested.
func SortColumns(t *table.Table) {
	head := []string{
		metrics.ColFeatureName,
		metrics.ColFeatureValue,
		metrics.ColObs,
		metrics.DisplayTrue + " Mean",
		metrics.DisplayPred + " Mean",
	}
	isHead := make(map[string]bool, len(head))
	var present []string
	for _, h := range head {
		if t.Has(h) {
			present = append(present, h)
			isHead[h] = true
		}
	}
	var tail []string
	for _, c := range t.Columns() {
		if !isHead[c] {
			tail = append(tail, c)
		}
	}
	sort.Strings(tail)
	t.Reorder(append(present, tail...))
}

// RoundSigFigs rounds every numeric cell to the given significant-figure
// count, in place. Rounding is idempotent: a second pass with the same
// count leaves the table unchanged.
func RoundSigFigs(t *table.Table, sigFig int) {
	if sigFig <= 0 {
		sigFig = DefaultSigFig
	}
	for _, name := range t.Columns() {
		raw, _ := t.Raw(name)
		for i, v := range raw {
			if f, ok := v.(float64); ok {
				raw[i] = RoundSig(f, sigFig)
			}
		}
	}
}

// RoundSig rounds one value to sig significant figures.
func RoundSig(v float64, sig int) float64 {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	mag := math.Pow(10, float64(sig-1)-math.Floor(math.Log10(math.Abs(v))))
	return math.Round(v*mag) / mag
}

// limitAlert emits an advisory when an item list exceeds a
// display-friendly limit.
func limitAlert(log *logging.Logger, items []string, itemName string, limit int, issue string) {
	if len(items) <= limit {
		return
	}
	if issue == "" {
		issue = "This may slow processing or make the output difficult to read."
	}
	log.Warn("%d %s requested, limit is %d. %s", len(items), itemName, limit, issue)
}

// validatePredType turns an unsupported prediction type into a
// configuration failure.
func validatePredType(p metrics.PredictionType) error {
	if !p.Valid() {
		return core.ConfigInvalidf(
			"report type must be one of [%s %s], got %q",
			metrics.Classification, metrics.Regression, p)
	}
	return nil
}

// prependOverview builds a new table with the synthetic overview row
// first, followed by every row of results. The overview row uses the same
// metric keys as per-feature rows so concatenation never goes ragged.
func prependOverview(results *table.Table, overview *metrics.Result) *table.Table {
	out := table.New()
	row := map[string]interface{}{
		metrics.ColFeatureName:  metrics.OverviewFeature,
		metrics.ColFeatureValue: metrics.OverviewValue,
	}
	order := []string{metrics.ColFeatureName, metrics.ColFeatureValue}
	for _, name := range overview.Names() {
		v, _ := overview.Get(name)
		row[name] = v
		order = append(order, name)
	}
	out.AppendRow(row, order)
	out.AppendTable(results)
	return out
}

// subsetVectors selects rows of the aligned vectors; a nil rows slice
// passes the vectors through unchanged.
func subsetVectors(rows []int, vecs ...[]float64) [][]float64 {
	out := make([][]float64, len(vecs))
	for vi, v := range vecs {
		if v == nil {
			continue
		}
		if rows == nil {
			out[vi] = v
			continue
		}
		sub := make([]float64, len(rows))
		for i, r := range rows {
			sub[i] = v[r]
		}
		out[vi] = sub
	}
	return out
}
