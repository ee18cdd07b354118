package stratified

import (
	"fmt"

	"fairlens/domain/core"
	"fairlens/domain/metrics"
	"fairlens/domain/table"
)

// ApplyBiasGroups runs a two-group comparison function once per distinct
// value of each listed feature. For a value v of feature f it builds a 0/1
// indicator marking membership in v versus all else, excluding rows where
// f is missing, and invokes fn over the aligned target columns.
//
// Values with only one group present besides the missing sentinel are
// skipped — there is nothing to compare in a ratio/difference sense.
// Failure isolation matches ApplyFeatureGroups: errors and panics land in
// the ledger keyed by feature, and the sweep continues.
func ApplyBiasGroups(features []string, src *table.Table, fn metrics.BiasFunc, bind Binding, privGrp int) (*table.Table, *Ledger) {
	ledger := NewLedger()
	out := table.New()

	yTrue := src.Floats(bind.YTrue)
	yPred := src.Floats(bind.YPred)

	for _, f := range features {
		if !src.Has(f) {
			ledger.RecordError(f, core.Validationf("feature %q not found", f))
			continue
		}
		svals := src.Strings(f)
		vals, _ := groupRows(svals)
		for _, v := range vals {
			yt, yh, group, distinct := biasSubset(svals, yTrue, yPred, v)
			if distinct < 2 {
				continue
			}
			warns := &Warnings{}
			res, err := safeBiasCall(fn, yt, yh, group, privGrp, warns)
			ledger.RecordWarnings(f, warns.Messages())
			if err != nil {
				ledger.RecordError(f, err)
				continue
			}
			row := map[string]interface{}{
				metrics.ColFeatureName:  f,
				metrics.ColFeatureValue: v,
			}
			order := []string{metrics.ColFeatureName, metrics.ColFeatureValue}
			for _, name := range res.Names() {
				val, _ := res.Get(name)
				row[name] = val
				order = append(order, name)
			}
			out.AppendRow(row, order)
		}
	}

	if out.NumRows() == 0 {
		return emptyResultTable(), ledger
	}
	return out, ledger
}

// biasSubset builds the aligned label/prediction/indicator slices for one
// feature value, dropping rows where the feature is missing. distinct is
// the number of indicator groups observed.
func biasSubset(svals []string, yTrue, yPred []float64, value string) (yt, yh []float64, group []int, distinct int) {
	seen := [2]bool{}
	for i, s := range svals {
		if s == table.Missing && value != table.Missing {
			continue
		}
		g := 0
		if s == value {
			g = 1
		}
		yt = append(yt, yTrue[i])
		yh = append(yh, yPred[i])
		group = append(group, g)
		seen[g] = true
	}
	if seen[0] {
		distinct++
	}
	if seen[1] {
		distinct++
	}
	return yt, yh, group, distinct
}

func safeBiasCall(fn metrics.BiasFunc, yt, yh []float64, group []int, privGrp int, w metrics.Warner) (res *metrics.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = core.Compute(fmt.Sprintf("bias metric function panicked: %v", r))
		}
	}()
	res, err = fn(yt, yh, group, privGrp, w)
	if err == nil && res == nil {
		err = core.Compute("bias metric function returned no result")
	}
	return res, err
}
