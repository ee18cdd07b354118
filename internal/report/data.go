package report

import (
	"math"
	"strings"

	"fairlens/domain/core"
	"fairlens/domain/metrics"
	"fairlens/domain/table"
	imetrics "fairlens/internal/metrics"
	"fairlens/internal/preprocess"
	"fairlens/internal/stratified"
)

// Data generates a table of stratified data-descriptive metrics: per
// (feature, value) observation counts and target statistics, plus
// per-feature missing-value counts and Shannon entropy, and optionally
// the overview row.
func Data(X, Y *table.Table, features, targets []string, opts Options) (*table.Table, error) {
	Xdf, err := preprocess.Features(X, features)
	if err != nil {
		return nil, err
	}
	if Y == nil || Y.NumRows() == 0 {
		return nil, core.Validation("target table is empty")
	}
	// Targets are described, not partitioned, so they keep their raw
	// numeric values rather than being re-binned.
	var Ydf *table.Table
	if targets == nil {
		Ydf = Y.Copy()
	} else {
		Ydf = Y.Select(targets...)
	}
	if Xdf.NumRows() != Ydf.NumRows() {
		return nil, core.Validationf(
			"number of observations mismatch between X (%d) and Y (%d)", Xdf.NumRows(), Ydf.NumRows())
	}

	stratFeats := Xdf.Columns()
	stratTargs := Ydf.Columns()
	if len(stratTargs) == 0 {
		return nil, core.Validation("none of the requested targets are present")
	}
	limitAlert(opts.logger(), stratFeats, "features", featureLimit, "")
	limitAlert(opts.logger(), stratTargs, "targets", targetLimit,
		"This may make the output difficult to read.")

	var perTarget []*table.Table
	for _, t := range stratTargs {
		df := Xdf.Copy()
		cells, _ := Ydf.Raw(t)
		stored := make([]interface{}, len(cells))
		copy(stored, cells)
		if err := df.SetColumn(t, stored); err != nil {
			return nil, core.Wrapf(err, "attaching target %q", t)
		}
		var featSubset []string
		for _, f := range stratFeats {
			if f != t {
				featSubset = append(featSubset, f)
			}
		}
		if len(featSubset) == 0 {
			continue
		}
		res, ledger := stratified.ApplyFeatureGroups(featSubset, df, dataDictFunc(t), stratified.Binding{})
		ledger.Report(opts.logger(), opts.ErrLimit)
		perTarget = append(perTarget, res)
	}
	if len(perTarget) == 0 {
		return nil, core.Validation("no stratification features remain after excluding targets")
	}

	results := mergeOnRowKeys(perTarget)
	total := float64(Xdf.NumRows())
	addValuePrevalence(results, total)
	missingByFeature := attachFeatureStats(results, Xdf, stratFeats)

	if opts.AddOverview {
		overview := metrics.NewResult()
		overview.Set(metrics.ColObs, total)
		for _, t := range stratTargs {
			describeColumn(overview, t, Ydf.Floats(t))
		}
		totalMissing := 0.0
		for _, m := range missingByFeature {
			totalMissing += float64(m)
		}
		nCells := total * float64(len(stratFeats))
		overview.Set("Missing Values", totalMissing)
		overview.Set("Value Prevalence", (nCells-totalMissing)/nCells)
		results = prependOverview(results, overview)
	}

	SortColumns(results)
	RoundSigFigs(results, opts.sigfig())
	return results, nil
}

// dataDictFunc builds the per-partition statistics bundle for one target
// column: observation count plus the target's mean, median, and standard
// deviation. An all-missing target still emits the three columns (as NaN)
// so concatenation stays rectangular.
func dataDictFunc(target string) metrics.GroupFunc {
	return func(part metrics.Partition, w metrics.Warner) (*metrics.Result, error) {
		res := metrics.NewResult()
		res.Set(metrics.ColObs, float64(part.Rows.NumRows()))
		describeColumn(res, target, part.Rows.Floats(target))
		return res, nil
	}
}

func describeColumn(res *metrics.Result, target string, vals []float64) {
	var present []float64
	for _, v := range vals {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		res.Set(target+" Mean", math.NaN())
		res.Set(target+" Median", math.NaN())
		res.Set(target+" Std. Dev.", math.NaN())
		return
	}
	res.Set(target+" Mean", imetrics.Mean(present))
	res.Set(target+" Median", imetrics.Median(present))
	res.Set(target+" Std. Dev.", imetrics.StdDev(present))
}

// mergeOnRowKeys joins per-target result tables column-wise on the
// (Feature Name, Feature Value) row key. Row order follows the first
// table, with rows seen only in a later table appended after it; later
// tables contribute their extra metric columns.
func mergeOnRowKeys(tables []*table.Table) *table.Table {
	out := tables[0].Copy()
	rowIndex := make(map[string]int, out.NumRows())
	for i := 0; i < out.NumRows(); i++ {
		rowIndex[rowKey(out, i)] = i
	}
	for _, t := range tables[1:] {
		// Append unseen rows before the column join so no partition result
		// is dropped. Shared columns keep their values from t; columns only
		// earlier tables carry stay missing for these rows.
		for i := 0; i < t.NumRows(); i++ {
			key := rowKey(t, i)
			if _, ok := rowIndex[key]; ok {
				continue
			}
			row := make(map[string]interface{})
			for _, name := range t.Columns() {
				if out.Has(name) {
					row[name] = t.Cell(name, i)
				}
			}
			out.AppendRow(row, nil)
			rowIndex[key] = out.NumRows() - 1
		}
		for _, name := range t.Columns() {
			if out.Has(name) {
				continue
			}
			cells := make([]interface{}, out.NumRows())
			src, _ := t.Raw(name)
			for i := 0; i < t.NumRows(); i++ {
				cells[rowIndex[rowKey(t, i)]] = src[i]
			}
			_ = out.AddColumn(name, cells)
		}
	}
	return out
}

func rowKey(t *table.Table, row int) string {
	return strings.Join([]string{
		table.CellString(t.Cell(metrics.ColFeatureName, row)),
		table.CellString(t.Cell(metrics.ColFeatureValue, row)),
	}, "\x1f")
}

// addValuePrevalence appends Obs./total as the Value Prevalence column.
func addValuePrevalence(t *table.Table, total float64) {
	if !t.Has(metrics.ColObs) || total == 0 {
		return
	}
	obs := t.Floats(metrics.ColObs)
	cells := make([]interface{}, len(obs))
	for i, o := range obs {
		cells[i] = o / total
	}
	_ = t.AddColumn("Value Prevalence", cells)
}

// attachFeatureStats joins per-feature missing-value counts and base-2
// Shannon entropy onto the result rows, keyed by Feature Name. Returns
// the missing counts for the overview computation.
func attachFeatureStats(t *table.Table, Xdf *table.Table, feats []string) map[string]int {
	missing := make(map[string]int, len(feats))
	entropy := make(map[string]float64, len(feats))
	for _, f := range feats {
		missing[f] = Xdf.MissingCount(f)
		entropy[f] = featureEntropy(Xdf, f)
	}
	names := t.Strings(metrics.ColFeatureName)
	missCells := make([]interface{}, len(names))
	entCells := make([]interface{}, len(names))
	for i, name := range names {
		if m, ok := missing[name]; ok {
			missCells[i] = float64(m)
			entCells[i] = entropy[name]
		}
	}
	_ = t.AddColumn("Missing Values", missCells)
	_ = t.AddColumn("Entropy", entCells)
	return missing
}

// featureEntropy computes the base-2 entropy of a feature's value
// distribution. Non-numeric columns fall back to categorical codes, which
// leaves the distribution of distinct values unchanged.
func featureEntropy(t *table.Table, name string) float64 {
	counts := make(map[string]float64)
	for _, s := range t.Strings(name) {
		counts[s]++
	}
	vals := make([]float64, 0, len(counts))
	for _, c := range counts {
		vals = append(vals, c)
	}
	return imetrics.ShannonEntropy(vals)
}
