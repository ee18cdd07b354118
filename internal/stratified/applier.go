package stratified

import (
	"fmt"
	"sort"

	"fairlens/domain/core"
	"fairlens/domain/metrics"
	"fairlens/domain/table"
)

// Binding names the resolved target columns a metric function should read
// from each partition.
type Binding struct {
	YTrue string
	YPred string
	YProb string
}

// ApplyFeatureGroups partitions src by the distinct string-cast values of
// each listed feature in turn, invokes fn once per partition, and collects
// every successful result into one table of
// (Feature Name, Feature Value, metrics...) rows.
//
// Failure isolation: an error or panic inside fn is recorded in the ledger
// against the feature and that partition is dropped; sibling partitions and
// features are unaffected. Warnings raised through the collector are
// recorded without dropping the partition. The ledger is a side channel and
// is never part of the returned table.
func ApplyFeatureGroups(features []string, src *table.Table, fn metrics.GroupFunc, bind Binding) (*table.Table, *Ledger) {
	ledger := NewLedger()
	out := table.New()

	for _, f := range features {
		if !src.Has(f) {
			ledger.RecordError(f, core.Validationf("feature %q not found", f))
			continue
		}
		vals, groups := groupRows(src.Strings(f))
		for _, v := range vals {
			sub := src.Subset(groups[v])
			warns := &Warnings{}
			part := metrics.Partition{
				Rows:  sub,
				YTrue: bind.YTrue,
				YPred: bind.YPred,
				YProb: bind.YProb,
			}
			res, err := safeCall(fn, part, warns)
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

// groupRows maps each distinct value to its row indices and returns the
// distinct values sorted. Row order within a group follows source order.
func groupRows(vals []string) ([]string, map[string][]int) {
	groups := make(map[string][]int)
	for i, v := range vals {
		groups[v] = append(groups[v], i)
	}
	distinct := make([]string, 0, len(groups))
	for v := range groups {
		distinct = append(distinct, v)
	}
	sort.Strings(distinct)
	return distinct, groups
}

// safeCall invokes fn, converting a panic into a compute error so one bad
// partition cannot abort the sweep.
func safeCall(fn metrics.GroupFunc, part metrics.Partition, w metrics.Warner) (res *metrics.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = core.Compute(fmt.Sprintf("metric function panicked: %v", r))
		}
	}()
	res, err = fn(part, w)
	if err == nil && res == nil {
		err = core.Compute("metric function returned no result")
	}
	return res, err
}

// emptyResultTable carries only the row-key columns, so callers always
// receive a well-formed (possibly empty) table rather than a failure.
func emptyResultTable() *table.Table {
	t := table.New()
	_ = t.AddColumn(metrics.ColFeatureName, nil)
	_ = t.AddColumn(metrics.ColFeatureValue, nil)
	return t
}
