package stratified

import (
	"sort"
	"strings"

	"fairlens/domain/core"
	"fairlens/domain/table"
	"fairlens/internal/logging"
)

// CohortRunner repeats a whole report computation once per named
// sub-population defined by the cohort table's categorical columns. With a
// nil cohort table it is a transparent passthrough. Each cohort's
// computation is fully independent: a failing cohort is logged and skipped
// without affecting its siblings.
type CohortRunner struct {
	Cohorts *table.Table // one row per observation; nil disables cohorting
	Columns []string     // cohort-defining columns; empty means all columns
	Log     *logging.Logger
}

// Computation runs the wrapped report over a row subset. A nil rows slice
// means the full dataset.
type Computation func(rows []int) (*table.Table, error)

// Run invokes compute per cohort (or once, when no cohort table is bound)
// and concatenates the results, prefixing each cohort's rows with one
// "Cohort: <col>" column per cohort-defining column.
func (c *CohortRunner) Run(nrows int, compute Computation) (*table.Table, error) {
	if c.Cohorts == nil {
		return compute(nil)
	}
	log := c.Log
	if log == nil {
		log = logging.Default
	}
	if c.Cohorts.NumRows() != nrows {
		return nil, core.Validationf(
			"cohort table has %d rows, dataset has %d", c.Cohorts.NumRows(), nrows)
	}
	cols := c.Columns
	if len(cols) == 0 {
		cols = c.Cohorts.Columns()
	}
	if len(cols) == 0 {
		return nil, core.Validation("cohort table has no columns")
	}

	keys, groups := c.groupByCohort(cols)
	out := table.New()
	var lastErr error
	succeeded := 0
	for _, key := range keys {
		res, err := compute(groups[key])
		if err != nil {
			lastErr = err
			log.Warn("cohort %s skipped: %v", strings.ReplaceAll(key, "\x1f", "/"), err)
			continue
		}
		succeeded++
		labels := strings.Split(key, "\x1f")
		prefixed := table.New()
		for i, col := range cols {
			cells := make([]interface{}, res.NumRows())
			for r := range cells {
				cells[r] = labels[i]
			}
			_ = prefixed.AddColumn("Cohort: "+col, cells)
		}
		for _, name := range res.Columns() {
			raw, _ := res.Raw(name)
			cells := make([]interface{}, len(raw))
			copy(cells, raw)
			_ = prefixed.AddColumn(name, cells)
		}
		out.AppendTable(prefixed)
	}
	if succeeded == 0 && lastErr != nil {
		return nil, core.Wrap(lastErr, "every cohort computation failed")
	}
	return out, nil
}

// groupByCohort maps each distinct cohort-column combination to its row
// indices. Keys are the combination labels joined on a unit separator and
// returned sorted for deterministic output.
func (c *CohortRunner) groupByCohort(cols []string) ([]string, map[string][]int) {
	casts := make([][]string, len(cols))
	for i, col := range cols {
		casts[i] = c.Cohorts.Strings(col)
	}
	groups := make(map[string][]int)
	for r := 0; r < c.Cohorts.NumRows(); r++ {
		parts := make([]string, len(cols))
		for i := range cols {
			parts[i] = casts[i][r]
		}
		key := strings.Join(parts, "\x1f")
		groups[key] = append(groups[key], r)
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, groups
}
