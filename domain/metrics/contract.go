package metrics

// Warner collects non-fatal diagnostics raised inside one metric
// invocation. The stratified applier owns the collector for the duration
// of a partition and files its contents in the sweep ledger; a warning
// never drops the partition's result.
type Warner interface {
	Warnf(format string, args ...interface{})
}

// GroupFunc computes a named bundle of metrics over one partition of a
// stratified table. Implementations must be deterministic, side-effect
// free, and tolerate partitions of any size >= 1. A returned error (or a
// panic) aborts only the partition it was raised in.
type GroupFunc func(part Partition, w Warner) (*Result, error)

// BiasFunc computes two-group comparison metrics. group holds a 0/1
// membership indicator aligned with yTrue/yPred; privGrp marks which
// indicator value is the privileged (reference) group.
type BiasFunc func(yTrue, yPred []float64, group []int, privGrp int, w Warner) (*Result, error)

// Partition is the slice of the source table a GroupFunc sees: the rows of
// one feature value, with resolved target-column bindings.
type Partition struct {
	Rows  RowView
	YTrue string // resolved true-label column, "" if absent
	YPred string // resolved prediction column, "" if absent
	YProb string // resolved probability column, "" if absent
}

// RowView is the minimal read surface a metric function needs. Satisfied
// by *table.Table; kept as an interface so metric collaborators do not
// depend on the container package.
type RowView interface {
	NumRows() int
	Floats(name string) []float64
	Strings(name string) []string
	Has(name string) bool
	Columns() []string
}
