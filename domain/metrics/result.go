package metrics

// Result is an ordered metric-name -> value record produced by one metric
// invocation over one partition. Insertion order is preserved explicitly
// rather than relying on map iteration, so merged reports keep a stable
// column discovery order.
type Result struct {
	names  []string
	values map[string]float64
}

// NewResult creates an empty result record.
func NewResult() *Result {
	return &Result{values: make(map[string]float64)}
}

// Set records a metric value, preserving first-insertion order.
func (r *Result) Set(name string, value float64) {
	if _, ok := r.values[name]; !ok {
		r.names = append(r.names, name)
	}
	r.values[name] = value
}

// Get returns a metric value and whether it is present.
func (r *Result) Get(name string) (float64, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Names returns metric names in insertion order.
func (r *Result) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of recorded metrics.
func (r *Result) Len() int {
	return len(r.names)
}

// Merge appends every entry of other, keeping existing values on collision.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	for _, name := range other.names {
		if _, ok := r.values[name]; !ok {
			r.Set(name, other.values[name])
		}
	}
}

// Entry is one (category, measure, value) record used when assembling
// summary tables. An explicit ordered list replaces nested-map
// accumulation so category and measure order survive the pivot.
type Entry struct {
	Category string
	Measure  string
	Value    float64
}
