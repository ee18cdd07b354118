package report

import (
	"fairlens/domain/metrics"
	"fairlens/domain/table"
	"fairlens/internal/logging"
)

// Options control report assembly. Start from DefaultOptions; the zero
// value carries a zero privileged-group marker, which is rarely intended.
type Options struct {
	// Features restricts stratification to the named columns. Nil means
	// every available column minus the reserved target names.
	Features []string
	// PredType selects the prediction problem; one of classification or
	// regression.
	PredType metrics.PredictionType
	// SigFig is the significant-figure count applied to numeric cells.
	SigFig int
	// AddOverview adds the synthetic "ALL FEATURES / ALL VALUES" row.
	AddOverview bool
	// PrivGrp marks the privileged (reference) group in the protected
	// attribute. Honored at every internal call site.
	PrivGrp int
	// Cohorts optionally re-runs the whole computation per distinct value
	// combination of the cohort table's columns.
	Cohorts       *table.Table
	CohortColumns []string
	// SkipIndividualFairness and SkipPerformance drop the corresponding
	// summary-report sections.
	SkipIndividualFairness bool
	SkipPerformance        bool
	// ErrLimit caps the entries shown in the end-of-sweep ledger summary.
	ErrLimit int
	// Log receives advisories and the consolidated ledger summary.
	Log *logging.Logger
}

// DefaultOptions returns the canonical starting options: classification,
// four significant figures, overview row on, privileged group 1.
func DefaultOptions() Options {
	return Options{
		PredType:    metrics.Classification,
		SigFig:      DefaultSigFig,
		AddOverview: true,
		PrivGrp:     1,
		ErrLimit:    5,
	}
}

func (o *Options) logger() *logging.Logger {
	if o.Log != nil {
		return o.Log
	}
	return logging.Default
}

func (o *Options) sigfig() int {
	if o.SigFig <= 0 {
		return DefaultSigFig
	}
	return o.SigFig
}
