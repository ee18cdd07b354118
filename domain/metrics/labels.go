package metrics

// Display names for the target columns as they appear in report headers.
const (
	DisplayTrue = "Target"
	DisplayPred = "Prediction"
)

// Fixed row-key schema shared by all stratified reports.
const (
	ColFeatureName  = "Feature Name"
	ColFeatureValue = "Feature Value"
	ColObs          = "Obs."
)

// Synthetic overview row labels.
const (
	OverviewFeature = "ALL FEATURES"
	OverviewValue   = "ALL VALUES"
)

// Metric category labels consumed when assembling summary reports.
// Category order in summary tables is fixed: group fairness, individual
// fairness, model performance, data metrics.
const (
	CategoryGroupFairness      = "Group Fairness"
	CategoryIndividualFairness = "Individual Fairness"
	CategoryModelPerformance   = "Model Performance"
	CategoryDataMetrics        = "Data Metrics"
)

// Summary table column labels.
const (
	ColMetric  = "Metric"
	ColMeasure = "Measure"
	ColValue   = "Value"
)

// PredictionType discriminates the two supported prediction problems.
type PredictionType string

const (
	Classification PredictionType = "classification"
	Regression     PredictionType = "regression"
)

// Valid reports whether p is one of the supported prediction types.
func (p PredictionType) Valid() bool {
	return p == Classification || p == Regression
}
