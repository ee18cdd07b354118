package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairlens/domain/core"
	"fairlens/domain/metrics"
	"fairlens/domain/table"
)

func summaryFixture(t *testing.T) (*table.Table, []float64, []float64, []float64, []float64) {
	t.Helper()
	X := table.New()
	require.NoError(t, X.AddColumn("age", []interface{}{34.0, 52.0, 41.0, 29.0, 63.0, 45.0, 38.0, 57.0}))
	require.NoError(t, X.AddColumn("score", []interface{}{0.2, 0.7, 0.4, 0.1, 0.9, 0.5, 0.3, 0.8}))
	prtcAttr := []float64{1, 1, 1, 1, 0, 0, 0, 0}
	yTrue := []float64{1, 0, 1, 0, 1, 0, 1, 0}
	yPred := []float64{1, 0, 1, 0, 1, 1, 0, 0}
	yProb := []float64{0.9, 0.2, 0.8, 0.1, 0.7, 0.6, 0.4, 0.3}
	return X, prtcAttr, yTrue, yPred, yProb
}

func TestSummary_CategoryOrder(t *testing.T) {
	X, prtcAttr, yTrue, yPred, yProb := summaryFixture(t)
	out, err := Summary(X, prtcAttr, yTrue, yPred, yProb, quietOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{metrics.ColMetric, metrics.ColMeasure, metrics.ColValue}, out.Columns())

	cats := out.Strings(metrics.ColMetric)
	rank := map[string]int{
		metrics.CategoryGroupFairness:      0,
		metrics.CategoryIndividualFairness: 1,
		metrics.CategoryModelPerformance:   2,
		metrics.CategoryDataMetrics:        3,
	}
	for i := 1; i < len(cats); i++ {
		assert.LessOrEqual(t, rank[cats[i-1]], rank[cats[i]],
			"categories must stay in fixed order")
	}
	assert.Equal(t, metrics.CategoryGroupFairness, cats[0])
	assert.Equal(t, metrics.CategoryDataMetrics, cats[len(cats)-1])
}

func TestSummary_ExpectedMeasures(t *testing.T) {
	X, prtcAttr, yTrue, yPred, yProb := summaryFixture(t)
	out, err := Summary(X, prtcAttr, yTrue, yPred, yProb, quietOptions())
	require.NoError(t, err)

	measures := out.Strings(metrics.ColMeasure)
	for _, want := range []string{
		"Statistical Parity Difference",
		"Disparate Impact Ratio",
		"Equalized Odds Difference",
		"Equalized Odds Ratio",
		"AUC Difference",
		"Consistency Score",
		"Between-Group Gen. Entropy Error",
		"Accuracy",
		"ROC AUC",
		"Prevalence of Privileged Class (%)",
	} {
		assert.Contains(t, measures, want)
	}
}

func TestSummary_SkipSections(t *testing.T) {
	X, prtcAttr, yTrue, yPred, _ := summaryFixture(t)
	opts := quietOptions()
	opts.SkipIndividualFairness = true
	opts.SkipPerformance = true
	out, err := Summary(X, prtcAttr, yTrue, yPred, nil, opts)
	require.NoError(t, err)

	cats := out.Strings(metrics.ColMetric)
	assert.NotContains(t, cats, metrics.CategoryIndividualFairness)
	assert.NotContains(t, cats, metrics.CategoryModelPerformance)
	assert.Contains(t, cats, metrics.CategoryGroupFairness)
	assert.Contains(t, cats, metrics.CategoryDataMetrics)
}

func TestSummary_NonBinaryProtectedAttribute(t *testing.T) {
	X, _, yTrue, yPred, _ := summaryFixture(t)
	prtcAttr := []float64{0, 1, 2, 0, 1, 2, 0, 1}
	_, err := Summary(X, prtcAttr, yTrue, yPred, nil, quietOptions())
	require.Error(t, err)
	assert.True(t, core.IsCode(err, core.CodeValidationError))
}

func TestSummary_Regression(t *testing.T) {
	X, prtcAttr, _, _, _ := summaryFixture(t)
	yTrue := []float64{1.2, 3.4, 2.2, 4.1, 0.8, 2.9, 1.7, 3.3}
	yPred := []float64{1.0, 3.0, 2.5, 4.0, 1.0, 3.0, 1.5, 3.5}

	opts := quietOptions()
	opts.PredType = metrics.Regression
	out, err := Summary(X, prtcAttr, yTrue, yPred, nil, opts)
	require.NoError(t, err)

	measures := out.Strings(metrics.ColMeasure)
	assert.Contains(t, measures, "MAE Ratio")
	assert.Contains(t, measures, "Rsqrd")
	assert.NotContains(t, measures, "Disparate Impact Ratio")
}

func TestSummary_CohortRepeats(t *testing.T) {
	X, prtcAttr, yTrue, yPred, _ := summaryFixture(t)
	cohorts := table.New()
	require.NoError(t, cohorts.AddColumn("region", []interface{}{
		"north", "north", "north", "north", "south", "south", "south", "south"}))

	opts := quietOptions()
	opts.Cohorts = cohorts
	_, err := Summary(X, prtcAttr, yTrue, yPred, nil, opts)
	// Each cohort holds only one protected group, so both cohorts fail
	// validation and the whole computation reports it.
	require.Error(t, err)
}
