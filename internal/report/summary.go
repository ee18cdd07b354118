package report

import (
	"math"

	"fairlens/domain/metrics"
	"fairlens/domain/table"
	imetrics "fairlens/internal/metrics"
	"fairlens/internal/preprocess"
	"fairlens/internal/stratified"
)

// Summary generates the fairness summary for a set of predictions
// relative to a protected attribute: a two-level (Metric, Measure) table
// with one Value column, assembled in fixed category order — group
// fairness, individual fairness, model performance, data metrics.
func Summary(X *table.Table, prtcAttr, yTrue, yPred, yProb []float64, opts Options) (*table.Table, error) {
	if err := validatePredType(opts.PredType); err != nil {
		return nil, err
	}

	runner := &stratified.CohortRunner{
		Cohorts: opts.Cohorts,
		Columns: opts.CohortColumns,
		Log:     opts.Log,
	}
	nrows := 0
	if X != nil {
		nrows = X.NumRows()
	}
	result, err := runner.Run(nrows, func(rows []int) (*table.Table, error) {
		src := X
		if rows != nil {
			src = X.Subset(rows)
		}
		vecs := subsetVectors(rows, prtcAttr, yTrue, yPred, yProb)
		return summarySweep(src, vecs[0], vecs[1], vecs[2], vecs[3], opts)
	})
	if err != nil {
		return nil, err
	}

	RoundSigFigs(result, opts.sigfig())
	return result, nil
}

func summarySweep(X *table.Table, prtcAttr, yTrue, yPred, yProb []float64, opts Options) (*table.Table, error) {
	group, err := preprocess.Standard(X, prtcAttr, yTrue, yPred, yProb, opts.PrivGrp)
	if err != nil {
		return nil, err
	}

	var entries []metrics.Entry
	if opts.PredType == metrics.Classification {
		if err := preprocess.CheckBinary(yTrue, yPred); err != nil {
			return nil, err
		}
		entries = append(entries, classificationFairness(yTrue, yPred, yProb, group, opts)...)
	} else {
		entries = append(entries, regressionFairness(yTrue, yPred, group, opts)...)
	}
	if !opts.SkipIndividualFairness {
		entries = append(entries, individualFairness(X, yTrue, yPred, group, opts)...)
	}
	if !opts.SkipPerformance {
		if opts.PredType == metrics.Classification {
			entries = append(entries, classificationModelPerf(yTrue, yPred, yProb)...)
		} else {
			entries = append(entries, regressionModelPerf(yTrue, yPred)...)
		}
	}
	entries = append(entries, metrics.Entry{
		Category: metrics.CategoryDataMetrics,
		Measure:  "Prevalence of Privileged Class (%)",
		Value:    imetrics.PrevalenceOfPrivileged(yTrue, opts.PrivGrp),
	})

	return pivotEntries(entries), nil
}

func classificationFairness(yTrue, yPred, yProb []float64, group []int, opts Options) []metrics.Entry {
	priv := opts.PrivGrp
	entries := []metrics.Entry{
		{Category: metrics.CategoryGroupFairness, Measure: "Statistical Parity Difference",
			Value: imetrics.StatisticalParityDifference(yTrue, yPred, group, priv)},
		{Category: metrics.CategoryGroupFairness, Measure: "Disparate Impact Ratio",
			Value: imetrics.DisparateImpactRatio(yTrue, yPred, group, priv)},
		{Category: metrics.CategoryGroupFairness, Measure: "Equalized Odds Difference",
			Value: imetrics.EqualizedOddsDifference(yTrue, yPred, group, priv)},
		{Category: metrics.CategoryGroupFairness, Measure: "Equalized Odds Ratio",
			Value: imetrics.EqualizedOddsRatio(yTrue, yPred, group, priv)},
		{Category: metrics.CategoryGroupFairness, Measure: "Positive Predictive Parity Difference",
			Value: imetrics.GroupDifference(imetrics.Precision, yTrue, yPred, group, priv)},
		{Category: metrics.CategoryGroupFairness, Measure: "Balanced Accuracy Difference",
			Value: imetrics.GroupDifference(imetrics.BalancedAccuracy, yTrue, yPred, group, priv)},
		{Category: metrics.CategoryGroupFairness, Measure: "Balanced Accuracy Ratio",
			Value: imetrics.GroupRatio(imetrics.BalancedAccuracy, yTrue, yPred, group, priv)},
	}
	if yProb != nil {
		if diff, err := imetrics.AUCDifference(yTrue, yProb, group, priv); err == nil {
			entries = append(entries, metrics.Entry{
				Category: metrics.CategoryGroupFairness, Measure: "AUC Difference", Value: diff})
		} else {
			opts.logger().Warn("AUC difference unavailable: %v", err)
		}
	}
	return entries
}

func regressionFairness(yTrue, yPred []float64, group []int, opts Options) []metrics.Entry {
	priv := opts.PrivGrp
	return []metrics.Entry{
		{Category: metrics.CategoryGroupFairness, Measure: "Mean Prediction Ratio",
			Value: imetrics.GroupRatio(imetrics.SelectionRate, yTrue, yPred, group, priv)},
		{Category: metrics.CategoryGroupFairness, Measure: "MAE Ratio",
			Value: imetrics.GroupRatio(imetrics.MeanAbsoluteError, yTrue, yPred, group, priv)},
		{Category: metrics.CategoryGroupFairness, Measure: "Mean Prediction Difference",
			Value: imetrics.GroupDifference(imetrics.SelectionRate, yTrue, yPred, group, priv)},
		{Category: metrics.CategoryGroupFairness, Measure: "MAE Difference",
			Value: imetrics.GroupDifference(imetrics.MeanAbsoluteError, yTrue, yPred, group, priv)},
	}
}

// individualFairness computes similarity-based measures. The consistency
// score requires a fully-populated numeric feature matrix; when missing
// values are present it is skipped with a warning, while the entropy
// error still runs.
func individualFairness(X *table.Table, yTrue, yPred []float64, group []int, opts Options) []metrics.Entry {
	var entries []metrics.Entry
	features, complete := numericMatrix(X)
	if complete {
		if score, err := imetrics.ConsistencyScore(features, yPred); err == nil {
			entries = append(entries, metrics.Entry{
				Category: metrics.CategoryIndividualFairness, Measure: "Consistency Score", Value: score})
		} else {
			opts.logger().Warn("cannot calculate consistency score: %v", err)
		}
	} else {
		opts.logger().Warn("cannot calculate consistency score: null values present in data")
	}
	entries = append(entries, metrics.Entry{
		Category: metrics.CategoryIndividualFairness,
		Measure:  "Between-Group Gen. Entropy Error",
		Value:    imetrics.BetweenGroupGenEntropyError(yTrue, yPred, group),
	})
	return entries
}

func classificationModelPerf(yTrue, yPred, yProb []float64) []metrics.Entry {
	entries := []metrics.Entry{
		{Category: metrics.CategoryModelPerformance, Measure: "Accuracy",
			Value: imetrics.Accuracy(yTrue, yPred)},
		{Category: metrics.CategoryModelPerformance, Measure: "Balanced Accuracy",
			Value: imetrics.BalancedAccuracy(yTrue, yPred)},
		{Category: metrics.CategoryModelPerformance, Measure: "F1-Score",
			Value: imetrics.F1Score(yTrue, yPred)},
		{Category: metrics.CategoryModelPerformance, Measure: "Recall",
			Value: imetrics.TruePositiveRate(yTrue, yPred)},
		{Category: metrics.CategoryModelPerformance, Measure: "Precision",
			Value: imetrics.Precision(yTrue, yPred)},
	}
	if yProb != nil {
		if rocAUC, err := imetrics.ROCAUC(yTrue, yProb); err == nil {
			entries = append(entries, metrics.Entry{
				Category: metrics.CategoryModelPerformance, Measure: "ROC AUC", Value: rocAUC})
		}
		if prAUC, err := imetrics.PRAUC(yTrue, yProb); err == nil {
			entries = append(entries, metrics.Entry{
				Category: metrics.CategoryModelPerformance, Measure: "PR AUC", Value: prAUC})
		}
	}
	return entries
}

func regressionModelPerf(yTrue, yPred []float64) []metrics.Entry {
	return []metrics.Entry{
		{Category: metrics.CategoryModelPerformance, Measure: metrics.DisplayTrue + " Mean",
			Value: imetrics.Mean(yTrue)},
		{Category: metrics.CategoryModelPerformance, Measure: metrics.DisplayPred + " Mean",
			Value: imetrics.Mean(yPred)},
		{Category: metrics.CategoryModelPerformance, Measure: "MSE",
			Value: imetrics.MeanSquaredError(yTrue, yPred)},
		{Category: metrics.CategoryModelPerformance, Measure: "MAE",
			Value: imetrics.MeanAbsoluteError(yTrue, yPred)},
		{Category: metrics.CategoryModelPerformance, Measure: "Rsqrd",
			Value: imetrics.RSquared(yTrue, yPred)},
	}
}

// pivotEntries turns the ordered (category, measure, value) records into
// the two-level summary table.
func pivotEntries(entries []metrics.Entry) *table.Table {
	cats := make([]interface{}, len(entries))
	measures := make([]interface{}, len(entries))
	values := make([]interface{}, len(entries))
	for i, e := range entries {
		cats[i] = e.Category
		measures[i] = e.Measure
		values[i] = e.Value
	}
	t := table.New()
	_ = t.AddColumn(metrics.ColMetric, cats)
	_ = t.AddColumn(metrics.ColMeasure, measures)
	_ = t.AddColumn(metrics.ColValue, values)
	return t
}

// numericMatrix casts the feature table to a dense numeric matrix,
// reporting whether every cell was present and numeric.
func numericMatrix(X *table.Table) ([][]float64, bool) {
	cols := X.Columns()
	casts := make([][]float64, len(cols))
	for i, c := range cols {
		casts[i] = X.Floats(c)
	}
	rows := make([][]float64, X.NumRows())
	complete := true
	for r := range rows {
		row := make([]float64, len(cols))
		for c := range cols {
			v := casts[c][r]
			if math.IsNaN(v) {
				complete = false
			}
			row[c] = v
		}
		rows[r] = row
	}
	return rows, complete
}
