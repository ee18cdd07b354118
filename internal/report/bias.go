package report

import (
	"fairlens/domain/core"
	"fairlens/domain/metrics"
	"fairlens/domain/table"
	imetrics "fairlens/internal/metrics"
	"fairlens/internal/preprocess"
	"fairlens/internal/stratified"
)

// Bias generates a table of stratified fairness metrics: for every value
// of every stratification feature, each measure compares membership in
// that value against the rest of the population. With a cohort table
// bound, the whole computation repeats independently per cohort.
//
// The bias report never carries the overview row: its measures compare one
// group against the rest, which is undefined for the whole population, so
// Options.AddOverview is ignored here.
func Bias(X *table.Table, yTrue, yPred []float64, opts Options) (*table.Table, error) {
	if err := validatePredType(opts.PredType); err != nil {
		return nil, err
	}
	if yTrue == nil || yPred == nil {
		return nil, core.Validation("cannot assess fairness without both y_true and y_pred")
	}
	if opts.PredType == metrics.Classification {
		if err := preprocess.CheckBinary(yTrue, yPred); err != nil {
			return nil, err
		}
	}

	var fn metrics.BiasFunc
	if opts.PredType == metrics.Classification {
		fn = classificationBiasFunc
	} else {
		fn = regressionBiasFunc
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
		vecs := subsetVectors(rows, yTrue, yPred)
		return biasSweep(src, vecs[0], vecs[1], fn, opts)
	})
	if err != nil {
		return nil, err
	}

	RoundSigFigs(result, opts.sigfig())
	return result, nil
}

// biasSweep runs one full bias sweep over a (possibly cohort-subset)
// dataset.
func biasSweep(X *table.Table, yTrue, yPred []float64, fn metrics.BiasFunc, opts Options) (*table.Table, error) {
	df, bind, err := preprocess.Stratified(X, yTrue, yPred, nil, opts.Features)
	if err != nil {
		return nil, err
	}
	stratFeats := preprocess.StratFeatures(df, nil)
	limitAlert(opts.logger(), stratFeats, "features", biasFeatureLimit, "")

	results, ledger := stratified.ApplyBiasGroups(stratFeats, df, fn, bind, opts.PrivGrp)
	ledger.Report(opts.logger(), opts.ErrLimit)

	SortColumns(results)
	return results, nil
}

// classificationBiasFunc computes group-fairness ratios and differences
// for one feature-value membership split.
func classificationBiasFunc(yTrue, yPred []float64, group []int, privGrp int, w metrics.Warner) (*metrics.Result, error) {
	res := metrics.NewResult()
	res.Set("Selection Ratio", imetrics.GroupRatio(imetrics.SelectionRate, yTrue, yPred, group, privGrp))
	res.Set("PPV Ratio", imetrics.GroupRatio(imetrics.Precision, yTrue, yPred, group, privGrp))
	res.Set("TPR Ratio", imetrics.GroupRatio(imetrics.TruePositiveRate, yTrue, yPred, group, privGrp))
	res.Set("FPR Ratio", imetrics.GroupRatio(imetrics.FalsePositiveRate, yTrue, yPred, group, privGrp))
	res.Set("Selection Diff", imetrics.GroupDifference(imetrics.SelectionRate, yTrue, yPred, group, privGrp))
	res.Set("PPV Diff", imetrics.GroupDifference(imetrics.Precision, yTrue, yPred, group, privGrp))
	res.Set("TPR Diff", imetrics.GroupDifference(imetrics.TruePositiveRate, yTrue, yPred, group, privGrp))
	res.Set("FPR Diff", imetrics.GroupDifference(imetrics.FalsePositiveRate, yTrue, yPred, group, privGrp))
	return res, nil
}

// regressionBiasFunc computes regression-specific fairness measures for
// one feature-value membership split.
func regressionBiasFunc(yTrue, yPred []float64, group []int, privGrp int, w metrics.Warner) (*metrics.Result, error) {
	res := metrics.NewResult()
	res.Set("Mean Prediction Ratio", imetrics.GroupRatio(imetrics.SelectionRate, yTrue, yPred, group, privGrp))
	res.Set("MAE Ratio", imetrics.GroupRatio(imetrics.MeanAbsoluteError, yTrue, yPred, group, privGrp))
	res.Set("Mean Prediction Difference", imetrics.GroupDifference(imetrics.SelectionRate, yTrue, yPred, group, privGrp))
	res.Set("MAE Difference", imetrics.GroupDifference(imetrics.MeanAbsoluteError, yTrue, yPred, group, privGrp))
	return res, nil
}
