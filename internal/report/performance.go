package report

import (
	"fairlens/domain/core"
	"fairlens/domain/metrics"
	"fairlens/domain/table"
	imetrics "fairlens/internal/metrics"
	"fairlens/internal/preprocess"
	"fairlens/internal/stratified"
)

// Performance generates a table of stratified performance metrics: one
// row per (feature, value) pair, optionally preceded by the overview row.
func Performance(X *table.Table, yTrue, yPred, yProb []float64, opts Options) (*table.Table, error) {
	if err := validatePredType(opts.PredType); err != nil {
		return nil, err
	}
	if yTrue == nil || yPred == nil {
		return nil, core.Validation("cannot assess performance without both y_true and y_pred")
	}

	df, bind, err := preprocess.Stratified(X, yTrue, yPred, yProb, opts.Features)
	if err != nil {
		return nil, err
	}
	if opts.PredType == metrics.Classification {
		if err := preprocess.CheckBinary(yTrue, yPred); err != nil {
			return nil, err
		}
	}
	stratFeats := preprocess.StratFeatures(df, nil)
	limitAlert(opts.logger(), stratFeats, "features", featureLimit, "")

	var fn metrics.GroupFunc
	if opts.PredType == metrics.Classification {
		fn = classificationPerfFunc
	} else {
		fn = regressionPerfFunc
	}

	results, ledger := stratified.ApplyFeatureGroups(stratFeats, df, fn, bind)
	ledger.Report(opts.logger(), opts.ErrLimit)

	if opts.AddOverview {
		part := metrics.Partition{Rows: df, YTrue: bind.YTrue, YPred: bind.YPred, YProb: bind.YProb}
		warns := &stratified.Warnings{}
		overview, err := fn(part, warns)
		if err != nil {
			return nil, core.Wrap(err, "computing overview row")
		}
		results = prependOverview(results, overview)
	}

	SortColumns(results)
	RoundSigFigs(results, opts.sigfig())
	return results, nil
}

// classificationPerfFunc computes the per-partition classification
// performance bundle. Partitions where a rate is undefined yield NaN
// cells rather than errors; AUC failures fail the partition.
func classificationPerfFunc(part metrics.Partition, w metrics.Warner) (*metrics.Result, error) {
	yt := part.Rows.Floats(part.YTrue)
	yh := part.Rows.Floats(part.YPred)

	res := metrics.NewResult()
	res.Set(metrics.ColObs, float64(part.Rows.NumRows()))
	res.Set(metrics.DisplayTrue+" Mean", imetrics.Mean(yt))
	res.Set(metrics.DisplayPred+" Mean", imetrics.Mean(yh))
	res.Set("TPR", imetrics.TruePositiveRate(yt, yh))
	res.Set("FPR", imetrics.FalsePositiveRate(yt, yh))
	res.Set("Accuracy", imetrics.Accuracy(yt, yh))
	res.Set("Precision", imetrics.Precision(yt, yh))

	if part.YProb != "" {
		yp := part.Rows.Floats(part.YProb)
		rocAUC, err := imetrics.ROCAUC(yt, yp)
		if err != nil {
			return nil, err
		}
		prAUC, err := imetrics.PRAUC(yt, yp)
		if err != nil {
			return nil, err
		}
		res.Set("ROC AUC", rocAUC)
		res.Set("PR AUC", prAUC)
	}
	return res, nil
}

// regressionPerfFunc computes the per-partition regression performance
// bundle.
func regressionPerfFunc(part metrics.Partition, w metrics.Warner) (*metrics.Result, error) {
	yt := part.Rows.Floats(part.YTrue)
	yh := part.Rows.Floats(part.YPred)

	errs := make([]float64, len(yt))
	for i := range yt {
		errs[i] = yh[i] - yt[i]
	}

	res := metrics.NewResult()
	res.Set(metrics.ColObs, float64(part.Rows.NumRows()))
	res.Set(metrics.DisplayTrue+" Mean", imetrics.Mean(yt))
	res.Set(metrics.DisplayPred+" Mean", imetrics.Mean(yh))
	res.Set(metrics.DisplayPred+" Median", imetrics.Median(yh))
	res.Set(metrics.DisplayPred+" Std. Dev.", imetrics.StdDev(yh))
	res.Set("Error Mean", imetrics.Mean(errs))
	res.Set("Error Std. Dev.", imetrics.StdDev(errs))
	res.Set("MAE", imetrics.MeanAbsoluteError(yt, yh))
	res.Set("MSE", imetrics.MeanSquaredError(yt, yh))
	return res, nil
}
