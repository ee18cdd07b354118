package report

import (
	"fmt"
	"math"
	"sort"

	"fairlens/domain/core"
	"fairlens/domain/metrics"
	"fairlens/domain/table"
	imetrics "fairlens/internal/metrics"
)

// ClassificationPerformance returns the non-stratified per-class
// performance table: one row per target class with precision, recall,
// F1, and support, followed by an accuracy row.
func ClassificationPerformance(yTrue, yPred []float64, targetLabels []string, sigFig int) (*table.Table, error) {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return nil, core.Validationf(
			"target vectors misaligned: %d true, %d predicted", len(yTrue), len(yPred))
	}
	classes := distinctSorted(yTrue)
	if targetLabels != nil && len(targetLabels) != len(classes) {
		return nil, core.Validationf(
			"%d target labels supplied for %d classes", len(targetLabels), len(classes))
	}

	t := table.New()
	var labels, precisions, recalls, f1s, supports []interface{}
	for i, cls := range classes {
		label := fmt.Sprintf("target = %g", cls)
		if targetLabels != nil {
			label = targetLabels[i]
		}
		bt, bp := binarize(yTrue, cls), binarize(yPred, cls)
		labels = append(labels, label)
		precisions = append(precisions, imetrics.Precision(bt, bp))
		recalls = append(recalls, imetrics.TruePositiveRate(bt, bp))
		f1s = append(f1s, imetrics.F1Score(bt, bp))
		supports = append(supports, classSupport(yTrue, cls))
	}
	// Accuracy lives on its own row rather than repeating per class.
	labels = append(labels, "accuracy")
	precisions = append(precisions, nil)
	recalls = append(recalls, nil)
	f1s = append(f1s, nil)
	supports = append(supports, float64(len(yTrue)))

	_ = t.AddColumn("Class", labels)
	_ = t.AddColumn("Precision", precisions)
	_ = t.AddColumn("Recall", recalls)
	_ = t.AddColumn("F1-Score", f1s)
	_ = t.AddColumn("Support", supports)

	acc := make([]interface{}, len(labels))
	acc[len(acc)-1] = imetrics.Accuracy(yTrue, yPred)
	_ = t.AddColumn("Accuracy", acc)

	RoundSigFigs(t, sigFig)
	return t, nil
}

// RegressionPerformance returns the non-stratified regression performance
// table: one measure per row with a single Score column.
func RegressionPerformance(yTrue, yPred []float64, sigFig int) (*table.Table, error) {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return nil, core.Validationf(
			"target vectors misaligned: %d true, %d predicted", len(yTrue), len(yPred))
	}
	measures := []struct {
		name  string
		value float64
	}{
		{metrics.DisplayTrue + " Mean", imetrics.Mean(yTrue)},
		{metrics.DisplayPred + " Mean", imetrics.Mean(yPred)},
		{"MSE", imetrics.MeanSquaredError(yTrue, yPred)},
		{"MAE", imetrics.MeanAbsoluteError(yTrue, yPred)},
		{"Rsqrd", imetrics.RSquared(yTrue, yPred)},
	}
	names := make([]interface{}, len(measures))
	scores := make([]interface{}, len(measures))
	for i, m := range measures {
		names[i] = m.name
		scores[i] = m.value
	}
	t := table.New()
	_ = t.AddColumn(metrics.ColMeasure, names)
	_ = t.AddColumn("Score", scores)
	RoundSigFigs(t, sigFig)
	return t, nil
}

func distinctSorted(vals []float64) []float64 {
	seen := make(map[float64]struct{})
	var out []float64
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}

func binarize(vals []float64, cls float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		if v == cls {
			out[i] = 1
		}
	}
	return out
}

func classSupport(yTrue []float64, cls float64) float64 {
	n := 0.0
	for _, v := range yTrue {
		if v == cls {
			n++
		}
	}
	return n
}
