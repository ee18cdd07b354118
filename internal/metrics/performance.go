// Package metrics implements the performance and fairness measure
// collaborators consumed by the report assembler. Every function here is
// deterministic and side-effect free; failures surface as returned errors
// so the stratified applier can isolate them per partition.
package metrics

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/integrate"
	gstat "gonum.org/v1/gonum/stat"

	"fairlens/domain/core"
)

// confusion holds binary confusion-matrix counts for a positive label.
type confusion struct {
	tp, fp, tn, fn float64
}

// posLabel picks the positive class: 1 when present, otherwise the largest
// observed class value.
func posLabel(yTrue, yPred []float64) float64 {
	max := math.Inf(-1)
	for _, v := range yTrue {
		if v == 1 {
			return 1
		}
		if v > max {
			max = v
		}
	}
	for _, v := range yPred {
		if v == 1 {
			return 1
		}
		if v > max {
			max = v
		}
	}
	return max
}

func confusionCounts(yTrue, yPred []float64) confusion {
	pos := posLabel(yTrue, yPred)
	var c confusion
	for i := range yTrue {
		actual := yTrue[i] == pos
		predicted := yPred[i] == pos
		switch {
		case actual && predicted:
			c.tp++
		case !actual && predicted:
			c.fp++
		case actual && !predicted:
			c.fn++
		default:
			c.tn++
		}
	}
	return c
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return math.NaN()
	}
	return num / den
}

// Accuracy returns the fraction of matching predictions.
func Accuracy(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return math.NaN()
	}
	match := 0.0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			match++
		}
	}
	return match / float64(len(yTrue))
}

// TruePositiveRate returns recall for the positive class.
func TruePositiveRate(yTrue, yPred []float64) float64 {
	c := confusionCounts(yTrue, yPred)
	return safeDiv(c.tp, c.tp+c.fn)
}

// FalsePositiveRate returns the fall-out for the positive class.
func FalsePositiveRate(yTrue, yPred []float64) float64 {
	c := confusionCounts(yTrue, yPred)
	return safeDiv(c.fp, c.fp+c.tn)
}

// Precision returns the positive predictive value.
func Precision(yTrue, yPred []float64) float64 {
	c := confusionCounts(yTrue, yPred)
	return safeDiv(c.tp, c.tp+c.fp)
}

// BalancedAccuracy averages recall over the two classes.
func BalancedAccuracy(yTrue, yPred []float64) float64 {
	c := confusionCounts(yTrue, yPred)
	tpr := safeDiv(c.tp, c.tp+c.fn)
	tnr := safeDiv(c.tn, c.tn+c.fp)
	return (tpr + tnr) / 2
}

// F1Score returns the harmonic mean of precision and recall.
func F1Score(yTrue, yPred []float64) float64 {
	p := Precision(yTrue, yPred)
	r := TruePositiveRate(yTrue, yPred)
	if math.IsNaN(p) || math.IsNaN(r) || p+r == 0 {
		return math.NaN()
	}
	return 2 * p * r / (p + r)
}

// ROCAUC returns the area under the receiver operating characteristic
// curve for binary labels against probability scores.
func ROCAUC(yTrue, yProb []float64) (float64, error) {
	pos := posLabel(yTrue, nil)
	y, classes, err := sortedScores(yTrue, yProb, pos)
	if err != nil {
		return math.NaN(), err
	}
	tpr, fpr, _ := gstat.ROC(nil, y, classes, nil)
	return integrate.Trapezoidal(fpr, tpr), nil
}

// PRAUC returns the area under the precision-recall curve.
func PRAUC(yTrue, yProb []float64) (float64, error) {
	pos := posLabel(yTrue, nil)
	if err := checkScores(yTrue, yProb); err != nil {
		return math.NaN(), err
	}
	idx := make([]int, len(yProb))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return yProb[idx[a]] > yProb[idx[b]] })

	totalPos := 0.0
	for _, v := range yTrue {
		if v == pos {
			totalPos++
		}
	}
	if totalPos == 0 {
		return math.NaN(), core.Compute("no positive samples for PR AUC")
	}

	var recalls, precisions []float64
	tp, fp := 0.0, 0.0
	for _, i := range idx {
		if yTrue[i] == pos {
			tp++
		} else {
			fp++
		}
		recalls = append(recalls, tp/totalPos)
		precisions = append(precisions, tp/(tp+fp))
	}
	// Step-wise integration over recall.
	auc := 0.0
	prevRecall := 0.0
	for i := range recalls {
		auc += (recalls[i] - prevRecall) * precisions[i]
		prevRecall = recalls[i]
	}
	return auc, nil
}

// sortedScores orders scores ascending with their class markers aligned,
// as gonum's ROC requires.
func sortedScores(yTrue, yProb []float64, pos float64) ([]float64, []bool, error) {
	if err := checkScores(yTrue, yProb); err != nil {
		return nil, nil, err
	}
	idx := make([]int, len(yProb))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return yProb[idx[a]] < yProb[idx[b]] })
	y := make([]float64, len(idx))
	classes := make([]bool, len(idx))
	for j, i := range idx {
		y[j] = yProb[i]
		classes[j] = yTrue[i] == pos
	}
	return y, classes, nil
}

func checkScores(yTrue, yProb []float64) error {
	if len(yTrue) == 0 || len(yTrue) != len(yProb) {
		return core.Validationf("score vectors misaligned: %d labels, %d scores", len(yTrue), len(yProb))
	}
	for _, v := range yProb {
		if math.IsNaN(v) {
			return core.Compute("probability scores contain NaN")
		}
	}
	return nil
}

// MeanAbsoluteError returns the mean absolute prediction error.
func MeanAbsoluteError(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := range yTrue {
		sum += math.Abs(yPred[i] - yTrue[i])
	}
	return sum / float64(len(yTrue))
}

// MeanSquaredError returns the mean squared prediction error.
func MeanSquaredError(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := range yTrue {
		d := yPred[i] - yTrue[i]
		sum += d * d
	}
	return sum / float64(len(yTrue))
}

// RSquared returns the coefficient of determination.
func RSquared(yTrue, yPred []float64) float64 {
	mean, err := stats.Mean(yTrue)
	if err != nil {
		return math.NaN()
	}
	ssRes, ssTot := 0.0, 0.0
	for i := range yTrue {
		d := yTrue[i] - yPred[i]
		ssRes += d * d
		m := yTrue[i] - mean
		ssTot += m * m
	}
	if ssTot == 0 {
		return math.NaN()
	}
	return 1 - ssRes/ssTot
}

// Mean returns the arithmetic mean, NaN for empty input.
func Mean(vals []float64) float64 {
	m, err := stats.Mean(vals)
	if err != nil {
		return math.NaN()
	}
	return m
}

// Median returns the middle value, NaN for empty input.
func Median(vals []float64) float64 {
	m, err := stats.Median(vals)
	if err != nil {
		return math.NaN()
	}
	return m
}

// StdDev returns the sample standard deviation, NaN for empty input.
func StdDev(vals []float64) float64 {
	s, err := stats.StandardDeviationSample(vals)
	if err != nil {
		return math.NaN()
	}
	return s
}

// ShannonEntropy returns the base-2 entropy of a value distribution given
// as category counts.
func ShannonEntropy(counts []float64) float64 {
	total := 0.0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return math.NaN()
	}
	h := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := c / total
		h -= p * math.Log2(p)
	}
	return h
}
