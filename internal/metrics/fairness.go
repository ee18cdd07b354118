package metrics

import (
	"math"
	"sort"

	"fairlens/domain/core"
)

// PairMetric is any score computed from aligned label/prediction vectors.
type PairMetric func(yTrue, yPred []float64) float64

// splitGroups partitions the aligned vectors into privileged and
// unprivileged subsets using the group indicator.
func splitGroups(yTrue, yPred []float64, group []int, privGrp int) (privT, privH, unprivT, unprivH []float64) {
	for i := range group {
		if group[i] == privGrp {
			privT = append(privT, yTrue[i])
			privH = append(privH, yPred[i])
		} else {
			unprivT = append(unprivT, yTrue[i])
			unprivH = append(unprivH, yPred[i])
		}
	}
	return
}

// GroupRatio returns metric(unprivileged) / metric(privileged).
func GroupRatio(m PairMetric, yTrue, yPred []float64, group []int, privGrp int) float64 {
	privT, privH, unprivT, unprivH := splitGroups(yTrue, yPred, group, privGrp)
	denom := m(privT, privH)
	if denom == 0 || math.IsNaN(denom) {
		return math.NaN()
	}
	return m(unprivT, unprivH) / denom
}

// GroupDifference returns metric(unprivileged) - metric(privileged).
func GroupDifference(m PairMetric, yTrue, yPred []float64, group []int, privGrp int) float64 {
	privT, privH, unprivT, unprivH := splitGroups(yTrue, yPred, group, privGrp)
	return m(unprivT, unprivH) - m(privT, privH)
}

// SelectionRate is the mean prediction, the base rate of positive
// selections for binary predictions.
func SelectionRate(_, yPred []float64) float64 {
	return Mean(yPred)
}

// StatisticalParityDifference is the selection-rate difference between the
// unprivileged and privileged groups.
func StatisticalParityDifference(yTrue, yPred []float64, group []int, privGrp int) float64 {
	return GroupDifference(SelectionRate, yTrue, yPred, group, privGrp)
}

// DisparateImpactRatio is the selection-rate ratio between the
// unprivileged and privileged groups.
func DisparateImpactRatio(yTrue, yPred []float64, group []int, privGrp int) float64 {
	return GroupRatio(SelectionRate, yTrue, yPred, group, privGrp)
}

// EqualizedOddsDifference returns the TPR or FPR group difference with the
// larger magnitude, the worst-case violation of equalized odds.
func EqualizedOddsDifference(yTrue, yPred []float64, group []int, privGrp int) float64 {
	tprDiff := GroupDifference(TruePositiveRate, yTrue, yPred, group, privGrp)
	fprDiff := GroupDifference(FalsePositiveRate, yTrue, yPred, group, privGrp)
	if math.Abs(fprDiff) > math.Abs(tprDiff) {
		return fprDiff
	}
	return tprDiff
}

// EqualizedOddsRatio returns the TPR or FPR group ratio farther below
// parity, the worst-case violation of equalized odds.
func EqualizedOddsRatio(yTrue, yPred []float64, group []int, privGrp int) float64 {
	tprRatio := GroupRatio(TruePositiveRate, yTrue, yPred, group, privGrp)
	fprRatio := GroupRatio(FalsePositiveRate, yTrue, yPred, group, privGrp)
	if math.IsNaN(tprRatio) {
		return fprRatio
	}
	if math.IsNaN(fprRatio) {
		return tprRatio
	}
	return math.Min(tprRatio, fprRatio)
}

// AUCDifference is the group difference of ROC AUC computed against
// probability scores.
func AUCDifference(yTrue, yProb []float64, group []int, privGrp int) (float64, error) {
	var privT, privP, unprivT, unprivP []float64
	for i := range group {
		if group[i] == privGrp {
			privT = append(privT, yTrue[i])
			privP = append(privP, yProb[i])
		} else {
			unprivT = append(unprivT, yTrue[i])
			unprivP = append(unprivP, yProb[i])
		}
	}
	privAUC, err := ROCAUC(privT, privP)
	if err != nil {
		return math.NaN(), err
	}
	unprivAUC, err := ROCAUC(unprivT, unprivP)
	if err != nil {
		return math.NaN(), err
	}
	return unprivAUC - privAUC, nil
}

// consistencyNeighbors is the neighborhood size of the consistency score.
const consistencyNeighbors = 5

// ConsistencyScore measures individual fairness as agreement between each
// prediction and the mean prediction of its k nearest neighbors in
// feature space: 1 - mean |y_i - mean(y_neighbors)|. Rows must contain no
// missing values.
func ConsistencyScore(features [][]float64, yPred []float64) (float64, error) {
	n := len(features)
	if n == 0 || n != len(yPred) {
		return math.NaN(), core.Validationf("consistency score inputs misaligned: %d rows, %d predictions", n, len(yPred))
	}
	for i, row := range features {
		for _, v := range row {
			if math.IsNaN(v) {
				return math.NaN(), core.Computef("null values present in feature row %d", i)
			}
		}
	}
	k := consistencyNeighbors
	if k > n-1 {
		k = n - 1
	}
	if k < 1 {
		return math.NaN(), core.Compute("too few rows for consistency score")
	}

	total := 0.0
	dists := make([]struct {
		d   float64
		idx int
	}, 0, n-1)
	for i := 0; i < n; i++ {
		dists = dists[:0]
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			dists = append(dists, struct {
				d   float64
				idx int
			}{euclidean(features[i], features[j]), j})
		}
		sort.Slice(dists, func(a, b int) bool { return dists[a].d < dists[b].d })
		neighborSum := 0.0
		for _, nb := range dists[:k] {
			neighborSum += yPred[nb.idx]
		}
		total += math.Abs(yPred[i] - neighborSum/float64(k))
	}
	return 1 - total/float64(n), nil
}

func euclidean(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// BetweenGroupGenEntropyError is the between-group component of the
// generalized entropy index (alpha=2) over benefit values
// b_i = yhat_i - y_i + 1, with each observation replaced by its group's
// mean benefit. Lower is better; 0 means the groups benefit equally.
func BetweenGroupGenEntropyError(yTrue, yPred []float64, group []int) float64 {
	if len(yTrue) == 0 {
		return math.NaN()
	}
	sums := make(map[int]float64)
	counts := make(map[int]float64)
	total := 0.0
	for i := range yTrue {
		b := yPred[i] - yTrue[i] + 1
		sums[group[i]] += b
		counts[group[i]]++
		total += b
	}
	mu := total / float64(len(yTrue))
	if mu == 0 {
		return math.NaN()
	}
	// Generalized entropy with alpha=2 over group-mean benefits.
	ge := 0.0
	for g, sum := range sums {
		groupMean := sum / counts[g]
		r := groupMean / mu
		ge += counts[g] * (r*r - 1)
	}
	return ge / (2 * float64(len(yTrue)))
}

// PrevalenceOfPrivileged returns the percentage of observations belonging
// to the privileged class, rounded to the nearest whole percent.
func PrevalenceOfPrivileged(yTrue []float64, privGrp int) float64 {
	if len(yTrue) == 0 {
		return math.NaN()
	}
	count := 0.0
	for _, v := range yTrue {
		if v == float64(privGrp) {
			count++
		}
	}
	return math.Round(100 * count / float64(len(yTrue)))
}
