package preprocess

import (
	"math"

	"fairlens/domain/core"
	"fairlens/domain/table"
)

// Standard validates and formats the inputs of a summary report: the
// feature matrix, the protected attribute, and the target vectors. It
// returns the protected attribute as an integer group indicator.
func Standard(X *table.Table, prtcAttr, yTrue, yPred, yProb []float64, privGrp int) ([]int, error) {
	if X == nil || X.NumRows() == 0 {
		return nil, core.Validation("feature table is empty")
	}
	n := X.NumRows()
	if len(prtcAttr) != n {
		return nil, core.Validationf(
			"number of observations mismatch: protected attribute has %d, features have %d", len(prtcAttr), n)
	}
	if yTrue == nil || yPred == nil {
		return nil, core.Validation("cannot assess fairness without both y_true and y_pred")
	}
	if len(yTrue) != n || len(yPred) != n {
		return nil, core.Validationf(
			"number of observations mismatch: targets have %d/%d, features have %d", len(yTrue), len(yPred), n)
	}
	if yProb != nil && len(yProb) != n {
		return nil, core.Validationf(
			"number of observations mismatch: probabilities have %d, features have %d", len(yProb), n)
	}

	group := make([]int, n)
	seenPriv := false
	distinct := make(map[int]struct{})
	for i, v := range prtcAttr {
		if math.IsNaN(v) || v != math.Trunc(v) {
			return nil, core.Validationf(
				"protected attribute must hold integer group markers, got %v at row %d", v, i)
		}
		g := int(v)
		group[i] = g
		distinct[g] = struct{}{}
		if g == privGrp {
			seenPriv = true
		}
	}
	if len(distinct) != 2 {
		return nil, core.Validationf(
			"protected attribute must be binary, found %d distinct groups", len(distinct))
	}
	if !seenPriv {
		return nil, core.Validationf("privileged group marker %d not present in protected attribute", privGrp)
	}
	return group, nil
}

// CheckBinary enforces the binary-target restriction for classification
// paths: the union of classes across y_true and y_pred must be exactly
// two. Multiclass inputs are a distinguishable validation failure.
func CheckBinary(yTrue, yPred []float64) error {
	classes := make(map[float64]struct{})
	for _, v := range yTrue {
		if !math.IsNaN(v) {
			classes[v] = struct{}{}
		}
	}
	for _, v := range yPred {
		if !math.IsNaN(v) {
			classes[v] = struct{}{}
		}
	}
	if len(classes) != 2 {
		return core.Validationf(
			"cannot process multiclass or constant classification targets: found %d class(es)", len(classes))
	}
	return nil
}
