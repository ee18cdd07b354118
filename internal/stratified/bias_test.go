package stratified

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairlens/domain/metrics"
	"fairlens/domain/table"
)

// groupCountFunc records the membership split it received.
func groupCountFunc(captured *[][]int) metrics.BiasFunc {
	return func(yTrue, yPred []float64, group []int, privGrp int, w metrics.Warner) (*metrics.Result, error) {
		cp := make([]int, len(group))
		copy(cp, group)
		*captured = append(*captured, cp)
		members := 0.0
		for _, g := range group {
			if g == 1 {
				members++
			}
		}
		res := metrics.NewResult()
		res.Set("Members", members)
		return res, nil
	}
}

func TestApplyBiasGroups_MembershipIndicator(t *testing.T) {
	tbl := table.New()
	require.NoError(t, tbl.AddColumn("region", []interface{}{"north", "south", "north", "south"}))
	require.NoError(t, tbl.AddColumn("y_true", []interface{}{1.0, 0.0, 1.0, 0.0}))
	require.NoError(t, tbl.AddColumn("y_pred", []interface{}{1.0, 0.0, 0.0, 1.0}))

	var captured [][]int
	out, ledger := ApplyBiasGroups([]string{"region"}, tbl, groupCountFunc(&captured),
		Binding{YTrue: "y_true", YPred: "y_pred"}, 1)

	assert.False(t, ledger.HasIssues())
	require.Equal(t, 2, out.NumRows())
	// north first (sorted), indicator marks rows 0 and 2.
	assert.Equal(t, "north", out.Cell(metrics.ColFeatureValue, 0))
	assert.Equal(t, 2.0, out.Cell("Members", 0))
	require.Len(t, captured, 2)
	assert.Equal(t, []int{1, 0, 1, 0}, captured[0])
	assert.Equal(t, []int{0, 1, 0, 1}, captured[1])
}

func TestApplyBiasGroups_MissingRowsExcluded(t *testing.T) {
	tbl := table.New()
	require.NoError(t, tbl.AddColumn("insurance", []interface{}{"private", nil, "medicare", "private"}))
	require.NoError(t, tbl.AddColumn("y_true", []interface{}{1.0, 0.0, 1.0, 0.0}))
	require.NoError(t, tbl.AddColumn("y_pred", []interface{}{1.0, 0.0, 0.0, 1.0}))

	var captured [][]int
	out, _ := ApplyBiasGroups([]string{"insurance"}, tbl, groupCountFunc(&captured),
		Binding{YTrue: "y_true", YPred: "y_pred"}, 1)

	// Three values in sorted order: medicare, the missing sentinel, private.
	// For the non-missing values the nil row is excluded from the
	// comparison; the sentinel value keeps every row.
	require.Equal(t, 3, out.NumRows())
	assert.Equal(t, "medicare", out.Cell(metrics.ColFeatureValue, 0))
	assert.Equal(t, table.Missing, out.Cell(metrics.ColFeatureValue, 1))
	require.Len(t, captured, 3)
	assert.Len(t, captured[0], 3)
	assert.Len(t, captured[1], 4)
	assert.Len(t, captured[2], 3)
}

func TestApplyBiasGroups_SingleGroupSkipped(t *testing.T) {
	tbl := table.New()
	require.NoError(t, tbl.AddColumn("constant", []interface{}{"only", "only", "only"}))
	require.NoError(t, tbl.AddColumn("y_true", []interface{}{1.0, 0.0, 1.0}))
	require.NoError(t, tbl.AddColumn("y_pred", []interface{}{1.0, 0.0, 0.0}))

	var captured [][]int
	out, ledger := ApplyBiasGroups([]string{"constant"}, tbl, groupCountFunc(&captured),
		Binding{YTrue: "y_true", YPred: "y_pred"}, 1)

	// Everyone belongs to the value, so there is no comparison group.
	assert.Empty(t, captured)
	assert.Equal(t, 0, out.NumRows())
	assert.False(t, ledger.HasIssues())
}
