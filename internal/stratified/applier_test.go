package stratified

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairlens/domain/core"
	"fairlens/domain/metrics"
	"fairlens/domain/table"
)

func sampleTable(t *testing.T) *table.Table {
	t.Helper()
	tbl := table.New()
	require.NoError(t, tbl.AddColumn("region", []interface{}{"north", "south", "north", "south"}))
	require.NoError(t, tbl.AddColumn("language", []interface{}{"english", "english", "spanish", "spanish"}))
	require.NoError(t, tbl.AddColumn("y_true", []interface{}{1.0, 0.0, 1.0, 0.0}))
	require.NoError(t, tbl.AddColumn("y_pred", []interface{}{1.0, 0.0, 0.0, 0.0}))
	return tbl
}

func obsFunc(part metrics.Partition, w metrics.Warner) (*metrics.Result, error) {
	res := metrics.NewResult()
	res.Set(metrics.ColObs, float64(part.Rows.NumRows()))
	return res, nil
}

func TestApplyFeatureGroups_RowKeySchema(t *testing.T) {
	tbl := sampleTable(t)
	out, ledger := ApplyFeatureGroups([]string{"region", "language"}, tbl, obsFunc,
		Binding{YTrue: "y_true", YPred: "y_pred"})

	assert.False(t, ledger.HasIssues())
	assert.Equal(t, 4, out.NumRows())
	assert.Equal(t, []string{metrics.ColFeatureName, metrics.ColFeatureValue, metrics.ColObs}, out.Columns())
	// Values within a feature arrive sorted.
	assert.Equal(t, "region", out.Cell(metrics.ColFeatureName, 0))
	assert.Equal(t, "north", out.Cell(metrics.ColFeatureValue, 0))
	assert.Equal(t, "south", out.Cell(metrics.ColFeatureValue, 1))
	assert.Equal(t, 2.0, out.Cell(metrics.ColObs, 0))
}

func TestApplyFeatureGroups_ErrorIsolation(t *testing.T) {
	tbl := sampleTable(t)
	fn := func(part metrics.Partition, w metrics.Warner) (*metrics.Result, error) {
		if part.Rows.Strings("region")[0] == "north" && part.Rows.NumRows() == 2 &&
			part.Rows.Strings("region")[1] == "north" {
			return nil, core.Compute("unstable partition")
		}
		return obsFunc(part, w)
	}
	out, ledger := ApplyFeatureGroups([]string{"region", "language"}, tbl, fn,
		Binding{YTrue: "y_true", YPred: "y_pred"})

	// The failing region=north partition is dropped; region=south and both
	// language partitions survive.
	assert.Equal(t, 3, out.NumRows())
	errs := ledger.Errors()
	require.Contains(t, errs, "region")
	assert.True(t, core.IsCode(errs["region"], core.CodeComputeError))
	assert.NotContains(t, errs, "language")
}

func TestApplyFeatureGroups_PanicIsolation(t *testing.T) {
	tbl := sampleTable(t)
	fn := func(part metrics.Partition, w metrics.Warner) (*metrics.Result, error) {
		if part.Rows.Strings("language")[0] == "spanish" {
			panic("division by zero")
		}
		return obsFunc(part, w)
	}
	out, ledger := ApplyFeatureGroups([]string{"language"}, tbl, fn,
		Binding{YTrue: "y_true", YPred: "y_pred"})

	assert.Equal(t, 1, out.NumRows())
	assert.Equal(t, "english", out.Cell(metrics.ColFeatureValue, 0))
	errs := ledger.Errors()
	require.Contains(t, errs, "language")
	assert.Contains(t, errs["language"].Error(), "panicked")
}

func TestApplyFeatureGroups_MissingFeature(t *testing.T) {
	tbl := sampleTable(t)
	out, ledger := ApplyFeatureGroups([]string{"no_such"}, tbl, obsFunc, Binding{})

	assert.Equal(t, 0, out.NumRows())
	assert.Equal(t, []string{metrics.ColFeatureName, metrics.ColFeatureValue}, out.Columns())
	assert.Contains(t, ledger.Errors(), "no_such")
}

func TestApplyFeatureGroups_MissingValuePartition(t *testing.T) {
	tbl := table.New()
	require.NoError(t, tbl.AddColumn("insurance", []interface{}{"private", nil, "private", math.NaN()}))
	out, ledger := ApplyFeatureGroups([]string{"insurance"}, tbl, obsFunc, Binding{})

	// nil and NaN collapse into one missing-sentinel partition.
	assert.False(t, ledger.HasIssues())
	require.Equal(t, 2, out.NumRows())
	assert.Equal(t, table.Missing, out.Cell(metrics.ColFeatureValue, 0))
	assert.Equal(t, 2.0, out.Cell(metrics.ColObs, 0))
	assert.Equal(t, "private", out.Cell(metrics.ColFeatureValue, 1))
}

func TestApplyFeatureGroups_WarningsRecorded(t *testing.T) {
	tbl := sampleTable(t)
	fn := func(part metrics.Partition, w metrics.Warner) (*metrics.Result, error) {
		w.Warnf("ill-conditioned sample of %d rows", part.Rows.NumRows())
		return obsFunc(part, w)
	}
	out, ledger := ApplyFeatureGroups([]string{"region"}, tbl, fn,
		Binding{YTrue: "y_true", YPred: "y_pred"})

	// Warnings never drop rows.
	assert.Equal(t, 2, out.NumRows())
	assert.Equal(t, map[string]int{"region": 2}, ledger.WarningCounts())
}
