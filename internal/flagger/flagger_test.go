package flagger

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairlens/domain/core"
	"fairlens/domain/metrics"
	"fairlens/domain/table"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, CategoryDifference, Classify("Statistical Parity Difference"))
	assert.Equal(t, CategoryDifference, Classify("ppv diff"))
	assert.Equal(t, CategoryRatio, Classify("Disparate Impact Ratio"))
	assert.Equal(t, CategoryStatHighGood, Classify("Consistency Score"))
	assert.Equal(t, CategoryStatLowGood, Classify("Between-Group Gen. Entropy Error"))
	assert.Equal(t, CategoryNone, Classify("Obs."))
	assert.Equal(t, CategoryNone, Classify("Selection Ratio"))
}

func TestOutOfRange_Laws(t *testing.T) {
	cases := []struct {
		name string
		cat  Category
		v    float64
		want bool
	}{
		{"difference inside", CategoryDifference, 0.05, false},
		{"difference at boundary", CategoryDifference, 0.1, true},
		{"difference negative outside", CategoryDifference, -0.3, true},
		{"ratio inside", CategoryRatio, 1.0, false},
		{"ratio low", CategoryRatio, 0.7, true},
		{"ratio high", CategoryRatio, 1.3, true},
		{"ratio at low boundary", CategoryRatio, 0.8, true},
		{"high-good fine", CategoryStatHighGood, 0.9, false},
		{"high-good poor", CategoryStatHighGood, 0.5, true},
		{"low-good fine", CategoryStatLowGood, 0.1, false},
		{"low-good poor", CategoryStatLowGood, 0.5, true},
		{"nan never flags", CategoryRatio, math.NaN(), false},
		{"unknown never flags", CategoryNone, 99.0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, OutOfRange(tc.cat, tc.v))
		})
	}
}

func TestApplyFlag_ColumnsLayout(t *testing.T) {
	tbl := table.New()
	require.NoError(t, tbl.AddColumn(metrics.ColFeatureName, []interface{}{"region", "region", "region"}))
	require.NoError(t, tbl.AddColumn(metrics.ColFeatureValue, []interface{}{"north", "south", "east"}))
	require.NoError(t, tbl.AddColumn("PPV Ratio", []interface{}{0.7, 1.0, 1.3}))
	require.NoError(t, tbl.AddColumn("Obs.", []interface{}{100.0, 200.0, 300.0}))

	f := New()
	styled, err := f.ApplyFlag(tbl, "", 4, true)
	require.NoError(t, err)

	assert.Equal(t, LayoutColumns, f.Layout())
	assert.True(t, styled.Flagged(0, "PPV Ratio"))
	assert.False(t, styled.Flagged(1, "PPV Ratio"))
	assert.True(t, styled.Flagged(2, "PPV Ratio"))
	// Unclassified columns never flag, whatever their values.
	assert.False(t, styled.Flagged(0, "Obs."))
	assert.Equal(t, 2, styled.FlagCount())
	assert.Equal(t, FlagStyle, styled.Style)
}

func TestApplyFlag_IndexLayout(t *testing.T) {
	tbl := table.New()
	require.NoError(t, tbl.AddColumn(metrics.ColMetric, []interface{}{
		metrics.CategoryGroupFairness,
		metrics.CategoryGroupFairness,
		metrics.CategoryIndividualFairness,
		metrics.CategoryModelPerformance,
	}))
	require.NoError(t, tbl.AddColumn(metrics.ColMeasure, []interface{}{
		"Statistical Parity Difference",
		"Disparate Impact Ratio",
		"Consistency Score",
		"Accuracy",
	}))
	require.NoError(t, tbl.AddColumn(metrics.ColValue, []interface{}{0.3, 0.9, 0.5, 0.4}))

	f := New()
	styled, err := f.ApplyFlag(tbl, "Fairness Measures", 4, true)
	require.NoError(t, err)

	assert.Equal(t, LayoutIndex, f.Layout())
	assert.True(t, styled.Flagged(0, metrics.ColValue), "0.3 difference is out of range")
	assert.False(t, styled.Flagged(1, metrics.ColValue), "0.9 ratio is in range")
	assert.True(t, styled.Flagged(2, metrics.ColValue), "0.5 consistency is poor")
	assert.False(t, styled.Flagged(3, metrics.ColValue), "accuracy is never flagged")
}

func TestApplyFlag_NaNCellsNeverFlag(t *testing.T) {
	tbl := table.New()
	require.NoError(t, tbl.AddColumn("TPR Ratio", []interface{}{math.NaN(), 5.0}))

	styled, err := New().ApplyFlag(tbl, "", 4, false)
	require.NoError(t, err)
	assert.False(t, styled.Flagged(0, "TPR Ratio"))
	assert.True(t, styled.Flagged(1, "TPR Ratio"))
}

func TestApplyFlag_DoesNotMutateCaller(t *testing.T) {
	tbl := table.New()
	require.NoError(t, tbl.AddColumn("PPV Ratio", []interface{}{0.123456789}))

	styled, err := New().ApplyFlag(tbl, "", 2, true)
	require.NoError(t, err)
	assert.Equal(t, 0.12, styled.Table.Cell("PPV Ratio", 0))
	assert.Equal(t, 0.123456789, tbl.Cell("PPV Ratio", 0))
}

func TestApplyFlag_InvalidSigFig(t *testing.T) {
	tbl := table.New()
	require.NoError(t, tbl.AddColumn("PPV Ratio", []interface{}{1.0}))

	_, err := New().ApplyFlag(tbl, "", 0, true)
	require.Error(t, err)
	assert.True(t, core.IsCode(err, core.CodeConfigInvalid))

	_, err = New().ApplyFlag(nil, "", 4, true)
	assert.Error(t, err)
}

func TestApplyFlag_DefaultCaption(t *testing.T) {
	tbl := table.New()
	require.NoError(t, tbl.AddColumn("Obs.", []interface{}{1.0}))

	styled, err := New().ApplyFlag(tbl, "", 4, true)
	require.NoError(t, err)
	assert.Equal(t, "Fairness Measures", styled.Caption)
}
