package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairlens/domain/metrics"
	"fairlens/domain/table"
	"fairlens/internal/logging"
	"fairlens/internal/report"
	"fairlens/internal/testkit"
)

func testRequest(t *testing.T) ReportRequest {
	t.Helper()
	config := testkit.DefaultConfig()
	config.RowCount = 120
	ds := testkit.New(config).Generate()

	opts := report.DefaultOptions()
	opts.Log = logging.New(logging.LevelError)
	return ReportRequest{
		X:        ds.X,
		PrtcAttr: ds.PrtcAttr,
		YTrue:    ds.YTrue,
		YPred:    ds.YPred,
		YProb:    ds.YProb,
		Options:  opts,
	}
}

func TestReportService_Performance(t *testing.T) {
	svc := NewReportService(logging.New(logging.LevelError))
	res, err := svc.Performance(context.Background(), testRequest(t))
	require.NoError(t, err)

	assert.Equal(t, "performance", res.Kind)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, metrics.OverviewFeature, res.Table.Cell(metrics.ColFeatureName, 0))
	assert.Nil(t, res.Styled)
}

func TestReportService_FlaggedSummary(t *testing.T) {
	svc := NewReportService(logging.New(logging.LevelError))

	config := testkit.DefaultConfig()
	config.RowCount = 400
	config.GroupBias = 0.40
	ds := testkit.New(config).Generate()

	opts := report.DefaultOptions()
	opts.Log = logging.New(logging.LevelError)
	req := ReportRequest{
		X:        ds.X,
		PrtcAttr: ds.PrtcAttr,
		YTrue:    ds.YTrue,
		YPred:    ds.YPred,
		YProb:    ds.YProb,
		Options:  opts,
		Flag:     true,
	}
	res, err := svc.Summary(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, res.Styled)
	assert.Equal(t, "Fairness Measures", res.Styled.Caption)
	// The generator biases predictions against the unprivileged group, so
	// at least one fairness measure should land out of range.
	assert.Greater(t, res.Styled.FlagCount(), 0)
}

func TestReportService_PrivilegedZeroHonored(t *testing.T) {
	svc := NewReportService(logging.New(logging.LevelError))

	X := table.New()
	require.NoError(t, X.AddColumn("age", []interface{}{
		34.0, 52.0, 41.0, 29.0, 63.0, 45.0, 38.0, 57.0}))
	req := ReportRequest{
		X:        X,
		PrtcAttr: []float64{1, 1, 1, 1, 0, 0, 0, 0},
		YTrue:    []float64{1, 0, 1, 0, 1, 0, 1, 0},
		// Selection rate 0.75 for group 1, 0.25 for group 0.
		YPred:   []float64{1, 1, 1, 0, 0, 0, 0, 1},
		Options: report.DefaultOptions(),
	}
	req.Options.Log = logging.New(logging.LevelError)

	res, err := svc.Summary(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, -0.5, summaryValue(t, res.Table, "Statistical Parity Difference"))

	// An explicit zero marks group 0 as privileged and flips the sign.
	req.Options.PrivGrp = 0
	res, err = svc.Summary(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0.5, summaryValue(t, res.Table, "Statistical Parity Difference"))
}

func summaryValue(t *testing.T, tbl *table.Table, measure string) float64 {
	t.Helper()
	for i, m := range tbl.Strings(metrics.ColMeasure) {
		if m == measure {
			v, ok := tbl.Cell(metrics.ColValue, i).(float64)
			require.True(t, ok)
			return v
		}
	}
	t.Fatalf("measure %q not found", measure)
	return 0
}

func TestReportService_FullAudit(t *testing.T) {
	svc := NewReportService(logging.New(logging.LevelError))
	audit, err := svc.FullAudit(context.Background(), testRequest(t))
	require.NoError(t, err)

	require.NotNil(t, audit.Summary)
	require.NotNil(t, audit.Bias)
	require.NotNil(t, audit.Performance)
	assert.Equal(t, "summary", audit.Summary.Kind)
	assert.Greater(t, audit.Bias.Table.NumRows(), 0)
}

func TestReportService_Data(t *testing.T) {
	svc := NewReportService(logging.New(logging.LevelError))
	res, err := svc.Data(context.Background(), testRequest(t), nil, nil)
	require.NoError(t, err)

	assert.True(t, res.Table.Has(metrics.DisplayTrue+" Mean"))
	assert.True(t, res.Table.Has("Entropy"))
}

func TestReportService_CancelledContext(t *testing.T) {
	svc := NewReportService(logging.New(logging.LevelError))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Performance(ctx, testRequest(t))
	assert.Error(t, err)
}
