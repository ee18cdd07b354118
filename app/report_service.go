package app

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"fairlens/domain/core"
	"fairlens/domain/metrics"
	"fairlens/domain/table"
	"fairlens/internal/flagger"
	"fairlens/internal/logging"
	"fairlens/internal/report"
)

// ReportService is the application entry point for fairness reporting.
// It assembles the stratified tables, applies out-of-range flagging, and
// tags every run with an ID for log correlation.
type ReportService struct {
	log *logging.Logger
}

// NewReportService creates a report service
func NewReportService(log *logging.Logger) *ReportService {
	if log == nil {
		log = logging.Default
	}
	return &ReportService{log: log}
}

// ReportRequest defines the inputs shared by every report kind
type ReportRequest struct {
	X        *table.Table
	PrtcAttr []float64
	YTrue    []float64
	YPred    []float64
	YProb    []float64
	Options  report.Options
	Caption  string
	Flag     bool
}

// ReportResult contains one generated report
type ReportResult struct {
	RunID     core.RunID       `json:"run_id"`
	Kind      string           `json:"kind"`
	Table     *table.Table     `json:"-"`
	Styled    *flagger.Styled  `json:"-"`
	RuntimeMs int64            `json:"runtime_ms"`
}

// AuditResult bundles the three model-facing reports of one dataset
type AuditResult struct {
	RunID       core.RunID    `json:"run_id"`
	Summary     *ReportResult `json:"summary"`
	Bias        *ReportResult `json:"bias"`
	Performance *ReportResult `json:"performance"`
	RuntimeMs   int64         `json:"runtime_ms"`
}

// Summary computes the fairness summary report.
func (s *ReportService) Summary(ctx context.Context, req ReportRequest) (*ReportResult, error) {
	return s.run(ctx, "summary", req, func() (*table.Table, error) {
		return report.Summary(req.X, req.PrtcAttr, req.YTrue, req.YPred, req.YProb, s.options(req))
	})
}

// Bias computes the stratified bias report.
func (s *ReportService) Bias(ctx context.Context, req ReportRequest) (*ReportResult, error) {
	return s.run(ctx, "bias", req, func() (*table.Table, error) {
		return report.Bias(req.X, req.YTrue, req.YPred, s.options(req))
	})
}

// Performance computes the stratified performance report.
func (s *ReportService) Performance(ctx context.Context, req ReportRequest) (*ReportResult, error) {
	return s.run(ctx, "performance", req, func() (*table.Table, error) {
		return report.Performance(req.X, req.YTrue, req.YPred, req.YProb, s.options(req))
	})
}

// Data computes the stratified data report. The target table holds the
// columns to describe; when nil the true and predicted vectors are used.
func (s *ReportService) Data(ctx context.Context, req ReportRequest, Y *table.Table, targets []string) (*ReportResult, error) {
	if Y == nil {
		Y = table.New()
		_ = Y.AddColumn(metrics.DisplayTrue, floatCells(req.YTrue))
		if req.YPred != nil {
			_ = Y.AddColumn(metrics.DisplayPred, floatCells(req.YPred))
		}
	}
	return s.run(ctx, "data", req, func() (*table.Table, error) {
		return report.Data(req.X, Y, req.Options.Features, targets, s.options(req))
	})
}

// FullAudit runs the summary, bias, and performance reports concurrently
// over the same inputs. Reports never mutate their inputs, so the three
// sweeps share the request safely.
func (s *ReportService) FullAudit(ctx context.Context, req ReportRequest) (*AuditResult, error) {
	startTime := time.Now()
	audit := &AuditResult{RunID: core.NewRunID()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := s.Summary(gctx, req)
		if err != nil {
			return core.Wrap(err, "summary report failed")
		}
		audit.Summary = res
		return nil
	})
	g.Go(func() error {
		res, err := s.Bias(gctx, req)
		if err != nil {
			return core.Wrap(err, "bias report failed")
		}
		audit.Bias = res
		return nil
	})
	g.Go(func() error {
		res, err := s.Performance(gctx, req)
		if err != nil {
			return core.Wrap(err, "performance report failed")
		}
		audit.Performance = res
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	audit.RuntimeMs = time.Since(startTime).Milliseconds()
	s.log.Info("audit %s complete in %dms", audit.RunID.Short(), audit.RuntimeMs)
	return audit, nil
}

func (s *ReportService) run(ctx context.Context, kind string, req ReportRequest, compute func() (*table.Table, error)) (*ReportResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, core.Wrap(err, "report cancelled")
	}
	startTime := time.Now()
	runID := core.NewRunID()
	s.log.Debug("run %s: %s report started", runID.Short(), kind)

	result, err := compute()
	if err != nil {
		s.log.Error("run %s: %s report failed: %v", runID.Short(), kind, err)
		return nil, err
	}

	res := &ReportResult{
		RunID:     runID,
		Kind:      kind,
		Table:     result,
		RuntimeMs: time.Since(startTime).Milliseconds(),
	}
	if req.Flag {
		// Each run gets a fresh flagger so concurrent audits never share
		// bind state.
		styled, err := flagger.New().ApplyFlag(result, req.Caption, s.options(req).SigFig, true)
		if err != nil {
			return nil, err
		}
		res.Styled = styled
	}
	s.log.Info("run %s: %s report complete in %dms (%d rows)",
		runID.Short(), kind, res.RuntimeMs, result.NumRows())
	return res, nil
}

// options fills unset request options with the canonical defaults.
// PrivGrp is left alone: zero is a legitimate privileged-group marker, so
// its default comes from report.DefaultOptions rather than from here.
func (s *ReportService) options(req ReportRequest) report.Options {
	opts := req.Options
	if opts.PredType == "" {
		opts.PredType = metrics.Classification
	}
	if opts.SigFig == 0 {
		opts.SigFig = report.DefaultSigFig
	}
	if opts.ErrLimit == 0 {
		opts.ErrLimit = 5
	}
	if opts.Log == nil {
		opts.Log = s.log
	}
	return opts
}

func floatCells(vals []float64) []interface{} {
	cells := make([]interface{}, len(vals))
	for i, v := range vals {
		cells[i] = v
	}
	return cells
}
