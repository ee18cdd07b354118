package api

import (
	"encoding/json"
	"math"
	"net/http"

	"fairlens/adapters/render"
	"fairlens/app"
	"fairlens/domain/core"
	"fairlens/domain/metrics"
	"fairlens/domain/table"
	"fairlens/internal/report"
)

// reportPayload is the wire form of a report request. Feature columns
// arrive as name-to-cells maps; cells may be numbers, strings, or null.
type reportPayload struct {
	X        map[string][]interface{} `json:"x"`
	Columns  []string                 `json:"columns,omitempty"`
	Y        map[string][]interface{} `json:"y,omitempty"`
	Targets  []string                 `json:"targets,omitempty"`
	PrtcAttr []float64                `json:"prtc_attr,omitempty"`
	YTrue    []float64                `json:"y_true"`
	YPred    []float64                `json:"y_pred"`
	YProb    []float64                `json:"y_prob,omitempty"`

	PredType string   `json:"pred_type,omitempty"`
	SigFig   int      `json:"sig_fig,omitempty"`
	PrivGrp  *int     `json:"priv_grp,omitempty"`
	Features []string `json:"features,omitempty"`
	Flag     bool     `json:"flag,omitempty"`
	Caption  string   `json:"caption,omitempty"`

	Cohorts       map[string][]interface{} `json:"cohorts,omitempty"`
	CohortColumns []string                 `json:"cohort_columns,omitempty"`
}

func decodeRequest(r *http.Request) (app.ReportRequest, *reportPayload, error) {
	var payload reportPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return app.ReportRequest{}, nil, &core.Error{
			Code: core.CodeValidationError, Message: "malformed request body", Cause: err,
		}
	}
	X, err := tableFromColumns(payload.X, payload.Columns)
	if err != nil {
		return app.ReportRequest{}, nil, err
	}

	opts := report.DefaultOptions()
	opts.Features = payload.Features
	if payload.PredType != "" {
		opts.PredType = metrics.PredictionType(payload.PredType)
	}
	if payload.SigFig > 0 {
		opts.SigFig = payload.SigFig
	}
	if payload.PrivGrp != nil {
		opts.PrivGrp = *payload.PrivGrp
	}
	if payload.Cohorts != nil {
		cohorts, err := tableFromColumns(payload.Cohorts, payload.CohortColumns)
		if err != nil {
			return app.ReportRequest{}, nil, err
		}
		opts.Cohorts = cohorts
		opts.CohortColumns = payload.CohortColumns
	}

	req := app.ReportRequest{
		X:        X,
		PrtcAttr: payload.PrtcAttr,
		YTrue:    payload.YTrue,
		YPred:    payload.YPred,
		YProb:    payload.YProb,
		Options:  opts,
		Caption:  payload.Caption,
		Flag:     payload.Flag,
	}
	return req, &payload, nil
}

func (p *reportPayload) targetTable() (*table.Table, error) {
	if p.Y == nil {
		return nil, nil
	}
	return tableFromColumns(p.Y, nil)
}

// tableFromColumns rebuilds a table from the wire map. An explicit
// column list pins ordering; otherwise insertion order is lost to JSON,
// so columns are added in the map's iteration order and sorted later by
// the report assembler anyway.
func tableFromColumns(cols map[string][]interface{}, order []string) (*table.Table, error) {
	if len(cols) == 0 {
		return nil, core.Validation("request carries no feature columns")
	}
	t := table.New()
	add := func(name string) error {
		cells, ok := cols[name]
		if !ok {
			return core.Validationf("declared column %q missing from data", name)
		}
		return t.AddColumn(name, cells)
	}
	if order != nil {
		for _, name := range order {
			if err := add(name); err != nil {
				return nil, err
			}
		}
		return t, nil
	}
	for name := range cols {
		if err := add(name); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// tableJSON is the wire form of a generated report table.
type tableJSON struct {
	Columns []string                 `json:"columns"`
	Rows    []map[string]interface{} `json:"rows"`
}

type resultJSON struct {
	RunID     core.RunID `json:"run_id"`
	Kind      string     `json:"kind"`
	Table     tableJSON  `json:"table"`
	HTML      string     `json:"html,omitempty"`
	Flagged   int        `json:"flagged_cells,omitempty"`
	RuntimeMs int64      `json:"runtime_ms"`
}

type auditJSON struct {
	RunID       core.RunID  `json:"run_id"`
	Summary     *resultJSON `json:"summary"`
	Bias        *resultJSON `json:"bias"`
	Performance *resultJSON `json:"performance"`
	RuntimeMs   int64       `json:"runtime_ms"`
}

func encodeResult(res *app.ReportResult) *resultJSON {
	out := &resultJSON{
		RunID:     res.RunID,
		Kind:      res.Kind,
		Table:     encodeTable(res.Table),
		RuntimeMs: res.RuntimeMs,
	}
	if res.Styled != nil {
		out.Flagged = res.Styled.FlagCount()
		if html, err := render.HTML(res.Styled); err == nil {
			out.HTML = html
		}
	}
	return out
}

func encodeAudit(res *app.AuditResult) *auditJSON {
	return &auditJSON{
		RunID:       res.RunID,
		Summary:     encodeResult(res.Summary),
		Bias:        encodeResult(res.Bias),
		Performance: encodeResult(res.Performance),
		RuntimeMs:   res.RuntimeMs,
	}
}

func encodeTable(t *table.Table) tableJSON {
	out := tableJSON{Columns: t.Columns()}
	for row := 0; row < t.NumRows(); row++ {
		cells := make(map[string]interface{}, len(out.Columns))
		for _, col := range out.Columns {
			cells[col] = jsonCell(t.Cell(col, row))
		}
		out.Rows = append(out.Rows, cells)
	}
	return out
}

// jsonCell keeps NaN out of the encoder, which rejects it.
func jsonCell(v interface{}) interface{} {
	if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return nil
	}
	return v
}
