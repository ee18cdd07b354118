package stratified

import (
	"fmt"
	"sort"
	"strings"

	"fairlens/domain/core"
	"fairlens/internal/logging"
)

// Warnings collects non-fatal diagnostics raised during one metric
// invocation. It satisfies metrics.Warner. The applier owns one collector
// per partition and files its contents in the sweep ledger.
type Warnings struct {
	msgs []string
}

// Warnf records a warning message.
func (w *Warnings) Warnf(format string, args ...interface{}) {
	w.msgs = append(w.msgs, fmt.Sprintf(format, args...))
}

// Messages returns the collected warnings.
func (w *Warnings) Messages() []string {
	return w.msgs
}

// Len returns the number of collected warnings.
func (w *Warnings) Len() int {
	return len(w.msgs)
}

// Ledger records per-feature errors and warnings captured during a single
// applier sweep. Created fresh per sweep, populated during the sweep,
// consumed exactly once by Report, then discarded.
type Ledger struct {
	Run      core.RunID
	errs     map[string]error
	warns    map[string][]string
	reported bool
}

// NewLedger creates an empty ledger tagged with a fresh run id.
func NewLedger() *Ledger {
	return &Ledger{
		Run:   core.NewRunID(),
		errs:  make(map[string]error),
		warns: make(map[string][]string),
	}
}

// RecordError files an error against a feature. A later error for the same
// feature replaces the earlier one, matching last-failure-wins semantics.
func (l *Ledger) RecordError(feature string, err error) {
	if err == nil {
		return
	}
	l.errs[feature] = err
}

// RecordWarnings files warning messages against a feature.
func (l *Ledger) RecordWarnings(feature string, msgs []string) {
	if len(msgs) == 0 {
		return
	}
	l.warns[feature] = append(l.warns[feature], msgs...)
}

// Errors returns a copy of the recorded errors keyed by feature.
func (l *Ledger) Errors() map[string]error {
	out := make(map[string]error, len(l.errs))
	for k, v := range l.errs {
		out[k] = v
	}
	return out
}

// WarningCounts returns the number of warnings recorded per feature.
func (l *Ledger) WarningCounts() map[string]int {
	out := make(map[string]int, len(l.warns))
	for k, v := range l.warns {
		out[k] = len(v)
	}
	return out
}

// HasIssues reports whether any error or warning was recorded.
func (l *Ledger) HasIssues() bool {
	return len(l.errs) > 0 || len(l.warns) > 0
}

// Reported reports whether the ledger has been consumed.
func (l *Ledger) Reported() bool {
	return l.reported
}

// Report emits one consolidated human-readable summary of the sweep's
// failures and warnings, showing at most limit entries of each kind. It
// never re-raises; this is strictly an observability step. A ledger is
// consumed at most once — repeat calls are no-ops.
func (l *Ledger) Report(log *logging.Logger, limit int) {
	if l.reported {
		return
	}
	l.reported = true
	if limit <= 0 {
		limit = 5
	}
	if len(l.errs) > 0 {
		feats := sortedKeys(l.errs)
		shown := feats
		if len(shown) > limit {
			shown = shown[:limit]
		}
		var parts []string
		for _, f := range shown {
			parts = append(parts, fmt.Sprintf("%s: %v", f, l.errs[f]))
		}
		suffix := ""
		if len(feats) > limit {
			suffix = fmt.Sprintf(" (and %d more)", len(feats)-limit)
		}
		log.Warn("[run %s] %d feature(s) skipped due to errors: %s%s",
			l.Run.Short(), len(feats), strings.Join(parts, "; "), suffix)
	}
	if len(l.warns) > 0 {
		feats := make([]string, 0, len(l.warns))
		for f := range l.warns {
			feats = append(feats, f)
		}
		sort.Strings(feats)
		shown := feats
		if len(shown) > limit {
			shown = shown[:limit]
		}
		var parts []string
		for _, f := range shown {
			parts = append(parts, fmt.Sprintf("%s: %d warning(s)", f, len(l.warns[f])))
		}
		suffix := ""
		if len(feats) > limit {
			suffix = fmt.Sprintf(" (and %d more)", len(feats)-limit)
		}
		log.Warn("[run %s] warnings captured during sweep: %s%s",
			l.Run.Short(), strings.Join(parts, "; "), suffix)
	}
}

func sortedKeys(m map[string]error) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
