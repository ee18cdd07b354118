package core

import (
	"github.com/google/uuid"
)

// RunID identifies a single applier sweep. It tags the sweep's ledger and
// every log line the sweep emits so interleaved runs can be told apart.
type RunID string

// NewRunID creates a time-ordered run identifier.
func NewRunID() RunID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return RunID(id.String())
}

func (r RunID) String() string {
	return string(r)
}

// Short returns an abbreviated form suitable for log prefixes.
func (r RunID) Short() string {
	if len(r) >= 8 {
		return string(r[:8])
	}
	return string(r)
}
