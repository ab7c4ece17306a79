// Package latency provides the cycle cost model for trace records.
package latency

import (
	"github.com/sarchlab/bpsim/loader"
)

// Table provides latency lookups for trace records.
type Table struct {
	config *TimingConfig
}

// NewTable creates a latency table with default timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a latency table with custom timing values.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// GetLatency returns the base cost of a record in cycles.
func (t *Table) GetLatency(rec loader.Record) uint64 {
	switch rec.Kind {
	case loader.KindBranch:
		return t.config.BranchLatency
	case loader.KindLoad:
		return t.config.LoadLatency
	case loader.KindStore:
		return t.config.StoreLatency
	default:
		return 1
	}
}

// MispredictPenalty returns the cycles lost on a branch misprediction.
func (t *Table) MispredictPenalty() uint64 {
	return t.config.BranchMispredictPenalty
}

// IsMemoryOp returns true if the record accesses memory.
func (t *Table) IsMemoryOp(rec loader.Record) bool {
	return rec.Kind == loader.KindLoad || rec.Kind == loader.KindStore
}

// Config returns the timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
