// Package core provides a trace-driven host for one simulated core.
// It owns the core's committed global history and drives the branch
// predictor and data cache with trace records.
package core

import (
	"github.com/sarchlab/bpsim/loader"
	"github.com/sarchlab/bpsim/timing/bp"
	"github.com/sarchlab/bpsim/timing/cache"
	"github.com/sarchlab/bpsim/timing/latency"
	"github.com/sarchlab/bpsim/timing/stats"
)

// Stats holds performance statistics for the core.
type Stats struct {
	// Branches is the number of branch records executed.
	Branches uint64
	// CondBranches is the number of conditional branches executed.
	CondBranches uint64
	// Mispredictions is the number of branches whose predicted direction
	// differed from the outcome.
	Mispredictions uint64
	// Loads and Stores count memory records.
	Loads  uint64
	Stores uint64
	// MemCycles is the sum of memory access latencies.
	MemCycles uint64
	// Cycles is the total cost of all records, including misprediction
	// penalties.
	Cycles uint64
}

// MispredictionRate returns mispredictions per conditional branch as a
// percentage.
func (s Stats) MispredictionRate() float64 {
	if s.CondBranches == 0 {
		return 0
	}
	return float64(s.Mispredictions) / float64(s.CondBranches) * 100
}

// CPB returns cycles per branch.
func (s Stats) CPB() float64 {
	if s.Branches == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Branches)
}

// Core replays trace records of one core.
type Core struct {
	id        int
	predictor *bp.Predictor
	hooks     bp.Hooks
	dcache    *cache.Cache
	latency   *latency.Table
	sink      stats.Sink

	history uint64
	nextOp  uint64
	stats   Stats
}

// Option configures a Core.
type Option func(c *Core)

// WithDCache attaches a data cache for load and store records.
func WithDCache(dc *cache.Cache) Option {
	return func(c *Core) {
		c.dcache = dc
	}
}

// WithLatencyTable sets the cycle cost model.
func WithLatencyTable(t *latency.Table) Option {
	return func(c *Core) {
		c.latency = t
	}
}

// WithHooks replaces the predictor's own pipeline hooks, e.g. with a
// speculative variant wrapping the same predictor.
func WithHooks(h bp.Hooks) Option {
	return func(c *Core) {
		c.hooks = h
	}
}

// WithStatsSink reports prediction and misprediction events to sink.
// Trainings are reported by a TrainingCounter on the predictor.
func WithStatsSink(sink stats.Sink) Option {
	return func(c *Core) {
		c.sink = sink
	}
}

// NewCore creates a Core that predicts with the given predictor's table for
// core id.
func NewCore(id int, predictor *bp.Predictor, opts ...Option) *Core {
	c := &Core{
		id:        id,
		predictor: predictor,
		hooks:     predictor,
		latency:   latency.NewTable(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ID returns the core id.
func (c *Core) ID() int {
	return c.id
}

// History returns the committed global history.
func (c *Core) History() uint64 {
	return c.history
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	return c.stats
}

// Execute runs one record. Records of other cores are ignored.
func (c *Core) Execute(rec loader.Record) {
	if rec.CoreID != c.id {
		return
	}

	switch rec.Kind {
	case loader.KindBranch:
		c.executeBranch(rec)
	case loader.KindLoad:
		c.stats.Loads++
		c.memAccess(rec, func() uint64 {
			return c.dcache.Read(rec.Addr).Latency
		})
	case loader.KindStore:
		c.stats.Stores++
		c.memAccess(rec, func() uint64 {
			return c.dcache.Write(rec.Addr).Latency
		})
	}
}

// memAccess charges the cache latency when a data cache is attached, and
// the flat record latency otherwise.
func (c *Core) memAccess(rec loader.Record, access func() uint64) {
	lat := c.latency.GetLatency(rec)
	if c.dcache != nil {
		lat = access()
	}
	c.stats.MemCycles += lat
	c.stats.Cycles += lat
}

func (c *Core) executeBranch(rec loader.Record) {
	c.stats.Branches++
	c.stats.Cycles += c.latency.GetLatency(rec)
	c.nextOp++

	b := &bp.Branch{
		ID:          c.nextOp,
		CoreID:      c.id,
		Addr:        rec.Addr,
		History:     c.history,
		Conditional: !rec.Unconditional,
		Actual:      bp.DirectionOf(rec.Taken),
	}

	c.hooks.Timestamp(b)

	if !b.Conditional {
		c.hooks.Retire(b)
		return
	}

	c.stats.CondBranches++
	pred := c.predictor.Predict(b)
	c.inc(stats.EventBranchPredicted)
	c.hooks.SpecUpdate(b)

	c.history = c.predictor.Update(b)

	if pred != b.Actual {
		c.stats.Mispredictions++
		c.stats.Cycles += c.latency.MispredictPenalty()
		c.inc(stats.EventBranchMispredicted)
		c.hooks.Recover(bp.RecoveryInfo{
			CoreID:   c.id,
			BranchID: b.ID,
			History:  c.history,
		})
	}

	c.hooks.Retire(b)
}

func (c *Core) inc(ev stats.Event) {
	if c.sink != nil {
		c.sink.Inc(c.id, ev)
	}
}

// Run executes records in order.
func (c *Core) Run(records []loader.Record) {
	for _, rec := range records {
		c.Execute(rec)
	}
}

// Reset clears the history and statistics of the core. The predictor and
// cache are shared resources and are reset by their owners.
func (c *Core) Reset() {
	c.history = 0
	c.nextOp = 0
	c.stats = Stats{}
}
