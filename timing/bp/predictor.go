// Package bp implements a perceptron branch direction predictor.
//
// Each simulated core owns a table of perceptrons indexed by a hash of the
// branch address and the global history. A perceptron predicts taken when the
// signed sum of its weights against the history bits is non-negative, and is
// trained on resolution when it mispredicts or its output is within the
// training threshold.
package bp

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"
)

// HookPosPredict marks a prediction. Item is the *Branch, Detail an Outcome.
var HookPosPredict = &sim.HookPos{Name: "BP Predict"}

// HookPosTrain marks a weight update. Item is the *Branch, Detail an Outcome.
var HookPosTrain = &sim.HookPos{Name: "BP Train"}

// Outcome is the hook detail for HookPosPredict and HookPosTrain.
type Outcome struct {
	Index     uint32
	Output    int32
	Direction Direction
}

// Stats holds statistics for the branch predictor.
type Stats struct {
	// Predictions is the total number of branch predictions made.
	Predictions uint64
	// Correct is the number of resolved conditional branches whose
	// recomputed prediction matched the outcome.
	Correct uint64
	// Mispredictions is the number of incorrect predictions.
	Mispredictions uint64
	// Trainings is the number of times the training gate fired.
	Trainings uint64
}

// Accuracy returns the prediction accuracy as a percentage.
func (s Stats) Accuracy() float64 {
	total := s.Correct + s.Mispredictions
	if total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(total) * 100
}

// MispredictionRate returns the misprediction rate as a percentage.
func (s Stats) MispredictionRate() float64 {
	total := s.Correct + s.Mispredictions
	if total == 0 {
		return 0
	}
	return float64(s.Mispredictions) / float64(total) * 100
}

func (s Stats) add(o Stats) Stats {
	return Stats{
		Predictions:    s.Predictions + o.Predictions,
		Correct:        s.Correct + o.Correct,
		Mispredictions: s.Mispredictions + o.Mispredictions,
		Trainings:      s.Trainings + o.Trainings,
	}
}

// Predictor is a perceptron predictor with one table per simulated core.
//
// Calls for one core must not run concurrently. Different cores share no
// state apart from hooks and may be driven from different goroutines.
type Predictor struct {
	*sim.HookableBase
	NopHooks

	config      Config
	bounds      Bounds
	threshold   int32
	indexMask   uint64
	historyMask uint64

	// tables[core][index]
	tables [][]Perceptron
	stats  []Stats
}

// NewPredictor creates a predictor with zeroed weights. Zero-valued fields
// of config take their defaults. It panics if the resulting configuration is
// invalid.
func NewPredictor(config Config) *Predictor {
	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		panic(fmt.Sprintf("bp: invalid config: %v", err))
	}

	p := &Predictor{
		HookableBase: sim.NewHookableBase(),
		config:       config,
		bounds:       config.Bounds(),
		threshold:    config.Threshold(),
		indexMask:    uint64(config.TableSize - 1),
		historyMask:  maskBits(config.HistoryLength),
		tables:       make([][]Perceptron, config.NumCores),
		stats:        make([]Stats, config.NumCores),
	}

	for core := range p.tables {
		table := make([]Perceptron, config.TableSize)
		for i := range table {
			table[i] = newPerceptron(config.HistoryLength)
		}
		p.tables[core] = table
	}

	return p
}

func maskBits(n uint) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << n) - 1
}

// Config returns the effective configuration.
func (p *Predictor) Config() Config {
	return p.config
}

// Threshold returns the training threshold.
func (p *Predictor) Threshold() int32 {
	return p.threshold
}

// Bounds returns the weight saturation bounds.
func (p *Predictor) Bounds() Bounds {
	return p.bounds
}

// Index maps a fetch address and history snapshot to a table slot by XORing
// the aligned address bits with the low history bits.
func (p *Predictor) Index(addr, history uint64) uint32 {
	addrIdx := (addr >> p.config.AlignShift) & p.indexMask
	histIdx := history & p.indexMask
	return uint32(addrIdx ^ histIdx)
}

func (p *Predictor) table(coreID int) []Perceptron {
	if coreID < 0 || coreID >= len(p.tables) {
		panic(fmt.Sprintf("bp: core %d out of range [0, %d)", coreID, len(p.tables)))
	}
	return p.tables[coreID]
}

// Predict returns the predicted direction of b and stores |y| in
// b.Confidence.
func (p *Predictor) Predict(b *Branch) Direction {
	table := p.table(b.CoreID)
	idx := p.Index(b.Addr, b.History)
	y := table[idx].Output(b.History)
	dir := directionOf(y)

	b.Confidence = abs32(y)
	p.stats[b.CoreID].Predictions++

	if tracing() {
		trace("perceptron predict",
			"core", b.CoreID,
			"op", b.ID,
			"index", idx,
			"output", y,
			"dir", dir.String(),
		)
	}
	p.invoke(HookPosPredict, b, idx, y, dir)

	return dir
}

// Update trains the perceptron that predicted b and returns the advanced
// global history, which is also written back to b.History.
//
// b.History must still hold the snapshot used by Predict so that the same
// entry is trained. Unconditional branches are ignored and their history is
// returned unchanged. Update is not idempotent.
func (p *Predictor) Update(b *Branch) uint64 {
	if !b.Conditional {
		return b.History
	}

	table := p.table(b.CoreID)
	idx := p.Index(b.Addr, b.History)
	entry := &table[idx]

	y := entry.Output(b.History)
	pred := directionOf(y)

	stats := &p.stats[b.CoreID]
	if pred == b.Actual {
		stats.Correct++
	} else {
		stats.Mispredictions++
	}

	if pred != b.Actual || abs32(y) <= p.threshold {
		entry.Train(b.History, b.Actual == Taken, p.bounds)
		stats.Trainings++

		if tracing() {
			trace("perceptron train",
				"core", b.CoreID,
				"op", b.ID,
				"index", idx,
				"output", y,
				"actual", b.Actual.String(),
			)
		}
		p.invoke(HookPosTrain, b, idx, y, pred)
	}

	b.History = p.advance(b.History, b.Actual)

	if tracing() {
		trace("ghr updated", "core", b.CoreID, "ghr", b.History)
	}

	return b.History
}

// advance shifts the outcome into bit 0 of history.
func (p *Predictor) advance(history uint64, actual Direction) uint64 {
	next := history << 1
	if actual == Taken {
		next |= 1
	}
	return next & p.historyMask
}

func (p *Predictor) invoke(
	pos *sim.HookPos,
	b *Branch,
	idx uint32,
	y int32,
	dir Direction,
) {
	if p.NumHooks() == 0 {
		return
	}

	p.InvokeHook(sim.HookCtx{
		Domain: p,
		Pos:    pos,
		Item:   b,
		Detail: Outcome{Index: idx, Output: y, Direction: dir},
	})
}

// Weights returns a copy of the weights of one table entry.
func (p *Predictor) Weights(coreID int, index uint32) []Weight {
	entry := p.table(coreID)[index]
	out := make([]Weight, len(entry.Weights))
	copy(out, entry.Weights)
	return out
}

// SetWeights overwrites one table entry. Each value is clamped to the weight
// bounds. It panics if len(weights) is not HistoryLength+1.
func (p *Predictor) SetWeights(coreID int, index uint32, weights []int32) {
	entry := p.table(coreID)[index]
	if len(weights) != len(entry.Weights) {
		panic(fmt.Sprintf("bp: expected %d weights, got %d",
			len(entry.Weights), len(weights)))
	}

	for i, w := range weights {
		entry.Weights[i] = p.bounds.Clamp(w)
	}
}

// Stats returns the statistics summed over all cores.
func (p *Predictor) Stats() Stats {
	var total Stats
	for _, s := range p.stats {
		total = total.add(s)
	}
	return total
}

// CoreStats returns the statistics of one core.
func (p *Predictor) CoreStats(coreID int) Stats {
	p.table(coreID)
	return p.stats[coreID]
}

// Reset zeroes every weight and clears all statistics.
func (p *Predictor) Reset() {
	for _, table := range p.tables {
		for i := range table {
			table[i].reset()
		}
	}

	for i := range p.stats {
		p.stats[i] = Stats{}
	}
}
