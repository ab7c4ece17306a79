package core

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/bpsim/timing/bp"
	"github.com/sarchlab/bpsim/timing/stats"
)

// TrainingCounter is a predictor hook that reports every weight update to a
// stats sink, attributed to the core of the trained branch.
type TrainingCounter struct {
	sink stats.Sink
}

// NewTrainingCounter creates a TrainingCounter reporting to sink.
func NewTrainingCounter(sink stats.Sink) *TrainingCounter {
	return &TrainingCounter{sink: sink}
}

// Func implements sim.Hook.
func (h *TrainingCounter) Func(ctx sim.HookCtx) {
	if ctx.Pos != bp.HookPosTrain {
		return
	}

	b, ok := ctx.Item.(*bp.Branch)
	if !ok {
		return
	}

	h.sink.Inc(b.CoreID, stats.EventPredictorTrained)
}
