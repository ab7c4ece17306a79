package core

import (
	"fmt"

	"github.com/sourcegraph/conc/pool"

	"github.com/sarchlab/bpsim/loader"
	"github.com/sarchlab/bpsim/timing/bp"
	"github.com/sarchlab/bpsim/timing/cache"
	"github.com/sarchlab/bpsim/timing/latency"
	"github.com/sarchlab/bpsim/timing/stats"
)

// System is a set of cores sharing one predictor and one miss classifier.
type System struct {
	Predictor  *bp.Predictor
	Classifier *cache.MissClassifier
	Cores      []*Core
}

// NewSystem builds one core per predictor core. Zero-valued predictor
// fields take their defaults. sink receives branch and miss events and may
// be nil.
func NewSystem(config *SimConfig, sink stats.Sink) (*System, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}

	s := &System{
		Predictor:  bp.NewPredictor(config.Predictor),
		Classifier: cache.NewMissClassifier(sink),
	}

	if sink != nil {
		s.Predictor.AcceptHook(NewTrainingCounter(sink))
	}

	lat := latency.NewTable()
	if config.Timing != nil {
		lat = latency.NewTableWithConfig(config.Timing.Clone())
	}

	for id := 0; id < s.Predictor.Config().NumCores; id++ {
		opts := []Option{WithStatsSink(sink), WithLatencyTable(lat)}
		if config.EnableDCache {
			dc := cache.New(config.DCache,
				cache.WithName(fmt.Sprintf("Core%d.DCache", id)),
				cache.WithCoreID(id),
				cache.WithMissClassifier(s.Classifier),
			)
			opts = append(opts, WithDCache(dc))
		}
		s.Cores = append(s.Cores, NewCore(id, s.Predictor, opts...))
	}

	return s, nil
}

// Run replays a trace. Each core's records run on their own goroutine, at
// most workers at a time; workers <= 0 means one goroutine per core.
func (s *System) Run(records []loader.Record, workers int) error {
	split := loader.SplitByCore(records)
	for _, id := range loader.CoreIDs(split) {
		if id >= len(s.Cores) {
			return fmt.Errorf("trace references core %d, but only %d cores are configured",
				id, len(s.Cores))
		}
	}

	p := pool.New()
	if workers > 0 {
		p = p.WithMaxGoroutines(workers)
	}

	for _, id := range loader.CoreIDs(split) {
		c := s.Cores[id]
		recs := split[id]
		p.Go(func() {
			c.Run(recs)
		})
	}
	p.Wait()

	return nil
}
