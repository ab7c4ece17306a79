package core_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bpsim/loader"
	"github.com/sarchlab/bpsim/timing/bp"
	"github.com/sarchlab/bpsim/timing/core"
	"github.com/sarchlab/bpsim/timing/stats"
)

var _ = Describe("SimConfig", func() {
	It("should validate the defaults", func() {
		Expect(core.DefaultSimConfig().Validate()).To(Succeed())
	})

	It("should wrap predictor errors", func() {
		config := core.DefaultSimConfig()
		config.Predictor.TableSize = 3
		Expect(config.Validate()).To(MatchError(ContainSubstring("predictor: table_size")))
	})

	It("should skip cache validation when the cache is disabled", func() {
		config := core.DefaultSimConfig()
		config.DCache.Size = 0
		Expect(config.Validate()).To(MatchError(ContainSubstring("dcache")))

		config.EnableDCache = false
		Expect(config.Validate()).To(Succeed())
	})

	It("should round-trip through a JSON file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "sim.json")
		config := core.DefaultSimConfig()
		config.Predictor.NumCores = 4
		config.DCache.Associativity = 4

		Expect(config.SaveConfig(path)).To(Succeed())
		loaded, err := core.LoadConfig(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).To(Equal(config))
	})

	It("should report malformed files", func() {
		path := filepath.Join(GinkgoT().TempDir(), "sim.json")
		Expect(os.WriteFile(path, []byte("[]"), 0644)).To(Succeed())
		_, err := core.LoadConfig(path)
		Expect(err).To(MatchError(ContainSubstring("failed to parse simulation config")))
	})

	It("should clone independently", func() {
		config := core.DefaultSimConfig()
		clone := config.Clone()
		clone.Predictor.HistoryLength = 7
		clone.Timing.BranchMispredictPenalty = 30
		Expect(config.Predictor.HistoryLength).To(Equal(uint(32)))
		Expect(config.Timing.BranchMispredictPenalty).To(Equal(uint64(12)))
	})

	It("should wrap timing errors", func() {
		config := core.DefaultSimConfig()
		config.Timing.LoadLatency = 0
		Expect(config.Validate()).To(MatchError(ContainSubstring("timing: load_latency")))
	})
})

var _ = Describe("System", func() {
	var (
		config   *core.SimConfig
		counters *stats.Counters
	)

	BeforeEach(func() {
		config = core.DefaultSimConfig()
		config.Predictor.NumCores = 2
		config.Predictor.TableSize = 64
		config.Predictor.HistoryLength = 8
		counters = stats.NewCounters()
	})

	It("should reject invalid configs", func() {
		config.Predictor.NumCores = -1
		_, err := core.NewSystem(config, counters)
		Expect(err).To(MatchError(ContainSubstring("invalid simulation config")))
	})

	It("should default zero-valued predictor fields", func() {
		s, err := core.NewSystem(&core.SimConfig{
			Predictor: bp.Config{TableSize: 16},
		}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Cores).To(HaveLen(1))
		Expect(s.Predictor.Config().HistoryLength).To(Equal(uint(32)))
		Expect(s.Predictor.Config().TableSize).To(Equal(uint32(16)))
	})

	It("should build one core per configured core", func() {
		s, err := core.NewSystem(config, counters)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Cores).To(HaveLen(2))
		Expect(s.Cores[1].ID()).To(Equal(1))
	})

	It("should run every core's records", func() {
		s, err := core.NewSystem(config, counters)
		Expect(err).NotTo(HaveOccurred())

		var records []loader.Record
		for i := 0; i < 100; i++ {
			records = append(records,
				loader.Record{Kind: loader.KindBranch, CoreID: i % 2, Addr: 0x400, Taken: true},
				loader.Record{Kind: loader.KindLoad, CoreID: i % 2, Addr: uint64(i) * 64},
			)
		}

		Expect(s.Run(records, 0)).To(Succeed())

		Expect(s.Cores[0].Stats().Branches).To(Equal(uint64(50)))
		Expect(s.Cores[1].Stats().Loads).To(Equal(uint64(50)))
		Expect(counters.Total(stats.EventBranchPredicted)).To(Equal(uint64(100)))
		Expect(counters.Total(stats.EventCompulsoryMiss)).To(Equal(uint64(100)))
		Expect(s.Classifier.Visited()).To(Equal(100))
		for id := 0; id < 2; id++ {
			Expect(counters.Get(id, stats.EventPredictorTrained)).To(
				Equal(s.Predictor.CoreStats(id).Trainings))
		}
		Expect(s.Predictor.NumHooks()).To(Equal(1))
	})

	It("should not register a training hook without a sink", func() {
		s, err := core.NewSystem(config, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Predictor.NumHooks()).To(BeZero())
	})

	It("should classify a line missed by two cores once as compulsory", func() {
		s, err := core.NewSystem(config, counters)
		Expect(err).NotTo(HaveOccurred())

		records := []loader.Record{
			{Kind: loader.KindLoad, CoreID: 0, Addr: 0x1000},
			{Kind: loader.KindLoad, CoreID: 1, Addr: 0x1000},
		}
		Expect(s.Run(records, 1)).To(Succeed())

		Expect(counters.Total(stats.EventCompulsoryMiss)).To(Equal(uint64(1)))
		Expect(counters.Total(stats.EventNonCompulsoryMiss)).To(Equal(uint64(1)))
	})

	It("should reject traces for unknown cores", func() {
		s, err := core.NewSystem(config, counters)
		Expect(err).NotTo(HaveOccurred())

		err = s.Run([]loader.Record{{Kind: loader.KindLoad, CoreID: 5}}, 0)
		Expect(err).To(MatchError(ContainSubstring("core 5")))
	})
})
