package latency_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bpsim/loader"
	"github.com/sarchlab/bpsim/timing/latency"
)

var _ = Describe("Latency", func() {
	var table *latency.Table

	BeforeEach(func() {
		table = latency.NewTable()
	})

	DescribeTable("default record latencies",
		func(kind loader.Kind, expected uint64) {
			Expect(table.GetLatency(loader.Record{Kind: kind})).To(Equal(expected))
		},
		Entry("branch", loader.KindBranch, uint64(1)),
		Entry("load", loader.KindLoad, uint64(4)),
		Entry("store", loader.KindStore, uint64(1)),
	)

	It("should have the default misprediction penalty", func() {
		Expect(table.MispredictPenalty()).To(Equal(uint64(12)))
	})

	It("should identify memory records", func() {
		Expect(table.IsMemoryOp(loader.Record{Kind: loader.KindLoad})).To(BeTrue())
		Expect(table.IsMemoryOp(loader.Record{Kind: loader.KindStore})).To(BeTrue())
		Expect(table.IsMemoryOp(loader.Record{Kind: loader.KindBranch})).To(BeFalse())
	})

	Describe("Custom Configuration", func() {
		It("should use custom latencies", func() {
			config := &latency.TimingConfig{
				BranchLatency:           2,
				BranchMispredictPenalty: 20,
				LoadLatency:             6,
				StoreLatency:            3,
			}
			table = latency.NewTableWithConfig(config)

			Expect(table.GetLatency(loader.Record{Kind: loader.KindBranch})).To(Equal(uint64(2)))
			Expect(table.GetLatency(loader.Record{Kind: loader.KindLoad})).To(Equal(uint64(6)))
			Expect(table.MispredictPenalty()).To(Equal(uint64(20)))
			Expect(table.Config()).To(BeIdenticalTo(config))
		})
	})

	Describe("Config Validation", func() {
		It("should accept the default config", func() {
			Expect(latency.DefaultTimingConfig().Validate()).To(Succeed())
		})

		It("should accept a zero misprediction penalty", func() {
			config := latency.DefaultTimingConfig()
			config.BranchMispredictPenalty = 0
			Expect(config.Validate()).To(Succeed())
		})

		DescribeTable("zero base latencies",
			func(mutate func(*latency.TimingConfig), msg string) {
				config := latency.DefaultTimingConfig()
				mutate(config)
				Expect(config.Validate()).To(MatchError(ContainSubstring(msg)))
			},
			Entry("branch", func(c *latency.TimingConfig) { c.BranchLatency = 0 }, "branch_latency"),
			Entry("load", func(c *latency.TimingConfig) { c.LoadLatency = 0 }, "load_latency"),
			Entry("store", func(c *latency.TimingConfig) { c.StoreLatency = 0 }, "store_latency"),
		)
	})

	Describe("Config Files", func() {
		It("should save and load a config", func() {
			path := filepath.Join(GinkgoT().TempDir(), "timing.json")
			config := latency.DefaultTimingConfig()
			config.BranchMispredictPenalty = 17

			Expect(config.SaveConfig(path)).To(Succeed())

			loaded, err := latency.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(config))
		})

		It("should keep defaults for missing fields", func() {
			path := filepath.Join(GinkgoT().TempDir(), "partial.json")
			Expect(os.WriteFile(path, []byte(`{"load_latency": 9}`), 0644)).To(Succeed())

			loaded, err := latency.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.LoadLatency).To(Equal(uint64(9)))
			Expect(loaded.BranchMispredictPenalty).To(Equal(uint64(12)))
		})

		It("should fail on a missing file", func() {
			_, err := latency.LoadConfig(filepath.Join(GinkgoT().TempDir(), "nope.json"))
			Expect(err).To(MatchError(ContainSubstring("failed to read timing config file")))
		})

		It("should clone independently", func() {
			config := latency.DefaultTimingConfig()
			clone := config.Clone()
			clone.LoadLatency = 99
			Expect(config.LoadLatency).To(Equal(uint64(4)))
		})
	})
})
