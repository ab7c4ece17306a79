package benchmarks_test

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bpsim/benchmarks"
	"github.com/sarchlab/bpsim/timing/core"
)

var _ = Describe("Workloads", func() {
	var sim *core.SimConfig

	BeforeEach(func() {
		sim = core.DefaultSimConfig()
	})

	run := func(w benchmarks.Workload) benchmarks.Result {
		r, err := benchmarks.Run(w, sim)
		Expect(err).NotTo(HaveOccurred())
		return r
	}

	It("should predict an always-taken branch perfectly", func() {
		r := run(benchmarks.AlwaysTaken(1000))
		Expect(r.CondBranches).To(Equal(uint64(1000)))
		Expect(r.Mispredictions).To(BeZero())
	})

	It("should learn an alternating branch", func() {
		r := run(benchmarks.Alternating(2000))
		Expect(r.Accuracy).To(BeNumerically(">", 95))
	})

	It("should learn a counted loop", func() {
		r := run(benchmarks.Loop(4, 500))
		Expect(r.Branches).To(Equal(uint64(2500)))
		Expect(r.CondBranches).To(Equal(uint64(2000)))
		Expect(r.Accuracy).To(BeNumerically(">", 95))
	})

	It("should predict the correlated half of a correlated pair", func() {
		r := run(benchmarks.Correlated(2000, 1))
		Expect(r.Accuracy).To(BeNumerically(">", 65))
		Expect(r.Accuracy).To(BeNumerically("<", 90))
	})

	It("should separate colliding branches by history", func() {
		r := run(benchmarks.Aliased(1000, uint64(sim.Predictor.TableSize)))
		Expect(r.Accuracy).To(BeNumerically(">", 95))
	})

	It("should not learn random outcomes", func() {
		r := run(benchmarks.Random(2000, 1))
		Expect(r.Accuracy).To(BeNumerically(">", 35))
		Expect(r.Accuracy).To(BeNumerically("<", 65))
	})

	It("should classify streaming misses", func() {
		r := run(benchmarks.MemoryStream(1024, 2))
		Expect(r.Loads).To(Equal(uint64(2048)))
		Expect(r.CompulsoryMisses).To(Equal(uint64(1024)))
		Expect(r.NonCompulsoryMisses).To(Equal(uint64(1024)))
		Expect(r.Branches).To(BeZero())
	})

	It("should reject invalid configs", func() {
		sim.Predictor.TableSize = 5
		_, err := benchmarks.Run(benchmarks.AlwaysTaken(1), sim)
		Expect(err).To(MatchError(ContainSubstring("workload always_taken")))
	})
})

var _ = Describe("Harness", func() {
	It("should run workloads in order and print them", func() {
		var buf bytes.Buffer
		h := benchmarks.NewHarness(benchmarks.HarnessConfig{Output: &buf})
		h.AddWorkloads(benchmarks.GetWorkloads())
		h.AddWorkload(benchmarks.AlwaysTaken(10))

		results, err := h.RunAll()
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(len(benchmarks.GetWorkloads()) + 1))
		Expect(results[0].Name).To(Equal("always_taken"))
		Expect(results[len(results)-1].CondBranches).To(Equal(uint64(10)))

		h.PrintResults(results)
		Expect(buf.String()).To(ContainSubstring("alternating"))

		buf.Reset()
		h.PrintCSV(results)
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		Expect(lines).To(HaveLen(len(results) + 1))
		Expect(lines[0]).To(HavePrefix("name,branches"))
	})
})
