package benchmarks

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sourcegraph/conc/iter"

	"github.com/sarchlab/bpsim/timing/core"
	"github.com/sarchlab/bpsim/timing/stats"
)

// Result holds the results of a single workload run.
type Result struct {
	// Name identifies the workload
	Name string `json:"name"`

	// Description explains what the workload exercises
	Description string `json:"description"`

	// Branch predictor stats
	Branches       uint64  `json:"branches"`
	CondBranches   uint64  `json:"cond_branches"`
	Mispredictions uint64  `json:"mispredictions"`
	Trainings      uint64  `json:"trainings"`
	Accuracy       float64 `json:"accuracy_percent"`

	// Data cache stats
	Loads               uint64 `json:"loads,omitempty"`
	DCacheMisses        uint64 `json:"dcache_misses,omitempty"`
	CompulsoryMisses    uint64 `json:"compulsory_misses,omitempty"`
	NonCompulsoryMisses uint64 `json:"non_compulsory_misses,omitempty"`

	// Cycles is the total simulated cost, including misprediction penalties
	Cycles uint64 `json:"cycles"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// HarnessConfig configures the workload harness.
type HarnessConfig struct {
	// Sim is the simulation configuration. Only core 0 is used.
	Sim *core.SimConfig

	// Output is where to write results (default: os.Stdout)
	Output io.Writer
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Sim:    core.DefaultSimConfig(),
		Output: os.Stdout,
	}
}

// Harness runs workloads and reports results.
type Harness struct {
	config    HarnessConfig
	workloads []Workload
}

// NewHarness creates a new workload harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Sim == nil {
		config.Sim = core.DefaultSimConfig()
	}
	return &Harness{config: config}
}

// AddWorkload adds a workload to the harness.
func (h *Harness) AddWorkload(w Workload) {
	h.workloads = append(h.workloads, w)
}

// AddWorkloads adds multiple workloads to the harness.
func (h *Harness) AddWorkloads(ws []Workload) {
	h.workloads = append(h.workloads, ws...)
}

// RunAll runs every workload on a fresh system, concurrently, and returns
// the results in the order the workloads were added.
func (h *Harness) RunAll() ([]Result, error) {
	type outcome struct {
		result Result
		err    error
	}

	outcomes := iter.Map(h.workloads, func(w *Workload) outcome {
		r, err := Run(*w, h.config.Sim)
		return outcome{result: r, err: err}
	})

	results := make([]Result, 0, len(outcomes))
	for _, o := range outcomes {
		if o.err != nil {
			return nil, o.err
		}
		results = append(results, o.result)
	}
	return results, nil
}

// Run executes a workload on core 0 of a fresh system.
func Run(w Workload, sim *core.SimConfig) (Result, error) {
	counters := stats.NewCounters()
	system, err := core.NewSystem(sim, counters)
	if err != nil {
		return Result{}, fmt.Errorf("workload %s: %w", w.Name, err)
	}

	start := time.Now()
	if err := system.Run(w.Records, 1); err != nil {
		return Result{}, fmt.Errorf("workload %s: %w", w.Name, err)
	}
	wallTime := time.Since(start)

	c := system.Cores[0]
	coreStats := c.Stats()
	bpStats := system.Predictor.CoreStats(0)

	return Result{
		Name:                w.Name,
		Description:         w.Description,
		Branches:            coreStats.Branches,
		CondBranches:        coreStats.CondBranches,
		Mispredictions:      bpStats.Mispredictions,
		Trainings:           bpStats.Trainings,
		Accuracy:            bpStats.Accuracy(),
		Loads:               coreStats.Loads,
		DCacheMisses:        counters.Get(0, stats.EventCompulsoryMiss) + counters.Get(0, stats.EventNonCompulsoryMiss),
		CompulsoryMisses:    counters.Get(0, stats.EventCompulsoryMiss),
		NonCompulsoryMisses: counters.Get(0, stats.EventNonCompulsoryMiss),
		Cycles:              coreStats.Cycles,
		WallTime:            wallTime,
	}, nil
}

// PrintResults outputs results as a table.
func (h *Harness) PrintResults(results []Result) {
	t := table.NewWriter()
	t.SetOutputMirror(h.config.Output)
	t.SetTitle("Workload Results")
	t.AppendHeader(table.Row{
		"Workload", "Branches", "Mispredicts", "Trainings", "Accuracy %",
		"Loads", "Compulsory", "Non-compulsory", "Cycles", "Wall time",
	})

	for _, r := range results {
		t.AppendRow(table.Row{
			r.Name,
			r.CondBranches,
			r.Mispredictions,
			r.Trainings,
			fmt.Sprintf("%.2f", r.Accuracy),
			r.Loads,
			r.CompulsoryMisses,
			r.NonCompulsoryMisses,
			r.Cycles,
			r.WallTime,
		})
	}

	t.Render()
}

// PrintCSV outputs results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []Result) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,branches,cond_branches,mispredictions,trainings,accuracy,loads,compulsory_misses,non_compulsory_misses,cycles")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%d,%d,%.3f,%d,%d,%d,%d\n",
			r.Name,
			r.Branches,
			r.CondBranches,
			r.Mispredictions,
			r.Trainings,
			r.Accuracy,
			r.Loads,
			r.CompulsoryMisses,
			r.NonCompulsoryMisses,
			r.Cycles,
		)
	}
}
