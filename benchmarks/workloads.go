// Package benchmarks provides synthetic branch and memory workloads and a
// harness that measures predictor accuracy on them.
package benchmarks

import (
	"math/rand"

	"github.com/sarchlab/bpsim/loader"
)

// Workload is a named single-core trace.
type Workload struct {
	// Name identifies the workload
	Name string

	// Description explains what the workload exercises
	Description string

	// Records is the trace, all on core 0
	Records []loader.Record
}

// GetWorkloads returns the standard set of workloads.
func GetWorkloads() []Workload {
	return []Workload{
		AlwaysTaken(1000),
		Alternating(2000),
		Loop(4, 500),
		Correlated(2000, 1),
		Aliased(1000, 1024),
		Random(2000, 1),
		MemoryStream(1024, 2),
	}
}

func br(addr uint64, taken bool) loader.Record {
	return loader.Record{Kind: loader.KindBranch, Addr: addr, Taken: taken}
}

// AlwaysTaken is one branch that is always taken.
func AlwaysTaken(n int) Workload {
	records := make([]loader.Record, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, br(0x1000, true))
	}
	return Workload{
		Name:        "always_taken",
		Description: "single branch, always taken",
		Records:     records,
	}
}

// Alternating is one branch flipping direction every execution.
func Alternating(n int) Workload {
	records := make([]loader.Record, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, br(0x1000, i%2 == 0))
	}
	return Workload{
		Name:        "alternating",
		Description: "single branch, T N T N ...",
		Records:     records,
	}
}

// Loop is a counted loop: the back edge is taken trip-1 times, then falls
// through; an unconditional jump re-enters the loop.
func Loop(trip, iters int) Workload {
	records := make([]loader.Record, 0, iters*(trip+1))
	for it := 0; it < iters; it++ {
		for i := 0; i < trip; i++ {
			records = append(records, br(0x2000, i < trip-1))
		}
		records = append(records, loader.Record{
			Kind:          loader.KindBranch,
			Addr:          0x2010,
			Taken:         true,
			Unconditional: true,
		})
	}
	return Workload{
		Name:        "loop",
		Description: "counted inner loop back edge",
		Records:     records,
	}
}

// Correlated pairs a random branch with a second branch that repeats its
// outcome. Only the second branch is predictable.
func Correlated(n int, seed int64) Workload {
	rng := rand.New(rand.NewSource(seed))
	records := make([]loader.Record, 0, 2*n)
	for i := 0; i < n; i++ {
		taken := rng.Intn(2) == 1
		records = append(records, br(0x1000, taken), br(0x1004, taken))
	}
	return Workload{
		Name:        "correlated",
		Description: "random branch followed by a branch copying its outcome",
		Records:     records,
	}
}

// Aliased interleaves an always-taken and a never-taken branch whose
// addresses collide in a table of tableSize entries.
func Aliased(n int, tableSize uint64) Workload {
	a := uint64(0x1000)
	b := a + tableSize*4
	records := make([]loader.Record, 0, 2*n)
	for i := 0; i < n; i++ {
		records = append(records, br(a, true), br(b, false))
	}
	return Workload{
		Name:        "aliased",
		Description: "two opposite-bias branches with colliding address bits",
		Records:     records,
	}
}

// Random is one branch with uniformly random outcomes.
func Random(n int, seed int64) Workload {
	rng := rand.New(rand.NewSource(seed))
	records := make([]loader.Record, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, br(0x3000, rng.Intn(2) == 1))
	}
	return Workload{
		Name:        "random",
		Description: "single branch, random outcomes",
		Records:     records,
	}
}

// MemoryStream loads lines consecutive 64B lines, passes times over.
func MemoryStream(lines, passes int) Workload {
	records := make([]loader.Record, 0, lines*passes)
	for p := 0; p < passes; p++ {
		for i := 0; i < lines; i++ {
			records = append(records, loader.Record{
				Kind: loader.KindLoad,
				Addr: 0x100000 + uint64(i)*64,
			})
		}
	}
	return Workload{
		Name:        "memory_stream",
		Description: "sequential loads over an array",
		Records:     records,
	}
}
