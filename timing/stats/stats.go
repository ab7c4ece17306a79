// Package stats provides per-core statistic counters keyed by event kind.
package stats

import (
	"io"
	"sort"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Event identifies a counted statistic.
type Event int

// Events counted by the simulator.
const (
	EventCompulsoryMiss Event = iota
	EventNonCompulsoryMiss
	EventBranchPredicted
	EventBranchMispredicted
	EventPredictorTrained
	numEvents
)

var eventNames = [numEvents]string{
	EventCompulsoryMiss:     "DCACHE_MISS_COMPULSORY",
	EventNonCompulsoryMiss:  "DCACHE_MISS_NON_COMPULSORY",
	EventBranchPredicted:    "BP_PREDICTIONS",
	EventBranchMispredicted: "BP_MISPREDICTIONS",
	EventPredictorTrained:   "BP_TRAININGS",
}

// String returns the counter name of the event.
func (e Event) String() string {
	if e < 0 || e >= numEvents {
		return "UNKNOWN"
	}
	return eventNames[e]
}

// Events returns every known event in declaration order.
func Events() []Event {
	out := make([]Event, 0, numEvents)
	for e := Event(0); e < numEvents; e++ {
		out = append(out, e)
	}
	return out
}

// A Sink receives statistic events.
type Sink interface {
	Inc(coreID int, ev Event)
}

// Counters is a Sink that counts events per core. It is safe for concurrent
// use.
type Counters struct {
	mu     sync.Mutex
	counts map[int]*[numEvents]uint64
}

// NewCounters creates an empty set of counters.
func NewCounters() *Counters {
	return &Counters{counts: make(map[int]*[numEvents]uint64)}
}

// Inc increments the counter of ev on the given core.
func (c *Counters) Inc(coreID int, ev Event) {
	c.Add(coreID, ev, 1)
}

// Add adds n to the counter of ev on the given core.
func (c *Counters) Add(coreID int, ev Event, n uint64) {
	if ev < 0 || ev >= numEvents {
		panic("stats: unknown event")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	row, ok := c.counts[coreID]
	if !ok {
		row = new([numEvents]uint64)
		c.counts[coreID] = row
	}
	row[ev] += n
}

// Get returns the counter of ev on the given core.
func (c *Counters) Get(coreID int, ev Event) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	row, ok := c.counts[coreID]
	if !ok {
		return 0
	}
	return row[ev]
}

// Total returns the counter of ev summed over all cores.
func (c *Counters) Total(ev Event) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var sum uint64
	for _, row := range c.counts {
		sum += row[ev]
	}
	return sum
}

// Cores returns the ids of all cores with at least one counter, ascending.
func (c *Counters) Cores() []int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cores := make([]int, 0, len(c.counts))
	for id := range c.counts {
		cores = append(cores, id)
	}
	sort.Ints(cores)
	return cores
}

// Reset clears all counters.
func (c *Counters) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.counts = make(map[int]*[numEvents]uint64)
}

// Render writes a table with one row per core and one column per event.
func (c *Counters) Render(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Statistics")

	header := table.Row{"Core"}
	for _, ev := range Events() {
		header = append(header, ev.String())
	}
	t.AppendHeader(header)

	for _, id := range c.Cores() {
		row := table.Row{id}
		for _, ev := range Events() {
			row = append(row, c.Get(id, ev))
		}
		t.AppendRow(row)
	}

	footer := table.Row{"Total"}
	for _, ev := range Events() {
		footer = append(footer, c.Total(ev))
	}
	t.AppendFooter(footer)

	t.Render()
}
