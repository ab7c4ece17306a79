package cache

import (
	"log/slog"
	"sync"

	"github.com/sarchlab/bpsim/timing/stats"
)

// MissKind classifies a cache miss.
type MissKind int

// Miss kinds.
const (
	// NotClassified is the zero value, used for hits and unclassified misses.
	NotClassified MissKind = iota
	// CompulsoryMiss is the first miss on a (set, tag) pair.
	CompulsoryMiss
	// NonCompulsoryMiss is a miss on a (set, tag) pair seen before.
	NonCompulsoryMiss
)

func (k MissKind) String() string {
	switch k {
	case CompulsoryMiss:
		return "compulsory"
	case NonCompulsoryMiss:
		return "non-compulsory"
	default:
		return "none"
	}
}

type setTag struct {
	set int
	tag uint64
}

// MissClassifier tells compulsory misses from the rest by remembering every
// (set, tag) pair that has missed. The visited set is shared by all caches
// and cores reporting to the same classifier. It is safe for concurrent use.
type MissClassifier struct {
	mu      sync.Mutex
	visited map[setTag]struct{}
	sink    stats.Sink
}

// NewMissClassifier creates a classifier that reports to sink. sink may be
// nil.
func NewMissClassifier(sink stats.Sink) *MissClassifier {
	return &MissClassifier{
		visited: make(map[setTag]struct{}),
		sink:    sink,
	}
}

// ClassifyMiss records a miss on (set, tag) and emits a compulsory or
// non-compulsory miss event for coreID.
func (m *MissClassifier) ClassifyMiss(cacheName string, set int, tag uint64, coreID int) MissKind {
	key := setTag{set: set, tag: tag}

	m.mu.Lock()
	_, seen := m.visited[key]
	if !seen {
		m.visited[key] = struct{}{}
	}
	m.mu.Unlock()

	kind := NonCompulsoryMiss
	ev := stats.EventNonCompulsoryMiss
	if !seen {
		kind = CompulsoryMiss
		ev = stats.EventCompulsoryMiss
	}

	if m.sink != nil {
		m.sink.Inc(coreID, ev)
	}

	slog.Debug("miss classified",
		"cache", cacheName,
		"core", coreID,
		"set", set,
		"tag", tag,
		"kind", kind.String(),
	)

	return kind
}

// Visited returns the number of distinct (set, tag) pairs seen.
func (m *MissClassifier) Visited() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.visited)
}

// Reset forgets every visited pair.
func (m *MissClassifier) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visited = make(map[setTag]struct{})
}
