// Package cache provides a set-associative data cache model built on Akita
// cache components, and a classifier for its misses.
package cache

import (
	"fmt"
	"log/slog"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// Config holds cache configuration parameters.
type Config struct {
	// Size in bytes
	Size int `json:"size"`
	// Associativity (number of ways)
	Associativity int `json:"associativity"`
	// BlockSize in bytes (cache line size)
	BlockSize int `json:"block_size"`
	// HitLatency in cycles
	HitLatency uint64 `json:"hit_latency"`
	// MissLatency in cycles (includes next-level access time)
	MissLatency uint64 `json:"miss_latency"`
}

// DefaultL1DConfig returns default configuration for a private L1 data
// cache: 32KB, 8-way, 64B lines.
func DefaultL1DConfig() Config {
	return Config{
		Size:          32 * 1024,
		Associativity: 8,
		BlockSize:     64,
		HitLatency:    4,
		MissLatency:   12,
	}
}

// Validate checks that the configuration describes a buildable cache.
func (c Config) Validate() error {
	if c.Size <= 0 || c.Associativity <= 0 || c.BlockSize <= 0 {
		return fmt.Errorf("cache size, associativity and block size must be > 0")
	}
	if c.BlockSize&(c.BlockSize-1) != 0 {
		return fmt.Errorf("block_size must be a power of 2, got %d", c.BlockSize)
	}
	if c.Size%(c.Associativity*c.BlockSize) != 0 {
		return fmt.Errorf("size %d is not a multiple of associativity * block_size", c.Size)
	}
	return nil
}

// NumSets returns the number of sets.
func (c Config) NumSets() int {
	return c.Size / (c.Associativity * c.BlockSize)
}

// AccessResult contains the result of a cache access.
type AccessResult struct {
	// Hit indicates whether the access was a cache hit.
	Hit bool
	// Latency is the number of cycles this access takes.
	Latency uint64
	// Evicted is true if a valid block was evicted.
	Evicted bool
	// EvictedAddr is the address of the evicted block (if Evicted is true).
	EvictedAddr uint64
	// WroteBack is true if the evicted block was dirty.
	WroteBack bool
	// Miss is the classification of a miss. Only set when a classifier is
	// attached and Hit is false.
	Miss MissKind
}

// Cache models the tag state of a private data cache using Akita cache
// components. It tracks residency, recency and dirtiness but holds no data.
type Cache struct {
	name   string
	coreID int
	config Config

	// Akita cache directory for tag/state management
	directory *akitacache.DirectoryImpl

	stats Statistics

	classifier *MissClassifier
}

// Statistics holds cache performance statistics.
type Statistics struct {
	Reads               uint64
	Writes              uint64
	Hits                uint64
	Misses              uint64
	CompulsoryMisses    uint64
	NonCompulsoryMisses uint64
	Evictions           uint64
	Writebacks          uint64
}

// HitRate returns the hit rate as a percentage.
func (s Statistics) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Option configures a Cache.
type Option func(c *Cache)

// WithName sets the name used in logs and miss classification.
func WithName(name string) Option {
	return func(c *Cache) {
		c.name = name
	}
}

// WithCoreID sets the core the cache belongs to.
func WithCoreID(id int) Option {
	return func(c *Cache) {
		c.coreID = id
	}
}

// WithMissClassifier makes the cache report every miss to m.
func WithMissClassifier(m *MissClassifier) Option {
	return func(c *Cache) {
		c.classifier = m
	}
}

// New creates a new cache with the given configuration. It panics if the
// configuration is invalid.
func New(config Config, opts ...Option) *Cache {
	if err := config.Validate(); err != nil {
		panic(fmt.Sprintf("cache: invalid config: %v", err))
	}

	c := &Cache{
		name:   "DCache",
		config: config,
		directory: akitacache.NewDirectory(
			config.NumSets(),
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Name returns the cache name.
func (c *Cache) Name() string {
	return c.name
}

// CoreID returns the core the cache belongs to.
func (c *Cache) CoreID() int {
	return c.coreID
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// ResetStats clears cache statistics.
func (c *Cache) ResetStats() {
	c.stats = Statistics{}
}

func (c *Cache) blockAddr(addr uint64) uint64 {
	return (addr / uint64(c.config.BlockSize)) * uint64(c.config.BlockSize)
}

// tag returns the address bits above the set index.
func (c *Cache) tag(blockAddr uint64) uint64 {
	return blockAddr / uint64(c.config.BlockSize) / uint64(c.config.NumSets())
}

// Read performs a load access.
func (c *Cache) Read(addr uint64) AccessResult {
	c.stats.Reads++
	return c.access(addr, false)
}

// Write performs a store access. Uses write-allocate: a miss fills the line
// and the line is marked dirty either way.
func (c *Cache) Write(addr uint64) AccessResult {
	c.stats.Writes++
	return c.access(addr, true)
}

func (c *Cache) access(addr uint64, isWrite bool) AccessResult {
	block := c.directory.Lookup(0, c.blockAddr(addr))

	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)
		if isWrite {
			block.IsDirty = true
		}

		return AccessResult{
			Hit:     true,
			Latency: c.config.HitLatency,
		}
	}

	c.stats.Misses++
	return c.handleMiss(addr, isWrite)
}

// handleMiss allocates a line for addr, evicting the LRU block of its set.
func (c *Cache) handleMiss(addr uint64, isWrite bool) AccessResult {
	result := AccessResult{
		Hit:     false,
		Latency: c.config.MissLatency,
	}

	blockAddr := c.blockAddr(addr)

	victim := c.directory.FindVictim(blockAddr)
	if victim == nil {
		panic(fmt.Sprintf("cache %s: no victim for address 0x%x", c.name, addr))
	}

	if c.classifier != nil {
		result.Miss = c.classifier.ClassifyMiss(c.name, victim.SetID, c.tag(blockAddr), c.coreID)
		if result.Miss == CompulsoryMiss {
			c.stats.CompulsoryMisses++
		} else {
			c.stats.NonCompulsoryMisses++
		}
	}

	if victim.IsValid {
		c.stats.Evictions++
		result.Evicted = true
		result.EvictedAddr = victim.Tag // Tag stores block-aligned address

		if victim.IsDirty {
			c.stats.Writebacks++
			result.WroteBack = true
		}
	}

	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = isWrite

	c.directory.Visit(victim)

	slog.Debug("cache miss",
		"cache", c.name,
		"core", c.coreID,
		"addr", addr,
		"set", victim.SetID,
		"evicted", result.Evicted,
		"writeback", result.WroteBack,
	)

	return result
}

// Invalidate marks a cache line as invalid without writeback.
func (c *Cache) Invalidate(addr uint64) {
	block := c.directory.Lookup(0, c.blockAddr(addr))
	if block != nil && block.IsValid {
		block.IsValid = false
		block.IsDirty = false
	}
}

// Flush counts a writeback for every dirty block and invalidates all lines.
func (c *Cache) Flush() {
	for _, set := range c.directory.GetSets() {
		for _, block := range set.Blocks {
			if block.IsValid && block.IsDirty {
				c.stats.Writebacks++
			}
			block.IsValid = false
			block.IsDirty = false
		}
	}
}

// Reset invalidates all cache lines without writeback.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = Statistics{}
}
