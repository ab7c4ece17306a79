package core

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sarchlab/bpsim/timing/bp"
	"github.com/sarchlab/bpsim/timing/cache"
	"github.com/sarchlab/bpsim/timing/latency"
)

// SimConfig holds the configuration of a simulation run.
type SimConfig struct {
	// Predictor configures the perceptron predictor shared by all cores.
	Predictor bp.Config `json:"predictor"`

	// EnableDCache gives every core a private data cache.
	EnableDCache bool `json:"enable_dcache"`

	// DCache configures the private data caches.
	DCache cache.Config `json:"dcache"`

	// Timing is the cycle cost model.
	Timing *latency.TimingConfig `json:"timing"`
}

// DefaultSimConfig returns a SimConfig with default values.
func DefaultSimConfig() *SimConfig {
	return &SimConfig{
		Predictor:    bp.DefaultConfig(),
		EnableDCache: true,
		DCache:       cache.DefaultL1DConfig(),
		Timing:       latency.DefaultTimingConfig(),
	}
}

// LoadConfig loads a SimConfig from a JSON file.
func LoadConfig(path string) (*SimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read simulation config file: %w", err)
	}

	config := DefaultSimConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse simulation config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a SimConfig to a JSON file.
func (c *SimConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize simulation config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write simulation config file: %w", err)
	}

	return nil
}

// Validate checks the predictor and, when enabled, the cache configuration.
// Zero-valued predictor fields are validated as their defaults.
func (c *SimConfig) Validate() error {
	if err := c.Predictor.WithDefaults().Validate(); err != nil {
		return fmt.Errorf("predictor: %w", err)
	}
	if c.EnableDCache {
		if err := c.DCache.Validate(); err != nil {
			return fmt.Errorf("dcache: %w", err)
		}
	}
	if c.Timing != nil {
		if err := c.Timing.Validate(); err != nil {
			return fmt.Errorf("timing: %w", err)
		}
	}
	return nil
}

// Clone returns a copy of the SimConfig.
func (c *SimConfig) Clone() *SimConfig {
	clone := *c
	if c.Timing != nil {
		clone.Timing = c.Timing.Clone()
	}
	return &clone
}
