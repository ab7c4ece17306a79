package bp

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Config holds the perceptron predictor geometry.
type Config struct {
	// NumCores is the number of simulated cores. Each core owns a private
	// perceptron table. Default: 1.
	NumCores int `json:"num_cores"`

	// TableSize is the number of perceptrons per core.
	// Must be a power of 2. Default: 1024.
	TableSize uint32 `json:"table_size"`

	// HistoryLength is the number of global history bits fed to each
	// perceptron, in [1, 64]. Default: 32.
	HistoryLength uint `json:"history_length"`

	// WeightBits is the width of a signed weight, in [2, 16]. Default: 8.
	WeightBits uint `json:"weight_bits"`

	// AlignShift is the number of low address bits dropped before indexing.
	// 2 matches 4-byte instruction alignment. Zero indexes by byte address.
	AlignShift uint `json:"align_shift"`
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		NumCores:      1,
		TableSize:     1024,
		HistoryLength: 32,
		WeightBits:    8,
		AlignShift:    2,
	}
}

// WithDefaults returns c with zero-valued geometry fields filled in.
// AlignShift is left alone because zero is a meaningful shift.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.NumCores == 0 {
		c.NumCores = def.NumCores
	}
	if c.TableSize == 0 {
		c.TableSize = def.TableSize
	}
	if c.HistoryLength == 0 {
		c.HistoryLength = def.HistoryLength
	}
	if c.WeightBits == 0 {
		c.WeightBits = def.WeightBits
	}
	return c
}

// Validate checks that the configuration describes a buildable predictor.
func (c Config) Validate() error {
	if c.NumCores <= 0 {
		return fmt.Errorf("num_cores must be > 0")
	}
	if c.TableSize == 0 || c.TableSize&(c.TableSize-1) != 0 {
		return fmt.Errorf("table_size must be a power of 2, got %d", c.TableSize)
	}
	if c.HistoryLength < 1 || c.HistoryLength > 64 {
		return fmt.Errorf("history_length must be in [1, 64], got %d", c.HistoryLength)
	}
	if c.WeightBits < 2 || c.WeightBits > 16 {
		return fmt.Errorf("weight_bits must be in [2, 16], got %d", c.WeightBits)
	}
	if c.AlignShift >= 64 {
		return fmt.Errorf("align_shift must be < 64, got %d", c.AlignShift)
	}
	return nil
}

// Threshold returns the training threshold: floor(1.93 * HistoryLength) + 14.
func (c Config) Threshold() int32 {
	return int32(math.Floor(1.93*float64(c.HistoryLength))) + 14
}

// Bounds returns the saturation bounds for the configured weight width.
func (c Config) Bounds() Bounds {
	return BoundsForBits(c.WeightBits)
}

// LoadConfig loads a Config from a JSON file. Fields missing from the file
// keep their default values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read predictor config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse predictor config: %w", err)
	}

	return config, nil
}

// SaveConfig writes the Config to a JSON file.
func (c Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize predictor config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write predictor config file: %w", err)
	}

	return nil
}
