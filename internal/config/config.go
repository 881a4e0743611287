package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/banshee-data/pointreduce/internal/reduce"
)

// DefaultConfigPath is the path to the canonical defaults file.
const DefaultConfigPath = "config/reduce.defaults.json"

// Defaults used when a field is absent from the file.
const (
	DefaultPointCount   = 6000
	DefaultThreshold    = reduce.DefaultThreshold
	DefaultDiskRadius   = 550.0
	DefaultSeed         = uint64(1)
	DefaultAnchorPolicy = reduce.PolicyFirst
)

// Config holds the parameters of a reduction run. Every field is optional;
// the Get* methods fall back to the defaults above, so partial files are
// safe.
type Config struct {
	// Generator params
	PointCount *int     `json:"point_count,omitempty"`
	DiskRadius *float64 `json:"disk_radius,omitempty"`
	Seed       *uint64  `json:"seed,omitempty"`

	// Reducer params
	Threshold    *float64 `json:"threshold,omitempty"`
	AnchorPolicy *string  `json:"anchor_policy,omitempty"`

	// Diagnostics
	Verbose *bool `json:"verbose,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }
func ptrUint64(v uint64) *uint64    { return &v }
func ptrString(v string) *string    { return &v }
func ptrBool(v bool) *bool          { return &v }

// EmptyConfig returns a Config with all fields set to nil.
func EmptyConfig() *Config {
	return &Config{}
}

// DefaultConfig returns a Config with every field populated from the
// package defaults.
func DefaultConfig() *Config {
	return &Config{
		PointCount:   ptrInt(DefaultPointCount),
		DiskRadius:   ptrFloat64(DefaultDiskRadius),
		Seed:         ptrUint64(DefaultSeed),
		Threshold:    ptrFloat64(DefaultThreshold),
		AnchorPolicy: ptrString(DefaultAnchorPolicy),
		Verbose:      ptrBool(false),
	}
}

// LoadConfig loads a Config from a JSON file.
// The file must have a .json extension and be at most 1MB.
func LoadConfig(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents up to the repository root.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *Config {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *Config) Validate() error {
	if c.PointCount != nil && *c.PointCount < 0 {
		return fmt.Errorf("point_count must be non-negative, got %d", *c.PointCount)
	}

	if c.DiskRadius != nil {
		if r := *c.DiskRadius; !(r > 0) || math.IsInf(r, 0) {
			return fmt.Errorf("disk_radius must be positive and finite, got %v", r)
		}
	}

	// Infinity is allowed: it collapses the cloud to a single centroid.
	if c.Threshold != nil && !(*c.Threshold > 0) {
		return fmt.Errorf("threshold must be positive, got %v", *c.Threshold)
	}

	if c.AnchorPolicy != nil {
		if _, err := reduce.NewAnchorSelector(*c.AnchorPolicy, 0); err != nil {
			return err
		}
	}

	return nil
}

// Merge copies every non-nil field of other over c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.PointCount != nil {
		c.PointCount = other.PointCount
	}
	if other.DiskRadius != nil {
		c.DiskRadius = other.DiskRadius
	}
	if other.Seed != nil {
		c.Seed = other.Seed
	}
	if other.Threshold != nil {
		c.Threshold = other.Threshold
	}
	if other.AnchorPolicy != nil {
		c.AnchorPolicy = other.AnchorPolicy
	}
	if other.Verbose != nil {
		c.Verbose = other.Verbose
	}
}

// GetPointCount returns the point_count value or the default.
func (c *Config) GetPointCount() int {
	if c.PointCount == nil {
		return DefaultPointCount
	}
	return *c.PointCount
}

// GetDiskRadius returns the disk_radius value or the default.
func (c *Config) GetDiskRadius() float64 {
	if c.DiskRadius == nil {
		return DefaultDiskRadius
	}
	return *c.DiskRadius
}

// GetSeed returns the seed value or the default.
func (c *Config) GetSeed() uint64 {
	if c.Seed == nil {
		return DefaultSeed
	}
	return *c.Seed
}

// GetThreshold returns the threshold value or the default.
func (c *Config) GetThreshold() float64 {
	if c.Threshold == nil {
		return DefaultThreshold
	}
	return *c.Threshold
}

// GetAnchorPolicy returns the anchor_policy value or the default.
func (c *Config) GetAnchorPolicy() string {
	if c.AnchorPolicy == nil || *c.AnchorPolicy == "" {
		return DefaultAnchorPolicy
	}
	return *c.AnchorPolicy
}

// GetVerbose returns the verbose value or the default.
func (c *Config) GetVerbose() bool {
	if c.Verbose == nil {
		return false
	}
	return *c.Verbose
}

// Reducer builds a reducer from the threshold and anchor policy.
func (c *Config) Reducer() (*reduce.Reducer, error) {
	sel, err := reduce.NewAnchorSelector(c.GetAnchorPolicy(), c.GetSeed())
	if err != nil {
		return nil, err
	}
	return reduce.NewReducer(c.GetThreshold(), sel), nil
}

// configJSON has Config's fields without its methods.
type configJSON Config

// MarshalJSON writes the threshold through reduce.JSONThreshold so an
// infinite threshold survives encoding.
func (c Config) MarshalJSON() ([]byte, error) {
	aux := struct {
		configJSON
		Threshold *reduce.JSONThreshold `json:"threshold,omitempty"`
	}{configJSON: configJSON(c)}
	if c.Threshold != nil {
		t := reduce.JSONThreshold(*c.Threshold)
		aux.Threshold = &t
	}
	return json.Marshal(aux)
}

// UnmarshalJSON accepts the threshold as a number or as a string such as
// "Inf".
func (c *Config) UnmarshalJSON(data []byte) error {
	aux := struct {
		configJSON
		Threshold *reduce.JSONThreshold `json:"threshold,omitempty"`
	}{configJSON: configJSON(*c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*c = Config(aux.configJSON)
	if aux.Threshold != nil {
		t := float64(*aux.Threshold)
		c.Threshold = &t
	}
	return nil
}
