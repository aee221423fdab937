// Package config handles the c8sim TOML configuration file.
//
// Loading starts from Default and decodes the file over it, so a file only
// needs the keys it changes:
//
//	[timing]
//	cycles_per_frame = 20
//
//	[host]
//	frontend = "term"
package config

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/sarchlab/c8sim/timing/cache"
	"github.com/sarchlab/c8sim/timing/latency"
)

// Frontend names accepted in [host] frontend.
const (
	FrontendSDL      = "sdl"
	FrontendTerm     = "term"
	FrontendHeadless = "headless"
)

// Config is the complete configuration.
type Config struct {
	Timing  *latency.TimingConfig `toml:"timing"`
	Cache   CacheConfig           `toml:"cache"`
	Machine MachineConfig         `toml:"machine"`
	Host    HostConfig            `toml:"host"`
	Log     LogConfig             `toml:"log"`
}

// CacheConfig configures the optional locality model.
type CacheConfig struct {
	Enabled     bool         `toml:"enabled"`
	Instruction cache.Config `toml:"instruction"`
	Data        cache.Config `toml:"data"`
}

// MachineConfig configures the interpreter.
type MachineConfig struct {
	// Seed makes RND reproducible. Unset means a random seed per run.
	Seed *uint64 `toml:"seed,omitempty"`
	// MaxInstructions halts the interpreter after this many instructions;
	// 0 means no limit.
	MaxInstructions uint64 `toml:"max_instructions"`
}

// HostConfig configures the host loop and frontends.
type HostConfig struct {
	Frontend string `toml:"frontend"`
	// Scale is the window pixels per CHIP-8 pixel (sdl).
	Scale int `toml:"scale"`
	// ToneFrequency is the beep pitch in Hz.
	ToneFrequency float64 `toml:"tone_frequency"`
	// KeyHoldFrames is how long a key stays pressed after a keystroke
	// (term), since terminals report no key releases.
	KeyHoldFrames int `toml:"key_hold_frames"`
	// Frames bounds the run; 0 runs until quit (sdl, term) and is not
	// allowed for headless.
	Frames int `toml:"frames"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Verbosity is passed to commonlog.Configure; higher is chattier.
	Verbosity int `toml:"verbosity"`
	// File receives the log instead of stderr when set.
	File string `toml:"file,omitempty"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Timing: latency.DefaultTimingConfig(),
		Cache: CacheConfig{
			Enabled:     false,
			Instruction: cache.DefaultConfig(),
			Data:        cache.DefaultConfig(),
		},
		Host: HostConfig{
			Frontend:      FrontendSDL,
			Scale:         10,
			ToneFrequency: 440,
			KeyHoldFrames: 6,
		},
	}
}

// Load reads a configuration file over the defaults. Unknown keys are an
// error, so typos do not pass silently.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	cfg := Default()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the configuration as TOML.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if c.Timing == nil {
		return fmt.Errorf("timing: missing")
	}
	if err := c.Timing.Validate(); err != nil {
		return fmt.Errorf("timing: %w", err)
	}

	if c.Cache.Enabled {
		if err := c.Cache.Instruction.Validate(); err != nil {
			return fmt.Errorf("cache.instruction: %w", err)
		}
		if err := c.Cache.Data.Validate(); err != nil {
			return fmt.Errorf("cache.data: %w", err)
		}
	}

	switch c.Host.Frontend {
	case FrontendSDL, FrontendTerm, FrontendHeadless:
	default:
		return fmt.Errorf("host: unknown frontend %q", c.Host.Frontend)
	}
	if c.Host.Scale < 1 {
		return fmt.Errorf("host: scale must be >= 1")
	}
	if c.Host.ToneFrequency <= 0 {
		return fmt.Errorf("host: tone_frequency must be > 0")
	}
	if c.Host.KeyHoldFrames < 1 {
		return fmt.Errorf("host: key_hold_frames must be >= 1")
	}
	if c.Host.Frames < 0 {
		return fmt.Errorf("host: frames must be >= 0")
	}
	if c.Host.Frontend == FrontendHeadless && c.Host.Frames == 0 {
		return fmt.Errorf("host: the headless frontend needs frames > 0")
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Timing != nil {
		clone.Timing = c.Timing.Clone()
	}
	if c.Machine.Seed != nil {
		seed := *c.Machine.Seed
		clone.Machine.Seed = &seed
	}
	return &clone
}
