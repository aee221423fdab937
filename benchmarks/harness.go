// Package benchmarks provides timing benchmark infrastructure for c8sim
// calibration.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sarchlab/c8sim/emu"
	"github.com/sarchlab/c8sim/timing/cache"
	"github.com/sarchlab/c8sim/timing/core"
	"github.com/sarchlab/c8sim/timing/latency"
)

// BenchmarkResult holds the timing results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// Frames is the number of frames run
	Frames uint64 `json:"frames"`

	// SimulatedCycles is the total cycle count, including carried debt
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// InstructionsRetired is the number of completed instructions
	InstructionsRetired uint64 `json:"instructions_retired"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	// ICacheHits/Misses (if cache enabled)
	ICacheHits   uint64 `json:"icache_hits,omitempty"`
	ICacheMisses uint64 `json:"icache_misses,omitempty"`

	// DCacheHits/Misses (if cache enabled)
	DCacheHits   uint64 `json:"dcache_hits,omitempty"`
	DCacheMisses uint64 `json:"dcache_misses,omitempty"`

	// Branches, Loads and Stores count instructions by class
	Branches uint64 `json:"branches"`
	Loads    uint64 `json:"loads"`
	Stores   uint64 `json:"stores"`

	// Result is V0 after the run
	Result uint8 `json:"result"`

	// Error is set when the interpreter halted
	Error string `json:"error,omitempty"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Program is the CHIP-8 image, loaded at 0x200
	Program []byte

	// Frames bounds the run. Programs park on a jump-to-self when done.
	Frames int

	// ExpectedResult is the expected V0 (for validation)
	ExpectedResult uint8
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Timing is the cost table; nil means the defaults
	Timing *latency.TimingConfig

	// EnableICache enables instruction cache simulation
	EnableICache bool

	// EnableDCache enables data cache simulation
	EnableDCache bool

	// WarmupFrames run before measuring; their statistics are discarded
	// but the caches stay warm
	WarmupFrames int

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose enables detailed output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		EnableICache: true,
		EnableDCache: true,
		Output:       os.Stdout,
	}
}

// Harness runs timing benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		result := h.runBenchmark(bench)
		results = append(results, result)
	}

	return results
}

// runBenchmark executes a single benchmark.
func (h *Harness) runBenchmark(bench Benchmark) BenchmarkResult {
	result := BenchmarkResult{
		Name:        bench.Name,
		Description: bench.Description,
	}

	// Benchmarks are deterministic, including any RND
	emulator := emu.NewEmulator(emu.WithSeed(1))
	if err := emulator.LoadProgram(bench.Program); err != nil {
		result.Error = err.Error()
		return result
	}

	opts := []core.Option{}
	if h.config.Timing != nil {
		opts = append(opts, core.WithTimingConfig(h.config.Timing))
	}
	if h.config.EnableICache {
		opts = append(opts, core.WithICache(cache.DefaultConfig()))
	}
	if h.config.EnableDCache {
		opts = append(opts, core.WithDCache(cache.DefaultConfig()))
	}
	c := core.NewCore(emulator, opts...)

	for i := 0; i < h.config.WarmupFrames; i++ {
		if fr := c.RunFrame(); fr.Halted {
			result.Error = fr.Err.Error()
			return result
		}
	}
	c.ResetStats()

	start := time.Now()
	for i := 0; i < bench.Frames; i++ {
		fr := c.RunFrame()
		if fr.Halted {
			result.Error = fr.Err.Error()
			break
		}
	}
	result.WallTime = time.Since(start)

	stats := c.Stats()
	result.Frames = stats.Frames
	result.SimulatedCycles = stats.Cycles
	result.InstructionsRetired = stats.Instructions
	if stats.Instructions > 0 {
		result.CPI = float64(stats.Cycles) / float64(stats.Instructions)
	}
	result.Branches = stats.Branches
	result.Loads = stats.Loads
	result.Stores = stats.Stores
	result.ICacheHits = stats.ICache.Hits
	result.ICacheMisses = stats.ICache.Misses
	result.DCacheHits = stats.DCache.Hits
	result.DCacheMisses = stats.DCache.Misses
	result.Result = emulator.RegFile().ReadReg(0)

	if h.config.Verbose {
		_, _ = fmt.Fprintf(h.config.Output, "%s: %d frames, %d instructions\n",
			bench.Name, result.Frames, result.InstructionsRetired)
	}

	return result
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== c8sim Timing Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(h.config.Output, "  Result (V0): %d\n", r.Result)
		if r.Error != "" {
			_, _ = fmt.Fprintf(h.config.Output, "  Halted: %s\n", r.Error)
		}
		_, _ = fmt.Fprintln(h.config.Output, "  --- Timing ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Frames:               %d\n", r.Frames)
		_, _ = fmt.Fprintf(h.config.Output, "  Simulated Cycles:     %d\n", r.SimulatedCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Instructions Retired: %d\n", r.InstructionsRetired)
		_, _ = fmt.Fprintf(h.config.Output, "  CPI:                  %.3f\n", r.CPI)
		_, _ = fmt.Fprintf(h.config.Output, "  Branches:             %d\n", r.Branches)
		_, _ = fmt.Fprintf(h.config.Output, "  Loads / Stores:       %d / %d\n", r.Loads, r.Stores)

		if r.ICacheHits > 0 || r.ICacheMisses > 0 {
			_, _ = fmt.Fprintln(h.config.Output, "  --- I-Cache ---")
			_, _ = fmt.Fprintf(h.config.Output, "  Hits:   %d\n", r.ICacheHits)
			_, _ = fmt.Fprintf(h.config.Output, "  Misses: %d\n", r.ICacheMisses)
		}

		if r.DCacheHits > 0 || r.DCacheMisses > 0 {
			_, _ = fmt.Fprintln(h.config.Output, "  --- D-Cache ---")
			_, _ = fmt.Fprintf(h.config.Output, "  Hits:   %d\n", r.DCacheHits)
			_, _ = fmt.Fprintf(h.config.Output, "  Misses: %d\n", r.DCacheMisses)
		}

		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,frames,cycles,instructions,cpi,icache_hits,icache_misses,dcache_hits,dcache_misses,result")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%d,%.3f,%d,%d,%d,%d,%d\n",
			r.Name,
			r.Frames,
			r.SimulatedCycles,
			r.InstructionsRetired,
			r.CPI,
			r.ICacheHits,
			r.ICacheMisses,
			r.DCacheHits,
			r.DCacheMisses,
			r.Result,
		)
	}
}

// PrintJSON outputs benchmark results as indented JSON.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(h.config.Output, string(data))
	return err
}

// BuildProgram assembles instruction words into a big-endian image.
func BuildProgram(words ...uint16) []byte {
	program := make([]byte, 0, len(words)*2)
	for _, w := range words {
		program = append(program, byte(w>>8), byte(w))
	}
	return program
}
