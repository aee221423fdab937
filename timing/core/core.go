// Package core provides the frame-paced CPU core model.
// It drives the interpreter for one host frame's cycle budget at a time,
// charging each instruction its latency plus optional cache cycles.
package core

import (
	"github.com/tliron/commonlog"

	"github.com/sarchlab/c8sim/emu"
	"github.com/sarchlab/c8sim/insts"
	"github.com/sarchlab/c8sim/timing/cache"
	"github.com/sarchlab/c8sim/timing/latency"
)

var log = commonlog.GetLogger("c8sim.core")

// Stats holds performance statistics for the core.
type Stats struct {
	// Frames is the number of frames run.
	Frames uint64
	// Cycles is the total number of cycles spent.
	Cycles uint64
	// Instructions is the number of instructions retired.
	Instructions uint64
	// BlockedFrames counts frames that ended waiting for a key.
	BlockedFrames uint64
	// Branches, Loads and Stores count retired instructions by class.
	Branches uint64
	Loads    uint64
	Stores   uint64
	// ICache and DCache hold cache statistics when the caches are enabled.
	ICache cache.Statistics
	DCache cache.Statistics
}

// FrameResult describes one frame of execution.
type FrameResult struct {
	// Cycles spent in this frame, including overrun into the next.
	Cycles uint64
	// Instructions retired in this frame.
	Instructions uint64
	// Blocked is true if the frame ended waiting for a key.
	Blocked bool
	// Halted is true once the interpreter has stopped; Err says why.
	Halted bool
	Err    error
	// Sound is the tone state after the timer tick.
	Sound bool
}

// Core drives an emulator frame by frame.
type Core struct {
	emulator *emu.Emulator
	table    *latency.Table

	icache *cache.Cache
	dcache *cache.Cache

	// debt is the overrun of the previous frame, taken out of the next one.
	debt  uint64
	stats Stats
}

// Option configures a Core.
type Option func(*Core)

// WithTimingConfig sets the latency table and frame budget.
func WithTimingConfig(config *latency.TimingConfig) Option {
	return func(c *Core) {
		c.table = latency.NewTableWithConfig(config)
	}
}

// WithICache models instruction fetches through a cache.
func WithICache(config cache.Config) Option {
	return func(c *Core) {
		c.icache = cache.New(config)
	}
}

// WithDCache models DRW, LD B and the register block transfers through a
// cache.
func WithDCache(config cache.Config) Option {
	return func(c *Core) {
		c.dcache = cache.New(config)
	}
}

// NewCore creates a new Core around e.
func NewCore(e *emu.Emulator, opts ...Option) *Core {
	c := &Core{
		emulator: e,
		table:    latency.NewTable(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Emulator returns the driven emulator.
func (c *Core) Emulator() *emu.Emulator {
	return c.emulator
}

// Config returns the timing configuration in use.
func (c *Core) Config() *latency.TimingConfig {
	return c.table.Config()
}

// RunFrame executes instructions until the frame's cycle budget is spent,
// the interpreter blocks on a key, or it halts. Cycles spent past the
// budget are taken out of the next frame. The timers tick exactly once per
// frame, whatever happened during it.
func (c *Core) RunFrame() FrameResult {
	var result FrameResult

	budget := c.table.Config().CyclesPerFrame
	if c.debt >= budget {
		c.debt -= budget
		budget = 0
	} else {
		budget -= c.debt
		c.debt = 0
	}

	for result.Cycles < budget {
		regs := c.emulator.RegFile()
		pc, index := regs.PC, regs.I

		step := c.emulator.Step()
		if step.Halted {
			result.Halted = true
			result.Err = step.Err
			break
		}
		if step.Inst == nil {
			// Blocked before fetching anything.
			result.Blocked = true
			break
		}

		result.Cycles += c.cost(step.Inst, pc, index)
		result.Instructions++

		if step.Blocked {
			result.Blocked = true
			break
		}
	}

	if halted, err := c.emulator.Halted(); halted {
		result.Halted = true
		result.Err = err
	}

	if result.Cycles > budget {
		c.debt = result.Cycles - budget
	}
	if result.Blocked {
		c.debt = 0
		c.stats.BlockedFrames++
	}

	c.emulator.TickTimers()
	result.Sound = c.emulator.SoundActive()

	c.stats.Frames++
	c.stats.Cycles += result.Cycles
	c.stats.Instructions += result.Instructions

	if result.Halted {
		log.Debugf("frame %d: interpreter halted after %d instructions", c.stats.Frames, c.stats.Instructions)
	}

	return result
}

// cost returns the cycles charged for inst, fetched at pc with I = index.
func (c *Core) cost(inst *insts.Instruction, pc, index uint16) uint64 {
	cycles := c.table.GetLatency(inst)

	if c.table.IsBranchOp(inst) {
		c.stats.Branches++
	}
	store := c.table.IsStoreOp(inst)
	switch {
	case store:
		c.stats.Stores++
	case c.table.IsLoadOp(inst):
		c.stats.Loads++
	}

	if c.icache != nil {
		cycles += c.icache.Read(pc, emu.InstructionSize).Latency
	}

	if c.dcache != nil && c.table.IsMemoryOp(inst) {
		size := latency.TransferSize(inst)
		if store {
			cycles += c.dcache.Write(index, size).Latency
		} else {
			cycles += c.dcache.Read(index, size).Latency
		}
	}

	return cycles
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	stats := c.stats
	if c.icache != nil {
		stats.ICache = c.icache.Stats()
	}
	if c.dcache != nil {
		stats.DCache = c.dcache.Stats()
	}
	return stats
}

// ResetStats clears the statistics, including the cache counters, but
// keeps the frame carry and cache contents, so a warmed-up run can be
// measured on its own.
func (c *Core) ResetStats() {
	c.stats = Stats{}
	if c.icache != nil {
		c.icache.ResetStats()
	}
	if c.dcache != nil {
		c.dcache.ResetStats()
	}
}

// Reset clears the frame carry, statistics and cache contents. The
// emulator is left alone.
func (c *Core) Reset() {
	c.debt = 0
	c.stats = Stats{}
	if c.icache != nil {
		c.icache.Reset()
	}
	if c.dcache != nil {
		c.dcache.Reset()
	}
}
