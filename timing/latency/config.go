package latency

import (
	"fmt"
)

// TimingConfig holds cycle costs for the CHIP-8 instruction classes and
// the frame budget they are spent against. One cycle is an abstract time
// unit; only the ratio to CyclesPerFrame matters.
type TimingConfig struct {
	// FramesPerSecond is the host frame rate, which is also the timer
	// tick rate. Default: 60.
	FramesPerSecond uint64 `toml:"frames_per_second"`

	// CyclesPerFrame is the cycle budget of one frame. Default: 12,
	// roughly 700 simple instructions per second.
	CyclesPerFrame uint64 `toml:"cycles_per_frame"`

	// ALULatency covers register and immediate arithmetic, RND and timer
	// register moves. Default: 1 cycle.
	ALULatency uint64 `toml:"alu_latency"`

	// BranchLatency covers jumps, calls, returns and skips. Default: 1 cycle.
	BranchLatency uint64 `toml:"branch_latency"`

	// IndexLatency covers LD I, ADD I and LD F. Default: 1 cycle.
	IndexLatency uint64 `toml:"index_latency"`

	// TransferLatency is the base cost of LD B, LD [I] and LD Vx, [I].
	// Default: 2 cycles.
	TransferLatency uint64 `toml:"transfer_latency"`

	// TransferByteLatency is added per byte moved by a transfer.
	// Default: 1 cycle.
	TransferByteLatency uint64 `toml:"transfer_byte_latency"`

	// DrawLatency is the base cost of DRW. Default: 4 cycles.
	DrawLatency uint64 `toml:"draw_latency"`

	// DrawRowLatency is added per sprite row drawn. Default: 1 cycle.
	DrawRowLatency uint64 `toml:"draw_row_latency"`

	// ClearLatency is the cost of CLS. Default: 4 cycles.
	ClearLatency uint64 `toml:"clear_latency"`

	// KeyLatency covers SKP, SKNP and LD Vx, K. Default: 1 cycle.
	KeyLatency uint64 `toml:"key_latency"`
}

// DefaultTimingConfig returns a TimingConfig with the nominal cadence.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		FramesPerSecond:     60,
		CyclesPerFrame:      12,
		ALULatency:          1,
		BranchLatency:       1,
		IndexLatency:        1,
		TransferLatency:     2,
		TransferByteLatency: 1,
		DrawLatency:         4,
		DrawRowLatency:      1,
		ClearLatency:        4,
		KeyLatency:          1,
	}
}

// Validate checks that the frame settings and base latencies are valid
// (> 0). Per-byte and per-row costs may be zero.
func (c *TimingConfig) Validate() error {
	if c.FramesPerSecond == 0 {
		return fmt.Errorf("frames_per_second must be > 0")
	}
	if c.CyclesPerFrame == 0 {
		return fmt.Errorf("cycles_per_frame must be > 0")
	}
	if c.ALULatency == 0 {
		return fmt.Errorf("alu_latency must be > 0")
	}
	if c.BranchLatency == 0 {
		return fmt.Errorf("branch_latency must be > 0")
	}
	if c.IndexLatency == 0 {
		return fmt.Errorf("index_latency must be > 0")
	}
	if c.TransferLatency == 0 {
		return fmt.Errorf("transfer_latency must be > 0")
	}
	if c.DrawLatency == 0 {
		return fmt.Errorf("draw_latency must be > 0")
	}
	if c.ClearLatency == 0 {
		return fmt.Errorf("clear_latency must be > 0")
	}
	if c.KeyLatency == 0 {
		return fmt.Errorf("key_latency must be > 0")
	}
	return nil
}

// Clone returns a copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}
