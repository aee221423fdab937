// Package latency provides instruction cost models for frame-paced
// execution.
//
// Each instruction class has a configurable cost in cycles; the frame
// driver spends TimingConfig.CyclesPerFrame cycles per host frame.
package latency

import (
	"github.com/sarchlab/c8sim/insts"
)

// Table provides instruction latency lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a new latency table with default timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a new latency table with custom timing configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// GetLatency returns the cost in cycles for the given instruction.
// Unknown instructions cost 1 cycle; they halt the interpreter anyway.
func (t *Table) GetLatency(inst *insts.Instruction) uint64 {
	if inst == nil {
		return 1
	}

	c := t.config
	switch inst.Op {
	case insts.OpLDImm, insts.OpADDImm, insts.OpLDReg, insts.OpOR, insts.OpAND,
		insts.OpXOR, insts.OpADD, insts.OpSUB, insts.OpSHR, insts.OpSUBN,
		insts.OpSHL, insts.OpRND, insts.OpLDVxDT, insts.OpLDDTVx, insts.OpLDSTVx:
		return c.ALULatency

	case insts.OpRET, insts.OpJP, insts.OpCALL, insts.OpJPV0,
		insts.OpSEImm, insts.OpSNEImm, insts.OpSEReg, insts.OpSNEReg:
		return c.BranchLatency

	case insts.OpLDI, insts.OpADDI, insts.OpLDF:
		return c.IndexLatency

	case insts.OpLDB, insts.OpSTREGS, insts.OpLDREGS:
		return c.TransferLatency + c.TransferByteLatency*uint64(TransferSize(inst))

	case insts.OpDRW:
		return c.DrawLatency + c.DrawRowLatency*uint64(inst.N)

	case insts.OpCLS:
		return c.ClearLatency

	case insts.OpSKP, insts.OpSKNP, insts.OpLDVxK:
		return c.KeyLatency

	default:
		return 1
	}
}

// TransferSize returns the number of memory bytes the instruction reads or
// writes at I, or 0 if it does not access memory.
func TransferSize(inst *insts.Instruction) int {
	if inst == nil {
		return 0
	}
	switch inst.Op {
	case insts.OpLDB:
		return 3
	case insts.OpSTREGS, insts.OpLDREGS:
		return int(inst.X) + 1
	case insts.OpDRW:
		return int(inst.N)
	default:
		return 0
	}
}

// IsMemoryOp returns true if the instruction accesses memory at I.
func (t *Table) IsMemoryOp(inst *insts.Instruction) bool {
	return inst != nil && inst.IsMemoryOp()
}

// IsLoadOp returns true if the instruction reads memory at I.
func (t *Table) IsLoadOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	return inst.Op == insts.OpLDREGS || inst.Op == insts.OpDRW
}

// IsStoreOp returns true if the instruction writes memory at I.
func (t *Table) IsStoreOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	return inst.Op == insts.OpSTREGS || inst.Op == insts.OpLDB
}

// IsBranchOp returns true if the instruction sets PC itself.
func (t *Table) IsBranchOp(inst *insts.Instruction) bool {
	return inst != nil && inst.IsFlow()
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
