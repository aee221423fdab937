// Package emu provides functional CHIP-8 emulation.
package emu

// InstructionSize is the width of every CHIP-8 instruction in bytes.
const InstructionSize = 2

// BranchUnit implements CHIP-8 control flow. Every method leaves PC at its
// final value; the caller does not add the sequential advance afterwards.
type BranchUnit struct {
	regFile *RegFile
	stack   *Stack
}

// NewBranchUnit creates a new BranchUnit connected to the given register
// file and call stack.
func NewBranchUnit(regFile *RegFile, stack *Stack) *BranchUnit {
	return &BranchUnit{regFile: regFile, stack: stack}
}

// Jump performs PC = nnn.
func (b *BranchUnit) Jump(nnn uint16) {
	b.regFile.PC = nnn
}

// JumpV0 performs PC = nnn + V0. The target may leave the address space;
// the next fetch reports that.
func (b *BranchUnit) JumpV0(nnn uint16) {
	b.regFile.PC = nnn + uint16(b.regFile.ReadReg(0))
}

// Call pushes the address of the following instruction and jumps to nnn.
// On overflow PC is left pointing at the call.
func (b *BranchUnit) Call(nnn uint16) error {
	if err := b.stack.Push(b.regFile.PC + InstructionSize); err != nil {
		return &StackError{Op: "call", Addr: b.regFile.PC}
	}
	b.regFile.PC = nnn
	return nil
}

// Return pops the return address into PC.
func (b *BranchUnit) Return() error {
	addr, err := b.stack.Pop()
	if err != nil {
		return &StackError{Op: "ret", Addr: b.regFile.PC}
	}
	b.regFile.PC = addr
	return nil
}

// SkipIf advances PC past the current instruction, and past the next one
// as well when cond holds.
func (b *BranchUnit) SkipIf(cond bool) {
	if cond {
		b.regFile.PC += 2 * InstructionSize
		return
	}
	b.regFile.PC += InstructionSize
}
