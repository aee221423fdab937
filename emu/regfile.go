// Package emu provides functional CHIP-8 emulation.
package emu

// FlagReg is the index of VF, which doubles as the carry, borrow, shift-out
// and collision flag.
const FlagReg = 0xF

// RegFile represents the CHIP-8 register file.
// It contains 16 general-purpose 8-bit registers (V0-VF), the index
// register I, the program counter and the two countdown timers.
type RegFile struct {
	// V holds general-purpose registers V0-VF.
	V [16]uint8

	// I is the 16-bit index register.
	I uint16

	// PC is the program counter.
	PC uint16

	// DT is the delay timer.
	DT uint8

	// ST is the sound timer.
	ST uint8
}

// ReadReg reads a V register. Only the low nibble of reg is used.
func (r *RegFile) ReadReg(reg uint8) uint8 {
	return r.V[reg&0xF]
}

// WriteReg writes a V register. Only the low nibble of reg is used.
func (r *RegFile) WriteReg(reg uint8, value uint8) {
	r.V[reg&0xF] = value
}

// SetFlag writes 1 or 0 to VF.
func (r *RegFile) SetFlag(set bool) {
	if set {
		r.V[FlagReg] = 1
		return
	}
	r.V[FlagReg] = 0
}

// Flag reads VF.
func (r *RegFile) Flag() uint8 {
	return r.V[FlagReg]
}
