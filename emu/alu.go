// Package emu provides functional CHIP-8 emulation.
package emu

// ALU implements the CHIP-8 register arithmetic and logic operations.
//
// Flag conventions:
//   - ADD sets VF to the carry out of the 9-bit sum of the original
//     operands.
//   - SUB and SUBN set VF to 1 when no borrow occurs, i.e. when the
//     minuend is greater than or equal to the subtrahend.
//   - SHR and SHL shift Vx in place (Vy is ignored) and set VF to the bit
//     shifted out.
//   - OR, AND and XOR leave VF untouched.
//
// VF is always written after the result, so when x is 0xF the flag wins.
type ALU struct {
	regFile *RegFile
}

// NewALU creates a new ALU connected to the given register file.
func NewALU(regFile *RegFile) *ALU {
	return &ALU{regFile: regFile}
}

// LoadImm performs Vx = kk.
func (a *ALU) LoadImm(x, kk uint8) {
	a.regFile.WriteReg(x, kk)
}

// AddImm performs Vx = Vx + kk with 8-bit wraparound and no flag.
func (a *ALU) AddImm(x, kk uint8) {
	a.regFile.WriteReg(x, a.regFile.ReadReg(x)+kk)
}

// Move performs Vx = Vy.
func (a *ALU) Move(x, y uint8) {
	a.regFile.WriteReg(x, a.regFile.ReadReg(y))
}

// Or performs Vx = Vx | Vy.
func (a *ALU) Or(x, y uint8) {
	a.regFile.WriteReg(x, a.regFile.ReadReg(x)|a.regFile.ReadReg(y))
}

// And performs Vx = Vx & Vy.
func (a *ALU) And(x, y uint8) {
	a.regFile.WriteReg(x, a.regFile.ReadReg(x)&a.regFile.ReadReg(y))
}

// Xor performs Vx = Vx ^ Vy.
func (a *ALU) Xor(x, y uint8) {
	a.regFile.WriteReg(x, a.regFile.ReadReg(x)^a.regFile.ReadReg(y))
}

// Add performs Vx = Vx + Vy, VF = carry.
func (a *ALU) Add(x, y uint8) {
	op1 := uint16(a.regFile.ReadReg(x))
	op2 := uint16(a.regFile.ReadReg(y))
	sum := op1 + op2

	a.regFile.WriteReg(x, uint8(sum))
	a.regFile.SetFlag(sum > 0xFF)
}

// Sub performs Vx = Vx - Vy, VF = NOT borrow.
func (a *ALU) Sub(x, y uint8) {
	op1 := a.regFile.ReadReg(x)
	op2 := a.regFile.ReadReg(y)

	a.regFile.WriteReg(x, op1-op2)
	a.regFile.SetFlag(op1 >= op2)
}

// SubN performs Vx = Vy - Vx, VF = NOT borrow.
func (a *ALU) SubN(x, y uint8) {
	op1 := a.regFile.ReadReg(y)
	op2 := a.regFile.ReadReg(x)

	a.regFile.WriteReg(x, op1-op2)
	a.regFile.SetFlag(op1 >= op2)
}

// ShiftRight performs Vx = Vx >> 1, VF = old bit 0.
func (a *ALU) ShiftRight(x uint8) {
	v := a.regFile.ReadReg(x)

	a.regFile.WriteReg(x, v>>1)
	a.regFile.SetFlag(v&0x01 != 0)
}

// ShiftLeft performs Vx = Vx << 1, VF = old bit 7.
func (a *ALU) ShiftLeft(x uint8) {
	v := a.regFile.ReadReg(x)

	a.regFile.WriteReg(x, v<<1)
	a.regFile.SetFlag(v&0x80 != 0)
}

// Random performs Vx = rnd & kk.
func (a *ALU) Random(x, kk, rnd uint8) {
	a.regFile.WriteReg(x, rnd&kk)
}
