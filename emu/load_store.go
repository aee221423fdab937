// Package emu provides functional CHIP-8 emulation.
package emu

// LoadStoreUnit implements the I-relative memory transfers.
// I is never modified by the bulk transfers.
type LoadStoreUnit struct {
	regFile *RegFile
	memory  *Memory
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given
// register file and memory.
func NewLoadStoreUnit(regFile *RegFile, memory *Memory) *LoadStoreUnit {
	return &LoadStoreUnit{
		regFile: regFile,
		memory:  memory,
	}
}

// LoadIndex performs I = nnn.
func (lsu *LoadStoreUnit) LoadIndex(nnn uint16) {
	lsu.regFile.I = nnn
}

// AddIndex performs I = I + Vx with 16-bit wraparound. VF is untouched.
func (lsu *LoadStoreUnit) AddIndex(x uint8) {
	lsu.regFile.I += uint16(lsu.regFile.ReadReg(x))
}

// LoadGlyph points I at the glyph sprite for the low nibble of Vx.
func (lsu *LoadStoreUnit) LoadGlyph(x uint8) {
	lsu.regFile.I = GlyphBase + uint16(lsu.regFile.ReadReg(x)&0xF)*GlyphStride
}

// StoreBCD writes the hundreds, tens and units digits of Vx to I, I+1, I+2.
func (lsu *LoadStoreUnit) StoreBCD(x uint8) error {
	v := lsu.regFile.ReadReg(x)
	digits := []byte{v / 100, (v / 10) % 10, v % 10}
	return lsu.memory.WriteBytes(lsu.regFile.I, digits)
}

// StoreRegs copies V0..Vx inclusive to memory starting at I.
func (lsu *LoadStoreUnit) StoreRegs(x uint8) error {
	n := int(x&0xF) + 1
	return lsu.memory.WriteBytes(lsu.regFile.I, lsu.regFile.V[:n])
}

// LoadRegs copies memory starting at I into V0..Vx inclusive.
func (lsu *LoadStoreUnit) LoadRegs(x uint8) error {
	n := int(x&0xF) + 1
	data, err := lsu.memory.ReadBytes(lsu.regFile.I, n)
	if err != nil {
		return err
	}
	copy(lsu.regFile.V[:n], data)
	return nil
}

// Sprite returns the n sprite rows starting at I.
func (lsu *LoadStoreUnit) Sprite(n uint8) ([]byte, error) {
	return lsu.memory.ReadBytes(lsu.regFile.I, int(n))
}
