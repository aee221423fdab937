package emu

import "fmt"

// Memory layout.
//
//	0x000-0x04F glyph sprites for hex digits 0-F (read-only)
//	0x050-0x1FF reserved (read-only)
//	0x200-0xFFF program image and program data
//
// The call stack is held out of band (see Stack), so no part of the
// address space is shared with return addresses.
const (
	MemorySize     = 4096
	ProgramStart   = 0x200
	MaxProgramSize = MemorySize - ProgramStart
	GlyphBase      = 0x000
	GlyphStride    = 5
)

var glyphs = [16 * GlyphStride]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Glyph returns the five sprite rows for hex digit d (0-F).
func Glyph(d uint8) []byte {
	start := int(d&0xF) * GlyphStride
	return glyphs[start : start+GlyphStride]
}

// Memory is the 4KB CHIP-8 address space.
type Memory struct {
	data [MemorySize]byte
}

// NewMemory creates a zeroed address space with the glyph sprites in place.
func NewMemory() *Memory {
	m := &Memory{}
	m.Reset()
	return m
}

// Reset zeroes the address space and restores the glyph sprites.
func (m *Memory) Reset() {
	m.data = [MemorySize]byte{}
	copy(m.data[GlyphBase:], glyphs[:])
}

// Size returns the size of the address space in bytes.
func (m *Memory) Size() int {
	return MemorySize
}

// LoadProgram copies image to ProgramStart. Any previous image is cleared.
func (m *Memory) LoadProgram(image []byte) error {
	if err := checkProgramSize(len(image)); err != nil {
		return err
	}
	clear(m.data[ProgramStart:])
	copy(m.data[ProgramStart:], image)
	return nil
}

func (m *Memory) checkRead(addr uint16, size int, op string) error {
	if int(addr)+size > MemorySize {
		return &OutOfRangeError{Op: op, Addr: addr, Size: size}
	}
	return nil
}

func (m *Memory) checkWrite(addr uint16, size int, op string) error {
	if addr < ProgramStart || int(addr)+size > MemorySize {
		return &OutOfRangeError{Op: op, Addr: addr, Size: size}
	}
	return nil
}

// Read8 reads one byte.
func (m *Memory) Read8(addr uint16) (uint8, error) {
	if err := m.checkRead(addr, 1, "read"); err != nil {
		return 0, err
	}
	return m.data[addr], nil
}

// Write8 writes one byte. Only the program region is writable.
func (m *Memory) Write8(addr uint16, value uint8) error {
	if err := m.checkWrite(addr, 1, "write"); err != nil {
		return err
	}
	m.data[addr] = value
	return nil
}

// Read16 reads a big-endian word.
func (m *Memory) Read16(addr uint16) (uint16, error) {
	if err := m.checkRead(addr, 2, "read"); err != nil {
		return 0, err
	}
	return uint16(m.data[addr])<<8 | uint16(m.data[addr+1]), nil
}

// Write16 writes a big-endian word.
func (m *Memory) Write16(addr uint16, value uint16) error {
	if err := m.checkWrite(addr, 2, "write"); err != nil {
		return err
	}
	m.data[addr] = uint8(value >> 8)
	m.data[addr+1] = uint8(value)
	return nil
}

func checkProgramSize(n int) error {
	if n > MaxProgramSize {
		return fmt.Errorf("program of %d bytes exceeds %d bytes of program memory: %w",
			n, MaxProgramSize, ErrOutOfRange)
	}
	return nil
}

// ReadBytes returns a copy of n bytes starting at addr.
func (m *Memory) ReadBytes(addr uint16, n int) ([]byte, error) {
	if err := m.checkRead(addr, n, "read"); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, m.data[int(addr):int(addr)+n])
	return out, nil
}

// WriteBytes copies data to addr. Nothing is written if any byte would land
// outside the program region.
func (m *Memory) WriteBytes(addr uint16, data []byte) error {
	if err := m.checkWrite(addr, len(data), "write"); err != nil {
		return err
	}
	copy(m.data[int(addr):], data)
	return nil
}
