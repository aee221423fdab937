// Package insts provides CHIP-8 instruction definitions and decoding.
package insts

import "fmt"

// Op represents a CHIP-8 operation.
type Op uint8

// CHIP-8 operations. The legacy SYS nnn form is not part of the table; it
// decodes to OpUnknown like any other unassigned pattern.
const (
	OpUnknown Op = iota
	OpCLS        // 00E0
	OpRET        // 00EE
	OpJP         // 1nnn
	OpCALL       // 2nnn
	OpSEImm      // 3xkk
	OpSNEImm     // 4xkk
	OpSEReg      // 5xy0
	OpLDImm      // 6xkk
	OpADDImm     // 7xkk
	OpLDReg      // 8xy0
	OpOR         // 8xy1
	OpAND        // 8xy2
	OpXOR        // 8xy3
	OpADD        // 8xy4
	OpSUB        // 8xy5
	OpSHR        // 8xy6
	OpSUBN       // 8xy7
	OpSHL        // 8xyE
	OpSNEReg     // 9xy0
	OpLDI        // Annn
	OpJPV0       // Bnnn
	OpRND        // Cxkk
	OpDRW        // Dxyn
	OpSKP        // Ex9E
	OpSKNP       // ExA1
	OpLDVxDT     // Fx07
	OpLDVxK      // Fx0A
	OpLDDTVx     // Fx15
	OpLDSTVx     // Fx18
	OpADDI       // Fx1E
	OpLDF        // Fx29
	OpLDB        // Fx33
	OpSTREGS     // Fx55
	OpLDREGS     // Fx65

	opCount
)

// NumOps is the number of decodable operations (OpUnknown excluded).
const NumOps = int(opCount) - 1

var opNames = [...]string{
	OpUnknown: "UNKNOWN",
	OpCLS:     "CLS",
	OpRET:     "RET",
	OpJP:      "JP",
	OpCALL:    "CALL",
	OpSEImm:   "SE_IMM",
	OpSNEImm:  "SNE_IMM",
	OpSEReg:   "SE_REG",
	OpLDImm:   "LD_IMM",
	OpADDImm:  "ADD_IMM",
	OpLDReg:   "LD_REG",
	OpOR:      "OR",
	OpAND:     "AND",
	OpXOR:     "XOR",
	OpADD:     "ADD",
	OpSUB:     "SUB",
	OpSHR:     "SHR",
	OpSUBN:    "SUBN",
	OpSHL:     "SHL",
	OpSNEReg:  "SNE_REG",
	OpLDI:     "LD_I",
	OpJPV0:    "JP_V0",
	OpRND:     "RND",
	OpDRW:     "DRW",
	OpSKP:     "SKP",
	OpSKNP:    "SKNP",
	OpLDVxDT:  "LD_VX_DT",
	OpLDVxK:   "LD_VX_K",
	OpLDDTVx:  "LD_DT_VX",
	OpLDSTVx:  "LD_ST_VX",
	OpADDI:    "ADD_I",
	OpLDF:     "LD_F",
	OpLDB:     "LD_B",
	OpSTREGS:  "ST_REGS",
	OpLDREGS:  "LD_REGS",
}

// String returns the symbolic name of the operation.
func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", uint8(o))
}

// Format represents the operand shape of an instruction.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatNone           // no operands (CLS, RET)
	FormatAddr           // nnn
	FormatRegImm         // x, kk
	FormatRegReg         // x, y
	FormatReg            // x
	FormatIndexAddr      // I, nnn
	FormatV0Addr         // V0, nnn
	FormatDraw           // x, y, n
)

// Instruction represents a decoded CHIP-8 instruction.
type Instruction struct {
	Word   uint16 // Raw instruction word
	Op     Op     // Operation
	Format Format // Operand shape

	X   uint8  // Register index from bits [11:8]
	Y   uint8  // Register index from bits [7:4]
	N   uint8  // Nibble from bits [3:0]
	KK  uint8  // Byte from bits [7:0]
	NNN uint16 // Address from bits [11:0]
}

// IsFlow reports whether the instruction writes PC itself rather than
// relying on the sequential advance.
func (i *Instruction) IsFlow() bool {
	switch i.Op {
	case OpRET, OpJP, OpCALL, OpJPV0,
		OpSEImm, OpSNEImm, OpSEReg, OpSNEReg, OpSKP, OpSKNP:
		return true
	default:
		return false
	}
}

// IsSkip reports whether the instruction is a conditional skip.
func (i *Instruction) IsSkip() bool {
	switch i.Op {
	case OpSEImm, OpSNEImm, OpSEReg, OpSNEReg, OpSKP, OpSKNP:
		return true
	default:
		return false
	}
}

// IsMemoryOp reports whether the instruction reads or writes memory at I.
func (i *Instruction) IsMemoryOp() bool {
	switch i.Op {
	case OpDRW, OpLDB, OpSTREGS, OpLDREGS:
		return true
	default:
		return false
	}
}

// DecodeError reports a word that matches no entry of the decode table.
// Addr is the address the word was fetched from.
type DecodeError struct {
	Word uint16
	Addr uint16
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unknown instruction 0x%04X at 0x%03X", e.Word, e.Addr)
}

// Decoder decodes CHIP-8 instruction words.
type Decoder struct{}

// NewDecoder creates a new CHIP-8 instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 16-bit big-endian instruction word. Words outside the
// table yield an Instruction with Op == OpUnknown.
func (d *Decoder) Decode(word uint16) *Instruction {
	inst := &Instruction{
		Word:   word,
		Op:     OpUnknown,
		Format: FormatUnknown,
		X:      uint8(word>>8) & 0xF,
		Y:      uint8(word>>4) & 0xF,
		N:      uint8(word) & 0xF,
		KK:     uint8(word),
		NNN:    word & 0x0FFF,
	}

	switch word >> 12 {
	case 0x0:
		d.decodeSystem(inst)
	case 0x1:
		inst.set(OpJP, FormatAddr)
	case 0x2:
		inst.set(OpCALL, FormatAddr)
	case 0x3:
		inst.set(OpSEImm, FormatRegImm)
	case 0x4:
		inst.set(OpSNEImm, FormatRegImm)
	case 0x5:
		if inst.N == 0 {
			inst.set(OpSEReg, FormatRegReg)
		}
	case 0x6:
		inst.set(OpLDImm, FormatRegImm)
	case 0x7:
		inst.set(OpADDImm, FormatRegImm)
	case 0x8:
		d.decodeALU(inst)
	case 0x9:
		if inst.N == 0 {
			inst.set(OpSNEReg, FormatRegReg)
		}
	case 0xA:
		inst.set(OpLDI, FormatIndexAddr)
	case 0xB:
		inst.set(OpJPV0, FormatV0Addr)
	case 0xC:
		inst.set(OpRND, FormatRegImm)
	case 0xD:
		inst.set(OpDRW, FormatDraw)
	case 0xE:
		d.decodeKey(inst)
	case 0xF:
		d.decodeMisc(inst)
	}

	return inst
}

func (i *Instruction) set(op Op, format Format) {
	i.Op = op
	i.Format = format
}

// decodeSystem handles the 0x0 family. Only the exact words 00E0 and 00EE
// are accepted.
func (d *Decoder) decodeSystem(inst *Instruction) {
	switch inst.Word {
	case 0x00E0:
		inst.set(OpCLS, FormatNone)
	case 0x00EE:
		inst.set(OpRET, FormatNone)
	}
}

// decodeALU handles the 8xyN family, selected by the low nibble.
func (d *Decoder) decodeALU(inst *Instruction) {
	switch inst.N {
	case 0x0:
		inst.set(OpLDReg, FormatRegReg)
	case 0x1:
		inst.set(OpOR, FormatRegReg)
	case 0x2:
		inst.set(OpAND, FormatRegReg)
	case 0x3:
		inst.set(OpXOR, FormatRegReg)
	case 0x4:
		inst.set(OpADD, FormatRegReg)
	case 0x5:
		inst.set(OpSUB, FormatRegReg)
	case 0x6:
		inst.set(OpSHR, FormatReg)
	case 0x7:
		inst.set(OpSUBN, FormatRegReg)
	case 0xE:
		inst.set(OpSHL, FormatReg)
	}
}

// decodeKey handles the Ex family, selected by the low byte.
func (d *Decoder) decodeKey(inst *Instruction) {
	switch inst.KK {
	case 0x9E:
		inst.set(OpSKP, FormatReg)
	case 0xA1:
		inst.set(OpSKNP, FormatReg)
	}
}

// decodeMisc handles the Fx family, selected by the low byte.
func (d *Decoder) decodeMisc(inst *Instruction) {
	switch inst.KK {
	case 0x07:
		inst.set(OpLDVxDT, FormatReg)
	case 0x0A:
		inst.set(OpLDVxK, FormatReg)
	case 0x15:
		inst.set(OpLDDTVx, FormatReg)
	case 0x18:
		inst.set(OpLDSTVx, FormatReg)
	case 0x1E:
		inst.set(OpADDI, FormatReg)
	case 0x29:
		inst.set(OpLDF, FormatReg)
	case 0x33:
		inst.set(OpLDB, FormatReg)
	case 0x55:
		inst.set(OpSTREGS, FormatReg)
	case 0x65:
		inst.set(OpLDREGS, FormatReg)
	}
}
