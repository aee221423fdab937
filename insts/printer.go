package insts

import (
	"fmt"
	"strings"
)

// Disassembly is the textual form of one instruction.
type Disassembly struct {
	Mnemonic string
	Operands []string
}

// String renders the mnemonic padded to six columns followed by the
// comma-separated operands.
func (d Disassembly) String() string {
	if len(d.Operands) == 0 {
		return d.Mnemonic
	}
	return fmt.Sprintf("%-6s %s", d.Mnemonic, strings.Join(d.Operands, ", "))
}

var mnemonics = [...]string{
	OpCLS:    "cls",
	OpRET:    "ret",
	OpJP:     "jp",
	OpCALL:   "call",
	OpSEImm:  "se",
	OpSNEImm: "sne",
	OpSEReg:  "se",
	OpLDImm:  "ld",
	OpADDImm: "add",
	OpLDReg:  "ld",
	OpOR:     "or",
	OpAND:    "and",
	OpXOR:    "xor",
	OpADD:    "add",
	OpSUB:    "sub",
	OpSHR:    "shr",
	OpSUBN:   "subn",
	OpSHL:    "shl",
	OpSNEReg: "sne",
	OpLDI:    "ld",
	OpJPV0:   "jp",
	OpRND:    "rnd",
	OpDRW:    "drw",
	OpSKP:    "skp",
	OpSKNP:   "sknp",
	OpLDVxDT: "ld",
	OpLDVxK:  "ld",
	OpLDDTVx: "ld",
	OpLDSTVx: "ld",
	OpADDI:   "add",
	OpLDF:    "ld",
	OpLDB:    "ld",
	OpSTREGS: "ld",
	OpLDREGS: "ld",
}

// Disassemble decodes word and renders it. addr is only used to build the
// DecodeError returned for words outside the table.
func (d *Decoder) Disassemble(addr, word uint16) (Disassembly, error) {
	inst := d.Decode(word)
	if inst.Op == OpUnknown {
		return Disassembly{}, &DecodeError{Word: word, Addr: addr}
	}
	return Disassembly{
		Mnemonic: mnemonics[inst.Op],
		Operands: inst.Operands(),
	}, nil
}

// Mnemonic returns the assembler mnemonic, or "" for unknown instructions.
func (i *Instruction) Mnemonic() string {
	if i.Op == OpUnknown || int(i.Op) >= len(mnemonics) {
		return ""
	}
	return mnemonics[i.Op]
}

// Operands returns the operand list in assembler order.
func (i *Instruction) Operands() []string {
	x, y := reg(i.X), reg(i.Y)

	switch i.Op {
	case OpLDVxDT:
		return []string{x, "DT"}
	case OpLDVxK:
		return []string{x, "K"}
	case OpLDDTVx:
		return []string{"DT", x}
	case OpLDSTVx:
		return []string{"ST", x}
	case OpADDI:
		return []string{"I", x}
	case OpLDF:
		return []string{"F", x}
	case OpLDB:
		return []string{"B", x}
	case OpSTREGS:
		return []string{"[I]", x}
	case OpLDREGS:
		return []string{x, "[I]"}
	}

	switch i.Format {
	case FormatAddr:
		return []string{addr(i.NNN)}
	case FormatRegImm:
		return []string{x, imm(i.KK)}
	case FormatRegReg:
		return []string{x, y}
	case FormatReg:
		return []string{x}
	case FormatIndexAddr:
		return []string{"I", addr(i.NNN)}
	case FormatV0Addr:
		return []string{"V0", addr(i.NNN)}
	case FormatDraw:
		return []string{x, y, imm(i.N)}
	default:
		return nil
	}
}

func reg(r uint8) string {
	return fmt.Sprintf("V%x", r)
}

func addr(a uint16) string {
	return fmt.Sprintf("0x%04x", a)
}

func imm(v uint8) string {
	return fmt.Sprintf("0x%02x", v)
}
