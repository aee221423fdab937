// Package trace provides step tracers for the CHIP-8 interpreter. A tracer
// receives every fetched instruction before it executes.
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/sarchlab/c8sim/disasm"
	"github.com/sarchlab/c8sim/emu"
)

// Record is one traced step in the binary stream.
type Record struct {
	Count    uint64   `cbor:"1,keyasint"`
	PC       uint16   `cbor:"2,keyasint"`
	Word     uint16   `cbor:"3,keyasint"`
	Mnemonic string   `cbor:"4,keyasint,omitempty"` // empty for unknown words
	Operands []string `cbor:"5,keyasint,omitempty"`

	// Machine state before the instruction executes.
	V     []byte   `cbor:"6,keyasint"`
	I     uint16   `cbor:"7,keyasint"`
	DT    uint8    `cbor:"8,keyasint"`
	ST    uint8    `cbor:"9,keyasint"`
	Stack []uint16 `cbor:"10,keyasint,omitempty"`
}

// NewRecord converts an interpreter trace record.
func NewRecord(rec emu.TraceRecord) Record {
	v := make([]byte, len(rec.Regs.V))
	copy(v, rec.Regs.V[:])

	return Record{
		Count:    rec.Count,
		PC:       rec.PC,
		Word:     rec.Inst.Word,
		Mnemonic: rec.Inst.Mnemonic(),
		Operands: rec.Inst.Operands(),
		V:        v,
		I:        rec.Regs.I,
		DT:       rec.Regs.DT,
		ST:       rec.Regs.ST,
		Stack:    rec.Stack,
	}
}

// Tracer is an emu.Tracer that buffers its output. Trace cannot report
// errors, so the first write error is kept and returned by Close.
type Tracer interface {
	emu.Tracer
	io.Closer
}

// Text writes two lines per step: the disassembly line prefixed by the step
// count, then the registers, timers and stack it executes against.
//
//	       0  0x0200:   <6a02>    ld     Va, 0x02
//	          V 00 00 00 00 00 00 00 00 00 00 00 00 00 00 00 00  I 0x0000  DT 0x00  ST 0x00  stack []
type Text struct {
	w       *bufio.Writer
	listing *disasm.Listing
	err     error
}

// NewText creates a text tracer writing to w.
func NewText(w io.Writer) *Text {
	return &Text{
		w:       bufio.NewWriter(w),
		listing: disasm.New(nil),
	}
}

// Trace implements emu.Tracer.
func (t *Text) Trace(rec emu.TraceRecord) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, "%8d  %s", rec.Count, t.listing.Line(rec.PC, rec.Inst.Word))
	if t.err != nil {
		return
	}
	_, t.err = t.w.WriteString(State(rec.Regs, rec.Stack))
}

// State renders registers, timers and stack as one indented line.
func State(regs emu.RegFile, stack []uint16) string {
	var sb strings.Builder
	sb.WriteString("          V")
	for _, v := range regs.V {
		fmt.Fprintf(&sb, " %02x", v)
	}
	fmt.Fprintf(&sb, "  I 0x%04x  DT 0x%02x  ST 0x%02x  stack [", regs.I, regs.DT, regs.ST)
	for i, addr := range stack {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "0x%04x", addr)
	}
	sb.WriteString("]\n")
	return sb.String()
}

// Close flushes buffered lines.
func (t *Text) Close() error {
	if t.err != nil {
		return t.err
	}
	return t.w.Flush()
}

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("trace: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// CBOR writes a stream of concatenated CBOR-encoded Records.
type CBOR struct {
	w   *bufio.Writer
	enc *cbor.Encoder
	err error
}

// NewCBOR creates a binary tracer writing to w.
func NewCBOR(w io.Writer) *CBOR {
	bw := bufio.NewWriter(w)
	return &CBOR{
		w:   bw,
		enc: encMode.NewEncoder(bw),
	}
}

// Trace implements emu.Tracer.
func (c *CBOR) Trace(rec emu.TraceRecord) {
	if c.err != nil {
		return
	}
	c.err = c.enc.Encode(NewRecord(rec))
}

// Close flushes buffered records.
func (c *CBOR) Close() error {
	if c.err != nil {
		return c.err
	}
	return c.w.Flush()
}

// ReadCBOR decodes every Record in a stream written by CBOR.
func ReadCBOR(r io.Reader) ([]Record, error) {
	dec := cbor.NewDecoder(r)

	var records []Record
	for {
		var rec Record
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return records, fmt.Errorf("trace: decode record %d: %w", len(records), err)
		}
		records = append(records, rec)
	}
}

// New returns the tracer for format, "text" or "cbor".
func New(format string, w io.Writer) (Tracer, error) {
	switch format {
	case "text", "":
		return NewText(w), nil
	case "cbor":
		return NewCBOR(w), nil
	default:
		return nil, fmt.Errorf("unknown trace format %q", format)
	}
}
