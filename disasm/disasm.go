// Package disasm renders CHIP-8 program images as human-readable listings.
package disasm

import (
	"errors"
	"fmt"
	"io"

	"github.com/sarchlab/c8sim/insts"
)

const (
	lineFormat    = "0x%04x:   <%04x>    %s\n"
	oddByteFormat = "0x%04x:   <%02x>      db     0x%02x\n"
)

// Listing disassembles program images. The zero value is not usable; use
// New.
type Listing struct {
	decoder *insts.Decoder
}

// New returns a Listing backed by decoder, or a fresh decoder if nil.
func New(decoder *insts.Decoder) *Listing {
	if decoder == nil {
		decoder = insts.NewDecoder()
	}
	return &Listing{decoder: decoder}
}

// Write lists image, assumed loaded at origin, one instruction word per
// line. Unknown words are listed as such and the listing continues. A
// trailing odd byte is listed as a data byte.
func (l *Listing) Write(w io.Writer, image []byte, origin uint16) error {
	addr := origin
	i := 0
	for ; i+1 < len(image); i += 2 {
		word := uint16(image[i])<<8 | uint16(image[i+1])
		if _, err := io.WriteString(w, l.Line(addr, word)); err != nil {
			return err
		}
		addr += 2
	}

	if i < len(image) {
		if _, err := fmt.Fprintf(w, oddByteFormat, addr, image[i], image[i]); err != nil {
			return err
		}
	}
	return nil
}

// Line renders one listing line, newline included.
func (l *Listing) Line(addr, word uint16) string {
	dis, err := l.decoder.Disassemble(addr, word)
	if err != nil {
		var decodeErr *insts.DecodeError
		if errors.As(err, &decodeErr) {
			return fmt.Sprintf(lineFormat, addr, word, fmt.Sprintf("unknown instruction 0x%04x", word))
		}
		return fmt.Sprintf(lineFormat, addr, word, err)
	}
	return fmt.Sprintf(lineFormat, addr, word, dis)
}

// Write lists image with a fresh decoder.
func Write(w io.Writer, image []byte, origin uint16) error {
	return New(nil).Write(w, image, origin)
}
