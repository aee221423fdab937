package disasm

import (
	"bufio"
	"fmt"
	"io"
)

// BytesPerRow is the width of a Dump row.
const BytesPerRow = 32

// Dump writes data as rows of BytesPerRow hex bytes, each prefixed by the
// address of its first byte, assuming data starts at origin.
//
//	0x0000: f0 90 90 90 f0 20 60 20 ...
func Dump(w io.Writer, data []byte, origin uint16) error {
	bw := bufio.NewWriter(w)
	for off := 0; off < len(data); off += BytesPerRow {
		end := min(off+BytesPerRow, len(data))
		fmt.Fprintf(bw, "0x%04x:", int(origin)+off)
		for _, b := range data[off:end] {
			fmt.Fprintf(bw, " %02x", b)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
