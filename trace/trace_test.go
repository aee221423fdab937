package trace_test

import (
	"bytes"
	"strings"

	"github.com/google/go-cmp/cmp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/c8sim/emu"
	"github.com/sarchlab/c8sim/trace"
)

var image = []byte{0x6A, 0x02, 0x7A, 0x01, 0x01, 0x23}

func run(t emu.Tracer) *emu.Emulator {
	e := emu.NewEmulator(emu.WithTracer(t))
	Expect(e.LoadProgram(image)).To(Succeed())
	e.RunSteps(3)
	return e
}

var _ = Describe("Text", func() {
	It("should write one line per fetched instruction", func() {
		var buf bytes.Buffer
		t := trace.NewText(&buf)

		run(t)
		Expect(t.Close()).To(Succeed())

		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		Expect(lines).To(HaveLen(6))
		Expect(lines[0]).To(Equal("       0  0x0200:   <6a02>    ld     Va, 0x02"))
		Expect(lines[1]).To(Equal("          V" + strings.Repeat(" 00", 16) +
			"  I 0x0000  DT 0x00  ST 0x00  stack []"))
		Expect(lines[3]).To(ContainSubstring(" 02 00 00 00 00 00  I"))
		Expect(lines[4]).To(HaveSuffix("unknown instruction 0x0123"))
	})
})

var _ = Describe("State", func() {
	It("should render registers, timers and the stack", func() {
		var regs emu.RegFile
		regs.V[0] = 0xAB
		regs.V[0xF] = 1
		regs.I = 0x300
		regs.DT = 0x3C
		regs.ST = 2

		line := trace.State(regs, []uint16{0x204, 0x30A})

		Expect(line).To(Equal("          V ab" + strings.Repeat(" 00", 14) + " 01" +
			"  I 0x0300  DT 0x3c  ST 0x02  stack [0x0204 0x030a]\n"))
	})
})

var _ = Describe("CBOR", func() {
	It("should round-trip records", func() {
		var buf bytes.Buffer
		t := trace.NewCBOR(&buf)

		run(t)
		Expect(t.Close()).To(Succeed())

		records, err := trace.ReadCBOR(&buf)
		Expect(err).NotTo(HaveOccurred())

		regs := func(va byte) []byte {
			v := make([]byte, 16)
			v[0xA] = va
			return v
		}
		want := []trace.Record{
			{Count: 0, PC: 0x200, Word: 0x6A02, Mnemonic: "ld", Operands: []string{"Va", "0x02"}, V: regs(0)},
			{Count: 1, PC: 0x202, Word: 0x7A01, Mnemonic: "add", Operands: []string{"Va", "0x01"}, V: regs(2)},
			{Count: 2, PC: 0x204, Word: 0x0123, V: regs(3)},
		}
		Expect(cmp.Diff(want, records)).To(BeEmpty())
	})
})

var _ = Describe("New", func() {
	It("should pick a tracer by format", func() {
		var buf bytes.Buffer

		t, err := trace.New("cbor", &buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(t).To(BeAssignableToTypeOf(&trace.CBOR{}))

		_, err = trace.New("xml", &buf)
		Expect(err).To(MatchError(ContainSubstring("xml")))
	})
})
