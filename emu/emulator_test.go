package emu_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/c8sim/emu"
	"github.com/sarchlab/c8sim/insts"
)

type fixedRandom uint32

func (r fixedRandom) Uint32() uint32 { return uint32(r) }

type recordingTracer struct {
	records []emu.TraceRecord
}

func (t *recordingTracer) Trace(rec emu.TraceRecord) {
	t.records = append(t.records, rec)
}

var _ = Describe("Emulator", func() {
	var e *emu.Emulator

	BeforeEach(func() {
		e = emu.NewEmulator(emu.WithRandomSource(fixedRandom(0xA5)))
	})

	load := func(words ...uint16) {
		Expect(e.LoadProgram(program(words...))).To(Succeed())
	}

	It("should start at the program start", func() {
		Expect(e.RegFile().PC).To(Equal(uint16(emu.ProgramStart)))
		Expect(e.State()).To(Equal(emu.StateRunning))
		Expect(e.Stack().Depth()).To(Equal(0))
	})

	Describe("register operations", func() {
		It("should load and add immediates", func() {
			load(0x6A02, 0x7A03)

			e.RunSteps(2)

			Expect(e.RegFile().V[0xA]).To(Equal(uint8(5)))
			Expect(e.RegFile().PC).To(Equal(uint16(0x204)))
			Expect(e.InstructionCount()).To(Equal(uint64(2)))
		})

		It("should add with carry", func() {
			load(0x60FF, 0x6101, 0x8014)

			e.RunSteps(3)

			Expect(e.RegFile().V[0]).To(Equal(uint8(0)))
			Expect(e.RegFile().Flag()).To(Equal(uint8(1)))
		})

		It("should subtract with borrow", func() {
			load(0x6001, 0x6102, 0x8015)

			e.RunSteps(3)

			Expect(e.RegFile().V[0]).To(Equal(uint8(0xFF)))
			Expect(e.RegFile().Flag()).To(Equal(uint8(0)))
		})

		It("should shift right into VF", func() {
			load(0x6003, 0x8006)

			e.RunSteps(2)

			Expect(e.RegFile().V[0]).To(Equal(uint8(1)))
			Expect(e.RegFile().Flag()).To(Equal(uint8(1)))
		})

		It("should mask the random source", func() {
			load(0xC30F)

			e.Step()

			Expect(e.RegFile().V[3]).To(Equal(uint8(0x05)))
		})

		It("should be reproducible with a seed", func() {
			a := emu.NewEmulator(emu.WithSeed(7))
			b := emu.NewEmulator(emu.WithSeed(7))
			Expect(a.LoadProgram(program(0xC0FF, 0xC1FF))).To(Succeed())
			Expect(b.LoadProgram(program(0xC0FF, 0xC1FF))).To(Succeed())

			a.RunSteps(2)
			b.RunSteps(2)

			Expect(a.RegFile().V).To(Equal(b.RegFile().V))
		})
	})

	Describe("flow control", func() {
		It("should call and return", func() {
			load(0x2206, 0x6001, 0x1204, 0x6101, 0x00EE)

			e.Step()
			Expect(e.RegFile().PC).To(Equal(uint16(0x206)))
			Expect(e.Stack().Entries()).To(Equal([]uint16{0x202}))

			e.Step() // ld V1, 0x01
			e.Step() // ret
			Expect(e.RegFile().PC).To(Equal(uint16(0x202)))
			Expect(e.Stack().Depth()).To(Equal(0))
		})

		It("should skip on equal immediates", func() {
			load(0x6005, 0x3005, 0x6101, 0x6202)

			e.RunSteps(3)

			Expect(e.RegFile().V[1]).To(Equal(uint8(0)))
			Expect(e.RegFile().V[2]).To(Equal(uint8(2)))
		})

		It("should not skip on unequal registers", func() {
			load(0x6005, 0x6106, 0x5010, 0x6201)

			e.RunSteps(4)

			Expect(e.RegFile().V[2]).To(Equal(uint8(1)))
		})

		It("should jump relative to V0", func() {
			load(0x6004, 0xB200)

			e.RunSteps(2)

			Expect(e.RegFile().PC).To(Equal(uint16(0x204)))
		})

		It("should halt on stack overflow", func() {
			load(0x2200) // call self

			result := e.RunSteps(emu.StackDepth + 1)

			Expect(result.Halted).To(BeTrue())
			Expect(errors.Is(result.Err, emu.ErrStackOverflow)).To(BeTrue())
			Expect(e.Stack().Depth()).To(Equal(emu.StackDepth))
		})

		It("should halt on stack underflow", func() {
			load(0x00EE)

			result := e.Step()

			Expect(result.Halted).To(BeTrue())
			Expect(errors.Is(result.Err, emu.ErrStackUnderflow)).To(BeTrue())
		})
	})

	Describe("index and memory", func() {
		It("should store BCD digits", func() {
			load(0x607B, 0xA300, 0xF033)

			e.RunSteps(3)

			digits, err := e.Memory().ReadBytes(0x300, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(digits).To(Equal([]byte{1, 2, 3}))
		})

		It("should round-trip V0..Vx inclusive", func() {
			load(
				0x6001, 0x6102, 0x6203, 0x6304, 0x6463,
				0xA400, 0xF355, // store V0..V3
				0x6000, 0x6100, 0x6200, 0x6300,
				0xF365, // load V0..V3
			)

			e.RunSteps(12)

			Expect(e.RegFile().V[:5]).To(Equal([]uint8{1, 2, 3, 4, 0x63}))
			Expect(e.RegFile().I).To(Equal(uint16(0x400)))
			stored, _ := e.Memory().ReadBytes(0x400, 5)
			Expect(stored).To(Equal([]byte{1, 2, 3, 4, 0}))
		})

		It("should point I at a glyph", func() {
			load(0x601C, 0xF029)

			e.RunSteps(2)

			Expect(e.RegFile().I).To(Equal(uint16(0xC * emu.GlyphStride)))
		})

		It("should add to I without touching VF", func() {
			load(0xA300, 0x6010, 0x6F07, 0xF01E)

			e.RunSteps(4)

			Expect(e.RegFile().I).To(Equal(uint16(0x310)))
			Expect(e.RegFile().Flag()).To(Equal(uint8(7)))
		})

		It("should halt when storing into the reserved region", func() {
			load(0xA100, 0xF055)

			result := e.RunSteps(2)

			Expect(result.Halted).To(BeTrue())
			var rangeErr *emu.OutOfRangeError
			Expect(errors.As(result.Err, &rangeErr)).To(BeTrue())
			Expect(rangeErr.Addr).To(Equal(uint16(0x100)))
		})

		It("should halt when reading past the end of memory", func() {
			load(0xAFFE, 0xF265)

			result := e.RunSteps(2)

			Expect(errors.Is(result.Err, emu.ErrOutOfRange)).To(BeTrue())
		})
	})

	Describe("drawing", func() {
		It("should draw a glyph and detect the collision on redraw", func() {
			load(0x6000, 0xF029, 0xD005, 0xD005)

			e.RunSteps(3)
			frame := e.DisplayBits()
			Expect(frame.Lit()).To(BeNumerically(">", 0))
			Expect(e.RegFile().Flag()).To(Equal(uint8(0)))

			e.Step()
			frame = e.DisplayBits()
			Expect(frame.Lit()).To(Equal(0))
			Expect(e.RegFile().Flag()).To(Equal(uint8(1)))
		})

		It("should wrap sprites across the right edge", func() {
			load(0x603C, 0x6100, 0xA20A, 0xD011, 0x1208, 0xFF00)

			e.RunSteps(4)

			frame := e.DisplayBits()
			Expect(frame[0][60]).To(BeTrue())
			Expect(frame[0][63]).To(BeTrue())
			Expect(frame[0][0]).To(BeTrue())
			Expect(frame[0][3]).To(BeTrue())
			Expect(frame[0][4]).To(BeFalse())
		})

		It("should clear the screen", func() {
			load(0xF029, 0xD005, 0x00E0)

			e.RunSteps(3)

			frame := e.DisplayBits()
			Expect(frame.Lit()).To(Equal(0))
		})

		It("should draw nothing for a zero-height sprite", func() {
			load(0x6F01, 0xD000)

			e.RunSteps(2)

			frame := e.DisplayBits()
			Expect(frame.Lit()).To(Equal(0))
			Expect(e.RegFile().Flag()).To(Equal(uint8(0)))
		})
	})

	Describe("keys", func() {
		It("should block until a fresh key press", func() {
			load(0xF50A, 0x6101)

			result := e.Step()
			Expect(result.Blocked).To(BeTrue())
			Expect(e.State()).To(Equal(emu.StateBlockedOnKey))
			Expect(e.RegFile().PC).To(Equal(uint16(0x200)))

			result = e.Step()
			Expect(result.Blocked).To(BeTrue())
			Expect(e.RegFile().PC).To(Equal(uint16(0x200)))

			Expect(e.SetKey(0xA)).To(Succeed())
			Expect(e.State()).To(Equal(emu.StateRunning))
			Expect(e.RegFile().V[5]).To(Equal(uint8(0xA)))
			Expect(e.RegFile().PC).To(Equal(uint16(0x202)))

			e.Step()
			Expect(e.RegFile().V[1]).To(Equal(uint8(1)))
		})

		It("should not unblock on a key already held", func() {
			load(0xF00A)
			Expect(e.SetKey(0x3)).To(Succeed())

			e.Step()
			Expect(e.SetKey(0x3)).To(Succeed())
			Expect(e.State()).To(Equal(emu.StateBlockedOnKey))

			Expect(e.SetKey(emu.KeyNone)).To(Succeed())
			Expect(e.State()).To(Equal(emu.StateBlockedOnKey))

			Expect(e.SetKey(0x3)).To(Succeed())
			Expect(e.State()).To(Equal(emu.StateRunning))
			Expect(e.RegFile().V[0]).To(Equal(uint8(3)))
		})

		It("should skip when the key is pressed", func() {
			load(0x6007, 0xE09E, 0x6101, 0x6201)
			Expect(e.SetKey(0x7)).To(Succeed())

			e.RunSteps(3)

			Expect(e.RegFile().V[1]).To(Equal(uint8(0)))
			Expect(e.RegFile().V[2]).To(Equal(uint8(1)))
		})

		It("should skip when no key is pressed for SKNP", func() {
			load(0x6007, 0xE0A1, 0x6101, 0x6201)

			e.RunSteps(3)

			Expect(e.RegFile().V[1]).To(Equal(uint8(0)))
		})

		It("should reject invalid keys", func() {
			Expect(e.SetKey(0x11)).NotTo(Succeed())
		})
	})

	Describe("timers", func() {
		It("should count down to zero and stop", func() {
			load(0x6002, 0xF015, 0xF018)
			e.RunSteps(3)

			Expect(e.SoundActive()).To(BeTrue())
			e.TickTimers()
			Expect(e.RegFile().DT).To(Equal(uint8(1)))
			e.TickTimers()
			e.TickTimers()

			Expect(e.RegFile().DT).To(Equal(uint8(0)))
			Expect(e.RegFile().ST).To(Equal(uint8(0)))
			Expect(e.SoundActive()).To(BeFalse())
		})

		It("should read the delay timer", func() {
			load(0x6009, 0xF015, 0xF107)
			e.RunSteps(2)
			e.TickTimers()

			e.Step()

			Expect(e.RegFile().V[1]).To(Equal(uint8(8)))
		})
	})

	Describe("halting", func() {
		It("should halt on an unknown instruction", func() {
			load(0x6001, 0x0123)

			result := e.RunSteps(2)

			Expect(result.Halted).To(BeTrue())
			var decodeErr *insts.DecodeError
			Expect(errors.As(result.Err, &decodeErr)).To(BeTrue())
			Expect(decodeErr.Word).To(Equal(uint16(0x0123)))
			Expect(decodeErr.Addr).To(Equal(uint16(0x202)))

			halted, err := e.Halted()
			Expect(halted).To(BeTrue())
			Expect(err).To(Equal(result.Err))
		})

		It("should keep returning the same error once halted", func() {
			load(0x0123)
			first := e.Step()

			second := e.Step()

			Expect(second.Halted).To(BeTrue())
			Expect(second.Err).To(BeIdenticalTo(first.Err))
			Expect(e.InstructionCount()).To(Equal(uint64(0)))
		})

		It("should halt when the program counter leaves memory", func() {
			load(0x1FFF)

			result := e.RunSteps(2)

			var rangeErr *emu.OutOfRangeError
			Expect(errors.As(result.Err, &rangeErr)).To(BeTrue())
			Expect(rangeErr.Op).To(Equal("fetch"))
		})

		It("should halt after the instruction limit", func() {
			e = emu.NewEmulator(emu.WithMaxInstructions(3))
			load(0x1200)

			Expect(errors.Is(e.Run(), emu.ErrHalted)).To(BeTrue())
			Expect(e.InstructionCount()).To(Equal(uint64(3)))
		})

		It("should resume after a reset and reload", func() {
			load(0x0123)
			e.Step()

			load(0x6001)
			e.Step()

			halted, _ := e.Halted()
			Expect(halted).To(BeFalse())
			Expect(e.RegFile().V[0]).To(Equal(uint8(1)))
		})
	})

	It("should report every fetched instruction to the tracer", func() {
		tracer := &recordingTracer{}
		e = emu.NewEmulator(emu.WithTracer(tracer))
		load(0x6A02, 0x7A01)

		e.RunSteps(2)

		Expect(tracer.records).To(HaveLen(2))
		Expect(tracer.records[1].PC).To(Equal(uint16(0x202)))
		Expect(tracer.records[1].Count).To(Equal(uint64(1)))
		Expect(tracer.records[1].Inst.Op).To(Equal(insts.OpADDImm))
	})

	It("should pass the pre-execution state to the tracer", func() {
		tracer := &recordingTracer{}
		e = emu.NewEmulator(emu.WithTracer(tracer))
		load(0x6A02, 0x2206, 0x0000, 0x7A01, 0x00EE)

		e.RunSteps(4)

		Expect(tracer.records).To(HaveLen(4))
		Expect(tracer.records[0].Regs.V[0xA]).To(Equal(uint8(0)))
		Expect(tracer.records[1].Regs.V[0xA]).To(Equal(uint8(2)))
		Expect(tracer.records[1].Stack).To(BeEmpty())
		Expect(tracer.records[2].PC).To(Equal(uint16(0x206)))
		Expect(tracer.records[2].Regs.PC).To(Equal(uint16(0x206)))
		Expect(tracer.records[2].Stack).To(Equal([]uint16{0x204}))
		Expect(tracer.records[3].Regs.V[0xA]).To(Equal(uint8(3)))
	})

	It("should reset in place", func() {
		regs, mem, stack := e.RegFile(), e.Memory(), e.Stack()
		load(0x2204, 0x0000, 0x6A02, 0x1206)
		e.RunSteps(3)
		Expect(stack.Depth()).To(Equal(1))

		e.Reset()

		Expect(e.RegFile()).To(BeIdenticalTo(regs))
		Expect(e.Memory()).To(BeIdenticalTo(mem))
		Expect(e.Stack()).To(BeIdenticalTo(stack))
		Expect(stack.Depth()).To(Equal(0))
		Expect(regs.V[0xA]).To(Equal(uint8(0)))
		Expect(regs.PC).To(Equal(uint16(emu.ProgramStart)))
		w, err := mem.Read16(emu.ProgramStart)
		Expect(err).NotTo(HaveOccurred())
		Expect(w).To(Equal(uint16(0)))
		Expect(e.InstructionCount()).To(BeZero())
	})

	It("should leave the machine alone when an oversized program is rejected", func() {
		load(0x6A07)
		e.RunSteps(1)

		err := e.LoadProgram(make([]byte, emu.MaxProgramSize+1))

		Expect(err).To(MatchError(emu.ErrOutOfRange))
		Expect(e.RegFile().V[0xA]).To(Equal(uint8(7)))
		Expect(e.InstructionCount()).To(Equal(uint64(1)))
		w, _ := e.Memory().Read16(emu.ProgramStart)
		Expect(w).To(Equal(uint16(0x6A07)))
	})
})
