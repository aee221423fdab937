package core_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/c8sim/emu"
	"github.com/sarchlab/c8sim/insts"
	"github.com/sarchlab/c8sim/timing/cache"
	"github.com/sarchlab/c8sim/timing/core"
	"github.com/sarchlab/c8sim/timing/latency"
)

var _ = Describe("Core", func() {
	var (
		e      *emu.Emulator
		config *latency.TimingConfig
		c      *core.Core
	)

	BeforeEach(func() {
		e = emu.NewEmulator()
		config = latency.DefaultTimingConfig()
		config.CyclesPerFrame = 4
	})

	newCore := func(opts ...core.Option) {
		c = core.NewCore(e, append([]core.Option{core.WithTimingConfig(config)}, opts...)...)
	}

	It("should spend the frame budget", func() {
		Expect(e.LoadProgram(program(0x7001, 0x1200))).To(Succeed())
		newCore()

		result := c.RunFrame()

		Expect(result.Cycles).To(Equal(uint64(4)))
		Expect(result.Instructions).To(Equal(uint64(4)))
		Expect(e.RegFile().V[0]).To(Equal(uint8(2)))
	})

	It("should carry overrun into the next frame", func() {
		// cls costs 4, ld costs 1: frame one is ld, ld, ld, cls = 7
		Expect(e.LoadProgram(program(0x6001, 0x6001, 0x6001, 0x00E0, 0x1208))).To(Succeed())
		newCore()

		first := c.RunFrame()
		Expect(first.Cycles).To(Equal(uint64(7)))

		second := c.RunFrame()
		Expect(second.Cycles).To(Equal(uint64(1)))
		Expect(second.Instructions).To(Equal(uint64(1)))
	})

	It("should skip a frame entirely when the overrun covers it", func() {
		config.ClearLatency = 9
		Expect(e.LoadProgram(program(0x00E0, 0x1202))).To(Succeed())
		newCore()

		Expect(c.RunFrame().Cycles).To(Equal(uint64(9)))
		Expect(c.RunFrame().Instructions).To(Equal(uint64(0)))
		Expect(c.RunFrame().Instructions).To(Equal(uint64(3)))
	})

	It("should tick the timers once per frame", func() {
		Expect(e.LoadProgram(program(0x6005, 0xF015, 0xF018, 0x1206))).To(Succeed())
		newCore()

		result := c.RunFrame()

		Expect(e.RegFile().DT).To(Equal(uint8(4)))
		Expect(result.Sound).To(BeTrue())

		for i := 0; i < 4; i++ {
			result = c.RunFrame()
		}
		Expect(e.RegFile().DT).To(Equal(uint8(0)))
		Expect(result.Sound).To(BeFalse())
	})

	It("should stop the frame when blocked and still tick timers", func() {
		Expect(e.LoadProgram(program(0x6003, 0xF015, 0xF10A))).To(Succeed())
		newCore()

		result := c.RunFrame()
		Expect(result.Blocked).To(BeTrue())
		Expect(e.RegFile().DT).To(Equal(uint8(2)))

		result = c.RunFrame()
		Expect(result.Blocked).To(BeTrue())
		Expect(result.Instructions).To(Equal(uint64(0)))
		Expect(e.RegFile().DT).To(Equal(uint8(1)))

		Expect(e.SetKey(0x4)).To(Succeed())
		result = c.RunFrame()
		Expect(e.RegFile().V[1]).To(Equal(uint8(4)))
		Expect(c.Stats().BlockedFrames).To(Equal(uint64(2)))
	})

	It("should report a halt with its error", func() {
		Expect(e.LoadProgram(program(0x6001, 0x0123))).To(Succeed())
		newCore()

		result := c.RunFrame()

		Expect(result.Halted).To(BeTrue())
		var decodeErr *insts.DecodeError
		Expect(errors.As(result.Err, &decodeErr)).To(BeTrue())

		result = c.RunFrame()
		Expect(result.Halted).To(BeTrue())
		Expect(result.Instructions).To(Equal(uint64(0)))
	})

	It("should charge cache misses", func() {
		icache := cache.DefaultConfig()
		icache.MissLatency = 3
		config.CyclesPerFrame = 100
		Expect(e.LoadProgram(program(0x7001, 0x1200))).To(Succeed())
		newCore(core.WithICache(icache))

		result := c.RunFrame()

		// Only the first fetch misses; both words share a block.
		Expect(result.Cycles).To(Equal(result.Instructions + 3))
		stats := c.Stats()
		Expect(stats.ICache.Misses).To(Equal(uint64(1)))
		Expect(stats.ICache.Reads).To(Equal(result.Instructions))
	})

	It("should model data transfers at I", func() {
		config.CyclesPerFrame = 100
		Expect(e.LoadProgram(program(0xA300, 0xF255, 0xF265, 0x1206))).To(Succeed())
		newCore(core.WithDCache(cache.DefaultConfig()))

		c.RunFrame()

		stats := c.Stats()
		Expect(stats.DCache.Writes).To(Equal(uint64(1)))
		Expect(stats.DCache.Reads).To(Equal(uint64(1)))
		Expect(stats.DCache.Misses).To(Equal(uint64(1)))
		Expect(stats.DCache.Hits).To(Equal(uint64(1)))
	})

	It("should accumulate and reset statistics", func() {
		Expect(e.LoadProgram(program(0x1200))).To(Succeed())
		newCore()

		c.RunFrame()
		c.RunFrame()

		stats := c.Stats()
		Expect(stats.Frames).To(Equal(uint64(2)))
		Expect(stats.Cycles).To(Equal(uint64(8)))
		Expect(stats.Instructions).To(Equal(uint64(8)))

		c.Reset()
		Expect(c.Stats()).To(Equal(core.Stats{}))
	})

	It("should count branches, loads and stores", func() {
		config.CyclesPerFrame = 100
		Expect(e.LoadProgram(program(0xA300, 0xF155, 0xF165, 0x2208, 0x1208))).To(Succeed())
		newCore()

		c.RunFrame()

		stats := c.Stats()
		Expect(stats.Stores).To(Equal(uint64(1)))
		Expect(stats.Loads).To(Equal(uint64(1)))
		Expect(stats.Branches).To(Equal(stats.Instructions - 3))
	})

	It("should reset statistics but keep the caches warm", func() {
		config.CyclesPerFrame = 100
		Expect(e.LoadProgram(program(0x7001, 0x1200))).To(Succeed())
		newCore(core.WithICache(cache.DefaultConfig()))

		c.RunFrame()
		c.ResetStats()
		Expect(c.Stats()).To(Equal(core.Stats{}))

		result := c.RunFrame()

		stats := c.Stats()
		Expect(stats.Frames).To(Equal(uint64(1)))
		Expect(stats.ICache.Misses).To(BeZero())
		Expect(stats.ICache.Hits).To(Equal(result.Instructions))
	})
})
