package statsview_test

import (
	"bytes"
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/c8sim/emu"
	"github.com/sarchlab/c8sim/statsview"
	"github.com/sarchlab/c8sim/timing/cache"
	"github.com/sarchlab/c8sim/timing/core"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

var _ = Describe("Snapshot", func() {
	It("should derive the rates", func() {
		snap := statsview.NewSnapshot(core.Stats{
			Frames:       4,
			Cycles:       300,
			Instructions: 200,
			ICache:       cache.Statistics{Reads: 4, Hits: 3, Misses: 1},
		})

		Expect(snap.CPI).To(BeNumerically("~", 1.5))
		Expect(snap.InstructionsPerFrame).To(BeNumerically("~", 50))
		Expect(snap.ICacheHitRate).To(BeNumerically("~", 0.75))
		Expect(snap.DCacheHitRate).To(BeZero())
	})

	It("should leave the rates at zero before anything ran", func() {
		snap := statsview.NewSnapshot(core.Stats{})

		Expect(snap.CPI).To(BeZero())
		Expect(snap.InstructionsPerFrame).To(BeZero())
	})
})

var _ = Describe("Monitor", func() {
	var c *core.Core

	BeforeEach(func() {
		e := emu.NewEmulator()
		// add V0, 1; jp 0x200
		Expect(e.LoadProgram([]byte{0x70, 0x01, 0x12, 0x00})).To(Succeed())
		c = core.NewCore(e, core.WithICache(cache.DefaultConfig()))
	})

	It("should hold the latest statistics", func() {
		m := statsview.NewMonitor()

		for i := 0; i < 3; i++ {
			c.RunFrame()
			m.Observe(c.Stats())
		}

		stats := m.Stats()
		Expect(stats.Frames).To(Equal(uint64(3)))
		Expect(stats.Instructions).To(Equal(c.Stats().Instructions))
		Expect(stats.Branches).To(BeNumerically(">=", stats.Instructions/2))
		Expect(stats.ICacheHitRate).To(BeNumerically(">", 0.9))
	})

	It("should be readable while it is being fed", func() {
		m := statsview.NewMonitor(statsview.WithLogEvery(2))

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = m.Stats()
			}
		}()
		for i := 0; i < 20; i++ {
			c.RunFrame()
			m.Observe(c.Stats())
		}
		wg.Wait()

		Expect(m.Stats().Frames).To(Equal(uint64(20)))
	})

	It("should write a report", func() {
		m := statsview.NewMonitor()
		c.RunFrame()
		m.Observe(c.Stats())

		var out bytes.Buffer
		Expect(m.WriteReport(&out, true)).To(Succeed())

		Expect(out.String()).To(ContainSubstring("Frames: 1\n"))
		Expect(out.String()).To(ContainSubstring("CPI: "))
		Expect(out.String()).To(ContainSubstring("I-cache hit rate: "))
	})

	It("should leave out the caches when asked", func() {
		m := statsview.NewMonitor()

		var out bytes.Buffer
		Expect(m.WriteReport(&out, false)).To(Succeed())

		Expect(out.String()).NotTo(ContainSubstring("cache"))
	})

	It("should report write errors", func() {
		m := statsview.NewMonitor()

		Expect(m.WriteReport(failingWriter{}, false)).To(MatchError("disk full"))
	})
})
