package statsview

import (
	"fmt"
	"io"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/sarchlab/c8sim/timing/core"
)

var log = commonlog.GetLogger("c8sim.statsview")

// Snapshot is a copy of the core statistics with the derived rates filled
// in.
type Snapshot struct {
	Frames        uint64
	Cycles        uint64
	Instructions  uint64
	BlockedFrames uint64
	Branches      uint64
	Loads         uint64
	Stores        uint64

	// CPI is cycles per retired instruction.
	CPI float64
	// InstructionsPerFrame averages over every frame run.
	InstructionsPerFrame float64
	// ICacheHitRate and DCacheHitRate are 0 when the cache is off or idle.
	ICacheHitRate float64
	DCacheHitRate float64
}

// NewSnapshot derives a Snapshot from s.
func NewSnapshot(s core.Stats) Snapshot {
	snap := Snapshot{
		Frames:        s.Frames,
		Cycles:        s.Cycles,
		Instructions:  s.Instructions,
		BlockedFrames: s.BlockedFrames,
		Branches:      s.Branches,
		Loads:         s.Loads,
		Stores:        s.Stores,
		ICacheHitRate: s.ICache.HitRate(),
		DCacheHitRate: s.DCache.HitRate(),
	}
	if s.Instructions > 0 {
		snap.CPI = float64(s.Cycles) / float64(s.Instructions)
	}
	if s.Frames > 0 {
		snap.InstructionsPerFrame = float64(s.Instructions) / float64(s.Frames)
	}
	return snap
}

// Monitor keeps the latest core statistics for readers on other
// goroutines. The host loop feeds it through Observe after every frame;
// the core itself is never touched from outside that loop.
type Monitor struct {
	mu       sync.Mutex
	snap     Snapshot
	logEvery uint64
}

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithLogEvery logs a summary every n frames. 0 turns it off.
func WithLogEvery(n uint64) MonitorOption {
	return func(m *Monitor) {
		m.logEvery = n
	}
}

// NewMonitor creates an empty Monitor.
func NewMonitor(opts ...MonitorOption) *Monitor {
	m := &Monitor{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Observe records the statistics after a frame.
func (m *Monitor) Observe(s core.Stats) {
	snap := NewSnapshot(s)

	m.mu.Lock()
	m.snap = snap
	every := m.logEvery
	m.mu.Unlock()

	if every > 0 && snap.Frames%every == 0 {
		log.Infof("frame %d: %d instructions, CPI %.3f, %.1f instructions/frame",
			snap.Frames, snap.Instructions, snap.CPI, snap.InstructionsPerFrame)
	}
}

// SetLogEvery changes the summary interval while the machine runs.
func (m *Monitor) SetLogEvery(n uint64) {
	m.mu.Lock()
	m.logEvery = n
	m.mu.Unlock()
}

// Stats returns the latest snapshot.
func (m *Monitor) Stats() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

// WriteReport writes the latest snapshot as a summary. Cache lines are
// only written when withCaches is set.
func (m *Monitor) WriteReport(w io.Writer, withCaches bool) error {
	s := m.Stats()

	lines := []string{
		fmt.Sprintf("Frames: %d\n", s.Frames),
		fmt.Sprintf("Instructions: %d\n", s.Instructions),
		fmt.Sprintf("Cycles: %d\n", s.Cycles),
		fmt.Sprintf("CPI: %.3f\n", s.CPI),
		fmt.Sprintf("Frames blocked on key: %d\n", s.BlockedFrames),
		fmt.Sprintf("Branches / loads / stores: %d / %d / %d\n", s.Branches, s.Loads, s.Stores),
	}
	if withCaches {
		lines = append(lines,
			fmt.Sprintf("I-cache hit rate: %.1f%%\n", 100*s.ICacheHitRate),
			fmt.Sprintf("D-cache hit rate: %.1f%%\n", 100*s.DCacheHitRate))
	}

	for _, line := range lines {
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}
