// Package headless provides a scripted frontend with no devices, for tests
// and batch runs.
package headless

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sarchlab/c8sim/emu"
	"github.com/sarchlab/c8sim/host"
)

// Press holds Key down for Hold frames starting at frame Frame.
type Press struct {
	Frame int
	Key   emu.Key
	Hold  int
}

// Frontend replays a key schedule and keeps the last rendered frame.
type Frontend struct {
	schedule []Press
	quitAt   int

	frame      int
	last       emu.Frame
	renders    int
	toneOn     bool
	toneStarts int
}

// Option configures a Frontend.
type Option func(*Frontend)

// WithSchedule sets the key schedule. Later presses win where they overlap.
func WithSchedule(schedule []Press) Option {
	return func(f *Frontend) {
		f.schedule = schedule
	}
}

// WithQuitAt makes Poll ask to quit at the given frame.
func WithQuitAt(frame int) Option {
	return func(f *Frontend) {
		f.quitAt = frame
	}
}

// New creates a headless frontend.
func New(opts ...Option) *Frontend {
	f := &Frontend{quitAt: -1}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Poll implements host.Frontend.
func (f *Frontend) Poll() (host.Input, error) {
	in := host.Input{Key: emu.KeyNone}
	if f.quitAt >= 0 && f.frame >= f.quitAt {
		in.Quit = true
		return in, nil
	}

	for _, p := range f.schedule {
		if f.frame >= p.Frame && f.frame < p.Frame+p.Hold {
			in.Key = p.Key
		}
	}
	f.frame++

	return in, nil
}

// Render implements host.Frontend.
func (f *Frontend) Render(frame emu.Frame) error {
	f.last = frame
	f.renders++
	return nil
}

// SetTone implements host.Frontend.
func (f *Frontend) SetTone(on bool) error {
	if on && !f.toneOn {
		f.toneStarts++
	}
	f.toneOn = on
	return nil
}

// Close implements host.Frontend.
func (f *Frontend) Close() error {
	return nil
}

// LastFrame returns the most recently rendered frame.
func (f *Frontend) LastFrame() emu.Frame {
	return f.last
}

// Renders returns the number of frames rendered.
func (f *Frontend) Renders() int {
	return f.renders
}

// ToneStarts returns how many times the tone was switched on.
func (f *Frontend) ToneStarts() int {
	return f.toneStarts
}

// ToneOn reports the current tone state.
func (f *Frontend) ToneOn() bool {
	return f.toneOn
}

// ParseSchedule parses a comma-separated list of frame:key[:hold] entries,
// e.g. "10:5,40:a:3". Keys are hex digits; hold defaults to 1 frame.
func ParseSchedule(s string) ([]Press, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var schedule []Press
	for _, entry := range strings.Split(s, ",") {
		parts := strings.Split(strings.TrimSpace(entry), ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("bad key schedule entry %q: want frame:key[:hold]", entry)
		}

		frame, err := strconv.Atoi(parts[0])
		if err != nil || frame < 0 {
			return nil, fmt.Errorf("bad frame in %q", entry)
		}

		key, err := strconv.ParseUint(parts[1], 16, 8)
		if err != nil || key > 0xF {
			return nil, fmt.Errorf("bad key in %q", entry)
		}

		hold := 1
		if len(parts) == 3 {
			hold, err = strconv.Atoi(parts[2])
			if err != nil || hold < 1 {
				return nil, fmt.Errorf("bad hold in %q", entry)
			}
		}

		schedule = append(schedule, Press{Frame: frame, Key: emu.Key(key), Hold: hold})
	}

	return schedule, nil
}
