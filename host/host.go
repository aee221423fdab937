// Package host runs the interpreter against a frontend, one frame at a
// time: poll input, run a frame, render, update the tone, wait.
package host

import (
	"context"
	"errors"
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/sarchlab/c8sim/emu"
	"github.com/sarchlab/c8sim/timing/core"
)

var log = commonlog.GetLogger("c8sim.host")

// Input is one poll of the frontend.
type Input struct {
	// Key is the held key, or emu.KeyNone.
	Key emu.Key
	// Quit asks the host loop to stop.
	Quit bool
}

// Frontend is a user-facing device: keyboard, screen and speaker.
type Frontend interface {
	Poll() (Input, error)
	Render(frame emu.Frame) error
	SetTone(on bool) error
	Close() error
}

// ToneRecorder receives the tone state once per frame.
type ToneRecorder interface {
	AddFrame(on bool) error
}

// Observer receives the core statistics after every frame.
type Observer interface {
	Observe(stats core.Stats)
}

// Options configures Run.
type Options struct {
	// FPS paces the loop; 0 runs frames back to back.
	FPS int
	// Frames stops the loop after this many frames; 0 runs until quit.
	Frames int
	// Recorder, if set, records the tone.
	Recorder ToneRecorder
	// Observer, if set, watches the statistics.
	Observer Observer
}

// Run drives c with fe until the frontend quits, ctx is cancelled, the
// frame limit is reached, or the interpreter halts. It returns the halting
// error in the last case and nil in the others.
func Run(ctx context.Context, c *core.Core, fe Frontend, opts Options) error {
	lim := newLimiter(opts.FPS)
	defer lim.stop()

	e := c.Emulator()
	toneOn := false

	for frame := 0; opts.Frames == 0 || frame < opts.Frames; frame++ {
		if ctx.Err() != nil {
			log.Infof("stopped after %d frames", frame)
			return silence(fe, toneOn)
		}

		in, err := fe.Poll()
		if err != nil {
			return fmt.Errorf("poll: %w", err)
		}
		if in.Quit {
			log.Infof("quit after %d frames", frame)
			return silence(fe, toneOn)
		}
		if err := e.SetKey(in.Key); err != nil {
			return err
		}

		result := c.RunFrame()
		if opts.Observer != nil {
			opts.Observer.Observe(c.Stats())
		}

		if err := fe.Render(e.DisplayBits()); err != nil {
			return fmt.Errorf("render: %w", err)
		}

		if result.Halted {
			if err := silence(fe, toneOn); err != nil {
				return errors.Join(result.Err, err)
			}
			return result.Err
		}

		if result.Sound != toneOn {
			if err := fe.SetTone(result.Sound); err != nil {
				return fmt.Errorf("tone: %w", err)
			}
			toneOn = result.Sound
		}
		if opts.Recorder != nil {
			if err := opts.Recorder.AddFrame(result.Sound); err != nil {
				return err
			}
		}

		if err := lim.wait(ctx); err != nil {
			log.Infof("stopped after %d frames", frame+1)
			return silence(fe, toneOn)
		}
	}

	return silence(fe, toneOn)
}

func silence(fe Frontend, toneOn bool) error {
	if !toneOn {
		return nil
	}
	if err := fe.SetTone(false); err != nil {
		return fmt.Errorf("tone: %w", err)
	}
	return nil
}
