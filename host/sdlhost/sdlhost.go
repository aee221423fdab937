// Package sdlhost is the windowed frontend: an SDL2 window drawn with
// OpenGL 2.1, the keyboard, and a square-wave tone on the SDL audio queue.
//
// SDL must be driven from the main OS thread. Callers lock it with
// runtime.LockOSThread before Open.
package sdlhost

import (
	"fmt"

	"github.com/go-gl/gl/v2.1/gl"
	"github.com/tliron/commonlog"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/sarchlab/c8sim/emu"
	"github.com/sarchlab/c8sim/host"
	"github.com/sarchlab/c8sim/tone"
)

var log = commonlog.GetLogger("c8sim.sdl")

// Frontend implements host.Frontend with SDL.
type Frontend struct {
	window    *sdl.Window
	glContext sdl.GLContext
	hasGL     bool

	audio   sdl.AudioDeviceID
	gen     *tone.Generator
	samples []byte
	toneOn  bool

	keys keyState
}

// Open creates the window. scale is window pixels per display pixel; hz is
// the tone pitch and fps the host frame rate the audio is queued at.
func Open(title string, scale int, hz float64, fps int) (*Frontend, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO); err != nil {
		return nil, fmt.Errorf("failed to initialize SDL2: %w", err)
	}

	f := &Frontend{
		gen:     tone.NewGenerator(hz),
		samples: make([]byte, tone.SamplesPerFrame(tone.SampleRate, fps)),
	}

	_ = sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 2)
	_ = sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 1)
	_ = sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)

	var err error
	f.window, err = sdl.CreateWindow(title,
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(emu.DisplayWidth*scale), int32(emu.DisplayHeight*scale),
		sdl.WINDOW_OPENGL|sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	f.glContext, err = f.window.GLCreateContext()
	if err != nil {
		f.destroy()
		return nil, fmt.Errorf("failed to create OpenGL context: %w", err)
	}
	f.hasGL = true
	if err := f.window.GLMakeCurrent(f.glContext); err != nil {
		f.destroy()
		return nil, fmt.Errorf("failed to set current OpenGL context: %w", err)
	}

	// the host loop paces frames
	_ = sdl.GLSetSwapInterval(0)

	if err := gl.Init(); err != nil {
		f.destroy()
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	gl.MatrixMode(gl.PROJECTION)
	gl.LoadIdentity()
	gl.Ortho(0, emu.DisplayWidth, emu.DisplayHeight, 0, -1, 1)
	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadIdentity()
	gl.ClearColor(0, 0, 0, 1)

	if err := f.openAudio(); err != nil {
		// a silent machine is still usable
		log.Warningf("no audio: %s", err.Error())
	}

	return f, nil
}

func (f *Frontend) openAudio() error {
	spec := &sdl.AudioSpec{
		Freq:     tone.SampleRate,
		Format:   sdl.AUDIO_U8,
		Channels: 1,
		Samples:  512,
	}

	var actual sdl.AudioSpec
	id, err := sdl.OpenAudioDevice("", false, spec, &actual, 0)
	if err != nil {
		return err
	}
	f.audio = id
	return nil
}

// Poll implements host.Frontend.
func (f *Frontend) Poll() (host.Input, error) {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch ev := event.(type) {
		case *sdl.QuitEvent:
			return host.Input{Key: emu.KeyNone, Quit: true}, nil

		case *sdl.KeyboardEvent:
			if ev.Repeat != 0 {
				continue
			}
			if ev.Keysym.Scancode == sdl.SCANCODE_ESCAPE && ev.Type == sdl.KEYDOWN {
				return host.Input{Key: emu.KeyNone, Quit: true}, nil
			}
			k, ok := KeyFor(ev.Keysym.Scancode)
			if !ok {
				continue
			}
			if ev.Type == sdl.KEYDOWN {
				f.keys.press(k)
			} else {
				f.keys.release(k)
			}
		}
	}

	return host.Input{Key: f.keys.held()}, nil
}

// Render implements host.Frontend. One quad is drawn per lit pixel.
func (f *Frontend) Render(frame emu.Frame) error {
	w, h := f.window.GLGetDrawableSize()
	gl.Viewport(0, 0, w, h)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	gl.Color3f(1, 1, 1)
	gl.Begin(gl.QUADS)
	for y := range frame {
		for x := range frame[y] {
			if !frame[y][x] {
				continue
			}
			fx, fy := float32(x), float32(y)
			gl.Vertex2f(fx, fy)
			gl.Vertex2f(fx+1, fy)
			gl.Vertex2f(fx+1, fy+1)
			gl.Vertex2f(fx, fy+1)
		}
	}
	gl.End()

	f.window.GLSwap()

	return f.feedAudio()
}

// feedAudio keeps about two frames of tone queued while the tone is on.
func (f *Frontend) feedAudio() error {
	if f.audio == 0 || !f.toneOn {
		return nil
	}
	for sdl.GetQueuedAudioSize(f.audio) < uint32(2*len(f.samples)) {
		f.gen.Fill(f.samples, true)
		if err := sdl.QueueAudio(f.audio, f.samples); err != nil {
			return fmt.Errorf("audio: %w", err)
		}
	}
	return nil
}

// SetTone implements host.Frontend.
func (f *Frontend) SetTone(on bool) error {
	f.toneOn = on
	if f.audio == 0 {
		return nil
	}
	if on {
		if err := f.feedAudio(); err != nil {
			return err
		}
		sdl.PauseAudioDevice(f.audio, false)
		return nil
	}
	sdl.PauseAudioDevice(f.audio, true)
	sdl.ClearQueuedAudio(f.audio)
	f.gen.Fill(f.samples, false) // reset phase
	return nil
}

// Close implements host.Frontend.
func (f *Frontend) Close() error {
	f.destroy()
	return nil
}

func (f *Frontend) destroy() {
	if f.audio != 0 {
		sdl.CloseAudioDevice(f.audio)
		f.audio = 0
	}
	if f.hasGL {
		sdl.GLDeleteContext(f.glContext)
		f.hasGL = false
	}
	if f.window != nil {
		_ = f.window.Destroy()
		f.window = nil
	}
	sdl.Quit()
}
