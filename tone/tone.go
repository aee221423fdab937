// Package tone generates the CHIP-8 beep. The sound timer only says on or
// off; the pitch and volume are host choices.
package tone

import "math"

// Audio format shared by the SDL frontend and the WAV recorder: mono,
// unsigned 8-bit samples.
const (
	SampleRate = 44100
	Silence    = 0x80
	Amplitude  = 0x20
)

// Square fills dst with an unsigned 8-bit square wave of frequency hz at
// the given sample rate, starting at phase (in cycles, [0,1)). It returns
// the phase following the last sample so consecutive buffers join without
// clicks.
func Square(dst []byte, phase, hz, rate float64) float64 {
	step := hz / rate
	for i := range dst {
		if phase < 0.5 {
			dst[i] = Silence + Amplitude
		} else {
			dst[i] = Silence - Amplitude
		}
		phase += step
		phase -= math.Floor(phase)
	}
	return phase
}

// SamplesPerFrame returns the number of samples in one host frame.
func SamplesPerFrame(rate, fps int) int {
	if fps <= 0 {
		return 0
	}
	return rate / fps
}

// Generator produces one frame of tone or silence at a time.
type Generator struct {
	Hz   float64
	Rate float64

	phase float64
}

// NewGenerator creates a generator at the package sample rate.
func NewGenerator(hz float64) *Generator {
	return &Generator{Hz: hz, Rate: SampleRate}
}

// Fill writes the tone into dst when on, silence otherwise. Silence resets
// the phase so every beep starts the same way.
func (g *Generator) Fill(dst []byte, on bool) {
	if !on {
		for i := range dst {
			dst[i] = Silence
		}
		g.phase = 0
		return
	}
	g.phase = Square(dst, g.phase, g.Hz, g.Rate)
}
