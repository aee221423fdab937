package tone

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Recorder writes the tone signal to a mono 8-bit WAV stream, one host
// frame of samples at a time.
type Recorder struct {
	enc    *wav.Encoder
	closer io.Closer

	gen     *Generator
	samples []byte
	buf     *audio.IntBuffer
	frames  int
}

// NewRecorder creates a Recorder writing to w. fps is the host frame rate.
func NewRecorder(w io.WriteSeeker, hz float64, fps int) *Recorder {
	n := SamplesPerFrame(SampleRate, fps)
	return &Recorder{
		enc:     wav.NewEncoder(w, SampleRate, 8, 1, 1),
		gen:     NewGenerator(hz),
		samples: make([]byte, n),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 1, SampleRate: SampleRate},
			Data:           make([]int, n),
			SourceBitDepth: 8,
		},
	}
}

// Create opens path and returns a Recorder writing to it. Close closes the
// file.
func Create(path string, hz float64, fps int) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("wav: %w", err)
	}
	r := NewRecorder(f, hz, fps)
	r.closer = f
	return r, nil
}

// AddFrame appends one frame of tone (on) or silence.
func (r *Recorder) AddFrame(on bool) error {
	r.gen.Fill(r.samples, on)
	for i, s := range r.samples {
		r.buf.Data[i] = int(s)
	}
	if err := r.enc.Write(r.buf); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	r.frames++
	return nil
}

// Frames returns the number of frames recorded.
func (r *Recorder) Frames() int {
	return r.frames
}

// Close finishes the WAV header and closes the file if Create opened it.
func (r *Recorder) Close() error {
	err := r.enc.Close()
	if r.closer != nil {
		if cerr := r.closer.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	return nil
}
