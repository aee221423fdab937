// Package loader provides CHIP-8 program image loading.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/c8sim/emu"
)

var (
	// ErrEmptyProgram is returned for a zero-length image.
	ErrEmptyProgram = errors.New("empty program image")
	// ErrProgramTooLarge is returned when an image does not fit between the
	// program start and the end of memory.
	ErrProgramTooLarge = errors.New("program image too large")
)

// Program represents a raw CHIP-8 program image ready for loading into the
// emulator's memory.
type Program struct {
	// Path is the file the image was read from, if any.
	Path string
	// Origin is the address the image is loaded at.
	Origin uint16
	// Data is the image, byte for byte.
	Data []byte
}

// Size returns the image size in bytes.
func (p *Program) Size() int {
	return len(p.Data)
}

// Load reads a program image from path.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open program: %w", err)
	}
	defer func() { _ = f.Close() }()

	prog, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	prog.Path = path

	return prog, nil
}

// Read reads a program image from r. Images are read up to one byte past
// the limit so oversized input is rejected without reading it all.
func Read(r io.Reader) (*Program, error) {
	data, err := io.ReadAll(io.LimitReader(r, emu.MaxProgramSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}

	if len(data) == 0 {
		return nil, ErrEmptyProgram
	}
	if len(data) > emu.MaxProgramSize {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrProgramTooLarge, emu.MaxProgramSize)
	}

	return &Program{
		Origin: emu.ProgramStart,
		Data:   data,
	}, nil
}
