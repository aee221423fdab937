package emu

import "strings"

// Display dimensions in pixels.
const (
	DisplayWidth  = 64
	DisplayHeight = 32
)

// Frame is a snapshot of the display bit matrix, indexed [row][column].
type Frame [DisplayHeight][DisplayWidth]bool

// Lit returns the number of pixels that are on.
func (f *Frame) Lit() int {
	n := 0
	for y := range f {
		for x := range f[y] {
			if f[y][x] {
				n++
			}
		}
	}
	return n
}

// String renders the frame as rows of '#' and '.'.
func (f *Frame) String() string {
	var sb strings.Builder
	sb.Grow(DisplayHeight * (DisplayWidth + 1))
	for y := range f {
		for x := range f[y] {
			if f[y][x] {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Display is the monochrome framebuffer.
type Display struct {
	pixels Frame
}

// NewDisplay creates a cleared display.
func NewDisplay() *Display {
	return &Display{}
}

// Clear turns every pixel off.
func (d *Display) Clear() {
	d.pixels = Frame{}
}

// Draw XORs sprite onto the display with its top-left corner at (x, y).
// Each byte is one row; the most significant bit is the leftmost column.
// Coordinates wrap on both axes. It returns true if any pixel was turned
// from on to off.
func (d *Display) Draw(x, y uint8, sprite []byte) bool {
	collision := false
	for row, bits := range sprite {
		py := (int(y) + row) % DisplayHeight
		for bit := 0; bit < 8; bit++ {
			if bits&(0x80>>bit) == 0 {
				continue
			}
			px := (int(x) + bit) % DisplayWidth
			if d.pixels[py][px] {
				collision = true
			}
			d.pixels[py][px] = !d.pixels[py][px]
		}
	}
	return collision
}

// Pixel reports whether the pixel at column x, row y is on. Coordinates
// wrap like Draw.
func (d *Display) Pixel(x, y int) bool {
	return d.pixels[mod(y, DisplayHeight)][mod(x, DisplayWidth)]
}

// Snapshot returns a copy of the bit matrix.
func (d *Display) Snapshot() Frame {
	return d.pixels
}

func mod(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
