// Package termhost is a terminal frontend. It reads raw keystrokes from the
// controlling tty and draws the display with half-block characters, two
// pixel rows per text row.
package termhost

import (
	"fmt"
	"strings"

	tm "github.com/buger/goterm"
	"github.com/pkg/term"

	"github.com/sarchlab/c8sim/emu"
	"github.com/sarchlab/c8sim/host"
)

const (
	keyEsc   = 0x1b
	keyCtrlC = 0x03
)

// escState tracks an escape sequence that may span reads and polls.
type escState uint8

const (
	escNone escState = iota
	// escStart follows a lone Esc. It becomes a sequence if '[' or 'O'
	// comes next and a quit otherwise.
	escStart
	// escSequence is inside a sequence, waiting for its final byte.
	escSequence
)

// layout maps the left-hand block of a QWERTY keyboard onto the hex keypad.
//
//	1 2 3 4      1 2 3 C
//	q w e r  ->  4 5 6 D
//	a s d f      7 8 9 E
//	z x c v      A 0 B F
var layout = map[byte]emu.Key{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// KeyFor maps a typed character to a keypad key.
func KeyFor(b byte) (emu.Key, bool) {
	if b >= 'A' && b <= 'Z' {
		b += 'a' - 'A'
	}
	k, ok := layout[b]
	return k, ok
}

// Input is the keystroke source. *term.Term satisfies it.
type Input interface {
	Available() (int, error)
	Read(p []byte) (int, error)
}

// Frontend implements host.Frontend on a terminal.
type Frontend struct {
	tty   *term.Term
	input Input

	holdFrames int
	held       emu.Key
	remaining  int

	buf     []byte
	batch   []byte
	esc     escState
	cleared bool
}

// Open puts the controlling terminal into raw mode. holdFrames is how long
// a key counts as held after each keystroke.
func Open(holdFrames int) (*Frontend, error) {
	t, err := term.Open("/dev/tty", term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("termhost: %w", err)
	}
	f := New(t, holdFrames)
	f.tty = t
	return f, nil
}

// New creates a Frontend reading keystrokes from input.
func New(input Input, holdFrames int) *Frontend {
	if holdFrames < 1 {
		holdFrames = 1
	}
	return &Frontend{
		input:      input,
		holdFrames: holdFrames,
		held:       emu.KeyNone,
		buf:        make([]byte, 64),
	}
}

// Poll implements host.Frontend. Terminals report key presses but no
// releases, so a key stays held for holdFrames polls after its last
// keystroke.
func (f *Frontend) Poll() (host.Input, error) {
	if f.remaining > 0 {
		f.remaining--
		if f.remaining == 0 {
			f.held = emu.KeyNone
		}
	}

	n, err := f.input.Available()
	if err != nil {
		return host.Input{}, fmt.Errorf("termhost: %w", err)
	}

	f.batch = f.batch[:0]
	for n > 0 {
		chunk := f.buf
		if n < len(chunk) {
			chunk = chunk[:n]
		}
		read, err := f.input.Read(chunk)
		if err != nil {
			return host.Input{}, fmt.Errorf("termhost: %w", err)
		}
		if read == 0 {
			break
		}
		n -= read
		f.batch = append(f.batch, chunk[:read]...)
	}

	// an Esc that ended the previous batch with nothing after it
	if len(f.batch) == 0 && f.esc == escStart {
		f.esc = escNone
		return host.Input{Key: emu.KeyNone, Quit: true}, nil
	}

	if quit := f.consume(f.batch); quit {
		return host.Input{Key: emu.KeyNone, Quit: true}, nil
	}

	return host.Input{Key: f.held}, nil
}

// consume handles a batch of bytes and reports whether quit was requested.
// Escape sequences (arrow keys and the like) are skipped. An Esc that ends
// the batch is only decided on the next poll, since the rest of its
// sequence may still be on the way.
func (f *Frontend) consume(b []byte) bool {
	for _, c := range b {
		switch f.esc {
		case escStart:
			if c == '[' || c == 'O' {
				f.esc = escSequence
				continue
			}
			f.esc = escNone
			return true
		case escSequence:
			if c >= 0x40 && c <= 0x7e {
				f.esc = escNone
			}
			continue
		}

		switch c {
		case keyCtrlC:
			return true
		case keyEsc:
			f.esc = escStart
		default:
			if k, ok := KeyFor(c); ok {
				f.held = k
				f.remaining = f.holdFrames
			}
		}
	}
	return false
}

// Render implements host.Frontend.
func (f *Frontend) Render(frame emu.Frame) error {
	if !f.cleared {
		tm.Clear()
		f.cleared = true
	}
	tm.MoveCursor(1, 1)
	tm.Print(Draw(frame))
	tm.Flush()
	return nil
}

// SetTone implements host.Frontend. Terminals have no tone generator, so
// the bell rings once at the start of each beep.
func (f *Frontend) SetTone(on bool) error {
	if !on {
		return nil
	}
	if _, err := tm.Output.WriteString("\a"); err != nil {
		return err
	}
	return tm.Output.Flush()
}

// Close implements host.Frontend and restores the terminal.
func (f *Frontend) Close() error {
	tm.MoveCursor(1, emu.DisplayHeight/2+2)
	tm.Flush()
	if f.tty == nil {
		return nil
	}
	if err := f.tty.Restore(); err != nil {
		_ = f.tty.Close()
		return fmt.Errorf("termhost: %w", err)
	}
	return f.tty.Close()
}

// Draw renders frame as text. Each line covers two pixel rows; raw mode
// needs explicit carriage returns.
func Draw(frame emu.Frame) string {
	var sb strings.Builder
	for y := 0; y < emu.DisplayHeight; y += 2 {
		for x := 0; x < emu.DisplayWidth; x++ {
			upper, lower := frame[y][x], frame[y+1][x]
			switch {
			case upper && lower:
				sb.WriteRune('█')
			case upper:
				sb.WriteRune('▀')
			case lower:
				sb.WriteRune('▄')
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteString("\r\n")
	}
	return sb.String()
}
