package sdlhost

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/sarchlab/c8sim/emu"
)

// layout maps physical key positions onto the hex keypad, so the left-hand
// block works on any keyboard layout.
//
//	1 2 3 4      1 2 3 C
//	Q W E R  ->  4 5 6 D
//	A S D F      7 8 9 E
//	Z X C V      A 0 B F
var layout = map[sdl.Scancode]emu.Key{
	sdl.SCANCODE_1: 0x1, sdl.SCANCODE_2: 0x2, sdl.SCANCODE_3: 0x3, sdl.SCANCODE_4: 0xC,
	sdl.SCANCODE_Q: 0x4, sdl.SCANCODE_W: 0x5, sdl.SCANCODE_E: 0x6, sdl.SCANCODE_R: 0xD,
	sdl.SCANCODE_A: 0x7, sdl.SCANCODE_S: 0x8, sdl.SCANCODE_D: 0x9, sdl.SCANCODE_F: 0xE,
	sdl.SCANCODE_Z: 0xA, sdl.SCANCODE_X: 0x0, sdl.SCANCODE_C: 0xB, sdl.SCANCODE_V: 0xF,
}

// KeyFor maps a scancode to a keypad key.
func KeyFor(sc sdl.Scancode) (emu.Key, bool) {
	k, ok := layout[sc]
	return k, ok
}

// keyState tracks the keys held down. The interpreter sees one key at a
// time: the most recently pressed key still held.
type keyState struct {
	down []emu.Key
}

func (ks *keyState) press(k emu.Key) {
	ks.release(k)
	ks.down = append(ks.down, k)
}

func (ks *keyState) release(k emu.Key) {
	for i, d := range ks.down {
		if d == k {
			ks.down = append(ks.down[:i], ks.down[i+1:]...)
			return
		}
	}
}

func (ks *keyState) held() emu.Key {
	if len(ks.down) == 0 {
		return emu.KeyNone
	}
	return ks.down[len(ks.down)-1]
}
