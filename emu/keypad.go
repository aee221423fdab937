package emu

import "fmt"

// Key is a hex keypad key, 0x0-0xF, or KeyNone.
type Key uint8

// KeyNone means no key is held.
const KeyNone Key = 0x10

// Valid reports whether k is a real key.
func (k Key) Valid() bool {
	return k < KeyNone
}

func (k Key) String() string {
	if k == KeyNone {
		return "none"
	}
	if !k.Valid() {
		return fmt.Sprintf("Key(%d)", uint8(k))
	}
	return fmt.Sprintf("%X", uint8(k))
}

// Keypad holds the currently pressed key. At most one key is considered
// pressed at a time.
type Keypad struct {
	pressed Key
}

// NewKeypad creates a keypad with no key held.
func NewKeypad() *Keypad {
	return &Keypad{pressed: KeyNone}
}

// Pressed returns the held key, or KeyNone.
func (k *Keypad) Pressed() Key {
	return k.pressed
}

// IsPressed reports whether key is the held key.
func (k *Keypad) IsPressed(key uint8) bool {
	return k.pressed.Valid() && uint8(k.pressed) == key
}

// set records a new key state and reports whether it is a fresh press,
// i.e. a valid key different from the previously held one.
func (k *Keypad) set(key Key) bool {
	fresh := key.Valid() && key != k.pressed
	k.pressed = key
	return fresh
}
