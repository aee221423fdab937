package emu

import (
	"errors"
	"fmt"
)

// Sentinel errors for fatal interpreter conditions. Typed errors below
// match them with errors.Is.
var (
	ErrStackOverflow  = errors.New("stack overflow")
	ErrStackUnderflow = errors.New("stack underflow")
	ErrOutOfRange     = errors.New("address out of range")
	ErrHalted         = errors.New("interpreter halted")
)

// StackError reports a call with a full stack or a return with an empty one.
type StackError struct {
	Op   string // "call" or "ret"
	Addr uint16 // address of the offending instruction
}

func (e *StackError) Error() string {
	return fmt.Sprintf("%s at 0x%03X: %v", e.Op, e.Addr, e.Unwrap())
}

// Unwrap returns ErrStackOverflow or ErrStackUnderflow.
func (e *StackError) Unwrap() error {
	if e.Op == "call" {
		return ErrStackOverflow
	}
	return ErrStackUnderflow
}

// OutOfRangeError reports an access outside the valid memory window.
type OutOfRangeError struct {
	Op   string // "read", "write" or "fetch"
	Addr uint16
	Size int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s of %d byte(s) at 0x%04X: %v", e.Op, e.Size, e.Addr, ErrOutOfRange)
}

// Unwrap returns ErrOutOfRange.
func (e *OutOfRangeError) Unwrap() error {
	return ErrOutOfRange
}
