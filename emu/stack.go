package emu

// StackDepth is the number of return addresses the call stack holds.
const StackDepth = 16

// Stack is the fixed-depth call stack.
type Stack struct {
	entries [StackDepth]uint16
	depth   int
}

// Push stores a return address. It returns ErrStackOverflow when the stack
// already holds StackDepth entries.
func (s *Stack) Push(addr uint16) error {
	if s.depth == StackDepth {
		return ErrStackOverflow
	}
	s.entries[s.depth] = addr
	s.depth++
	return nil
}

// Pop removes the most recent return address. It returns ErrStackUnderflow
// on an empty stack.
func (s *Stack) Pop() (uint16, error) {
	if s.depth == 0 {
		return 0, ErrStackUnderflow
	}
	s.depth--
	return s.entries[s.depth], nil
}

// Depth returns the number of entries on the stack.
func (s *Stack) Depth() int {
	return s.depth
}

// Entries returns a copy of the live entries, oldest first.
func (s *Stack) Entries() []uint16 {
	out := make([]uint16, s.depth)
	copy(out, s.entries[:s.depth])
	return out
}

// Reset empties the stack.
func (s *Stack) Reset() {
	s.entries = [StackDepth]uint16{}
	s.depth = 0
}
