// Package insts provides CHIP-8 instruction definitions and decoding.
//
// This package implements the single decode table shared by the interpreter
// and the disassembler. Every 16-bit word either maps to one of the
// operations below or is rejected with a DecodeError:
//   - Flow: CLS, RET, JP, CALL, JP V0, conditional skips
//   - Arithmetic and logic on V registers (8xyN family)
//   - Index register, timers, keypad, BCD and bulk register transfer
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x6A02) // LD VA, 0x02
//	fmt.Printf("Op: %v, X: %d, KK: %d\n", inst.Op, inst.X, inst.KK)
package insts
