// Package emu provides functional CHIP-8 emulation.
package emu

import (
	"fmt"
	"math/rand/v2"

	"github.com/tliron/commonlog"

	"github.com/sarchlab/c8sim/insts"
)

var log = commonlog.GetLogger("c8sim.emu")

// State is the interpreter's execution state.
type State uint8

// Interpreter states.
const (
	// StateRunning executes one instruction per Step.
	StateRunning State = iota
	// StateBlockedOnKey waits for a fresh key press (LD Vx, K). Step is a
	// no-op in this state.
	StateBlockedOnKey
	// StateHalted is terminal; a fatal error stopped execution.
	StateHalted
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateBlockedOnKey:
		return "blocked-on-key"
	case StateHalted:
		return "halted"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// StepResult represents the result of a single Step call.
type StepResult struct {
	// Inst is the instruction that was executed, or nil if none was
	// fetched (blocked, already halted, or fetch failure).
	Inst *insts.Instruction

	// Blocked is true if the interpreter is waiting for a key press after
	// this step.
	Blocked bool

	// Halted is true if the interpreter has stopped for good.
	Halted bool

	// Err is the fatal error that halted the interpreter.
	Err error
}

// RandomSource supplies random bits for RND.
type RandomSource interface {
	Uint32() uint32
}

// TraceRecord describes one fetched instruction, reported before it
// executes, with the machine state it executes against.
type TraceRecord struct {
	Count uint64 // instructions executed before this one
	PC    uint16
	Inst  *insts.Instruction
	Regs  RegFile
	Stack []uint16 // oldest first
}

// Tracer receives a TraceRecord for every fetched instruction.
type Tracer interface {
	Trace(rec TraceRecord)
}

// Emulator executes CHIP-8 programs one instruction at a time. It is not
// safe for concurrent use; the host loop owns it.
type Emulator struct {
	regFile *RegFile
	memory  *Memory
	stack   *Stack
	display *Display
	keypad  *Keypad
	decoder *insts.Decoder

	// Execution units
	alu        *ALU
	lsu        *LoadStoreUnit
	branchUnit *BranchUnit

	rng    RandomSource
	tracer Tracer

	// Execution state
	state            State
	waitReg          uint8
	haltErr          error
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithRandomSource sets the source of random bits for RND.
func WithRandomSource(src RandomSource) EmulatorOption {
	return func(e *Emulator) {
		e.rng = src
	}
}

// WithSeed seeds a deterministic PCG generator for RND.
func WithSeed(seed uint64) EmulatorOption {
	return func(e *Emulator) {
		e.rng = rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
	}
}

// WithTracer installs a step tracer.
func WithTracer(t Tracer) EmulatorOption {
	return func(e *Emulator) {
		e.tracer = t
	}
}

// WithMaxInstructions halts the interpreter after max instructions.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// NewEmulator creates a new CHIP-8 emulator with an empty program region.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		decoder: insts.NewDecoder(),
		regFile: &RegFile{},
		memory:  NewMemory(),
		stack:   &Stack{},
		display: NewDisplay(),
		keypad:  NewKeypad(),
	}
	e.alu = NewALU(e.regFile)
	e.lsu = NewLoadStoreUnit(e.regFile, e.memory)
	e.branchUnit = NewBranchUnit(e.regFile, e.stack)
	e.Reset()

	for _, opt := range opts {
		opt(e)
	}

	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return e
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the emulator's memory.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// Stack returns the emulator's call stack.
func (e *Emulator) Stack() *Stack {
	return e.stack
}

// Display returns the emulator's framebuffer.
func (e *Emulator) Display() *Display {
	return e.display
}

// Decoder returns the decoder shared by execution and tracing.
func (e *Emulator) Decoder() *insts.Decoder {
	return e.decoder
}

// State returns the current execution state.
func (e *Emulator) State() State {
	return e.state
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// Reset returns the machine to its power-on state in place. The program
// region is cleared; options given to NewEmulator stay in effect.
func (e *Emulator) Reset() {
	*e.regFile = RegFile{PC: ProgramStart}
	e.memory.Reset()
	e.stack.Reset()
	e.display.Clear()
	e.keypad.set(KeyNone)

	e.state = StateRunning
	e.waitReg = 0
	e.haltErr = nil
	e.instructionCount = 0
}

// LoadProgram resets the machine and copies image to ProgramStart. An image
// too large for program memory is rejected before anything is reset.
func (e *Emulator) LoadProgram(image []byte) error {
	if err := checkProgramSize(len(image)); err != nil {
		return err
	}
	e.Reset()
	if err := e.memory.LoadProgram(image); err != nil {
		return err
	}
	log.Debugf("loaded %d byte program at 0x%03X", len(image), ProgramStart)
	return nil
}

// Step executes a single instruction. It is a no-op while blocked on a
// key and keeps returning the halting error once halted.
func (e *Emulator) Step() StepResult {
	switch e.state {
	case StateHalted:
		return StepResult{Halted: true, Err: e.haltErr}
	case StateBlockedOnKey:
		return StepResult{Blocked: true}
	}

	// Check instruction limit before executing
	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return e.halt(nil, fmt.Errorf("max instructions (%d) reached: %w", e.maxInstructions, ErrHalted))
	}

	// 1. Fetch
	pc := e.regFile.PC
	word, err := e.fetch(pc)
	if err != nil {
		return e.halt(nil, err)
	}

	// 2. Decode
	inst := e.decoder.Decode(word)
	if e.tracer != nil {
		e.tracer.Trace(TraceRecord{
			Count: e.instructionCount,
			PC:    pc,
			Inst:  inst,
			Regs:  *e.regFile,
			Stack: e.stack.Entries(),
		})
	}

	// 3. Execute
	result := e.execute(inst)
	if result.Err == nil {
		e.instructionCount++
	}

	return result
}

// RunSteps executes up to n instructions, stopping early when the
// interpreter blocks or halts. It returns the last StepResult.
func (e *Emulator) RunSteps(n int) StepResult {
	var result StepResult
	for i := 0; i < n; i++ {
		result = e.Step()
		if result.Blocked || result.Halted {
			break
		}
	}
	return result
}

// Run executes instructions until the interpreter halts or blocks on a key.
// Use WithMaxInstructions to bound programs that loop forever.
func (e *Emulator) Run() error {
	for {
		result := e.Step()
		if result.Halted {
			return result.Err
		}
		if result.Blocked {
			return nil
		}
	}
}

// Halted reports whether the interpreter has stopped and why.
func (e *Emulator) Halted() (bool, error) {
	return e.state == StateHalted, e.haltErr
}

// SetKey records the currently held key (KeyNone for none). A fresh press
// while blocked on LD Vx, K stores the key in Vx and resumes execution at
// the instruction after the wait.
func (e *Emulator) SetKey(k Key) error {
	if k > KeyNone {
		return fmt.Errorf("invalid key value 0x%02X", uint8(k))
	}

	fresh := e.keypad.set(k)
	if e.state == StateBlockedOnKey && fresh {
		e.regFile.WriteReg(e.waitReg, uint8(k))
		e.regFile.PC += InstructionSize
		e.state = StateRunning
		log.Debugf("key %s delivered to V%X, resuming at 0x%03X", k, e.waitReg, e.regFile.PC)
	}
	return nil
}

// Key returns the currently held key.
func (e *Emulator) Key() Key {
	return e.keypad.Pressed()
}

// TickTimers decrements DT and ST by one, stopping at zero. The host calls
// it on its own cadence, independent of Step.
func (e *Emulator) TickTimers() {
	if e.regFile.DT > 0 {
		e.regFile.DT--
	}
	if e.regFile.ST > 0 {
		e.regFile.ST--
	}
}

// SoundActive reports whether the tone should be sounding.
func (e *Emulator) SoundActive() bool {
	return e.regFile.ST > 0
}

// DisplayBits returns a snapshot of the framebuffer.
func (e *Emulator) DisplayBits() Frame {
	return e.display.Snapshot()
}

func (e *Emulator) fetch(pc uint16) (uint16, error) {
	if pc < ProgramStart || pc%InstructionSize != 0 || int(pc)+InstructionSize > MemorySize {
		return 0, &OutOfRangeError{Op: "fetch", Addr: pc, Size: InstructionSize}
	}
	return e.memory.Read16(pc)
}

func (e *Emulator) halt(inst *insts.Instruction, err error) StepResult {
	e.state = StateHalted
	e.haltErr = err
	log.Errorf("halted at PC=0x%03X: %v", e.regFile.PC, err)
	return StepResult{Inst: inst, Halted: true, Err: err}
}

// execute dispatches and executes a decoded instruction.
func (e *Emulator) execute(inst *insts.Instruction) StepResult {
	if inst.Op == insts.OpUnknown {
		return e.halt(inst, &insts.DecodeError{Word: inst.Word, Addr: e.regFile.PC})
	}

	if inst.IsFlow() {
		if err := e.executeFlow(inst); err != nil {
			return e.halt(inst, err)
		}
		return StepResult{Inst: inst} // PC already updated
	}

	var err error
	switch inst.Op {
	case insts.OpCLS:
		e.display.Clear()
	case insts.OpLDImm, insts.OpADDImm, insts.OpLDReg, insts.OpOR, insts.OpAND,
		insts.OpXOR, insts.OpADD, insts.OpSUB, insts.OpSHR, insts.OpSUBN,
		insts.OpSHL, insts.OpRND:
		e.executeALU(inst)
	case insts.OpLDI, insts.OpADDI, insts.OpLDF, insts.OpLDB,
		insts.OpSTREGS, insts.OpLDREGS:
		err = e.executeLoadStore(inst)
	case insts.OpDRW:
		err = e.executeDraw(inst)
	case insts.OpLDVxDT, insts.OpLDDTVx, insts.OpLDSTVx:
		e.executeTimer(inst)
	case insts.OpLDVxK:
		e.blockOnKey(inst.X)
		return StepResult{Inst: inst, Blocked: true} // PC advances on the key press
	default:
		err = fmt.Errorf("unimplemented op %v at PC=0x%03X", inst.Op, e.regFile.PC)
	}

	if err != nil {
		return e.halt(inst, err)
	}

	e.regFile.PC += InstructionSize
	return StepResult{Inst: inst}
}

func (e *Emulator) executeFlow(inst *insts.Instruction) error {
	r := e.regFile

	switch inst.Op {
	case insts.OpRET:
		return e.branchUnit.Return()
	case insts.OpJP:
		e.branchUnit.Jump(inst.NNN)
	case insts.OpCALL:
		return e.branchUnit.Call(inst.NNN)
	case insts.OpJPV0:
		e.branchUnit.JumpV0(inst.NNN)
	case insts.OpSEImm:
		e.branchUnit.SkipIf(r.ReadReg(inst.X) == inst.KK)
	case insts.OpSNEImm:
		e.branchUnit.SkipIf(r.ReadReg(inst.X) != inst.KK)
	case insts.OpSEReg:
		e.branchUnit.SkipIf(r.ReadReg(inst.X) == r.ReadReg(inst.Y))
	case insts.OpSNEReg:
		e.branchUnit.SkipIf(r.ReadReg(inst.X) != r.ReadReg(inst.Y))
	case insts.OpSKP:
		e.branchUnit.SkipIf(e.keypad.IsPressed(r.ReadReg(inst.X)))
	case insts.OpSKNP:
		e.branchUnit.SkipIf(!e.keypad.IsPressed(r.ReadReg(inst.X)))
	}
	return nil
}

func (e *Emulator) executeALU(inst *insts.Instruction) {
	switch inst.Op {
	case insts.OpLDImm:
		e.alu.LoadImm(inst.X, inst.KK)
	case insts.OpADDImm:
		e.alu.AddImm(inst.X, inst.KK)
	case insts.OpLDReg:
		e.alu.Move(inst.X, inst.Y)
	case insts.OpOR:
		e.alu.Or(inst.X, inst.Y)
	case insts.OpAND:
		e.alu.And(inst.X, inst.Y)
	case insts.OpXOR:
		e.alu.Xor(inst.X, inst.Y)
	case insts.OpADD:
		e.alu.Add(inst.X, inst.Y)
	case insts.OpSUB:
		e.alu.Sub(inst.X, inst.Y)
	case insts.OpSHR:
		e.alu.ShiftRight(inst.X)
	case insts.OpSUBN:
		e.alu.SubN(inst.X, inst.Y)
	case insts.OpSHL:
		e.alu.ShiftLeft(inst.X)
	case insts.OpRND:
		e.alu.Random(inst.X, inst.KK, uint8(e.rng.Uint32()))
	}
}

func (e *Emulator) executeLoadStore(inst *insts.Instruction) error {
	switch inst.Op {
	case insts.OpLDI:
		e.lsu.LoadIndex(inst.NNN)
	case insts.OpADDI:
		e.lsu.AddIndex(inst.X)
	case insts.OpLDF:
		e.lsu.LoadGlyph(inst.X)
	case insts.OpLDB:
		return e.lsu.StoreBCD(inst.X)
	case insts.OpSTREGS:
		return e.lsu.StoreRegs(inst.X)
	case insts.OpLDREGS:
		return e.lsu.LoadRegs(inst.X)
	}
	return nil
}

func (e *Emulator) executeDraw(inst *insts.Instruction) error {
	sprite, err := e.lsu.Sprite(inst.N)
	if err != nil {
		return err
	}
	x := e.regFile.ReadReg(inst.X)
	y := e.regFile.ReadReg(inst.Y)
	e.regFile.SetFlag(e.display.Draw(x, y, sprite))
	return nil
}

func (e *Emulator) executeTimer(inst *insts.Instruction) {
	switch inst.Op {
	case insts.OpLDVxDT:
		e.regFile.WriteReg(inst.X, e.regFile.DT)
	case insts.OpLDDTVx:
		e.regFile.DT = e.regFile.ReadReg(inst.X)
	case insts.OpLDSTVx:
		e.regFile.ST = e.regFile.ReadReg(inst.X)
	}
}

func (e *Emulator) blockOnKey(x uint8) {
	e.state = StateBlockedOnKey
	e.waitReg = x
	log.Debugf("waiting for key into V%X at 0x%03X", x, e.regFile.PC)
}
