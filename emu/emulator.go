package emu

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/archsim/armv5e/isa"
)

// Emulator composes every execution unit into the fetch-decode-execute
// loop. It owns the architectural state (RegFile, Memory, Flags) and
// delegates each instruction to the unit that implements its behavior,
// following the error taxonomy: a failed condition check skips the
// operation body and continues; an UNPREDICTABLE operand combination logs
// a diagnostic and either annuls or proceeds depending on the unit's own
// policy; an unimplemented opcode logs a warning and leaves state
// untouched; an unrecognized SWI number logs a warning and continues; a
// branch target below zero, or a word that decodes to no known instruction
// format, is fatal and stops Run.
type Emulator struct {
	regFile *RegFile
	memory  *Memory
	flags   *Flags

	decoder  *isa.Decoder
	shifter  *Shifter
	address  *AddressGenerator
	preamble *Preamble
	alu      *ALU
	mul      *Multiplier
	branch   *BranchUnit
	ls       *LoadStoreUnit
	multiple *MultipleTransferUnit
	swap     *SwapUnit
	status   *StatusUnit
	debugger *Debugger

	syscallHandler SyscallHandler
	tracer         *Tracer

	instructionCount uint64
}

// EmulatorOption configures an Emulator at construction time.
type EmulatorOption func(*Emulator)

// WithSyscallHandler sets the handler SWI dispatches to. Without one, SWI
// is treated as unknown.
func WithSyscallHandler(handler SyscallHandler) EmulatorOption {
	return func(e *Emulator) {
		e.syscallHandler = handler
	}
}

// WithLogger sets the logr.Logger the emulator's tracer writes through.
// Without one, tracing is discarded.
func WithLogger(log logr.Logger) EmulatorOption {
	return func(e *Emulator) {
		e.tracer = NewTracer(log)
	}
}

// WithStackPointer seeds R13 before the program runs.
func WithStackPointer(sp uint32) EmulatorOption {
	return func(e *Emulator) {
		e.regFile.Write(isa.SP, sp)
	}
}

// NewEmulator creates an Emulator with empty memory and a zeroed register
// file, applying opts in order.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	regFile := &RegFile{}
	memory := NewMemory()
	flags := &Flags{}
	shifter := NewShifter(regFile, flags)
	ls := NewLoadStoreUnit(regFile, memory, flags)

	e := &Emulator{
		regFile:  regFile,
		memory:   memory,
		flags:    flags,
		decoder:  isa.NewDecoder(),
		shifter:  shifter,
		address:  NewAddressGenerator(regFile, shifter),
		preamble: NewPreamble(regFile, flags),
		alu:      NewALU(regFile, flags),
		mul:      NewMultiplier(regFile, flags),
		branch:   NewBranchUnit(regFile, flags),
		ls:       ls,
		multiple: NewMultipleTransferUnit(regFile, memory, flags),
		swap:     NewSwapUnit(regFile, ls),
		status:   NewStatusUnit(regFile, flags),
		debugger: NewDebugger(regFile, memory, flags),
		tracer:   NewTracer(logr.Discard()),
	}

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RegFile returns the register file, for callers that need direct access
// (argv bootstrap, tests, the debug adapter's host).
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the memory backing this emulator.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// Flags returns the condition-flag state.
func (e *Emulator) Flags() *Flags {
	return e.flags
}

// Debugger returns the debug adapter bound to this emulator's state.
func (e *Emulator) Debugger() *Debugger {
	return e.debugger
}

// SetSyscallHandler sets the handler SWI dispatches to, after
// construction. Useful when the handler needs the emulator's own RegFile
// and Memory to build itself.
func (e *Emulator) SetSyscallHandler(handler SyscallHandler) {
	e.syscallHandler = handler
}

// InstructionCount returns the number of instructions retired so far,
// including annulled ones (the preamble always runs).
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// LoadProgram copies program into memory at entry and sets the PC there.
func (e *Emulator) LoadProgram(entry uint32, program []byte) {
	e.memory.LoadProgram(entry, program)
	e.regFile.SetPC(entry)
	e.regFile.PCMir = entry
}

// Run steps the emulator until a syscall requests exit, returning its exit
// code, or until Step returns an error (a branch target out of bounds or an
// unrecognized instruction format), returning -1.
func (e *Emulator) Run() int32 {
	for {
		result, err := e.Step()
		if err != nil {
			e.tracer.Fatal(e.regFile.PCMir, err)
			return -1
		}
		if result.Exited {
			return result.ExitCode
		}
	}
}

// Step fetches, decodes, and executes one instruction. fetchPC is the
// address the word was read from, matching the reference model's
// separation between the fetch address and the preamble's PC+4 commit.
func (e *Emulator) Step() (SyscallResult, error) {
	fetchPC := e.regFile.PCMir
	word := e.memory.Read32(fetchPC)
	inst := e.decoder.Decode(word, fetchPC)
	e.instructionCount++

	ctx := e.preamble.Run(inst)
	if ctx.Annulled {
		e.tracer.Annulled(inst)
		return SyscallResult{}, nil
	}

	return e.execute(ctx)
}

// execute runs the format-preparation and operation-behavior stages for
// one non-annulled instruction.
func (e *Emulator) execute(ctx *Context) (SyscallResult, error) {
	inst := ctx.Inst

	if inst.Op.IsUnimplemented() {
		e.tracer.Unimplemented(inst)
		return SyscallResult{}, nil
	}

	switch inst.Format {
	case isa.FormatDPI1:
		r := e.shifter.DPI1(inst.Rm, inst.ShiftType, inst.ShiftAmount)
		ctx.ShiftOp, ctx.ShiftCarry = r.Value, r.Carry
	case isa.FormatDPI2:
		r, diag := e.shifter.DPI2(inst.Rd, inst.Rn, inst.Rm, inst.ShiftType, inst.Rs)
		if diag != "" {
			e.tracer.Unpredictable(inst, diag)
			return SyscallResult{}, nil
		}
		ctx.ShiftOp, ctx.ShiftCarry = r.Value, r.Carry
	case isa.FormatDPI3:
		r := e.shifter.DPI3(inst.Imm8, inst.RotateImm)
		ctx.ShiftOp, ctx.ShiftCarry = r.Value, r.Carry
	case isa.FormatLSI, isa.FormatLSR, isa.FormatLSE, isa.FormatLSM:
		annul, diag := e.address.Prepare(ctx)
		if diag != "" {
			e.tracer.Unpredictable(inst, diag)
		}
		if annul {
			return SyscallResult{}, nil
		}
	}

	switch inst.Format {
	case isa.FormatDPI1, isa.FormatDPI2, isa.FormatDPI3:
		if inst.Op == isa.OpCLZ {
			if diag := e.branch.CLZ(ctx); diag != "" {
				e.tracer.Unpredictable(inst, diag)
			}
			e.tracer.Instruction(inst, e.regFile.Read(inst.Rd), true, e.flags)
			break
		}
		if diag := e.alu.Execute(ctx); diag != "" {
			e.tracer.Unpredictable(inst, diag)
		}
		e.tracer.Instruction(inst, e.regFile.Read(inst.Rd), !isCompareOp(inst.Op), e.flags)

	case isa.FormatBranch:
		if err := e.branch.Branch(ctx); err != nil {
			return SyscallResult{}, err
		}
		e.tracer.Instruction(inst, e.regFile.PC(), true, e.flags)

	case isa.FormatBranchExchange:
		if diag := e.branch.BranchExchange(ctx); diag != "" {
			e.tracer.Unpredictable(inst, diag)
		}
		e.tracer.Instruction(inst, e.regFile.PC(), true, e.flags)

	case isa.FormatMultiply:
		if diag := e.mul.Multiply(ctx); diag != "" {
			e.tracer.Unpredictable(inst, diag)
		}
		e.tracer.Instruction(inst, e.regFile.Read(inst.Rd), true, e.flags)

	case isa.FormatLongMultiply:
		if diag := e.mul.LongMultiply(ctx); diag != "" {
			e.tracer.Unpredictable(inst, diag)
		}
		e.tracer.Instruction(inst, e.regFile.Read(inst.RdLo), true, e.flags)

	case isa.FormatDSPMultiply:
		e.mul.DSPMultiply(ctx)
		e.tracer.Instruction(inst, e.regFile.Read(inst.Rd), true, e.flags)

	case isa.FormatMRS:
		if diag := e.status.MRS(ctx); diag != "" {
			e.tracer.Unpredictable(inst, diag)
		}
		e.tracer.Instruction(inst, e.regFile.Read(inst.Rd), true, e.flags)

	case isa.FormatSwap:
		if diag := e.swap.Execute(ctx); diag != "" {
			e.tracer.Unpredictable(inst, diag)
		}
		e.tracer.Instruction(inst, e.regFile.Read(inst.Rd), true, e.flags)

	case isa.FormatLSI, isa.FormatLSR, isa.FormatLSE:
		if diag := e.ls.Execute(ctx); diag != "" {
			e.tracer.Unpredictable(inst, diag)
		}
		e.tracer.Instruction(inst, e.regFile.Read(inst.Rd), true, e.flags)

	case isa.FormatLSM:
		e.multiple.Execute(ctx)
		e.tracer.Instruction(inst, 0, false, e.flags)

	case isa.FormatSWI:
		return e.dispatchSyscall(inst), nil

	default:
		return SyscallResult{}, fmt.Errorf("unrecognized instruction format at pc=0x%X", inst.PC)
	}

	return SyscallResult{}, nil
}

func isCompareOp(op isa.Op) bool {
	switch op {
	case isa.OpTST, isa.OpTEQ, isa.OpCMP, isa.OpCMN:
		return true
	}
	return false
}

func (e *Emulator) dispatchSyscall(inst *isa.Instruction) SyscallResult {
	if e.syscallHandler == nil {
		e.tracer.UnknownSyscall(inst.PC, inst.SWINumber)
		return SyscallResult{Unknown: true}
	}
	result := e.syscallHandler.Handle(inst.SWINumber)
	if result.Unknown {
		e.tracer.UnknownSyscall(inst.PC, inst.SWINumber)
	}
	return result
}
