package emu

import (
	"github.com/go-logr/logr"

	"github.com/archsim/armv5e/isa"
)

// Tracer emits one structured log record per dispatched instruction, plus
// the warning-level diagnostics the error taxonomy calls for:
// UNPREDICTABLE operand aliasing, unimplemented operations, and unknown
// syscalls. It wraps a logr.Logger so the host program chooses the sink
// and verbosity (logr.Discard() for silent runs).
type Tracer struct {
	log logr.Logger
}

// NewTracer creates a tracer writing through log.
func NewTracer(log logr.Logger) *Tracer {
	return &Tracer{log: log}
}

// Instruction logs one retired instruction's PC, mnemonic, destination
// register, and the flag state after it ran.
func (t *Tracer) Instruction(inst *isa.Instruction, rd uint32, destValid bool, flags *Flags) {
	kvs := []any{
		"pc", inst.PC,
		"op", inst.Op.String(),
	}
	if destValid {
		kvs = append(kvs, "rd", rd)
	}
	kvs = append(kvs, "n", flags.N, "z", flags.Z, "c", flags.C, "v", flags.V)
	t.log.V(1).Info("step", kvs...)
}

// Annulled logs a condition-failed instruction at a lower verbosity; it
// changed no state.
func (t *Tracer) Annulled(inst *isa.Instruction) {
	t.log.V(2).Info("annulled", "pc", inst.PC, "op", inst.Op.String(), "cond", inst.Cond)
}

// Unpredictable logs an UNPREDICTABLE operand combination. The caller has
// already decided whether to annul or proceed; diag describes the operand
// combination and does not record which of the two happened.
func (t *Tracer) Unpredictable(inst *isa.Instruction, diag string) {
	t.log.Info("UNPREDICTABLE", "pc", inst.PC, "op", inst.Op.String(), "detail", diag)
}

// Unimplemented logs an operation the core recognizes but does not
// execute. State is left unchanged.
func (t *Tracer) Unimplemented(inst *isa.Instruction) {
	t.log.Info("unimplemented instruction", "pc", inst.PC, "op", inst.Op.String())
}

// UnknownSyscall logs an SWI comment field the syscall handler did not
// recognize.
func (t *Tracer) UnknownSyscall(pc uint32, number uint32) {
	t.log.Info("unknown syscall", "pc", pc, "number", number)
}

// Fatal logs the error that terminates the run abnormally: a branch target
// below zero or an unrecognized instruction format.
func (t *Tracer) Fatal(pc uint32, err error) {
	t.log.Error(err, "fatal", "pc", pc)
}
