package emu

import "github.com/archsim/armv5e/isa"

// Context bundles the per-instruction staging cells the reference model
// keeps as process-wide globals (dpi_shiftop, dpi_shiftopcarry, ls_address,
// lsm_startaddress, lsm_endaddress, OP1, OP2, execute). The preamble
// constructs one Context per dispatched instruction; format preparation
// writes into it, and the operation behavior reads it. A Context's
// contents are meaningless outside the instruction boundary that produced
// them.
type Context struct {
	Inst *isa.Instruction

	// Annulled is the preamble's condition gate ("execute" in the
	// reference model, inverted: true means skip the operation body).
	Annulled bool

	// Barrel shifter staging, written by a DPI1/DPI2/DPI3 preparation
	// step and consumed by the operation behavior.
	ShiftOp    uint32
	ShiftCarry bool

	// Address generator staging.
	Address      uint32
	StartAddress uint32
	EndAddress   uint32

	// DSP multiply operand staging: sign-extended halfword operands.
	OP1, OP2 int32
}
