package emu

import "github.com/archsim/armv5e/isa"

// ALU implements the ARMv5e arithmetic, logical, and compare operation
// behaviors. Each reads ctx.ShiftOp/ShiftCarry (already staged by the
// barrel shifter) and the operand register Rn, biased by +4 when Rn is
// the program counter.
type ALU struct {
	regFile *RegFile
	flags   *Flags
}

// NewALU creates an ALU bound to regFile and flags.
func NewALU(regFile *RegFile, flags *Flags) *ALU {
	return &ALU{regFile: regFile, flags: flags}
}

// widenedAdd computes op1+op2+carryIn in a 33-bit field, so the carry-out
// is observable directly. Every arithmetic operation (including the
// subtract forms, via one's-complement of the second operand) is
// expressed through this single primitive.
func widenedAdd(op1, op2 uint32, carryIn bool) (result uint32, carryOut, overflow bool) {
	var c uint64
	if carryIn {
		c = 1
	}
	sum := uint64(op1) + uint64(op2) + c
	result = uint32(sum)
	carryOut = sum>>32 != 0

	op1Sign := op1 & 0x80000000
	op2Sign := op2 & 0x80000000
	resultSign := result & 0x80000000
	overflow = (op1Sign == op2Sign) && (resultSign != op1Sign)
	return
}

// Execute runs the operation behavior named by ctx.Inst.Op. diag is
// non-empty when the operand combination is UNPREDICTABLE; the caller
// decides whether that merits annulling (it does not here — the computed
// result is still committed, per the default "proceed with a warning"
// policy for operand-aliasing cases the spec does not call out by name).
func (a *ALU) Execute(ctx *Context) (diag string) {
	inst := ctx.Inst

	if inst.SetFlags && inst.Rd == isa.PC {
		diag = "writing R15 with S=1 is UNPREDICTABLE"
	}

	rn := a.regFile.ReadWithPCBias(inst.Rn)
	shiftop := ctx.ShiftOp

	var result uint32
	var carryOut, overflow bool
	isCompare := false
	isLogical := false

	switch inst.Op {
	case isa.OpADD:
		result, carryOut, overflow = widenedAdd(rn, shiftop, false)
	case isa.OpADC:
		result, carryOut, overflow = widenedAdd(rn, shiftop, a.flags.C)
	case isa.OpSUB:
		result, carryOut, overflow = widenedAdd(rn, ^shiftop, true)
	case isa.OpSBC:
		result, carryOut, overflow = widenedAdd(rn, ^shiftop, a.flags.C)
	case isa.OpRSB:
		result, carryOut, overflow = widenedAdd(shiftop, ^rn, true)
	case isa.OpRSC:
		result, carryOut, overflow = widenedAdd(shiftop, ^rn, a.flags.C)
	case isa.OpCMP:
		isCompare = true
		result, carryOut, overflow = widenedAdd(rn, ^shiftop, true)
	case isa.OpCMN:
		isCompare = true
		result, carryOut, overflow = widenedAdd(rn, shiftop, false)
	case isa.OpAND, isa.OpTST:
		isLogical = true
		isCompare = inst.Op == isa.OpTST
		result = rn & shiftop
	case isa.OpEOR, isa.OpTEQ:
		isLogical = true
		isCompare = inst.Op == isa.OpTEQ
		result = rn ^ shiftop
	case isa.OpORR:
		isLogical = true
		result = rn | shiftop
	case isa.OpBIC:
		isLogical = true
		result = rn &^ shiftop
	case isa.OpMVN:
		isLogical = true
		result = ^shiftop
	case isa.OpMOV:
		isLogical = true
		result = shiftop
	}

	if !isCompare {
		a.regFile.Write(inst.Rd, result)
	}

	if inst.SetFlags {
		a.flags.setNZ(result)
		if isLogical {
			a.flags.C = ctx.ShiftCarry
		} else {
			a.flags.C = carryOut
			a.flags.V = overflow
		}
	}

	return diag
}
