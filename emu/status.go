package emu

import "github.com/archsim/armv5e/isa"

// StatusUnit implements MRS. MSR is acknowledged by the decoder but never
// executed; the dispatcher reports it through the unimplemented-operation
// path instead of calling into this unit.
type StatusUnit struct {
	regFile *RegFile
	flags   *Flags
}

// NewStatusUnit creates a status-register unit bound to regFile and
// flags.
func NewStatusUnit(regFile *RegFile, flags *Flags) *StatusUnit {
	return &StatusUnit{regFile: regFile, flags: flags}
}

// MRS writes the constructed CPSR to Rd. Rd=PC, or a field mask other
// than 0xF, is UNPREDICTABLE.
func (su *StatusUnit) MRS(ctx *Context) (diag string) {
	inst := ctx.Inst
	if inst.Rd == isa.PC || inst.FieldMask != 0xF {
		diag = "MRS: Rd=PC or a non-canonical field mask is UNPREDICTABLE"
	}
	su.regFile.Write(inst.Rd, su.flags.CPSR())
	return diag
}
