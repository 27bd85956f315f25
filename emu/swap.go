package emu

import (
	"fmt"

	"github.com/archsim/armv5e/isa"
)

// SwapUnit implements SWP and SWPB: a logically atomic load from [Rn]
// followed by a store of Rm to [Rn].
type SwapUnit struct {
	regFile *RegFile
	lsu     *LoadStoreUnit
}

// NewSwapUnit creates a swap unit bound to regFile, sharing lsu's
// misalignment-rotation behavior for the word form.
func NewSwapUnit(regFile *RegFile, lsu *LoadStoreUnit) *SwapUnit {
	return &SwapUnit{regFile: regFile, lsu: lsu}
}

// Execute runs SWP/SWPB.
func (s *SwapUnit) Execute(ctx *Context) (diag string) {
	inst := ctx.Inst
	if inst.Rd == isa.PC || inst.Rm == isa.PC || inst.Rn == isa.PC ||
		inst.Rm == inst.Rn || inst.Rn == inst.Rd {
		diag = fmt.Sprintf("SWP/SWPB: Rd=%d Rm=%d Rn=%d operand aliasing is UNPREDICTABLE", inst.Rd, inst.Rm, inst.Rn)
	}

	addr := s.regFile.Read(inst.Rn)
	newValue := s.regFile.Read(inst.Rm)

	if inst.Op == isa.OpSWPB {
		old := s.lsu.memory.Read8(addr)
		s.lsu.memory.Write8(addr, uint8(newValue))
		s.regFile.Write(inst.Rd, uint32(old))
		return diag
	}

	old := s.lsu.readRotatedWord(addr)
	s.lsu.memory.Write32(addr&^3, newValue)
	s.regFile.Write(inst.Rd, old)
	return diag
}
