package emu

import (
	"fmt"

	"github.com/archsim/armv5e/isa"
)

// LoadStoreUnit implements the single-register ARMv5e load and store
// operations. Address computation has already happened in
// AddressGenerator; this unit only moves data between memory and the
// register file.
type LoadStoreUnit struct {
	regFile *RegFile
	memory  *Memory
	flags   *Flags
}

// NewLoadStoreUnit creates a load/store unit bound to regFile, memory,
// and flags.
func NewLoadStoreUnit(regFile *RegFile, memory *Memory, flags *Flags) *LoadStoreUnit {
	return &LoadStoreUnit{regFile: regFile, memory: memory, flags: flags}
}

// readRotatedWord implements the LDR/LDRT misalignment rule: read the
// aligned word containing addr, then rotate right by 8 times the
// alignment offset.
func (lsu *LoadStoreUnit) readRotatedWord(addr uint32) uint32 {
	aligned := addr &^ 3
	word := lsu.memory.Read32(aligned)
	rotate := (addr & 3) * 8
	if rotate == 0 {
		return word
	}
	return word>>rotate | word<<(32-rotate)
}

// Execute runs the single-register load/store named by ctx.Inst.Op.
func (lsu *LoadStoreUnit) Execute(ctx *Context) (diag string) {
	inst := ctx.Inst
	addr := ctx.Address

	switch inst.Op {
	case isa.OpLDR, isa.OpLDRT:
		value := lsu.readRotatedWord(addr)
		if inst.Rd == isa.PC {
			lsu.flags.T = value&1 != 0
			value &^= 1
		}
		lsu.regFile.Write(inst.Rd, value)

	case isa.OpLDRB, isa.OpLDRBT:
		lsu.regFile.Write(inst.Rd, uint32(lsu.memory.Read8(addr)))

	case isa.OpLDRH:
		lsu.regFile.Write(inst.Rd, uint32(lsu.memory.Read16(addr)))

	case isa.OpLDRSB:
		lsu.regFile.Write(inst.Rd, uint32(int32(int8(lsu.memory.Read8(addr)))))

	case isa.OpLDRSH:
		lsu.regFile.Write(inst.Rd, uint32(int32(int16(lsu.memory.Read16(addr)))))

	case isa.OpLDRD:
		if diag = lsu.checkDoubleword(inst); diag != "" {
			return diag
		}
		lsu.regFile.Write(inst.Rd, lsu.memory.Read32(addr))
		lsu.regFile.Write(inst.Rd+1, lsu.memory.Read32(addr+4))

	case isa.OpSTR, isa.OpSTRT:
		lsu.memory.Write32(addr, lsu.regFile.Read(inst.Rd))

	case isa.OpSTRB, isa.OpSTRBT:
		lsu.memory.Write8(addr, uint8(lsu.regFile.Read(inst.Rd)))

	case isa.OpSTRH:
		lsu.memory.Write16(addr, uint16(lsu.regFile.Read(inst.Rd)))

	case isa.OpSTRD:
		if diag = lsu.checkDoubleword(inst); diag != "" {
			return diag
		}
		lsu.memory.Write32(addr, lsu.regFile.Read(inst.Rd))
		lsu.memory.Write32(addr+4, lsu.regFile.Read(inst.Rd+1))
	}

	return diag
}

// checkDoubleword enforces LDRD/STRD's Rd-even, Rd!=LR constraint. The
// spec calls for a warning and no state change when it is violated, so
// the caller must not have written any register before calling this.
func (lsu *LoadStoreUnit) checkDoubleword(inst *isa.Instruction) string {
	if inst.Rd%2 != 0 || inst.Rd == isa.LR {
		return fmt.Sprintf("LDRD/STRD: Rd=%d must be even and not R14, UNPREDICTABLE", inst.Rd)
	}
	return ""
}
