package emu

import "github.com/archsim/armv5e/isa"

// MultipleTransferUnit implements LDM and STM over the address bounds the
// AddressGenerator already staged in ctx.StartAddress/EndAddress.
type MultipleTransferUnit struct {
	regFile *RegFile
	memory  *Memory
	flags   *Flags
}

// NewMultipleTransferUnit creates a multiple-register transfer unit bound
// to regFile, memory, and flags.
func NewMultipleTransferUnit(regFile *RegFile, memory *Memory, flags *Flags) *MultipleTransferUnit {
	return &MultipleTransferUnit{regFile: regFile, memory: memory, flags: flags}
}

// Execute runs LDM or STM, walking the register list from R0 to R14 at
// sequential word addresses, then handling R15 last (LDM always reloads
// PC when bit 15 is set, per the spec's resolution of the R-bit
// ambiguity in the reference model's two historical revisions).
func (mt *MultipleTransferUnit) Execute(ctx *Context) {
	inst := ctx.Inst
	addr := ctx.StartAddress
	load := inst.Op == isa.OpLDM

	for r := uint8(0); r < 15; r++ {
		if inst.RegList&(1<<r) == 0 {
			continue
		}
		if load {
			mt.regFile.Write(r, mt.memory.Read32(addr))
		} else {
			mt.memory.Write32(addr, mt.regFile.Read(r))
		}
		addr += 4
	}

	if inst.RegList&(1<<isa.PC) != 0 {
		if load {
			value := mt.memory.Read32(addr)
			mt.flags.T = value&1 != 0
			mt.regFile.SetPC(value &^ 1)
		} else {
			mt.memory.Write32(addr, mt.regFile.Read(isa.PC))
		}
	}
}
