package emu

import (
	"fmt"

	"github.com/archsim/armv5e/isa"
)

// AddressGenerator computes ls_address (and, for LSM, the start/end
// bounds) for the four load/store addressing forms, applying writeback to
// Rn where the encoding calls for it.
type AddressGenerator struct {
	regFile *RegFile
	shifter *Shifter
}

// NewAddressGenerator creates an address generator bound to regFile,
// sharing shifter for the LSR scaled-register-offset form.
func NewAddressGenerator(regFile *RegFile, shifter *Shifter) *AddressGenerator {
	return &AddressGenerator{regFile: regFile, shifter: shifter}
}

// Prepare computes the addressing staging cells for ctx.Inst. It returns
// a non-empty diagnostic when the operand combination is UNPREDICTABLE;
// annul reports whether the caller must skip the operation body.
func (a *AddressGenerator) Prepare(ctx *Context) (annul bool, diag string) {
	inst := ctx.Inst
	switch inst.Format {
	case isa.FormatLSI:
		return a.lsi(ctx, inst)
	case isa.FormatLSR:
		return a.lsr(ctx, inst)
	case isa.FormatLSE:
		return a.lse(ctx, inst)
	case isa.FormatLSM:
		return a.lsm(ctx, inst)
	}
	return false, ""
}

func (a *AddressGenerator) lsi(ctx *Context, inst *isa.Instruction) (bool, string) {
	writeback := !inst.P || inst.W
	if writeback && (inst.Rn == isa.PC || inst.Rn == inst.Rd) {
		return true, fmt.Sprintf("LSI: writeback with Rn=%d, Rd=%d is UNPREDICTABLE", inst.Rn, inst.Rd)
	}

	base := a.regFile.Read(inst.Rn)
	if inst.Rn == isa.PC {
		base += 4
	}

	var offset uint32
	if inst.U {
		offset = base + inst.Imm12
	} else {
		offset = base - inst.Imm12
	}

	if inst.P {
		ctx.Address = offset
	} else {
		ctx.Address = base
	}
	if writeback {
		a.regFile.Write(inst.Rn, offset)
	}
	return false, ""
}

func (a *AddressGenerator) lsr(ctx *Context, inst *isa.Instruction) (bool, string) {
	writeback := !inst.P || inst.W
	if inst.Rm == isa.PC {
		return true, "LSR: Rm=PC is UNPREDICTABLE"
	}
	if writeback && inst.Rn == inst.Rm {
		return true, fmt.Sprintf("LSR: writeback with Rn=Rm=%d is UNPREDICTABLE", inst.Rn)
	}
	if writeback && inst.Rn == isa.PC {
		return true, "LSR: writeback with Rn=PC is UNPREDICTABLE"
	}

	rmValue := a.regFile.Read(inst.Rm)
	shifted := shiftByAmount(inst.ShiftType, rmValue, inst.ShiftAmount, a.shifter.CarryIn()).Value

	base := a.regFile.Read(inst.Rn)
	if inst.Rn == isa.PC {
		base += 4
	}

	var offset uint32
	if inst.U {
		offset = base + shifted
	} else {
		offset = base - shifted
	}

	if inst.P {
		ctx.Address = offset
	} else {
		ctx.Address = base
	}
	if writeback {
		a.regFile.Write(inst.Rn, offset)
	}
	return false, ""
}

func (a *AddressGenerator) lse(ctx *Context, inst *isa.Instruction) (bool, string) {
	if !inst.P && inst.W {
		return true, "LSE: post-indexed with W=1 is UNPREDICTABLE"
	}
	writeback := !inst.P || inst.W

	base := a.regFile.Read(inst.Rn)
	if inst.Rn == isa.PC {
		base += 4
	}

	var rawOffset uint32
	if inst.RegOffset {
		rawOffset = a.regFile.Read(inst.Rm)
	} else {
		rawOffset = uint32(inst.ImmLSE)
	}

	var offset uint32
	if inst.U {
		offset = base + rawOffset
	} else {
		offset = base - rawOffset
	}

	if inst.P {
		ctx.Address = offset
	} else {
		ctx.Address = base
	}
	if writeback {
		a.regFile.Write(inst.Rn, offset)
	}
	return false, ""
}

func (a *AddressGenerator) lsm(ctx *Context, inst *isa.Instruction) (bool, string) {
	n := popcount16(inst.RegList)
	if n == 0 {
		return true, "LDM/STM: empty register list is UNPREDICTABLE"
	}
	if inst.W && inst.RegList&(1<<inst.Rn) != 0 {
		return true, fmt.Sprintf("LDM/STM: writeback to base register %d in list is UNPREDICTABLE", inst.Rn)
	}

	base := a.regFile.Read(inst.Rn)
	span := uint32(n) * 4

	switch {
	case !inst.P && inst.U: // IA
		ctx.StartAddress = base
		ctx.EndAddress = base + span - 4
		if inst.W {
			a.regFile.Write(inst.Rn, base+span)
		}
	case inst.P && inst.U: // IB
		ctx.StartAddress = base + 4
		ctx.EndAddress = base + span
		if inst.W {
			a.regFile.Write(inst.Rn, base+span)
		}
	case !inst.P && !inst.U: // DA
		ctx.StartAddress = base - span + 4
		ctx.EndAddress = base
		if inst.W {
			a.regFile.Write(inst.Rn, base-span)
		}
	default: // DB
		ctx.StartAddress = base - span
		ctx.EndAddress = base - 4
		if inst.W {
			a.regFile.Write(inst.Rn, base-span)
		}
	}
	return false, ""
}

func popcount16(v uint16) int {
	n := 0
	for v != 0 {
		n += int(v & 1)
		v >>= 1
	}
	return n
}
