package emu

import "github.com/archsim/armv5e/isa"

// Multiplier implements the ARMv5e multiply family: 32-bit MUL/MLA,
// 64-bit long multiply, and the ARMv5TE 16x16 DSP multiplies.
type Multiplier struct {
	regFile *RegFile
	flags   *Flags
}

// NewMultiplier creates a multiplier bound to regFile and flags.
func NewMultiplier(regFile *RegFile, flags *Flags) *Multiplier {
	return &Multiplier{regFile: regFile, flags: flags}
}

// Multiply runs MUL or MLA. Rd=Rm is a classic UNPREDICTABLE aliasing
// case; per spec policy it proceeds with a diagnostic rather than
// annulling.
func (m *Multiplier) Multiply(ctx *Context) (diag string) {
	inst := ctx.Inst
	if inst.Rd == inst.Rm {
		diag = "MUL/MLA: Rd and Rm name the same register, UNPREDICTABLE"
	}

	product := m.regFile.Read(inst.Rm) * m.regFile.Read(inst.Rs)
	if inst.Op == isa.OpMLA {
		product += m.regFile.Read(inst.Rn)
	}

	m.regFile.Write(inst.Rd, product)
	if inst.SetFlags {
		m.flags.setNZ(product)
	}
	return diag
}

// LongMultiply runs UMULL/UMLAL/SMULL/SMLAL. RdHi==RdLo is the classic
// aliasing hazard; it proceeds with a diagnostic.
func (m *Multiplier) LongMultiply(ctx *Context) (diag string) {
	inst := ctx.Inst
	if inst.RdHi == inst.RdLo {
		diag = "long multiply: RdHi and RdLo name the same register, UNPREDICTABLE"
	}

	rm := m.regFile.Read(inst.Rm)
	rs := m.regFile.Read(inst.Rs)

	var product uint64
	switch inst.Op {
	case isa.OpUMULL, isa.OpUMLAL:
		product = uint64(rm) * uint64(rs)
	case isa.OpSMULL, isa.OpSMLAL:
		product = uint64(int64(int32(rm)) * int64(int32(rs)))
	}

	if inst.Op == isa.OpUMLAL || inst.Op == isa.OpSMLAL {
		acc := uint64(m.regFile.Read(inst.RdHi))<<32 | uint64(m.regFile.Read(inst.RdLo))
		product += acc
	}

	m.regFile.Write(inst.RdHi, uint32(product>>32))
	m.regFile.Write(inst.RdLo, uint32(product))

	if inst.SetFlags {
		m.flags.N = product&(1<<63) != 0
		m.flags.Z = product == 0
	}
	return diag
}

// halfword extracts the sign-extended low or high halfword of value.
func halfword(value uint32, high bool) int32 {
	if high {
		return int32(int16(value >> 16))
	}
	return int32(int16(value))
}

// DSPMultiply runs SMLAxy/SMULxy: a signed 16x16 multiply of two
// sign-extended halfwords selected from Rm and Rs, optionally
// accumulating Rn. The Q (saturation) flag is never set, per spec.
func (m *Multiplier) DSPMultiply(ctx *Context) {
	inst := ctx.Inst

	ctx.OP1 = halfword(m.regFile.Read(inst.Rm), inst.XHigh)
	ctx.OP2 = halfword(m.regFile.Read(inst.Rs), inst.YHigh)

	result := ctx.OP1 * ctx.OP2
	if inst.Op == isa.OpDSMLA {
		result += int32(m.regFile.Read(inst.Rn))
	}
	m.regFile.Write(inst.Rd, uint32(result))
}
