package emu

import (
	"fmt"

	"github.com/archsim/armv5e/isa"
)

// ErrBranchOutOfBounds marks a computed branch target below zero, which is
// fatal. (Step's other error is an unrecognized instruction format.)
type ErrBranchOutOfBounds struct {
	Target int32
}

func (e *ErrBranchOutOfBounds) Error() string {
	return fmt.Sprintf("branch target %d is out of bounds", e.Target)
}

// BranchUnit implements B, BL, BX, and CLZ.
type BranchUnit struct {
	regFile *RegFile
	flags   *Flags
}

// NewBranchUnit creates a branch unit bound to regFile and flags.
func NewBranchUnit(regFile *RegFile, flags *Flags) *BranchUnit {
	return &BranchUnit{regFile: regFile, flags: flags}
}

// Branch runs B/BL. The effective target is the already-incremented PC
// plus the architectural PC+8 bias plus the sign-extended offset. A
// negative target is fatal.
func (b *BranchUnit) Branch(ctx *Context) error {
	inst := ctx.Inst
	pc := b.regFile.PC()

	if inst.L {
		b.regFile.Write(isa.LR, pc)
	}

	target := int64(pc) + 4 + int64(inst.BranchOffset)
	if target < 0 {
		return &ErrBranchOutOfBounds{Target: int32(target)}
	}

	b.regFile.SetPC(uint32(target))
	return nil
}

// BranchExchange runs BX. Entry into Thumb state (Rm[0]=1) is detected
// and reported rather than executed.
func (b *BranchUnit) BranchExchange(ctx *Context) (diag string) {
	inst := ctx.Inst
	target := b.regFile.Read(inst.Rm)

	if target&1 != 0 {
		return fmt.Sprintf("BX Rm=0x%X requests Thumb entry, which this core does not execute", target)
	}

	b.flags.T = false
	b.regFile.SetPC(target &^ 1)
	return ""
}

// CLZ counts the leading zero bits of Rm, 32 if Rm is zero.
func (b *BranchUnit) CLZ(ctx *Context) (diag string) {
	inst := ctx.Inst
	if inst.Rd == isa.PC || inst.Rm == isa.PC {
		diag = "CLZ: Rd or Rm is PC, UNPREDICTABLE"
	}

	value := b.regFile.Read(inst.Rm)
	count := uint32(0)
	if value == 0 {
		count = 32
	} else {
		for value&0x80000000 == 0 {
			count++
			value <<= 1
		}
	}
	b.regFile.Write(inst.Rd, count)
	return diag
}
