package emu

import "github.com/archsim/armv5e/isa"

// Preamble runs ahead of every instruction: evaluate cond, commit the PC
// advance, and decide whether the operation body is annulled.
type Preamble struct {
	regFile *RegFile
	flags   *Flags
}

// NewPreamble creates a preamble bound to regFile and flags.
func NewPreamble(regFile *RegFile, flags *Flags) *Preamble {
	return &Preamble{regFile: regFile, flags: flags}
}

// Run evaluates inst's condition, commits PC+4, and returns a Context
// whose Annulled field tells the dispatcher whether to skip every later
// stage. AL-coded instructions are always executed; cond 15 is
// architecturally undefined and never executes.
func (p *Preamble) Run(inst *isa.Instruction) *Context {
	p.regFile.PCMir += 4
	p.regFile.R[isa.PC] = p.regFile.PCMir

	taken := isa.CheckCondition(inst.Cond, p.flags.N, p.flags.Z, p.flags.C, p.flags.V)

	return &Context{
		Inst:     inst,
		Annulled: !taken,
	}
}
