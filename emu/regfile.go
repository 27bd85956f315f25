// Package emu provides the ARMv5e functional execution core.
package emu

import "github.com/archsim/armv5e/isa"

// RegFile is the ARMv5e general register bank: 16 32-bit words, with R15
// aliased to the program counter. A separate PC mirror (ac_pc in the
// reference model) is kept in sync by every write to R15, so external
// observers (the debugger adapter) can read it without reaching into R.
type RegFile struct {
	R     [16]uint32
	PCMir uint32
}

// Read returns the value of register i. Reading R15 returns the current
// PC.
func (r *RegFile) Read(i uint8) uint32 {
	return r.R[i&0xF]
}

// Write stores value into register i. Writing R15 updates the PC mirror
// immediately, matching the reference model's "ac_pc <- RB[15]" step at
// the end of every operation that can target R15.
func (r *RegFile) Write(i uint8, value uint32) {
	r.R[i&0xF] = value
	if i&0xF == isa.PC {
		r.PCMir = value
	}
}

// ReadWithPCBias returns the value of register i, adding 4 when i is the
// program counter. This implements the architectural "PC+8" rule: the
// preamble has already committed PC+4, and any operand read of R15 adds a
// second +4 on top of that.
func (r *RegFile) ReadWithPCBias(i uint8) uint32 {
	v := r.Read(i)
	if i&0xF == isa.PC {
		v += 4
	}
	return v
}

// PC returns the current program counter.
func (r *RegFile) PC() uint32 {
	return r.R[isa.PC]
}

// SetPC sets R15 and the PC mirror together.
func (r *RegFile) SetPC(value uint32) {
	r.Write(isa.PC, value)
}

// SP returns the stack pointer, R13 by convention.
func (r *RegFile) SP() uint32 {
	return r.R[isa.SP]
}

// LR returns the link register, R14 by convention.
func (r *RegFile) LR() uint32 {
	return r.R[isa.LR]
}
