package emu

import "github.com/archsim/armv5e/isa"

// Debugger exposes register and memory access at the granularity a GDB
// remote-serial stub expects: reg_read/reg_write index general registers
// 0-14 and the PC at index 15; CPSR has no register index of its own and
// is reached separately through Flags.
type Debugger struct {
	regFile *RegFile
	memory  *Memory
	flags   *Flags
}

// NewDebugger creates a debug adapter bound to regFile, memory, and flags.
func NewDebugger(regFile *RegFile, memory *Memory, flags *Flags) *Debugger {
	return &Debugger{regFile: regFile, memory: memory, flags: flags}
}

// NumRegs returns the number of registers the debug interface exposes.
func (d *Debugger) NumRegs() int {
	return 16
}

// ReadReg returns register reg's value; reg 15 reads the PC mirror
// rather than R[15] directly, matching the reference model's ac_pc read.
func (d *Debugger) ReadReg(reg int) uint32 {
	if reg == int(isa.PC) {
		return d.regFile.PCMir
	}
	return d.regFile.Read(uint8(reg))
}

// WriteReg sets register reg to value; reg 15 updates the PC mirror.
func (d *Debugger) WriteReg(reg int, value uint32) {
	if reg == int(isa.PC) {
		d.regFile.PCMir = value
		d.regFile.R[isa.PC] = value
		return
	}
	d.regFile.Write(uint8(reg), value)
}

// CPSR returns the constructed status register. The reference model never
// got register-indexed CPSR access working through this interface; this
// is the adapter's substitute.
func (d *Debugger) CPSR() uint32 {
	return d.flags.CPSR()
}

// ReadMem returns the byte at addr.
func (d *Debugger) ReadMem(addr uint32) uint8 {
	return d.memory.Read8(addr)
}

// WriteMem stores a byte at addr.
func (d *Debugger) WriteMem(addr uint32, value uint8) {
	d.memory.Write8(addr, value)
}
