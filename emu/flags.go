package emu

// Flags holds the six condition-code bits the core tracks. CPSR is not
// stored persistently; CPSR() reconstructs it on demand with the fixed
// User-mode bits the spec requires.
type Flags struct {
	N bool
	Z bool
	C bool
	V bool
	Q bool // saturation flag; never set by any implemented DSP operation
	T bool // Thumb-state flag; set by LDR/LDM loads into PC when bit 0 of the loaded word is 1, cleared by BX
}

// CPSR bit positions used by CPSR().
const (
	cpsrModeUser = 1 << 4
	cpsrFIQDis   = 1 << 6
	cpsrIRQDis   = 1 << 7
	cpsrT        = 1 << 5
	cpsrQ        = 1 << 27
	cpsrV        = 1 << 28
	cpsrC        = 1 << 29
	cpsrZ        = 1 << 30
	cpsrN        = 1 << 31
)

// CPSR constructs the Current Program Status Register from the flag
// state. Bits 4, 6, and 7 are always set (User mode, FIQ and IRQ
// disabled); the simulator does not model privileged modes or interrupt
// masking beyond this fixed view.
func (f *Flags) CPSR() uint32 {
	cpsr := uint32(cpsrModeUser | cpsrFIQDis | cpsrIRQDis)
	if f.T {
		cpsr |= cpsrT
	}
	if f.Q {
		cpsr |= cpsrQ
	}
	if f.V {
		cpsr |= cpsrV
	}
	if f.C {
		cpsr |= cpsrC
	}
	if f.Z {
		cpsr |= cpsrZ
	}
	if f.N {
		cpsr |= cpsrN
	}
	return cpsr
}

// setNZ sets N and Z from a 32-bit result, the common tail of every
// flag-setting data-processing operation.
func (f *Flags) setNZ(result uint32) {
	f.N = result&0x80000000 != 0
	f.Z = result == 0
}
