package emu

import "github.com/archsim/armv5e/isa"

// ShiftResult is the barrel shifter's output: the shifted operand and its
// carry-out, which data-processing operations fold into C when S is set.
type ShiftResult struct {
	Value uint32
	Carry bool
}

// Shifter computes the DPI "shifter operand" for the three ARMv5e operand
// shapes (immediate-shift register, register-shift register, rotated
// immediate) and the register-offset form used by the address generator.
type Shifter struct {
	regFile *RegFile
	flags   *Flags
}

// NewShifter creates a barrel shifter reading from regFile and flags.
func NewShifter(regFile *RegFile, flags *Flags) *Shifter {
	return &Shifter{regFile: regFile, flags: flags}
}

// shiftByAmount applies shiftType to value by the given amount using the
// special-case rules that apply uniformly to amount==0 in the immediate
// form and to the register form once its own 0/32/>32 cases are resolved.
func shiftByAmount(shiftType isa.ShiftType, value uint32, amount uint8, carryIn bool) ShiftResult {
	switch shiftType {
	case isa.ShiftLSL:
		if amount == 0 {
			return ShiftResult{Value: value, Carry: carryIn}
		}
		if amount >= 32 {
			carry := amount == 32 && value&1 != 0
			return ShiftResult{Value: 0, Carry: carry}
		}
		return ShiftResult{
			Value: value << amount,
			Carry: (value>>(32-amount))&1 != 0,
		}
	case isa.ShiftLSR:
		if amount == 0 {
			return ShiftResult{Value: 0, Carry: value&0x80000000 != 0}
		}
		if amount >= 32 {
			carry := amount == 32 && value&0x80000000 != 0
			return ShiftResult{Value: 0, Carry: carry}
		}
		return ShiftResult{
			Value: value >> amount,
			Carry: (value>>(amount-1))&1 != 0,
		}
	case isa.ShiftASR:
		signed := int32(value)
		if amount == 0 || amount >= 32 {
			if value&0x80000000 == 0 {
				return ShiftResult{Value: 0, Carry: false}
			}
			return ShiftResult{Value: 0xFFFFFFFF, Carry: true}
		}
		return ShiftResult{
			Value: uint32(signed >> amount),
			Carry: (value>>(amount-1))&1 != 0,
		}
	case isa.ShiftROR:
		if amount == 0 {
			// RRX: rotate right by one through the carry flag.
			c := uint32(0)
			if carryIn {
				c = 1
			}
			return ShiftResult{
				Value: (c << 31) | (value >> 1),
				Carry: value&1 != 0,
			}
		}
		rot := amount % 32
		if rot == 0 {
			return ShiftResult{Value: value, Carry: value&0x80000000 != 0}
		}
		return ShiftResult{
			Value: value>>rot | value<<(32-rot),
			Carry: (value>>(rot-1))&1 != 0,
		}
	}
	return ShiftResult{Value: value, Carry: carryIn}
}

// CarryIn returns the current carry flag, for callers that need to feed
// the barrel shifter's ROR/RRX carry-in from outside a DPI form (the
// address generator's LSR scaled-register-offset mode).
func (s *Shifter) CarryIn() bool {
	return s.flags.C
}

// DPI1 computes the shifter operand for the immediate-shift register
// form. Rm=15 reads as PC+8 per the architectural bias.
func (s *Shifter) DPI1(rm uint8, shiftType isa.ShiftType, amount uint8) ShiftResult {
	value := s.regFile.ReadWithPCBias(rm)
	return shiftByAmount(shiftType, value, amount, s.flags.C)
}

// DPI2 computes the shifter operand for the register-shift register
// form. The shift amount is Rs[7:0]; amounts beyond 32 yield zero with a
// clear carry for LSL/LSR, fill with the sign bit for ASR, and for ROR are
// reduced mod 32 before the 0/nonzero special case applies. Rd, Rn, Rm, or Rs naming the PC is
// UNPREDICTABLE and annuls with a diagnostic, per the architecture.
func (s *Shifter) DPI2(rd, rn, rm uint8, shiftType isa.ShiftType, rs uint8) (result ShiftResult, diag string) {
	if rd == isa.PC || rn == isa.PC || rm == isa.PC || rs == isa.PC {
		return ShiftResult{}, "DPI register-shift form: Rd, Rn, Rm, or Rs is PC, UNPREDICTABLE"
	}

	value := s.regFile.ReadWithPCBias(rm)
	amount := uint8(s.regFile.Read(rs) & 0xFF)

	if amount == 0 {
		return ShiftResult{Value: value, Carry: s.flags.C}, ""
	}

	full := s.regFile.Read(rs) & 0xFF
	if full > 32 {
		switch shiftType {
		case isa.ShiftLSL, isa.ShiftLSR:
			return ShiftResult{Value: 0, Carry: false}, ""
		case isa.ShiftASR:
			if value&0x80000000 == 0 {
				return ShiftResult{Value: 0, Carry: false}, ""
			}
			return ShiftResult{Value: 0xFFFFFFFF, Carry: true}, ""
		case isa.ShiftROR:
			amount = uint8(full % 32)
			if amount == 0 {
				return ShiftResult{Value: value, Carry: value&0x80000000 != 0}, ""
			}
		}
	}

	return shiftByAmount(shiftType, value, amount, s.flags.C), ""
}

// DPI3 computes the shifter operand for the rotated-immediate form:
// zero-extend imm8, rotate right by 2*rotateImm.
func (s *Shifter) DPI3(imm8 uint8, rotateImm uint8) ShiftResult {
	value := uint32(imm8)
	rotate := uint(rotateImm) * 2
	if rotate == 0 {
		return ShiftResult{Value: value, Carry: s.flags.C}
	}
	rotated := value>>rotate | value<<(32-rotate)
	return ShiftResult{Value: rotated, Carry: rotated&0x80000000 != 0}
}
