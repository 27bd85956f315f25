package isa

// Decoder decodes 32-bit ARMv5e instruction words into Instruction values.
//
// Field extraction follows the ARM architecture reference encoding tables;
// the resulting field names mirror the ones used throughout the execution
// core (rn, rd, rm, rs, p, u, b, w, i, s, l, a, sh) so that a stage never
// has to re-derive a field from Raw.
type Decoder struct{}

// NewDecoder creates a new ARMv5e instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit instruction word fetched from address pc.
func (d *Decoder) Decode(word uint32, pc uint32) *Instruction {
	inst := &Instruction{
		Raw:  word,
		PC:   pc,
		Op:   OpUnknown,
		Cond: Cond(bits(word, 31, 28)),
	}

	switch bits(word, 27, 26) {
	case 0b00:
		d.decodeDPClass(word, inst)
	case 0b01:
		d.decodeLoadStoreWordByte(word, inst)
	case 0b10:
		d.decodeBranchOrMultiple(word, inst)
	case 0b11:
		d.decodeCoprocOrSWI(word, inst)
	}

	return inst
}

// bits extracts the inclusive [hi:lo] field from word.
func bits(word uint32, hi, lo uint8) uint32 {
	width := hi - lo + 1
	mask := uint32(1)<<width - 1
	return (word >> lo) & mask
}

func bit(word uint32, n uint8) bool {
	return (word>>n)&1 == 1
}

// decodeDPClass handles the bits[27:26]==00 class: data processing,
// PSR transfer, multiply, swap, halfword/signed transfer, and CLZ.
func (d *Decoder) decodeDPClass(word uint32, inst *Instruction) {
	if d.decodeBranchExchange(word, inst) {
		return
	}
	if d.decodeCLZ(word, inst) {
		return
	}
	if d.decodeMRS(word, inst) {
		return
	}
	if d.decodeMSR(word, inst) {
		return
	}

	iBit := bit(word, 25)

	if !iBit && bit(word, 7) && !bit(word, 4) && d.decodeSignedMultiply(word, inst) {
		return
	}

	if !iBit && bit(word, 4) && bit(word, 7) {
		// Multiply, long multiply, swap, or halfword/signed data
		// transfer — all share bit4=1, bit7=1.
		if d.decodeMultiplyGroup(word, inst) {
			return
		}
		if d.decodeSwap(word, inst) {
			return
		}
		d.decodeHalfwordTransfer(word, inst)
		return
	}

	if iBit {
		d.decodeDPI3(word, inst)
		return
	}

	if bit(word, 4) {
		d.decodeDPI2(word, inst)
	} else {
		d.decodeDPI1(word, inst)
	}
}

var dpOpcodes = []Op{
	OpAND, OpEOR, OpSUB, OpRSB, OpADD, OpADC, OpSBC, OpRSC,
	OpTST, OpTEQ, OpCMP, OpCMN, OpORR, OpMOV, OpBIC, OpMVN,
}

func (d *Decoder) fillDPCommon(word uint32, inst *Instruction) {
	opcode := bits(word, 24, 21)
	inst.Op = dpOpcodes[opcode]
	inst.SetFlags = bit(word, 20)
	inst.Rn = uint8(bits(word, 19, 16))
	inst.Rd = uint8(bits(word, 15, 12))
}

func (d *Decoder) decodeDPI1(word uint32, inst *Instruction) {
	inst.Format = FormatDPI1
	d.fillDPCommon(word, inst)
	inst.Rm = uint8(bits(word, 3, 0))
	inst.ShiftType = ShiftType(bits(word, 6, 5))
	inst.ShiftAmount = uint8(bits(word, 11, 7))
}

func (d *Decoder) decodeDPI2(word uint32, inst *Instruction) {
	inst.Format = FormatDPI2
	d.fillDPCommon(word, inst)
	inst.Rm = uint8(bits(word, 3, 0))
	inst.ShiftType = ShiftType(bits(word, 6, 5))
	inst.ShiftIsReg = true
	inst.Rs = uint8(bits(word, 11, 8))
}

func (d *Decoder) decodeDPI3(word uint32, inst *Instruction) {
	inst.Format = FormatDPI3
	d.fillDPCommon(word, inst)
	inst.RotateImm = uint8(bits(word, 11, 8))
	inst.Imm8 = uint8(bits(word, 7, 0))
}

// decodeBranchExchange recognizes BX and the unimplemented register-form
// BLX; both share bits[27:8] fixed to 0x12FFF and differ only in bits[7:4].
func (d *Decoder) decodeBranchExchange(word uint32, inst *Instruction) bool {
	if bits(word, 27, 8) != 0x12FFF {
		return false
	}
	switch bits(word, 7, 4) {
	case 0b0001:
		inst.Format = FormatBranchExchange
		inst.Op = OpBX
		inst.Rm = uint8(bits(word, 3, 0))
		return true
	case 0b0011:
		inst.Format = FormatUnimplemented
		inst.Op = OpBLX
		inst.Rm = uint8(bits(word, 3, 0))
		return true
	}
	return false
}

func (d *Decoder) decodeCLZ(word uint32, inst *Instruction) bool {
	if bits(word, 27, 20) != 0b00010110 || bits(word, 19, 16) != 0xF ||
		bits(word, 11, 8) != 0xF || bits(word, 7, 4) != 0b0001 {
		return false
	}
	inst.Format = FormatDPI1
	inst.Op = OpCLZ
	inst.Rd = uint8(bits(word, 15, 12))
	inst.Rm = uint8(bits(word, 3, 0))
	return true
}

func (d *Decoder) decodeMRS(word uint32, inst *Instruction) bool {
	if bits(word, 27, 23) != 0b00010 || bits(word, 21, 20) != 0b00 ||
		bits(word, 19, 16) != 0xF || bits(word, 11, 0) != 0 {
		return false
	}
	inst.Format = FormatMRS
	inst.Op = OpMRS
	inst.Rd = uint8(bits(word, 15, 12))
	inst.FieldMask = 0xF
	return true
}

// decodeMSR recognizes both the register and rotated-immediate MSR
// encodings. MSR is acknowledged but never executed.
func (d *Decoder) decodeMSR(word uint32, inst *Instruction) bool {
	if bits(word, 27, 23) == 0b00010 && bits(word, 21, 20) == 0b10 &&
		bits(word, 15, 12) == 0xF && bits(word, 11, 4) == 0 {
		inst.Format = FormatUnimplemented
		inst.Op = OpMSR
		inst.FieldMask = uint8(bits(word, 19, 16))
		inst.Rm = uint8(bits(word, 3, 0))
		return true
	}
	if bits(word, 27, 23) == 0b00110 && bits(word, 21, 20) == 0b10 &&
		bits(word, 15, 12) == 0xF {
		inst.Format = FormatUnimplemented
		inst.Op = OpMSR
		inst.FieldMask = uint8(bits(word, 19, 16))
		inst.RotateImm = uint8(bits(word, 11, 8))
		inst.Imm8 = uint8(bits(word, 7, 0))
		return true
	}
	return false
}

func (d *Decoder) decodeMultiplyGroup(word uint32, inst *Instruction) bool {
	switch bits(word, 27, 23) {
	case 0b00000:
		inst.Format = FormatMultiply
		inst.A = bit(word, 21)
		inst.SetFlags = bit(word, 20)
		inst.Rd = uint8(bits(word, 19, 16))
		inst.Rn = uint8(bits(word, 15, 12))
		inst.Rs = uint8(bits(word, 11, 8))
		inst.Rm = uint8(bits(word, 3, 0))
		if inst.A {
			inst.Op = OpMLA
		} else {
			inst.Op = OpMUL
		}
		return true
	case 0b00001:
		inst.Format = FormatLongMultiply
		inst.SetFlags = bit(word, 20)
		inst.RdHi = uint8(bits(word, 19, 16))
		inst.RdLo = uint8(bits(word, 15, 12))
		inst.Rs = uint8(bits(word, 11, 8))
		inst.Rm = uint8(bits(word, 3, 0))
		switch bits(word, 22, 21) {
		case 0b00:
			inst.Op = OpUMULL
		case 0b01:
			inst.Op = OpUMLAL
		case 0b10:
			inst.Op = OpSMULL
		case 0b11:
			inst.Op = OpSMLAL
		}
		return true
	}
	return false
}

func (d *Decoder) decodeSwap(word uint32, inst *Instruction) bool {
	if bits(word, 24, 23) != 0b10 || bit(word, 20) || bits(word, 11, 8) != 0 ||
		bits(word, 7, 4) != 0b1001 {
		return false
	}
	inst.Format = FormatSwap
	inst.B = bit(word, 22)
	inst.Rn = uint8(bits(word, 19, 16))
	inst.Rd = uint8(bits(word, 15, 12))
	inst.Rm = uint8(bits(word, 3, 0))
	if inst.B {
		inst.Op = OpSWPB
	} else {
		inst.Op = OpSWP
	}
	return true
}

// decodeSignedMultiply recognizes the ARMv5TE signed-multiply family. Only
// SMLAxy (OpDSMLA) and SMULxy (OpDSMUL) are executed; SMLAWy, SMULWy, and
// SMLALxy are decoded for diagnostics and reported as unimplemented.
func (d *Decoder) decodeSignedMultiply(word uint32, inst *Instruction) bool {
	if bits(word, 27, 23) != 0b00010 || bit(word, 20) || !bit(word, 7) || bit(word, 4) {
		return false
	}
	inst.Rd = uint8(bits(word, 19, 16))
	inst.Rn = uint8(bits(word, 15, 12))
	inst.Rs = uint8(bits(word, 11, 8))
	inst.Rm = uint8(bits(word, 3, 0))
	inst.XHigh = bit(word, 5)
	inst.YHigh = bit(word, 6)

	switch bits(word, 22, 21) {
	case 0b00:
		inst.Format = FormatDSPMultiply
		inst.Op = OpDSMLA
	case 0b11:
		inst.Format = FormatDSPMultiply
		inst.Op = OpDSMUL
	case 0b01:
		inst.Format = FormatUnimplemented
		if bit(word, 5) {
			inst.Op = OpSMULWxy
		} else {
			inst.Op = OpSMLAWxy
		}
	case 0b10:
		inst.Format = FormatUnimplemented
		inst.Op = OpSMLALxy
		inst.RdHi = inst.Rd
		inst.RdLo = inst.Rn
	}
	return true
}

// decodeHalfwordTransfer handles LSE: halfword, signed-byte, and
// doubleword loads/stores, in both immediate and register-offset shapes.
func (d *Decoder) decodeHalfwordTransfer(word uint32, inst *Instruction) {
	sh := bits(word, 6, 5)
	if sh == 0b00 {
		// Decode error per spec 4.3: (ss,hh)=(0,0) is not an LSE form.
		return
	}

	inst.Format = FormatLSE
	inst.P = bit(word, 24)
	inst.U = bit(word, 23)
	inst.W = bit(word, 21)
	load := bit(word, 20)
	inst.Rn = uint8(bits(word, 19, 16))
	inst.Rd = uint8(bits(word, 15, 12))

	inst.HalfSigned = load && (sh == 0b10 || sh == 0b11)
	inst.DoubleWord = !load && (sh == 0b10 || sh == 0b11)

	if bit(word, 22) {
		inst.ImmLSE = uint8(bits(word, 11, 8)<<4 | bits(word, 3, 0))
	} else {
		inst.RegOffset = true
		inst.Rm = uint8(bits(word, 3, 0))
	}

	switch sh {
	case 0b01:
		if load {
			inst.Op = OpLDRH
		} else {
			inst.Op = OpSTRH
		}
	case 0b10:
		// With L=0 this slot encodes LDRD, not a signed-byte store.
		if load {
			inst.Op = OpLDRSB
		} else {
			inst.Op = OpLDRD
		}
	case 0b11:
		// With L=0 this slot encodes STRD, not a signed-halfword store.
		if load {
			inst.Op = OpLDRSH
		} else {
			inst.Op = OpSTRD
		}
	}
}

// decodeLoadStoreWordByte handles bits[27:26]==01: LSI and LSR.
func (d *Decoder) decodeLoadStoreWordByte(word uint32, inst *Instruction) {
	inst.P = bit(word, 24)
	inst.U = bit(word, 23)
	inst.B = bit(word, 22)
	inst.W = bit(word, 21)
	load := bit(word, 20)
	inst.Rn = uint8(bits(word, 19, 16))
	inst.Rd = uint8(bits(word, 15, 12))

	userMode := !inst.P && inst.W // post-indexed with W=1 selects the *T variant

	if bit(word, 25) {
		inst.Format = FormatLSR
		inst.RegOffset = true
		inst.ShiftType = ShiftType(bits(word, 6, 5))
		inst.ShiftAmount = uint8(bits(word, 11, 7))
		inst.Rm = uint8(bits(word, 3, 0))
	} else {
		inst.Format = FormatLSI
		inst.Imm12 = bits(word, 11, 0)
	}

	inst.Op = selectWordByteOp(load, inst.B, userMode)
}

func selectWordByteOp(load, isByte, userMode bool) Op {
	switch {
	case load && !isByte && !userMode:
		return OpLDR
	case load && !isByte && userMode:
		return OpLDRT
	case load && isByte && !userMode:
		return OpLDRB
	case load && isByte && userMode:
		return OpLDRBT
	case !load && !isByte && !userMode:
		return OpSTR
	case !load && !isByte && userMode:
		return OpSTRT
	case !load && isByte && !userMode:
		return OpSTRB
	default:
		return OpSTRBT
	}
}

// decodeBranchOrMultiple handles bits[27:26]==10: LDM/STM and B/BL.
func (d *Decoder) decodeBranchOrMultiple(word uint32, inst *Instruction) {
	if !bit(word, 25) {
		inst.Format = FormatLSM
		inst.P = bit(word, 24)
		inst.U = bit(word, 23)
		inst.W = bit(word, 21)
		load := bit(word, 20)
		inst.Rn = uint8(bits(word, 19, 16))
		inst.RegList = uint16(bits(word, 15, 0))
		if load {
			inst.Op = OpLDM
		} else {
			inst.Op = OpSTM
		}
		return
	}

	inst.Format = FormatBranch
	inst.L = bit(word, 24)
	if inst.L {
		inst.Op = OpBL
	} else {
		inst.Op = OpB
	}
	imm24 := bits(word, 23, 0)
	offset := int32(imm24 << 8) // sign-extend 24->32 via shift trick
	offset >>= 6                // restore to a 26-bit signed value, then <<2
	inst.BranchOffset = offset
}

// decodeCoprocOrSWI handles bits[27:26]==11: coprocessor ops, LDC/STC, and
// SWI. Coprocessor operations are recognized but inert.
func (d *Decoder) decodeCoprocOrSWI(word uint32, inst *Instruction) {
	if bits(word, 27, 24) == 0b1111 {
		inst.Format = FormatSWI
		inst.Op = OpSWI
		inst.SWINumber = bits(word, 23, 0)
		return
	}

	inst.Format = FormatUnimplemented
	inst.CoprocNum = uint8(bits(word, 11, 8))

	if !bit(word, 25) {
		if bit(word, 20) {
			inst.Op = OpLDC
		} else {
			inst.Op = OpSTC
		}
		return
	}

	if bit(word, 4) {
		if bit(word, 20) {
			inst.Op = OpMRC
		} else {
			inst.Op = OpMCR
		}
		return
	}

	inst.Op = OpCDP
}
