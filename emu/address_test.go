package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/archsim/armv5e/emu"
	"github.com/archsim/armv5e/isa"
)

var _ = Describe("AddressGenerator", func() {
	var (
		regFile *emu.RegFile
		flags   *emu.Flags
		shifter *emu.Shifter
		addrGen *emu.AddressGenerator
	)

	BeforeEach(func() {
		regFile = &emu.RegFile{}
		flags = &emu.Flags{}
		shifter = emu.NewShifter(regFile, flags)
		addrGen = emu.NewAddressGenerator(regFile, shifter)
	})

	Describe("LSI", func() {
		It("computes LDR R4, [R5, #4] pre-indexed, no writeback", func() {
			regFile.Write(5, 0x1000)
			ctx := &emu.Context{Inst: &isa.Instruction{
				Format: isa.FormatLSI, Rn: 5, Rd: 4, Imm12: 4, P: true, U: true,
			}}

			annul, diag := addrGen.Prepare(ctx)

			Expect(annul).To(BeFalse())
			Expect(diag).To(BeEmpty())
			Expect(ctx.Address).To(Equal(uint32(0x1004)))
			Expect(regFile.Read(5)).To(Equal(uint32(0x1000)))
		})

		It("annuls when writeback aliases Rn with PC", func() {
			ctx := &emu.Context{Inst: &isa.Instruction{
				Format: isa.FormatLSI, Rn: isa.PC, Rd: 0, P: false, U: true,
			}}

			annul, diag := addrGen.Prepare(ctx)

			Expect(annul).To(BeTrue())
			Expect(diag).NotTo(BeEmpty())
		})

		It("annuls when writeback aliases Rn with Rd", func() {
			ctx := &emu.Context{Inst: &isa.Instruction{
				Format: isa.FormatLSI, Rn: 2, Rd: 2, P: true, W: true, U: true,
			}}

			annul, _ := addrGen.Prepare(ctx)

			Expect(annul).To(BeTrue())
		})
	})

	Describe("LSM", func() {
		It("computes STMIA R6!, {R0,R1,R2}", func() {
			regFile.Write(6, 0x2000)
			ctx := &emu.Context{Inst: &isa.Instruction{
				Format: isa.FormatLSM, Rn: 6, RegList: 0x0007, P: false, U: true, W: true,
			}}

			annul, diag := addrGen.Prepare(ctx)

			Expect(annul).To(BeFalse())
			Expect(diag).To(BeEmpty())
			Expect(ctx.StartAddress).To(Equal(uint32(0x2000)))
			Expect(ctx.EndAddress).To(Equal(uint32(0x2008)))
			Expect(regFile.Read(6)).To(Equal(uint32(0x200C)))
		})

		It("satisfies end-start == 4*(k-1) for every addressing mode", func() {
			modes := []struct{ p, u bool }{
				{false, true}, {true, true}, {false, false}, {true, false},
			}
			for _, m := range modes {
				regFile.Write(6, 0x2000)
				ctx := &emu.Context{Inst: &isa.Instruction{
					Format: isa.FormatLSM, Rn: 6, RegList: 0x000F, P: m.p, U: m.u,
				}}
				addrGen.Prepare(ctx)
				Expect(ctx.EndAddress - ctx.StartAddress).To(Equal(uint32(4 * 3)))
			}
		})

		It("annuls on an empty register list", func() {
			ctx := &emu.Context{Inst: &isa.Instruction{
				Format: isa.FormatLSM, Rn: 6, RegList: 0,
			}}

			annul, diag := addrGen.Prepare(ctx)

			Expect(annul).To(BeTrue())
			Expect(diag).NotTo(BeEmpty())
		})
	})

	Describe("LSR", func() {
		It("annuls when Rm is PC", func() {
			ctx := &emu.Context{Inst: &isa.Instruction{
				Format: isa.FormatLSR, Rn: 1, Rm: isa.PC, P: true, U: true,
			}}

			annul, _ := addrGen.Prepare(ctx)

			Expect(annul).To(BeTrue())
		})

		It("folds the current carry flag into the index via RRX when the shift amount is 0", func() {
			regFile.Write(1, 0x1000)
			regFile.Write(2, 0x00000001)
			flags.C = true
			ctx := &emu.Context{Inst: &isa.Instruction{
				Format: isa.FormatLSR, Rn: 1, Rm: 2, ShiftType: isa.ShiftROR, ShiftAmount: 0,
				P: true, U: true,
			}}

			annul, diag := addrGen.Prepare(ctx)

			Expect(annul).To(BeFalse())
			Expect(diag).To(BeEmpty())
			// RRX of 0x00000001 with C=1 in: (1<<31)|(1>>1) = 0x80000000.
			Expect(ctx.Address).To(Equal(uint32(0x1000 + 0x80000000)))
		})

		It("treats the carry flag as clear via RRX when C is 0", func() {
			regFile.Write(1, 0x1000)
			regFile.Write(2, 0x00000001)
			flags.C = false
			ctx := &emu.Context{Inst: &isa.Instruction{
				Format: isa.FormatLSR, Rn: 1, Rm: 2, ShiftType: isa.ShiftROR, ShiftAmount: 0,
				P: true, U: true,
			}}

			annul, diag := addrGen.Prepare(ctx)

			Expect(annul).To(BeFalse())
			Expect(diag).To(BeEmpty())
			// RRX of 0x00000001 with C=0 in: (0<<31)|(1>>1) = 0x00000000.
			Expect(ctx.Address).To(Equal(uint32(0x1000)))
		})
	})

	Describe("LSE", func() {
		It("annuls post-indexed with W=1", func() {
			ctx := &emu.Context{Inst: &isa.Instruction{
				Format: isa.FormatLSE, Rn: 1, P: false, W: true,
			}}

			annul, _ := addrGen.Prepare(ctx)

			Expect(annul).To(BeTrue())
		})
	})
})
