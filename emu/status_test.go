package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/archsim/armv5e/emu"
	"github.com/archsim/armv5e/isa"
)

var _ = Describe("StatusUnit", func() {
	var (
		regFile *emu.RegFile
		flags   *emu.Flags
		status  *emu.StatusUnit
	)

	BeforeEach(func() {
		regFile = &emu.RegFile{}
		flags = &emu.Flags{}
		status = emu.NewStatusUnit(regFile, flags)
	})

	Describe("MRS", func() {
		It("writes the constructed CPSR, always with bits 4/6/7 set", func() {
			ctx := &emu.Context{Inst: &isa.Instruction{Op: isa.OpMRS, Rd: 1, FieldMask: 0xF}}

			diag := status.MRS(ctx)

			Expect(diag).To(BeEmpty())
			Expect(regFile.Read(1) & 0xD0).To(Equal(uint32(0xD0)))
		})

		It("mirrors N, Z, C, V into bits 31-28", func() {
			flags.N = true
			flags.C = true
			ctx := &emu.Context{Inst: &isa.Instruction{Op: isa.OpMRS, Rd: 1, FieldMask: 0xF}}

			status.MRS(ctx)

			cpsr := regFile.Read(1)
			Expect(cpsr & (1 << 31)).NotTo(BeZero())
			Expect(cpsr & (1 << 30)).To(BeZero())
			Expect(cpsr & (1 << 29)).NotTo(BeZero())
			Expect(cpsr & (1 << 28)).To(BeZero())
		})

		It("warns when Rd is PC", func() {
			ctx := &emu.Context{Inst: &isa.Instruction{Op: isa.OpMRS, Rd: isa.PC, FieldMask: 0xF}}

			diag := status.MRS(ctx)

			Expect(diag).NotTo(BeEmpty())
		})

		It("warns when the field mask is not the canonical 0xF", func() {
			ctx := &emu.Context{Inst: &isa.Instruction{Op: isa.OpMRS, Rd: 1, FieldMask: 0x1}}

			diag := status.MRS(ctx)

			Expect(diag).NotTo(BeEmpty())
		})
	})
})
