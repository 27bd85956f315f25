package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/archsim/armv5e/emu"
	"github.com/archsim/armv5e/isa"
)

var _ = Describe("SwapUnit", func() {
	var (
		regFile *emu.RegFile
		memory  *emu.Memory
		lsu     *emu.LoadStoreUnit
		swap    *emu.SwapUnit
	)

	BeforeEach(func() {
		regFile = &emu.RegFile{}
		memory = emu.NewMemory()
		flags := &emu.Flags{}
		lsu = emu.NewLoadStoreUnit(regFile, memory, flags)
		swap = emu.NewSwapUnit(regFile, lsu)
	})

	Describe("SWP", func() {
		It("atomically exchanges a word between memory and Rd", func() {
			memory.Write32(0x1000, 0xAAAAAAAA)
			regFile.Write(1, 0x1000)
			regFile.Write(2, 0xBBBBBBBB)
			ctx := &emu.Context{Inst: &isa.Instruction{Op: isa.OpSWP, Rd: 3, Rm: 2, Rn: 1}}

			diag := swap.Execute(ctx)

			Expect(diag).To(BeEmpty())
			Expect(regFile.Read(3)).To(Equal(uint32(0xAAAAAAAA)))
			Expect(memory.Read32(0x1000)).To(Equal(uint32(0xBBBBBBBB)))
		})
	})

	Describe("SWPB", func() {
		It("exchanges only a byte", func() {
			memory.Write8(0x1000, 0xAA)
			regFile.Write(1, 0x1000)
			regFile.Write(2, 0xBB)
			ctx := &emu.Context{Inst: &isa.Instruction{Op: isa.OpSWPB, Rd: 3, Rm: 2, Rn: 1}}

			diag := swap.Execute(ctx)

			Expect(diag).To(BeEmpty())
			Expect(regFile.Read(3)).To(Equal(uint32(0xAA)))
			Expect(memory.Read8(0x1000)).To(Equal(uint8(0xBB)))
		})
	})

	Describe("operand aliasing", func() {
		It("warns but still executes when Rm == Rn", func() {
			memory.Write32(0x1000, 1)
			regFile.Write(1, 0x1000)
			ctx := &emu.Context{Inst: &isa.Instruction{Op: isa.OpSWP, Rd: 2, Rm: 1, Rn: 1}}

			diag := swap.Execute(ctx)

			Expect(diag).NotTo(BeEmpty())
			Expect(regFile.Read(2)).To(Equal(uint32(1)))
		})

		It("warns but still executes when Rn == Rd", func() {
			memory.Write32(0x1000, 1)
			regFile.Write(1, 0x1000)
			regFile.Write(2, 5)
			ctx := &emu.Context{Inst: &isa.Instruction{Op: isa.OpSWP, Rd: 1, Rm: 2, Rn: 1}}

			diag := swap.Execute(ctx)

			Expect(diag).NotTo(BeEmpty())
			Expect(memory.Read32(0x1000)).To(Equal(uint32(5)))
		})

		It("warns when any operand is PC", func() {
			regFile.Write(1, 0x1000)
			ctx := &emu.Context{Inst: &isa.Instruction{Op: isa.OpSWP, Rd: isa.PC, Rm: 2, Rn: 1}}

			diag := swap.Execute(ctx)

			Expect(diag).NotTo(BeEmpty())
		})
	})
})
