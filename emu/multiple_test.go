package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/archsim/armv5e/emu"
	"github.com/archsim/armv5e/isa"
)

var _ = Describe("MultipleTransferUnit", func() {
	var (
		regFile *emu.RegFile
		memory  *emu.Memory
		flags   *emu.Flags
		mt      *emu.MultipleTransferUnit
	)

	BeforeEach(func() {
		regFile = &emu.RegFile{}
		memory = emu.NewMemory()
		flags = &emu.Flags{}
		mt = emu.NewMultipleTransferUnit(regFile, memory, flags)
	})

	Describe("STMIA R6!, {R0,R1,R2}", func() {
		It("stores registers at sequential word addresses low-to-high", func() {
			regFile.Write(0, 1)
			regFile.Write(1, 2)
			regFile.Write(2, 3)
			ctx := &emu.Context{
				Inst:         &isa.Instruction{Op: isa.OpSTM, RegList: 0x0007},
				StartAddress: 0x2000,
				EndAddress:   0x2008,
			}

			mt.Execute(ctx)

			Expect(memory.Read32(0x2000)).To(Equal(uint32(1)))
			Expect(memory.Read32(0x2004)).To(Equal(uint32(2)))
			Expect(memory.Read32(0x2008)).To(Equal(uint32(3)))
		})
	})

	Describe("LDM with R15 in the register list", func() {
		It("reloads PC last, masking bit 0 and updating the Thumb flag", func() {
			memory.Write32(0x3000, 0x00000042)
			memory.Write32(0x3004, 0x00004001) // odd -> Thumb entry
			ctx := &emu.Context{
				Inst:         &isa.Instruction{Op: isa.OpLDM, RegList: 0x8001},
				StartAddress: 0x3000,
				EndAddress:   0x3004,
			}

			mt.Execute(ctx)

			Expect(regFile.Read(0)).To(Equal(uint32(0x42)))
			Expect(regFile.PC()).To(Equal(uint32(0x4000)))
			Expect(flags.T).To(BeTrue())
		})
	})

	Describe("STM with R15 in the register list", func() {
		It("stores the current PC value like any other register", func() {
			regFile.SetPC(0x9000)
			ctx := &emu.Context{
				Inst:         &isa.Instruction{Op: isa.OpSTM, RegList: 0x8000},
				StartAddress: 0x3000,
				EndAddress:   0x3000,
			}

			mt.Execute(ctx)

			Expect(memory.Read32(0x3000)).To(Equal(uint32(0x9000)))
		})
	})

	Describe("register list ordering", func() {
		It("walks bits 0 through 14 before handling bit 15", func() {
			regFile.Write(0, 0xAAAA)
			regFile.Write(14, 0xBBBB)
			ctx := &emu.Context{
				Inst:         &isa.Instruction{Op: isa.OpSTM, RegList: 0x4001},
				StartAddress: 0x5000,
				EndAddress:   0x5004,
			}

			mt.Execute(ctx)

			Expect(memory.Read32(0x5000)).To(Equal(uint32(0xAAAA)))
			Expect(memory.Read32(0x5004)).To(Equal(uint32(0xBBBB)))
		})
	})
})
