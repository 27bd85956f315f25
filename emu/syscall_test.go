package emu_test

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/archsim/armv5e/emu"
	"github.com/archsim/armv5e/isa"
)

var _ = Describe("SyscallHelpers", func() {
	var (
		regFile *emu.RegFile
		memory  *emu.Memory
		helpers *emu.SyscallHelpers
	)

	BeforeEach(func() {
		regFile = &emu.RegFile{}
		memory = emu.NewMemory()
		helpers = emu.NewSyscallHelpers(regFile, memory)
	})

	Describe("GetBuffer / SetBuffer", func() {
		It("round-trips a byte slice through memory at a register-held base", func() {
			regFile.Write(1, 0x4000)
			helpers.SetBuffer(1, []byte("hello"))

			Expect(helpers.GetBuffer(1, 5)).To(Equal([]byte("hello")))
		})
	})

	Describe("GetInt / SetInt", func() {
		It("round-trips a 32-bit value", func() {
			regFile.Write(2, 0x5000)
			helpers.SetInt(2, 0xDEADBEEF)

			Expect(helpers.GetInt(2)).To(Equal(uint32(0xDEADBEEF)))
		})
	})

	Describe("Return", func() {
		It("delivers the result via R14, not R0", func() {
			helpers.Return(42)

			Expect(regFile.Read(isa.LR)).To(Equal(uint32(42)))
		})
	})

	Describe("SetProgArgs", func() {
		It("bootstraps argc/argv at the fixed offsets from the top of RAM", func() {
			const ramEnd = 0x100000
			helpers.SetProgArgs(ramEnd, []string{"prog", "arg1"})

			Expect(regFile.Read(0)).To(Equal(uint32(2)))
			tableBase := ramEnd - emu.ArgPointersOffset
			Expect(regFile.Read(1)).To(Equal(uint32(tableBase)))
			Expect(regFile.Read(isa.SP)).To(Equal(uint32(tableBase)))

			firstStr := memory.Read32(uint32(tableBase))
			Expect(memory.Read8(firstStr)).To(Equal(uint8('p')))

			terminator := memory.Read32(uint32(tableBase) + 2*4)
			Expect(terminator).To(Equal(uint32(0)))
		})
	})
})

var _ = Describe("DefaultSyscallHandler", func() {
	var (
		regFile *emu.RegFile
		memory  *emu.Memory
		stdout  *bytes.Buffer
		stderr  *bytes.Buffer
		handler *emu.DefaultSyscallHandler
	)

	BeforeEach(func() {
		regFile = &emu.RegFile{}
		memory = emu.NewMemory()
		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}
		handler = emu.NewDefaultSyscallHandler(regFile, memory, stdout, stderr)
	})

	Describe("exit", func() {
		It("reports the exit code from R0", func() {
			regFile.Write(0, 7)

			result := handler.Handle(emu.SyscallExit)

			Expect(result.Exited).To(BeTrue())
			Expect(result.ExitCode).To(Equal(int32(7)))
		})
	})

	Describe("write", func() {
		It("writes the buffer at R1 to stdout when fd=1", func() {
			regFile.Write(0, 1)
			regFile.Write(1, 0x4000)
			regFile.Write(2, 5)
			for i, c := range []byte("howdy") {
				memory.Write8(0x4000+uint32(i), c)
			}

			handler.Handle(emu.SyscallWrite)

			Expect(stdout.String()).To(Equal("howdy"))
			Expect(regFile.Read(isa.LR)).To(Equal(uint32(5)))
		})
	})

	Describe("read", func() {
		It("reads from stdin into the buffer at R1 when fd=0", func() {
			handler.SetStdin(strings.NewReader("hi"))
			regFile.Write(0, 0)
			regFile.Write(1, 0x5000)
			regFile.Write(2, 2)

			handler.Handle(emu.SyscallRead)

			Expect(memory.Read8(0x5000)).To(Equal(uint8('h')))
			Expect(memory.Read8(0x5001)).To(Equal(uint8('i')))
			Expect(regFile.Read(isa.LR)).To(Equal(uint32(2)))
		})
	})

	Describe("close on a file descriptor that was never opened", func() {
		It("returns -1 via LR", func() {
			regFile.Write(0, 99)

			handler.Handle(emu.SyscallClose)

			Expect(regFile.Read(isa.LR)).To(Equal(^uint32(0)))
		})
	})

	Describe("an unrecognized syscall number", func() {
		It("is reported as unknown without altering register state", func() {
			result := handler.Handle(999)

			Expect(result.Unknown).To(BeTrue())
			Expect(*regFile).To(Equal(emu.RegFile{}))
		})
	})
})
