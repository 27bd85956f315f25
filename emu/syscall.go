package emu

import (
	"io"
	"os"

	"github.com/archsim/armv5e/isa"
)

// Syscall numbers recognized by DefaultSyscallHandler. Any other number is
// reported as unknown and execution continues.
const (
	SyscallExit  uint32 = 1
	SyscallRead  uint32 = 3
	SyscallWrite uint32 = 4
	SyscallOpen  uint32 = 5
	SyscallClose uint32 = 6
)

// Program-arguments bootstrap offsets from the top of RAM, per the
// external syscall adapter contract: argv strings are placed at
// AC_RAM_END-512, the argv pointer table at AC_RAM_END-632.
const (
	ArgStringsOffset  = 512
	ArgPointersOffset = 632
)

// SyscallResult is the outcome of one SWI dispatch.
type SyscallResult struct {
	Exited   bool
	ExitCode int32
	Unknown  bool
}

// SyscallHandler is the external collaborator SWI delegates to. The core
// only knows the 24-bit SWI comment field; everything else is read from
// or written to the register file and memory by the handler itself.
type SyscallHandler interface {
	Handle(number uint32) SyscallResult
}

// SyscallHelpers packages the register/memory access patterns the
// reference model exposes to syscall implementations: N-byte buffer
// transfers and single-int transfers keyed by register index, and a
// return path via R14 (the reference model's return_from_syscall, not
// the conventional R0 result register).
type SyscallHelpers struct {
	regFile *RegFile
	memory  *Memory
}

// NewSyscallHelpers creates a helper set bound to regFile and memory.
func NewSyscallHelpers(regFile *RegFile, memory *Memory) *SyscallHelpers {
	return &SyscallHelpers{regFile: regFile, memory: memory}
}

// RegFile exposes the underlying register file to syscall handlers that
// need direct register access beyond the base-register helpers above.
func (h *SyscallHelpers) RegFile() *RegFile {
	return h.regFile
}

// GetBuffer reads n bytes from memory at the address held in register
// base.
func (h *SyscallHelpers) GetBuffer(base uint8, n uint32) []byte {
	addr := h.regFile.Read(base)
	buf := make([]byte, n)
	for i := uint32(0); i < n; i++ {
		buf[i] = h.memory.Read8(addr + i)
	}
	return buf
}

// SetBuffer writes buf to memory at the address held in register base.
func (h *SyscallHelpers) SetBuffer(base uint8, buf []byte) {
	addr := h.regFile.Read(base)
	for i, b := range buf {
		h.memory.Write8(addr+uint32(i), b)
	}
}

// GetCString reads a NUL-terminated string from the address held in
// register base.
func (h *SyscallHelpers) GetCString(base uint8) string {
	addr := h.regFile.Read(base)
	var buf []byte
	for {
		b := h.memory.Read8(addr)
		if b == 0 {
			break
		}
		buf = append(buf, b)
		addr++
	}
	return string(buf)
}

// GetInt reads a 32-bit value from the address held in register base.
func (h *SyscallHelpers) GetInt(base uint8) uint32 {
	return h.memory.Read32(h.regFile.Read(base))
}

// SetInt writes a 32-bit value to the address held in register base.
func (h *SyscallHelpers) SetInt(base uint8, value uint32) {
	h.memory.Write32(h.regFile.Read(base), value)
}

// Return delivers a syscall's result via R14, per the reference model's
// return_from_syscall convention.
func (h *SyscallHelpers) Return(value uint32) {
	h.regFile.Write(isa.LR, value)
}

// SetProgArgs bootstraps argc/argv for a freshly loaded program: argv
// strings are packed at ramEnd-ArgStringsOffset, the pointer table at
// ramEnd-ArgPointersOffset; R13 is set to the pointer table base, R0 to
// argc, R1 to the pointer table base.
func (h *SyscallHelpers) SetProgArgs(ramEnd uint32, args []string) {
	stringBase := ramEnd - ArgStringsOffset
	tableBase := ramEnd - ArgPointersOffset

	cursor := stringBase
	for i, arg := range args {
		h.memory.Write32(tableBase+uint32(i)*4, cursor)
		for _, c := range []byte(arg) {
			h.memory.Write8(cursor, c)
			cursor++
		}
		h.memory.Write8(cursor, 0)
		cursor++
	}
	h.memory.Write32(tableBase+uint32(len(args))*4, 0)

	h.regFile.Write(isa.SP, tableBase)
	h.regFile.Write(0, uint32(len(args)))
	h.regFile.Write(1, tableBase)
}

// DefaultSyscallHandler implements the minimal read/write/open/close/exit
// surface the reference model's syscall library provides. Argument
// registers follow R0, R1, R2 in order, matching the helper base-register
// convention above.
type DefaultSyscallHandler struct {
	helpers *SyscallHelpers
	fds     *FDTable
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// NewDefaultSyscallHandler creates a default syscall handler bound to
// regFile and memory, writing to stdout/stderr.
func NewDefaultSyscallHandler(regFile *RegFile, memory *Memory, stdout, stderr io.Writer) *DefaultSyscallHandler {
	return &DefaultSyscallHandler{
		helpers: NewSyscallHelpers(regFile, memory),
		fds:     NewFDTable(),
		stdout:  stdout,
		stderr:  stderr,
	}
}

// SetStdin sets the stdin reader used by the read syscall.
func (h *DefaultSyscallHandler) SetStdin(r io.Reader) {
	h.stdin = r
}

// Handle dispatches one SWI by its 24-bit comment-field number.
func (h *DefaultSyscallHandler) Handle(number uint32) SyscallResult {
	switch number {
	case SyscallExit:
		code := int32(h.helpers.RegFile().Read(0))
		return SyscallResult{Exited: true, ExitCode: code}
	case SyscallRead:
		return h.handleRead()
	case SyscallWrite:
		return h.handleWrite()
	case SyscallOpen:
		return h.handleOpen()
	case SyscallClose:
		return h.handleClose()
	default:
		return SyscallResult{Unknown: true}
	}
}

func (h *DefaultSyscallHandler) handleRead() SyscallResult {
	fd := h.helpers.RegFile().Read(0)
	count := h.helpers.RegFile().Read(2)

	if fd == 0 {
		if h.stdin == nil {
			h.helpers.Return(0)
			return SyscallResult{}
		}
		buf := make([]byte, count)
		n, _ := h.stdin.Read(buf)
		h.helpers.SetBuffer(1, buf[:n])
		h.helpers.Return(uint32(n))
		return SyscallResult{}
	}

	entry, ok := h.fds.Get(fd)
	if !ok || entry.HostFile == nil {
		h.helpers.Return(^uint32(0))
		return SyscallResult{}
	}
	buf := make([]byte, count)
	n, _ := entry.HostFile.Read(buf)
	h.helpers.SetBuffer(1, buf[:n])
	h.helpers.Return(uint32(n))
	return SyscallResult{}
}

func (h *DefaultSyscallHandler) handleWrite() SyscallResult {
	fd := h.helpers.RegFile().Read(0)
	count := h.helpers.RegFile().Read(2)
	buf := h.helpers.GetBuffer(1, count)

	var w io.Writer
	switch fd {
	case 1:
		w = h.stdout
	case 2:
		w = h.stderr
	default:
		if entry, ok := h.fds.Get(fd); ok && entry.HostFile != nil {
			w = entry.HostFile
		}
	}
	if w == nil {
		h.helpers.Return(^uint32(0))
		return SyscallResult{}
	}
	n, _ := w.Write(buf)
	h.helpers.Return(uint32(n))
	return SyscallResult{}
}

// handleOpen opens a host file named by the NUL-terminated path at R0,
// using the Linux-style open flags at R1 and mode at R2, and returns a
// guest file descriptor via R14.
func (h *DefaultSyscallHandler) handleOpen() SyscallResult {
	path := h.helpers.GetCString(0)
	flags := int(h.helpers.RegFile().Read(1))
	mode := os.FileMode(h.helpers.RegFile().Read(2))

	fd, err := h.fds.Open(path, flags, mode)
	if err != nil {
		h.helpers.Return(^uint32(0))
		return SyscallResult{}
	}
	h.helpers.Return(fd)
	return SyscallResult{}
}

func (h *DefaultSyscallHandler) handleClose() SyscallResult {
	fd := h.helpers.RegFile().Read(0)
	if err := h.fds.Close(fd); err != nil {
		h.helpers.Return(^uint32(0))
		return SyscallResult{}
	}
	h.helpers.Return(0)
	return SyscallResult{}
}
