package emu

import (
	"os"
	"sync"
)

// FileDescriptor is one entry in the syscall layer's open-file table.
type FileDescriptor struct {
	HostFile *os.File
	Path     string
	IsOpen   bool
}

// FDTable manages host file descriptors backing the open/close/read/write
// syscalls beyond the fixed stdin/stdout/stderr streams.
type FDTable struct {
	fds    map[uint32]*FileDescriptor
	nextFD uint32
	mu     sync.Mutex
}

// NewFDTable creates a table with the three standard streams pre-opened.
func NewFDTable() *FDTable {
	t := &FDTable{
		fds:    make(map[uint32]*FileDescriptor),
		nextFD: 3,
	}
	t.fds[0] = &FileDescriptor{Path: "stdin", IsOpen: true}
	t.fds[1] = &FileDescriptor{Path: "stdout", IsOpen: true}
	t.fds[2] = &FileDescriptor{Path: "stderr", IsOpen: true}
	return t
}

// Open opens a host file and allocates a new descriptor for it.
func (t *FDTable) Open(path string, flags int, mode os.FileMode) (uint32, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	hostFile, err := os.OpenFile(path, flags, mode)
	if err != nil {
		return 0, err
	}

	fd := t.nextFD
	t.nextFD++
	t.fds[fd] = &FileDescriptor{HostFile: hostFile, Path: path, IsOpen: true}
	return fd, nil
}

// Close closes fd. Closing a standard stream marks it closed without
// touching any host resource.
func (t *FDTable) Close(fd uint32) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, exists := t.fds[fd]
	if !exists || !entry.IsOpen {
		return os.ErrInvalid
	}
	if fd <= 2 {
		entry.IsOpen = false
		return nil
	}
	if entry.HostFile != nil {
		if err := entry.HostFile.Close(); err != nil {
			return err
		}
	}
	entry.HostFile = nil
	entry.IsOpen = false
	return nil
}

// Get returns the descriptor entry for fd if it is open.
func (t *FDTable) Get(fd uint32) (*FileDescriptor, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, exists := t.fds[fd]
	if !exists || !entry.IsOpen {
		return nil, false
	}
	return entry, true
}
