package emu

// Memory is a byte-addressable, little-endian store. Word and halfword
// accessors assume aligned addresses; callers that need the spec's
// misaligned-read rotation (LDR, SWP) perform it themselves using Read32
// on the aligned address and the alignment of the computed address.
type Memory struct {
	bytes map[uint32]byte
}

// NewMemory creates an empty memory. Unwritten addresses read as zero; a
// sparse map keeps a simulated 4GB address space cheap to allocate.
func NewMemory() *Memory {
	return &Memory{bytes: make(map[uint32]byte)}
}

// Read8 returns the byte at addr.
func (m *Memory) Read8(addr uint32) uint8 {
	return m.bytes[addr]
}

// Write8 stores a byte at addr.
func (m *Memory) Write8(addr uint32, value uint8) {
	if value == 0 {
		delete(m.bytes, addr)
		return
	}
	m.bytes[addr] = value
}

// Read16 returns the little-endian halfword at addr.
func (m *Memory) Read16(addr uint32) uint16 {
	return uint16(m.Read8(addr)) | uint16(m.Read8(addr+1))<<8
}

// Write16 stores a little-endian halfword at addr.
func (m *Memory) Write16(addr uint32, value uint16) {
	m.Write8(addr, uint8(value))
	m.Write8(addr+1, uint8(value>>8))
}

// Read32 returns the little-endian word at addr.
func (m *Memory) Read32(addr uint32) uint32 {
	return uint32(m.Read8(addr)) |
		uint32(m.Read8(addr+1))<<8 |
		uint32(m.Read8(addr+2))<<16 |
		uint32(m.Read8(addr+3))<<24
}

// Write32 stores a little-endian word at addr.
func (m *Memory) Write32(addr uint32, value uint32) {
	m.Write8(addr, uint8(value))
	m.Write8(addr+1, uint8(value>>8))
	m.Write8(addr+2, uint8(value>>16))
	m.Write8(addr+3, uint8(value>>24))
}

// LoadProgram copies program into memory starting at entry.
func (m *Memory) LoadProgram(entry uint32, program []byte) {
	for i, b := range program {
		m.Write8(entry+uint32(i), b)
	}
}
