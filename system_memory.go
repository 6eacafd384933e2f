// system_memory.go - Byte-addressable system memory the transfer engine moves data through

package main

import (
	"encoding/binary"
	"sync"
)

// SystemMemory is a contiguous little-endian memory block. Out-of-range
// writes are dropped and out-of-range reads return zero; nothing on the
// data path is allowed to halt the machine.
//
// SystemMemory is safe for concurrent use.
type SystemMemory struct {
	mu   sync.RWMutex
	data []byte
}

func NewSystemMemory(size int) *SystemMemory {
	return &SystemMemory{data: make([]byte, size)}
}

func (m *SystemMemory) Size() int { return len(m.data) }

func (m *SystemMemory) Read8(addr uint32) uint8 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if int(addr) >= len(m.data) {
		return 0
	}
	return m.data[addr]
}

func (m *SystemMemory) Write8(addr uint32, value uint8) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if int(addr) >= len(m.data) {
		return
	}
	m.data[addr] = value
}

func (m *SystemMemory) Read16(addr uint32) uint16 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if int(addr)+2 > len(m.data) {
		return 0
	}
	return binary.LittleEndian.Uint16(m.data[addr:])
}

func (m *SystemMemory) Write16(addr uint32, value uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if int(addr)+2 > len(m.data) {
		return
	}
	binary.LittleEndian.PutUint16(m.data[addr:], value)
}

func (m *SystemMemory) Read32(addr uint32) uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if int(addr)+4 > len(m.data) {
		return 0
	}
	return binary.LittleEndian.Uint32(m.data[addr:])
}

func (m *SystemMemory) Write32(addr uint32, value uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if int(addr)+4 > len(m.data) {
		return
	}
	binary.LittleEndian.PutUint32(m.data[addr:], value)
}

// LoadBytes copies p into memory at addr, truncating at the top of memory.
func (m *SystemMemory) LoadBytes(addr uint32, p []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if int(addr) >= len(m.data) {
		return
	}
	copy(m.data[addr:], p)
}

// ReadBytes returns a copy of n bytes starting at addr, truncated at the
// top of memory.
func (m *SystemMemory) ReadBytes(addr uint32, n int) []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if int(addr) >= len(m.data) {
		return nil
	}
	end := int(addr) + n
	if end > len(m.data) {
		end = len(m.data)
	}
	out := make([]byte, end-int(addr))
	copy(out, m.data[addr:end])
	return out
}

// Fill sets n bytes starting at addr to value.
func (m *SystemMemory) Fill(addr uint32, n int, value uint8) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < n && int(addr)+i < len(m.data); i++ {
		m.data[int(addr)+i] = value
	}
}
