package process

import (
	"wxkey/process/memory_map"
)

// Process is the interface that defines operations for interacting with a system process
type Process interface {
	// Close closes the process and releases resources. Closing twice is a no-op.
	Close() error

	// UpdateMemoryMap refreshes the memory map for the process
	UpdateMemoryMap() error

	// GetMemoryMap returns a copy of the current memory map
	GetMemoryMap() ([]memory_map.MemoryMapItem, error)

	// ReadMemory reads memory from the process at the specified address
	ReadMemory(addr ProcessMemoryAddress, size ProcessMemorySize) ([]byte, error)
}

// Opener opens a process by PID. The caller owns the returned Process and must Close it.
type Opener func(pid ProcessID) (Process, error)
