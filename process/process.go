// Package process provides interfaces and types for reading another process's memory
package process

import "errors"

// The types and interfaces live in:
// - types.go: ProcessID, ProcessInfo
// - memory_types.go: ProcessMemoryAddress, ProcessMemorySize
// - process_interface.go: Process interface, Opener
// - process_finder.go: ProcessFinder interface

var (
	// ErrProcessNotOpen is returned when an operation requiring an open process is attempted
	// before the process has been successfully opened or after it has been closed.
	ErrProcessNotOpen = errors.New("process not open")

	// ErrProcessNotFound is returned when no running process matches the requested image names.
	ErrProcessNotFound = errors.New("process not found")

	ErrShortRead = errors.New("short read")
)
