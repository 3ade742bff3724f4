//go:build windows

package process_windows

import (
	"fmt"
	"sync"

	"wxkey/coloransi"
	"wxkey/process"
	"wxkey/process/memory_map"

	"github.com/Moonlight-Companies/gologger/logger"
	"golang.org/x/sys/windows"
)

const PROCESS_ALL_ACCESS = 0x1F0FFF

// WindowsProcess implements the process.Process interface for Windows systems
type WindowsProcess struct {
	pid    process.ProcessID
	handle windows.Handle
	log    *logger.Logger
	mm     []memory_map.MemoryMapItem
	mu     sync.Mutex
}

var _ process.Process = (*WindowsProcess)(nil)

// NewWithPID creates a new WindowsProcess instance and opens it with the given PID
func NewWithPID(pid process.ProcessID) (process.Process, error) {
	p := &WindowsProcess{}
	err := p.open(pid)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// open acquires a full-access handle; the memory map is read lazily by UpdateMemoryMap.
func (p *WindowsProcess) open(pid process.ProcessID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handle != 0 {
		return fmt.Errorf("process %d already open", p.pid)
	}

	handle, err := windows.OpenProcess(PROCESS_ALL_ACCESS, false, uint32(pid))
	if err != nil {
		return fmt.Errorf("OpenProcess(%d): %w: %v", pid, process.ErrProcessNotOpen, err)
	}

	p.pid = pid
	p.handle = handle
	p.log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("process-%d", pid)))
	p.log.Infoln("Process opened")
	return nil
}

func (p *WindowsProcess) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handle == 0 {
		return nil
	}

	err := windows.CloseHandle(p.handle)
	p.handle = 0
	p.pid = 0
	p.mm = nil
	p.log.Infoln("Process closed")
	p.log = logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "process-not-open"))
	if err != nil {
		return fmt.Errorf("CloseHandle failed: %w", err)
	}
	return nil
}

func (p *WindowsProcess) UpdateMemoryMap() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.updateMemoryMapInternal()
}

func (p *WindowsProcess) updateMemoryMapInternal() error {
	if p.handle == 0 {
		return process.ErrProcessNotOpen
	}

	p.mm = memory_map.NewWindowsMemoryMap(p.handle).ReadMemoryMap()
	p.log.Debugln("Memory map updated,", len(p.mm), "regions")
	return nil
}

func (p *WindowsProcess) GetMemoryMap() ([]memory_map.MemoryMapItem, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle == 0 {
		return nil, process.ErrProcessNotOpen
	}
	result := make([]memory_map.MemoryMapItem, len(p.mm))
	copy(result, p.mm)
	return result, nil
}

func (p *WindowsProcess) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}

	p.mu.Lock()
	handle := p.handle
	p.mu.Unlock()

	if handle == 0 {
		return nil, process.ErrProcessNotOpen
	}

	buf := make([]byte, size)
	var bytesRead uintptr
	err := windows.ReadProcessMemory(handle, uintptr(addr), &buf[0], uintptr(size), &bytesRead)
	if err != nil {
		return nil, fmt.Errorf("ReadProcessMemory at %s: %w", addr.ToString(), err)
	}

	if bytesRead != uintptr(size) {
		return nil, fmt.Errorf("%w: expected %d, got %d", process.ErrShortRead, size, bytesRead)
	}

	return buf, nil
}
