//go:build windows

package memory_map

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// WindowsMemoryMap reads the region map of an opened process handle
type WindowsMemoryMap struct {
	handle windows.Handle
}

// NewWindowsMemoryMap creates a new WindowsMemoryMap for handle
func NewWindowsMemoryMap(handle windows.Handle) *WindowsMemoryMap {
	return &WindowsMemoryMap{handle: handle}
}

// Query wraps VirtualQueryEx
func (w *WindowsMemoryMap) Query(addr uint64) (MemoryMapItem, bool) {
	var mbi windows.MemoryBasicInformation
	err := windows.VirtualQueryEx(w.handle, uintptr(addr), &mbi, unsafe.Sizeof(mbi))
	if err != nil {
		return MemoryMapItem{}, false
	}
	return MemoryMapItem{
		Address: uint64(mbi.BaseAddress),
		Size:    uint64(mbi.RegionSize),
		State:   mbi.State,
		Type:    mbi.Type,
		Protect: mbi.Protect,
	}, true
}

// ReadMemoryMap returns every region of the process's address space
func (w *WindowsMemoryMap) ReadMemoryMap() []MemoryMapItem {
	return Collect(w.Query, nil)
}
