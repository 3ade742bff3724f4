package memory_map

import (
	"fmt"
)

// Region state, type and protection values as reported by VirtualQueryEx.
const (
	MEM_COMMIT  uint32 = 0x1000
	MEM_RESERVE uint32 = 0x2000
	MEM_FREE    uint32 = 0x10000

	MEM_PRIVATE uint32 = 0x20000
	MEM_MAPPED  uint32 = 0x40000
	MEM_IMAGE   uint32 = 0x1000000

	PAGE_NOACCESS uint32 = 0x01
	PAGE_GUARD    uint32 = 0x100
)

// MemoryMapItem represents a memory region in a process's address space
type MemoryMapItem struct {
	Address uint64 // The starting address of the memory region
	Size    uint64 // The size of the memory region in bytes
	State   uint32 // MEM_COMMIT, MEM_RESERVE or MEM_FREE
	Type    uint32 // MEM_PRIVATE, MEM_MAPPED or MEM_IMAGE
	Protect uint32 // PAGE_* protection flags
}

// String returns a string representation of the memory map item
func (mmItem MemoryMapItem) String() string {
	return fmt.Sprintf("Address: %x, Size: %d, State: %#x, Type: %#x, Protect: %#x",
		mmItem.Address, mmItem.Size, mmItem.State, mmItem.Type, mmItem.Protect)
}

// End is the first address past the region. It wraps to 0 for a region ending at the top of the address space.
func (mmItem MemoryMapItem) End() uint64 {
	return mmItem.Address + mmItem.Size
}

func (mmItem MemoryMapItem) IsCommitted() bool {
	return mmItem.State == MEM_COMMIT
}

func (mmItem MemoryMapItem) IsPrivate() bool {
	return mmItem.Type == MEM_PRIVATE
}

func (mmItem MemoryMapItem) IsGuarded() bool {
	return mmItem.Protect&PAGE_GUARD != 0
}

// IsReadable reports whether the region can be read at all.
// A zero Protect means the caller has no access to the region.
func (mmItem MemoryMapItem) IsReadable() bool {
	return mmItem.Protect != 0 && mmItem.Protect&PAGE_NOACCESS == 0
}

// IsScanTarget reports whether the region is committed, private, non-guarded and accessible.
func (mmItem MemoryMapItem) IsScanTarget() bool {
	return mmItem.IsCommitted() && mmItem.IsPrivate() && !mmItem.IsGuarded() && mmItem.IsReadable()
}

// QueryFunc returns the region that contains addr.
// ok is false once the query fails or the address space is exhausted.
type QueryFunc func(addr uint64) (item MemoryMapItem, ok bool)

// Walk enumerates regions from address 0 upward, one at a time, until the query fails,
// fn returns false, or the next address would overflow or fail to advance.
func Walk(query QueryFunc, fn func(MemoryMapItem) bool) {
	var addr uint64
	for {
		item, ok := query(addr)
		if !ok || item.Size == 0 {
			return
		}

		if !fn(item) {
			return
		}

		next := item.End()
		if next <= addr || next < item.Address {
			return
		}
		addr = next
	}
}

// Collect walks the address space and returns the regions accepted by filter.
// A nil filter accepts every region.
func Collect(query QueryFunc, filter func(MemoryMapItem) bool) []MemoryMapItem {
	var items []MemoryMapItem
	Walk(query, func(item MemoryMapItem) bool {
		if filter == nil || filter(item) {
			items = append(items, item)
		}
		return true
	})
	return items
}
