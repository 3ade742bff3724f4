package memory_map

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSpace answers queries from a fixed, sorted list of regions.
func fakeSpace(items ...MemoryMapItem) QueryFunc {
	return func(addr uint64) (MemoryMapItem, bool) {
		for _, it := range items {
			if addr >= it.Address && addr-it.Address < it.Size {
				return it, true
			}
		}
		return MemoryMapItem{}, false
	}
}

func TestWalkVisitsRegionsInOrder(t *testing.T) {
	q := fakeSpace(
		MemoryMapItem{Address: 0, Size: 0x1000, State: MEM_FREE},
		MemoryMapItem{Address: 0x1000, Size: 0x2000, State: MEM_COMMIT, Type: MEM_PRIVATE, Protect: 0x04},
		MemoryMapItem{Address: 0x3000, Size: 0x1000, State: MEM_COMMIT, Type: MEM_IMAGE, Protect: 0x02},
	)

	var seen []uint64
	Walk(q, func(it MemoryMapItem) bool {
		seen = append(seen, it.Address)
		return true
	})
	assert.Equal(t, []uint64{0, 0x1000, 0x3000}, seen)
}

func TestWalkStopsOnOverflow(t *testing.T) {
	calls := 0
	q := func(addr uint64) (MemoryMapItem, bool) {
		calls++
		require.Less(t, calls, 5, "walk did not terminate")
		if addr == 0 {
			return MemoryMapItem{Address: 0, Size: math.MaxUint64 - 0xFFF}, true
		}
		return MemoryMapItem{Address: addr, Size: 0x2000}, true
	}

	var n int
	Walk(q, func(MemoryMapItem) bool { n++; return true })
	assert.Equal(t, 2, n)
}

func TestWalkStopsWhenAddressDoesNotAdvance(t *testing.T) {
	calls := 0
	q := func(addr uint64) (MemoryMapItem, bool) {
		calls++
		require.Less(t, calls, 5, "walk did not terminate")
		// a broken query that keeps reporting the same region
		return MemoryMapItem{Address: 0, Size: 0x1000}, true
	}

	var n int
	Walk(q, func(MemoryMapItem) bool { n++; return true })
	assert.Equal(t, 2, n)
}

func TestCollectScanTargets(t *testing.T) {
	q := fakeSpace(
		MemoryMapItem{Address: 0x0000, Size: 0x1000, State: MEM_COMMIT, Type: MEM_PRIVATE, Protect: 0x04},
		MemoryMapItem{Address: 0x1000, Size: 0x1000, State: MEM_COMMIT, Type: MEM_PRIVATE, Protect: 0x04 | PAGE_GUARD},
		MemoryMapItem{Address: 0x2000, Size: 0x1000, State: MEM_COMMIT, Type: MEM_PRIVATE, Protect: PAGE_NOACCESS},
		MemoryMapItem{Address: 0x3000, Size: 0x1000, State: MEM_RESERVE, Type: MEM_PRIVATE},
		MemoryMapItem{Address: 0x4000, Size: 0x1000, State: MEM_COMMIT, Type: MEM_MAPPED, Protect: 0x02},
		MemoryMapItem{Address: 0x5000, Size: 0x3000, State: MEM_COMMIT, Type: MEM_PRIVATE, Protect: 0x02},
	)

	got := Collect(q, MemoryMapItem.IsScanTarget)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(0x0000), got[0].Address)
	assert.Equal(t, uint64(0x5000), got[1].Address)
}
