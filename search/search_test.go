package search

import (
	"context"
	"crypto/aes"
	"errors"
	"testing"

	"wxkey/keyerr"
	"wxkey/process"
	"wxkey/process/memory_map"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdefghijklmnopqrstuv"

var errReadFailed = errors.New("ReadProcessMemory: partial copy")

type fakeProcess struct {
	pid     process.ProcessID
	regions []memory_map.MemoryMapItem
	data    map[uint64][]byte
	reads   []uint64
	closed  int
}

var _ process.Process = (*fakeProcess)(nil)

func (f *fakeProcess) Close() error           { f.closed++; return nil }
func (f *fakeProcess) UpdateMemoryMap() error { return nil }

func (f *fakeProcess) GetMemoryMap() ([]memory_map.MemoryMapItem, error) {
	return append([]memory_map.MemoryMapItem(nil), f.regions...), nil
}

func (f *fakeProcess) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	f.reads = append(f.reads, uint64(addr))
	d, ok := f.data[uint64(addr)]
	if !ok {
		return nil, errReadFailed
	}
	return d, nil
}

func (f *fakeProcess) opener() process.Opener {
	return func(pid process.ProcessID) (process.Process, error) {
		f.pid = pid
		return f, nil
	}
}

func private(addr, size uint64) memory_map.MemoryMapItem {
	return memory_map.MemoryMapItem{
		Address: addr,
		Size:    size,
		State:   memory_map.MEM_COMMIT,
		Type:    memory_map.MEM_PRIVATE,
		Protect: 0x04,
	}
}

func encryptBlock(t *testing.T, key string, plain []byte) []byte {
	t.Helper()
	c, err := aes.NewCipher([]byte(key[:16]))
	require.NoError(t, err)
	in := make([]byte, aes.BlockSize)
	copy(in, plain)
	out := make([]byte, aes.BlockSize)
	c.Encrypt(out, in)
	return out
}

func jpegBlock(t *testing.T) []byte {
	return encryptBlock(t, testKey, []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'})
}

func embed(key string) []byte {
	return []byte("\x00\x01junk:" + key + "\x00tail")
}

func TestScanCandidatesDelimiters(t *testing.T) {
	k32 := testKey
	data := []byte(
		k32 + "|" + // offset 0: no leading delimiter
			"A" + k32 + "B" + // accepted
			"-" + k32 + "z" + // 33 chars: rejected
			"." + k32[:31] + "." + // 31 chars: rejected
			"#" + k32) // end of buffer is a delimiter

	var got []string
	stopped := ScanCandidates(data, func(c []byte) bool {
		got = append(got, string(c))
		return true
	})
	assert.False(t, stopped)
	if diff := cmp.Diff([]string{k32, k32}, got); diff != "" {
		t.Errorf("candidates (-want +got):\n%s", diff)
	}
}

func TestScanCandidatesStopsEarly(t *testing.T) {
	data := []byte("." + testKey + "." + testKey + ".")
	n := 0
	stopped := ScanCandidates(data, func([]byte) bool { n++; return false })
	assert.True(t, stopped)
	assert.Equal(t, 1, n)
}

func TestVerifyAESKey(t *testing.T) {
	block := jpegBlock(t)
	assert.True(t, VerifyAESKey(block, []byte(testKey)))
	assert.False(t, VerifyAESKey(block, []byte("zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz")))
	assert.False(t, VerifyAESKey(block, []byte("short")))

	png := encryptBlock(t, testKey, []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A})
	assert.True(t, VerifyAESKey(png, []byte(testKey)))
}

func TestFindAESKeyFindsVerifiedCandidate(t *testing.T) {
	decoy := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	fp := &fakeProcess{
		regions: []memory_map.MemoryMapItem{
			private(0x1000, 0x1000),
			{Address: 0x2000, Size: 0x1000, State: memory_map.MEM_COMMIT, Type: memory_map.MEM_IMAGE, Protect: 0x02},
			private(0x3000, 0x1000),
			private(0x4000, 0x1000),
		},
		data: map[uint64][]byte{
			0x1000: embed(decoy),
			0x2000: embed(testKey),
			0x3000: embed(testKey),
			0x4000: embed(testKey),
		},
	}

	key, stats, err := FindAESKey(context.Background(), fp.opener(), 42, jpegBlock(t))
	require.NoError(t, err)
	assert.Equal(t, testKey[:16], key)
	assert.Len(t, key, 16)
	assert.Equal(t, []uint64{0x1000, 0x3000}, fp.reads, "image regions are not scanned and the scan stops at the first hit")
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Candidates)
	assert.Equal(t, 1, fp.closed)
}

func TestFindAESKeySkipsOversizedRegions(t *testing.T) {
	fp := &fakeProcess{
		regions: []memory_map.MemoryMapItem{
			private(0x1000, 0x1000),
			private(0x10000, 0x100000),
			private(0x200000, 0x1000),
		},
		data: map[uint64][]byte{
			0x1000:   embed("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"),
			0x10000:  embed(testKey),
			0x200000: embed("cccccccccccccccccccccccccccccccc"),
		},
	}

	type report struct{ scanned, total int }
	var reports []report
	key, stats, err := FindAESKey(context.Background(), fp.opener(), 7, jpegBlock(t),
		WithMaxRegionSize(0x10000),
		WithProgressEvery(1),
		WithProgress(func(scanned, total int) { reports = append(reports, report{scanned, total}) }),
	)
	require.NoError(t, err)
	assert.Empty(t, key)
	assert.Equal(t, []uint64{0x1000, 0x200000}, fp.reads, "oversized region is never read")
	assert.Equal(t, []report{{1, 3}, {2, 3}}, reports)
	assert.Equal(t, 2, stats.Scanned)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, fp.closed)
}

func TestFindAESKeyFinalProgressReport(t *testing.T) {
	fp := &fakeProcess{
		regions: []memory_map.MemoryMapItem{private(0x1000, 0x10), private(0x2000, 0x10), private(0x3000, 0x10)},
		data:    map[uint64][]byte{0x1000: {1}, 0x3000: {2}},
	}

	var reports [][2]int
	_, stats, err := FindAESKey(context.Background(), fp.opener(), 1, jpegBlock(t),
		WithProgress(func(s, tot int) { reports = append(reports, [2]int{s, tot}) }))
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{2, 3}}, reports)
	assert.Equal(t, 1, stats.Unreadable)
}

func TestFindAESKeyOpenFailure(t *testing.T) {
	open := func(pid process.ProcessID) (process.Process, error) {
		return nil, process.ErrProcessNotOpen
	}
	key, _, err := FindAESKey(context.Background(), open, 1, make([]byte, 16))
	assert.Empty(t, key)
	assert.ErrorIs(t, err, process.ErrProcessNotOpen)
}

func TestFindAESKeyCanceled(t *testing.T) {
	fp := &fakeProcess{
		regions: []memory_map.MemoryMapItem{private(0x1000, 0x10)},
		data:    map[uint64][]byte{0x1000: embed(testKey)},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := FindAESKey(ctx, fp.opener(), 1, jpegBlock(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, keyerr.ErrCanceled))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fp.reads)
	assert.Equal(t, 1, fp.closed)
}
