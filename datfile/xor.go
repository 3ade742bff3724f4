package datfile

import (
	"bytes"
	"io"
	"os"
)

// maxTrailer is the longest trailer signature.
const maxTrailer = 8

// KeyFromTail returns the XOR key under which tail ends with one of the known trailers.
// Trailers are tried in order; a key counts only if every trailer byte decodes under it.
func KeyFromTail(tail []byte) (byte, bool) {
	for _, t := range Trailers {
		if len(tail) < len(t.Bytes) {
			continue
		}
		window := tail[len(tail)-len(t.Bytes):]
		k := window[0] ^ t.Bytes[0]
		if xorEqual(window, t.Bytes, k) {
			return k, true
		}
	}
	return 0, false
}

func xorEqual(window, sig []byte, k byte) bool {
	for i := range sig {
		if window[i]^k != sig[i] {
			return false
		}
	}
	return true
}

// VoteXorKey returns the key with the most votes. Ties go to the key seen first.
func VoteXorKey(tails [][]byte) (byte, bool) {
	counts := make(map[byte]int)
	var order []byte
	for _, tail := range tails {
		k, ok := KeyFromTail(tail)
		if !ok {
			continue
		}
		if counts[k] == 0 {
			order = append(order, k)
		}
		counts[k]++
	}
	if len(order) == 0 {
		return 0, false
	}

	best := order[0]
	for _, k := range order[1:] {
		if counts[k] > counts[best] {
			best = k
		}
	}
	return best, true
}

// DeriveXorKey reads the tail of every file and votes on the XOR key.
// Unreadable files do not vote.
func DeriveXorKey(files []string) (byte, error) {
	tails := make([][]byte, 0, len(files))
	for _, f := range files {
		tail, err := readTail(f, maxTrailer)
		if err != nil {
			continue
		}
		tails = append(tails, tail)
	}
	k, ok := VoteXorKey(tails)
	if !ok {
		return 0, ErrNoXorKey
	}
	return k, nil
}

func readTail(path string, n int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := info.Size()
	if size < n {
		n = size
	}
	buf := make([]byte, n)
	if _, err := f.ReadAt(buf, size-n); err != nil && err != io.EOF {
		return nil, err
	}
	return buf, nil
}

// ExtractCiphertext returns the 16-byte block of the first V4 template file.
func ExtractCiphertext(files []string) ([]byte, error) {
	for _, path := range files {
		head, err := readHead(path, CiphertextEnd)
		if err != nil || len(head) < CiphertextEnd {
			continue
		}
		if bytes.Equal(head[:len(V4Magic)], V4Magic) {
			block := make([]byte, BlockSize)
			copy(block, head[CiphertextOffset:CiphertextEnd])
			return block, nil
		}
	}
	return nil, ErrNoCiphertext
}

func readHead(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, n)
	got, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return buf[:got], nil
}
