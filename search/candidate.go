package search

import (
	"bytes"
	"crypto/aes"

	"wxkey/datfile"
)

// CandidateLength is the length of a key candidate in memory.
const CandidateLength = 32

func isKeyChar(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

// ScanCandidates calls yield for every run of exactly CandidateLength key characters that
// is preceded by a non-key byte and followed by a non-key byte or the end of data. A run at
// offset 0 has no leading delimiter and is not a candidate. Scanning stops when yield
// returns false; the return value reports whether it stopped early.
func ScanCandidates(data []byte, yield func(candidate []byte) bool) bool {
	start := -1
	for i := 0; i <= len(data); i++ {
		if i < len(data) && isKeyChar(data[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start > 0 && i-start == CandidateLength {
			if !yield(data[start:i]) {
				return true
			}
		}
		start = -1
	}
	return false
}

// VerifyAESKey decrypts block with the first 16 bytes of candidate under AES-128-ECB and
// reports whether the plaintext starts with a JPEG or PNG signature.
func VerifyAESKey(block, candidate []byte) bool {
	if len(candidate) < aes.BlockSize || len(block) < aes.BlockSize {
		return false
	}
	c, err := aes.NewCipher(candidate[:aes.BlockSize])
	if err != nil {
		return false
	}
	plain := make([]byte, aes.BlockSize)
	c.Decrypt(plain, block[:aes.BlockSize])
	return bytes.HasPrefix(plain, datfile.JPEGMagic) || bytes.HasPrefix(plain, datfile.PNGMagic)
}
