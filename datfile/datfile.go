// Package datfile reads the obfuscated image cache of an account directory: it finds the
// template files, derives their single-byte XOR key and extracts the AES ciphertext block
// used to verify image key candidates.
package datfile

import "errors"

var (
	// ErrNoAccountDir is returned when no account directory can be found under a root.
	ErrNoAccountDir = errors.New("account directory not found")

	// ErrNoTemplates is returned when a walk finds no template file.
	ErrNoTemplates = errors.New("no template files")

	// ErrNoXorKey is returned when no template file tail matches a known trailer.
	ErrNoXorKey = errors.New("xor key not derivable")

	// ErrNoCiphertext is returned when no template file carries the V4 header.
	ErrNoCiphertext = errors.New("no V4 template file")
)

// V4Magic is the header of a V4 template file.
var V4Magic = []byte{0x07, 0x08, 0x56, 0x32, 0x08, 0x07}

// Ciphertext block bounds inside a V4 template file.
const (
	CiphertextOffset = 0x0F
	CiphertextEnd    = 0x1F
	BlockSize        = CiphertextEnd - CiphertextOffset
)

// Trailer is a known end-of-image signature.
type Trailer struct {
	Name  string
	Bytes []byte
}

var (
	JPEGTrailer = Trailer{Name: "jpeg", Bytes: []byte{0xFF, 0xD9}}
	PNGTrailer  = Trailer{Name: "png", Bytes: []byte{0x49, 0x45, 0x4E, 0x44, 0xAE, 0x42, 0x60, 0x82}}

	// Trailers are tried in this order for every file.
	Trailers = []Trailer{JPEGTrailer, PNGTrailer}
)

// Plaintext magics a verified AES key must produce.
var (
	JPEGMagic = []byte{0xFF, 0xD8, 0xFF}
	PNGMagic  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
)
