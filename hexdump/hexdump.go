// Package hexdump prints template headers and cipher blocks for the CLI diagnostics.
package hexdump

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"wxkey/coloransi"
)

// Options control a dump.
type Options struct {
	BytesPerLine int
	StartOffset  uint64
	// Highlight marks every occurrence of a byte pattern, e.g. a file magic.
	Highlight []byte
	// Color enables ANSI colors.
	Color bool
}

// DefaultOptions returns the default hexdump options
func DefaultOptions() Options {
	return Options{BytesPerLine: 16, Color: true}
}

// Dump creates a hex dump of the given data with specified options
func Dump(data []byte, options Options) string {
	var buffer bytes.Buffer
	DumpToWriter(&buffer, data, options)
	return buffer.String()
}

// DumpToWriter writes a hex dump of the given data to the specified writer
func DumpToWriter(writer io.Writer, data []byte, options Options) {
	if options.BytesPerLine <= 0 {
		options.BytesPerLine = 16
	}
	marked := highlightMask(data, options.Highlight)

	for offset := 0; offset < len(data); offset += options.BytesPerLine {
		end := min(offset+options.BytesPerLine, len(data))
		formatLine(writer, data[offset:end], marked[offset:end], uint64(offset)+options.StartOffset, options)
	}
}

func highlightMask(data, pattern []byte) []bool {
	mask := make([]bool, len(data))
	if len(pattern) == 0 {
		return mask
	}
	for i := 0; i+len(pattern) <= len(data); i++ {
		if bytes.Equal(data[i:i+len(pattern)], pattern) {
			for j := range pattern {
				mask[i+j] = true
			}
		}
	}
	return mask
}

func (o Options) paint(fg coloransi.ColorCode, marked bool, s string) string {
	switch {
	case !o.Color:
		return s
	case marked:
		return coloransi.Color(coloransi.Yellow, coloransi.Black, s)
	default:
		return coloransi.Foreground(fg, s)
	}
}

// formatLine formats a single line of the hex dump
func formatLine(writer io.Writer, data []byte, marked []bool, offset uint64, options Options) {
	fmt.Fprint(writer, options.paint(coloransi.Cyan, false, fmt.Sprintf("%08x", offset)), "  ")

	half := options.BytesPerLine / 2
	for i := 0; i < options.BytesPerLine; i++ {
		if i == half && half > 0 {
			fmt.Fprint(writer, " ")
		}
		if i >= len(data) {
			fmt.Fprint(writer, "   ")
			continue
		}
		fg := coloransi.Green
		if data[i] == 0 {
			fg = coloransi.BrightBlack
		}
		fmt.Fprint(writer, options.paint(fg, marked[i], fmt.Sprintf("%02x", data[i])), " ")
	}

	var ascii strings.Builder
	for i, b := range data {
		c := "."
		if b >= 0x20 && b < 0x7F {
			c = string(rune(b))
		}
		ascii.WriteString(options.paint(coloransi.White, marked[i], c))
	}
	fmt.Fprintln(writer, "|"+ascii.String()+"|")
}
