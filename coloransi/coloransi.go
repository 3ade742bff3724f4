// Package coloransi renders ANSI-colored component names and status lines.
package coloransi

import (
	"fmt"
	"strings"
)

// ColorCode represents ANSI color codes and RGB colors as a 32-bit integer.
// The lower 8 bits hold an ANSI code, the upper 24 bits an RGB value.
type ColorCode uint32

// ANSI color codes
const (
	Black   ColorCode = 30
	Red     ColorCode = 31
	Green   ColorCode = 32
	Yellow  ColorCode = 33
	Blue    ColorCode = 34
	Magenta ColorCode = 35
	Cyan    ColorCode = 36
	White   ColorCode = 37

	// For bright colors, add 60
	BrightBlack ColorCode = Black + 60
	BrightRed   ColorCode = Red + 60
	BrightGreen ColorCode = Green + 60

	BackgroundOffset ColorCode = 10

	// RGB color mask
	RGBMask ColorCode = 0xFFFFFF00
)

// RGB creates a ColorCode from RGB values
func RGB(r, g, b uint8) ColorCode {
	return ColorCode(uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8)
}

var (
	ColorOrange = RGB(255, 140, 0)
	ColorPurple = RGB(128, 0, 128)
	ColorTeal   = RGB(0, 128, 128)
)

// IsRGB checks if the ColorCode represents an RGB color
func (c ColorCode) IsRGB() bool {
	return c&RGBMask != 0
}

func (c ColorCode) rgb() (uint32, uint32, uint32) {
	return uint32(c>>24) & 0xFF, uint32(c>>16) & 0xFF, uint32(c>>8) & 0xFF
}

// OneForeground returns the ANSI escape sequence for the given color code.
func OneForeground(code ColorCode) string {
	if code.IsRGB() {
		r, g, b := code.rgb()
		return fmt.Sprintf("\033[38;2;%d;%d;%dm", r, g, b)
	}
	return fmt.Sprintf("\033[%dm", code)
}

// OneBackground returns the ANSI escape sequence for the given background color code.
func OneBackground(code ColorCode) string {
	if code.IsRGB() {
		r, g, b := code.rgb()
		return fmt.Sprintf("\033[48;2;%d;%d;%dm", r, g, b)
	}
	return fmt.Sprintf("\033[%dm", code+BackgroundOffset)
}

// Reset returns the ANSI escape sequence to reset the text color.
func Reset() string {
	return "\033[0m"
}

func sprint(v []interface{}) string {
	args := make([]string, len(v))
	for i, arg := range v {
		args[i] = fmt.Sprint(arg)
	}
	return strings.Join(args, " ")
}

// Color formats the given text with the specified foreground and background colors.
func Color(fg, bg ColorCode, v ...interface{}) string {
	return OneForeground(fg) + OneBackground(bg) + sprint(v) + Reset()
}

// Foreground formats the given text with the specified foreground color.
func Foreground(fg ColorCode, v ...interface{}) string {
	return OneForeground(fg) + sprint(v) + Reset()
}

// Component names a logger: the same foreground/background pair is used by every
// component so log prefixes line up in a terminal.
func Component(name string) string {
	return Color(ColorTeal, Black, name)
}
