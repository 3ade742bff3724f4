package locator

import "errors"

// Root is a registry hive.
type Root int

const (
	CurrentUser Root = iota
	LocalMachine
)

func (r Root) String() string {
	if r == LocalMachine {
		return "HKLM"
	}
	return "HKCU"
}

// Roots are searched in this order.
var Roots = []Root{CurrentUser, LocalMachine}

// ErrKeyNotFound is returned for a missing key or value.
var ErrKeyNotFound = errors.New("registry key not found")

// Registry reads string values and subkey names.
type Registry interface {
	GetString(root Root, path, name string) (string, error)
	SubKeys(root Root, path string) ([]string, error)
}
