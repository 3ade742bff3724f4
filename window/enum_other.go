//go:build !windows

package window

import "wxkey/keyerr"

// SystemEnumerator has no windows to list off Windows.
type SystemEnumerator struct{}

func NewSystemEnumerator() Enumerator {
	return SystemEnumerator{}
}

func (SystemEnumerator) TopLevel() ([]WindowInfo, error) {
	return nil, keyerr.Environment("仅支持 Windows 系统", nil)
}

func (SystemEnumerator) Children(parent Handle) ([]WindowInfo, error) {
	return nil, keyerr.Environment("仅支持 Windows 系统", nil)
}
