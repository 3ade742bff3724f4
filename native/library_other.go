//go:build !windows

package native

import (
	"runtime"

	"wxkey/keyerr"
)

// Library is unavailable off Windows.
type Library struct{}

func Load(path string, exports ...string) (*Library, error) {
	return nil, keyerr.Environment("仅支持 Windows 系统 (当前: "+runtime.GOOS+")", nil)
}

func (l *Library) Call(name string, args ...uintptr) (uintptr, error) {
	return 0, keyerr.Environment("仅支持 Windows 系统", nil)
}

func (l *Library) CallBool(name string, args ...uintptr) (bool, error) {
	return false, keyerr.Environment("仅支持 Windows 系统", nil)
}

func (l *Library) CallString(name string, args ...uintptr) (string, error) {
	return "", keyerr.Environment("仅支持 Windows 系统", nil)
}

func (l *Library) Release() error { return nil }
