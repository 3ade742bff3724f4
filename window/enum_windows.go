//go:build windows

package window

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"wxkey/process"

	"golang.org/x/sys/windows"
)

var (
	user32                       = windows.NewLazySystemDLL("user32.dll")
	procEnumWindows              = user32.NewProc("EnumWindows")
	procEnumChildWindows         = user32.NewProc("EnumChildWindows")
	procGetWindowTextW           = user32.NewProc("GetWindowTextW")
	procGetClassNameW            = user32.NewProc("GetClassNameW")
	procIsWindowVisible          = user32.NewProc("IsWindowVisible")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
)

// Go callbacks are never freed, so one trampoline serves every enumeration and
// dispatches on lParam to a closure registered for the duration of a single call.
var (
	callbacks  sync.Map // uintptr -> func(Handle) bool
	nextCookie atomic.Uintptr
	trampoline = windows.NewCallback(func(hwnd, lparam uintptr) uintptr {
		fn, ok := callbacks.Load(lparam)
		if !ok {
			return 0
		}
		if fn.(func(Handle) bool)(Handle(hwnd)) {
			return 1
		}
		return 0
	})
)

// register binds fn to a fresh cookie; the returned func unregisters it.
func register(fn func(Handle) bool) (uintptr, func()) {
	cookie := nextCookie.Add(1)
	callbacks.Store(cookie, fn)
	return cookie, func() { callbacks.Delete(cookie) }
}

// SystemEnumerator enumerates windows through user32.
type SystemEnumerator struct{}

func NewSystemEnumerator() Enumerator {
	return SystemEnumerator{}
}

func (SystemEnumerator) TopLevel() ([]WindowInfo, error) {
	var handles []Handle
	cookie, unregister := register(func(h Handle) bool {
		handles = append(handles, h)
		return true
	})
	defer unregister()

	if r, _, err := procEnumWindows.Call(trampoline, cookie); r == 0 && len(handles) == 0 {
		return nil, err
	}
	return describe(handles), nil
}

func (SystemEnumerator) Children(parent Handle) ([]WindowInfo, error) {
	var handles []Handle
	cookie, unregister := register(func(h Handle) bool {
		handles = append(handles, h)
		return true
	})
	defer unregister()

	// EnumChildWindows reports no error for a window without children.
	procEnumChildWindows.Call(uintptr(parent), trampoline, cookie)
	return describe(handles), nil
}

func describe(handles []Handle) []WindowInfo {
	out := make([]WindowInfo, 0, len(handles))
	for _, h := range handles {
		var pid uint32
		procGetWindowThreadProcessId.Call(uintptr(h), uintptr(unsafe.Pointer(&pid)))
		visible, _, _ := procIsWindowVisible.Call(uintptr(h))
		out = append(out, WindowInfo{
			Handle:    h,
			Title:     utf16Call(procGetWindowTextW, h, 512),
			ClassName: utf16Call(procGetClassNameW, h, 256),
			OwnerPID:  process.ProcessID(pid),
			Visible:   visible != 0,
		})
	}
	return out
}

func utf16Call(proc *windows.LazyProc, h Handle, size int) string {
	buf := make([]uint16, size)
	n, _, _ := proc.Call(uintptr(h), uintptr(unsafe.Pointer(&buf[0])), uintptr(size))
	if n == 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:n])
}
