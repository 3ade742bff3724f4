//go:build windows

package native

import (
	"fmt"
	"sync"
	"unsafe"

	"wxkey/coloransi"
	"wxkey/keyerr"

	"github.com/Moonlight-Companies/gologger/logger"
	"golang.org/x/sys/windows"
)

// Library is a loaded module with its entry points bound once at load time.
type Library struct {
	path  string
	dll   *windows.DLL
	procs map[string]*windows.Proc
	mu    sync.Mutex
	log   *logger.Logger
}

// Load loads the module at path and binds every name in exports. Any failure is an
// environment error and leaves nothing loaded.
func Load(path string, exports ...string) (*Library, error) {
	log := logger.NewLogger(coloransi.Component("native"))

	dll, err := windows.LoadDLL(path)
	if err != nil {
		return nil, keyerr.Environment(fmt.Sprintf("无法加载模块 %s", path), err)
	}

	procs := make(map[string]*windows.Proc, len(exports))
	for _, name := range exports {
		proc, err := dll.FindProc(name)
		if err != nil {
			dll.Release()
			return nil, keyerr.Environment(fmt.Sprintf("模块 %s 缺少函数 %s", path, name), err)
		}
		procs[name] = proc
	}

	log.Infoln("loaded", path, "with", len(procs), "entry points")
	return &Library{path: path, dll: dll, procs: procs, log: log}, nil
}

// Call invokes a bound entry point and returns its raw result.
func (l *Library) Call(name string, args ...uintptr) (uintptr, error) {
	l.mu.Lock()
	proc, ok := l.procs[name]
	l.mu.Unlock()
	if !ok {
		return 0, keyerr.Environment(fmt.Sprintf("函数 %s 未绑定", name), nil)
	}
	ret, _, _ := proc.Call(args...)
	return ret, nil
}

// CallBool invokes an entry point returning a C bool.
func (l *Library) CallBool(name string, args ...uintptr) (bool, error) {
	ret, err := l.Call(name, args...)
	return ret&0xFF != 0, err
}

// CallString invokes an entry point returning a const char* and copies the string.
func (l *Library) CallString(name string, args ...uintptr) (string, error) {
	ret, err := l.Call(name, args...)
	if err != nil || ret == 0 {
		return "", err
	}
	return windows.BytePtrToString((*byte)(unsafe.Pointer(ret))), nil
}

// Release unloads the module. Releasing twice is a no-op.
func (l *Library) Release() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.dll == nil {
		return nil
	}
	err := l.dll.Release()
	l.dll = nil
	l.procs = nil
	l.log.Debugln("released", l.path)
	return err
}

// Ptr returns the address of the first byte of buf for passing to a native call.
func Ptr(buf []byte) uintptr {
	if len(buf) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&buf[0]))
}
