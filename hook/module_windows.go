//go:build windows

package hook

import (
	"errors"
	"unsafe"

	"wxkey/native"
	"wxkey/status"

	"go.uber.org/multierr"
)

// DLLModule binds the hook module's exports.
type DLLModule struct {
	lib    *native.Library
	hooked bool
}

// OpenModule checks the exports of the module at path and loads it.
func OpenModule(path string) (*DLLModule, error) {
	if err := native.VerifyExports(path, Exports); err != nil {
		return nil, err
	}
	lib, err := native.Load(path, Exports...)
	if err != nil {
		return nil, err
	}
	return &DLLModule{lib: lib}, nil
}

func (m *DLLModule) InitializeHook(pid uint32) bool {
	ok, err := m.lib.CallBool(ExportInitializeHook, uintptr(pid))
	m.hooked = ok && err == nil
	return m.hooked
}

func (m *DLLModule) PollKeyData() (string, bool) {
	buf := make([]byte, KeyBufferSize)
	ok, err := m.lib.CallBool(ExportPollKeyData, native.Ptr(buf), uintptr(len(buf)))
	if err != nil || !ok {
		return "", false
	}
	return native.DecodeString(buf), true
}

func (m *DLLModule) GetStatusMessage() (string, status.Level, bool) {
	buf := make([]byte, MessageBufferSize)
	var level int32
	ok, err := m.lib.CallBool(ExportGetStatusMessage, native.Ptr(buf), uintptr(len(buf)), uintptr(unsafe.Pointer(&level)))
	if err != nil || !ok {
		return "", status.Info, false
	}
	return native.DecodeString(buf), LevelFromInt(level), true
}

func (m *DLLModule) CleanupHook() bool {
	ok, err := m.lib.CallBool(ExportCleanupHook)
	m.hooked = false
	return ok && err == nil
}

func (m *DLLModule) GetLastErrorMsg() string {
	msg, err := m.lib.CallString(ExportGetLastErrorMsg)
	if err != nil {
		return ""
	}
	return msg
}

// Close cleans up a hook left installed and unloads the module.
func (m *DLLModule) Close() error {
	var err error
	if m.hooked {
		ok, callErr := m.lib.CallBool(ExportCleanupHook)
		if callErr == nil && !ok {
			callErr = errors.New("CleanupHook returned false")
		}
		err = callErr
		m.hooked = false
	}
	return multierr.Append(err, m.lib.Release())
}
