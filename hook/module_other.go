//go:build !windows

package hook

import (
	"wxkey/keyerr"
	"wxkey/status"
)

// DLLModule is unavailable off Windows.
type DLLModule struct{}

func OpenModule(path string) (*DLLModule, error) {
	return nil, keyerr.Environment("仅支持 Windows 系统", nil)
}

func (m *DLLModule) InitializeHook(pid uint32) bool                 { return false }
func (m *DLLModule) PollKeyData() (string, bool)                    { return "", false }
func (m *DLLModule) GetStatusMessage() (string, status.Level, bool) { return "", status.Info, false }
func (m *DLLModule) CleanupHook() bool                              { return false }
func (m *DLLModule) GetLastErrorMsg() string                        { return "" }
func (m *DLLModule) Close() error                                   { return nil }
