// Package hook drives the native key hook module through initialize, poll and cleanup.
package hook

import (
	"os"
	"path/filepath"
	"strings"

	"wxkey/keyerr"
	"wxkey/status"

	"github.com/samber/lo"
)

// Entry points exported by the hook module.
const (
	ExportInitializeHook   = "InitializeHook"
	ExportPollKeyData      = "PollKeyData"
	ExportGetStatusMessage = "GetStatusMessage"
	ExportCleanupHook      = "CleanupHook"
	ExportGetLastErrorMsg  = "GetLastErrorMsg"
)

// Exports lists every entry point a module must provide before it is loaded.
var Exports = []string{
	ExportInitializeHook,
	ExportPollKeyData,
	ExportGetStatusMessage,
	ExportCleanupHook,
	ExportGetLastErrorMsg,
}

// Caller-owned buffer sizes.
const (
	KeyBufferSize     = 128
	MessageBufferSize = 512
)

// KeyLength is the length of a database key.
const KeyLength = 64

// Module is the hook module's call contract with buffers already decoded.
type Module interface {
	InitializeHook(pid uint32) bool
	// PollKeyData returns the decoded key buffer and whether the module reported data.
	PollKeyData() (string, bool)
	// GetStatusMessage returns the next pending message, if any.
	GetStatusMessage() (string, status.Level, bool)
	CleanupHook() bool
	GetLastErrorMsg() string
}

// LevelFromInt maps the module's severity integer.
func LevelFromInt(level int32) status.Level {
	switch level {
	case 1:
		return status.Success
	case 2:
		return status.Error
	default:
		return status.Info
	}
}

// PermissionMessage replaces raw access-denied errors from the module.
const PermissionMessage = "权限不足，无法注入微信进程。请以管理员身份运行本程序，" +
	"暂时关闭可能拦截的安全软件，并确认微信本身没有以管理员身份运行。"

var accessDeniedMarkers = []string{
	"0xc0000022",
	"status_access_denied",
	"access_denied",
	"access denied",
	"access is denied",
	"拒绝访问",
	"权限不足",
}

// IsAccessDenied reports whether a module error message carries an access-denied signature.
func IsAccessDenied(msg string) bool {
	lower := strings.ToLower(msg)
	return lo.SomeBy(accessDeniedMarkers, func(m string) bool { return strings.Contains(lower, m) })
}

// ResolveModulePath returns the first existing candidate among: override, the file named
// by the env variable, resourceDir next to the executable, resourceDir under the working
// directory.
func ResolveModulePath(override, env, name, resourceDir string) (string, error) {
	var candidates []string
	if override != "" {
		candidates = append(candidates, override)
	}
	if env != "" {
		if v := os.Getenv(env); v != "" {
			candidates = append(candidates, v)
		}
	}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), resourceDir, name))
	}
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(wd, resourceDir, name))
	}

	if path, ok := lo.Find(candidates, isFile); ok {
		return path, nil
	}
	return "", keyerr.Environment("未找到 "+name+"，请确认程序资源目录完整或设置 "+env, nil)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
