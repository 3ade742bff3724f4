//go:build !windows

package recovery

import (
	"fmt"
	"runtime"

	"wxkey/keyerr"
	"wxkey/process"
)

func openProcess(pid process.ProcessID) (process.Process, error) {
	return nil, fmt.Errorf("%s: %w", runtime.GOOS, process.ErrProcessNotOpen)
}

func platformPreflight() error {
	return keyerr.Environment("仅支持 Windows 系统 (当前: "+runtime.GOOS+")", nil)
}
