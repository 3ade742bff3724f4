//go:build windows

package recovery

import (
	"wxkey/process"
	"wxkey/process_windows"
)

func openProcess(pid process.ProcessID) (process.Process, error) {
	return process_windows.NewWithPID(pid)
}

func platformPreflight() error { return nil }
