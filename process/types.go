package process

import "fmt"

// ProcessID represents a unique identifier for a process
type ProcessID uint32

func (pid ProcessID) String() string {
	return fmt.Sprintf("%d", uint32(pid))
}

// ProcessInfo contains basic information about a process
type ProcessInfo struct {
	PID  ProcessID // Process ID
	Name string    // Image name, e.g. Weixin.exe
	Exe  string    // Full path to the executable, empty when it could not be queried
}
