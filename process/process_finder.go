package process

// ProcessFinder defines operations for discovering and controlling processes by image name
type ProcessFinder interface {
	// FindAllProcesses returns information about all running processes
	FindAllProcesses() ([]ProcessInfo, error)

	// FindProcessByName finds processes whose image name equals one of names (case-insensitive)
	FindProcessByName(names ...string) ([]ProcessInfo, error)

	// KillProcess terminates the process with the given PID
	KillProcess(pid ProcessID) error
}
