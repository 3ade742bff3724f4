// Package process_manage lists, finds and kills processes through gopsutil.
package process_manage

import (
	"fmt"
	"strings"

	"wxkey/coloransi"
	"wxkey/process"

	"github.com/Moonlight-Companies/gologger/logger"
	gops "github.com/shirou/gopsutil/v3/process"
	"github.com/samber/lo"
)

// ProcessManager handles process operations
type ProcessManager struct {
	log *logger.Logger
}

var _ process.ProcessFinder = (*ProcessManager)(nil)

// NewProcessManager creates a new ProcessManager instance
func NewProcessManager() *ProcessManager {
	return &ProcessManager{
		log: logger.NewLogger(coloransi.Component("process-manager")),
	}
}

// FindAllProcesses returns a list of all running processes. Processes that exit while
// being listed are skipped. Exe is empty when the image path cannot be queried.
func (pm *ProcessManager) FindAllProcesses() ([]process.ProcessInfo, error) {
	procs, err := gops.Processes()
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	infos := make([]process.ProcessInfo, 0, len(procs))
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			continue
		}
		exe, _ := p.Exe()
		infos = append(infos, process.ProcessInfo{
			PID:  process.ProcessID(p.Pid),
			Name: name,
			Exe:  exe,
		})
	}
	return infos, nil
}

// FindProcessByName finds processes whose image name equals one of names, ignoring case
func (pm *ProcessManager) FindProcessByName(names ...string) ([]process.ProcessInfo, error) {
	all, err := pm.FindAllProcesses()
	if err != nil {
		return nil, err
	}
	return MatchNames(all, names...), nil
}

// KillProcess terminates a process
func (pm *ProcessManager) KillProcess(pid process.ProcessID) error {
	p, err := gops.NewProcess(int32(pid))
	if err != nil {
		return fmt.Errorf("failed to find process %d: %w", pid, err)
	}
	if err := p.Kill(); err != nil {
		return fmt.Errorf("failed to kill process %d: %w", pid, err)
	}
	pm.log.Infoln("killed", pid)
	return nil
}

// MatchNames keeps the processes whose image name equals one of names, ignoring case.
func MatchNames(infos []process.ProcessInfo, names ...string) []process.ProcessInfo {
	return lo.Filter(infos, func(info process.ProcessInfo, _ int) bool {
		return lo.ContainsBy(names, func(n string) bool { return strings.EqualFold(n, info.Name) })
	})
}
