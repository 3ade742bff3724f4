// Package locator finds the installed client, its running process, and restarts it.
package locator

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"wxkey/coloransi"
	"wxkey/process"

	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/samber/lo"
)

// ErrInstallNotFound is returned when no candidate install path exists.
var ErrInstallNotFound = errors.New("install path not found")

// Source names where an install path came from.
type Source string

const (
	SourceProcess      Source = "process"
	SourceRegistry     Source = "registry"
	SourceUninstall    Source = "uninstall"
	SourceConventional Source = "conventional"
	SourceOverride     Source = "override"
)

var (
	productKeys = []string{
		`Software\Tencent\Weixin`,
		`Software\Tencent\WeChat`,
		`Software\WOW6432Node\Tencent\Weixin`,
		`Software\WOW6432Node\Tencent\WeChat`,
	}
	productValues = []string{"InstallPath", "InstallDir"}

	uninstallKeys = []string{
		`Software\Microsoft\Windows\CurrentVersion\Uninstall`,
		`Software\WOW6432Node\Microsoft\Windows\CurrentVersion\Uninstall`,
	}
	uninstallNames = []string{"Weixin", "WeChat"}

	conventionalDirs = []string{
		`Program Files\Tencent\Weixin`,
		`Program Files (x86)\Tencent\Weixin`,
		`Program Files\Tencent\WeChat`,
		`Program Files (x86)\Tencent\WeChat`,
	}

	DefaultDrives = []string{"C", "D", "E", "F"}
)

// Locator resolves the client executable and controls its processes.
type Locator struct {
	Finder     process.ProcessFinder
	Registry   Registry
	ImageNames []string
	Drives     []string
	// Override is used as the install path when it exists.
	Override string

	exists func(path string) bool
	start  func(path string) error
	log    *logger.Logger
}

func New(finder process.ProcessFinder, reg Registry, imageNames []string) *Locator {
	return &Locator{
		Finder:     finder,
		Registry:   reg,
		ImageNames: imageNames,
		Drives:     DefaultDrives,
		exists:     fileExists,
		start:      startDetached,
		log:        logger.NewLogger(coloransi.Component("locator")),
	}
}

// FindInstallPath returns the first existing executable from, in order: a running instance,
// the product registry keys, exact-match uninstall entries, conventional install paths.
func (l *Locator) FindInstallPath() (string, Source, error) {
	if l.Override != "" && l.exists(l.Override) {
		return l.Override, SourceOverride, nil
	}

	if path, ok := l.fromProcess(); ok {
		return path, SourceProcess, nil
	}
	if path, ok := l.firstExisting(l.registryCandidates()); ok {
		return path, SourceRegistry, nil
	}
	if path, ok := l.firstExisting(l.uninstallCandidates()); ok {
		return path, SourceUninstall, nil
	}
	if path, ok := l.firstExisting(l.conventionalCandidates()); ok {
		return path, SourceConventional, nil
	}
	return "", "", ErrInstallNotFound
}

func (l *Locator) fromProcess() (string, bool) {
	infos, err := l.Finder.FindProcessByName(l.ImageNames...)
	if err != nil {
		l.log.Debugln("process lookup failed:", err)
		return "", false
	}
	for _, info := range infos {
		if info.Exe != "" && l.exists(info.Exe) {
			return info.Exe, true
		}
	}
	return "", false
}

func (l *Locator) registryCandidates() []string {
	var out []string
	for _, root := range Roots {
		for _, key := range productKeys {
			for _, value := range productValues {
				dir, err := l.Registry.GetString(root, key, value)
				if err != nil || dir == "" {
					continue
				}
				out = append(out, l.executablesIn(dir)...)
			}
		}
	}
	return out
}

func (l *Locator) uninstallCandidates() []string {
	var out []string
	for _, root := range Roots {
		for _, base := range uninstallKeys {
			subs, err := l.Registry.SubKeys(root, base)
			if err != nil {
				continue
			}
			for _, sub := range subs {
				if !lo.Contains(uninstallNames, sub) {
					continue
				}
				dir, err := l.Registry.GetString(root, base+`\`+sub, "InstallLocation")
				if err != nil || dir == "" {
					continue
				}
				out = append(out, l.executablesIn(dir)...)
			}
		}
	}
	return out
}

func (l *Locator) conventionalCandidates() []string {
	var out []string
	for _, drive := range l.Drives {
		for _, dir := range conventionalDirs {
			out = append(out, l.executablesIn(drive+`:\`+dir)...)
		}
	}
	return out
}

func (l *Locator) executablesIn(dir string) []string {
	dir = strings.TrimRight(strings.Trim(dir, `"`), `\/`)
	return lo.Map(l.ImageNames, func(name string, _ int) string {
		return dir + `\` + name
	})
}

func (l *Locator) firstExisting(paths []string) (string, bool) {
	return lo.Find(paths, l.exists)
}

// FindPID returns the first running process whose image name is one of names.
func (l *Locator) FindPID(names ...string) (process.ProcessID, error) {
	infos, err := l.Finder.FindProcessByName(names...)
	if err != nil {
		return 0, fmt.Errorf("find %s: %w", strings.Join(names, ","), err)
	}
	if len(infos) == 0 {
		return 0, fmt.Errorf("%s: %w", strings.Join(names, ","), process.ErrProcessNotFound)
	}
	return infos[0].PID, nil
}

// KillByImageNames kills every process with one of names. Failures are logged and ignored.
func (l *Locator) KillByImageNames(names ...string) int {
	infos, err := l.Finder.FindProcessByName(names...)
	if err != nil {
		l.log.Debugln("kill lookup failed:", err)
		return 0
	}
	killed := 0
	for _, info := range infos {
		if err := l.Finder.KillProcess(info.PID); err != nil {
			l.log.Debugln("kill", info.PID, "failed:", err)
			continue
		}
		killed++
	}
	return killed
}

// Launch starts path detached from the current process.
func (l *Locator) Launch(path string) error {
	l.log.Infoln("launching", path)
	if err := l.start(path); err != nil {
		return fmt.Errorf("launch %s: %w", path, err)
	}
	return nil
}

func startDetached(path string) error {
	cmd := exec.Command(path)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
