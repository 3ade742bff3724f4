package recovery

import (
	"wxkey/config"
	"wxkey/hook"
	"wxkey/locator"
	"wxkey/process_manage"
	"wxkey/window"
)

// NewDefaultEngine wires the engine to the running system.
func NewDefaultEngine(cfg *config.Config) *Engine {
	loc := locator.New(process_manage.NewProcessManager(), locator.NewSystemRegistry(), cfg.Target.ImageNames)
	loc.Override = cfg.Target.InstallPath

	probe := window.NewProbe(window.NewSystemEnumerator(), cfg.Target.WindowTitles, Thresholds(cfg.Readiness), cfg.Timing.WindowPollInterval)

	load := func() (LoadedModule, error) {
		path, err := hook.ResolveModulePath(cfg.Hook.ModulePath, cfg.Hook.ModuleEnv, cfg.Hook.ModuleName, cfg.Hook.ResourceDir)
		if err != nil {
			return nil, err
		}
		m, err := hook.OpenModule(path)
		if err != nil {
			return nil, err
		}
		return m, nil
	}

	e := NewEngine(cfg, loc, probe, load, openProcess)
	e.Preflight = platformPreflight
	return e
}

// Thresholds converts the readiness section of the configuration.
func Thresholds(rc config.ReadinessConfig) window.Thresholds {
	return window.Thresholds{
		MinChildren:          rc.MinChildren,
		MinClassMatches:      rc.MinClassMatches,
		MinClassLength:       rc.MinClassLength,
		MinChildrenWithClass: rc.MinChildrenWithClass,
		TitleMarkers:         rc.TitleMarkers,
		ClassMarkers:         rc.ClassMarkers,
	}
}
