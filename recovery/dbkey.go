package recovery

import (
	"context"
	"fmt"

	"wxkey/hook"
	"wxkey/keyerr"
	"wxkey/status"
)

// DbKeyResult is the outcome of AutoGetDbKey. Key is set only on success and is always
// 64 characters long.
type DbKeyResult struct {
	Success bool     `json:"success"`
	Key     string   `json:"key,omitempty"`
	Error   string   `json:"error,omitempty"`
	Kind    string   `json:"kind,omitempty"`
	Logs    []string `json:"logs"`
}

func dbFailure(logs *status.Log, err error) DbKeyResult {
	msg := keyerr.Message(err)
	logs.Report(msg, status.Error)
	return DbKeyResult{Error: msg, Kind: keyerr.KindOf(err).String(), Logs: logs.Lines()}
}

// AutoGetDbKey restarts the client, waits for its main window, hooks it and polls for the
// database key.
func (e *Engine) AutoGetDbKey(ctx context.Context, report status.Func) DbKeyResult {
	cfg := e.Config
	logs := status.NewLog(report)

	if err := e.acquire(); err != nil {
		return dbFailure(logs, err)
	}
	defer e.release()

	if e.Preflight != nil {
		if err := e.Preflight(); err != nil {
			return dbFailure(logs, err)
		}
	}

	logs.Report("正在查找微信安装路径...", status.Info)
	path, source, err := e.Locator.FindInstallPath()
	if err != nil {
		return dbFailure(logs, keyerr.Discovery(MsgInstallNotFound, err))
	}
	logs.Report(fmt.Sprintf("找到微信: %s (%s)", path, source), status.Info)

	module, err := e.LoadModule()
	if err != nil {
		return dbFailure(logs, err)
	}
	defer func() {
		if err := module.Close(); err != nil {
			e.log.Debugln("module close:", err)
		}
	}()

	logs.Report("正在关闭已运行的微信...", status.Info)
	if n := e.Locator.KillByImageNames(cfg.Target.ImageNames...); n > 0 {
		e.log.Infoln("killed", n, "processes")
	}
	if err := e.sleep(ctx, cfg.Timing.KillSettleDelay); err != nil {
		return dbFailure(logs, err)
	}

	logs.Report("正在启动微信...", status.Info)
	if err := e.Locator.Launch(path); err != nil {
		return dbFailure(logs, keyerr.Discovery(MsgLaunchFailed, err))
	}

	logs.Report("等待微信主窗口...", status.Info)
	win, err := e.Probe.WaitForMainWindow(ctx, cfg.Timing.WindowTimeout)
	if err != nil {
		if keyerr.KindOf(err) == keyerr.KindTimeout {
			err = keyerr.Timeout(MsgWindowNotFound, err)
		}
		return dbFailure(logs, err)
	}
	logs.Report(fmt.Sprintf("检测到微信窗口 (PID: %d)", win.OwnerPID), status.Info)

	ready, err := e.Probe.WaitForReady(ctx, win.Handle, cfg.Timing.ReadyTimeout)
	if err != nil {
		return dbFailure(logs, err)
	}
	if !ready {
		logs.Report("微信界面可能尚未加载完成，继续尝试", status.Info)
	}
	if err := e.sleep(ctx, cfg.Timing.PostReadyDelay); err != nil {
		return dbFailure(logs, err)
	}

	extractor := hook.NewExtractor(module, cfg.Timing.HookPollInterval, cfg.Timing.HookTimeout, cfg.Timing.StatusDrainPerPoll)
	res, err := extractor.Extract(ctx, uint32(win.OwnerPID), logs.Report)
	if err != nil {
		return dbFailure(logs, err)
	}
	if len(res.Key) != hook.KeyLength {
		return dbFailure(logs, keyerr.Environment(MsgKeyLength, nil))
	}

	logs.Report("数据库密钥获取成功", status.Success)
	return DbKeyResult{Success: true, Key: res.Key, Logs: logs.Lines()}
}
