// Package recovery runs the two key recovery operations end to end.
package recovery

import (
	"context"
	"sync/atomic"
	"time"

	"wxkey/coloransi"
	"wxkey/config"
	"wxkey/hook"
	"wxkey/keyerr"
	"wxkey/locator"
	"wxkey/process"
	"wxkey/window"

	"github.com/Moonlight-Companies/gologger/logger"
)

// User-facing failure messages.
const (
	MsgInstallNotFound = "未找到微信安装路径，请确认已安装微信，或在配置中设置 target.install_path"
	MsgLaunchFailed    = "启动微信失败"
	MsgWindowNotFound  = "未检测到微信主窗口，请确认微信已正常启动"
	MsgKeyLength       = "获取到的密钥长度异常"
	MsgAccountNotFound = "未找到微信账号数据目录，请手动指定账号目录"
	MsgNoTemplates     = "未找到图片模板文件，请在微信中打开几张图片后重试"
	MsgNoXorKey        = "无法从模板文件计算 XOR 密钥"
	MsgNoCiphertext    = "未找到 V4 格式的图片模板文件，请在微信中打开几张图片后重试"
	MsgProcessNotFound = "微信进程未运行，请先启动并登录微信"
	MsgOpenProcess     = "无法读取微信进程内存，请以管理员身份运行本程序"
	MsgAesKeyNotFound  = "未在内存中找到图片 AES 密钥，请在微信中打开几张图片后重试"
	MsgBusy            = "上一次获取尚未结束，请稍后重试"
)

// Locator finds and restarts the client.
type Locator interface {
	FindInstallPath() (string, locator.Source, error)
	FindPID(names ...string) (process.ProcessID, error)
	KillByImageNames(names ...string) int
	Launch(path string) error
}

// WindowProbe waits for the client's main window.
type WindowProbe interface {
	WaitForMainWindow(ctx context.Context, timeout time.Duration) (window.WindowInfo, error)
	WaitForReady(ctx context.Context, handle window.Handle, timeout time.Duration) (bool, error)
}

// LoadedModule is a hook module the engine must close.
type LoadedModule interface {
	hook.Module
	Close() error
}

// ModuleLoader resolves and loads the hook module.
type ModuleLoader func() (LoadedModule, error)

// Engine holds the collaborators of both operations. At most one operation runs at a time;
// a call made while another is running fails with MsgBusy.
type Engine struct {
	Config      *config.Config
	Locator     Locator
	Probe       WindowProbe
	LoadModule  ModuleLoader
	OpenProcess process.Opener
	// Preflight runs before either operation; an error aborts it.
	Preflight   func() error

	busy  atomic.Bool
	sleep func(ctx context.Context, d time.Duration) error
	log   *logger.Logger
}

func NewEngine(cfg *config.Config, loc Locator, probe WindowProbe, load ModuleLoader, open process.Opener) *Engine {
	return &Engine{
		Config:      cfg,
		Locator:     loc,
		Probe:       probe,
		LoadModule:  load,
		OpenProcess: open,
		sleep:       sleepContext,
		log:         logger.NewLogger(coloransi.Component("recovery")),
	}
}

// acquire marks the engine busy. It returns an Environment error wrapping hook.ErrBusy
// when another operation holds it.
func (e *Engine) acquire() error {
	if !e.busy.CompareAndSwap(false, true) {
		return keyerr.Environment(MsgBusy, hook.ErrBusy)
	}
	return nil
}

func (e *Engine) release() {
	e.busy.Store(false)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return keyerr.Canceled("已取消", ctx.Err())
	case <-t.C:
		return nil
	}
}
