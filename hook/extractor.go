package hook

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"wxkey/coloransi"
	"wxkey/keyerr"
	"wxkey/status"

	"github.com/Moonlight-Companies/gologger/logger"
)

// State of an extraction attempt.
type State int

const (
	Idle State = iota
	Initializing
	Polling
	Succeeded
	Failed
	TimedOut
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Polling:
		return "polling"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case TimedOut:
		return "timed-out"
	default:
		return "idle"
	}
}

// ErrBusy is returned when an attempt starts before the previous one cleaned up.
var ErrBusy = errors.New("hook extraction already in progress")

// Result of one attempt. Logs holds every status message drained from the module.
type Result struct {
	Key   string
	State State
	Logs  []string
}

// Extractor owns a Module for the duration of each attempt.
type Extractor struct {
	Module       Module
	PollInterval time.Duration
	Timeout      time.Duration
	DrainPerPoll int

	mu    sync.Mutex
	state State
	log   *logger.Logger
}

// NewExtractor returns an idle Extractor that polls every poll, gives up after timeout and
// forwards at most drain status messages per poll.
func NewExtractor(m Module, poll, timeout time.Duration, drain int) *Extractor {
	return &Extractor{
		Module:       m,
		PollInterval: poll,
		Timeout:      timeout,
		DrainPerPoll: drain,
		log:          logger.NewLogger(coloransi.Component("hook")),
	}
}

// State returns the state of the current or last attempt.
func (e *Extractor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Extractor) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
	e.log.Debugln("state", s)
}

func (e *Extractor) begin() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Initializing || e.state == Polling {
		return false
	}
	e.state = Initializing
	return true
}

// Extract hooks pid and polls for a 64-character key. Status messages from the module are
// forwarded to report and collected in the result. CleanupHook runs exactly once after a
// successful InitializeHook, on every exit path.
func (e *Extractor) Extract(ctx context.Context, pid uint32, report status.Func) (Result, error) {
	if !e.begin() {
		return Result{State: e.State()}, keyerr.Environment("上一次获取尚未结束", ErrBusy)
	}
	logs := status.NewLog(report)

	if !e.Module.InitializeHook(pid) {
		err := e.initError(logs)
		e.setState(Failed)
		return Result{State: Failed, Logs: logs.Lines()}, err
	}

	e.setState(Polling)
	logs.Report("Hook 已安装，请在微信中登录或打开聊天窗口", status.Info)

	// cleanup precedes the terminal state so a new attempt never overlaps it
	key, err := func() (string, error) {
		defer e.cleanup()
		return e.poll(ctx, logs)
	}()
	switch {
	case err == nil:
		e.setState(Succeeded)
		return Result{Key: key, State: Succeeded, Logs: logs.Lines()}, nil
	case keyerr.KindOf(err) == keyerr.KindTimeout:
		e.setState(TimedOut)
		return Result{State: TimedOut, Logs: logs.Lines()}, err
	default:
		e.setState(Failed)
		return Result{State: Failed, Logs: logs.Lines()}, err
	}
}

// initError prefers the module's last error and falls back to the last queued status
// message. Queued messages are drained into logs either way.
func (e *Extractor) initError(logs *status.Log) error {
	last := e.drain(logs)

	if msg := e.Module.GetLastErrorMsg(); msg != "" {
		e.log.Warn("InitializeHook failed: ", msg)
		if IsAccessDenied(msg) {
			return keyerr.Permission(PermissionMessage, errors.New(msg))
		}
		return keyerr.Environment("初始化 Hook 失败: "+msg, nil)
	}

	if last != "" {
		if IsAccessDenied(last) {
			return keyerr.Permission(PermissionMessage, errors.New(last))
		}
		return keyerr.Environment("初始化 Hook 失败: "+last, nil)
	}
	return keyerr.Environment("初始化 Hook 失败", nil)
}

func (e *Extractor) poll(ctx context.Context, logs *status.Log) (string, error) {
	deadline := time.NewTimer(e.Timeout)
	defer deadline.Stop()

	for attempt := 1; ; attempt++ {
		if key, ok := e.Module.PollKeyData(); ok {
			if len(key) == KeyLength {
				e.log.Infoln("key received on attempt", attempt)
				return key, nil
			}
			e.log.Debugln("ignoring key of length", len(key))
		}

		e.drain(logs)

		select {
		case <-ctx.Done():
			return "", keyerr.Canceled("获取密钥已取消", ctx.Err())
		case <-deadline.C:
			return "", keyerr.Timeout(fmt.Sprintf("获取密钥超时 (%s)，请确认已登录微信", e.Timeout), nil)
		case <-time.After(e.PollInterval):
		}
	}
}

// drain forwards up to DrainPerPoll queued status messages and returns the last one.
func (e *Extractor) drain(logs *status.Log) string {
	var last string
	for i := 0; i < e.DrainPerPoll; i++ {
		msg, level, ok := e.Module.GetStatusMessage()
		if !ok {
			break
		}
		logs.Report(msg, level)
		last = msg
	}
	return last
}

func (e *Extractor) cleanup() {
	if !e.Module.CleanupHook() {
		e.log.Debugln("CleanupHook reported failure")
	}
}
