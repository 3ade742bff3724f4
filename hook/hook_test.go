package hook

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"wxkey/keyerr"
	"wxkey/status"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type statusMsg struct {
	text  string
	level status.Level
}

type fakeModule struct {
	mu       sync.Mutex
	initOK   bool
	lastErr  string
	keys     []string // one per poll; "" means no data
	messages []statusMsg
	polls    int
	cleanups int
	inits    int
}

func (f *fakeModule) InitializeHook(pid uint32) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inits++
	return f.initOK
}

func (f *fakeModule) PollKeyData() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.polls
	f.polls++
	if i >= len(f.keys) || f.keys[i] == "" {
		return "", false
	}
	return f.keys[i], true
}

func (f *fakeModule) GetStatusMessage() (string, status.Level, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		return "", status.Info, false
	}
	m := f.messages[0]
	f.messages = f.messages[1:]
	return m.text, m.level, true
}

func (f *fakeModule) CleanupHook() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleanups++
	return true
}

func (f *fakeModule) GetLastErrorMsg() string { return f.lastErr }

func newTestExtractor(m Module, timeout time.Duration) *Extractor {
	return NewExtractor(m, time.Millisecond, timeout, 5)
}

func TestExtractIgnoresShortKeyThenSucceeds(t *testing.T) {
	key63 := strings.Repeat("a", 63)
	key64 := strings.Repeat("b", 64)
	m := &fakeModule{initOK: true, keys: []string{key63, key64}}

	res, err := newTestExtractor(m, time.Second).Extract(context.Background(), 1234, nil)
	require.NoError(t, err)
	assert.Equal(t, key64, res.Key)
	assert.Equal(t, Succeeded, res.State)
	assert.Equal(t, 2, m.polls, "polling stops at the first valid key")
	assert.Equal(t, 1, m.cleanups)
}

func TestExtractAccessDeniedIsPermissionError(t *testing.T) {
	m := &fakeModule{initOK: false, lastErr: "OpenProcess failed: NTSTATUS 0xC0000022"}

	e := newTestExtractor(m, time.Second)
	res, err := e.Extract(context.Background(), 1, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, keyerr.ErrPermission)
	assert.Equal(t, PermissionMessage, keyerr.Message(err))
	assert.NotContains(t, keyerr.Message(err), "0xC0000022")
	assert.Equal(t, Failed, res.State)
	assert.Equal(t, 0, m.cleanups, "cleanup only follows a successful init")
	assert.Equal(t, Failed, e.State())
}

func TestExtractInitFailureFallsBackToStatusChannel(t *testing.T) {
	m := &fakeModule{messages: []statusMsg{
		{"正在查找目标函数", status.Info},
		{"未找到目标函数特征", status.Error},
	}}

	var forwarded []string
	res, err := newTestExtractor(m, time.Second).Extract(context.Background(), 1, func(msg string, _ status.Level) {
		forwarded = append(forwarded, msg)
	})
	require.Error(t, err)
	assert.Equal(t, keyerr.KindEnvironment, keyerr.KindOf(err))
	assert.Contains(t, keyerr.Message(err), "未找到目标函数特征")
	assert.Equal(t, []string{"正在查找目标函数", "未找到目标函数特征"}, res.Logs)
	assert.Equal(t, res.Logs, forwarded)
}

func TestExtractInitFailureKeepsQueuedStatus(t *testing.T) {
	m := &fakeModule{
		lastErr: "MinHook 初始化失败",
		messages: []statusMsg{
			{"正在定位目标模块", status.Info},
			{"目标模块已加载", status.Info},
		},
	}

	var forwarded []string
	res, err := newTestExtractor(m, time.Second).Extract(context.Background(), 1, func(msg string, _ status.Level) {
		forwarded = append(forwarded, msg)
	})
	require.Error(t, err)
	assert.Equal(t, "初始化 Hook 失败: MinHook 初始化失败", keyerr.Message(err))
	assert.Equal(t, []string{"正在定位目标模块", "目标模块已加载"}, res.Logs)
	assert.Equal(t, res.Logs, forwarded)
}

func TestExtractInitFailureGeneric(t *testing.T) {
	m := &fakeModule{}
	_, err := newTestExtractor(m, time.Second).Extract(context.Background(), 1, nil)
	require.Error(t, err)
	assert.Equal(t, "初始化 Hook 失败", keyerr.Message(err))
}

func TestExtractTimeoutKeepsLogs(t *testing.T) {
	m := &fakeModule{initOK: true, messages: []statusMsg{
		{"m1", status.Info}, {"m2", status.Info}, {"m3", status.Success},
		{"m4", status.Info}, {"m5", status.Info}, {"m6", status.Error},
	}}

	res, err := newTestExtractor(m, 30*time.Millisecond).Extract(context.Background(), 1, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, keyerr.ErrTimeout)
	assert.Equal(t, TimedOut, res.State)
	assert.Contains(t, res.Logs, "m6")
	assert.Equal(t, 1, m.cleanups)
}

func TestExtractDrainsAtMostFivePerPoll(t *testing.T) {
	var msgs []statusMsg
	for i := 0; i < 7; i++ {
		msgs = append(msgs, statusMsg{text: "m", level: status.Info})
	}
	key := strings.Repeat("c", 64)
	m := &fakeModule{initOK: true, keys: []string{"", key}, messages: msgs}

	res, err := newTestExtractor(m, time.Second).Extract(context.Background(), 1, nil)
	require.NoError(t, err)
	// one banner plus the first drain of five before the second poll succeeds
	assert.Len(t, res.Logs, 6)
}

func TestExtractCanceled(t *testing.T) {
	m := &fakeModule{initOK: true}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := newTestExtractor(m, time.Minute).Extract(ctx, 1, nil)
	assert.ErrorIs(t, err, keyerr.ErrCanceled)
	assert.Equal(t, Failed, res.State)
	assert.Equal(t, 1, m.cleanups)
}

func TestExtractRejectsOverlappingAttempt(t *testing.T) {
	e := newTestExtractor(&fakeModule{}, time.Second)
	e.state = Polling

	_, err := e.Extract(context.Background(), 1, nil)
	assert.ErrorIs(t, err, ErrBusy)
}

func TestIsAccessDenied(t *testing.T) {
	assert.True(t, IsAccessDenied("status 0xc0000022"))
	assert.True(t, IsAccessDenied("OpenProcess: Access is denied."))
	assert.True(t, IsAccessDenied("拒绝访问"))
	assert.False(t, IsAccessDenied("pattern not found"))
}

func TestLevelFromInt(t *testing.T) {
	assert.Equal(t, status.Info, LevelFromInt(0))
	assert.Equal(t, status.Success, LevelFromInt(1))
	assert.Equal(t, status.Error, LevelFromInt(2))
	assert.Equal(t, status.Info, LevelFromInt(9))
}

func TestResolveModulePathOrder(t *testing.T) {
	dir := t.TempDir()
	override := filepath.Join(dir, "override.dll")
	fromEnv := filepath.Join(dir, "env.dll")
	require.NoError(t, os.WriteFile(override, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(fromEnv, []byte("x"), 0o644))
	t.Setenv("WXKEY_TEST_HOOK_DLL", fromEnv)

	got, err := ResolveModulePath(override, "WXKEY_TEST_HOOK_DLL", "wx_key.dll", "resources")
	require.NoError(t, err)
	assert.Equal(t, override, got)

	got, err = ResolveModulePath("", "WXKEY_TEST_HOOK_DLL", "wx_key.dll", "resources")
	require.NoError(t, err)
	assert.Equal(t, fromEnv, got)
}

func TestResolveModulePathWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "resources"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "resources", "wx_key.dll"), []byte("x"), 0o644))
	t.Chdir(dir)

	got, err := ResolveModulePath("", "", "wx_key.dll", "resources")
	require.NoError(t, err)
	assert.Equal(t, "wx_key.dll", filepath.Base(got))
	assert.Equal(t, "resources", filepath.Base(filepath.Dir(got)))
}

func TestResolveModulePathMissing(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := ResolveModulePath("", "", "missing_hook.dll", "resources")
	assert.ErrorIs(t, err, keyerr.ErrEnvironment)
}
