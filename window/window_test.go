package window

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"wxkey/keyerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeEnum struct {
	mu       sync.Mutex
	polls    int
	top      func(poll int) []WindowInfo
	children func(poll int) []WindowInfo
}

func (f *fakeEnum) TopLevel() ([]WindowInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	return f.top(f.polls), nil
}

func (f *fakeEnum) Children(Handle) ([]WindowInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	return f.children(f.polls), nil
}

func TestMatchesTitle(t *testing.T) {
	titles := []string{"微信", "WeChat", "Weixin"}
	assert.True(t, MatchesTitle(" 微信 ", titles))
	assert.True(t, MatchesTitle("wechat", titles))
	assert.True(t, MatchesTitle("WEIXIN", titles))
	assert.False(t, MatchesTitle("微信支付", titles))
	assert.False(t, MatchesTitle("", titles))
}

func children(classes ...string) []WindowInfo {
	out := make([]WindowInfo, len(classes))
	for i, c := range classes {
		out[i] = WindowInfo{Handle: Handle(i + 1), ClassName: c}
	}
	return out
}

func TestHasReadyComponents(t *testing.T) {
	th := DefaultThresholds()
	many := make([]string, 14)

	tests := []struct {
		name     string
		children []WindowInfo
		want     bool
	}{
		{"none", nil, false},
		{"title marker with spaces", []WindowInfo{{Title: "通 讯 录"}}, true},
		{"class marker", children("Qt51514QWindowIcon"), true},
		{"three long classes", children("AAAAAA", "BBBBBB", "CCCCCC"), true},
		{"three children sharing a long class", children("SomeWidget", "SomeWidget", "SomeWidget"), true},
		{"two long classes", children("SomeWidget", "SomeWidget", "abc"), false},
		{"short classes do not count", children("abc", "def", "ghi"), false},
		{"fourteen children", children(many...), true},
		{"one long class and five children", children("AAAAAA", "", "", "", ""), true},
		{"one long class and four children", children("AAAAAA", "", "", ""), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasReadyComponents(tt.children, th))
		})
	}
}

func TestHasReadyComponentsTunable(t *testing.T) {
	th := DefaultThresholds()
	th.MinChildren = 2
	assert.True(t, HasReadyComponents(children("", ""), th))
}

func newTestProbe(e Enumerator) *Probe {
	return NewProbe(e, []string{"微信", "WeChat", "Weixin"}, DefaultThresholds(), time.Millisecond)
}

func TestWaitForMainWindowFindsVisibleMatch(t *testing.T) {
	e := &fakeEnum{top: func(poll int) []WindowInfo {
		if poll < 3 {
			return []WindowInfo{{Title: "Weixin", OwnerPID: 5, Visible: false}}
		}
		return []WindowInfo{
			{Title: "Other", OwnerPID: 4, Visible: true},
			{Handle: 77, Title: "Weixin", OwnerPID: 5, Visible: true},
		}
	}}

	w, err := newTestProbe(e).WaitForMainWindow(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, Handle(77), w.Handle)
	assert.EqualValues(t, 5, w.OwnerPID)
	assert.Equal(t, 3, e.polls)
}

func TestWaitForMainWindowTimesOut(t *testing.T) {
	e := &fakeEnum{top: func(int) []WindowInfo { return nil }}

	_, err := newTestProbe(e).WaitForMainWindow(context.Background(), 20*time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, keyerr.ErrTimeout)
	assert.Greater(t, e.polls, 1)
}

func TestWaitForMainWindowCanceled(t *testing.T) {
	e := &fakeEnum{top: func(int) []WindowInfo { return nil }}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestProbe(e).WaitForMainWindow(ctx, time.Minute)
	assert.ErrorIs(t, err, keyerr.ErrCanceled)
}

func TestWaitForReady(t *testing.T) {
	e := &fakeEnum{children: func(poll int) []WindowInfo {
		classes := make([]string, poll)
		for i := range classes {
			classes[i] = fmt.Sprintf("c%d", i)
		}
		return children(classes...)
	}}

	ready, err := newTestProbe(e).WaitForReady(context.Background(), 1, time.Second)
	require.NoError(t, err)
	assert.True(t, ready)
	assert.Equal(t, 14, e.polls)
}

func TestWaitForReadyTimeoutIsAdvisory(t *testing.T) {
	e := &fakeEnum{children: func(int) []WindowInfo { return nil }}

	ready, err := newTestProbe(e).WaitForReady(context.Background(), 1, 10*time.Millisecond)
	assert.NoError(t, err)
	assert.False(t, ready)
}
