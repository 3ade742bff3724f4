// Package window finds the client's main window and guesses when its UI has finished loading.
package window

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"wxkey/coloransi"
	"wxkey/keyerr"
	"wxkey/process"

	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/samber/lo"
)

// Handle is an opaque window handle.
type Handle uintptr

// WindowInfo is one enumerated window.
type WindowInfo struct {
	Handle    Handle
	Title     string
	ClassName string
	OwnerPID  process.ProcessID
	Visible   bool
}

// Enumerator lists top-level windows and the children of a window.
type Enumerator interface {
	TopLevel() ([]WindowInfo, error)
	Children(parent Handle) ([]WindowInfo, error)
}

// Thresholds tune HasReadyComponents. They track one UI framework version.
type Thresholds struct {
	MinChildren          int
	MinClassMatches      int
	MinClassLength       int
	MinChildrenWithClass int
	TitleMarkers         []string
	ClassMarkers         []string
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		MinChildren:          14,
		MinClassMatches:      3,
		MinClassLength:       5,
		MinChildrenWithClass: 5,
		TitleMarkers:         []string{"微信", "聊天", "通讯录", "WeChat", "Weixin", "Chats"},
		ClassMarkers:         []string{"Qt5", "Qt6", "QWindow", "Chrome_WidgetWin", "mmui", "WeChatMainWnd"},
	}
}

// MatchesTitle reports whether the trimmed title equals one of titles, ignoring case.
func MatchesTitle(title string, titles []string) bool {
	title = strings.TrimSpace(title)
	return lo.ContainsBy(titles, func(t string) bool { return strings.EqualFold(t, title) })
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func containsAnyFold(s string, markers []string) bool {
	s = strings.ToLower(s)
	return lo.SomeBy(markers, func(m string) bool {
		return m != "" && strings.Contains(s, strings.ToLower(m))
	})
}

// HasReadyComponents scores the children of a main window. Any one signal is enough.
func HasReadyComponents(children []WindowInfo, th Thresholds) bool {
	for _, c := range children {
		if containsAnyFold(stripSpace(c.Title), th.TitleMarkers) {
			return true
		}
		if containsAnyFold(c.ClassName, th.ClassMarkers) {
			return true
		}
	}

	withClass := lo.CountBy(children, func(c WindowInfo) bool {
		return len(c.ClassName) > th.MinClassLength
	})
	if withClass >= th.MinClassMatches {
		return true
	}
	if len(children) >= th.MinChildren {
		return true
	}
	return withClass > 0 && len(children) >= th.MinChildrenWithClass
}

// Probe polls an Enumerator.
type Probe struct {
	Enum         Enumerator
	Titles       []string
	Thresholds   Thresholds
	PollInterval time.Duration

	log *logger.Logger
}

func NewProbe(enum Enumerator, titles []string, th Thresholds, poll time.Duration) *Probe {
	return &Probe{
		Enum:         enum,
		Titles:       titles,
		Thresholds:   th,
		PollInterval: poll,
		log:          logger.NewLogger(coloransi.Component("window")),
	}
}

// FindMainWindow scans the top-level windows once.
func (p *Probe) FindMainWindow() (WindowInfo, bool) {
	windows, err := p.Enum.TopLevel()
	if err != nil {
		p.log.Debugln("enumerate failed:", err)
		return WindowInfo{}, false
	}
	return lo.Find(windows, func(w WindowInfo) bool {
		return w.Visible && w.OwnerPID != 0 && MatchesTitle(w.Title, p.Titles)
	})
}

// WaitForMainWindow polls until a visible window with a product title appears.
func (p *Probe) WaitForMainWindow(ctx context.Context, timeout time.Duration) (WindowInfo, error) {
	var found WindowInfo
	err := p.poll(ctx, timeout, func() bool {
		w, ok := p.FindMainWindow()
		found = w
		return ok
	})
	if err != nil {
		return WindowInfo{}, err
	}
	p.log.Infoln("main window", found.Title, "pid", found.OwnerPID)
	return found, nil
}

// WaitForReady polls the children of handle until HasReadyComponents holds. It returns
// false without error when the timeout passes; readiness is advisory.
func (p *Probe) WaitForReady(ctx context.Context, handle Handle, timeout time.Duration) (bool, error) {
	err := p.poll(ctx, timeout, func() bool {
		children, err := p.Enum.Children(handle)
		if err != nil {
			p.log.Debugln("children of", handle, "failed:", err)
			return false
		}
		return HasReadyComponents(children, p.Thresholds)
	})
	if err == nil {
		return true, nil
	}
	if keyerr.KindOf(err) == keyerr.KindTimeout {
		p.log.Warn("window not ready after", timeout)
		return false, nil
	}
	return false, err
}

func (p *Probe) poll(ctx context.Context, timeout time.Duration, check func() bool) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(p.PollInterval)
	defer ticker.Stop()

	for {
		if check() {
			return nil
		}
		select {
		case <-ctx.Done():
			return keyerr.Canceled("已取消", ctx.Err())
		case <-deadline.C:
			return keyerr.Timeout(fmt.Sprintf("等待微信窗口超时 (%s)", timeout), nil)
		case <-ticker.C:
		}
	}
}
