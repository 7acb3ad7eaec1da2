package codeview

import (
	"sync"
	"time"

	tea "charm.land/bubbletea/v2"
)

// DefaultMouseInterval is the minimum spacing of wheel and motion events.
const DefaultMouseInterval = 15 * time.Millisecond

// MouseThrottle drops wheel and motion events that arrive faster than
// Interval. Wheel and motion are timed separately so scrolling does not
// starve a minimap drag. Clicks and releases always pass.
type MouseThrottle struct {
	Interval time.Duration

	mu     sync.Mutex
	wheel  time.Time
	motion time.Time
	now    func() time.Time
}

// Allow reports whether msg should be delivered.
func (t *MouseThrottle) Allow(msg tea.Msg) bool {
	var last *time.Time
	switch msg.(type) {
	case tea.MouseWheelMsg:
		last = &t.wheel
	case tea.MouseMotionMsg:
		last = &t.motion
	default:
		return true
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	if t.now != nil {
		now = t.now()
	}
	iv := t.Interval
	if iv <= 0 {
		iv = DefaultMouseInterval
	}
	if now.Sub(*last) < iv {
		return false
	}
	*last = now
	return true
}

// Filter is a tea.WithFilter function backed by t.
func (t *MouseThrottle) Filter(_ tea.Model, msg tea.Msg) tea.Msg {
	if !t.Allow(msg) {
		return nil
	}
	return msg
}

var defaultThrottle = &MouseThrottle{}

// MouseEventFilter rate-limits wheel and motion events program-wide.
// Pass to tea.WithFilter.
func MouseEventFilter(m tea.Model, msg tea.Msg) tea.Msg {
	return defaultThrottle.Filter(m, msg)
}
