package editor

import (
	"container/list"
	"fmt"
	"image/color"
	"sync"

	"charm.land/lipgloss/v2"

	"github.com/xonecas/codeview/internal/highlight"
)

// lineCacheSize bounds the highlighted lines kept across all panes.
const lineCacheSize = 4000

type lineKey struct {
	text, lexer, theme, bg string
}

type lineEntry struct {
	key lineKey
	out string
}

// lineCache is an LRU of highlighted lines shared by every pane, so the
// two sides of a diff reuse each other's unchanged lines.
type lineCache struct {
	mu    sync.Mutex
	max   int
	items map[lineKey]*list.Element
	order *list.List
}

func newLineCache(n int) *lineCache {
	return &lineCache{max: n, items: make(map[lineKey]*list.Element), order: list.New()}
}

func (c *lineCache) get(k lineKey) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[k]
	if !ok {
		return "", false
	}
	c.order.MoveToFront(el)
	return el.Value.(*lineEntry).out, true
}

func (c *lineCache) put(k lineKey, out string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[k]; ok {
		el.Value.(*lineEntry).out = out
		c.order.MoveToFront(el)
		return
	}
	c.items[k] = c.order.PushFront(&lineEntry{key: k, out: out})
	for c.order.Len() > c.max {
		last := c.order.Back()
		c.order.Remove(last)
		delete(c.items, last.Value.(*lineEntry).key)
	}
}

func (c *lineCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

var lineHighlights = newLineCache(lineCacheSize)

func cachedHighlight(text, lexer, theme, bgHex string) string {
	k := lineKey{text, lexer, theme, bgHex}
	if out, ok := lineHighlights.get(k); ok {
		return out
	}
	out := highlight.Highlight(text, lexer, theme, bgHex)
	lineHighlights.put(k, out)
	return out
}

func (m Model) hasSyntax() bool {
	return m.Language != "" && m.Language != "plaintext" && m.SyntaxTheme != ""
}

func (m Model) bgHexForHighlight() string {
	if m.SyntaxTheme == "" {
		return ""
	}
	return highlight.ThemeBg(m.SyntaxTheme)
}

// bgForRender is the theme background, else BgColor, else none.
func (m Model) bgForRender() lipgloss.Style {
	if hex := m.bgHexForHighlight(); hex != "" {
		return lipgloss.NewStyle().Background(lipgloss.Color(hex))
	}
	if m.BgColor != nil {
		return lipgloss.NewStyle().Background(m.BgColor)
	}
	return lipgloss.NewStyle()
}

func colorToBgSeq(c color.Color) string {
	if c == nil {
		return ""
	}
	if _, ok := c.(lipgloss.NoColor); ok {
		return ""
	}
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("\x1b[48;2;%d;%d;%dm", r>>8, g>>8, b>>8)
}
