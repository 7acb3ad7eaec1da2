// Package editor provides the text engine behind every codeview pane: line
// storage, cursor, vertical and horizontal scrolling, mouse placement and
// drag-to-select, range replacement, per-line backgrounds, gutter marks and
// highlighted ranges.
package editor

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
)

// GutterMark is a single-cell marker drawn between the line number and text.
type GutterMark struct {
	Glyph string
	Style lipgloss.Style
}

// Range is a half-open span of rune offsets into Value().
type Range struct {
	Start, End int
}

// Highlight paints a range with a style over the syntax colors.
type Highlight struct {
	Range
	Style lipgloss.Style
}

// Highlight layers, painted in this order (later wins).
const (
	LayerDiff   = "diff"
	LayerSearch = "search"
)

var layerOrder = []string{LayerDiff, LayerSearch}

// GutterClickMsg reports a left click on the gutter of the pane with the
// given ID.
type GutterClickMsg struct {
	ID  string
	Row int
}

// Model is a text editor / viewer component.
type Model struct {
	// Public configuration. Set before first Update/View.
	ID              string
	ReadOnly        bool
	ShowLineNumbers bool
	Language        string // Chroma lexer name (empty = no highlighting)
	SyntaxTheme     string // Chroma style name (empty = no highlighting)
	Placeholder     string // shown when empty
	TabWidth        int

	// SuspendSelection disables drag-to-select while another component
	// (the minimap) owns the pointer.
	SuspendSelection bool

	// Styles, set by parent.
	CursorStyle    lipgloss.Style
	LineNumStyle   lipgloss.Style
	PlaceholderSty lipgloss.Style
	SelectionStyle lipgloss.Style
	BgColor        color.Color // fallback bg when no syntax theme

	// LineBg overrides the background of whole buffer rows.
	LineBg map[int]lipgloss.Style

	lines [][]rune
	row   int // cursor row (0-indexed into lines)
	col   int // cursor column (0-indexed into line runes)

	scroll int // first visible row
	xoff   int // first visible expanded column

	width  int
	height int
	focus  bool

	sel      *selection
	extra    []Range // programmatic multi-selection
	dragging bool

	marks      map[int]GutterMark
	highlights map[string][]Highlight

	version int

	gutterWidth int
}

type pos struct{ row, col int }

type selection struct {
	anchor pos
	active pos
}

func (s *selection) ordered() (pos, pos) {
	a, b := s.anchor, s.active
	if a.row > b.row || (a.row == b.row && a.col > b.col) {
		a, b = b, a
	}
	return a, b
}

func (s *selection) empty() bool { return s.anchor == s.active }

// New creates an empty editor.
func New() Model {
	return Model{
		lines:    [][]rune{{}},
		TabWidth: 4,
	}
}

// ---------------------------------------------------------------------------
// Public methods called by parent
// ---------------------------------------------------------------------------

func (m *Model) SetWidth(w int)  { m.width = w; m.clampScrollBounds() }
func (m *Model) SetHeight(h int) { m.height = h; m.clampScrollBounds() }

func (m Model) Width() int  { return m.width }
func (m Model) Height() int { return m.height }

func (m *Model) Focus()        { m.focus = true }
func (m *Model) Blur()         { m.focus = false; m.dragging = false }
func (m Model) Focused() bool  { return m.focus }
func (m Model) Dragging() bool { return m.dragging }
func (m Model) Version() int   { return m.version }
func (m Model) LineCount() int { return len(m.lines) }

func (m Model) Line(i int) string {
	if i < 0 || i >= len(m.lines) {
		return ""
	}
	return string(m.lines[i])
}

// SetValue replaces the whole document and resets cursor and scroll.
func (m *Model) SetValue(s string) {
	m.lines = splitLines(s)
	m.row, m.col = 0, 0
	m.scroll, m.xoff = 0, 0
	m.ClearSelection()
	m.version++
}

func (m Model) Value() string {
	var sb strings.Builder
	for i, line := range m.lines {
		sb.WriteString(string(line))
		if i < len(m.lines)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func splitLines(s string) [][]rune {
	raw := strings.Split(s, "\n")
	lines := make([][]rune, len(raw))
	for i, l := range raw {
		lines[i] = []rune(l)
	}
	return lines
}

// CursorPos returns the 0-indexed cursor row and rune column.
func (m Model) CursorPos() (row, col int) { return m.row, m.col }

// SetCursor moves the cursor and scrolls it into view.
func (m *Model) SetCursor(row, col int) {
	m.row, m.col = row, col
	m.clampCursor()
	m.clampScroll()
}

// CursorOffset returns the cursor as a rune offset into Value().
func (m Model) CursorOffset() int { return m.posToOffset(pos{m.row, m.col}) }

// SetGutterMarkers replaces all gutter marks, keyed by 0-indexed row.
func (m *Model) SetGutterMarkers(marks map[int]GutterMark) { m.marks = marks }

// GutterMarker returns the mark on row, if any.
func (m Model) GutterMarker(row int) (GutterMark, bool) {
	g, ok := m.marks[row]
	return g, ok
}

// SetHighlights replaces one highlight layer. A nil slice clears it.
func (m *Model) SetHighlights(layer string, hs []Highlight) {
	if m.highlights == nil {
		m.highlights = make(map[string][]Highlight)
	}
	if len(hs) == 0 {
		delete(m.highlights, layer)
		return
	}
	m.highlights[layer] = hs
}

// Highlights returns the ranges of one layer.
func (m Model) Highlights(layer string) []Highlight { return m.highlights[layer] }

// ---------------------------------------------------------------------------
// Scroll metrics
// ---------------------------------------------------------------------------

// ScrollTop is the first visible row.
func (m Model) ScrollTop() int { return m.scroll }

// ClientHeight is the number of visible rows.
func (m Model) ClientHeight() int { return m.height }

// ScrollHeight is the total number of rows.
func (m Model) ScrollHeight() int { return len(m.lines) }

// SetScrollTop scrolls without moving the cursor.
func (m *Model) SetScrollTop(n int) {
	m.scroll = n
	m.clampScrollBounds()
}

// XOffset is the first visible expanded column.
func (m Model) XOffset() int { return m.xoff }

// SetXOffset scrolls horizontally without moving the cursor.
func (m *Model) SetXOffset(x int) {
	m.xoff = x
	m.clampXBounds()
}

// MaxLineWidth is the widest line in expanded columns.
func (m Model) MaxLineWidth() int {
	w := 0
	for _, l := range m.lines {
		if n := len([]rune(m.expandTabs(string(l)))); n > w {
			w = n
		}
	}
	return w
}

// ---------------------------------------------------------------------------
// Internal helpers
// ---------------------------------------------------------------------------

func (m *Model) currentLine() []rune { return m.lines[m.row] }

func (m *Model) clampCursor() {
	if m.row < 0 {
		m.row = 0
	}
	if m.row >= len(m.lines) {
		m.row = len(m.lines) - 1
	}
	if m.col < 0 {
		m.col = 0
	}
	if m.col > len(m.currentLine()) {
		m.col = len(m.currentLine())
	}
}

// clampScroll keeps the cursor visible, then bounds the offsets.
func (m *Model) clampScroll() {
	if m.height > 0 {
		if m.row < m.scroll {
			m.scroll = m.row
		}
		if m.row >= m.scroll+m.height {
			m.scroll = m.row - m.height + 1
		}
	}
	if tw := m.textWidth(); m.width > 0 {
		cx := m.bufferColToExpandedCol(m.row, m.col)
		if cx < m.xoff {
			m.xoff = cx
		}
		if cx >= m.xoff+tw {
			m.xoff = cx - tw + 1
		}
	}
	m.clampScrollBounds()
}

func (m *Model) clampScrollBounds() {
	maxScroll := len(m.lines) - m.height
	if maxScroll < 0 {
		maxScroll = 0
	}
	if m.scroll > maxScroll {
		m.scroll = maxScroll
	}
	if m.scroll < 0 {
		m.scroll = 0
	}
	m.clampXBounds()
}

func (m *Model) clampXBounds() {
	maxX := m.MaxLineWidth() - m.textWidth() + 1
	if maxX < 0 {
		maxX = 0
	}
	if m.xoff > maxX {
		m.xoff = maxX
	}
	if m.xoff < 0 {
		m.xoff = 0
	}
}

func (m Model) tabWidth() int {
	if m.TabWidth <= 0 {
		return 4
	}
	return m.TabWidth
}

// expandTabs replaces tabs with spaces (tabWidth-aligned).
func (m Model) expandTabs(s string) string {
	return expandTabs(s, m.tabWidth())
}

func expandTabs(s string, tabWidth int) string {
	if !strings.ContainsRune(s, '\t') {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			spaces := tabWidth - (col % tabWidth)
			b.WriteString(strings.Repeat(" ", spaces))
			col += spaces
		} else {
			b.WriteRune(r)
			col++
		}
	}
	return b.String()
}

// bufferColToExpandedCol converts a rune column to an expanded-tab column.
func (m Model) bufferColToExpandedCol(row, col int) int {
	if row < 0 || row >= len(m.lines) {
		return 0
	}
	line := m.lines[row]
	col = clampMax(col, len(line))
	return len([]rune(m.expandTabs(string(line[:col]))))
}

// expandedColToBufferCol converts an expanded-tab column back to a rune
// column. Columns inside a tab snap to the tab.
func (m Model) expandedColToBufferCol(row, ecol int) int {
	if row < 0 || row >= len(m.lines) {
		return 0
	}
	tw := m.tabWidth()
	x := 0
	for i, r := range m.lines[row] {
		w := 1
		if r == '\t' {
			w = tw - (x % tw)
		}
		if ecol < x+w {
			return i
		}
		x += w
	}
	return len(m.lines[row])
}

// textWidth returns the width available for text content.
func (m *Model) textWidth() int {
	m.gutterWidth = 0
	if m.ShowLineNumbers {
		digits := len(fmt.Sprintf("%d", len(m.lines)))
		if digits < 2 {
			digits = 2
		}
		m.gutterWidth = digits + 2 // digits + space + marker
	}
	w := m.width - m.gutterWidth
	if w < 1 {
		w = 1
	}
	return w
}

// GutterWidth returns the gutter width in cells for the current content.
func (m Model) GutterWidth() int {
	m.textWidth()
	return m.gutterWidth
}

// offsetToPos converts a rune offset into Value() to a row/col.
func (m Model) offsetToPos(off int) pos {
	if off < 0 {
		off = 0
	}
	for i, l := range m.lines {
		if off <= len(l) {
			return pos{row: i, col: off}
		}
		off -= len(l) + 1
	}
	last := len(m.lines) - 1
	return pos{row: last, col: len(m.lines[last])}
}

func (m Model) posToOffset(p pos) int {
	off := 0
	for i := 0; i < p.row && i < len(m.lines); i++ {
		off += len(m.lines[i]) + 1
	}
	return off + p.col
}

func clampMax(v, hi int) int {
	if v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}

// RevealOffset moves the cursor to a rune offset and scrolls it into view.
func (m *Model) RevealOffset(off int) {
	p := m.offsetToPos(off)
	m.row, m.col = p.row, p.col
	m.clampCursor()
	m.clampScroll()
}
