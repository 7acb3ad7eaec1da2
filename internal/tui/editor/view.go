package editor

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if len(m.lines) == 1 && len(m.lines[0]) == 0 && m.Placeholder != "" {
		return m.placeholderView()
	}

	tw := m.textWidth()
	bg := m.bgForRender()
	lineNumSty := m.LineNumStyle.Background(bg.GetBackground())
	themeHex := m.bgHexForHighlight()
	themeBgSeq := ""
	if themeHex != "" {
		themeBgSeq = colorToBgSeq(lipgloss.Color(themeHex))
	}
	starts := m.lineStarts()
	sels := m.Selections()

	var b strings.Builder
	for vi := 0; vi < m.height; vi++ {
		if vi > 0 {
			b.WriteByte('\n')
		}
		row := m.scroll + vi
		if row >= len(m.lines) {
			b.WriteString(bg.Render(strings.Repeat(" ", m.width)))
			continue
		}

		rowBg := bg
		hasLineBg := false
		if lbg, ok := m.LineBg[row]; ok {
			rowBg = lbg
			hasLineBg = true
		}

		// -- Gutter (line numbers + marker column) ---------------------------
		if m.ShowLineNumbers {
			gutSty := lineNumSty
			if hasLineBg {
				gutSty = gutSty.Background(rowBg.GetBackground())
			}
			digits := m.gutterWidth - 2
			b.WriteString(gutSty.Render(fmt.Sprintf("%*d ", digits, row+1)))
			b.WriteString(m.renderGutterMark(row, gutSty))
		}

		// -- Text content ----------------------------------------------------
		full := m.expandTabs(string(m.lines[row]))
		fullRunes := []rune(full)
		from := clampMax(m.xoff, len(fullRunes))
		to := clampMax(m.xoff+tw, len(fullRunes))

		var fullHL string
		if m.hasSyntax() {
			fullHL = cachedHighlight(full, m.Language, m.SyntaxTheme, themeHex)
			if hasLineBg && themeBgSeq != "" {
				fullHL = strings.ReplaceAll(fullHL, themeBgSeq, colorToBgSeq(rowBg.GetBackground()))
			}
		}

		overlay := m.rowOverlay(row, starts[row], from, tw, sels)
		cursorCol := -1
		if m.focus && row == m.row {
			cursorCol = m.bufferColToExpandedCol(m.row, m.col) - m.xoff
		}

		rendered := m.renderRow(fullRunes, fullHL, from, to, overlay, cursorCol, rowBg)
		rw := lipgloss.Width(rendered)
		if rw > tw {
			rendered = ansi.Truncate(rendered, tw, "")
			rw = lipgloss.Width(rendered)
		}
		b.WriteString(rendered)
		if rw < tw {
			b.WriteString(rowBg.Render(strings.Repeat(" ", tw-rw)))
		}
	}
	return b.String()
}

func (m Model) renderGutterMark(row int, gutSty lipgloss.Style) string {
	mark, ok := m.marks[row]
	if !ok {
		return gutSty.Render(" ")
	}
	return mark.Style.Background(gutSty.GetBackground()).Render(mark.Glyph)
}

// lineStarts returns the rune offset of every line start in Value().
func (m Model) lineStarts() []int {
	starts := make([]int, len(m.lines))
	off := 0
	for i, l := range m.lines {
		starts[i] = off
		off += len(l) + 1
	}
	return starts
}

// rowOverlay resolves the style painted over each visible column of row.
// Index i covers expanded column from+i; nil means no overlay.
func (m Model) rowOverlay(row, lineStart, from, tw int, sels []Range) []*lipgloss.Style {
	lineEnd := lineStart + len(m.lines[row])
	var ov []*lipgloss.Style
	paint := func(r Range, sty *lipgloss.Style) {
		s, e := r.Start, r.End
		if e <= lineStart || s > lineEnd || s >= e {
			return
		}
		if s < lineStart {
			s = lineStart
		}
		if e > lineEnd {
			e = lineEnd
		}
		xs := m.bufferColToExpandedCol(row, s-lineStart) - from
		xe := m.bufferColToExpandedCol(row, e-lineStart) - from
		if xs < 0 {
			xs = 0
		}
		if xe > tw {
			xe = tw
		}
		if xs >= xe {
			return
		}
		if ov == nil {
			ov = make([]*lipgloss.Style, tw)
		}
		for i := xs; i < xe; i++ {
			ov[i] = sty
		}
	}
	for _, layer := range layerOrder {
		hs := m.highlights[layer]
		for i := range hs {
			paint(hs[i].Range, &hs[i].Style)
		}
	}
	selSty := m.SelectionStyle
	for _, r := range sels {
		paint(r, &selSty)
	}
	return ov
}

// renderRow renders the visible columns [from, to) of one line. Columns
// without overlay keep their syntax colors via ansi.Cut; overlaid columns are
// re-rendered as plain text in the overlay style.
func (m Model) renderRow(runes []rune, fullHL string, from, to int, ov []*lipgloss.Style, cursorCol int, rowBg lipgloss.Style) string {
	normal := func(a, b int) string {
		if a >= b {
			return ""
		}
		if fullHL != "" {
			return ansi.Cut(fullHL, from+a, from+b)
		}
		return rowBg.Render(string(runes[from+a : from+b]))
	}
	styleAt := func(i int) *lipgloss.Style {
		if ov == nil || i >= len(ov) {
			return nil
		}
		return ov[i]
	}

	n := to - from
	var sb strings.Builder
	for i := 0; i < n; {
		if i == cursorCol {
			sb.WriteString(m.renderCursor(string(runes[from+i])))
			i++
			continue
		}
		sty := styleAt(i)
		j := i + 1
		for j < n && j != cursorCol && styleAt(j) == sty {
			j++
		}
		if sty == nil {
			sb.WriteString(normal(i, j))
		} else {
			sb.WriteString(sty.Render(string(runes[from+i : from+j])))
		}
		i = j
	}
	// Cursor past end of line.
	if cursorCol >= n && cursorCol >= 0 && cursorCol < m.textWidth() {
		sb.WriteString(rowBg.Render(strings.Repeat(" ", cursorCol-n)))
		sb.WriteString(m.renderCursor(" "))
	}
	return sb.String()
}

func (m Model) renderCursor(ch string) string {
	return m.CursorStyle.Reverse(true).Render(ch)
}

// ---------------------------------------------------------------------------
// Placeholder view (shown when empty)
// ---------------------------------------------------------------------------

func (m Model) placeholderView() string {
	bg := m.bgForRender()
	tw := m.textWidth()

	var b strings.Builder
	if m.ShowLineNumbers {
		lineNumSty := m.LineNumStyle.Background(bg.GetBackground())
		digits := m.gutterWidth - 2
		b.WriteString(lineNumSty.Render(fmt.Sprintf("%*d ", digits, 1)))
		b.WriteString(m.renderGutterMark(0, lineNumSty))
	}

	ph := []rune(m.Placeholder)
	var first string
	if m.focus {
		first = m.renderCursor(string(ph[0])) + m.PlaceholderSty.Render(string(ph[1:]))
	} else {
		first = m.PlaceholderSty.Render(m.Placeholder)
	}
	first = ansi.Truncate(first, tw, "")
	b.WriteString(first)
	if pw := lipgloss.Width(first); pw < tw {
		b.WriteString(bg.Render(strings.Repeat(" ", tw-pw)))
	}

	for vi := 1; vi < m.height; vi++ {
		b.WriteByte('\n')
		b.WriteString(bg.Render(strings.Repeat(" ", m.width)))
	}
	return b.String()
}
