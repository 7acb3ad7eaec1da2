package editor

import (
	"sort"
	"strings"
)

// ---------------------------------------------------------------------------
// Editing operations
// ---------------------------------------------------------------------------

// InsertText inserts a multi-line string at the cursor as one edit. CRLF
// line breaks are folded to LF. No-op if ReadOnly.
func (m *Model) InsertText(text string) {
	if m.ReadOnly {
		return
	}
	m.DeleteSelection()
	m.splice(m.cursor(), m.cursor(), strings.ReplaceAll(text, "\r", ""))
	m.clampScroll()
}

// ReplaceRanges replaces every range with the matching replacement string in
// one edit. Ranges are rune offsets into Value() and must not overlap. The
// cursor ends after the last replacement. Returns false when nothing changed.
func (m *Model) ReplaceRanges(rs []Range, repl []string) bool {
	if m.ReadOnly || len(rs) == 0 || len(rs) != len(repl) {
		return false
	}
	type edit struct {
		r    Range
		text []rune
	}
	edits := make([]edit, len(rs))
	for i := range rs {
		edits[i] = edit{rs[i], []rune(repl[i])}
	}
	sort.Slice(edits, func(i, j int) bool { return edits[i].r.Start < edits[j].r.Start })

	doc := []rune(m.Value())
	var out []rune
	last := 0
	cursor := -1
	for _, e := range edits {
		s := clampMax(e.r.Start, len(doc))
		t := clampMax(e.r.End, len(doc))
		if s < last || t < s {
			return false
		}
		out = append(out, doc[last:s]...)
		out = append(out, e.text...)
		cursor = len(out)
		last = t
	}
	out = append(out, doc[last:]...)

	if string(out) == string(doc) {
		return false
	}
	m.lines = splitLines(string(out))
	m.ClearSelection()
	p := m.offsetToPos(cursor)
	m.row, m.col = p.row, p.col
	m.clampCursor()
	m.clampScroll()
	m.version++
	return true
}

// splice replaces the text between a and b (a before or at b) with ins
// and leaves the caret after the inserted text. Every keyed edit goes
// through here.
func (m *Model) splice(a, b pos, ins string) {
	if m.ReadOnly {
		return
	}
	mid := splitLines(ins)
	last := len(mid) - 1
	mid[0] = append(append([]rune(nil), m.lines[a.row][:a.col]...), mid[0]...)
	caret := pos{a.row + last, len(mid[last])}
	mid[last] = append(mid[last], m.lines[b.row][b.col:]...)

	out := make([][]rune, 0, len(m.lines)-(b.row-a.row)+last)
	out = append(out, m.lines[:a.row]...)
	out = append(out, mid...)
	out = append(out, m.lines[b.row+1:]...)
	m.lines = out
	m.row, m.col = caret.row, caret.col
	m.version++
}

func (m *Model) cursor() pos { return pos{m.row, m.col} }

func (m *Model) insertRune(r rune) { m.splice(m.cursor(), m.cursor(), string(r)) }

func (m *Model) insertNewline() { m.splice(m.cursor(), m.cursor(), "\n") }

func (m *Model) deleteBack() {
	switch {
	case m.col > 0:
		m.splice(pos{m.row, m.col - 1}, m.cursor(), "")
	case m.row > 0:
		m.splice(pos{m.row - 1, len(m.lines[m.row-1])}, m.cursor(), "")
	}
}

func (m *Model) deleteForward() {
	switch {
	case m.col < len(m.currentLine()):
		m.splice(m.cursor(), pos{m.row, m.col + 1}, "")
	case m.row < len(m.lines)-1:
		m.splice(m.cursor(), pos{m.row + 1, 0}, "")
	}
}

// tabIndent inserts spaces up to the next tab stop.
func (m *Model) tabIndent() {
	if m.ReadOnly {
		return
	}
	tw := m.tabWidth()
	x := m.bufferColToExpandedCol(m.row, m.col)
	m.splice(m.cursor(), m.cursor(), strings.Repeat(" ", tw-x%tw))
}

// ---------------------------------------------------------------------------
// Selection
// ---------------------------------------------------------------------------

func (m *Model) HasSelection() bool {
	return (m.sel != nil && !m.sel.empty()) || len(m.extra) > 0
}

func (m *Model) ClearSelection() {
	m.sel = nil
	m.extra = nil
}

// SelectRanges replaces the selection with a set of ranges (multi-cursor
// style). The cursor moves to the end of the last range.
func (m *Model) SelectRanges(rs []Range) {
	m.sel = nil
	m.extra = append([]Range(nil), rs...)
	if len(rs) == 0 {
		return
	}
	p := m.offsetToPos(rs[len(rs)-1].End)
	m.row, m.col = p.row, p.col
	m.clampCursor()
	m.clampScroll()
}

// Selections returns the selected ranges in document order.
func (m Model) Selections() []Range {
	if m.sel != nil && !m.sel.empty() {
		s, e := m.sel.ordered()
		return []Range{{m.posToOffset(s), m.posToOffset(e)}}
	}
	out := append([]Range(nil), m.extra...)
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// SelectedText joins every selected range with newlines.
func (m Model) SelectedText() string {
	rs := m.Selections()
	if len(rs) == 0 {
		return ""
	}
	doc := []rune(m.Value())
	parts := make([]string, 0, len(rs))
	for _, r := range rs {
		parts = append(parts, string(doc[clampMax(r.Start, len(doc)):clampMax(r.End, len(doc))]))
	}
	return strings.Join(parts, "\n")
}

// DeleteSelection removes the selected text. No-op without a selection or
// when ReadOnly.
func (m *Model) DeleteSelection() {
	if m.ReadOnly || !m.HasSelection() {
		return
	}
	rs := m.Selections()
	m.ReplaceRanges(rs, make([]string, len(rs)))
	m.ClearSelection()
}

func (m *Model) startOrExtendSelection() {
	m.extra = nil
	if m.sel == nil {
		p := pos{m.row, m.col}
		m.sel = &selection{anchor: p, active: p}
	}
}

func (m *Model) updateSelectionActive() {
	if m.sel != nil {
		m.sel.active = pos{m.row, m.col}
	}
}
