package search

import (
	"charm.land/lipgloss/v2"

	"github.com/xonecas/codeview/internal/tui/editor"
)

// EditorTarget adapts an editor pane to Target. Pane returns nil once the
// pane is destroyed.
type EditorTarget struct {
	Pane   func() *editor.Model
	Match  lipgloss.Style
	Active lipgloss.Style
}

func (t EditorTarget) pane() *editor.Model {
	if t.Pane == nil {
		return nil
	}
	return t.Pane()
}

func (t EditorTarget) IsLive() bool { return t.pane() != nil }

func (t EditorTarget) Value() string {
	if p := t.pane(); p != nil {
		return p.Value()
	}
	return ""
}

func (t EditorTarget) Caret() int {
	if p := t.pane(); p != nil {
		return p.CursorOffset()
	}
	return 0
}

func (t EditorTarget) SetMatches(ms []Match, active int) {
	p := t.pane()
	if p == nil {
		return
	}
	hs := make([]editor.Highlight, len(ms))
	for i, m := range ms {
		sty := t.Match
		if i == active {
			sty = t.Active
		}
		hs[i] = editor.Highlight{Range: editor.Range{Start: m.Start, End: m.End}, Style: sty}
	}
	p.SetHighlights(editor.LayerSearch, hs)
}

func (t EditorTarget) SelectRanges(ms []Match) {
	if p := t.pane(); p != nil {
		p.SelectRanges(toRanges(ms))
	}
}

func (t EditorTarget) ReplaceRanges(ms []Match, repl []string) bool {
	p := t.pane()
	if p == nil {
		return false
	}
	return p.ReplaceRanges(toRanges(ms), repl)
}

func (t EditorTarget) RevealOffset(off int) {
	if p := t.pane(); p != nil {
		p.RevealOffset(off)
	}
}

func toRanges(ms []Match) []editor.Range {
	rs := make([]editor.Range, len(ms))
	for i, m := range ms {
		rs[i] = editor.Range{Start: m.Start, End: m.End}
	}
	return rs
}
