package editor

import (
	"fmt"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

func newTestEditor(content string, w, h int) Model {
	ed := New()
	ed.ShowLineNumbers = true
	ed.BgColor = lipgloss.Color("#000000")
	ed.LineNumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#1c1c1c"))
	ed.SetWidth(w)
	ed.SetHeight(h)
	ed.SetValue(content)
	return ed
}

func TestLineWidthWithTabs(t *testing.T) {
	ed := newTestEditor("", 50, 6)
	ed.ReadOnly = true
	ed.Language = "go"
	ed.SyntaxTheme = "github-dark"

	content := "\t\tcreds, err := config.LoadCredentials()\n\t\tfmt.Printf(\"Error loading credentials: %v\\n\", err)\n\t\t\tapiKey := creds.GetAPIKey(providerCfg.APIKeyName)\n\t\t\tfactory = provider.NewOpenCodeFactory(name, providerCfg.Model, apiKey)"
	ed.SetValue(content)
	ed.Focus()

	for i, line := range strings.Split(ed.View(), "\n") {
		if w := lipgloss.Width(line); w != 50 {
			t.Errorf("line %d: width=%d (want 50)", i, w)
		}
	}
}

func TestLineWidthWithHighlights(t *testing.T) {
	ed := newTestEditor("alpha beta\ngamma delta epsilon zeta eta theta", 20, 3)
	ed.Focus()
	ed.SetHighlights(LayerSearch, []Highlight{
		{Range: Range{6, 10}, Style: lipgloss.NewStyle().Background(lipgloss.Color("#444400"))},
		{Range: Range{11, 16}, Style: lipgloss.NewStyle().Background(lipgloss.Color("#444400"))},
	})
	ed.SelectRanges([]Range{{0, 5}})
	ed.SetXOffset(3)

	for i, line := range strings.Split(ed.View(), "\n") {
		if w := lipgloss.Width(line); w != 20 {
			t.Errorf("line %d: width=%d (want 20)", i, w)
		}
	}
}

func TestExpandTabs(t *testing.T) {
	cases := []struct {
		in   string
		tab  int
		want int
	}{
		{"\thello", 4, 4 + 5},
		{"\t\thello", 4, 4 + 4 + 5},
		{"ab\tc", 4, 2 + 2 + 1},
		{"ab\tc", 2, 2 + 2 + 1},
		{"a\tc", 2, 1 + 1 + 1},
		{"no tabs", 4, 7},
	}
	for _, tc := range cases {
		got := expandTabs(tc.in, tc.tab)
		if w := len([]rune(got)); w != tc.want {
			t.Errorf("expandTabs(%q, %d) width=%d, want %d (got %q)", tc.in, tc.tab, w, tc.want, got)
		}
	}
}

func TestExpandedColRoundTrip(t *testing.T) {
	ed := newTestEditor("a\tbc", 40, 3)
	ed.TabWidth = 4
	tests := []struct{ bufCol, expCol int }{{0, 0}, {1, 1}, {2, 4}, {3, 5}, {4, 6}}
	for _, tt := range tests {
		if got := ed.bufferColToExpandedCol(0, tt.bufCol); got != tt.expCol {
			t.Errorf("bufferColToExpandedCol(%d) = %d, want %d", tt.bufCol, got, tt.expCol)
		}
		if got := ed.expandedColToBufferCol(0, tt.expCol); got != tt.bufCol {
			t.Errorf("expandedColToBufferCol(%d) = %d, want %d", tt.expCol, got, tt.bufCol)
		}
	}
	// Columns inside a tab snap to the tab rune.
	if got := ed.expandedColToBufferCol(0, 2); got != 1 {
		t.Errorf("inside tab: got %d, want 1", got)
	}
}

func TestOffsetPosConversion(t *testing.T) {
	ed := newTestEditor("ab\ncdé\n\nf", 40, 5)
	tests := []struct {
		off int
		p   pos
	}{
		{0, pos{0, 0}},
		{2, pos{0, 2}},
		{3, pos{1, 0}},
		{6, pos{1, 3}},
		{7, pos{2, 0}},
		{8, pos{3, 0}},
		{99, pos{3, 1}},
	}
	for _, tt := range tests {
		if got := ed.offsetToPos(tt.off); got != tt.p {
			t.Errorf("offsetToPos(%d) = %+v, want %+v", tt.off, got, tt.p)
		}
		if tt.off <= 8 {
			if got := ed.posToOffset(tt.p); got != tt.off {
				t.Errorf("posToOffset(%+v) = %d, want %d", tt.p, got, tt.off)
			}
		}
	}
}

func TestReplaceRanges(t *testing.T) {
	ed := newTestEditor("foo bar foo\nfoo", 40, 5)
	v := ed.Version()
	ok := ed.ReplaceRanges([]Range{{12, 15}, {0, 3}, {8, 11}}, []string{"qux", "x", "yy"})
	if !ok {
		t.Fatal("ReplaceRanges returned false")
	}
	if got := ed.Value(); got != "x bar yy\nqux" {
		t.Errorf("Value = %q", got)
	}
	if ed.Version() != v+1 {
		t.Errorf("version bumped %d times, want once", ed.Version()-v)
	}
	if row, col := ed.CursorPos(); row != 1 || col != 3 {
		t.Errorf("cursor = %d:%d, want 1:3", row, col)
	}
}

func TestReplaceRangesRejects(t *testing.T) {
	ed := newTestEditor("abcdef", 40, 3)
	if ed.ReplaceRanges([]Range{{0, 3}, {2, 4}}, []string{"", ""}) {
		t.Error("overlapping ranges should be rejected")
	}
	if ed.ReplaceRanges([]Range{{0, 1}}, nil) {
		t.Error("mismatched replacements should be rejected")
	}
	if ed.ReplaceRanges([]Range{{0, 1}}, []string{"a"}) {
		t.Error("identity edit should report no change")
	}
	ed.ReadOnly = true
	if ed.ReplaceRanges([]Range{{0, 1}}, []string{"z"}) {
		t.Error("read-only editor accepted an edit")
	}
	if ed.Value() != "abcdef" {
		t.Errorf("Value = %q", ed.Value())
	}
}

func TestTypingBumpsVersion(t *testing.T) {
	ed := newTestEditor("", 40, 3)
	ed.Focus()
	v := ed.Version()
	for _, ch := range "hi" {
		ed, _ = ed.Update(tea.KeyPressMsg{Code: ch, Text: string(ch)})
	}
	ed, _ = ed.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if ed.Value() != "hi\n" {
		t.Errorf("Value = %q", ed.Value())
	}
	if ed.Version() <= v {
		t.Error("version not bumped")
	}

	ed.ReadOnly = true
	v = ed.Version()
	ed, _ = ed.Update(tea.KeyPressMsg{Code: 'x', Text: "x"})
	if ed.Version() != v || ed.Value() != "hi\n" {
		t.Error("read-only editor was modified")
	}
}

func TestUnfocusedIgnoresKeys(t *testing.T) {
	ed := newTestEditor("abc", 40, 3)
	ed, _ = ed.Update(tea.KeyPressMsg{Code: 'x', Text: "x"})
	if ed.Value() != "abc" {
		t.Errorf("Value = %q", ed.Value())
	}
}

func TestMouseDragSelects(t *testing.T) {
	ed := newTestEditor("hello world", 40, 3)
	gw := ed.GutterWidth()
	ed, _ = ed.Update(tea.MouseClickMsg{X: gw, Y: 0, Button: tea.MouseLeft})
	ed, _ = ed.Update(tea.MouseMotionMsg{X: gw + 5, Y: 0, Button: tea.MouseLeft})
	ed, _ = ed.Update(tea.MouseReleaseMsg{X: gw + 5, Y: 0, Button: tea.MouseLeft})
	if got := ed.SelectedText(); got != "hello" {
		t.Errorf("SelectedText = %q, want hello", got)
	}
}

func TestSuspendSelection(t *testing.T) {
	ed := newTestEditor("hello world", 40, 3)
	ed.SuspendSelection = true
	gw := ed.GutterWidth()
	ed, _ = ed.Update(tea.MouseClickMsg{X: gw, Y: 0, Button: tea.MouseLeft})
	ed, _ = ed.Update(tea.MouseMotionMsg{X: gw + 5, Y: 0, Button: tea.MouseLeft})
	if ed.HasSelection() || ed.Dragging() {
		t.Error("selection should be suspended")
	}
}

func TestGutterClick(t *testing.T) {
	ed := newTestEditor("a\nb\nc", 40, 3)
	ed.ID = "modified"
	_, cmd := ed.Update(tea.MouseClickMsg{X: 0, Y: 1, Button: tea.MouseLeft})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(GutterClickMsg)
	if !ok {
		t.Fatalf("got %T, want GutterClickMsg", cmd())
	}
	if msg.ID != "modified" || msg.Row != 1 {
		t.Errorf("got %+v", msg)
	}
}

func TestWheelScroll(t *testing.T) {
	var lines []string
	for i := 0; i < 20; i++ {
		lines = append(lines, strings.Repeat("x", 60))
	}
	ed := newTestEditor(strings.Join(lines, "\n"), 30, 5)

	ed, _ = ed.Update(tea.MouseWheelMsg{Button: tea.MouseWheelDown})
	if ed.ScrollTop() != 3 {
		t.Errorf("ScrollTop = %d, want 3", ed.ScrollTop())
	}
	ed, _ = ed.Update(tea.MouseWheelMsg{Button: tea.MouseWheelRight})
	if ed.XOffset() != 4 {
		t.Errorf("XOffset = %d, want 4", ed.XOffset())
	}
	ed.SetScrollTop(1000)
	if ed.ScrollTop() != 15 {
		t.Errorf("ScrollTop clamp = %d, want 15", ed.ScrollTop())
	}
	ed.SetXOffset(-4)
	if ed.XOffset() != 0 {
		t.Errorf("XOffset clamp = %d, want 0", ed.XOffset())
	}
	if ed.ScrollHeight() != 20 || ed.ClientHeight() != 5 {
		t.Errorf("metrics = %d/%d", ed.ScrollHeight(), ed.ClientHeight())
	}
}

func TestViewShowsHorizontalWindow(t *testing.T) {
	ed := newTestEditor("0123456789abcdef", 10, 1)
	ed.ShowLineNumbers = false
	ed.SetXOffset(6)
	if got := ansi.Strip(ed.View()); got != "6789abcdef" {
		t.Errorf("view = %q", got)
	}
}

func TestGutterMarkRendered(t *testing.T) {
	ed := newTestEditor("a\nb", 20, 2)
	ed.SetGutterMarkers(map[int]GutterMark{1: {Glyph: "+"}})
	lines := strings.Split(ansi.Strip(ed.View()), "\n")
	if !strings.HasPrefix(lines[1], " 2 +") {
		t.Errorf("line 1 = %q", lines[1])
	}
	if !strings.HasPrefix(lines[0], " 1  ") {
		t.Errorf("line 0 = %q", lines[0])
	}
}

func TestDeleteMultiSelection(t *testing.T) {
	ed := newTestEditor("one two one", 40, 3)
	ed.Focus()
	ed.SelectRanges([]Range{{8, 11}, {0, 3}})
	ed, _ = ed.Update(tea.KeyPressMsg{Code: tea.KeyBackspace})
	if ed.Value() != " two " {
		t.Errorf("Value = %q", ed.Value())
	}
	if ed.HasSelection() {
		t.Error("selection should be cleared")
	}
}

func TestLineCacheEvicts(t *testing.T) {
	c := newLineCache(2)
	c.put(lineKey{text: "a"}, "A")
	c.put(lineKey{text: "b"}, "B")
	if _, ok := c.get(lineKey{text: "a"}); !ok {
		t.Fatal("a missing")
	}
	c.put(lineKey{text: "c"}, "C")
	if _, ok := c.get(lineKey{text: "b"}); ok {
		t.Error("least recently used entry should be evicted")
	}
	if out, ok := c.get(lineKey{text: "a"}); !ok || out != "A" {
		t.Errorf("a = %q, %v", out, ok)
	}
	if c.len() != 2 {
		t.Errorf("len = %d", c.len())
	}
}

func TestWordMotions(t *testing.T) {
	ed := newTestEditor("foo.bar baz\nqux", 40, 3)
	ed.Focus()
	press := func(k tea.KeyPressMsg) { ed, _ = ed.Update(k) }

	press(tea.KeyPressMsg{Code: tea.KeyRight, Mod: tea.ModCtrl})
	if _, col := ed.CursorPos(); col != 3 {
		t.Errorf("after ctrl+right col = %d, want 3", col)
	}
	press(tea.KeyPressMsg{Code: tea.KeyRight, Mod: tea.ModCtrl})
	if _, col := ed.CursorPos(); col != 7 {
		t.Errorf("after second ctrl+right col = %d, want 7", col)
	}
	press(tea.KeyPressMsg{Code: tea.KeyLeft, Mod: tea.ModCtrl | tea.ModShift})
	if got := ed.SelectedText(); got != "bar" {
		t.Errorf("SelectedText = %q, want bar", got)
	}

	ed.SetCursor(0, 11)
	ed.ClearSelection()
	press(tea.KeyPressMsg{Code: tea.KeyRight, Mod: tea.ModCtrl})
	if row, col := ed.CursorPos(); row != 1 || col != 0 {
		t.Errorf("cursor = %d:%d, want 1:0", row, col)
	}
}

func TestShiftExtendsAnyMotion(t *testing.T) {
	ed := newTestEditor("hello world", 40, 3)
	ed.Focus()
	ed, _ = ed.Update(tea.KeyPressMsg{Code: tea.KeyEnd, Mod: tea.ModShift})
	if got := ed.SelectedText(); got != "hello world" {
		t.Errorf("SelectedText = %q", got)
	}
	ed, _ = ed.Update(tea.KeyPressMsg{Code: tea.KeyHome})
	if ed.HasSelection() {
		t.Error("plain motion should clear the selection")
	}
}

func TestDeleteWordBack(t *testing.T) {
	ed := newTestEditor("one two", 40, 3)
	ed.Focus()
	ed.SetCursor(0, 7)
	ed, _ = ed.Update(tea.KeyPressMsg{Code: 'w', Mod: tea.ModCtrl})
	if ed.Value() != "one " {
		t.Errorf("Value = %q", ed.Value())
	}
}

func TestInsertTextIsOneEdit(t *testing.T) {
	ed := newTestEditor("ab", 40, 3)
	ed.SetCursor(0, 1)
	v := ed.Version()
	ed.InsertText("x\r\ny\nz")
	if ed.Value() != "ax\ny\nzb" {
		t.Errorf("Value = %q", ed.Value())
	}
	if ed.Version() != v+1 {
		t.Errorf("version bumped %d times, want once", ed.Version()-v)
	}
	if row, col := ed.CursorPos(); row != 2 || col != 1 {
		t.Errorf("cursor = %d:%d, want 2:1", row, col)
	}
}

func TestBackspaceJoinsLines(t *testing.T) {
	ed := newTestEditor("ab\ncd", 40, 3)
	ed.Focus()
	ed.SetCursor(1, 0)
	ed, _ = ed.Update(tea.KeyPressMsg{Code: tea.KeyBackspace})
	if ed.Value() != "abcd" {
		t.Errorf("Value = %q", ed.Value())
	}
	if row, col := ed.CursorPos(); row != 0 || col != 2 {
		t.Errorf("cursor = %d:%d, want 0:2", row, col)
	}
	ed, _ = ed.Update(tea.KeyPressMsg{Code: tea.KeyDelete})
	if ed.Value() != "abd" {
		t.Errorf("after delete Value = %q", ed.Value())
	}
}

func TestTranslateMouse(t *testing.T) {
	tests := []struct {
		in   tea.MouseMsg
		want tea.Mouse
	}{
		{tea.MouseClickMsg{X: 10, Y: 5, Button: tea.MouseLeft}, tea.Mouse{X: 7, Y: 3, Button: tea.MouseLeft}},
		{tea.MouseMotionMsg{X: 3, Y: 2}, tea.Mouse{X: 0, Y: 0}},
		{tea.MouseReleaseMsg{X: 4, Y: 9}, tea.Mouse{X: 1, Y: 7}},
		{tea.MouseWheelMsg{X: 20, Y: 2, Button: tea.MouseWheelDown}, tea.Mouse{X: 17, Y: 0, Button: tea.MouseWheelDown}},
	}
	for _, tt := range tests {
		got := TranslateMouse(tt.in, 3, 2)
		if got.Mouse() != tt.want {
			t.Errorf("TranslateMouse(%T) = %+v, want %+v", tt.in, got.Mouse(), tt.want)
		}
		if fmt.Sprintf("%T", got) != fmt.Sprintf("%T", tt.in) {
			t.Errorf("TranslateMouse(%T) returned %T", tt.in, got)
		}
	}
}
