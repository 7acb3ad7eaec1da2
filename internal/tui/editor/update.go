package editor

import (
	"strings"
	"unicode"

	tea "charm.land/bubbletea/v2"
)

const (
	wheelRows = 3
	wheelCols = 4
)

// Update handles keys when focused and mouse messages always; the parent
// routes mouse messages in pane-local coordinates.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		if m.focus {
			m.handleKey(msg)
		}
	case tea.MouseClickMsg:
		if msg.Button == tea.MouseLeft {
			cmd = m.press(msg.X, msg.Y)
		}
	case tea.MouseMotionMsg:
		m.drag(msg.X, msg.Y)
	case tea.MouseReleaseMsg:
		m.dragging = false
		if m.sel != nil && m.sel.empty() {
			m.sel = nil
		}
	case tea.MouseWheelMsg:
		m.wheel(msg.Button)
	}

	return m, cmd
}

func (m *Model) press(x, y int) tea.Cmd {
	m.textWidth()
	if m.ShowLineNumbers && x < m.gutterWidth {
		row := m.scroll + y
		if row < 0 || row >= len(m.lines) {
			return nil
		}
		id := m.ID
		return func() tea.Msg { return GutterClickMsg{ID: id, Row: row} }
	}
	p := m.screenToPos(x, y)
	m.ClearSelection()
	m.row, m.col = p.row, p.col
	m.clampCursor()
	if !m.SuspendSelection {
		m.dragging = true
		m.sel = &selection{anchor: p, active: p}
	}
	return nil
}

func (m *Model) drag(x, y int) {
	if !m.dragging || m.SuspendSelection || m.sel == nil {
		return
	}
	p := m.screenToPos(x, y)
	m.sel.active = p
	m.row, m.col = p.row, p.col
	m.clampCursor()
}

func (m *Model) wheel(b tea.MouseButton) {
	switch b {
	case tea.MouseWheelUp:
		m.scroll -= wheelRows
	case tea.MouseWheelDown:
		m.scroll += wheelRows
	case tea.MouseWheelLeft:
		m.xoff -= wheelCols
	case tea.MouseWheelRight:
		m.xoff += wheelCols
	}
	m.clampScrollBounds()
}

// motions move the caret. With shift held any of them extends the selection
// instead of clearing it.
var motions = map[string]func(m *Model){
	"up":         func(m *Model) { m.row-- },
	"down":       func(m *Model) { m.row++ },
	"left":       (*Model).moveLeft,
	"right":      (*Model).moveRight,
	"ctrl+left":  (*Model).wordLeft,
	"ctrl+right": (*Model).wordRight,
	"alt+left":   (*Model).wordLeft,
	"alt+right":  (*Model).wordRight,
	"home":       func(m *Model) { m.col = 0 },
	"ctrl+a":     func(m *Model) { m.col = 0 },
	"end":        func(m *Model) { m.col = len(m.currentLine()) },
	"ctrl+e":     func(m *Model) { m.col = len(m.currentLine()) },
	"pgup":       func(m *Model) { m.row -= m.height },
	"pgdown":     func(m *Model) { m.row += m.height },
	"ctrl+home":  func(m *Model) { m.row, m.col = 0, 0 },
	"ctrl+end": func(m *Model) {
		m.row = len(m.lines) - 1
		m.col = len(m.lines[m.row])
	},
}

func (m *Model) handleKey(msg tea.KeyPressMsg) {
	ks := msg.Keystroke()
	plain := strings.Replace(ks, "shift+", "", 1)
	if move, ok := motions[plain]; ok {
		extend := plain != ks
		if extend {
			m.startOrExtendSelection()
		} else {
			m.ClearSelection()
		}
		move(m)
		m.clampCursor()
		if extend {
			m.updateSelectionActive()
		}
		m.clampScroll()
		return
	}

	if m.ReadOnly {
		return
	}
	switch ks {
	case "backspace":
		if !m.DeleteSelectionIfAny() {
			m.deleteBack()
		}
	case "ctrl+backspace", "alt+backspace", "ctrl+w":
		if !m.DeleteSelectionIfAny() {
			m.deleteWordBack()
		}
	case "delete":
		if !m.DeleteSelectionIfAny() {
			m.deleteForward()
		}
	case "enter":
		m.DeleteSelection()
		m.insertNewline()
	case "tab":
		m.DeleteSelection()
		m.tabIndent()
	default:
		if msg.Text == "" {
			return
		}
		m.DeleteSelection()
		for _, r := range msg.Text {
			m.insertRune(r)
		}
	}
	m.clampCursor()
	m.clampScroll()
}

// DeleteSelectionIfAny deletes the selection and reports whether there was
// one.
func (m *Model) DeleteSelectionIfAny() bool {
	if !m.HasSelection() {
		return false
	}
	m.DeleteSelection()
	return true
}

func (m *Model) moveLeft() {
	if m.col > 0 {
		m.col--
	} else if m.row > 0 {
		m.row--
		m.col = len(m.currentLine())
	}
}

func (m *Model) moveRight() {
	if m.col < len(m.currentLine()) {
		m.col++
	} else if m.row < len(m.lines)-1 {
		m.row++
		m.col = 0
	}
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// wordLeft moves to the start of the previous word, crossing line breaks.
func (m *Model) wordLeft() {
	if m.col == 0 {
		m.moveLeft()
		return
	}
	line := m.currentLine()
	c := m.col
	for c > 0 && !isWordRune(line[c-1]) {
		c--
	}
	for c > 0 && isWordRune(line[c-1]) {
		c--
	}
	m.col = c
}

// wordRight moves past the end of the next word, crossing line breaks.
func (m *Model) wordRight() {
	line := m.currentLine()
	if m.col >= len(line) {
		m.moveRight()
		return
	}
	c := m.col
	for c < len(line) && !isWordRune(line[c]) {
		c++
	}
	for c < len(line) && isWordRune(line[c]) {
		c++
	}
	m.col = c
}

func (m *Model) deleteWordBack() {
	if m.col == 0 {
		m.deleteBack()
		return
	}
	end := m.cursor()
	m.wordLeft()
	m.splice(m.cursor(), end, "")
}

// screenToPos converts pane-relative x,y to a buffer row,col.
func (m *Model) screenToPos(x, y int) pos {
	row := min(max(m.scroll+y, 0), len(m.lines)-1)
	m.textWidth()
	col := max(x-m.gutterWidth, 0)
	return pos{row: row, col: m.expandedColToBufferCol(row, m.xoff+col)}
}

// TranslateMouse offsets a mouse message's coordinates into a child area
// whose top-left corner is offX,offY.
func TranslateMouse(msg tea.MouseMsg, offX, offY int) tea.MouseMsg {
	switch ev := msg.(type) {
	case tea.MouseClickMsg:
		ev.X -= offX
		ev.Y -= offY
		return ev
	case tea.MouseMotionMsg:
		ev.X -= offX
		ev.Y -= offY
		return ev
	case tea.MouseReleaseMsg:
		ev.X -= offX
		ev.Y -= offY
		return ev
	case tea.MouseWheelMsg:
		ev.X -= offX
		ev.Y -= offY
		return ev
	}
	return msg
}
