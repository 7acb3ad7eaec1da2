package codeview

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/xonecas/codeview/internal/diff"
	"github.com/xonecas/codeview/internal/language"
)

// View renders header, search panel, body and status bar.
func (m *Model) View() string {
	if m.closed || !m.synced || m.width <= 0 {
		return ""
	}
	rows := []string{m.headerView()}
	if m.panel.Height() > 0 {
		rows = append(rows, m.panel.View())
	}
	if m.diffMode && m.coord != nil {
		rows = append(rows, m.coord.View())
	} else {
		rows = append(rows, m.single.pane.View())
	}
	rows = append(rows, m.statusView())
	return strings.Join(rows, "\n")
}

func (m *Model) toggleLabel() string {
	label := "[single]"
	if m.diffMode {
		label = "[diff]"
	}
	return m.styles.Badge.Render(label) + m.styles.Header.Render(" ctrl+d ")
}

func (m *Model) headerView() string {
	st := m.styles
	title := st.Title.Render(" " + m.mode().String())
	if m.diffMode {
		title += st.Header.Render("  original │ modified")
		if m.props.CollapseUnchanged {
			title += st.Header.Render(" (review)")
		}
	}
	if m.props.ReadOnly {
		title += st.Header.Render("  read-only")
	}
	right := m.toggleLabel()
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(right)
	if gap < 0 {
		return fit(right, m.width, st.Header)
	}
	return title + st.Header.Render(strings.Repeat(" ", gap)) + right
}

func (m *Model) statusView() string {
	st := m.styles
	var left []string
	if pane := m.activePane(); pane != nil {
		row, col := pane.CursorPos()
		left = append(left, st.Status.Render(fmt.Sprintf(" Ln %d, Col %d", row+1, col+1)))
	}
	errs, warns := countDiagnostics(m.Diagnostics())
	if errs > 0 {
		left = append(left, st.Error.Inherit(st.Status).Render("✗ "+strconv.Itoa(errs)))
	}
	if warns > 0 {
		left = append(left, st.Warn.Inherit(st.Status).Render("▲ "+strconv.Itoa(warns)))
	}
	if m.diffMode && m.coord != nil {
		left = append(left, st.Status.Render(m.diffSummary()))
	}

	right := st.Hint.Render(m.statusHint())
	l := strings.Join(left, st.Status.Render("  "))
	gap := m.width - lipgloss.Width(l) - lipgloss.Width(right) - 1
	if gap < 0 {
		return fit(l, m.width, st.Status)
	}
	return l + st.Status.Render(strings.Repeat(" ", gap)) + right + st.Status.Render(" ")
}

func (m *Model) diffSummary() string {
	inst := m.coord.Instance()
	if inst == nil {
		return ""
	}
	if inst.Pending() {
		return "diffing…"
	}
	var add, del, chg int
	for _, c := range inst.Chunks() {
		switch c.Kind {
		case diff.Insert:
			add++
		case diff.Delete:
			del++
		default:
			chg++
		}
	}
	s := fmt.Sprintf("+%d -%d ~%d", add, del, chg)
	if inst.Result().Limited {
		s += " (partial)"
	}
	return s
}

// statusHint picks the most relevant message for the cursor position.
func (m *Model) statusHint() string {
	if m.note != "" {
		return m.note
	}
	if m.diffMode || m.single == nil {
		return ""
	}
	if d, ok := m.single.diagnosticAt(); ok {
		return d.Message
	}
	if h := m.single.hover(); h != "" {
		return h
	}
	if cs := m.single.completions(); len(cs) > 0 {
		return "ctrl+space: " + cs[0].Label
	}
	return ""
}

func countDiagnostics(ds []language.Diagnostic) (errs, warns int) {
	for _, d := range ds {
		if d.Severity == language.SeverityError {
			errs++
		} else {
			warns++
		}
	}
	return errs, warns
}
