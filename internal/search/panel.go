package search

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// KeyMap defines the panel bindings.
type KeyMap struct {
	Next, Previous          key.Binding
	ReplaceNext, ReplaceAll key.Binding
	SelectAll               key.Binding
	ToggleCase, ToggleWord  key.Binding
	ToggleRegex             key.Binding
	ToggleReplace           key.Binding
	SwitchField             key.Binding
	Close                   key.Binding
}

// DefaultKeyMap returns the default panel bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next:          key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "next match")),
		Previous:      key.NewBinding(key.WithKeys("shift+enter"), key.WithHelp("shift+enter", "previous match")),
		ReplaceNext:   key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "replace")),
		ReplaceAll:    key.NewBinding(key.WithKeys("alt+enter"), key.WithHelp("alt+enter", "replace all")),
		SelectAll:     key.NewBinding(key.WithKeys("alt+l"), key.WithHelp("alt+l", "select all matches")),
		ToggleCase:    key.NewBinding(key.WithKeys("alt+c"), key.WithHelp("alt+c", "match case")),
		ToggleWord:    key.NewBinding(key.WithKeys("alt+w"), key.WithHelp("alt+w", "whole word")),
		ToggleRegex:   key.NewBinding(key.WithKeys("alt+x"), key.WithHelp("alt+x", "regex")),
		ToggleReplace: key.NewBinding(key.WithKeys("ctrl+h"), key.WithHelp("ctrl+h", "toggle replace")),
		SwitchField:   key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "switch field")),
		Close:         key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	}
}

// PanelStyles holds the panel colors, set by the host from the palette.
type PanelStyles struct {
	Bar      lipgloss.Style
	Label    lipgloss.Style
	Toggle   lipgloss.Style
	ToggleOn lipgloss.Style
	Count    lipgloss.Style
	Error    lipgloss.Style
}

const (
	fieldFind = iota
	fieldReplace
)

// Panel is the find/replace bar. It edits the query of its Controller and
// dispatches panel actions.
type Panel struct {
	Styles PanelStyles
	Keys   KeyMap

	ctl     *Controller
	find    textinput.Model
	replace textinput.Model
	field   int
	width   int
}

// NewPanel returns a closed panel driving ctl.
func NewPanel(ctl *Controller) Panel {
	find := textinput.New()
	find.Prompt = ""
	find.Placeholder = "Find"
	replace := textinput.New()
	replace.Prompt = ""
	replace.Placeholder = "Replace"
	return Panel{
		Keys:    DefaultKeyMap(),
		ctl:     ctl,
		find:    find,
		replace: replace,
	}
}

// Controller returns the driven controller.
func (p Panel) Controller() *Controller { return p.ctl }

// SetWidth sets the rendered width.
func (p *Panel) SetWidth(w int) {
	p.width = w
	inputW := max(w/3, 8)
	p.find.SetWidth(inputW)
	p.replace.SetWidth(inputW)
}

// Open shows the panel with the find field focused.
func (p *Panel) Open() tea.Cmd {
	p.ctl.Open()
	if !p.ctl.IsOpen() {
		return nil
	}
	p.find.SetValue(p.ctl.Query().Pattern)
	p.replace.SetValue(p.ctl.Query().Replacement)
	p.field = fieldFind
	p.replace.Blur()
	return p.find.Focus()
}

// Close hides the panel.
func (p *Panel) Close() {
	p.find.Blur()
	p.replace.Blur()
	p.ctl.Close()
}

// IsOpen reports whether the panel takes input.
func (p Panel) IsOpen() bool { return p.ctl.IsOpen() }

// Height returns the rows the panel occupies.
func (p Panel) Height() int {
	switch {
	case !p.ctl.IsOpen():
		return 0
	case p.ctl.ReplaceVisible():
		return 2
	default:
		return 1
	}
}

func (p Panel) Update(msg tea.Msg) (Panel, tea.Cmd) {
	if !p.ctl.IsOpen() {
		return p, nil
	}
	kp, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return p.updateInputs(msg)
	}
	q := p.ctl.Query()
	switch {
	case key.Matches(kp, p.Keys.Close):
		p.Close()
	case key.Matches(kp, p.Keys.ReplaceAll):
		p.ctl.ReplaceAll()
	case key.Matches(kp, p.Keys.Previous):
		p.ctl.FindPrevious()
	case key.Matches(kp, p.Keys.Next):
		if p.field == fieldReplace {
			p.ctl.ReplaceNext()
		} else {
			p.ctl.FindNext()
		}
	case key.Matches(kp, p.Keys.ReplaceNext):
		p.ctl.ReplaceNext()
	case key.Matches(kp, p.Keys.SelectAll):
		p.ctl.SelectAll()
	case key.Matches(kp, p.Keys.ToggleCase):
		v := !q.CaseSensitive
		p.ctl.SetQuery(Partial{CaseSensitive: &v})
	case key.Matches(kp, p.Keys.ToggleWord):
		v := !q.WholeWord
		p.ctl.SetQuery(Partial{WholeWord: &v})
	case key.Matches(kp, p.Keys.ToggleRegex):
		v := !q.Regex
		p.ctl.SetQuery(Partial{Regex: &v})
	case key.Matches(kp, p.Keys.ToggleReplace):
		p.ctl.ToggleReplaceVisibility()
		if !p.ctl.ReplaceVisible() && p.field == fieldReplace {
			return p, p.focusField(fieldFind)
		}
	case key.Matches(kp, p.Keys.SwitchField):
		if p.ctl.ReplaceVisible() {
			return p, p.focusField(1 - p.field)
		}
	default:
		return p.updateInputs(msg)
	}
	return p, nil
}

func (p *Panel) focusField(f int) tea.Cmd {
	p.field = f
	if f == fieldReplace {
		p.find.Blur()
		return p.replace.Focus()
	}
	p.replace.Blur()
	return p.find.Focus()
}

func (p Panel) updateInputs(msg tea.Msg) (Panel, tea.Cmd) {
	var cmd tea.Cmd
	if p.field == fieldReplace && p.ctl.ReplaceVisible() {
		before := p.replace.Value()
		p.replace, cmd = p.replace.Update(msg)
		if v := p.replace.Value(); v != before {
			p.ctl.SetQuery(Partial{Replacement: &v})
		}
		return p, cmd
	}
	before := p.find.Value()
	p.find, cmd = p.find.Update(msg)
	if v := p.find.Value(); v != before {
		p.ctl.SetQuery(Partial{Pattern: &v})
	}
	return p, cmd
}

func (p Panel) View() string {
	if !p.ctl.IsOpen() {
		return ""
	}
	q := p.ctl.Query()
	toggle := func(label string, on bool) string {
		if on {
			return p.Styles.ToggleOn.Render(label)
		}
		return p.Styles.Toggle.Render(label)
	}

	var b strings.Builder
	b.WriteString(p.Styles.Label.Render(" Find    "))
	b.WriteString(p.find.View())
	b.WriteString(" ")
	b.WriteString(toggle("Aa", q.CaseSensitive))
	b.WriteString(" ")
	b.WriteString(toggle("W", q.WholeWord))
	b.WriteString(" ")
	b.WriteString(toggle(".*", q.Regex))
	b.WriteString("  ")
	b.WriteString(p.status())
	rows := []string{p.fit(b.String())}

	if p.ctl.ReplaceVisible() {
		b.Reset()
		b.WriteString(p.Styles.Label.Render(" Replace "))
		b.WriteString(p.replace.View())
		b.WriteString(p.Styles.Count.Render("  ctrl+r replace · alt+enter all"))
		rows = append(rows, p.fit(b.String()))
	}
	return strings.Join(rows, "\n")
}

func (p Panel) status() string {
	if err := p.ctl.Err(); err != nil {
		return p.Styles.Error.Render("invalid pattern")
	}
	if p.ctl.Query().Pattern == "" {
		return ""
	}
	return p.Styles.Count.Render(CounterText(p.ctl.Cursor()))
}

// CounterText renders a cursor as "3 of 12", "12 matches" or "No results".
func CounterText(c Cursor) string {
	switch {
	case c.Total == 0:
		return "No results"
	case c.Current < 0:
		if c.Total == 1 {
			return "1 match"
		}
		return fmt.Sprintf("%d matches", c.Total)
	default:
		return fmt.Sprintf("%d of %d", c.Current+1, c.Total)
	}
}

func (p Panel) fit(row string) string {
	if p.width <= 0 {
		return row
	}
	row = ansi.Truncate(row, p.width, "")
	if w := lipgloss.Width(row); w < p.width {
		row += p.Styles.Bar.Render(strings.Repeat(" ", p.width-w))
	}
	return row
}
