// Package codeview is an embeddable bubbletea code editor. It renders either
// a single buffer or a two-pane original/modified diff editor with a
// scroll-linked minimap, and hosts a find/replace panel.
package codeview

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/x/ansi"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/codeview/internal/diff"
	"github.com/xonecas/codeview/internal/diffview"
	"github.com/xonecas/codeview/internal/highlight"
	"github.com/xonecas/codeview/internal/language"
	"github.com/xonecas/codeview/internal/normalize"
	"github.com/xonecas/codeview/internal/search"
	"github.com/xonecas/codeview/internal/store"
	"github.com/xonecas/codeview/internal/tui/editor"
)

// Header and status bar.
const chromeRows = 2

// Model is the editor host. Create it with New and drive it with SetProps.
type Model struct {
	opts   Options
	props  Props
	styles Styles
	theme  string
	synced bool
	closed bool

	diffMode bool
	single   *single
	seen     string // last Value prop
	coord    *diffview.Coordinator

	// Diff of the single buffer against its props value, used when the
	// diff props carry no documents.
	fallback     bool
	fallbackOrig string
	fallbackMod  string

	ctl      *search.Controller
	panel    search.Panel
	bound    *editor.Model
	boundVer int

	note string // transient status message

	width, height int
	bodyW, bodyH  int
}

// New returns a host with no content. Call SetProps before the first View.
func New(opts Options) *Model {
	if opts.Theme == "" {
		opts.Theme = highlight.DefaultTheme
	}
	if opts.TabWidth <= 0 {
		opts.TabWidth = normalize.DefaultTabWidth
	}
	m := &Model{opts: opts, ctl: search.NewController()}
	m.panel = search.NewPanel(m.ctl)
	m.ctl.OnAction = m.searchAction
	m.ctl.OnReplaceVisibility = func(v bool) {
		m.opts.Prefs.SetReplaceVisible(m.props.SessionID, v)
	}
	m.applyTheme(opts.Theme)
	return m
}

func (m *Model) applyTheme(theme string) {
	m.theme = theme
	m.styles = StylesFor(theme)
	m.panel.Styles = m.styles.Panel
}

// SetProps brings the host in line with p.
func (m *Model) SetProps(p Props) tea.Cmd {
	if m.closed {
		return nil
	}
	prev := m.props
	m.props = p
	if !m.synced || p.DiffView != prev.DiffView {
		m.diffMode = p.DiffView
	}
	if !m.synced || p.SessionID != prev.SessionID {
		m.loadPrefs()
	}
	if theme := m.themeName(); theme != m.theme {
		m.applyTheme(theme)
		m.dropCoordinator()
	}
	m.syncSingle()
	cmd := m.syncDiff()
	m.synced = true
	m.rebind()
	m.layout()
	return cmd
}

func (m *Model) themeName() string {
	if m.props.Theme != "" && highlight.Known(m.props.Theme) {
		return m.props.Theme
	}
	return m.opts.Theme
}

func (m *Model) mode() language.Mode {
	if strings.TrimSpace(m.props.Mode) == "" {
		return language.Default
	}
	return language.ParseMode(m.props.Mode)
}

func (m *Model) tabWidth() int {
	if m.props.TabWidth > 0 {
		return m.props.TabWidth
	}
	return m.opts.TabWidth
}

func (m *Model) searchDisabled() bool {
	return m.props.DisableSearch || (m.diffMode && m.props.CollapseUnchanged)
}

func (m *Model) singleConfig() singleConfig {
	return singleConfig{
		mode:        m.mode(),
		tabWidth:    m.tabWidth(),
		theme:       m.theme,
		readOnly:    m.props.ReadOnly,
		schema:      m.props.ValidatorSchema,
		schemaURI:   m.props.SchemaURI,
		disableLint: m.props.DisableLint,
		lineNumbers: !m.opts.HideLineNumbers,
	}
}

func (m *Model) syncSingle() {
	cfg := m.singleConfig()
	p := m.props
	if m.single == nil {
		m.single = newSingle(cfg, p.Value, m.styles)
		m.seen = p.Value
		return
	}
	if cfg != m.single.cfg {
		m.single.styles = m.styles
		m.single.configure(cfg)
		m.single.relint()
	}
	if p.Value != m.seen && p.Value != m.single.pane.Value() {
		m.single.setContent(p.Value)
	}
	m.seen = p.Value
}

func (m *Model) diffProps() diffview.Props {
	p := m.props
	orig, mod := p.OriginalValue, p.ModifiedValue
	onOrig, onMod := p.OnOriginalValueChange, p.OnModifiedValueChange
	if m.fallback {
		orig, mod = m.fallbackOrig, m.fallbackMod
		onOrig, onMod = nil, nil
	}
	return diffview.Props{
		Original:         orig,
		Modified:         mod,
		Mode:             m.mode(),
		TabWidth:         m.tabWidth(),
		Theme:            m.theme,
		ReadOnly:         p.ReadOnly,
		OriginalReadOnly: p.OriginalReadOnly,
		DisableSearch:    p.DisableSearch,
		DisableLint:      p.DisableLint,
		DisableRevert:    m.opts.DisableRevert,
		Collapse:         p.CollapseUnchanged,
		Timeout:          m.opts.DiffTimeout,
		CollapseContext:  m.opts.CollapseContext,
		OnOriginalChange: onOrig,
		OnModifiedChange: onMod,
	}
}

func (m *Model) syncDiff() tea.Cmd {
	if !m.diffMode {
		m.leaveDiff()
		return nil
	}
	if m.coord == nil {
		m.fallback = m.props.OriginalValue == "" && m.props.ModifiedValue == ""
		if m.fallback {
			m.fallbackOrig = normalize.Normalize(m.props.Value, m.mode(), m.tabWidth())
			m.fallbackMod = m.single.pane.Value()
		}
		m.coord = diffview.NewCoordinator(diffview.Options{
			Styles:       m.styles.Diff,
			Minimap:      m.opts.Minimap,
			MinimapWidth: m.opts.MinimapWidth,
			MinOverlay:   m.opts.MinOverlay,
			MirrorDelay:  m.opts.MirrorDelay,
		})
		m.bodyW, m.bodyH = 0, 0
		log.Debug().Bool("fallback", m.fallback).Msg("entering diff mode")
	} else if m.fallback {
		// The session owns the fallback documents.
		m.fallbackOrig = m.coord.Value(diff.Original)
		m.fallbackMod = m.coord.Value(diff.Modified)
	}
	return m.coord.Sync(m.diffProps())
}

// leaveDiff destroys the coordinator. Edits made against the fallback diff
// are carried back into the single buffer.
func (m *Model) leaveDiff() {
	if m.coord == nil {
		return
	}
	if m.fallback && m.single != nil {
		if v := m.coord.Value(diff.Modified); v != m.single.pane.Value() {
			m.single.pane.SetValue(v)
		}
	}
	m.dropCoordinator()
	m.afterSingle()
}

func (m *Model) dropCoordinator() {
	if m.coord == nil {
		return
	}
	m.coord.Destroy()
	m.coord = nil
	m.fallback = false
}

func (m *Model) loadPrefs() {
	id := m.props.SessionID
	if v, ok := m.opts.Prefs.GetReplaceVisible(id); ok {
		m.ctl.SetReplacePreference(v)
	}
	if sp, ok := m.opts.Prefs.GetSearch(id); ok && m.ctl.Query().Pattern == "" {
		m.ctl.Restore(search.Query{
			Pattern:       sp.Pattern,
			CaseSensitive: sp.CaseSensitive,
			WholeWord:     sp.WholeWord,
			Regex:         sp.Regex,
		})
	}
}

func (m *Model) searchAction(a search.Action) {
	if a == search.ActionClose {
		q := m.ctl.Query()
		m.opts.Prefs.SetSearch(m.props.SessionID, store.SearchPrefs{
			Pattern:       q.Pattern,
			CaseSensitive: q.CaseSensitive,
			WholeWord:     q.WholeWord,
			Regex:         q.Regex,
		})
	}
	if cb := m.props.OnSearchBarAction; cb != nil {
		cb(a)
	}
}

// activePane returns the pane the search panel and keys act on.
func (m *Model) activePane() *editor.Model {
	if m.closed {
		return nil
	}
	if m.diffMode {
		if m.coord == nil {
			return nil
		}
		return m.coord.FocusedPane()
	}
	if m.single == nil {
		return nil
	}
	return m.single.pane
}

// rebind points the search controller at the active pane.
func (m *Model) rebind() {
	pane := m.activePane()
	if m.searchDisabled() && m.panel.IsOpen() {
		m.panel.Close()
	}
	if pane != m.bound {
		if m.bound != nil {
			m.bound.SetHighlights(editor.LayerSearch, nil)
		}
		m.bound = pane
		var t search.Target
		if pane != nil {
			t = search.EditorTarget{Pane: m.activePane, Match: m.styles.Match, Active: m.styles.Active}
			m.boundVer = pane.Version()
		}
		m.ctl.Bind(t)
	}
	m.ctl.SetReadOnly(pane == nil || pane.ReadOnly)
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// Update handles input and the host's own messages.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	if m.closed || !m.synced {
		return nil
	}
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		m.note = ""
		cmds = append(cmds, m.handleKey(msg))
	case tea.MouseMsg:
		cmds = append(cmds, m.handleMouse(msg))
	default:
		if m.panel.IsOpen() {
			var cmd tea.Cmd
			m.panel, cmd = m.panel.Update(msg)
			cmds = append(cmds, cmd)
		}
		if m.coord != nil {
			cmds = append(cmds, m.coord.Update(msg))
		}
	}
	m.afterInput()
	return tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.Keystroke() {
	case "ctrl+f":
		return m.OpenSearch()
	case "ctrl+d":
		return m.ToggleDiff()
	case "ctrl+y":
		if err := m.CopyValue(); err != nil {
			m.note = "copy failed: " + err.Error()
		} else {
			m.note = "copied"
		}
		return nil
	}
	if m.panel.IsOpen() {
		var cmd tea.Cmd
		m.panel, cmd = m.panel.Update(msg)
		if m.coord != nil {
			return tea.Batch(cmd, m.coord.Refresh())
		}
		return cmd
	}
	if m.diffMode && m.coord != nil {
		return m.coord.Update(msg)
	}
	if msg.Keystroke() == "ctrl+space" {
		m.single.complete()
		return nil
	}
	return m.single.Update(msg)
}

// OpenSearch opens the find/replace panel on the active pane.
func (m *Model) OpenSearch() tea.Cmd {
	if m.closed || m.searchDisabled() {
		return nil
	}
	m.rebind()
	if m.panel.IsOpen() {
		return nil
	}
	cmd := m.panel.Open()
	if m.panel.IsOpen() && m.props.OnSearchPanelOpen != nil {
		m.props.OnSearchPanelOpen()
	}
	m.layout()
	return cmd
}

// ToggleDiff flips between the single and the diff view.
func (m *Model) ToggleDiff() tea.Cmd {
	if m.closed {
		return nil
	}
	m.diffMode = !m.diffMode
	cmd := m.syncDiff()
	m.rebind()
	m.layout()
	return cmd
}

func (m *Model) bodyTop() int { return 1 + m.panel.Height() }

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	ev := msg.Mouse()
	if click, ok := msg.(tea.MouseClickMsg); ok && ev.Y == 0 {
		if click.Button == tea.MouseLeft && ev.X >= m.width-lipgloss.Width(m.toggleLabel()) {
			return m.ToggleDiff()
		}
		return nil
	}
	top := m.bodyTop()
	_, motion := msg.(tea.MouseMotionMsg)
	_, release := msg.(tea.MouseReleaseMsg)
	inBody := ev.Y >= top && ev.Y < top+m.bodyH
	if !inBody && !motion && !release {
		return nil
	}
	local := editor.TranslateMouse(msg, 0, top)
	if m.diffMode && m.coord != nil {
		return m.coord.Update(local)
	}
	return m.single.Update(local)
}

// afterInput fires change callbacks, keeps the search panel on the active
// pane and recomputes the layout.
func (m *Model) afterInput() {
	if !m.diffMode {
		m.afterSingle()
	}
	m.rebind()
	if p := m.bound; p != nil && p.Version() != m.boundVer {
		m.boundVer = p.Version()
		m.ctl.Refresh()
	}
	m.layout()
}

func (m *Model) afterSingle() {
	if m.single == nil || !m.single.changed() {
		return
	}
	if cb := m.props.OnChange; cb != nil {
		cb(m.single.pane.Value())
	}
}

// SetSize sets the space the parent offers. Only HeightFull and
// HeightFitToParent use the height.
func (m *Model) SetSize(w, h int) {
	m.width, m.height = w, h
	m.layout()
}

func (m *Model) contentRows() int {
	if m.diffMode && m.coord != nil && m.coord.Instance() != nil {
		inst := m.coord.Instance()
		return max(inst.Pane(diff.Original).LineCount(), inst.Pane(diff.Modified).LineCount())
	}
	if m.single == nil {
		return 1
	}
	return m.single.pane.LineCount()
}

// Rows returns the height the host renders at.
func (m *Model) Rows() int { return chromeRows + m.panel.Height() + m.bodyH }

func (m *Model) layout() {
	if m.closed {
		return
	}
	ph := m.panel.Height()
	want := chromeRows + ph + m.contentRows()
	total := m.props.Height.total(want, m.height)
	bw, bh := m.width, max(total-chromeRows-ph, 1)
	m.panel.SetWidth(m.width)
	if m.single != nil {
		m.single.pane.SetWidth(bw)
		m.single.pane.SetHeight(bh)
	}
	if m.coord != nil && (bw != m.bodyW || bh != m.bodyH) {
		m.coord.SetSize(bw, bh)
	}
	m.bodyW, m.bodyH = bw, bh
}

// Value returns the single-view document.
func (m *Model) Value() string {
	if m.single == nil {
		return ""
	}
	return m.single.pane.Value()
}

// OriginalValue returns the live original document of the diff view.
func (m *Model) OriginalValue() string {
	if m.coord == nil {
		return ""
	}
	return m.coord.Value(diff.Original)
}

// ModifiedValue returns the live modified document of the diff view.
func (m *Model) ModifiedValue() string {
	if m.coord == nil {
		return ""
	}
	return m.coord.Value(diff.Modified)
}

// DiffMode reports whether the diff view is shown.
func (m *Model) DiffMode() bool { return m.diffMode }

// Coordinator returns the diff coordinator while the diff view is shown.
func (m *Model) Coordinator() *diffview.Coordinator { return m.coord }

// Search returns the search controller.
func (m *Model) Search() *search.Controller { return m.ctl }

// Diagnostics returns the lint findings of the active pane.
func (m *Model) Diagnostics() []language.Diagnostic {
	if m.diffMode {
		if m.coord == nil || m.coord.Instance() == nil {
			return nil
		}
		inst := m.coord.Instance()
		return inst.Diagnostics(inst.Focused())
	}
	if m.single == nil {
		return nil
	}
	return m.single.diags
}

// UnifiedPatch returns the diff of the live documents as a unified patch.
func (m *Model) UnifiedPatch(name string) string {
	if m.coord == nil || m.coord.Instance() == nil {
		return ""
	}
	return m.coord.Instance().UnifiedPatch(name)
}

// CopyValue writes the active document to the clipboard.
func (m *Model) CopyValue() error {
	pane := m.activePane()
	if pane == nil {
		return fmt.Errorf("no active buffer")
	}
	write := m.opts.Clipboard
	if write == nil {
		write = clipboard.WriteAll
	}
	if err := write(pane.Value()); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}

// Close detaches every callback and destroys the diff session and minimap.
func (m *Model) Close() {
	if m.closed {
		return
	}
	m.panel.Close()
	m.ctl.Bind(nil)
	m.bound = nil
	m.dropCoordinator()
	m.single = nil
	m.props = Props{}
	m.closed = true
	log.Debug().Msg("editor host closed")
}

// Notify shows msg in the status bar until the next key press.
func (m *Model) Notify(msg string) { m.note = msg }

// Closed reports whether Close was called.
func (m *Model) Closed() bool { return m.closed }

// fit pads or truncates a rendered row to w cells.
func fit(row string, w int, fill lipgloss.Style) string {
	if lipgloss.Width(row) > w {
		row = ansi.Truncate(row, w, "…")
	}
	if pad := w - lipgloss.Width(row); pad > 0 {
		row += fill.Render(strings.Repeat(" ", pad))
	}
	return row
}
