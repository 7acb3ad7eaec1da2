package diffview

import (
	"image"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/codeview/internal/diff"
	"github.com/xonecas/codeview/internal/minimap"
	"github.com/xonecas/codeview/internal/normalize"
	"github.com/xonecas/codeview/internal/tui/editor"
)

// Options configure a Coordinator.
type Options struct {
	Styles       Styles
	Minimap      bool
	MinimapWidth int
	MinOverlay   int
	MirrorDelay  time.Duration
}

type layout struct {
	left, div, right, mini image.Rectangle
}

func inRect(x, y int, r image.Rectangle) bool {
	return image.Pt(x, y).In(r)
}

// Coordinator owns the single live Instance of a mounted diff editor and its
// minimap projector, and recreates both when the props require it.
type Coordinator struct {
	opts    Options
	props   Props
	fp      fingerprint
	inst    *Instance
	mini    *minimap.Projector
	nextID  int
	reinits int

	width, height int
	layout        layout
}

// NewCoordinator returns an uninitialized coordinator.
func NewCoordinator(opts Options) *Coordinator {
	if opts.MinimapWidth <= 0 {
		opts.MinimapWidth = minimap.DefaultWidth
	}
	return &Coordinator{opts: opts}
}

// Instance returns the live instance, or nil.
func (c *Coordinator) Instance() *Instance { return c.inst }

// Minimap returns the live projector, or nil.
func (c *Coordinator) Minimap() *minimap.Projector { return c.mini }

// Reinits counts the reinitializations since creation.
func (c *Coordinator) Reinits() int { return c.reinits }

// FocusedPane returns the pane holding focus, or nil without a live
// instance.
func (c *Coordinator) FocusedPane() *editor.Model {
	if c.inst == nil {
		return nil
	}
	return c.inst.Pane(c.inst.focus)
}

// Value returns the live document of one side, or "" without an instance.
func (c *Coordinator) Value(s diff.Side) string {
	if c.inst == nil {
		return ""
	}
	return c.inst.Value(s)
}

// Sync brings the coordinator in line with p. The first call creates the
// instance. A changed immutable setting, or external content that differs
// from the live documents, destroys the instance and minimap and recreates
// them from the external content; otherwise only the callbacks are
// refreshed.
func (c *Coordinator) Sync(p Props) tea.Cmd {
	fp := p.fingerprint()
	c.props = p
	if c.inst == nil {
		c.fp = fp
		return c.create(p.Original, p.Modified)
	}

	extOrig := c.diverges(p, diff.Original, p.Original)
	extMod := c.diverges(p, diff.Modified, p.Modified)
	if fp == c.fp && !extOrig && !extMod {
		return nil
	}

	c.fp = fp
	c.reinits++
	log.Debug().
		Int("reinits", c.reinits).
		Bool("external_content", extOrig || extMod).
		Msg("diff session reinitializing")
	c.destroy()
	return c.create(p.Original, p.Modified)
}

// diverges reports whether the supplied content of side s differs from the
// live document. Echoed edits match as given; fresh content matches once
// normalized.
func (c *Coordinator) diverges(p Props, s diff.Side, content string) bool {
	live := c.inst.Value(s)
	if content == live {
		return false
	}
	return normalize.Normalize(content, p.Mode, p.tabWidth()) != live
}

func (c *Coordinator) create(orig, mod string) tea.Cmd {
	c.nextID++
	p := c.props
	c.inst = newInstance(c.nextID, p, p.session(orig, mod), c.opts.Styles)
	if c.opts.Minimap && !p.Collapse {
		c.mini = minimap.New(c.inst.Value(diff.Original), c.inst.Value(diff.Modified), minimap.Options{
			MinOverlay: c.opts.MinOverlay,
			Debounce:   c.opts.MirrorDelay,
		})
	}
	c.resize()
	return c.inst.startDiff()
}

func (c *Coordinator) destroy() {
	if c.mini != nil {
		c.mini.Destroy()
		c.mini = nil
	}
	if c.inst != nil {
		c.inst.destroy()
		c.inst = nil
	}
}

// Destroy tears down the instance and minimap.
func (c *Coordinator) Destroy() {
	c.destroy()
	c.props.OnOriginalChange = nil
	c.props.OnModifiedChange = nil
}

// SetSize sets the area in cells.
func (c *Coordinator) SetSize(w, h int) {
	c.width, c.height = w, h
	c.resize()
}

func (c *Coordinator) resize() {
	w, h := c.width, c.height
	mw := 0
	if c.mini != nil {
		mw = min(c.opts.MinimapWidth, max(w-3, 0))
	}
	avail := max(w-mw-1, 0)
	lw := avail / 2
	rw := avail - lw
	c.layout = layout{
		left:  image.Rect(0, 0, lw, h),
		div:   image.Rect(lw, 0, lw+1, h),
		right: image.Rect(lw+1, 0, lw+1+rw, h),
		mini:  image.Rect(lw+1+rw, 0, w, h),
	}
	if c.inst == nil {
		return
	}
	for s, r := range []image.Rectangle{c.layout.left, c.layout.right} {
		pane := c.inst.panes[s]
		pane.SetWidth(r.Dx())
		pane.SetHeight(r.Dy())
	}
	if c.mini != nil {
		c.mini.SetContainer(h)
	}
	c.syncScroll()
}

// Update routes diff jobs, ticks, keys and pane-local mouse messages.
func (c *Coordinator) Update(msg tea.Msg) tea.Cmd {
	inst := c.inst
	if inst == nil {
		return nil
	}
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case diffResultMsg:
		if msg.inst == inst.id && inst.applyResult(msg) && c.mini != nil {
			c.mini.SetChunks(inst.Chunks())
		}
		return nil
	case diffTimeoutMsg:
		if msg.inst == inst.id {
			inst.timedOut(msg)
		}
		return nil
	case rediffMsg:
		if msg.inst == inst.id && msg.seq == inst.seq {
			return inst.startDiff()
		}
		return nil
	case minimap.MirrorMsg:
		if c.mini != nil {
			c.mini.HandleMirror(msg)
		}
		return nil
	case editor.GutterClickMsg:
		if msg.ID == diff.Modified.String() || msg.ID == diff.Original.String() {
			side := diff.Modified
			if msg.ID == diff.Original.String() {
				side = diff.Original
			}
			inst.revert(side, msg.Row)
		}
	case tea.KeyPressMsg:
		cmds = append(cmds, c.handleKey(msg))
	case tea.MouseMsg:
		cmds = append(cmds, c.handleMouse(msg))
	default:
		return nil
	}
	cmds = append(cmds, c.afterInput()...)
	return tea.Batch(cmds...)
}

func (c *Coordinator) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	inst := c.inst
	if inst.collapse {
		c.scrollReview(msg.Keystroke())
		return nil
	}
	switch msg.Keystroke() {
	case "alt+1":
		inst.setFocus(diff.Original)
		return nil
	case "alt+2":
		inst.setFocus(diff.Modified)
		return nil
	case "alt+r":
		row, _ := inst.panes[inst.focus].CursorPos()
		inst.revert(inst.focus, row)
		return nil
	}
	var cmd tea.Cmd
	pane := inst.panes[inst.focus]
	*pane, cmd = pane.Update(msg)
	return cmd
}

func (c *Coordinator) handleMouse(msg tea.MouseMsg) tea.Cmd {
	inst := c.inst
	m := msg.Mouse()
	x, y := m.X, m.Y

	if inst.collapse {
		if w, ok := msg.(tea.MouseWheelMsg); ok {
			switch w.Button {
			case tea.MouseWheelUp:
				inst.reviewTop -= 3
			case tea.MouseWheelDown:
				inst.reviewTop += 3
			}
			c.clampReview()
		}
		return nil
	}

	// Minimap drags own the pointer until release, wherever it happens.
	if c.mini != nil && (c.mini.Dragging() || inRect(x, y, c.layout.mini)) {
		local := editor.TranslateMouse(msg, c.layout.mini.Min.X, c.layout.mini.Min.Y)
		if st, ok := c.mini.HandleMouse(local); ok {
			inst.panes[diff.Modified].SetScrollTop(st)
		}
		c.suspendSelection(c.mini.Dragging())
		return nil
	}

	_, motion := msg.(tea.MouseMotionMsg)
	_, release := msg.(tea.MouseReleaseMsg)
	rects := [2]image.Rectangle{c.layout.left, c.layout.right}
	for _, s := range []diff.Side{diff.Original, diff.Modified} {
		pane := inst.panes[s]
		if (motion || release) && pane.Dragging() || inRect(x, y, rects[s]) {
			if click, ok := msg.(tea.MouseClickMsg); ok && click.Button == tea.MouseLeft && inst.focus != s {
				inst.setFocus(s)
			}
			var cmd tea.Cmd
			*pane, cmd = pane.Update(editor.TranslateMouse(msg, rects[s].Min.X, rects[s].Min.Y))
			return cmd
		}
	}
	return nil
}

func (c *Coordinator) suspendSelection(v bool) {
	for _, p := range c.inst.panes {
		p.SuspendSelection = v
	}
}

// Refresh runs the change listeners after a pane was edited outside Update,
// for example by a search replace.
func (c *Coordinator) Refresh() tea.Cmd {
	return tea.Batch(c.afterInput()...)
}

// afterInput runs the change listeners of both panes and links their
// scroll positions.
func (c *Coordinator) afterInput() []tea.Cmd {
	inst := c.inst
	if inst == nil {
		return nil
	}
	var cmds []tea.Cmd
	changed := false
	for _, s := range []diff.Side{diff.Original, diff.Modified} {
		pane := inst.panes[s]
		if pane.Version() == inst.versions[s] {
			continue
		}
		inst.versions[s] = pane.Version()
		changed = true
		v := pane.Value()
		inst.diags[s] = inst.caps[s].Lint(v)
		cb := c.props.OnOriginalChange
		if s == diff.Modified {
			cb = c.props.OnModifiedChange
		}
		if cb != nil {
			cb(v)
		}
		if c.mini != nil {
			cmds = append(cmds, c.mini.Mirror(s, v))
		}
	}
	if changed {
		cmds = append(cmds, inst.scheduleRediff())
	}
	c.syncScroll()
	return cmds
}

// syncScroll mirrors horizontal scroll verbatim and vertical scroll through
// the chunk line map, then refreshes the minimap overlay.
func (c *Coordinator) syncScroll() {
	inst := c.inst
	if inst == nil {
		return
	}
	for _, s := range []diff.Side{inst.focus, inst.focus.Other()} {
		pane, other := inst.panes[s], inst.panes[s.Other()]
		if x := pane.XOffset(); x != inst.xoff[s] {
			other.SetXOffset(x)
		}
		if top := pane.ScrollTop(); top != inst.scroll[s] {
			other.SetScrollTop(diff.MapLine(inst.result.Chunks, s, top))
		}
		for _, t := range []diff.Side{diff.Original, diff.Modified} {
			inst.xoff[t] = inst.panes[t].XOffset()
			inst.scroll[t] = inst.panes[t].ScrollTop()
		}
	}
	if c.mini != nil {
		mod := inst.panes[diff.Modified]
		c.mini.UpdateOverlay(minimap.Metrics{
			ScrollTop:    mod.ScrollTop(),
			ClientHeight: mod.ClientHeight(),
			ScrollHeight: mod.ScrollHeight(),
		})
	}
}

// View renders the panes, the divider and the minimap, or the waiting text
// while a diff runs past its timeout.
func (c *Coordinator) View() string {
	inst := c.inst
	if inst == nil || c.width <= 0 || c.height <= 0 {
		return ""
	}
	st := c.opts.Styles
	if inst.waiting {
		return st.Waiting.Width(c.width).Height(c.height).
			AlignHorizontal(lipgloss.Center).AlignVertical(lipgloss.Center).
			Render(WaitingText)
	}
	if inst.collapse {
		return c.reviewView()
	}
	div := strings.TrimSuffix(strings.Repeat(st.Divider.Render("│")+"\n", c.height), "\n")
	parts := []string{inst.panes[diff.Original].View(), div, inst.panes[diff.Modified].View()}
	if c.mini != nil && c.layout.mini.Dx() > 0 {
		parts = append(parts, c.mini.View(c.layout.mini.Dx(), minimap.Styles{
			Base:    st.MinimapBase,
			Added:   st.MinimapAdd,
			Removed: st.MinimapDel,
			Changed: st.MinimapChg,
			Overlay: st.Overlay,
		}))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}
