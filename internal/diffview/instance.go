package diffview

import (
	"context"
	"time"
	"unicode/utf8"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/codeview/internal/diff"
	"github.com/xonecas/codeview/internal/language"
	"github.com/xonecas/codeview/internal/normalize"
	"github.com/xonecas/codeview/internal/tui/editor"
)

type diffResultMsg struct {
	inst int
	gen  int
	res  diff.Result
	err  error
}

type diffTimeoutMsg struct {
	inst int
	gen  int
}

type rediffMsg struct {
	inst int
	seq  int
}

// Instance is one live diff editor: two panes, the current chunk list and
// the diff job state. Only the Coordinator creates and destroys instances.
type Instance struct {
	id      int
	session Session
	styles  Styles
	theme   string

	panes    [2]*editor.Model
	caps     [2]language.CapabilitySet
	diags    [2][]language.Diagnostic
	versions [2]int
	scroll   [2]int
	xoff     [2]int
	focus    diff.Side

	result  diff.Result
	markers map[int]int // modified row → chunk index
	gen     int
	pending bool
	waiting bool
	seq     int

	collapse    bool
	collapseCtx int
	reviewTop   int

	ctx       context.Context
	cancel    context.CancelFunc
	destroyed bool
}

func newInstance(id int, p Props, sess Session, st Styles) *Instance {
	ctx, cancel := context.WithCancel(context.Background())
	inst := &Instance{
		id:          id,
		session:     sess,
		styles:      st,
		theme:       p.Theme,
		focus:       diff.Modified,
		collapse:    p.Collapse,
		collapseCtx: p.CollapseContext,
		ctx:         ctx,
		cancel:      cancel,
	}
	if inst.collapseCtx <= 0 {
		inst.collapseCtx = DefaultCollapseContext
	}
	opts := language.Options{DisableLint: p.DisableLint || p.Collapse, DiffMode: true}
	bufs := [2]normalize.Buffer{sess.Original.Normalized(), sess.Modified.Normalized()}
	for _, side := range []diff.Side{diff.Original, diff.Modified} {
		b := bufs[side]
		inst.caps[side] = language.Resolve(b.Mode, opts)
		ed := editor.New()
		ed.ID = side.String()
		ed.ShowLineNumbers = true
		ed.ReadOnly = b.ReadOnly
		ed.Language = inst.caps[side].Syntax
		ed.SyntaxTheme = p.Theme
		ed.TabWidth = b.TabWidth
		ed.LineNumStyle = st.LineNum
		ed.CursorStyle = st.Cursor
		ed.SelectionStyle = st.Selection
		ed.BgColor = st.Base.GetBackground()
		ed.SetValue(b.Content)
		inst.panes[side] = &ed
		inst.versions[side] = ed.Version()
		inst.diags[side] = inst.caps[side].Lint(b.Content)
	}
	inst.panes[inst.focus].Focus()
	log.Debug().Int("instance", id).Str("mode", p.Mode.String()).Bool("read_only", sess.Modified.ReadOnly).Msg("diff session created")
	return inst
}

// ID identifies the instance within its coordinator.
func (i *Instance) ID() int { return i.id }

// Session returns the configuration the instance was created with.
func (i *Instance) Session() Session { return i.session }

// Pane returns one side's editor, or nil once destroyed.
func (i *Instance) Pane(s diff.Side) *editor.Model {
	if i == nil || i.destroyed {
		return nil
	}
	return i.panes[s]
}

// Value returns the live document of one side.
func (i *Instance) Value(s diff.Side) string { return i.panes[s].Value() }

// Focused returns the side holding keyboard focus.
func (i *Instance) Focused() diff.Side { return i.focus }

// Result returns the latest diff result.
func (i *Instance) Result() diff.Result { return i.result }

// Chunks returns the latest chunk list.
func (i *Instance) Chunks() []diff.Chunk { return i.result.Chunks }

// Pending reports whether a diff computation is in flight.
func (i *Instance) Pending() bool { return i.pending }

// Waiting reports whether the in-flight diff passed its timeout.
func (i *Instance) Waiting() bool { return i.waiting }

// Destroyed reports whether the instance was destroyed.
func (i *Instance) Destroyed() bool { return i.destroyed }

// Diagnostics returns the lint findings of one side.
func (i *Instance) Diagnostics(s diff.Side) []language.Diagnostic { return i.diags[s] }

// UnifiedPatch renders the modified document as a patch against the
// original.
func (i *Instance) UnifiedPatch(name string) string {
	return diff.UnifiedPatch(name, i.Value(diff.Original), i.Value(diff.Modified))
}

func (i *Instance) destroy() {
	if i.destroyed {
		return
	}
	i.destroyed = true
	i.cancel()
	log.Debug().Int("instance", i.id).Msg("diff session destroyed")
}

func (i *Instance) setFocus(s diff.Side) {
	i.focus = s
	i.panes[s].Focus()
	i.panes[s.Other()].Blur()
}

// startDiff launches a computation for the current documents together with
// its timeout tick.
func (i *Instance) startDiff() tea.Cmd {
	i.gen++
	i.pending = true
	i.waiting = false
	id, gen := i.id, i.gen
	a, b := i.Value(diff.Original), i.Value(diff.Modified)
	ctx, opts := i.ctx, i.session.options()
	compute := func() tea.Msg {
		res, err := diff.Compute(ctx, a, b, opts)
		return diffResultMsg{inst: id, gen: gen, res: res, err: err}
	}
	timeout := tea.Tick(i.session.Timeout, func(time.Time) tea.Msg {
		return diffTimeoutMsg{inst: id, gen: gen}
	})
	return tea.Batch(compute, timeout)
}

func (i *Instance) scheduleRediff() tea.Cmd {
	i.seq++
	msg := rediffMsg{inst: i.id, seq: i.seq}
	return tea.Tick(rediffDelay, func(time.Time) tea.Msg { return msg })
}

func (i *Instance) applyResult(msg diffResultMsg) bool {
	if msg.gen != i.gen {
		return false
	}
	i.pending = false
	i.waiting = false
	if msg.err != nil {
		log.Debug().Err(msg.err).Int("instance", i.id).Msg("diff computation abandoned")
		return false
	}
	i.result = msg.res
	if msg.res.Limited {
		log.Debug().Int("instance", i.id).Msg("diff exceeded scan limit, reported coarsely")
	}
	i.decorate()
	return true
}

func (i *Instance) timedOut(msg diffTimeoutMsg) bool {
	if msg.gen != i.gen || !i.pending {
		return false
	}
	i.waiting = true
	log.Warn().Int("instance", i.id).Dur("timeout", i.session.Timeout).Msg("diff computation exceeded timeout")
	return true
}

// decorate paints the chunk list onto both panes.
func (i *Instance) decorate() {
	orig, mod := i.panes[diff.Original], i.panes[diff.Modified]
	origBg := make(map[int]lipgloss.Style)
	modBg := make(map[int]lipgloss.Style)
	origMarks := make(map[int]editor.GutterMark)
	modMarks := make(map[int]editor.GutterMark)
	i.markers = make(map[int]int)

	var origHL, modHL []editor.Highlight
	origStarts := lineStarts(orig)
	modStarts := lineStarts(mod)

	for ci, c := range i.result.Chunks {
		for r := c.OrigStart; r < c.OrigEnd; r++ {
			origBg[r] = i.styles.RemovedLine
			origMarks[r] = editor.GutterMark{Glyph: "-", Style: i.styles.GutterDelete}
		}
		switch c.Kind {
		case diff.Delete:
			row := min(c.ModStart, mod.LineCount()-1)
			if _, taken := modMarks[row]; !taken {
				modMarks[row] = editor.GutterMark{Glyph: "▁", Style: i.styles.GutterDelete}
				i.markers[row] = ci
			}
		default:
			glyph, sty := "+", i.styles.GutterAdd
			if c.Kind == diff.Replace {
				glyph, sty = "~", i.styles.GutterChange
			}
			for r := c.ModStart; r < c.ModEnd; r++ {
				modBg[r] = i.styles.AddedLine
				modMarks[r] = editor.GutterMark{Glyph: glyph, Style: sty}
				i.markers[r] = ci
			}
		}
		if c.Kind != diff.Replace {
			continue
		}
		for k := 0; k < min(c.OrigLen(), c.ModLen()); k++ {
			or, mr := c.OrigStart+k, c.ModStart+k
			del, ins := diff.InlineSpans(orig.Line(or), mod.Line(mr))
			for _, s := range del {
				origHL = append(origHL, editor.Highlight{
					Range: editor.Range{Start: origStarts[or] + s.Start, End: origStarts[or] + s.End},
					Style: i.styles.Intraline,
				})
			}
			for _, s := range ins {
				modHL = append(modHL, editor.Highlight{
					Range: editor.Range{Start: modStarts[mr] + s.Start, End: modStarts[mr] + s.End},
					Style: i.styles.Intraline,
				})
			}
		}
	}

	orig.LineBg, mod.LineBg = origBg, modBg
	orig.SetGutterMarkers(origMarks)
	mod.SetGutterMarkers(modMarks)
	orig.SetHighlights(editor.LayerDiff, origHL)
	mod.SetHighlights(editor.LayerDiff, modHL)
}

// revertable returns the chunk a revert at row on side s would undo.
func (i *Instance) revertable(s diff.Side, row int) (diff.Chunk, bool) {
	if !i.session.RevertEnabled {
		return diff.Chunk{}, false
	}
	idx := -1
	if s == diff.Modified {
		if ci, ok := i.markers[row]; ok {
			idx = ci
		}
	} else {
		idx = diff.ChunkAt(i.result.Chunks, diff.Original, row)
	}
	if idx < 0 || idx >= len(i.result.Chunks) {
		return diff.Chunk{}, false
	}
	return i.result.Chunks[idx], true
}

// revert copies the original side of the chunk at row over the modified
// document. The cursor and scroll position are kept.
func (i *Instance) revert(s diff.Side, row int) bool {
	c, ok := i.revertable(s, row)
	if !ok {
		return false
	}
	mod := i.panes[diff.Modified]
	next := diff.Revert(i.Value(diff.Original), mod.Value(), c)
	if next == mod.Value() {
		return false
	}
	crow, ccol := mod.CursorPos()
	top, x := mod.ScrollTop(), mod.XOffset()
	mod.SetValue(next)
	mod.SetCursor(min(crow, mod.LineCount()-1), ccol)
	mod.SetScrollTop(top)
	mod.SetXOffset(x)
	return true
}

func lineStarts(ed *editor.Model) []int {
	n := ed.LineCount()
	starts := make([]int, n)
	off := 0
	for r := 0; r < n; r++ {
		starts[r] = off
		off += utf8.RuneCountInString(ed.Line(r)) + 1
	}
	return starts
}
