package minimap

import (
	"math"
	"sync/atomic"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/codeview/internal/diff"
)

const (
	DefaultMinOverlay = 2
	DefaultDebounce   = 300 * time.Millisecond
	DefaultWidth      = 2
)

var projectorIDs atomic.Int64

// Viewport is the overlay marking the visible part of the document, in cell
// rows of the minimap column.
type Viewport struct {
	Top     float64
	Height  float64
	Scale   float64
	Visible bool
}

// Metrics are the scroll dimensions of the primary pane, in lines.
type Metrics struct {
	ScrollTop    int
	ClientHeight int
	ScrollHeight int
}

// MirrorMsg delivers a debounced content mirror.
type MirrorMsg struct {
	id      int64
	seq     uint64
	side    diff.Side
	content string
}

// Options configure a Projector.
type Options struct {
	MinOverlay int
	Debounce   time.Duration
}

// Projector owns the shadow session and the overlay geometry.
type Projector struct {
	id         int64
	shadow     *Shadow
	chunks     []diff.Chunk
	minOverlay float64
	debounce   time.Duration

	container int
	metrics   Metrics
	vp        Viewport

	seq     [2]uint64
	version uint64

	dragging    bool
	dragStartY  int
	dragStartST int

	destroyed bool
}

// New creates a projector whose shadow starts with orig and mod.
func New(orig, mod string, opts Options) *Projector {
	if opts.MinOverlay <= 0 {
		opts.MinOverlay = DefaultMinOverlay
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	p := &Projector{
		id:         projectorIDs.Add(1),
		shadow:     newShadow(orig, mod),
		minOverlay: float64(opts.MinOverlay),
		debounce:   opts.Debounce,
	}
	log.Debug().Int64("projector", p.id).Msg("minimap shadow created")
	return p
}

// Destroy detaches the projector. Every later call is a no-op.
func (p *Projector) Destroy() {
	if p == nil || p.destroyed {
		return
	}
	p.destroyed = true
	p.dragging = false
	log.Debug().Int64("projector", p.id).Msg("minimap shadow destroyed")
}

// Destroyed reports whether Destroy was called.
func (p *Projector) Destroyed() bool { return p == nil || p.destroyed }

// Shadow returns the shadow session.
func (p *Projector) Shadow() *Shadow { return p.shadow }

// Version returns the annotation version of the last applied patch.
func (p *Projector) Version() uint64 { return p.shadow.Version() }

// Viewport returns the current overlay.
func (p *Projector) Viewport() Viewport { return p.vp }

// Dragging reports whether an overlay drag is in progress.
func (p *Projector) Dragging() bool { return !p.Destroyed() && p.dragging }

// SetChunks sets the chunks used to color rows.
func (p *Projector) SetChunks(cs []diff.Chunk) {
	if p.Destroyed() {
		return
	}
	p.chunks = cs
}

// Apply writes one side of the shadow with a fresh annotation.
func (p *Projector) Apply(side diff.Side, content string) {
	if p.Destroyed() {
		return
	}
	p.version++
	p.shadow.apply(Patch{Side: side, Content: content, Annotation: &Annotation{Version: p.version}})
	p.recompute()
}

// Mirror schedules content to be applied after the debounce delay. Only the
// latest pending mirror per side is applied.
func (p *Projector) Mirror(side diff.Side, content string) tea.Cmd {
	if p.Destroyed() {
		return nil
	}
	p.seq[side]++
	msg := MirrorMsg{id: p.id, seq: p.seq[side], side: side, content: content}
	return tea.Tick(p.debounce, func(time.Time) tea.Msg { return msg })
}

// HandleMirror applies msg when it is the latest mirror for this projector.
func (p *Projector) HandleMirror(msg MirrorMsg) bool {
	if p.Destroyed() || msg.id != p.id || msg.seq != p.seq[msg.side] {
		return false
	}
	p.Apply(msg.side, msg.content)
	return true
}

// SetContainer sets the column height in rows.
func (p *Projector) SetContainer(rows int) {
	if p.Destroyed() {
		return
	}
	p.container = max(rows, 0)
	p.recompute()
}

// UpdateOverlay recomputes the overlay for the primary pane's metrics.
func (p *Projector) UpdateOverlay(m Metrics) {
	if p.Destroyed() {
		return
	}
	p.metrics = m
	p.recompute()
}

func (p *Projector) shadowLines() int {
	return max(len(p.shadow.lines[diff.Modified]), 1)
}

func (p *Projector) minimapHeight() float64 {
	return float64(p.shadowLines()) * p.vp.Scale
}

func (p *Projector) recompute() {
	c := float64(p.container)
	p.vp.Scale = math.Min(c/float64(p.shadowLines()), 1)
	if c < p.minOverlay {
		p.vp = Viewport{Scale: p.vp.Scale}
		return
	}
	scroll := float64(max(p.metrics.ScrollHeight, 1))
	mh := p.minimapHeight()
	h := math.Max(p.minOverlay, float64(p.metrics.ClientHeight)/scroll*mh)
	h = math.Min(h, c)
	top := float64(p.metrics.ScrollTop) / scroll * mh
	top = math.Max(0, math.Min(top, c-h))
	p.vp.Top, p.vp.Height, p.vp.Visible = top, h, true
}

func (p *Projector) onOverlay(y int) bool {
	fy := float64(y)
	return p.vp.Visible && fy >= math.Floor(p.vp.Top) && fy < p.vp.Top+p.vp.Height
}

func (p *Projector) maxScroll() int {
	return max(p.metrics.ScrollHeight-p.metrics.ClientHeight, 0)
}

func (p *Projector) clampScroll(v int) int {
	return max(0, min(v, p.maxScroll()))
}

// Press handles a left press at row y. On the overlay it starts a drag;
// elsewhere it returns the scroll top that centers the clicked proportion.
func (p *Projector) Press(y int) (scrollTop int, ok bool) {
	if p.Destroyed() || !p.vp.Visible {
		return 0, false
	}
	if p.onOverlay(y) {
		p.dragging = true
		p.dragStartY = y
		p.dragStartST = p.metrics.ScrollTop
		return 0, false
	}
	mh := p.minimapHeight()
	if mh <= 0 {
		return 0, false
	}
	frac := math.Min(float64(y)/mh, 1)
	target := frac*float64(p.metrics.ScrollHeight) - float64(p.metrics.ClientHeight)/2
	return p.clampScroll(int(math.Round(target))), true
}

// Motion converts drag movement into a scroll top.
func (p *Projector) Motion(y int) (scrollTop int, ok bool) {
	if !p.Dragging() {
		return 0, false
	}
	mh := p.minimapHeight()
	if mh <= 0 {
		return 0, false
	}
	ratio := float64(p.metrics.ScrollHeight-p.metrics.ClientHeight) / mh
	delta := float64(y-p.dragStartY) * ratio
	return p.clampScroll(p.dragStartST + int(math.Round(delta))), true
}

// Release ends a drag.
func (p *Projector) Release() {
	if p.Destroyed() {
		return
	}
	p.dragging = false
}

// HandleMouse dispatches a mouse message in column-local coordinates and
// returns the requested scroll top.
func (p *Projector) HandleMouse(msg tea.MouseMsg) (scrollTop int, ok bool) {
	switch ev := msg.(type) {
	case tea.MouseClickMsg:
		if ev.Button == tea.MouseLeft {
			return p.Press(ev.Y)
		}
	case tea.MouseMotionMsg:
		return p.Motion(ev.Y)
	case tea.MouseReleaseMsg:
		p.Release()
	}
	return 0, false
}
