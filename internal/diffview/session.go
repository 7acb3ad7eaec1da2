// Package diffview coordinates the two-pane diff editor: instance lifecycle,
// change listeners, debounced re-diffing, revert actions, scroll linking and
// the minimap shadow.
package diffview

import (
	"time"

	"charm.land/lipgloss/v2"

	"github.com/xonecas/codeview/internal/diff"
	"github.com/xonecas/codeview/internal/highlight"
	"github.com/xonecas/codeview/internal/language"
	"github.com/xonecas/codeview/internal/normalize"
)

const (
	DefaultTimeout         = 5 * time.Second
	DefaultCollapseContext = 3
	rediffDelay            = 250 * time.Millisecond

	// WaitingText replaces the panes while a diff runs past its timeout.
	WaitingText = "Calculating diff, please wait…"
)

// Props is the externally supplied state of a diff editor.
type Props struct {
	Original string
	Modified string
	Mode     language.Mode
	TabWidth int
	Theme    string

	ReadOnly         bool
	OriginalReadOnly bool
	DisableSearch    bool
	DisableLint      bool
	DisableRevert    bool
	Collapse         bool

	Timeout         time.Duration
	ScanLimit       int
	CollapseContext int

	OnOriginalChange func(string)
	OnModifiedChange func(string)
}

// Session is the configuration of one live instance.
type Session struct {
	Original      normalize.Buffer
	Modified      normalize.Buffer
	RevertEnabled bool
	ScanLimit     int
	Timeout       time.Duration
}

// fingerprint holds the props that cannot change on a live instance.
type fingerprint struct {
	readOnly         bool
	originalReadOnly bool
	tabWidth         int
	disableSearch    bool
	disableLint      bool
	disableRevert    bool
	collapse         bool
	theme            string
	mode             language.Mode
}

func (p Props) fingerprint() fingerprint {
	return fingerprint{
		readOnly:         p.ReadOnly || p.Collapse,
		originalReadOnly: p.OriginalReadOnly,
		tabWidth:         p.tabWidth(),
		disableSearch:    p.DisableSearch || p.Collapse,
		disableLint:      p.DisableLint || p.Collapse,
		disableRevert:    p.DisableRevert,
		collapse:         p.Collapse,
		theme:            p.Theme,
		mode:             p.Mode,
	}
}

func (p Props) tabWidth() int {
	if p.TabWidth <= 0 {
		return normalize.DefaultTabWidth
	}
	return p.TabWidth
}

// session builds the instance configuration from props and the documents to
// start with.
func (p Props) session(orig, mod string) Session {
	ro := p.ReadOnly || p.Collapse
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return Session{
		Original: normalize.Buffer{
			Content:  orig,
			Mode:     p.Mode,
			TabWidth: p.tabWidth(),
			ReadOnly: ro || p.OriginalReadOnly,
		},
		Modified: normalize.Buffer{
			Content:  mod,
			Mode:     p.Mode,
			TabWidth: p.tabWidth(),
			ReadOnly: ro,
		},
		RevertEnabled: !ro && !p.DisableRevert,
		ScanLimit:     p.ScanLimit,
		Timeout:       timeout,
	}
}

func (s Session) options() diff.Options {
	return diff.Options{ScanLimit: s.ScanLimit, Timeout: s.Timeout}
}

// Styles color the diff panes.
type Styles struct {
	Base         lipgloss.Style
	LineNum      lipgloss.Style
	Cursor       lipgloss.Style
	Selection    lipgloss.Style
	AddedLine    lipgloss.Style
	RemovedLine  lipgloss.Style
	Intraline    lipgloss.Style
	GutterAdd    lipgloss.Style
	GutterDelete lipgloss.Style
	GutterChange lipgloss.Style
	Divider      lipgloss.Style
	Fold         lipgloss.Style
	Waiting      lipgloss.Style
	MinimapAdd   lipgloss.Style
	MinimapDel   lipgloss.Style
	MinimapChg   lipgloss.Style
	MinimapBase  lipgloss.Style
	Overlay      lipgloss.Style
}

// StylesFromPalette derives pane styles from a theme palette.
func StylesFromPalette(p highlight.Palette) Styles {
	c := lipgloss.Color
	base := lipgloss.NewStyle().Background(c(p.Bg)).Foreground(c(p.Fg))
	return Styles{
		Base:         base,
		LineNum:      lipgloss.NewStyle().Foreground(c(p.Dim)),
		Cursor:       lipgloss.NewStyle().Foreground(c(p.Fg)),
		Selection:    lipgloss.NewStyle().Background(c(p.SelectBg)).Foreground(c(p.Fg)),
		AddedLine:    lipgloss.NewStyle().Background(c(p.AddedBg)),
		RemovedLine:  lipgloss.NewStyle().Background(c(p.RemovedBg)),
		Intraline:    lipgloss.NewStyle().Background(c(p.ChangedBg)).Foreground(c(p.Fg)),
		GutterAdd:    lipgloss.NewStyle().Foreground(c(p.AddedFg)).Bold(true),
		GutterDelete: lipgloss.NewStyle().Foreground(c(p.RemovedFg)).Bold(true),
		GutterChange: lipgloss.NewStyle().Foreground(c(p.Warn)).Bold(true),
		Divider:      lipgloss.NewStyle().Background(c(p.Bg)).Foreground(c(p.Border)),
		Fold:         lipgloss.NewStyle().Background(c(p.Subtle)).Foreground(c(p.Muted)),
		Waiting:      base.Foreground(c(p.Muted)),
		MinimapAdd:   lipgloss.NewStyle().Background(c(p.Bg)).Foreground(c(p.AddedFg)),
		MinimapDel:   lipgloss.NewStyle().Background(c(p.Bg)).Foreground(c(p.RemovedFg)),
		MinimapChg:   lipgloss.NewStyle().Background(c(p.Bg)).Foreground(c(p.Warn)),
		MinimapBase:  lipgloss.NewStyle().Background(c(p.Bg)).Foreground(c(p.Dim)),
		Overlay:      lipgloss.NewStyle().Background(c(p.OverlayBg)),
	}
}
