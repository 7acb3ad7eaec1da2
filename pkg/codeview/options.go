package codeview

import (
	"time"

	"charm.land/lipgloss/v2"

	"github.com/xonecas/codeview/internal/config"
	"github.com/xonecas/codeview/internal/diffview"
	"github.com/xonecas/codeview/internal/highlight"
	"github.com/xonecas/codeview/internal/search"
	"github.com/xonecas/codeview/internal/store"
)

// Options configure a host for its whole lifetime.
type Options struct {
	// Theme is used when Props.Theme is empty.
	Theme    string
	TabWidth int

	Minimap      bool
	MinimapWidth int
	MinOverlay   int
	MirrorDelay  time.Duration

	DiffTimeout     time.Duration
	CollapseContext int
	DisableRevert   bool

	HideLineNumbers bool

	// Prefs persists per-session preferences. Nil keeps them in memory.
	Prefs *store.Prefs
	// Clipboard writes text to the system clipboard. Nil uses atotto/clipboard.
	Clipboard func(string) error
}

// DefaultOptions returns options matching the default configuration.
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default(), nil)
}

// OptionsFromConfig maps a loaded configuration onto host options.
func OptionsFromConfig(cfg *config.Config, prefs *store.Prefs) Options {
	return Options{
		Theme:           cfg.Editor.ActiveTheme(),
		TabWidth:        cfg.Editor.TabWidth,
		Minimap:         cfg.Minimap.On(),
		MinimapWidth:    cfg.Minimap.Width,
		MinOverlay:      cfg.Minimap.MinOverlay,
		MirrorDelay:     cfg.Minimap.Debounce(),
		DiffTimeout:     cfg.Diff.Timeout(),
		CollapseContext: cfg.Diff.CollapseContext,
		DisableRevert:   !cfg.Diff.RevertEnabled(),
		HideLineNumbers: !cfg.Editor.ShowLineNumbers(),
		Prefs:           prefs,
	}
}

// Styles holds every color of the host, derived from one palette.
type Styles struct {
	Diff   diffview.Styles
	Panel  search.PanelStyles
	Header lipgloss.Style
	Title  lipgloss.Style
	Badge  lipgloss.Style
	Status lipgloss.Style
	Error  lipgloss.Style
	Warn   lipgloss.Style
	Hint   lipgloss.Style
	Match  lipgloss.Style
	Active lipgloss.Style
}

// StylesFor derives the host styles from a Chroma theme.
func StylesFor(theme string) Styles {
	p := highlight.ThemePalette(theme)
	c := lipgloss.Color
	bar := lipgloss.NewStyle().Background(c(p.Subtle)).Foreground(c(p.Muted))
	return Styles{
		Diff: diffview.StylesFromPalette(p),
		Panel: search.PanelStyles{
			Bar:      bar,
			Label:    bar.Foreground(c(p.Fg)),
			Toggle:   bar.Foreground(c(p.Dim)),
			ToggleOn: bar.Foreground(c(p.Accent)).Bold(true),
			Count:    bar,
			Error:    bar.Foreground(c(p.Error)),
		},
		Header: bar,
		Title:  bar.Foreground(c(p.Fg)).Bold(true),
		Badge:  bar.Foreground(c(p.Accent)),
		Status: bar,
		Error:  lipgloss.NewStyle().Foreground(c(p.Error)).Bold(true),
		Warn:   lipgloss.NewStyle().Foreground(c(p.Warn)).Bold(true),
		Hint:   bar.Foreground(c(p.Fg)).Italic(true),
		Match:  lipgloss.NewStyle().Background(c(p.MatchBg)).Foreground(c(p.Fg)),
		Active: lipgloss.NewStyle().Background(c(p.ActiveBg)).Foreground(c(p.Fg)).Bold(true),
	}
}
