package highlight

import (
	"slices"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/lucasb-eyer/go-colorful"
)

// Palette holds editor colors derived deterministically from a Chroma theme.
// Grays are blends from bg toward fg; the accent is the most saturated token
// color; error comes from the Error token. Diff and match backgrounds are
// fixed hues blended into the theme background.
type Palette struct {
	Bg     string // theme background
	Fg     string // theme foreground
	Border string // dividers, minimap track
	Subtle string // folds, current line
	Dim    string // gutter numbers
	Muted  string // status text
	Accent string
	Error  string
	Warn   string

	AddedFg   string
	RemovedFg string
	AddedBg   string
	RemovedBg string
	ChangedBg string // intraline spans
	MatchBg   string
	ActiveBg  string // active search match
	SelectBg  string
	OverlayBg string // minimap viewport overlay
}

const (
	addedHue   = "#2ea043"
	removedHue = "#f85149"
	changedHue = "#d29922"
	matchHue   = "#e3b341"

	fallbackBg     = "#000000"
	fallbackFg     = "#c8c8c8"
	fallbackAccent = "#00dfff"
	fallbackError  = "#932e2e"
)

// ThemePalette derives the UI palette for a Chroma theme. Missing themes
// and missing entries fall back to fixed defaults.
func ThemePalette(theme string) Palette {
	sty := styles.Get(theme)
	if sty == nil {
		return derive(fallbackBg, fallbackFg, fallbackAccent, fallbackError)
	}
	entry := sty.Get(chroma.Background)
	bg, fg := fallbackBg, fallbackFg
	if entry.Background.IsSet() {
		bg = entry.Background.String()
	}
	if entry.Colour.IsSet() {
		fg = entry.Colour.String()
	}

	errColor := blend(bg, fg, 0.45)
	if e := sty.Get(chroma.Error); e.Colour.IsSet() {
		errColor = blend(bg, e.Colour.String(), 0.45)
	}
	return derive(bg, fg, mostSaturated(sty, fg), errColor)
}

func derive(bg, fg, accent, errColor string) Palette {
	return Palette{
		Bg:     bg,
		Fg:     fg,
		Border: blend(bg, fg, 0.10),
		Subtle: blend(bg, fg, 0.07),
		Dim:    blend(bg, fg, 0.25),
		Muted:  blend(bg, fg, 0.45),
		Accent: accent,
		Error:  errColor,
		Warn:   blend(bg, changedHue, 0.75),

		AddedFg:   blend(bg, addedHue, 0.85),
		RemovedFg: blend(bg, removedHue, 0.85),
		AddedBg:   blend(bg, addedHue, 0.22),
		RemovedBg: blend(bg, removedHue, 0.22),
		ChangedBg: blend(bg, changedHue, 0.35),
		MatchBg:   blend(bg, matchHue, 0.30),
		ActiveBg:  blend(bg, matchHue, 0.60),
		SelectBg:  blend(bg, accent, 0.30),
		OverlayBg: blend(bg, fg, 0.20),
	}
}

// mostSaturated returns the token foreground with the highest HSV
// saturation.
func mostSaturated(sty *chroma.Style, fallback string) string {
	best, bestSat := fallback, 0.0
	types := sty.Types()
	slices.Sort(types)
	for _, tt := range types {
		e := sty.Get(tt)
		if !e.Colour.IsSet() {
			continue
		}
		hex := e.Colour.String()
		c, err := colorful.Hex(hex)
		if err != nil {
			continue
		}
		if _, s, v := c.Hsv(); v > 0 && s > bestSat {
			best, bestSat = hex, s
		}
	}
	return best
}

// blend mixes a toward b by t in RGB space. Invalid input counts as black.
func blend(a, b string, t float64) string {
	ca, err := colorful.Hex(a)
	if err != nil {
		ca = colorful.Color{}
	}
	cb, err := colorful.Hex(b)
	if err != nil {
		cb = colorful.Color{}
	}
	return ca.BlendRgb(cb, t).Clamped().Hex()
}
