package highlight

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestHighlightPlainTextUnchanged(t *testing.T) {
	for _, lexer := range []string{"", "plaintext", "no-such-lexer"} {
		if got := Highlight("a: 1", lexer, DefaultTheme, "#000000"); got != "a: 1" {
			t.Errorf("lexer %q: got %q", lexer, got)
		}
	}
}

func TestHighlightPreservesText(t *testing.T) {
	src := "{\n  \"a\": [1, true]\n}"
	out := Highlight(src, "json", DefaultTheme, ThemeBg(DefaultTheme))
	if got := ansi.Strip(out); got != src {
		t.Errorf("stripped output = %q, want %q", got, src)
	}
	if !strings.HasPrefix(out, bgSeq(ThemeBg(DefaultTheme))) {
		t.Error("output should open with the theme background")
	}
}

func TestBgSeq(t *testing.T) {
	if got := bgSeq("#ff0080"); got != "\x1b[48;2;255;0;128m" {
		t.Errorf("got %q", got)
	}
	if got := bgSeq("red"); got != "" {
		t.Errorf("invalid hex should give empty sequence, got %q", got)
	}
}

func TestThemePaletteDeterministic(t *testing.T) {
	a := ThemePalette(DefaultTheme)
	b := ThemePalette(DefaultTheme)
	if a != b {
		t.Fatal("palette differs between calls")
	}
	for name, c := range map[string]string{
		"Bg": a.Bg, "Fg": a.Fg, "AddedBg": a.AddedBg, "RemovedBg": a.RemovedBg,
		"MatchBg": a.MatchBg, "ActiveBg": a.ActiveBg, "OverlayBg": a.OverlayBg,
	} {
		if len(c) != 7 || !strings.HasPrefix(c, "#") {
			t.Errorf("%s = %q, want #rrggbb", name, c)
		}
	}
	if a.AddedBg == a.RemovedBg {
		t.Error("added and removed backgrounds should differ")
	}
}

func TestThemePaletteUnknownTheme(t *testing.T) {
	p := ThemePalette("definitely-not-a-theme")
	if p.Bg != fallbackBg || p.Accent != fallbackAccent {
		t.Errorf("got %+v", p)
	}
}

func TestBlend(t *testing.T) {
	if got := blend("#000000", "#ffffff", 0.5); got != "#808080" {
		t.Errorf("got %q, want #808080", got)
	}
	if got := blend("#102030", "#102030", 0.3); got != "#102030" {
		t.Errorf("got %q, want #102030", got)
	}
}

func TestKnown(t *testing.T) {
	if !Known(DefaultTheme) {
		t.Errorf("%q should be known", DefaultTheme)
	}
	if Known("definitely-not-a-theme") {
		t.Error("unexpected known theme")
	}
}
