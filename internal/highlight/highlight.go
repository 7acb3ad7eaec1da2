// Package highlight provides syntax highlighting and the editor color palette,
// both derived from a Chroma theme.
package highlight

import (
	"fmt"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/lucasb-eyer/go-colorful"
)

// DefaultTheme is used when no theme or an unknown theme is configured.
const DefaultTheme = "vulcan"

// Known reports whether Chroma ships a theme with this name.
func Known(theme string) bool {
	_, ok := styles.Registry[strings.ToLower(theme)]
	return ok
}

// lexerCache holds coalesced lexers by name. A nil entry marks a name
// Chroma does not know.
var lexerCache sync.Map

func lexer(name string) chroma.Lexer {
	if v, ok := lexerCache.Load(name); ok {
		l, _ := v.(chroma.Lexer)
		return l
	}
	var l chroma.Lexer
	if found := lexers.Get(name); found != nil {
		l = chroma.Coalesce(found)
	}
	lexerCache.Store(name, l)
	return l
}

var formatter = func() chroma.Formatter {
	if f := formatters.Get("terminal16m"); f != nil {
		return f
	}
	return formatters.Fallback
}()

// Highlight returns text as ANSI using the Chroma lexer and theme. bgHex
// ("#rrggbb") is restored after every reset so a token never falls back to
// the terminal background. Unknown lexers and plain text pass through.
func Highlight(text, lexerName, theme, bgHex string) string {
	if lexerName == "" || lexerName == "plaintext" {
		return text
	}
	lex := lexer(lexerName)
	if lex == nil {
		return text
	}
	it, err := lex.Tokenise(nil, text)
	if err != nil {
		return text
	}
	var buf strings.Builder
	if err := formatter.Format(&buf, styles.Get(theme), it); err != nil {
		return text
	}
	out := strings.TrimRight(buf.String(), "\n")

	// terminal16m omits bg on tokens inheriting Background, and each reset
	// clears it.
	bg := bgSeq(bgHex)
	if bg == "" {
		return out
	}
	return bg + strings.ReplaceAll(out, "\x1b[0m", "\x1b[0m"+bg)
}

// bgSeq converts "#rrggbb" to a 24-bit background escape sequence.
func bgSeq(hex string) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return ""
	}
	r, g, b := c.RGB255()
	return fmt.Sprintf("\x1b[48;2;%d;%d;%dm", r, g, b)
}

// ThemeBg returns the background of a Chroma style as "#rrggbb", or ""
// when the style sets none.
func ThemeBg(theme string) string {
	sty := styles.Get(theme)
	if sty == nil {
		return ""
	}
	bg := sty.Get(chroma.Background).Background
	if !bg.IsSet() {
		return ""
	}
	return bg.String()
}
