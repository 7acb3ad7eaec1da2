// Package normalize canonicalizes buffer content before it reaches an editor.
package normalize

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"gopkg.in/yaml.v3"

	"github.com/xonecas/codeview/internal/language"
)

// DefaultTabWidth applies when a caller passes a non-positive width.
const DefaultTabWidth = 2

// Buffer is the content, language and editing constraints of one document.
type Buffer struct {
	Content  string
	Mode     language.Mode
	TabWidth int
	ReadOnly bool
}

// Normalized returns a copy of b with its content canonicalized.
func (b Buffer) Normalized() Buffer {
	b.TabWidth = tabWidthOrDefault(b.TabWidth)
	b.Content = Normalize(b.Content, b.Mode, b.TabWidth)
	return b
}

// Normalize re-serializes JSON and YAML with tabWidth-space indentation.
// Content that fails to parse, and every other mode, is returned unchanged.
// Normalize(Normalize(x)) == Normalize(x) for all inputs.
func Normalize(raw string, mode language.Mode, tabWidth int) string {
	tabWidth = tabWidthOrDefault(tabWidth)
	switch mode {
	case language.JSON:
		return normalizeJSON(raw, tabWidth)
	case language.YAML:
		return normalizeYAML(raw, tabWidth)
	default:
		return raw
	}
}

func tabWidthOrDefault(w int) int {
	if w <= 0 {
		return DefaultTabWidth
	}
	return w
}

func normalizeJSON(raw string, tabWidth int) string {
	if strings.TrimSpace(raw) == "" || !gjson.Valid(raw) {
		return raw
	}
	opts := &pretty.Options{
		Width:  80,
		Prefix: "",
		Indent: strings.Repeat(" ", tabWidth),
	}
	out := pretty.PrettyOptions([]byte(raw), opts)
	return string(bytes.TrimRight(out, "\n"))
}

func normalizeYAML(raw string, tabWidth int) string {
	if strings.TrimSpace(raw) == "" {
		return raw
	}
	var docs []*yaml.Node
	dec := yaml.NewDecoder(strings.NewReader(raw))
	for {
		var n yaml.Node
		err := dec.Decode(&n)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return raw
		}
		docs = append(docs, &n)
	}
	if len(docs) == 0 {
		return raw
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(tabWidth)
	for _, d := range docs {
		if err := enc.Encode(d); err != nil {
			return raw
		}
	}
	if err := enc.Close(); err != nil {
		return raw
	}
	// The final newline belongs to the document: a trailing block scalar
	// would change chomping without it.
	return buf.String()
}
