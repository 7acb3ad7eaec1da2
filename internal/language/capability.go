package language

import (
	"sort"
	"strings"
)

// Severity of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "error"
	}
}

// Diagnostic is one lint finding. Line and Col are 1-indexed; Col is 0 when
// unknown.
type Diagnostic struct {
	Line     int
	Col      int
	Severity Severity
	Message  string
	Source   string // "syntax" or "schema"
}

// Linter checks a document and returns diagnostics. Linters never fail:
// problems they cannot analyse produce no diagnostics.
type Linter interface {
	Lint(doc string) []Diagnostic
}

// LinterFunc adapts a function to Linter.
type LinterFunc func(doc string) []Diagnostic

func (f LinterFunc) Lint(doc string) []Diagnostic { return f(doc) }

// Completion is a single autocomplete suggestion.
type Completion struct {
	Label  string
	Detail string
}

// Completer proposes completions for the word ending at (line, col).
// line and col are 0-indexed rune positions.
type Completer interface {
	Complete(doc string, line, col int) []Completion
}

// Hover returns documentation for the position, or "" when none applies.
type Hover interface {
	Hover(doc string, line, col int) string
}

// CapabilitySet bundles the features attached to a buffer.
type CapabilitySet struct {
	Mode      Mode
	Syntax    string // Chroma lexer name
	Linters   []Linter
	Completer Completer // nil when no schema assistance
	Hover     Hover     // nil when no schema assistance
	SchemaURI string
}

// Options narrows what Resolve attaches.
type Options struct {
	Schema      string // JSON schema document; empty for none
	SchemaURI   string
	DisableLint bool
	DiffMode    bool // schema tooling is never attached in diff mode
}

// Resolve returns the capability set for mode. It never fails: unknown modes
// get the plain-text set, malformed schemas get no schema assistance.
func Resolve(mode Mode, opts Options) CapabilitySet {
	if _, ok := modeTable[mode]; !ok {
		mode = PlainText
	}
	cs := CapabilitySet{
		Mode:   mode,
		Syntax: mode.Lexer(),
	}
	if !opts.DisableLint {
		if l := syntaxLinter(mode); l != nil {
			cs.Linters = append(cs.Linters, l)
		}
	}

	if strings.TrimSpace(opts.Schema) == "" || opts.DiffMode || !schemaCapable(mode) {
		return cs
	}
	sch, ok := ParseSchema(opts.Schema, opts.SchemaURI)
	if !ok {
		return cs
	}
	tools := schemaTools{schema: sch, mode: mode}
	if !opts.DisableLint {
		cs.Linters = append(cs.Linters, tools)
	}
	cs.Completer = tools
	cs.Hover = tools
	cs.SchemaURI = opts.SchemaURI
	return cs
}

// Lint runs every linter and returns diagnostics ordered by position.
func (cs CapabilitySet) Lint(doc string) []Diagnostic {
	var out []Diagnostic
	for _, l := range cs.Linters {
		out = append(out, l.Lint(doc)...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].Col < out[j].Col
	})
	return out
}

// HasSchema reports whether schema tooling is attached.
func (cs CapabilitySet) HasSchema() bool { return cs.Completer != nil }

func schemaCapable(mode Mode) bool {
	return mode == JSON || mode == YAML
}
