package codeview

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/codeview/internal/language"
	"github.com/xonecas/codeview/internal/normalize"
	"github.com/xonecas/codeview/internal/tui/editor"
)

// singleConfig holds the settings a single pane is built from.
type singleConfig struct {
	mode        language.Mode
	tabWidth    int
	theme       string
	readOnly    bool
	schema      string
	schemaURI   string
	disableLint bool
	lineNumbers bool
}

// single is the one-pane editor.
type single struct {
	pane    *editor.Model
	caps    language.CapabilitySet
	diags   []language.Diagnostic
	cfg     singleConfig
	version int
	styles  Styles
}

func newSingle(cfg singleConfig, content string, st Styles) *single {
	ed := editor.New()
	ed.ID = "single"
	s := &single{pane: &ed, styles: st}
	s.configure(cfg)
	ed.SetValue(normalize.Normalize(content, cfg.mode, cfg.tabWidth))
	ed.Focus()
	s.relint()
	return s
}

// configure applies cfg to the live pane without touching its content.
func (s *single) configure(cfg singleConfig) {
	s.cfg = cfg
	s.caps = language.Resolve(cfg.mode, language.Options{
		Schema:      cfg.schema,
		SchemaURI:   cfg.schemaURI,
		DisableLint: cfg.disableLint,
	})
	ed := s.pane
	ed.ShowLineNumbers = cfg.lineNumbers
	ed.ReadOnly = cfg.readOnly
	ed.Language = s.caps.Syntax
	ed.SyntaxTheme = cfg.theme
	ed.TabWidth = cfg.tabWidth
	ed.LineNumStyle = s.styles.Diff.LineNum
	ed.CursorStyle = s.styles.Diff.Cursor
	ed.SelectionStyle = s.styles.Diff.Selection
	ed.BgColor = s.styles.Diff.Base.GetBackground()
	log.Debug().
		Str("mode", cfg.mode.String()).
		Bool("read_only", cfg.readOnly).
		Bool("schema", s.caps.HasSchema()).
		Msg("single editor configured")
}

// setContent replaces the document with normalized content.
func (s *single) setContent(content string) {
	s.pane.SetValue(normalize.Normalize(content, s.cfg.mode, s.cfg.tabWidth))
	s.relint()
}

func (s *single) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	*s.pane, cmd = s.pane.Update(msg)
	return cmd
}

// changed reports whether the document changed since the last call.
func (s *single) changed() bool {
	if s.pane.Version() == s.version {
		return false
	}
	s.relint()
	return true
}

func (s *single) relint() {
	s.version = s.pane.Version()
	s.diags = s.caps.Lint(s.pane.Value())
	marks := make(map[int]editor.GutterMark, len(s.diags))
	for _, d := range s.diags {
		row := d.Line - 1
		if d.Severity == language.SeverityError {
			marks[row] = editor.GutterMark{Glyph: "●", Style: s.styles.Error}
		} else if _, taken := marks[row]; !taken {
			marks[row] = editor.GutterMark{Glyph: "▲", Style: s.styles.Warn}
		}
	}
	s.pane.SetGutterMarkers(marks)
}

// diagnosticAt returns the first diagnostic on the cursor line.
func (s *single) diagnosticAt() (language.Diagnostic, bool) {
	row, _ := s.pane.CursorPos()
	for _, d := range s.diags {
		if d.Line-1 == row {
			return d, true
		}
	}
	return language.Diagnostic{}, false
}

// hover returns schema documentation for the cursor line.
func (s *single) hover() string {
	if s.caps.Hover == nil {
		return ""
	}
	row, col := s.pane.CursorPos()
	return s.caps.Hover.Hover(s.pane.Value(), row, col)
}

// completions returns the schema completions at the cursor.
func (s *single) completions() []language.Completion {
	if s.caps.Completer == nil {
		return nil
	}
	row, col := s.pane.CursorPos()
	return s.caps.Completer.Complete(s.pane.Value(), row, col)
}

// complete inserts the rest of the first completion.
func (s *single) complete() bool {
	cs := s.completions()
	if len(cs) == 0 || s.pane.ReadOnly {
		return false
	}
	row, col := s.pane.CursorPos()
	prefix := language.WordBefore(s.pane.Line(row), col)
	rest := strings.TrimPrefix(cs[0].Label, prefix)
	if rest == "" {
		return false
	}
	s.pane.InsertText(rest)
	return true
}
