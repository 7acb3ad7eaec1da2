package language

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
	"mvdan.cc/sh/v3/syntax"
)

// maxSyntaxDiagnostics caps tree walks on badly broken documents.
const maxSyntaxDiagnostics = 20

func syntaxLinter(mode Mode) Linter {
	switch mode {
	case JSON:
		return LinterFunc(lintJSON)
	case YAML:
		return LinterFunc(lintYAML)
	case TOML:
		return LinterFunc(lintTOML)
	case Shell:
		return LinterFunc(lintShell)
	case Go:
		return LinterFunc(lintGo)
	default:
		return nil
	}
}

func lintJSON(doc string) []Diagnostic {
	if strings.TrimSpace(doc) == "" || gjson.Valid(doc) {
		return nil
	}
	d := Diagnostic{Line: 1, Severity: SeverityError, Message: "invalid JSON", Source: "syntax"}
	// gjson only answers valid/invalid; the stdlib decoder knows where.
	var v any
	var serr *json.SyntaxError
	if err := json.Unmarshal([]byte(doc), &v); errors.As(err, &serr) {
		d.Line, d.Col = offsetToLineCol(doc, int(serr.Offset))
		d.Message = serr.Error()
	}
	return []Diagnostic{d}
}

var yamlLineRe = regexp.MustCompile(`line (\d+)`)

func lintYAML(doc string) []Diagnostic {
	if strings.TrimSpace(doc) == "" {
		return nil
	}
	dec := yaml.NewDecoder(strings.NewReader(doc))
	for {
		var n yaml.Node
		err := dec.Decode(&n)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			d := Diagnostic{Line: 1, Severity: SeverityError, Message: strings.TrimPrefix(err.Error(), "yaml: "), Source: "syntax"}
			if m := yamlLineRe.FindStringSubmatch(err.Error()); m != nil {
				d.Line, _ = strconv.Atoi(m[1])
			}
			return []Diagnostic{d}
		}
	}
}

func lintTOML(doc string) []Diagnostic {
	if strings.TrimSpace(doc) == "" {
		return nil
	}
	var v map[string]any
	_, err := toml.Decode(doc, &v)
	if err == nil {
		return nil
	}
	d := Diagnostic{Line: 1, Severity: SeverityError, Message: err.Error(), Source: "syntax"}
	var perr toml.ParseError
	if errors.As(err, &perr) {
		if perr.Position.Line > 0 {
			d.Line = perr.Position.Line
		}
		if perr.Message != "" {
			d.Message = perr.Message
		}
	}
	return []Diagnostic{d}
}

func lintShell(doc string) []Diagnostic {
	_, err := syntax.NewParser().Parse(strings.NewReader(doc), "")
	if err == nil {
		return nil
	}
	d := Diagnostic{Line: 1, Severity: SeverityError, Message: err.Error(), Source: "syntax"}
	var perr syntax.ParseError
	if errors.As(err, &perr) {
		d.Line = int(perr.Pos.Line())
		d.Col = int(perr.Pos.Col())
		d.Message = perr.Text
	}
	return []Diagnostic{d}
}

func lintGo(doc string) []Diagnostic {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(golang.GetLanguage())

	src := []byte(doc)
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil || tree == nil {
		return nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil
	}
	var out []Diagnostic
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if len(out) >= maxSyntaxDiagnostics || n == nil {
			return
		}
		switch {
		case n.IsMissing():
			out = append(out, goDiag(n, "missing "+n.Type()))
			return
		case n.Type() == "ERROR":
			out = append(out, goDiag(n, "syntax error"))
			return
		case !n.HasError():
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return out
}

func goDiag(n *sitter.Node, msg string) Diagnostic {
	p := n.StartPoint()
	return Diagnostic{
		Line:     int(p.Row) + 1,
		Col:      int(p.Column) + 1,
		Severity: SeverityError,
		Message:  msg,
		Source:   "syntax",
	}
}

// offsetToLineCol converts a byte offset into 1-indexed line and column.
func offsetToLineCol(doc string, off int) (int, int) {
	if off > len(doc) {
		off = len(doc)
	}
	if off < 0 {
		off = 0
	}
	prefix := doc[:off]
	line := strings.Count(prefix, "\n") + 1
	col := len([]rune(prefix[strings.LastIndexByte(prefix, '\n')+1:])) + 1
	return line, col
}
