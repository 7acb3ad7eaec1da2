package language

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// Schema is the subset of JSON Schema used for editor assistance.
type Schema struct {
	URI         string
	Type        string
	Description string
	Properties  map[string]*Schema
	Order       []string // property names in declaration order
	Required    []string
	Enum        []string // raw JSON literals
	Items       *Schema
	Closed      bool // additionalProperties: false
}

// ParseSchema reads a schema document. ok is false for malformed input, in
// which case callers attach no schema assistance.
func ParseSchema(doc, uri string) (*Schema, bool) {
	if !gjson.Valid(doc) {
		log.Warn().Str("schema", uri).Msg("ignoring malformed validator schema")
		return nil, false
	}
	root := gjson.Parse(doc)
	if !root.IsObject() {
		log.Warn().Str("schema", uri).Msg("validator schema root is not an object")
		return nil, false
	}
	s := parseSchemaNode(root)
	s.URI = uri
	return s, true
}

func parseSchemaNode(r gjson.Result) *Schema {
	s := &Schema{
		Type:        r.Get("type").String(),
		Description: r.Get("description").String(),
	}
	if props := r.Get("properties"); props.IsObject() {
		s.Properties = make(map[string]*Schema)
		props.ForEach(func(k, v gjson.Result) bool {
			name := k.String()
			s.Properties[name] = parseSchemaNode(v)
			s.Order = append(s.Order, name)
			return true
		})
		if s.Type == "" {
			s.Type = "object"
		}
	}
	for _, req := range r.Get("required").Array() {
		s.Required = append(s.Required, req.String())
	}
	for _, e := range r.Get("enum").Array() {
		s.Enum = append(s.Enum, e.Raw)
	}
	if items := r.Get("items"); items.IsObject() {
		s.Items = parseSchemaNode(items)
	}
	if ap := r.Get("additionalProperties"); ap.Exists() && ap.Type == gjson.False {
		s.Closed = true
	}
	return s
}

// Lookup follows a property path; array schemas are entered through Items.
func (s *Schema) Lookup(path []string) *Schema {
	cur := s
	for _, p := range path {
		for cur != nil && cur.Type == "array" && cur.Items != nil {
			cur = cur.Items
		}
		if cur == nil || cur.Properties == nil {
			return nil
		}
		cur = cur.Properties[p]
	}
	for cur != nil && cur.Type == "array" && cur.Items != nil && cur.Properties == nil {
		cur = cur.Items
	}
	return cur
}

// schemaTools implements Linter, Completer and Hover against one schema.
type schemaTools struct {
	schema *Schema
	mode   Mode
}

// Lint validates the document. YAML 1.2 is a superset of JSON, so one yaml.v3
// node tree serves both modes and carries line/column positions.
func (t schemaTools) Lint(doc string) []Diagnostic {
	if strings.TrimSpace(doc) == "" {
		return nil
	}
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(doc), &root); err != nil || len(root.Content) == 0 {
		return nil
	}
	var out []Diagnostic
	validateNode(root.Content[0], t.schema, "", &out)
	return out
}

func validateNode(n *yaml.Node, s *Schema, path string, out *[]Diagnostic) {
	if s == nil || n == nil {
		return
	}
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if s.Type != "" && !typeMatches(n, s.Type) {
		*out = append(*out, schemaDiag(n, SeverityError, fmt.Sprintf("%s: expected %s", displayPath(path), s.Type)))
		return
	}
	if len(s.Enum) > 0 && n.Kind == yaml.ScalarNode && !enumContains(s.Enum, n) {
		*out = append(*out, schemaDiag(n, SeverityError, fmt.Sprintf("%s: value %q not allowed", displayPath(path), n.Value)))
	}
	switch n.Kind {
	case yaml.MappingNode:
		seen := make(map[string]bool)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			seen[k.Value] = true
			child, ok := s.Properties[k.Value]
			if !ok {
				if s.Closed {
					*out = append(*out, schemaDiag(k, SeverityWarning, fmt.Sprintf("unknown property %q", k.Value)))
				}
				continue
			}
			validateNode(v, child, path+"."+k.Value, out)
		}
		for _, req := range s.Required {
			if !seen[req] {
				*out = append(*out, schemaDiag(n, SeverityError, fmt.Sprintf("%s: missing required property %q", displayPath(path), req)))
			}
		}
	case yaml.SequenceNode:
		for i, item := range n.Content {
			validateNode(item, s.Items, fmt.Sprintf("%s[%d]", path, i), out)
		}
	}
}

func typeMatches(n *yaml.Node, typ string) bool {
	switch typ {
	case "object":
		return n.Kind == yaml.MappingNode
	case "array":
		return n.Kind == yaml.SequenceNode
	}
	if n.Kind != yaml.ScalarNode {
		return false
	}
	switch typ {
	case "string":
		return n.Tag == "!!str"
	case "number":
		return n.Tag == "!!int" || n.Tag == "!!float"
	case "integer":
		return n.Tag == "!!int"
	case "boolean":
		return n.Tag == "!!bool"
	case "null":
		return n.Tag == "!!null"
	}
	return true
}

func enumContains(enum []string, n *yaml.Node) bool {
	for _, raw := range enum {
		v := gjson.Parse(raw)
		if v.String() == n.Value {
			return true
		}
	}
	return false
}

func schemaDiag(n *yaml.Node, sev Severity, msg string) Diagnostic {
	return Diagnostic{Line: n.Line, Col: n.Column, Severity: sev, Message: msg, Source: "schema"}
}

func displayPath(p string) string {
	if p == "" {
		return "$"
	}
	return "$" + p
}

// Complete proposes property names of the object enclosing the cursor.
func (t schemaTools) Complete(doc string, line, col int) []Completion {
	lines := strings.Split(doc, "\n")
	if line < 0 || line >= len(lines) {
		return nil
	}
	prefix := WordBefore(lines[line], col)
	s := t.schema.Lookup(enclosingPath(lines, line))
	if s == nil {
		return nil
	}
	var out []Completion
	for _, name := range s.Order {
		if !strings.HasPrefix(name, prefix) || name == prefix {
			continue
		}
		p := s.Properties[name]
		out = append(out, Completion{Label: name, Detail: p.Type})
	}
	return out
}

// Hover documents the property key on the cursor line.
func (t schemaTools) Hover(doc string, line, col int) string {
	lines := strings.Split(doc, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}
	key, _, ok := keyOnLine(lines[line])
	if !ok {
		return ""
	}
	path := append(enclosingPath(lines, line), key)
	s := t.schema.Lookup(path)
	if s == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.Join(path, "."))
	if s.Type != "" {
		b.WriteString(" (" + s.Type + ")")
	}
	if s.Description != "" {
		b.WriteString(": " + s.Description)
	}
	if len(s.Enum) > 0 {
		b.WriteString(" one of " + strings.Join(s.Enum, ", "))
	}
	return b.String()
}

// enclosingPath walks up from line collecting the keys of the containers the
// line is nested in, using indentation. Normalized JSON and YAML are both
// indented by nesting depth.
func enclosingPath(lines []string, line int) []string {
	indent := indentOf(lines[line])
	var path []string
	for i := line - 1; i >= 0 && indent > 0; i-- {
		l := lines[i]
		if strings.TrimSpace(l) == "" {
			continue
		}
		ind := indentOf(l)
		if ind >= indent {
			continue
		}
		if key, opens, ok := keyOnLine(l); ok && opens {
			path = append(path, key)
		}
		indent = ind
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// keyOnLine extracts a mapping key from a JSON ("k": ...) or YAML (k: ...)
// line. opens reports whether the value is a nested container.
func keyOnLine(l string) (key string, opens bool, ok bool) {
	s := strings.TrimSpace(l)
	s = strings.TrimPrefix(s, "- ")
	if strings.HasPrefix(s, `"`) {
		end := strings.Index(s[1:], `"`)
		if end < 0 {
			return "", false, false
		}
		key = s[1 : end+1]
		rest := strings.TrimSpace(s[end+2:])
		if !strings.HasPrefix(rest, ":") {
			return "", false, false
		}
		rest = strings.TrimSpace(rest[1:])
		return key, rest == "{" || rest == "[", true
	}
	idx := strings.Index(s, ":")
	if idx <= 0 {
		return "", false, false
	}
	key = strings.TrimSpace(s[:idx])
	if strings.ContainsAny(key, " {}[],") {
		return "", false, false
	}
	rest := strings.TrimSpace(s[idx+1:])
	return key, rest == "" || rest == "{" || rest == "[", true
}

func indentOf(l string) int {
	n := 0
	for _, r := range l {
		if r != ' ' && r != '\t' {
			break
		}
		n++
	}
	if strings.HasPrefix(strings.TrimLeft(l, " \t"), "- ") {
		n += 2
	}
	return n
}

// WordBefore returns the key-like run ending at rune column col of l.
func WordBefore(l string, col int) string {
	r := []rune(l)
	if col > len(r) {
		col = len(r)
	}
	start := col
	for start > 0 && isKeyRune(r[start-1]) {
		start--
	}
	return string(r[start:col])
}

func isKeyRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-'
}
