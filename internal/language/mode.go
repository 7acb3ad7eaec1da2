// Package language maps a content mode to the capability set (syntax
// highlighting, linting, completion, hover) attached to a buffer.
package language

import (
	"path/filepath"
	"strings"
)

// Mode is the content language of a buffer. The set is closed; unknown tags
// resolve to PlainText.
type Mode int

const (
	PlainText Mode = iota
	JSON
	YAML
	TOML
	Go
	Shell
	Markdown
	JavaScript
	Python
	Dockerfile
)

// Default is the mode used when the host does not specify one.
const Default = JSON

type modeInfo struct {
	name    string   // canonical tag
	lexer   string   // Chroma lexer name
	aliases []string // accepted tags besides name
	exts    []string // file extensions (lowercase, with dot)
}

var modeTable = map[Mode]modeInfo{
	PlainText:  {name: "text", lexer: "plaintext", aliases: []string{"plain", "plaintext", "txt"}, exts: []string{".txt", ".log"}},
	JSON:       {name: "json", lexer: "json", aliases: []string{"jsonc"}, exts: []string{".json"}},
	YAML:       {name: "yaml", lexer: "yaml", aliases: []string{"yml"}, exts: []string{".yaml", ".yml"}},
	TOML:       {name: "toml", lexer: "toml", exts: []string{".toml"}},
	Go:         {name: "go", lexer: "go", aliases: []string{"golang"}, exts: []string{".go"}},
	Shell:      {name: "shell", lexer: "bash", aliases: []string{"sh", "bash", "zsh"}, exts: []string{".sh", ".bash", ".zsh"}},
	Markdown:   {name: "markdown", lexer: "markdown", aliases: []string{"md"}, exts: []string{".md", ".markdown"}},
	JavaScript: {name: "javascript", lexer: "javascript", aliases: []string{"js"}, exts: []string{".js", ".mjs", ".cjs"}},
	Python:     {name: "python", lexer: "python", aliases: []string{"py"}, exts: []string{".py"}},
	Dockerfile: {name: "dockerfile", lexer: "docker", aliases: []string{"docker"}, exts: []string{".dockerfile"}},
}

var tagIndex = func() map[string]Mode {
	idx := make(map[string]Mode)
	for m, info := range modeTable {
		idx[info.name] = m
		for _, a := range info.aliases {
			idx[a] = m
		}
	}
	return idx
}()

// ParseMode returns the mode for a tag such as "json" or "yml".
// Unknown tags return PlainText.
func ParseMode(tag string) Mode {
	if m, ok := tagIndex[strings.ToLower(strings.TrimSpace(tag))]; ok {
		return m
	}
	return PlainText
}

// DetectMode returns the mode for a file path based on its extension or
// well-known file name.
func DetectMode(path string) Mode {
	ext := strings.ToLower(filepath.Ext(path))
	for m, info := range modeTable {
		for _, e := range info.exts {
			if e == ext {
				return m
			}
		}
	}
	switch strings.ToLower(filepath.Base(path)) {
	case "dockerfile", "containerfile":
		return Dockerfile
	}
	return PlainText
}

// String returns the canonical tag.
func (m Mode) String() string {
	if info, ok := modeTable[m]; ok {
		return info.name
	}
	return modeTable[PlainText].name
}

// Lexer returns the Chroma lexer name for the mode.
func (m Mode) Lexer() string {
	if info, ok := modeTable[m]; ok {
		return info.lexer
	}
	return modeTable[PlainText].lexer
}

// Structured reports whether the buffer normalizer re-serializes content of
// this mode.
func (m Mode) Structured() bool {
	return m == JSON || m == YAML
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown tags decode to
// PlainText.
func (m *Mode) UnmarshalText(b []byte) error {
	*m = ParseMode(string(b))
	return nil
}
