// Package search implements the in-editor find/replace state machine and its
// panel.
package search

import (
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// matchTimeout bounds a single regex evaluation against pathological
// patterns.
const matchTimeout = 2 * time.Second

// Query is an immutable search request. Two queries are equal when all fields
// are equal.
type Query struct {
	Pattern       string
	Replacement   string
	CaseSensitive bool
	WholeWord     bool
	Regex         bool
}

// Partial carries the fields to change in a Query; nil fields are kept.
type Partial struct {
	Pattern       *string
	Replacement   *string
	CaseSensitive *bool
	WholeWord     *bool
	Regex         *bool
}

// Merge applies p over q.
func (q Query) Merge(p Partial) Query {
	if p.Pattern != nil {
		q.Pattern = *p.Pattern
	}
	if p.Replacement != nil {
		q.Replacement = *p.Replacement
	}
	if p.CaseSensitive != nil {
		q.CaseSensitive = *p.CaseSensitive
	}
	if p.WholeWord != nil {
		q.WholeWord = *p.WholeWord
	}
	if p.Regex != nil {
		q.Regex = *p.Regex
	}
	return q
}

// Match is one occurrence. Start and End are rune offsets into the document.
type Match struct {
	Start  int
	End    int
	Groups []string // capture groups; Groups[0] is the whole match
}

// Compile builds the matcher for q. An empty pattern compiles to nil.
func (q Query) Compile() (*regexp2.Regexp, error) {
	if q.Pattern == "" {
		return nil, nil
	}
	expr := q.Pattern
	if !q.Regex {
		expr = regexp2.Escape(expr)
	}
	if q.WholeWord {
		expr = `\b(?:` + expr + `)\b`
	}
	opts := regexp2.RegexOptions(regexp2.None)
	if !q.CaseSensitive {
		opts |= regexp2.IgnoreCase
	}
	re, err := regexp2.Compile(expr, opts)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = matchTimeout
	return re, nil
}

// Find scans doc from the start and returns every non-empty match.
func Find(doc string, q Query) ([]Match, error) {
	re, err := q.Compile()
	if err != nil || re == nil {
		return nil, err
	}
	var out []Match
	m, err := re.FindStringMatch(doc)
	for m != nil && err == nil {
		if m.Length > 0 {
			groups := m.Groups()
			g := make([]string, len(groups))
			for i := range groups {
				g[i] = groups[i].String()
			}
			out = append(out, Match{Start: m.Index, End: m.Index + m.Length, Groups: g})
		}
		m, err = re.FindNextMatch(m)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Expand returns the replacement text for m. In regex mode $0-$9 and ${n}
// refer to capture groups and $$ is a literal dollar; otherwise the
// replacement is used verbatim.
func (q Query) Expand(m Match) string {
	if !q.Regex || !strings.Contains(q.Replacement, "$") {
		return q.Replacement
	}
	src := q.Replacement
	var b strings.Builder
	for i := 0; i < len(src); i++ {
		c := src[i]
		if c != '$' || i+1 >= len(src) {
			b.WriteByte(c)
			continue
		}
		next := src[i+1]
		switch {
		case next == '$':
			b.WriteByte('$')
			i++
		case next >= '0' && next <= '9':
			b.WriteString(group(m, int(next-'0')))
			i++
		case next == '{':
			end := strings.IndexByte(src[i+2:], '}')
			n, ok := atoi(src[i+2 : i+2+max(end, 0)])
			if end < 0 || !ok {
				b.WriteByte(c)
				continue
			}
			b.WriteString(group(m, n))
			i += end + 2
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func group(m Match, n int) string {
	if n < len(m.Groups) {
		return m.Groups[n]
	}
	return ""
}

func atoi(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}
