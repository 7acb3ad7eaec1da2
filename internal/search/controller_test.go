package search

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTarget struct {
	doc      []rune
	dead     bool
	caret    int
	matches  []Match
	active   int
	selected []Match
	revealed []int
	edits    int
}

func newFake(doc string) *fakeTarget { return &fakeTarget{doc: []rune(doc), active: -1} }

func (f *fakeTarget) Value() string { return string(f.doc) }
func (f *fakeTarget) IsLive() bool  { return !f.dead }
func (f *fakeTarget) Caret() int    { return f.caret }

func (f *fakeTarget) SetMatches(ms []Match, active int) {
	f.matches = ms
	f.active = active
}

func (f *fakeTarget) SelectRanges(ms []Match) { f.selected = ms }

func (f *fakeTarget) ReplaceRanges(ms []Match, repl []string) bool {
	type edit struct {
		m Match
		s string
	}
	es := make([]edit, len(ms))
	for i := range ms {
		es[i] = edit{ms[i], repl[i]}
	}
	sort.Slice(es, func(i, j int) bool { return es[i].m.Start > es[j].m.Start })
	before := string(f.doc)
	for _, e := range es {
		out := append([]rune{}, f.doc[:e.m.Start]...)
		out = append(out, []rune(e.s)...)
		f.doc = append(out, f.doc[e.m.End:]...)
	}
	if string(f.doc) == before {
		return false
	}
	f.edits++
	return true
}

func (f *fakeTarget) RevealOffset(off int) { f.revealed = append(f.revealed, off) }

func ptr[T any](v T) *T { return &v }

func openController(t *testing.T, doc, pattern string) (*Controller, *fakeTarget) {
	t.Helper()
	f := newFake(doc)
	c := NewController()
	c.Bind(f)
	c.Open()
	c.SetQuery(Partial{Pattern: ptr(pattern)})
	require.True(t, c.IsOpen())
	return c, f
}

func TestFindNextWraps(t *testing.T) {
	c, f := openController(t, "ab ab ab", "ab")
	require.Len(t, f.matches, 3)
	assert.Equal(t, Cursor{Total: 3, Current: -1}, c.Cursor())

	var got []int
	for i := 0; i < 4; i++ {
		c.FindNext()
		got = append(got, c.Cursor().Current)
	}
	assert.Equal(t, []int{0, 1, 2, 0}, got)
	assert.Equal(t, 0, f.active)
	assert.Equal(t, []int{0, 3, 6, 0}, f.revealed)
}

func TestFindPreviousWraps(t *testing.T) {
	c, _ := openController(t, "ab ab ab", "ab")
	c.FindPrevious()
	assert.Equal(t, 2, c.Cursor().Current)
	c.FindPrevious()
	assert.Equal(t, 1, c.Cursor().Current)
}

func TestFindNextStartsAtCaret(t *testing.T) {
	f := newFake("x1 x2 x3")
	f.caret = 4
	c := NewController()
	c.Bind(f)
	c.Open()
	c.SetQuery(Partial{Pattern: ptr("x")})
	c.FindNext()
	assert.Equal(t, 2, c.Cursor().Current)
}

func TestQueryChangeResetsCursor(t *testing.T) {
	c, _ := openController(t, "foo Foo FOO", "foo")
	assert.Equal(t, 3, c.Cursor().Total)
	c.FindNext()
	c.SetQuery(Partial{CaseSensitive: ptr(true)})
	assert.Equal(t, Cursor{Total: 1, Current: -1}, c.Cursor())
}

func TestUnchangedQueryIsNoop(t *testing.T) {
	c, _ := openController(t, "aaa", "a")
	var actions []Action
	c.OnAction = func(a Action) { actions = append(actions, a) }
	c.FindNext()
	c.SetQuery(Partial{Pattern: ptr("a")})
	assert.Equal(t, 0, c.Cursor().Current)
	assert.Equal(t, []Action{ActionNext}, actions)
}

func TestReplaceAllConverges(t *testing.T) {
	c, f := openController(t, "cat cat dog cat", "cat")
	c.SetQuery(Partial{Replacement: ptr("bird")})
	c.ReplaceAll()
	assert.Equal(t, "bird bird dog bird", f.Value())
	assert.Equal(t, 1, f.edits)
	assert.Equal(t, 0, c.Cursor().Total)

	c.ReplaceAll()
	assert.Equal(t, 1, f.edits)
}

func TestReplaceAllRegexGroups(t *testing.T) {
	c, f := openController(t, "a=1, b=2", `(\w)=(\d)`)
	c.SetQuery(Partial{Regex: ptr(true)})
	c.SetQuery(Partial{Replacement: ptr("$2:$1")})
	c.ReplaceAll()
	assert.Equal(t, "1:a, 2:b", f.Value())
}

func TestReplaceNext(t *testing.T) {
	c, f := openController(t, "x x x", "x")
	c.SetQuery(Partial{Replacement: ptr("yy")})

	c.ReplaceNext()
	assert.Equal(t, "x x x", f.Value(), "first call only activates")
	assert.Equal(t, 0, c.Cursor().Current)

	c.ReplaceNext()
	assert.Equal(t, "yy x x", f.Value())
	assert.Equal(t, Cursor{Total: 2, Current: 0}, c.Cursor())
	assert.Equal(t, Match{Start: 3, End: 4, Groups: []string{"x"}}, f.matches[f.active])
}

func TestReadOnlySuppressesReplace(t *testing.T) {
	c, f := openController(t, "a a", "a")
	c.SetReplacePreference(true)
	c.SetQuery(Partial{Replacement: ptr("b")})
	c.SetReadOnly(true)

	assert.False(t, c.ReplaceVisible())
	c.FindNext()
	c.ReplaceNext()
	c.ReplaceAll()
	c.ToggleReplaceVisibility()
	assert.Equal(t, "a a", f.Value())
	assert.Zero(t, f.edits)

	c.SetReadOnly(false)
	assert.True(t, c.ReplaceVisible(), "preference returns after read-only")
}

func TestToggleReplacePersists(t *testing.T) {
	c := NewController()
	var saved []bool
	c.OnReplaceVisibility = func(v bool) { saved = append(saved, v) }
	c.ToggleReplaceVisibility()
	c.ToggleReplaceVisibility()
	assert.Equal(t, []bool{true, false}, saved)
	assert.False(t, c.ReplaceVisible())
}

func TestNotLiveIsNoop(t *testing.T) {
	f := newFake("abc abc")
	c := NewController()
	c.Open()
	assert.False(t, c.IsOpen(), "open without target")

	c.Bind(f)
	c.Open()
	c.SetQuery(Partial{Pattern: ptr("abc"), Replacement: ptr("z")})
	f.dead = true

	c.FindNext()
	c.ReplaceAll()
	c.SelectAll()
	c.SetQuery(Partial{Pattern: ptr("b")})
	assert.Equal(t, "abc abc", f.Value())
	assert.Equal(t, "abc", c.Query().Pattern)
	assert.Nil(t, f.selected)
}

func TestCloseClearsWithoutEditing(t *testing.T) {
	c, f := openController(t, "one two one", "one")
	c.FindNext()
	c.Close()
	assert.False(t, c.IsOpen())
	assert.Nil(t, f.matches)
	assert.Equal(t, -1, f.active)
	assert.Equal(t, "one two one", f.Value())
	assert.Zero(t, f.edits)
}

func TestSelectAll(t *testing.T) {
	c, f := openController(t, "one two one", "one")
	c.SelectAll()
	assert.Equal(t, c.Matches(), f.selected)
	assert.Equal(t, -1, c.Cursor().Current)
}

func TestInvalidPattern(t *testing.T) {
	c, f := openController(t, "abc", "abc")
	c.SetQuery(Partial{Regex: ptr(true), Pattern: ptr("(")})
	assert.Error(t, c.Err())
	assert.Empty(t, f.matches)
	c.FindNext()
	assert.Equal(t, -1, c.Cursor().Current)
}

func TestRefreshClampsCursor(t *testing.T) {
	c, f := openController(t, "a a a", "a")
	c.FindPrevious()
	require.Equal(t, 2, c.Cursor().Current)
	f.doc = []rune("a")
	c.Refresh()
	assert.Equal(t, Cursor{Total: 1, Current: 0}, c.Cursor())
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "replace-all", ActionReplaceAll.String())
	assert.Equal(t, "unknown", Action(99).String())
}
