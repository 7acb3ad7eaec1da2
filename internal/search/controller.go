package search

import (
	"sort"

	"github.com/rs/zerolog/log"
)

// Target is the live editor pane a Controller drives.
type Target interface {
	Value() string
	IsLive() bool
	Caret() int // cursor as a rune offset
	SetMatches(ms []Match, active int)
	SelectRanges(ms []Match)
	ReplaceRanges(ms []Match, repl []string) bool
	RevealOffset(off int)
}

// Cursor counts matches. Current is -1 when no match is active.
type Cursor struct {
	Total   int
	Current int
}

// Action identifies a user action on the panel.
type Action int

const (
	ActionOpen Action = iota
	ActionClose
	ActionQuery
	ActionNext
	ActionPrevious
	ActionSelectAll
	ActionReplaceNext
	ActionReplaceAll
	ActionToggleReplace
)

var actionNames = [...]string{"open", "close", "query", "next", "previous", "select-all", "replace-next", "replace-all", "toggle-replace"}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "unknown"
}

// Controller holds the query, match list and replace-row visibility for one
// pane. Every operation is a no-op while the target is missing or not live.
type Controller struct {
	target  Target
	query   Query
	matches []Match
	current int
	err     error
	open    bool

	replacePref bool
	readOnly    bool

	// OnAction observes every user action.
	OnAction func(Action)
	// OnReplaceVisibility observes user changes of the replace row so they
	// can be persisted.
	OnReplaceVisibility func(bool)
}

// NewController returns a controller with no target.
func NewController() *Controller {
	return &Controller{current: -1}
}

func (c *Controller) live() bool { return c != nil && c.target != nil && c.target.IsLive() }

func (c *Controller) fire(a Action) {
	if c.OnAction != nil {
		c.OnAction(a)
	}
}

// Bind attaches the controller to t and rescans. A nil target detaches it.
func (c *Controller) Bind(t Target) {
	c.target = t
	c.current = -1
	c.matches = nil
	if c.live() && c.open {
		c.rescan()
		c.publish()
	}
}

// Query returns the current query.
func (c *Controller) Query() Query { return c.query }

// Err reports the last pattern compile error.
func (c *Controller) Err() error { return c.err }

// Matches returns the current match list.
func (c *Controller) Matches() []Match { return c.matches }

// Cursor returns the match count and active index.
func (c *Controller) Cursor() Cursor {
	return Cursor{Total: len(c.matches), Current: c.current}
}

// IsOpen reports whether the panel is open.
func (c *Controller) IsOpen() bool { return c.open }

// ReplaceVisible reports whether the replace row is shown. It is always
// false while read-only.
func (c *Controller) ReplaceVisible() bool { return c.replacePref && !c.readOnly }

// SetReplacePreference restores a persisted visibility without firing
// callbacks.
func (c *Controller) SetReplacePreference(v bool) { c.replacePref = v }

// Restore sets a remembered query without scanning or firing callbacks.
func (c *Controller) Restore(q Query) { c.query = q }

// ReadOnly reports the read-only state.
func (c *Controller) ReadOnly() bool { return c.readOnly }

// SetReadOnly updates the read-only state. Read-only hides the replace row
// and disables replacing; the stored preference returns when editing is
// allowed again.
func (c *Controller) SetReadOnly(ro bool) { c.readOnly = ro }

// Open shows the panel and highlights matches of the current query.
func (c *Controller) Open() {
	if !c.live() {
		return
	}
	c.open = true
	c.rescan()
	c.publish()
	c.fire(ActionOpen)
}

// Close hides the panel and clears highlighting. Document content is never
// touched.
func (c *Controller) Close() {
	if !c.open {
		return
	}
	c.open = false
	c.current = -1
	if c.live() {
		c.target.SetMatches(nil, -1)
	}
	c.fire(ActionClose)
}

// SetQuery merges p into the query. An unchanged query does nothing.
func (c *Controller) SetQuery(p Partial) {
	if !c.live() {
		return
	}
	next := c.query.Merge(p)
	if next == c.query {
		return
	}
	c.query = next
	c.current = -1
	c.rescan()
	c.publish()
	c.fire(ActionQuery)
}

// Refresh rescans after the document changed.
func (c *Controller) Refresh() {
	if !c.live() || !c.open {
		return
	}
	c.rescan()
	if c.current >= len(c.matches) {
		c.current = len(c.matches) - 1
	}
	c.publish()
}

// FindNext activates the next match, wrapping at the end. The first call
// after a query change picks the first match at or after the caret.
func (c *Controller) FindNext() {
	if !c.live() || len(c.matches) == 0 {
		return
	}
	if c.current < 0 {
		c.current = firstAtOrAfter(c.matches, c.target.Caret())
	} else {
		c.current = (c.current + 1) % len(c.matches)
	}
	c.activate()
	c.fire(ActionNext)
}

// FindPrevious activates the previous match, wrapping at the start.
func (c *Controller) FindPrevious() {
	if !c.live() || len(c.matches) == 0 {
		return
	}
	if c.current < 0 {
		c.current = firstAtOrAfter(c.matches, c.target.Caret()) - 1
	} else {
		c.current--
	}
	if c.current < 0 {
		c.current = len(c.matches) - 1
	}
	c.activate()
	c.fire(ActionPrevious)
}

// SelectAll selects every match in the target. The cursor is unchanged.
func (c *Controller) SelectAll() {
	if !c.live() || len(c.matches) == 0 {
		return
	}
	c.target.SelectRanges(c.matches)
	c.fire(ActionSelectAll)
}

// ReplaceNext replaces the active match and activates the following one.
// Without an active match it only activates the next match.
func (c *Controller) ReplaceNext() {
	if !c.live() || c.readOnly || len(c.matches) == 0 {
		return
	}
	if c.current < 0 {
		c.FindNext()
		return
	}
	m := c.matches[c.current]
	repl := c.query.Expand(m)
	if !c.target.ReplaceRanges([]Match{m}, []string{repl}) {
		return
	}
	c.rescan()
	after := m.Start + len([]rune(repl))
	c.current = -1
	if len(c.matches) > 0 {
		c.current = firstAtOrAfter(c.matches, after)
	}
	c.publish()
	if c.current >= 0 {
		c.target.RevealOffset(c.matches[c.current].Start)
	}
	c.fire(ActionReplaceNext)
}

// ReplaceAll replaces every match in one edit.
func (c *Controller) ReplaceAll() {
	if !c.live() || c.readOnly || len(c.matches) == 0 {
		return
	}
	repl := make([]string, len(c.matches))
	for i, m := range c.matches {
		repl[i] = c.query.Expand(m)
	}
	if !c.target.ReplaceRanges(c.matches, repl) {
		return
	}
	c.current = -1
	c.rescan()
	c.publish()
	c.fire(ActionReplaceAll)
}

// ToggleReplaceVisibility flips the replace row. No-op while read-only.
func (c *Controller) ToggleReplaceVisibility() {
	if c.readOnly {
		return
	}
	c.replacePref = !c.replacePref
	if c.OnReplaceVisibility != nil {
		c.OnReplaceVisibility(c.replacePref)
	}
	c.fire(ActionToggleReplace)
}

func (c *Controller) rescan() {
	ms, err := Find(c.target.Value(), c.query)
	c.err = err
	if err != nil {
		log.Debug().Err(err).Str("pattern", c.query.Pattern).Msg("search pattern rejected")
	}
	c.matches = ms
}

func (c *Controller) publish() {
	c.target.SetMatches(c.matches, c.current)
}

func (c *Controller) activate() {
	c.publish()
	c.target.RevealOffset(c.matches[c.current].Start)
}

// firstAtOrAfter returns the index of the first match starting at or after
// off, wrapping to 0.
func firstAtOrAfter(ms []Match, off int) int {
	i := sort.Search(len(ms), func(i int) bool { return ms[i].Start >= off })
	if i == len(ms) {
		return 0
	}
	return i
}
