package codeview

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xonecas/codeview/internal/search"
)

// HeightMode selects how the editor sizes itself vertically.
type HeightMode int

const (
	// HeightAuto grows with the content.
	HeightAuto HeightMode = iota
	// HeightFixed uses a fixed number of rows.
	HeightFixed
	// HeightFull fills the size given by the parent.
	HeightFull
	// HeightFitToParent grows with the content up to the parent size.
	HeightFitToParent
)

// Height is a height mode plus the row count of HeightFixed.
type Height struct {
	Mode HeightMode
	Rows int
}

func Auto() Height          { return Height{Mode: HeightAuto} }
func Full() Height          { return Height{Mode: HeightFull} }
func FitToParent() Height   { return Height{Mode: HeightFitToParent} }
func Fixed(rows int) Height { return Height{Mode: HeightFixed, Rows: rows} }

// ParseHeight accepts "auto", "full", "100%", "fit", "fitToParent" or a row
// count.
func ParseHeight(s string) (Height, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto(), nil
	case "full", "100%":
		return Full(), nil
	case "fit", "fittoparent":
		return FitToParent(), nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return Height{}, fmt.Errorf("invalid height %q", s)
	}
	return Fixed(n), nil
}

func (h Height) String() string {
	switch h.Mode {
	case HeightFixed:
		return strconv.Itoa(h.Rows)
	case HeightFull:
		return "100%"
	case HeightFitToParent:
		return "fitToParent"
	default:
		return "auto"
	}
}

// total resolves the outer rows given the rows the content wants and the
// parent height. A parent height of 0 means unknown.
func (h Height) total(want, parent int) int {
	switch h.Mode {
	case HeightFixed:
		return max(h.Rows, 1)
	case HeightFull:
		if parent > 0 {
			return parent
		}
	case HeightFitToParent:
		if parent > 0 {
			return min(want, parent)
		}
	}
	return want
}

// Props is the externally supplied state of the editor. Content props are
// compared against what the host last saw: a value the host itself reported
// through a change callback is never pushed back into the buffer.
type Props struct {
	Value    string
	OnChange func(string)

	OriginalValue         string
	OnOriginalValueChange func(string)
	ModifiedValue         string
	OnModifiedValueChange func(string)

	// Mode is a language tag such as "json" or "yaml". Empty selects JSON.
	Mode     string
	ReadOnly bool
	// DiffView is the diff intent. The local toggle may override it until
	// the intent changes.
	DiffView bool
	// OriginalReadOnly locks the original side of the diff.
	OriginalReadOnly  bool
	CollapseUnchanged bool
	Height            Height

	ValidatorSchema string
	SchemaURI       string

	DisableSearch     bool
	DisableLint       bool
	OnSearchPanelOpen func()
	OnSearchBarAction func(search.Action)

	TabWidth int
	Theme    string
	// SessionID keys persisted preferences such as the replace row.
	SessionID string
}
