// Package minimap projects a diff session onto a narrow scroll-linked
// overview column with a draggable viewport overlay.
package minimap

import (
	"github.com/xonecas/codeview/internal/diff"
)

// Annotation tags a programmatic shadow edit with the projector's version.
type Annotation struct {
	Version uint64
}

// Patch replaces one side of the shadow document.
type Patch struct {
	Side       diff.Side
	Content    string
	Annotation *Annotation
}

// Shadow is the read-only two-sided document the minimap renders from. It is
// write-only from the primary session: annotated patches flow in and nothing
// flows back, so mirroring has no return path to loop through.
type Shadow struct {
	lines   [2][]string
	version uint64
}

func newShadow(orig, mod string) *Shadow {
	s := &Shadow{}
	s.lines[diff.Original] = diff.SplitLines(orig)
	s.lines[diff.Modified] = diff.SplitLines(mod)
	return s
}

// Lines returns the lines of one side.
func (s *Shadow) Lines(side diff.Side) []string { return s.lines[side] }

// Value returns one side as text.
func (s *Shadow) Value(side diff.Side) string {
	return joinLines(s.lines[side])
}

// Version returns the annotation version of the last applied patch.
func (s *Shadow) Version() uint64 { return s.version }

func (s *Shadow) apply(p Patch) {
	s.lines[p.Side] = diff.SplitLines(p.Content)
	if p.Annotation != nil {
		s.version = p.Annotation.Version
	}
}

func joinLines(ls []string) string {
	n := 0
	for _, l := range ls {
		n += len(l) + 1
	}
	b := make([]byte, 0, n)
	for i, l := range ls {
		if i > 0 {
			b = append(b, '\n')
		}
		b = append(b, l...)
	}
	return string(b)
}
