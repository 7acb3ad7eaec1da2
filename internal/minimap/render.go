package minimap

import (
	"math"
	"strings"
	"unicode/utf8"

	"charm.land/lipgloss/v2"

	"github.com/xonecas/codeview/internal/diff"
)

// Styles color the minimap column.
type Styles struct {
	Base    lipgloss.Style
	Added   lipgloss.Style
	Removed lipgloss.Style
	Changed lipgloss.Style
	Overlay lipgloss.Style // background applied to overlay rows
}

var densityGlyphs = []string{" ", "░", "▒", "▓"}

func density(n int) string {
	switch {
	case n == 0:
		return densityGlyphs[0]
	case n < 16:
		return densityGlyphs[1]
	case n < 40:
		return densityGlyphs[2]
	default:
		return densityGlyphs[3]
	}
}

// View renders the column, width cells wide and one row per container row.
// The left half shows the original side and the right half the modified
// side, aligned through the chunk line map.
func (p *Projector) View(width int, st Styles) string {
	if p.Destroyed() || p.container == 0 || width <= 0 {
		return ""
	}
	lw := width / 2
	rw := width - lw
	mod := p.shadow.lines[diff.Modified]
	orig := p.shadow.lines[diff.Original]
	scale := p.vp.Scale
	rowsUsed := int(math.Ceil(p.minimapHeight()))

	overlayFrom, overlayTo := -1, -1
	if p.vp.Visible {
		overlayFrom = int(math.Floor(p.vp.Top))
		overlayTo = int(math.Ceil(p.vp.Top + p.vp.Height))
	}

	var b strings.Builder
	for r := 0; r < p.container; r++ {
		if r > 0 {
			b.WriteByte('\n')
		}
		left, right := strings.Repeat(" ", lw), strings.Repeat(" ", rw)
		ls, rs := st.Base, st.Base
		if r < rowsUsed && scale > 0 {
			a := int(float64(r) / scale)
			e := max(int(float64(r+1)/scale), a+1)
			e = min(e, len(mod))
			if a < e {
				right = strings.Repeat(density(longest(mod, a, e)), rw)
				if kindIn(p.chunks, diff.Modified, a, e, diff.Delete) {
					rs = p.kindStyle(st, diff.Modified, a, e)
				}
				oa := diff.MapLine(p.chunks, diff.Modified, a)
				oe := min(diff.MapLine(p.chunks, diff.Modified, e-1)+1, len(orig))
				if oa < oe {
					left = strings.Repeat(density(longest(orig, oa, oe)), lw)
					if kindIn(p.chunks, diff.Original, oa, oe, diff.Insert) {
						ls = st.Removed
					}
				}
			}
		}
		if r >= overlayFrom && r < overlayTo {
			bg := st.Overlay.GetBackground()
			ls = ls.Background(bg)
			rs = rs.Background(bg)
		}
		b.WriteString(ls.Render(left))
		b.WriteString(rs.Render(right))
	}
	return b.String()
}

func (p *Projector) kindStyle(st Styles, side diff.Side, a, e int) lipgloss.Style {
	for l := a; l < e; l++ {
		if i := diff.ChunkAt(p.chunks, side, l); i >= 0 && p.chunks[i].Kind == diff.Replace {
			return st.Changed
		}
	}
	return st.Added
}

// kindIn reports whether any line in [a, e) lies in a chunk whose kind is
// not skip.
func kindIn(chunks []diff.Chunk, side diff.Side, a, e int, skip diff.Kind) bool {
	for l := a; l < e; l++ {
		if i := diff.ChunkAt(chunks, side, l); i >= 0 && chunks[i].Kind != skip {
			return true
		}
	}
	return false
}

func longest(lines []string, a, e int) int {
	n := 0
	for _, l := range lines[a:e] {
		n = max(n, utf8.RuneCountInString(strings.TrimRight(l, " \t")))
	}
	return n
}
