package diffview

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/xonecas/codeview/internal/diff"
)

// reviewRow is one aligned row of the collapsed review. A line index of -1
// leaves that side blank; fold > 0 marks a fold line.
type reviewRow struct {
	orig, mod int
	changed   bool
	fold      int
}

// reviewRows aligns both documents chunk by chunk, folding unchanged runs
// longer than twice the context.
func reviewRows(chunks []diff.Chunk, origLines, modLines, ctx int) []reviewRow {
	var rows []reviewRow
	oi, mi := 0, 0
	equal := func(n int) {
		if n > 2*ctx {
			for k := 0; k < ctx; k++ {
				rows = append(rows, reviewRow{orig: oi + k, mod: mi + k})
			}
			rows = append(rows, reviewRow{orig: -1, mod: -1, fold: n - 2*ctx})
			for k := n - ctx; k < n; k++ {
				rows = append(rows, reviewRow{orig: oi + k, mod: mi + k})
			}
		} else {
			for k := 0; k < n; k++ {
				rows = append(rows, reviewRow{orig: oi + k, mod: mi + k})
			}
		}
		oi += n
		mi += n
	}
	for _, c := range chunks {
		equal(c.OrigStart - oi)
		for k := 0; k < max(c.OrigLen(), c.ModLen()); k++ {
			r := reviewRow{orig: -1, mod: -1, changed: true}
			if k < c.OrigLen() {
				r.orig = c.OrigStart + k
			}
			if k < c.ModLen() {
				r.mod = c.ModStart + k
			}
			rows = append(rows, r)
		}
		oi, mi = c.OrigEnd, c.ModEnd
	}
	equal(min(origLines-oi, modLines-mi))
	return rows
}

func (c *Coordinator) reviewRows() []reviewRow {
	inst := c.inst
	return reviewRows(inst.Chunks(), inst.panes[diff.Original].LineCount(), inst.panes[diff.Modified].LineCount(), inst.collapseCtx)
}

func (c *Coordinator) clampReview() {
	inst := c.inst
	maxTop := max(len(c.reviewRows())-c.height, 0)
	inst.reviewTop = max(0, min(inst.reviewTop, maxTop))
}

func (c *Coordinator) scrollReview(key string) {
	inst := c.inst
	switch key {
	case "up", "k":
		inst.reviewTop--
	case "down", "j":
		inst.reviewTop++
	case "pgup":
		inst.reviewTop -= c.height
	case "pgdown", "space":
		inst.reviewTop += c.height
	case "home", "g":
		inst.reviewTop = 0
	case "end", "G":
		inst.reviewTop = len(c.reviewRows())
	}
	c.clampReview()
}

func (c *Coordinator) reviewView() string {
	inst := c.inst
	st := c.opts.Styles
	rows := c.reviewRows()
	orig, mod := inst.panes[diff.Original], inst.panes[diff.Modified]
	lw := max((c.width-1)/2, 0)
	rw := max(c.width-1-lw, 0)
	digits := len(fmt.Sprint(max(orig.LineCount(), mod.LineCount())))
	tab := strings.Repeat(" ", max(inst.session.Modified.TabWidth, 1))

	cell := func(line string, n, w int, sty lipgloss.Style) string {
		if w <= 0 {
			return ""
		}
		text := ""
		if n >= 0 {
			text = fmt.Sprintf("%*d ", digits, n+1) + strings.ReplaceAll(line, "\t", tab)
		}
		text = ansi.Truncate(text, w, "")
		return sty.Render(text + strings.Repeat(" ", w-ansi.StringWidth(text)))
	}

	var b strings.Builder
	for vi := 0; vi < c.height; vi++ {
		if vi > 0 {
			b.WriteByte('\n')
		}
		ri := inst.reviewTop + vi
		if ri >= len(rows) {
			b.WriteString(st.Base.Render(strings.Repeat(" ", c.width)))
			continue
		}
		r := rows[ri]
		if r.fold > 0 {
			label := ansi.Truncate(fmt.Sprintf(" ⋯ %d unchanged lines", r.fold), c.width, "")
			b.WriteString(st.Fold.Render(label + strings.Repeat(" ", c.width-ansi.StringWidth(label))))
			continue
		}
		ls, rs := st.Base, st.Base
		if r.changed {
			if r.orig >= 0 {
				ls = st.RemovedLine.Foreground(st.Base.GetForeground())
			}
			if r.mod >= 0 {
				rs = st.AddedLine.Foreground(st.Base.GetForeground())
			}
		}
		b.WriteString(cell(orig.Line(r.orig), r.orig, lw, ls))
		b.WriteString(st.Divider.Render("│"))
		b.WriteString(cell(mod.Line(r.mod), r.mod, rw, rs))
	}
	return b.String()
}
