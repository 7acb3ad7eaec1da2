package diff

import "github.com/sergi/go-diff/diffmatchpatch"

// Span is a half-open rune column range within one line.
type Span struct {
	Start, End int
}

// InlineSpans returns the changed character ranges of a line pair: spans of
// a that were deleted and spans of b that were inserted.
func InlineSpans(a, b string) (del, ins []Span) {
	if a == b {
		return nil, nil
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(a, b, false))
	ai, bi := 0, 0
	for _, d := range diffs {
		n := len([]rune(d.Text))
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			ai += n
			bi += n
		case diffmatchpatch.DiffDelete:
			del = append(del, Span{ai, ai + n})
			ai += n
		case diffmatchpatch.DiffInsert:
			ins = append(ins, Span{bi, bi + n})
			bi += n
		}
	}
	return del, ins
}
