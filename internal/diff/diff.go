// Package diff computes line-level differences between two documents for the
// side-by-side diff editor.
package diff

import (
	"context"
	"strings"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Kind classifies a chunk.
type Kind int

const (
	Insert  Kind = iota // lines only in the modified side
	Delete              // lines only in the original side
	Replace             // lines differ on both sides
)

func (k Kind) String() string {
	switch k {
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	default:
		return "replace"
	}
}

// Chunk is one changed region. Ranges are 0-indexed half-open line ranges;
// an empty range marks the insertion point on that side.
type Chunk struct {
	Kind      Kind
	OrigStart int
	OrigEnd   int
	ModStart  int
	ModEnd    int
}

// OrigLen returns the number of original lines in the chunk.
func (c Chunk) OrigLen() int { return c.OrigEnd - c.OrigStart }

// ModLen returns the number of modified lines in the chunk.
func (c Chunk) ModLen() int { return c.ModEnd - c.ModStart }

// Options bound a computation.
type Options struct {
	// ScanLimit is the most lines of the differing middle region compared
	// line by line. Zero selects ScanLimit(lines).
	ScanLimit int
	// Timeout bounds the comparison; on expiry go-diff returns a valid but
	// coarser diff. Zero means no bound beyond ctx.
	Timeout time.Duration
}

// Result of Compute.
type Result struct {
	Chunks []Chunk
	// Limited reports that the middle region exceeded the scan limit and was
	// reported as one coarse chunk.
	Limited bool
	Elapsed time.Duration
}

// Added returns the number of modified-side lines inside chunks.
func (r Result) Added() int {
	n := 0
	for _, c := range r.Chunks {
		n += c.ModLen()
	}
	return n
}

// Removed returns the number of original-side lines inside chunks.
func (r Result) Removed() int {
	n := 0
	for _, c := range r.Chunks {
		n += c.OrigLen()
	}
	return n
}

// Identical reports whether there are no chunks.
func (r Result) Identical() bool { return len(r.Chunks) == 0 }

// ScanLimit returns the comparison budget for a document of the given line
// count. Very large documents get a small budget so they degrade to a coarse
// diff instead of stalling.
func ScanLimit(lines int) int {
	switch {
	case lines <= 5000:
		return 5000
	case lines <= 10000:
		return 10000
	case lines <= 15000:
		return 15000
	case lines <= 20000:
		return 20000
	default:
		return 500
	}
}

// SplitLines splits on "\n". An empty document has one empty line.
func SplitLines(s string) []string {
	return strings.Split(s, "\n")
}

// Compute diffs a against b line by line. It returns ctx.Err() when ctx is
// done before the comparison finishes.
func Compute(ctx context.Context, a, b string, opts Options) (res Result, err error) {
	start := time.Now()
	al, bl := SplitLines(a), SplitLines(b)

	// Common prefix and suffix never reach the comparison.
	pre := 0
	for pre < len(al) && pre < len(bl) && al[pre] == bl[pre] {
		pre++
	}
	suf := 0
	for suf < len(al)-pre && suf < len(bl)-pre && al[len(al)-1-suf] == bl[len(bl)-1-suf] {
		suf++
	}
	am := al[pre : len(al)-suf]
	bm := bl[pre : len(bl)-suf]

	defer func() { res.Elapsed = time.Since(start) }()

	switch {
	case len(am) == 0 && len(bm) == 0:
		return res, nil
	case len(am) == 0 || len(bm) == 0:
		res.Chunks = []Chunk{newChunk(pre, pre+len(am), pre, pre+len(bm))}
		return res, nil
	}

	limit := opts.ScanLimit
	if limit <= 0 {
		limit = ScanLimit(max(len(al), len(bl)))
	}
	if len(am) > limit || len(bm) > limit {
		res.Limited = true
		res.Chunks = []Chunk{newChunk(pre, pre+len(am), pre, pre+len(bm))}
		return res, nil
	}

	if err = ctx.Err(); err != nil {
		return res, err
	}

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	if opts.Timeout > 0 {
		dmp.DiffTimeout = opts.Timeout
	}
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); dmp.DiffTimeout == 0 || left < dmp.DiffTimeout {
			dmp.DiffTimeout = max(left, time.Millisecond)
		}
	}

	ra, rb := linesToRunes(am, bm)
	diffs := dmp.DiffMainRunes(ra, rb, false)
	if err = ctx.Err(); err != nil {
		return res, err
	}
	res.Chunks = chunksFromDiffs(diffs, pre)
	return res, nil
}

func newChunk(os, oe, ms, me int) Chunk {
	c := Chunk{OrigStart: os, OrigEnd: oe, ModStart: ms, ModEnd: me}
	switch {
	case oe == os:
		c.Kind = Insert
	case me == ms:
		c.Kind = Delete
	default:
		c.Kind = Replace
	}
	return c
}

// linesToRunes encodes every distinct line as one rune so go-diff compares
// whole lines. Surrogate code points are skipped because they do not survive
// the rune/string conversions go-diff performs.
func linesToRunes(a, b []string) ([]rune, []rune) {
	index := make(map[string]rune)
	next := 0
	encode := func(lines []string) []rune {
		out := make([]rune, len(lines))
		for i, l := range lines {
			r, ok := index[l]
			if !ok {
				r = rune(next)
				if r >= 0xD800 {
					r += 0x800
				}
				next++
				index[l] = r
			}
			out[i] = r
		}
		return out
	}
	return encode(a), encode(b)
}

func chunksFromDiffs(diffs []diffmatchpatch.Diff, base int) []Chunk {
	var chunks []Chunk
	oi, mi := base, base
	var cur *Chunk
	flush := func() {
		if cur != nil {
			chunks = append(chunks, newChunk(cur.OrigStart, cur.OrigEnd, cur.ModStart, cur.ModEnd))
			cur = nil
		}
	}
	for _, d := range diffs {
		n := len([]rune(d.Text))
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			oi += n
			mi += n
		case diffmatchpatch.DiffDelete:
			if cur == nil {
				cur = &Chunk{OrigStart: oi, OrigEnd: oi, ModStart: mi, ModEnd: mi}
			}
			oi += n
			cur.OrigEnd = oi
		case diffmatchpatch.DiffInsert:
			if cur == nil {
				cur = &Chunk{OrigStart: oi, OrigEnd: oi, ModStart: mi, ModEnd: mi}
			}
			mi += n
			cur.ModEnd = mi
		}
	}
	flush()
	return chunks
}
