package diff

// Side selects one document of a diff.
type Side int

const (
	Original Side = iota
	Modified
)

// Other returns the opposite side.
func (s Side) Other() Side { return 1 - s }

func (s Side) String() string {
	if s == Original {
		return "original"
	}
	return "modified"
}

func (c Chunk) span(s Side) (int, int) {
	if s == Original {
		return c.OrigStart, c.OrigEnd
	}
	return c.ModStart, c.ModEnd
}

// MapLine maps a line on side from to the aligned line on the other side.
// Lines in unchanged regions map one to one; lines inside a chunk map to the
// same offset in the counterpart range, clamped to its last line.
func MapLine(chunks []Chunk, from Side, line int) int {
	to := from.Other()
	delta := 0
	for _, c := range chunks {
		fs, fe := c.span(from)
		ts, te := c.span(to)
		if line < fs {
			break
		}
		if line < fe {
			off := line - fs
			if n := te - ts; off >= n {
				off = max(n-1, 0)
			}
			return ts + off
		}
		delta = te - fe
	}
	return line + delta
}

// ChunkAt returns the index of the chunk touching line on side s, or -1.
// Empty ranges (pure insertions or deletions) touch the line they sit on.
func ChunkAt(chunks []Chunk, s Side, line int) int {
	for i, c := range chunks {
		start, end := c.span(s)
		if end == start {
			if line == start {
				return i
			}
			continue
		}
		if line >= start && line < end {
			return i
		}
	}
	return -1
}

// Revert returns the modified document with chunk c replaced by the original
// side's lines.
func Revert(orig, mod string, c Chunk) string {
	ol, ml := SplitLines(orig), SplitLines(mod)
	if c.OrigEnd > len(ol) || c.ModEnd > len(ml) || c.OrigStart > c.OrigEnd || c.ModStart > c.ModEnd {
		return mod
	}
	out := make([]string, 0, len(ml)-c.ModLen()+c.OrigLen())
	out = append(out, ml[:c.ModStart]...)
	out = append(out, ol[c.OrigStart:c.OrigEnd]...)
	out = append(out, ml[c.ModEnd:]...)
	if len(out) == 0 {
		return ""
	}
	return joinLines(out)
}

func joinLines(lines []string) string {
	n := len(lines) - 1
	for _, l := range lines {
		n += len(l)
	}
	b := make([]byte, 0, n)
	for i, l := range lines {
		if i > 0 {
			b = append(b, '\n')
		}
		b = append(b, l...)
	}
	return string(b)
}
