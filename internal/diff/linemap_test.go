package diff

import (
	"strings"
	"testing"
)

func TestMapLine(t *testing.T) {
	// orig: a b c d e      mod: a X Y c e f
	chunks := []Chunk{
		{Replace, 1, 2, 1, 3},
		{Delete, 3, 4, 4, 4},
		{Insert, 5, 5, 5, 6},
	}
	tests := []struct {
		from       Side
		line, want int
	}{
		{Original, 0, 0},
		{Original, 1, 1},
		{Original, 2, 3},
		{Original, 3, 4},
		{Original, 4, 4},
		{Modified, 0, 0},
		{Modified, 1, 1},
		{Modified, 2, 1},
		{Modified, 3, 2},
		{Modified, 4, 4},
		{Modified, 5, 5},
	}
	for _, tt := range tests {
		if got := MapLine(chunks, tt.from, tt.line); got != tt.want {
			t.Errorf("MapLine(%v, %d) = %d, want %d", tt.from, tt.line, got, tt.want)
		}
	}
}

func TestChunkAt(t *testing.T) {
	chunks := []Chunk{{Replace, 1, 2, 1, 3}, {Delete, 3, 4, 4, 4}}
	tests := []struct {
		side       Side
		line, want int
	}{
		{Modified, 0, -1},
		{Modified, 2, 0},
		{Modified, 4, 1},
		{Original, 3, 1},
		{Original, 2, -1},
	}
	for _, tt := range tests {
		if got := ChunkAt(chunks, tt.side, tt.line); got != tt.want {
			t.Errorf("ChunkAt(%v, %d) = %d, want %d", tt.side, tt.line, got, tt.want)
		}
	}
}

func TestRevert(t *testing.T) {
	orig := "a\nb\nc\nd"
	mod := "a\nX\nY\nc"
	chunks := []Chunk{{Replace, 1, 2, 1, 3}, {Delete, 3, 4, 4, 4}}

	got := Revert(orig, mod, chunks[0])
	if got != "a\nb\nc" {
		t.Errorf("revert replace = %q", got)
	}
	got = Revert(orig, mod, chunks[1])
	if got != "a\nX\nY\nc\nd" {
		t.Errorf("revert delete = %q", got)
	}
	if got := Revert(orig, mod, Chunk{Replace, 0, 9, 0, 1}); got != mod {
		t.Errorf("out of range chunk changed the document: %q", got)
	}
}

func TestInlineSpans(t *testing.T) {
	del, ins := InlineSpans(`"name": "api"`, `"name": "web"`)
	if len(del) != 1 || len(ins) != 1 {
		t.Fatalf("del=%v ins=%v", del, ins)
	}
	if del[0] != (Span{9, 12}) || ins[0] != (Span{9, 12}) {
		t.Errorf("del=%v ins=%v", del, ins)
	}
	if d, i := InlineSpans("same", "same"); d != nil || i != nil {
		t.Error("identical lines should have no spans")
	}
}

func TestUnifiedPatch(t *testing.T) {
	if got := UnifiedPatch("f.txt", "a\n", "a\n"); got != "" {
		t.Errorf("identical patch = %q", got)
	}
	got := UnifiedPatch("f.txt", "a\nb\n", "a\nc\n")
	for _, want := range []string{"--- a/f.txt", "+++ b/f.txt", "-b", "+c"} {
		if !strings.Contains(got, want) {
			t.Errorf("patch missing %q:\n%s", want, got)
		}
	}
}
