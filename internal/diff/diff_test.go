package diff

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestScanLimit(t *testing.T) {
	tests := []struct{ lines, want int }{
		{0, 5000},
		{5000, 5000},
		{5001, 10000},
		{10000, 10000},
		{12000, 15000},
		{20000, 20000},
		{20001, 500},
		{100000, 500},
	}
	for _, tt := range tests {
		if got := ScanLimit(tt.lines); got != tt.want {
			t.Errorf("ScanLimit(%d) = %d, want %d", tt.lines, got, tt.want)
		}
	}
}

func TestComputeChunks(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want []Chunk
	}{
		{"identical", "a\nb", "a\nb", nil},
		{"insert", "a\nc", "a\nb\nc", []Chunk{{Insert, 1, 1, 1, 2}}},
		{"delete", "a\nb\nc", "a\nc", []Chunk{{Delete, 1, 2, 1, 1}}},
		{"replace", "a\nb\nc", "a\nB\nc", []Chunk{{Replace, 1, 2, 1, 2}}},
		{"append", "a", "a\nb\nc", []Chunk{{Insert, 1, 1, 1, 3}}},
		{"two regions", "1\n2\n3\n4\n5", "1\nx\n3\n4\n5\n6", []Chunk{
			{Replace, 1, 2, 1, 2},
			{Insert, 5, 5, 5, 6},
		}},
		{"empty original", "", "x", []Chunk{{Replace, 0, 1, 0, 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Compute(context.Background(), tt.a, tt.b, Options{})
			if err != nil {
				t.Fatalf("Compute: %v", err)
			}
			if fmt.Sprint(res.Chunks) != fmt.Sprint(tt.want) {
				t.Errorf("chunks = %v, want %v", res.Chunks, tt.want)
			}
			if res.Limited {
				t.Error("unexpected Limited")
			}
		})
	}
}

func TestComputeScanLimitDegrades(t *testing.T) {
	var a, b []string
	for i := 0; i < 50; i++ {
		a = append(a, fmt.Sprintf("a%d", i))
		b = append(b, fmt.Sprintf("b%d", i))
	}
	doc := func(mid []string) string {
		return "head\n" + strings.Join(mid, "\n") + "\ntail"
	}
	res, err := Compute(context.Background(), doc(a), doc(b), Options{ScanLimit: 10})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if !res.Limited {
		t.Fatal("expected Limited")
	}
	want := []Chunk{{Replace, 1, 51, 1, 51}}
	if fmt.Sprint(res.Chunks) != fmt.Sprint(want) {
		t.Errorf("chunks = %v, want %v", res.Chunks, want)
	}
}

func TestComputeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Compute(ctx, "a\nb", "a\nc", Options{Timeout: time.Second}); err == nil {
		t.Fatal("expected context error")
	}
}

func TestComputeManyDistinctLines(t *testing.T) {
	// Enough distinct lines to cross the surrogate range in the rune encoding.
	var a, b []string
	for i := 0; i < 0xD800+100; i++ {
		a = append(a, fmt.Sprint(i))
	}
	b = append(b, a...)
	b[0] = "first"
	b[len(b)-1] = "last"
	res, err := Compute(context.Background(), strings.Join(a, "\n"), strings.Join(b, "\n"), Options{ScanLimit: len(a)})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	n := len(a)
	want := []Chunk{{Replace, 0, 1, 0, 1}, {Replace, n - 1, n, n - 1, n}}
	if fmt.Sprint(res.Chunks) != fmt.Sprint(want) {
		t.Errorf("chunks = %v, want %v", res.Chunks, want)
	}
}

func TestLinesToRunesSkipsSurrogates(t *testing.T) {
	lines := make([]string, 0xD800+10)
	for i := range lines {
		lines[i] = fmt.Sprint(i)
	}
	ra, _ := linesToRunes(lines, nil)
	for i, r := range ra {
		if r >= 0xD800 && r <= 0xDFFF {
			t.Fatalf("line %d encoded as surrogate %U", i, r)
		}
	}
}

func TestResultCounts(t *testing.T) {
	r := Result{Chunks: []Chunk{{Replace, 0, 2, 0, 3}, {Delete, 5, 6, 6, 6}}}
	if r.Added() != 3 || r.Removed() != 3 {
		t.Errorf("added=%d removed=%d", r.Added(), r.Removed())
	}
	if r.Identical() {
		t.Error("not identical")
	}
}
