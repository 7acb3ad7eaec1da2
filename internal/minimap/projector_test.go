package minimap

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/exp/golden"

	"github.com/xonecas/codeview/internal/diff"
)

func lines(n int) string {
	ls := make([]string, n)
	for i := range ls {
		ls[i] = "line"
	}
	return strings.Join(ls, "\n")
}

func TestOverlayBounds(t *testing.T) {
	for _, container := range []int{0, 1, 2, 3, 7, 24} {
		for _, doc := range []int{1, 5, 40, 300} {
			p := New(lines(doc), lines(doc), Options{})
			p.SetContainer(container)
			for _, client := range []int{1, 3, 24} {
				for top := 0; top <= doc; top += max(doc/7, 1) {
					p.UpdateOverlay(Metrics{ScrollTop: top, ClientHeight: client, ScrollHeight: doc})
					vp := p.Viewport()
					if container < DefaultMinOverlay {
						if vp.Visible {
							t.Fatalf("container %d: overlay should be hidden", container)
						}
						continue
					}
					c := float64(container)
					if !vp.Visible || vp.Top < 0 || vp.Top+vp.Height > c+1e-9 || vp.Height < DefaultMinOverlay {
						t.Fatalf("container=%d doc=%d client=%d top=%d: bad viewport %+v", container, doc, client, top, vp)
					}
				}
			}
		}
	}
}

func TestScale(t *testing.T) {
	tests := []struct {
		doc, container int
		want           float64
	}{
		{100, 10, 0.1},
		{5, 10, 1},
		{10, 10, 1},
	}
	for _, tt := range tests {
		p := New("", lines(tt.doc), Options{})
		p.SetContainer(tt.container)
		if got := p.Viewport().Scale; got != tt.want {
			t.Errorf("doc=%d container=%d: scale=%v, want %v", tt.doc, tt.container, got, tt.want)
		}
	}
}

func dragFixture() *Projector {
	p := New("", lines(100), Options{})
	p.SetContainer(20)
	p.UpdateOverlay(Metrics{ScrollTop: 0, ClientHeight: 20, ScrollHeight: 100})
	return p
}

func TestDrag(t *testing.T) {
	p := dragFixture()
	if vp := p.Viewport(); vp.Top != 0 || vp.Height != 4 {
		t.Fatalf("viewport = %+v", vp)
	}
	if _, ok := p.Press(1); ok || !p.Dragging() {
		t.Fatal("press on overlay should start a drag without jumping")
	}
	if st, ok := p.Motion(5); !ok || st != 16 {
		t.Errorf("Motion(5) = %d, %v; want 16", st, ok)
	}
	if st, _ := p.Motion(100); st != 80 {
		t.Errorf("Motion clamp = %d, want 80", st)
	}
	p.Release()
	if p.Dragging() {
		t.Error("release should end the drag")
	}
	if _, ok := p.Motion(6); ok {
		t.Error("motion after release should be ignored")
	}
}

func TestClickJumps(t *testing.T) {
	p := dragFixture()
	if st, ok := p.Press(10); !ok || st != 40 {
		t.Errorf("Press(10) = %d, %v; want 40", st, ok)
	}
	if st, _ := p.Press(19); st != 80 {
		t.Errorf("Press(19) = %d, want 80", st)
	}
	if p.Dragging() {
		t.Error("click off the overlay should not drag")
	}
}

func TestDestroyedIsNoop(t *testing.T) {
	p := dragFixture()
	p.Destroy()
	if _, ok := p.Press(1); ok || p.Dragging() {
		t.Error("press after destroy")
	}
	p.Apply(diff.Modified, "changed")
	if p.Shadow().Value(diff.Modified) == "changed" {
		t.Error("apply after destroy")
	}
	if p.Mirror(diff.Modified, "x") != nil {
		t.Error("mirror after destroy")
	}
	if p.View(2, Styles{}) != "" {
		t.Error("view after destroy")
	}
}

func TestMirrorDebounce(t *testing.T) {
	p := New("o", "m", Options{Debounce: time.Millisecond})
	first := p.Mirror(diff.Modified, "one")
	second := p.Mirror(diff.Modified, "two")
	other := p.Mirror(diff.Original, "orig")

	if p.HandleMirror(first().(MirrorMsg)) {
		t.Error("superseded mirror was applied")
	}
	if !p.HandleMirror(second().(MirrorMsg)) {
		t.Error("latest mirror was dropped")
	}
	if !p.HandleMirror(other().(MirrorMsg)) {
		t.Error("mirror for the other side was dropped")
	}
	if got := p.Shadow().Value(diff.Modified); got != "two" {
		t.Errorf("modified = %q", got)
	}
	if got := p.Shadow().Value(diff.Original); got != "orig" {
		t.Errorf("original = %q", got)
	}
	if p.Version() != 2 {
		t.Errorf("version = %d, want 2", p.Version())
	}

	q := New("", "", Options{Debounce: time.Millisecond})
	if q.HandleMirror(second().(MirrorMsg)) {
		t.Error("mirror from another projector was applied")
	}
}

func TestShadowTracksAnnotation(t *testing.T) {
	p := New("a", "b", Options{})
	p.Apply(diff.Modified, "c")
	p.Apply(diff.Original, "z")
	if got := p.Shadow().Version(); got != 2 {
		t.Errorf("shadow version = %d, want 2", got)
	}

	// Unannotated patches change content but not the version.
	p.shadow.apply(Patch{Side: diff.Modified, Content: "d"})
	if got := p.Shadow().Value(diff.Modified); got != "d" {
		t.Errorf("modified = %q", got)
	}
	if got := p.Version(); got != 2 {
		t.Errorf("version = %d, want 2", got)
	}

	p.Destroy()
	p.Apply(diff.Modified, "e")
	if got := p.Shadow().Value(diff.Modified); got != "d" {
		t.Errorf("destroyed projector applied %q", got)
	}
}

func TestViewGolden(t *testing.T) {
	p := New("a\nbb\nc", "a\n"+strings.Repeat("X", 20)+"\nc\nd", Options{})
	p.SetChunks([]diff.Chunk{
		{Kind: diff.Replace, OrigStart: 1, OrigEnd: 2, ModStart: 1, ModEnd: 2},
		{Kind: diff.Insert, OrigStart: 3, OrigEnd: 3, ModStart: 3, ModEnd: 4},
	})
	p.SetContainer(6)
	p.UpdateOverlay(Metrics{ScrollTop: 0, ClientHeight: 2, ScrollHeight: 4})

	out := p.View(4, Styles{})
	golden.RequireEqual(t, []byte(ansi.Strip(out)))
}
