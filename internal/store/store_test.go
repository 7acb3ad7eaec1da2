package store

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestPrefs(t *testing.T, ttl time.Duration) *Prefs {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	p, err := Open(dbPath, ttl)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func TestReplaceVisible_SetGet(t *testing.T) {
	p := openTestPrefs(t, time.Hour)

	// Miss on empty.
	if _, ok := p.GetReplaceVisible("s1"); ok {
		t.Fatal("expected miss")
	}

	p.SetReplaceVisible("s1", true)
	got, ok := p.GetReplaceVisible("s1")
	if !ok || !got {
		t.Fatalf("got %v, %v; want true, true", got, ok)
	}

	p.SetReplaceVisible("s1", false)
	if got, _ := p.GetReplaceVisible("s1"); got {
		t.Error("overwrite failed")
	}

	// Sessions are independent.
	if _, ok := p.GetReplaceVisible("s2"); ok {
		t.Error("unexpected hit for other session")
	}
}

func TestSearch_SetGet(t *testing.T) {
	p := openTestPrefs(t, time.Hour)
	want := SearchPrefs{Pattern: `foo\d+`, Regex: true, WholeWord: true}
	p.SetSearch("s1", want)

	got, ok := p.GetSearch("s1")
	if !ok {
		t.Fatal("expected hit")
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestForget(t *testing.T) {
	p := openTestPrefs(t, time.Hour)
	p.SetReplaceVisible("s1", true)
	p.SetSearch("s1", SearchPrefs{Pattern: "x"})
	if err := p.Forget("s1"); err != nil {
		t.Fatal(err)
	}
	if _, ok := p.GetReplaceVisible("s1"); ok {
		t.Error("replace visibility survived Forget")
	}
	if _, ok := p.GetSearch("s1"); ok {
		t.Error("search survived Forget")
	}
}

func TestEmptySessionIgnored(t *testing.T) {
	p := openTestPrefs(t, time.Hour)
	p.SetReplaceVisible("", true)
	if _, ok := p.GetReplaceVisible(""); ok {
		t.Error("empty session id should never be stored")
	}
}

func TestNilReceiver(t *testing.T) {
	var p *Prefs
	p.SetReplaceVisible("s", true)
	p.SetSearch("s", SearchPrefs{Pattern: "x"})
	if _, ok := p.GetReplaceVisible("s"); ok {
		t.Error("nil store returned a hit")
	}
	if _, ok := p.GetSearch("s"); ok {
		t.Error("nil store returned a hit")
	}
	if err := p.Forget("s"); err != nil {
		t.Error(err)
	}
	if err := p.Close(); err != nil {
		t.Error(err)
	}
}

func TestPurgeStale(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "purge.db")
	p, err := Open(dbPath, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	p.SetReplaceVisible("old", true)
	p.SetReplaceVisible("fresh", true)

	// Backdate one session.
	p.db.Exec("UPDATE prefs SET updated = ? WHERE session = ?",
		time.Now().Add(-2*time.Hour).Unix(), "old")
	p.Close()

	p2, err := Open(dbPath, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	defer p2.Close()

	if _, ok := p2.GetReplaceVisible("old"); ok {
		t.Error("stale preference should be purged on open")
	}
	if _, ok := p2.GetReplaceVisible("fresh"); !ok {
		t.Error("fresh preference should survive")
	}
}
