package normalize

import (
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/xonecas/codeview/internal/language"
)

func TestNormalizeJSONIndent(t *testing.T) {
	got := Normalize(`{"a":1}`, language.JSON, 2)
	want := "{\n  \"a\": 1\n}"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNormalizeJSONKeepsKeyOrder(t *testing.T) {
	got := Normalize(`{"z":1,"a":{"y":true,"b":null}}`, language.JSON, 4)
	want := "{\n    \"z\": 1,\n    \"a\": {\n        \"y\": true,\n        \"b\": null\n    }\n}"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNormalizeYAMLIndent(t *testing.T) {
	got := Normalize("a:\n    b: 1\n    c: [x, y]\n", language.YAML, 2)
	want := "a:\n  b: 1\n  c: [x, y]\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNormalizeInvalidPassesThrough(t *testing.T) {
	tests := []struct {
		raw  string
		mode language.Mode
	}{
		{`{"a":`, language.JSON},
		{"a: [1, 2\n", language.YAML},
		{"", language.JSON},
		{"   ", language.YAML},
		{"package main", language.Go},
		{"{\"a\":1}", language.PlainText},
	}
	for _, tt := range tests {
		if got := Normalize(tt.raw, tt.mode, 2); got != tt.raw {
			t.Errorf("Normalize(%q, %v) = %q, want unchanged", tt.raw, tt.mode, got)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []struct {
		raw  string
		mode language.Mode
	}{
		{`{"a":1}`, language.JSON},
		{`[1,2,{"k":"v","n":[true,false,null]}]`, language.JSON},
		{`{"long":["aaaaaaaaaaaaaaaa","bbbbbbbbbbbbbbbbbbbb","cccccccccccccccccccc","dddddddddddddddddddd"]}`, language.JSON},
		{`"just a string"`, language.JSON},
		{`{"a":`, language.JSON},
		{"a: 1\nb:\n      - x\n      - y\n", language.YAML},
		{"# head\nkey: value # tail\n", language.YAML},
		{"a: 1\n---\nb: 2\n", language.YAML},
		{"a: [1, 2\n", language.YAML},
		{"a: |\n  line1\n  line2\n", language.YAML},
		{"a: |\n  line1\n  line2", language.YAML},
		{"a: >\n  folded\n  text\n", language.YAML},
		{"a: |+\n  kept\n\n", language.YAML},
		{"a: |-\n  strip\n", language.YAML},
		{"x = 1", language.TOML},
	}
	for _, in := range inputs {
		for _, tw := range []int{0, 2, 4} {
			once := Normalize(in.raw, in.mode, tw)
			twice := Normalize(once, in.mode, tw)
			if once != twice {
				t.Errorf("not idempotent for %q (mode %v, tab %d):\nonce:  %q\ntwice: %q", in.raw, in.mode, tw, once, twice)
			}
		}
	}
}

func TestNormalizeYAMLBlockScalarKeepsValue(t *testing.T) {
	for _, raw := range []string{
		"a: |\n  line1\n  line2\n",
		"a: >\n  folded\n  text\n",
		"a: |+\n  kept\n\n",
	} {
		var before, after map[string]string
		if err := yaml.Unmarshal([]byte(raw), &before); err != nil {
			t.Fatal(err)
		}
		out := Normalize(raw, language.YAML, 4)
		if err := yaml.Unmarshal([]byte(out), &after); err != nil {
			t.Fatalf("normalized %q does not parse: %v", out, err)
		}
		if before["a"] != after["a"] {
			t.Errorf("value of %q changed: %q -> %q", raw, before["a"], after["a"])
		}
	}
}

func TestNormalizeDefaultTabWidth(t *testing.T) {
	if got, want := Normalize(`{"a":1}`, language.JSON, 0), Normalize(`{"a":1}`, language.JSON, DefaultTabWidth); got != want {
		t.Errorf("tab width 0 = %q, want %q", got, want)
	}
}

func TestBufferNormalized(t *testing.T) {
	b := Buffer{Content: `{"a":1}`, Mode: language.JSON, ReadOnly: true}.Normalized()
	if b.TabWidth != DefaultTabWidth {
		t.Errorf("TabWidth = %d, want %d", b.TabWidth, DefaultTabWidth)
	}
	if b.Content != "{\n  \"a\": 1\n}" {
		t.Errorf("Content = %q", b.Content)
	}
	if !b.ReadOnly {
		t.Error("ReadOnly lost")
	}
}
