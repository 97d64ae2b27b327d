package content

import (
	"os"
	"path/filepath"
	"testing"

	"lattice/internal/core/errors"
)

func TestParseFrontmatter(t *testing.T) {
	raw := []byte(`---
title: Limits
category: calculus
prerequisites:
  - functions
---

The body starts here.
`)
	item, err := Parse("/tmp/limits.md", "limits.md", raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if item.StringField("title") != "Limits" {
		t.Errorf("title = %q", item.StringField("title"))
	}
	if got := item.StringListField("prerequisites"); len(got) != 1 || got[0] != "functions" {
		t.Errorf("prerequisites = %v", got)
	}
	if item.Body != "The body starts here.\n" {
		t.Errorf("body = %q", item.Body)
	}
}

func TestParseNoFrontmatter(t *testing.T) {
	item, err := Parse("/tmp/plain.md", "plain.md", []byte("just text"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if item.Frontmatter != nil {
		t.Errorf("expected nil frontmatter, got %v", item.Frontmatter)
	}
	if item.Body != "just text" {
		t.Errorf("body = %q", item.Body)
	}
}

func TestParseEmptyFrontmatter(t *testing.T) {
	item, err := Parse("/tmp/empty.md", "empty.md", []byte("---\n---\nbody\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if item.Frontmatter != nil {
		t.Errorf("expected nil frontmatter, got %v", item.Frontmatter)
	}
	if item.Body != "body\n" {
		t.Errorf("body = %q", item.Body)
	}

	item, err = Parse("/tmp/empty.md", "empty.md", []byte("---\n---"))
	if err != nil {
		t.Fatalf("Parse fences only: %v", err)
	}
	if item.Frontmatter != nil || item.Body != "" {
		t.Errorf("fences only = %+v", item)
	}
}

func TestParseUnterminatedFrontmatter(t *testing.T) {
	_, err := Parse("/tmp/bad.md", "bad.md", []byte("---\ntitle: x\nno closing fence"))
	if !errors.IsCode(err, errors.CodeParseError) {
		t.Errorf("got %v, want PARSE_ERROR", err)
	}
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse("/tmp/bad.md", "bad.md", []byte("---\n\t: [unclosed\n---\nbody"))
	if !errors.IsCode(err, errors.CodeParseError) {
		t.Errorf("got %v, want PARSE_ERROR", err)
	}
}

func TestStringListFieldScalar(t *testing.T) {
	item := Item{Frontmatter: map[string]interface{}{"related": "sets"}}
	if got := item.StringListField("related"); len(got) != 1 || got[0] != "sets" {
		t.Errorf("scalar list = %v", got)
	}
	if got := item.StringListField("missing"); got != nil {
		t.Errorf("missing key = %v, want nil", got)
	}
}

func writeFile(t *testing.T, root, rel, body string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverSortedAndFiltered(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b.md", "b")
	writeFile(t, root, "a.md", "a")
	writeFile(t, root, "notes.txt", "skip")
	writeFile(t, root, "drafts/wip.md", "skip")
	writeFile(t, root, ".hidden/secret.md", "skip")

	src, err := NewSource(root, SourceOptions{ExcludeDirs: []string{"drafts"}})
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	rels, err := src.Discover()
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{"a.md", "b.md"}
	if len(rels) != len(want) {
		t.Fatalf("rels = %v, want %v", rels, want)
	}
	for i := range want {
		if rels[i] != want[i] {
			t.Fatalf("rels = %v, want %v", rels, want)
		}
	}
}

func TestLoadReportsPerItemErrors(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "good.md", "---\ntitle: Good\n---\nok")
	writeFile(t, root, "bad.md", "---\ntitle: x\nunterminated")

	src, err := NewSource(root, SourceOptions{})
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	items, itemErrs, err := src.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(items) != 1 || items[0].Rel != "good.md" {
		t.Errorf("items = %v", items)
	}
	if len(itemErrs) != 1 || !errors.IsCode(itemErrs[0], errors.CodeParseError) {
		t.Errorf("item errors = %v", itemErrs)
	}
}

func TestHashTreeChangesWithContent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "one")
	src, err := NewSource(root, SourceOptions{})
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}

	first, err := src.HashTree()
	if err != nil {
		t.Fatalf("HashTree: %v", err)
	}
	second, err := src.HashTree()
	if err != nil {
		t.Fatalf("HashTree: %v", err)
	}
	if first != second {
		t.Errorf("hash not stable across runs")
	}

	writeFile(t, root, "a.md", "two")
	changed, err := src.HashTree()
	if err != nil {
		t.Fatalf("HashTree: %v", err)
	}
	if changed == first {
		t.Errorf("hash did not change with content")
	}
}
