package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSortedStringKeys(t *testing.T) {
	t.Parallel()

	m := map[string]int{"b": 2, "a": 1, "c": 3}
	keys := SortedStringKeys(m)
	expected := []string{"a", "b", "c"}
	if len(keys) != len(expected) {
		t.Fatalf("expected %d keys, got %d", len(expected), len(keys))
	}
	for i, key := range expected {
		if keys[i] != key {
			t.Fatalf("expected %q at %d, got %q", key, i, keys[i])
		}
	}
}

func TestCollectSourceFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write := func(rel string) {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("let x = 1;;"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("a.hl")
	write("sub/b.hl")
	write("sub/notes.txt")
	write("update_database.hl")
	write(".git/objects/c.hl")

	files, err := CollectSourceFiles([]string{dir}, []string{".git"}, []string{"update_database*"})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %v", files)
	}
	for _, f := range files {
		base := filepath.Base(f)
		if base != "a.hl" && base != "b.hl" {
			t.Errorf("unexpected file %s", f)
		}
	}
}

func TestCollectSourceFiles_MissingRootSkipped(t *testing.T) {
	t.Parallel()

	files, err := CollectSourceFiles([]string{filepath.Join(t.TempDir(), "absent")}, nil, nil)
	if err != nil {
		t.Fatalf("expected missing root to be skipped, got %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected no files, got %v", files)
	}
}
