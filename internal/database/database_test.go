package database

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"holindex/internal/parser"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newDB(t *testing.T, opts Options) *DB {
	t.Helper()
	db, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	return db
}

func TestIndexFile_Idempotent(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.hl", "let x = new_definition `x = 1`;;")
	db := newDB(t, Options{Roots: []string{"."}})

	first, err := db.IndexFile(path, parser.Keywords{})
	if err != nil {
		t.Fatal(err)
	}
	if !first.Indexed {
		t.Error("Expected first call to index")
	}

	second, err := db.IndexFile(path, parser.Keywords{})
	if err != nil {
		t.Fatal(err)
	}
	if second.Indexed {
		t.Error("Expected second call to be a no-op")
	}
	if len(second.Deps) != len(first.Deps) {
		t.Errorf("Expected cached deps %v, got %v", first.Deps, second.Deps)
	}
}

func TestIndexFile_StaleReindexReplacesEntries(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.hl", "let old_name = new_definition `o`;;")
	db := newDB(t, Options{Roots: []string{"."}})

	if _, err := db.IndexFile(path, parser.Keywords{}); err != nil {
		t.Fatal(err)
	}
	if defs := db.FindDefinitions("old_name", path, nil, true); len(defs) != 1 {
		t.Fatalf("Expected old_name indexed, got %v", defs)
	}

	writeFile(t, dir, "a.hl", "let new_name = new_definition `n`;;")
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}

	res, err := db.IndexFile(path, parser.Keywords{})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Indexed {
		t.Error("Expected stale file to be re-indexed")
	}

	if defs := db.FindDefinitions("old_name", path, nil, true); len(defs) != 0 {
		t.Errorf("Expected old_name removed, got %v", defs)
	}
	if defs := db.FindDefinitions("new_name", path, nil, true); len(defs) != 1 {
		t.Errorf("Expected new_name indexed, got %v", defs)
	}
}

func TestIndexDocumentWithDeps_CycleSafe(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.hl", "needs \"b.hl\";;\nlet from_a = new_definition `a`;;")
	b := writeFile(t, dir, "b.hl", "needs \"a.hl\";;\nlet from_b = new_definition `b`;;")
	db := newDB(t, Options{Roots: []string{"."}})

	report, err := db.IndexDocumentWithDeps(context.Background(), a, parser.Keywords{})
	if err != nil {
		t.Fatal(err)
	}

	if len(report.Indexed) != 2 {
		t.Errorf("Expected both files parsed exactly once, got %v", report.Indexed)
	}
	if !db.IsDependency(a, b) {
		t.Error("Expected a to depend on b")
	}
	if !db.IsDependency(b, a) {
		t.Error("Expected b to depend on a")
	}
	if !db.IsDependency(a, a) {
		t.Error("Expected dependency to be reflexive")
	}
}

func TestIndexDocumentWithDeps_UnresolvedAggregated(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.hl", "needs \"b.hl\";;\nneeds \"ghost1.hl\";;")
	writeFile(t, dir, "b.hl", "needs \"ghost2.hl\";;")
	db := newDB(t, Options{Roots: []string{"."}})

	report, err := db.IndexDocumentWithDeps(context.Background(), a, parser.Keywords{})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Unresolved) != 2 {
		t.Errorf("Expected 2 unresolved deps, got %v", report.Unresolved)
	}
}

func TestIndexDocumentWithDeps_BaseLibrary(t *testing.T) {
	baseDir := t.TempDir()
	writeFile(t, baseDir, "core.hl", "let CORE_THM = prove(`core`, TAC);;")
	writeFile(t, baseDir, "update_database.ml", "let ignored = 1;;")
	writeFile(t, baseDir, "update_database.hl", "let also_ignored = 1;;")
	writeFile(t, baseDir, "notes.txt", "not source")

	docDir := t.TempDir()
	doc := writeFile(t, docDir, "doc.hl", "let uses_core = 1;;")

	db := newDB(t, Options{
		Roots:        []string{"."},
		BaseLibrary:  baseDir,
		ExcludeFiles: []string{"update_database*", "make_database*"},
	})

	if _, err := db.IndexDocumentWithDeps(context.Background(), doc, parser.Keywords{}); err != nil {
		t.Fatal(err)
	}

	core := filepath.Join(baseDir, "core.hl")
	if !db.IsDependency(doc, core) {
		t.Error("Expected base file to be an implicit dependency of the document")
	}
	if defs := db.FindDefinitions("CORE_THM", doc, nil, true); len(defs) != 1 {
		t.Errorf("Expected base theorem visible from document, got %v", defs)
	}
	if defs := db.FindDefinitions("also_ignored", doc, nil, true); len(defs) != 0 {
		t.Errorf("Expected generator script to be skipped, got %v", defs)
	}

	stats := db.Stats()
	if stats.BaseFiles != 1 {
		t.Errorf("Expected 1 base file, got %d", stats.BaseFiles)
	}
}

func TestIndexDocumentWithDeps_BaseLibraryMissing(t *testing.T) {
	docDir := t.TempDir()
	doc := writeFile(t, docDir, "doc.hl", "let local_def = new_definition `d`;;")

	db := newDB(t, Options{
		Roots:       []string{"."},
		BaseLibrary: filepath.Join(docDir, "no-such-dir"),
	})

	_, err := db.IndexDocumentWithDeps(context.Background(), doc, parser.Keywords{})
	if err == nil {
		t.Fatal("Expected base-library error")
	}
	// Best-effort partial success: the document is still indexed.
	if defs := db.FindDefinitions("local_def", doc, nil, true); len(defs) != 1 {
		t.Errorf("Expected document indexed despite base failure, got %v", defs)
	}
}

func TestFindDefinitions_ScopeByOpenPosition(t *testing.T) {
	dir := t.TempDir()
	src := `module Inner = struct
  let hidden_thm = prove(` + "`h`" + `, TAC);;
end;;
let before_marker = 1;;
open Inner;;
let after_marker = 1;;
`
	path := writeFile(t, dir, "scoped.hl", src)
	db := newDB(t, Options{Roots: []string{"."}})
	if _, err := db.IndexFile(path, parser.Keywords{}); err != nil {
		t.Fatal(err)
	}

	beforePos := strings.Index(src, "let before_marker")
	afterPos := strings.Index(src, "let after_marker")

	if defs, _ := db.FindDefinitionsAt("hidden_thm", path, beforePos); len(defs) != 0 {
		t.Errorf("Expected hidden_thm invisible before open, got %v", defs)
	}
	if defs, _ := db.FindDefinitionsAt("hidden_thm", path, afterPos); len(defs) != 1 {
		t.Errorf("Expected hidden_thm visible after open, got %v", defs)
	}

	// Exact local lookup with scope checking disabled sees it regardless.
	if defs := db.FindDefinitions("hidden_thm", path, nil, false); len(defs) != 1 {
		t.Errorf("Expected unscoped lookup to find hidden_thm, got %v", defs)
	}
}

func TestFindDefinitionsAt_OpenEndsWithEnclosingModule(t *testing.T) {
	dir := t.TempDir()
	src := `module Inner = struct
  let secret_def = new_definition ` + "`s`" + `;;
end;;
module Wrapper = struct
  open Inner;;
  let inside_marker = 1;;
end;;
let outside_marker = 1;;
`
	path := writeFile(t, dir, "wrapped.hl", src)
	db := newDB(t, Options{Roots: []string{"."}})
	if _, err := db.IndexFile(path, parser.Keywords{}); err != nil {
		t.Fatal(err)
	}

	insidePos := strings.Index(src, "let inside_marker")
	outsidePos := strings.Index(src, "let outside_marker")

	if defs, _ := db.FindDefinitionsAt("secret_def", path, insidePos); len(defs) != 1 {
		t.Errorf("Expected secret_def visible inside Wrapper, got %v", defs)
	}
	// The open dies with Wrapper's end; it must not leak into file scope.
	if defs, _ := db.FindDefinitionsAt("secret_def", path, outsidePos); len(defs) != 0 {
		t.Errorf("Expected secret_def invisible after Wrapper closed, got %v", defs)
	}
}

func TestFindDefinitionsAt_ResolvesModules(t *testing.T) {
	dir := t.TempDir()
	src := `module Utils = struct
  module Pair = struct
    let fst_def = new_definition ` + "`f`" + `;;
  end
end;;
open Utils;;
let marker = 1;;
`
	path := writeFile(t, dir, "mods.hl", src)
	db := newDB(t, Options{Roots: []string{"."}})
	if _, err := db.IndexFile(path, parser.Keywords{}); err != nil {
		t.Fatal(err)
	}

	pos := strings.Index(src, "let marker")
	_, mods := db.FindDefinitionsAt("Pair", path, pos)
	if len(mods) != 1 || mods[0].FullName != "Utils.Pair" {
		t.Errorf("Expected Utils.Pair via open Utils, got %v", mods)
	}

	_, mods = db.FindDefinitionsAt("Utils", path, 0)
	if len(mods) != 1 || mods[0].FullName != "Utils" {
		t.Errorf("Expected direct module hit, got %v", mods)
	}
}

func TestSearchPrefix_FilteredByClosure(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.hl", "needs \"b.hl\";;\nlet exp_a = new_definition `a`;;")
	writeFile(t, dir, "b.hl", "let exists_b = new_definition `b`;;\nlet even_b = 1;;")
	outside := writeFile(t, dir, "outside.hl", "let extra_def = new_definition `x`;;")
	db := newDB(t, Options{Roots: []string{"."}})

	if _, err := db.IndexDocumentWithDeps(context.Background(), a, parser.Keywords{}); err != nil {
		t.Fatal(err)
	}

	got := db.SearchPrefix("e", a)
	if len(got) != 3 {
		t.Fatalf("Expected 3 matches, got %d", len(got))
	}

	// Indexing an unrelated file outside the closure must not change results.
	if _, err := db.IndexFile(outside, parser.Keywords{}); err != nil {
		t.Fatal(err)
	}
	if got := db.SearchPrefix("e", a); len(got) != 3 {
		t.Errorf("Expected unrelated file to be excluded, got %d matches", len(got))
	}

	// Prefix search ignores module scope; names inside modules still appear.
	if got := db.SearchPrefix("ex", a); len(got) != 2 {
		t.Errorf("Expected 2 matches for 'ex', got %d", len(got))
	}
}

func TestRemoveFile_NoDanglingEntries(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.hl", "module M = struct let inner = 1;; end;;\nlet top = 1;;")
	db := newDB(t, Options{Roots: []string{"."}})
	if _, err := db.IndexFile(path, parser.Keywords{}); err != nil {
		t.Fatal(err)
	}

	db.RemoveFile(path)

	if defs := db.FindDefinitions("top", path, nil, false); len(defs) != 0 {
		t.Errorf("Expected no definitions after removal, got %v", defs)
	}
	if _, mods := db.FindDefinitionsAt("M", path, 0); len(mods) != 0 {
		t.Errorf("Expected no modules after removal, got %v", mods)
	}
	if got := db.Stats(); got.Files != 0 {
		t.Errorf("Expected empty database, got %+v", got)
	}
}

func TestIndexDocumentWithDeps_SkipsUnreadableDependency(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.hl", "needs \"b.hl\";;\nneeds \"c.hl\";;")
	b := writeFile(t, dir, "b.hl", "let fine = 1;;")
	c := writeFile(t, dir, "c.hl", "let gone = 1;;")
	db := newDB(t, Options{Roots: []string{"."}})

	// Resolve both, then make one unreadable before traversal re-stats it.
	if err := os.Remove(c); err != nil {
		t.Fatal(err)
	}

	report, err := db.IndexDocumentWithDeps(context.Background(), a, parser.Keywords{})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Unresolved) != 1 {
		t.Errorf("Expected c.hl unresolved, got %v", report.Unresolved)
	}
	if !db.IsDependency(a, b) {
		t.Error("Expected surviving dependency to be indexed")
	}
}
