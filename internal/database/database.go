// Package database owns the cross-file symbol index: per-file records, the
// definition and module indexes, the prefix trie and the dependency closure
// queries built on top of them.
package database

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gobwas/glob"

	"holindex/internal/parser"
	"holindex/internal/resolver"
	"holindex/internal/shared/observability"
	"holindex/internal/trie"
)

// FileRecord holds everything the index knows about one file. Records are
// replaced atomically on (re)indexing: old entries are removed from the
// shared indexes before the new ones are added.
type FileRecord struct {
	Path        string
	ModTime     time.Time
	Deps        []string // resolved direct dependency paths
	Unresolved  []string // dependency strings that failed to resolve
	Definitions []*parser.Definition
	Modules     []*parser.Module
	Global      *parser.Module
}

// Options configures a database instance.
type Options struct {
	// Roots is the ordered root-path list for dependency resolution; "."
	// stands for the importing file's directory.
	Roots []string
	// BaseLibrary is the directory of the canonical library corpus. Its
	// files are an implicit dependency of every other file. Empty disables
	// the base-library step.
	BaseLibrary string
	// ExcludeFiles are glob patterns skipped during the base-library scan
	// (generator scripts that are not real library sources).
	ExcludeFiles []string
}

// DB is the symbol database. Mutations happen only through the indexing
// entry points; queries are safe between indexing passes.
type DB struct {
	mu sync.RWMutex

	resolver *resolver.Resolver
	baseDir  string
	excludes []glob.Glob

	files    map[string]*FileRecord
	defIndex map[string][]*parser.Definition // name -> defs, duplicates across files allowed
	modIndex map[string]*parser.Module       // full name -> module
	names    *trie.Trie                      // definition names for prefix search

	baseFiles   map[string]bool
	baseIndexed bool
}

func New(opts Options) (*DB, error) {
	excludes := make([]glob.Glob, 0, len(opts.ExcludeFiles))
	for _, pattern := range opts.ExcludeFiles {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		excludes = append(excludes, g)
	}

	return &DB{
		resolver:  resolver.New(opts.Roots),
		baseDir:   opts.BaseLibrary,
		excludes:  excludes,
		files:     make(map[string]*FileRecord),
		defIndex:  make(map[string][]*parser.Definition),
		modIndex:  make(map[string]*parser.Module),
		names:     trie.New(),
		baseFiles: make(map[string]bool),
	}, nil
}

// IndexResult reports the outcome of a single-file index operation.
type IndexResult struct {
	// Indexed is false when the file was already current and no parse ran.
	Indexed    bool
	Deps       []string
	Unresolved []string
}

// IndexFile stats, reads and parses one file, replacing its record and index
// entries. Indexing an unchanged file is a no-op returning the cached
// dependency lists.
func (db *DB) IndexFile(path string, kw parser.Keywords) (IndexResult, error) {
	path = filepath.Clean(path)

	info, err := os.Stat(path)
	if err != nil {
		return IndexResult{}, fmt.Errorf("stat %q: %w", path, err)
	}

	db.mu.RLock()
	rec, ok := db.files[path]
	db.mu.RUnlock()
	if ok && !info.ModTime().After(rec.ModTime) {
		return IndexResult{Indexed: false, Deps: rec.Deps, Unresolved: rec.Unresolved}, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return IndexResult{}, fmt.Errorf("read %q: %w", path, err)
	}

	start := time.Now()
	res := parser.Parse(string(content), kw, path)
	observability.ParsingDuration.Observe(time.Since(start).Seconds())
	observability.ReindexedFilesTotal.Inc()

	deps := make([]string, 0, len(res.Dependencies))
	unresolved := make([]string, 0)
	baseDir := filepath.Dir(path)
	for _, raw := range res.Dependencies {
		resolved, ok := db.resolver.Resolve(raw, baseDir)
		if !ok {
			unresolved = append(unresolved, raw)
			observability.UnresolvedDependencies.Inc()
			continue
		}
		deps = append(deps, filepath.Clean(resolved))
	}

	record := &FileRecord{
		Path:        path,
		ModTime:     info.ModTime(),
		Deps:        deps,
		Unresolved:  unresolved,
		Definitions: res.Definitions,
		Modules:     res.Modules,
		Global:      res.GlobalModule,
	}

	db.mu.Lock()
	db.removeLocked(path)
	db.addLocked(record)
	db.updateGaugesLocked()
	db.mu.Unlock()

	return IndexResult{Indexed: true, Deps: deps, Unresolved: unresolved}, nil
}

// RemoveFile evicts a file and all its index entries. Trie keys are not
// pruned; orphaned names are filtered out at query time because their
// definition lists are gone.
func (db *DB) RemoveFile(path string) {
	path = filepath.Clean(path)
	db.mu.Lock()
	defer db.mu.Unlock()
	db.removeLocked(path)
	delete(db.baseFiles, path)
	db.updateGaugesLocked()
}

func (db *DB) addLocked(rec *FileRecord) {
	db.files[rec.Path] = rec
	for _, def := range rec.Definitions {
		def.FilePath = rec.Path
		db.defIndex[def.Name] = append(db.defIndex[def.Name], def)
		db.names.Add(def.Name, def.Name)
	}
	for _, mod := range rec.Modules {
		mod.FilePath = rec.Path
		db.modIndex[mod.FullName] = mod
	}
}

func (db *DB) removeLocked(path string) {
	rec, ok := db.files[path]
	if !ok {
		return
	}

	for _, def := range rec.Definitions {
		defs := db.defIndex[def.Name]
		for i, d := range defs {
			if d == def {
				db.defIndex[def.Name] = append(defs[:i], defs[i+1:]...)
				break
			}
		}
		if len(db.defIndex[def.Name]) == 0 {
			delete(db.defIndex, def.Name)
		}
	}

	for _, mod := range rec.Modules {
		if cur, ok := db.modIndex[mod.FullName]; ok && cur == mod {
			delete(db.modIndex, mod.FullName)
		}
	}

	delete(db.files, path)
}

func (db *DB) updateGaugesLocked() {
	defs := 0
	mods := 0
	for _, rec := range db.files {
		defs += len(rec.Definitions)
		mods += len(rec.Modules)
	}
	observability.IndexedFiles.Set(float64(len(db.files)))
	observability.IndexedDefinitions.Set(float64(defs))
	observability.IndexedModules.Set(float64(mods))
}

// GetFile returns the record for a path, if indexed.
func (db *DB) GetFile(path string) (*FileRecord, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	rec, ok := db.files[filepath.Clean(path)]
	return rec, ok
}

// Stats reports current index sizes.
type Stats struct {
	Files       int
	Definitions int
	Modules     int
	BaseFiles   int
}

func (db *DB) Stats() Stats {
	db.mu.RLock()
	defer db.mu.RUnlock()
	s := Stats{Files: len(db.files), BaseFiles: len(db.baseFiles)}
	for _, rec := range db.files {
		s.Definitions += len(rec.Definitions)
		s.Modules += len(rec.Modules)
	}
	return s
}
