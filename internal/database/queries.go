package database

import (
	"path/filepath"
	"sort"
	"strings"

	"holindex/internal/parser"
)

// FindDefinitions returns the definitions of name visible from fromFile.
// Candidates are filtered by dependency-closure membership, never
// deduplicated by name. When checkScope is set, a definition inside a module
// is only visible if that module or an ancestor is in openModules;
// file-global definitions are always visible. checkScope=false is the exact
// local lookup mode.
func (db *DB) FindDefinitions(name, fromFile string, openModules []string, checkScope bool) []*parser.Definition {
	closure := db.AllDependencies(fromFile)

	db.mu.RLock()
	defer db.mu.RUnlock()

	var out []*parser.Definition
	for _, def := range db.defIndex[name] {
		if !closure[def.FilePath] {
			continue
		}
		if checkScope && def.ModulePath != "" && !moduleInScope(def.ModulePath, openModules) {
			continue
		}
		out = append(out, def)
	}
	return out
}

// FindDefinitionsAt resolves name as seen from a position in fromFile. The
// effective open-set is built from the open declarations that precede the
// position; declarations occurring later in the file do not yet apply. The
// name is also resolved against the module index, both directly and through
// each opened module.
func (db *DB) FindDefinitionsAt(name, fromFile string, pos int) ([]*parser.Definition, []*parser.Module) {
	fromFile = filepath.Clean(fromFile)
	opens := db.opensBefore(fromFile, pos)

	defs := db.FindDefinitions(name, fromFile, opens, true)

	closure := db.AllDependencies(fromFile)
	db.mu.RLock()
	defer db.mu.RUnlock()

	var mods []*parser.Module
	if m, ok := db.modIndex[name]; ok && closure[m.FilePath] {
		mods = append(mods, m)
	}
	for _, open := range opens {
		if m, ok := db.modIndex[open+"."+name]; ok && closure[m.FilePath] {
			mods = append(mods, m)
		}
	}
	return defs, mods
}

// opensBefore collects the referenced module names of the open declarations
// visible at pos in fromFile, in source order. An open must precede pos, and
// an open declared inside a module struct applies only while pos is still
// within that struct; it goes out of scope at the closing end.
func (db *DB) opensBefore(fromFile string, pos int) []string {
	db.mu.RLock()
	defer db.mu.RUnlock()

	rec, ok := db.files[fromFile]
	if !ok {
		return nil
	}

	type positioned struct {
		name string
		pos  int
	}
	var decls []positioned

	collect := func(m *parser.Module) {
		for _, open := range m.Opens {
			if open.Pos < pos {
				decls = append(decls, positioned{name: open.Module, pos: open.Pos})
			}
		}
	}
	if rec.Global != nil {
		collect(rec.Global)
	}
	for _, m := range rec.Modules {
		if m.Pos <= pos && pos <= m.End {
			collect(m)
		}
	}

	sort.Slice(decls, func(i, j int) bool { return decls[i].pos < decls[j].pos })

	out := make([]string, 0, len(decls))
	for _, d := range decls {
		out = append(out, d.name)
	}
	return out
}

// SearchPrefix enumerates definitions whose name starts with prefix and
// whose file is in fromFile's dependency closure. Completion is deliberately
// scope-insensitive: module visibility is not consulted.
func (db *DB) SearchPrefix(prefix, fromFile string) []*parser.Definition {
	names := db.names.FindPrefix(prefix)
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)

	closure := db.AllDependencies(fromFile)

	db.mu.RLock()
	defer db.mu.RUnlock()

	var out []*parser.Definition
	for _, name := range names {
		for _, def := range db.defIndex[name] {
			if closure[def.FilePath] {
				out = append(out, def)
			}
		}
	}
	return out
}

// moduleInScope reports whether modulePath or one of its ancestors appears
// in the open-set.
func moduleInScope(modulePath string, openModules []string) bool {
	for _, open := range openModules {
		if open == "" {
			continue
		}
		if modulePath == open || strings.HasPrefix(modulePath, open+".") {
			return true
		}
	}
	return false
}
