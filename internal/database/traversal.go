package database

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"holindex/internal/parser"
	"holindex/internal/shared/observability"
)

// ScanReport aggregates the outcome of a closure-indexing pass.
type ScanReport struct {
	Document   string
	Indexed    []string // files (re)parsed during this pass
	Visited    int      // files reached by the traversal
	Unresolved []string // deduplicated unresolved dependency strings
	Duration   time.Duration
}

// IndexDocumentWithDeps indexes the base library (lazily, once), the
// requested document, and the document's full dependency closure. The
// traversal is an explicit worklist with a visited set, so cyclic needs
// graphs terminate and each file is parsed at most once per pass.
//
// A base-library failure is returned as the error, but only after the
// document itself has been indexed; the report is valid either way.
func (db *DB) IndexDocumentWithDeps(ctx context.Context, path string, kw parser.Keywords) (ScanReport, error) {
	ctx, span := observability.Tracer.Start(ctx, "db.IndexDocumentWithDeps")
	defer span.End()

	start := time.Now()
	path = filepath.Clean(path)
	report := ScanReport{Document: path}

	docRes, err := db.IndexFile(path, kw)
	if err != nil {
		return report, err
	}
	if docRes.Indexed {
		report.Indexed = append(report.Indexed, path)
	}

	baseErr := db.ensureBaseIndexed(kw, &report)

	unresolvedSet := make(map[string]bool)
	for _, u := range docRes.Unresolved {
		unresolvedSet[u] = true
	}

	visited := map[string]bool{path: true}
	stack := []string{path}
	for len(stack) > 0 {
		// Cancellation applies at file-boundary granularity only.
		if ctx.Err() != nil {
			break
		}

		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		rec, ok := db.GetFile(cur)
		if !ok {
			continue
		}
		for _, dep := range rec.Deps {
			if visited[dep] {
				continue
			}
			visited[dep] = true

			res, err := db.IndexFile(dep, kw)
			if err != nil {
				slog.Warn("failed to index dependency", "path", dep, "error", err)
				continue
			}
			if res.Indexed {
				report.Indexed = append(report.Indexed, dep)
			}
			for _, u := range res.Unresolved {
				unresolvedSet[u] = true
			}
			stack = append(stack, dep)
		}
	}

	for u := range unresolvedSet {
		report.Unresolved = append(report.Unresolved, u)
	}
	report.Visited = len(visited)
	report.Duration = time.Since(start)
	observability.ScanDuration.WithLabelValues("closure").Observe(report.Duration.Seconds())

	return report, baseErr
}

// ensureBaseIndexed scans and indexes the base-library corpus on the first
// call. The scan is flat, filtered to .hl sources, and skips configured
// generator scripts. Base files are always parsed with the empty keyword set
// so user configuration cannot corrupt the canonical libraries.
func (db *DB) ensureBaseIndexed(_ parser.Keywords, report *ScanReport) error {
	db.mu.RLock()
	done := db.baseIndexed
	db.mu.RUnlock()
	if done || db.baseDir == "" {
		return nil
	}

	info, err := os.Stat(db.baseDir)
	if err != nil {
		return fmt.Errorf("base library root %q: %w", db.baseDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("base library root %q is not a directory", db.baseDir)
	}

	entries, err := os.ReadDir(db.baseDir)
	if err != nil {
		return fmt.Errorf("scan base library %q: %w", db.baseDir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".hl") {
			continue
		}
		if db.isExcluded(entry.Name()) {
			continue
		}

		full := filepath.Join(db.baseDir, entry.Name())
		res, err := db.IndexFile(full, parser.Keywords{})
		if err != nil {
			slog.Warn("failed to index base file", "path", full, "error", err)
			continue
		}
		if res.Indexed && report != nil {
			report.Indexed = append(report.Indexed, full)
		}

		db.mu.Lock()
		db.baseFiles[filepath.Clean(full)] = true
		db.mu.Unlock()
	}

	db.mu.Lock()
	db.baseIndexed = true
	db.mu.Unlock()
	return nil
}

func (db *DB) isExcluded(name string) bool {
	for _, g := range db.excludes {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// IsDependency reports whether candidate is in file's dependency closure.
// It is reflexive, base files are a dependency of everything, and the
// reachability walk is cycle-safe.
func (db *DB) IsDependency(file, candidate string) bool {
	file = filepath.Clean(file)
	candidate = filepath.Clean(candidate)
	if file == candidate {
		return true
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.baseFiles[candidate] {
		return true
	}

	visited := map[string]bool{file: true}
	stack := []string{file}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		rec, ok := db.files[cur]
		if !ok {
			continue
		}
		for _, dep := range rec.Deps {
			if dep == candidate {
				return true
			}
			if !visited[dep] {
				visited[dep] = true
				stack = append(stack, dep)
			}
		}
	}
	return false
}

// AllDependencies returns file's full dependency closure, including base
// files and the file itself.
func (db *DB) AllDependencies(file string) map[string]bool {
	file = filepath.Clean(file)

	db.mu.RLock()
	defer db.mu.RUnlock()

	closure := make(map[string]bool, len(db.baseFiles)+1)
	for base := range db.baseFiles {
		closure[base] = true
	}

	closure[file] = true
	stack := []string{file}
	visited := map[string]bool{file: true}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		rec, ok := db.files[cur]
		if !ok {
			continue
		}
		for _, dep := range rec.Deps {
			if !visited[dep] {
				visited[dep] = true
				closure[dep] = true
				stack = append(stack, dep)
			}
		}
	}
	return closure
}
