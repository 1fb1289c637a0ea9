// Package diagnostics produces per-file "unknown identifier" findings by
// checking every identifier token against the symbol database.
package diagnostics

import (
	"fmt"
	"os"

	"holindex/internal/database"
	"holindex/internal/lexer"
)

type Severity string

const SeverityError Severity = "error"

// Finding is one diagnostic record keyed by file.
type Finding struct {
	Path      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
	Message   string
	Severity  Severity
}

// reserved words of the source language plus classification keywords; these
// are never reported as unknown identifiers.
var reserved = map[string]bool{
	"let": true, "rec": true, "in": true, "and": true, "fun": true,
	"function": true, "match": true, "with": true, "if": true, "then": true,
	"else": true, "true": true, "false": true, "module": true, "struct": true,
	"end": true, "open": true, "try": true, "o": true, "not": true,
	"needs": true, "loads": true, "loadt": true, "flyspeck_needs": true,
	"prove": true, "prove_by_refinement": true,
	"new_definition": true, "new_basic_definition": true, "define": true,
}

// Scan reads path, tokenizes it, and reports every identifier that resolves
// to neither a definition nor a module visible at its position.
func Scan(db *database.DB, path string, extraKnown []string) ([]Finding, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	src := string(content)
	lines := lexer.NewLineIndex(src)

	known := make(map[string]bool, len(extraKnown))
	for _, name := range extraKnown {
		known[name] = true
	}

	var findings []Finding
	sc := lexer.NewScanner(src)
	for {
		tok := sc.Next()
		if tok.Kind == lexer.EOF {
			break
		}
		if tok.Kind != lexer.Ident || reserved[tok.Text] || known[tok.Text] {
			continue
		}

		defs, mods := db.FindDefinitionsAt(tok.Text, path, tok.Start)
		if len(defs) > 0 || len(mods) > 0 {
			continue
		}

		start := lines.Position(tok.Start)
		end := lines.Position(tok.End)
		findings = append(findings, Finding{
			Path:      path,
			StartLine: start.Line,
			StartCol:  start.Column,
			EndLine:   end.Line,
			EndCol:    end.Column,
			Message:   fmt.Sprintf("unknown identifier: %s", tok.Text),
			Severity:  SeverityError,
		})
	}
	return findings, nil
}
