package parser

import (
	"holindex/internal/lexer"
)

// Parse tokenizes text and recognizes the statement shapes the index cares
// about: import directives, module/open declarations and let bindings. It
// never fails; statements that match no known shape are skipped to the next
// ;; separator. Malformed input degrades, it does not abort.
func Parse(text string, kw Keywords, path string) *Result {
	p := &fileParser{
		kw:   newKeywordSets(kw),
		path: path,
		res: &Result{
			GlobalModule: &Module{FilePath: path},
		},
	}

	sc := lexer.NewScanner(text)
	for {
		t := sc.Next()
		if t.Kind == lexer.EOF {
			break
		}
		if t.Kind == lexer.Comment {
			continue
		}
		p.toks = append(p.toks, t)
	}

	p.parseScope(p.res.GlobalModule, true)
	return p.res
}

type fileParser struct {
	toks []lexer.Token
	i    int
	kw   keywordSets
	path string
	res  *Result
}

func (p *fileParser) cur() lexer.Token {
	return p.at(p.i)
}

func (p *fileParser) at(i int) lexer.Token {
	if i >= len(p.toks) {
		end := 0
		if len(p.toks) > 0 {
			end = p.toks[len(p.toks)-1].End
		}
		return lexer.Token{Kind: lexer.EOF, Start: end, End: end}
	}
	return p.toks[i]
}

// parseScope consumes statements until end of input or, below the top level,
// the "end" that closes the enclosing struct.
func (p *fileParser) parseScope(scope *Module, topLevel bool) {
	for {
		t := p.cur()
		switch t.Kind {
		case lexer.EOF:
			return
		case lexer.Separator:
			p.i++
		case lexer.Ident:
			switch {
			case t.Text == "end" && !topLevel:
				return
			case p.kw.imports[t.Text]:
				p.parseImport()
			case t.Text == "let":
				p.parseLet(scope)
			case t.Text == "module":
				p.parseModule(scope)
			case t.Text == "open":
				p.parseOpen(scope)
			default:
				p.skipToSeparator()
			}
		default:
			p.skipToSeparator()
		}
	}
}

// parseImport handles `needs "file.hl"` and friends. The dependency is the
// string contents with quotes stripped.
func (p *fileParser) parseImport() {
	matched, next, ok := p.matchAt(p.i+1, []slot{
		{match: kindIs(lexer.String)},
	})
	if ok {
		p.res.Dependencies = append(p.res.Dependencies, matched[0].Value)
		p.i = next
	}
	p.skipToSeparator()
}

// parseLet classifies a top-level binding. Shapes are tried in a fixed
// order; the first match wins. A binding that matches none of them is still
// recorded as a definition of kind other, so every let introduces a findable
// name.
func (p *fileParser) parseLet(scope *Module) {
	head, next, ok := p.matchAt(p.i+1, []slot{
		{match: identText("rec"), optional: true},
		{match: kindIs(lexer.LParen), optional: true},
		{match: kindIs(lexer.Ident)},
	})
	if !ok {
		p.skipToSeparator()
		return
	}
	name := head[2]
	p.i = next

	def := &Definition{
		Name:       name.Text,
		Kind:       KindOther,
		Pos:        name.Start,
		ModulePath: scope.FullName,
		FilePath:   p.path,
	}

	if p.cur().Kind == lexer.Other && p.cur().Text == "=" {
		p.i++
		kind, content, consumed := p.classifyBody()
		def.Kind = kind
		def.Content = content
		p.i = consumed
	}

	p.res.Definitions = append(p.res.Definitions, def)
	p.skipToSeparator()
}

// classifyBody matches the right-hand side of a binding against the theorem
// and definition shapes. It returns the classification plus the index after
// the matched tokens; on no match the binding stays kind other and nothing
// past the = is claimed.
func (p *fileParser) classifyBody() (DefinitionKind, string, int) {
	// Theorem: prove-style keyword applied to a backtick term.
	if m, next, ok := p.matchAt(p.i, []slot{
		{match: p.identIn(p.kw.theorems)},
		{match: kindIs(lexer.LParen), optional: true},
		{match: kindIs(lexer.Term)},
	}); ok {
		return KindTheorem, m[2].Value, next
	}

	// Definition: define-style keyword directly followed by a term.
	if m, next, ok := p.matchAt(p.i, []slot{
		{match: p.identIn(p.kw.definitions)},
		{match: kindIs(lexer.Term)},
	}); ok {
		return KindDefinition, m[1].Value, next
	}

	// Definition with one intervening token, covering recursive-definition
	// helpers and parenthesized applications.
	if m, next, ok := p.matchAt(p.i, []slot{
		{match: p.identIn(p.kw.definitions)},
		{match: anyToken},
		{match: kindIs(lexer.Term)},
	}); ok {
		return KindDefinition, m[2].Value, next
	}

	return KindOther, "", p.i
}

// parseModule handles `module NAME = struct ... end`. Anything else starting
// with the module keyword is skipped as an unknown statement.
func (p *fileParser) parseModule(parent *Module) {
	moduleTok := p.cur()
	head, next, ok := p.matchAt(p.i+1, []slot{
		{match: kindIs(lexer.Ident)},
		{match: otherText("=")},
		{match: identText("struct")},
	})
	if !ok {
		p.skipToSeparator()
		return
	}
	p.i = next

	name := head[0].Text
	mod := &Module{
		Name:     name,
		FullName: joinModulePath(parent.FullName, name),
		Pos:      moduleTok.Start,
		FilePath: p.path,
	}
	parent.Children = append(parent.Children, mod)
	p.res.Modules = append(p.res.Modules, mod)

	p.parseScope(mod, false)

	end := p.cur()
	if end.Kind == lexer.Ident && end.Text == "end" {
		mod.End = end.End
		p.i++
	} else {
		// Unterminated struct: runs to end of input.
		mod.End = end.End
	}
	// Nested modules are not required to carry their own terminator.
	if p.cur().Kind == lexer.Separator {
		p.i++
	}
}

// parseOpen records an open declaration at its source position. Later code
// in the same scope sees the opened module; earlier code does not.
func (p *fileParser) parseOpen(scope *Module) {
	openTok := p.cur()
	matched, next, ok := p.matchAt(p.i+1, []slot{
		{match: kindIs(lexer.Ident)},
	})
	if ok {
		scope.Opens = append(scope.Opens, OpenDecl{
			Module: matched[0].Text,
			Pos:    openTok.Start,
			End:    matched[0].End,
		})
		p.i = next
	}
	p.skipToSeparator()
}

// skipToSeparator advances past the next statement separator. Separators
// inside comments, strings and terms were consumed as part of those tokens
// by the scanner, so they cannot end a statement here.
func (p *fileParser) skipToSeparator() {
	for {
		t := p.cur()
		if t.Kind == lexer.EOF {
			return
		}
		p.i++
		if t.Kind == lexer.Separator {
			return
		}
	}
}

func joinModulePath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}
