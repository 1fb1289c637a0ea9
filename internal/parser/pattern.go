package parser

import "holindex/internal/lexer"

// slot is one position in a token pattern. Optional slots may be absent;
// required slots fail the whole pattern when they do not match.
type slot struct {
	match    func(lexer.Token) bool
	optional bool
}

// matchAt tries a pattern against the token stream starting at index i. On
// success it returns one token per slot (the zero Token for absent optional
// slots) and the index after the last consumed token.
func (p *fileParser) matchAt(i int, slots []slot) ([]lexer.Token, int, bool) {
	matched := make([]lexer.Token, len(slots))
	j := i
	for s, sl := range slots {
		t := p.at(j)
		if t.Kind != lexer.EOF && sl.match(t) {
			matched[s] = t
			j++
			continue
		}
		if sl.optional {
			continue
		}
		return nil, i, false
	}
	return matched, j, true
}

func kindIs(kind lexer.Kind) func(lexer.Token) bool {
	return func(t lexer.Token) bool { return t.Kind == kind }
}

func identText(text string) func(lexer.Token) bool {
	return func(t lexer.Token) bool { return t.Kind == lexer.Ident && t.Text == text }
}

func otherText(text string) func(lexer.Token) bool {
	return func(t lexer.Token) bool { return t.Kind == lexer.Other && t.Text == text }
}

func anyToken(t lexer.Token) bool { return true }

func (p *fileParser) identIn(set map[string]bool) func(lexer.Token) bool {
	return func(t lexer.Token) bool { return t.Kind == lexer.Ident && set[t.Text] }
}
