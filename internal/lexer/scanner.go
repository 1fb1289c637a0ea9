package lexer

// The proof-script dialect cannot be tokenized with an off-the-shelf grammar:
// comments nest, backtick terms are opaque atoms, and broken input must still
// produce a usable token stream. The scanner therefore works on raw bytes and
// never fails; malformed literals degrade to "consume to end of input".

type Kind int

const (
	EOF Kind = iota
	Comment
	String
	Term
	Separator
	LParen
	RParen
	Ident
	Other
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "eof"
	case Comment:
		return "comment"
	case String:
		return "string"
	case Term:
		return "term"
	case Separator:
		return "separator"
	case LParen:
		return "lparen"
	case RParen:
		return "rparen"
	case Ident:
		return "ident"
	case Other:
		return "other"
	}
	return "unknown"
}

// Token is a classified slice of the source text. Start and End are byte
// offsets (End exclusive). Text is the raw lexeme; Value is the payload with
// delimiters stripped for String and Term tokens and equals Text otherwise.
type Token struct {
	Kind  Kind
	Start int
	End   int
	Text  string
	Value string
}

// Scanner yields tokens from a source text with single-token lookahead.
type Scanner struct {
	src string
	pos int
	buf *Token
}

func NewScanner(src string) *Scanner {
	return &Scanner{src: src}
}

// Peek returns the next token without consuming it.
func (s *Scanner) Peek() Token {
	if s.buf == nil {
		t := s.scan()
		s.buf = &t
	}
	return *s.buf
}

// Next returns the next token and consumes it.
func (s *Scanner) Next() Token {
	if s.buf != nil {
		t := *s.buf
		s.buf = nil
		return t
	}
	return s.scan()
}

func (s *Scanner) scan() Token {
	s.skipSpace()

	start := s.pos
	if s.pos >= len(s.src) {
		return Token{Kind: EOF, Start: start, End: start}
	}

	c := s.src[s.pos]
	switch {
	case c == '(' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '*':
		return s.scanComment(start)
	case c == '(':
		s.pos++
		return s.token(LParen, start)
	case c == ')':
		s.pos++
		return s.token(RParen, start)
	case c == '"':
		return s.scanString(start)
	case c == '`':
		return s.scanTerm(start)
	case c == ';':
		for s.pos < len(s.src) && s.src[s.pos] == ';' {
			s.pos++
		}
		return s.token(Separator, start)
	case isIdentStart(c):
		s.pos++
		for s.pos < len(s.src) && isIdentPart(s.src[s.pos]) {
			s.pos++
		}
		return s.token(Ident, start)
	case isSymbol(c):
		s.pos++
		for s.pos < len(s.src) && isSymbol(s.src[s.pos]) {
			s.pos++
		}
		return s.token(Other, start)
	default:
		s.pos++
		return s.token(Other, start)
	}
}

// scanComment consumes a (* ... *) comment, tracking nesting depth. An
// unterminated comment runs to end of input and still yields a token.
func (s *Scanner) scanComment(start int) Token {
	depth := 0
	for s.pos < len(s.src) {
		if s.src[s.pos] == '(' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '*' {
			depth++
			s.pos += 2
			continue
		}
		if s.src[s.pos] == '*' && s.pos+1 < len(s.src) && s.src[s.pos+1] == ')' {
			depth--
			s.pos += 2
			if depth == 0 {
				break
			}
			continue
		}
		s.pos++
	}
	return s.token(Comment, start)
}

// scanString consumes a double-quoted string. A backslash escapes the
// following byte, including the closing quote.
func (s *Scanner) scanString(start int) Token {
	s.pos++ // opening quote
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '\\' && s.pos+1 < len(s.src) {
			s.pos += 2
			continue
		}
		s.pos++
		if c == '"' {
			break
		}
	}
	t := s.token(String, start)
	t.Value = stripDelimiters(t.Text, '"')
	return t
}

// scanTerm consumes a backtick-delimited term. Terms have no escape
// mechanism; the next backtick always closes.
func (s *Scanner) scanTerm(start int) Token {
	s.pos++ // opening backtick
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		s.pos++
		if c == '`' {
			break
		}
	}
	t := s.token(Term, start)
	t.Value = stripDelimiters(t.Text, '`')
	return t
}

func (s *Scanner) token(kind Kind, start int) Token {
	text := s.src[start:s.pos]
	return Token{Kind: kind, Start: start, End: s.pos, Text: text, Value: text}
}

func (s *Scanner) skipSpace() {
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case ' ', '\t', '\r', '\n':
			s.pos++
		default:
			return
		}
	}
}

func stripDelimiters(text string, delim byte) string {
	if len(text) > 0 && text[0] == delim {
		text = text[1:]
	}
	if len(text) > 0 && text[len(text)-1] == delim {
		text = text[:len(text)-1]
	}
	return text
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c == '\'' || (c >= '0' && c <= '9')
}

func isSymbol(c byte) bool {
	switch c {
	case '!', '$', '%', '&', '*', '+', '-', '.', '/', ':', '<', '=', '>', '?', '@', '^', '|', '~', '#':
		return true
	}
	return false
}
