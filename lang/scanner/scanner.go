// Package scanner converts Caboose source text into a lazy sequence of
// tokens, on demand, for the compiler to consume.
//
// The cursor-advance shape (start/current/line fields, an advance/peek pair,
// byte offsets into the source rather than a copy) follows the teacher's
// lang/scanner package; the token set and escaping rules follow spec.md §4.1.
package scanner

import (
	"strings"

	"github.com/CabooseLang/Caboose/lang/token"
)

// Scanner is a stateful cursor over a source buffer.
type Scanner struct {
	src     string
	start   int // start of the token being scanned
	current int // next byte to read
	line    int
}

// New returns a Scanner positioned at the start of src.
func New(src string) *Scanner {
	return &Scanner{src: src, line: 1}
}

// Init resets the scanner to tokenize a new source buffer, reusing the
// Scanner value.
func (s *Scanner) Init(src string) {
	s.src = src
	s.start = 0
	s.current = 0
	s.line = 1
}

func (s *Scanner) atEnd() bool { return s.current >= len(s.src) }

func (s *Scanner) advance() byte {
	c := s.src[s.current]
	s.current++
	return c
}

func (s *Scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.src[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.src) {
		return 0
	}
	return s.src[s.current+1]
}

func (s *Scanner) match(expected byte) bool {
	if s.atEnd() || s.src[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) makeToken(k token.Kind) token.Token {
	return token.Token{Kind: k, Lexeme: s.src[s.start:s.current], Line: s.line}
}

func (s *Scanner) errorToken(msg string) token.Token {
	return token.Token{Kind: token.ILLEGAL, Lexeme: s.src[s.start:s.current], Line: s.line, Message: msg}
}

// ScanToken produces the next token in the source, skipping whitespace and
// comments first. It never returns an error directly: a lexical problem is
// reported as a token.ILLEGAL token carrying a Message, exactly like the
// reference scanner's TOKEN_ERROR.
func (s *Scanner) ScanToken() token.Token {
	s.skipWhitespace()
	s.start = s.current
	if s.atEnd() {
		return s.makeToken(token.EOF)
	}

	c := s.advance()
	if isAlpha(c) {
		return s.identifier()
	}
	if isDigit(c) {
		return s.number()
	}

	switch c {
	case '(':
		return s.makeToken(token.LPAREN)
	case ')':
		return s.makeToken(token.RPAREN)
	case '{':
		return s.makeToken(token.LBRACE)
	case '}':
		return s.makeToken(token.RBRACE)
	case '[':
		return s.makeToken(token.LBRACK)
	case ']':
		return s.makeToken(token.RBRACK)
	case ';':
		return s.makeToken(token.SEMI)
	case ':':
		return s.makeToken(token.COLON)
	case ',':
		return s.makeToken(token.COMMA)
	case '.':
		return s.makeToken(token.DOT)
	case '%':
		return s.makeToken(token.PERCENT)
	case '-':
		if s.match('=') {
			return s.makeToken(token.MINUS_EQ)
		}
		if s.match('-') {
			return s.makeToken(token.MINUS_MINUS)
		}
		return s.makeToken(token.MINUS)
	case '+':
		if s.match('=') {
			return s.makeToken(token.PLUS_EQ)
		}
		if s.match('+') {
			return s.makeToken(token.PLUS_PLUS)
		}
		return s.makeToken(token.PLUS)
	case '/':
		if s.match('=') {
			return s.makeToken(token.SLASH_EQ)
		}
		return s.makeToken(token.SLASH)
	case '*':
		if s.match('=') {
			return s.makeToken(token.STAR_EQ)
		}
		return s.makeToken(token.STAR)
	case '!':
		if s.match('=') {
			return s.makeToken(token.BANG_EQ)
		}
		return s.makeToken(token.BANG)
	case '=':
		if s.match('=') {
			return s.makeToken(token.EQ_EQ)
		}
		return s.makeToken(token.EQ)
	case '<':
		if s.match('=') {
			return s.makeToken(token.LT_EQ)
		}
		return s.makeToken(token.LT)
	case '>':
		if s.match('=') {
			return s.makeToken(token.GT_EQ)
		}
		return s.makeToken(token.GT)
	case '"', '\'':
		return s.string(c)
	}

	return s.errorToken("Unexpected character.")
}

func (s *Scanner) skipWhitespace() {
	for {
		switch s.peek() {
		case ' ', '\r', '\t':
			s.advance()
		case '\n':
			s.line++
			s.advance()
		case '/':
			if s.peekNext() == '/' {
				for s.peek() != '\n' && !s.atEnd() {
					s.advance()
				}
			} else if s.peekNext() == '*' {
				s.skipBlockComment()
			} else {
				return
			}
		default:
			return
		}
	}
}

// skipBlockComment consumes a nested-aware /* ... */ comment. Entry: cursor
// is positioned just after the opening '/'.
func (s *Scanner) skipBlockComment() {
	s.advance() // '/'
	s.advance() // '*'
	depth := 1
	for depth > 0 && !s.atEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		if s.peek() == '/' && s.peekNext() == '*' {
			s.advance()
			s.advance()
			depth++
			continue
		}
		if s.peek() == '*' && s.peekNext() == '/' {
			s.advance()
			s.advance()
			depth--
			continue
		}
		s.advance()
	}
}

// string scans a short string literal delimited by quote, honoring a
// one-character backslash escape that skips the next byte without decoding
// it (spec.md §4.1: "no decoding of escapes is performed at scan time").
func (s *Scanner) string(quote byte) token.Token {
	var sb strings.Builder
	for s.peek() != quote && !s.atEnd() {
		c := s.peek()
		if c == '\n' {
			s.line++
		}
		if c == '\\' && s.peekNext() != 0 {
			s.advance()
			sb.WriteByte(s.advance())
			continue
		}
		sb.WriteByte(s.advance())
	}

	if s.atEnd() {
		return s.errorToken("Unterminated string.")
	}
	s.advance() // closing quote

	tok := s.makeToken(token.STRING)
	tok.Lexeme = sb.String()
	return tok
}

func (s *Scanner) number() token.Token {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance() // consume '.'
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	return s.makeToken(token.NUMBER)
}

func (s *Scanner) identifier() token.Token {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.advance()
	}
	lit := s.src[s.start:s.current]
	return s.makeToken(token.LookupIdent(lit))
}

func isAlpha(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
