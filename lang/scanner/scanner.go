// Package scanner tokenizes wisp source text. It is intentionally the
// simplest component of the toolchain: its only contract with the compiler
// (lang/compiler) is that Scan yields a stream of token.Token values
// terminated by a token.EOF, each carrying a 1-based line number.
package scanner

import (
	"fmt"
	"strings"

	"github.com/mna/wisp/lang/token"
)

// Scanner tokenizes a single source buffer on demand. The zero value is not
// usable; construct one with New.
type Scanner struct {
	src     string
	start   int // start of the lexeme currently being scanned
	current int // offset of the next unread byte
	line    int
}

// New returns a Scanner positioned at the start of src.
func New(src string) *Scanner {
	return &Scanner{src: src, line: 1}
}

// Scan returns the next token in the source. Once it returns a token.EOF
// token, every subsequent call also returns token.EOF.
func (s *Scanner) Scan() token.Token {
	s.skipWhitespaceAndComments()
	s.start = s.current

	if s.atEnd() {
		return s.make(token.EOF)
	}

	c := s.advance()
	switch {
	case isAlpha(c):
		return s.identifier()
	case isDigit(c):
		return s.number()
	}

	switch c {
	case '(':
		return s.make(token.LPAREN)
	case ')':
		return s.make(token.RPAREN)
	case '{':
		return s.make(token.LBRACE)
	case '}':
		return s.make(token.RBRACE)
	case '[':
		return s.make(token.LBRACK)
	case ']':
		return s.make(token.RBRACK)
	case ';':
		return s.make(token.SEMI)
	case ':':
		return s.make(token.COLON)
	case ',':
		return s.make(token.COMMA)
	case '.':
		if s.matchByte('.') {
			return s.make(token.DOUBLEDOT)
		}
		return s.make(token.DOT)
	case '-':
		if s.matchByte('=') {
			return s.make(token.MINUS_EQ)
		}
		return s.make(token.MINUS)
	case '+':
		if s.matchByte('=') {
			return s.make(token.PLUS_EQ)
		}
		return s.make(token.PLUS)
	case '/':
		if s.matchByte('=') {
			return s.make(token.SLASH_EQ)
		}
		return s.make(token.SLASH)
	case '%':
		if s.matchByte('=') {
			return s.make(token.PERCENT_EQ)
		}
		return s.make(token.PERCENT)
	case '*':
		if s.matchByte('*') {
			if s.matchByte('=') {
				return s.make(token.STARSTAR_EQ)
			}
			return s.make(token.STARSTAR)
		}
		if s.matchByte('=') {
			return s.make(token.STAR_EQ)
		}
		return s.make(token.STAR)
	case '!':
		if s.matchByte('=') {
			return s.make(token.BANG_EQ)
		}
		return s.make(token.BANG)
	case '=':
		if s.matchByte('=') {
			return s.make(token.EQ_EQ)
		}
		return s.make(token.EQ)
	case '<':
		if s.matchByte('=') {
			return s.make(token.LT_EQ)
		}
		return s.make(token.LT)
	case '>':
		if s.matchByte('=') {
			return s.make(token.GT_EQ)
		}
		return s.make(token.GT)
	case '"':
		return s.string()
	}

	return s.errorf("unknown character '%c'", c)
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

func (s *Scanner) matchByte(want byte) bool {
	if s.atEnd() || s.src[s.current] != want {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) skipWhitespaceAndComments() {
	for !s.atEnd() {
		switch c := s.peek(); c {
		case ' ', '\r', '\t':
			s.current++
		case '\n':
			s.line++
			s.current++
		case '/':
			if s.peekNext() == '/' {
				for !s.atEnd() && s.peek() != '\n' {
					s.current++
				}
			} else if s.peekNext() == '*' {
				s.current += 2
				for !s.atEnd() && !(s.peek() == '*' && s.peekNext() == '/') {
					if s.peek() == '\n' {
						s.line++
					}
					s.current++
				}
				if !s.atEnd() {
					s.current += 2 // consume "*/"
				}
			} else {
				return
			}
		default:
			return
		}
	}
}

func (s *Scanner) identifier() token.Token {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.current++
	}
	return s.make(token.LookupIdent(s.src[s.start:s.current]))
}

func (s *Scanner) number() token.Token {
	for isDigit(s.peek()) {
		s.current++
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.current++ // consume '.'
		for isDigit(s.peek()) {
			s.current++
		}
	}
	if s.peek() == 'e' || s.peek() == 'E' {
		save := s.current
		s.current++
		if s.peek() == '+' || s.peek() == '-' {
			s.current++
		}
		if isDigit(s.peek()) {
			for isDigit(s.peek()) {
				s.current++
			}
		} else {
			s.current = save
		}
	}
	return s.make(token.NUMBER)
}

func (s *Scanner) string() token.Token {
	var sb strings.Builder
	startLine := s.line
	for !s.atEnd() && s.peek() != '"' {
		c := s.peek()
		if c == '\n' {
			s.line++
			sb.WriteByte(c)
			s.current++
			continue
		}
		if c == '\\' {
			s.current++
			if s.atEnd() {
				break
			}
			esc := s.advance()
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			default:
				t := token.Token{Kind: token.ILLEGAL, Lexeme: "unknown escape sequence '\\" + string(esc) + "'", Line: s.line}
				return t
			}
			continue
		}
		sb.WriteByte(c)
		s.current++
	}
	if s.atEnd() {
		return token.Token{Kind: token.ILLEGAL, Lexeme: "unterminated string", Line: startLine}
	}
	s.current++ // closing quote
	return token.Token{Kind: token.STRING, Lexeme: sb.String(), Line: startLine}
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func (s *Scanner) make(k token.Kind) token.Token {
	return token.Token{Kind: k, Lexeme: s.src[s.start:s.current], Line: s.line}
}

func (s *Scanner) errorf(format string, args ...any) token.Token {
	return token.Token{Kind: token.ILLEGAL, Lexeme: fmt.Sprintf(format, args...), Line: s.line}
}
