// Package scanner implements a lexer for the TFormula expression dialect.
// It takes a string as source which can then be tokenized through repeated
// calls to Scan.
package scanner

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"correctionlib.dev/go/formula/token"
)

// ErrorHandler is invoked for each illegal character or malformed literal
// the scanner encounters. pos is the byte offset at which the error was
// detected.
type ErrorHandler func(pos token.Pos, msg string)

// A Scanner holds the scanner's internal state while lexing a single
// formula expression. It must be initialized via Init before use.
type Scanner struct {
	src []byte
	err ErrorHandler

	ch       rune
	offset   int
	rdOffset int

	ErrorCount int
}

const eof = -1

// Init prepares s to tokenize src. Calls to Scan invoke err, if non-nil,
// for each illegal character encountered, and ErrorCount is incremented
// once per call.
func (s *Scanner) Init(src []byte, err ErrorHandler) {
	s.src = src
	s.err = err
	s.ch = ' '
	s.offset = 0
	s.rdOffset = 0
	s.ErrorCount = 0
	s.next()
}

func (s *Scanner) next() {
	if s.rdOffset < len(s.src) {
		s.offset = s.rdOffset
		r, w := rune(s.src[s.rdOffset]), 1
		if r >= utf8.RuneSelf {
			r, w = utf8.DecodeRune(s.src[s.rdOffset:])
		}
		s.rdOffset += w
		s.ch = r
	} else {
		s.offset = len(s.src)
		s.ch = eof
	}
}

func (s *Scanner) peek() byte {
	if s.rdOffset < len(s.src) {
		return s.src[s.rdOffset]
	}
	return 0
}

func (s *Scanner) error(offs int, msg string) {
	s.ErrorCount++
	if s.err != nil {
		s.err(token.Pos(offs), msg)
	}
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func (s *Scanner) skipWhitespace() {
	for s.ch == ' ' || s.ch == '\t' || s.ch == '\n' || s.ch == '\r' {
		s.next()
	}
}

// Scan reads the next token from the source, returning its position, token
// kind, and literal text (meaningful for NUMBER and IDENT).
func (s *Scanner) Scan() (pos token.Pos, tok token.Token, lit string) {
	s.skipWhitespace()
	pos = token.Pos(s.offset)

	switch ch := s.ch; {
	case isLetter(ch):
		lit = s.scanIdentifier()
		tok = token.IDENT
	case isDigit(ch) || (ch == '.' && isDigit(rune(s.peek()))):
		tok, lit = s.scanNumber()
	default:
		s.next()
		switch ch {
		case eof:
			tok = token.EOF
		case '[':
			tok = token.LBRACK
		case ']':
			tok = token.RBRACK
		case '(':
			tok = token.LPAREN
		case ')':
			tok = token.RPAREN
		case ',':
			tok = token.COMMA
		case '+':
			tok = token.ADD
		case '-':
			tok = token.SUB
		case '*':
			tok = token.MUL
		case '/':
			tok = token.QUO
		case '^':
			tok = token.POW
		case '<':
			if s.ch == '=' {
				s.next()
				tok = token.LEQ
			} else {
				tok = token.LSS
			}
		case '>':
			if s.ch == '=' {
				s.next()
				tok = token.GEQ
			} else {
				tok = token.GTR
			}
		case '=':
			if s.ch == '=' {
				s.next()
				tok = token.EQL
			} else {
				s.error(int(pos), "expected '==', got '='")
				tok = token.ILLEGAL
			}
		case '!':
			if s.ch == '=' {
				s.next()
				tok = token.NEQ
			} else {
				s.error(int(pos), "expected '!=', got '!'")
				tok = token.ILLEGAL
			}
		case '&':
			if s.ch == '&' {
				s.next()
				tok = token.LAND
			} else {
				s.error(int(pos), "expected '&&', got '&'")
				tok = token.ILLEGAL
			}
		case '|':
			if s.ch == '|' {
				s.next()
				tok = token.LOR
			} else {
				s.error(int(pos), "expected '||', got '|'")
				tok = token.ILLEGAL
			}
		default:
			s.error(int(pos), fmt.Sprintf("illegal character %#U", ch))
			tok = token.ILLEGAL
		}
	}
	return
}

func (s *Scanner) scanIdentifier() string {
	offs := s.offset
	for isLetter(s.ch) || isDigit(s.ch) {
		s.next()
	}
	return string(s.src[offs:s.offset])
}

// scanNumber scans a decimal or scientific-notation literal: digits,
// an optional fractional part, and an optional exponent.
func (s *Scanner) scanNumber() (token.Token, string) {
	offs := s.offset
	for isDigit(s.ch) {
		s.next()
	}
	if s.ch == '.' {
		s.next()
		for isDigit(s.ch) {
			s.next()
		}
	}
	if s.ch == 'e' || s.ch == 'E' {
		save, saveRd := s.offset, s.rdOffset
		saveCh := s.ch
		s.next()
		if s.ch == '+' || s.ch == '-' {
			s.next()
		}
		if isDigit(s.ch) {
			for isDigit(s.ch) {
				s.next()
			}
		} else {
			// Not actually an exponent; rewind.
			s.offset, s.rdOffset, s.ch = save, saveRd, saveCh
		}
	}
	return token.NUMBER, string(s.src[offs:s.offset])
}
