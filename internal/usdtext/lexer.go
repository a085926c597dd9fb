// Package usdtext parses the subset of the USDA text format needed to read
// skeletal schema data: nested prim definitions, typed attributes with
// scalar, tuple, and list values, relationship targets, and metadata
// blocks. Constructs outside the subset are skipped structurally so real
// exporter output still parses.
package usdtext

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenIdent
	tokenString
	tokenNumber
	tokenPathRef
	tokenAssetRef
	tokenPunct
)

func (k tokenKind) String() string {
	switch k {
	case tokenEOF:
		return "end of input"
	case tokenIdent:
		return "identifier"
	case tokenString:
		return "string"
	case tokenNumber:
		return "number"
	case tokenPathRef:
		return "path reference"
	case tokenAssetRef:
		return "asset reference"
	case tokenPunct:
		return "punctuation"
	default:
		return "unknown token"
	}
}

type token struct {
	kind tokenKind
	text string
	line int
}

type lexer struct {
	src  []byte
	pos  int
	line int
}

func newLexer(src []byte) *lexer {
	return &lexer{src: src, line: 1}
}

func (l *lexer) errorf(format string, args ...any) error {
	return fmt.Errorf("line %d: %s", l.line, fmt.Sprintf(format, args...))
}

func (l *lexer) peekByte() (byte, bool) {
	if l.pos >= len(l.src) {
		return 0, false
	}
	return l.src[l.pos], true
}

func (l *lexer) advance() byte {
	c := l.src[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
	}
	return c
}

func (l *lexer) skipSpaceAndComments() {
	for {
		c, ok := l.peekByte()
		if !ok {
			return
		}
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
		case c == '#':
			for {
				c, ok := l.peekByte()
				if !ok || c == '\n' {
					break
				}
				l.advance()
			}
		default:
			return
		}
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentByte(c byte) bool {
	return isIdentStart(c) || c == ':' || c == '.' || (c >= '0' && c <= '9')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// next returns the next token. Strings support single, double, and triple
// quoting with backslash escapes left verbatim apart from the quote itself.
func (l *lexer) next() (token, error) {
	l.skipSpaceAndComments()
	line := l.line

	c, ok := l.peekByte()
	if !ok {
		return token{kind: tokenEOF, line: line}, nil
	}

	switch {
	case isIdentStart(c):
		start := l.pos
		for {
			c, ok := l.peekByte()
			if !ok || !isIdentByte(c) {
				break
			}
			l.advance()
		}
		return token{kind: tokenIdent, text: string(l.src[start:l.pos]), line: line}, nil

	case isDigit(c) || c == '-' || c == '+':
		start := l.pos
		l.advance()
		for {
			c, ok := l.peekByte()
			if !ok {
				break
			}
			if isDigit(c) || c == '.' || c == 'e' || c == 'E' {
				l.advance()
				continue
			}
			// Exponent sign.
			if (c == '-' || c == '+') && l.pos > start {
				prev := l.src[l.pos-1]
				if prev == 'e' || prev == 'E' {
					l.advance()
					continue
				}
			}
			break
		}
		text := string(l.src[start:l.pos])
		if text == "-" || text == "+" {
			return token{}, l.errorf("dangling sign %q", text)
		}
		return token{kind: tokenNumber, text: text, line: line}, nil

	case c == '"' || c == '\'':
		text, err := l.lexString()
		if err != nil {
			return token{}, err
		}
		return token{kind: tokenString, text: text, line: line}, nil

	case c == '<':
		l.advance()
		start := l.pos
		for {
			c, ok := l.peekByte()
			if !ok {
				return token{}, l.errorf("unterminated path reference")
			}
			if c == '>' {
				break
			}
			l.advance()
		}
		text := string(l.src[start:l.pos])
		l.advance()
		return token{kind: tokenPathRef, text: text, line: line}, nil

	case c == '@':
		l.advance()
		start := l.pos
		for {
			c, ok := l.peekByte()
			if !ok {
				return token{}, l.errorf("unterminated asset reference")
			}
			if c == '@' {
				break
			}
			l.advance()
		}
		text := string(l.src[start:l.pos])
		l.advance()
		return token{kind: tokenAssetRef, text: text, line: line}, nil

	case strings.IndexByte("{}()[],=;:", c) >= 0:
		l.advance()
		return token{kind: tokenPunct, text: string(c), line: line}, nil

	default:
		return token{}, l.errorf("unexpected character %q", c)
	}
}

func (l *lexer) lexString() (string, error) {
	quote := l.advance()
	triple := false
	if c, ok := l.peekByte(); ok && c == quote {
		l.advance()
		if c, ok := l.peekByte(); ok && c == quote {
			l.advance()
			triple = true
		} else {
			// Empty short string.
			return "", nil
		}
	}

	var b strings.Builder
	for {
		c, ok := l.peekByte()
		if !ok {
			return "", l.errorf("unterminated string")
		}
		if !triple && c == '\n' {
			return "", l.errorf("newline in string")
		}
		if c == '\\' {
			l.advance()
			esc, ok := l.peekByte()
			if !ok {
				return "", l.errorf("unterminated string escape")
			}
			l.advance()
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '\\', '"', '\'':
				b.WriteByte(esc)
			default:
				b.WriteByte('\\')
				b.WriteByte(esc)
			}
			continue
		}
		if c == quote {
			if !triple {
				l.advance()
				return b.String(), nil
			}
			if l.pos+2 < len(l.src) && l.src[l.pos+1] == quote && l.src[l.pos+2] == quote {
				l.advance()
				l.advance()
				l.advance()
				return b.String(), nil
			}
		}
		b.WriteByte(c)
		l.advance()
	}
}
