package sqlgate

import (
	"errors"
	"unicode"
	"unicode/utf8"
)

// The gate never needs a full parse tree; it needs token boundaries that are
// stable across comments, string literals, quoted identifiers and dollar
// quotes, with exact byte offsets so rewrites can splice the original text.

type tokenKind int

const (
	kindWord tokenKind = iota
	kindNumber
	kindLiteral // string literal or quoted identifier
	kindLParen
	kindRParen
	kindComma
	kindSemicolon
	kindPunct
)

type sqlToken struct {
	kind  tokenKind
	upper string // uppercased text, words only
	start int    // byte offset into the input
	end   int    // one past the last byte
	depth int    // paren nesting depth at the token
}

type scanner struct {
	input string
	pos   int
	depth int
}

func scanTokens(input string) ([]sqlToken, error) {
	s := &scanner{input: input}
	var toks []sqlToken

	for {
		if err := s.skipSpaceAndComments(); err != nil {
			return nil, err
		}
		if s.pos >= len(s.input) {
			return toks, nil
		}

		start := s.pos
		ch, _ := utf8.DecodeRuneInString(s.input[s.pos:])

		switch {
		case ch == '(':
			s.pos++
			toks = append(toks, sqlToken{kind: kindLParen, start: start, end: s.pos, depth: s.depth})
			s.depth++
		case ch == ')':
			s.pos++
			if s.depth > 0 {
				s.depth--
			}
			toks = append(toks, sqlToken{kind: kindRParen, start: start, end: s.pos, depth: s.depth})
		case ch == ',':
			s.pos++
			toks = append(toks, sqlToken{kind: kindComma, start: start, end: s.pos, depth: s.depth})
		case ch == ';':
			s.pos++
			toks = append(toks, sqlToken{kind: kindSemicolon, start: start, end: s.pos, depth: s.depth})
		case ch == '\'':
			if err := s.consumeQuoted('\''); err != nil {
				return nil, err
			}
			toks = append(toks, sqlToken{kind: kindLiteral, start: start, end: s.pos, depth: s.depth})
		case ch == '"':
			if err := s.consumeQuoted('"'); err != nil {
				return nil, err
			}
			toks = append(toks, sqlToken{kind: kindLiteral, start: start, end: s.pos, depth: s.depth})
		case ch == '`':
			if err := s.consumeQuoted('`'); err != nil {
				return nil, err
			}
			toks = append(toks, sqlToken{kind: kindLiteral, start: start, end: s.pos, depth: s.depth})
		case ch == '[':
			if err := s.consumeBracketIdent(); err != nil {
				return nil, err
			}
			toks = append(toks, sqlToken{kind: kindLiteral, start: start, end: s.pos, depth: s.depth})
		case ch == '$':
			consumed, err := s.consumeDollarQuote()
			if err != nil {
				return nil, err
			}
			if consumed {
				toks = append(toks, sqlToken{kind: kindLiteral, start: start, end: s.pos, depth: s.depth})
			} else {
				s.pos++
				toks = append(toks, sqlToken{kind: kindPunct, start: start, end: s.pos, depth: s.depth})
			}
		case ch >= '0' && ch <= '9':
			s.consumeNumber()
			toks = append(toks, sqlToken{kind: kindNumber, start: start, end: s.pos, depth: s.depth})
		case isWordStart(ch):
			s.consumeWord()
			toks = append(toks, sqlToken{
				kind:  kindWord,
				upper: upperASCII(s.input[start:s.pos]),
				start: start,
				end:   s.pos,
				depth: s.depth,
			})
		default:
			s.pos += utf8.RuneLen(ch)
			toks = append(toks, sqlToken{kind: kindPunct, start: start, end: s.pos, depth: s.depth})
		}
	}
}

func (s *scanner) skipSpaceAndComments() error {
	for s.pos < len(s.input) {
		ch := s.input[s.pos]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\v' || ch == '\f':
			s.pos++
		case ch == '-' && s.peekAt(1) == '-':
			s.skipLine()
		case ch == '#':
			// A line comment in MySQL but the XOR operator in Postgres.
			// Guessing either way hides tokens from the gate, so reject.
			return errors.New("ambiguous '#' outside a quoted region")
		case ch == '/' && s.peekAt(1) == '*':
			s.pos += 2
			closed := false
			for s.pos+1 < len(s.input) {
				if s.input[s.pos] == '*' && s.input[s.pos+1] == '/' {
					s.pos += 2
					closed = true
					break
				}
				s.pos++
			}
			if !closed {
				return errors.New("unterminated block comment")
			}
		default:
			return nil
		}
	}
	return nil
}

func (s *scanner) skipLine() {
	for s.pos < len(s.input) && s.input[s.pos] != '\n' {
		s.pos++
	}
}

func (s *scanner) peekAt(offset int) byte {
	if s.pos+offset >= len(s.input) {
		return 0
	}
	return s.input[s.pos+offset]
}

// consumeQuoted handles '...'-style regions where a doubled quote escapes.
func (s *scanner) consumeQuoted(quote byte) error {
	s.pos++ // opening quote
	for s.pos < len(s.input) {
		if s.input[s.pos] == quote {
			if s.peekAt(1) == quote {
				s.pos += 2
				continue
			}
			s.pos++
			return nil
		}
		s.pos++
	}
	return errors.New("unterminated quoted region")
}

func (s *scanner) consumeBracketIdent() error {
	s.pos++
	for s.pos < len(s.input) {
		if s.input[s.pos] == ']' {
			if s.peekAt(1) == ']' {
				s.pos += 2
				continue
			}
			s.pos++
			return nil
		}
		s.pos++
	}
	return errors.New("unterminated bracket identifier")
}

// consumeDollarQuote recognizes Postgres $tag$...$tag$ literals. Returns
// false without advancing when the '$' does not open a dollar quote.
func (s *scanner) consumeDollarQuote() (bool, error) {
	end := s.pos + 1
	for end < len(s.input) && s.input[end] != '$' {
		c := s.input[end]
		if !(c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false, nil
		}
		end++
	}
	if end >= len(s.input) {
		return false, nil
	}

	delim := s.input[s.pos : end+1]
	s.pos = end + 1
	for s.pos < len(s.input) {
		if s.input[s.pos] == '$' && s.pos+len(delim) <= len(s.input) && s.input[s.pos:s.pos+len(delim)] == delim {
			s.pos += len(delim)
			return true, nil
		}
		s.pos++
	}
	return true, errors.New("unterminated dollar-quoted literal")
}

func (s *scanner) consumeNumber() {
	for s.pos < len(s.input) {
		c := s.input[s.pos]
		if c >= '0' && c <= '9' || c == '.' {
			s.pos++
			continue
		}
		return
	}
}

func (s *scanner) consumeWord() {
	for s.pos < len(s.input) {
		ch, size := utf8.DecodeRuneInString(s.input[s.pos:])
		if !isWordPart(ch) {
			return
		}
		s.pos += size
	}
}

func isWordStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isWordPart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

func upperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}
