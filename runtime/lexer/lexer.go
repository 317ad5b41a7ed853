// Package lexer matches the schema grammar against the remaining source
// suffix, one rule at a time, in strict priority order: renamed
// attribute, attribute, lone datatype, opening delimiter, closing
// delimiter, insignificant filler (commas, newlines, whitespace). Each
// match consumes exactly the matched span; filler is consumed silently.
// Unmatchable content surfaces as a single ILLEGAL token carrying the
// whole remainder.
package lexer

// ASCII character lookup tables for fast classification
var (
	isIdentPart [128]bool // [A-Za-z0-9_]
	isSpace     [128]bool // whitespace, including newlines
	isOpen      [128]bool // ( [ { <
	isClose     [128]bool // ) ] } >
)

func init() {
	for i := 0; i < 128; i++ {
		ch := byte(i)
		isIdentPart[i] = ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') ||
			('0' <= ch && ch <= '9') || ch == '_'
		isSpace[i] = ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\f' || ch == '\v'
	}
	isOpen['('], isOpen['['], isOpen['{'], isOpen['<'] = true, true, true, true
	isClose[')'], isClose[']'], isClose['}'], isClose['>'] = true, true, true, true
}

// Lexer scans a schema source string. Nesting state lives entirely in
// the parser; the lexer only tracks its read position.
type Lexer struct {
	input string
	pos   int
}

// New creates a Lexer over the full schema source.
func New(input string) *Lexer {
	return &Lexer{input: input}
}

// Rest returns the unconsumed source suffix.
func (l *Lexer) Rest() string {
	return l.input[l.pos:]
}

// Tokenize consumes the whole input and returns the token stream,
// terminated by EOF or ILLEGAL.
func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	for {
		tok := l.Next()
		tokens = append(tokens, tok)
		if tok.Type == EOF || tok.Type == ILLEGAL {
			return tokens
		}
	}
}

// Next returns the next token from the input.
func (l *Lexer) Next() Token {
	l.skipInsignificant()

	if l.pos >= len(l.input) {
		return Token{Type: EOF, Offset: l.pos}
	}

	ch := l.input[l.pos]
	switch {
	case ch < 128 && isIdentPart[ch]:
		return l.lexAttribute()
	case ch < 128 && isOpen[ch]:
		start := l.pos
		l.pos++
		return Token{Type: OPEN, Value: l.input[start:l.pos], Offset: start}
	case ch < 128 && isClose[ch]:
		start := l.pos
		l.pos++
		return Token{Type: CLOSE, Value: l.input[start:l.pos], Offset: start}
	default:
		// terminal parse failure, hand the remainder to the error path
		return Token{Type: ILLEGAL, Value: l.input[l.pos:], Offset: l.pos}
	}
}

// lexAttribute disambiguates the three identifier-led rules, richest
// form first, backtracking to the bare identifier when the longer forms
// do not complete.
func (l *Lexer) lexAttribute() Token {
	start := l.pos
	name := l.scanIdent()

	// renamed attribute: name = new_name : dtype
	mark := l.pos
	l.skipSpace()
	if l.consume('=') {
		l.skipSpace()
		if renamed := l.scanIdent(); renamed != "" {
			l.skipSpace()
			if l.consume(':') {
				l.skipSpace()
				if dtype := l.scanIdent(); dtype != "" {
					return Token{
						Type:      RENAMED_ATTR,
						Name:      name,
						RenamedTo: renamed,
						DType:     dtype,
						Value:     l.input[start:l.pos],
						Offset:    start,
					}
				}
			}
		}
	}
	l.pos = mark

	// attribute: name : dtype
	l.skipSpace()
	if l.consume(':') {
		l.skipSpace()
		if dtype := l.scanIdent(); dtype != "" {
			return Token{
				Type:   ATTR,
				Name:   name,
				DType:  dtype,
				Value:  l.input[start:l.pos],
				Offset: start,
			}
		}
	}
	l.pos = mark

	// lone datatype
	return Token{Type: LONE_TYPE, DType: name, Value: name, Offset: start}
}

// scanIdent consumes a run of [A-Za-z0-9_] characters.
func (l *Lexer) scanIdent() string {
	start := l.pos
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch >= 128 || !isIdentPart[ch] {
			break
		}
		l.pos++
	}
	return l.input[start:l.pos]
}

// consume advances past ch if it is the next character.
func (l *Lexer) consume(ch byte) bool {
	if l.pos < len(l.input) && l.input[l.pos] == ch {
		l.pos++
		return true
	}
	return false
}

// skipSpace consumes the whitespace permitted around = and : signs.
func (l *Lexer) skipSpace() {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch >= 128 || !isSpace[ch] {
			break
		}
		l.pos++
	}
}

// skipInsignificant consumes runs of commas, newlines and whitespace
// between tokens.
func (l *Lexer) skipInsignificant() {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch < 128 && (isSpace[ch] || ch == ',') {
			l.pos++
			continue
		}
		break
	}
}
