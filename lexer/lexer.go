// Package lexer turns a source string into a stream of tokens for the
// parser to consume.
package lexer

import (
	"fmt"

	"github.com/kbocek/subc/token"
)

// multiSigns are tried before single-character signs so that, for
// example, ">=" is not lexed as ">" followed by "=".
var multiSigns = []string{">=", "<=", "==", "!="}

// singleSigns lists every punctuator the lexer recognises on its own.
const singleSigns = ">()+-*/;=,<{}"

// Error reports a position in the source that no lexer rule could
// consume.
type Error struct {
	Pos int
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("lex error at offset %d: %s", e.Pos, e.Msg)
}

// Lexer holds the scanning state for one source string.
type Lexer struct {
	input      string
	characters []rune // rune slice of the input, so multi-byte runs stay aligned
	position   int     // current rune index
	byteOffset []int   // byteOffset[i] is the byte offset of characters[i]
}

// New creates a Lexer over the given source string.
func New(input string) *Lexer {
	l := &Lexer{input: input}
	for i, r := range input {
		l.characters = append(l.characters, r)
		l.byteOffset = append(l.byteOffset, i)
	}
	l.byteOffset = append(l.byteOffset, len(input)) // sentinel for EOF position
	return l
}

// Tokenize scans the entire source and returns every token up to and
// including the terminating EOF, or the first *Error encountered.
func Tokenize(input string) ([]token.Token, error) {
	l := New(input)
	var tokens []token.Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) atEOF() bool {
	return l.position >= len(l.characters)
}

func (l *Lexer) cur() rune {
	if l.atEOF() {
		return 0
	}
	return l.characters[l.position]
}

func (l *Lexer) at(offset int) rune {
	idx := l.position + offset
	if idx >= len(l.characters) {
		return 0
	}
	return l.characters[idx]
}

func (l *Lexer) pos() int {
	return l.byteOffset[l.position]
}

func (l *Lexer) advance(n int) {
	l.position += n
}

// NextToken scans and returns the next token, skipping leading
// whitespace first. It returns an *Error when no lexing rule matches
// the current position.
func (l *Lexer) NextToken() (token.Token, error) {
	l.skipWhitespace()

	start := l.pos()

	if l.atEOF() {
		return token.Token{Kind: token.EOF, Pos: start}, nil
	}

	// Rule 1: keywords.
	if tok, ok := l.tryKeyword(); ok {
		return tok, nil
	}

	// Rule 2: multi-character signs.
	if tok, ok := l.tryMultiSign(); ok {
		return tok, nil
	}

	// Rule 3: single-character signs.
	if tok, ok := l.trySingleSign(); ok {
		return tok, nil
	}

	// Rule 4: number.
	if isDigit(l.cur()) {
		return l.readNumber(), nil
	}

	// Rule 5: identifier.
	if isIdentStart(l.cur()) {
		return l.readIdentifier(), nil
	}

	return token.Token{}, &Error{
		Pos: start,
		Msg: fmt.Sprintf("unexpected character %q", l.cur()),
	}
}

func (l *Lexer) skipWhitespace() {
	for !l.atEOF() && isSpace(l.cur()) {
		l.advance(1)
	}
}

func (l *Lexer) tryKeyword() (token.Token, bool) {
	start := l.position
	if !isIdentStart(l.cur()) {
		return token.Token{}, false
	}

	n := 0
	for isIdentCont(l.at(n)) {
		n++
	}
	word := string(l.characters[start : start+n])

	kind, ok := token.LookupKeyword(word)
	if !ok {
		return token.Token{}, false
	}

	pos := l.pos()
	l.advance(n)
	return token.Token{Kind: kind, Lexeme: word, Pos: pos}, true
}

func (l *Lexer) tryMultiSign() (token.Token, bool) {
	for _, sign := range multiSigns {
		if l.hasLiteralAt(sign) {
			pos := l.pos()
			l.advance(len([]rune(sign)))
			return token.Token{Kind: token.SIGN, Lexeme: sign, Pos: pos}, true
		}
	}
	return token.Token{}, false
}

func (l *Lexer) trySingleSign() (token.Token, bool) {
	ch := l.cur()
	for _, s := range singleSigns {
		if ch == s {
			pos := l.pos()
			l.advance(1)
			return token.Token{Kind: token.SIGN, Lexeme: string(ch), Pos: pos}, true
		}
	}
	return token.Token{}, false
}

func (l *Lexer) hasLiteralAt(literal string) bool {
	runes := []rune(literal)
	for i, r := range runes {
		if l.at(i) != r {
			return false
		}
	}
	return true
}

func (l *Lexer) readNumber() token.Token {
	start := l.position
	pos := l.pos()
	n := 0
	for isDigit(l.at(n)) {
		n++
	}
	lit := string(l.characters[start : start+n])
	l.advance(n)

	var val int64
	for _, r := range lit {
		val = val*10 + int64(r-'0')
	}
	return token.Token{Kind: token.NUM, Lexeme: lit, Pos: pos, Value: val}
}

func (l *Lexer) readIdentifier() token.Token {
	start := l.position
	pos := l.pos()
	n := 0
	for isIdentCont(l.at(n)) {
		n++
	}
	lit := string(l.characters[start : start+n])
	l.advance(n)
	return token.Token{Kind: token.IDENT, Lexeme: lit, Pos: pos}
}

func isSpace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\v' || ch == '\f'
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isAlpha(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentStart(ch rune) bool {
	return isAlpha(ch)
}

func isIdentCont(ch rune) bool {
	return isAlpha(ch) || isDigit(ch)
}
