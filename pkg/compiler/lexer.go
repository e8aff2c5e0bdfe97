package compiler

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

// keywords maps source text to its keyword TokenType.
var keywords = map[string]TokenType{
	"def": DEF,
}

// relations maps multi-character operator words to their TokenType.
var relations = map[string]TokenType{
	"<":   LT,
	"<=":  LTOE,
	">":   GT,
	">=":  GTOE,
	"!=":  NEQ,
	"S<":  SLT,
	"S>":  SGT,
	"S<=": SLTOE,
	"S>=": SGTOE,
	"@":   AT,
	"@@":  DAT,
}

var singles = map[rune]TokenType{
	'(': LPAREN,
	')': RPAREN,
	'{': LBRACE,
	'}': RBRACE,
	'[': LBRACKET,
	']': RBRACKET,
	'+': ADD,
	'-': SUB,
	'*': MUL,
	'/': DIV,
	'%': MOD,
	'&': BAND,
	'|': BOR,
	'^': BXOR,
	'~': BNOT,
	'=': EQ,
}

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // current 1-based source line
	col  int // runes consumed on the current line
}

func newLexer(src string) *Lexer {
	return &Lexer{src: []rune(src), pos: 0, line: 1}
}

func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peek2() rune {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.peek()) {
		l.advance()
	}
}

// skipLineComment discards everything from the current position to end-of-line.
func (l *Lexer) skipLineComment() {
	for l.pos < len(l.src) && l.peek() != '\n' {
		l.advance()
	}
}

// isDelimiter reports whether r ends a word.
func isDelimiter(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune("(){}[];", r)
}

// scanWord collects runes up to the next delimiter or end of input.
func (l *Lexer) scanWord() string {
	start := l.pos
	for l.pos < len(l.src) && !isDelimiter(l.peek()) {
		l.advance()
	}
	return string(l.src[start:l.pos])
}

func (l *Lexer) errorf(line, col int, format string, args ...any) error {
	return fmt.Errorf("%w: line %d:%d: %s", ErrSyntax, line, col, fmt.Sprintf(format, args...))
}

// scanInt collects a decimal or 0x-prefixed hex literal of any width.
func (l *Lexer) scanInt() (Token, error) {
	line, col := l.line, l.col+1
	word := l.scanWord()

	digits, base := word, 10
	if strings.HasPrefix(word, "0x") || strings.HasPrefix(word, "0X") {
		digits, base = word[2:], 16
	}

	valid := digits != ""
	for _, r := range digits {
		if base == 10 && !unicode.IsDigit(r) {
			valid = false
		}
		if base == 16 && !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			valid = false
		}
	}
	value, ok := new(big.Int).SetString(digits, base)
	if !valid || !ok {
		return Token{}, l.errorf(line, col, "invalid integer literal %q", word)
	}

	return Token{Type: INT, Lexeme: word, Line: line, Col: col, Int: value}, nil
}

// scanSymbol collects a 'symbol string. The quote must still be at l.peek().
func (l *Lexer) scanSymbol() (Token, error) {
	line, col := l.line, l.col+1
	l.advance() // consume '
	word := l.scanWord()

	valid := word != ""
	for _, r := range word {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' {
			valid = false
		}
	}
	if !valid {
		return Token{}, l.errorf(line, col, "invalid symbol '%s", word)
	}

	return Token{Type: STR, Lexeme: "'" + word, Line: line, Col: col, Str: word}, nil
}

// scanString collects a "..." literal, which may span lines.
func (l *Lexer) scanString() (Token, error) {
	line, col := l.line, l.col+1
	start := l.pos
	l.advance() // consume opening "

	for l.pos < len(l.src) && l.peek() != '"' {
		l.advance()
	}
	if l.pos >= len(l.src) {
		return Token{}, fmt.Errorf("%w: %w: line %d:%d: unterminated string literal", ErrSyntax, ErrIncomplete, line, col)
	}
	l.advance() // consume closing "

	lexeme := string(l.src[start:l.pos])
	return Token{Type: STR, Lexeme: lexeme, Line: line, Col: col, Str: lexeme[1 : len(lexeme)-1]}, nil
}

// scanIdent collects an identifier or keyword.
func (l *Lexer) scanIdent() (Token, error) {
	line, col := l.line, l.col+1
	word := l.scanWord()

	for _, r := range word {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' {
			return Token{}, l.errorf(line, col, "invalid identifier %q", word)
		}
	}

	tt := IDENT
	if kw, ok := keywords[word]; ok {
		tt = kw
	}
	return Token{Type: tt, Lexeme: word, Line: line, Col: col}, nil
}

// scanRelation collects an operator word such as <= or S>.
func (l *Lexer) scanRelation() (Token, error) {
	line, col := l.line, l.col+1
	word := l.scanWord()

	tt, ok := relations[word]
	if !ok {
		return Token{}, l.errorf(line, col, "unknown operator %q", word)
	}
	return Token{Type: tt, Lexeme: word, Line: line, Col: col}, nil
}

// nextToken skips whitespace/comments and returns the next Token.
func (l *Lexer) nextToken() (Token, error) {
	for {
		l.skipWhitespace()
		if l.pos >= len(l.src) {
			return Token{Type: EOF, Lexeme: "", Line: l.line, Col: l.col + 1}, nil
		}
		if l.peek() == ';' {
			l.skipLineComment()
			continue
		}
		break
	}

	ch := l.peek()
	line, col := l.line, l.col+1

	if tt, ok := singles[ch]; ok {
		l.advance()
		return Token{Type: tt, Lexeme: string(ch), Line: line, Col: col}, nil
	}

	switch {
	case ch == '<' || ch == '>' || ch == '!' || ch == '@':
		return l.scanRelation()
	case ch == 'S' && (l.peek2() == '<' || l.peek2() == '>'):
		return l.scanRelation()
	case ch == '\'':
		return l.scanSymbol()
	case ch == '"':
		return l.scanString()
	case unicode.IsDigit(ch):
		return l.scanInt()
	case unicode.IsLetter(ch):
		return l.scanIdent()
	}

	return Token{}, l.errorf(line, col, "unexpected character %q", ch)
}

// Lex tokenises src and returns all tokens including the final EOF token.
// It returns a non-nil error on the first illegal character or literal.
func Lex(src string) ([]Token, error) {
	l := newLexer(src)
	var tokens []Token
	for {
		tok, err := l.nextToken()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}
