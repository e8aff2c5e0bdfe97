package compiler

import (
	"fmt"
	"math/big"
)

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Literals
	INT   // decimal or 0x-prefixed integer
	STR   // 'symbol or "double quoted"
	IDENT // bare word: if, when, unless, ...

	// Keywords
	DEF // "def"

	// Paired delimiters
	LPAREN   // (
	RPAREN   // )
	LBRACE   // {
	RBRACE   // }
	LBRACKET // [
	RBRACKET // ]

	// Arithmetic and bitwise operators
	ADD  // +
	SUB  // -
	MUL  // *
	DIV  // /
	MOD  // %
	BAND // &
	BOR  // |
	BXOR // ^
	BNOT // ~

	// Comparison
	EQ    // =
	NEQ   // !=
	LT    // <
	GT    // >
	LTOE  // <=
	GTOE  // >=
	SLT   // S<
	SGT   // S>
	SLTOE // S<=
	SGTOE // S>=

	// Storage sigils
	AT  // @
	DAT // @@
)

var tokenNames = [...]string{
	EOF:      "EOF",
	INT:      "INT",
	STR:      "STR",
	IDENT:    "IDENT",
	DEF:      "DEF",
	LPAREN:   "LPAREN",
	RPAREN:   "RPAREN",
	LBRACE:   "LBRACE",
	RBRACE:   "RBRACE",
	LBRACKET: "LBRACKET",
	RBRACKET: "RBRACKET",
	ADD:      "ADD",
	SUB:      "SUB",
	MUL:      "MUL",
	DIV:      "DIV",
	MOD:      "MOD",
	BAND:     "BAND",
	BOR:      "BOR",
	BXOR:     "BXOR",
	BNOT:     "BNOT",
	EQ:       "EQ",
	NEQ:      "NEQ",
	LT:       "LT",
	GT:       "GT",
	LTOE:     "LTOE",
	GTOE:     "GTOE",
	SLT:      "SLT",
	SGT:      "SGT",
	SLTOE:    "SLTOE",
	SGTOE:    "SGTOE",
	AT:       "AT",
	DAT:      "DAT",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string   // the exact source text that was matched
	Line   int      // 1-based source line
	Col    int      // 1-based column of the first rune
	Int    *big.Int // decoded value of an INT
	Str    string   // decoded contents of a STR
}

func (t Token) String() string {
	return fmt.Sprintf("%-8s %-14q  line %d:%d", t.Type, t.Lexeme, t.Line, t.Col)
}
