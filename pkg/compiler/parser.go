package compiler

import (
	"fmt"
	"strings"
)

// operators maps the token after '(' to the node it opens.
var operators = map[TokenType]Op{
	ADD:   Add,
	SUB:   Sub,
	MUL:   Mul,
	DIV:   Div,
	MOD:   Mod,
	BAND:  And,
	BOR:   Or,
	BXOR:  XOr,
	BNOT:  Not,
	LT:    Lt,
	LTOE:  LtOE,
	GT:    Gt,
	GTOE:  GtOE,
	EQ:    Eq,
	NEQ:   NotEq,
	SLT:   SLt,
	SLTOE: SLtOE,
	SGT:   SGt,
	SGTOE: SGtOE,
}

var controlWords = map[string]Op{
	"if":     If,
	"when":   When,
	"unless": Unless,
}

// Parser consumes the flat token slice produced by the Lexer and builds an AST.
//
// Grammar:
//
//	program  = expr* EOF
//	expr     = INT | "(" operator expr* ")"
//	operator = "+" | "-" | "*" | "/" | "%" | "&" | "|" | "^" | "~"
//	         | "<" | "<=" | ">" | ">=" | "=" | "!="
//	         | "S<" | "S<=" | "S>" | "S>="
//	         | "if" | "when" | "unless"
//
// Operand counts are not checked here; the code generator owns arity.
type Parser struct {
	tokens      []Token
	pos         int
	depth       int
	maxDepth    int
	sourceLines []string
}

func NewParser(tokens []Token, rawSource string) *Parser {
	return &Parser{
		tokens:      tokens,
		maxDepth:    DefaultMaxDepth,
		sourceLines: strings.Split(rawSource, "\n"),
	}
}

// fmtError wraps an error message with the source line where the token appears.
func (p *Parser) fmtError(tok Token, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	lineIdx := tok.Line - 1

	snippet := "<source unavailable>"
	if lineIdx >= 0 && lineIdx < len(p.sourceLines) {
		snippet = strings.TrimSpace(p.sourceLines[lineIdx])
	}

	return fmt.Errorf("%w: line %d: %s\n  |> %s", ErrSyntax, tok.Line, msg, snippet)
}

// incomplete reports input that ended inside the list opened by open.
func (p *Parser) incomplete(open Token) error {
	return fmt.Errorf("%w: %w", ErrIncomplete, p.fmtError(open, "unclosed '(' opened at column %d", open.Col))
}

func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// ParseProgram parses every top-level expression into a Start root.
func (p *Parser) ParseProgram() (*Expression, error) {
	program := NewProgram()
	for p.peek().Type != EOF {
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		program.Exprs = append(program.Exprs, expr)
	}
	return program, nil
}

func (p *Parser) parseExpr() (*Expression, error) {
	tok := p.peek()
	switch tok.Type {
	case INT:
		p.advance()
		return BigNum(tok.Int), nil
	case LPAREN:
		return p.parseList()
	case RPAREN:
		return nil, p.fmtError(tok, "unexpected ')'")
	default:
		return nil, p.fmtError(tok, "expected a number or '(', got %s %q", tok.Type, tok.Lexeme)
	}
}

func (p *Parser) parseList() (*Expression, error) {
	open := p.advance()

	p.depth++
	defer func() { p.depth-- }()
	if p.maxDepth > 0 && p.depth > p.maxDepth {
		return nil, fmt.Errorf("%w: %w", ErrTooDeep, p.fmtError(open, "more than %d nested lists", p.maxDepth))
	}

	opTok := p.advance()
	op, ok := operators[opTok.Type]
	if opTok.Type == IDENT {
		op, ok = controlWords[opTok.Lexeme]
	}
	switch {
	case opTok.Type == EOF:
		return nil, p.incomplete(open)
	case opTok.Type == RPAREN:
		return nil, p.fmtError(opTok, "empty list")
	case !ok:
		return nil, p.fmtError(opTok, "expected an operator after '(', got %s %q", opTok.Type, opTok.Lexeme)
	}

	node := Node(op)
	for {
		switch p.peek().Type {
		case RPAREN:
			p.advance()
			return node, nil
		case EOF:
			return nil, p.incomplete(open)
		}
		child, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		node.Exprs = append(node.Exprs, child)
	}
}

// Parse builds the program tree from tokens. rawSource is used only for
// error snippets.
func Parse(tokens []Token, rawSource string) (*Expression, error) {
	return NewParser(tokens, rawSource).ParseProgram()
}
