package compiler

import (
	"encoding/hex"

	"github.com/brettkolodny/blllc/pkg/asm"
)

// Result keeps every intermediate form of one compile.
type Result struct {
	Tokens  []Token
	Program *Expression
	Stream  asm.Stream
	Code    []byte
}

// Hex returns the bytecode as lowercase hex with no prefix.
func (r *Result) Hex() string {
	return hex.EncodeToString(r.Code)
}

// Build runs Lex, Parse, Generate and Assemble over src. On error the
// returned Result holds whatever stages completed.
func (c *Compiler) Build(src string) (*Result, error) {
	res := &Result{}

	tokens, err := Lex(src)
	if err != nil {
		return res, err
	}
	res.Tokens = tokens

	p := NewParser(tokens, src)
	p.maxDepth = c.MaxDepth
	program, err := p.ParseProgram()
	if err != nil {
		return res, err
	}
	res.Program = program

	stream, err := c.Generate(program)
	if err != nil {
		return res, err
	}
	res.Stream = stream

	code, err := asm.Assemble(stream)
	if err != nil {
		return res, err
	}
	res.Code = code

	return res, nil
}

// CompileSource compiles source text straight to hex bytecode.
func (c *Compiler) CompileSource(src string) (string, error) {
	res, err := c.Build(src)
	if err != nil {
		return "", err
	}
	return res.Hex(), nil
}

// CompileSource compiles src with a fresh Compiler.
func CompileSource(src string) (string, error) {
	return New().CompileSource(src)
}
