package main

import (
	"fmt"
	"io"
	"os"

	"github.com/brettkolodny/blllc/pkg/asm"
	"github.com/brettkolodny/blllc/pkg/compiler"
	"github.com/brettkolodny/blllc/pkg/utils"
)

const testSource = `(if (<= 1 2)
    (+ 10 20)
    (when 1 7))
`

func main() {
	src := testSource
	if len(os.Args) > 1 {
		file, err := utils.ReadSource(os.Args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, "read error:", err)
			os.Exit(1)
		}
		src = file.Text
	}
	if err := dump(os.Stdout, src); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// dump prints every stage of the pipeline for src.
func dump(w io.Writer, src string) error {
	fmt.Fprintf(w, "Source:\n%s\n", src)

	// Lex
	tokens, err := compiler.Lex(src)
	if err != nil {
		return fmt.Errorf("lex error: %w", err)
	}

	fmt.Fprintf(w, "Tokens (%d)\n", len(tokens))
	for _, tok := range tokens {
		fmt.Fprintln(w, " ", tok)
	}
	fmt.Fprintln(w)

	// Parse
	program, err := compiler.Parse(tokens, src)
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}

	fmt.Fprintln(w, "AST")
	for _, e := range program.Exprs {
		fmt.Fprintln(w, " ", e)
	}
	fmt.Fprintln(w)

	// Code generation
	stream, err := compiler.Generate(program)
	if err != nil {
		return fmt.Errorf("codegen error: %w", err)
	}

	fmt.Fprintf(w, "Items (%d, %d jumps)\n", len(stream), stream.Jumps())
	fmt.Fprintln(w, " ", stream)
	fmt.Fprintln(w)

	// Resolution
	code, err := asm.Assemble(stream)
	if err != nil {
		return fmt.Errorf("assemble error: %w", err)
	}

	fmt.Fprintln(w, "Bytecode")
	fmt.Fprintf(w, "  %x\n\n", code)

	listing, err := asm.Listing(code)
	if err != nil {
		return fmt.Errorf("disassemble error: %w", err)
	}
	fmt.Fprintln(w, "Disassembly")
	fmt.Fprint(w, listing)
	return nil
}
