// Package compiler provides the lexer, parser, and code generator for a small
// S-expression language that targets a 256-bit word stack machine.
//
// Pipeline: source → Lex → Parse → Generate → asm.Assemble → hex bytecode
package compiler
