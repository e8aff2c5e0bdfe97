package compiler

import (
	"errors"

	"github.com/brettkolodny/blllc/pkg/asm"
)

// Front-end errors.
var (
	ErrSyntax     = errors.New("syntax error")
	ErrIncomplete = errors.New("unexpected end of input")
	ErrTooDeep    = errors.New("expression nested too deeply")
)

// Code generation errors. The first one hit aborts the compile.
var (
	ErrWrongArity          = errors.New("wrong number of operands")
	ErrNumberTooLarge      = errors.New("number too large")
	ErrUnsupportedOperator = errors.New("unsupported operator")
)

// Resolution errors surface only after the whole tree has been generated.
var (
	ErrNoDestinationFound = asm.ErrNoDestination
	ErrMalformedJump      = asm.ErrMalformedJump
)

// IsIncomplete reports whether err means the source ended inside an open
// list or string, so more input could complete it.
func IsIncomplete(err error) bool {
	return errors.Is(err, ErrIncomplete)
}
