package compiler

import (
	"fmt"
	"math/big"
	"strings"
)

// Op tags an Expression. The set is closed: the code generator switches over
// every value and rejects anything else with ErrUnsupportedOperator.
type Op int

const (
	Start Op = iota // program root
	End             // end-of-program marker, compiles to nothing
	Num             // integer literal, Value holds the number

	// Multiary: one operand is a pass-through
	Add
	Sub
	Mul
	Div
	Mod
	And
	Or
	XOr

	// Binary comparison
	Lt
	LtOE
	Gt
	GtOE
	Eq
	NotEq
	SLt
	SLtOE
	SGt
	SGtOE

	// Unary
	Not

	// Control
	If
	When
	Unless
)

var opNames = [...]string{
	Start:  "start",
	End:    "end",
	Num:    "num",
	Add:    "+",
	Sub:    "-",
	Mul:    "*",
	Div:    "/",
	Mod:    "%",
	And:    "&",
	Or:     "|",
	XOr:    "^",
	Lt:     "<",
	LtOE:   "<=",
	Gt:     ">",
	GtOE:   ">=",
	Eq:     "=",
	NotEq:  "!=",
	SLt:    "S<",
	SLtOE:  "S<=",
	SGt:    "S>",
	SGtOE:  "S>=",
	Not:    "~",
	If:     "if",
	When:   "when",
	Unless: "unless",
}

func (op Op) String() string {
	if int(op) >= 0 && int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// Expression is one AST node. Children are owned by their parent; the
// generator never mutates a tree it is given.
//
//	(+ 2 3)
//	 ^ ^ ^
//	 | Exprs
//	 Op: Add
type Expression struct {
	Op    Op
	Value *big.Int // set only for Num
	Exprs []*Expression
}

// NewProgram returns an empty Start root.
func NewProgram(exprs ...*Expression) *Expression {
	return &Expression{Op: Start, Exprs: exprs}
}

func EndProgram() *Expression {
	return &Expression{Op: End}
}

func NumLit(v uint32) *Expression {
	return &Expression{Op: Num, Value: new(big.Int).SetUint64(uint64(v))}
}

func BigNum(v *big.Int) *Expression {
	return &Expression{Op: Num, Value: new(big.Int).Set(v)}
}

// Node builds an operator node over the given children.
func Node(op Op, exprs ...*Expression) *Expression {
	return &Expression{Op: op, Exprs: exprs}
}

// String renders the node back in source form.
func (e *Expression) String() string {
	switch e.Op {
	case Num:
		if e.Value == nil {
			return "<nil>"
		}
		return e.Value.String()
	case Start:
		parts := make([]string, len(e.Exprs))
		for i, c := range e.Exprs {
			parts[i] = c.String()
		}
		return strings.Join(parts, "\n")
	}

	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(e.Op.String())
	for _, c := range e.Exprs {
		b.WriteByte(' ')
		b.WriteString(c.String())
	}
	b.WriteByte(')')
	return b.String()
}
