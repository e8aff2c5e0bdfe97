package compiler

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/brettkolodny/blllc/pkg/asm"
	"github.com/brettkolodny/blllc/pkg/vm"
)

// DefaultMaxDepth bounds list nesting in both the parser and the generator.
const DefaultMaxDepth = 4096

var multiaryOps = map[Op]vm.Opcode{
	Add: vm.OpADD,
	Mul: vm.OpMUL,
	Sub: vm.OpSUB,
	Div: vm.OpDIV,
	Mod: vm.OpMOD,
	And: vm.OpAND,
	Or:  vm.OpOR,
	XOr: vm.OpXOR,
}

// comparisonOps lists the opcodes each primitive comparison emits after its
// operands. NotEq is EQ followed by ISZERO.
var comparisonOps = map[Op][]vm.Opcode{
	Lt:    {vm.OpLT},
	Gt:    {vm.OpGT},
	SLt:   {vm.OpSLT},
	SGt:   {vm.OpSGT},
	Eq:    {vm.OpEQ},
	NotEq: {vm.OpEQ, vm.OpISZERO},
}

// derivedComparisons maps each "or equal" comparison to the strict one it is
// built from: (<= a b) is (| (< a b) (= a b)).
var derivedComparisons = map[Op]Op{
	LtOE:  Lt,
	GtOE:  Gt,
	SLtOE: SLt,
	SGtOE: SGt,
}

// Compiler walks an AST and emits an item stream for the resolver. Its state
// lives for one Generate call.
type Compiler struct {
	// MaxDepth rejects trees with more nested operator nodes than this.
	// Zero disables the check.
	MaxDepth int

	nextLabel int
}

func New() *Compiler {
	return &Compiler{MaxDepth: DefaultMaxDepth}
}

func (c *Compiler) newLabel() int {
	l := c.nextLabel
	c.nextLabel++
	return l
}

// Generate lowers a Start root into an unresolved item stream.
func (c *Compiler) Generate(program *Expression) (asm.Stream, error) {
	c.nextLabel = 0

	if program == nil {
		return nil, fmt.Errorf("%w: nil program", ErrUnsupportedOperator)
	}
	if program.Op != Start {
		return nil, fmt.Errorf("%w: program root must be %s, got %s", ErrUnsupportedOperator, Start, program.Op)
	}
	if c.MaxDepth > 0 {
		if d := measureDepth(program); d > c.MaxDepth {
			return nil, fmt.Errorf("%w: depth %d exceeds limit %d", ErrTooDeep, d, c.MaxDepth)
		}
	}

	var out asm.Stream
	for _, expr := range program.Exprs {
		code, err := c.compileExpr(expr)
		if err != nil {
			return nil, err
		}
		out = append(out, code...)
	}
	return out, nil
}

// Compile generates and resolves program, returning lowercase hex bytecode.
func (c *Compiler) Compile(program *Expression) (string, error) {
	stream, err := c.Generate(program)
	if err != nil {
		return "", err
	}
	return asm.AssembleHex(stream)
}

func (c *Compiler) compileExpr(e *Expression) ([]asm.Item, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: nil expression", ErrUnsupportedOperator)
	}

	switch e.Op {
	case Num:
		return c.compileNum(e)
	case Add, Sub, Mul, Div, Mod, And, Or, XOr:
		return c.compileMultiary(e)
	case Lt, LtOE, Gt, GtOE, Eq, NotEq, SLt, SLtOE, SGt, SGtOE:
		return c.compileBinary(e)
	case Not:
		return c.compileUnary(e)
	case If:
		return c.compileIf(e)
	case When, Unless:
		return c.compileWhenOrUnless(e)
	case End:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %s cannot appear inside an expression", ErrUnsupportedOperator, e.Op)
	}
}

func checkArity(e *Expression, want int) error {
	if len(e.Exprs) != want {
		return fmt.Errorf("%w: %s expects %d operands, got %d", ErrWrongArity, e.Op, want, len(e.Exprs))
	}
	return nil
}

// encodeLiteral splits the hex digits of v into bytes from the most
// significant end. An odd trailing digit becomes its own byte, so 0x123
// encodes as 12 03 rather than 01 23.
func encodeLiteral(v *big.Int) ([]byte, error) {
	digits := v.Text(16)
	even := len(digits) &^ 1

	out, err := hex.DecodeString(digits[:even])
	if err != nil {
		return nil, err
	}
	if even < len(digits) {
		last, err := hex.DecodeString("0" + digits[even:])
		if err != nil {
			return nil, err
		}
		out = append(out, last...)
	}

	if len(out) > vm.MaxPushSize {
		return nil, fmt.Errorf("%w: %s needs %d bytes, at most %d fit a push", ErrNumberTooLarge, v, len(out), vm.MaxPushSize)
	}
	return out, nil
}

func (c *Compiler) compileNum(e *Expression) ([]asm.Item, error) {
	if err := checkArity(e, 0); err != nil {
		return nil, err
	}
	if e.Value == nil {
		return nil, fmt.Errorf("%w: literal without a value", ErrUnsupportedOperator)
	}
	if e.Value.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative literal %s", ErrUnsupportedOperator, e.Value)
	}

	data, err := encodeLiteral(e.Value)
	if err != nil {
		return nil, err
	}
	push, _ := vm.PushOp(len(data))

	code := make([]asm.Item, 0, len(data)+1)
	code = append(code, asm.Op(push))
	for _, b := range data {
		code = append(code, asm.Byte(b))
	}
	return code, nil
}

// compileMultiary emits the operands last to first, then one opcode per
// adjacent pair, so (- a b c) evaluates as (a - b) - c on the machine.
func (c *Compiler) compileMultiary(e *Expression) ([]asm.Item, error) {
	switch len(e.Exprs) {
	case 0:
		return nil, fmt.Errorf("%w: %s expects at least 1 operand, got 0", ErrWrongArity, e.Op)
	case 1:
		return c.compileExpr(e.Exprs[0])
	}

	opcode, ok := multiaryOps[e.Op]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not arithmetic", ErrUnsupportedOperator, e.Op)
	}

	var code []asm.Item
	for _, child := range e.Exprs {
		childCode, err := c.compileExpr(child)
		if err != nil {
			return nil, err
		}
		code = append(childCode, code...)
	}
	for i := 1; i < len(e.Exprs); i++ {
		code = append(code, asm.Op(opcode))
	}
	return code, nil
}

func (c *Compiler) compileBinary(e *Expression) ([]asm.Item, error) {
	if err := checkArity(e, 2); err != nil {
		return nil, err
	}
	a, b := e.Exprs[0], e.Exprs[1]

	// Both halves recompile a and b; compilation has no side effects.
	if strict, ok := derivedComparisons[e.Op]; ok {
		left, err := c.compileExpr(Node(strict, a, b))
		if err != nil {
			return nil, err
		}
		right, err := c.compileExpr(Node(Eq, a, b))
		if err != nil {
			return nil, err
		}
		code := append(right, left...)
		return append(code, asm.Op(vm.OpOR)), nil
	}

	opcodes, ok := comparisonOps[e.Op]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a comparison", ErrUnsupportedOperator, e.Op)
	}

	left, err := c.compileExpr(a)
	if err != nil {
		return nil, err
	}
	right, err := c.compileExpr(b)
	if err != nil {
		return nil, err
	}

	code := append(right, left...)
	for _, op := range opcodes {
		code = append(code, asm.Op(op))
	}
	return code, nil
}

func (c *Compiler) compileUnary(e *Expression) ([]asm.Item, error) {
	if err := checkArity(e, 1); err != nil {
		return nil, err
	}
	code, err := c.compileExpr(e.Exprs[0])
	if err != nil {
		return nil, err
	}
	return append(code, asm.Op(vm.OpNOT)), nil
}

// compileIf lowers (if cond then else) to
//
//	cond PUSH1 then JUMPI
//	else PUSH1 next JUMP
//	then: JUMPDEST then-code
//	next: JUMPDEST
func (c *Compiler) compileIf(e *Expression) ([]asm.Item, error) {
	if err := checkArity(e, 3); err != nil {
		return nil, err
	}

	cond, err := c.compileExpr(e.Exprs[0])
	if err != nil {
		return nil, err
	}
	elseCode, err := c.compileExpr(e.Exprs[2])
	if err != nil {
		return nil, err
	}
	destThen := c.newLabel()
	thenCode, err := c.compileExpr(e.Exprs[1])
	if err != nil {
		return nil, err
	}
	destNext := c.newLabel()

	code := make([]asm.Item, 0, len(cond)+len(elseCode)+len(thenCode)+8)
	code = append(code, cond...)
	code = append(code, asm.Op(vm.OpPUSH1), asm.Jump(destThen), asm.Op(vm.OpJUMPI))
	code = append(code, elseCode...)
	code = append(code, asm.Op(vm.OpPUSH1), asm.Jump(destNext), asm.Op(vm.OpJUMP))
	code = append(code, asm.Label(destThen))
	code = append(code, thenCode...)
	code = append(code, asm.Label(destNext))
	return code, nil
}

// compileWhenOrUnless lowers a one-armed conditional. The jump skips the
// body when its condition is non-zero; when negates cond first.
func (c *Compiler) compileWhenOrUnless(e *Expression) ([]asm.Item, error) {
	if err := checkArity(e, 2); err != nil {
		return nil, err
	}

	cond, err := c.compileExpr(e.Exprs[0])
	if err != nil {
		return nil, err
	}
	thenCode, err := c.compileExpr(e.Exprs[1])
	if err != nil {
		return nil, err
	}
	destNext := c.newLabel()

	code := make([]asm.Item, 0, len(cond)+len(thenCode)+5)
	code = append(code, cond...)
	if e.Op == When {
		code = append(code, asm.Op(vm.OpISZERO))
	}
	code = append(code, asm.Op(vm.OpPUSH1), asm.Jump(destNext), asm.Op(vm.OpJUMPI))
	code = append(code, thenCode...)
	code = append(code, asm.Label(destNext))
	return code, nil
}

// Generate lowers program with a fresh Compiler.
func Generate(program *Expression) (asm.Stream, error) {
	return New().Generate(program)
}

// Compile lowers and resolves program with a fresh Compiler.
func Compile(program *Expression) (string, error) {
	return New().Compile(program)
}
