// Package vm executes the bytecode produced by the compiler on a minimal
// 256-bit word stack machine. Only the opcodes the compiler can emit are
// implemented.
package vm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// StackLimit is the maximum number of words on the stack.
const StackLimit = 1024

// DefaultMaxSteps bounds Run so a malformed program cannot spin forever.
const DefaultMaxSteps = 1 << 20

var (
	ErrStackUnderflow = errors.New("stack underflow")
	ErrStackOverflow  = errors.New("stack overflow")
	ErrInvalidJump    = errors.New("invalid jump destination")
	ErrInvalidOpcode  = errors.New("invalid opcode")
	ErrTruncatedPush  = errors.New("push data runs past end of code")
	ErrStepLimit      = errors.New("step limit exceeded")
)

type VM struct {
	Code  []byte
	Stack []uint256.Int

	PC     int
	Halted bool

	Steps    int
	MaxSteps int

	jumpdests []bool
}

func New(code []byte) *VM {
	return &VM{
		Code:      code,
		MaxSteps:  DefaultMaxSteps,
		jumpdests: analyzeJumpdests(code),
	}
}

// analyzeJumpdests marks every JUMPDEST byte that is an instruction and not
// part of a PUSH immediate.
func analyzeJumpdests(code []byte) []bool {
	dests := make([]bool, len(code))
	for pc := 0; pc < len(code); pc++ {
		op := Opcode(code[pc])
		if op == OpJUMPDEST {
			dests[pc] = true
			continue
		}
		pc += op.PushSize()
	}
	return dests
}

func (v *VM) push(x *uint256.Int) error {
	if len(v.Stack) >= StackLimit {
		return ErrStackOverflow
	}
	v.Stack = append(v.Stack, *x)
	return nil
}

func (v *VM) pop() (uint256.Int, error) {
	if len(v.Stack) == 0 {
		return uint256.Int{}, ErrStackUnderflow
	}
	x := v.Stack[len(v.Stack)-1]
	v.Stack = v.Stack[:len(v.Stack)-1]
	return x, nil
}

func boolWord(b bool) *uint256.Int {
	if b {
		return uint256.NewInt(1)
	}
	return uint256.NewInt(0)
}

func (v *VM) jump(dest *uint256.Int) error {
	if !dest.IsUint64() || dest.Uint64() >= uint64(len(v.Code)) || !v.jumpdests[dest.Uint64()] {
		return fmt.Errorf("%w: %s at pc %d", ErrInvalidJump, dest.Dec(), v.PC)
	}
	v.PC = int(dest.Uint64())
	return nil
}

// Step executes the instruction at PC. Running off the end of the code halts.
func (v *VM) Step() error {
	if v.Halted {
		return nil
	}
	if v.PC >= len(v.Code) {
		v.Halted = true
		return nil
	}

	op := Opcode(v.Code[v.PC])
	start := v.PC
	v.PC++
	v.Steps++

	if n := op.PushSize(); n > 0 {
		if v.PC+n > len(v.Code) {
			return fmt.Errorf("%w: %s at pc %d", ErrTruncatedPush, op, start)
		}
		var x uint256.Int
		x.SetBytes(v.Code[v.PC : v.PC+n])
		v.PC += n
		return v.push(&x)
	}

	switch op {
	case OpSTOP:
		v.Halted = true

	case OpJUMPDEST:

	case OpADD, OpMUL, OpSUB, OpDIV, OpMOD, OpLT, OpGT, OpSLT, OpSGT, OpEQ, OpAND, OpOR, OpXOR:
		a, err := v.pop()
		if err != nil {
			return fmt.Errorf("%w: %s at pc %d", err, op, start)
		}
		b, err := v.pop()
		if err != nil {
			return fmt.Errorf("%w: %s at pc %d", err, op, start)
		}
		var r uint256.Int
		switch op {
		case OpADD:
			r.Add(&a, &b)
		case OpMUL:
			r.Mul(&a, &b)
		case OpSUB:
			r.Sub(&a, &b)
		case OpDIV:
			r.Div(&a, &b)
		case OpMOD:
			r.Mod(&a, &b)
		case OpLT:
			r = *boolWord(a.Lt(&b))
		case OpGT:
			r = *boolWord(a.Gt(&b))
		case OpSLT:
			r = *boolWord(a.Slt(&b))
		case OpSGT:
			r = *boolWord(a.Sgt(&b))
		case OpEQ:
			r = *boolWord(a.Eq(&b))
		case OpAND:
			r.And(&a, &b)
		case OpOR:
			r.Or(&a, &b)
		case OpXOR:
			r.Xor(&a, &b)
		}
		return v.push(&r)

	case OpISZERO, OpNOT:
		a, err := v.pop()
		if err != nil {
			return fmt.Errorf("%w: %s at pc %d", err, op, start)
		}
		var r uint256.Int
		if op == OpISZERO {
			r = *boolWord(a.IsZero())
		} else {
			r.Not(&a)
		}
		return v.push(&r)

	case OpJUMP:
		dest, err := v.pop()
		if err != nil {
			return fmt.Errorf("%w: %s at pc %d", err, op, start)
		}
		v.PC = start
		return v.jump(&dest)

	case OpJUMPI:
		dest, err := v.pop()
		if err != nil {
			return fmt.Errorf("%w: %s at pc %d", err, op, start)
		}
		cond, err := v.pop()
		if err != nil {
			return fmt.Errorf("%w: %s at pc %d", err, op, start)
		}
		if cond.IsZero() {
			return nil
		}
		v.PC = start
		return v.jump(&dest)

	default:
		return fmt.Errorf("%w: 0x%02X at pc %d", ErrInvalidOpcode, byte(op), start)
	}
	return nil
}

// Run steps until the machine halts, an instruction fails, or MaxSteps is hit.
func (v *VM) Run() error {
	for !v.Halted {
		if v.MaxSteps > 0 && v.Steps >= v.MaxSteps {
			return fmt.Errorf("%w: %d steps", ErrStepLimit, v.Steps)
		}
		if err := v.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Top returns the word on top of the stack.
func (v *VM) Top() (*uint256.Int, bool) {
	if len(v.Stack) == 0 {
		return nil, false
	}
	return &v.Stack[len(v.Stack)-1], true
}

// StackString renders the stack bottom to top in decimal.
func (v *VM) StackString() string {
	words := make([]string, len(v.Stack))
	for i := range v.Stack {
		words[i] = v.Stack[i].Dec()
	}
	return "[" + strings.Join(words, " ") + "]"
}
