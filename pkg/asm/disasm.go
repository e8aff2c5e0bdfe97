package asm

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/brettkolodny/blllc/pkg/vm"
)

// Instruction is one decoded opcode with its immediate, if any.
type Instruction struct {
	Offset  int
	Op      vm.Opcode
	Operand []byte
}

func (in Instruction) String() string {
	if len(in.Operand) > 0 {
		return fmt.Sprintf("%04x: %s 0x%s", in.Offset, in.Op, hex.EncodeToString(in.Operand))
	}
	return fmt.Sprintf("%04x: %s", in.Offset, in.Op)
}

// Disassemble decodes code into instructions. Bytes the machine does not
// implement decode as INVALID rather than failing.
func Disassemble(code []byte) ([]Instruction, error) {
	var out []Instruction

	for pc := 0; pc < len(code); {
		op := vm.Opcode(code[pc])
		in := Instruction{Offset: pc, Op: op}
		pc++

		if n := op.PushSize(); n > 0 {
			if pc+n > len(code) {
				return out, fmt.Errorf("%w: %s at offset %d", vm.ErrTruncatedPush, op, in.Offset)
			}
			in.Operand = code[pc : pc+n]
			pc += n
		}

		out = append(out, in)
	}

	return out, nil
}

// Listing disassembles code into one instruction per line.
func Listing(code []byte) (string, error) {
	instrs, err := Disassemble(code)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, in := range instrs {
		b.WriteString(in.String())
		b.WriteByte('\n')
	}
	return b.String(), nil
}
