package vm

import "fmt"

// Opcode is a single instruction byte of the target stack machine.
type Opcode byte

const (
	OpSTOP     Opcode = 0x00
	OpADD      Opcode = 0x01
	OpMUL      Opcode = 0x02
	OpSUB      Opcode = 0x03
	OpDIV      Opcode = 0x04
	OpMOD      Opcode = 0x06
	OpLT       Opcode = 0x10
	OpGT       Opcode = 0x11
	OpSLT      Opcode = 0x12
	OpSGT      Opcode = 0x13
	OpEQ       Opcode = 0x14
	OpISZERO   Opcode = 0x15
	OpAND      Opcode = 0x16
	OpOR       Opcode = 0x17
	OpXOR      Opcode = 0x18
	OpNOT      Opcode = 0x19
	OpJUMP     Opcode = 0x56
	OpJUMPI    Opcode = 0x57
	OpJUMPDEST Opcode = 0x5B
	OpPUSH1    Opcode = 0x60
	OpPUSH32   Opcode = 0x7F
)

// MaxPushSize is the widest immediate a PUSH instruction can carry.
const MaxPushSize = 32

var mnemonics = map[Opcode]string{
	OpSTOP:     "STOP",
	OpADD:      "ADD",
	OpMUL:      "MUL",
	OpSUB:      "SUB",
	OpDIV:      "DIV",
	OpMOD:      "MOD",
	OpLT:       "LT",
	OpGT:       "GT",
	OpSLT:      "SLT",
	OpSGT:      "SGT",
	OpEQ:       "EQ",
	OpISZERO:   "ISZERO",
	OpAND:      "AND",
	OpOR:       "OR",
	OpXOR:      "XOR",
	OpNOT:      "NOT",
	OpJUMP:     "JUMP",
	OpJUMPI:    "JUMPI",
	OpJUMPDEST: "JUMPDEST",
}

// PushOp returns the PUSHn opcode for an immediate of n bytes.
func PushOp(n int) (Opcode, bool) {
	if n < 1 || n > MaxPushSize {
		return 0, false
	}
	return OpPUSH1 + Opcode(n-1), true
}

// IsPush reports whether op is one of PUSH1..PUSH32.
func (op Opcode) IsPush() bool {
	return op >= OpPUSH1 && op <= OpPUSH32
}

// PushSize is the number of immediate bytes following op, zero for non-push opcodes.
func (op Opcode) PushSize() int {
	if !op.IsPush() {
		return 0
	}
	return int(op-OpPUSH1) + 1
}

// Valid reports whether the machine implements op.
func (op Opcode) Valid() bool {
	if op.IsPush() {
		return true
	}
	_, ok := mnemonics[op]
	return ok
}

func (op Opcode) String() string {
	if op.IsPush() {
		return fmt.Sprintf("PUSH%d", op.PushSize())
	}
	if name, ok := mnemonics[op]; ok {
		return name
	}
	return fmt.Sprintf("INVALID(0x%02X)", byte(op))
}
