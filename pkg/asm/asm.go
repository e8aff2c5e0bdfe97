// Package asm holds the intermediate item stream the code generator emits
// and the pass that resolves its jump placeholders into concrete bytes.
package asm

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/brettkolodny/blllc/pkg/vm"
)

var (
	ErrNoDestination  = errors.New("no destination found")
	ErrDuplicateLabel = errors.New("duplicate label")
	ErrJumpOutOfRange = errors.New("jump destination out of range")
	ErrMalformedJump  = errors.New("malformed jump")
	ErrMalformedLabel = errors.New("malformed label")
	ErrBadToken       = errors.New("bad listing token")
)

// MaxJumpTarget is the highest offset a jump can reach. The generator
// pushes every destination with PUSH1.
const MaxJumpTarget = 0xFF

// Kind discriminates the three item shapes.
type Kind uint8

const (
	KindByte  Kind = iota // one concrete output byte
	KindJump              // placeholder for the offset of a label
	KindLabel             // label definition, becomes JUMPDEST
)

// Item is one element of the stream. Every item resolves to exactly one
// byte, which makes the index of a label definition its byte offset.
type Item struct {
	Kind  Kind
	Byte  byte
	Label int
}

func Byte(b byte) Item     { return Item{Kind: KindByte, Byte: b} }
func Op(op vm.Opcode) Item { return Item{Kind: KindByte, Byte: byte(op)} }
func Jump(label int) Item  { return Item{Kind: KindJump, Label: label} }
func Label(label int) Item { return Item{Kind: KindLabel, Label: label} }

// String renders the item in listing form: "60", "jump-3" or "dest-3".
func (it Item) String() string {
	switch it.Kind {
	case KindJump:
		return fmt.Sprintf("jump-%d", it.Label)
	case KindLabel:
		return fmt.Sprintf("dest-%d", it.Label)
	default:
		return fmt.Sprintf("%02x", it.Byte)
	}
}

type Assembler struct {
	labels map[int]int
}

func NewAssembler() *Assembler {
	return &Assembler{
		labels: make(map[int]int),
	}
}

func Assemble(items []Item) ([]byte, error) {
	return NewAssembler().Assemble(items)
}

// AssembleHex resolves items and returns the bytecode as lowercase hex.
func AssembleHex(items []Item) (string, error) {
	code, err := Assemble(items)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(code), nil
}

func (a *Assembler) Assemble(items []Item) ([]byte, error) {
	if err := a.pass1(items); err != nil {
		return nil, err
	}
	return a.pass2(items)
}

// pass1 records the offset of every label definition.
func (a *Assembler) pass1(items []Item) error {
	for i, it := range items {
		if it.Kind != KindLabel {
			continue
		}
		if prev, exists := a.labels[it.Label]; exists {
			return fmt.Errorf("%w: label %d defined at offsets %d and %d", ErrDuplicateLabel, it.Label, prev, i)
		}
		a.labels[it.Label] = i
	}
	return nil
}

func (a *Assembler) pass2(items []Item) ([]byte, error) {
	program := make([]byte, 0, len(items))

	for i, it := range items {
		switch it.Kind {
		case KindByte:
			program = append(program, it.Byte)

		case KindLabel:
			program = append(program, byte(vm.OpJUMPDEST))

		case KindJump:
			dest, ok := a.labels[it.Label]
			if !ok {
				return nil, fmt.Errorf("%w: jump to label %d at offset %d", ErrNoDestination, it.Label, i)
			}
			if dest > MaxJumpTarget {
				return nil, fmt.Errorf("%w: label %d resolves to offset %d, which does not fit one byte", ErrJumpOutOfRange, it.Label, dest)
			}
			program = append(program, byte(dest))

		default:
			return nil, fmt.Errorf("unknown item kind %d at offset %d", it.Kind, i)
		}
	}

	return program, nil
}
