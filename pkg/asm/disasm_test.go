package asm

import (
	"errors"
	"testing"

	"github.com/brettkolodny/blllc/pkg/vm"
)

func TestDisassemble(t *testing.T) {
	code := []byte{0x60, 0x01, 0x60, 0x0a, 0x57, 0x61, 0x12, 0x34, 0x5b, 0xfe}
	instrs, err := Disassemble(code)
	if err != nil {
		t.Fatalf("Disassemble failed: %v", err)
	}

	want := []string{
		"0000: PUSH1 0x01",
		"0002: PUSH1 0x0a",
		"0004: JUMPI",
		"0005: PUSH2 0x1234",
		"0008: JUMPDEST",
		"0009: INVALID(0xFE)",
	}
	if len(instrs) != len(want) {
		t.Fatalf("got %d instructions; want %d", len(instrs), len(want))
	}
	for i, in := range instrs {
		if in.String() != want[i] {
			t.Errorf("instr %d = %q; want %q", i, in.String(), want[i])
		}
	}
}

func TestDisassembleTruncated(t *testing.T) {
	_, err := Disassemble([]byte{0x60, 0x01, 0x62, 0x01})
	if !errors.Is(err, vm.ErrTruncatedPush) {
		t.Errorf("error = %v; want ErrTruncatedPush", err)
	}
}

func TestListing(t *testing.T) {
	got, err := Listing([]byte{0x60, 0x03, 0x60, 0x02, 0x01})
	if err != nil {
		t.Fatalf("Listing failed: %v", err)
	}
	want := "0000: PUSH1 0x03\n0002: PUSH1 0x02\n0004: ADD\n"
	if got != want {
		t.Errorf("Listing() = %q; want %q", got, want)
	}
}
