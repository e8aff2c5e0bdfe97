package compiler

import (
	"encoding/hex"
	"testing"

	"github.com/brettkolodny/blllc/pkg/vm"
)

const maxWord = "115792089237316195423570985008687907853269984665640564039457584007913129639935"

// runCode compiles src, executes it and returns the halted machine.
func runCode(t *testing.T, src string) *vm.VM {
	t.Helper()
	code, err := CompileSource(src)
	if err != nil {
		t.Fatalf("CompileSource(%q) failed: %v", src, err)
	}
	raw, err := hex.DecodeString(code)
	if err != nil {
		t.Fatalf("bad hex %q: %v", code, err)
	}
	m := vm.New(raw)
	if err := m.Run(); err != nil {
		t.Fatalf("Run(%q) failed: %v\nstack: %s", code, err, m.StackString())
	}
	return m
}

func TestArithmetic_E2E(t *testing.T) {
	tests := []struct {
		expr     string
		expected string
	}{
		{"(+ 2 3)", "[5]"},
		{"(+ 1 2 3 4)", "[10]"},
		{"(- 10 3 2)", "[5]"},
		{"(- 100 (* 2 3) 4)", "[90]"},
		{"(* 2 3 4)", "[24]"},
		{"(/ 100 10 2)", "[5]"},
		{"(% 10 3)", "[1]"},
		{"(/ 7 0)", "[0]"},
		{"(% 7 0)", "[0]"},
		{"(- 1 2)", "[" + maxWord + "]"},
		{"(+ 5)", "[5]"},
		{"1 2 3", "[1 2 3]"},
	}
	for _, tt := range tests {
		if got := runCode(t, tt.expr).StackString(); got != tt.expected {
			t.Errorf("%s: expected %s, got %s", tt.expr, tt.expected, got)
		}
	}
}

func TestBitwise_E2E(t *testing.T) {
	tests := []struct {
		expr     string
		expected string
	}{
		{"(& 12 10)", "[8]"},
		{"(| 12 10)", "[14]"},
		{"(^ 12 10)", "[6]"},
		{"(^ 1 2 4)", "[7]"},
		{"(& 0xff 0x0f)", "[15]"},
		{"(~ 0)", "[" + maxWord + "]"},
		{"(~ (~ 5))", "[5]"},
	}
	for _, tt := range tests {
		if got := runCode(t, tt.expr).StackString(); got != tt.expected {
			t.Errorf("%s: expected %s, got %s", tt.expr, tt.expected, got)
		}
	}
}

func TestComparison_E2E(t *testing.T) {
	tests := []struct {
		expr     string
		expected string
	}{
		{"(< 1 2)", "[1]"},
		{"(< 2 1)", "[0]"},
		{"(> 2 1)", "[1]"},
		{"(> 1 2)", "[0]"},
		{"(<= 2 2)", "[1]"},
		{"(<= 1 2)", "[1]"},
		{"(<= 3 2)", "[0]"},
		{"(>= 3 3)", "[1]"},
		{"(>= 2 3)", "[0]"},
		{"(= 4 4)", "[1]"},
		{"(= 4 5)", "[0]"},
		{"(!= 4 4)", "[0]"},
		{"(!= 4 5)", "[1]"},
		{"(> 1 (~ 0))", "[0]"},
		{"(S< (~ 0) 1)", "[1]"},
		{"(S> 1 (~ 0))", "[1]"},
		{"(S<= (~ 0) (~ 0))", "[1]"},
		{"(S>= 1 (~ 0))", "[1]"},
		{"(S>= (~ 0) 1)", "[0]"},
	}
	for _, tt := range tests {
		if got := runCode(t, tt.expr).StackString(); got != tt.expected {
			t.Errorf("%s: expected %s, got %s", tt.expr, tt.expected, got)
		}
	}
}

// Literals with an odd number of hex digits keep their historical byte
// layout: the final digit is pushed as a separate low byte.
func TestOddDigitLiterals_E2E(t *testing.T) {
	tests := []struct {
		expr     string
		expected string
	}{
		{"(+ 256 0)", "[4096]"},
		{"(- 0x100 1)", "[4095]"},
		{"0x123", "[4611]"},
		{"0x1234", "[4660]"},
	}
	for _, tt := range tests {
		if got := runCode(t, tt.expr).StackString(); got != tt.expected {
			t.Errorf("%s: expected %s, got %s", tt.expr, tt.expected, got)
		}
	}
}
