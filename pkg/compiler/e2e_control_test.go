package compiler

import "testing"

func TestConditionals_E2E(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected string
	}{
		{"if taken", "(if 1 10 20)", "[10]"},
		{"if not taken", "(if 0 10 20)", "[20]"},
		{"if any non-zero", "(if 42 10 20)", "[10]"},
		{"if computed", "(if (< 1 2) (+ 1 1) (* 3 3))", "[2]"},
		{"when taken", "(when 1 7)", "[7]"},
		{"when not taken", "(when 0 7)", "[]"},
		{"when computed", "(when (< 1 2) (+ 3 4))", "[7]"},
		{"unless taken", "(unless 0 8)", "[8]"},
		{"unless not taken", "(unless 1 8)", "[]"},
		{"unless computed", "(unless (< 1 2) 9)", "[]"},
		{"nested then", "(if (= 1 1) (if 0 1 2) 3)", "[2]"},
		{"nested else", "(if (!= 1 1) 5 (if (S< (~ 0) 0) 6 7))", "[6]"},
		{"conditional condition", "(if (when 1 2) 3 4)", "[3]"},
		{"siblings", "(if 0 1 2) (if 1 3 4)", "[2 3]"},
		{"conditional operand", "(+ (if 1 10 20) (if 0 1 2))", "[12]"},
		{"derived comparison of conditionals", "(<= (if 1 2 3) (when 1 2))", "[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := runCode(t, tt.src)
			if got := m.StackString(); got != tt.expected {
				t.Errorf("%s: expected %s, got %s", tt.src, tt.expected, got)
			}
			if !m.Halted {
				t.Error("machine did not halt")
			}
		})
	}
}
