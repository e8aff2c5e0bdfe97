package main

import (
	"errors"
	"testing"

	"github.com/brettkolodny/blllc/pkg/compiler"
)

func TestNeedsMore(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"(+ 1 2)", false},
		{"(+ 1", true},
		{"(if (< 1 2)\n  10", true},
		{"(if (< 1 2)\n  10\n  20)", false},
		{`("open`, true},
		{")", false},
		{"(foo", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := needsMore(tt.src); got != tt.want {
			t.Errorf("needsMore(%q) = %v; want %v", tt.src, got, tt.want)
		}
	}
}

func TestSessionEval(t *testing.T) {
	s := newSession()
	out, err := s.eval("(+ 2 3)")
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if out != "6003600201\nstack: [5]\n" {
		t.Errorf("eval = %q", out)
	}

	s.command(":run")
	s.command(":asm")
	out, err = s.eval("(~ 0)")
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if out != "600019\n0000: PUSH1 0x00\n0002: NOT\n" {
		t.Errorf("eval = %q", out)
	}
}

func TestSessionEvalErrors(t *testing.T) {
	s := newSession()
	if _, err := s.eval("(if 1 2)"); !errors.Is(err, compiler.ErrWrongArity) {
		t.Errorf("eval error = %v; want ErrWrongArity", err)
	}

	s.c.MaxDepth = 1
	if _, err := s.eval("(~ (~ 1))"); !errors.Is(err, compiler.ErrTooDeep) {
		t.Errorf("eval error = %v; want ErrTooDeep", err)
	}
}

func TestSessionCommands(t *testing.T) {
	s := newSession()
	tests := []struct {
		line  string
		out   string
		quit  bool
		known bool
	}{
		{":help", helpText, false, true},
		{":asm", "disassembly on\n", false, true},
		{":ASM", "disassembly off\n", false, true},
		{":run", "execution off\n", false, true},
		{" :run ", "execution on\n", false, true},
		{":frob", "", false, false},
		{":quit", "", true, true},
	}
	for _, tt := range tests {
		out, quit, known := s.command(tt.line)
		if out != tt.out || quit != tt.quit || known != tt.known {
			t.Errorf("command(%q) = %q, %v, %v; want %q, %v, %v", tt.line, out, quit, known, tt.out, tt.quit, tt.known)
		}
	}
}
