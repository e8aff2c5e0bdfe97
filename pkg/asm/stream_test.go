package asm

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseStream(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Stream
	}{
		{"empty", "", nil},
		{"comment only", "; nothing here\n", nil},
		{"bytes", "60 03 60 02 01", Stream{Byte(0x60), Byte(0x03), Byte(0x60), Byte(0x02), Byte(0x01)}},
		{"upper case hex", "5B FF", Stream{Byte(0x5b), Byte(0xff)}},
		{"placeholders", "60 jump-0 57\ndest-0", Stream{Byte(0x60), Jump(0), Byte(0x57), Label(0)}},
		{"trailing comment", "60 0a ; push ten", Stream{Byte(0x60), Byte(0x0a)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStream(tt.input)
			if err != nil {
				t.Fatalf("ParseStream failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseStream() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestParseStreamErrors(t *testing.T) {
	tests := []struct {
		input string
		want  error
	}{
		{"60 jump-", ErrMalformedJump},
		{"60 jump-x1", ErrMalformedJump},
		{"60 jump--1", ErrMalformedJump},
		{"dest-", ErrMalformedLabel},
		{"dest-abc", ErrMalformedLabel},
		{"6", ErrBadToken},
		{"600", ErrBadToken},
		{"zz", ErrBadToken},
	}
	for _, tt := range tests {
		if _, err := ParseStream(tt.input); !errors.Is(err, tt.want) {
			t.Errorf("ParseStream(%q) error = %v; want %v", tt.input, err, tt.want)
		}
	}
}

func TestStreamString(t *testing.T) {
	s := Stream{Byte(0x60), Jump(1), Byte(0x56), Label(1)}
	if got := s.String(); got != "60 jump-1 56 dest-1" {
		t.Errorf("String() = %q", got)
	}
	back, err := ParseStream(s.String())
	if err != nil {
		t.Fatalf("ParseStream failed: %v", err)
	}
	if !reflect.DeepEqual(back, s) {
		t.Errorf("ParseStream(String()) = %v; want %v", back, s)
	}
	if s.Jumps() != 1 {
		t.Errorf("Jumps() = %d; want 1", s.Jumps())
	}
}

func TestParseStreamReportsLine(t *testing.T) {
	_, err := ParseStream("60 01\n60 jump-?\n")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); got != `malformed jump: "jump-?" on line 2` {
		t.Errorf("error = %q", got)
	}
}
