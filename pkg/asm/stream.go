package asm

import (
	"fmt"
	"strconv"
	"strings"
)

// Stream is an ordered item sequence as produced by the code generator.
type Stream []Item

// String renders the stream as a space separated listing that ParseStream
// reads back.
func (s Stream) String() string {
	parts := make([]string, len(s))
	for i, it := range s {
		parts[i] = it.String()
	}
	return strings.Join(parts, " ")
}

// Jumps counts the jump placeholders in the stream.
func (s Stream) Jumps() int {
	n := 0
	for _, it := range s {
		if it.Kind == KindJump {
			n++
		}
	}
	return n
}

// ParseStream reads a listing. Tokens are whitespace separated; ';' starts a
// comment running to end of line.
func ParseStream(text string) (Stream, error) {
	var items Stream

	for i, raw := range strings.Split(text, "\n") {
		lineNo := i + 1
		if cut := strings.IndexByte(raw, ';'); cut >= 0 {
			raw = raw[:cut]
		}
		for _, tok := range strings.Fields(raw) {
			it, err := parseToken(tok, lineNo)
			if err != nil {
				return nil, err
			}
			items = append(items, it)
		}
	}

	return items, nil
}

func parseToken(tok string, lineNo int) (Item, error) {
	lower := strings.ToLower(tok)

	if rest, ok := strings.CutPrefix(lower, "jump-"); ok {
		label, err := parseLabel(rest)
		if err != nil {
			return Item{}, fmt.Errorf("%w: %q on line %d", ErrMalformedJump, tok, lineNo)
		}
		return Jump(label), nil
	}

	if rest, ok := strings.CutPrefix(lower, "dest-"); ok {
		label, err := parseLabel(rest)
		if err != nil {
			return Item{}, fmt.Errorf("%w: %q on line %d", ErrMalformedLabel, tok, lineNo)
		}
		return Label(label), nil
	}

	if len(lower) != 2 {
		return Item{}, fmt.Errorf("%w: %q on line %d", ErrBadToken, tok, lineNo)
	}
	b, err := strconv.ParseUint(lower, 16, 8)
	if err != nil {
		return Item{}, fmt.Errorf("%w: %q on line %d", ErrBadToken, tok, lineNo)
	}
	return Byte(byte(b)), nil
}

func parseLabel(s string) (int, error) {
	if s == "" || strings.ContainsAny(s, "+-") {
		return 0, strconv.ErrSyntax
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return n, nil
}
