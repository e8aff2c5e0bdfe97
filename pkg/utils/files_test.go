package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestReadSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sum.blll")
	if err := os.WriteFile(path, []byte("(+ 2 3)\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := ReadSource(path)
	if err != nil {
		t.Fatalf("ReadSource failed: %v", err)
	}
	if src.Text != "(+ 2 3)\n" || src.Path != path || !filepath.IsAbs(src.FullPath) {
		t.Errorf("ReadSource() = %+v", src)
	}
	if src.IsListing() {
		t.Error("source file reported as listing")
	}
}

func TestReadSourceMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.blll")
	_, err := ReadSource(path)
	if err == nil {
		t.Fatal("expected error")
	}
	if !os.IsNotExist(errors.Cause(err)) {
		t.Errorf("cause = %v; want not-exist", errors.Cause(err))
	}
	if !strings.Contains(err.Error(), "missing.blll") {
		t.Errorf("error %q lacks the path", err)
	}
}

func TestIsListing(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"prog.lst", true},
		{"PROG.LST", true},
		{"prog.blll", false},
		{"lst", false},
		{"dir.lst/prog", false},
	}
	for _, tt := range tests {
		if got := (Source{Path: tt.path}).IsListing(); got != tt.want {
			t.Errorf("IsListing(%q) = %v; want %v", tt.path, got, tt.want)
		}
	}
}

func TestWriteOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.hex")
	if err := WriteOutput(path, []byte("6001")); err != nil {
		t.Fatalf("WriteOutput failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "6001" {
		t.Errorf("file = %q, %v", data, err)
	}

	if err := WriteOutput(filepath.Join(path, "nested"), nil); err == nil {
		t.Error("expected error writing below a file")
	}
}
