package utils

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ListingExt marks files that hold an item listing rather than source.
const ListingExt = ".lst"

// Source is one input file loaded into memory.
type Source struct {
	Path     string // as given on the command line
	FullPath string
	Text     string
}

// IsListing reports whether the file should be assembled directly.
func (s Source) IsListing() bool {
	return strings.EqualFold(filepath.Ext(s.Path), ListingExt)
}

func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", errors.Wrapf(err, "resolve %q", relPath)
	}

	// Get the directory containing the file
	parentDir = filepath.Dir(fullPath)

	return fullPath, parentDir, nil
}

// ReadSource loads path. Errors carry the resolved path.
func ReadSource(path string) (Source, error) {
	fullPath, _, err := GetPathInfo(path)
	if err != nil {
		return Source{}, err
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return Source{}, errors.Wrapf(err, "read %s", fullPath)
	}
	return Source{Path: path, FullPath: fullPath, Text: string(data)}, nil
}

// WriteOutput writes data to path, creating or truncating it.
func WriteOutput(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}
