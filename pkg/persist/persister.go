package persist

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// dirPerm is the permission for created artifact directories.
const dirPerm = 0o750

// Store saves and loads values of one type as files in a directory, one
// file per name, using a Codec.
type Store[T any] struct {
	dir   string
	codec Codec
}

// NewStore creates a store rooted at dir.
func NewStore[T any](dir string, codec Codec) *Store[T] {
	return &Store[T]{
		dir:   dir,
		codec: codec,
	}
}

// Path returns the file path used for name.
func (s *Store[T]) Path(name string) string {
	return filepath.Join(s.dir, sanitize(name)+s.codec.Extension())
}

// Save writes value under name, creating the directory if needed.
func (s *Store[T]) Save(name string, value *T) (string, error) {
	err := os.MkdirAll(s.dir, dirPerm)
	if err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}

	path := s.Path(name)

	err = SaveFile(path, s.codec, value)
	if err != nil {
		return "", err
	}

	return path, nil
}

// Load reads the value stored under name.
func (s *Store[T]) Load(name string) (*T, error) {
	var value T

	err := LoadFile(s.Path(name), s.codec, &value)
	if err != nil {
		return nil, err
	}

	return &value, nil
}

// sanitize turns a document name into a safe file base name.
func sanitize(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, filepath.Base(name))

	cleaned = strings.Trim(cleaned, ".")
	if cleaned == "" {
		return "artifact"
	}

	return cleaned
}
