package commands

import (
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/exprgraph/pkg/textutil"
)

// stdinPath selects standard input in place of a document path.
const stdinPath = "-"

var (
	// ErrDirectoryPath indicates a file operation was attempted on a directory.
	ErrDirectoryPath = errors.New("path points to a directory")
	// ErrEmptyPath indicates a path argument was empty.
	ErrEmptyPath = errors.New("path is empty")
	// ErrPathContainsNUL indicates the path contains a NUL byte.
	ErrPathContainsNUL = errors.New("path contains NUL byte")
	// ErrDocumentTooLarge indicates an input exceeds maxDocumentBytes.
	ErrDocumentTooLarge = errors.New("document exceeds maximum size")
	// ErrBinaryDocument indicates an input that is not text.
	ErrBinaryDocument = errors.New("document is binary")
)

// maxDocumentBytes caps a single document read.
const maxDocumentBytes = 8 * humanize.MiByte

// sourceDocument is a document read from a file or stdin.
type sourceDocument struct {
	label string
	data  []byte
}

// readDocument reads path, or stdin when path is "-".
func readDocument(cmd *cobra.Command, path string) (sourceDocument, error) {
	if path == stdinPath {
		data, err := readLimited(cmd.InOrStdin())
		if err != nil {
			return sourceDocument{}, fmt.Errorf("read stdin: %w", err)
		}

		return sourceDocument{label: "stdin", data: data}, nil
	}

	data, _, err := safeReadFile(path)
	if err != nil {
		return sourceDocument{}, err
	}

	return sourceDocument{label: path, data: data}, nil
}

func safeReadFile(path string) (content []byte, resolvedPath string, err error) {
	resolvedPath, err = resolveUserFilePath(path)
	if err != nil {
		return nil, "", fmt.Errorf("resolve path %q: %w", path, err)
	}

	//nolint:gosec // resolvedPath is normalized and existence/type checked in resolveUserFilePath.
	file, err := os.Open(resolvedPath)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", resolvedPath, err)
	}
	defer file.Close()

	content, err = readLimited(file)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", resolvedPath, err)
	}

	return content, resolvedPath, nil
}

func readLimited(reader io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(reader, maxDocumentBytes+1))
	if err != nil {
		return nil, err
	}

	if len(data) > maxDocumentBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrDocumentTooLarge, maxDocumentBytes)
	}

	if textutil.IsBinary(data) {
		return nil, ErrBinaryDocument
	}

	return data, nil
}

func resolveUserFilePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrEmptyPath
	}

	if strings.ContainsRune(path, '\x00') {
		return "", fmt.Errorf("%w: %q", ErrPathContainsNUL, path)
	}

	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", path, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", absPath, err)
	}

	if info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrDirectoryPath, absPath)
	}

	return absPath, nil
}

// sanitizeForTerminal strips control characters from document-supplied text.
func sanitizeForTerminal(input string) string {
	escaped := html.EscapeString(input)

	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return ' '
		case unicode.IsControl(r):
			return -1
		default:
			return r
		}
	}, escaped)
}
