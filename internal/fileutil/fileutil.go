// Package fileutil provides file and path utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for file utility operations.
var (
	ErrFileNameEmpty         = errors.New("file name cannot be empty")
	ErrFileNamePathTraversal = errors.New("file name contains path separator or null byte")
)

// ValidateFileName checks that name is a plain file name that stays inside its directory.
func ValidateFileName(name string) error {
	if name == "" {
		return ErrFileNameEmpty
	}
	if strings.ContainsAny(name, "/\\\x00") || name == "." || name == ".." {
		return ErrFileNamePathTraversal
	}
	return nil
}

// WriteFileAtomic writes data to dir/name through a temporary file in the same
// directory followed by a rename, so readers never observe a partial file.
// The directory tree is created when missing.
func WriteFileAtomic(dir, name string, data []byte, perm os.FileMode) (path string, err error) {
	if err := ValidateFileName(name); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "."+name+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, writeErr := tmpFile.Write(data); writeErr != nil {
		_ = tmpFile.Close()
		return "", fmt.Errorf("writing temp file: %w", writeErr)
	}
	if closeErr := tmpFile.Close(); closeErr != nil {
		return "", fmt.Errorf("closing temp file: %w", closeErr)
	}
	if chmodErr := os.Chmod(tmpPath, perm); chmodErr != nil {
		return "", fmt.Errorf("setting permissions: %w", chmodErr)
	}

	path = filepath.Join(dir, name)
	if renameErr := os.Rename(tmpPath, path); renameErr != nil {
		return "", fmt.Errorf("renaming temp file: %w", renameErr)
	}
	return path, nil
}

// SanitizeToken keeps ASCII letters, digits, '-' and '_' and replaces every
// other rune with '_'. The result is safe to embed in a file name.
func SanitizeToken(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists returns true if the path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
//
// Examples:
//   - "story-template" -> false (name)
//   - "./custom.html" -> true (relative path)
//   - "/absolute/config.yaml" -> true (absolute)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}
