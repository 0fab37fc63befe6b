// Package fsops provides the file operations an editor front end needs
// alongside the language server: read a file, write a file, list a directory.
package fsops

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

// ErrNotText is returned by ReadFile for content that is not valid UTF-8.
var ErrNotText = errors.New("file is not valid UTF-8")

// Entry is one item in a directory listing.
type Entry struct {
	Name  string `json:"name" yaml:"name"`
	Path  string `json:"path" yaml:"path"`
	IsDir bool   `json:"is_dir" yaml:"is_dir"`
	// Children is left nil; listings are loaded one level at a time.
	Children []Entry `json:"children,omitempty" yaml:"children,omitempty"`
}

// ReadFile returns the contents of path as text. Content that is not valid
// UTF-8 is an error wrapping ErrNotText.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}

	if !utf8.Valid(data) {
		return "", fmt.Errorf("read file %s: %w", path, ErrNotText)
	}

	return string(data), nil
}

// WriteFile replaces the contents of path, creating it if needed.
func WriteFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	return nil
}

// ReadDir lists path one level deep. Dot-files are skipped. Directories come
// first, then files, each group sorted by name.
func ReadDir(path string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	entries := make([]Entry, 0, len(dirEntries))

	for _, de := range dirEntries {
		name := de.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		full := filepath.Join(path, name)

		isDir := de.IsDir()
		if de.Type()&os.ModeSymlink != 0 {
			// Follow links so a linked directory still sorts as a directory.
			if info, err := os.Stat(full); err == nil {
				isDir = info.IsDir()
			}
		}

		entries = append(entries, Entry{Name: name, Path: full, IsDir: isDir})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}

		return entries[i].Name < entries[j].Name
	})

	return entries, nil
}
