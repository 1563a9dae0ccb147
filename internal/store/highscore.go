package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrMalformed is returned when a stored high score is not a non-negative integer.
var ErrMalformed = errors.New("malformed high score")

// HighScores persists the single best score across sessions.
type HighScores interface {
	// Load returns the stored score, or 0 when nothing was stored yet.
	Load() (int, error)
	Save(score int) error
	Close() error
}

// Open returns the high score backend for path: a SQLite database for
// .db, .sqlite and .sqlite3 files, a plain-text file otherwise.
func Open(path string) (HighScores, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return New(path)
	default:
		return NewFile(path), nil
	}
}

// File keeps the high score as a decimal integer in a text file.
type File struct {
	path string
}

// NewFile creates a file-backed store. The file is not touched until Load or Save.
func NewFile(path string) *File {
	return &File{path: path}
}

// Load reads the score. A missing file is 0 with no error.
func (f *File) Load() (int, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read high score: %w", err)
	}
	return parseScore(string(data))
}

// Save replaces the stored score. The new file is written next to the old
// one and renamed over it, so readers never see a partial value.
func (f *File) Save(score int) error {
	if score < 0 {
		return fmt.Errorf("%w: %d", ErrMalformed, score)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create high score directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".highscore-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(strconv.Itoa(score)); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write high score: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write high score: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace high score: %w", err)
	}
	return nil
}

// Close is a no-op.
func (f *File) Close() error { return nil }

// Path returns the file location.
func (f *File) Path() string { return f.path }

func parseScore(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	return n, nil
}
