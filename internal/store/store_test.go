package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewStore_CreatesDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Fatal("database file should not exist before creating store")
	}

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatal("database file should exist after creating store")
	}

	var name string
	err = s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='settings'").Scan(&name)
	if err != nil {
		t.Errorf("settings table missing: %v", err)
	}
}

func TestStore_Settings(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	if _, ok, err := s.Setting("missing"); err != nil || ok {
		t.Fatalf("Setting(missing) = ok %v, err %v", ok, err)
	}

	if err := s.SetSetting("camera", "0"); err != nil {
		t.Fatalf("SetSetting() error = %v", err)
	}
	if err := s.SetSetting("camera", "1"); err != nil {
		t.Fatalf("SetSetting() overwrite error = %v", err)
	}

	value, ok, err := s.Setting("camera")
	if err != nil || !ok || value != "1" {
		t.Errorf("Setting(camera) = %q, %v, %v; want \"1\", true, nil", value, ok, err)
	}
}

func TestHighScores_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		file string
	}{
		{"text file", "highscore.txt"},
		{"sqlite", "scores.db"},
		{"sqlite3 extension", "scores.sqlite3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)

			hs, err := Open(path)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}

			got, err := hs.Load()
			if err != nil || got != 0 {
				t.Fatalf("Load() on fresh store = %d, %v; want 0, nil", got, err)
			}

			if err := hs.Save(42); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if err := hs.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}

			// A new process sees the saved value.
			hs, err = Open(path)
			if err != nil {
				t.Fatalf("reopen error = %v", err)
			}
			defer hs.Close()

			if got, err := hs.Load(); err != nil || got != 42 {
				t.Errorf("Load() after reopen = %d, %v; want 42, nil", got, err)
			}
		})
	}
}

func TestOpen_PicksBackend(t *testing.T) {
	dir := t.TempDir()

	hs, err := Open(filepath.Join(dir, "highscore.txt"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, ok := hs.(*File); !ok {
		t.Errorf("Open(.txt) = %T, want *File", hs)
	}

	hs, err = Open(filepath.Join(dir, "scores.DB"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer hs.Close()
	if _, ok := hs.(*Store); !ok {
		t.Errorf("Open(.DB) = %T, want *Store", hs)
	}
}

func TestFile_Load(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		want      int
		malformed bool
	}{
		{name: "plain", content: "17", want: 17},
		{name: "trailing newline", content: "17\n", want: 17},
		{name: "zero", content: "0", want: 0},
		{name: "empty", content: "", malformed: true},
		{name: "text", content: "seventeen", malformed: true},
		{name: "negative", content: "-3", malformed: true},
		{name: "float", content: "1.5", malformed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "highscore.txt")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}

			got, err := NewFile(path).Load()
			if tt.malformed {
				if !errors.Is(err, ErrMalformed) {
					t.Errorf("Load() error = %v, want ErrMalformed", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("Load() = %d, %v; want %d, nil", got, err, tt.want)
			}
		})
	}
}

func TestFile_SaveIsAtomic(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	f := NewFile(filepath.Join(dir, "highscore.txt"))

	if err := f.Save(5); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := f.Save(12); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(f.Path())
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "12" {
		t.Errorf("file content = %q, want \"12\"", data)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, temp files left behind", len(entries))
	}
}

func TestFile_SaveOverwritesMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "highscore.txt")
	os.WriteFile(path, []byte("garbage"), 0o644)

	f := NewFile(path)
	if err := f.Save(3); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if got, err := f.Load(); err != nil || got != 3 {
		t.Errorf("Load() = %d, %v; want 3, nil", got, err)
	}
}

func TestSave_RejectsNegative(t *testing.T) {
	if err := NewFile(filepath.Join(t.TempDir(), "hs.txt")).Save(-1); !errors.Is(err, ErrMalformed) {
		t.Errorf("Save(-1) error = %v, want ErrMalformed", err)
	}
}
