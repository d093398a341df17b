package fsops

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRealFS_ValidateRelPath(t *testing.T) {
	fs := &RealFS{}

	tests := []struct {
		name      string
		path      string
		wantError bool
	}{
		{name: "valid relative path", path: "data/raw/part-0.csv", wantError: false},
		{name: "valid single file", path: "model.bin", wantError: false},
		{name: "dotted file name", path: "..hidden", wantError: false},
		{name: "empty path", path: "", wantError: true},
		{name: "current directory", path: ".", wantError: true},
		{name: "absolute path", path: "/etc/hosts", wantError: true},
		{name: "parent directory", path: "..", wantError: true},
		{name: "traversal prefix", path: "../outside.csv", wantError: true},
		{name: "traversal after clean", path: "data/../../outside.csv", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fs.ValidateRelPath(tt.path)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidateRelPath(%q) error = %v, wantError %v", tt.path, err, tt.wantError)
			}
		})
	}
}

func TestRealFS_ValidateName(t *testing.T) {
	fs := &RealFS{}

	tests := []struct {
		name      string
		input     string
		wantError bool
	}{
		{name: "simple", input: "storage", wantError: false},
		{name: "with dash and dot", input: "s3-backup.eu", wantError: false},
		{name: "empty", input: "", wantError: true},
		{name: "path separator", input: "a/b", wantError: true},
		{name: "leading dot", input: ".hidden", wantError: true},
		{name: "whitespace", input: "my remote", wantError: true},
		{name: "toml quote", input: `a"b`, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fs.ValidateName(tt.input)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidateName(%q) error = %v, wantError %v", tt.input, err, tt.wantError)
			}
		})
	}
}

func TestRealFS_Exists(t *testing.T) {
	tmpDir := t.TempDir()
	fs := NewRealFS()

	t.Run("existing file", func(t *testing.T) {
		path := filepath.Join(tmpDir, "exists.txt")
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
		exists, err := fs.Exists(path)
		if err != nil {
			t.Fatalf("Exists() error = %v", err)
		}
		if !exists {
			t.Error("Exists() = false, want true")
		}
	})

	t.Run("non-existing file", func(t *testing.T) {
		exists, err := fs.Exists(filepath.Join(tmpDir, "missing.txt"))
		if err != nil {
			t.Fatalf("Exists() error = %v", err)
		}
		if exists {
			t.Error("Exists() = true, want false")
		}
	})
}

func TestRealFS_AtomicWrite(t *testing.T) {
	tmpDir := t.TempDir()
	fs := NewRealFS()

	t.Run("write to new file in new directory", func(t *testing.T) {
		path := filepath.Join(tmpDir, "nested", "dir", "new.txt")
		if err := fs.AtomicWrite(path, []byte("content"), 0644); err != nil {
			t.Fatalf("AtomicWrite() error = %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		if string(data) != "content" {
			t.Errorf("content = %q, want %q", data, "content")
		}
	})

	t.Run("overwrite existing file leaves no temp files", func(t *testing.T) {
		path := filepath.Join(tmpDir, "overwrite.txt")
		if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
		if err := fs.AtomicWrite(path, []byte("new"), 0600); err != nil {
			t.Fatalf("AtomicWrite() error = %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		if string(data) != "new" {
			t.Errorf("content = %q, want %q", data, "new")
		}

		entries, err := os.ReadDir(tmpDir)
		if err != nil {
			t.Fatalf("ReadDir() error = %v", err)
		}
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), ".dsync-tmp-") {
				t.Errorf("temp file %s left behind", e.Name())
			}
		}
	})
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("boom")
}

func TestRealFS_WriteStream(t *testing.T) {
	tmpDir := t.TempDir()
	fs := NewRealFS()

	t.Run("returns bytes written", func(t *testing.T) {
		path := filepath.Join(tmpDir, "stream.bin")
		n, err := fs.WriteStream(path, strings.NewReader("0123456789"), 0644)
		if err != nil {
			t.Fatalf("WriteStream() error = %v", err)
		}
		if n != 10 {
			t.Errorf("WriteStream() = %d, want 10", n)
		}
	})

	t.Run("failed read keeps previous content", func(t *testing.T) {
		path := filepath.Join(tmpDir, "keep.txt")
		if err := os.WriteFile(path, []byte("previous"), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		if _, err := fs.WriteStream(path, failingReader{}, 0644); err == nil {
			t.Fatal("WriteStream() expected error")
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		if string(data) != "previous" {
			t.Errorf("content = %q, want %q", data, "previous")
		}
	})
}

func TestRealFS_Remove(t *testing.T) {
	tmpDir := t.TempDir()
	fs := NewRealFS()

	path := filepath.Join(tmpDir, "remove.txt")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if err := fs.Remove(path); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file still exists after Remove()")
	}
}
