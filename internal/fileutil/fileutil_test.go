package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteTempFile(t *testing.T) {
	t.Run("creates and cleans up", func(t *testing.T) {
		path, cleanup, err := WriteTempFile("hello", "tex")
		if err != nil {
			t.Fatalf("WriteTempFile() error = %v", err)
		}
		if !strings.HasSuffix(path, ".tex") {
			t.Errorf("path = %q, want .tex suffix", path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading temp file: %v", err)
		}
		if string(data) != "hello" {
			t.Errorf("content = %q", data)
		}

		cleanup()
		if FileExists(path) {
			t.Error("cleanup left the file behind")
		}
	})

	t.Run("rejects bad extension", func(t *testing.T) {
		if _, _, err := WriteTempFile("x", ""); !errors.Is(err, ErrExtensionEmpty) {
			t.Errorf("error = %v, want ErrExtensionEmpty", err)
		}
		if _, _, err := WriteTempFile("x", "a/b"); !errors.Is(err, ErrExtensionPathTraversal) {
			t.Errorf("error = %v, want ErrExtensionPathTraversal", err)
		}
	})
}

func TestValidateExtension(t *testing.T) {
	tests := []struct {
		ext     string
		wantErr bool
	}{
		{"tex", false},
		{"yaml", false},
		{"", true},
		{"a/b", true},
		{`a\b`, true},
		{"a\x00b", true},
	}
	for _, tt := range tests {
		err := ValidateExtension(tt.ext)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateExtension(%q) error = %v, wantErr %v", tt.ext, err, tt.wantErr)
		}
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	if FileExists(path) {
		t.Error("missing file reported as existing")
	}
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if !FileExists(path) {
		t.Error("existing file not found")
	}
	if FileExists(dir) {
		t.Error("directory reported as a file")
	}
}

func TestIsFilePath(t *testing.T) {
	if !IsFilePath("a/b.yaml") || !IsFilePath(`a\b.yaml`) {
		t.Error("paths with separators not detected")
	}
	if IsFilePath("name") {
		t.Error("bare name treated as a path")
	}
}

func TestExtensionChecks(t *testing.T) {
	tests := []struct {
		path   string
		isTeX  bool
		isYAML bool
	}{
		{"resume.tex", true, false},
		{"resume.TEX", true, false},
		{"resume.yaml", false, true},
		{"resume.YML", false, true},
		{"resume.txt", false, false},
		{"resume", false, false},
	}
	for _, tt := range tests {
		if got := IsTeXFile(tt.path); got != tt.isTeX {
			t.Errorf("IsTeXFile(%q) = %v, want %v", tt.path, got, tt.isTeX)
		}
		if got := IsYAMLFile(tt.path); got != tt.isYAML {
			t.Errorf("IsYAMLFile(%q) = %v, want %v", tt.path, got, tt.isYAML)
		}
	}
}
