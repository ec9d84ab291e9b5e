package pyext

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeVersionFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "vm.go")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write version file: %v", err)
	}
	return path
}

func TestExtractVersion(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "tagged version",
			content: "package jsonnet\n\nconst version = \"v0.20.0\"\n",
			want:    "0.20.0",
		},
		{
			name:    "camel case constant",
			content: "const jsonnetVersion = \"v0.20.0\"\n",
			want:    "0.20.0",
		},
		{
			name:    "no tag prefix",
			content: "const someVersion = \"1.2.3\"\n",
			want:    "1.2.3",
		},
		{
			name:    "single tag character stripped",
			content: "const someVersion = \"v1.2.3\"\n",
			want:    "1.2.3",
		},
		{
			name:    "unquoted value",
			content: "const toolVersion = v2.0.1\n",
			want:    "2.0.1",
		},
		{
			name:    "surrounding code ignored",
			content: "package jsonnet\n\nimport \"fmt\"\n\n// VM is the core.\nconst version = \"v0.21.0-rc1\"\n",
			want:    "0.21.0-rc1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeVersionFile(t, tt.content)

			got, err := ExtractVersion(path, "const", "version")
			if err != nil {
				t.Fatalf("ExtractVersion failed: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("Expected version %q, got %q", tt.want, got.String())
			}
		})
	}
}

func TestExtractVersionFirstMatchWins(t *testing.T) {
	// The second line has a "newer" value; the first in file order must win.
	path := writeVersionFile(t,
		"const version = \"v0.20.0\"\nconst otherVersion = \"v9.9.9\"\n")

	got, err := ExtractVersion(path, "const", "version")
	if err != nil {
		t.Fatalf("ExtractVersion failed: %v", err)
	}
	if got.String() != "0.20.0" {
		t.Errorf("Expected first match 0.20.0, got %q", got.String())
	}
}

func TestExtractVersionNotFound(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty file", ""},
		{"no version token", "const answer = 42\n"},
		{"no declaration token", "version := \"v1.0.0\"\n"},
		{"tokens on separate lines", "const answer = 42\n// version comes from elsewhere\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeVersionFile(t, tt.content)

			_, err := ExtractVersion(path, "const", "version")
			if !errors.Is(err, ErrVersionNotFound) {
				t.Errorf("Expected ErrVersionNotFound, got %v", err)
			}
		})
	}
}

func TestExtractVersionMissingFile(t *testing.T) {
	_, err := ExtractVersion(filepath.Join(t.TempDir(), "missing.go"), "const", "version")
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
	if errors.Is(err, ErrVersionNotFound) {
		t.Error("A missing file should not read as a missing declaration")
	}
}

func TestVersionNumericParts(t *testing.T) {
	path := writeVersionFile(t, "const jsonnetVersion = \"v0.20.0\"\n")

	got, err := ExtractVersion(path, "const", "version")
	if err != nil {
		t.Fatalf("ExtractVersion failed: %v", err)
	}

	if got.Major != 0 || got.Minor != 20 || got.Patch != 0 {
		t.Errorf("Expected 0.20.0 components, got %d.%d.%d", got.Major, got.Minor, got.Patch)
	}
}
