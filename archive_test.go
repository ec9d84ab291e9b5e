package pyext

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// writeFakeTool writes an executable shell script standing in for an
// external toolchain binary, and returns its path.
func writeFakeTool(t *testing.T, dir, name, script string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("fake toolchain scripts require a POSIX shell")
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatalf("Failed to write fake tool %s: %v", name, err)
	}
	return path
}

// testConfig lays out a minimal project tree (foreign sources, glue source,
// version file) in a temp dir and returns a config pointing at it.
func testConfig(t *testing.T) *BuildConfig {
	t.Helper()

	dir := t.TempDir()
	for _, sub := range []string{"c-bindings", "python"} {
		if err := os.Mkdir(filepath.Join(dir, sub), 0o755); err != nil {
			t.Fatalf("Failed to create %s: %v", sub, err)
		}
	}

	files := map[string]string{
		"vm.go":              "package jsonnet\n\nconst jsonnetVersion = \"v0.20.0\"\n",
		"python/_jsonnet.c":  "/* glue */\n",
		"c-bindings/main.go": "package main\n\nfunc main() {}\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	return &BuildConfig{
		ProjectDir:   dir,
		LibDir:       "c-bindings",
		ArchiveName:  "libgojsonnet.a",
		DestPath:     "build",
		VersionFile:  "vm.go",
		VersionDecl:  "const",
		VersionToken: "version",
		ModuleName:   "_gojsonnet",
		Sources:      []string{"python/_jsonnet.c"},
		IncludeDirs:  []string{"cpp-jsonnet/include"},
		Language:     LanguageCPP,
	}
}

func TestArchiveBuilderSuccess(t *testing.T) {
	config := testConfig(t)

	// The fake toolchain writes an empty archive at the -o path.
	tool := writeFakeTool(t, t.TempDir(), "go", `: > "$3"`)
	builder := &ArchiveBuilder{Tool: tool}

	artifact, result, err := builder.Build(context.Background(), config)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if artifact.Status != ArtifactSuccess {
		t.Errorf("Expected artifact status success, got %s", artifact.Status)
	}
	if !result.Success {
		t.Error("Expected result success")
	}
	if artifact.Path != config.ArchivePath() {
		t.Errorf("Expected artifact at %s, got %s", config.ArchivePath(), artifact.Path)
	}
	if _, err := os.Stat(artifact.Path); err != nil {
		t.Errorf("Expected archive on disk: %v", err)
	}
}

func TestArchiveBuilderNonzeroExit(t *testing.T) {
	config := testConfig(t)

	tool := writeFakeTool(t, t.TempDir(), "go",
		`echo "go: build constraints exclude all Go files" >&2`+"\nexit 1")
	builder := &ArchiveBuilder{Tool: tool}

	artifact, result, err := builder.Build(context.Background(), config)
	if !errors.Is(err, ErrArchiveBuildFailed) {
		t.Fatalf("Expected ErrArchiveBuildFailed, got %v", err)
	}

	if artifact.Status != ArtifactFailed {
		t.Errorf("Expected artifact status failed, got %s", artifact.Status)
	}
	if result.Success {
		t.Error("Expected result failure")
	}

	// The captured diagnostic must survive into the error message.
	if !strings.Contains(err.Error(), "build constraints exclude") {
		t.Errorf("Expected toolchain output in error, got: %v", err)
	}
}

func TestArchiveBuilderToolNotFound(t *testing.T) {
	config := testConfig(t)

	builder := &ArchiveBuilder{Tool: filepath.Join(t.TempDir(), "no-such-toolchain")}

	artifact, _, err := builder.Build(context.Background(), config)
	if !errors.Is(err, ErrArchiveBuildFailed) {
		t.Fatalf("Expected ErrArchiveBuildFailed for missing tool, got %v", err)
	}
	if artifact.Status != ArtifactFailed {
		t.Errorf("Expected artifact status failed, got %s", artifact.Status)
	}
}

func TestArchiveBuilderMissingArchiveAfterZeroExit(t *testing.T) {
	config := testConfig(t)

	// Exits zero without producing the archive.
	tool := writeFakeTool(t, t.TempDir(), "go", "exit 0")
	builder := &ArchiveBuilder{Tool: tool}

	artifact, _, err := builder.Build(context.Background(), config)
	if !errors.Is(err, ErrArchiveBuildFailed) {
		t.Fatalf("Expected ErrArchiveBuildFailed for missing archive, got %v", err)
	}
	if artifact.Status != ArtifactFailed {
		t.Errorf("Expected artifact status failed, got %s", artifact.Status)
	}
}

func TestArchiveBuilderDefaultTool(t *testing.T) {
	builder := &ArchiveBuilder{}
	if builder.tool() != "go" {
		t.Errorf("Expected default tool go, got %s", builder.tool())
	}

	reqs := builder.RequiredTools()
	if len(reqs) != 2 {
		t.Fatalf("Expected 2 tool requirements, got %d", len(reqs))
	}
	if reqs[0].Name != "go" {
		t.Errorf("Expected go requirement first, got %s", reqs[0].Name)
	}
}
