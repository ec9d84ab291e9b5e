package pyext

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ArchiveBuilder invokes the Go toolchain to compile the foreign source
// tree into a statically linked c-archive.
//
// The c-archive build mode produces an archive whose exported cgo symbols
// follow the C calling convention, so the host interpreter's glue code can
// link against it like any other static library.
//
// Build command:
//
//	go build -o libgojsonnet.a -buildmode=c-archive
//
// Exactly one external process is spawned per invocation and there are no
// retries: toolchain failures are environment-caused, so retrying without
// fixing the environment cannot help.
type ArchiveBuilder struct {
	// Tool is the toolchain binary, "go" when empty. Tests substitute a
	// fake executable here.
	Tool string

	// ExtraArgs are appended after the fixed build arguments.
	ExtraArgs []string
}

// RequiredTools returns the tools needed for the archive build.
func (b *ArchiveBuilder) RequiredTools() []ToolRequirement {
	return []ToolRequirement{
		{
			Name:    b.tool(),
			Purpose: "Go compiler and toolchain",
		},
		{
			Name:         "gcc",
			Alternatives: []string{"clang", "cc"},
			Purpose:      "C compiler (required for cgo)",
		},
	}
}

// CheckTools verifies that the toolchain is available before a build starts.
func (b *ArchiveBuilder) CheckTools() error {
	return CheckRequiredTools(b.RequiredTools())
}

// Build runs the toolchain in the configured lib directory and blocks until
// it exits.
//
// The returned Artifact is ArtifactSuccess only when the process exited
// zero and the archive exists at its expected path. Tool-not-found, nonzero
// exit and killed process all collapse into ErrArchiveBuildFailed; the
// captured output preserves the distinguishing diagnostic for the user.
func (b *ArchiveBuilder) Build(ctx context.Context, config *BuildConfig) (*Artifact, *BuildResult, error) {
	artifact := &Artifact{
		Path:   config.ArchivePath(),
		Status: ArtifactPending,
	}
	result := &BuildResult{Output: []string{}}

	args := []string{"build", "-o", config.ArchiveName, "-buildmode=c-archive"}
	args = append(args, b.ExtraArgs...)

	cmd := exec.CommandContext(ctx, b.tool(), args...)
	cmd.Dir = config.resolve(config.LibDir)
	cmd.Env = mergeEnv(config.Env, "CGO_ENABLED=1")

	if config.Verbose {
		result.Output = append(result.Output,
			fmt.Sprintf("Running: %s %s", b.tool(), strings.Join(args, " ")),
			fmt.Sprintf("Working directory: %s", cmd.Dir))
	}

	output, err := cmd.CombinedOutput()
	result.Output = append(result.Output, splitOutputLines(output)...)

	if err != nil {
		artifact.Status = ArtifactFailed
		result.Error = err
		return artifact, result, BuildError(ErrArchiveBuildFailed, result.Output, err)
	}

	// A zero exit with no archive on disk is still a failure; linking a
	// stale or missing archive would silently produce a broken module.
	if _, statErr := os.Stat(artifact.Path); statErr != nil {
		artifact.Status = ArtifactFailed
		result.Error = statErr
		return artifact, result, BuildError(ErrArchiveBuildFailed, result.Output,
			fmt.Errorf("toolchain exited 0 but archive is missing: %w", statErr))
	}

	artifact.Status = ArtifactSuccess
	result.Success = true
	result.Artifacts = []string{artifact.Path}
	return artifact, result, nil
}

func (b *ArchiveBuilder) tool() string {
	if b.Tool == "" {
		return "go"
	}
	return b.Tool
}
