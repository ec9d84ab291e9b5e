package pyext

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Compiler is the compile-and-link step that turns an ExtensionTarget and a
// built archive into a loadable extension module.
//
// The orchestrator calls Compile exactly once per build, and only after the
// artifact has reached ArtifactSuccess. Implementations must refuse any
// other artifact state with ErrArchiveNotReady.
type Compiler interface {
	Compile(ctx context.Context, config *BuildConfig, target *ExtensionTarget, artifact *Artifact) (*BuildResult, error)
}

// CCompiler compiles the glue sources and links the static archives into a
// shared object using the system compiler driver.
//
// Link command:
//
//	cc -shared -fPIC -I<include>... <sources>... <archives>... -o <module>.so
//
// The C++ driver is used when the target's language hint is C++, matching
// how glue code that includes C++ headers must be linked.
type CCompiler struct {
	// Tool overrides the compiler driver. Empty selects cc or c++ from the
	// target's language hint.
	Tool string
}

// Compile builds the extension module at config.ModulePath().
func (c *CCompiler) Compile(ctx context.Context, config *BuildConfig, target *ExtensionTarget, artifact *Artifact) (*BuildResult, error) {
	if artifact == nil || artifact.Status != ArtifactSuccess {
		return nil, fmt.Errorf("%w: %s", ErrArchiveNotReady, describeArtifact(artifact))
	}
	if _, err := os.Stat(artifact.Path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveNotReady, err)
	}

	result := &BuildResult{Output: []string{}}
	modulePath := config.ModulePath()

	if err := os.MkdirAll(filepath.Dir(modulePath), 0o755); err != nil {
		result.Error = err
		return result, BuildError(ErrExtensionCompileFailed, result.Output, err)
	}

	args := []string{"-shared", "-fPIC"}
	for _, dir := range target.IncludeDirs {
		args = append(args, "-I"+dir)
	}
	args = append(args, target.Sources...)
	args = append(args, target.Archives...)
	args = append(args, "-o", modulePath)

	tool := c.toolFor(target.Language)
	cmd := exec.CommandContext(ctx, tool, args...)
	cmd.Dir = config.ProjectDir
	cmd.Env = mergeEnv(config.Env)

	if config.Verbose {
		result.Output = append(result.Output,
			fmt.Sprintf("Running: %s %s", tool, strings.Join(args, " ")),
			fmt.Sprintf("Working directory: %s", cmd.Dir))
	}

	output, err := cmd.CombinedOutput()
	result.Output = append(result.Output, splitOutputLines(output)...)

	if err != nil {
		result.Error = err
		return result, BuildError(ErrExtensionCompileFailed, result.Output, err)
	}

	result.Success = true
	result.Artifacts = []string{modulePath}
	return result, nil
}

func (c *CCompiler) toolFor(lang Language) string {
	if c.Tool != "" {
		return c.Tool
	}
	if lang == LanguageCPP {
		return "c++"
	}
	return "cc"
}

func describeArtifact(artifact *Artifact) string {
	if artifact == nil {
		return "no archive was built"
	}
	return fmt.Sprintf("%s is %s", artifact.Path, artifact.Status)
}
