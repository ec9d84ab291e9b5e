package pyext

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Sentinel errors for the build stages. Every fatal outcome of a build maps
// to exactly one of these, so callers can classify failures with errors.Is
// while the formatted message carries the captured toolchain output.
var (
	// ErrVersionNotFound means no line of the version source file contained
	// both the declaration keyword and the version token.
	ErrVersionNotFound = errors.New("version declaration not found")

	// ErrArchiveBuildFailed means the foreign toolchain did not produce the
	// static archive (missing tool, nonzero exit, or killed process).
	ErrArchiveBuildFailed = errors.New("archive build failed")

	// ErrExtensionCompileFailed means the compile-and-link step for the
	// extension module failed.
	ErrExtensionCompileFailed = errors.New("extension compile failed")

	// ErrArchiveNotReady means the compile step was asked to link an archive
	// whose build has not succeeded.
	ErrArchiveNotReady = errors.New("archive not ready")

	// ErrTestsNotSupported is returned by the test lifecycle hook, which
	// never executes tests and must never read as success.
	ErrTestsNotSupported = errors.New("tests are not run by this command")
)

// StageError reports a failed build stage together with the captured
// toolchain output. It unwraps to both its Kind sentinel and the underlying
// cause, so errors.Is works against either.
type StageError struct {
	Kind   error    // One of the sentinel errors above
	Cause  error    // Underlying failure (exec error, I/O error), may be nil
	Output []string // Captured toolchain output, may be empty
}

// Error formats the failure with the build output appended for debugging.
func (e *StageError) Error() string {
	prefix := e.Kind.Error()
	if e.Cause != nil {
		prefix = fmt.Sprintf("%v: %v", e.Kind, e.Cause)
	}

	output := strings.TrimSpace(strings.Join(e.Output, "\n"))
	if output != "" {
		return fmt.Sprintf("%s\n\nBuild output:\n%s", prefix, output)
	}
	return prefix
}

// Unwrap exposes both the stage sentinel and the cause to errors.Is/As.
func (e *StageError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// BuildError creates a standardized stage failure carrying the toolchain
// output, keyed by one of the sentinel errors.
func BuildError(kind error, output []string, cause error) error {
	return &StageError{Kind: kind, Cause: cause, Output: output}
}

// splitOutputLines converts captured process output into trimmed lines,
// dropping a trailing newline so results don't end with an empty entry.
func splitOutputLines(output []byte) []string {
	trimmed := strings.TrimRight(string(output), "\n")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

// mergeEnv layers config-provided variables and fixed overrides on top of
// the current process environment, for handing to exec.Cmd.
func mergeEnv(env map[string]string, overrides ...string) []string {
	merged := os.Environ()
	for key, value := range env {
		merged = append(merged, key+"="+value)
	}
	return append(merged, overrides...)
}
