package pyext

import (
	"fmt"
	"path/filepath"
)

// Language identifies the language of the extension's glue sources,
// which selects the compiler driver used for the link step.
type Language int

const (
	// LanguageC compiles and links the glue sources with the C driver (cc).
	LanguageC Language = iota
	// LanguageCPP compiles and links with the C++ driver (c++).
	LanguageCPP
)

// String returns the manifest spelling of the language.
func (l Language) String() string {
	switch l {
	case LanguageC:
		return "c"
	case LanguageCPP:
		return "c++"
	default:
		return fmt.Sprintf("Language(%d)", int(l))
	}
}

// ParseLanguage converts a manifest language value to a Language.
func ParseLanguage(s string) (Language, error) {
	switch s {
	case "c":
		return LanguageC, nil
	case "c++", "cpp":
		return LanguageCPP, nil
	default:
		return LanguageC, fmt.Errorf("unknown extension language %q (want \"c\" or \"c++\")", s)
	}
}

// ExtensionTarget describes the extension module handed to the compile step:
// its loadable name, glue sources, include path, and the archives linked in.
//
// A target is assembled once per build invocation from the BuildConfig and
// is not modified afterwards.
type ExtensionTarget struct {
	ModuleName  string   // Loadable module name (e.g. "_gojsonnet")
	Sources     []string // Glue source files, in link order
	IncludeDirs []string // Header search directories
	Archives    []string // Static archives linked into the module, in order
	Language    Language // Compiler driver selection
}

// ArtifactStatus tracks the lifecycle of a toolchain-produced archive.
type ArtifactStatus int

const (
	// ArtifactPending means the toolchain has not produced the archive yet.
	ArtifactPending ArtifactStatus = iota
	// ArtifactSuccess means the archive exists at its expected path.
	ArtifactSuccess
	// ArtifactFailed means the toolchain exited unsuccessfully.
	ArtifactFailed
)

// String returns a human-readable status name.
func (s ArtifactStatus) String() string {
	switch s {
	case ArtifactPending:
		return "pending"
	case ArtifactSuccess:
		return "success"
	case ArtifactFailed:
		return "failed"
	default:
		return fmt.Sprintf("ArtifactStatus(%d)", int(s))
	}
}

// Artifact is the static archive produced by the foreign toolchain.
//
// The compile step must never consume an artifact whose status is not
// ArtifactSuccess; CCompiler enforces this with ErrArchiveNotReady.
type Artifact struct {
	Path   string // Absolute path to the archive
	Status ArtifactStatus
}

// BuildConfig contains configuration for one extension build.
//
// All relative paths are resolved against ProjectDir, so tests can point an
// entire build at a temporary directory. DefaultConfig and LoadManifest fill
// absent fields with the defaults of the stock go-jsonnet layout; code
// constructing a BuildConfig by hand must populate every field it needs.
type BuildConfig struct {
	// Source paths
	ProjectDir  string // Root of the project being packaged
	LibDir      string // Directory holding the foreign-language source tree
	ArchiveName string // Archive filename emitted into LibDir
	DestPath    string // Destination directory for the built module

	// Version extraction
	VersionFile  string // File scanned for the version declaration
	VersionDecl  string // Declaration keyword a matching line must contain
	VersionToken string // Name fragment a matching line must contain

	// Extension target
	ModuleName  string   // Loadable module name
	Sources     []string // Glue sources, relative to ProjectDir
	IncludeDirs []string // Include directories, relative to ProjectDir
	Language    Language // Glue source language

	// Build environment
	Env     map[string]string // Extra environment for toolchain processes
	Verbose bool              // Record command lines in build output
}

// ArchivePath returns the absolute path the toolchain writes the archive to.
func (c *BuildConfig) ArchivePath() string {
	return c.resolve(filepath.Join(c.LibDir, c.ArchiveName))
}

// ModulePath returns the absolute path of the built extension module.
func (c *BuildConfig) ModulePath() string {
	return c.resolve(filepath.Join(c.DestPath, c.ModuleName+".so"))
}

// VersionFilePath returns the absolute path of the version source file.
func (c *BuildConfig) VersionFilePath() string {
	return c.resolve(c.VersionFile)
}

// Validate reports the first problem that would make the build impossible.
func (c *BuildConfig) Validate() error {
	switch {
	case c.ModuleName == "":
		return fmt.Errorf("build config: module name must not be empty")
	case len(c.Sources) == 0:
		return fmt.Errorf("build config: at least one glue source is required")
	case c.ArchiveName == "":
		return fmt.Errorf("build config: archive name must not be empty")
	case c.LibDir == "":
		return fmt.Errorf("build config: lib dir must not be empty")
	}
	return nil
}

func (c *BuildConfig) resolve(path string) string {
	if filepath.IsAbs(path) || c.ProjectDir == "" {
		return path
	}
	return filepath.Join(c.ProjectDir, path)
}

// Target assembles the immutable extension target for this configuration.
//
// Sources and include directories stay relative (the compile step runs with
// ProjectDir as its working directory); the linked archive is absolute so
// the target stays valid regardless of where it is consumed.
func (c *BuildConfig) Target() *ExtensionTarget {
	return &ExtensionTarget{
		ModuleName:  c.ModuleName,
		Sources:     append([]string(nil), c.Sources...),
		IncludeDirs: append([]string(nil), c.IncludeDirs...),
		Archives:    []string{c.ArchivePath()},
		Language:    c.Language,
	}
}

// BuildResult contains the output and status of one toolchain invocation.
type BuildResult struct {
	Success   bool     // True if the invocation completed successfully
	Output    []string // Lines of combined stdout/stderr from the process
	Artifacts []string // Paths produced by the invocation
	Error     error    // Error if the invocation failed, nil otherwise
}
