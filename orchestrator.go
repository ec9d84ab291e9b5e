package pyext

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// BuildState is the orchestrator's position in the build lifecycle.
type BuildState int

const (
	StateNotStarted BuildState = iota
	StateArchiveBuilding
	StateArchiveReady
	StateArchiveFailed
	StateExtensionCompiling
	StateDone
	StateAborted
)

// String returns a human-readable state name.
func (s BuildState) String() string {
	switch s {
	case StateNotStarted:
		return "not started"
	case StateArchiveBuilding:
		return "archive building"
	case StateArchiveReady:
		return "archive ready"
	case StateArchiveFailed:
		return "archive failed"
	case StateExtensionCompiling:
		return "extension compiling"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("BuildState(%d)", int(s))
	}
}

// stage is one step of the build pipeline. Stages run in order and the
// first failure halts the build.
type stage struct {
	name string
	run  func(ctx context.Context) error
}

// Orchestrator sequences the extension build: extract the package version,
// compile the foreign source tree into a static archive, then compile and
// link the extension module against it.
//
// The pipeline is an explicit ordered stage list executed by a driver that
// halts and reports on first failure. The archive stage is strictly gated
// before the compile stage: the compile step never runs unless the archive
// build succeeded, so a failed or interrupted toolchain run can never link
// a stale archive into the module.
//
// The two lifecycle hooks exposed to the packaging entry point are Build
// and Test. Test deliberately runs nothing (see Test).
//
// An Orchestrator is single-use and single-threaded: one blocking external
// process at a time, no concurrent access to the build artifact, and a
// second Build call on the same instance is an error.
type Orchestrator struct {
	// Archive builds the static archive; a zero ArchiveBuilder (go
	// toolchain, no extra args) when nil.
	Archive *ArchiveBuilder

	// Compiler performs the compile-and-link step; a zero CCompiler when
	// nil. Tests inject recording fakes here.
	Compiler Compiler

	// Logger receives stage progress; slog.Default() when nil.
	Logger *slog.Logger

	// Out receives user-facing messages such as the test advisory;
	// os.Stdout when nil.
	Out io.Writer

	config   *BuildConfig
	state    BuildState
	version  Version
	target   *ExtensionTarget
	artifact *Artifact
}

// NewOrchestrator creates an orchestrator for one build of the given
// configuration.
func NewOrchestrator(config *BuildConfig) *Orchestrator {
	return &Orchestrator{
		config: config,
		state:  StateNotStarted,
	}
}

// State returns the orchestrator's current lifecycle state.
func (o *Orchestrator) State() BuildState {
	return o.state
}

// Version returns the package version extracted during Build. It is the
// zero Version until the version stage has run.
func (o *Orchestrator) Version() Version {
	return o.version
}

// Artifact returns the archive artifact, nil until the archive stage has
// started.
func (o *Orchestrator) Artifact() *Artifact {
	return o.artifact
}

// Build runs the full pipeline and blocks until it finishes.
//
// Stage order: tool check, version extraction, archive build, extension
// compile. Every failure aborts the build and surfaces to the caller with
// the failing stage identified; nothing is caught and suppressed, and there
// is no partial-success state.
func (o *Orchestrator) Build(ctx context.Context) error {
	if o.state != StateNotStarted {
		return fmt.Errorf("build already ran (state: %s)", o.state)
	}
	if err := o.config.Validate(); err != nil {
		o.state = StateAborted
		return err
	}

	stages := []stage{
		{name: "toolcheck", run: o.checkTools},
		{name: "version", run: o.extractVersion},
		{name: "archive", run: o.buildArchive},
		{name: "compile", run: o.compileExtension},
	}

	for _, s := range stages {
		o.logger().Debug("running build stage", "stage", s.name)
		if err := s.run(ctx); err != nil {
			if o.state != StateArchiveFailed {
				o.state = StateAborted
			}
			o.logger().Error("build stage failed", "stage", s.name, "error", err)
			return err
		}
	}

	o.state = StateDone
	o.logger().Info("extension build finished",
		"module", o.config.ModuleName,
		"version", o.version.String(),
		"path", o.config.ModulePath())
	return nil
}

// Test is the overridden test lifecycle hook. It never executes any tests
// and never reports success: it emits an advisory pointing at the dedicated
// external test runner and returns ErrTestsNotSupported, so neither an
// interactive user nor a script can mistake it for a green test run.
func (o *Orchestrator) Test(context.Context) error {
	fmt.Fprintf(o.out(),
		"%s does not support running tests through the build tool. Please run 'pytest' instead.\n",
		o.config.ModuleName)
	return ErrTestsNotSupported
}

func (o *Orchestrator) checkTools(context.Context) error {
	return CheckRequiredTools(o.toolRequirements())
}

// toolRequirements covers the archive toolchain plus, when the default C
// compiler performs the link step, a compiler driver. An injected Compiler
// brings its own tools and is not checked here.
func (o *Orchestrator) toolRequirements() []ToolRequirement {
	reqs := []ToolRequirement{
		{
			Name:    o.archiveBuilder().tool(),
			Purpose: "Go compiler and toolchain",
		},
	}

	if cc, ok := o.extensionCompiler().(*CCompiler); ok {
		req := ToolRequirement{
			Name:    cc.toolFor(o.config.Language),
			Purpose: "C compiler and linker",
		}
		if o.config.Language == LanguageCPP {
			req.Alternatives = []string{"g++", "clang++"}
		} else {
			req.Alternatives = []string{"gcc", "clang"}
		}
		reqs = append(reqs, req)
	}

	return reqs
}

func (o *Orchestrator) extractVersion(context.Context) error {
	version, err := ExtractVersion(o.config.VersionFilePath(), o.config.VersionDecl, o.config.VersionToken)
	if err != nil {
		return err
	}

	o.version = version
	o.target = o.config.Target()
	o.logger().Info("extracted package version", "version", version.String())
	return nil
}

func (o *Orchestrator) buildArchive(ctx context.Context) error {
	o.state = StateArchiveBuilding

	artifact, result, err := o.archiveBuilder().Build(ctx, o.config)
	o.artifact = artifact
	o.logBuildOutput(result)

	if err != nil {
		o.state = StateArchiveFailed
		return err
	}

	o.state = StateArchiveReady
	o.logger().Info("archive built", "path", artifact.Path)
	return nil
}

func (o *Orchestrator) compileExtension(ctx context.Context) error {
	o.state = StateExtensionCompiling

	result, err := o.extensionCompiler().Compile(ctx, o.config, o.target, o.artifact)
	o.logBuildOutput(result)
	return err
}

func (o *Orchestrator) logBuildOutput(result *BuildResult) {
	if result == nil || !o.config.Verbose {
		return
	}
	for _, line := range result.Output {
		o.logger().Debug("toolchain", "line", line)
	}
}

func (o *Orchestrator) archiveBuilder() *ArchiveBuilder {
	if o.Archive == nil {
		o.Archive = &ArchiveBuilder{}
	}
	return o.Archive
}

func (o *Orchestrator) extensionCompiler() Compiler {
	if o.Compiler == nil {
		o.Compiler = &CCompiler{}
	}
	return o.Compiler
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

func (o *Orchestrator) out() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}
