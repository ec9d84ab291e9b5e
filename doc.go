// Package pyext builds native Python extension modules backed by a Go
// c-archive.
//
// This package is the Go equivalent of the setup.py build customization
// used by go-jsonnet's Python bindings: it compiles a Go source tree into a
// statically linked archive, extracts the package version from a source
// file, and links the archive together with the C glue sources into a
// loadable extension module.
//
// # Basic Usage
//
// Load a manifest (or take the stock go-jsonnet defaults) and run the
// orchestrator:
//
//	config, err := pyext.LoadManifest("pyext.hcl")
//	if err != nil {
//	    return err
//	}
//
//	orch := pyext.NewOrchestrator(config)
//	if err := orch.Build(ctx); err != nil {
//	    return err
//	}
//
// # Architecture
//
// The build is an explicit ordered pipeline executed by the orchestrator:
//
//	Orchestrator
//	├── toolcheck  (go + C compiler available)
//	├── version    (ExtractVersion, first matching line wins)
//	├── archive    (ArchiveBuilder: go build -buildmode=c-archive)
//	└── compile    (CCompiler: link glue sources against the archive)
//
// The pipeline halts on the first failure, and the compile stage is gated
// strictly on a successful archive: a failed toolchain run can never link a
// stale or missing archive into the module.
//
// The test lifecycle hook is deliberately a no-op advisory. Running the
// extension's test suite requires a Python interpreter with the module
// importable, which is the job of an external runner (pytest), not of the
// build tool.
//
// # Requirements
//
// Requires Go 1.25 or later, a cgo-capable C toolchain, and for C++ glue
// sources a C++ compiler driver.
package pyext
