package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	pyext "github.com/contriboss/python-extension-go"
)

const usage = `Usage: pyext-build [flags] <command>

Commands:
  build   Compile the Go c-archive and link the Python extension module
  test    Print how to run the test suite (tests are not run here)

Flags:
  -C dir        Project directory (default ".")
  -manifest f   Build manifest path, relative to the project directory
                (default "pyext.hcl"; stock go-jsonnet layout when absent)
  -v            Verbose output
`

func main() {
	// Environment-file overrides for the toolchain (CC, GOFLAGS, ...).
	_ = godotenv.Load()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "pyext-build:", err)
		}
		os.Exit(1)
	}
}

// run encapsulates the command logic for easier testing and error handling.
func run(out io.Writer, args []string) error {
	fs := flag.NewFlagSet("pyext-build", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() { fmt.Fprint(out, usage) }

	projectDir := fs.String("C", ".", "project directory")
	manifest := fs.String("manifest", pyext.DefaultManifestName, "build manifest path")
	verbose := fs.Bool("v", false, "verbose output")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("expected exactly one command")
	}

	if *verbose {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	config, err := loadConfig(*projectDir, *manifest)
	if err != nil {
		return err
	}
	config.Verbose = *verbose

	orch := pyext.NewOrchestrator(config)
	orch.Out = out

	ctx := context.Background()
	switch command := fs.Arg(0); command {
	case "build":
		return orch.Build(ctx)
	case "test":
		return orch.Test(ctx)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// loadConfig reads the manifest when it exists and otherwise falls back to
// the stock go-jsonnet layout rooted at the project directory.
func loadConfig(projectDir, manifest string) (*pyext.BuildConfig, error) {
	path := manifest
	if !filepath.IsAbs(path) {
		path = filepath.Join(projectDir, manifest)
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			slog.Debug("no manifest found, using defaults", "path", path)
			return pyext.DefaultConfig(projectDir), nil
		}
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}

	return pyext.LoadManifest(path)
}
