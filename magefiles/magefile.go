//go:build mage

package main

import (
	"context"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"

	pyext "github.com/contriboss/python-extension-go"
)

// Build compiles the Go c-archive and links the Python extension module.
func Build(ctx context.Context) error {
	mg.CtxDeps(ctx, Toolcheck)

	config, err := loadConfig()
	if err != nil {
		return err
	}
	config.Verbose = mg.Verbose()

	return pyext.NewOrchestrator(config).Build(ctx)
}

// Test does not run the Python test suite; it prints how to.
func Test(ctx context.Context) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}

	return pyext.NewOrchestrator(config).Test(ctx)
}

// Toolcheck verifies the go and C toolchains are available.
func Toolcheck() error {
	return pyext.CheckRequiredTools([]ToolRequirement{
		{Name: "go", Purpose: "Go compiler and toolchain"},
		{Name: "cc", Alternatives: []string{"gcc", "clang"}, Purpose: "C compiler and linker"},
	})
}

// Clean removes the built archive and extension module.
func Clean() error {
	config, err := loadConfig()
	if err != nil {
		return err
	}

	if err := sh.Rm(config.ArchivePath()); err != nil {
		return err
	}
	return sh.Rm(config.ModulePath())
}

// ToolRequirement aliases the library type so target bodies stay short.
type ToolRequirement = pyext.ToolRequirement

func loadConfig() (*pyext.BuildConfig, error) {
	if _, err := os.Stat(pyext.DefaultManifestName); err == nil {
		return pyext.LoadManifest(pyext.DefaultManifestName)
	}
	return pyext.DefaultConfig("."), nil
}
