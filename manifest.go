package pyext

import (
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Defaults reproduce the stock go-jsonnet project layout, so a manifest
// only needs to name the extension when wrapping an unmodified checkout.
const (
	DefaultManifestName = "pyext.hcl"

	defaultLibDir       = "c-bindings"
	defaultArchiveName  = "libgojsonnet.a"
	defaultDestPath     = "build"
	defaultVersionFile  = "vm.go"
	defaultVersionDecl  = "const"
	defaultVersionToken = "version"
)

var (
	defaultSources     = []string{"python/_jsonnet.c"}
	defaultIncludeDirs = []string{"cpp-jsonnet/include"}
)

// Manifest mirrors the top-level structure of a pyext.hcl build manifest:
//
//	extension "_gojsonnet" {
//	  lib_dir      = "c-bindings"
//	  archive      = "libgojsonnet.a"
//	  sources      = ["python/_jsonnet.c"]
//	  include_dirs = ["cpp-jsonnet/include"]
//	  dest_path    = "build"
//	  language     = "c++"
//
//	  version {
//	    file        = "vm.go"
//	    declaration = "const"
//	    token       = "version"
//	  }
//	}
//
// Every attribute is optional; absent attributes fall back to the defaults
// above. The manifest exists so the orchestrator's paths are explicit
// configuration rather than globals baked into the build tool.
type Manifest struct {
	Extension *ExtensionManifest `hcl:"extension,block"`
}

// ExtensionManifest is the single extension block of a manifest.
type ExtensionManifest struct {
	Name        string           `hcl:"name,label"`
	LibDir      string           `hcl:"lib_dir,optional"`
	Archive     string           `hcl:"archive,optional"`
	Sources     []string         `hcl:"sources,optional"`
	IncludeDirs []string         `hcl:"include_dirs,optional"`
	DestPath    string           `hcl:"dest_path,optional"`
	Language    string           `hcl:"language,optional"`
	Version     *VersionManifest `hcl:"version,block"`
}

// VersionManifest configures the version-extraction scan.
type VersionManifest struct {
	File        string `hcl:"file,optional"`
	Declaration string `hcl:"declaration,optional"`
	Token       string `hcl:"token,optional"`
}

// LoadManifest parses an HCL build manifest and returns the resulting
// configuration. The project directory is the manifest's directory.
func LoadManifest(path string) (*BuildConfig, error) {
	parser := hclparse.NewParser()

	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse manifest %s: %w", path, diags)
	}

	var manifest Manifest
	diags = gohcl.DecodeBody(file.Body, nil, &manifest)
	if diags.HasErrors() {
		return nil, fmt.Errorf("decode manifest %s: %w", path, diags)
	}

	if manifest.Extension == nil {
		return nil, fmt.Errorf("manifest %s: missing extension block", path)
	}

	projectDir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}

	return manifest.Extension.buildConfig(projectDir)
}

// DefaultConfig returns the configuration for an unmodified go-jsonnet
// checkout rooted at projectDir, named after the stock Python module.
func DefaultConfig(projectDir string) *BuildConfig {
	config, _ := (&ExtensionManifest{Name: "_gojsonnet"}).buildConfig(projectDir)
	return config
}

func (e *ExtensionManifest) buildConfig(projectDir string) (*BuildConfig, error) {
	if e.Name == "" {
		return nil, fmt.Errorf("manifest: extension block needs a name label")
	}

	config := &BuildConfig{
		ProjectDir:   projectDir,
		LibDir:       fallback(e.LibDir, defaultLibDir),
		ArchiveName:  fallback(e.Archive, defaultArchiveName),
		DestPath:     fallback(e.DestPath, defaultDestPath),
		VersionFile:  defaultVersionFile,
		VersionDecl:  defaultVersionDecl,
		VersionToken: defaultVersionToken,
		ModuleName:   e.Name,
		Sources:      e.Sources,
		IncludeDirs:  e.IncludeDirs,
		Language:     LanguageCPP,
	}

	if len(config.Sources) == 0 {
		config.Sources = append([]string(nil), defaultSources...)
	}
	if len(config.IncludeDirs) == 0 {
		config.IncludeDirs = append([]string(nil), defaultIncludeDirs...)
	}

	if e.Language != "" {
		lang, err := ParseLanguage(e.Language)
		if err != nil {
			return nil, fmt.Errorf("manifest: %w", err)
		}
		config.Language = lang
	}

	if v := e.Version; v != nil {
		config.VersionFile = fallback(v.File, defaultVersionFile)
		config.VersionDecl = fallback(v.Declaration, defaultVersionDecl)
		config.VersionToken = fallback(v.Token, defaultVersionToken)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func fallback(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
