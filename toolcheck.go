package pyext

import (
	"fmt"
	"os/exec"
	"strings"
)

// ToolRequirement describes a build tool dependency.
//
// Alternatives handle platform differences: macOS ships clang rather than
// gcc, BSDs alias the system compiler to cc, and so on. If any tool in
// Alternatives is found the requirement is satisfied.
type ToolRequirement struct {
	// Name is the primary tool binary name (e.g. "go", "cc").
	Name string

	// Alternatives are alternative tool names that can satisfy this
	// requirement. Example: []string{"clang", "cc"}
	Alternatives []string

	// Optional indicates this tool won't cause an error if missing.
	Optional bool

	// Purpose is a human-readable description of why the tool is needed.
	// Example: "Go compiler and toolchain"
	Purpose string
}

// CheckToolAvailable checks if a tool is available in the system PATH.
//
// Returns nil if the tool is found, or an error naming the missing tool.
func CheckToolAvailable(tool string) error {
	if _, err := exec.LookPath(tool); err != nil {
		return fmt.Errorf("%s not found in PATH", tool)
	}
	return nil
}

// CheckRequiredTools verifies all required tools are available.
//
// The primary tool name is checked first, then each alternative in order.
// Optional tools never cause errors. All missing required tools are
// reported in a single error so the user can fix the environment in one
// pass.
func CheckRequiredTools(requirements []ToolRequirement) error {
	var missingTools []string

	for _, req := range requirements {
		found := CheckToolAvailable(req.Name) == nil

		if !found {
			for _, alt := range req.Alternatives {
				if CheckToolAvailable(alt) == nil {
					found = true
					break
				}
			}
		}

		if !found && !req.Optional {
			if req.Purpose != "" {
				missingTools = append(missingTools, fmt.Sprintf("%s (%s)", req.Name, req.Purpose))
			} else {
				missingTools = append(missingTools, req.Name)
			}
		}
	}

	if len(missingTools) == 0 {
		return nil
	}

	if len(missingTools) == 1 {
		return fmt.Errorf("%s not found in PATH", missingTools[0])
	}

	return fmt.Errorf("missing required tools: %s", strings.Join(missingTools, ", "))
}
