// Package deps detects the external tools remuxd shells out to and
// reports their availability and versions.
package deps

import (
	"bufio"
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external dependency.
type Requirement struct {
	Name        string
	Command     string
	Description string
	// VersionArg is the flag that makes the tool print its version.
	VersionArg string
	Optional   bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	// Version is the first line of the tool's version output, when the
	// tool is available and reports one.
	Version string
	Detail  string
}

// Requirements returns the tool set for the given configured binaries.
func Requirements(mkvmerge, mkvpropedit, mediainfo string) []Requirement {
	return []Requirement{
		{
			Name:        "mkvmerge",
			Command:     mkvmerge,
			Description: "Remuxes containers and merges external tracks",
			VersionArg:  "-V",
		},
		{
			Name:        "mkvpropedit",
			Command:     mkvpropedit,
			Description: "Edits track properties in place (fast path)",
			VersionArg:  "-V",
		},
		{
			Name:        "mediainfo",
			Command:     mediainfo,
			Description: "Optional detailed media inspection",
			VersionArg:  "--Version",
			Optional:    true,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports
// availability, probing each available tool for its version.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Command = resolved
		status.Version = toolVersion(resolved, req.VersionArg)
		results = append(results, status)
	}
	return results
}

// toolVersion runs the tool with its version flag and returns the first
// output line. Failures degrade to an empty version; a tool that cannot
// report a version is still usable.
func toolVersion(binary, versionArg string) string {
	if versionArg == "" {
		return ""
	}
	output, err := exec.Command(binary, versionArg).Output() //nolint:gosec
	if err != nil {
		return ""
	}
	scanner := bufio.NewScanner(bytes.NewReader(output))
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text())
	}
	return ""
}
