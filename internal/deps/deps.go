// Package deps verifies the external binaries trailgrab shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement names one external binary and the command used to invoke it.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status is the checked state of one Requirement. Command holds the
// resolved path when the binary is available.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries resolves every requirement against PATH.
func CheckBinaries(requirements []Requirement) []Status {
	statuses := make([]Status, len(requirements))
	for i, req := range requirements {
		statuses[i] = check(req)
	}
	return statuses
}

func check(req Requirement) Status {
	status := Status{
		Name:        req.Name,
		Command:     strings.TrimSpace(req.Command),
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	if status.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	resolved, err := exec.LookPath(status.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", status.Command)
		return status
	}
	status.Command = resolved
	status.Available = true
	return status
}
