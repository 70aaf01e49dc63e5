package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement is one external command a run cannot start without.
type Requirement struct {
	Name    string
	Command string
	Purpose string
}

// Status is the resolution outcome for one requirement.
type Status struct {
	Name      string
	Command   string
	Purpose   string
	Available bool
	Detail    string
}

// CheckBinaries resolves every requirement on PATH (or as a direct path)
// and reports one status per requirement, in input order.
func CheckBinaries(requirements []Requirement) []Status {
	statuses := make([]Status, len(requirements))
	for i, req := range requirements {
		statuses[i] = resolve(req)
	}
	return statuses
}

func resolve(req Requirement) Status {
	status := Status{
		Name:    req.Name,
		Command: strings.TrimSpace(req.Command),
		Purpose: strings.TrimSpace(req.Purpose),
	}
	switch {
	case status.Command == "":
		status.Detail = "command not configured"
	default:
		if _, err := exec.LookPath(status.Command); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", status.Command)
		} else {
			status.Available = true
		}
	}
	return status
}
