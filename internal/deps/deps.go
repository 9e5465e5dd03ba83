// Package deps checks the external tools atlastag shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"atlastag/internal/config"
)

// Requirement defines an external dependency atlastag relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements derives the dependency list from configuration. The oracle
// CLI is the only hard requirement; everything else atlastag does is pure
// Go.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "oracle CLI",
			Command:     cfg.Oracle.Binary,
			Description: "vision model CLI used to describe and tag sprites",
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
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
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
