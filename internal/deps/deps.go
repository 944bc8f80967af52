package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"legenda/internal/config"
)

// Requirement defines an external binary Legenda relies on.
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

// Requirements lists the external tools for the configured setup. The
// fallback speech engine is optional; the service degrades gracefully
// without it.
func Requirements(cfg *config.Config) []Requirement {
	reqs := []Requirement{
		{
			Name:        "Speech engine",
			Command:     cfg.Whisper.Binary,
			Description: "Primary speech-to-text binary",
		},
		{
			Name:        "Encoder",
			Command:     cfg.FFmpeg.Binary,
			Description: "Video captioning and muxing",
		},
	}
	if strings.TrimSpace(cfg.Whisper.FallbackBinary) != "" {
		reqs = append(reqs, Requirement{
			Name:        "Speech engine fallback",
			Command:     cfg.Whisper.FallbackBinary,
			Description: "Used when the primary engine cannot be spawned",
			Optional:    true,
		})
	}
	return reqs
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
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the names of unavailable non-optional dependencies.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status.Name)
		}
	}
	return missing
}
