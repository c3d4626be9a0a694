// Package joblog collects the stdout/stderr files Slurm writes for a
// finished job into a single display bundle.
//
// Collection never fails outward: a missing or unreadable file becomes
// placeholder text inside the bundle so the dashboard always has both
// sections to show.
package joblog

import (
	"fmt"
	"os"
	"strings"
)

// Paths resolves the two well-known log paths for a job id.
type Paths interface {
	StdoutPath(jobID string) string
	StderrPath(jobID string) string
}

// Reader formats log bundles for terminal jobs.
type Reader struct {
	paths Paths
}

func NewReader(paths Paths) *Reader {
	return &Reader{paths: paths}
}

// Collect reads both streams for jobID and returns a single bundle string.
// Each section is preceded by a banner naming the job id and stream.
// Reading the same job twice with unchanged files yields identical output.
func (r *Reader) Collect(jobID string) string {
	var b strings.Builder
	writeSection(&b, jobID, "stdout", r.paths.StdoutPath(jobID))
	b.WriteString("\n")
	writeSection(&b, jobID, "stderr", r.paths.StderrPath(jobID))
	return b.String()
}

func writeSection(b *strings.Builder, jobID, stream, path string) {
	fmt.Fprintf(b, "===== job %s %s =====\n", jobID, stream)
	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		trimmed := strings.TrimSpace(string(content))
		if trimmed == "" {
			b.WriteString("(empty)\n")
			return
		}
		b.WriteString(trimmed)
		b.WriteString("\n")
	case os.IsNotExist(err):
		fmt.Fprintf(b, "(no %s file found at %s)\n", stream, path)
	default:
		fmt.Fprintf(b, "(failed to read %s: %v)\n", stream, err)
	}
}
