// Package spool manages the working directory shared with the Slurm
// controller: generated job scripts plus the stdout/stderr files Slurm
// writes for each job.
//
// Layout:
//
//	<dir>/slurm_script_<run_id>.sh
//	<dir>/<job_id>.out
//	<dir>/<job_id>.err
//
// The directory is shared storage; Slurm writes the log files, slurmboard
// only reads them after the job leaves the live queue.
package spool

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultSweepPatterns match everything slurmboard may leave behind in the
// spool dir when a cleanup pass is interrupted.
var DefaultSweepPatterns = []string{
	"slurm_script_*.sh",
	"*.out",
	"*.err",
}

// Spool resolves paths inside a single working directory.
type Spool struct {
	dir string
}

func New(dir string) *Spool {
	return &Spool{dir: strings.TrimSpace(dir)}
}

func (s *Spool) Dir() string {
	return s.dir
}

// Ensure creates the spool directory if it does not exist.
func (s *Spool) Ensure() error {
	if s.dir == "" {
		return fmt.Errorf("spool dir is empty")
	}
	return os.MkdirAll(s.dir, 0755)
}

// ScriptPath returns the job-script path for a run.
func (s *Spool) ScriptPath(runID string) string {
	return filepath.Join(s.dir, fmt.Sprintf("slurm_script_%s.sh", runID))
}

// StdoutPath returns the path Slurm writes job stdout to (--output=%j.out).
func (s *Spool) StdoutPath(jobID string) string {
	return filepath.Join(s.dir, jobID+".out")
}

// StderrPath returns the path Slurm writes job stderr to (--error=%j.err).
func (s *Spool) StderrPath(jobID string) string {
	return filepath.Join(s.dir, jobID+".err")
}

// Remove deletes a spool file, tolerating absence.
func (s *Spool) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// SweepResult reports what a Sweep pass did (or would do with dryRun).
type SweepResult struct {
	Deleted     int      `json:"deleted"`
	WouldDelete int      `json:"would_delete"`
	DryRun      bool     `json:"dry_run"`
	Paths       []string `json:"paths,omitempty"`
}

// Sweep removes spool files older than maxAge whose base name matches one of
// the patterns. Files belonging to an active run are protected by age alone;
// callers should use a maxAge comfortably above the job wall-clock limit.
func (s *Spool) Sweep(maxAge time.Duration, patterns []string, dryRun bool) (SweepResult, error) {
	res := SweepResult{DryRun: dryRun}
	if maxAge <= 0 {
		return res, fmt.Errorf("max age must be > 0")
	}
	if len(patterns) == 0 {
		patterns = DefaultSweepPatterns
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return res, nil
		}
		return res, fmt.Errorf("read spool dir: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		matched := false
		for _, p := range patterns {
			ok, err := doublestar.Match(p, name)
			if err != nil {
				return res, fmt.Errorf("invalid pattern %q: %w", p, err)
			}
			if ok {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(s.dir, name)
		res.Paths = append(res.Paths, path)
		if dryRun {
			res.WouldDelete++
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return res, fmt.Errorf("remove %s: %w", path, err)
		}
		res.Deleted++
	}

	return res, nil
}
