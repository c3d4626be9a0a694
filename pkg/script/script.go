// Package script renders the batch job script submitted to Slurm.
//
// The script body is fixed by design: it reports the execution host and a
// timestamp, sleeps, and reports again. Slurm directives route stdout and
// stderr to per-job files in the spool dir via the %j filename pattern.
package script

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
	"time"
)

const batchTemplate = `#!/bin/bash
#SBATCH --job-name={{.JobName}}
#SBATCH --output={{.OutputPattern}}
#SBATCH --error={{.ErrorPattern}}
#SBATCH --ntasks=1
#SBATCH --time={{.TimeLimit}}

echo "host: $(hostname)"
date +%s
sleep {{.SleepSeconds}}
echo "host: $(hostname)"
date +%s
`

var tmpl = template.Must(template.New("batch").Parse(batchTemplate))

// Params are the values substituted into the Slurm directives. The shell
// body does not vary per call.
type Params struct {
	JobName       string
	OutputPattern string
	ErrorPattern  string
	TimeLimit     string
	SleepSeconds  int
}

// DefaultParams returns the directives for the fixed sleepy job, with log
// files keyed by job id under spoolDir.
func DefaultParams(spoolDir string) Params {
	return Params{
		JobName:       "sleepy",
		OutputPattern: filepath.Join(spoolDir, "%j.out"),
		ErrorPattern:  filepath.Join(spoolDir, "%j.err"),
		TimeLimit:     "00:01:00",
		SleepSeconds:  30,
	}
}

// Render returns the job script text for the given params.
func Render(p Params) (string, error) {
	if p.SleepSeconds <= 0 {
		p.SleepSeconds = 30
	}
	if p.TimeLimit == "" {
		p.TimeLimit = "00:01:00"
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, p); err != nil {
		return "", fmt.Errorf("render job script: %w", err)
	}
	return buf.String(), nil
}

// Write renders the script and writes it executable to path. Any write or
// permission error surfaces to the caller unrecovered.
func Write(path string, p Params) error {
	content, err := Render(p)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0755); err != nil {
		return fmt.Errorf("write job script: %w", err)
	}
	return nil
}

// WallClock converts a duration to Slurm's HH:MM:SS time-limit form.
func WallClock(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
