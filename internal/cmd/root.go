// Package cmd defines the slurmboard command tree.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/presleydc/slurmboard/internal/config"
	"github.com/presleydc/slurmboard/internal/observability"
)

var versionInfo = struct {
	Version   string
	Commit    string
	BuildDate string
}{
	Version:   "dev",
	Commit:    "HEAD",
	BuildDate: "unknown",
}

// SetVersionInfo injects build metadata from main's ldflags.
func SetVersionInfo(version, commit, buildDate string) {
	if version != "" {
		versionInfo.Version = version
	}
	if commit != "" {
		versionInfo.Commit = commit
	}
	if buildDate != "" {
		versionInfo.BuildDate = buildDate
	}
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)",
		versionInfo.Version, versionInfo.Commit, versionInfo.BuildDate)
}

var (
	cfgPath      string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "slurmboard",
	Short: "Web dashboard for a fixed Slurm sleep job",
	Long: `slurmboard submits a fixed "sleepy" batch job to Slurm, polls its
lifecycle through squeue and sacct, and shows status and captured output
on a small web dashboard or in the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to config file (default: slurmboard.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Override logging.level (debug, info, warn, error)")
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig loads the effective configuration and initializes logging with
// the requested profile ("console" for one-shot commands).
func loadConfig(profile string) (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	level := cfg.Logging.Level
	if logLevelFlag != "" {
		level = logLevelFlag
	}
	if profile == "" {
		profile = cfg.Logging.Profile
	}
	if err := observability.Init(level, profile); err != nil {
		return nil, err
	}
	return cfg, nil
}
