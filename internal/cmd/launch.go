package cmd

import (
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/presleydc/slurmboard/internal/observability"
	"github.com/presleydc/slurmboard/pkg/lifecycle"
)

var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Submit the sleep job and poll it to completion in the terminal",
	Long: `Run one full job lifecycle without the web UI: render the script,
submit it, poll the live queue until the job leaves it, classify the
outcome from the accounting record, and print the captured output.

Example:
  slurmboard launch
  slurmboard launch --poll-interval 2s`,
	RunE: runLaunch,
}

var launchPollInterval time.Duration

func init() {
	rootCmd.AddCommand(launchCmd)
	launchCmd.Flags().DurationVar(&launchPollInterval, "poll-interval", 0, "Override slurm.poll_interval")
}

func runLaunch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig("console")
	if err != nil {
		return err
	}
	defer observability.Sync()

	if launchPollInterval > 0 {
		cfg.Slurm.PollInterval = launchPollInterval
	}

	poller, _ := buildPoller(cfg, observability.CLILogger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := poller.Run(ctx); err != nil {
		return err
	}

	snap := poller.Tracker().Snapshot()
	observability.CLILogger.Info(snap.StatusLine,
		zap.String("phase", string(snap.Record.Phase)),
		zap.String("job_id", snap.Record.JobID))
	if len(snap.Messages) > 0 {
		// The final message carries the log bundle.
		observability.CLILogger.Info(snap.Messages[len(snap.Messages)-1].Text)
	}
	if snap.Record.Phase == lifecycle.PhaseFailed {
		return errFailedRun
	}
	return nil
}

var errFailedRun = errors.New("job did not complete successfully")
