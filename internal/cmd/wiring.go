package cmd

import (
	"go.uber.org/zap"

	"github.com/presleydc/slurmboard/internal/config"
	"github.com/presleydc/slurmboard/pkg/joblog"
	"github.com/presleydc/slurmboard/pkg/lifecycle"
	"github.com/presleydc/slurmboard/pkg/script"
	"github.com/presleydc/slurmboard/pkg/slurm"
	"github.com/presleydc/slurmboard/pkg/spool"
)

// buildPoller assembles the lifecycle poller and its collaborators from
// configuration. Shared by serve and launch.
func buildPoller(cfg *config.Config, logger *zap.Logger) (*lifecycle.Poller, *spool.Spool) {
	sp := spool.New(cfg.Spool.Dir)

	client := slurm.NewClient(slurm.ExecRunner{}, slurm.Config{
		SbatchBin:  cfg.Slurm.SbatchBin,
		SqueueBin:  cfg.Slurm.SqueueBin,
		SacctBin:   cfg.Slurm.SacctBin,
		ScancelBin: cfg.Slurm.ScancelBin,
	})

	params := script.DefaultParams(sp.Dir())
	params.JobName = cfg.Job.Name
	params.TimeLimit = cfg.Job.TimeLimit
	params.SleepSeconds = cfg.Job.SleepSeconds

	poller := lifecycle.NewPoller(
		client,
		joblog.NewReader(sp),
		sp,
		lifecycle.NewTracker(),
		logger,
		lifecycle.Config{
			PollInterval: cfg.Slurm.PollInterval,
			ScriptParams: params,
		},
	)
	return poller, sp
}
