package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/presleydc/slurmboard/internal/observability"
	"github.com/presleydc/slurmboard/internal/server"
	"github.com/presleydc/slurmboard/internal/server/handlers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard web server",
	Long: `Run the slurmboard web server.

The dashboard exposes one launch trigger, a compact status line, and a
verbose narrative area fed by the lifecycle poller. Health endpoints live
at /health and the job API under /api/job.`,
	RunE: runServe,
}

var (
	serveHost string
	servePort int
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Override server.host")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Override server.port")
}

// spoolHealthChecker verifies the spool directory is writable.
type spoolHealthChecker struct {
	ensure func() error
}

func (c spoolHealthChecker) CheckHealth(_ context.Context) error {
	return c.ensure()
}

// slurmHealthChecker verifies the submit binary is on PATH. It does not
// contact the scheduler.
type slurmHealthChecker struct {
	sbatchBin string
}

func (c slurmHealthChecker) CheckHealth(_ context.Context) error {
	if _, err := exec.LookPath(c.sbatchBin); err != nil {
		return fmt.Errorf("sbatch not found: %w", err)
	}
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig("")
	if err != nil {
		return err
	}
	defer observability.Sync()

	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	logger := observability.Logger
	poller, sp := buildPoller(cfg, logger)
	if err := sp.Ensure(); err != nil {
		return fmt.Errorf("prepare spool dir: %w", err)
	}

	handlers.InitHealthManager(versionInfo.Version)
	hm := handlers.GetHealthManager()
	hm.RegisterChecker("spool", spoolHealthChecker{ensure: sp.Ensure})
	hm.RegisterChecker("slurm", slurmHealthChecker{sbatchBin: cfg.Slurm.SbatchBin})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jobs := handlers.NewJobs(poller, ctx)
	srv := server.New(server.Options{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		Version:         versionInfo.Version,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, jobs)

	logger.Info("starting slurmboard",
		zap.String("version", versionInfo.Version),
		zap.String("addr", srv.Addr()),
		zap.String("spool_dir", sp.Dir()),
		zap.Duration("poll_interval", cfg.Slurm.PollInterval))

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}

	// Let an in-flight poll loop observe cancellation before exit.
	poller.Wait()
	return nil
}
