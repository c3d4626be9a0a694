package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/presleydc/slurmboard/internal/observability"
	"github.com/presleydc/slurmboard/pkg/spool"
)

var spoolCmd = &cobra.Command{
	Use:   "spool",
	Short: "Manage the spool directory",
}

var spoolGCCmd = &cobra.Command{
	Use:   "gc",
	Short: "Delete stale scripts and log files from the spool directory",
	Long: `Delete leftovers from interrupted runs: generated job scripts and the
per-job .out/.err files Slurm wrote. Only files older than --max-age are
removed, so logs of an active job are never touched when the age is kept
above the job wall-clock limit.`,
	RunE: runSpoolGC,
}

func init() {
	rootCmd.AddCommand(spoolCmd)
	spoolCmd.AddCommand(spoolGCCmd)

	spoolGCCmd.Flags().String("max-age", "24h", "Delete matching files older than this duration")
	spoolGCCmd.Flags().Bool("dry-run", false, "Show what would be deleted")
	spoolGCCmd.Flags().Bool("json", false, "Output as JSON")
}

func runSpoolGC(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig("console")
	if err != nil {
		return err
	}
	defer observability.Sync()

	maxAgeStr, _ := cmd.Flags().GetString("max-age")
	maxAge, err := time.ParseDuration(maxAgeStr)
	if err != nil {
		return fmt.Errorf("invalid --max-age: %w", err)
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	sp := spool.New(cfg.Spool.Dir)
	res, err := sp.Sweep(maxAge, spool.DefaultSweepPatterns, dryRun)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	if dryRun {
		_, _ = fmt.Fprintf(os.Stdout, "would_delete=%d\n", res.WouldDelete)
		return nil
	}
	_, _ = fmt.Fprintf(os.Stdout, "deleted=%d\n", res.Deleted)
	return nil
}
