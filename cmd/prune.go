package cmd

import (
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/dayplan/internal/date"
	"github.com/twiced-technology-gmbh/dayplan/internal/output"
	"github.com/twiced-technology-gmbh/dayplan/internal/session"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old schedules",
	Long: `Removes stored schedules older than the retention window
(retention_days, default 30). Tasks are never pruned; only schedule
files go.`,
	RunE: runPrune,
}

func init() {
	pruneCmd.Flags().Int("keep-days", 0, "override retention_days for this run")
	rootCmd.AddCommand(pruneCmd)
}

func runPrune(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, closeStore, err := openStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	days := cfg.Preferences.RetentionDays
	if cmd.Flags().Changed("keep-days") {
		days, _ = cmd.Flags().GetInt("keep-days")
	}
	if days <= 0 {
		output.Messagef(os.Stdout, "Pruning disabled (retention_days is 0)")
		return nil
	}

	loc, err := cfg.Preferences.Location()
	if err != nil {
		return err
	}
	cutoff := date.FromTime(time.Now().In(loc)).AddDays(-days)

	removed, err := st.PruneSchedules(cutoff)
	if err != nil {
		return err
	}
	logActivity(cfg, session.ActionPrune, "", strconv.Itoa(removed)+" schedules")

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{
			"removed": removed,
			"before":  cutoff.String(),
		})
	}

	output.Messagef(os.Stdout, "Removed %d schedules dated before %s", removed, cutoff)
	return nil
}
