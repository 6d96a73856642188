package cmd

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/dayplan/internal/clierr"
	"github.com/twiced-technology-gmbh/dayplan/internal/config"
	"github.com/twiced-technology-gmbh/dayplan/internal/date"
	"github.com/twiced-technology-gmbh/dayplan/internal/output"
	"github.com/twiced-technology-gmbh/dayplan/internal/session"
	"github.com/twiced-technology-gmbh/dayplan/internal/timegrid"
)

var blockCmd = &cobra.Command{
	Use:   "block WINDOW",
	Short: "Reserve time the planner must work around",
	Long: `Records a blocked interval (a standing meeting, a commute) that the
planner never schedules over.

WINDOW is HH:MM-HH:MM on the given --date (default today), e.g.:

  dayplan block 10:00-11:30 --reason "team standup" --date 2026-09-01`,
	Args: cobra.ExactArgs(1),
	RunE: runBlock,
}

func init() {
	blockCmd.Flags().String("date", "", "day the window applies to (YYYY-MM-DD, default today)")
	blockCmd.Flags().String("reason", "", "label shown in listings")
	rootCmd.AddCommand(blockCmd)
}

func runBlock(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, closeStore, err := openStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	dateFlag, _ := cmd.Flags().GetString("date")
	day, err := resolveDateFlag(dateFlag, cfg.Preferences)
	if err != nil {
		return err
	}

	iv, err := parseWindowArg(args[0], day, cfg.Preferences)
	if err != nil {
		return err
	}

	reason, _ := cmd.Flags().GetString("reason")
	blocked := session.BlockedInterval{Interval: iv, Reason: reason}

	if err := st.AddBlocked(blocked); err != nil {
		return err
	}
	logActivity(cfg, session.ActionBlock, "", iv.String())

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, blocked)
	}

	label := ""
	if reason != "" {
		label = " (" + reason + ")"
	}
	output.Messagef(os.Stdout, "Blocked %s %s-%s%s",
		day, iv.Start.Format("15:04"), iv.End.Format("15:04"), label)
	return nil
}

// parseWindowArg resolves "HH:MM-HH:MM" on the given day in the configured
// timezone.
func parseWindowArg(arg string, day date.Date, prefs config.Preferences) (timegrid.Interval, error) {
	loc, err := prefs.Location()
	if err != nil {
		return timegrid.Interval{}, err
	}

	startStr, endStr, ok := strings.Cut(arg, "-")
	if !ok {
		return timegrid.Interval{}, clierr.Newf(clierr.InvalidInterval,
			"invalid window %q (expected HH:MM-HH:MM)", arg)
	}

	start, err := parseClockTime(startStr)
	if err != nil {
		return timegrid.Interval{}, clierr.Newf(clierr.InvalidInterval,
			"invalid window start %q: expected HH:MM", startStr)
	}
	end, err := parseClockTime(endStr)
	if err != nil {
		return timegrid.Interval{}, clierr.Newf(clierr.InvalidInterval,
			"invalid window end %q: expected HH:MM", endStr)
	}

	iv := timegrid.Interval{
		Start: day.At(start/60, start%60, loc),
		End:   day.At(end/60, end%60, loc),
	}
	if err := iv.Validate(); err != nil {
		return timegrid.Interval{}, clierr.Newf(clierr.InvalidInterval, "%v", err)
	}
	return iv, nil
}

// parseClockTime parses "HH:MM" into minutes since midnight.
func parseClockTime(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
