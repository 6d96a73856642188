package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/twiced-technology-gmbh/dayplan/internal/clierr"
	"github.com/twiced-technology-gmbh/dayplan/internal/config"
	"github.com/twiced-technology-gmbh/dayplan/internal/output"
	"github.com/twiced-technology-gmbh/dayplan/internal/session"
	"github.com/twiced-technology-gmbh/dayplan/internal/task"
)

var doneCmd = &cobra.Command{
	Use:     "done ID[,ID,...]",
	Aliases: []string{"complete"},
	Short:   "Mark tasks completed",
	Long: `Marks one or more tasks as completed. Tasks are never deleted; the
completed record stays available to reminders and history.
Multiple IDs can be provided as a comma-separated list (requires --yes).`,
	Args: cobra.ExactArgs(1),
	RunE: runDone,
}

func init() {
	doneCmd.Flags().BoolP("yes", "y", false, "skip confirmation prompt")
	rootCmd.AddCommand(doneCmd)
}

func runDone(cmd *cobra.Command, args []string) error {
	ids := splitIDs(args[0])
	if len(ids) == 0 {
		return clierr.New(clierr.InvalidInput, "no task id given")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, closeStore, err := openStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	yes, _ := cmd.Flags().GetBool("yes")

	// Batch mode requires --yes.
	if len(ids) > 1 && !yes {
		return clierr.New(clierr.ConfirmationReq, "batch done requires --yes")
	}

	if len(ids) == 1 {
		return completeSingleTask(cfg, st, ids[0], yes)
	}

	// Batch mode (yes is guaranteed true here).
	return runBatch(ids, func(id string) error {
		return completeTask(cfg, st, id)
	})
}

// completeSingleTask handles one task with confirmation and output.
func completeSingleTask(cfg *config.Config, st session.Store, id string, yes bool) error {
	t, err := findTaskByID(st, id)
	if err != nil {
		return err
	}

	if t.Status == task.StatusCompleted {
		return clierr.Newf(clierr.NoChanges, "task %s is already completed", id)
	}

	// Require confirmation in TTY mode unless --yes.
	if !yes {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return clierr.New(clierr.ConfirmationReq,
				"cannot prompt for confirmation (not a terminal); use --yes")
		}
		fmt.Fprintf(os.Stderr, "Mark task %s %q done? [y/N] ", t.ID, t.Title)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(os.Stderr, "Canceled.")
			return nil
		}
	}

	if err := completeAndLog(cfg, st, t); err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{
			"status": "completed",
			"id":     t.ID,
			"title":  t.Title,
		})
	}

	output.Messagef(os.Stdout, "Completed task %s: %s", t.ID, t.Title)
	return nil
}

// completeTask performs the core completion: find, transition, save, log.
func completeTask(cfg *config.Config, st session.Store, id string) error {
	t, err := findTaskByID(st, id)
	if err != nil {
		return err
	}
	return completeAndLog(cfg, st, t)
}

func completeAndLog(cfg *config.Config, st session.Store, t *task.Task) error {
	if !task.Complete(t, time.Now()) {
		return clierr.Newf(clierr.NoChanges, "task %s is already completed", t.ID)
	}
	if err := st.SaveTask(t); err != nil {
		return err
	}
	logActivity(cfg, session.ActionDone, t.ID, t.Title)
	return nil
}

// splitIDs splits a comma-separated id list, dropping empties and duplicates.
func splitIDs(arg string) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, id := range strings.Split(arg, ",") {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
