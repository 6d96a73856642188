package cmd

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/dayplan/internal/clierr"
	"github.com/twiced-technology-gmbh/dayplan/internal/config"
	"github.com/twiced-technology-gmbh/dayplan/internal/extract"
	"github.com/twiced-technology-gmbh/dayplan/internal/intent"
	"github.com/twiced-technology-gmbh/dayplan/internal/output"
	"github.com/twiced-technology-gmbh/dayplan/internal/session"
	"github.com/twiced-technology-gmbh/dayplan/internal/task"
)

var doCmd = &cobra.Command{
	Use:   "do UTTERANCE",
	Short: "Route a free-text instruction to the right command",
	Long: `Classifies an utterance by keyword and dispatches it: adding tasks,
planning the day, checking reminders, completing or rescheduling a task,
or updating preferences. Anything unrecognized prints usage guidance.

  dayplan do "i need to call the dentist by friday"
  dayplan do "plan my day"
  dayplan do "mark done dentist"
  dayplan do "set work hours 08:00 to 16:00"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDo,
}

func init() {
	rootCmd.AddCommand(doCmd)
}

func runDo(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")

	switch intent.Detect(text) {
	case intent.AddTasks:
		return doAddTasks(cmd, text)
	case intent.PlanDay:
		return runPlan(cmd, nil)
	case intent.CheckReminders:
		return runRemind(cmd, nil)
	case intent.UpdateTask:
		return doUpdateTask(cmd, text)
	case intent.SetPreferences:
		return doSetPreferences(text)
	default:
		return doGuidance(text)
	}
}

func doAddTasks(cmd *cobra.Command, text string) error {
	// The routing phrase itself ("add task:") is extractor filler; pass the
	// whole utterance through and let the rule pipeline clean the title.
	return runAdd(cmd, []string{text})
}

func doUpdateTask(cmd *cobra.Command, text string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, closeStore, err := openStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	lower := strings.ToLower(text)

	if rest, ok := cutAfter(lower, "mark done", "complete task", "finished"); ok {
		return doMarkDone(cfg, st, rest)
	}
	if strings.Contains(lower, "reschedule") {
		return doReschedule(cfg, st, lower)
	}
	return clierr.New(clierr.InvalidInput,
		`could not understand the update; try "mark done <title>" or "reschedule <title> to <date>"`)
}

// doMarkDone completes the first task (in id order) whose title contains
// the given fragment.
func doMarkDone(cfg *config.Config, st session.Store, fragment string) error {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return clierr.New(clierr.InvalidInput, "say which task to mark done")
	}

	t, err := findTaskByTitle(st, fragment)
	if err != nil {
		return err
	}
	if err := completeAndLog(cfg, st, t); err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"status": "completed", "id": t.ID, "title": t.Title})
	}
	output.Messagef(os.Stdout, "Completed task %s: %s", t.ID, t.Title)
	return nil
}

var rescheduleRe = regexp.MustCompile(`reschedule\s+(.+?)\s+(?:to|for)\s+(.+)$`)

// doReschedule re-resolves a task's due date through the extraction
// vocabulary ("friday", "tomorrow", "2026-09-01").
func doReschedule(cfg *config.Config, st session.Store, lower string) error {
	m := rescheduleRe.FindStringSubmatch(lower)
	if m == nil {
		return clierr.New(clierr.InvalidInput, `try "reschedule <title> to <date>"`)
	}

	t, err := findTaskByTitle(st, strings.TrimSpace(m[1]))
	if err != nil {
		return err
	}

	loc, err := cfg.Preferences.Location()
	if err != nil {
		return err
	}
	ex := extract.New(extract.Options{Location: loc})
	due, ok := ex.ResolveDate(m[2], time.Now().In(loc))
	if !ok {
		return clierr.Newf(clierr.InvalidDate, "could not resolve date expression %q", m[2])
	}

	t.Due = &due
	if t.Status == task.StatusOverdue {
		t.Status = task.StatusPending
	}
	t.Updated = time.Now()
	if err := st.SaveTask(t); err != nil {
		return err
	}
	logActivity(cfg, session.ActionAdd, t.ID, "rescheduled to "+due.String())

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, t)
	}
	output.Messagef(os.Stdout, "Rescheduled %s to %s", t.Title, due)
	return nil
}

// prefRules map spoken preference phrases onto config keys.
var prefRules = []struct {
	re   *regexp.Regexp
	keys []string
}{
	{regexp.MustCompile(`work hours\s+(\d{1,2}:\d{2})\s+to\s+(\d{1,2}:\d{2})`), []string{"work_hours.start", "work_hours.end"}},
	{regexp.MustCompile(`focus\s+(?:time\s+)?(\d+)\s*min`), []string{"focus_minutes"}},
	{regexp.MustCompile(`break\s+(?:length\s+)?(\d+)\s*min`), []string{"break_minutes"}},
	{regexp.MustCompile(`timezone\s+(\S+)`), []string{"timezone"}},
}

func doSetPreferences(text string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	lower := strings.ToLower(text)
	var applied []string
	for _, rule := range prefRules {
		m := rule.re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		for i, key := range rule.keys {
			value := m[i+1]
			if key == "timezone" {
				// IANA names are case-sensitive; re-match on the raw text.
				if raw := rule.re.FindStringSubmatch(text); raw != nil {
					value = raw[i+1]
				}
			}
			if err := cfg.Set(key, value); err != nil {
				return err
			}
			applied = append(applied, fmt.Sprintf("%s=%s", key, value))
		}
	}

	if len(applied) == 0 {
		return clierr.New(clierr.InvalidInput,
			`no preference found; try "set work hours 09:00 to 17:00", "focus 90 minutes", "break 15 minutes", or "timezone Europe/Berlin"`)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"updated": applied})
	}
	output.Messagef(os.Stdout, "Updated %s", strings.Join(applied, ", "))
	return nil
}

func doGuidance(text string) error {
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{
			"intent": string(intent.GeneralQuery),
			"input":  text,
			"hint":   "try: add a task, plan my day, check reminders, mark done <title>, set work hours",
		})
	}
	output.Messagef(os.Stdout, "Not sure what to do with %q.", text)
	output.Messagef(os.Stdout, "Try one of:")
	output.Messagef(os.Stdout, `  dayplan do "add task: write the quarterly report for 2 hours"`)
	output.Messagef(os.Stdout, `  dayplan do "plan my day"`)
	output.Messagef(os.Stdout, `  dayplan do "check reminders"`)
	output.Messagef(os.Stdout, `  dayplan do "mark done quarterly report"`)
	output.Messagef(os.Stdout, `  dayplan do "set work hours 09:00 to 17:00"`)
	return nil
}

// findTaskByTitle returns the first open task (in store order) whose title
// contains the fragment, case-insensitively.
func findTaskByTitle(st session.Store, fragment string) (*task.Task, error) {
	tasks, err := st.Tasks()
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(fragment)
	for _, t := range tasks {
		if t.Status == task.StatusCompleted {
			continue
		}
		if strings.Contains(strings.ToLower(t.Title), needle) {
			return t, nil
		}
	}
	return nil, clierr.Newf(clierr.TaskNotFound, "no task with title containing %q", fragment).
		WithDetails(map[string]any{"query": fragment})
}

// cutAfter returns the text following the first matching prefix phrase.
func cutAfter(text string, phrases ...string) (string, bool) {
	for _, p := range phrases {
		if idx := strings.Index(text, p); idx >= 0 {
			return text[idx+len(p):], true
		}
	}
	return "", false
}
