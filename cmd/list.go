package cmd

import (
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/dayplan/internal/clierr"
	"github.com/twiced-technology-gmbh/dayplan/internal/date"
	"github.com/twiced-technology-gmbh/dayplan/internal/output"
	"github.com/twiced-technology-gmbh/dayplan/internal/task"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long:    `Lists tasks with optional filtering, sorting, and output format control.`,
	RunE:    runList,
}

func init() {
	listCmd.Flags().StringSlice("status", nil, "filter by status (comma-separated)")
	listCmd.Flags().StringSlice("priority", nil, "filter by priority (comma-separated)")
	listCmd.Flags().String("tag", "", "filter by tag")
	listCmd.Flags().String("due-before", "", "tasks due strictly before this date (YYYY-MM-DD)")
	listCmd.Flags().String("due", "", "tasks due exactly on this date (YYYY-MM-DD)")
	listCmd.Flags().Bool("overdue", false, "show only tasks past their due date")
	listCmd.Flags().Bool("recurring", false, "show only recurring tasks")
	listCmd.Flags().Bool("one-off", false, "show only non-recurring tasks")
	listCmd.Flags().StringP("search", "s", "", "search tasks by title, body, or tags (case-insensitive)")
	listCmd.Flags().String("sort", "created", "sort field (id, title, priority, status, due, duration, created, updated)")
	listCmd.Flags().BoolP("reverse", "r", false, "reverse sort order")
	listCmd.Flags().IntP("limit", "n", 0, "limit number of results")
	listCmd.Flags().String("group-by", "", "group results by field ("+strings.Join(task.ValidGroupByFields(), ", ")+")")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, closeStore, err := openStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	groupBy, _ := cmd.Flags().GetString("group-by")
	if groupBy != "" && !slices.Contains(task.ValidGroupByFields(), groupBy) {
		return clierr.Newf(clierr.InvalidInput, "invalid --group-by field %q; valid: %s",
			groupBy, strings.Join(task.ValidGroupByFields(), ", "))
	}

	filter, err := listFilter(cmd, cfg.Preferences.Timezone)
	if err != nil {
		return err
	}

	tasks, err := st.Tasks()
	if err != nil {
		return err
	}
	printStoreWarnings(st)

	tasks = task.Filter(tasks, filter)

	sortBy, _ := cmd.Flags().GetString("sort")
	reverse, _ := cmd.Flags().GetBool("reverse")
	task.Sort(tasks, sortBy, reverse)

	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 && limit < len(tasks) {
		tasks = tasks[:limit]
	}

	if groupBy != "" {
		return outputGroupedList(tasks, groupBy)
	}
	return outputTaskList(tasks)
}

func listFilter(cmd *cobra.Command, timezone string) (task.FilterOptions, error) {
	statuses, _ := cmd.Flags().GetStringSlice("status")
	priorities, _ := cmd.Flags().GetStringSlice("priority")
	tag, _ := cmd.Flags().GetString("tag")
	search, _ := cmd.Flags().GetString("search")
	overdue, _ := cmd.Flags().GetBool("overdue")

	filter := task.FilterOptions{
		Statuses:   statuses,
		Priorities: priorities,
		Tag:        tag,
		Search:     search,
	}

	if overdue {
		loc, err := time.LoadLocation(timezone)
		if err != nil {
			loc = time.UTC
		}
		filter.Overdue = true
		filter.Today = date.FromTime(time.Now().In(loc))
	}

	if v, _ := cmd.Flags().GetString("due-before"); v != "" {
		d, err := date.Parse(v)
		if err != nil {
			return filter, task.ValidateDate("due-before", v, err)
		}
		filter.DueBefore = &d
	}
	if v, _ := cmd.Flags().GetString("due"); v != "" {
		d, err := date.Parse(v)
		if err != nil {
			return filter, task.ValidateDate("due", v, err)
		}
		filter.DueOn = &d
	}

	recurring, _ := cmd.Flags().GetBool("recurring")
	oneOff, _ := cmd.Flags().GetBool("one-off")
	if recurring {
		v := true
		filter.Recurring = &v
	} else if oneOff {
		v := false
		filter.Recurring = &v
	}

	return filter, nil
}

func outputGroupedList(tasks []*task.Task, groupBy string) error {
	grouped := task.GroupBy(tasks, groupBy)
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, grouped)
	}
	output.GroupedTable(os.Stdout, grouped)
	return nil
}

func outputTaskList(tasks []*task.Task) error {
	format := outputFormat()
	if format == output.FormatJSON {
		if tasks == nil {
			tasks = []*task.Task{}
		}
		return output.JSON(os.Stdout, tasks)
	}
	if format == output.FormatCompact {
		output.TaskCompact(os.Stdout, tasks)
		return nil
	}

	output.TaskTable(os.Stdout, tasks)
	return nil
}
