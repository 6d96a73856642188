package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/twiced-technology-gmbh/dayplan/internal/planner"
	"github.com/twiced-technology-gmbh/dayplan/internal/reminder"
	"github.com/twiced-technology-gmbh/dayplan/internal/task"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	// Status colors aligned with the TUI palette.
	statusStyles = map[string]lipgloss.Style{
		"pending":   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		"scheduled": lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		"completed": lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
		"overdue":   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}

	// Priority colors matching the TUI priority palette.
	priorityStyles = map[string]lipgloss.Style{
		"high":   lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		"medium": lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		"low":    lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}

	tagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))

	// plain is set by DisableColor and switches glamour to its no-TTY style.
	plain bool
)

// DisableColor strips all styling from table output.
func DisableColor() {
	plain = true
	headerStyle = lipgloss.NewStyle()
	dimStyle = lipgloss.NewStyle()
	statusStyles = map[string]lipgloss.Style{}
	priorityStyles = map[string]lipgloss.Style{}
	tagStyle = lipgloss.NewStyle()
}

// TaskTable renders a list of tasks as a formatted table.
func TaskTable(w io.Writer, tasks []*task.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	// Calculate column widths.
	const pad = 2
	idW, statusW, prioW, titleW, durW, tagsW := 4, 8, 10, 7, 5, 6
	for _, t := range tasks {
		idW = max(idW, len(t.ID)+pad)
		statusW = max(statusW, len(t.Status)+pad)
		prioW = max(prioW, len(t.Priority)+pad)
		titleW = max(titleW, min(len(t.Title)+pad, 50)) //nolint:mnd // max title column width
		durW = max(durW, len(FormatMinutes(t.Duration))+pad)
		tagsW = max(tagsW, min(len(strings.Join(t.Tags, ","))+pad, 30)) //nolint:mnd // max tags column width
	}

	// Print header.
	header := fmt.Sprintf("%-*s %-*s %-*s %-*s %-*s %-*s %-*s",
		idW, "ID", statusW, "STATUS", prioW, "PRIORITY",
		titleW, "TITLE", durW, "DUR", tagsW, "TAGS", 12, "DUE") //nolint:mnd // due column width
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	// Print rows.
	for _, t := range tasks {
		title := t.Title
		const maxTitle = 48
		if len(title) > maxTitle {
			title = title[:maxTitle-3] + "..."
		}
		tags := strings.Join(t.Tags, ",")
		if tags == "" {
			tags = dimStyle.Render("--")
		} else {
			tags = tagStyle.Render(tags)
		}
		due := "--"
		if t.Due != nil {
			due = t.Due.String()
		} else {
			due = dimStyle.Render(due)
		}

		row := fmt.Sprintf("%-*s %s %s %s %s %s %s",
			idW, t.ID,
			padRight(styledValue(t.Status, statusStyles), statusW),
			padRight(styledValue(t.Priority, priorityStyles), prioW),
			padRight(title, titleW),
			padRight(FormatMinutes(t.Duration), durW),
			padRight(tags, tagsW),
			due)
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// TaskDetail renders a single task with full detail. The body is rendered
// as terminal markdown.
func TaskDetail(w io.Writer, t *task.Task) {
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(t.Title))
	fmt.Fprintln(w, strings.Repeat("─", min(len(t.Title), 60))) //nolint:mnd // max rule width

	printField(w, "ID", t.ID)
	printField(w, "Status", styledValue(t.Status, statusStyles))
	printField(w, "Priority", styledValue(t.Priority, priorityStyles))
	printField(w, "Duration", FormatMinutes(t.Duration))
	if t.Due != nil {
		printField(w, "Due", t.Due.String())
	} else {
		printField(w, "Due", dimStyle.Render("--"))
	}
	if t.Recurrence != task.RecurNone {
		printField(w, "Repeats", string(t.Recurrence))
	}
	if len(t.Tags) > 0 {
		printField(w, "Tags", tagStyle.Render(strings.Join(t.Tags, ", ")))
	} else {
		printField(w, "Tags", dimStyle.Render("--"))
	}
	printField(w, "Created", t.Created.Format("2006-01-02 15:04"))
	printField(w, "Updated", t.Updated.Format("2006-01-02 15:04"))
	if t.Completed != nil {
		printField(w, "Completed", t.Completed.Format("2006-01-02 15:04"))
	}

	if t.Body != "" {
		fmt.Fprintln(w)
		fmt.Fprint(w, Markdown(t.Body))
	}
}

// ScheduleTable renders a day's schedule as a timeline. Task titles come
// from the given tasks; unknown ids fall back to the raw id.
func ScheduleTable(w io.Writer, s *planner.Schedule, tasks []*task.Task) {
	titles := make(map[string]string, len(tasks))
	taskTags := make(map[string][]string, len(tasks))
	for _, t := range tasks {
		titles[t.ID] = t.Title
		taskTags[t.ID] = t.Tags
	}

	heading := fmt.Sprintf("Schedule for %s (%s)", s.Date, s.Date.Weekday())
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(heading))

	if len(s.Blocks) == 0 {
		fmt.Fprintln(w, dimStyle.Render("  nothing planned"))
	}
	for _, b := range s.Blocks {
		span := b.Start.Format("15:04") + "-" + b.End.Format("15:04")
		dur := FormatMinutes(int(b.Duration().Minutes()))
		if b.IsBreak() {
			fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("  %s  %6s  break", span, dur)))
			continue
		}
		label := *b.TaskID
		if title := titles[*b.TaskID]; title != "" {
			label = title
		}
		line := fmt.Sprintf("  %s  %6s  %s", span, dur, label)
		if tl := taskTags[*b.TaskID]; len(tl) > 0 {
			line += "  " + tagStyle.Render("["+strings.Join(tl, ",")+"]")
		}
		fmt.Fprintln(w, line)
	}

	if len(s.Unscheduled) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headerStyle.Render("UNSCHEDULED"))
		for _, u := range s.Unscheduled {
			label := u.TaskID
			if title := titles[u.TaskID]; title != "" {
				label = title
			}
			fmt.Fprintf(w, "  %s %s\n", label, dimStyle.Render("("+u.Reason+")"))
		}
	}
}

// ReminderTable renders upcoming alerts followed by overdue tasks.
func ReminderTable(w io.Writer, r reminder.Report) {
	if r.Empty() {
		fmt.Fprintln(w, "Nothing coming up.")
		return
	}

	if len(r.Alerts) > 0 {
		fmt.Fprintln(w, headerStyle.Render("UPCOMING"))
		for _, a := range r.Alerts {
			fmt.Fprintf(w, "  %s  in %s  %s\n",
				a.StartsAt.Format("15:04"), FormatMinutes(a.MinutesUntil), a.Title)
			fmt.Fprintf(w, "      %s\n", dimStyle.Render("actions: "+strings.Join(a.Actions, ", ")))
		}
	}

	if len(r.Overdue) > 0 {
		if len(r.Alerts) > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, headerStyle.Render("OVERDUE"))
		for _, o := range r.Overdue {
			fmt.Fprintf(w, "  %s  %s\n", o.Due, o.Title)
			fmt.Fprintf(w, "      %s %s\n", dimStyle.Render(o.Reason+"."), o.Recommendation)
		}
	}
}

// GroupedTable renders a grouped task view with per-group status breakdowns.
func GroupedTable(w io.Writer, gs task.GroupedSummary) {
	if len(gs.Groups) == 0 {
		fmt.Fprintln(os.Stderr, "No groups found.")
		return
	}

	for i, g := range gs.Groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		title := fmt.Sprintf("%s (%d tasks)", g.Key, g.Total)
		fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(title))

		for _, ss := range g.Statuses {
			if ss.Count == 0 {
				continue
			}
			const groupStatusW = 12
			fmt.Fprintf(w, "  %s %d\n",
				padRight(styledValue(ss.Status, statusStyles), groupStatusW), ss.Count)
		}
	}
}

// Messagef prints a simple formatted message line.
func Messagef(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format+"\n", args...)
}

// Markdown renders markdown for the terminal. Falls back to the raw text
// when rendering fails.
func Markdown(body string) string {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(renderWidth())}
	if plain {
		opts = append(opts, glamour.WithStandardStyle("notty"))
	} else {
		opts = append(opts, glamour.WithAutoStyle())
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return body
	}
	out, err := r.Render(body)
	if err != nil {
		return body
	}
	return strings.TrimLeft(out, "\n")
}

// renderWidth returns the terminal width for wrapping, capped for
// readability.
func renderWidth() int {
	const (
		defaultWidth = 80
		maxWidth     = 100
	)
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return min(w, maxWidth)
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-12s %s\n", label+":", value)
}

// FormatMinutes renders a minute count as "45m", "2h", or "1h 30m".
func FormatMinutes(minutes int) string {
	h, m := minutes/60, minutes%60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}

// padRight pads s with spaces to the given visible width, accounting for ANSI
// escape codes that are invisible but consume bytes.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

// styledValue renders s using a matching style from the map, or returns s unchanged.
func styledValue(s string, styles map[string]lipgloss.Style) string {
	if st, ok := styles[s]; ok {
		return st.Render(s)
	}
	return s
}
