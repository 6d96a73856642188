// Package tui implements the interactive day view: the planned timeline on
// the left, unscheduled tasks on the right, with quick actions to complete
// tasks and re-plan.
package tui

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/twiced-technology-gmbh/dayplan/internal/advisory"
	"github.com/twiced-technology-gmbh/dayplan/internal/config"
	"github.com/twiced-technology-gmbh/dayplan/internal/date"
	"github.com/twiced-technology-gmbh/dayplan/internal/planner"
	"github.com/twiced-technology-gmbh/dayplan/internal/session"
	"github.com/twiced-technology-gmbh/dayplan/internal/task"
	"github.com/twiced-technology-gmbh/dayplan/internal/timegrid"
)

// tickInterval refreshes the "now" marker in the timeline.
const tickInterval = 30 * time.Second

// keyMap holds the day-view key bindings.
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	PrevDay key.Binding
	NextDay key.Binding
	Today   key.Binding
	Done    key.Binding
	Replan  key.Binding
	Help    key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
	Down:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
	PrevDay: key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "previous day")),
	NextDay: key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "next day")),
	Today:   key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "today")),
	Done:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "mark done + re-plan")),
	Replan:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "re-plan")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// entry is one selectable row: a scheduled task or an unscheduled one.
type entry struct {
	taskID      string
	unscheduled bool
}

// DayView is the top-level bubbletea model.
type DayView struct {
	cfg   *config.Config
	store *session.FileStore
	loc   *time.Location

	day     date.Date
	sched   *planner.Schedule
	tasks   map[string]*task.Task
	entries []entry
	sel     int

	width    int
	height   int
	err      error
	showHelp bool
	now      func() time.Time // clock for the timeline marker; defaults to time.Now
}

// NewDayView creates the model and loads today's state.
func NewDayView(cfg *config.Config) (*DayView, error) {
	loc, err := cfg.Preferences.Location()
	if err != nil {
		return nil, err
	}

	v := &DayView{
		cfg:   cfg,
		store: session.NewFileStore(cfg),
		loc:   loc,
		now:   time.Now,
	}
	v.day = date.FromTime(v.now().In(loc))
	v.load()
	return v, nil
}

// SetNow overrides the clock function (for testing).
func (v *DayView) SetNow(fn func() time.Time) {
	v.now = fn
	v.day = date.FromTime(fn().In(v.loc))
}

// WatchPaths returns the paths the file watcher should monitor.
func (v *DayView) WatchPaths() []string {
	return []string{v.cfg.Dir(), v.cfg.TasksPath(), v.cfg.SchedulesPath()}
}

// Init implements tea.Model.
func (v *DayView) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (v *DayView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKey(msg)
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil
	case ReloadMsg:
		v.load()
		return v, nil
	case TickMsg:
		return v, tickCmd()
	}
	return v, nil
}

func (v *DayView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		if v.showHelp {
			v.showHelp = false
			return v, nil
		}
		return v, tea.Quit
	case key.Matches(msg, keys.Help):
		v.showHelp = !v.showHelp
	case key.Matches(msg, keys.Down):
		if v.sel < len(v.entries)-1 {
			v.sel++
		}
	case key.Matches(msg, keys.Up):
		if v.sel > 0 {
			v.sel--
		}
	case key.Matches(msg, keys.PrevDay):
		v.day = v.day.AddDays(-1)
		v.load()
	case key.Matches(msg, keys.NextDay):
		v.day = v.day.AddDays(1)
		v.load()
	case key.Matches(msg, keys.Today):
		v.day = date.FromTime(v.now().In(v.loc))
		v.load()
	case key.Matches(msg, keys.Replan):
		v.replan()
	case key.Matches(msg, keys.Done):
		v.completeSelected()
	}
	return v, nil
}

// load reads tasks and the stored schedule for the current day.
func (v *DayView) load() {
	tasks, err := v.store.Tasks()
	if err != nil {
		v.err = err
		return
	}
	v.err = nil

	v.tasks = make(map[string]*task.Task, len(tasks))
	for _, t := range tasks {
		v.tasks[t.ID] = t
	}

	sched, err := v.store.LoadSchedule(v.day)
	if err != nil {
		sched = nil // no schedule yet for this day
	}
	v.sched = sched
	v.rebuildEntries()
}

// replan recomputes and persists the schedule for the current day.
func (v *DayView) replan() {
	tasks, err := v.store.Tasks()
	if err != nil {
		v.err = err
		return
	}

	blocked, err := v.store.Blocked(v.day)
	if err != nil {
		v.err = err
		return
	}
	intervals := make([]timegrid.Interval, len(blocked))
	for i, b := range blocked {
		intervals[i] = b.Interval
	}

	src := advisory.FileSource{Dir: v.cfg.Dir(), Loc: v.loc}
	advisories, err := src.Advisories(context.Background(), v.day)
	if err != nil {
		advisories = nil
	}

	sched, err := planner.Plan(planner.Request{
		Date:       v.day,
		Tasks:      tasks,
		Blocked:    intervals,
		Prefs:      v.cfg.Preferences,
		Advisories: advisories,
	})
	if err != nil {
		v.err = err
		return
	}

	if err := v.store.SaveSchedule(sched); err != nil {
		v.err = err
		return
	}
	placed := make(map[string]bool)
	for _, id := range sched.ScheduledIDs() {
		placed[id] = true
	}
	for _, t := range tasks {
		if placed[t.ID] {
			if err := v.store.SaveTask(t); err != nil {
				v.err = err
				return
			}
		}
	}
	session.LogMutation(v.cfg.Dir(), session.ActionPlan, "", v.day.String())

	v.err = nil
	v.load()
}

// completeSelected marks the selected entry's task done and re-plans the day.
func (v *DayView) completeSelected() {
	t := v.selectedTask()
	if t == nil {
		return
	}
	if !task.Complete(t, v.now()) {
		return
	}
	if err := v.store.SaveTask(t); err != nil {
		v.err = err
		return
	}
	session.LogMutation(v.cfg.Dir(), session.ActionDone, t.ID, t.Title)
	v.replan()
}

func (v *DayView) selectedTask() *task.Task {
	if v.sel < 0 || v.sel >= len(v.entries) {
		return nil
	}
	return v.tasks[v.entries[v.sel].taskID]
}

// rebuildEntries flattens the schedule into the selectable row list:
// scheduled tasks in first-block order, then unscheduled ones.
func (v *DayView) rebuildEntries() {
	v.entries = v.entries[:0]
	if v.sched != nil {
		for _, id := range v.sched.ScheduledIDs() {
			v.entries = append(v.entries, entry{taskID: id})
		}
		for _, u := range v.sched.Unscheduled {
			v.entries = append(v.entries, entry{taskID: u.TaskID, unscheduled: true})
		}
	}
	if v.sel >= len(v.entries) {
		v.sel = len(v.entries) - 1
	}
	if v.sel < 0 {
		v.sel = 0
	}
}

// --- Messages ---

// ReloadMsg is sent by the file watcher to trigger a refresh.
type ReloadMsg struct{}

// TickMsg is sent periodically to refresh the now marker.
type TickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg { return TickMsg{} })
}

// --- Styles ---

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("236"))

	breakStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	nowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)

	unschedHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	statusBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	// tagColorPalette is a set of distinct, readable terminal colors for
	// auto-coloring tags. Same tag always hashes to the same color.
	tagColorPalette = []lipgloss.Color{"33", "36", "35", "32", "91", "34", "93", "96"}
)

func tagStyle(tag string) lipgloss.Style {
	h := fnv.New32a()
	_, _ = h.Write([]byte(tag))
	color := tagColorPalette[h.Sum32()%uint32(len(tagColorPalette))]
	return lipgloss.NewStyle().Foreground(color)
}

// --- View rendering ---

// View implements tea.Model.
func (v *DayView) View() string {
	if v.width == 0 {
		return "Loading..."
	}
	if v.showHelp {
		return v.viewHelp()
	}

	header := v.renderHeader()
	timeline := v.renderTimeline()
	unscheduled := v.renderUnscheduled()

	body := timeline
	if unscheduled != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, timeline, "", unscheduled)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", v.renderStatusBar())
}

func (v *DayView) renderHeader() string {
	planned := 0
	unsched := 0
	if v.sched != nil {
		planned = len(v.sched.ScheduledIDs())
		unsched = len(v.sched.Unscheduled)
	}
	text := fmt.Sprintf("%s (%s)  %d planned / %d unscheduled",
		v.day, v.day.Weekday(), planned, unsched)
	return headerStyle.Width(min(v.width, lipgloss.Width(text)+2)).Render(text) //nolint:mnd // padding
}

func (v *DayView) renderTimeline() string {
	if v.sched == nil || len(v.sched.Blocks) == 0 {
		return dimStyle.Render("  nothing planned. press r to plan this day")
	}

	now := v.now().In(v.loc)
	selected := v.selectedTask()

	var lines []string
	for _, b := range v.sched.Blocks {
		span := b.Start.In(v.loc).Format("15:04") + "-" + b.End.In(v.loc).Format("15:04")
		marker := "  "
		if b.Contains(now) {
			marker = nowStyle.Render("▶ ")
		}

		if b.IsBreak() {
			lines = append(lines, marker+breakStyle.Render(span+"  break"))
			continue
		}

		t := v.tasks[*b.TaskID]
		label := *b.TaskID
		var tags []string
		if t != nil {
			label = t.Title
			tags = t.Tags
		}

		line := span + "  " + truncate(label, v.width/2) //nolint:mnd // half-width title cap
		if len(tags) > 0 {
			line += "  " + tagStyle(tags[0]).Render("["+strings.Join(tags, ",")+"]")
		}
		if selected != nil && t != nil && selected.ID == t.ID {
			line = selectedStyle.Render(line)
		}
		lines = append(lines, marker+line)
	}
	return strings.Join(lines, "\n")
}

func (v *DayView) renderUnscheduled() string {
	if v.sched == nil || len(v.sched.Unscheduled) == 0 {
		return ""
	}

	selected := v.selectedTask()
	lines := []string{unschedHeaderStyle.Render("UNSCHEDULED")}
	for _, u := range v.sched.Unscheduled {
		label := u.TaskID
		if t := v.tasks[u.TaskID]; t != nil {
			label = t.Title
		}
		line := "  " + truncate(label, v.width/2) + "  " + dimStyle.Render("("+u.Reason+")") //nolint:mnd // half-width title cap
		if selected != nil && selected.ID == u.TaskID {
			line = selectedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (v *DayView) renderStatusBar() string {
	status := " d:done  r:re-plan  g:today  h/l:day  ?:help  q:quit"
	status = truncate(status, v.width)

	if v.err != nil {
		errStr := errorStyle.Render(truncate("Error: "+v.err.Error(), v.width))
		return errStr + "\n" + statusBarStyle.Render(status)
	}
	return statusBarStyle.Render(status)
}

func (v *DayView) viewHelp() string {
	bindings := []key.Binding{
		keys.Up, keys.Down, keys.PrevDay, keys.NextDay,
		keys.Today, keys.Done, keys.Replan, keys.Help, keys.Quit,
	}
	lines := []string{headerStyle.Render("dayplan keys"), ""}
	for _, b := range bindings {
		h := b.Help()
		lines = append(lines, fmt.Sprintf("  %-8s %s", h.Key, h.Desc))
	}
	lines = append(lines, "", dimStyle.Render("press ? or q to close"))
	return strings.Join(lines, "\n")
}

func truncate(s string, maxLen int) string {
	if maxLen < 4 { //nolint:mnd // minimum length for truncation
		maxLen = 4
	}
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	target := maxLen - 3 //nolint:mnd // room for "..."
	if target > len(runes) {
		target = len(runes)
	}
	for target > 0 && lipgloss.Width(string(runes[:target])) > maxLen-3 {
		target--
	}
	return string(runes[:target]) + "..."
}
