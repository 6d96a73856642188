package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/twiced-technology-gmbh/dayplan/internal/clierr"
	"github.com/twiced-technology-gmbh/dayplan/internal/config"
	"github.com/twiced-technology-gmbh/dayplan/internal/date"
	"github.com/twiced-technology-gmbh/dayplan/internal/planner"
	"github.com/twiced-technology-gmbh/dayplan/internal/task"
	"github.com/twiced-technology-gmbh/dayplan/internal/timegrid"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	cfg, err := config.Init(t.TempDir())
	if err != nil {
		t.Fatalf("init planner dir: %v", err)
	}
	return NewFileStore(cfg)
}

func storedTask(id string) *task.Task {
	created := time.Date(2025, time.November, 20, 9, 0, 0, 0, time.UTC)
	return &task.Task{
		ID:       id,
		Title:    strings.ReplaceAll(id, "-", " "),
		Priority: task.PriorityMedium,
		Duration: 60,
		Status:   task.StatusPending,
		Created:  created,
		Updated:  created,
	}
}

func blocked(day date.Date, fromHour, fromMin, toHour, toMin int, reason string) BlockedInterval {
	return BlockedInterval{
		Interval: timegrid.Interval{
			Start: day.At(fromHour, fromMin, time.UTC),
			End:   day.At(toHour, toMin, time.UTC),
		},
		Reason: reason,
	}
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	var ce *clierr.Error
	if !errors.As(err, &ce) {
		t.Fatalf("expected a structured error, got %v", err)
	}
	return ce.Code
}

func TestTaskRoundTrip(t *testing.T) {
	st := newTestStore(t)

	report := storedTask("write-report-20251120")
	report.Body = "Quarterly numbers for the board."
	dentist := storedTask("call-the-dentist-20251120")
	due := date.New(2025, time.November, 28)
	dentist.Due = &due
	dentist.Tags = []string{"communication"}

	if err := st.SaveTask(report); err != nil {
		t.Fatalf("save report: %v", err)
	}
	if err := st.SaveTask(dentist); err != nil {
		t.Fatalf("save dentist: %v", err)
	}

	got, err := st.Tasks()
	if err != nil {
		t.Fatalf("tasks: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(got))
	}
	// Files are named by id, so listing comes back in id order.
	if got[0].ID != "call-the-dentist-20251120" || got[1].ID != "write-report-20251120" {
		t.Fatalf("unexpected order: %s, %s", got[0].ID, got[1].ID)
	}
	if got[0].Due == nil || got[0].Due.String() != "2025-11-28" {
		t.Errorf("due date lost: %v", got[0].Due)
	}
	if !got[0].HasTag("communication") {
		t.Errorf("tags lost: %v", got[0].Tags)
	}
	if got[1].Body != "Quarterly numbers for the board." {
		t.Errorf("body lost: %q", got[1].Body)
	}
}

func TestSaveTaskRejectsInvalid(t *testing.T) {
	st := newTestStore(t)

	bad := storedTask("bad-task-20251120")
	bad.Title = "  "
	if err := st.SaveTask(bad); err == nil {
		t.Fatal("expected error for empty title")
	}

	bad = storedTask("bad-task-20251120")
	bad.Duration = 0
	if err := st.SaveTask(bad); err == nil {
		t.Fatal("expected error for zero duration")
	}

	if _, err := os.Stat(task.Path(st.cfg.TasksPath(), "bad-task-20251120")); !os.IsNotExist(err) {
		t.Fatal("invalid task reached disk")
	}
}

func TestTasksLenientOnCorruptFile(t *testing.T) {
	st := newTestStore(t)

	if err := st.SaveTask(storedTask("good-task-20251120")); err != nil {
		t.Fatalf("save: %v", err)
	}
	corrupt := filepath.Join(st.cfg.TasksPath(), "corrupt.md")
	if err := os.WriteFile(corrupt, []byte("no frontmatter here"), 0o600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	got, err := st.Tasks()
	if err != nil {
		t.Fatalf("tasks: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 task, got %d", len(got))
	}
	warnings := st.Warnings()
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(warnings))
	}
	if warnings[0].File != "corrupt.md" {
		t.Errorf("warning names %q, want corrupt.md", warnings[0].File)
	}
}

func TestBlockedFiltersAndSortsByDay(t *testing.T) {
	st := newTestStore(t)
	monday := date.New(2025, time.November, 24)
	tuesday := monday.AddDays(1)

	for _, iv := range []BlockedInterval{
		blocked(monday, 12, 0, 12, 30, "lunch"),
		blocked(tuesday, 9, 0, 10, 0, "dentist"),
		blocked(monday, 10, 0, 11, 0, "standup"),
	} {
		if err := st.AddBlocked(iv); err != nil {
			t.Fatalf("add blocked: %v", err)
		}
	}

	got, err := st.Blocked(monday)
	if err != nil {
		t.Fatalf("blocked: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 intervals on monday, got %d", len(got))
	}
	if got[0].Reason != "standup" || got[1].Reason != "lunch" {
		t.Errorf("not sorted by start: %s, %s", got[0].Reason, got[1].Reason)
	}

	got, err = st.Blocked(tuesday)
	if err != nil {
		t.Fatalf("blocked: %v", err)
	}
	if len(got) != 1 || got[0].Reason != "dentist" {
		t.Errorf("tuesday filter wrong: %+v", got)
	}
}

func TestBlockedMissingFileMeansNone(t *testing.T) {
	st := newTestStore(t)
	got, err := st.Blocked(date.New(2025, time.November, 24))
	if err != nil {
		t.Fatalf("blocked: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no intervals, got %d", len(got))
	}
}

func TestAddBlockedRejectsEmptyInterval(t *testing.T) {
	st := newTestStore(t)
	day := date.New(2025, time.November, 24)
	iv := BlockedInterval{Interval: timegrid.Interval{
		Start: day.At(10, 0, time.UTC),
		End:   day.At(10, 0, time.UTC),
	}}
	err := st.AddBlocked(iv)
	if err == nil {
		t.Fatal("expected error for empty interval")
	}
	if code := errCode(t, err); code != clierr.InvalidInterval {
		t.Errorf("code = %s, want %s", code, clierr.InvalidInterval)
	}
}

func sampleSchedule(day date.Date) *planner.Schedule {
	work := "write-report-20251120"
	return &planner.Schedule{
		Date: day,
		Blocks: []planner.Block{
			{Interval: timegrid.Interval{Start: day.At(9, 0, time.UTC), End: day.At(10, 30, time.UTC)}, TaskID: &work},
			{Interval: timegrid.Interval{Start: day.At(10, 30, time.UTC), End: day.At(10, 45, time.UTC)}},
		},
		Unscheduled: []planner.Unscheduled{
			{TaskID: "marathon-prep-20251120", Reason: planner.ReasonNoSlot},
		},
	}
}

func TestScheduleRoundTrip(t *testing.T) {
	st := newTestStore(t)
	day := date.New(2025, time.November, 24)

	if err := st.SaveSchedule(sampleSchedule(day)); err != nil {
		t.Fatalf("save schedule: %v", err)
	}

	got, err := st.LoadSchedule(day)
	if err != nil {
		t.Fatalf("load schedule: %v", err)
	}
	if got.Date.String() != "2025-11-24" {
		t.Errorf("date = %s", got.Date)
	}
	if len(got.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(got.Blocks))
	}
	if got.Blocks[0].TaskID == nil || *got.Blocks[0].TaskID != "write-report-20251120" {
		t.Errorf("task block lost its id: %+v", got.Blocks[0])
	}
	if !got.Blocks[1].IsBreak() {
		t.Errorf("break block gained an id: %+v", got.Blocks[1])
	}
	if len(got.Unscheduled) != 1 || got.Unscheduled[0].Reason != planner.ReasonNoSlot {
		t.Errorf("unscheduled lost: %+v", got.Unscheduled)
	}
}

func TestLoadScheduleMissing(t *testing.T) {
	st := newTestStore(t)
	_, err := st.LoadSchedule(date.New(2025, time.November, 24))
	if err == nil {
		t.Fatal("expected error for missing schedule")
	}
	if code := errCode(t, err); code != clierr.ScheduleNotFound {
		t.Errorf("code = %s, want %s", code, clierr.ScheduleNotFound)
	}
}

func TestLoadScheduleDateMismatch(t *testing.T) {
	st := newTestStore(t)
	day := date.New(2025, time.November, 24)

	if err := st.SaveSchedule(sampleSchedule(day)); err != nil {
		t.Fatalf("save schedule: %v", err)
	}
	// Simulate a renamed file: the name says one day, the content another.
	src := filepath.Join(st.cfg.SchedulesPath(), "2025-11-24.json")
	dst := filepath.Join(st.cfg.SchedulesPath(), "2025-11-25.json")
	if err := os.Rename(src, dst); err != nil {
		t.Fatalf("rename: %v", err)
	}

	_, err := st.LoadSchedule(day.AddDays(1))
	if err == nil {
		t.Fatal("expected error for mismatched schedule date")
	}
	if code := errCode(t, err); code != clierr.DataIntegrity {
		t.Errorf("code = %s, want %s", code, clierr.DataIntegrity)
	}
}

func TestPruneSchedules(t *testing.T) {
	st := newTestStore(t)
	days := []date.Date{
		date.New(2025, time.November, 20),
		date.New(2025, time.November, 24),
		date.New(2025, time.November, 28),
	}
	for _, d := range days {
		if err := st.SaveSchedule(sampleSchedule(d)); err != nil {
			t.Fatalf("save schedule %s: %v", d, err)
		}
	}
	stray := filepath.Join(st.cfg.SchedulesPath(), "notes.txt")
	if err := os.WriteFile(stray, []byte("keep me"), 0o600); err != nil {
		t.Fatalf("write stray file: %v", err)
	}

	removed, err := st.PruneSchedules(date.New(2025, time.November, 25))
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	if _, err := st.LoadSchedule(days[2]); err != nil {
		t.Errorf("recent schedule removed: %v", err)
	}
	if _, err := st.LoadSchedule(days[0]); err == nil {
		t.Error("old schedule survived prune")
	}
	if _, err := os.Stat(stray); err != nil {
		t.Errorf("stray file removed: %v", err)
	}
}

func TestLogMutationAppendsEntries(t *testing.T) {
	dir := t.TempDir()

	LogMutation(dir, ActionAdd, "call-the-dentist-20251124", "extracted from text")
	LogMutation(dir, ActionPlan, "", "planned 3 tasks")

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], `"action":"add"`) || !strings.Contains(lines[0], "call-the-dentist-20251124") {
		t.Errorf("first line missing fields: %s", lines[0])
	}
	// Entries without a task keep task_id out of the record entirely.
	if strings.Contains(lines[1], "task_id") {
		t.Errorf("empty task_id serialized: %s", lines[1])
	}
}

func TestLogTruncatesOldestEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, LogFileName)

	var buf strings.Builder
	overflow := 25
	for i := 0; i < maxLogEntries+overflow; i++ {
		fmt.Fprintf(&buf, `{"timestamp":"2025-11-24T09:00:00Z","action":"add","detail":"entry %d"}`+"\n", i)
	}
	if err := os.WriteFile(path, []byte(buf.String()), 0o600); err != nil {
		t.Fatalf("seed log: %v", err)
	}

	if err := AppendLog(dir, LogEntry{Timestamp: time.Now(), Action: ActionDone, Detail: "latest"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != maxLogEntries {
		t.Fatalf("expected %d lines after truncation, got %d", maxLogEntries, len(lines))
	}
	if !strings.Contains(lines[0], fmt.Sprintf("entry %d", overflow+1)) {
		t.Errorf("oldest surviving line unexpected: %s", lines[0])
	}
	if !strings.Contains(lines[len(lines)-1], "latest") {
		t.Errorf("newest entry missing: %s", lines[len(lines)-1])
	}
}
