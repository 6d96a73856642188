package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/dayplan/internal/clierr"
	"github.com/twiced-technology-gmbh/dayplan/internal/config"
	"github.com/twiced-technology-gmbh/dayplan/internal/date"
	"github.com/twiced-technology-gmbh/dayplan/internal/planner"
	"github.com/twiced-technology-gmbh/dayplan/internal/task"
	"github.com/twiced-technology-gmbh/dayplan/internal/timegrid"
)

const (
	blockedFileName = "blocked.yml"
	lockName        = LockFileName
	stateFileMode   = 0o600
	dirMode         = 0o750
)

// FileStore keeps all state as plain files inside the planner directory:
// tasks as frontmatter markdown under tasks/, blocked intervals in
// blocked.yml, schedules as JSON under schedules/. Mutations take an
// advisory lock on .lock so concurrent invocations do not interleave writes.
type FileStore struct {
	cfg      *config.Config
	warnings []task.ReadWarning
}

// NewFileStore creates a FileStore over the planner directory described
// by cfg.
func NewFileStore(cfg *config.Config) *FileStore {
	return &FileStore{cfg: cfg}
}

// Dir returns the planner directory the store operates on.
func (s *FileStore) Dir() string { return s.cfg.Dir() }

// Tasks reads every task file in id order. Malformed files are skipped
// and recorded as warnings, retrievable via Warnings.
func (s *FileStore) Tasks() ([]*task.Task, error) {
	tasks, warnings, err := task.ReadAllLenient(s.cfg.TasksPath())
	if err != nil {
		return nil, err
	}
	s.warnings = warnings
	return tasks, nil
}

// Warnings returns the non-fatal read warnings from the most recent
// Tasks call.
func (s *FileStore) Warnings() []task.ReadWarning {
	return s.warnings
}

// SaveTask validates and writes a task file named after its id.
func (s *FileStore) SaveTask(t *task.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}

	unlock, err := acquireLock(s.lockPath())
	if err != nil {
		return fmt.Errorf("acquiring lock: %w", err)
	}
	defer unlock() //nolint:errcheck // best-effort unlock on exit

	if err := os.MkdirAll(s.cfg.TasksPath(), dirMode); err != nil {
		return fmt.Errorf("creating tasks directory: %w", err)
	}
	return task.Write(task.Path(s.cfg.TasksPath(), t.ID), t)
}

// Blocked returns the blocked intervals overlapping the given day in the
// configured timezone, sorted by start time.
func (s *FileStore) Blocked(day date.Date) ([]BlockedInterval, error) {
	all, err := s.readBlocked()
	if err != nil {
		return nil, err
	}

	loc, err := s.cfg.Preferences.Location()
	if err != nil {
		return nil, err
	}
	window := timegrid.Interval{Start: day.At(0, 0, loc), End: day.AddDays(1).At(0, 0, loc)}

	var out []BlockedInterval
	for _, iv := range all {
		if iv.Overlaps(window) {
			out = append(out, iv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

// AddBlocked validates and appends a blocked interval to blocked.yml.
func (s *FileStore) AddBlocked(iv BlockedInterval) error {
	if err := iv.Validate(); err != nil {
		return clierr.Newf(clierr.InvalidInterval, "%v", err)
	}

	unlock, err := acquireLock(s.lockPath())
	if err != nil {
		return fmt.Errorf("acquiring lock: %w", err)
	}
	defer unlock() //nolint:errcheck // best-effort unlock on exit

	all, err := s.readBlocked()
	if err != nil {
		return err
	}
	all = append(all, iv)

	data, err := yaml.Marshal(blockedFile{Blocked: all})
	if err != nil {
		return fmt.Errorf("marshaling blocked intervals: %w", err)
	}
	return os.WriteFile(s.blockedPath(), data, stateFileMode)
}

// SaveSchedule writes the schedule as indented JSON named after its date.
func (s *FileStore) SaveSchedule(sched *planner.Schedule) error {
	unlock, err := acquireLock(s.lockPath())
	if err != nil {
		return fmt.Errorf("acquiring lock: %w", err)
	}
	defer unlock() //nolint:errcheck // best-effort unlock on exit

	if err := os.MkdirAll(s.cfg.SchedulesPath(), dirMode); err != nil {
		return fmt.Errorf("creating schedules directory: %w", err)
	}

	data, err := json.MarshalIndent(sched, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling schedule: %w", err)
	}
	data = append(data, '\n')

	return os.WriteFile(s.schedulePath(sched.Date), data, stateFileMode)
}

// LoadSchedule reads the stored schedule for the given day.
func (s *FileStore) LoadSchedule(day date.Date) (*planner.Schedule, error) {
	data, err := os.ReadFile(s.schedulePath(day)) //nolint:gosec // schedule path from trusted planner dir
	if err != nil {
		if os.IsNotExist(err) {
			return nil, clierr.Newf(clierr.ScheduleNotFound, "no schedule stored for %s", day)
		}
		return nil, fmt.Errorf("reading schedule: %w", err)
	}

	var sched planner.Schedule
	if err := json.Unmarshal(data, &sched); err != nil {
		return nil, clierr.Newf(clierr.DataIntegrity, "parsing schedule for %s: %v", day, err).
			WithDetails(map[string]any{"date": day.String()})
	}
	if sched.Date.String() != day.String() {
		return nil, clierr.Newf(clierr.DataIntegrity,
			"schedule file for %s carries date %s", day, sched.Date).
			WithDetails(map[string]any{"date": day.String()})
	}
	return &sched, nil
}

// PruneSchedules deletes schedule files dated strictly before the cutoff.
// Files whose names do not parse as dates are left alone.
func (s *FileStore) PruneSchedules(before date.Date) (int, error) {
	unlock, err := acquireLock(s.lockPath())
	if err != nil {
		return 0, fmt.Errorf("acquiring lock: %w", err)
	}
	defer unlock() //nolint:errcheck // best-effort unlock on exit

	entries, err := os.ReadDir(s.cfg.SchedulesPath())
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading schedules directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		day, err := date.Parse(name[:len(name)-len(".json")])
		if err != nil {
			continue
		}
		if !day.Before(before.Time) {
			continue
		}
		if err := os.Remove(filepath.Join(s.cfg.SchedulesPath(), name)); err != nil {
			return removed, fmt.Errorf("removing schedule %s: %w", name, err)
		}
		removed++
	}
	return removed, nil
}

func (s *FileStore) lockPath() string {
	return filepath.Join(s.cfg.Dir(), lockName)
}

func (s *FileStore) blockedPath() string {
	return filepath.Join(s.cfg.Dir(), blockedFileName)
}

func (s *FileStore) schedulePath(day date.Date) string {
	return filepath.Join(s.cfg.SchedulesPath(), day.String()+".json")
}

// blockedFile is the on-disk shape of blocked.yml.
type blockedFile struct {
	Blocked []BlockedInterval `yaml:"blocked"`
}

func (s *FileStore) readBlocked() ([]BlockedInterval, error) {
	data, err := os.ReadFile(s.blockedPath()) //nolint:gosec // blocked path from trusted planner dir
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading blocked intervals: %w", err)
	}

	var bf blockedFile
	if err := yaml.Unmarshal(data, &bf); err != nil {
		return nil, clierr.Config("parsing %s: %v", s.blockedPath(), err)
	}
	return bf.Blocked, nil
}
