package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/dayplan/internal/clierr"
	"github.com/twiced-technology-gmbh/dayplan/internal/date"
	"github.com/twiced-technology-gmbh/dayplan/internal/timegrid"
)

const fileMode = 0o600

// Config is the on-disk planner configuration.
type Config struct {
	Preferences Preferences `yaml:"preferences"`
	Storage     Storage     `yaml:"storage,omitempty"`

	// dir is the absolute path to the planner directory (not serialized).
	dir string `yaml:"-"`
}

// Preferences are the scheduling knobs. They are read at the start of a
// planning call and never mutated mid-computation.
type Preferences struct {
	WorkHours       WorkHours `yaml:"work_hours"`
	FocusMinutes    int       `yaml:"focus_minutes"`
	BreakMinutes    int       `yaml:"break_minutes"`
	Timezone        string    `yaml:"timezone"`
	DefaultDuration int       `yaml:"default_duration_minutes"`
	AlertWindow     int       `yaml:"alert_window_minutes"`
	RetentionDays   int       `yaml:"retention_days"`
}

// WorkHours is the daily scheduling window as wall-clock bounds.
type WorkHours struct {
	Start string `yaml:"start"` // "HH:MM"
	End   string `yaml:"end"`   // "HH:MM"
}

// Storage selects the session store backend.
type Storage struct {
	Backend string `yaml:"backend,omitempty"` // files (default) or postgres
	DSN     string `yaml:"dsn,omitempty"`
}

// NewDefault creates a Config with default values.
func NewDefault() *Config {
	return &Config{
		Preferences: Preferences{
			WorkHours:       WorkHours{Start: DefaultWorkStart, End: DefaultWorkEnd},
			FocusMinutes:    DefaultFocusMinutes,
			BreakMinutes:    DefaultBreakMinutes,
			Timezone:        DefaultTimezone,
			DefaultDuration: DefaultDurationMinutes,
			AlertWindow:     DefaultAlertWindow,
			RetentionDays:   DefaultRetentionDays,
		},
		Storage: Storage{Backend: BackendFiles},
	}
}

// Dir returns the absolute path to the planner directory.
func (c *Config) Dir() string {
	return c.dir
}

// SetDir sets the planner directory path on the config.
func (c *Config) SetDir(dir string) {
	c.dir = dir
}

// ConfigPath returns the absolute path to the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.dir, ConfigFileName)
}

// TasksPath returns the absolute path to the tasks directory.
func (c *Config) TasksPath() string {
	return filepath.Join(c.dir, DefaultTasksDir)
}

// SchedulesPath returns the absolute path to the schedules directory.
func (c *Config) SchedulesPath() string {
	return filepath.Join(c.dir, DefaultSchedulesDir)
}

// Validate checks the config for errors. All violations are configuration
// errors: fatal, reported once, never retried.
func (c *Config) Validate() error {
	if err := c.Preferences.Validate(); err != nil {
		return err
	}
	switch c.Storage.Backend {
	case "", BackendFiles:
	case BackendPostgres:
		if c.Storage.DSN == "" {
			return clierr.Config("storage.backend %q requires storage.dsn", BackendPostgres)
		}
	default:
		return clierr.Config("unknown storage.backend %q (expected %q or %q)",
			c.Storage.Backend, BackendFiles, BackendPostgres)
	}
	return nil
}

// Validate checks the preferences for errors.
func (p Preferences) Validate() error {
	start, err := parseClock(p.WorkHours.Start)
	if err != nil {
		return clierr.Config("invalid work_hours.start %q: expected HH:MM", p.WorkHours.Start)
	}
	end, err := parseClock(p.WorkHours.End)
	if err != nil {
		return clierr.Config("invalid work_hours.end %q: expected HH:MM", p.WorkHours.End)
	}
	if end <= start {
		return clierr.Config("work_hours.end %s must be after work_hours.start %s",
			p.WorkHours.End, p.WorkHours.Start)
	}
	if p.FocusMinutes <= 0 {
		return clierr.Config("focus_minutes must be positive, got %d", p.FocusMinutes)
	}
	if p.BreakMinutes <= 0 {
		return clierr.Config("break_minutes must be positive, got %d", p.BreakMinutes)
	}
	if p.DefaultDuration <= 0 {
		return clierr.Config("default_duration_minutes must be positive, got %d", p.DefaultDuration)
	}
	if p.AlertWindow <= 0 {
		return clierr.Config("alert_window_minutes must be positive, got %d", p.AlertWindow)
	}
	if p.RetentionDays < 0 {
		return clierr.Config("retention_days must be >= 0, got %d", p.RetentionDays)
	}
	if _, err := time.LoadLocation(p.Timezone); err != nil {
		return clierr.Config("unknown timezone %q", p.Timezone)
	}
	return nil
}

// Location resolves the configured timezone.
func (p Preferences) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return nil, clierr.Config("unknown timezone %q", p.Timezone)
	}
	return loc, nil
}

// Window resolves the work-hours window on the given day in the configured
// timezone.
func (p Preferences) Window(d date.Date) (timegrid.Interval, error) {
	loc, err := p.Location()
	if err != nil {
		return timegrid.Interval{}, err
	}
	startMin, err := parseClock(p.WorkHours.Start)
	if err != nil {
		return timegrid.Interval{}, clierr.Config("invalid work_hours.start %q: expected HH:MM", p.WorkHours.Start)
	}
	endMin, err := parseClock(p.WorkHours.End)
	if err != nil {
		return timegrid.Interval{}, clierr.Config("invalid work_hours.end %q: expected HH:MM", p.WorkHours.End)
	}
	if endMin <= startMin {
		return timegrid.Interval{}, clierr.Config("work_hours.end %s must be after work_hours.start %s",
			p.WorkHours.End, p.WorkHours.Start)
	}
	return timegrid.Interval{
		Start: d.At(startMin/60, startMin%60, loc),
		End:   d.At(endMin/60, endMin%60, loc),
	}, nil
}

// parseClock parses "HH:MM" into minutes since midnight.
func parseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("missing colon in %q", s)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("bad hour in %q", s)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || len(mm) != 2 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("bad minute in %q", s)
	}
	return hour*60 + minute, nil
}

// Set updates a single configuration key from its string form. Used by
// `dayplan config set` and the preference-update intent. The caller is
// expected to Validate and Save afterwards.
func (c *Config) Set(key, value string) error {
	switch key {
	case "work_hours.start":
		c.Preferences.WorkHours.Start = value
	case "work_hours.end":
		c.Preferences.WorkHours.End = value
	case "timezone":
		c.Preferences.Timezone = value
	case "focus_minutes":
		return setInt(&c.Preferences.FocusMinutes, key, value)
	case "break_minutes":
		return setInt(&c.Preferences.BreakMinutes, key, value)
	case "default_duration_minutes":
		return setInt(&c.Preferences.DefaultDuration, key, value)
	case "alert_window_minutes":
		return setInt(&c.Preferences.AlertWindow, key, value)
	case "retention_days":
		return setInt(&c.Preferences.RetentionDays, key, value)
	case "storage.backend":
		c.Storage.Backend = value
	case "storage.dsn":
		c.Storage.DSN = value
	default:
		return clierr.Newf(clierr.InvalidInput, "unknown config key %q", key).
			WithDetails(map[string]any{"allowed": SettableKeys()})
	}
	return nil
}

func setInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return clierr.Newf(clierr.InvalidInput, "config key %s expects a number, got %q", key, value)
	}
	*dst = n
	return nil
}

// SettableKeys lists the keys accepted by Set, in display order.
func SettableKeys() []string {
	return []string{
		"work_hours.start", "work_hours.end", "timezone",
		"focus_minutes", "break_minutes", "default_duration_minutes",
		"alert_window_minutes", "retention_days",
		"storage.backend", "storage.dsn",
	}
}

// Init creates a new planner directory with default settings, including the
// tasks and schedules subdirectories.
func Init(dir string) (*Config, error) {
	const dirMode = 0o750

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg := NewDefault()
	cfg.SetDir(absDir)

	if err := os.MkdirAll(cfg.TasksPath(), dirMode); err != nil {
		return nil, fmt.Errorf("creating tasks directory: %w", err)
	}
	if err := os.MkdirAll(cfg.SchedulesPath(), dirMode); err != nil {
		return nil, fmt.Errorf("creating schedules directory: %w", err)
	}

	if err := cfg.Save(); err != nil {
		return nil, fmt.Errorf("writing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to its config file.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(c.ConfigPath(), data, fileMode)
}

// Load reads and validates a config from the given planner directory.
func Load(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	path := filepath.Join(absDir, ConfigFileName)
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted source
	if err != nil {
		if os.IsNotExist(err) {
			return nil, clierr.New(clierr.PlannerNotFound,
				"no planner directory found (run 'dayplan init' to create one)")
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, clierr.Config("parsing %s: %v", path, err)
	}

	cfg.dir = absDir
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults fills zero-valued preference fields so a hand-trimmed
// config.yml keeps working.
func applyDefaults(c *Config) {
	p := &c.Preferences
	if p.WorkHours.Start == "" {
		p.WorkHours.Start = DefaultWorkStart
	}
	if p.WorkHours.End == "" {
		p.WorkHours.End = DefaultWorkEnd
	}
	if p.FocusMinutes == 0 {
		p.FocusMinutes = DefaultFocusMinutes
	}
	if p.BreakMinutes == 0 {
		p.BreakMinutes = DefaultBreakMinutes
	}
	if p.Timezone == "" {
		p.Timezone = DefaultTimezone
	}
	if p.DefaultDuration == 0 {
		p.DefaultDuration = DefaultDurationMinutes
	}
	if p.AlertWindow == 0 {
		p.AlertWindow = DefaultAlertWindow
	}
	// RetentionDays keeps its zero value: 0 means pruning disabled.
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendFiles
	}
}

// FindDir walks upward from startDir looking for a planner directory
// containing config.yml, then falls back to ~/.config/dayplan. Returns the
// absolute path to the planner directory.
func FindDir(startDir string) (string, error) {
	absStart, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	dir := absStart
	for {
		candidate := filepath.Join(dir, DefaultDir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return filepath.Join(dir, DefaultDir), nil
		}

		// Also check if we're inside the planner directory itself.
		candidate = filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if home, err := os.UserHomeDir(); err == nil {
		fallback := filepath.Join(home, ".config", "dayplan")
		if _, err := os.Stat(filepath.Join(fallback, ConfigFileName)); err == nil {
			return fallback, nil
		}
	}

	return "", clierr.New(clierr.PlannerNotFound,
		"no planner directory found (run 'dayplan init' to create one)")
}
