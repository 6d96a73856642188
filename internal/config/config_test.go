package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/twiced-technology-gmbh/dayplan/internal/clierr"
	"github.com/twiced-technology-gmbh/dayplan/internal/date"
)

func TestNewDefaultValidates(t *testing.T) {
	if err := NewDefault().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"inverted window", func(c *Config) { c.Preferences.WorkHours = WorkHours{Start: "17:00", End: "09:00"} }},
		{"equal window", func(c *Config) { c.Preferences.WorkHours = WorkHours{Start: "09:00", End: "09:00"} }},
		{"bad clock syntax", func(c *Config) { c.Preferences.WorkHours.Start = "9am" }},
		{"out of range minute", func(c *Config) { c.Preferences.WorkHours.Start = "09:75" }},
		{"zero focus", func(c *Config) { c.Preferences.FocusMinutes = 0 }},
		{"negative break", func(c *Config) { c.Preferences.BreakMinutes = -5 }},
		{"zero default duration", func(c *Config) { c.Preferences.DefaultDuration = 0 }},
		{"unknown timezone", func(c *Config) { c.Preferences.Timezone = "Mars/Olympus" }},
		{"postgres without dsn", func(c *Config) { c.Storage = Storage{Backend: BackendPostgres} }},
		{"unknown backend", func(c *Config) { c.Storage = Storage{Backend: "carrier-pigeon"} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefault()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var ce *clierr.Error
			if !errors.As(err, &ce) {
				t.Fatalf("error is %T, want *clierr.Error", err)
			}
			if ce.Code != clierr.ConfigInvalid {
				t.Errorf("code = %s, want %s", ce.Code, clierr.ConfigInvalid)
			}
		})
	}
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"09:00", 540, false},
		{"9:05", 545, false},
		{"23:59", 1439, false},
		{"00:00", 0, false},
		{"24:00", 0, true},
		{"12:5", 0, true},
		{"noon", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := parseClock(tc.in)
		if tc.wantErr != (err != nil) {
			t.Errorf("parseClock(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if !tc.wantErr && got != tc.want {
			t.Errorf("parseClock(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestPreferencesWindow(t *testing.T) {
	p := NewDefault().Preferences
	day := date.New(2025, time.November, 24)

	w, err := p.Window(day)
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	wantStart := time.Date(2025, time.November, 24, 9, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, time.November, 24, 17, 0, 0, 0, time.UTC)
	if !w.Start.Equal(wantStart) || !w.End.Equal(wantEnd) {
		t.Errorf("window = %v, want [%v, %v)", w, wantStart, wantEnd)
	}

	p.WorkHours = WorkHours{Start: "17:00", End: "09:00"}
	if _, err := p.Window(day); err == nil {
		t.Error("inverted window must error")
	}
}

func TestInitLoadRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), DefaultDir)

	cfg, err := Init(dir)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	for _, p := range []string{cfg.TasksPath(), cfg.SchedulesPath(), cfg.ConfigPath()} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing %s: %v", p, err)
		}
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Preferences != cfg.Preferences {
		t.Errorf("preferences changed in round trip:\n got %+v\nwant %+v", loaded.Preferences, cfg.Preferences)
	}
}

func TestLoadFillsTrimmedConfig(t *testing.T) {
	dir := t.TempDir()
	content := "preferences:\n  work_hours:\n    start: \"08:30\"\n"
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Preferences.WorkHours.Start != "08:30" {
		t.Errorf("start = %q, want 08:30", cfg.Preferences.WorkHours.Start)
	}
	if cfg.Preferences.WorkHours.End != DefaultWorkEnd {
		t.Errorf("end = %q, want default %s", cfg.Preferences.WorkHours.End, DefaultWorkEnd)
	}
	if cfg.Preferences.FocusMinutes != DefaultFocusMinutes {
		t.Errorf("focus = %d, want default %d", cfg.Preferences.FocusMinutes, DefaultFocusMinutes)
	}
	if cfg.Storage.Backend != BackendFiles {
		t.Errorf("backend = %q, want %q", cfg.Storage.Backend, BackendFiles)
	}
}

func TestLoadMissingReturnsPlannerNotFound(t *testing.T) {
	_, err := Load(t.TempDir())
	var ce *clierr.Error
	if !errors.As(err, &ce) || ce.Code != clierr.PlannerNotFound {
		t.Fatalf("err = %v, want %s", err, clierr.PlannerNotFound)
	}
}

func TestSet(t *testing.T) {
	cfg := NewDefault()

	if err := cfg.Set("focus_minutes", "45"); err != nil {
		t.Fatalf("Set focus_minutes: %v", err)
	}
	if cfg.Preferences.FocusMinutes != 45 {
		t.Errorf("focus = %d, want 45", cfg.Preferences.FocusMinutes)
	}

	if err := cfg.Set("work_hours.start", "08:00"); err != nil {
		t.Fatalf("Set work_hours.start: %v", err)
	}
	if cfg.Preferences.WorkHours.Start != "08:00" {
		t.Errorf("start = %q, want 08:00", cfg.Preferences.WorkHours.Start)
	}

	if err := cfg.Set("focus_minutes", "soon"); err == nil {
		t.Error("non-numeric value must error")
	}
	if err := cfg.Set("favorite_color", "green"); err == nil {
		t.Error("unknown key must error")
	}
}

func TestFindDirWalksUp(t *testing.T) {
	root := t.TempDir()
	if _, err := Init(filepath.Join(root, DefaultDir)); err != nil {
		t.Fatalf("Init: %v", err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o750); err != nil {
		t.Fatal(err)
	}

	got, err := FindDir(nested)
	if err != nil {
		t.Fatalf("FindDir: %v", err)
	}
	want := filepath.Join(root, DefaultDir)
	if got != want {
		t.Errorf("FindDir = %q, want %q", got, want)
	}

	// From inside the planner directory itself.
	got, err = FindDir(want)
	if err != nil {
		t.Fatalf("FindDir from planner dir: %v", err)
	}
	if got != want {
		t.Errorf("FindDir = %q, want %q", got, want)
	}
}
