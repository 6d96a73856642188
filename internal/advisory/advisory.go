// Package advisory models external scheduling hints (weather, traffic,
// research suggestions) and the sources that supply them. Advisories are
// read-only planner input: a failing or empty source means "no advisories",
// never an error the caller has to handle.
package advisory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/dayplan/internal/date"
	"github.com/twiced-technology-gmbh/dayplan/internal/timegrid"
)

// FileName is the advisory file inside the planner directory.
const FileName = "advisories.yml"

// Kind classifies where an advisory comes from.
type Kind string

const (
	Weather  Kind = "weather"
	Traffic  Kind = "traffic"
	Research Kind = "research"
)

// Adjustment names the scheduling reaction an advisory recommends.
type Adjustment string

const (
	AvoidOutdoor Adjustment = "avoid-outdoor"
	AddBuffer    Adjustment = "add-buffer-minutes"
	PreferWindow Adjustment = "prefer-window"
)

// Advisory is one external hint with the window it applies to.
type Advisory struct {
	Kind       Kind              `yaml:"kind" json:"kind"`
	Window     timegrid.Interval `yaml:"window" json:"window"`
	Adjustment Adjustment        `yaml:"adjustment" json:"adjustment"`
	Buffer     int               `yaml:"buffer_minutes,omitempty" json:"buffer_minutes,omitempty"`
	Note       string            `yaml:"note,omitempty" json:"note,omitempty"`
}

// Validate checks that the advisory is internally consistent.
func (a Advisory) Validate() error {
	switch a.Kind {
	case Weather, Traffic, Research:
	default:
		return fmt.Errorf("unknown advisory kind %q", a.Kind)
	}
	switch a.Adjustment {
	case AvoidOutdoor, AddBuffer, PreferWindow:
	default:
		return fmt.Errorf("unknown advisory adjustment %q", a.Adjustment)
	}
	if a.Adjustment == AddBuffer && a.Buffer <= 0 {
		return fmt.Errorf("advisory %s requires positive buffer_minutes", AddBuffer)
	}
	if err := a.Window.Validate(); err != nil {
		return fmt.Errorf("advisory window: %w", err)
	}
	return nil
}

// Source supplies the advisories relevant to one day.
type Source interface {
	Advisories(ctx context.Context, day date.Date) ([]Advisory, error)
}

// FileSource reads advisories from advisories.yml in the planner directory.
// A missing file, a parse failure, or an entry that fails validation all
// degrade to fewer (or no) advisories rather than an error.
type FileSource struct {
	Dir string
	Loc *time.Location // day boundaries; nil means UTC
}

type advisoryFile struct {
	Advisories []Advisory `yaml:"advisories"`
}

// Advisories returns the valid entries whose window overlaps the given day.
func (s FileSource) Advisories(_ context.Context, day date.Date) ([]Advisory, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir, FileName)) //nolint:gosec // path from trusted planner dir
	if err != nil {
		return nil, nil
	}

	var file advisoryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil
	}

	loc := s.Loc
	if loc == nil {
		loc = time.UTC
	}
	dayStart := day.At(0, 0, loc)
	dayEnd := day.AddDays(1).At(0, 0, loc)
	var out []Advisory
	for _, a := range file.Advisories {
		if a.Validate() != nil {
			continue
		}
		if a.Window.End.After(dayStart) && a.Window.Start.Before(dayEnd) {
			out = append(out, a)
		}
	}
	return out, nil
}

// StaticSource wraps a fixed advisory slice. Used by tests and by the TUI
// when re-planning with already loaded advisories.
type StaticSource []Advisory

// Advisories returns the wrapped slice regardless of day.
func (s StaticSource) Advisories(_ context.Context, _ date.Date) ([]Advisory, error) {
	return []Advisory(s), nil
}
