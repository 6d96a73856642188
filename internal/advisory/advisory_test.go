package advisory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/twiced-technology-gmbh/dayplan/internal/date"
	"github.com/twiced-technology-gmbh/dayplan/internal/timegrid"
)

func span(t *testing.T, startHour, endHour int) timegrid.Interval {
	t.Helper()
	day := time.Date(2025, time.November, 24, 0, 0, 0, 0, time.UTC)
	iv, err := timegrid.NewInterval(day.Add(time.Duration(startHour)*time.Hour), day.Add(time.Duration(endHour)*time.Hour))
	if err != nil {
		t.Fatalf("interval: %v", err)
	}
	return iv
}

func TestAdvisoryValidate(t *testing.T) {
	cases := []struct {
		name    string
		adv     Advisory
		wantErr bool
	}{
		{
			name: "valid weather",
			adv:  Advisory{Kind: Weather, Adjustment: AvoidOutdoor, Window: span(t, 13, 16)},
		},
		{
			name: "valid traffic with buffer",
			adv:  Advisory{Kind: Traffic, Adjustment: AddBuffer, Buffer: 20, Window: span(t, 8, 10)},
		},
		{
			name:    "unknown kind",
			adv:     Advisory{Kind: "astrology", Adjustment: AvoidOutdoor, Window: span(t, 13, 16)},
			wantErr: true,
		},
		{
			name:    "unknown adjustment",
			adv:     Advisory{Kind: Weather, Adjustment: "panic", Window: span(t, 13, 16)},
			wantErr: true,
		},
		{
			name:    "buffer advisory without minutes",
			adv:     Advisory{Kind: Traffic, Adjustment: AddBuffer, Window: span(t, 8, 10)},
			wantErr: true,
		},
		{
			name:    "inverted window",
			adv:     Advisory{Kind: Research, Adjustment: PreferWindow, Window: timegrid.Interval{Start: span(t, 13, 16).End, End: span(t, 13, 16).Start}},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.adv.Validate()
			if tc.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestFileSourceMissingFile(t *testing.T) {
	src := FileSource{Dir: t.TempDir()}
	got, err := src.Advisories(context.Background(), date.New(2025, time.November, 24))
	if err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d advisories, want 0", len(got))
	}
}

func TestFileSourceMalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("advisories: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	src := FileSource{Dir: dir}
	got, err := src.Advisories(context.Background(), date.New(2025, time.November, 24))
	if err != nil {
		t.Fatalf("parse failure must not error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d advisories, want 0", len(got))
	}
}

func TestFileSourceFiltersByDayAndValidity(t *testing.T) {
	content := `advisories:
  - kind: weather
    adjustment: avoid-outdoor
    window:
      start: 2025-11-24T13:00:00Z
      end: 2025-11-24T16:00:00Z
    note: heavy rain
  - kind: traffic
    adjustment: add-buffer-minutes
    buffer_minutes: 20
    window:
      start: 2025-11-25T08:00:00Z
      end: 2025-11-25T10:00:00Z
  - kind: traffic
    adjustment: add-buffer-minutes
    window:
      start: 2025-11-24T08:00:00Z
      end: 2025-11-24T10:00:00Z
`
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	src := FileSource{Dir: dir}
	got, err := src.Advisories(context.Background(), date.New(2025, time.November, 24))
	if err != nil {
		t.Fatalf("Advisories: %v", err)
	}

	// The second entry is for the next day, the third has no buffer minutes.
	if len(got) != 1 {
		t.Fatalf("got %d advisories, want 1: %+v", len(got), got)
	}
	if got[0].Kind != Weather || got[0].Note != "heavy rain" {
		t.Errorf("wrong advisory survived: %+v", got[0])
	}
}

func TestStaticSource(t *testing.T) {
	advs := []Advisory{{Kind: Research, Adjustment: PreferWindow, Window: span(t, 9, 12)}}
	got, err := StaticSource(advs).Advisories(context.Background(), date.New(2025, time.November, 24))
	if err != nil {
		t.Fatalf("StaticSource: %v", err)
	}
	if len(got) != 1 || got[0].Kind != Research {
		t.Errorf("got %+v", got)
	}
}
