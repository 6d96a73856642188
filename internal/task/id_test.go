package task

import (
	"testing"
	"time"

	"github.com/twiced-technology-gmbh/dayplan/internal/date"
)

func TestSlug(t *testing.T) {
	cases := []struct {
		name  string
		title string
		want  string
	}{
		{"simple", "Call the dentist", "call-the-dentist"},
		{"punctuation collapses", "fix: server / DB issues!!", "fix-server-db-issues"},
		{"truncates at word boundary", "prepare the quarterly budget review deck", "prepare-the"},
		{"no alphanumerics falls back", "!!! ???", "task"},
		{"unicode stripped", "café run", "caf-run"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Slug(tc.title); got != tc.want {
				t.Errorf("Slug(%q) = %q, want %q", tc.title, got, tc.want)
			}
		})
	}
}

func TestNewIDIsDeterministic(t *testing.T) {
	d := date.New(2025, time.November, 24)
	a := NewID("Call the dentist", d)
	b := NewID("call the dentist!", d)
	if a != b {
		t.Errorf("normalized titles diverge: %q vs %q", a, b)
	}
	if want := "call-the-dentist-20251124"; a != want {
		t.Errorf("NewID = %q, want %q", a, want)
	}
}

func TestEnsureUniqueID(t *testing.T) {
	taken := map[string]bool{
		"call-mom-20251124":   true,
		"call-mom-20251124-2": true,
	}
	exists := func(id string) bool { return taken[id] }

	if got := EnsureUniqueID("walk-dog-20251124", exists); got != "walk-dog-20251124" {
		t.Errorf("free id changed: %q", got)
	}
	if got := EnsureUniqueID("call-mom-20251124", exists); got != "call-mom-20251124-3" {
		t.Errorf("collision counter = %q, want call-mom-20251124-3", got)
	}
}

func TestFilename(t *testing.T) {
	if got := Filename("call-mom-20251124"); got != "call-mom-20251124.md" {
		t.Errorf("Filename = %q", got)
	}
}
