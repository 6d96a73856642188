package task

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/twiced-technology-gmbh/dayplan/internal/date"
)

const maxSlugLength = 20

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Slug converts a title to a short lowercase identifier fragment.
func Slug(title string) string {
	slug := strings.ToLower(title)
	slug = nonAlphanumeric.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	if len(slug) > maxSlugLength {
		// Truncate at word boundary.
		truncated := slug[:maxSlugLength]
		// Only trim to last hyphen if we cut mid-word.
		if slug[maxSlugLength] != '-' {
			if idx := strings.LastIndex(truncated, "-"); idx > 0 {
				truncated = truncated[:idx]
			}
		}
		slug = strings.TrimRight(truncated, "-")
	}

	if slug == "" {
		slug = "task"
	}
	return slug
}

// NewID derives the stable task id from the normalized title and the
// creation date: slug-YYYYMMDD. Identical title+date pairs produce
// identical ids; EnsureUniqueID resolves collisions.
func NewID(title string, created date.Date) string {
	return Slug(title) + "-" + created.Format("20060102")
}

// EnsureUniqueID appends a disambiguating counter (-2, -3, ...) until the
// id no longer collides according to exists.
func EnsureUniqueID(id string, exists func(string) bool) string {
	if !exists(id) {
		return id
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", id, n)
		if !exists(candidate) {
			return candidate
		}
	}
}

// Filename returns the task file name for an id.
func Filename(id string) string {
	return id + ".md"
}
