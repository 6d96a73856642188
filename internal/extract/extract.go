// Package extract turns free-text utterances into structured tasks using
// an ordered rule pipeline: clause segmentation, then per clause priority,
// duration, due date, recurrence, tags, and title cleanup. Rule order is
// the precedence contract for ambiguous input. Extraction never fails; at
// worst it degrades to a single task carrying the whole text as title.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/dayplan/internal/date"
	"github.com/twiced-technology-gmbh/dayplan/internal/task"
)

// Defaults applied when Options fields are zero.
const (
	DefaultDuration = 60
	DefaultMaxTags  = 4
)

// Options tune extraction. The zero value is usable.
type Options struct {
	DefaultDuration int            // minutes assigned when no duration phrase matches
	MaxTags         int            // cap on inferred tags per task
	Location        *time.Location // timezone for resolving date words
}

// Extractor parses utterances into tasks. Safe for concurrent use.
type Extractor struct {
	opts Options
}

// New creates an Extractor, filling unset options with defaults.
func New(opts Options) *Extractor {
	if opts.DefaultDuration <= 0 {
		opts.DefaultDuration = DefaultDuration
	}
	if opts.MaxTags <= 0 {
		opts.MaxTags = DefaultMaxTags
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Extractor{opts: opts}
}

// Extract parses text into zero or more tasks. The supplied now anchors
// all relative date words; the wall clock is never consulted.
func (e *Extractor) Extract(text string, now time.Time) []*task.Task {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	today := date.FromTime(now.In(e.opts.Location))
	seen := make(map[string]bool)

	var tasks []*task.Task
	for _, clause := range segment(text) {
		t := e.parseClause(clause, now, today)
		if t == nil {
			continue
		}
		t.ID = task.EnsureUniqueID(task.NewID(t.Title, today), func(id string) bool {
			return seen[id]
		})
		seen[t.ID] = true
		tasks = append(tasks, t)
	}

	if len(tasks) == 0 {
		// Nothing recognizable: degrade to one task carrying the text.
		title := strings.Join(strings.Fields(text), " ")
		t := &task.Task{
			Title:    title,
			Priority: task.PriorityMedium,
			Duration: e.opts.DefaultDuration,
			Tags:     []string{},
			Status:   task.StatusPending,
			Created:  now,
			Updated:  now,
		}
		t.ID = task.NewID(title, today)
		tasks = append(tasks, t)
	}
	return tasks
}

// ResolveDate resolves a single natural-language date expression ("friday",
// "tomorrow", "2025-12-01") against now. Used by reschedule flows so they
// share the extraction vocabulary.
func (e *Extractor) ResolveDate(expr string, now time.Time) (date.Date, bool) {
	today := date.FromTime(now.In(e.opts.Location))
	due, _ := detectDue(expr, today)
	if due == nil {
		return date.Date{}, false
	}
	return *due, true
}

func (e *Extractor) parseClause(clause string, now time.Time, today date.Date) *task.Task {
	working := strings.TrimSpace(clause)
	if working == "" {
		return nil
	}

	priority := detectPriority(working)

	minutes, working := detectDuration(working, e.opts.DefaultDuration)
	due, working := detectDue(working, today)
	recurrence, working := detectRecurrence(working)
	tags := detectTags(clause, e.opts.MaxTags)

	title := cleanTitle(working)
	if title == "" {
		// Degrade rather than drop: the raw clause becomes the title.
		title = strings.Trim(strings.TrimSpace(clause), " .,;:!-")
	}
	if title == "" {
		return nil
	}

	return &task.Task{
		Title:      title,
		Priority:   priority,
		Duration:   minutes,
		Due:        due,
		Tags:       tags,
		Recurrence: recurrence,
		Status:     task.StatusPending,
		Created:    now,
		Updated:    now,
	}
}

// Segmentation boundaries. Hard boundaries always split; soft boundaries
// split only when both sides carry a verb-like token, so noun lists
// ("meeting, presentation, and budget review") survive intact.
var (
	numberedRe = regexp.MustCompile(`(?:^|\s)\d+[.)]\s+`)
	hardRe     = regexp.MustCompile(`\s*(?:;|\n+[-*]?\s*)\s*`)
	softRe     = regexp.MustCompile(`(?i)(,?\s+and\s+|,\s*then\s+|[.!?]\s+)`)
)

func segment(text string) []string {
	var clauses []string
	for _, piece := range splitHard(text) {
		clauses = append(clauses, splitSoft(piece)...)
	}
	return clauses
}

func splitHard(text string) []string {
	var pieces []string
	for _, p := range numberedRe.Split(text, -1) {
		for _, q := range hardRe.Split(p, -1) {
			q = strings.TrimSpace(q)
			if q != "" {
				pieces = append(pieces, q)
			}
		}
	}
	return pieces
}

// splitSoft walks the soft boundaries left to right, accumulating text
// until both the accumulated clause and the next fragment contain a verb.
// Failed boundaries are stitched back with their original separator.
func splitSoft(text string) []string {
	locs := softRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []string{strings.TrimSpace(text)}
	}

	var clauses []string
	current := ""
	pos := 0
	for _, loc := range locs {
		fragment := text[pos:loc[0]]
		sep := text[loc[0]:loc[1]]
		current += fragment
		rest := text[loc[1]:]
		if hasVerb(current) && hasVerb(rest) {
			clauses = append(clauses, strings.TrimSpace(current))
			current = ""
		} else {
			current += sep
		}
		pos = loc[1]
	}
	current += text[pos:]
	if c := strings.TrimSpace(current); c != "" {
		clauses = append(clauses, c)
	}
	return clauses
}

func detectPriority(clause string) string {
	lower := strings.ToLower(clause)
	for _, w := range highMarkers {
		if strings.Contains(lower, w) {
			return task.PriorityHigh
		}
	}
	if bangsRe.MatchString(clause) || shoutRe.MatchString(clause) {
		return task.PriorityHigh
	}
	for _, w := range lowMarkers {
		if strings.Contains(lower, w) {
			return task.PriorityLow
		}
	}
	for _, w := range hedgeWords {
		if containsWord(lower, w) {
			return task.PriorityLow
		}
	}
	return task.PriorityMedium
}

// detectDuration returns the minutes of the first matching duration
// phrase (or the fallback) and the clause with the phrase removed.
func detectDuration(clause string, fallback int) (int, string) {
	for _, rule := range durationRules {
		m := rule.re.FindStringSubmatchIndex(clause)
		if m == nil {
			continue
		}
		groups := []string{clause[m[0]:m[1]]}
		for i := 2; i < len(m); i += 2 {
			if m[i] < 0 {
				groups = append(groups, "")
			} else {
				groups = append(groups, clause[m[i]:m[i+1]])
			}
		}
		minutes := rule.minutes(groups)
		if minutes <= 0 {
			continue
		}
		return minutes, stripSpan(clause, m[0], m[1])
	}
	return fallback, clause
}

// detectDue returns the first matching due-date expression resolved
// against today, plus the clause with the phrase removed.
func detectDue(clause string, today date.Date) (*date.Date, string) {
	if m := todayRe.FindStringIndex(clause); m != nil {
		return ref(today), stripSpan(clause, m[0], m[1])
	}
	if m := tomorrowRe.FindStringIndex(clause); m != nil {
		return ref(today.AddDays(1)), stripSpan(clause, m[0], m[1])
	}
	if m := nextWeekRe.FindStringIndex(clause); m != nil {
		return ref(today.AddDays(7)), stripSpan(clause, m[0], m[1])
	}
	if m := inDaysRe.FindStringSubmatchIndex(clause); m != nil {
		n, _ := strconv.Atoi(clause[m[2]:m[3]])
		return ref(today.AddDays(n)), stripSpan(clause, m[0], m[1])
	}
	if m := isoDateRe.FindStringSubmatchIndex(clause); m != nil {
		d, err := date.Parse(clause[m[2]:m[3]] + "-" + clause[m[4]:m[5]] + "-" + clause[m[6]:m[7]])
		if err == nil {
			return ref(d), stripSpan(clause, m[0], m[1])
		}
	}
	if m := slashDateRe.FindStringSubmatchIndex(clause); m != nil {
		if d, ok := resolveSlashDate(clause, m, today); ok {
			return ref(d), stripSpan(clause, m[0], m[1])
		}
	}
	if m := weekdayRe.FindStringSubmatchIndex(clause); m != nil {
		name := strings.ToLower(clause[m[2]:m[3]])
		if w, ok := weekdayByName(name); ok {
			return ref(today.NextWeekday(w)), stripSpan(clause, m[0], m[1])
		}
	}
	return nil, clause
}

func resolveSlashDate(clause string, m []int, today date.Date) (date.Date, bool) {
	month, _ := strconv.Atoi(clause[m[2]:m[3]])
	day, _ := strconv.Atoi(clause[m[4]:m[5]])
	year := today.Year()
	if m[6] >= 0 {
		year, _ = strconv.Atoi(clause[m[6]:m[7]])
		if year < 100 {
			year += 2000
		}
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return date.Date{}, false
	}
	return date.New(year, time.Month(month), day), true
}

func weekdayByName(name string) (time.Weekday, bool) {
	days := map[string]time.Weekday{
		"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
		"wednesday": time.Wednesday, "thursday": time.Thursday,
		"friday": time.Friday, "saturday": time.Saturday,
	}
	w, ok := days[name]
	return w, ok
}

func detectRecurrence(clause string) (task.Recurrence, string) {
	m := recurrenceRe.FindStringSubmatchIndex(clause)
	if m == nil {
		return task.RecurNone, clause
	}
	word := strings.ToLower(clause[m[2]:m[3]])
	stripped := stripSpan(clause, m[0], m[1])
	if strings.Contains(word, "week") {
		return task.RecurWeekly, stripped
	}
	return task.RecurDaily, stripped
}

func detectTags(clause string, max int) []string {
	lower := strings.ToLower(clause)
	tags := []string{}
	for _, rule := range tagRules {
		if len(tags) >= max {
			break
		}
		for _, kw := range rule.keywords {
			if containsWord(lower, kw) {
				tags = append(tags, rule.tag)
				break
			}
		}
	}
	return tags
}

func cleanTitle(s string) string {
	s = priorityTrim.ReplaceAllString(s, " ")
	s = bangsRe.ReplaceAllString(s, " ")
	for {
		trimmed := fillerRe.ReplaceAllString(strings.TrimSpace(s), "")
		if trimmed == s {
			break
		}
		s = trimmed
	}
	s = strings.Join(strings.Fields(s), " ")
	s = strings.Trim(s, " .,;:!-/")
	// Drop a dangling connective left behind by phrase removal.
	s = strings.TrimSuffix(s, " for")
	s = strings.TrimSuffix(s, " by")
	s = strings.TrimSuffix(s, " on")
	return strings.TrimSpace(s)
}

// stripSpan removes [from,to) and folds the leading "for " that often
// precedes duration phrases ("for 2 hours").
func stripSpan(s string, from, to int) string {
	head := s[:from]
	if strings.HasSuffix(strings.ToLower(head), "for ") {
		head = head[:len(head)-4]
	}
	return strings.TrimSpace(head) + " " + strings.TrimSpace(s[to:])
}

func containsWord(haystack, word string) bool {
	idx := 0
	for {
		i := strings.Index(haystack[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isWordChar(haystack[start-1])
		afterOK := end == len(haystack) || !isWordChar(haystack[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func ref(d date.Date) *date.Date { return &d }
