package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Priority markers, checked in order. The first matching rule wins.
var (
	highMarkers = []string{"urgent", "asap", "critical", "emergency", "immediately", "right away"}
	lowMarkers  = []string{"low priority", "someday", "when possible", "eventually", "no rush", "nice to have"}
	hedgeWords  = []string{"maybe", "might", "could", "optional"}

	bangsRe      = regexp.MustCompile(`!{2,}`)
	shoutRe      = regexp.MustCompile(`\b(URGENT|ASAP)\b`)
	priorityTrim = regexp.MustCompile(`(?i)\b(urgent|asap|critical|emergency|immediately|right away|low priority|no rush|when possible|nice to have|someday|eventually)\b[:!]*`)
)

// durationRule pairs a pattern with its minute conversion. Rules run in
// order; combined hour+minute forms come first so "1h 30m" is not read
// as a bare "1h".
type durationRule struct {
	re      *regexp.Regexp
	minutes func(groups []string) int
}

var durationRules = []durationRule{
	{
		re: regexp.MustCompile(`(?i)\b(\d+)\s*h(?:ours?|rs?)?\s*(?:and\s+)?(\d+)\s*m(?:in(?:ute)?s?)?\b`),
		minutes: func(g []string) int {
			return atoi(g[1])*60 + atoi(g[2])
		},
	},
	{
		re:      regexp.MustCompile(`(?i)\b(\d+)\s*hours?\b`),
		minutes: func(g []string) int { return atoi(g[1]) * 60 },
	},
	{
		re:      regexp.MustCompile(`(?i)\b(\d+)\s*hrs?\b`),
		minutes: func(g []string) int { return atoi(g[1]) * 60 },
	},
	{
		re:      regexp.MustCompile(`(?i)\b(\d+)\s*min(?:ute)?s?\b`),
		minutes: func(g []string) int { return atoi(g[1]) },
	},
	{
		re:      regexp.MustCompile(`(?i)\b(\d+)h\b`),
		minutes: func(g []string) int { return atoi(g[1]) * 60 },
	},
	{
		re:      regexp.MustCompile(`(?i)\b(\d+)m\b`),
		minutes: func(g []string) int { return atoi(g[1]) },
	},
}

// Due-date vocabulary. Expressions may carry a by/due/on/before prefix;
// weekday names resolve to the next occurrence strictly after today.
var (
	duePrefix    = `(?:(?:by|due|on|before)\s+)?`
	todayRe      = regexp.MustCompile(`(?i)\b` + duePrefix + `today\b`)
	tomorrowRe   = regexp.MustCompile(`(?i)\b` + duePrefix + `tomorrow\b`)
	weekdayRe    = regexp.MustCompile(`(?i)\b` + duePrefix + `(?:next\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	nextWeekRe   = regexp.MustCompile(`(?i)\b` + duePrefix + `next week\b`)
	inDaysRe     = regexp.MustCompile(`(?i)\bin\s+(\d+)\s+days?\b`)
	isoDateRe    = regexp.MustCompile(`(?i)\b` + duePrefix + `(\d{4})-(\d{2})-(\d{2})\b`)
	slashDateRe  = regexp.MustCompile(`(?i)\b(?:by|due|on|before)\s+(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?\b`)
	recurrenceRe = regexp.MustCompile(`(?i)\b(daily|every day|each day|weekly|every week|each week)\b`)
)

// fillerRe strips leading politeness and list-y prefixes from a clause.
var fillerRe = regexp.MustCompile(`(?i)^(?:i need to|i have to|i want to|i should|i must|we need to|please|remember to|don'?t forget to|make sure to|todo:?|task:?)\s+`)

// tagRule maps trigger keywords to a tag. Rules run in order and a tag
// is added at most once, so tag order follows the table, not the text.
type tagRule struct {
	tag      string
	keywords []string
}

var tagRules = []tagRule{
	{"work", []string{"work", "office", "meeting", "project", "deadline", "client", "report", "review", "presentation"}},
	{"personal", []string{"personal", "family", "friend", "home", "mom", "dad"}},
	{"health", []string{"doctor", "dentist", "gym", "exercise", "workout", "medication", "appointment"}},
	{"shopping", []string{"buy", "purchase", "shop", "grocery", "groceries", "store"}},
	{"communication", []string{"call", "email", "text", "message", "contact", "reply"}},
	{"travel", []string{"travel", "trip", "flight", "commute", "drive", "airport"}},
	{"finance", []string{"pay", "bill", "bank", "money", "budget", "invoice", "taxes"}},
	{"learning", []string{"learn", "study", "read", "course", "tutorial", "practice"}},
	{"maintenance", []string{"fix", "repair", "clean", "maintain", "organize", "declutter"}},
	{"outdoor", []string{"outdoor", "outside", "garden", "yard", "walk", "hike", "park", "run"}},
}

// verbLexicon gates soft clause splits: a boundary splits only when both
// sides contain one of these action words.
var verbLexicon = map[string]bool{}

func init() {
	verbs := []string{
		"add", "attend", "book", "build", "buy", "call", "cancel", "check",
		"clean", "complete", "cook", "create", "deploy", "draft", "drop",
		"email", "file", "finish", "fix", "get", "go", "learn", "make",
		"meet", "order", "organize", "pay", "pick", "plan", "practice",
		"prepare", "print", "read", "renew", "repair", "reply", "research",
		"review", "run", "schedule", "send", "shop", "sign", "start",
		"study", "submit", "take", "test", "text", "update", "visit",
		"walk", "water", "write",
	}
	for _, v := range verbs {
		verbLexicon[v] = true
	}
}

// hasVerb reports whether any word in s is in the verb lexicon.
func hasVerb(s string) bool {
	for _, w := range strings.Fields(strings.ToLower(s)) {
		if verbLexicon[strings.Trim(w, ".,:;!?\"'()")] {
			return true
		}
	}
	return false
}

// atoi converts a digits-only capture group; groups are guaranteed
// numeric by their patterns.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
