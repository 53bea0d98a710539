// Package timeparse splits free-form task text into a clean description and
// an optional due time.
//
// Parsing runs in passes: an explicit "by <hour>" deadline, then an explicit
// "at <hour> [period]" clock, then a general date phrase search over what is
// left. An explicit clock always overrides whatever clock the phrase carried.
package timeparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultTaskText replaces a description that is empty once every temporal
// phrase has been removed.
const DefaultTaskText = "Task"

var (
	deadlineRe = regexp.MustCompile(`(?i)\b(?:by|before|until)\s+(\d{1,2})(?::(\d{2}))?(?:\s*(am|pm)\b|\b)`)
	atRe       = regexp.MustCompile(`(?i)\bat\s+(\d{1,2})(?::(\d{2}))?(?:\s*(am|pm)\b|\s*o'?clock\b|\b)(?:\s+(?:in\s+the\s+)?(morning|afternoon|evening|night)\b)?`)

	idiomRe    = regexp.MustCompile(`(?i)\b(\d{1,2})\s*(?:o'?clock|hours?)\s+(?:in\s+the\s+)?(morning|afternoon|evening|night)\b`)
	relativeRe = regexp.MustCompile(`(?i)\b(?:in|after)\s+(?:\d|an?\b|one\b)`)

	spaceRe = regexp.MustCompile(`\s+`)
)

const trimCutset = " \t\n,.;:-"

// Result is the outcome of Parse. DueAt is nil when the text carries no
// temporal expression.
type Result struct {
	Text  string
	DueAt *time.Time
}

type Parser struct {
	loc   *time.Location
	rules []HourRule
}

type Option func(*Parser)

// WithHourRules replaces the hour disambiguation table.
func WithHourRules(rules []HourRule) Option {
	return func(p *Parser) {
		p.rules = rules
	}
}

func New(loc *time.Location, opts ...Option) *Parser {
	if loc == nil {
		loc = time.UTC
	}
	p := &Parser{loc: loc, rules: DefaultHourRules}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Parser) Location() *time.Location {
	return p.loc
}

type clockOfDay struct {
	hour   int
	minute int
}

// Parse extracts the task description and due time from raw. The returned
// due time may lie in the past; callers decide what to do with it.
func (p *Parser) Parse(raw string, now time.Time) Result {
	now = now.In(p.loc)
	text := strings.TrimSpace(raw)

	working, clock := p.extractClock(text)

	searchText := working
	if !relativeRe.MatchString(searchText) {
		searchText = p.normalizeIdioms(searchText)
	}
	phrase, hasPhrase := Last(Search(searchText, now))

	if !hasPhrase && clock == nil {
		return Result{Text: text}
	}

	rest := searchText
	if hasPhrase {
		rest = searchText[:phrase.Start] + " " + searchText[phrase.End:]
	}
	taskText := cleanup(rest)
	if taskText == "" {
		taskText = DefaultTaskText
	}

	var due time.Time
	switch {
	case hasPhrase && clock != nil:
		y, m, d := phrase.Time.Date()
		due = time.Date(y, m, d, clock.hour, clock.minute, 0, 0, p.loc)
	case hasPhrase:
		due = phrase.Time.In(p.loc)
	default:
		due = nextClock(now, clock.hour, clock.minute)
	}
	return Result{Text: taskText, DueAt: &due}
}

// extractClock runs the explicit deadline pattern and, failing that, the
// explicit "at" pattern. The matched span is removed from the returned text.
func (p *Parser) extractClock(text string) (string, *clockOfDay) {
	if rest, c, ok := p.firstClock(text, deadlineRe, KindDeadline); ok {
		return rest, c
	}
	if rest, c, ok := p.firstClock(text, atRe, KindAt); ok {
		return rest, c
	}
	return text, nil
}

func (p *Parser) firstClock(text string, re *regexp.Regexp, kind MatchKind) (string, *clockOfDay, bool) {
	for _, idx := range re.FindAllStringSubmatchIndex(text, -1) {
		g := submatches(text, idx)
		h, err := strconv.Atoi(g[1])
		if err != nil {
			continue
		}
		minute := 0
		if g[2] != "" {
			minute, _ = strconv.Atoi(g[2])
		}
		period := g[3]
		if len(g) > 4 && g[4] != "" {
			period = g[4]
		}
		hour, minute, ok := ResolveHour(p.rules, ClockMatch{Kind: kind, Hour: h, Minute: minute, Period: period})
		if !ok {
			continue
		}
		return text[:idx[0]] + " " + text[idx[1]:], &clockOfDay{hour: hour, minute: minute}, true
	}
	return text, nil, false
}

// normalizeIdioms rewrites "7 o'clock in the evening" into "19:00" so the
// phrase search sees a plain clock time.
func (p *Parser) normalizeIdioms(text string) string {
	return idiomRe.ReplaceAllStringFunc(text, func(s string) string {
		g := idiomRe.FindStringSubmatch(s)
		h, err := strconv.Atoi(g[1])
		if err != nil {
			return s
		}
		hour, minute, ok := ResolveHour(p.rules, ClockMatch{Kind: KindAt, Hour: h, Period: g[2]})
		if !ok {
			return s
		}
		return strconv.Itoa(hour) + ":" + twoDigits(minute)
	})
}

func twoDigits(v int) string {
	if v < 10 {
		return "0" + strconv.Itoa(v)
	}
	return strconv.Itoa(v)
}

func cleanup(s string) string {
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.Trim(s, trimCutset)
}
