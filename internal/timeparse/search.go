package timeparse

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

type phraseKind int

const (
	phraseDate    phraseKind = iota + 1 // a calendar day; clock is a fallback only
	phraseClock                         // a clock time resolved to the next occurrence
	phraseInstant                       // a precise moment, e.g. "in 2 hours"
)

// Phrase is one temporal expression found by Search. Start and End index the
// searched text.
type Phrase struct {
	Text  string
	Start int
	End   int
	Time  time.Time

	kind   phraseKind
	hour   int
	minute int
}

type resolved struct {
	t      time.Time
	kind   phraseKind
	hour   int
	minute int
}

type matcher struct {
	name    string
	re      *regexp.Regexp
	resolve func(g []string, now time.Time) (resolved, bool)
	// accept, when set, vetoes a match from its surroundings.
	accept func(text string, start, end int) bool
}

const monthNames = `jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?`

var matchers = []matcher{
	{
		name:    "relative-day",
		re:      regexp.MustCompile(`(?i)\b(day\s+after\s+tomorrow|tomorrow|today|yesterday)\b`),
		resolve: resolveRelativeDay,
	},
	{
		name:    "weekday",
		re:      regexp.MustCompile(`(?i)\b(?:(?:on|next|this)\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`),
		resolve: resolveWeekday,
	},
	{
		name:    "in-duration",
		re:      regexp.MustCompile(`(?i)\b(?:in|after)\s+(\d{1,4}|an?|one)\s+(minutes?|mins?|hours?|hrs?|days?|weeks?)\b`),
		resolve: resolveDuration,
	},
	{
		name:    "duration-later",
		re:      regexp.MustCompile(`(?i)\b(\d{1,4})\s+(minutes?|mins?|hours?|hrs?|days?|weeks?)\s+(?:later|from\s+now)\b`),
		resolve: resolveDuration,
	},
	{
		name:    "next-period",
		re:      regexp.MustCompile(`(?i)\bnext\s+(week|month|year)\b`),
		resolve: resolveNextPeriod,
	},
	{
		name:    "iso-date",
		re:      regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`),
		resolve: resolveISODate,
	},
	{
		name:    "dotted-date",
		re:      regexp.MustCompile(`(?i)\b(?:on\s+)?(\d{1,2})\.(\d{1,2})(?:\.(\d{4}|\d{2}))?\b`),
		resolve: resolveDottedDate,
		accept:  notAQuantity,
	},
	{
		name:    "month-day",
		re:      regexp.MustCompile(`(?i)\b(?:on\s+)?(` + monthNames + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(\d{4}))?\b`),
		resolve: resolveMonthDay,
	},
	{
		name:    "day-month",
		re:      regexp.MustCompile(`(?i)\b(?:on\s+)?(?:the\s+)?(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(` + monthNames + `)(?:,?\s+(\d{4}))?\b`),
		resolve: resolveDayMonth,
	},
	{
		name:    "clock-24h",
		re:      regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`),
		resolve: resolveClock24,
	},
	{
		name:    "clock-12h",
		re:      regexp.MustCompile(`(?i)\b(\d{1,2})(?::([0-5]\d))?\s*(am|pm)\b`),
		resolve: resolveClock12,
	},
	{
		name:    "noon-midnight",
		re:      regexp.MustCompile(`(?i)\b(noon|midnight)\b`),
		resolve: resolveNoon,
	},
}

var compoundGap = regexp.MustCompile(`(?i)^\s*,?\s*(?:at\s+)?$`)

// Search finds every temporal phrase in text relative to now, ordered by
// position. Adjacent date and clock phrases ("tomorrow 18:00") come back as
// one phrase.
func Search(text string, now time.Time) []Phrase {
	found := make([]Phrase, 0)
	for _, m := range matchers {
		for _, idx := range m.re.FindAllStringSubmatchIndex(text, -1) {
			if m.accept != nil && !m.accept(text, idx[0], idx[1]) {
				continue
			}
			groups := submatches(text, idx)
			r, ok := m.resolve(groups, now)
			if !ok {
				continue
			}
			found = append(found, Phrase{
				Text:   text[idx[0]:idx[1]],
				Start:  idx[0],
				End:    idx[1],
				Time:   r.t,
				kind:   r.kind,
				hour:   r.hour,
				minute: r.minute,
			})
		}
	}
	return joinCompounds(text, dropOverlaps(found))
}

// Last returns the rightmost phrase, if any.
func Last(phrases []Phrase) (Phrase, bool) {
	if len(phrases) == 0 {
		return Phrase{}, false
	}
	return phrases[len(phrases)-1], true
}

func submatches(text string, idx []int) []string {
	out := make([]string, len(idx)/2)
	for i := range out {
		if idx[2*i] >= 0 {
			out[i] = text[idx[2*i]:idx[2*i+1]]
		}
	}
	return out
}

// dropOverlaps keeps the longest phrase where matches overlap.
func dropOverlaps(in []Phrase) []Phrase {
	sort.SliceStable(in, func(i, j int) bool {
		if in[i].Start != in[j].Start {
			return in[i].Start < in[j].Start
		}
		return in[i].End-in[i].Start > in[j].End-in[j].Start
	})
	out := make([]Phrase, 0, len(in))
	for _, p := range in {
		if n := len(out); n > 0 && p.Start < out[n-1].End {
			if p.End-p.Start > out[n-1].End-out[n-1].Start {
				out[n-1] = p
			}
			continue
		}
		out = append(out, p)
	}
	return out
}

func joinCompounds(text string, in []Phrase) []Phrase {
	out := make([]Phrase, 0, len(in))
	for i := 0; i < len(in); i++ {
		p := in[i]
		if i+1 < len(in) {
			next := in[i+1]
			if date, clock, ok := pairDateClock(p, next); ok && compoundGap.MatchString(text[p.End:next.Start]) {
				y, mo, d := date.Time.Date()
				out = append(out, Phrase{
					Text:  text[p.Start:next.End],
					Start: p.Start,
					End:   next.End,
					Time:  time.Date(y, mo, d, clock.hour, clock.minute, 0, 0, date.Time.Location()),
					kind:  phraseInstant,
				})
				i++
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

func pairDateClock(a, b Phrase) (date, clock Phrase, ok bool) {
	switch {
	case a.kind == phraseDate && b.kind == phraseClock:
		return a, b, true
	case a.kind == phraseClock && b.kind == phraseDate:
		return b, a, true
	default:
		return Phrase{}, Phrase{}, false
	}
}

func resolveRelativeDay(g []string, now time.Time) (resolved, bool) {
	offset := 0
	switch strings.Join(strings.Fields(strings.ToLower(g[1])), " ") {
	case "today":
		offset = 0
	case "tomorrow":
		offset = 1
	case "day after tomorrow":
		offset = 2
	case "yesterday":
		offset = -1
	default:
		return resolved{}, false
	}
	return resolved{t: now.AddDate(0, 0, offset), kind: phraseDate}, true
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func resolveWeekday(g []string, now time.Time) (resolved, bool) {
	target, ok := weekdays[strings.ToLower(g[1])]
	if !ok {
		return resolved{}, false
	}
	ahead := (int(target) - int(now.Weekday()) + 7) % 7
	if ahead == 0 {
		ahead = 7
	}
	return resolved{t: now.AddDate(0, 0, ahead), kind: phraseDate}, true
}

func resolveDuration(g []string, now time.Time) (resolved, bool) {
	var n int
	switch strings.ToLower(g[1]) {
	case "a", "an", "one":
		n = 1
	default:
		v, err := strconv.Atoi(g[1])
		if err != nil {
			return resolved{}, false
		}
		n = v
	}
	unit := strings.ToLower(g[2])
	var t time.Time
	switch {
	case strings.HasPrefix(unit, "min"):
		t = now.Add(time.Duration(n) * time.Minute)
	case strings.HasPrefix(unit, "h"):
		t = now.Add(time.Duration(n) * time.Hour)
	case strings.HasPrefix(unit, "day"):
		t = now.AddDate(0, 0, n)
	case strings.HasPrefix(unit, "week"):
		t = now.AddDate(0, 0, 7*n)
	default:
		return resolved{}, false
	}
	return resolved{t: t, kind: phraseInstant}, true
}

func resolveNextPeriod(g []string, now time.Time) (resolved, bool) {
	switch strings.ToLower(g[1]) {
	case "week":
		return resolved{t: now.AddDate(0, 0, 7), kind: phraseDate}, true
	case "month":
		return resolved{t: now.AddDate(0, 1, 0), kind: phraseDate}, true
	case "year":
		return resolved{t: now.AddDate(1, 0, 0), kind: phraseDate}, true
	}
	return resolved{}, false
}

func resolveISODate(g []string, now time.Time) (resolved, bool) {
	y, _ := strconv.Atoi(g[1])
	m, _ := strconv.Atoi(g[2])
	d, _ := strconv.Atoi(g[3])
	t, ok := calendarDay(y, m, d, now.Location())
	if !ok {
		return resolved{}, false
	}
	return resolved{t: t, kind: phraseDate}, true
}

var (
	quantityUnit   = regexp.MustCompile(`(?i)^\s*(?:%|(?:percent|x|times|pcs|pieces?|cups?|l|ml|liters?|litres?|g|kg|grams?|kilos?|kilograms?|lbs?|pounds?|oz|ounces?|mm|cm|m|km|meters?|metres?|kilometers?|miles?|hours?|hrs?|h|minutes?|mins?|days?|weeks?|years?|stars?|points?|gb|mb|tb)\b)`)
	currencyPrefix = regexp.MustCompile(`[$€£¥₸]\s*$`)
)

// notAQuantity rejects "1.5 liters" and "$3.50": a dotted number followed by
// a unit or preceded by a currency sign is an amount, not a date.
func notAQuantity(text string, start, end int) bool {
	return !quantityUnit.MatchString(text[end:]) && !currencyPrefix.MatchString(text[:start])
}

func resolveDottedDate(g []string, now time.Time) (resolved, bool) {
	d, _ := strconv.Atoi(g[1])
	m, _ := strconv.Atoi(g[2])
	if g[3] == "" {
		return upcomingDay(m, d, now)
	}
	y, _ := strconv.Atoi(g[3])
	if len(g[3]) == 2 {
		y += 2000
	}
	t, ok := calendarDay(y, m, d, now.Location())
	if !ok {
		return resolved{}, false
	}
	return resolved{t: t, kind: phraseDate}, true
}

func resolveMonthDay(g []string, now time.Time) (resolved, bool) {
	return resolveNamedMonth(g[1], g[2], g[3], now)
}

func resolveDayMonth(g []string, now time.Time) (resolved, bool) {
	return resolveNamedMonth(g[2], g[1], g[3], now)
}

func resolveNamedMonth(month, day, year string, now time.Time) (resolved, bool) {
	m := monthNumber(month)
	d, err := strconv.Atoi(day)
	if m == 0 || err != nil {
		return resolved{}, false
	}
	if year == "" {
		return upcomingDay(m, d, now)
	}
	y, _ := strconv.Atoi(year)
	t, ok := calendarDay(y, m, d, now.Location())
	if !ok {
		return resolved{}, false
	}
	return resolved{t: t, kind: phraseDate}, true
}

// upcomingDay picks this year's date, or next year's once it has passed.
func upcomingDay(m, d int, now time.Time) (resolved, bool) {
	t, ok := calendarDay(now.Year(), m, d, now.Location())
	if !ok {
		return resolved{}, false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if t.Before(today) {
		if t, ok = calendarDay(now.Year()+1, m, d, now.Location()); !ok {
			return resolved{}, false
		}
	}
	return resolved{t: t, kind: phraseDate}, true
}

func calendarDay(y, m, d int, loc *time.Location) (time.Time, bool) {
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, loc)
	if t.Day() != d || int(t.Month()) != m {
		return time.Time{}, false
	}
	return t, true
}

func monthNumber(name string) int {
	name = strings.ToLower(name)
	if len(name) < 3 {
		return 0
	}
	switch name[:3] {
	case "jan":
		return 1
	case "feb":
		return 2
	case "mar":
		return 3
	case "apr":
		return 4
	case "may":
		return 5
	case "jun":
		return 6
	case "jul":
		return 7
	case "aug":
		return 8
	case "sep":
		return 9
	case "oct":
		return 10
	case "nov":
		return 11
	case "dec":
		return 12
	}
	return 0
}

func resolveClock24(g []string, now time.Time) (resolved, bool) {
	h, _ := strconv.Atoi(g[1])
	m, _ := strconv.Atoi(g[2])
	return clockAt(h, m, now), true
}

func resolveClock12(g []string, now time.Time) (resolved, bool) {
	h, _ := strconv.Atoi(g[1])
	m := 0
	if g[2] != "" {
		m, _ = strconv.Atoi(g[2])
	}
	if h < 1 || h > 12 {
		return resolved{}, false
	}
	hour, minute, ok := ResolveHour(DefaultHourRules, ClockMatch{Kind: KindAt, Hour: h, Minute: m, Period: g[3]})
	if !ok {
		return resolved{}, false
	}
	return clockAt(hour, minute, now), true
}

func resolveNoon(g []string, now time.Time) (resolved, bool) {
	if strings.EqualFold(g[1], "noon") {
		return clockAt(12, 0, now), true
	}
	return clockAt(0, 0, now), true
}

// clockAt resolves a bare clock time to its next occurrence after now.
func clockAt(h, m int, now time.Time) resolved {
	return resolved{t: nextClock(now, h, m), kind: phraseClock, hour: h, minute: m}
}

func nextClock(now time.Time, h, m int) time.Time {
	y, mo, d := now.Date()
	t := time.Date(y, mo, d, h, m, 0, 0, now.Location())
	if !t.After(now) {
		t = time.Date(y, mo, d+1, h, m, 0, 0, now.Location())
	}
	return t
}
