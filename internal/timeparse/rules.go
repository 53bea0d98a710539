package timeparse

import "strings"

// MatchKind tells which explicit pattern produced a clock match.
type MatchKind int

const (
	KindDeadline MatchKind = iota + 1 // "by 4", "before 10:30"
	KindAt                            // "at 7 evening"
)

// ClockMatch is a raw hour/minute pulled out of the text before any
// disambiguation. Period holds a lowercased am/pm or period-of-day word.
type ClockMatch struct {
	Kind   MatchKind
	Hour   int
	Minute int
	Period string
}

// HourRule rewrites the hour of a clock match. Apply reports false when the
// rule does not cover the match.
type HourRule struct {
	Name  string
	Apply func(m ClockMatch) (int, bool)
}

// DefaultHourRules is evaluated in order; the first rule that applies wins.
var DefaultHourRules = []HourRule{
	{
		Name: "pm-suffix",
		Apply: func(m ClockMatch) (int, bool) {
			if m.Period == "pm" && m.Hour >= 1 && m.Hour <= 11 {
				return m.Hour + 12, true
			}
			return 0, false
		},
	},
	{
		Name: "am-midnight",
		Apply: func(m ClockMatch) (int, bool) {
			if m.Period == "am" && m.Hour == 12 {
				return 0, true
			}
			return 0, false
		},
	},
	{
		Name: "afternoon-evening",
		Apply: func(m ClockMatch) (int, bool) {
			if (m.Period == "afternoon" || m.Period == "evening") && m.Hour >= 1 && m.Hour <= 11 {
				return m.Hour + 12, true
			}
			return 0, false
		},
	},
	{
		Name: "morning-night-twelve",
		Apply: func(m ClockMatch) (int, bool) {
			if (m.Period == "morning" || m.Period == "night") && m.Hour == 12 {
				return 0, true
			}
			return 0, false
		},
	},
	{
		// "by 4" almost always means the afternoon.
		Name: "deadline-short-hour",
		Apply: func(m ClockMatch) (int, bool) {
			if m.Kind == KindDeadline && m.Period == "" && m.Hour >= 1 && m.Hour <= 8 {
				return m.Hour + 12, true
			}
			return 0, false
		},
	},
}

// ResolveHour applies rules to m and reports the final hour and minute. ok is
// false when the result is not a valid clock time.
func ResolveHour(rules []HourRule, m ClockMatch) (hour, minute int, ok bool) {
	m.Period = strings.ToLower(strings.TrimSpace(m.Period))
	hour = m.Hour
	for _, r := range rules {
		if h, applied := r.Apply(m); applied {
			hour = h
			break
		}
	}
	if hour < 0 || hour > 23 || m.Minute < 0 || m.Minute > 59 {
		return 0, 0, false
	}
	return hour, m.Minute, true
}
