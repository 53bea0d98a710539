package timeparse

import (
	"testing"
	"time"
)

var plusFive = time.FixedZone("+05", 5*3600)

func mustDue(t *testing.T, r Result) time.Time {
	t.Helper()
	if r.DueAt == nil {
		t.Fatalf("expected a due time for %q", r.Text)
	}
	return *r.DueAt
}

func TestParseDeadlineHour(t *testing.T) {
	p := New(plusFive)
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, plusFive)

	r := p.Parse("buy milk by 4", now)
	if r.Text != "buy milk" {
		t.Fatalf("unexpected text %q", r.Text)
	}
	due := mustDue(t, r)
	want := time.Date(2024, 1, 1, 16, 0, 0, 0, plusFive)
	if !due.Equal(want) {
		t.Fatalf("expected %s, got %s", want.Format(time.RFC3339), due.Format(time.RFC3339))
	}
	if due.Location() != plusFive {
		t.Fatalf("expected due time in parser location, got %s", due.Location())
	}
}

func TestParsePhraseDateWithExplicitClock(t *testing.T) {
	p := New(plusFive)
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, plusFive)

	r := p.Parse("call mom tomorrow at 7 evening", now)
	if r.Text != "call mom" {
		t.Fatalf("unexpected text %q", r.Text)
	}
	if got := mustDue(t, r).Format("2006-01-02 15:04"); got != "2024-01-02 19:00" {
		t.Fatalf("unexpected due %s", got)
	}
}

func TestParseNoTemporalExpression(t *testing.T) {
	p := New(plusFive)
	r := p.Parse("  just a note ", time.Date(2024, 1, 1, 9, 0, 0, 0, plusFive))
	if r.Text != "just a note" || r.DueAt != nil {
		t.Fatalf("unexpected result %+v", r)
	}
}

func TestParseCases(t *testing.T) {
	p := New(plusFive)
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, plusFive) // Monday

	cases := []struct {
		name string
		raw  string
		text string
		due  string
	}{
		{name: "long deadline hour stays morning", raw: "pay rent by 10", text: "pay rent", due: "2024-01-01 10:00"},
		{name: "deadline with suffix", raw: "report by 7pm", text: "report", due: "2024-01-01 19:00"},
		{name: "deadline with minutes", raw: "submit form before 5:30", text: "submit form", due: "2024-01-01 17:30"},
		{name: "passed clock rolls to tomorrow", raw: "standup at 8", text: "standup", due: "2024-01-02 08:00"},
		{name: "midnight", raw: "backup at 12 am", text: "backup", due: "2024-01-02 00:00"},
		{name: "o'clock after at", raw: "dinner at 7 o'clock in the evening", text: "dinner", due: "2024-01-01 19:00"},
		{name: "idiom without at", raw: "dinner 7 o'clock in the evening", text: "dinner", due: "2024-01-01 19:00"},
		{name: "relative duration", raw: "check oven in 2 hours", text: "check oven", due: "2024-01-01 11:00"},
		{name: "relative article", raw: "stretch in an hour", text: "stretch", due: "2024-01-01 10:00"},
		{name: "duration later", raw: "water plants 3 days later", text: "water plants", due: "2024-01-04 09:00"},
		{name: "relative day keeps clock", raw: "send invoice tomorrow", text: "send invoice", due: "2024-01-02 09:00"},
		{name: "weekday with clock", raw: "dentist friday at 14:30", text: "dentist", due: "2024-01-05 14:30"},
		{name: "explicit clock beats phrase clock", raw: "meeting tomorrow 18:00 at 9am", text: "meeting", due: "2024-01-02 09:00"},
		{name: "iso date with clock", raw: "2024-03-15 submit report at 10", text: "submit report", due: "2024-03-15 10:00"},
		{name: "date without clock is midnight", raw: "renew passport 15.02", text: "renew passport", due: "2024-02-15 00:00"},
		{name: "dotted date after on", raw: "pay rent on 1.12 at 9", text: "pay rent", due: "2024-12-01 09:00"},
		{name: "rightmost phrase wins", raw: "move from monday to friday", text: "move from monday to", due: "2024-01-05 09:00"},
		{name: "empty text falls back", raw: "tomorrow", text: DefaultTaskText, due: "2024-01-02 09:00"},
		{name: "punctuation is trimmed", raw: "call bank, tomorrow.", text: "call bank", due: "2024-01-02 09:00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := p.Parse(tc.raw, now)
			if r.Text != tc.text {
				t.Fatalf("expected text %q, got %q", tc.text, r.Text)
			}
			if got := mustDue(t, r).Format("2006-01-02 15:04"); got != tc.due {
				t.Fatalf("expected due %s, got %s", tc.due, got)
			}
		})
	}
}

func TestParseQuantitiesAreNotDates(t *testing.T) {
	p := New(plusFive)
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, plusFive)

	for _, raw := range []string{"buy 1.5 liters of milk", "run 3.5 km", "ask for a 2.5% discount", "lend $1.10 to sam"} {
		r := p.Parse(raw, now)
		if r.Text != raw || r.DueAt != nil {
			t.Fatalf("expected %q to stay a plain task, got %+v", raw, r)
		}
	}
}

func TestParseDeadlineRollsOverAfterPassing(t *testing.T) {
	p := New(plusFive)
	now := time.Date(2024, 1, 1, 17, 0, 0, 0, plusFive)

	r := p.Parse("buy milk by 4", now)
	if got := mustDue(t, r).Format("2006-01-02 15:04"); got != "2024-01-02 16:00" {
		t.Fatalf("expected rollover to tomorrow, got %s", got)
	}
}

func TestParseConvertsNowToParserLocation(t *testing.T) {
	p := New(plusFive)
	// 20:00 UTC is 01:00 on Jan 2 in +05.
	now := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)

	r := p.Parse("buy milk by 4", now)
	if got := mustDue(t, r).Format("2006-01-02 15:04"); got != "2024-01-02 16:00" {
		t.Fatalf("unexpected due %s", got)
	}
}

func TestParseInvalidHourIsIgnored(t *testing.T) {
	p := New(plusFive)
	r := p.Parse("meet at 25", time.Date(2024, 1, 1, 9, 0, 0, 0, plusFive))
	if r.Text != "meet at 25" || r.DueAt != nil {
		t.Fatalf("unexpected result %+v", r)
	}
}

func TestParseWithCustomHourRules(t *testing.T) {
	p := New(plusFive, WithHourRules(nil))
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, plusFive)

	r := p.Parse("buy milk by 4", now)
	if got := mustDue(t, r).Format("2006-01-02 15:04"); got != "2024-01-02 04:00" {
		t.Fatalf("expected literal hour without rules, got %s", got)
	}
}

func TestNewDefaultsToUTC(t *testing.T) {
	if loc := New(nil).Location(); loc != time.UTC {
		t.Fatalf("expected UTC, got %s", loc)
	}
}
