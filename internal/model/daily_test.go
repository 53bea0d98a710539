package model

import (
	"errors"
	"testing"
	"time"
)

func TestDailyAtNextAfter(t *testing.T) {
	loc := time.FixedZone("+05", 5*3600)
	d := DailyAt{Hour: 7, Minute: 30, Location: loc}

	before := time.Date(2026, 2, 9, 6, 0, 0, 0, loc)
	if got := d.NextAfter(before); got.Format("2006-01-02 15:04") != "2026-02-09 07:30" {
		t.Fatalf("unexpected same-day occurrence: %s", got.Format(time.RFC3339))
	}

	exact := time.Date(2026, 2, 9, 7, 30, 0, 0, loc)
	if got := d.NextAfter(exact); got.Format("2006-01-02 15:04") != "2026-02-10 07:30" {
		t.Fatalf("expected next day when from equals trigger, got %s", got.Format(time.RFC3339))
	}

	utcEvening := time.Date(2026, 2, 28, 20, 0, 0, 0, time.UTC) // 01:00 next day local
	if got := d.NextAfter(utcEvening); got.Format("2006-01-02 15:04") != "2026-03-01 07:30" {
		t.Fatalf("unexpected occurrence across month boundary: %s", got.Format(time.RFC3339))
	}
}

func TestParseDailyAt(t *testing.T) {
	d, err := ParseDailyAt("07:30", time.UTC)
	if err != nil {
		t.Fatalf("parse daily time: %v", err)
	}
	if d.Hour != 7 || d.Minute != 30 || d.String() != "07:30" {
		t.Fatalf("unexpected daily time: %+v", d)
	}
	for _, raw := range []string{"7", "25:00", "07:61", "aa:bb"} {
		if _, err := ParseDailyAt(raw, time.UTC); !errors.Is(err, ErrInvalidDailyTime) {
			t.Fatalf("expected ErrInvalidDailyTime for %q, got %v", raw, err)
		}
	}
}
