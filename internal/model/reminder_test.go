package model

import (
	"errors"
	"testing"
	"time"
)

func TestReminderModeOffsets(t *testing.T) {
	cases := []struct {
		mode ReminderMode
		want time.Duration
	}{
		{ReminderMode5mBefore, 5 * time.Minute},
		{ReminderMode10mBefore, 10 * time.Minute},
		{ReminderMode1hBefore, time.Hour},
		{ReminderModeExact, 0},
	}
	for _, tc := range cases {
		if got := tc.mode.Offset(); got != tc.want {
			t.Fatalf("offset(%q) = %v, want %v", tc.mode, got, tc.want)
		}
	}
}

func TestParseReminderMode(t *testing.T) {
	for _, m := range ReminderModes() {
		got, err := ParseReminderMode(string(m))
		if err != nil {
			t.Fatalf("parse %q: %v", m, err)
		}
		if got != m {
			t.Fatalf("parse %q = %q", m, got)
		}
	}
	if _, err := ParseReminderMode("15"); !errors.Is(err, ErrInvalidReminderMode) {
		t.Fatalf("expected ErrInvalidReminderMode, got %v", err)
	}
	if ReminderMode("other").IsValid() {
		t.Fatal("expected invalid mode")
	}
}
