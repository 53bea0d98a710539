package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidReminderMode = errors.New("model: invalid reminder mode")

// ReminderMode selects when a reminder fires relative to a task deadline.
type ReminderMode string

const (
	ReminderMode5mBefore  ReminderMode = "5"
	ReminderMode10mBefore ReminderMode = "10"
	ReminderMode1hBefore  ReminderMode = "60"
	ReminderModeExact     ReminderMode = "exact"
)

func (m ReminderMode) IsValid() bool {
	switch m {
	case ReminderMode5mBefore, ReminderMode10mBefore, ReminderMode1hBefore, ReminderModeExact:
		return true
	default:
		return false
	}
}

func ParseReminderMode(raw string) (ReminderMode, error) {
	m := ReminderMode(strings.ToLower(strings.TrimSpace(raw)))
	if !m.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidReminderMode, raw)
	}
	return m, nil
}

// Offset is how long before the deadline the reminder fires. Exact is zero.
func (m ReminderMode) Offset() time.Duration {
	switch m {
	case ReminderMode5mBefore:
		return 5 * time.Minute
	case ReminderMode10mBefore:
		return 10 * time.Minute
	case ReminderMode1hBefore:
		return time.Hour
	default:
		return 0
	}
}

func (m ReminderMode) Label() string {
	switch m {
	case ReminderMode5mBefore:
		return "5 minutes before"
	case ReminderMode10mBefore:
		return "10 minutes before"
	case ReminderMode1hBefore:
		return "1 hour before"
	case ReminderModeExact:
		return "At the deadline"
	default:
		return string(m)
	}
}

// ReminderModes lists the offset choices in the order they are offered.
func ReminderModes() []ReminderMode {
	return []ReminderMode{ReminderMode5mBefore, ReminderMode10mBefore, ReminderMode1hBefore, ReminderModeExact}
}

// SnoozeChoices are the minute values offered from a fired reminder.
var SnoozeChoices = []int{5, 10, 60}
