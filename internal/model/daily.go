package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidDailyTime = errors.New("model: invalid daily time")

// DailyAt is a wall-clock time of day in a fixed location, used for the
// standing digest trigger.
type DailyAt struct {
	Hour     int
	Minute   int
	Location *time.Location
}

// ParseDailyAt reads an "HH:MM" value.
func ParseDailyAt(raw string, loc *time.Location) (DailyAt, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok {
		return DailyAt{}, fmt.Errorf("%w: %q", ErrInvalidDailyTime, raw)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return DailyAt{}, fmt.Errorf("%w: %q", ErrInvalidDailyTime, raw)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return DailyAt{}, fmt.Errorf("%w: %q", ErrInvalidDailyTime, raw)
	}
	d := DailyAt{Hour: h, Minute: m, Location: loc}
	if err := d.Validate(); err != nil {
		return DailyAt{}, err
	}
	return d, nil
}

func (d DailyAt) Validate() error {
	if d.Hour < 0 || d.Hour > 23 || d.Minute < 0 || d.Minute > 59 {
		return fmt.Errorf("%w: %02d:%02d", ErrInvalidDailyTime, d.Hour, d.Minute)
	}
	if d.Location == nil {
		return errors.New("model: daily time location is required")
	}
	return nil
}

// NextAfter returns the first occurrence strictly after from.
func (d DailyAt) NextAfter(from time.Time) time.Time {
	local := from.In(d.Location)
	y, m, day := local.Date()
	candidate := time.Date(y, m, day, d.Hour, d.Minute, 0, 0, d.Location)
	if !candidate.After(local) {
		candidate = time.Date(y, m, day+1, d.Hour, d.Minute, 0, 0, d.Location)
	}
	return candidate
}

func (d DailyAt) String() string {
	return fmt.Sprintf("%02d:%02d", d.Hour, d.Minute)
}
