package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidStatus   = errors.New("model: invalid task status")
	ErrTaskTextMissing = errors.New("model: task text is required")
)

type TaskStatus string

const (
	TaskStatusActive TaskStatus = "active"
	TaskStatusDone   TaskStatus = "done"
)

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusActive, TaskStatusDone:
		return true
	default:
		return false
	}
}

// ParseTaskStatus maps a persisted status to a TaskStatus. Rows written
// before the status column existed carry an empty value and count as active.
func ParseTaskStatus(raw string) (TaskStatus, error) {
	s := TaskStatus(strings.ToLower(strings.TrimSpace(raw)))
	if s == "" {
		return TaskStatusActive, nil
	}
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

type Task struct {
	ID          int64
	Owner       int64
	Text        string
	DueAt       *time.Time
	Status      TaskStatus
	CreatedAt   time.Time
	CompletedAt *time.Time
}

func (t Task) Validate() error {
	if t.ID <= 0 {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Text) == "" {
		return ErrTaskTextMissing
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	if t.CreatedAt.IsZero() {
		return errors.New("model: task created_at is required")
	}
	if t.DueAt != nil && t.DueAt.IsZero() {
		return errors.New("model: due_at must not be the zero time")
	}
	if t.Status == TaskStatusDone && t.CompletedAt == nil {
		return errors.New("model: completed_at is required when task status is done")
	}
	if t.Status != TaskStatusDone && t.CompletedAt != nil {
		return errors.New("model: completed_at must be nil when task status is not done")
	}
	return nil
}

func (t Task) IsActive() bool {
	return t.Status == TaskStatusActive
}

func (t Task) HasDeadline() bool {
	return t.DueAt != nil
}

// DueIn returns the due time converted to loc, or nil for tasks without a deadline.
func (t Task) DueIn(loc *time.Location) *time.Time {
	if t.DueAt == nil {
		return nil
	}
	v := t.DueAt.In(loc)
	return &v
}
