package model

import (
	"errors"
	"testing"
	"time"
)

func TestTaskValidateSuccess(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	task := Task{
		ID:        1,
		Owner:     42,
		Text:      "Buy milk",
		Status:    TaskStatusActive,
		CreatedAt: now,
	}
	if err := task.Validate(); err != nil {
		t.Fatalf("expected valid task, got error: %v", err)
	}
}

func TestTaskValidateDoneRequiresCompletedAt(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	task := Task{
		ID:        1,
		Owner:     42,
		Text:      "Done task",
		Status:    TaskStatusDone,
		CreatedAt: now,
	}
	err := task.Validate()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Error() != "model: completed_at is required when task status is done" {
		t.Fatalf("unexpected error: %v", err)
	}

	task.Status = TaskStatusActive
	task.CompletedAt = &now
	if err := task.Validate(); err == nil {
		t.Fatal("expected error for active task with completed_at")
	}
}

func TestTaskValidateInvalidFields(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	task := Task{
		ID:        1,
		Text:      "Bad status",
		Status:    TaskStatus("archived"),
		CreatedAt: now,
	}
	if err := task.Validate(); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got: %v", err)
	}

	task.Status = TaskStatusActive
	task.Text = "   "
	if err := task.Validate(); !errors.Is(err, ErrTaskTextMissing) {
		t.Fatalf("expected ErrTaskTextMissing, got: %v", err)
	}
}

func TestParseTaskStatus(t *testing.T) {
	cases := map[string]TaskStatus{
		"":       TaskStatusActive,
		"active": TaskStatusActive,
		" DONE ": TaskStatusDone,
		"done":   TaskStatusDone,
	}
	for raw, want := range cases {
		got, err := ParseTaskStatus(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if got != want {
			t.Fatalf("parse %q = %q, want %q", raw, got, want)
		}
	}
	if _, err := ParseTaskStatus("deleted"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestTaskDueIn(t *testing.T) {
	loc := time.FixedZone("+05", 5*3600)
	due := time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC)
	task := Task{DueAt: &due}
	got := task.DueIn(loc)
	if got == nil || got.Format("15:04") != "16:00" {
		t.Fatalf("unexpected local due: %v", got)
	}
	if (Task{}).DueIn(loc) != nil {
		t.Fatal("expected nil due for task without deadline")
	}
}
