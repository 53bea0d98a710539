package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sandeepkv93/remindme/internal/model"
)

// timeLayout keeps the zone offset so a stored due time reads back as the
// same instant in the same zone.
const timeLayout = time.RFC3339Nano

// legacyTimeLayout is what SQLite's CURRENT_TIMESTAMP writes (always UTC).
const legacyTimeLayout = "2006-01-02 15:04:05"

// taskRow mirrors the tasks table. Timestamps are kept as text so the SQLite
// and PostgreSQL stores share one decoding path.
type taskRow struct {
	ID          int64
	Owner       int64
	Text        string
	CreatedAt   string
	DueAt       sql.NullString
	Status      sql.NullString
	CompletedAt sql.NullString
}

func (r taskRow) toModel() (model.Task, error) {
	status, err := model.ParseTaskStatus(r.Status.String)
	if err != nil {
		return model.Task{}, fmt.Errorf("task %d: %w", r.ID, err)
	}
	created, err := parseRequiredTime(r.CreatedAt)
	if err != nil {
		return model.Task{}, fmt.Errorf("task %d created_at: %w", r.ID, err)
	}
	due, err := parseNullableTime(r.DueAt)
	if err != nil {
		return model.Task{}, fmt.Errorf("task %d due_at: %w", r.ID, err)
	}
	completed, err := parseNullableTime(r.CompletedAt)
	if err != nil {
		return model.Task{}, fmt.Errorf("task %d completed_at: %w", r.ID, err)
	}
	return model.Task{
		ID:          r.ID,
		Owner:       r.Owner,
		Text:        r.Text,
		DueAt:       due,
		Status:      status,
		CreatedAt:   created,
		CompletedAt: completed,
	}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (model.Task, error) {
	var row taskRow
	if err := s.Scan(&row.ID, &row.Owner, &row.Text, &row.CreatedAt, &row.DueAt, &row.Status, &row.CompletedAt); err != nil {
		return model.Task{}, err
	}
	return row.toModel()
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.Format(timeLayout)
}

// formatTime is used for created_at and completed_at, which are stored in UTC
// so they sort correctly as text.
func formatTime(v time.Time) string {
	return v.UTC().Format(timeLayout)
}

func parseNullableTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := parseRequiredTime(v.String)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

func parseRequiredTime(v string) (time.Time, error) {
	if tm, err := time.Parse(timeLayout, v); err == nil {
		return tm, nil
	}
	return time.ParseInLocation(legacyTimeLayout, v, time.UTC)
}
