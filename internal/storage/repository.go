package storage

import (
	"context"
	"errors"
	"time"

	"github.com/sandeepkv93/remindme/internal/model"
)

var ErrNotFound = errors.New("storage: not found")

// NewTask carries the fields a caller supplies on creation. The store assigns
// the id and the initial active status.
type NewTask struct {
	Owner     int64
	Text      string
	DueAt     *time.Time
	CreatedAt time.Time
}

// Repository is the task store. Every method addresses a single task by
// (owner, id); ErrNotFound is returned when no such row exists.
type Repository interface {
	CreateTask(ctx context.Context, in NewTask) (int64, error)
	GetTask(ctx context.Context, owner, id int64) (model.Task, error)
	// ListActive is ordered newest first.
	ListActive(ctx context.Context, owner int64) ([]model.Task, error)
	// ListDone is ordered by completion time, most recent first.
	ListDone(ctx context.Context, owner int64) ([]model.Task, error)
	ListOwnersWithActiveTasks(ctx context.Context) ([]int64, error)

	UpdateDueAt(ctx context.Context, owner, id int64, dueAt *time.Time) error
	UpdateText(ctx context.Context, owner, id int64, text string) error
	MarkDone(ctx context.Context, owner, id int64, at time.Time) error
	DeleteTask(ctx context.Context, owner, id int64) error

	Close() error
}
